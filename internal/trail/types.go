package trail

import "fmt"

// Category describes the kind of piste a mapped feature represents.
// The values mirror the piste:type tag vocabulary used by OpenStreetMap.
type Category string

const (
	CategoryDownhill Category = "downhill"
	CategoryNordic   Category = "nordic"
	CategorySkitour  Category = "skitour"
	CategorySled     Category = "sled"
	CategoryHike     Category = "hike"
)

// ParseCategory maps a raw piste:type tag value to a recognized category.
// Unrecognized or empty values return false.
func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategoryDownhill, CategoryNordic, CategorySkitour, CategorySled, CategoryHike:
		return Category(value), true
	}
	return "", false
}

// Coordinate is a single (lat, lon) point on a trail polyline.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the axis-aligned bounding box of a trail polyline.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Geometry carries the polyline of a mapped trail along with its
// precomputed center and bounds. The matching engine passes geometry
// through untouched; center and bounds are computed by the overpass
// collaborator at parse time.
type Geometry struct {
	Coordinates []Coordinate `json:"coordinates"`
	Center      Coordinate   `json:"center"`
	Bounds      Bounds       `json:"bounds"`
}

// Empty reports whether the geometry carries no points.
func (g *Geometry) Empty() bool {
	return g == nil || len(g.Coordinates) == 0
}

// GeoJSONLineString is a GeoJSON LineString with coordinates in the
// spec's (lon, lat) order.
type GeoJSONLineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// GeoJSON returns the polyline as a GeoJSON LineString, nil when empty.
func (g *Geometry) GeoJSON() *GeoJSONLineString {
	if g.Empty() {
		return nil
	}
	coords := make([][2]float64, len(g.Coordinates))
	for i, c := range g.Coordinates {
		coords[i] = [2]float64{c.Lon, c.Lat}
	}
	return &GeoJSONLineString{Type: "LineString", Coordinates: coords}
}

// Feature is a raw geographic feature as delivered by the mapping source,
// before catalog construction. Tags retains the full tag map so callers can
// surface attributes the catalog does not model (grooming, lit, oneway).
type Feature struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	AltName    string            `json:"alt_name"`
	Reference  string            `json:"reference"`
	Category   string            `json:"category"`
	Difficulty string            `json:"difficulty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Geometry   *Geometry         `json:"geometry,omitempty"`
}

// Record is one trail row from the scraped resort conditions page. Name is
// the only required field; it may carry an area suffix after a pipe
// separator ("Miami | Versant du Midi").
type Record struct {
	Name       string
	Reference  string
	Difficulty string

	// Presentation fields carried alongside the matching inputs.
	Area        string
	DayStatus   string
	NightStatus string
}

// CatalogEntry is one mapped trail after catalog construction: immutable,
// shared by every index key that reaches it.
type CatalogEntry struct {
	ID         int64
	Name       string
	Reference  string
	Difficulty string
	Category   Category
	Geometry   *Geometry
}

// WayURL returns the canonical openstreetmap.org URL for a way id.
func WayURL(id int64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/way/%d", id)
}

// WayURL returns the canonical openstreetmap.org URL for the entry's way.
func (e *CatalogEntry) WayURL() string {
	return WayURL(e.ID)
}
