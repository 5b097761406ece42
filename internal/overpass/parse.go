package overpass

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"corduroy/internal/trail"
)

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassPoint   `json:"geometry"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// parseResponse converts an Overpass JSON payload into trail features.
// Only way elements are considered; nodes carry no tags of interest and
// relations arrive without inline geometry.
func parseResponse(r io.Reader) ([]trail.Feature, error) {
	var payload overpassResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	features := make([]trail.Feature, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		if element.Type != "way" {
			continue
		}
		features = append(features, elementToFeature(element))
	}
	return features, nil
}

func elementToFeature(element overpassElement) trail.Feature {
	tags := element.Tags
	return trail.Feature{
		ID:         element.ID,
		Name:       strings.TrimSpace(tags["name"]),
		AltName:    strings.TrimSpace(tags["piste:name"]),
		Reference:  strings.TrimSpace(tags["ref"]),
		Category:   strings.TrimSpace(tags["piste:type"]),
		Difficulty: strings.TrimSpace(tags["piste:difficulty"]),
		Tags:       tags,
		Geometry:   buildGeometry(element.Geometry),
	}
}

// buildGeometry converts raw points into a Geometry with center (simple
// coordinate mean) and bounds. Empty input yields nil.
func buildGeometry(points []overpassPoint) *trail.Geometry {
	if len(points) == 0 {
		return nil
	}

	coords := make([]trail.Coordinate, len(points))
	bounds := trail.Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	var sumLat, sumLon float64

	for i, point := range points {
		coords[i] = trail.Coordinate{Lat: point.Lat, Lon: point.Lon}
		sumLat += point.Lat
		sumLon += point.Lon
		if point.Lat < bounds.MinLat {
			bounds.MinLat = point.Lat
		}
		if point.Lat > bounds.MaxLat {
			bounds.MaxLat = point.Lat
		}
		if point.Lon < bounds.MinLon {
			bounds.MinLon = point.Lon
		}
		if point.Lon > bounds.MaxLon {
			bounds.MaxLon = point.Lon
		}
	}

	count := float64(len(points))
	return &trail.Geometry{
		Coordinates: coords,
		Center:      trail.Coordinate{Lat: sumLat / count, Lon: sumLon / count},
		Bounds:      bounds,
	}
}
