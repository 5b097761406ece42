package api

import (
	"time"

	"corduroy/internal/trail"
)

// DaemonStatus is the /api/status payload.
type DaemonStatus struct {
	Running        bool       `json:"running"`
	PID            int        `json:"pid"`
	Resort         string     `json:"resort"`
	DBPath         string     `json:"db_path"`
	LockFilePath   string     `json:"lock_file_path"`
	CatalogSize    int        `json:"catalog_size"`
	CatalogBuiltAt *time.Time `json:"catalog_built_at,omitempty"`
	LastCycle      *CycleView `json:"last_cycle,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// CycleView summarizes one poll cycle.
type CycleView struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	TrailsOpen  string    `json:"trails_open"`
	TrailsTotal string    `json:"trails_total"`
	LiftsOpen   string    `json:"lifts_open"`
	LiftsTotal  string    `json:"lifts_total"`
	Snow24h     string    `json:"snow_24h"`
	LastUpdate  string    `json:"last_update"`
}

// TrailStatusView is one scraped trail row with its match outcome.
type TrailStatusView struct {
	Name        string  `json:"name"`
	Reference   string  `json:"reference,omitempty"`
	Area        string  `json:"area,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	DayStatus   string  `json:"day_status,omitempty"`
	NightStatus string  `json:"night_status,omitempty"`
	WayID       int64   `json:"way_id,omitempty"`
	WayURL      string  `json:"way_url,omitempty"`
	MatchTier   string  `json:"match_tier,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// TrailListResponse is the /api/trails payload.
type TrailListResponse struct {
	Cycle  *CycleView        `json:"cycle,omitempty"`
	Trails []TrailStatusView `json:"trails"`
}

// TrailHistoryResponse is the /api/trails/{way-id} payload. Name and
// Geometry come from the published catalog and are absent when the way is
// not (or no longer) in it.
type TrailHistoryResponse struct {
	WayID    int64                    `json:"way_id"`
	WayURL   string                   `json:"way_url"`
	Name     string                   `json:"name,omitempty"`
	Geometry *trail.GeoJSONLineString `json:"geometry,omitempty"`
	History  []TrailStatusView        `json:"history"`
}

// CatalogEntryView is one mapped OSM way.
type CatalogEntryView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Reference  string `json:"reference,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Category   string `json:"category"`
	WayURL     string `json:"way_url"`
}

// CatalogResponse is the /api/catalog payload.
type CatalogResponse struct {
	BuiltAt *time.Time         `json:"built_at,omitempty"`
	Entries []CatalogEntryView `json:"entries"`
}
