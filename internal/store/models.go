package store

import (
	"strings"
	"time"
)

// Cycle is one completed poll of the conditions page.
type Cycle struct {
	ID          string
	StartedAt   time.Time
	CompletedAt time.Time
	TrailsOpen  string
	TrailsTotal string
	LiftsOpen   string
	LiftsTotal  string
	Snow24h     string
	LastUpdate  string
}

// TrailStatus is one scraped trail row within a cycle, annotated with the
// catalog match outcome. WayID is zero when the trail did not match.
type TrailStatus struct {
	ID          int64
	CycleID     string
	Name        string
	Reference   string
	Area        string
	Difficulty  string
	DayStatus   string
	NightStatus string
	WayID       int64
	MatchTier   string
	Confidence  float64
}

// Open reports whether the day status reads as open on the page.
func (t TrailStatus) Open() bool {
	switch strings.ToLower(t.DayStatus) {
	case "ouvert", "ouverte", "open":
		return true
	}
	return false
}
