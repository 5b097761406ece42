package report

import (
	"time"

	"corduroy/internal/trail"
)

// SummaryCount is an open/total pair as displayed on the page ("12/24").
// Values stay strings: the page occasionally renders dashes or km figures.
type SummaryCount struct {
	Open  string `json:"open"`
	Total string `json:"total"`
}

// Area groups the trail rows of one mountain face ("Versant du Midi").
type Area struct {
	Name   string         `json:"name"`
	Trails []trail.Record `json:"trails"`
}

// Section is one recap bloc: summary counts plus per-area detail.
type Section struct {
	Day    SummaryCount `json:"day"`
	Night  SummaryCount `json:"night"`
	Areas  []Area       `json:"areas"`
}

// Snow carries the accumulation figures in metric units as rendered.
type Snow struct {
	Last24h  string `json:"last_24h"`
	Last48h  string `json:"last_48h"`
	Last7Day string `json:"last_7_days"`
	Total    string `json:"total"`
}

// Report is one scrape of the conditions page.
type Report struct {
	ScrapedAt   time.Time         `json:"scraped_at"`
	Date        string            `json:"date"`
	HoursStatus string            `json:"hours_status"`
	LastUpdate  string            `json:"last_update"`
	Snow        Snow              `json:"snow"`
	Conditions  map[string]string `json:"conditions,omitempty"`
	Terrain     map[string]string `json:"terrain,omitempty"`
	Trails      Section           `json:"trails"`
	Glades      Section           `json:"glades"`
	SnowParks   Section           `json:"snow_parks"`
	Hiking      Section           `json:"hiking"`
	Snowshoeing Section           `json:"snowshoeing"`
	Lifts       Section           `json:"lifts"`
	Parking     Section           `json:"parking"`
}

// Records flattens the named-trail rows into the records the matching engine
// consumes, preserving page order. Lifts and parking stay out: they have no
// piste way to reconcile against.
func (r *Report) Records() []trail.Record {
	if r == nil {
		return nil
	}
	var records []trail.Record
	for _, section := range []Section{r.Trails, r.Glades, r.SnowParks, r.Hiking, r.Snowshoeing} {
		for _, area := range section.Areas {
			records = append(records, area.Trails...)
		}
	}
	return records
}
