package api

import (
	"corduroy/internal/store"
	"corduroy/internal/trail"
)

// FromCycle converts a stored cycle to its wire form.
func FromCycle(cycle *store.Cycle) *CycleView {
	if cycle == nil {
		return nil
	}
	return &CycleView{
		ID:          cycle.ID,
		StartedAt:   cycle.StartedAt,
		CompletedAt: cycle.CompletedAt,
		TrailsOpen:  cycle.TrailsOpen,
		TrailsTotal: cycle.TrailsTotal,
		LiftsOpen:   cycle.LiftsOpen,
		LiftsTotal:  cycle.LiftsTotal,
		Snow24h:     cycle.Snow24h,
		LastUpdate:  cycle.LastUpdate,
	}
}

// FromTrailStatus converts a stored trail row to its wire form.
func FromTrailStatus(status store.TrailStatus) TrailStatusView {
	view := TrailStatusView{
		Name:        status.Name,
		Reference:   status.Reference,
		Area:        status.Area,
		Difficulty:  status.Difficulty,
		DayStatus:   status.DayStatus,
		NightStatus: status.NightStatus,
		WayID:       status.WayID,
		MatchTier:   status.MatchTier,
		Confidence:  status.Confidence,
	}
	if status.WayID != 0 {
		view.WayURL = trail.WayURL(status.WayID)
	}
	return view
}

// FromTrailStatuses converts a slice of stored trail rows.
func FromTrailStatuses(statuses []store.TrailStatus) []TrailStatusView {
	if len(statuses) == 0 {
		return nil
	}
	views := make([]TrailStatusView, len(statuses))
	for i, status := range statuses {
		views[i] = FromTrailStatus(status)
	}
	return views
}

// FromCatalogEntry converts a catalog entry to its wire form.
func FromCatalogEntry(entry *trail.CatalogEntry) CatalogEntryView {
	return CatalogEntryView{
		ID:         entry.ID,
		Name:       entry.Name,
		Reference:  entry.Reference,
		Difficulty: entry.Difficulty,
		Category:   string(entry.Category),
		WayURL:     entry.WayURL(),
	}
}
