package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"corduroy/internal/logging"
	"corduroy/internal/store"
)

// RunCycle executes one scrape-match-persist cycle. Exported so the daemon
// API and tests can trigger a poll outside the ticker.
func (m *Manager) RunCycle(ctx context.Context) error {
	cycleID := uuid.NewString()
	logger := m.logger.With(logging.String(logging.FieldCycleID, cycleID))
	startedAt := time.Now().UTC()

	catalog, err := m.ensureCatalog(ctx)
	if err != nil {
		return err
	}

	rep, err := m.reports.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch conditions: %w", err)
	}

	previous, err := m.store.LatestStatuses(ctx)
	if err != nil {
		return fmt.Errorf("load previous cycle: %w", err)
	}

	records := rep.Records()
	statuses := make([]store.TrailStatus, 0, len(records))
	matched := 0
	for _, record := range records {
		status := store.TrailStatus{
			CycleID:     cycleID,
			Name:        record.Name,
			Reference:   record.Reference,
			Area:        record.Area,
			Difficulty:  record.Difficulty,
			DayStatus:   record.DayStatus,
			NightStatus: record.NightStatus,
		}
		if result := m.resolver.Match(record, catalog); result != nil {
			status.WayID = result.Entry.ID
			status.MatchTier = result.Tier.String()
			status.Confidence = result.Confidence
			matched++
		}
		statuses = append(statuses, status)
	}

	cycle := store.Cycle{
		ID:          cycleID,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		TrailsOpen:  rep.Trails.Day.Open,
		TrailsTotal: rep.Trails.Day.Total,
		LiftsOpen:   rep.Lifts.Day.Open,
		LiftsTotal:  rep.Lifts.Day.Total,
		Snow24h:     rep.Snow.Last24h,
		LastUpdate:  rep.LastUpdate,
	}
	if err := m.store.SaveCycle(ctx, cycle, statuses); err != nil {
		return fmt.Errorf("persist cycle: %w", err)
	}

	unmatched := len(statuses) - matched
	logger.Info("poll cycle complete",
		logging.Int("trails", len(statuses)),
		logging.Int("matched", matched),
		logging.Int("unmatched", unmatched),
		logging.Duration("elapsed", time.Since(startedAt)),
	)

	m.notifyTransitions(ctx, logger, previous, statuses)
	if err := m.notifier.NotifyCycleCompleted(ctx, cycle.TrailsOpen, cycle.TrailsTotal, matched, unmatched); err != nil {
		logger.Warn("cycle notification failed", logging.Error(err))
	}
	return nil
}

// notifyTransitions compares the new statuses against the previous cycle and
// notifies once per trail that opened or closed. Trails are keyed by matched
// way when available so renamed rows still pair up, by name otherwise.
func (m *Manager) notifyTransitions(ctx context.Context, logger *slog.Logger, previous, current []store.TrailStatus) {
	if len(previous) == 0 {
		return
	}
	prevOpen := make(map[string]bool, len(previous))
	for _, status := range previous {
		prevOpen[statusKey(status)] = status.Open()
	}
	for _, status := range current {
		wasOpen, seen := prevOpen[statusKey(status)]
		if !seen || wasOpen == status.Open() {
			continue
		}
		var err error
		if status.Open() {
			err = m.notifier.NotifyTrailOpened(ctx, status.Name, status.Area)
		} else {
			err = m.notifier.NotifyTrailClosed(ctx, status.Name, status.Area)
		}
		if err != nil {
			logger.Warn("trail transition notification failed",
				logging.String("trail", status.Name),
				logging.Error(err),
			)
		}
	}
}

func statusKey(status store.TrailStatus) string {
	if status.WayID != 0 {
		return fmt.Sprintf("way:%d", status.WayID)
	}
	return "name:" + status.Name
}
