package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveCycle records a completed cycle and its trail statuses in one
// transaction.
func (s *Store) SaveCycle(ctx context.Context, cycle Cycle, statuses []TrailStatus) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin cycle tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cycles (
                id, started_at, completed_at, trails_open, trails_total,
                lifts_open, lifts_total, snow_24h, last_update
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cycle.ID,
			cycle.StartedAt.UTC().Format(time.RFC3339Nano),
			cycle.CompletedAt.UTC().Format(time.RFC3339Nano),
			cycle.TrailsOpen,
			cycle.TrailsTotal,
			cycle.LiftsOpen,
			cycle.LiftsTotal,
			cycle.Snow24h,
			cycle.LastUpdate,
		); err != nil {
			return fmt.Errorf("insert cycle: %w", err)
		}

		for _, status := range statuses {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO trail_status (
                    cycle_id, name, reference, area, difficulty,
                    day_status, night_status, way_id, match_tier, confidence
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				cycle.ID,
				status.Name,
				status.Reference,
				status.Area,
				status.Difficulty,
				status.DayStatus,
				status.NightStatus,
				status.WayID,
				status.MatchTier,
				status.Confidence,
			); err != nil {
				return fmt.Errorf("insert trail status %q: %w", status.Name, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit cycle: %w", err)
		}
		return nil
	})
}

// LatestCycle returns the most recently completed cycle, or nil when the
// database is empty.
func (s *Store) LatestCycle(ctx context.Context) (*Cycle, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, trails_open, trails_total,
                lifts_open, lifts_total, snow_24h, last_update
         FROM cycles ORDER BY completed_at DESC LIMIT 1`)
	cycle, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest cycle: %w", err)
	}
	return cycle, nil
}

// CycleCount returns the number of recorded cycles.
func (s *Store) CycleCount(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM cycles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cycles: %w", err)
	}
	return count, nil
}

// StatusesForCycle returns the trail rows of one cycle in insertion order.
func (s *Store) StatusesForCycle(ctx context.Context, cycleID string) ([]TrailStatus, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cycle_id, name, reference, area, difficulty,
                day_status, night_status, way_id, match_tier, confidence
         FROM trail_status WHERE cycle_id = ? ORDER BY id`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query cycle statuses: %w", err)
	}
	defer rows.Close()
	return collectStatuses(rows)
}

// LatestStatuses returns the trail rows of the most recent cycle, or nil when
// no cycle has been recorded.
func (s *Store) LatestStatuses(ctx context.Context) ([]TrailStatus, error) {
	cycle, err := s.LatestCycle(ctx)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, nil
	}
	return s.StatusesForCycle(ctx, cycle.ID)
}

// WayHistory returns up to limit status rows for one OSM way, newest first.
func (s *Store) WayHistory(ctx context.Context, wayID int64, limit int) ([]TrailStatus, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.id, ts.cycle_id, ts.name, ts.reference, ts.area, ts.difficulty,
                ts.day_status, ts.night_status, ts.way_id, ts.match_tier, ts.confidence
         FROM trail_status ts
         JOIN cycles c ON c.id = ts.cycle_id
         WHERE ts.way_id = ?
         ORDER BY c.completed_at DESC
         LIMIT ?`, wayID, limit)
	if err != nil {
		return nil, fmt.Errorf("query way history: %w", err)
	}
	defer rows.Close()
	return collectStatuses(rows)
}

// PruneCycles deletes cycles older than the cutoff. Status rows cascade.
func (s *Store) PruneCycles(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var deleted int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx,
			"DELETE FROM cycles WHERE completed_at < ?",
			cutoff.UTC().Format(time.RFC3339Nano))
		if execErr != nil {
			return execErr
		}
		deleted, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune cycles: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*Cycle, error) {
	var (
		cycle     Cycle
		started   string
		completed string
	)
	if err := row.Scan(
		&cycle.ID, &started, &completed,
		&cycle.TrailsOpen, &cycle.TrailsTotal,
		&cycle.LiftsOpen, &cycle.LiftsTotal,
		&cycle.Snow24h, &cycle.LastUpdate,
	); err != nil {
		return nil, err
	}
	var err error
	if cycle.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if cycle.CompletedAt, err = time.Parse(time.RFC3339Nano, completed); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	return &cycle, nil
}

func collectStatuses(rows *sql.Rows) ([]TrailStatus, error) {
	var statuses []TrailStatus
	for rows.Next() {
		var status TrailStatus
		if err := rows.Scan(
			&status.ID, &status.CycleID, &status.Name, &status.Reference,
			&status.Area, &status.Difficulty, &status.DayStatus,
			&status.NightStatus, &status.WayID, &status.MatchTier,
			&status.Confidence,
		); err != nil {
			return nil, fmt.Errorf("scan trail status: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trail statuses: %w", err)
	}
	return statuses, nil
}
