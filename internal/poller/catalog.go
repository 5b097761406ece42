package poller

import (
	"context"
	"fmt"
	"time"

	"corduroy/internal/logging"
	"corduroy/internal/match"
	"corduroy/internal/overpass"
	"corduroy/internal/trail"
)

func (m *Manager) cacheTTL() time.Duration {
	hours := m.cfg.Overpass.CacheTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// ensureCatalog returns the published catalog, rebuilding it when missing or
// older than the configured refresh interval.
func (m *Manager) ensureCatalog(ctx context.Context) (*match.Catalog, error) {
	if catalog := m.catalog.Load(); catalog != nil {
		builtAt := m.CatalogBuiltAt()
		if m.refreshEvery <= 0 || time.Since(builtAt) < m.refreshEvery {
			return catalog, nil
		}
	}
	return m.RefreshCatalog(ctx)
}

// RefreshCatalog rebuilds the catalog from the feature cache when fresh,
// falling back to Overpass otherwise. A stale cache still serves as a last
// resort when Overpass is unreachable.
func (m *Manager) RefreshCatalog(ctx context.Context) (*match.Catalog, error) {
	features, fetchedAt, err := m.loadFeatures(ctx)
	if err != nil {
		return nil, err
	}

	catalog := match.BuildCatalog(features)
	m.catalog.Store(catalog)
	m.catalogBuiltAt.Store(time.Now().Unix())
	m.logger.Info("catalog published",
		logging.Int("features", len(features)),
		logging.Int("entries", catalog.Len()),
		logging.String("fetched_at", fetchedAt.UTC().Format(time.RFC3339)),
	)
	return catalog, nil
}

func (m *Manager) loadFeatures(ctx context.Context) ([]trail.Feature, time.Time, error) {
	snapshot, cached := m.cache.Load()
	if cached && snapshot.Fresh(m.cacheTTL(), time.Now()) {
		m.logger.Debug("using cached features", logging.Int("count", len(snapshot.Features)))
		return snapshot.Features, snapshot.FetchedAt, nil
	}

	area := overpass.Area{
		Latitude:     m.cfg.Overpass.Latitude,
		Longitude:    m.cfg.Overpass.Longitude,
		RadiusMeters: m.cfg.Overpass.RadiusMeters,
	}
	features, err := m.overpass.FetchFeatures(ctx, area)
	if err != nil {
		if cached && len(snapshot.Features) > 0 {
			m.logger.Warn("overpass fetch failed, serving stale feature cache",
				logging.Error(err),
				logging.Int("count", len(snapshot.Features)),
			)
			return snapshot.Features, snapshot.FetchedAt, nil
		}
		return nil, time.Time{}, fmt.Errorf("load osm features: %w", err)
	}

	now := time.Now().UTC()
	if storeErr := m.cache.Store(features, now); storeErr != nil {
		m.logger.Warn("feature cache write failed", logging.Error(storeErr))
	}
	return features, now, nil
}
