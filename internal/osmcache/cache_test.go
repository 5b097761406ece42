package osmcache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"corduroy/internal/logging"
	"corduroy/internal/osmcache"
	"corduroy/internal/trail"
)

func sampleFeatures() []trail.Feature {
	return []trail.Feature{
		{ID: 101, Name: "Edelweiss", Difficulty: "easy", Category: "downhill"},
		{ID: 102, Name: "La Coulée", Reference: "12", Difficulty: "intermediate", Category: "downhill"},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osm_features.json")
	cache := osmcache.New(path, logging.NewNop())

	fetchedAt := time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC)
	if err := cache.Store(sampleFeatures(), fetchedAt); err != nil {
		t.Fatalf("Store: %v", err)
	}

	snapshot, ok := cache.Load()
	if !ok {
		t.Fatal("Load returned ok=false after Store")
	}
	if !snapshot.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", snapshot.FetchedAt, fetchedAt)
	}
	if len(snapshot.Features) != 2 {
		t.Fatalf("len(Features) = %d, want 2", len(snapshot.Features))
	}
	if snapshot.Features[1].Name != "La Coulée" {
		t.Errorf("Features[1].Name = %q, want %q", snapshot.Features[1].Name, "La Coulée")
	}
	if snapshot.Features[1].Reference != "12" {
		t.Errorf("Features[1].Reference = %q, want %q", snapshot.Features[1].Reference, "12")
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	cache := osmcache.New(filepath.Join(t.TempDir(), "missing.json"), logging.NewNop())
	if snapshot, ok := cache.Load(); ok || snapshot != nil {
		t.Fatalf("Load on missing file = (%v, %v), want (nil, false)", snapshot, ok)
	}
}

func TestCacheLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osm_features.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := osmcache.New(path, logging.NewNop())
	if snapshot, ok := cache.Load(); ok || snapshot != nil {
		t.Fatalf("Load on corrupt file = (%v, %v), want (nil, false)", snapshot, ok)
	}
}

func TestCacheLoadIgnoresEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osm_features.json")
	if err := os.WriteFile(path, []byte(`{"fetched_at":"2026-02-14T08:30:00Z","features":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := osmcache.New(path, logging.NewNop())
	if _, ok := cache.Load(); ok {
		t.Fatal("Load returned ok=true for snapshot with no features")
	}
}

func TestCacheEmptyPathIsNoop(t *testing.T) {
	cache := osmcache.New("", logging.NewNop())
	if err := cache.Store(sampleFeatures(), time.Now()); err != nil {
		t.Fatalf("Store with empty path: %v", err)
	}
	if _, ok := cache.Load(); ok {
		t.Fatal("Load with empty path returned ok=true")
	}
}

func TestCacheStoreRefusesEmptyFeatures(t *testing.T) {
	cache := osmcache.New(filepath.Join(t.TempDir(), "osm_features.json"), logging.NewNop())
	if err := cache.Store(nil, time.Now()); err == nil {
		t.Fatal("Store with empty feature set succeeded, want error")
	}
}

func TestSnapshotFresh(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		snapshot *osmcache.Snapshot
		ttl      time.Duration
		want     bool
	}{
		{"nil snapshot", nil, time.Hour, false},
		{"zero ttl", &osmcache.Snapshot{FetchedAt: now}, 0, false},
		{"within ttl", &osmcache.Snapshot{FetchedAt: now.Add(-30 * time.Minute)}, time.Hour, true},
		{"exactly at ttl", &osmcache.Snapshot{FetchedAt: now.Add(-time.Hour)}, time.Hour, false},
		{"past ttl", &osmcache.Snapshot{FetchedAt: now.Add(-2 * time.Hour)}, time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.Fresh(tt.ttl, now); got != tt.want {
				t.Errorf("Fresh = %v, want %v", got, tt.want)
			}
		})
	}
}
