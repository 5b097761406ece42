package osmcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"corduroy/internal/logging"
	"corduroy/internal/trail"
)

// Snapshot is the cached feature set with its fetch time.
type Snapshot struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Features  []trail.Feature `json:"features"`
}

// Cache provides thread-safe access to the on-disk feature cache. An
// empty path makes every operation a no-op so callers need no nil checks.
type Cache struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a cache backed by the given file path.
func New(path string, logger *slog.Logger) *Cache {
	return &Cache{
		path:   path,
		logger: logging.NewComponentLogger(logger, "osmcache"),
	}
}

// Load reads the cached snapshot. A missing file or empty path returns
// (nil, false); a corrupt file is treated the same after a warning, so a
// bad cache never blocks a fresh fetch.
func (c *Cache) Load() (*Snapshot, bool) {
	if c.path == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("read feature cache failed", logging.Error(err))
		}
		return nil, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("feature cache is corrupt, ignoring",
			logging.String("path", c.path),
			logging.Error(err))
		return nil, false
	}
	if len(snapshot.Features) == 0 {
		return nil, false
	}
	return &snapshot, true
}

// Fresh reports whether the snapshot is younger than ttl.
func (s *Snapshot) Fresh(ttl time.Duration, now time.Time) bool {
	if s == nil || ttl <= 0 {
		return false
	}
	return now.Sub(s.FetchedAt) < ttl
}

// Store persists the features with the current timestamp. The write goes
// through a temp file and rename so readers never observe a partial file.
func (c *Cache) Store(features []trail.Feature, fetchedAt time.Time) error {
	if c.path == "" {
		return nil
	}
	if len(features) == 0 {
		return errors.New("refusing to cache empty feature set")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(Snapshot{FetchedAt: fetchedAt.UTC(), Features: features})
	if err != nil {
		return fmt.Errorf("marshal feature cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".osm_features_*.json")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace feature cache: %w", err)
	}

	c.logger.Debug("cached trail features",
		logging.Int("count", len(features)),
		logging.String("path", c.path))
	return nil
}
