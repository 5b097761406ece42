// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"corduroy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Overpass.CachePath = filepath.Join(base, "data", "osm_features.json")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithNtfyTopic points notifications at the given endpoint with all
// categories enabled.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
		cfg.Notifications.TrailChanges = true
		cfg.Notifications.Errors = true
	}
}

// WithConditionsURL overrides the scraped conditions page.
func WithConditionsURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Resort.ConditionsURL = url
	}
}

// WithOverpassURL overrides the Overpass endpoint.
func WithOverpassURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Overpass.URL = url
	}
}
