package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"corduroy/internal/match"
)

// normalize expands paths and fills derived defaults after decoding.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Resort.ConditionsURL = strings.TrimSpace(c.Resort.ConditionsURL)
	c.Overpass.URL = strings.TrimSpace(c.Overpass.URL)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Matching.Locale = strings.ToLower(strings.TrimSpace(c.Matching.Locale))

	cachePath := strings.TrimSpace(c.Overpass.CachePath)
	if cachePath == "" && c.Paths.DataDir != "" {
		cachePath = filepath.Join(c.Paths.DataDir, "osm_features.json")
	} else if cachePath != "" {
		if cachePath, err = expandPath(cachePath); err != nil {
			return err
		}
	}
	c.Overpass.CachePath = cachePath

	return nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Resort.ConditionsURL == "" {
		return errors.New("resort conditions_url is required")
	}
	if _, err := url.ParseRequestURI(c.Resort.ConditionsURL); err != nil {
		return fmt.Errorf("resort conditions_url: %w", err)
	}
	if c.Overpass.URL == "" {
		return errors.New("overpass url is required")
	}
	if _, err := url.ParseRequestURI(c.Overpass.URL); err != nil {
		return fmt.Errorf("overpass url: %w", err)
	}
	if c.Overpass.Latitude < -90 || c.Overpass.Latitude > 90 {
		return fmt.Errorf("overpass latitude %v out of range", c.Overpass.Latitude)
	}
	if c.Overpass.Longitude < -180 || c.Overpass.Longitude > 180 {
		return fmt.Errorf("overpass longitude %v out of range", c.Overpass.Longitude)
	}
	if c.Overpass.RadiusMeters <= 0 {
		return fmt.Errorf("overpass radius_meters must be positive, got %d", c.Overpass.RadiusMeters)
	}
	if c.Overpass.MaxAttempts < 1 {
		return fmt.Errorf("overpass max_attempts must be at least 1, got %d", c.Overpass.MaxAttempts)
	}
	if c.Matching.FuzzyThreshold <= 0 || c.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching fuzzy_threshold must be in (0, 1], got %v", c.Matching.FuzzyThreshold)
	}
	if _, ok := match.LocaleByName(c.Matching.Locale); !ok {
		return fmt.Errorf("matching locale %q is not supported", c.Matching.Locale)
	}
	if c.Workflow.PollIntervalMinutes < 1 || c.Workflow.PollIntervalMinutes > 60 {
		return fmt.Errorf("workflow poll_interval_minutes must be between 1 and 60, got %d", c.Workflow.PollIntervalMinutes)
	}
	if c.Workflow.CatalogRefreshHours < 1 {
		return fmt.Errorf("workflow catalog_refresh_hours must be at least 1, got %d", c.Workflow.CatalogRefreshHours)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging format %q is not supported", c.Logging.Format)
	}
	return nil
}
