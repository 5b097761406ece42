package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"corduroy/internal/config"
	"corduroy/internal/logging"
	"corduroy/internal/match"
	"corduroy/internal/osmcache"
	"corduroy/internal/overpass"
	"corduroy/internal/trail"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) apiBase() (string, error) {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return "http://" + strings.TrimSpace(*c.apiFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return "", fmt.Errorf("no daemon API address configured; set paths.api_bind or pass --api")
	}
	return "http://" + bind, nil
}

// fetchJSON performs a GET against the daemon API and decodes the response
// into out.
func (c *commandContext) fetchJSON(ctx context.Context, path string, out any) error {
	base, err := c.apiBase()
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, base+path, nil)
	if err != nil {
		return fmt.Errorf("build API request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is corduroyd running?)", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon API: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// loadCatalog builds the trail catalog without a daemon, serving from the
// feature cache when fresh and querying Overpass otherwise.
func (c *commandContext) loadCatalog(ctx context.Context) (*match.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	cache := osmcache.New(cfg.Overpass.CachePath, logging.NewNop())
	ttl := time.Duration(cfg.Overpass.CacheTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	var features []trail.Feature
	if snapshot, ok := cache.Load(); ok && snapshot.Fresh(ttl, time.Now()) {
		features = snapshot.Features
	} else {
		client, err := overpass.New(cfg.Overpass.URL,
			overpass.WithRetry(cfg.Overpass.MaxAttempts, time.Duration(cfg.Overpass.RetryDelay)*time.Second))
		if err != nil {
			return nil, err
		}
		features, err = client.FetchFeatures(ctx, overpass.Area{
			Latitude:     cfg.Overpass.Latitude,
			Longitude:    cfg.Overpass.Longitude,
			RadiusMeters: cfg.Overpass.RadiusMeters,
		})
		if err != nil {
			if snapshot, ok := cache.Load(); ok && len(snapshot.Features) > 0 {
				features = snapshot.Features
			} else {
				return nil, err
			}
		} else if err := cache.Store(features, time.Now().UTC()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: feature cache write failed: %v\n", err)
		}
	}

	return match.BuildCatalog(features), nil
}

func (c *commandContext) resolver() (*match.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	locale, ok := match.LocaleByName(cfg.Matching.Locale)
	if !ok {
		return nil, fmt.Errorf("matching locale %q is not supported", cfg.Matching.Locale)
	}
	return match.NewResolver(locale,
		match.WithFuzzyThreshold(cfg.Matching.FuzzyThreshold)), nil
}
