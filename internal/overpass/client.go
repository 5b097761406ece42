package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"corduroy/internal/trail"
)

const (
	defaultTimeout    = 90 * time.Second
	defaultAttempts   = 2
	defaultRetryDelay = 3 * time.Second
)

// Area describes the search region for trail features.
type Area struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

// Client talks to an Overpass API endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client

	maxAttempts int
	retryDelay  time.Duration
	sleeper     func(time.Duration)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry overrides the attempt count and the delay between attempts.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New creates an Overpass client for the given endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("overpass endpoint required")
	}
	client := &Client{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchFeatures queries piste-tagged ways around the area and returns the
// parsed features. Transient failures and empty responses are retried up
// to the configured attempt count with a pause between attempts.
func (c *Client) FetchFeatures(ctx context.Context, area Area) ([]trail.Feature, error) {
	query := buildQuery(area)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		features, err := c.fetchOnce(ctx, query)
		if err == nil && len(features) > 0 {
			return features, nil
		}
		if err == nil {
			err = errors.New("overpass returned no trail features")
		}
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.retryDelay); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("fetch overpass features after %d attempts: %w", c.maxAttempts, lastErr)
}

// FetchWayGeometry fetches the geometry of a single way by id.
func (c *Client) FetchWayGeometry(ctx context.Context, wayID int64) (*trail.Geometry, error) {
	query := fmt.Sprintf("[out:json];\nway(%d);\nout geom;", wayID)
	features, err := c.fetchOnce(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, feature := range features {
		if feature.ID == wayID && !feature.Geometry.Empty() {
			return feature.Geometry, nil
		}
	}
	return nil, fmt.Errorf("way %d has no geometry", wayID)
}

func (c *Client) fetchOnce(ctx context.Context, query string) ([]trail.Feature, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute overpass request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("overpass returned %d (latency=%v)", resp.StatusCode, latency)
	}

	return parseResponse(resp.Body)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// buildQuery produces the Overpass QL for piste ways around the area.
// Ways tagged only piste:name are included to catch partially tagged
// trails.
func buildQuery(area Area) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:60];\n(\n")
	fmt.Fprintf(&b, "  way[\"piste:type\"](around:%d,%.4f,%.4f);\n", area.RadiusMeters, area.Latitude, area.Longitude)
	fmt.Fprintf(&b, "  way[\"piste:name\"](around:%d,%.4f,%.4f);\n", area.RadiusMeters, area.Latitude, area.Longitude)
	fmt.Fprintf(&b, "  relation[\"piste:type\"](around:%d,%.4f,%.4f);\n", area.RadiusMeters, area.Latitude, area.Longitude)
	fmt.Fprintf(&b, ");\nout geom;")
	return b.String()
}
