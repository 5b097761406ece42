package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"corduroy/internal/config"
	"corduroy/internal/logging"
	"corduroy/internal/match"
	"corduroy/internal/notifications"
	"corduroy/internal/osmcache"
	"corduroy/internal/overpass"
	"corduroy/internal/report"
	"corduroy/internal/store"
)

// Manager coordinates catalog refresh and poll cycles.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	notifier notifications.Service

	overpass *overpass.Client
	cache    *osmcache.Cache
	reports  *report.Client
	resolver *match.Resolver

	pollInterval   time.Duration
	refreshEvery   time.Duration
	catalog        atomic.Pointer[match.Catalog]
	catalogBuiltAt atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a poll manager from configuration.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Manager, error) {
	return NewManagerWithNotifier(cfg, st, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a poll manager with a custom notifier
// (used in tests).
func NewManagerWithNotifier(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service) (*Manager, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	opClient, err := overpass.New(cfg.Overpass.URL,
		overpass.WithRetry(cfg.Overpass.MaxAttempts, time.Duration(cfg.Overpass.RetryDelay)*time.Second),
		overpass.WithHTTPClient(httpClientFor(cfg.Overpass.RequestTimeout)),
	)
	if err != nil {
		return nil, err
	}

	reports, err := report.New(cfg.Resort.ConditionsURL,
		report.WithHTTPClient(httpClientFor(cfg.Resort.RequestTimeout)))
	if err != nil {
		return nil, err
	}

	locale, ok := match.LocaleByName(cfg.Matching.Locale)
	if !ok {
		return nil, fmt.Errorf("matching locale %q is not supported", cfg.Matching.Locale)
	}
	resolver := match.NewResolver(locale,
		match.WithFuzzyThreshold(cfg.Matching.FuzzyThreshold))

	return &Manager{
		cfg:          cfg,
		store:        st,
		logger:       logging.NewComponentLogger(logger, "poller"),
		notifier:     notifier,
		overpass:     opClient,
		cache:        osmcache.New(cfg.Overpass.CachePath, logger),
		reports:      reports,
		resolver:     resolver,
		pollInterval: time.Duration(cfg.Workflow.PollIntervalMinutes) * time.Minute,
		refreshEvery: time.Duration(cfg.Workflow.CatalogRefreshHours) * time.Hour,
	}, nil
}

// Catalog returns the currently published catalog, which may be nil before
// the first successful refresh.
func (m *Manager) Catalog() *match.Catalog {
	return m.catalog.Load()
}

// CatalogBuiltAt returns when the published catalog was built, zero when no
// catalog has been published.
func (m *Manager) CatalogBuiltAt() time.Time {
	unix := m.catalogBuiltAt.Load()
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}

// Resolver exposes the configured match resolver for ad-hoc lookups.
func (m *Manager) Resolver() *match.Resolver {
	return m.resolver
}

// LastError returns the most recent cycle error, nil when the last cycle
// succeeded.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Start begins background polling. The first cycle runs immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("poller already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background polling and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the background loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *Manager) cycle(ctx context.Context) {
	if err := m.RunCycle(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		m.setLastError(err)
		m.logger.Error("poll cycle failed", logging.Error(err))
		if notifyErr := m.notifier.NotifyError(ctx, err, "poll cycle"); notifyErr != nil {
			m.logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return
	}
	m.setLastError(nil)
}

func httpClientFor(timeoutSeconds int) *http.Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
