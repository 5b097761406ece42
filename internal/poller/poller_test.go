package poller_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"corduroy/internal/config"
	"corduroy/internal/logging"
	"corduroy/internal/osmcache"
	"corduroy/internal/poller"
	"corduroy/internal/testsupport"
	"corduroy/internal/trail"
)

const overpassPayload = `{
  "elements": [
    {
      "type": "way",
      "id": 102,
      "tags": {"name": "La Coulée", "ref": "12", "piste:type": "downhill", "piste:difficulty": "intermediate"}
    },
    {
      "type": "way",
      "id": 103,
      "tags": {"name": "Miami", "piste:type": "downhill", "piste:difficulty": "intermediate"}
    }
  ]
}`

func conditionsHTML(couleeDay, miamiDay string) string {
	return fmt.Sprintf(`<html><body>
<h1 class="date_encours">Samedi 14 février 2026</h1>
<div class="maj-time">Mise à jour le 14 février à 7 h 45</div>
<div id="dash-acc"><div class="data_metric">5 cm</div></div>
<div id="recap-pistes">
  <div class="dash-resume">
    <div class="etat"><span class="txt-data">2</span><span class="total">/3</span></div>
  </div>
  <div class="dash-detail">
    <div class="bloc_versant">
      <span class="titre">Versant du Village</span>
      <div class="liste">
        <span class="numero">12</span>
        <span class="nom">La Coulée</span>
        <span class="jour">%s</span>
      </div>
      <div class="liste">
        <span class="nom">Miami</span>
        <span class="jour">%s</span>
      </div>
      <div class="liste">
        <span class="nom">Inconnue</span>
        <span class="jour">Fermée</span>
      </div>
    </div>
  </div>
</div>
<div id="recap-remontes">
  <div class="dash-resume">
    <div class="etat"><span class="txt-data">6</span><span class="total">/8</span></div>
  </div>
</div>
</body></html>`, couleeDay, miamiDay)
}

// conditionsServer serves successive pages, repeating the last one.
func conditionsServer(t *testing.T, pages ...string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	served := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		page := pages[min(served, len(pages)-1)]
		served++
		mu.Unlock()
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func overpassServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	var mu sync.Mutex
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		_, _ = w.Write([]byte(overpassPayload))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

type recordingNotifier struct {
	mu        sync.Mutex
	opened    []string
	closed    []string
	completed int
	errors    []string
}

func (n *recordingNotifier) NotifyTrailOpened(_ context.Context, trailName, area string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, trailName)
	return nil
}

func (n *recordingNotifier) NotifyTrailClosed(_ context.Context, trailName, area string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, trailName)
	return nil
}

func (n *recordingNotifier) NotifyCycleCompleted(_ context.Context, open, total string, matched, unmatched int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
	return nil
}

func (n *recordingNotifier) NotifyError(_ context.Context, err error, context string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, context)
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

func newTestManager(t *testing.T, cfg *config.Config, notifier *recordingNotifier) *poller.Manager {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	manager, err := poller.NewManagerWithNotifier(cfg, st, logging.NewNop(), notifier)
	if err != nil {
		t.Fatalf("NewManagerWithNotifier: %v", err)
	}
	return manager
}

func TestRunCycleEndToEnd(t *testing.T) {
	overpass, _ := overpassServer(t)
	conditions := conditionsServer(t, conditionsHTML("Ouverte", "Fermée"))
	cfg := testsupport.NewConfig(t,
		testsupport.WithOverpassURL(overpass.URL),
		testsupport.WithConditionsURL(conditions.URL),
	)
	notifier := &recordingNotifier{}
	manager := newTestManager(t, cfg, notifier)
	st := testsupport.MustOpenStore(t, cfg)

	if err := manager.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if manager.Catalog() == nil {
		t.Fatal("catalog not published after cycle")
	}
	if manager.Catalog().Len() != 2 {
		t.Errorf("catalog size = %d, want 2", manager.Catalog().Len())
	}
	if manager.CatalogBuiltAt().IsZero() {
		t.Error("CatalogBuiltAt is zero after cycle")
	}

	cycle, err := st.LatestCycle(context.Background())
	if err != nil {
		t.Fatalf("LatestCycle: %v", err)
	}
	if cycle == nil {
		t.Fatal("no cycle persisted")
	}
	if cycle.TrailsOpen != "2" || cycle.TrailsTotal != "3" {
		t.Errorf("trail counts = %s/%s", cycle.TrailsOpen, cycle.TrailsTotal)
	}
	if cycle.LiftsOpen != "6" || cycle.LiftsTotal != "8" {
		t.Errorf("lift counts = %s/%s", cycle.LiftsOpen, cycle.LiftsTotal)
	}
	if cycle.Snow24h != "5 cm" {
		t.Errorf("Snow24h = %q", cycle.Snow24h)
	}
	if cycle.LastUpdate != "14 février à 7 h 45" {
		t.Errorf("LastUpdate = %q", cycle.LastUpdate)
	}

	statuses, err := st.StatusesForCycle(context.Background(), cycle.ID)
	if err != nil {
		t.Fatalf("StatusesForCycle: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("len(statuses) = %d, want 3", len(statuses))
	}
	coulee := statuses[0]
	if coulee.WayID != 102 || coulee.MatchTier != "exact" || coulee.Confidence != 1 {
		t.Errorf("La Coulée match = way %d tier %q conf %v", coulee.WayID, coulee.MatchTier, coulee.Confidence)
	}
	if statuses[1].WayID != 103 || statuses[1].MatchTier != "exact" {
		t.Errorf("Miami match = way %d tier %q", statuses[1].WayID, statuses[1].MatchTier)
	}
	unknown := statuses[2]
	if unknown.WayID != 0 || unknown.MatchTier != "" {
		t.Errorf("Inconnue should be unmatched, got way %d tier %q", unknown.WayID, unknown.MatchTier)
	}

	if notifier.completed != 1 {
		t.Errorf("cycle notifications = %d, want 1", notifier.completed)
	}
	if len(notifier.opened) != 0 || len(notifier.closed) != 0 {
		t.Errorf("first cycle produced transitions: opened %v closed %v", notifier.opened, notifier.closed)
	}
}

func TestRunCycleNotifiesTransitions(t *testing.T) {
	overpass, _ := overpassServer(t)
	conditions := conditionsServer(t,
		conditionsHTML("Ouverte", "Fermée"),
		conditionsHTML("Fermée", "Ouverte"),
	)
	cfg := testsupport.NewConfig(t,
		testsupport.WithOverpassURL(overpass.URL),
		testsupport.WithConditionsURL(conditions.URL),
	)
	notifier := &recordingNotifier{}
	manager := newTestManager(t, cfg, notifier)

	ctx := context.Background()
	if err := manager.RunCycle(ctx); err != nil {
		t.Fatalf("first RunCycle: %v", err)
	}
	if err := manager.RunCycle(ctx); err != nil {
		t.Fatalf("second RunCycle: %v", err)
	}

	if len(notifier.opened) != 1 || notifier.opened[0] != "Miami" {
		t.Errorf("opened = %v, want [Miami]", notifier.opened)
	}
	if len(notifier.closed) != 1 || notifier.closed[0] != "La Coulée" {
		t.Errorf("closed = %v, want [La Coulée]", notifier.closed)
	}
	if notifier.completed != 2 {
		t.Errorf("cycle notifications = %d, want 2", notifier.completed)
	}
}

func TestRunCycleConditionsFailure(t *testing.T) {
	overpass, _ := overpassServer(t)
	conditions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(conditions.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithOverpassURL(overpass.URL),
		testsupport.WithConditionsURL(conditions.URL),
	)
	manager := newTestManager(t, cfg, &recordingNotifier{})

	if err := manager.RunCycle(context.Background()); err == nil {
		t.Fatal("RunCycle succeeded with conditions page down, want error")
	}
}

func TestRefreshCatalogPrefersFreshCache(t *testing.T) {
	overpass, hits := overpassServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithOverpassURL(overpass.URL))

	cache := osmcache.New(cfg.Overpass.CachePath, logging.NewNop())
	if err := cache.Store(testsupport.Features(), time.Now()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	manager := newTestManager(t, cfg, &recordingNotifier{})
	catalog, err := manager.RefreshCatalog(context.Background())
	if err != nil {
		t.Fatalf("RefreshCatalog: %v", err)
	}
	if catalog.Len() != len(testsupport.Features()) {
		t.Errorf("catalog size = %d, want %d", catalog.Len(), len(testsupport.Features()))
	}
	if *hits != 0 {
		t.Errorf("overpass hit %d times with a fresh cache, want 0", *hits)
	}
}

func TestRefreshCatalogFallsBackToStaleCache(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	t.Cleanup(overpass.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithOverpassURL(overpass.URL))
	cfg.Overpass.MaxAttempts = 1
	cfg.Overpass.RetryDelay = 0

	stale := []trail.Feature{{ID: 101, Name: "Edelweiss", Category: "downhill"}}
	cache := osmcache.New(cfg.Overpass.CachePath, logging.NewNop())
	if err := cache.Store(stale, time.Now().Add(-72*time.Hour)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	manager := newTestManager(t, cfg, &recordingNotifier{})
	catalog, err := manager.RefreshCatalog(context.Background())
	if err != nil {
		t.Fatalf("RefreshCatalog with stale cache fallback: %v", err)
	}
	if catalog.Len() != 1 {
		t.Errorf("catalog size = %d, want 1", catalog.Len())
	}
}

func TestRefreshCatalogFailsWithoutAnySource(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	t.Cleanup(overpass.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithOverpassURL(overpass.URL))
	cfg.Overpass.MaxAttempts = 1
	cfg.Overpass.RetryDelay = 0

	manager := newTestManager(t, cfg, &recordingNotifier{})
	if _, err := manager.RefreshCatalog(context.Background()); err == nil {
		t.Fatal("RefreshCatalog succeeded with no cache and a failing endpoint, want error")
	}
}

func TestStartStop(t *testing.T) {
	overpass, _ := overpassServer(t)
	conditions := conditionsServer(t, conditionsHTML("Ouverte", "Fermée"))
	cfg := testsupport.NewConfig(t,
		testsupport.WithOverpassURL(overpass.URL),
		testsupport.WithConditionsURL(conditions.URL),
	)
	manager := newTestManager(t, cfg, &recordingNotifier{})

	ctx := context.Background()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !manager.Running() {
		t.Error("Running = false after Start")
	}
	if err := manager.Start(ctx); err == nil {
		t.Error("second Start succeeded, want error")
	}

	manager.Stop()
	if manager.Running() {
		t.Error("Running = true after Stop")
	}
	// Stop again is a no-op.
	manager.Stop()
}
