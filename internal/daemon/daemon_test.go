package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corduroy/internal/api"
	"corduroy/internal/config"
	"corduroy/internal/logging"
	"corduroy/internal/poller"
	"corduroy/internal/store"
	"corduroy/internal/testsupport"
)

const overpassPayload = `{
  "elements": [
    {"type": "way", "id": 102, "tags": {"name": "La Coulée", "ref": "12", "piste:type": "downhill"}},
    {"type": "way", "id": 103, "tags": {"name": "Miami", "piste:type": "downhill"}}
  ]
}`

const conditionsPage = `<html><body>
<div class="maj-time">Mise à jour le 14 février à 7 h 45</div>
<div id="recap-pistes">
  <div class="dash-resume">
    <div class="etat"><span class="txt-data">1</span><span class="total">/2</span></div>
  </div>
  <div class="dash-detail">
    <div class="bloc_versant">
      <span class="titre">Versant du Village</span>
      <div class="liste">
        <span class="numero">12</span>
        <span class="nom">La Coulée</span>
        <span class="jour">Ouverte</span>
      </div>
      <div class="liste">
        <span class="nom">Miami</span>
        <span class="jour">Fermée</span>
      </div>
    </div>
  </div>
</div>
</body></html>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(overpassPayload))
	}))
	t.Cleanup(overpass.Close)
	conditions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(conditionsPage))
	}))
	t.Cleanup(conditions.Close)

	return testsupport.NewConfig(t,
		testsupport.WithOverpassURL(overpass.URL),
		testsupport.WithConditionsURL(conditions.URL),
	)
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *store.Store, *poller.Manager) {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	manager, err := poller.NewManager(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("poller.NewManager: %v", err)
	}
	d, err := New(cfg, st, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, st, manager
}

func startDaemon(t *testing.T, d *Daemon) {
	t.Helper()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)
}

func getJSON(t *testing.T, d *Daemon, path string, out any) int {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + d.api.addr() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	d, _, manager := newTestDaemon(t, cfg)

	startDaemon(t, d)
	status := d.Status()
	if !status.Running {
		t.Error("Status.Running = false after Start")
	}
	if status.PID == 0 || status.DBPath == "" || status.LockFilePath == "" {
		t.Errorf("incomplete status: %+v", status)
	}
	if !manager.Running() {
		t.Error("poller not running after daemon start")
	}

	if err := d.Start(context.Background()); err == nil {
		t.Error("second Start on same daemon succeeded, want error")
	}

	d.Stop()
	if d.Status().Running {
		t.Error("Status.Running = true after Stop")
	}
	if manager.Running() {
		t.Error("poller still running after daemon stop")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testConfig(t)
	first, _, _ := newTestDaemon(t, cfg)
	startDaemon(t, first)

	// A second daemon over the same data directory must refuse to start.
	cfg2 := *cfg
	cfg2.Paths.APIBind = "127.0.0.1:0"
	second, _, _ := newTestDaemon(t, &cfg2)
	err := second.Start(context.Background())
	if err == nil {
		second.Stop()
		t.Fatal("second daemon instance started, want lock conflict")
	}
}

func TestAPIStatus(t *testing.T) {
	cfg := testConfig(t)
	d, _, manager := newTestDaemon(t, cfg)

	// Publish a catalog before starting so the handler has deterministic data.
	if _, err := manager.RefreshCatalog(context.Background()); err != nil {
		t.Fatalf("RefreshCatalog: %v", err)
	}
	startDaemon(t, d)

	var payload api.DaemonStatus
	if code := getJSON(t, d, "/api/status", &payload); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if !payload.Running {
		t.Error("Running = false")
	}
	if payload.Resort != cfg.Resort.Name {
		t.Errorf("Resort = %q, want %q", payload.Resort, cfg.Resort.Name)
	}
	if payload.CatalogSize != 2 {
		t.Errorf("CatalogSize = %d, want 2", payload.CatalogSize)
	}
	if payload.CatalogBuiltAt == nil || payload.CatalogBuiltAt.IsZero() {
		t.Error("CatalogBuiltAt missing")
	}
}

func TestAPITrails(t *testing.T) {
	cfg := testConfig(t)
	d, _, manager := newTestDaemon(t, cfg)

	// Run one synchronous cycle so the latest-cycle rows exist before any
	// request arrives.
	if err := manager.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	startDaemon(t, d)

	var payload api.TrailListResponse
	if code := getJSON(t, d, "/api/trails", &payload); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if payload.Cycle == nil {
		t.Fatal("Cycle missing from response")
	}
	if payload.Cycle.TrailsOpen != "1" || payload.Cycle.TrailsTotal != "2" {
		t.Errorf("cycle counts = %s/%s", payload.Cycle.TrailsOpen, payload.Cycle.TrailsTotal)
	}
	if len(payload.Trails) < 2 {
		t.Fatalf("len(Trails) = %d, want at least 2", len(payload.Trails))
	}
	coulee := payload.Trails[0]
	if coulee.Name != "La Coulée" || coulee.WayID != 102 || coulee.MatchTier != "exact" {
		t.Errorf("first trail = %+v", coulee)
	}
	if coulee.WayURL == "" {
		t.Error("matched trail missing WayURL")
	}
}

func TestAPITrailHistory(t *testing.T) {
	cfg := testConfig(t)
	d, _, manager := newTestDaemon(t, cfg)
	if err := manager.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	startDaemon(t, d)

	var payload api.TrailHistoryResponse
	if code := getJSON(t, d, "/api/trails/102", &payload); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if payload.WayID != 102 {
		t.Errorf("WayID = %d", payload.WayID)
	}
	if payload.WayURL != "https://www.openstreetmap.org/way/102" {
		t.Errorf("WayURL = %q", payload.WayURL)
	}
	if payload.Name != "La Coulée" {
		t.Errorf("Name = %q, want catalog name", payload.Name)
	}
	if len(payload.History) != 1 {
		t.Fatalf("len(History) = %d, want 1", len(payload.History))
	}
	if payload.History[0].DayStatus != "Ouverte" {
		t.Errorf("History[0].DayStatus = %q", payload.History[0].DayStatus)
	}

	if code := getJSON(t, d, "/api/trails/not-a-number", nil); code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", code)
	}
	if code := getJSON(t, d, "/api/trails/102/extra", nil); code != http.StatusNotFound {
		t.Errorf("nested path status = %d, want 404", code)
	}
}

func TestAPICatalog(t *testing.T) {
	cfg := testConfig(t)
	d, _, manager := newTestDaemon(t, cfg)
	if _, err := manager.RefreshCatalog(context.Background()); err != nil {
		t.Fatalf("RefreshCatalog: %v", err)
	}
	startDaemon(t, d)

	var payload api.CatalogResponse
	if code := getJSON(t, d, "/api/catalog", &payload); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if payload.BuiltAt == nil {
		t.Fatal("BuiltAt missing")
	}
	if len(payload.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(payload.Entries))
	}
	// Entries arrive in ascending way id order.
	if payload.Entries[0].ID != 102 || payload.Entries[1].ID != 103 {
		t.Errorf("entry order = %d, %d", payload.Entries[0].ID, payload.Entries[1].ID)
	}
	if payload.Entries[0].Reference != "12" {
		t.Errorf("Entries[0].Reference = %q", payload.Entries[0].Reference)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	cfg := testConfig(t)
	d, _, _ := newTestDaemon(t, cfg)
	startDaemon(t, d)

	client := &http.Client{Timeout: 5 * time.Second}
	for _, path := range []string{"/api/status", "/api/trails", "/api/catalog"} {
		resp, err := client.Post(fmt.Sprintf("http://%s%s", d.api.addr(), path), "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager, err := poller.NewManager(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("poller.NewManager: %v", err)
	}
	if _, err := New(nil, st, logging.NewNop(), manager); err == nil {
		t.Error("New with nil config succeeded")
	}
	if _, err := New(cfg, nil, logging.NewNop(), manager); err == nil {
		t.Error("New with nil store succeeded")
	}
	if _, err := New(cfg, st, nil, manager); err == nil {
		t.Error("New with nil logger succeeded")
	}
	if _, err := New(cfg, st, logging.NewNop(), nil); err == nil {
		t.Error("New with nil poller succeeded")
	}
}
