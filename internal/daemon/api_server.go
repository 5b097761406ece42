package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"corduroy/internal/api"
	"corduroy/internal/config"
	"corduroy/internal/logging"
	"corduroy/internal/trail"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/trails", srv.handleTrails)
	mux.HandleFunc("/api/trails/", srv.handleTrailHistory)
	mux.HandleFunc("/api/catalog", srv.handleCatalog)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, empty before start.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		Resort:       s.daemon.cfg.Resort.Name,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
	}
	if catalog := s.daemon.poller.Catalog(); catalog != nil {
		payload.CatalogSize = catalog.Len()
		builtAt := s.daemon.poller.CatalogBuiltAt()
		payload.CatalogBuiltAt = &builtAt
	}
	if cycle, err := s.daemon.store.LatestCycle(r.Context()); err == nil {
		payload.LastCycle = api.FromCycle(cycle)
	}
	if lastErr := s.daemon.poller.LastError(); lastErr != nil {
		payload.LastError = lastErr.Error()
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleTrails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cycle, err := s.daemon.store.LatestCycle(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response := api.TrailListResponse{Cycle: api.FromCycle(cycle)}
	if cycle != nil {
		statuses, err := s.daemon.store.StatusesForCycle(r.Context(), cycle.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.Trails = api.FromTrailStatuses(statuses)
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleTrailHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/trails/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "trail not found")
		return
	}
	wayID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || wayID <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid way id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.daemon.store.WayHistory(r.Context(), wayID, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response := api.TrailHistoryResponse{
		WayID:   wayID,
		WayURL:  trail.WayURL(wayID),
		History: api.FromTrailStatuses(history),
	}
	if catalog := s.daemon.poller.Catalog(); catalog != nil {
		for _, entry := range catalog.Entries() {
			if entry.ID == wayID {
				response.Name = entry.Name
				response.Geometry = entry.Geometry.GeoJSON()
				break
			}
		}
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	response := api.CatalogResponse{}
	if catalog := s.daemon.poller.Catalog(); catalog != nil {
		builtAt := s.daemon.poller.CatalogBuiltAt()
		response.BuiltAt = &builtAt
		entries := catalog.Entries()
		response.Entries = make([]api.CatalogEntryView, 0, len(entries))
		for _, entry := range entries {
			response.Entries = append(response.Entries, api.FromCatalogEntry(entry))
		}
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
