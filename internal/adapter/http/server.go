// Package http exposes the monitoring API: station snapshots, the alert
// feed, forecasts, trip planning, and the mode toggles, alongside the
// usual health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/planner"
)

// Monitor is the engine surface the API reads from and acknowledges
// alerts through.
type Monitor interface {
	CheckReadiness(ctx context.Context) error
	Snapshot() []domain.Station
	Station(id string) (domain.Station, bool)
	Alerts() []domain.AlertEvent
	Notification() *domain.Notification
	AcknowledgeAlert(id string) bool
	AcknowledgeAllAlerts()
}

// ModeController toggles the tick cadence between visual simulation and
// production heartbeat, and records the connectivity signal.
type ModeController interface {
	SetSimulation(enabled bool)
	SetOnline(online bool)
	SimulationEnabled() bool
	Online() bool
}

// Config carries the server's collaborators and the static data served
// as-is: the forecast generated at startup and the shelter directory.
type Config struct {
	Addr     string
	Monitor  Monitor
	Modes    ModeController
	Hourly   []domain.HourlyForecast
	Daily    []domain.DailyForecast
	Shelters []domain.Shelter
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Server exposes the monitoring API over HTTP.
type Server struct {
	httpServer *http.Server
	monitor    Monitor
	modes      ModeController
	hourly     []domain.HourlyForecast
	daily      []domain.DailyForecast
	shelters   []domain.Shelter
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(cfg Config) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		monitor:  cfg.Monitor,
		modes:    cfg.Modes,
		hourly:   cfg.Hourly,
		daily:    cfg.Daily,
		shelters: cfg.Shelters,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/stations/{id}", s.handleStation)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("POST /api/alerts/{id}/ack", s.handleAcknowledge)
	mux.HandleFunc("POST /api/alerts/ack-all", s.handleAcknowledgeAll)
	mux.HandleFunc("GET /api/notification", s.handleNotification)
	mux.HandleFunc("GET /api/forecast/hourly", s.handleHourlyForecast)
	mux.HandleFunc("GET /api/forecast/daily", s.handleDailyForecast)
	mux.HandleFunc("GET /api/shelters", s.handleShelters)
	mux.HandleFunc("GET /api/plan", s.handlePlan)
	mux.HandleFunc("PUT /api/mode", s.handleMode)
	mux.HandleFunc("PUT /api/network", s.handleNetwork)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.monitor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	station, ok := s.monitor.Station(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown station")
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.monitor.Alerts()
	unread := domain.UnreadCount(alerts)

	if r.URL.Query().Get("unread") == "true" {
		filtered := make([]domain.AlertEvent, 0, unread)
		for _, a := range alerts {
			if !a.Acknowledged {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"unread": unread,
	})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.monitor.AcknowledgeAlert(id) {
		writeError(w, http.StatusNotFound, "unknown alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleAcknowledgeAll(w http.ResponseWriter, _ *http.Request) {
	s.monitor.AcknowledgeAllAlerts()
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleNotification(w http.ResponseWriter, _ *http.Request) {
	n := s.monitor.Notification()
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleHourlyForecast(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.hourly)
}

func (s *Server) handleDailyForecast(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.daily)
}

func (s *Server) handleShelters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shelters)
}

// handlePlan projects water levels over the forecast horizon for one
// station and reports the snapshot at the requested departure slot.
// day counts from today (0-4), hour is the local hour of day (0-23).
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	station, ok := s.monitor.Station(q.Get("station"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown station")
		return
	}

	day, err := parseBoundedInt(q.Get("day"), 0, 4)
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer between 0 and 4")
		return
	}
	hour, err := parseBoundedInt(q.Get("hour"), 0, 23)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hour must be an integer between 0 and 23")
		return
	}

	plan := planner.NewPlan(station, s.hourly, day, hour, s.clock.Now().Hour())
	writeJSON(w, http.StatusOK, plan)
}

type modeRequest struct {
	Simulation *bool `json:"simulation"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r.Body, &req); err != nil || req.Simulation == nil {
		writeError(w, http.StatusBadRequest, `body must be {"simulation": bool}`)
		return
	}
	s.modes.SetSimulation(*req.Simulation)
	writeJSON(w, http.StatusOK, map[string]bool{"simulation": s.modes.SimulationEnabled()})
}

type networkRequest struct {
	Online *bool `json:"online"`
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeJSON(r.Body, &req); err != nil || req.Online == nil {
		writeError(w, http.StatusBadRequest, `body must be {"online": bool}`)
		return
	}
	s.modes.SetOnline(*req.Online)
	writeJSON(w, http.StatusOK, map[string]bool{"online": s.modes.Online()})
}

func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseBoundedInt(raw string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, errors.New("out of range")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
