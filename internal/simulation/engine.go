// Package simulation owns live station state and advances it on a tick:
// a fast visual simulation for demos and a slow heartbeat poll for
// production mode. Each advancement derives new readings, detects
// rising-edge threshold crossings, and emits alert events and a
// transient notification. State is replaced wholesale per tick so
// concurrent readers observe either the old or the new snapshot, never
// a partially updated one.
package simulation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/observability"
)

// Params tunes the synthetic motion applied per visual tick.
type Params struct {
	WavePeriod      time.Duration // tidal breathing period divisor
	WaveAmplitude   float64       // cm contributed by the wave component
	NoiseRange      float64       // symmetric random perturbation width, cm
	Smoothing       float64       // factor applied to the combined delta
	SolarPeriod     time.Duration // slow sine driving simulated solar input
	SolarAmplitude  float64       // volts at solar peak
	NotificationTTL time.Duration // how long a transient notification lives
}

// DefaultParams returns the tuning used by the demo deployment: a
// roughly 19-second breathing cycle with gentle noise, heavily smoothed
// so the 100ms visual tick reads as fluid motion.
func DefaultParams() Params {
	return Params{
		WavePeriod:      3 * time.Second,
		WaveAmplitude:   2,
		NoiseRange:      0.5,
		Smoothing:       0.2,
		SolarPeriod:     10 * time.Second,
		SolarAmplitude:  6,
		NotificationTTL: 5 * time.Second,
	}
}

// Store persists engine state after each mutation. Writes are
// best-effort: failures are logged and counted, never propagated into
// advancement.
type Store interface {
	SaveStations(stations []domain.Station) error
	SaveAlerts(alerts []domain.AlertEvent) error
}

// AlertPublisher forwards newly generated alert events to an external
// sink (e.g. a Kafka topic). Optional; failures never block a tick.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.AlertEvent) error
}

// Engine is the explicit state container for the simulation: it owns
// the station snapshot, the alert feed, and the transient notification,
// and is the single writer for all of them.
type Engine struct {
	params  Params
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	store   Store          // may be nil
	sink    AlertPublisher // may be nil
	rng     *rand.Rand

	mu           sync.RWMutex
	stations     []domain.Station
	alerts       []domain.AlertEvent
	notification *domain.Notification

	ticked atomic.Bool
}

// EngineConfig wires the engine's collaborators and initial state.
// Store and Sink are optional; a nil Clock falls back to the real one.
type EngineConfig struct {
	Params   Params
	Stations []domain.Station
	Alerts   []domain.AlertEvent
	Clock    clockwork.Clock
	Rand     *rand.Rand
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Store    Store
	Sink     AlertPublisher
}

// NewEngine creates an Engine over the given initial state. The rand
// source drives the per-tick noise; tests pass a seeded source.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Clock.Now().UnixNano()))
	}
	return &Engine{
		params:   cfg.Params,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		store:    cfg.Store,
		sink:     cfg.Sink,
		rng:      cfg.Rand,
		stations: cfg.Stations,
		alerts:   cfg.Alerts,
	}
}

// CheckReadiness reports whether the engine has applied at least one
// tick since startup.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ticked.Load() {
		return errors.New("engine has not applied any ticks yet")
	}
	return nil
}

// AdvanceVisual applies one visual-simulation tick at now: every online
// station gets a smoothed wave-plus-noise level delta, a simulated solar
// voltage, and a new history entry. Rising-edge critical crossings
// raise an alert and a transient notification.
func (e *Engine) AdvanceVisual(now time.Time) {
	e.advance(now, "visual", func(s domain.Station) domain.Reading {
		nowMs := float64(now.UnixMilli())

		wave := math.Sin(nowMs/float64(e.params.WavePeriod.Milliseconds())) * e.params.WaveAmplitude
		noise := (e.rng.Float64() - 0.5) * e.params.NoiseRange
		delta := (wave + noise) * e.params.Smoothing

		solar := math.Max(0, math.Sin(nowMs/float64(e.params.SolarPeriod.Milliseconds()))*e.params.SolarAmplitude)

		r := s.LastReading
		r.Timestamp = now
		r.WaterLevel = domain.Round1(domain.ClampLevel(s.LastReading.WaterLevel + delta))
		r.SolarVoltage = domain.Round2(solar)
		return r
	})
}

// AdvanceHeartbeat applies one production heartbeat tick at now: a
// small random perturbation only, no tidal or solar component. Crossing
// detection and alerting still run in this mode.
func (e *Engine) AdvanceHeartbeat(now time.Time) {
	e.advance(now, "heartbeat", func(s domain.Station) domain.Reading {
		delta := (e.rng.Float64() - 0.5) * e.params.NoiseRange

		r := s.LastReading
		r.Timestamp = now
		r.WaterLevel = domain.Round1(domain.ClampLevel(s.LastReading.WaterLevel + delta))
		return r
	})
}

// advance runs one tick: builds a fresh station slice via step, detects
// crossings against the previous readings, and swaps the snapshot in
// under the lock. Offline stations are not advanced.
func (e *Engine) advance(now time.Time, mode string, step func(domain.Station) domain.Reading) {
	start := e.clock.Now()

	e.mu.Lock()

	next := make([]domain.Station, len(e.stations))
	var generated []domain.AlertEvent

	for i, station := range e.stations {
		if station.Status == domain.LevelOffline {
			next[i] = station
			continue
		}

		prevLevel := station.LastReading.WaterLevel
		reading := step(station)
		station.ApplyReading(reading)
		next[i] = station

		// Edge-triggered: only the transition from at-or-below to
		// strictly-above the critical threshold raises an alert, so a
		// level that stays high does not re-alert every tick.
		if prevLevel <= station.Thresholds.Critical && reading.WaterLevel > station.Thresholds.Critical {
			alert := domain.NewCriticalCrossingAlert(station, reading.WaterLevel, now)
			generated = append(generated, alert)
			e.notification = &domain.Notification{
				Severity:  domain.LevelCritical,
				Message:   alert.StationName + ": critical level reached (" + formatLevel(reading.WaterLevel) + "cm)",
				ExpiresAt: now.Add(e.params.NotificationTTL),
			}
		}

		e.metrics.WaterLevel.WithLabelValues(station.ID).Set(reading.WaterLevel)
	}

	e.stations = next
	if len(generated) > 0 {
		e.alerts = append(generated, e.alerts...)
	}
	alertsSnapshot := copyAlerts(e.alerts)
	e.metrics.AlertsUnread.Set(float64(domain.UnreadCount(e.alerts)))

	e.mu.Unlock()

	e.ticked.Store(true)
	e.metrics.TicksTotal.WithLabelValues(mode).Inc()
	e.metrics.TickDuration.Observe(e.clock.Since(start).Seconds())

	for _, alert := range generated {
		e.metrics.AlertsGenerated.Inc()
		e.logger.Warn("critical crossing detected",
			"station_id", alert.StationID,
			"station", alert.StationName,
			"alert_id", alert.ID,
		)
		e.publish(alert)
	}

	e.persistStations(next)
	if len(generated) > 0 {
		e.persistAlerts(alertsSnapshot)
	}
}

// Snapshot returns a copy of the current station collection.
func (e *Engine) Snapshot() []domain.Station {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Station, len(e.stations))
	copy(out, e.stations)
	return out
}

// Station returns the station with the given ID, if present.
func (e *Engine) Station(id string) (domain.Station, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.stations {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Station{}, false
}

// Alerts returns a copy of the alert feed, most recent first.
func (e *Engine) Alerts() []domain.AlertEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyAlerts(e.alerts)
}

// copyAlerts snapshots the feed so callers and persistence never share
// a backing array with the live slice the acknowledge paths mutate.
func copyAlerts(alerts []domain.AlertEvent) []domain.AlertEvent {
	out := make([]domain.AlertEvent, len(alerts))
	copy(out, alerts)
	return out
}

// Notification returns the current transient notification, or nil if
// none is active or the last one has expired.
func (e *Engine) Notification() *domain.Notification {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.notification == nil || !e.clock.Now().Before(e.notification.ExpiresAt) {
		return nil
	}
	n := *e.notification
	return &n
}

// AcknowledgeAlert marks one alert as read. Idempotent. Returns false
// if the alert does not exist.
func (e *Engine) AcknowledgeAlert(id string) bool {
	e.mu.Lock()
	ok := domain.Acknowledge(e.alerts, id)
	alerts := copyAlerts(e.alerts)
	e.metrics.AlertsUnread.Set(float64(domain.UnreadCount(alerts)))
	e.mu.Unlock()

	if ok {
		e.persistAlerts(alerts)
	}
	return ok
}

// AcknowledgeAllAlerts marks the whole feed as read.
func (e *Engine) AcknowledgeAllAlerts() {
	e.mu.Lock()
	domain.AcknowledgeAll(e.alerts)
	alerts := copyAlerts(e.alerts)
	e.metrics.AlertsUnread.Set(0)
	e.mu.Unlock()

	e.persistAlerts(alerts)
}

func (e *Engine) persistStations(stations []domain.Station) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveStations(stations); err != nil {
		e.metrics.PersistenceFailures.Inc()
		e.logger.Warn("station cache write failed", "error", err)
	}
}

func (e *Engine) persistAlerts(alerts []domain.AlertEvent) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveAlerts(alerts); err != nil {
		e.metrics.PersistenceFailures.Inc()
		e.logger.Warn("alert cache write failed", "error", err)
	}
}

// publish forwards an alert to the external sink without blocking the
// tick loop.
func (e *Engine) publish(alert domain.AlertEvent) {
	if e.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.sink.PublishAlert(ctx, alert); err != nil {
			e.logger.Warn("alert publish failed", "alert_id", alert.ID, "error", err)
		}
	}()
}

func formatLevel(level float64) string {
	return strconv.FormatFloat(level, 'f', 0, 64)
}
