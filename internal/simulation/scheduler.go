package simulation

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-monitor-service/internal/observability"
)

// Scheduler drives the engine forward on exactly one of two cadences:
// a fast visual-simulation ticker while simulation mode is on, or a
// slow heartbeat ticker in production mode. The two are mutually
// exclusive; toggling a flag stops the active ticker before the next
// one is armed, and going offline stops ticking entirely. Built on
// clockwork so tests drive ticks with a fake clock.
type Scheduler struct {
	engine          *Engine
	clock           clockwork.Clock
	logger          *slog.Logger
	metrics         *observability.Metrics
	visualPeriod    time.Duration
	heartbeatPeriod time.Duration

	simulation atomic.Bool
	online     atomic.Bool
	modeCh     chan struct{}
}

// NewScheduler creates a Scheduler. simulationEnabled picks the initial
// mode. The connectivity flag starts online; the engine assumes
// connectivity until told otherwise.
func NewScheduler(engine *Engine, clock clockwork.Clock, visualPeriod, heartbeatPeriod time.Duration,
	simulationEnabled bool, logger *slog.Logger, metrics *observability.Metrics,
) *Scheduler {
	s := &Scheduler{
		engine:          engine,
		clock:           clock,
		logger:          logger,
		metrics:         metrics,
		visualPeriod:    visualPeriod,
		heartbeatPeriod: heartbeatPeriod,
		modeCh:          make(chan struct{}, 1),
	}
	s.simulation.Store(simulationEnabled)
	s.online.Store(true)
	return s
}

// SetSimulation switches between visual simulation and production
// heartbeat mode.
func (s *Scheduler) SetSimulation(enabled bool) {
	if s.simulation.Swap(enabled) != enabled {
		s.logger.Info("simulation mode changed", "enabled", enabled)
		s.notify()
	}
}

// SetOnline records the external connectivity signal. While offline no
// advancement occurs regardless of the simulation flag.
func (s *Scheduler) SetOnline(online bool) {
	if s.online.Swap(online) != online {
		s.logger.Info("connectivity changed", "online", online)
		s.notify()
	}
}

// SimulationEnabled reports the current mode flag.
func (s *Scheduler) SimulationEnabled() bool { return s.simulation.Load() }

// Online reports the current connectivity flag.
func (s *Scheduler) Online() bool { return s.online.Load() }

func (s *Scheduler) notify() {
	select {
	case s.modeCh <- struct{}{}:
	default:
	}
}

// Run ticks the engine until the context is cancelled. It is the single
// writer: every advancement happens on this goroutine, so the two
// cadences can never overlap and no tick fires after Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"visual_period", s.visualPeriod,
		"heartbeat_period", s.heartbeatPeriod,
		"simulation", s.SimulationEnabled(),
	)
	s.metrics.EngineRunning.Set(1)
	defer s.metrics.EngineRunning.Set(0)

	var ticker clockwork.Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()

	arm := func() {
		stopTicker()
		switch {
		case !s.Online():
			// No ticker while offline.
		case s.SimulationEnabled():
			ticker = s.clock.NewTicker(s.visualPeriod)
		default:
			ticker = s.clock.NewTicker(s.heartbeatPeriod)
		}
	}
	arm()

	for {
		var tickC <-chan time.Time
		if ticker != nil {
			tickC = ticker.Chan()
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-s.modeCh:
			arm()
		case now := <-tickC:
			if s.SimulationEnabled() {
				s.engine.AdvanceVisual(now)
			} else {
				s.engine.AdvanceHeartbeat(now)
			}
		}
	}
}
