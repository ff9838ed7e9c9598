package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/flood-monitor-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-monitor-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-monitor-service/internal/config"
	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/forecast"
	"github.com/couchcryptid/flood-monitor-service/internal/observability"
	"github.com/couchcryptid/flood-monitor-service/internal/seed"
	"github.com/couchcryptid/flood-monitor-service/internal/simulation"
	"github.com/couchcryptid/flood-monitor-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	now := clock.Now()
	rng := rand.New(rand.NewSource(now.UnixNano()))

	// An empty DB path disables persistence: the engine runs without a
	// store and every start begins from seed data.
	var db *store.SQLiteStore
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open state store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Info("persistence disabled")
	}

	// Resume from the persisted cache when it is usable, otherwise
	// start from a freshly seeded network.
	var (
		stations []domain.Station
		alerts   []domain.AlertEvent
	)
	if db != nil {
		if cached, ok := db.LoadStations(); ok {
			stations = cached
			logger.Info("resumed station state", "stations", len(stations))
		}
		alerts, _ = db.LoadAlerts()
	}
	if stations == nil {
		stations = seed.Stations(now, rng)
		logger.Info("seeded station network", "stations", len(stations))
	}

	// Alert publishing is feature-flagged via KAFKA_ALERTS_ENABLED.
	var sink simulation.AlertPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka alert publishing enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	// A nil *store.Store must not reach the interface field, the engine
	// only skips persistence on a nil interface value.
	var engineStore simulation.Store
	if db != nil {
		engineStore = db
	}

	engine := simulation.NewEngine(simulation.EngineConfig{
		Params:   simulation.DefaultParams(),
		Stations: stations,
		Alerts:   alerts,
		Clock:    clock,
		Rand:     rng,
		Logger:   logger,
		Metrics:  metrics,
		Store:    engineStore,
		Sink:     sink,
	})
	scheduler := simulation.NewScheduler(engine, clock,
		cfg.VisualTickPeriod, cfg.HeartbeatPeriod, cfg.SimulationEnabled, logger, metrics)

	gen := forecast.NewGenerator(now.UnixNano())
	srv := httpadapter.NewServer(httpadapter.Config{
		Addr:     cfg.HTTPAddr,
		Monitor:  engine,
		Modes:    scheduler,
		Hourly:   gen.Hourly(now),
		Daily:    gen.Daily(now),
		Shelters: seed.Shelters(),
		Clock:    clock,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the tick scheduler.
	go func() {
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
