package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Station cache (SQLite). Empty disables persistence.
	DBPath string

	// Tick cadences. The visual period drives demo-mode motion; the
	// heartbeat period is the production polling interval.
	VisualTickPeriod  time.Duration
	HeartbeatPeriod   time.Duration
	SimulationEnabled bool

	// Optional alert fan-out to Kafka.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	visualPeriod, err := parseDuration("VISUAL_TICK_PERIOD", "100ms")
	if err != nil {
		return nil, err
	}

	heartbeatPeriod, err := parseDuration("HEARTBEAT_PERIOD", "60s")
	if err != nil {
		return nil, err
	}

	kafkaEnabled := envOrDefault("KAFKA_ALERTS_ENABLED", "false") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DBPath: envOrDefault("DB_PATH", "data/stations.db"),

		VisualTickPeriod:  visualPeriod,
		HeartbeatPeriod:   heartbeatPeriod,
		SimulationEnabled: envOrDefault("SIMULATION_ENABLED", "true") != "false",

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "flood-alerts"),
	}

	if cfg.VisualTickPeriod >= cfg.HeartbeatPeriod {
		return nil, errors.New("VISUAL_TICK_PERIOD must be shorter than HEARTBEAT_PERIOD")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ALERTS_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERTS_ENABLED is true but KAFKA_ALERT_TOPIC is empty")
	}

	return cfg, nil
}

// envOrDefault returns the environment variable's value, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDuration reads a positive duration from the environment.
func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
