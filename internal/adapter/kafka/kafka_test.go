package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-monitor-service/internal/config"
	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/observability"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	alert := domain.AlertEvent{
		ID:          "evt-1",
		StationID:   "botas-003",
		StationName: "Rio Botas - P3 (Belford Roxo)",
		Severity:    domain.LevelCritical,
		Timestamp:   now,
		Title:       "Critical level reached",
		Message:     "Water level crossed the safety threshold. Current reading: 355cm.",
	}

	msg, err := serializeToMessage(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"severity":"critical"`)
	assert.Contains(t, string(msg.Value), `"stationId":"botas-003"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "severity", msg.Headers[0].Key)
	assert.Equal(t, []byte("critical"), msg.Headers[0].Value)
	assert.Equal(t, "station_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("botas-003"), msg.Headers[1].Value)
	assert.Equal(t, "detected_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:    []string{"localhost:9092", "localhost:9093"},
		KafkaAlertTopic: "flood-alerts",
	}

	w := NewWriter(cfg, observability.NewTestLogger())
	defer w.Close()

	require.NotNil(t, w.writer)
	assert.Equal(t, "flood-alerts", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.IsType(t, &kafkago.LeastBytes{}, w.writer.Balancer)
}
