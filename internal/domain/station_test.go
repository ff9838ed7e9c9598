package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLevel(t *testing.T) {
	thresholds := Thresholds{Warning: 200, Critical: 300}

	tests := []struct {
		name  string
		level float64
		want  AlertLevel
	}{
		{"well below warning", 150, LevelSafe},
		{"exactly at warning", 200, LevelWarning},
		{"between tiers", 250, LevelWarning},
		{"exactly at critical", 300, LevelCritical},
		{"far above critical", 450, LevelCritical},
		{"zero", 0, LevelSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLevel(tt.level, thresholds))
		})
	}
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, 0.0, ClampLevel(-3.2))
	assert.Equal(t, 0.0, ClampLevel(0))
	assert.Equal(t, 12.5, ClampLevel(12.5))
}

func TestApplyReading(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	newStation := func() *Station {
		return &Station{
			ID:         "botas-001",
			Name:       "Rio Botas - P1",
			Status:     LevelSafe,
			Thresholds: Thresholds{Warning: 180, Critical: 250, SensorHeight: 400},
		}
	}

	t.Run("pushes reading most-recent-first", func(t *testing.T) {
		s := newStation()
		for i := 0; i < 5; i++ {
			s.ApplyReading(Reading{
				Timestamp:  base.Add(time.Duration(i) * time.Minute),
				WaterLevel: float64(80 + i),
			})
		}

		require.Len(t, s.History, 5)
		assert.Equal(t, 84.0, s.History[0].WaterLevel)
		assert.Equal(t, s.LastReading, s.History[0])
		for i := 1; i < len(s.History); i++ {
			assert.True(t, !s.History[i-1].Timestamp.Before(s.History[i].Timestamp),
				"history timestamps must be non-increasing from index 0")
		}
	})

	t.Run("history never exceeds cap", func(t *testing.T) {
		s := newStation()
		for i := 0; i < HistoryCap*3; i++ {
			s.ApplyReading(Reading{
				Timestamp:  base.Add(time.Duration(i) * time.Minute),
				WaterLevel: float64(i),
			})
		}

		require.Len(t, s.History, HistoryCap)
		assert.Equal(t, float64(HistoryCap*3-1), s.History[0].WaterLevel)
		// Oldest retained sample is cap-1 ticks behind the newest.
		assert.Equal(t, float64(HistoryCap*3-HistoryCap), s.History[HistoryCap-1].WaterLevel)
	})

	t.Run("recomputes cached status", func(t *testing.T) {
		s := newStation()
		s.ApplyReading(Reading{Timestamp: base, WaterLevel: 190})
		assert.Equal(t, LevelWarning, s.Status)

		s.ApplyReading(Reading{Timestamp: base.Add(time.Minute), WaterLevel: 260})
		assert.Equal(t, LevelCritical, s.Status)

		s.ApplyReading(Reading{Timestamp: base.Add(2 * time.Minute), WaterLevel: 40})
		assert.Equal(t, LevelSafe, s.Status)
	})

	t.Run("offline status is sticky", func(t *testing.T) {
		s := newStation()
		s.Status = LevelOffline
		s.ApplyReading(Reading{Timestamp: base, WaterLevel: 500})
		assert.Equal(t, LevelOffline, s.Status)
	})
}

func TestAlertLevelValid(t *testing.T) {
	for _, l := range []AlertLevel{LevelSafe, LevelWarning, LevelCritical, LevelOffline} {
		assert.True(t, l.Valid(), string(l))
	}
	assert.False(t, AlertLevel("panic").Valid())
	assert.False(t, AlertLevel("").Valid())
}
