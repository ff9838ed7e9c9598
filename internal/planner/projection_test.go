package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
)

// flatForecast builds an hourly forecast with a constant precipitation
// chance across the whole horizon.
func flatForecast(hours, precipChance int) []domain.HourlyForecast {
	base := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	forecast := make([]domain.HourlyForecast, hours)
	for i := range forecast {
		ts := base.Add(time.Duration(i) * time.Hour)
		forecast[i] = domain.HourlyForecast{
			Timestamp:    ts,
			TimeLabel:    ts.Format("15:04"),
			Condition:    domain.CondCloudy,
			PrecipChance: precipChance,
		}
	}
	return forecast
}

func TestProject(t *testing.T) {
	t.Run("dry forecast drains the river", func(t *testing.T) {
		points := Project(100, flatForecast(72, 10))

		require.Len(t, points, 72)
		// 2 cm/h drainage while above 50 cm.
		assert.Equal(t, 98.0, points[0].Level)
		assert.Equal(t, 96.0, points[1].Level)
		// Level decreases monotonically with no rain.
		for i := 1; i < len(points); i++ {
			assert.Less(t, points[i].Level, points[i-1].Level)
		}
		// Drainage slows to 0.5 cm/h once the level reaches 50:
		// 25 hours at 2 cm/h, then 47 hours at 0.5 cm/h.
		assert.Equal(t, 50.0, points[24].Level)
		assert.Equal(t, 26.5, points[71].Level)
	})

	t.Run("rain above 50 percent raises the level", func(t *testing.T) {
		points := Project(100, flatForecast(3, 80))

		// +8 rain, -2 drainage per hour.
		assert.Equal(t, 106.0, points[0].Level)
		assert.Equal(t, 112.0, points[1].Level)
		assert.Equal(t, 118.0, points[2].Level)
	})

	t.Run("rain at exactly 50 percent adds nothing", func(t *testing.T) {
		points := Project(100, flatForecast(1, 50))
		assert.Equal(t, 98.0, points[0].Level)
	})

	t.Run("drainage regime boundary is exclusive at 50", func(t *testing.T) {
		// A running level of exactly 50 must drain at the low rate.
		points := Project(50, flatForecast(2, 0))
		assert.Equal(t, 49.5, points[0].Level)
		assert.Equal(t, 49.0, points[1].Level)

		// Just above 50 drains at the high rate.
		points = Project(50.5, flatForecast(1, 0))
		assert.Equal(t, 48.5, points[0].Level)
	})

	t.Run("level clamps at zero", func(t *testing.T) {
		points := Project(1, flatForecast(5, 0))
		for _, p := range points[1:] {
			assert.Equal(t, 0.0, p.Level)
		}
	})

	t.Run("day offsets split every 24 hours", func(t *testing.T) {
		points := Project(100, flatForecast(72, 10))
		assert.Equal(t, 0, points[0].DayOffset)
		assert.Equal(t, 0, points[23].DayOffset)
		assert.Equal(t, 1, points[24].DayOffset)
		assert.Equal(t, 2, points[48].DayOffset)
		assert.Equal(t, 2, points[71].DayOffset)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		forecast := flatForecast(72, 65)
		first := Project(210, forecast)
		second := Project(210, forecast)
		assert.Equal(t, first, second)
	})
}

func TestSnapshotIndex(t *testing.T) {
	tests := []struct {
		name        string
		dayOffset   int
		hourOfDay   int
		currentHour int
		want        int
	}{
		{"later today", 0, 23, 21, 2},
		{"tomorrow early", 1, 2, 21, 5},
		{"earlier than now clamps to now", 0, 18, 21, 0},
		{"same hour today", 0, 21, 21, 0},
		{"day after tomorrow", 2, 10, 21, 3 + 24 + 10},
		{"tomorrow from midnight", 1, 0, 0, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapshotIndex(tt.dayOffset, tt.hourOfDay, tt.currentHour))
		})
	}
}

func TestNewPlan(t *testing.T) {
	station := domain.Station{
		ID:          "botas-002",
		Thresholds:  domain.Thresholds{Warning: 200, Critical: 300},
		LastReading: domain.Reading{WaterLevel: 210},
	}

	t.Run("snapshot classifies the projected level", func(t *testing.T) {
		plan := NewPlan(station, flatForecast(72, 90), 1, 2, 21)

		require.Len(t, plan.Projection, 72)
		assert.Equal(t, plan.Projection[5], plan.Snapshot.ProjectedPoint)
		// +9 rain -2 drainage per hour: 217, 224, ... 252 at index 5.
		assert.Equal(t, 252.0, plan.Snapshot.Level)
		assert.Equal(t, domain.LevelWarning, plan.Snapshot.Status)
	})

	t.Run("sustained storm reaches critical", func(t *testing.T) {
		plan := NewPlan(station, flatForecast(72, 90), 2, 23, 0)
		assert.Equal(t, domain.LevelCritical, plan.Snapshot.Status)
	})

	t.Run("out-of-range selection clamps to the last hour", func(t *testing.T) {
		short := flatForecast(6, 10)
		plan := NewPlan(station, short, 2, 23, 0)
		assert.Equal(t, plan.Projection[5], plan.Snapshot.ProjectedPoint)
	})

	t.Run("empty forecast degrades to current level", func(t *testing.T) {
		plan := NewPlan(station, nil, 0, 12, 9)
		assert.Empty(t, plan.Projection)
		assert.Equal(t, 210.0, plan.Snapshot.Level)
		assert.Equal(t, domain.LevelWarning, plan.Snapshot.Status)
	})
}
