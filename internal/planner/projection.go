// Package planner computes forward-looking river-level projections for
// the trip planner: given a station's current level and a synthetic
// hourly weather forecast, it projects the level across the full
// forecast horizon and classifies a user-selected future hour.
package planner

import (
	"time"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
)

// ProjectedPoint is one hour of the projected level series.
type ProjectedPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	TimeLabel    string    `json:"time"`
	Level        float64   `json:"level"`        // cm, rounded to 0.1
	PrecipChance int       `json:"precipChance"` // from the source forecast
	DayOffset    int       `json:"dayOffset"`    // 0-indexed forecast day
}

// Snapshot is the classified point-in-time result for the hour the user
// selected, evaluated against the projected rather than current level.
type Snapshot struct {
	ProjectedPoint
	Status domain.AlertLevel `json:"status"`
}

// Plan bundles the full projected series with the selected snapshot.
// Both are pure functions of the inputs and safe to cache by
// (station, dayOffset, hourOfDay, currentHour).
type Plan struct {
	Projection []ProjectedPoint `json:"projection"`
	Snapshot   Snapshot         `json:"snapshot"`
}

// Project applies the level recurrence across the forecast horizon,
// carrying the running level hour to hour. Rain pushes the level up when
// the precipitation chance exceeds 50% (chance/10 cm for that hour);
// natural drainage pulls it down at 2 cm/h while the running level is
// above 50 cm and 0.5 cm/h otherwise. The result is clamped at zero.
func Project(currentLevel float64, forecast []domain.HourlyForecast) []ProjectedPoint {
	points := make([]ProjectedPoint, len(forecast))
	level := currentLevel

	for i, hour := range forecast {
		rainImpact := 0.0
		if hour.PrecipChance > 50 {
			rainImpact = float64(hour.PrecipChance) / 10
		}

		drainage := 0.5
		if level > 50 {
			drainage = 2
		}

		level = domain.ClampLevel(level + rainImpact - drainage)

		points[i] = ProjectedPoint{
			Timestamp:    hour.Timestamp,
			TimeLabel:    hour.TimeLabel,
			Level:        domain.Round1(level),
			PrecipChance: hour.PrecipChance,
			DayOffset:    i / 24,
		}
	}

	return points
}

// SnapshotIndex resolves the user's (dayOffset, hourOfDay) selection to
// an index into a projection that starts at the current hour. Day 0
// counts only the remaining hours of today, clamped so a selection
// earlier than now resolves to "now"; later days add the hours left
// today plus full intervening days plus the hour into the target day.
func SnapshotIndex(dayOffset, hourOfDay, currentHour int) int {
	if dayOffset == 0 {
		return max(0, hourOfDay-currentHour)
	}
	return (24 - currentHour) + (dayOffset-1)*24 + hourOfDay
}

// NewPlan projects the station's level across the forecast and resolves
// the selected snapshot. The resolved index is clamped into the
// projection's bounds, so a short forecast or an out-of-range selection
// degrades to the nearest valid hour rather than failing.
func NewPlan(station domain.Station, forecast []domain.HourlyForecast, dayOffset, hourOfDay, currentHour int) Plan {
	projection := Project(station.LastReading.WaterLevel, forecast)
	if len(projection) == 0 {
		// Degenerate input: classify the current level at "now".
		return Plan{
			Snapshot: Snapshot{
				ProjectedPoint: ProjectedPoint{Level: station.LastReading.WaterLevel},
				Status:         domain.ClassifyLevel(station.LastReading.WaterLevel, station.Thresholds),
			},
		}
	}

	idx := SnapshotIndex(dayOffset, hourOfDay, currentHour)
	idx = min(max(0, idx), len(projection)-1)

	point := projection[idx]
	return Plan{
		Projection: projection,
		Snapshot: Snapshot{
			ProjectedPoint: point,
			Status:         domain.ClassifyLevel(point.Level, station.Thresholds),
		},
	}
}
