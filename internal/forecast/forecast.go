// Package forecast generates the synthetic weather forecast consumed by
// the trip planner. There is no real weather-API integration; the
// generator produces a plausible subtropical pattern with afternoon
// storms so the projection logic has realistic input to work with.
package forecast

import (
	"math/rand"
	"time"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
)

// Hours is the forecast horizon fed to the planner: three days, one
// entry per hour, chronological starting from "now".
const Hours = 72

// Generator produces synthetic hourly and daily forecasts. The rand
// source is injected so fixtures and tests are reproducible.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded for reproducible output.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Hourly generates the 72-hour forecast starting at now. The pattern:
// late afternoon (16h-20h) brings rain or storms with 60-100% precip
// chance, midday (10h-15h) is clear, and the rest of the day sits at a
// light 10% chance under partial cloud.
func (g *Generator) Hourly(now time.Time) []domain.HourlyForecast {
	forecast := make([]domain.HourlyForecast, Hours)

	for i := range forecast {
		ts := now.Add(time.Duration(i) * time.Hour)
		hour := ts.Hour()

		condition := domain.CondPartlyCloudy
		precip := 10

		switch {
		case hour >= 16 && hour <= 20:
			if g.rng.Intn(2) == 0 {
				condition = domain.CondRainy
			} else {
				condition = domain.CondStorm
			}
			precip = 60 + g.rng.Intn(40)
		case hour >= 10 && hour <= 15:
			if g.rng.Intn(2) == 0 {
				condition = domain.CondSunny
			} else {
				condition = domain.CondPartlyCloudy
			}
			precip = 0
		}

		forecast[i] = domain.HourlyForecast{
			Timestamp:    ts,
			TimeLabel:    ts.Format("15:04"),
			Temp:         20 + g.rng.Intn(10),
			Condition:    condition,
			PrecipChance: precip,
		}
	}

	return forecast
}

// Daily generates the five-day outlook shown alongside the hourly
// scroller. Day labels are the weekday names; consumers map offsets 0
// and 1 to "today"/"tomorrow" themselves.
func (g *Generator) Daily(now time.Time) []domain.DailyForecast {
	conditions := []domain.WeatherCondition{
		domain.CondRainy, domain.CondStorm, domain.CondRainy,
		domain.CondCloudy, domain.CondSunny,
	}
	chances := []int{80, 95, 60, 30, 10}

	days := make([]domain.DailyForecast, len(conditions))
	for i := range days {
		minTemp := 20 + g.rng.Intn(3)
		days[i] = domain.DailyForecast{
			Day:          now.AddDate(0, 0, i).Weekday().String(),
			MinTemp:      minTemp,
			MaxTemp:      minTemp + 4 + g.rng.Intn(5),
			Condition:    conditions[i],
			PrecipChance: chances[i],
		}
	}
	return days
}
