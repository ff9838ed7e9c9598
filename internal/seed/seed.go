// Package seed provides the default station, shelter, and alert data
// the service starts from when no persisted cache exists. Stations model
// four real monitoring points along the Rio Botas (Baixada Fluminense);
// readings and history are synthetic.
package seed

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
)

// historyStep is the spacing between synthetic history samples.
const historyStep = 30 * time.Minute

// Past flood-surge event baked into every station's history so charts
// show a receded event on first load. The window is in samples counted
// back from now; the lift ramps up to surgePeak at the window's center
// and back down to zero at its edges.
const (
	surgeNewest = 20
	surgeOldest = 29
	surgePeak   = 150.0
)

func surgeLift(samplesAgo int) float64 {
	if samplesAgo < surgeNewest || samplesAgo > surgeOldest {
		return 0
	}
	pos := float64(samplesAgo-surgeNewest) / float64(surgeOldest-surgeNewest)
	return surgePeak * math.Sin(pos*math.Pi)
}

// Stations returns the default station set with synthetic history
// ending at now. The rand source is injected so fixtures are
// reproducible.
func Stations(now time.Time, rng *rand.Rand) []domain.Station {
	stations := []domain.Station{
		{
			ID:         "botas-001",
			Name:       "Rio Botas - P1 (Nova Iguacu)",
			Location:   domain.Location{Lat: -22.7562, Lng: -43.4608, Address: "Rua dos Quarteis - Comendador Soares"},
			Status:     domain.LevelSafe,
			Thresholds: domain.Thresholds{Warning: 180, Critical: 250, SensorHeight: 400},
			LastReading: domain.Reading{
				Timestamp: now, WaterLevel: 85, Rainfall: 0,
				Battery: 98, BatteryVoltage: 4.1, SolarVoltage: 0, SignalStrength: -75,
			},
			History:          History(now, rng, 85, 15, false),
			NearestShelterID: "shelter-001",
		},
		{
			ID:         "botas-002",
			Name:       "Rio Botas - P2 (Heliopolis)",
			Location:   domain.Location{Lat: -22.7480, Lng: -43.4150, Address: "Ponte de Heliopolis"},
			Status:     domain.LevelWarning,
			Thresholds: domain.Thresholds{Warning: 200, Critical: 300, SensorHeight: 450},
			LastReading: domain.Reading{
				Timestamp: now, WaterLevel: 210, Rainfall: 15.5,
				Battery: 88, BatteryVoltage: 3.9, SolarVoltage: 1.2, SignalStrength: -82,
			},
			History:          History(now, rng, 210, 25, true),
			NearestShelterID: "shelter-002",
		},
		{
			ID:         "botas-003",
			Name:       "Rio Botas - P3 (Belford Roxo)",
			Location:   domain.Location{Lat: -22.7310, Lng: -43.3650, Address: "Av. Dr. Carvalhaes"},
			Status:     domain.LevelCritical,
			Thresholds: domain.Thresholds{Warning: 250, Critical: 350, SensorHeight: 500},
			LastReading: domain.Reading{
				Timestamp: now, WaterLevel: 345, Rainfall: 32.0,
				Battery: 75, BatteryVoltage: 3.8, SolarVoltage: 0.8, SignalStrength: -88,
			},
			History:          History(now, rng, 345, 30, true),
			NearestShelterID: "shelter-003",
		},
		{
			ID:         "botas-004",
			Name:       "Rio Botas - Foz (Rio Iguacu)",
			Location:   domain.Location{Lat: -22.7214, Lng: -43.3087, Address: "Confluencia Rio Iguacu"},
			Status:     domain.LevelOffline,
			Thresholds: domain.Thresholds{Warning: 300, Critical: 400, SensorHeight: 600},
			LastReading: domain.Reading{
				Timestamp: now.Add(-24 * time.Hour), WaterLevel: 150, Rainfall: 0,
				Battery: 10, BatteryVoltage: 3.2, SolarVoltage: 0, SignalStrength: -98,
			},
			History:          History(now.Add(-24*time.Hour), rng, 150, 5, false),
			NearestShelterID: "shelter-003",
		},
	}

	// Cached status must agree with the reading that justifies it, except
	// for the externally asserted offline station.
	for i := range stations {
		if stations[i].Status != domain.LevelOffline {
			stations[i].Status = domain.ClassifyLevel(stations[i].LastReading.WaterLevel, stations[i].Thresholds)
		}
	}
	return stations
}

// History generates a most-recent-first synthetic reading history ending
// at now: a base level with natural ripple, a past flood-surge event
// that has since receded, a solar day curve driving battery charge, and
// rainfall when the station is in a wet period.
func History(now time.Time, rng *rand.Rand, baseLevel, variability float64, raining bool) []domain.Reading {
	readings := make([]domain.Reading, domain.HistoryCap)

	for i := range readings {
		ts := now.Add(-time.Duration(i) * historyStep)
		hour := ts.Hour()

		// Solar output follows a daylight sine between 06h and 18h.
		solar := 0.0
		if hour > 6 && hour < 18 {
			solar = math.Sin((float64(hour-6)/12)*math.Pi)*5.5 + rng.Float64()*0.5
		}

		// Battery floats at full charge while the panel delivers, and
		// sags overnight.
		batteryV := 4.2
		if solar <= 3 {
			batteryV = 3.7 - 0.1*math.Abs(12-float64(hour))/12
		}

		level := domain.ClampLevel(baseLevel + surgeLift(i) + math.Sin(float64(i)*0.05)*variability + rng.Float64()*5)

		rainfall := 0.0
		if raining && i < 12 {
			rainfall = rng.Float64() * 15
		}

		readings[i] = domain.Reading{
			Timestamp:      ts,
			WaterLevel:     domain.Round1(level),
			Rainfall:       domain.Round1(rainfall),
			Battery:        math.Min(100, math.Max(0, (batteryV-3.2)*100)),
			BatteryVoltage: domain.Round2(batteryV),
			SolarVoltage:   domain.Round2(math.Max(0, solar)),
			SignalStrength: domain.Round1(-80 + rng.Float64()*10),
		}
	}

	return readings
}

// Shelters returns the static safe-shelter reference data.
func Shelters() []domain.Shelter {
	return []domain.Shelter{
		{
			ID: "shelter-001", Name: "Escola Municipal Comendador Soares",
			Address: "Rua dos Quarteis, 150 - Nova Iguacu",
			Lat:     -22.7540, Lng: -43.4650, Capacity: 200, Type: "school",
		},
		{
			ID: "shelter-002", Name: "Ginasio Poliesportivo Heliopolis",
			Address: "Av. Heliopolis, 500 - Belford Roxo",
			Lat:     -22.7450, Lng: -43.4100, Capacity: 500, Type: "gym",
		},
		{
			ID: "shelter-003", Name: "Igreja Matriz de Belford Roxo",
			Address: "Praca Central - Centro",
			Lat:     -22.7300, Lng: -43.3600, Capacity: 150, Type: "church",
		},
	}
}

// Alerts returns the initial alert feed shown before the simulation has
// generated any events of its own.
func Alerts(now time.Time) []domain.AlertEvent {
	return []domain.AlertEvent{
		{
			ID: uuid.NewString(), StationID: "botas-003", StationName: "Rio Botas - P3 (Belford Roxo)",
			Severity: domain.LevelCritical, Timestamp: now,
			Title:   "Critical level reached",
			Message: "Water level passed 350cm. Imminent overflow risk.",
		},
		{
			ID: uuid.NewString(), StationID: "botas-002", StationName: "Rio Botas - P2 (Heliopolis)",
			Severity: domain.LevelWarning, Timestamp: now.Add(-time.Hour),
			Title:   "Rapid level rise",
			Message: "Level rose 40cm in the last hour under heavy rain.",
		},
		{
			ID: uuid.NewString(), StationID: "botas-004", StationName: "Rio Botas - Foz (Rio Iguacu)",
			Severity: domain.LevelOffline, Timestamp: now.Add(-24 * time.Hour),
			Title:   "Signal lost",
			Message: "The sensor stopped responding.", Acknowledged: true,
		},
	}
}
