// Command genseed generates deterministic JSON fixtures of the seeded
// monitoring network: stations with history, the shelter directory, the
// starter alert feed, and a 72-hour forecast. It uses the actual seed
// and forecast packages so fixtures match what the daemon boots with.
//
// Usage:
//
//	go run ./cmd/genseed -out data/fixtures
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/forecast"
	"github.com/couchcryptid/flood-monitor-service/internal/seed"
)

// baseTime is the fixed reference instant for reproducible fixtures.
var baseTime = time.Date(2026, time.March, 14, 21, 0, 0, 0, time.UTC)

const fixtureSeed = 1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for JSON fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(fixtureSeed))
	stations := seed.Stations(baseTime, rng)
	shelters := seed.Shelters()
	alerts := seed.Alerts(baseTime)

	gen := forecast.NewGenerator(fixtureSeed)
	hourly := gen.Hourly(baseTime)
	daily := gen.Daily(baseTime)

	files := []struct {
		name string
		v    any
	}{
		{"stations.json", stations},
		{"shelters.json", shelters},
		{"alerts.json", alerts},
		{"forecast_hourly.json", hourly},
		{"forecast_daily.json", daily},
	}
	for _, f := range files {
		path := filepath.Join(*outDir, f.name)
		if err := writeJSON(path, f.v); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(stations, alerts, hourly)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(stations []domain.Station, alerts []domain.AlertEvent, hourly []domain.HourlyForecast) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Stations: %d\n", len(stations))
	for _, s := range stations {
		fmt.Printf("  %s: level=%.1fcm status=%s history=%d\n",
			s.ID, s.LastReading.WaterLevel, s.Status, len(s.History))
	}
	fmt.Printf("Alerts: %d (unread %d)\n", len(alerts), domain.UnreadCount(alerts))

	var rainy int
	for _, h := range hourly {
		if h.PrecipChance > 50 {
			rainy++
		}
	}
	fmt.Printf("Forecast hours: %d (rain-impacting %d)\n", len(hourly), rainy)
}
