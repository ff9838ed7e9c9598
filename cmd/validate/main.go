// Command validate performs integrity checks over persisted monitor
// state: the sqlite station cache the daemon resumes from, or the JSON
// fixtures genseed produces. It verifies threshold ordering, status
// classification, history shape, and alert feed consistency.
//
// Usage:
//
//	go run ./cmd/validate -db data/stations.db
//	go run ./cmd/validate -fixtures data/fixtures
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/store"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "", "path to the sqlite station cache")
	fixturesDir := flag.String("fixtures", "", "directory of genseed JSON fixtures")
	flag.Parse()

	if *dbPath == "" && *fixturesDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dbPath, *fixturesDir); code != 0 {
		os.Exit(code)
	}
}

func run(dbPath, fixturesDir string) int {
	fmt.Println("=== Monitor State Integrity Validation ===")
	fmt.Println()

	var stations []domain.Station
	var alerts []domain.AlertEvent
	var shelters []domain.Shelter

	switch {
	case dbPath != "":
		db, err := store.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open cache: %v\n", err)
			return 1
		}
		defer db.Close()

		var ok bool
		if stations, ok = db.LoadStations(); !ok {
			fmt.Fprintf(os.Stderr, "FATAL: station slot missing or unreadable\n")
			return 1
		}
		alerts, _ = db.LoadAlerts()
	default:
		var err error
		if stations, err = loadJSON[domain.Station](filepath.Join(fixturesDir, "stations.json")); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load stations fixture: %v\n", err)
			return 1
		}
		if alerts, err = loadJSON[domain.AlertEvent](filepath.Join(fixturesDir, "alerts.json")); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load alerts fixture: %v\n", err)
			return 1
		}
		if shelters, err = loadJSON[domain.Shelter](filepath.Join(fixturesDir, "shelters.json")); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load shelters fixture: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateStations(stations),
		validateAlerts(alerts, stations),
	}
	if shelters != nil {
		phases = append(phases, validateShelterRefs(stations, shelters))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d stations, %d alerts (%d unread)\n",
		len(stations), len(alerts), domain.UnreadCount(alerts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateStations(stations []domain.Station) *phase {
	p := &phase{name: "station integrity"}

	if len(stations) == 0 {
		p.errorf("no stations")
		return p
	}

	seen := map[string]bool{}
	for _, s := range stations {
		if s.ID == "" {
			p.errorf("station with empty ID (%q)", s.Name)
			continue
		}
		if seen[s.ID] {
			p.errorf("%s: duplicate station ID", s.ID)
		}
		seen[s.ID] = true

		if !s.Status.Valid() {
			p.errorf("%s: invalid status %q", s.ID, s.Status)
		}
		if s.Thresholds.Warning <= 0 || s.Thresholds.Critical <= s.Thresholds.Warning {
			p.errorf("%s: thresholds not ordered (warning=%.0f critical=%.0f)",
				s.ID, s.Thresholds.Warning, s.Thresholds.Critical)
		}
		if s.LastReading.WaterLevel < 0 {
			p.errorf("%s: negative water level %.1f", s.ID, s.LastReading.WaterLevel)
		}

		if s.Status != domain.LevelOffline {
			want := domain.ClassifyLevel(s.LastReading.WaterLevel, s.Thresholds)
			if s.Status != want {
				p.errorf("%s: status %q does not match level %.1fcm (want %q)",
					s.ID, s.Status, s.LastReading.WaterLevel, want)
			}
		}

		if len(s.History) > domain.HistoryCap {
			p.errorf("%s: history length %d exceeds cap %d", s.ID, len(s.History), domain.HistoryCap)
		}
		for i := 1; i < len(s.History); i++ {
			if s.History[i-1].Timestamp.Before(s.History[i].Timestamp) {
				p.errorf("%s: history not most-recent-first at index %d", s.ID, i)
				break
			}
		}
	}
	return p
}

func validateAlerts(alerts []domain.AlertEvent, stations []domain.Station) *phase {
	p := &phase{name: "alert feed integrity"}

	stationIDs := map[string]bool{}
	for _, s := range stations {
		stationIDs[s.ID] = true
	}

	seen := map[string]bool{}
	for _, a := range alerts {
		if a.ID == "" {
			p.errorf("alert with empty ID (%q)", a.Title)
			continue
		}
		if seen[a.ID] {
			p.errorf("%s: duplicate alert ID", a.ID)
		}
		seen[a.ID] = true

		if !a.Severity.Valid() {
			p.errorf("%s: invalid severity %q", a.ID, a.Severity)
		}
		if a.Timestamp.IsZero() {
			p.errorf("%s: zero timestamp", a.ID)
		}
		if a.StationID != "" && !stationIDs[a.StationID] {
			p.errorf("%s: references unknown station %q", a.ID, a.StationID)
		}
	}
	return p
}

func validateShelterRefs(stations []domain.Station, shelters []domain.Shelter) *phase {
	p := &phase{name: "shelter references"}

	shelterIDs := map[string]bool{}
	for _, sh := range shelters {
		if sh.ID == "" {
			p.errorf("shelter with empty ID (%q)", sh.Name)
			continue
		}
		if shelterIDs[sh.ID] {
			p.errorf("%s: duplicate shelter ID", sh.ID)
		}
		shelterIDs[sh.ID] = true

		if sh.Capacity <= 0 {
			p.errorf("%s: non-positive capacity %d", sh.ID, sh.Capacity)
		}
	}

	for _, s := range stations {
		if s.NearestShelterID != "" && !shelterIDs[s.NearestShelterID] {
			p.errorf("%s: nearest shelter %q not in directory", s.ID, s.NearestShelterID)
		}
	}
	return p
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
