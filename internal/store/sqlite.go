// Package store persists engine state between runs. State lives in two
// single-row slots (stations, alerts) holding the JSON-serialized
// collections: a last-writer-wins overwrite per tick, no versioning. A
// missing or unreadable slot is not an error; the caller falls back to
// seed data, mirroring how the dashboard treats a corrupt local cache.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
)

const (
	slotStations = "stations"
	slotAlerts   = "alerts"
)

// SQLiteStore implements the engine's Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens the state database at path, creating parent
// directories as needed.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS state_slots (
		slot       TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveStations overwrites the station slot with the given collection.
func (s *SQLiteStore) SaveStations(stations []domain.Station) error {
	return s.saveSlot(slotStations, stations)
}

// SaveAlerts overwrites the alert slot with the given feed.
func (s *SQLiteStore) SaveAlerts(alerts []domain.AlertEvent) error {
	return s.saveSlot(slotAlerts, alerts)
}

// LoadStations reads the cached station collection. ok is false when the
// slot is absent, unreadable, or fails basic shape validation; callers
// fall back to seed data in that case.
func (s *SQLiteStore) LoadStations() (stations []domain.Station, ok bool) {
	if !s.loadSlot(slotStations, &stations) {
		return nil, false
	}
	if len(stations) == 0 {
		return nil, false
	}
	for _, station := range stations {
		if station.ID == "" || !station.Status.Valid() {
			return nil, false
		}
	}
	return stations, true
}

// LoadAlerts reads the cached alert feed. ok is false when the slot is
// absent or unreadable.
func (s *SQLiteStore) LoadAlerts() (alerts []domain.AlertEvent, ok bool) {
	if !s.loadSlot(slotAlerts, &alerts) {
		return nil, false
	}
	return alerts, true
}

func (s *SQLiteStore) saveSlot(slot string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize %s slot: %w", slot, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO state_slots (slot, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		slot, payload)
	if err != nil {
		return fmt.Errorf("write %s slot: %w", slot, err)
	}
	return nil
}

// loadSlot reads and deserializes one slot. All failure modes collapse
// to false: recovery from a bad cache is always "start from seed".
func (s *SQLiteStore) loadSlot(slot string, v any) bool {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state_slots WHERE slot = ?`, slot).Scan(&payload)
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, v) == nil
}
