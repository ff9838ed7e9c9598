package domain

import (
	"math"
	"time"
)

// HistoryCap bounds each station's retained reading history. Readings are
// kept most-recent-first and the oldest entries are dropped once the cap
// is reached.
const HistoryCap = 48

// AlertLevel is the four-tier severity classification used for both live
// station status and alert events.
type AlertLevel string

const (
	LevelSafe     AlertLevel = "safe"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
	LevelOffline  AlertLevel = "offline"
)

// Valid reports whether the level is one of the four known tiers.
func (l AlertLevel) Valid() bool {
	switch l {
	case LevelSafe, LevelWarning, LevelCritical, LevelOffline:
		return true
	}
	return false
}

// Reading is one timestamped sample of water level and device telemetry.
type Reading struct {
	Timestamp      time.Time `json:"timestamp"`
	WaterLevel     float64   `json:"waterLevel"`     // cm, never negative
	Rainfall       float64   `json:"rainfall"`       // mm/h
	Battery        float64   `json:"battery"`        // percent 0-100
	BatteryVoltage float64   `json:"batteryVoltage"` // volts
	SolarVoltage   float64   `json:"solarVoltage"`   // volts, never negative
	SignalStrength float64   `json:"signalStrength"` // dBm
}

// Thresholds holds a station's alerting levels in cm. SensorHeight is the
// installation height of the sensor above the riverbed.
type Thresholds struct {
	Warning      float64 `json:"warning"`
	Critical     float64 `json:"critical"`
	SensorHeight float64 `json:"sensorHeight"`
}

// Location is a station's geographic placement.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Station is a sensor installation reporting periodic readings for one
// point along the river. Status is cached but always derived from the
// last reading via ApplyReading; offline is asserted externally, never
// computed from level.
type Station struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Location         Location   `json:"location"`
	Status           AlertLevel `json:"status"`
	Thresholds       Thresholds `json:"thresholds"`
	LastReading      Reading    `json:"lastReading"`
	History          []Reading  `json:"history"` // most-recent-first, len <= HistoryCap
	NearestShelterID string     `json:"nearestShelterId,omitempty"`
}

// Shelter is static reference data for a safe gathering point. Shelters
// are looked up by ID and never owned or mutated by stations.
type Shelter struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Capacity int     `json:"capacity"`
	Type     string  `json:"type"` // school, gym, church, center
}

// ClassifyLevel maps a water level onto the three derivable tiers:
// critical at or above the critical threshold, warning at or above the
// warning threshold, safe otherwise. Offline is not derivable from level
// and is never returned here.
func ClassifyLevel(level float64, t Thresholds) AlertLevel {
	switch {
	case level >= t.Critical:
		return LevelCritical
	case level >= t.Warning:
		return LevelWarning
	default:
		return LevelSafe
	}
}

// ApplyReading is the single mutation entry point for station state: it
// records r as the latest reading, pushes it onto the front of the
// bounded history, and recomputes the cached status. An offline station
// keeps its externally asserted status.
func (s *Station) ApplyReading(r Reading) {
	s.LastReading = r

	history := make([]Reading, 0, min(len(s.History)+1, HistoryCap))
	history = append(history, r)
	history = append(history, s.History[:min(len(s.History), HistoryCap-1)]...)
	s.History = history

	if s.Status != LevelOffline {
		s.Status = ClassifyLevel(r.WaterLevel, s.Thresholds)
	}
}

// ClampLevel keeps a computed water level physical: never below zero.
func ClampLevel(level float64) float64 {
	return math.Max(0, level)
}

// Round1 rounds to one decimal place, matching the precision stations
// report over the air.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places, used for voltages.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
