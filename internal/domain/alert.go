package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertEvent is a persisted record of a detected risk condition. It is
// immutable once created except for the Acknowledged flag, which is
// flipped by the acknowledgment operations below.
type AlertEvent struct {
	ID           string     `json:"id"`
	StationID    string     `json:"stationId"`
	StationName  string     `json:"stationName"`
	Severity     AlertLevel `json:"severity"`
	Timestamp    time.Time  `json:"timestamp"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Acknowledged bool       `json:"acknowledged"`
}

// NewCriticalCrossingAlert builds the alert event recorded when a
// station's water level rises past its critical threshold.
func NewCriticalCrossingAlert(station Station, newLevel float64, now time.Time) AlertEvent {
	return AlertEvent{
		ID:          uuid.NewString(),
		StationID:   station.ID,
		StationName: station.Name,
		Severity:    LevelCritical,
		Timestamp:   now,
		Title:       "Critical level reached",
		Message:     fmt.Sprintf("Water level crossed the safety threshold. Current reading: %.0fcm.", newLevel),
	}
}

// Notification is the transient payload raised at the moment a crossing
// is detected, distinct from the persisted AlertEvent. Consumers display
// it until ExpiresAt and then drop it.
type Notification struct {
	Severity  AlertLevel `json:"severity"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Acknowledge marks the alert with the given ID as acknowledged. It is
// idempotent: acknowledging an already-acknowledged alert is a no-op.
// Returns false if no alert with that ID exists.
func Acknowledge(alerts []AlertEvent, id string) bool {
	for i := range alerts {
		if alerts[i].ID == id {
			alerts[i].Acknowledged = true
			return true
		}
	}
	return false
}

// AcknowledgeAll marks every alert as acknowledged regardless of prior
// state.
func AcknowledgeAll(alerts []AlertEvent) {
	for i := range alerts {
		alerts[i].Acknowledged = true
	}
}

// UnreadCount returns the number of alerts not yet acknowledged.
func UnreadCount(alerts []AlertEvent) int {
	n := 0
	for i := range alerts {
		if !alerts[i].Acknowledged {
			n++
		}
	}
	return n
}
