// Package domain models river flood-monitoring telemetry.
//
// # Stations and Readings
//
// A Station is one sensor installation along the Rio Botas reporting
// periodic readings: water level (cm, measured from the riverbed),
// rainfall rate (mm/h), and device telemetry (battery percent and
// voltage, solar input voltage, radio signal strength in dBm). Each
// station keeps a bounded, most-recent-first history of readings
// ([HistoryCap] entries); older samples are dropped as new ones arrive.
//
// # Status Tiers
//
// Station status is a four-tier classification:
//
//	safe     level below the warning threshold
//	warning  level at or above the warning threshold
//	critical level at or above the critical threshold
//	offline  sensor unreachable (stale or no signal)
//
// The first three tiers are a pure function of the last reading's water
// level against the station's thresholds, see [ClassifyLevel]. Offline
// is asserted externally when a station stops reporting; it is never
// derived from level and it overrides the derived tiers until cleared.
// [Station.ApplyReading] is the single mutation entry point and keeps
// the cached status consistent with the reading that justifies it.
//
// # Alerts and Notifications
//
// An AlertEvent is the durable record of a detected risk condition: a
// rising-edge crossing of a station's critical threshold (a transition
// from at-or-below to strictly-above between two consecutive readings).
// Events are immutable once created except for the Acknowledged flag;
// they are retired by acknowledgment, never deleted. A Notification is
// the transient payload shown at the moment of detection and expires a
// few seconds later; it is distinct from the persisted event.
//
// # Shelters
//
// Shelters are static reference data: safe gathering points (schools,
// gyms, churches, community centers) near the river. Stations carry a
// weak reference to their nearest shelter by ID.
package domain
