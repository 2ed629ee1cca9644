package domain

import "time"

// IncidentCategory classifies a road disruption.
type IncidentCategory string

const (
	CategoryRoadClosure  IncidentCategory = "road_closure"
	CategoryAccident     IncidentCategory = "accident"
	CategoryConstruction IncidentCategory = "construction"
	CategoryWeather      IncidentCategory = "weather"
)

// Valid reports whether c is one of the known categories.
func (c IncidentCategory) Valid() bool {
	switch c {
	case CategoryRoadClosure, CategoryAccident, CategoryConstruction, CategoryWeather:
		return true
	}
	return false
}

// Severity is the impact level of an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities for display. Lower ranks sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	default:
		return 4
	}
}

// Incident is an administrator-recorded road disruption.
// Incidents are never deleted; removal clears Active.
type Incident struct {
	ID           int64
	Zone         string
	Category     IncidentCategory
	Severity     Severity
	Description  string
	Lat          float64
	Lon          float64
	AffectedRoad string
	CreatedAt    time.Time
	Active       bool
}

// IncidentEventType names a change to the incident ledger.
type IncidentEventType string

const (
	IncidentAdded   IncidentEventType = "incident_added"
	IncidentRemoved IncidentEventType = "incident_removed"
)

// IncidentEvent is broadcast to live dashboard clients when the ledger changes.
type IncidentEvent struct {
	Type       IncidentEventType `json:"type"`
	IncidentID int64             `json:"incident_id"`
	Zone       string            `json:"zone,omitempty"`
	Severity   Severity          `json:"severity,omitempty"`
	At         time.Time         `json:"at"`
}
