package repository

import (
	"context"

	"bits/internal/domain"
)

// IncidentRepository defines the persistence operations for road incidents.
type IncidentRepository interface {
	// Create persists a new incident and fills in its ID and CreatedAt.
	Create(ctx context.Context, incident *domain.Incident) error

	// GetByID retrieves an incident by ID, active or not.
	GetByID(ctx context.Context, id int64) (*domain.Incident, error)

	// ListActive retrieves active incidents ordered by severity rank, then ID.
	ListActive(ctx context.Context) ([]*domain.Incident, error)

	// Deactivate clears the active flag. Unknown or already inactive IDs are not an error.
	Deactivate(ctx context.Context, id int64) error

	// CountActiveByZone returns the number of active incidents per zone.
	CountActiveByZone(ctx context.Context) (map[string]int, error)

	// CountActiveInZones returns the number of active incidents in any of the given zones.
	CountActiveInZones(ctx context.Context, zones ...string) (int, error)
}
