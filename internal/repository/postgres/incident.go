package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"bits/internal/domain"
	"bits/internal/repository"
)

// IncidentRepository is a PostgreSQL implementation of repository.IncidentRepository.
type IncidentRepository struct {
	q Querier
}

// NewIncidentRepository creates a new PostgreSQL incident repository.
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{q: db}
}

const incidentColumns = `id, zone, category, severity, COALESCE(description, ''),
	COALESCE(latitude, 0), COALESCE(longitude, 0), COALESCE(affected_road, ''), created_at, is_active`

// Create persists a new incident.
func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (zone, category, severity, description, latitude, longitude, affected_road)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, is_active`

	return r.q.QueryRowContext(ctx, query,
		incident.Zone,
		incident.Category,
		incident.Severity,
		incident.Description,
		incident.Lat,
		incident.Lon,
		incident.AffectedRoad,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.Active)
}

// GetByID retrieves an incident by ID.
func (r *IncidentRepository) GetByID(ctx context.Context, id int64) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return incident, nil
}

// ListActive retrieves active incidents, most severe first.
func (r *IncidentRepository) ListActive(ctx context.Context) ([]*domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE is_active
		ORDER BY CASE severity
			WHEN 'critical' THEN 1
			WHEN 'high' THEN 2
			WHEN 'medium' THEN 3
			ELSE 4
		END, id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incidents := []*domain.Incident{}
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

// Deactivate soft-deletes an incident.
func (r *IncidentRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE incidents SET is_active = FALSE WHERE id = $1`, id)
	return err
}

// CountActiveByZone returns the number of active incidents per zone.
func (r *IncidentRepository) CountActiveByZone(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT zone, COUNT(*) FROM incidents WHERE is_active GROUP BY zone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var zone string
		var n int
		if err := rows.Scan(&zone, &n); err != nil {
			return nil, err
		}
		counts[zone] = n
	}
	return counts, rows.Err()
}

// CountActiveInZones returns the number of active incidents in any of zones.
func (r *IncidentRepository) CountActiveInZones(ctx context.Context, zones ...string) (int, error) {
	if len(zones) == 0 {
		return 0, nil
	}

	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM incidents WHERE is_active AND zone = ANY($1)`,
		pq.Array(zones),
	).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.Zone,
		&incident.Category,
		&incident.Severity,
		&incident.Description,
		&incident.Lat,
		&incident.Lon,
		&incident.AffectedRoad,
		&incident.CreatedAt,
		&incident.Active,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
