package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"bits/internal/domain"
	"bits/internal/repository"
)

// IncidentRepository is a SQLite implementation of repository.IncidentRepository.
type IncidentRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewIncidentRepository creates a new SQLite incident repository.
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db, now: time.Now}
}

const incidentColumns = `id, zone, category, severity, COALESCE(description, ''),
	COALESCE(latitude, 0), COALESCE(longitude, 0), COALESCE(affected_road, ''), created_at, is_active`

// Create persists a new incident.
func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	createdAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO incidents
			(zone, category, severity, description, latitude, longitude, affected_road, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		incident.Zone,
		string(incident.Category),
		string(incident.Severity),
		incident.Description,
		incident.Lat,
		incident.Lon,
		incident.AffectedRoad,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	incident.ID = id
	incident.CreatedAt = createdAt
	incident.Active = true
	return nil
}

// GetByID retrieves an incident by ID.
func (r *IncidentRepository) GetByID(ctx context.Context, id int64) (*domain.Incident, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = ?`, id)

	incident, err := scanIncident(row)
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents
		WHERE is_active = 1
		ORDER BY CASE severity
			WHEN 'critical' THEN 1
			WHEN 'high' THEN 2
			WHEN 'medium' THEN 3
			ELSE 4
		END, id`)
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
	_, err := r.db.ExecContext(ctx, `UPDATE incidents SET is_active = 0 WHERE id = ?`, id)
	return err
}

// CountActiveByZone returns the number of active incidents per zone.
func (r *IncidentRepository) CountActiveByZone(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT zone, COUNT(*) FROM incidents WHERE is_active = 1 GROUP BY zone`)
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

	args := make([]any, len(zones))
	for i, z := range zones {
		args[i] = z
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(zones)), ",")

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM incidents WHERE is_active = 1 AND zone IN (`+placeholders+`)`,
		args...,
	).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var (
		incident  domain.Incident
		category  string
		severity  string
		createdAt string
		active    int64
	)
	err := row.Scan(
		&incident.ID,
		&incident.Zone,
		&category,
		&severity,
		&incident.Description,
		&incident.Lat,
		&incident.Lon,
		&incident.AffectedRoad,
		&createdAt,
		&active,
	)
	if err != nil {
		return nil, err
	}

	incident.Category = domain.IncidentCategory(category)
	incident.Severity = domain.Severity(severity)
	incident.Active = active != 0
	if incident.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	return &incident, nil
}
