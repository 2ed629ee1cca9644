package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bits/internal/domain"
	"bits/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck
	require.NoError(t, NewSchema(db).Migrate(context.Background()))
	return db
}

func newIncident(zone string, severity domain.Severity) *domain.Incident {
	return &domain.Incident{
		Zone:         zone,
		Category:     domain.CategoryAccident,
		Severity:     severity,
		Description:  "test incident",
		Lat:          33.3209,
		Lon:          44.3661,
		AffectedRoad: "Algeria Street",
	}
}

func TestIncident_CreateAndGet(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))
	ctx := context.Background()

	incident := newIncident("Mansour", domain.SeverityHigh)
	require.NoError(t, repo.Create(ctx, incident))
	assert.Equal(t, int64(1), incident.ID)
	assert.True(t, incident.Active)
	assert.False(t, incident.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mansour", got.Zone)
	assert.Equal(t, domain.CategoryAccident, got.Category)
	assert.Equal(t, domain.SeverityHigh, got.Severity)
	assert.Equal(t, "Algeria Street", got.AffectedRoad)
	assert.InDelta(t, 33.3209, got.Lat, 1e-9)
	assert.True(t, got.Active)
	assert.WithinDuration(t, incident.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestIncident_IDsAreMonotonic(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		incident := newIncident("Karrada", domain.SeverityLow)
		require.NoError(t, repo.Create(ctx, incident))
		assert.Greater(t, incident.ID, last)
		last = incident.ID
	}
}

func TestIncident_GetByID_NotFound(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIncident_ListActive_OrdersBySeverityThenID(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))
	ctx := context.Background()

	for _, s := range []domain.Severity{
		domain.SeverityLow,
		domain.SeverityMedium,
		domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityHigh,
	} {
		require.NoError(t, repo.Create(ctx, newIncident("Mansour", s)))
	}

	incidents, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 5)

	var got []domain.Severity
	for _, i := range incidents {
		got = append(got, i.Severity)
	}
	assert.Equal(t, []domain.Severity{
		domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityHigh,
		domain.SeverityMedium,
		domain.SeverityLow,
	}, got)

	// Equal severity keeps creation order.
	assert.Less(t, incidents[1].ID, incidents[2].ID)
}

func TestIncident_Deactivate_IsIdempotent(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))
	ctx := context.Background()

	incident := newIncident("Jadriya", domain.SeverityMedium)
	require.NoError(t, repo.Create(ctx, incident))

	require.NoError(t, repo.Deactivate(ctx, incident.ID))
	require.NoError(t, repo.Deactivate(ctx, incident.ID))
	require.NoError(t, repo.Deactivate(ctx, 9999))

	got, err := repo.GetByID(ctx, incident.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestIncident_Counts_IgnoreInactive(t *testing.T) {
	repo := NewIncidentRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newIncident("Mansour", domain.SeverityHigh)))
	require.NoError(t, repo.Create(ctx, newIncident("Mansour", domain.SeverityLow)))
	require.NoError(t, repo.Create(ctx, newIncident("Karrada", domain.SeverityLow)))
	removed := newIncident("Adhamiya", domain.SeverityCritical)
	require.NoError(t, repo.Create(ctx, removed))
	require.NoError(t, repo.Deactivate(ctx, removed.ID))

	counts, err := repo.CountActiveByZone(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Mansour": 2, "Karrada": 1}, counts)

	n, err := repo.CountActiveInZones(ctx, "Mansour", "Adhamiya")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountActiveInZones(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPricingRecord_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewPricingRecordRepository(db)
	ctx := context.Background()

	record := &domain.PricingRecord{
		Origin:      "Mansour",
		Destination: "Jadriya",
		BasePrice:   7125,
		FinalPrice:  7125,
		RouteType:   domain.RouteFastest,
		DistanceKm:  2.5,
		Multiplier:  1,
		Weather:     domain.WeatherClear,
		TimePeriod:  domain.PeriodNoon,
	}
	require.NoError(t, repo.Create(ctx, record))
	assert.Equal(t, int64(1), record.ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
