package postgres

import (
	"context"
	"database/sql"

	"bits/internal/domain"
)

// PricingRecordRepository is a PostgreSQL implementation of repository.PricingRecordRepository.
type PricingRecordRepository struct {
	q Querier
}

// NewPricingRecordRepository creates a new PostgreSQL pricing audit repository.
func NewPricingRecordRepository(db *sql.DB) *PricingRecordRepository {
	return &PricingRecordRepository{q: db}
}

// Create appends a pricing record.
func (r *PricingRecordRepository) Create(ctx context.Context, record *domain.PricingRecord) error {
	query := `
		INSERT INTO pricing_history
			(origin_zone, destination_zone, base_price, final_price, route_type,
			 distance_km, multiplier, weather, time_period)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return r.q.QueryRowContext(ctx, query,
		record.Origin,
		record.Destination,
		record.BasePrice,
		record.FinalPrice,
		record.RouteType,
		record.DistanceKm,
		record.Multiplier,
		record.Weather,
		record.TimePeriod,
	).Scan(&record.ID, &record.CreatedAt)
}
