package sqlite

import (
	"context"
	"database/sql"
	"time"

	"bits/internal/domain"
)

// PricingRecordRepository is a SQLite implementation of repository.PricingRecordRepository.
type PricingRecordRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPricingRecordRepository creates a new SQLite pricing audit repository.
func NewPricingRecordRepository(db *sql.DB) *PricingRecordRepository {
	return &PricingRecordRepository{db: db, now: time.Now}
}

// Create appends a pricing record.
func (r *PricingRecordRepository) Create(ctx context.Context, record *domain.PricingRecord) error {
	createdAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pricing_history
			(origin_zone, destination_zone, base_price, final_price, route_type,
			 distance_km, multiplier, created_at, weather, time_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Origin,
		record.Destination,
		record.BasePrice,
		record.FinalPrice,
		string(record.RouteType),
		record.DistanceKm,
		record.Multiplier,
		createdAt.Format(time.RFC3339Nano),
		string(record.Weather),
		string(record.TimePeriod),
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

// Count returns the number of audit rows.
func (r *PricingRecordRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pricing_history`).Scan(&n)
	return n, err
}
