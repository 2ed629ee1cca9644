package repository

import (
	"context"

	"bits/internal/domain"
)

// PricingRecordRepository appends quote audit rows. It is never read by pricing.
type PricingRecordRepository interface {
	// Create appends a pricing record and fills in its ID.
	Create(ctx context.Context, record *domain.PricingRecord) error
}

// Migrator creates the schema of a SQL backend.
type Migrator interface {
	Migrate(ctx context.Context) error
}
