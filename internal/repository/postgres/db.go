package postgres

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS incidents (
	id            BIGSERIAL PRIMARY KEY,
	zone          TEXT NOT NULL,
	category      TEXT NOT NULL,
	severity      TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
	description   TEXT,
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	affected_road TEXT
);

CREATE INDEX IF NOT EXISTS idx_incidents_active_zone ON incidents (zone) WHERE is_active;

CREATE TABLE IF NOT EXISTS pricing_history (
	id               BIGSERIAL PRIMARY KEY,
	origin_zone      TEXT NOT NULL,
	destination_zone TEXT NOT NULL,
	base_price       DOUBLE PRECISION,
	final_price      DOUBLE PRECISION,
	route_type       TEXT,
	distance_km      DOUBLE PRECISION,
	multiplier       DOUBLE PRECISION,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	weather          TEXT,
	time_period      TEXT
);
`

// Schema creates the incident ledger and pricing audit tables.
type Schema struct {
	q Querier
}

// NewSchema creates a schema migrator for db.
func NewSchema(db *sql.DB) *Schema {
	return &Schema{q: db}
}

// Migrate creates missing tables and indexes.
func (s *Schema) Migrate(ctx context.Context) error {
	_, err := s.q.ExecContext(ctx, schema)
	return eris.Wrap(err, "postgres: migrate")
}
