// Package sqlite implements the incident ledger and pricing audit on an
// embedded SQLite database. It backs local mode and repository tests.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS incidents (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	zone          TEXT NOT NULL,
	category      TEXT NOT NULL,
	severity      TEXT NOT NULL,
	description   TEXT,
	latitude      REAL,
	longitude     REAL,
	created_at    TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	affected_road TEXT
);

CREATE INDEX IF NOT EXISTS idx_incidents_active_zone ON incidents (is_active, zone);

CREATE TABLE IF NOT EXISTS pricing_history (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	origin_zone      TEXT NOT NULL,
	destination_zone TEXT NOT NULL,
	base_price       REAL,
	final_price      REAL,
	route_type       TEXT,
	distance_km      REAL,
	multiplier       REAL,
	created_at       TEXT NOT NULL,
	weather          TEXT,
	time_period      TEXT
);
`

// Open opens a SQLite database at dsn and configures WAL mode.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return db, nil
}

// Schema creates the incident ledger and pricing audit tables.
type Schema struct {
	db *sql.DB
}

// NewSchema creates a schema migrator for db.
func NewSchema(db *sql.DB) *Schema {
	return &Schema{db: db}
}

// Migrate creates missing tables and indexes.
func (s *Schema) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return eris.Wrap(err, "sqlite: migrate")
}
