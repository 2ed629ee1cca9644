package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpq" // Registers "nrpostgres" driver
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rotisserie/eris"

	"bits/internal/config"
	"bits/internal/repository"
	"bits/internal/repository/postgres"
	"bits/internal/repository/sqlite"
)

// Storage bundles the SQL handle with the repositories built on it.
type Storage struct {
	DB        *sql.DB
	Incidents repository.IncidentRepository
	Pricing   repository.PricingRecordRepository
	Schema    repository.Migrator
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// NewStorage opens the configured ledger database.
func NewStorage(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*Storage, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := NewDatabase(ctx, cfg, nrApp)
		if err != nil {
			return nil, err
		}
		return &Storage{
			DB:        db,
			Incidents: postgres.NewIncidentRepository(db),
			Pricing:   postgres.NewPricingRecordRepository(db),
			Schema:    postgres.NewSchema(db),
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, eris.Wrap(err, "failed to ping sqlite")
		}
		return &Storage{
			DB:        db,
			Incidents: sqlite.NewIncidentRepository(db),
			Pricing:   sqlite.NewPricingRecordRepository(db),
			Schema:    sqlite.NewSchema(db),
		}, nil

	default:
		return nil, eris.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDatabase creates a new PostgreSQL connection pool.
// If nrApp is provided, it uses the New Relic instrumented driver for SQL tracing.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	// The "nrpostgres" driver is registered by the nrpq import
	driver := "postgres"
	if nrApp != nil {
		driver = "nrpostgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open database with %s", driver)
	}

	// The ledger sees a handful of admin writes and one count per quote.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to ping database")
	}

	return db, nil
}
