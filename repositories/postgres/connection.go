package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/shipment-ledger/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema creates the ledger tables when they do not exist. Rows are
// append-only: shipments are only ever updated by the status transition,
// events never at all.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS shipments (
			id         VARCHAR(36) PRIMARY KEY,
			owner      TEXT        NOT NULL,
			status     TEXT        NOT NULL,
			products   TEXT[]      NOT NULL,
			registered TIMESTAMPTZ NOT NULL,
			delivered  TIMESTAMPTZ,
			events     TEXT[]      NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_shipments_owner ON shipments (owner, registered);

		CREATE TABLE IF NOT EXISTS shipping_events (
			id          VARCHAR(36) PRIMARY KEY,
			event_type  TEXT        NOT NULL,
			shipment_id VARCHAR(36) NOT NULL REFERENCES shipments (id),
			latitude    NUMERIC,
			longitude   NUMERIC,
			readings    JSONB       NOT NULL DEFAULT '[]',
			timestamp   BIGINT      NOT NULL,
			recorded_at BIGSERIAL
		);
		CREATE INDEX IF NOT EXISTS idx_shipping_events_shipment ON shipping_events (shipment_id, recorded_at);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("ledger schema initialized")
	return nil
}
