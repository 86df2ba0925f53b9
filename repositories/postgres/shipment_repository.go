package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/repositories"
	"github.com/upb/shipment-ledger/services"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// ShipmentRepository implements the repositories.ShipmentRepository interface
type ShipmentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewShipmentRepository creates a new shipment repository
func NewShipmentRepository(db *DB, logger *zap.Logger) repositories.ShipmentRepository {
	return &ShipmentRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new shipment. Fails if the id is already present.
func (r *ShipmentRepository) Insert(ctx context.Context, shipment *models.Shipment) error {
	query := `
		INSERT INTO shipments (id, owner, status, products, registered, delivered, events)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		shipment.ID,
		shipment.Owner,
		shipment.Status,
		pq.Array(shipment.Products),
		shipment.Registered,
		shipment.Delivered,
		pq.Array(shipment.Events),
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return services.ErrShipmentAlreadyExists.WithDetail("shipment_id", shipment.ID)
		}
		return fmt.Errorf("failed to insert shipment: %w", err)
	}

	r.logger.Debug("shipment inserted", zap.String("id", shipment.ID))
	return nil
}

// GetByID retrieves a shipment by id
func (r *ShipmentRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	query := `
		SELECT id, owner, status, products, registered, delivered, events
		FROM shipments
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	shipment := &models.Shipment{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&shipment.ID,
		&shipment.Owner,
		&shipment.Status,
		pq.Array(&shipment.Products),
		&shipment.Registered,
		&shipment.Delivered,
		pq.Array(&shipment.Events),
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrShipmentIsUnknown.WithDetail("shipment_id", id)
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	return shipment, nil
}

// Exists reports whether a shipment id is present
func (r *ShipmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`

	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check shipment existence: %w", err)
	}
	return exists, nil
}

// GetByOwner retrieves the ids of all shipments registered to an owner,
// in registration order
func (r *ShipmentRepository) GetByOwner(ctx context.Context, owner string) ([]string, error) {
	query := `
		SELECT id
		FROM shipments
		WHERE owner = $1
		ORDER BY registered ASC, id ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments by owner: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan shipment id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shipment ids: %w", err)
	}

	return ids, nil
}

// UpdateStatus persists a status change together with the delivered
// timestamp and the appended event history
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, shipment *models.Shipment) error {
	query := `
		UPDATE shipments
		SET status = $2, delivered = $3, events = $4
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		shipment.ID,
		shipment.Status,
		shipment.Delivered,
		pq.Array(shipment.Events),
	)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return services.ErrShipmentIsUnknown.WithDetail("shipment_id", shipment.ID)
	}

	r.logger.Debug("shipment status updated",
		zap.String("id", shipment.ID),
		zap.String("status", string(shipment.Status)))
	return nil
}
