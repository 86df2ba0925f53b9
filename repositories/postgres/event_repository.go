package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/repositories"
	"github.com/upb/shipment-ledger/services"
	"go.uber.org/zap"
)

// EventRepository implements the repositories.EventRepository interface
type EventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEventRepository creates a new shipping event repository
func NewEventRepository(db *DB, logger *zap.Logger) repositories.EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new shipping event. Fails if the id is already present.
func (r *EventRepository) Insert(ctx context.Context, event *models.ShippingEvent) error {
	readings, err := json.Marshal(event.Readings)
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}

	var latitude, longitude decimal.NullDecimal
	if event.Location != nil {
		latitude = decimal.NewNullDecimal(event.Location.Latitude)
		longitude = decimal.NewNullDecimal(event.Location.Longitude)
	}

	query := `
		INSERT INTO shipping_events (id, event_type, shipment_id, latitude, longitude, readings, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		event.ID,
		event.Type,
		event.ShipmentID,
		latitude,
		longitude,
		readings,
		event.Timestamp,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return services.ErrEventAlreadyExists.WithDetail("event_id", event.ID)
		}
		return fmt.Errorf("failed to insert shipping event: %w", err)
	}

	r.logger.Debug("shipping event inserted",
		zap.String("id", event.ID),
		zap.String("shipment_id", event.ShipmentID))
	return nil
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.ShippingEvent, error) {
	query := `
		SELECT id, event_type, shipment_id, latitude, longitude, readings, timestamp
		FROM shipping_events
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	event, err := scanEvent(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrEventIsUnknown.WithDetail("event_id", id)
		}
		return nil, fmt.Errorf("failed to get shipping event: %w", err)
	}
	return event, nil
}

// Exists reports whether an event id is present
func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shipping_events WHERE id = $1)`

	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}

// GetByShipmentID retrieves all events of a shipment in recording order
func (r *EventRepository) GetByShipmentID(ctx context.Context, shipmentID string) ([]*models.ShippingEvent, error) {
	query := `
		SELECT id, event_type, shipment_id, latitude, longitude, readings, timestamp
		FROM shipping_events
		WHERE shipment_id = $1
		ORDER BY recorded_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping events: %w", err)
	}
	defer rows.Close()

	events := []*models.ShippingEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipping event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shipping events: %w", err)
	}

	return events, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.ShippingEvent, error) {
	event := &models.ShippingEvent{}
	var latitude, longitude decimal.NullDecimal
	var readings []byte

	err := row.Scan(
		&event.ID,
		&event.Type,
		&event.ShipmentID,
		&latitude,
		&longitude,
		&readings,
		&event.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid && longitude.Valid {
		event.Location = &models.ReadPoint{
			Latitude:  latitude.Decimal,
			Longitude: longitude.Decimal,
		}
	}
	if err := json.Unmarshal(readings, &event.Readings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal readings: %w", err)
	}

	return event, nil
}
