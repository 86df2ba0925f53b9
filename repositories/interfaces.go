package repositories

import (
	"context"

	"github.com/upb/shipment-ledger/models"
)

// TransactionManager manages the all-or-nothing apply of ledger operations.
// Each register/record operation runs inside exactly one transaction: either
// every store mutation commits or none does.
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a backend transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// ShipmentRepository is the keyed store backing the shipment registry.
// Shipments are write-once rows: Insert never overwrites, and the only
// updates are the status transition and the event-history append.
type ShipmentRepository interface {
	// Insert stores a new shipment. Fails if the id is already present.
	Insert(ctx context.Context, shipment *models.Shipment) error

	// GetByID retrieves a shipment by id, or services.ErrShipmentIsUnknown.
	GetByID(ctx context.Context, id string) (*models.Shipment, error)

	// Exists reports whether a shipment id is present.
	Exists(ctx context.Context, id string) (bool, error)

	// GetByOwner retrieves the ids of all shipments registered to an owner,
	// in registration order.
	GetByOwner(ctx context.Context, owner string) ([]string, error)

	// UpdateStatus persists a status change together with the optional
	// delivered timestamp and the appended event id.
	UpdateStatus(ctx context.Context, shipment *models.Shipment) error
}

// EventRepository is the keyed store backing the event recorder.
// Events are immutable once inserted; there is no update or delete.
type EventRepository interface {
	// Insert stores a new shipping event. Fails if the id is already present.
	Insert(ctx context.Context, event *models.ShippingEvent) error

	// GetByID retrieves an event by id, or services.ErrEventIsUnknown.
	GetByID(ctx context.Context, id string) (*models.ShippingEvent, error)

	// Exists reports whether an event id is present.
	Exists(ctx context.Context, id string) (bool, error)

	// GetByShipmentID retrieves all events of a shipment in recording order.
	GetByShipmentID(ctx context.Context, shipmentID string) ([]*models.ShippingEvent, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Shipments ShipmentRepository
	Events    EventRepository
}
