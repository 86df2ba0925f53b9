// Package registry implements the shipment registry: the write-once mapping
// from shipment id to shipment record, and the status state machine every
// recorded event is applied through.
package registry

import (
	"context"
	"time"

	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/repositories"
	"github.com/upb/shipment-ledger/services"
	"github.com/upb/shipment-ledger/services/clock"
	"go.uber.org/zap"
)

// Notifier receives post-commit registry notifications.
type Notifier interface {
	ShipmentRegistered(shipmentID, owner string)
	ShipmentStatusUpdated(shipmentID string, status models.ShipmentStatus)
}

// Service is the shipment registry.
type Service struct {
	shipments repositories.ShipmentRepository
	txManager repositories.TransactionManager
	clock     clock.Clock
	notifier  Notifier
	logger    *zap.Logger
}

// NewService creates a new registry Service.
func NewService(
	shipments repositories.ShipmentRepository,
	txManager repositories.TransactionManager,
	clk clock.Clock,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		shipments: shipments,
		txManager: txManager,
		clock:     clk,
		notifier:  notifier,
		logger:    logger,
	}
}

// RegisterShipment creates a new shipment in Pending status. Registration is
// write-once: re-registering an id is always rejected, even by the same
// owner with identical arguments.
func (s *Service) RegisterShipment(ctx context.Context, id, owner string, products []string) error {
	if err := ValidateIdentifier(id); err != nil {
		return err.WithDetail("field", "id")
	}
	if owner == "" {
		return services.ErrInvalidOrMissingIdentifier.WithDetail("field", "owner")
	}
	if len(products) == 0 {
		return services.ErrProductsListIsEmpty
	}
	if len(products) > models.MaxShipmentProducts {
		return services.ErrShipmentHasTooManyProducts.WithDetail("count", len(products))
	}
	for _, product := range products {
		if err := ValidateIdentifier(product); err != nil {
			return err.WithDetail("field", "products")
		}
	}

	exists, err := s.shipments.Exists(ctx, id)
	if err != nil {
		return services.WrapInternal("shipment lookup failed", err)
	}
	if exists {
		return services.ErrShipmentAlreadyExists.WithDetail("shipment_id", id)
	}

	shipment := models.NewShipmentBuilder().
		IdentifiedBy(id).
		OwnedBy(owner).
		WithProducts(products).
		RegisteredOn(s.clock.Now()).
		Build()

	err = s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		return s.shipments.Insert(ctx, shipment)
	})
	if err != nil {
		return err
	}

	s.logger.Info("shipment registered",
		zap.String("shipment_id", id),
		zap.String("owner", owner),
		zap.Int("products", len(products)))

	s.notifier.ShipmentRegistered(id, owner)
	s.notifier.ShipmentStatusUpdated(id, models.StatusPending)
	return nil
}

// Get retrieves a shipment by id. Pure lookup, no side effect.
func (s *Service) Get(ctx context.Context, id string) (*models.Shipment, error) {
	return s.shipments.GetByID(ctx, id)
}

// ListByOwner retrieves the ids of all shipments registered to an owner,
// in registration order.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]string, error) {
	return s.shipments.GetByOwner(ctx, owner)
}

// ApplyStatusTransition advances a shipment's status for the given event and
// appends the event id to its history. Invoked by the event recorder inside
// the recording transaction; not exposed to external callers. Returns the
// shipment's resulting status.
func (s *Service) ApplyStatusTransition(ctx context.Context, shipmentID string, eventType models.EventType, eventID string, now time.Time) (models.ShipmentStatus, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return "", err
	}

	next, terr := NextStatus(shipment.Status, eventType)
	if terr != nil {
		return "", terr
	}

	shipment.Status = next
	if eventType == models.EventTypeDelivery {
		delivered := now
		shipment.Delivered = &delivered
	}
	shipment.Events = append(shipment.Events, eventID)

	if err := s.shipments.UpdateStatus(ctx, shipment); err != nil {
		return "", services.WrapInternal("status update failed", err)
	}
	return next, nil
}

// NextStatus computes the status a shipment moves to when an event of the
// given type is applied. Pickup and delivery are one-shot custody milestones
// that must occur exactly once in order; sensor readings are status-neutral
// until delivery closes the monitored custody chain.
func NextStatus(current models.ShipmentStatus, eventType models.EventType) (models.ShipmentStatus, error) {
	switch eventType {
	case models.EventTypePickup:
		if current == models.StatusPending {
			return models.StatusInTransit, nil
		}
		return "", services.ErrInvalidStatusTransition.
			WithDetail("status", string(current)).
			WithDetail("event_type", string(eventType))
	case models.EventTypeDelivery:
		if current == models.StatusInTransit {
			return models.StatusDelivered, nil
		}
		return "", services.ErrInvalidStatusTransition.
			WithDetail("status", string(current)).
			WithDetail("event_type", string(eventType))
	case models.EventTypeSensorReading:
		if current == models.StatusDelivered {
			return "", services.ErrShipmentIsDelivered
		}
		return current, nil
	default:
		return "", services.ErrInvalidEventType.WithDetail("event_type", string(eventType))
	}
}

// ValidateIdentifier checks the shared identifier format rule: non-empty and
// at most models.MaxIdentifierLength bytes. Identifiers are otherwise opaque.
func ValidateIdentifier(id string) *services.DomainError {
	if id == "" || len(id) > models.MaxIdentifierLength {
		return services.ErrInvalidOrMissingIdentifier
	}
	return nil
}
