// Package recorder implements the event recorder: validation and append of
// shipping events against the shipment registry.
//
// Every recording either fully commits (status transition, event insert,
// history append) or fully rejects with a typed error; a rejected call
// leaves both stores unchanged. Validation runs entirely against a
// read-only snapshot before the first write.
package recorder

import (
	"context"
	"time"

	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/repositories"
	"github.com/upb/shipment-ledger/services"
	"github.com/upb/shipment-ledger/services/clock"
	"github.com/upb/shipment-ledger/services/registry"
	"go.uber.org/zap"
)

// Registry is the recorder's view of the shipment registry. Events hold a
// foreign key into it, never a mutable handle to a shipment.
type Registry interface {
	Get(ctx context.Context, id string) (*models.Shipment, error)
	ApplyStatusTransition(ctx context.Context, shipmentID string, eventType models.EventType, eventID string, now time.Time) (models.ShipmentStatus, error)
}

// Notifier receives post-commit recorder notifications.
type Notifier interface {
	ShipmentStatusUpdated(shipmentID string, status models.ShipmentStatus)
	ShippingEventRecorded(eventID, shipmentID string, status models.ShipmentStatus)
}

// Service is the event recorder.
type Service struct {
	events    repositories.EventRepository
	registry  Registry
	txManager repositories.TransactionManager
	clock     clock.Clock
	notifier  Notifier
	logger    *zap.Logger
}

// NewService creates a new recorder Service.
func NewService(
	events repositories.EventRepository,
	reg Registry,
	txManager repositories.TransactionManager,
	clk clock.Clock,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		events:    events,
		registry:  reg,
		txManager: txManager,
		clock:     clk,
		notifier:  notifier,
		logger:    logger,
	}
}

// RecordEvent validates a shipping event against the referenced shipment,
// applies the status transition through the registry, and appends the event
// to the store. Validation is fail-fast; the first violated rule wins.
//
// Event timestamps are stored verbatim: they describe when the physical
// event was observed and are never used to reorder or to validate against
// the ledger clock.
func (s *Service) RecordEvent(ctx context.Context, event *models.ShippingEvent) error {
	if err := registry.ValidateIdentifier(event.ID); err != nil {
		return err.WithDetail("field", "id")
	}
	if err := registry.ValidateIdentifier(event.ShipmentID); err != nil {
		return err.WithDetail("field", "shipment_id")
	}
	if !event.Type.IsValid() {
		return services.ErrInvalidEventType.WithDetail("event_type", string(event.Type))
	}

	exists, err := s.events.Exists(ctx, event.ID)
	if err != nil {
		return services.WrapInternal("event lookup failed", err)
	}
	if exists {
		return services.ErrEventAlreadyExists.WithDetail("event_id", event.ID)
	}

	shipment, err := s.registry.Get(ctx, event.ShipmentID)
	if err != nil {
		return err
	}

	if event.Type == models.EventTypeSensorReading && len(event.Readings) == 0 {
		return services.ErrMissingReadings
	}
	for _, reading := range event.Readings {
		if !reading.ReadingType.IsValid() {
			return services.ErrInvalidReadingType.
				WithDetail("reading_type", string(reading.ReadingType)).
				WithDetail("device_id", reading.DeviceID)
		}
	}

	if event.Location != nil && !event.Location.InBounds() {
		return services.ErrInvalidGeoCoordinates.
			WithDetail("latitude", event.Location.Latitude.String()).
			WithDetail("longitude", event.Location.Longitude.String())
	}

	// Snapshot check so a doomed recording never reaches the write path.
	if _, err := registry.NextStatus(shipment.Status, event.Type); err != nil {
		return err
	}

	now := s.clock.Now()
	var resulting models.ShipmentStatus
	err = s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		status, err := s.registry.ApplyStatusTransition(ctx, event.ShipmentID, event.Type, event.ID, now)
		if err != nil {
			return err
		}
		resulting = status
		return s.events.Insert(ctx, event)
	})
	if err != nil {
		return err
	}

	s.logger.Info("shipping event recorded",
		zap.String("event_id", event.ID),
		zap.String("shipment_id", event.ShipmentID),
		zap.String("event_type", string(event.Type)),
		zap.String("resulting_status", string(resulting)))

	if resulting != shipment.Status {
		s.notifier.ShipmentStatusUpdated(event.ShipmentID, resulting)
	}
	s.notifier.ShippingEventRecorded(event.ID, event.ShipmentID, resulting)
	return nil
}

// Get retrieves a shipping event by id. Pure lookup, no side effect.
func (s *Service) Get(ctx context.Context, id string) (*models.ShippingEvent, error) {
	return s.events.GetByID(ctx, id)
}

// ListByShipment retrieves all events recorded against a shipment, in
// recording order.
func (s *Service) ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShippingEvent, error) {
	if _, err := s.registry.Get(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.events.GetByShipmentID(ctx, shipmentID)
}
