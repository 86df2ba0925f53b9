// Package memory provides keyed in-memory stores for hosts that serialize
// ledger operations themselves. The stores are plain maps with no internal
// locking: the host must guarantee single-writer sequential apply, or
// partition by shipment id, before driving them concurrently.
package memory

import (
	"context"

	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/services"
)

// ShipmentStore implements repositories.ShipmentRepository over a map.
type ShipmentStore struct {
	shipments map[string]*models.Shipment
	// byOwner preserves registration order per owner.
	byOwner map[string][]string
}

// NewShipmentStore creates an empty shipment store.
func NewShipmentStore() *ShipmentStore {
	return &ShipmentStore{
		shipments: make(map[string]*models.Shipment),
		byOwner:   make(map[string][]string),
	}
}

// Insert stores a new shipment. Fails if the id is already present.
func (s *ShipmentStore) Insert(_ context.Context, shipment *models.Shipment) error {
	if _, ok := s.shipments[shipment.ID]; ok {
		return services.ErrShipmentAlreadyExists
	}
	s.shipments[shipment.ID] = cloneShipment(shipment)
	s.byOwner[shipment.Owner] = append(s.byOwner[shipment.Owner], shipment.ID)
	return nil
}

// GetByID retrieves a shipment by id.
func (s *ShipmentStore) GetByID(_ context.Context, id string) (*models.Shipment, error) {
	shipment, ok := s.shipments[id]
	if !ok {
		return nil, services.ErrShipmentIsUnknown
	}
	return cloneShipment(shipment), nil
}

// Exists reports whether a shipment id is present.
func (s *ShipmentStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.shipments[id]
	return ok, nil
}

// GetByOwner retrieves the ids of all shipments registered to an owner.
func (s *ShipmentStore) GetByOwner(_ context.Context, owner string) ([]string, error) {
	ids := s.byOwner[owner]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// UpdateStatus persists a status change and the appended event history.
func (s *ShipmentStore) UpdateStatus(_ context.Context, shipment *models.Shipment) error {
	if _, ok := s.shipments[shipment.ID]; !ok {
		return services.ErrShipmentIsUnknown
	}
	s.shipments[shipment.ID] = cloneShipment(shipment)
	return nil
}

// EventStore implements repositories.EventRepository over a map.
type EventStore struct {
	events map[string]*models.ShippingEvent
	// byShipment preserves recording order per shipment.
	byShipment map[string][]string
}

// NewEventStore creates an empty event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events:     make(map[string]*models.ShippingEvent),
		byShipment: make(map[string][]string),
	}
}

// Insert stores a new shipping event. Fails if the id is already present.
func (s *EventStore) Insert(_ context.Context, event *models.ShippingEvent) error {
	if _, ok := s.events[event.ID]; ok {
		return services.ErrEventAlreadyExists
	}
	s.events[event.ID] = cloneEvent(event)
	s.byShipment[event.ShipmentID] = append(s.byShipment[event.ShipmentID], event.ID)
	return nil
}

// GetByID retrieves an event by id.
func (s *EventStore) GetByID(_ context.Context, id string) (*models.ShippingEvent, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, services.ErrEventIsUnknown
	}
	return cloneEvent(event), nil
}

// Exists reports whether an event id is present.
func (s *EventStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.events[id]
	return ok, nil
}

// GetByShipmentID retrieves all events of a shipment in recording order.
func (s *EventStore) GetByShipmentID(_ context.Context, shipmentID string) ([]*models.ShippingEvent, error) {
	ids := s.byShipment[shipmentID]
	out := make([]*models.ShippingEvent, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneEvent(s.events[id]))
	}
	return out, nil
}

// Stores are handed out as copies so callers never alias the registry's
// exclusive ownership of shipment state.

func cloneShipment(in *models.Shipment) *models.Shipment {
	out := *in
	out.Products = append([]string(nil), in.Products...)
	out.Events = append([]string(nil), in.Events...)
	if in.Delivered != nil {
		delivered := *in.Delivered
		out.Delivered = &delivered
	}
	return &out
}

func cloneEvent(in *models.ShippingEvent) *models.ShippingEvent {
	out := *in
	out.Readings = append([]models.Reading(nil), in.Readings...)
	if in.Location != nil {
		location := *in.Location
		out.Location = &location
	}
	return &out
}
