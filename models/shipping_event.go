package models

import (
	"github.com/shopspring/decimal"
)

// EventType represents the kind of shipping event recorded against a shipment
type EventType string

const (
	EventTypePickup        EventType = "shipment_pickup"
	EventTypeDelivery      EventType = "shipment_delivery"
	EventTypeSensorReading EventType = "sensor_reading"
)

// IsValid reports whether the event type is one of the known kinds.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePickup, EventTypeDelivery, EventTypeSensorReading:
		return true
	}
	return false
}

// ReadPoint is the geographic coordinate where an event was captured.
// Coordinates are fixed-point decimals so replays are bit-for-bit identical.
type ReadPoint struct {
	Latitude  decimal.Decimal `json:"latitude" db:"latitude"`
	Longitude decimal.Decimal `json:"longitude" db:"longitude"`
}

// InBounds reports whether latitude is within [-90, 90] and longitude
// within [-180, 180].
func (p ReadPoint) InBounds() bool {
	return p.Latitude.GreaterThanOrEqual(decimal.NewFromInt(-90)) &&
		p.Latitude.LessThanOrEqual(decimal.NewFromInt(90)) &&
		p.Longitude.GreaterThanOrEqual(decimal.NewFromInt(-180)) &&
		p.Longitude.LessThanOrEqual(decimal.NewFromInt(180))
}

// ShippingEvent is a discrete occurrence recorded against a shipment: a
// custody milestone (pickup, delivery) or a batch of sensor measurements.
// Events are write-once; they are never edited or deleted after recording.
//
// Timestamp is the caller-supplied UNIX time of the physical observation.
// It is stored verbatim and plays no part in validation or ordering; the
// ledger's order is the order record operations are applied.
type ShippingEvent struct {
	ID         string     `json:"id" db:"id"`
	Type       EventType  `json:"event_type" db:"event_type"`
	ShipmentID string     `json:"shipment_id" db:"shipment_id"`
	Location   *ReadPoint `json:"location,omitempty" db:"location"`
	Readings   []Reading  `json:"readings" db:"readings"`
	Timestamp  int64      `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the ShippingEvent model
func (ShippingEvent) TableName() string {
	return "shipping_events"
}
