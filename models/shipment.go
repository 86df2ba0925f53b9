package models

import (
	"time"
)

// MaxIdentifierLength is the upper bound, in bytes, for shipment and event
// identifiers. Identifiers are opaque; only emptiness and length are checked.
const MaxIdentifierLength = 36

// MaxShipmentProducts is the upper bound on products carried by one shipment.
const MaxShipmentProducts = 10

// ShipmentStatus represents a shipment's position in its custody lifecycle.
// Transitions are monotonic: Pending -> InTransit -> Delivered, never back.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Shipment represents a tracked consignment of products moving through
// custody from origin to destination. The registry is its sole owner:
// status is only ever mutated through the registry's transition operation.
type Shipment struct {
	ID         string         `json:"id" db:"id"`
	Owner      string         `json:"owner" db:"owner"`
	Status     ShipmentStatus `json:"status" db:"status"`
	Products   []string       `json:"products" db:"products"`
	Registered time.Time      `json:"registered" db:"registered"`
	Delivered  *time.Time     `json:"delivered,omitempty" db:"delivered"`
	// Events holds the ids of events recorded against this shipment in
	// recording order, which is the ledger's total order of operations and
	// not necessarily event-timestamp order.
	Events []string `json:"events" db:"events"`
}

// TableName returns the table name for the Shipment model
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a Shipment in Pending status with an empty event history.
func NewShipment(id, owner string, products []string, registered time.Time) *Shipment {
	return &Shipment{
		ID:         id,
		Owner:      owner,
		Status:     StatusPending,
		Products:   products,
		Registered: registered,
		Events:     []string{},
	}
}

// ShipmentBuilder assembles a Shipment step by step.
type ShipmentBuilder struct {
	id         string
	owner      string
	products   []string
	registered time.Time
}

// NewShipmentBuilder creates an empty ShipmentBuilder.
func NewShipmentBuilder() *ShipmentBuilder {
	return &ShipmentBuilder{}
}

// IdentifiedBy sets the shipment identifier.
func (b *ShipmentBuilder) IdentifiedBy(id string) *ShipmentBuilder {
	b.id = id
	return b
}

// OwnedBy sets the owning identity.
func (b *ShipmentBuilder) OwnedBy(owner string) *ShipmentBuilder {
	b.owner = owner
	return b
}

// WithProducts sets the product identifiers.
func (b *ShipmentBuilder) WithProducts(products []string) *ShipmentBuilder {
	b.products = products
	return b
}

// RegisteredOn sets the registration timestamp.
func (b *ShipmentBuilder) RegisteredOn(registered time.Time) *ShipmentBuilder {
	b.registered = registered
	return b
}

// Build returns the assembled Shipment in Pending status.
func (b *ShipmentBuilder) Build() *Shipment {
	return NewShipment(b.id, b.owner, b.products, b.registered)
}
