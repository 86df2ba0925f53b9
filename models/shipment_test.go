package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusInTransit.IsValid())
	assert.True(t, StatusDelivered.IsValid())
	assert.False(t, ShipmentStatus("returned").IsValid())
	assert.False(t, ShipmentStatus("").IsValid())
}

func TestNewShipment(t *testing.T) {
	registered := time.Unix(1700000000, 0).UTC()
	shipment := NewShipment("S1", "ownerA", []string{"P1", "P2"}, registered)

	assert.Equal(t, "S1", shipment.ID)
	assert.Equal(t, "ownerA", shipment.Owner)
	assert.Equal(t, StatusPending, shipment.Status)
	assert.Equal(t, []string{"P1", "P2"}, shipment.Products)
	assert.Equal(t, registered, shipment.Registered)
	assert.Nil(t, shipment.Delivered)
	require.NotNil(t, shipment.Events)
	assert.Empty(t, shipment.Events)
}

func TestShipmentBuilder(t *testing.T) {
	registered := time.Unix(1700000000, 0).UTC()

	shipment := NewShipmentBuilder().
		IdentifiedBy("S1").
		OwnedBy("ownerA").
		WithProducts([]string{"P1"}).
		RegisteredOn(registered).
		Build()

	assert.Equal(t, "S1", shipment.ID)
	assert.Equal(t, "ownerA", shipment.Owner)
	assert.Equal(t, []string{"P1"}, shipment.Products)
	assert.Equal(t, registered, shipment.Registered)
	assert.Equal(t, StatusPending, shipment.Status)
}
