package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeIsValid(t *testing.T) {
	assert.True(t, EventTypePickup.IsValid())
	assert.True(t, EventTypeDelivery.IsValid())
	assert.True(t, EventTypeSensorReading.IsValid())
	assert.False(t, EventType("customs_inspection").IsValid())
	assert.False(t, EventType("").IsValid())
}

func TestReadingTypeIsValid(t *testing.T) {
	for _, rt := range []ReadingType{
		ReadingTypeHumidity,
		ReadingTypeTemperature,
		ReadingTypeVibration,
		ReadingTypeShock,
		ReadingTypeTilt,
		ReadingTypeLight,
	} {
		assert.True(t, rt.IsValid(), string(rt))
	}

	assert.False(t, ReadingType("pressure").IsValid())
	assert.False(t, ReadingType("Temperature").IsValid())
	assert.False(t, ReadingType("").IsValid())
}

func TestReadPointInBounds(t *testing.T) {
	point := func(lat, lon string) ReadPoint {
		return ReadPoint{
			Latitude:  decimal.RequireFromString(lat),
			Longitude: decimal.RequireFromString(lon),
		}
	}

	tests := []struct {
		name string
		p    ReadPoint
		want bool
	}{
		{"origin", point("0", "0"), true},
		{"interior", point("6.2442", "-75.5812"), true},
		{"latitude upper bound", point("90", "0"), true},
		{"latitude lower bound", point("-90", "0"), true},
		{"longitude upper bound", point("0", "180"), true},
		{"longitude lower bound", point("0", "-180"), true},
		{"latitude too high", point("90.0001", "0"), false},
		{"latitude too low", point("-90.0001", "0"), false},
		{"longitude too high", point("0", "180.0001"), false},
		{"longitude too low", point("0", "-180.0001"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.InBounds())
		})
	}
}
