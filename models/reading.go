package models

import (
	"github.com/shopspring/decimal"
)

// ReadingType identifies the physical quantity a sensor measured. The set is
// closed: values outside it are rejected at recording time.
type ReadingType string

const (
	ReadingTypeHumidity    ReadingType = "humidity"
	ReadingTypeTemperature ReadingType = "temperature"
	ReadingTypeVibration   ReadingType = "vibration"
	ReadingTypeShock       ReadingType = "shock"
	ReadingTypeTilt        ReadingType = "tilt"
	ReadingTypeLight       ReadingType = "light"
)

// IsValid reports whether the reading type belongs to the closed enumeration.
func (t ReadingType) IsValid() bool {
	switch t {
	case ReadingTypeHumidity, ReadingTypeTemperature, ReadingTypeVibration,
		ReadingTypeShock, ReadingTypeTilt, ReadingTypeLight:
		return true
	}
	return false
}

// Reading is a single sensor measurement attached to a shipping event.
// Timestamp is the UNIX time of the individual measurement, stored verbatim.
type Reading struct {
	DeviceID    string          `json:"device_id" db:"device_id"`
	ReadingType ReadingType     `json:"reading_type" db:"reading_type"`
	Timestamp   int64           `json:"timestamp" db:"timestamp"`
	Value       decimal.Decimal `json:"value" db:"value"`
}
