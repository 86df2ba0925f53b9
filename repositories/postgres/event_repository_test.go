package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/services"
	"go.uber.org/zap"
)

func sampleEvent() *models.ShippingEvent {
	return &models.ShippingEvent{
		ID:         "E1",
		Type:       models.EventTypeSensorReading,
		ShipmentID: "S1",
		Location: &models.ReadPoint{
			Latitude:  decimal.RequireFromString("6.2442"),
			Longitude: decimal.RequireFromString("-75.5812"),
		},
		Readings: []models.Reading{{
			DeviceID:    "DEV-1",
			ReadingType: models.ReadingTypeTemperature,
			Timestamp:   1000,
			Value:       decimal.RequireFromString("4.2"),
		}},
		Timestamp: 1000,
	}
}

func TestEventRepositoryInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a new event", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEventRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shipping_events")).
			WithArgs("E1", models.EventTypeSensorReading, "S1",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1000)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Insert(ctx, sampleEvent()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to already recorded", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEventRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shipping_events")).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := repo.Insert(ctx, sampleEvent())
		assert.ErrorIs(t, err, services.ErrEventAlreadyExists)
	})
}

func TestEventRepositoryGetByID(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "event_type", "shipment_id", "latitude", "longitude", "readings", "timestamp"}
	readings := []byte(`[{"device_id":"DEV-1","reading_type":"temperature","timestamp":1000,"value":"4.2"}]`)

	t.Run("returns a stored event with location", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEventRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM shipping_events")).
			WithArgs("E1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("E1", "sensor_reading", "S1", "6.2442", "-75.5812", readings, int64(1000)))

		event, err := repo.GetByID(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, "E1", event.ID)
		assert.Equal(t, models.EventTypeSensorReading, event.Type)
		assert.Equal(t, "S1", event.ShipmentID)
		require.NotNil(t, event.Location)
		assert.True(t, decimal.RequireFromString("6.2442").Equal(event.Location.Latitude))
		assert.True(t, decimal.RequireFromString("-75.5812").Equal(event.Location.Longitude))
		require.Len(t, event.Readings, 1)
		assert.Equal(t, "DEV-1", event.Readings[0].DeviceID)
		assert.Equal(t, models.ReadingTypeTemperature, event.Readings[0].ReadingType)
		assert.True(t, decimal.RequireFromString("4.2").Equal(event.Readings[0].Value))
		assert.Equal(t, int64(1000), event.Timestamp)
	})

	t.Run("omits location when coordinates are null", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEventRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM shipping_events")).
			WithArgs("E1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("E1", "shipment_pickup", "S1", nil, nil, []byte(`[]`), int64(1000)))

		event, err := repo.GetByID(ctx, "E1")
		require.NoError(t, err)
		assert.Nil(t, event.Location)
		assert.Empty(t, event.Readings)
	})

	t.Run("maps no rows to unknown event", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEventRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM shipping_events")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, services.ErrEventIsUnknown)
	})
}

func TestEventRepositoryExists(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewEventRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM shipping_events WHERE id = $1)")).
		WithArgs("E1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(ctx, "E1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEventRepositoryGetByShipmentID(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "event_type", "shipment_id", "latitude", "longitude", "readings", "timestamp"}

	db, mock := newMockDB(t)
	repo := NewEventRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY recorded_at ASC")).
		WithArgs("S1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("E1", "shipment_pickup", "S1", nil, nil, []byte(`[]`), int64(1000)).
			AddRow("E2", "sensor_reading", "S1", nil, nil, []byte(`[]`), int64(900)))

	events, err := repo.GetByShipmentID(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "E1", events[0].ID)
	assert.Equal(t, "E2", events[1].ID)
}
