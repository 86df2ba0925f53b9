package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/upb/shipment-ledger/middleware"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/utils"
	"go.uber.org/zap"
)

// ReadPointRequest represents an event location in API requests
type ReadPointRequest struct {
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
}

// ReadingRequest represents a sensor reading in API requests
type ReadingRequest struct {
	DeviceID    string          `json:"device_id" validate:"required,max=36"`
	ReadingType string          `json:"reading_type" validate:"required"`
	Timestamp   int64           `json:"timestamp"`
	Value       decimal.Decimal `json:"value"`
}

// RecordEventRequest represents a request to record a shipping event
type RecordEventRequest struct {
	ID         string            `json:"id" validate:"required,max=36"`
	EventType  string            `json:"event_type" validate:"required"`
	ShipmentID string            `json:"shipment_id" validate:"required,max=36"`
	Location   *ReadPointRequest `json:"location,omitempty"`
	Readings   []ReadingRequest  `json:"readings,omitempty"`
	Timestamp  int64             `json:"timestamp"`
}

// EventResponse represents a shipping event in API responses
type EventResponse struct {
	ID         string            `json:"id"`
	EventType  models.EventType  `json:"event_type"`
	ShipmentID string            `json:"shipment_id"`
	Location   *models.ReadPoint `json:"location,omitempty"`
	Readings   []models.Reading  `json:"readings"`
	Timestamp  int64             `json:"timestamp"`
}

// RecorderService defines the recorder operations the HTTP surface exposes
type RecorderService interface {
	// RecordEvent validates and appends a shipping event
	RecordEvent(ctx context.Context, event *models.ShippingEvent) error

	// Get retrieves a shipping event by id
	Get(ctx context.Context, id string) (*models.ShippingEvent, error)

	// ListByShipment retrieves all events of a shipment in recording order
	ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShippingEvent, error)
}

// EventHandler handles shipping-event HTTP requests
type EventHandler struct {
	recorder RecorderService
	logger   *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(recorder RecorderService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// HandleRecordEvent handles POST /api/v1/events
func (h *EventHandler) HandleRecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	event := requestToEvent(&req)
	if err := h.recorder.RecordEvent(ctx, event); err != nil {
		h.logger.Warn("shipping event rejected",
			zap.String("request_id", requestID),
			zap.String("event_id", req.ID),
			zap.String("shipment_id", req.ShipmentID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, eventToResponse(event))
}

// HandleGetEvent handles GET /api/v1/events/{id}
func (h *EventHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	event, err := h.recorder.Get(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, eventToResponse(event))
}

// HandleListShipmentEvents handles GET /api/v1/shipments/{id}/events
func (h *EventHandler) HandleListShipmentEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shipmentID := chi.URLParam(r, "id")

	events, err := h.recorder.ListByShipment(ctx, shipmentID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = eventToResponse(event)
	}

	_ = utils.WriteOK(w, responses)
}

// requestToEvent converts an API request to the event model. Enum values
// pass through as-is; the recorder owns closed-enumeration checks so that
// rejections carry the ledger's own taxonomy.
func requestToEvent(req *RecordEventRequest) *models.ShippingEvent {
	event := &models.ShippingEvent{
		ID:         req.ID,
		Type:       models.EventType(req.EventType),
		ShipmentID: req.ShipmentID,
		Timestamp:  req.Timestamp,
		Readings:   make([]models.Reading, len(req.Readings)),
	}
	if req.Location != nil {
		event.Location = &models.ReadPoint{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}
	for i, reading := range req.Readings {
		event.Readings[i] = models.Reading{
			DeviceID:    reading.DeviceID,
			ReadingType: models.ReadingType(reading.ReadingType),
			Timestamp:   reading.Timestamp,
			Value:       reading.Value,
		}
	}
	return event
}

// eventToResponse converts an event model to its API representation
func eventToResponse(e *models.ShippingEvent) EventResponse {
	readings := e.Readings
	if readings == nil {
		readings = []models.Reading{}
	}
	return EventResponse{
		ID:         e.ID,
		EventType:  e.Type,
		ShipmentID: e.ShipmentID,
		Location:   e.Location,
		Readings:   readings,
		Timestamp:  e.Timestamp,
	}
}
