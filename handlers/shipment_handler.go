package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/upb/shipment-ledger/middleware"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/utils"
	"go.uber.org/zap"
)

// RegisterShipmentRequest represents a request to register a shipment
type RegisterShipmentRequest struct {
	ID       string   `json:"id" validate:"required,max=36"`
	Owner    string   `json:"owner,omitempty" validate:"omitempty,max=256"`
	Products []string `json:"products" validate:"required,min=1,max=10,dive,required,max=36"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID         string                `json:"id"`
	Owner      string                `json:"owner"`
	Status     models.ShipmentStatus `json:"status"`
	Products   []string              `json:"products"`
	Registered string                `json:"registered"`
	Delivered  *string               `json:"delivered,omitempty"`
	Events     []string              `json:"events"`
}

// RegistryService defines the registry operations the HTTP surface exposes
type RegistryService interface {
	// RegisterShipment creates a new shipment in Pending status
	RegisterShipment(ctx context.Context, id, owner string, products []string) error

	// Get retrieves a shipment by id
	Get(ctx context.Context, id string) (*models.Shipment, error)

	// ListByOwner retrieves the shipment ids registered to an owner
	ListByOwner(ctx context.Context, owner string) ([]string, error)
}

// ShipmentHandler handles shipment-related HTTP requests
type ShipmentHandler struct {
	registry RegistryService
	logger   *zap.Logger
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(registry RegistryService, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandleRegisterShipment handles POST /api/v1/shipments
func (h *ShipmentHandler) HandleRegisterShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RegisterShipmentRequest
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

	// Owner defaults to the authenticated caller. Registration is open to
	// any authenticated caller, including on behalf of another owner.
	owner := req.Owner
	if owner == "" {
		owner = middleware.GetCallerFromContext(ctx)
	}

	if err := h.registry.RegisterShipment(ctx, req.ID, owner, req.Products); err != nil {
		h.logger.Warn("shipment registration rejected",
			zap.String("request_id", requestID),
			zap.String("shipment_id", req.ID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	shipment, err := h.registry.Get(ctx, req.ID)
	if err != nil {
		h.logger.Error("failed to load registered shipment",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteCreated(w, shipmentToResponse(shipment))
}

// HandleGetShipment handles GET /api/v1/shipments/{id}
func (h *ShipmentHandler) HandleGetShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	shipment, err := h.registry.Get(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, shipmentToResponse(shipment))
}

// HandleListShipments handles GET /api/v1/shipments?owner=
func (h *ShipmentHandler) HandleListShipments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner := r.URL.Query().Get("owner")
	if owner == "" {
		_ = utils.WriteBadRequest(w, "owner query parameter is required", nil)
		return
	}

	ids, err := h.registry.ListByOwner(ctx, owner)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"owner":        owner,
		"shipment_ids": ids,
	})
}

// shipmentToResponse converts a shipment model to its API representation
func shipmentToResponse(s *models.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:         s.ID,
		Owner:      s.Owner,
		Status:     s.Status,
		Products:   s.Products,
		Registered: s.Registered.Format(time.RFC3339),
		Events:     s.Events,
	}
	if s.Delivered != nil {
		delivered := s.Delivered.Format(time.RFC3339)
		resp.Delivered = &delivered
	}
	return resp
}
