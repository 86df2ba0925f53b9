package handlers

import (
	"context"
	"net/http"

	"github.com/upb/shipment-ledger/utils"
	"go.uber.org/zap"
)

// Pinger checks the persistent backend's health. Nil when the service runs
// on the in-memory stores.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleLiveness handles GET /healthz
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			_ = utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
	}
	_ = utils.WriteOK(w, map[string]string{"status": "ready"})
}
