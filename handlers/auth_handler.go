package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/upb/shipment-ledger/auth"
	"github.com/upb/shipment-ledger/utils"
	"go.uber.org/zap"
)

// IssueTokenRequest represents a request for a development token
type IssueTokenRequest struct {
	Subject string `json:"subject" validate:"required,max=256"`
}

// AuthHandler issues caller tokens. Only mounted in development; production
// deployments are expected to issue tokens from their own identity system.
type AuthHandler struct {
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		logger: logger,
	}
}

// HandleIssueToken handles POST /auth/token
func (h *AuthHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	token, err := h.tokens.IssueToken(req.Subject)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.logger.Info("issued development token", zap.String("subject", req.Subject))
	_ = utils.WriteOK(w, map[string]string{"token": token})
}
