package handlers

import (
	"net/http"

	"github.com/upb/shipment-ledger/services"
	"github.com/upb/shipment-ledger/utils"
	"go.uber.org/zap"
)

// HandleServiceError translates a domain error into the HTTP response for
// its category. Rejections surface verbatim: message and details come from
// the domain error, never a reworded summary.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	details := services.GetErrorDetails(err)

	switch services.GetErrorType(err) {
	case services.ErrorTypeValidation:
		_ = utils.WriteBadRequest(w, err.Error(), details)
	case services.ErrorTypeConflict:
		_ = utils.WriteConflict(w, err.Error(), details)
	case services.ErrorTypeNotFound:
		_ = utils.WriteNotFound(w, err.Error())
	case services.ErrorTypeState:
		_ = utils.WriteUnprocessableEntity(w, err.Error(), details)
	default:
		logger.Error("unhandled service error", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
	}
}

// HandleValidationError translates a request validation error into a 400
// response with per-field details.
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	fields := utils.GetValidationFields(err)
	details := make(map[string]interface{}, len(fields))
	for field, message := range fields {
		details[field] = message
	}
	logger.Debug("request validation failed", zap.Any("fields", fields))
	_ = utils.WriteBadRequest(w, "Validation failed", details)
}
