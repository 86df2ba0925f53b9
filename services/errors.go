package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeState      ErrorType = "state"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when type and message
// match, so sentinel comparisons stay exact across wrapping.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail adds a detail to a copy of the error, leaving the sentinel intact.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Type:    e.Type,
		Message: e.Message,
		Err:     e.Err,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Ledger rejection taxonomy. Every validation failure is surfaced verbatim
// to the caller as one of these; none is swallowed, downgraded, or retried.
var (
	// Validation
	ErrInvalidOrMissingIdentifier = NewDomainError(ErrorTypeValidation, "identifier is missing or exceeds the length bound", nil)
	ErrProductsListIsEmpty        = NewDomainError(ErrorTypeValidation, "shipment has no products", nil)
	ErrShipmentHasTooManyProducts = NewDomainError(ErrorTypeValidation, "shipment exceeds the product limit", nil)
	ErrMissingReadings            = NewDomainError(ErrorTypeValidation, "sensor reading event has no readings", nil)
	ErrInvalidReadingType         = NewDomainError(ErrorTypeValidation, "reading type is not recognized", nil)
	ErrInvalidGeoCoordinates      = NewDomainError(ErrorTypeValidation, "location is outside valid coordinate ranges", nil)
	ErrInvalidEventType           = NewDomainError(ErrorTypeValidation, "event type is not recognized", nil)

	// Conflict
	ErrShipmentAlreadyExists = NewDomainError(ErrorTypeConflict, "shipment id already registered", nil)
	ErrEventAlreadyExists    = NewDomainError(ErrorTypeConflict, "shipping event id already recorded", nil)

	// Not found
	ErrShipmentIsUnknown = NewDomainError(ErrorTypeNotFound, "shipment is unknown", nil)
	ErrEventIsUnknown    = NewDomainError(ErrorTypeNotFound, "shipping event is unknown", nil)

	// State machine
	ErrShipmentIsDelivered     = NewDomainError(ErrorTypeState, "shipment has been delivered", nil)
	ErrInvalidStatusTransition = NewDomainError(ErrorTypeState, "event is not allowed in the shipment's current status", nil)

	// Internal
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsStateError checks if an error is a state-machine rejection
func IsStateError(err error) bool {
	return GetErrorType(err) == ErrorTypeState
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
