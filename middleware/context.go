package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

const (
	// CallerKey is the context key for the authenticated caller identity
	CallerKey contextKey = "caller"
)

// WithCaller adds the authenticated caller identity to the context
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// GetCallerFromContext retrieves the authenticated caller identity from
// context, or "" when the request was not authenticated.
func GetCallerFromContext(ctx context.Context) string {
	if val := ctx.Value(CallerKey); val != nil {
		if caller, ok := val.(string); ok {
			return caller
		}
	}
	return ""
}

// GetRequestIDFromContext retrieves the chi request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}
