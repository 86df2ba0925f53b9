package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/shipment-ledger/auth"
	"go.uber.org/zap"
)

// stubValidator implements TokenValidator with fixed results
type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (v *stubValidator) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func TestRequireAuth(t *testing.T) {
	t.Run("passes a valid token and sets the caller", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: &auth.Claims{Subject: "caller-7"}}, zap.NewNop())

		var caller string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller = GetCallerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments/S1", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()
		m.RequireAuth(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "caller-7", caller)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{}, zap.NewNop())

		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments/S1", nil)
		w := httptest.NewRecorder()
		m.RequireAuth(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments/S1", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		m.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{err: errors.New("token expired")}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments/S1", nil)
		req.Header.Set("Authorization", "Bearer expiredtoken")
		w := httptest.NewRecorder()
		m.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCallerContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetCallerFromContext(ctx))

	ctx = WithCaller(ctx, "caller-7")
	assert.Equal(t, "caller-7", GetCallerFromContext(ctx))
}
