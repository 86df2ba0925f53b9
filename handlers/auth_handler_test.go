package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/shipment-ledger/auth"
	"github.com/upb/shipment-ledger/config"
	"go.uber.org/zap"
)

func TestHandleIssueToken(t *testing.T) {
	tokens, err := auth.NewTokenService(config.AuthConfig{
		Secret:   "test-secret",
		Issuer:   "shipment-ledger",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	handler := NewAuthHandler(tokens, zap.NewNop())

	t.Run("issues a token for a subject", func(t *testing.T) {
		w := postJSON(t, handler.HandleIssueToken, "/auth/token", IssueTokenRequest{Subject: "caller-7"}, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].(map[string]interface{})
		token := data["token"].(string)
		require.NotEmpty(t, token)

		claims, err := tokens.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "caller-7", claims.Subject)
	})

	t.Run("rejects a missing subject", func(t *testing.T) {
		w := postJSON(t, handler.HandleIssueToken, "/auth/token", IssueTokenRequest{}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte("nope")))
		w := httptest.NewRecorder()
		handler.HandleIssueToken(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
