package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/shipment-ledger/config"
)

func newTokenService(t *testing.T, cfg config.AuthConfig) *TokenService {
	t.Helper()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)
	return svc
}

func baseConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:   "test-secret",
		Issuer:   "shipment-ledger",
		Audience: "ledger-api",
		TokenTTL: time.Hour,
	}
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{})
	assert.Error(t, err, "empty secret must be rejected")
}

func TestIssueAndValidateToken(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t, baseConfig())

	token, err := svc.IssueToken("caller-7")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "caller-7", claims.Subject)
	assert.Equal(t, "shipment-ledger", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires, time.Minute)
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	svc := newTokenService(t, baseConfig())
	_, err := svc.IssueToken("")
	assert.Error(t, err)
}

func TestValidateTokenRejections(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t, baseConfig())

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := newTokenService(t, config.AuthConfig{
			Secret:   "other-secret",
			Issuer:   "shipment-ledger",
			Audience: "ledger-api",
			TokenTTL: time.Hour,
		})
		token, err := other.IssueToken("caller-7")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := newTokenService(t, config.AuthConfig{
			Secret:   "test-secret",
			Issuer:   "someone-else",
			Audience: "ledger-api",
			TokenTTL: time.Hour,
		})
		token, err := other.IssueToken("caller-7")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Now()
		claims := jwt.RegisteredClaims{
			Subject:   "caller-7",
			Issuer:    "shipment-ledger",
			Audience:  jwt.ClaimStrings{"ledger-api"},
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:  "caller-7",
			Issuer:   "shipment-ledger",
			Audience: jwt.ClaimStrings{"ledger-api"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "caller-7",
			Issuer:    "shipment-ledger",
			Audience:  jwt.ClaimStrings{"ledger-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    "shipment-ledger",
			Audience:  jwt.ClaimStrings{"ledger-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.Error(t, err)
	})
}
