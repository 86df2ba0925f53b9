// Package auth issues and validates the JWT tokens that identify ledger
// callers. The ledger treats identities as opaque: signature verification
// happens here at the host boundary, never inside the core.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/shipment-ledger/config"
)

// Claims are the identity claims carried by a caller token.
type Claims struct {
	Subject string // authenticated caller identity
	Issuer  string
	Expires time.Time
}

// TokenService issues and validates HMAC-signed JWTs.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TokenTTL,
	}, nil
}

// IssueToken creates a signed token for the given caller identity.
func (s *TokenService) IssueToken(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a token's signature and standard claims and returns
// the caller identity.
func (s *TokenService) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		options = append(options, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	registered, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || registered.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	claims := &Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.ExpiresAt != nil {
		claims.Expires = registered.ExpiresAt.Time
	}
	return claims, nil
}
