// Package auth validates bearer tokens and maps their claims to the request user.
// Tokens are issued by the account service; GenerateAccessToken exists for
// development tooling and tests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "kasirku/internal/core/context"
	"kasirku/internal/core/id"
	"kasirku/internal/core/security"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "kasirku",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"uid"`
	StoreID      string   `json:"sid"`
	Name         string   `json:"name,omitempty"`
	Capabilities []string `json:"caps,omitempty"`
	IsOwner      bool     `json:"own,omitempty"`
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID       id.ID
	StoreID      id.ID
	Name         string
	Capabilities security.CapabilitySet
	IsOwner      bool
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs a token for identity.
func (s *JWTService) GenerateAccessToken(identity Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:       identity.UserID.String(),
		StoreID:      identity.StoreID.String(),
		Name:         identity.Name,
		Capabilities: identity.Capabilities.Names(),
		IsOwner:      identity.IsOwner,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns user context. Unknown capability
// names and malformed ids reject the token.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if _, err := id.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("invalid uid claim: %w", err)
	}
	if _, err := id.Parse(claims.StoreID); err != nil {
		return nil, fmt.Errorf("invalid sid claim: %w", err)
	}

	caps, err := security.ParseCapabilities(claims.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("invalid caps claim: %w", err)
	}

	return &appctx.UserContext{
		UserID:       claims.UserID,
		StoreID:      claims.StoreID,
		Name:         claims.Name,
		Capabilities: caps,
		IsOwner:      claims.IsOwner,
	}, nil
}
