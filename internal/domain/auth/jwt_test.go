package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/id"
	"kasirku/internal/core/security"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	identity := Identity{
		UserID:       id.New(),
		StoreID:      id.New(),
		Name:         "Sari",
		Capabilities: security.CashierCapabilities(),
	}

	token, expiresAt, err := svc.GenerateAccessToken(identity)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID.String(), user.UserID)
	assert.Equal(t, identity.StoreID.String(), user.StoreID)
	assert.Equal(t, "Sari", user.Name)
	assert.True(t, user.Capabilities.Has(security.CapSalesCreate))
	assert.False(t, user.Capabilities.Has(security.CapStockTransfer))
	assert.False(t, user.IsOwner)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("one")).GenerateAccessToken(Identity{UserID: id.New(), StoreID: id.New()})
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("two")).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(Identity{UserID: id.New(), StoreID: id.New()})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kasirku",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:  id.New().String(),
		StoreID: id.New().String(),
	}
}

func TestJWTService_RejectsUnknownCapability(t *testing.T) {
	claims := validClaims()
	claims.Capabilities = []string{"sales:create", "drawer:open"}

	_, err := NewJWTService(DefaultJWTConfig("secret")).ValidateToken(sign(t, claims))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drawer:open")
}

func TestJWTService_RejectsMalformedStore(t *testing.T) {
	claims := validClaims()
	claims.StoreID = "store-1"

	_, err := NewJWTService(DefaultJWTConfig("secret")).ValidateToken(sign(t, claims))
	assert.Error(t, err)
}

func TestJWTService_RejectsMissingExpiry(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = nil

	_, err := NewJWTService(DefaultJWTConfig("secret")).ValidateToken(sign(t, claims))
	assert.Error(t, err)
}
