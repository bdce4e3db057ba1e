// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"kasirku/internal/core/security"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID       string
	StoreID      string
	Name         string
	Capabilities security.CapabilitySet
	IsOwner      bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetStoreID returns store ID from context or empty string.
func GetStoreID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.StoreID
	}
	return ""
}

// Can reports whether the user in ctx holds capability c. Owners hold all.
func Can(ctx context.Context, c security.Capability) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsOwner || u.Capabilities.Has(c)
}
