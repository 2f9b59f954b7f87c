// Package identity carries the authenticated user through request contexts.
// Handlers receive the requesting user explicitly from the context instead of
// consulting ambient session state.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Identity describes the authenticated user for the current request.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// WithContext returns a context carrying the given identity.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity carried by ctx, or nil when the request is
// unauthenticated.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok {
		return nil
	}
	return &id
}
