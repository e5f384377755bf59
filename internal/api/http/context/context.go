package context

import (
	"context"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

type key int

const (
	identityKey key = iota
	userKey
)

var _ model.ContextManager = (*Manager)(nil)

// Manager stores authenticated principals in a request context under
// unexported keys.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext attaches the identity resolved from an access token.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentityFromContext returns the identity attached by the access guard.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// SetUserToContext attaches a user loaded by the credentials or refresh guard.
func (m *Manager) SetUserToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user attached by a guard.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}
