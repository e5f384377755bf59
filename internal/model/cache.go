package model

import (
	"context"

	"github.com/google/uuid"
)

// ProfileCache caches sanitized user projections.
type ProfileCache interface {
	Get(ctx context.Context, id uuid.UUID) (UserProfile, error)
	Set(ctx context.Context, profile UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}
