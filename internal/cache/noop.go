package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

var _ model.ProfileCache = Noop{}

// Noop is used when caching is disabled. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (model.UserProfile, error) {
	return model.UserProfile{}, model.ErrCacheMiss
}

func (Noop) Set(context.Context, model.UserProfile) error { return nil }

func (Noop) Delete(context.Context, uuid.UUID) error { return nil }
