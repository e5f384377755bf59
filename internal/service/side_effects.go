package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

// sideEffects bundles the collaborators whose failures are logged but never
// returned to the caller.
type sideEffects struct {
	cache  model.ProfileCache
	events model.EventPublisher
	logger *logger.Logger
	now    func() time.Time
}

func (s sideEffects) publish(ctx context.Context, event model.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Events: failed to publish event",
			"type", string(event.Type),
			"user_id", event.UserID.String(),
			"error", err.Error())
	}
}

func (s sideEffects) publishUser(ctx context.Context, eventType model.EventType, user model.User) {
	s.publish(ctx, model.NewUserEvent(eventType, user, s.now()))
}

func (s sideEffects) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Cache: failed to invalidate profile",
			"user_id", id.String(),
			"error", err.Error())
	}
}

func (s sideEffects) cached(ctx context.Context, id uuid.UUID) (model.UserProfile, bool) {
	profile, err := s.cache.Get(ctx, id)
	if err == nil {
		return profile, true
	}
	if !errors.Is(err, model.ErrCacheMiss) {
		s.logger.Warn("Cache: failed to read profile",
			"user_id", id.String(),
			"error", err.Error())
	}
	return model.UserProfile{}, false
}

func (s sideEffects) store(ctx context.Context, profile model.UserProfile) {
	if err := s.cache.Set(ctx, profile); err != nil {
		s.logger.Warn("Cache: failed to store profile",
			"user_id", profile.ID.String(),
			"error", err.Error())
	}
}
