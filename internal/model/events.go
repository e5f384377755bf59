package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventPublisher delivers identity domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventType is also used as the routing key.
type EventType string

const (
	EventUserRegistered   EventType = "user.registered"
	EventUserCreated      EventType = "user.created"
	EventUserUpdated      EventType = "user.updated"
	EventUserDeleted      EventType = "user.deleted"
	EventSessionLogin     EventType = "session.login"
	EventSessionRefreshed EventType = "session.refreshed"
	EventSessionLogout    EventType = "session.logout"
)

// Event describes something that happened to an identity.
type Event struct {
	Type       EventType `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email,omitempty"`
	Role       Role      `json:"role,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewUserEvent builds an event for the given user.
func NewUserEvent(eventType EventType, user User, at time.Time) Event {
	return Event{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		OccurredAt: at.UTC(),
	}
}
