package events

import (
	"context"

	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

var _ model.EventPublisher = Noop{}

// Noop drops every event. Used when publishing is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, model.Event) error { return nil }
