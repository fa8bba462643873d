package eventbus

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// LogConsumer logs all domain events for observability.
type LogConsumer struct {
	logger hclog.Logger
}

func NewLogConsumer(logger hclog.Logger) *LogConsumer {
	return &LogConsumer{logger: logger.Named("events")}
}

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	entities := make([]string, len(evt.AffectedEntities))
	for i, ref := range evt.AffectedEntities {
		entities[i] = ref.EntityType + ":" + ref.EntityID
	}
	c.logger.Info(evt.Summary,
		"event_type", evt.EventType,
		"category", evt.Category,
		"weight", evt.Weight,
		"entities", entities,
	)
	return nil
}
