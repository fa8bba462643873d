// Package event provides domain event recording for the offboarding workflow.
// Events are fanned out as ActivityEntry records via the activity.Store interface,
// then published to the in-process event bus for downstream consumers.
package event

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/types"
)

// Recorder writes domain events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// ActivityRecorder implements Recorder by fanning out a DomainEvent into
// one ActivityEntry per affected entity, then writing via activity.Store.
// If a Publisher is set, the event is also published after the store write
// succeeds.
type ActivityRecorder struct {
	store activity.Store
	bus   Publisher
}

// NewActivityRecorder creates a new ActivityRecorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// SetPublisher attaches an event bus. Events are published after store writes.
func (r *ActivityRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

// Record fans out a DomainEvent into ActivityEntry records, writes them,
// and publishes to the event bus.
func (r *ActivityRecorder) Record(ctx context.Context, evt DomainEvent) error {
	if err := r.store.WriteEntries(ctx, Entries(evt)); err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// Entries returns the activity entries an event indexes, one per affected
// entity. Entities appearing twice keep their first role.
func Entries(evt DomainEvent) []types.ActivityEntry {
	entries := make([]types.ActivityEntry, 0, len(evt.AffectedEntities))
	seen := make(map[types.SourceRef]bool, len(evt.AffectedEntities))
	for _, ref := range evt.AffectedEntities {
		key := types.SourceRef{EntityType: ref.EntityType, EntityID: ref.EntityID}
		if ref.EntityID == "" || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, types.ActivityEntry{
			EventID:           evt.ID,
			EventType:         evt.EventType,
			OccurredAt:        evt.OccurredAt,
			IndexedEntityType: ref.EntityType,
			IndexedEntityID:   ref.EntityID,
			EntityRole:        ref.Role,
			SourceRefs:        evt.AffectedEntities,
			Summary:           evt.Summary,
			Category:          evt.Category,
			Weight:            evt.Weight,
			Polarity:          evt.Polarity,
			Payload:           evt.Payload,
		})
	}
	return entries
}

// BestEffort records evt and logs failures instead of returning them.
// Event recording never fails the operation that produced the event.
func BestEffort(ctx context.Context, r Recorder, logger hclog.Logger, evt DomainEvent) {
	if r == nil {
		return
	}
	if err := r.Record(ctx, evt); err != nil {
		logger.Warn("event recording failed", "event_type", evt.EventType, "event_id", evt.ID, "error", err)
	}
}
