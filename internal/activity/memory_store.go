package activity

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/matthewbaird/offboarding/internal/types"
)

// MemoryStore implements Store using in-memory slices.
// Intended for demos and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []types.ActivityEntry
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []types.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if s.hasEntry(e) {
			continue
		}
		s.entries = append(s.entries, e)
	}
	return nil
}

// hasEntry mirrors the primary key of the SQL table so duplicate writes of the
// same event are dropped in both implementations.
func (s *MemoryStore) hasEntry(e types.ActivityEntry) bool {
	for _, existing := range s.entries {
		if existing.EventID == e.EventID &&
			existing.IndexedEntityType == e.IndexedEntityType &&
			existing.IndexedEntityID == e.IndexedEntityID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) QueryByEntity(_ context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cursorTime *time.Time
	if opts.Cursor != "" {
		if t, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
			cursorTime = &t
		}
	}

	var matched []types.ActivityEntry
	for _, e := range s.entries {
		if e.IndexedEntityType != entityType || e.IndexedEntityID != entityID {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.OccurredAt.After(*opts.Until) {
			continue
		}
		if len(opts.Categories) > 0 && !slices.Contains(opts.Categories, e.Category) {
			continue
		}
		if opts.MinWeight != "" && opts.MinWeight != "info" && !IsAtLeastWeight(e.Weight, opts.MinWeight) {
			continue
		}
		if cursorTime != nil && !e.OccurredAt.Before(*cursorTime) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	totalCount := len(matched)
	limit := opts.limit()

	var nextCursor string
	if len(matched) > limit {
		matched = matched[:limit]
		nextCursor = matched[len(matched)-1].OccurredAt.Format(time.RFC3339Nano)
	}

	return matched, nextCursor, totalCount, nil
}
