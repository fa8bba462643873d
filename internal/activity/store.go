package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/matthewbaird/offboarding/internal/types"
)

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes one or more activity entries (one event → many entries).
	WriteEntries(ctx context.Context, entries []types.ActivityEntry) error

	// QueryByEntity returns activity entries for a specific entity.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) (entries []types.ActivityEntry, nextCursor string, totalCount int, err error)
}

var (
	// EntriesColumns holds the columns of the activity_entries table.
	EntriesColumns = []*schema.Column{
		{Name: "event_id", Type: field.TypeString},
		{Name: "event_type", Type: field.TypeString},
		{Name: "occurred_at", Type: field.TypeTime},
		{Name: "indexed_entity_type", Type: field.TypeString},
		{Name: "indexed_entity_id", Type: field.TypeString},
		{Name: "entity_role", Type: field.TypeString},
		{Name: "source_refs", Type: field.TypeJSON},
		{Name: "summary", Type: field.TypeString},
		{Name: "category", Type: field.TypeString},
		{Name: "weight", Type: field.TypeString},
		{Name: "polarity", Type: field.TypeString},
		{Name: "payload", Type: field.TypeJSON, Nullable: true},
	}
	// EntriesTable is the activity_entries table. One row per (event, entity).
	EntriesTable = &schema.Table{
		Name:       "activity_entries",
		Columns:    EntriesColumns,
		PrimaryKey: []*schema.Column{EntriesColumns[3], EntriesColumns[4], EntriesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "activity_entity_time",
				Columns: []*schema.Column{EntriesColumns[3], EntriesColumns[4], EntriesColumns[2]},
			},
		},
	}
	// Tables lists every table owned by this package, for migration.
	Tables = []*schema.Table{EntriesTable}
)

func entryColumnNames() []string {
	names := make([]string, len(EntriesColumns))
	for i, c := range EntriesColumns {
		names[i] = c.Name
	}
	return names
}

// SQLStore implements Store on top of an ent SQL driver (SQLite).
type SQLStore struct {
	drv dialect.Driver
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(drv dialect.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

// WriteEntries inserts activity entries, ignoring entries already written for
// the same event and entity.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []types.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ins := entsql.Dialect(dialect.SQLite).
		Insert(EntriesTable.Name).
		Columns(entryColumnNames()...)
	for _, e := range entries {
		refsJSON, err := json.Marshal(e.SourceRefs)
		if err != nil {
			return fmt.Errorf("encoding source refs: %w", err)
		}
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		ins.Values(
			e.EventID, e.EventType, e.OccurredAt.UTC(), e.IndexedEntityType, e.IndexedEntityID,
			e.EntityRole, string(refsJSON), e.Summary, e.Category, e.Weight, e.Polarity, payload,
		)
	}
	ins.OnConflict(entsql.DoNothing())

	query, args := ins.Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("writing activity entries: %w", err)
	}
	return nil
}

// QueryByEntity returns activity entries for a specific entity with filtering and pagination.
func (s *SQLStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, string, int, error) {
	limit := opts.limit()

	preds := []*entsql.Predicate{
		entsql.EQ("indexed_entity_type", entityType),
		entsql.EQ("indexed_entity_id", entityID),
	}
	if opts.Since != nil {
		preds = append(preds, entsql.GTE("occurred_at", opts.Since.UTC()))
	}
	if opts.Until != nil {
		preds = append(preds, entsql.LTE("occurred_at", opts.Until.UTC()))
	}
	if len(opts.Categories) > 0 {
		preds = append(preds, entsql.In("category", toAny(opts.Categories)...))
	}
	if opts.MinWeight != "" && opts.MinWeight != "info" {
		var weights []string
		for w := range WeightOrder {
			if IsAtLeastWeight(w, opts.MinWeight) {
				weights = append(weights, w)
			}
		}
		preds = append(preds, entsql.In("weight", toAny(weights)...))
	}
	countPreds := append([]*entsql.Predicate(nil), preds...)
	if opts.Cursor != "" {
		// Cursor is the occurred_at timestamp of the last result.
		if cursorTime, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
			preds = append(preds, entsql.LT("occurred_at", cursorTime.UTC()))
			countPreds = append(countPreds, entsql.LT("occurred_at", cursorTime.UTC()))
		}
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Select(entryColumnNames()...).
		From(entsql.Table(EntriesTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("occurred_at")).
		Limit(limit + 1). // fetch one extra for cursor
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, "", 0, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	var entries []types.ActivityEntry
	for rows.Next() {
		var e types.ActivityEntry
		var refsJSON, payloadJSON []byte
		err := rows.Scan(
			&e.EventID, &e.EventType, &e.OccurredAt, &e.IndexedEntityType, &e.IndexedEntityID,
			&e.EntityRole, &refsJSON, &e.Summary, &e.Category, &e.Weight, &e.Polarity, &payloadJSON,
		)
		if err != nil {
			return nil, "", 0, fmt.Errorf("scanning activity entry: %w", err)
		}
		if len(refsJSON) > 0 {
			_ = json.Unmarshal(refsJSON, &e.SourceRefs)
		}
		if len(payloadJSON) > 0 {
			e.Payload = json.RawMessage(payloadJSON)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", 0, fmt.Errorf("iterating activity entries: %w", err)
	}

	var nextCursor string
	if len(entries) > limit {
		entries = entries[:limit]
		nextCursor = entries[len(entries)-1].OccurredAt.Format(time.RFC3339Nano)
	}

	countQuery, countArgs := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(EntriesTable.Name)).
		Where(entsql.And(countPreds...)).
		Query()
	totalCount, err := scanCount(ctx, s.drv, countQuery, countArgs)
	if err != nil {
		return nil, "", 0, err
	}

	return entries, nextCursor, totalCount, nil
}

func scanCount(ctx context.Context, drv dialect.Driver, query string, args []any) (int, error) {
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("counting activity entries: %w", err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scanning activity count: %w", err)
		}
	}
	return n, rows.Err()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
