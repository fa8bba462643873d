// Package types provides the shared value types used across the offboarding
// packages. Money is always carried as integer cents.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Money represents a monetary amount using integer cents to eliminate
// floating-point errors in financial operations.
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"` // ISO 4217, e.g. "USD"
}

// USD is a convenience constructor for the common case.
func USD(cents int64) Money {
	return Money{AmountCents: cents, Currency: "USD"}
}

// String renders the amount as "12.34 USD".
func (m Money) String() string {
	sign := ""
	cents := m.AmountCents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, m.Currency)
}

// ─── Activity stream types ────────────────────────────────────────────────────
// ActivityEntry is stored in its own table outside the offboarding records.

// SourceRef identifies an entity referenced by a domain event.
type SourceRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Role       string `json:"role"` // "subject", "target", "related", "context"
}

// ActivityEntry is a secondary index entry over the domain event log,
// keyed by a referenced entity. One event produces multiple entries.
type ActivityEntry struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	OccurredAt        time.Time       `json:"occurred_at"`
	IndexedEntityType string          `json:"indexed_entity_type"`
	IndexedEntityID   string          `json:"indexed_entity_id"`
	EntityRole        string          `json:"entity_role"`
	SourceRefs        []SourceRef     `json:"source_refs"`
	Summary           string          `json:"summary"`
	Category          string          `json:"category"` // "lease", "payment", "accounting", "unit"
	Weight            string          `json:"weight"`   // "critical", "major", "minor", "info"
	Polarity          string          `json:"polarity"` // "positive", "negative", "neutral"
	Payload           json.RawMessage `json:"payload"`
}
