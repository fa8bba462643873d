package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/offboarding/internal/types"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []types.SourceRef
	Summary          string
	Category         string // "lease", "payment", "accounting", "unit"
	Weight           string // "critical", "major", "minor", "info"
	Polarity         string // "positive", "negative", "neutral"
	Payload          json.RawMessage
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// short abbreviates an identifier for summaries.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func leaseRefs(leaseID, propertyID, tenantID string) []types.SourceRef {
	refs := []types.SourceRef{{EntityType: "lease", EntityID: leaseID, Role: "subject"}}
	if propertyID != "" {
		refs = append(refs, types.SourceRef{EntityType: "property", EntityID: propertyID, Role: "context"})
	}
	if tenantID != "" {
		refs = append(refs, types.SourceRef{EntityType: "tenant", EntityID: tenantID, Role: "related"})
	}
	return refs
}

// ── Lease events ─────────────────────────────────────────────────────────────

// LeaseTerminatedPayload carries event-specific data for LeaseTerminated.
type LeaseTerminatedPayload struct {
	LeaseID           string    `json:"lease_id"`
	PropertyID        string    `json:"property_id"`
	UnitID            string    `json:"unit_id"`
	TenantID          string    `json:"tenant_id"`
	Reason            string    `json:"reason"`
	TerminatedAt      time.Time `json:"terminated_at"`
	PreviousStatus    string    `json:"previous_status"`
	Actor             string    `json:"actor"`
}

func NewLeaseTerminated(p LeaseTerminatedPayload) DomainEvent {
	weight, polarity := "major", "neutral"
	if p.Reason == "eviction" || p.Reason == "abandonment" {
		weight, polarity = "critical", "negative"
	}
	refs := leaseRefs(p.LeaseID, p.PropertyID, p.TenantID)
	refs = append(refs, types.SourceRef{EntityType: "unit", EntityID: p.UnitID, Role: "target"})
	return DomainEvent{
		ID:               newID(),
		EventType:        "lease_terminated",
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("Lease %s terminated (%s)", short(p.LeaseID), p.Reason),
		Category:         "lease",
		Weight:           weight,
		Polarity:         polarity,
		Payload:          mustJSON(p),
	}
}

// TenantDepartedPayload carries event-specific data for TenantDeparted.
type TenantDepartedPayload struct {
	DepartureID      string    `json:"departure_id"`
	LeaseID          string    `json:"lease_id"`
	PropertyID       string    `json:"property_id"`
	TenantID         string    `json:"tenant_id"`
	DepartureType    string    `json:"departure_type"`
	DepartureDate    time.Time `json:"departure_date"`
	EvictionNoticeID string    `json:"eviction_notice_id,omitempty"`
}

func NewTenantDeparted(p TenantDepartedPayload) DomainEvent {
	polarity := "neutral"
	if p.DepartureType == "eviction" || p.DepartureType == "abandonment" {
		polarity = "negative"
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        "tenant_departed",
		OccurredAt:       time.Now(),
		AffectedEntities: leaseRefs(p.LeaseID, p.PropertyID, p.TenantID),
		Summary:          fmt.Sprintf("Tenant departure (%s) recorded on lease %s", p.DepartureType, short(p.LeaseID)),
		Category:         "lease",
		Weight:           "major",
		Polarity:         polarity,
		Payload:          mustJSON(p),
	}
}

// TenantHistoryArchivedPayload carries event-specific data for TenantHistoryArchived.
type TenantHistoryArchivedPayload struct {
	HistoryID            string `json:"history_id"`
	LeaseID              string `json:"lease_id"`
	PropertyID           string `json:"property_id"`
	TenantID             string `json:"tenant_id"`
	DepositAmountCents   int64  `json:"deposit_amount_cents"`
	DepositRefundedCents int64  `json:"deposit_refunded_cents"`
	DepositDeductedCents int64  `json:"deposit_deducted_cents"`
	WasEvicted           bool   `json:"was_evicted"`
}

func NewTenantHistoryArchived(p TenantHistoryArchivedPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        "tenant_history_archived",
		OccurredAt:       time.Now(),
		AffectedEntities: leaseRefs(p.LeaseID, p.PropertyID, p.TenantID),
		Summary:          fmt.Sprintf("Tenant history archived for lease %s", short(p.LeaseID)),
		Category:         "lease",
		Weight:           "info",
		Polarity:         "neutral",
		Payload:          mustJSON(p),
	}
}

// ── Payment events ───────────────────────────────────────────────────────────

// ObligationsCancelledPayload carries event-specific data for ObligationsCancelled.
type ObligationsCancelledPayload struct {
	LeaseID    string `json:"lease_id"`
	PropertyID string `json:"property_id"`
	Count      int64  `json:"count"`
}

func NewObligationsCancelled(p ObligationsCancelledPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        "obligations_cancelled",
		OccurredAt:       time.Now(),
		AffectedEntities: leaseRefs(p.LeaseID, p.PropertyID, ""),
		Summary:          fmt.Sprintf("%d scheduled payments cancelled on lease %s", p.Count, short(p.LeaseID)),
		Category:         "payment",
		Weight:           "minor",
		Polarity:         "neutral",
		Payload:          mustJSON(p),
	}
}

// DepositAppliedPayload carries event-specific data for DepositApplied.
type DepositAppliedPayload struct {
	LeaseID       string      `json:"lease_id"`
	PropertyID    string      `json:"property_id"`
	TenantID      string      `json:"tenant_id"`
	Applied       types.Money `json:"applied"`
	Unapplied     types.Money `json:"unapplied"`
	ObligationIDs []string    `json:"obligation_ids"`
	RemainingOwed types.Money `json:"remaining_owed"`
}

func NewDepositApplied(p DepositAppliedPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        "deposit_applied",
		OccurredAt:       time.Now(),
		AffectedEntities: leaseRefs(p.LeaseID, p.PropertyID, p.TenantID),
		Summary:          fmt.Sprintf("Deposit of %s applied to lease %s", p.Applied, short(p.LeaseID)),
		Category:         "payment",
		Weight:           "minor",
		Polarity:         "positive",
		Payload:          mustJSON(p),
	}
}

// CollectionsReferredPayload carries event-specific data for CollectionsReferred.
type CollectionsReferredPayload struct {
	LeaseID       string      `json:"lease_id"`
	PropertyID    string      `json:"property_id"`
	TenantID      string      `json:"tenant_id"`
	Owed          types.Money `json:"owed"`
	ObligationIDs []string    `json:"obligation_ids"`
}

func NewCollectionsReferred(p CollectionsReferredPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        "collections_referred",
		OccurredAt:       time.Now(),
		AffectedEntities: leaseRefs(p.LeaseID, p.PropertyID, p.TenantID),
		Summary:          fmt.Sprintf("Balance of %s on lease %s referred to collections", p.Owed, short(p.LeaseID)),
		Category:         "payment",
		Weight:           "critical",
		Polarity:         "negative",
		Payload:          mustJSON(p),
	}
}

// ── Accounting events ────────────────────────────────────────────────────────

// BalanceWrittenOffPayload carries event-specific data for BalanceWrittenOff.
type BalanceWrittenOffPayload struct {
	LeaseID       string      `json:"lease_id"`
	PropertyID    string      `json:"property_id"`
	UnitID        string      `json:"unit_id"`
	TenantID      string      `json:"tenant_id"`
	ExpenseID     string      `json:"expense_id"`
	Amount        types.Money `json:"amount"`
	ObligationIDs []string    `json:"obligation_ids"`
}

func NewBalanceWrittenOff(p BalanceWrittenOffPayload) DomainEvent {
	refs := leaseRefs(p.LeaseID, p.PropertyID, p.TenantID)
	refs = append(refs, types.SourceRef{EntityType: "expense", EntityID: p.ExpenseID, Role: "target"})
	return DomainEvent{
		ID:               newID(),
		EventType:        "balance_written_off",
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("Bad debt of %s written off on lease %s", p.Amount, short(p.LeaseID)),
		Category:         "accounting",
		Weight:           "major",
		Polarity:         "negative",
		Payload:          mustJSON(p),
	}
}

// ── Unit events ──────────────────────────────────────────────────────────────

// TurnoverChecklistCreatedPayload carries event-specific data for TurnoverChecklistCreated.
type TurnoverChecklistCreatedPayload struct {
	ChecklistID string `json:"checklist_id"`
	LeaseID     string `json:"lease_id"`
	PropertyID  string `json:"property_id"`
	UnitID      string `json:"unit_id"`
}

func NewTurnoverChecklistCreated(p TurnoverChecklistCreatedPayload) DomainEvent {
	refs := leaseRefs(p.LeaseID, p.PropertyID, "")
	refs = append(refs, types.SourceRef{EntityType: "unit", EntityID: p.UnitID, Role: "target"})
	return DomainEvent{
		ID:               newID(),
		EventType:        "turnover_checklist_created",
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("Turnover checklist opened for unit %s", short(p.UnitID)),
		Category:         "unit",
		Weight:           "minor",
		Polarity:         "neutral",
		Payload:          mustJSON(p),
	}
}

// UnitMarkedAvailablePayload carries event-specific data for UnitMarkedAvailable.
type UnitMarkedAvailablePayload struct {
	UnitID        string    `json:"unit_id"`
	PropertyID    string    `json:"property_id"`
	LeaseID       string    `json:"lease_id"`
	AvailableFrom time.Time `json:"available_from"`
}

func NewUnitMarkedAvailable(p UnitMarkedAvailablePayload) DomainEvent {
	refs := []types.SourceRef{
		{EntityType: "unit", EntityID: p.UnitID, Role: "subject"},
		{EntityType: "property", EntityID: p.PropertyID, Role: "context"},
		{EntityType: "lease", EntityID: p.LeaseID, Role: "related"},
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        "unit_marked_available",
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:          fmt.Sprintf("Unit %s available from %s", short(p.UnitID), p.AvailableFrom.Format("2006-01-02")),
		Category:         "unit",
		Weight:           "info",
		Polarity:         "positive",
		Payload:          mustJSON(p),
	}
}
