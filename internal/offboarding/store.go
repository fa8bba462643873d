package offboarding

import (
	"context"
	"time"
)

// Store is the repository the offboarding components run against.
// Implementations: MemoryStore (tests, demos) and SQLStore (SQLite via ent).
type Store interface {
	// LoadLeaseContext loads a lease with its tenant, unit, property and
	// outstanding obligations. Returns ErrNotFound if the lease is missing.
	LoadLeaseContext(ctx context.Context, leaseID string) (*LeaseContext, error)
	GetLease(ctx context.Context, leaseID string) (*Lease, error)

	// TerminateLease moves a lease to terminated only if its current status is
	// one of p.From. It reports whether the lease was updated. The contracted
	// end date is left as is; TerminatedAt records the actual end.
	TerminateLease(ctx context.Context, p TerminateParams) (bool, error)

	InsertDeparture(ctx context.Context, d *TenantDeparture) error
	// LatestDeparture returns the most recent departure on a lease, or
	// ErrNotFound.
	LatestDeparture(ctx context.Context, leaseID string) (*TenantDeparture, error)

	// CancelScheduledObligations moves every pending or scheduled obligation
	// on the lease to cancelled and returns how many changed.
	CancelScheduledObligations(ctx context.Context, leaseID string, at time.Time) (int64, error)
	// ListOutstandingObligations returns pending and overdue obligations,
	// oldest due date first.
	ListOutstandingObligations(ctx context.Context, leaseID string) ([]Obligation, error)
	// WriteOffObligations records the expense and cancels the obligations in
	// one transaction. Every obligation must still be outstanding, otherwise
	// nothing is written and ErrConflict is returned.
	WriteOffObligations(ctx context.Context, exp *Expense, obligationIDs []string, at time.Time) error
	// ApplyDepositPayments applies deposit funds to obligations in one
	// transaction, with the same all-or-nothing rule as WriteOffObligations.
	// It returns ErrConflict, writing nothing, if the lease's total deposit
	// applied would exceed p.DepositCents.
	ApplyDepositPayments(ctx context.Context, p DepositParams) error
	// FlagCollections marks outstanding obligations as referred to
	// collections. Their status is unchanged.
	FlagCollections(ctx context.Context, obligationIDs []string, at time.Time) (int64, error)
	// DepositAppliedCents sums the deposit funds applied across the lease.
	DepositAppliedCents(ctx context.Context, leaseID string) (int64, error)

	// InsertHistory writes a tenant history. ErrConflict if one exists for
	// the lease.
	InsertHistory(ctx context.Context, h *TenantHistory) error
	FindHistory(ctx context.Context, leaseID string) (*TenantHistory, error)
	// InsertChecklist writes a turnover checklist. ErrConflict if one exists
	// for the lease.
	InsertChecklist(ctx context.Context, c *TurnoverChecklist) error
	FindChecklist(ctx context.Context, leaseID string) (*TurnoverChecklist, error)

	MarkUnitAvailable(ctx context.Context, unitID string, from time.Time) error
}

// TerminateParams describes a conditional lease termination.
type TerminateParams struct {
	LeaseID string
	Reason  DepartureType
	At      time.Time
	From    []LeaseStatus
	Actor   string
}

// DepositParams describes one deposit application against a lease.
type DepositParams struct {
	LeaseID      string
	DepositCents int64
	Applications []DepositApplication
	At           time.Time
}

// DepositApplication moves AmountCents of deposit funds onto one obligation.
// Settles marks the obligation paid; otherwise it stays open with a larger
// paid amount.
type DepositApplication struct {
	ObligationID string
	AmountCents  int64
	Settles      bool
}

// Loader creates the records the workflow operates on. Leases and billing are
// created elsewhere in production; Loader backs seeding and tests.
type Loader interface {
	CreateProperty(ctx context.Context, p *Property) error
	CreateUnit(ctx context.Context, u *Unit) error
	CreateTenant(ctx context.Context, t *Tenant) error
	CreateLease(ctx context.Context, l *Lease) error
	CreateObligation(ctx context.Context, o *Obligation) error
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Loader = (*MemoryStore)(nil)
	_ Store  = (*SQLStore)(nil)
	_ Loader = (*SQLStore)(nil)
)
