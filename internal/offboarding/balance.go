package offboarding

import (
	"context"
)

// Balance is the outstanding position of a lease at departure.
type Balance struct {
	LeaseID               string       `json:"lease_id"`
	Currency              string       `json:"currency"`
	Outstanding           []Obligation `json:"outstanding"`
	TotalOwedCents        int64        `json:"total_owed_cents"`
	SecurityDepositCents  int64        `json:"security_deposit_cents"`
	DepositAppliedCents   int64        `json:"deposit_applied_cents"`
	DepositAvailableCents int64        `json:"deposit_available_cents"`
}

// BalanceResolver computes the outstanding obligations on a lease.
type BalanceResolver struct {
	store Store
}

func NewBalanceResolver(store Store) *BalanceResolver {
	return &BalanceResolver{store: store}
}

// Resolve returns the lease's pending and overdue obligations, oldest due
// date first, with their total and the state of the security deposit.
func (r *BalanceResolver) Resolve(ctx context.Context, leaseID string) (*Balance, error) {
	lc, err := r.store.LoadLeaseContext(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	applied, err := r.store.DepositAppliedCents(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return newBalance(lc, applied), nil
}

func newBalance(lc *LeaseContext, depositApplied int64) *Balance {
	b := &Balance{
		LeaseID:              lc.Lease.ID,
		Currency:             lc.Lease.Currency,
		Outstanding:          lc.Outstanding,
		SecurityDepositCents: lc.Lease.SecurityDepositCents,
		DepositAppliedCents:  depositApplied,
	}
	if b.Outstanding == nil {
		b.Outstanding = []Obligation{}
	}
	b.TotalOwedCents = totalOwed(lc.Outstanding)
	b.DepositAvailableCents = max(b.SecurityDepositCents-depositApplied, 0)
	return b
}

func totalOwed(obligations []Obligation) int64 {
	var total int64
	for _, o := range obligations {
		total += o.OutstandingCents()
	}
	return total
}
