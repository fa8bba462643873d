package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
	"github.com/matthewbaird/offboarding/internal/metrics"
	"github.com/matthewbaird/offboarding/internal/types"
)

// DispositionRequest asks the engine to resolve a lease's outstanding balance.
type DispositionRequest struct {
	LeaseID             string      `json:"lease_id"`
	Disposition         Disposition `json:"disposition"`
	DepositToApplyCents *int64      `json:"deposit_to_apply_cents,omitempty"`
	Actor               string      `json:"-"`
}

// Validate checks the request shape without touching the store.
func (r DispositionRequest) Validate() error {
	if r.LeaseID == "" {
		return fmt.Errorf("lease id is required: %w", ErrValidation)
	}
	if !r.Disposition.Valid() {
		return fmt.Errorf("unknown disposition %q: %w", r.Disposition, ErrValidation)
	}
	if r.Disposition == DispositionApplyDeposit {
		if r.DepositToApplyCents == nil {
			return fmt.Errorf("apply_deposit requires a deposit amount: %w", ErrValidation)
		}
		if *r.DepositToApplyCents <= 0 {
			return fmt.Errorf("deposit amount must be positive: %w", ErrValidation)
		}
	}
	return nil
}

// DispositionResult reports the side effects of a disposition.
type DispositionResult struct {
	LeaseID            string      `json:"lease_id"`
	Disposition        Disposition `json:"disposition"`
	Currency           string      `json:"currency"`
	TotalOwedCents     int64       `json:"total_owed_cents"`
	ObligationIDs      []string    `json:"obligation_ids"`
	ExpenseID          string      `json:"expense_id,omitempty"`
	AppliedCents       int64       `json:"applied_cents"`
	UnappliedCents     int64       `json:"unapplied_cents"`
	RemainingOwedCents int64       `json:"remaining_owed_cents"`
}

// DispositionEngine performs the financial side effect of a chosen
// disposition. It never picks the disposition itself.
type DispositionEngine struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
	retry    RetryPolicy
	metrics  *metrics.Offboarding
}

func NewDispositionEngine(store Store, recorder event.Recorder, logger hclog.Logger, retry RetryPolicy) *DispositionEngine {
	return &DispositionEngine{store: store, recorder: recorder, logger: logger.Named("disposition"), retry: retry}
}

// SetMetrics enables disposition metrics.
func (e *DispositionEngine) SetMetrics(m *metrics.Offboarding) {
	e.metrics = m
}

// Handle resolves the lease's pending and overdue obligations according to
// req.Disposition.
func (e *DispositionEngine) Handle(ctx context.Context, req DispositionRequest) (*DispositionResult, error) {
	res, err := e.handle(ctx, req)
	e.metrics.ObserveDisposition(string(req.Disposition), err)
	return res, err
}

func (e *DispositionEngine) handle(ctx context.Context, req DispositionRequest) (*DispositionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lc, err := e.store.LoadLeaseContext(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	res := &DispositionResult{
		LeaseID:        req.LeaseID,
		Disposition:    req.Disposition,
		Currency:       lc.Lease.Currency,
		TotalOwedCents: totalOwed(lc.Outstanding),
		ObligationIDs:  []string{},
	}

	switch req.Disposition {
	case DispositionWriteOff:
		err = e.writeOff(ctx, lc, res)
	case DispositionApplyDeposit:
		err = e.applyDeposit(ctx, lc, *req.DepositToApplyCents, res)
	case DispositionCollections:
		err = e.collections(ctx, lc, res)
	}
	if err != nil {
		return nil, err
	}
	e.logger.Info("balance disposed",
		"lease_id", req.LeaseID,
		"disposition", req.Disposition,
		"total_owed_cents", res.TotalOwedCents,
		"obligations", len(res.ObligationIDs),
		"actor", req.Actor,
	)
	return res, nil
}

func (e *DispositionEngine) money(lc *LeaseContext, cents int64) types.Money {
	return types.Money{AmountCents: cents, Currency: lc.Lease.Currency}
}

// writeOff books the whole balance as bad debt and cancels the obligations.
func (e *DispositionEngine) writeOff(ctx context.Context, lc *LeaseContext, res *DispositionResult) error {
	if res.TotalOwedCents == 0 {
		return nil
	}
	owner, ok := lc.OwnerID()
	if !ok {
		return ErrMissingOwner
	}
	now := time.Now().UTC()
	exp := &Expense{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		PropertyID:  lc.Property.ID,
		UnitID:      lc.Unit.ID,
		LeaseID:     lc.Lease.ID,
		Category:    ExpenseBadDebt,
		AmountCents: res.TotalOwedCents,
		Description: fmt.Sprintf("Bad debt write-off for %s %s, unit %s", lc.Tenant.FirstName, lc.Tenant.LastName, lc.Unit.UnitNumber),
		IncurredOn:  now,
		CreatedAt:   now,
	}
	ids := obligationIDs(lc.Outstanding)
	if _, err := retry(ctx, e.retry, func() error {
		return e.store.WriteOffObligations(ctx, exp, ids, now)
	}); err != nil {
		return fmt.Errorf("write off lease %s: %w", lc.Lease.ID, err)
	}

	res.ObligationIDs = ids
	res.ExpenseID = exp.ID
	event.BestEffort(ctx, e.recorder, e.logger, event.NewBalanceWrittenOff(event.BalanceWrittenOffPayload{
		LeaseID:       lc.Lease.ID,
		PropertyID:    lc.Property.ID,
		UnitID:        lc.Unit.ID,
		TenantID:      lc.Tenant.ID,
		ExpenseID:     exp.ID,
		Amount:        e.money(lc, exp.AmountCents),
		ObligationIDs: ids,
	}))
	return nil
}

// applyDeposit pays obligations oldest due date first until amount runs out.
// An obligation the remaining deposit cannot cover is paid down and stays
// open. Deposit left over is reported as unapplied. The store enforces the
// deposit cap again on write; the check here only gives a clearer error.
func (e *DispositionEngine) applyDeposit(ctx context.Context, lc *LeaseContext, amount int64, res *DispositionResult) error {
	alreadyApplied, err := e.store.DepositAppliedCents(ctx, lc.Lease.ID)
	if err != nil {
		return err
	}
	if available := lc.Lease.SecurityDepositCents - alreadyApplied; amount > available {
		return fmt.Errorf("deposit to apply %d exceeds available deposit %d: %w", amount, available, ErrValidation)
	}

	apps := planDepositApplication(lc.Outstanding, amount)
	var applied int64
	for _, a := range apps {
		applied += a.AmountCents
		res.ObligationIDs = append(res.ObligationIDs, a.ObligationID)
	}
	if len(apps) > 0 {
		now := time.Now().UTC()
		if _, err := retry(ctx, e.retry, func() error {
			return e.store.ApplyDepositPayments(ctx, DepositParams{
				LeaseID:      lc.Lease.ID,
				DepositCents: lc.Lease.SecurityDepositCents,
				Applications: apps,
				At:           now,
			})
		}); err != nil {
			return fmt.Errorf("apply deposit to lease %s: %w", lc.Lease.ID, err)
		}
	}

	res.AppliedCents = applied
	res.UnappliedCents = amount - applied
	res.RemainingOwedCents = res.TotalOwedCents - applied
	if applied > 0 {
		event.BestEffort(ctx, e.recorder, e.logger, event.NewDepositApplied(event.DepositAppliedPayload{
			LeaseID:       lc.Lease.ID,
			PropertyID:    lc.Property.ID,
			TenantID:      lc.Tenant.ID,
			Applied:       e.money(lc, applied),
			Unapplied:     e.money(lc, res.UnappliedCents),
			ObligationIDs: res.ObligationIDs,
			RemainingOwed: e.money(lc, res.RemainingOwedCents),
		}))
	}
	return nil
}

// planDepositApplication walks obligations in order and splits amount across
// them. Obligations with nothing left to pay are skipped.
func planDepositApplication(obligations []Obligation, amount int64) []DepositApplication {
	var apps []DepositApplication
	remaining := amount
	for _, o := range obligations {
		if remaining == 0 {
			break
		}
		owed := o.OutstandingCents()
		if owed <= 0 {
			continue
		}
		pay := min(owed, remaining)
		apps = append(apps, DepositApplication{
			ObligationID: o.ID,
			AmountCents:  pay,
			Settles:      pay == owed,
		})
		remaining -= pay
	}
	return apps
}

// collections flags the obligations for external collections. The money is
// still owed so statuses do not change.
func (e *DispositionEngine) collections(ctx context.Context, lc *LeaseContext, res *DispositionResult) error {
	ids := obligationIDs(lc.Outstanding)
	if len(ids) == 0 {
		return nil
	}
	if _, err := retry(ctx, e.retry, func() error {
		_, err := e.store.FlagCollections(ctx, ids, time.Now())
		return err
	}); err != nil {
		return fmt.Errorf("flag collections on lease %s: %w", lc.Lease.ID, err)
	}

	res.ObligationIDs = ids
	res.RemainingOwedCents = res.TotalOwedCents
	event.BestEffort(ctx, e.recorder, e.logger, event.NewCollectionsReferred(event.CollectionsReferredPayload{
		LeaseID:       lc.Lease.ID,
		PropertyID:    lc.Property.ID,
		TenantID:      lc.Tenant.ID,
		Owed:          e.money(lc, res.TotalOwedCents),
		ObligationIDs: ids,
	}))
	return nil
}

func obligationIDs(obligations []Obligation) []string {
	ids := make([]string, 0, len(obligations))
	for _, o := range obligations {
		ids = append(ids, o.ID)
	}
	return ids
}
