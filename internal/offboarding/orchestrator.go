// Package offboarding implements the tenant offboarding workflow: lease
// termination followed by best-effort bookkeeping (departure record, payment
// cancellation, tenant history, turnover checklist, unit availability), plus
// the separately invoked balance disposition engine.
package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/matthewbaird/offboarding/internal/event"
	"github.com/matthewbaird/offboarding/internal/metrics"
)

// Step names, in execution order.
const (
	StepLoadLease         = "load_lease"
	StepResolveOwner      = "resolve_owner"
	StepTerminateLease    = "terminate_lease"
	StepRecordDeparture   = "record_departure"
	StepCancelPayments    = "cancel_payments"
	StepArchiveHistory    = "archive_history"
	StepCreateChecklist   = "create_checklist"
	StepMarkUnitAvailable = "mark_unit_available"
)

// Config tunes the orchestrator. Metrics may be nil.
type Config struct {
	StepTimeout time.Duration
	Retry       RetryPolicy
	Metrics     *metrics.Offboarding
}

// DefaultConfig returns a 10s step timeout and the default retry policy.
func DefaultConfig() Config {
	return Config{StepTimeout: 10 * time.Second, Retry: DefaultRetryPolicy()}
}

// Input is an offboarding request.
type Input struct {
	LeaseID           string          `json:"lease_id"`
	DepartureType     DepartureType   `json:"departure_type"`
	DepartureDate     time.Time       `json:"departure_date"`
	Notes             string          `json:"notes,omitempty"`
	MarkUnitAvailable bool            `json:"mark_unit_available,omitempty"`
	EvictionNoticeID  *string         `json:"eviction_notice_id,omitempty"`
	Deposit           *DepositSummary `json:"deposit,omitempty"`
	Actor             string          `json:"-"`
}

// Validate checks the input shape without touching the store.
func (in Input) Validate() error {
	if in.LeaseID == "" {
		return fmt.Errorf("lease id is required: %w", ErrValidation)
	}
	if !in.DepartureType.Valid() {
		return fmt.Errorf("unknown departure type %q: %w", in.DepartureType, ErrValidation)
	}
	if in.DepartureDate.IsZero() {
		return fmt.Errorf("departure date is required: %w", ErrValidation)
	}
	return nil
}

// Result reports an offboarding run. Success means the lease is terminated;
// best-effort failures are listed in Errors even when Success is true.
type Result struct {
	Success             bool          `json:"success"`
	LeaseTerminated     bool          `json:"lease_terminated"`
	AlreadyTerminated   bool          `json:"already_terminated,omitempty"`
	DepartureRecorded   bool          `json:"departure_recorded"`
	DepartureID         string        `json:"departure_id,omitempty"`
	PaymentsCancelled   int64         `json:"payments_cancelled"`
	TenantHistoryID     string        `json:"tenant_history_id,omitempty"`
	TurnoverChecklistID string        `json:"turnover_checklist_id,omitempty"`
	UnitMarkedAvailable bool          `json:"unit_marked_available"`
	Errors              []string      `json:"errors"`
	Steps               []StepOutcome `json:"steps"`

	errs []error
}

func (r *Result) fail(step string, err error) {
	r.Errors = append(r.Errors, step+": "+err.Error())
	r.errs = append(r.errs, fmt.Errorf("%s: %w", step, err))
}

// Err returns every failure of the run as a *multierror.Error, or nil.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, err := range r.errs {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// Orchestrator sequences the offboarding saga.
type Orchestrator struct {
	store      Store
	logger     hclog.Logger
	saga       *Saga
	terminator *Terminator
	departures *DepartureRecorder
	payments   *PaymentCanceller
	archiver   *HistoryArchiver
	checklists *ChecklistInitializer
	balances   *BalanceResolver
	recorder   event.Recorder
	metrics    *metrics.Offboarding
}

// NewOrchestrator wires every component against store. recorder may be nil.
func NewOrchestrator(store Store, recorder event.Recorder, logger hclog.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("offboarding")
	saga := NewSaga(cfg.StepTimeout, cfg.Retry, logger)
	saga.metrics = cfg.Metrics
	return &Orchestrator{
		store:      store,
		logger:     logger,
		saga:       saga,
		terminator: NewTerminator(store, recorder, logger),
		departures: NewDepartureRecorder(store, recorder, logger),
		payments:   NewPaymentCanceller(store, recorder, logger),
		archiver:   NewHistoryArchiver(store, recorder, logger),
		checklists: NewChecklistInitializer(store, recorder, logger),
		balances:   NewBalanceResolver(store),
		recorder:   recorder,
		metrics:    cfg.Metrics,
	}
}

// Execute runs the offboarding saga for in.LeaseID.
//
// The returned error is non-nil only when the run did not succeed, and is
// the cause: invalid input, a missing lease or owner, or a failed
// termination. Best-effort failures never surface here; inspect
// Result.Errors or Result.Err.
func (o *Orchestrator) Execute(ctx context.Context, in Input) (*Result, error) {
	res := &Result{Errors: []string{}}
	if err := in.Validate(); err != nil {
		res.fail("validate_input", err)
		o.metrics.ObserveRun(false)
		return res, err
	}

	var (
		lc    *LeaseContext
		prior = &Status{}
	)
	steps := []Step{
		{
			Name:     StepLoadLease,
			Critical: true,
			Run: func(ctx context.Context) error {
				var err error
				lc, err = o.store.LoadLeaseContext(ctx, in.LeaseID)
				if err != nil {
					return err
				}
				if lc.Lease.Status != LeaseStatusTerminated {
					return nil
				}
				// A previous run got past termination; find out what it left.
				prior, err = o.Status(ctx, in.LeaseID)
				return err
			},
		},
		{
			Name:     StepResolveOwner,
			Critical: true,
			Run: func(context.Context) error {
				if _, ok := lc.OwnerID(); !ok {
					return fmt.Errorf("property %s: %w", lc.Property.ID, ErrMissingOwner)
				}
				return nil
			},
		},
		{
			Name:     StepTerminateLease,
			Critical: true,
			Run: func(ctx context.Context) error {
				term, err := o.terminator.Terminate(ctx, in.LeaseID, in.DepartureType, in.DepartureDate, in.Actor)
				if err != nil {
					return err
				}
				res.LeaseTerminated = true
				res.AlreadyTerminated = term.AlreadyTerminated
				return nil
			},
		},
	}

	// Follow-up steps depend on prior, known only once the lease is loaded.
	outcomes := o.saga.Run(ctx, steps)
	res.Steps = outcomes
	for _, out := range outcomes {
		if out.Status == StepFailed {
			res.fail(out.Name, out.Err)
			o.logger.Error("offboarding halted", "lease_id", in.LeaseID, "step", out.Name, "error", out.Err)
			o.metrics.ObserveRun(false)
			return res, out.Err
		}
	}
	res.Success = true

	res.Steps = append(res.Steps, o.saga.Run(ctx, o.followUpSteps(in, lc, prior, res))...)
	for _, out := range res.Steps[len(outcomes):] {
		if out.Status == StepFailed {
			res.fail(out.Name, out.Err)
		}
	}

	o.metrics.ObserveRun(true)
	o.logger.Info("offboarding complete",
		"lease_id", in.LeaseID,
		"departure_type", in.DepartureType,
		"already_terminated", res.AlreadyTerminated,
		"errors", len(res.Errors),
	)
	return res, nil
}

// followUpSteps returns the best-effort steps. Records a previous run already
// created are reported, not recreated.
func (o *Orchestrator) followUpSteps(in Input, lc *LeaseContext, prior *Status, res *Result) []Step {
	if prior.DepartureRecorded {
		res.DepartureRecorded = true
		res.DepartureID = prior.DepartureID
	}
	if prior.HistoryCreated {
		res.TenantHistoryID = prior.TenantHistoryID
	}
	if prior.ChecklistCreated {
		res.TurnoverChecklistID = prior.TurnoverChecklistID
	}

	steps := []Step{
		{
			Name:      StepRecordDeparture,
			Completed: prior.DepartureRecorded,
			Run: func(ctx context.Context) error {
				d, err := o.departures.Record(ctx, lc, DepartureInput{
					Type:             in.DepartureType,
					Date:             in.DepartureDate,
					Notes:            in.Notes,
					EvictionNoticeID: in.EvictionNoticeID,
					Actor:            in.Actor,
				})
				if err != nil {
					return err
				}
				res.DepartureRecorded = true
				res.DepartureID = d.ID
				return nil
			},
		},
		{
			Name: StepCancelPayments,
			Run: func(ctx context.Context) error {
				n, err := o.payments.Cancel(ctx, in.LeaseID)
				if err != nil {
					return err
				}
				res.PaymentsCancelled = n
				return nil
			},
		},
		{
			Name:      StepArchiveHistory,
			Completed: prior.HistoryCreated,
			Run: func(ctx context.Context) error {
				summary, err := o.depositSummary(ctx, in, lc)
				if err != nil {
					return err
				}
				h, err := o.archiver.Archive(ctx, lc, in.DepartureType, in.DepartureDate, summary)
				if err != nil {
					return err
				}
				res.TenantHistoryID = h.ID
				return nil
			},
		},
		{
			Name:      StepCreateChecklist,
			Completed: prior.ChecklistCreated,
			Run: func(ctx context.Context) error {
				cl, err := o.checklists.Create(ctx, lc)
				if err != nil {
					return err
				}
				res.TurnoverChecklistID = cl.ID
				return nil
			},
		},
	}
	if in.MarkUnitAvailable {
		steps = append(steps, Step{
			Name: StepMarkUnitAvailable,
			Run: func(ctx context.Context) error {
				if err := o.store.MarkUnitAvailable(ctx, lc.Unit.ID, in.DepartureDate); err != nil {
					return err
				}
				res.UnitMarkedAvailable = true
				event.BestEffort(ctx, o.recorder, o.logger, event.NewUnitMarkedAvailable(event.UnitMarkedAvailablePayload{
					UnitID:        lc.Unit.ID,
					PropertyID:    lc.Property.ID,
					LeaseID:       lc.Lease.ID,
					AvailableFrom: in.DepartureDate.UTC(),
				}))
				return nil
			},
		})
	}
	return steps
}

// depositSummary returns the caller's summary or, when none was given, one
// derived from the deposit already applied to obligations. Nothing is
// assumed refunded: returning leftover deposit happens outside this workflow.
func (o *Orchestrator) depositSummary(ctx context.Context, in Input, lc *LeaseContext) (*DepositSummary, error) {
	if in.Deposit != nil {
		return in.Deposit, nil
	}
	applied, err := o.store.DepositAppliedCents(ctx, lc.Lease.ID)
	if err != nil {
		return nil, err
	}
	return &DepositSummary{DeductedCents: min(applied, lc.Lease.SecurityDepositCents)}, nil
}

// Balance resolves the outstanding balance on a lease.
func (o *Orchestrator) Balance(ctx context.Context, leaseID string) (*Balance, error) {
	return o.balances.Resolve(ctx, leaseID)
}
