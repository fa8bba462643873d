package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// Termination is the outcome of a successful Terminate call.
type Termination struct {
	Lease             *Lease      `json:"lease"`
	PreviousStatus    LeaseStatus `json:"previous_status"`
	AlreadyTerminated bool        `json:"already_terminated"`
}

// Terminator transitions leases to terminated.
type Terminator struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
}

func NewTerminator(store Store, recorder event.Recorder, logger hclog.Logger) *Terminator {
	return &Terminator{store: store, recorder: recorder, logger: logger.Named("terminator")}
}

// Terminate moves the lease to terminated, stamping reason, terminated-at and
// end date. The update is conditional on the lease still being terminable, so
// of two concurrent calls only one can win.
//
// Terminating an already terminated lease succeeds with AlreadyTerminated set
// when the stored reason and UTC date match; any other mismatch is
// ErrConflict.
func (t *Terminator) Terminate(ctx context.Context, leaseID string, reason DepartureType, date time.Time, actor string) (*Termination, error) {
	if !reason.Valid() {
		return nil, fmt.Errorf("unknown departure type %q: %w", reason, ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("termination date is required: %w", ErrValidation)
	}

	current, err := t.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if current.Status == LeaseStatusTerminated {
		return t.alreadyTerminated(current, reason, date)
	}
	if err := ValidateTransition(ValidLeaseTransitions, string(current.Status), string(LeaseStatusTerminated)); err != nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, err)
	}

	updated, err := t.store.TerminateLease(ctx, TerminateParams{
		LeaseID: leaseID,
		Reason:  reason,
		At:      date,
		From:    terminableStatuses(),
		Actor:   actor,
	})
	if err != nil {
		return nil, fmt.Errorf("terminate lease %s: %w", leaseID, err)
	}

	// Re-read in both cases: on a lost race the winner's state decides.
	after, err := t.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !updated {
		if after.Status == LeaseStatusTerminated {
			return t.alreadyTerminated(after, reason, date)
		}
		return nil, fmt.Errorf("lease %s changed to %s during termination: %w", leaseID, after.Status, ErrConflict)
	}

	t.logger.Info("lease terminated", "lease_id", leaseID, "reason", reason, "previous_status", current.Status)
	event.BestEffort(ctx, t.recorder, t.logger, event.NewLeaseTerminated(event.LeaseTerminatedPayload{
		LeaseID:        leaseID,
		UnitID:         after.UnitID,
		TenantID:       after.TenantID,
		Reason:         string(reason),
		TerminatedAt:   date.UTC(),
		PreviousStatus: string(current.Status),
		Actor:          actor,
	}))
	return &Termination{Lease: after, PreviousStatus: current.Status}, nil
}

func (t *Terminator) alreadyTerminated(l *Lease, reason DepartureType, date time.Time) (*Termination, error) {
	if l.TerminationReason == nil || *l.TerminationReason != reason {
		existing := "none"
		if l.TerminationReason != nil {
			existing = string(*l.TerminationReason)
		}
		return nil, fmt.Errorf("lease %s already terminated with reason %s: %w", l.ID, existing, ErrConflict)
	}
	if l.TerminatedAt == nil || !sameDay(*l.TerminatedAt, date) {
		return nil, fmt.Errorf("lease %s already terminated on a different date: %w", l.ID, ErrConflict)
	}
	t.logger.Debug("lease already terminated", "lease_id", l.ID, "reason", reason)
	return &Termination{Lease: l, PreviousStatus: LeaseStatusTerminated, AlreadyTerminated: true}, nil
}
