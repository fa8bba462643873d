package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// HistoryArchiver snapshots a tenancy into a TenantHistory.
type HistoryArchiver struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
}

func NewHistoryArchiver(store Store, recorder event.Recorder, logger hclog.Logger) *HistoryArchiver {
	return &HistoryArchiver{store: store, recorder: recorder, logger: logger.Named("history")}
}

// Validate checks the summary against the original deposit.
func (s DepositSummary) Validate(depositCents int64) error {
	if s.RefundedCents < 0 || s.DeductedCents < 0 {
		return fmt.Errorf("deposit amounts must not be negative: %w", ErrValidation)
	}
	if s.RefundedCents+s.DeductedCents > depositCents {
		return fmt.Errorf("refunded %d plus deducted %d exceeds deposit %d: %w",
			s.RefundedCents, s.DeductedCents, depositCents, ErrValidation)
	}
	return nil
}

// Archive writes one TenantHistory for the loaded lease. lc must be the
// lease as it was before termination: a missing end date defaults to the
// departure date. A nil summary archives no refund and no deduction.
func (a *HistoryArchiver) Archive(ctx context.Context, lc *LeaseContext, depType DepartureType, date time.Time, summary *DepositSummary) (*TenantHistory, error) {
	owner, ok := lc.OwnerID()
	if !ok {
		return nil, ErrMissingOwner
	}
	var sum DepositSummary
	if summary != nil {
		sum = *summary
	}
	if err := sum.Validate(lc.Lease.SecurityDepositCents); err != nil {
		return nil, err
	}

	endDate := date.UTC()
	if lc.Lease.EndDate != nil {
		endDate = lc.Lease.EndDate.UTC()
	}
	h := &TenantHistory{
		ID:                   uuid.NewString(),
		LeaseID:              lc.Lease.ID,
		TenantID:             lc.Tenant.ID,
		OwnerID:              owner,
		PropertyID:           lc.Property.ID,
		UnitID:               lc.Unit.ID,
		FirstName:            lc.Tenant.FirstName,
		LastName:             lc.Tenant.LastName,
		Email:                lc.Tenant.Email,
		Phone:                lc.Tenant.Phone,
		LeaseStartDate:       lc.Lease.StartDate.UTC(),
		LeaseEndDate:         endDate,
		RentAmountCents:      lc.Lease.RentAmountCents,
		DepartureType:        depType,
		DepartureDate:        date.UTC(),
		DepositAmountCents:   lc.Lease.SecurityDepositCents,
		DepositRefundedCents: sum.RefundedCents,
		DepositDeductedCents: sum.DeductedCents,
		WasEvicted:           depType == DepartureEviction || lc.Lease.Status == LeaseStatusEviction,
		CreatedAt:            time.Now().UTC(),
	}
	if err := a.store.InsertHistory(ctx, h); err != nil {
		return nil, err
	}

	event.BestEffort(ctx, a.recorder, a.logger, event.NewTenantHistoryArchived(event.TenantHistoryArchivedPayload{
		HistoryID:            h.ID,
		LeaseID:              h.LeaseID,
		PropertyID:           h.PropertyID,
		TenantID:             h.TenantID,
		DepositAmountCents:   h.DepositAmountCents,
		DepositRefundedCents: h.DepositRefundedCents,
		DepositDeductedCents: h.DepositDeductedCents,
		WasEvicted:           h.WasEvicted,
	}))
	return h, nil
}
