package offboarding

import (
	"context"
	"errors"
)

// Status is a read-only reconciliation view of a lease's offboarding.
type Status struct {
	LeaseID             string      `json:"lease_id"`
	LeaseStatus         LeaseStatus `json:"lease_status"`
	LeaseTerminated     bool        `json:"lease_terminated"`
	DepartureRecorded   bool        `json:"departure_recorded"`
	HistoryCreated      bool        `json:"history_created"`
	ChecklistCreated    bool        `json:"checklist_created"`
	DepartureID         string      `json:"departure_id,omitempty"`
	TenantHistoryID     string      `json:"tenant_history_id,omitempty"`
	TurnoverChecklistID string      `json:"turnover_checklist_id,omitempty"`
	OutstandingCents    int64       `json:"outstanding_cents"`
}

// Status reports which offboarding records exist for a lease.
func (o *Orchestrator) Status(ctx context.Context, leaseID string) (*Status, error) {
	l, err := o.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	st := &Status{
		LeaseID:         leaseID,
		LeaseStatus:     l.Status,
		LeaseTerminated: l.Status == LeaseStatusTerminated,
	}

	d, err := o.store.LatestDeparture(ctx, leaseID)
	switch {
	case err == nil:
		st.DepartureRecorded = true
		st.DepartureID = d.ID
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	h, err := o.store.FindHistory(ctx, leaseID)
	switch {
	case err == nil:
		st.HistoryCreated = true
		st.TenantHistoryID = h.ID
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	c, err := o.store.FindChecklist(ctx, leaseID)
	switch {
	case err == nil:
		st.ChecklistCreated = true
		st.TurnoverChecklistID = c.ID
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	outstanding, err := o.store.ListOutstandingObligations(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	st.OutstandingCents = totalOwed(outstanding)
	return st, nil
}
