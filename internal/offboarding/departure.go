package offboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// DepartureInput describes a tenant departure.
type DepartureInput struct {
	Type             DepartureType
	Date             time.Time
	Notes            string
	EvictionNoticeID *string
	Actor            string
}

// DepartureRecorder writes the append-only departure record.
type DepartureRecorder struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
}

func NewDepartureRecorder(store Store, recorder event.Recorder, logger hclog.Logger) *DepartureRecorder {
	return &DepartureRecorder{store: store, recorder: recorder, logger: logger.Named("departures")}
}

// Record inserts one TenantDeparture for the loaded lease. When no eviction
// notice is given the lease's own notice, if any, is linked.
func (r *DepartureRecorder) Record(ctx context.Context, lc *LeaseContext, in DepartureInput) (*TenantDeparture, error) {
	owner, ok := lc.OwnerID()
	if !ok {
		return nil, ErrMissingOwner
	}
	notice := in.EvictionNoticeID
	if notice == nil {
		notice = lc.Lease.EvictionNoticeID
	}
	d := &TenantDeparture{
		ID:               uuid.NewString(),
		LeaseID:          lc.Lease.ID,
		TenantID:         lc.Tenant.ID,
		UnitID:           lc.Unit.ID,
		OwnerID:          owner,
		DepartureType:    in.Type,
		DepartureDate:    in.Date.UTC(),
		Notes:            in.Notes,
		EvictionNoticeID: notice,
		RecordedBy:       in.Actor,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.store.InsertDeparture(ctx, d); err != nil {
		return nil, err
	}

	payload := event.TenantDepartedPayload{
		DepartureID:   d.ID,
		LeaseID:       d.LeaseID,
		PropertyID:    lc.Property.ID,
		TenantID:      d.TenantID,
		DepartureType: string(d.DepartureType),
		DepartureDate: d.DepartureDate,
	}
	if notice != nil {
		payload.EvictionNoticeID = *notice
	}
	event.BestEffort(ctx, r.recorder, r.logger, event.NewTenantDeparted(payload))
	return d, nil
}
