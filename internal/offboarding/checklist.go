package offboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// ChecklistInitializer creates the unit's turnover checklist.
type ChecklistInitializer struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
}

func NewChecklistInitializer(store Store, recorder event.Recorder, logger hclog.Logger) *ChecklistInitializer {
	return &ChecklistInitializer{store: store, recorder: recorder, logger: logger.Named("checklist")}
}

// Create writes an empty checklist for the lease's unit. It does not look at
// the unit's condition.
func (c *ChecklistInitializer) Create(ctx context.Context, lc *LeaseContext) (*TurnoverChecklist, error) {
	owner, _ := lc.OwnerID()
	cl := &TurnoverChecklist{
		ID:         uuid.NewString(),
		LeaseID:    lc.Lease.ID,
		UnitID:     lc.Unit.ID,
		PropertyID: lc.Property.ID,
		OwnerID:    owner,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.store.InsertChecklist(ctx, cl); err != nil {
		return nil, err
	}
	event.BestEffort(ctx, c.recorder, c.logger, event.NewTurnoverChecklistCreated(event.TurnoverChecklistCreatedPayload{
		ChecklistID: cl.ID,
		LeaseID:     cl.LeaseID,
		PropertyID:  cl.PropertyID,
		UnitID:      cl.UnitID,
	}))
	return cl, nil
}
