package offboarding

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/event"
)

// PaymentCanceller stops future billing on a lease.
type PaymentCanceller struct {
	store    Store
	recorder event.Recorder
	logger   hclog.Logger
}

func NewPaymentCanceller(store Store, recorder event.Recorder, logger hclog.Logger) *PaymentCanceller {
	return &PaymentCanceller{store: store, recorder: recorder, logger: logger.Named("payments")}
}

// Cancel moves every pending or scheduled obligation on the lease to
// cancelled and returns the count. Overdue obligations are left for the
// disposition engine. Re-running is a no-op.
func (c *PaymentCanceller) Cancel(ctx context.Context, leaseID string) (int64, error) {
	n, err := c.store.CancelScheduledObligations(ctx, leaseID, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.logger.Info("cancelled scheduled payments", "lease_id", leaseID, "count", n)
		event.BestEffort(ctx, c.recorder, c.logger, event.NewObligationsCancelled(event.ObligationsCancelledPayload{
			LeaseID: leaseID,
			Count:   n,
		}))
	}
	return n, nil
}
