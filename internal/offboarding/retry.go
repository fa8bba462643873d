package offboarding

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of transient store errors.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries a transient failure twice more, starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: 50 * time.Millisecond}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	b.MaxElapsedTime = 0
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// retry runs op, retrying errors classified as ErrTransientStore. It returns
// the number of attempts made alongside op's final error.
func retry(ctx context.Context, p RetryPolicy, op func() error) (int, error) {
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx))
	return attempts, err
}
