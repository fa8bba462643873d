package offboarding

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/metrics"
)

// StepStatus is the tagged result of one saga step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Step is one unit of work in a saga. A failed Critical step halts the run.
// Steps marked Completed were done by an earlier run and are not executed.
type Step struct {
	Name      string
	Critical  bool
	Completed bool
	Run       func(ctx context.Context) error
}

// StepOutcome records what happened to a step.
type StepOutcome struct {
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Critical bool       `json:"critical,omitempty"`
	Attempts int        `json:"attempts,omitempty"`
	Reason   string     `json:"reason,omitempty"`
	Err      error      `json:"-"`
}

// Saga runs steps in order, sequentially.
type Saga struct {
	stepTimeout time.Duration
	retry       RetryPolicy
	logger      hclog.Logger
	metrics     *metrics.Offboarding
}

func NewSaga(stepTimeout time.Duration, retry RetryPolicy, logger hclog.Logger) *Saga {
	return &Saga{stepTimeout: stepTimeout, retry: retry, logger: logger.Named("saga")}
}

// Run executes steps in order and returns one outcome per step. After a
// critical failure the remaining steps are reported skipped. Each step runs
// under its own timeout; transient store errors are retried within it.
func (s *Saga) Run(ctx context.Context, steps []Step) []StepOutcome {
	outcomes := make([]StepOutcome, 0, len(steps))
	halted := ""
	for _, step := range steps {
		out := StepOutcome{Name: step.Name, Critical: step.Critical}
		var elapsed time.Duration
		switch {
		case halted != "":
			out.Status = StepSkipped
			out.Reason = "halted after " + halted + " failed"
		case step.Completed:
			out.Status = StepSkipped
			out.Reason = "already completed"
		default:
			start := time.Now()
			out.Attempts, out.Err = s.runStep(ctx, step)
			elapsed = time.Since(start)
			if out.Err == nil {
				out.Status = StepOK
			} else {
				out.Status = StepFailed
				out.Reason = out.Err.Error()
				if step.Critical {
					halted = step.Name
					s.logger.Error("critical step failed", "step", step.Name, "attempts", out.Attempts, "error", out.Err)
				} else {
					s.logger.Warn("step failed", "step", step.Name, "attempts", out.Attempts, "error", out.Err)
				}
			}
		}
		s.metrics.ObserveStep(step.Name, string(out.Status), elapsed)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (s *Saga) runStep(ctx context.Context, step Step) (int, error) {
	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}
	return retry(ctx, s.retry, func() error {
		return step.Run(ctx)
	})
}
