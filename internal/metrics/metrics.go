// Package metrics holds the Prometheus metrics of the offboarding service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Offboarding holds the saga and disposition metrics. A nil *Offboarding
// records nothing.
type Offboarding struct {
	RunsTotal         *prometheus.CounterVec
	StepsTotal        *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	DispositionsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Offboarding {
	factory := promauto.With(reg)
	return &Offboarding{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offboarding",
			Subsystem: "saga",
			Name:      "runs_total",
			Help:      "Total number of offboarding runs by result.",
		}, []string{"result"}), // result: success, failed
		StepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offboarding",
			Subsystem: "saga",
			Name:      "steps_total",
			Help:      "Total number of saga steps by step name and status.",
		}, []string{"step", "status"}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "offboarding",
			Subsystem: "saga",
			Name:      "step_duration_seconds",
			Help:      "Wall time of executed saga steps, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"step"}),
		DispositionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offboarding",
			Subsystem: "balance",
			Name:      "dispositions_total",
			Help:      "Total number of balance dispositions by strategy and result.",
		}, []string{"disposition", "result"}),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// ObserveRun counts one orchestrator run.
func (m *Offboarding) ObserveRun(success bool) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result(success)).Inc()
}

// ObserveStep counts one step outcome. Skipped steps have no duration.
func (m *Offboarding) ObserveStep(step, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StepsTotal.WithLabelValues(step, status).Inc()
	if elapsed > 0 {
		m.StepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	}
}

// ObserveDisposition counts one disposition request.
func (m *Offboarding) ObserveDisposition(disposition string, err error) {
	if m == nil {
		return
	}
	m.DispositionsTotal.WithLabelValues(disposition, result(err == nil)).Inc()
}
