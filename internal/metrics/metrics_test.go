package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOffboarding_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun(true)
	m.ObserveRun(false)
	m.ObserveRun(true)
	m.ObserveStep("terminate_lease", "ok", 5*time.Millisecond)
	m.ObserveStep("archive_history", "skipped", 0)
	m.ObserveDisposition("write_off", nil)
	m.ObserveDisposition("apply_deposit", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsTotal.WithLabelValues("archive_history", "skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StepDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispositionsTotal.WithLabelValues("apply_deposit", "failed")))
}

func TestOffboarding_NilIsNoop(t *testing.T) {
	var m *Offboarding
	assert.NotPanics(t, func() {
		m.ObserveRun(true)
		m.ObserveStep("load_lease", "ok", time.Millisecond)
		m.ObserveDisposition("collections", nil)
	})
}
