package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/config"
	"github.com/matthewbaird/offboarding/internal/offboarding"
	"github.com/matthewbaird/offboarding/internal/seed"
)

func TestNew_WiresEveryComponent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "app.db")+"?_pragma=foreign_keys(1)")
	t.Setenv("DEFAULT_CURRENCY", "EUR")
	cfg, err := config.Load()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	a, err := New(ctx, cfg, hclog.NewNullLogger(), reg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, seed.Demo(ctx, a.Store, a.Currency, a.Logger))
	balance, err := a.Orchestrator.Balance(ctx, seed.LeaseDepositCovers)
	require.NoError(t, err)
	assert.Equal(t, "EUR", balance.Currency)

	res, err := a.Orchestrator.Execute(ctx, offboarding.Input{
		LeaseID:       seed.LeaseDepositCovers,
		DepartureType: offboarding.DepartureNonRenewal,
		DepartureDate: time.Now().UTC(),
		Actor:         "app-test",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = a.Disposition.Handle(ctx, offboarding.DispositionRequest{
		LeaseID:     seed.LeaseDepositCovers,
		Disposition: offboarding.DispositionCollections,
	})
	require.NoError(t, err)

	entries, _, total, err := a.Activity.QueryByEntity(ctx, "lease", seed.LeaseDepositCovers, activity.DefaultQueryOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	assert.Equal(t, len(entries), total)

	count, err := testutil.GatherAndCount(reg, "offboarding_saga_runs_total", "offboarding_balance_dispositions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
