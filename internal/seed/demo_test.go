package seed

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/offboarding/internal/offboarding"
)

var demoLeases = []string{LeaseStandard, LeaseDepositCovers, LeaseEviction, LeaseNoOwner}

func TestDemo_SeedsFreshStore(t *testing.T) {
	ctx := context.Background()
	store := offboarding.NewMemoryStore()
	require.NoError(t, Demo(ctx, store, "USD", hclog.NewNullLogger()))

	want := map[string]int{LeaseStandard: 3, LeaseDepositCovers: 3, LeaseEviction: 3, LeaseNoOwner: 1}
	for _, id := range demoLeases {
		lc, err := store.LoadLeaseContext(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, "USD", lc.Lease.Currency, id)
		obligations, err := store.ListObligations(ctx, id)
		require.NoError(t, err)
		assert.Len(t, obligations, want[id], id)
	}
}

func TestDemo_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := offboarding.NewMemoryStore()

	require.NoError(t, Demo(ctx, store, "USD", hclog.NewNullLogger()))
	require.NoError(t, Demo(ctx, store, "USD", hclog.NewNullLogger()))

	for _, id := range demoLeases {
		_, err := store.LoadLeaseContext(ctx, id)
		assert.NoError(t, err, id)
	}
	obligations, err := store.ListObligations(ctx, LeaseStandard)
	require.NoError(t, err)
	assert.Len(t, obligations, 3)
}

func TestDemo_CompletesPartlySeededStore(t *testing.T) {
	ctx := context.Background()
	store := offboarding.NewMemoryStore()
	owner := "owner-maple-holdings"
	require.NoError(t, store.CreateProperty(ctx, &offboarding.Property{ID: PropertyMapleCourt, Name: "Maple Court", OwnerID: &owner}))

	require.NoError(t, Demo(ctx, store, "USD", hclog.NewNullLogger()))

	for _, id := range demoLeases {
		_, err := store.LoadLeaseContext(ctx, id)
		assert.NoError(t, err, id)
	}
}

func TestDemo_UsesCurrency(t *testing.T) {
	ctx := context.Background()
	store := offboarding.NewMemoryStore()
	require.NoError(t, Demo(ctx, store, "GBP", hclog.NewNullLogger()))

	lease, err := store.GetLease(ctx, LeaseStandard)
	require.NoError(t, err)
	assert.Equal(t, "GBP", lease.Currency)
}

func TestDemo_ScenariosRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := offboarding.NewMemoryStore()
	require.NoError(t, Demo(ctx, store, "USD", hclog.NewNullLogger()))
	orch := offboarding.NewOrchestrator(store, nil, hclog.NewNullLogger(), offboarding.DefaultConfig())
	input := func(leaseID string, depType offboarding.DepartureType) offboarding.Input {
		return offboarding.Input{
			LeaseID:       leaseID,
			DepartureType: depType,
			DepartureDate: time.Now().UTC(),
			Actor:         "seed-test",
		}
	}

	res, err := orch.Execute(ctx, input(LeaseStandard, offboarding.DepartureVoluntary))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.EqualValues(t, 2, res.PaymentsCancelled)

	res, err = orch.Execute(ctx, input(LeaseEviction, offboarding.DepartureEviction))
	require.NoError(t, err)
	assert.True(t, res.Success)
	departure, err := store.LatestDeparture(ctx, LeaseEviction)
	require.NoError(t, err)
	require.NotNil(t, departure.EvictionNoticeID)

	res, err = orch.Execute(ctx, input(LeaseNoOwner, offboarding.DepartureVoluntary))
	assert.ErrorIs(t, err, offboarding.ErrMissingOwner)
	assert.False(t, res.Success)
}
