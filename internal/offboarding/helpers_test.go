package offboarding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

var departureDate = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

type leaseFixture struct {
	Property Property
	Unit     Unit
	Tenant   Tenant
	Lease    Lease
	// Obligations in the order they were passed.
	Obligations []Obligation
}

type fixtureOption func(*leaseFixture)

func withoutOwner() fixtureOption {
	return func(f *leaseFixture) { f.Property.OwnerID = nil }
}

func withDeposit(cents int64) fixtureOption {
	return func(f *leaseFixture) { f.Lease.SecurityDepositCents = cents }
}

func withStatus(s LeaseStatus) fixtureOption {
	return func(f *leaseFixture) { f.Lease.Status = s }
}

func withEndDate(t time.Time) fixtureOption {
	return func(f *leaseFixture) { f.Lease.EndDate = &t }
}

func withObligations(obs ...Obligation) fixtureOption {
	return func(f *leaseFixture) { f.Obligations = append(f.Obligations, obs...) }
}

// ob builds an obligation due daysAgo days before departureDate.
func ob(amountCents int64, status ObligationStatus, daysAgo int) Obligation {
	return Obligation{
		ID:          uuid.NewString(),
		Description: "Rent",
		AmountCents: amountCents,
		DueDate:     departureDate.AddDate(0, 0, -daysAgo),
		Status:      status,
	}
}

func seedLease(t *testing.T, l Loader, opts ...fixtureOption) *leaseFixture {
	t.Helper()
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()[:8]
	f := &leaseFixture{
		Property: Property{ID: uuid.NewString(), Name: "Maple Court", OwnerID: &owner},
		Tenant:   Tenant{ID: uuid.NewString(), FirstName: "Dana", LastName: "Reyes", Email: "dana@example.com", Phone: "555-0101"},
	}
	f.Unit = Unit{ID: uuid.NewString(), PropertyID: f.Property.ID, UnitNumber: "2B"}
	f.Lease = Lease{
		ID:              uuid.NewString(),
		TenantID:        f.Tenant.ID,
		UnitID:          f.Unit.ID,
		StartDate:       time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		RentAmountCents: 150000,
		Currency:        "USD",
		Status:          LeaseStatusActive,
	}
	for _, opt := range opts {
		opt(f)
	}

	require.NoError(t, l.CreateProperty(ctx, &f.Property))
	require.NoError(t, l.CreateUnit(ctx, &f.Unit))
	require.NoError(t, l.CreateTenant(ctx, &f.Tenant))
	require.NoError(t, l.CreateLease(ctx, &f.Lease))
	for i := range f.Obligations {
		f.Obligations[i].LeaseID = f.Lease.ID
		require.NoError(t, l.CreateObligation(ctx, &f.Obligations[i]))
	}
	return f
}

// obligationsByID lists the lease's obligations keyed by ID.
func obligationsByID(t *testing.T, store interface {
	ListObligations(ctx context.Context, leaseID string) ([]Obligation, error)
}, leaseID string) map[string]Obligation {
	t.Helper()
	obligations, err := store.ListObligations(context.Background(), leaseID)
	require.NoError(t, err)
	byID := make(map[string]Obligation, len(obligations))
	for _, o := range obligations {
		byID[o.ID] = o
	}
	return byID
}

func testConfig() Config {
	return Config{
		StepTimeout: 5 * time.Second,
		Retry:       RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond},
	}
}

func newTestOrchestrator(store Store) *Orchestrator {
	return NewOrchestrator(store, nil, hclog.NewNullLogger(), testConfig())
}

func offboardInput(leaseID string) Input {
	return Input{
		LeaseID:       leaseID,
		DepartureType: DepartureVoluntary,
		DepartureDate: departureDate,
		Notes:         "Moving out of state",
		Actor:         "manager@example.com",
	}
}

// faultyStore wraps a Store and fails selected operations.
type faultyStore struct {
	Store
	terminateErr error
	departureErr error
	cancelErr    error
	historyErr   error
	checklistErr error
	unitErr      error
	writes       int
}

func (f *faultyStore) TerminateLease(ctx context.Context, p TerminateParams) (bool, error) {
	if f.terminateErr != nil {
		return false, f.terminateErr
	}
	f.writes++
	return f.Store.TerminateLease(ctx, p)
}

func (f *faultyStore) InsertDeparture(ctx context.Context, d *TenantDeparture) error {
	if f.departureErr != nil {
		return f.departureErr
	}
	f.writes++
	return f.Store.InsertDeparture(ctx, d)
}

func (f *faultyStore) CancelScheduledObligations(ctx context.Context, leaseID string, at time.Time) (int64, error) {
	if f.cancelErr != nil {
		return 0, f.cancelErr
	}
	f.writes++
	return f.Store.CancelScheduledObligations(ctx, leaseID, at)
}

func (f *faultyStore) InsertHistory(ctx context.Context, h *TenantHistory) error {
	if f.historyErr != nil {
		return f.historyErr
	}
	f.writes++
	return f.Store.InsertHistory(ctx, h)
}

func (f *faultyStore) InsertChecklist(ctx context.Context, c *TurnoverChecklist) error {
	if f.checklistErr != nil {
		return f.checklistErr
	}
	f.writes++
	return f.Store.InsertChecklist(ctx, c)
}

func (f *faultyStore) MarkUnitAvailable(ctx context.Context, unitID string, from time.Time) error {
	if f.unitErr != nil {
		return f.unitErr
	}
	f.writes++
	return f.Store.MarkUnitAvailable(ctx, unitID, from)
}
