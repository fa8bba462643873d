package offboarding

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	drv := entsql.OpenDB(dialect.SQLite, db)
	t.Cleanup(func() { drv.Close() })

	m, err := schema.NewMigrate(drv)
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background(), Tables...))
	return NewSQLStore(drv)
}

func TestSQLStore_LoadLeaseContext(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	notice := "notice-1"
	f := seedLease(t, store, withDeposit(150000), func(f *leaseFixture) { f.Lease.EvictionNoticeID = &notice }, withObligations(
		ob(1000, ObligationOverdue, 30),
		ob(2000, ObligationPending, 0),
		ob(3000, ObligationScheduled, -30),
		ob(4000, ObligationPaid, 60),
	))

	lc, err := store.LoadLeaseContext(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Tenant, lc.Tenant)
	assert.Equal(t, f.Property, lc.Property)
	assert.Equal(t, f.Unit.ID, lc.Unit.ID)
	assert.Equal(t, LeaseStatusActive, lc.Lease.Status)
	assert.EqualValues(t, 150000, lc.Lease.SecurityDepositCents)
	assert.Nil(t, lc.Lease.EndDate)
	require.NotNil(t, lc.Lease.EvictionNoticeID)
	assert.Equal(t, notice, *lc.Lease.EvictionNoticeID)
	assert.True(t, lc.Lease.StartDate.Equal(f.Lease.StartDate))

	require.Len(t, lc.Outstanding, 2)
	assert.Equal(t, f.Obligations[0].ID, lc.Outstanding[0].ID)
	assert.Equal(t, f.Obligations[1].ID, lc.Outstanding[1].ID)

	_, err = store.LoadLeaseContext(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ConstraintErrors(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store)

	err := store.CreateTenant(ctx, &f.Tenant)
	assert.ErrorIs(t, err, ErrConflict)

	err = store.CreateUnit(ctx, &Unit{ID: uuid.NewString(), PropertyID: "missing", UnitNumber: "1A"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_TerminateLeaseIsConditional(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store)
	params := TerminateParams{
		LeaseID: f.Lease.ID,
		Reason:  DepartureMutual,
		At:      departureDate,
		From:    terminableStatuses(),
		Actor:   "manager",
	}

	updated, err := store.TerminateLease(ctx, params)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = store.TerminateLease(ctx, params)
	require.NoError(t, err)
	assert.False(t, updated)

	l, err := store.GetLease(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, LeaseStatusTerminated, l.Status)
	require.NotNil(t, l.TerminationReason)
	assert.Equal(t, DepartureMutual, *l.TerminationReason)
	require.NotNil(t, l.TerminatedAt)
	assert.True(t, l.TerminatedAt.Equal(departureDate))
	assert.Equal(t, "manager", l.UpdatedBy)
}

func TestSQLStore_OffboardScenario(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store, withDeposit(150000), withObligations(
		ob(150000, ObligationOverdue, 30),
		ob(150000, ObligationPending, 0),
		ob(150000, ObligationScheduled, -30),
	))
	orch := newTestOrchestrator(store)

	in := offboardInput(f.Lease.ID)
	in.MarkUnitAvailable = true
	res, err := orch.Execute(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.EqualValues(t, 2, res.PaymentsCancelled)
	assert.True(t, res.UnitMarkedAvailable)

	d, err := store.LatestDeparture(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, res.DepartureID, d.ID)
	assert.Equal(t, DepartureVoluntary, d.DepartureType)
	assert.Equal(t, *f.Property.OwnerID, d.OwnerID)

	h, err := store.FindHistory(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, res.TenantHistoryID, h.ID)
	assert.True(t, h.LeaseEndDate.Equal(departureDate))
	assert.EqualValues(t, 150000, h.DepositAmountCents)

	cl, err := store.FindChecklist(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, res.TurnoverChecklistID, cl.ID)

	u, err := store.GetUnit(ctx, f.Unit.ID)
	require.NoError(t, err)
	assert.True(t, u.Available)
	require.NotNil(t, u.AvailableFrom)
	assert.True(t, u.AvailableFrom.Equal(departureDate))

	bal, err := orch.Balance(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 150000, bal.TotalOwedCents)

	// A second run reports the records the first one made.
	again, err := orch.Execute(ctx, in)
	require.NoError(t, err)
	assert.True(t, again.AlreadyTerminated)
	assert.Equal(t, res.DepartureID, again.DepartureID)
	assert.Equal(t, res.TenantHistoryID, again.TenantHistoryID)
	assert.Equal(t, res.TurnoverChecklistID, again.TurnoverChecklistID)

	departures, err := store.ListDepartures(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Len(t, departures, 1)
}

func TestSQLStore_HistoryIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store)
	archiver := NewHistoryArchiver(store, nil, hclog.NewNullLogger())
	lc, err := store.LoadLeaseContext(ctx, f.Lease.ID)
	require.NoError(t, err)

	_, err = archiver.Archive(ctx, lc, DepartureVoluntary, departureDate, nil)
	require.NoError(t, err)
	_, err = archiver.Archive(ctx, lc, DepartureVoluntary, departureDate, nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.FindHistory(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ApplyDepositPayments(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store, withDeposit(100000), withObligations(
		ob(60000, ObligationOverdue, 60),
		ob(60000, ObligationOverdue, 30),
	))
	engine := NewDispositionEngine(store, nil, hclog.NewNullLogger(), testConfig().Retry)

	res, err := engine.Handle(ctx, DispositionRequest{
		LeaseID:             f.Lease.ID,
		Disposition:         DispositionApplyDeposit,
		DepositToApplyCents: cents(100000),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100000, res.AppliedCents)
	assert.EqualValues(t, 20000, res.RemainingOwedCents)

	obligations, err := store.ListObligations(ctx, f.Lease.ID)
	require.NoError(t, err)
	require.Len(t, obligations, 2)
	assert.Equal(t, ObligationPaid, obligations[0].Status)
	require.NotNil(t, obligations[0].PaymentSource)
	assert.Equal(t, PaymentSourceDeposit, *obligations[0].PaymentSource)
	assert.Equal(t, ObligationOverdue, obligations[1].Status)
	assert.EqualValues(t, 40000, obligations[1].PaidAmountCents)
	assert.Nil(t, obligations[1].PaymentSource)

	applied, err := store.DepositAppliedCents(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100000, applied)

	// Settling an obligation that is no longer outstanding rolls back.
	err = store.ApplyDepositPayments(ctx, DepositParams{
		LeaseID:      f.Lease.ID,
		DepositCents: 1000000,
		Applications: []DepositApplication{
			{ObligationID: obligations[1].ID, AmountCents: 100, Settles: false},
			{ObligationID: obligations[0].ID, AmountCents: 100, Settles: true},
		},
		At: time.Now(),
	})
	assert.ErrorIs(t, err, ErrConflict)
	after, err := store.ListObligations(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 40000, after[1].PaidAmountCents)
}

func TestSQLStore_ApplyDepositPaymentsEnforcesDepositCap(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store, withDeposit(100000), withObligations(
		ob(200000, ObligationOverdue, 30),
	))
	apply := func(amount int64) error {
		return store.ApplyDepositPayments(ctx, DepositParams{
			LeaseID:      f.Lease.ID,
			DepositCents: f.Lease.SecurityDepositCents,
			Applications: []DepositApplication{{ObligationID: f.Obligations[0].ID, AmountCents: amount}},
			At:           time.Now(),
		})
	}

	require.NoError(t, apply(70000))
	assert.ErrorIs(t, apply(40000), ErrConflict)

	applied, err := store.DepositAppliedCents(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 70000, applied)
	byID := obligationsByID(t, store, f.Lease.ID)
	assert.EqualValues(t, 70000, byID[f.Obligations[0].ID].PaidAmountCents)

	require.NoError(t, apply(30000))
}

func TestSQLStore_WriteOffIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store, withObligations(
		ob(50000, ObligationOverdue, 30),
		ob(50000, ObligationPaid, 60),
	))
	exp := &Expense{
		ID:          uuid.NewString(),
		OwnerID:     *f.Property.OwnerID,
		PropertyID:  f.Property.ID,
		UnitID:      f.Unit.ID,
		LeaseID:     f.Lease.ID,
		Category:    ExpenseBadDebt,
		AmountCents: 100000,
		Description: "write-off",
		IncurredOn:  departureDate,
		CreatedAt:   departureDate,
	}

	err := store.WriteOffObligations(ctx, exp, []string{f.Obligations[0].ID, f.Obligations[1].ID}, time.Now())
	assert.ErrorIs(t, err, ErrConflict)

	overdue, paid := f.Obligations[0].ID, f.Obligations[1].ID

	expenses, err := store.ListExpenses(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	byID := obligationsByID(t, store, f.Lease.ID)
	assert.Equal(t, ObligationOverdue, byID[overdue].Status)
	assert.Nil(t, byID[overdue].Disposition)
	assert.Equal(t, ObligationPaid, byID[paid].Status)

	require.NoError(t, store.WriteOffObligations(ctx, exp, []string{overdue}, time.Now()))
	expenses, err = store.ListExpenses(ctx, f.Lease.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, ExpenseBadDebt, expenses[0].Category)

	byID = obligationsByID(t, store, f.Lease.ID)
	assert.Equal(t, ObligationCancelled, byID[overdue].Status)
	require.NotNil(t, byID[overdue].ExpenseID)
	assert.Equal(t, exp.ID, *byID[overdue].ExpenseID)
	require.NotNil(t, byID[overdue].Disposition)
	assert.Equal(t, DispositionWriteOff, *byID[overdue].Disposition)
	assert.Equal(t, ObligationPaid, byID[paid].Status)
}

func TestSQLStore_FlagCollections(t *testing.T) {
	ctx := context.Background()
	store := newSQLTestStore(t)
	f := seedLease(t, store, withObligations(
		ob(50000, ObligationOverdue, 30),
		ob(50000, ObligationPaid, 60),
	))

	n, err := store.FlagCollections(ctx, []string{f.Obligations[0].ID, f.Obligations[1].ID}, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	byID := obligationsByID(t, store, f.Lease.ID)
	flagged := byID[f.Obligations[0].ID]
	assert.Equal(t, ObligationOverdue, flagged.Status)
	require.NotNil(t, flagged.Disposition)
	assert.Equal(t, DispositionCollections, *flagged.Disposition)
	assert.Equal(t, ObligationPaid, byID[f.Obligations[1].ID].Status)
	assert.Nil(t, byID[f.Obligations[1].ID].Disposition)
}

func TestSQLStore_MarkUnitAvailableMissingUnit(t *testing.T) {
	store := newSQLTestStore(t)
	err := store.MarkUnitAvailable(context.Background(), "missing", departureDate)
	assert.ErrorIs(t, err, ErrNotFound)
}
