package offboarding

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTerminator(store Store) *Terminator {
	return NewTerminator(store, nil, hclog.NewNullLogger())
}

func TestTerminate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f := seedLease(t, store, withStatus(LeaseStatusMonthToMonthHoldover))

	term, err := newTestTerminator(store).Terminate(ctx, f.Lease.ID, DepartureNonRenewal, departureDate, "manager")
	require.NoError(t, err)
	assert.False(t, term.AlreadyTerminated)
	assert.Equal(t, LeaseStatusMonthToMonthHoldover, term.PreviousStatus)
	assert.Equal(t, LeaseStatusTerminated, term.Lease.Status)
	assert.Equal(t, DepartureNonRenewal, *term.Lease.TerminationReason)
	assert.Equal(t, "manager", term.Lease.UpdatedBy)
}

func TestTerminate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f := seedLease(t, store)
	term := newTestTerminator(store)

	first, err := term.Terminate(ctx, f.Lease.ID, DepartureMutual, departureDate, "manager")
	require.NoError(t, err)

	// Same reason, same calendar day at a different time.
	second, err := term.Terminate(ctx, f.Lease.ID, DepartureMutual, departureDate.Add(15*time.Hour), "manager")
	require.NoError(t, err)
	assert.True(t, second.AlreadyTerminated)
	assert.Equal(t, first.Lease.TerminatedAt, second.Lease.TerminatedAt)
	assert.Equal(t, first.Lease.TerminationReason, second.Lease.TerminationReason)
}

func TestTerminate_Conflicts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f := seedLease(t, store)
	term := newTestTerminator(store)

	_, err := term.Terminate(ctx, f.Lease.ID, DepartureVoluntary, departureDate, "manager")
	require.NoError(t, err)

	_, err = term.Terminate(ctx, f.Lease.ID, DepartureAbandonment, departureDate, "manager")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = term.Terminate(ctx, f.Lease.ID, DepartureVoluntary, departureDate.AddDate(0, 0, 1), "manager")
	assert.ErrorIs(t, err, ErrConflict)

	lease, err := store.GetLease(ctx, f.Lease.ID)
	require.NoError(t, err)
	assert.Equal(t, DepartureVoluntary, *lease.TerminationReason)
	assert.True(t, lease.TerminatedAt.Equal(departureDate))
}

func TestTerminate_DraftLeaseConflicts(t *testing.T) {
	store := NewMemoryStore()
	f := seedLease(t, store, withStatus(LeaseStatusDraft))

	_, err := newTestTerminator(store).Terminate(context.Background(), f.Lease.ID, DepartureVoluntary, departureDate, "manager")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTerminate_NotFound(t *testing.T) {
	_, err := newTestTerminator(NewMemoryStore()).Terminate(context.Background(), "missing", DepartureVoluntary, departureDate, "manager")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTerminate_Validation(t *testing.T) {
	term := newTestTerminator(NewMemoryStore())
	_, err := term.Terminate(context.Background(), "lease", "unknown", departureDate, "manager")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = term.Terminate(context.Background(), "lease", DepartureVoluntary, time.Time{}, "manager")
	assert.ErrorIs(t, err, ErrValidation)
}

// lostRaceStore terminates the lease on behalf of another caller right before
// the conditional update runs.
type lostRaceStore struct {
	Store
	winner TerminateParams
}

func (s *lostRaceStore) TerminateLease(ctx context.Context, p TerminateParams) (bool, error) {
	if _, err := s.Store.TerminateLease(ctx, s.winner); err != nil {
		return false, err
	}
	return s.Store.TerminateLease(ctx, p)
}

func TestTerminate_LostRace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	f := seedLease(t, store)
	winner := TerminateParams{
		LeaseID: f.Lease.ID,
		Reason:  DepartureEviction,
		At:      departureDate,
		From:    terminableStatuses(),
		Actor:   "other",
	}

	_, err := newTestTerminator(&lostRaceStore{Store: store, winner: winner}).
		Terminate(ctx, f.Lease.ID, DepartureVoluntary, departureDate, "manager")
	assert.ErrorIs(t, err, ErrConflict)

	winner.Reason = DepartureVoluntary
	g := seedLease(t, store)
	winner.LeaseID = g.Lease.ID
	term, err := newTestTerminator(&lostRaceStore{Store: store, winner: winner}).
		Terminate(ctx, g.Lease.ID, DepartureVoluntary, departureDate, "manager")
	require.NoError(t, err)
	assert.True(t, term.AlreadyTerminated)
}

func TestTerminableStatuses(t *testing.T) {
	assert.ElementsMatch(t, []LeaseStatus{
		LeaseStatusActive,
		LeaseStatusMonthToMonthHoldover,
		LeaseStatusEviction,
		LeaseStatusExpired,
	}, terminableStatuses())
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(ValidLeaseTransitions, "active", "terminated"))
	assert.ErrorIs(t, ValidateTransition(ValidLeaseTransitions, "terminated", "active"), ErrConflict)
	assert.ErrorIs(t, ValidateTransition(ValidLeaseTransitions, "bogus", "terminated"), ErrConflict)
}
