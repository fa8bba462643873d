package offboarding

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory maps.
// Intended for demos and testing.
type MemoryStore struct {
	mu          sync.RWMutex
	properties  map[string]Property
	units       map[string]Unit
	tenants     map[string]Tenant
	leases      map[string]Lease
	obligations map[string]Obligation
	departures  []TenantDeparture
	histories   map[string]TenantHistory     // by lease ID
	checklists  map[string]TurnoverChecklist // by lease ID
	expenses    []Expense
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties:  make(map[string]Property),
		units:       make(map[string]Unit),
		tenants:     make(map[string]Tenant),
		leases:      make(map[string]Lease),
		obligations: make(map[string]Obligation),
		histories:   make(map[string]TenantHistory),
		checklists:  make(map[string]TurnoverChecklist),
	}
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateProperty(_ context.Context, p *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; ok {
		return fmt.Errorf("property %s: %w", p.ID, ErrConflict)
	}
	s.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) CreateUnit(_ context.Context, u *Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[u.ID]; ok {
		return fmt.Errorf("unit %s: %w", u.ID, ErrConflict)
	}
	s.units[u.ID] = *u
	return nil
}

func (s *MemoryStore) CreateTenant(_ context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; ok {
		return fmt.Errorf("tenant %s: %w", t.ID, ErrConflict)
	}
	s.tenants[t.ID] = *t
	return nil
}

func (s *MemoryStore) CreateLease(_ context.Context, l *Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leases[l.ID]; ok {
		return fmt.Errorf("lease %s: %w", l.ID, ErrConflict)
	}
	s.leases[l.ID] = *l
	return nil
}

func (s *MemoryStore) CreateObligation(_ context.Context, o *Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.obligations[o.ID]; ok {
		return fmt.Errorf("obligation %s: %w", o.ID, ErrConflict)
	}
	s.obligations[o.ID] = *o
	return nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *MemoryStore) LoadLeaseContext(_ context.Context, leaseID string) (*LeaseContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leases[leaseID]
	if !ok {
		return nil, fmt.Errorf("lease %s: %w", leaseID, ErrNotFound)
	}
	t, ok := s.tenants[l.TenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", l.TenantID, ErrNotFound)
	}
	u, ok := s.units[l.UnitID]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", l.UnitID, ErrNotFound)
	}
	p, ok := s.properties[u.PropertyID]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", u.PropertyID, ErrNotFound)
	}
	return &LeaseContext{
		Lease:       l,
		Tenant:      t,
		Unit:        u,
		Property:    p,
		Outstanding: s.outstanding(leaseID),
	}, nil
}

func (s *MemoryStore) GetLease(_ context.Context, leaseID string) (*Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leases[leaseID]
	if !ok {
		return nil, fmt.Errorf("lease %s: %w", leaseID, ErrNotFound)
	}
	return &l, nil
}

// GetUnit returns a unit by ID.
func (s *MemoryStore) GetUnit(_ context.Context, unitID string) (*Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) ListOutstandingObligations(_ context.Context, leaseID string) ([]Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outstanding(leaseID), nil
}

// ListObligations returns every obligation on a lease, oldest due date first.
func (s *MemoryStore) ListObligations(_ context.Context, leaseID string) ([]Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterObligations(leaseID, func(Obligation) bool { return true }), nil
}

// ListDepartures returns every departure recorded on a lease, oldest first.
func (s *MemoryStore) ListDepartures(_ context.Context, leaseID string) ([]TenantDeparture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TenantDeparture
	for _, d := range s.departures {
		if d.LeaseID == leaseID {
			out = append(out, d)
		}
	}
	return out, nil
}

// ListExpenses returns every expense recorded against a lease.
func (s *MemoryStore) ListExpenses(_ context.Context, leaseID string) ([]Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Expense
	for _, e := range s.expenses {
		if e.LeaseID == leaseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) outstanding(leaseID string) []Obligation {
	return s.filterObligations(leaseID, func(o Obligation) bool { return o.Status.Outstanding() })
}

func (s *MemoryStore) filterObligations(leaseID string, keep func(Obligation) bool) []Obligation {
	var out []Obligation
	for _, o := range s.obligations {
		if o.LeaseID == leaseID && keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) LatestDeparture(_ context.Context, leaseID string) (*TenantDeparture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.departures) - 1; i >= 0; i-- {
		if s.departures[i].LeaseID == leaseID {
			d := s.departures[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("departure for lease %s: %w", leaseID, ErrNotFound)
}

func (s *MemoryStore) DepositAppliedCents(_ context.Context, leaseID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.depositApplied(leaseID), nil
}

func (s *MemoryStore) depositApplied(leaseID string) int64 {
	var total int64
	for _, o := range s.obligations {
		if o.LeaseID == leaseID {
			total += o.DepositAppliedCents
		}
	}
	return total
}

func (s *MemoryStore) FindHistory(_ context.Context, leaseID string) (*TenantHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[leaseID]
	if !ok {
		return nil, fmt.Errorf("tenant history for lease %s: %w", leaseID, ErrNotFound)
	}
	return &h, nil
}

func (s *MemoryStore) FindChecklist(_ context.Context, leaseID string) (*TurnoverChecklist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checklists[leaseID]
	if !ok {
		return nil, fmt.Errorf("turnover checklist for lease %s: %w", leaseID, ErrNotFound)
	}
	return &c, nil
}

// ── Writes ───────────────────────────────────────────────────────────────────

func (s *MemoryStore) TerminateLease(_ context.Context, p TerminateParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leases[p.LeaseID]
	if !ok || !slices.Contains(p.From, l.Status) {
		return false, nil
	}
	at := p.At.UTC()
	reason := p.Reason
	l.Status = LeaseStatusTerminated
	l.TerminationReason = &reason
	l.TerminatedAt = &at
	l.UpdatedBy = p.Actor
	l.UpdatedAt = time.Now().UTC()
	s.leases[p.LeaseID] = l
	return true, nil
}

func (s *MemoryStore) InsertDeparture(_ context.Context, d *TenantDeparture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leases[d.LeaseID]; !ok {
		return fmt.Errorf("lease %s: %w", d.LeaseID, ErrNotFound)
	}
	s.departures = append(s.departures, *d)
	return nil
}

func (s *MemoryStore) CancelScheduledObligations(_ context.Context, leaseID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, o := range s.obligations {
		if o.LeaseID != leaseID {
			continue
		}
		if o.Status != ObligationPending && o.Status != ObligationScheduled {
			continue
		}
		o.Status = ObligationCancelled
		disposedAt := at.UTC()
		o.DisposedAt = &disposedAt
		s.obligations[id] = o
		n++
	}
	return n, nil
}

// requireOutstanding checks, under the write lock, that every ID names an
// outstanding obligation.
func (s *MemoryStore) requireOutstanding(ids []string) error {
	for _, id := range ids {
		o, ok := s.obligations[id]
		if !ok {
			return fmt.Errorf("obligation %s: %w", id, ErrNotFound)
		}
		if !o.Status.Outstanding() {
			return fmt.Errorf("obligation %s is %s: %w", id, o.Status, ErrConflict)
		}
	}
	return nil
}

func (s *MemoryStore) WriteOffObligations(_ context.Context, exp *Expense, obligationIDs []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOutstanding(obligationIDs); err != nil {
		return err
	}
	s.expenses = append(s.expenses, *exp)
	disposedAt := at.UTC()
	disposition := DispositionWriteOff
	expenseID := exp.ID
	for _, id := range obligationIDs {
		o := s.obligations[id]
		o.Status = ObligationCancelled
		o.Disposition = &disposition
		o.ExpenseID = &expenseID
		o.DisposedAt = &disposedAt
		s.obligations[id] = o
	}
	return nil
}

func (s *MemoryStore) ApplyDepositPayments(_ context.Context, p DepositParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(p.Applications))
	var amount int64
	for i, a := range p.Applications {
		ids[i] = a.ObligationID
		amount += a.AmountCents
	}
	if err := s.requireOutstanding(ids); err != nil {
		return err
	}
	if applied := s.depositApplied(p.LeaseID); applied+amount > p.DepositCents {
		return fmt.Errorf("lease %s: applying %d on top of %d exceeds deposit %d: %w",
			p.LeaseID, amount, applied, p.DepositCents, ErrConflict)
	}
	disposedAt := p.At.UTC()
	for _, a := range p.Applications {
		o := s.obligations[a.ObligationID]
		o.PaidAmountCents += a.AmountCents
		o.DepositAppliedCents += a.AmountCents
		if a.Settles {
			source := PaymentSourceDeposit
			disposition := DispositionApplyDeposit
			o.Status = ObligationPaid
			o.PaymentSource = &source
			o.Disposition = &disposition
			o.DisposedAt = &disposedAt
		}
		s.obligations[a.ObligationID] = o
	}
	return nil
}

func (s *MemoryStore) FlagCollections(_ context.Context, obligationIDs []string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	disposedAt := at.UTC()
	for _, id := range obligationIDs {
		o, ok := s.obligations[id]
		if !ok || !o.Status.Outstanding() {
			continue
		}
		disposition := DispositionCollections
		o.Disposition = &disposition
		o.DisposedAt = &disposedAt
		s.obligations[id] = o
		n++
	}
	return n, nil
}

func (s *MemoryStore) InsertHistory(_ context.Context, h *TenantHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.histories[h.LeaseID]; ok {
		return fmt.Errorf("tenant history for lease %s: %w", h.LeaseID, ErrConflict)
	}
	s.histories[h.LeaseID] = *h
	return nil
}

func (s *MemoryStore) InsertChecklist(_ context.Context, c *TurnoverChecklist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checklists[c.LeaseID]; ok {
		return fmt.Errorf("turnover checklist for lease %s: %w", c.LeaseID, ErrConflict)
	}
	s.checklists[c.LeaseID] = *c
	return nil
}

func (s *MemoryStore) MarkUnitAvailable(_ context.Context, unitID string, from time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}
	availableFrom := from.UTC()
	u.Available = true
	u.AvailableFrom = &availableFrom
	s.units[unitID] = u
	return nil
}
