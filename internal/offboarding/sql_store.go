package offboarding

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
)

// SQLStore implements Store on top of an ent SQL driver (SQLite).
type SQLStore struct {
	drv dialect.Driver
}

// NewSQLStore creates a new SQLStore. The schema must already be migrated
// (see Tables).
func NewSQLStore(drv dialect.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

func sqlite() *entsql.DialectBuilder { return entsql.Dialect(dialect.SQLite) }

// storeError maps driver errors onto the package's error taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case sqlgraph.IsUniqueConstraintError(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case sqlgraph.IsForeignKeyConstraintError(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return classifyStoreError(err)
}

func execQuery(ctx context.Context, eq dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return 0, storeError(err)
	}
	n, err := res.RowsAffected()
	return n, storeError(err)
}

func selectRows(ctx context.Context, eq dialect.ExecQuerier, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, rows); err != nil {
		return storeError(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return storeError(rows.Err())
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return storeError(err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	return storeError(tx.Commit())
}

// ── Scanning ─────────────────────────────────────────────────────────────────

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullString[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func scanLease(rows *entsql.Rows) (*Lease, error) {
	var (
		l                     Lease
		status                string
		endDate, terminatedAt sql.NullTime
		reason, noticeID      sql.NullString
	)
	if err := rows.Scan(&l.ID, &l.TenantID, &l.UnitID, &l.StartDate, &endDate,
		&l.RentAmountCents, &l.SecurityDepositCents, &l.Currency, &status, &reason,
		&terminatedAt, &noticeID, &l.UpdatedBy, &l.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan lease: %w", err)
	}
	l.StartDate = l.StartDate.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	l.Status = LeaseStatus(status)
	l.EndDate = timePtr(endDate)
	l.TerminatedAt = timePtr(terminatedAt)
	l.EvictionNoticeID = stringPtr(noticeID)
	if reason.Valid {
		r := DepartureType(reason.String)
		l.TerminationReason = &r
	}
	return &l, nil
}

func scanObligation(rows *entsql.Rows) (Obligation, error) {
	var (
		o                     Obligation
		status                string
		source, disp, expense sql.NullString
		disposedAt            sql.NullTime
	)
	if err := rows.Scan(&o.ID, &o.LeaseID, &o.Description, &o.AmountCents,
		&o.PaidAmountCents, &o.DepositAppliedCents, &o.DueDate, &status,
		&source, &disp, &expense, &disposedAt); err != nil {
		return o, fmt.Errorf("scan obligation: %w", err)
	}
	o.DueDate = o.DueDate.UTC()
	o.Status = ObligationStatus(status)
	if source.Valid {
		v := PaymentSource(source.String)
		o.PaymentSource = &v
	}
	if disp.Valid {
		v := Disposition(disp.String)
		o.Disposition = &v
	}
	o.ExpenseID = stringPtr(expense)
	o.DisposedAt = timePtr(disposedAt)
	return o, nil
}

func scanDeparture(rows *entsql.Rows) (TenantDeparture, error) {
	var (
		d        TenantDeparture
		depType  string
		noticeID sql.NullString
	)
	if err := rows.Scan(&d.ID, &d.LeaseID, &d.TenantID, &d.UnitID, &d.OwnerID,
		&depType, &d.DepartureDate, &d.Notes, &noticeID, &d.RecordedBy, &d.CreatedAt); err != nil {
		return d, fmt.Errorf("scan departure: %w", err)
	}
	d.DepartureType = DepartureType(depType)
	d.DepartureDate = d.DepartureDate.UTC()
	d.CreatedAt = d.CreatedAt.UTC()
	d.EvictionNoticeID = stringPtr(noticeID)
	return d, nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func (s *SQLStore) CreateProperty(ctx context.Context, p *Property) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(PropertiesTable.Name).
		Columns(columnNames(PropertiesColumns)...).
		Values(p.ID, p.Name, nullString(p.OwnerID)))
	return err
}

func (s *SQLStore) CreateUnit(ctx context.Context, u *Unit) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(UnitsTable.Name).
		Columns(columnNames(UnitsColumns)...).
		Values(u.ID, u.PropertyID, u.UnitNumber, u.Available, nullTime(u.AvailableFrom)))
	return err
}

func (s *SQLStore) CreateTenant(ctx context.Context, t *Tenant) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(TenantsTable.Name).
		Columns(columnNames(TenantsColumns)...).
		Values(t.ID, t.FirstName, t.LastName, t.Email, t.Phone))
	return err
}

func (s *SQLStore) CreateLease(ctx context.Context, l *Lease) error {
	updatedAt := l.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := execQuery(ctx, s.drv, sqlite().Insert(LeasesTable.Name).
		Columns(columnNames(LeasesColumns)...).
		Values(l.ID, l.TenantID, l.UnitID, l.StartDate.UTC(), nullTime(l.EndDate),
			l.RentAmountCents, l.SecurityDepositCents, l.Currency, string(l.Status),
			nullString(l.TerminationReason), nullTime(l.TerminatedAt), nullString(l.EvictionNoticeID),
			l.UpdatedBy, updatedAt.UTC()))
	return err
}

func (s *SQLStore) CreateObligation(ctx context.Context, o *Obligation) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(ObligationsTable.Name).
		Columns(columnNames(ObligationsColumns)...).
		Values(o.ID, o.LeaseID, o.Description, o.AmountCents, o.PaidAmountCents,
			o.DepositAppliedCents, o.DueDate.UTC(), string(o.Status),
			nullString(o.PaymentSource), nullString(o.Disposition), nullString(o.ExpenseID),
			nullTime(o.DisposedAt)))
	return err
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *SQLStore) GetLease(ctx context.Context, leaseID string) (*Lease, error) {
	return getLease(ctx, s.drv, leaseID)
}

func getLease(ctx context.Context, eq dialect.ExecQuerier, leaseID string) (*Lease, error) {
	var l *Lease
	err := selectRows(ctx, eq, sqlite().Select(columnNames(LeasesColumns)...).
		From(entsql.Table(LeasesTable.Name)).
		Where(entsql.EQ("id", leaseID)),
		func(rows *entsql.Rows) (err error) {
			l, err = scanLease(rows)
			return err
		})
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, ErrNotFound)
	}
	return l, nil
}

func (s *SQLStore) getTenant(ctx context.Context, id string) (*Tenant, error) {
	var t *Tenant
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(TenantsColumns)...).
		From(entsql.Table(TenantsTable.Name)).
		Where(entsql.EQ("id", id)),
		func(rows *entsql.Rows) error {
			t = &Tenant{}
			return rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Phone)
		})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// GetUnit returns a unit by ID.
func (s *SQLStore) GetUnit(ctx context.Context, id string) (*Unit, error) {
	var u *Unit
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(UnitsColumns)...).
		From(entsql.Table(UnitsTable.Name)).
		Where(entsql.EQ("id", id)),
		func(rows *entsql.Rows) error {
			var from sql.NullTime
			u = &Unit{}
			if err := rows.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.Available, &from); err != nil {
				return err
			}
			u.AvailableFrom = timePtr(from)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *SQLStore) getProperty(ctx context.Context, id string) (*Property, error) {
	var p *Property
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(PropertiesColumns)...).
		From(entsql.Table(PropertiesTable.Name)).
		Where(entsql.EQ("id", id)),
		func(rows *entsql.Rows) error {
			var owner sql.NullString
			p = &Property{}
			if err := rows.Scan(&p.ID, &p.Name, &owner); err != nil {
				return err
			}
			p.OwnerID = stringPtr(owner)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *SQLStore) LoadLeaseContext(ctx context.Context, leaseID string) (*LeaseContext, error) {
	l, err := s.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	t, err := s.getTenant(ctx, l.TenantID)
	if err != nil {
		return nil, err
	}
	u, err := s.GetUnit(ctx, l.UnitID)
	if err != nil {
		return nil, err
	}
	p, err := s.getProperty(ctx, u.PropertyID)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.ListOutstandingObligations(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return &LeaseContext{Lease: *l, Tenant: *t, Unit: *u, Property: *p, Outstanding: outstanding}, nil
}

func (s *SQLStore) listObligations(ctx context.Context, pred *entsql.Predicate) ([]Obligation, error) {
	var out []Obligation
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(ObligationsColumns)...).
		From(entsql.Table(ObligationsTable.Name)).
		Where(pred).
		OrderBy(entsql.Asc("due_date"), entsql.Asc("id")),
		func(rows *entsql.Rows) error {
			o, err := scanObligation(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
			return nil
		})
	return out, err
}

func (s *SQLStore) ListOutstandingObligations(ctx context.Context, leaseID string) ([]Obligation, error) {
	return s.listObligations(ctx, entsql.And(
		entsql.EQ("lease_id", leaseID),
		entsql.In("status", string(ObligationPending), string(ObligationOverdue)),
	))
}

// ListObligations returns every obligation on a lease, oldest due date first.
func (s *SQLStore) ListObligations(ctx context.Context, leaseID string) ([]Obligation, error) {
	return s.listObligations(ctx, entsql.EQ("lease_id", leaseID))
}

// ListDepartures returns every departure recorded on a lease, oldest first.
func (s *SQLStore) ListDepartures(ctx context.Context, leaseID string) ([]TenantDeparture, error) {
	var out []TenantDeparture
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(TenantDeparturesColumns)...).
		From(entsql.Table(TenantDeparturesTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)).
		OrderBy(entsql.Asc("created_at")),
		func(rows *entsql.Rows) error {
			d, err := scanDeparture(rows)
			if err != nil {
				return err
			}
			out = append(out, d)
			return nil
		})
	return out, err
}

// ListExpenses returns every expense recorded against a lease.
func (s *SQLStore) ListExpenses(ctx context.Context, leaseID string) ([]Expense, error) {
	var out []Expense
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(ExpensesColumns)...).
		From(entsql.Table(ExpensesTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)).
		OrderBy(entsql.Asc("created_at")),
		func(rows *entsql.Rows) error {
			var (
				e        Expense
				category string
			)
			if err := rows.Scan(&e.ID, &e.OwnerID, &e.PropertyID, &e.UnitID, &e.LeaseID,
				&category, &e.AmountCents, &e.Description, &e.IncurredOn, &e.CreatedAt); err != nil {
				return fmt.Errorf("scan expense: %w", err)
			}
			e.Category = ExpenseCategory(category)
			e.IncurredOn = e.IncurredOn.UTC()
			e.CreatedAt = e.CreatedAt.UTC()
			out = append(out, e)
			return nil
		})
	return out, err
}

func (s *SQLStore) LatestDeparture(ctx context.Context, leaseID string) (*TenantDeparture, error) {
	var d *TenantDeparture
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(TenantDeparturesColumns)...).
		From(entsql.Table(TenantDeparturesTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1),
		func(rows *entsql.Rows) error {
			v, err := scanDeparture(rows)
			d = &v
			return err
		})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("departure for lease %s: %w", leaseID, ErrNotFound)
	}
	return d, nil
}

func (s *SQLStore) DepositAppliedCents(ctx context.Context, leaseID string) (int64, error) {
	return depositApplied(ctx, s.drv, leaseID)
}

func depositApplied(ctx context.Context, eq dialect.ExecQuerier, leaseID string) (int64, error) {
	var total sql.NullInt64
	err := selectRows(ctx, eq, sqlite().Select(entsql.Sum("deposit_applied_cents")).
		From(entsql.Table(ObligationsTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)),
		func(rows *entsql.Rows) error {
			return rows.Scan(&total)
		})
	return total.Int64, err
}

func (s *SQLStore) FindHistory(ctx context.Context, leaseID string) (*TenantHistory, error) {
	var h *TenantHistory
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(TenantHistoriesColumns)...).
		From(entsql.Table(TenantHistoriesTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)),
		func(rows *entsql.Rows) error {
			var depType string
			h = &TenantHistory{}
			if err := rows.Scan(&h.ID, &h.LeaseID, &h.TenantID, &h.OwnerID, &h.PropertyID,
				&h.UnitID, &h.FirstName, &h.LastName, &h.Email, &h.Phone, &h.LeaseStartDate,
				&h.LeaseEndDate, &h.RentAmountCents, &depType, &h.DepartureDate,
				&h.DepositAmountCents, &h.DepositRefundedCents, &h.DepositDeductedCents,
				&h.WasEvicted, &h.CreatedAt); err != nil {
				return fmt.Errorf("scan tenant history: %w", err)
			}
			h.DepartureType = DepartureType(depType)
			h.LeaseStartDate = h.LeaseStartDate.UTC()
			h.LeaseEndDate = h.LeaseEndDate.UTC()
			h.DepartureDate = h.DepartureDate.UTC()
			h.CreatedAt = h.CreatedAt.UTC()
			return nil
		})
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("tenant history for lease %s: %w", leaseID, ErrNotFound)
	}
	return h, nil
}

func (s *SQLStore) FindChecklist(ctx context.Context, leaseID string) (*TurnoverChecklist, error) {
	var c *TurnoverChecklist
	err := selectRows(ctx, s.drv, sqlite().Select(columnNames(TurnoverChecklistsColumns)...).
		From(entsql.Table(TurnoverChecklistsTable.Name)).
		Where(entsql.EQ("lease_id", leaseID)),
		func(rows *entsql.Rows) error {
			c = &TurnoverChecklist{}
			if err := rows.Scan(&c.ID, &c.LeaseID, &c.UnitID, &c.PropertyID, &c.OwnerID,
				&c.DepositProcessed, &c.KeysCollected, &c.UnitInspected,
				&c.CleaningCompleted, &c.RepairsCompleted, &c.CreatedAt); err != nil {
				return fmt.Errorf("scan turnover checklist: %w", err)
			}
			c.CreatedAt = c.CreatedAt.UTC()
			return nil
		})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("turnover checklist for lease %s: %w", leaseID, ErrNotFound)
	}
	return c, nil
}

// ── Writes ───────────────────────────────────────────────────────────────────

func (s *SQLStore) TerminateLease(ctx context.Context, p TerminateParams) (bool, error) {
	if len(p.From) == 0 {
		return false, nil
	}
	from := make([]any, len(p.From))
	for i, st := range p.From {
		from[i] = string(st)
	}
	at := p.At.UTC()
	n, err := execQuery(ctx, s.drv, sqlite().Update(LeasesTable.Name).
		Set("status", string(LeaseStatusTerminated)).
		Set("termination_reason", string(p.Reason)).
		Set("terminated_at", at).
		Set("updated_by", p.Actor).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("id", p.LeaseID),
			entsql.In("status", from...),
		)))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLStore) InsertDeparture(ctx context.Context, d *TenantDeparture) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(TenantDeparturesTable.Name).
		Columns(columnNames(TenantDeparturesColumns)...).
		Values(d.ID, d.LeaseID, d.TenantID, d.UnitID, d.OwnerID, string(d.DepartureType),
			d.DepartureDate.UTC(), d.Notes, nullString(d.EvictionNoticeID), d.RecordedBy,
			d.CreatedAt.UTC()))
	return err
}

func (s *SQLStore) CancelScheduledObligations(ctx context.Context, leaseID string, at time.Time) (int64, error) {
	return execQuery(ctx, s.drv, sqlite().Update(ObligationsTable.Name).
		Set("status", string(ObligationCancelled)).
		Set("disposed_at", at.UTC()).
		Where(entsql.And(
			entsql.EQ("lease_id", leaseID),
			entsql.In("status", string(ObligationPending), string(ObligationScheduled)),
		)))
}

func outstandingStatus() *entsql.Predicate {
	return entsql.In("status", string(ObligationPending), string(ObligationOverdue))
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func (s *SQLStore) WriteOffObligations(ctx context.Context, exp *Expense, obligationIDs []string, at time.Time) error {
	if len(obligationIDs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx dialect.Tx) error {
		if _, err := execQuery(ctx, tx, sqlite().Insert(ExpensesTable.Name).
			Columns(columnNames(ExpensesColumns)...).
			Values(exp.ID, exp.OwnerID, exp.PropertyID, exp.UnitID, exp.LeaseID,
				string(exp.Category), exp.AmountCents, exp.Description,
				exp.IncurredOn.UTC(), exp.CreatedAt.UTC())); err != nil {
			return err
		}
		n, err := execQuery(ctx, tx, sqlite().Update(ObligationsTable.Name).
			Set("status", string(ObligationCancelled)).
			Set("disposition", string(DispositionWriteOff)).
			Set("expense_id", exp.ID).
			Set("disposed_at", at.UTC()).
			Where(entsql.And(
				entsql.In("id", toAny(obligationIDs)...),
				outstandingStatus(),
			)))
		if err != nil {
			return err
		}
		if n != int64(len(obligationIDs)) {
			return fmt.Errorf("write-off matched %d of %d obligations: %w", n, len(obligationIDs), ErrConflict)
		}
		return nil
	})
}

func (s *SQLStore) ApplyDepositPayments(ctx context.Context, p DepositParams) error {
	if len(p.Applications) == 0 {
		return nil
	}
	at := p.At
	return s.withTx(ctx, func(tx dialect.Tx) error {
		for _, a := range p.Applications {
			upd := sqlite().Update(ObligationsTable.Name).
				Add("paid_amount_cents", a.AmountCents).
				Add("deposit_applied_cents", a.AmountCents)
			if a.Settles {
				upd.Set("status", string(ObligationPaid)).
					Set("payment_source", string(PaymentSourceDeposit)).
					Set("disposition", string(DispositionApplyDeposit)).
					Set("disposed_at", at.UTC())
			}
			n, err := execQuery(ctx, tx, upd.Where(entsql.And(
				entsql.EQ("id", a.ObligationID),
				outstandingStatus(),
			)))
			if err != nil {
				return err
			}
			if n != 1 {
				return fmt.Errorf("obligation %s is no longer outstanding: %w", a.ObligationID, ErrConflict)
			}
		}
		// The sum includes this transaction's updates.
		applied, err := depositApplied(ctx, tx, p.LeaseID)
		if err != nil {
			return err
		}
		if applied > p.DepositCents {
			return fmt.Errorf("lease %s: deposit applied %d exceeds deposit %d: %w",
				p.LeaseID, applied, p.DepositCents, ErrConflict)
		}
		return nil
	})
}

func (s *SQLStore) FlagCollections(ctx context.Context, obligationIDs []string, at time.Time) (int64, error) {
	if len(obligationIDs) == 0 {
		return 0, nil
	}
	return execQuery(ctx, s.drv, sqlite().Update(ObligationsTable.Name).
		Set("disposition", string(DispositionCollections)).
		Set("disposed_at", at.UTC()).
		Where(entsql.And(
			entsql.In("id", toAny(obligationIDs)...),
			outstandingStatus(),
		)))
}

func (s *SQLStore) InsertHistory(ctx context.Context, h *TenantHistory) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(TenantHistoriesTable.Name).
		Columns(columnNames(TenantHistoriesColumns)...).
		Values(h.ID, h.LeaseID, h.TenantID, h.OwnerID, h.PropertyID, h.UnitID,
			h.FirstName, h.LastName, h.Email, h.Phone, h.LeaseStartDate.UTC(),
			h.LeaseEndDate.UTC(), h.RentAmountCents, string(h.DepartureType),
			h.DepartureDate.UTC(), h.DepositAmountCents, h.DepositRefundedCents,
			h.DepositDeductedCents, h.WasEvicted, h.CreatedAt.UTC()))
	return err
}

func (s *SQLStore) InsertChecklist(ctx context.Context, c *TurnoverChecklist) error {
	_, err := execQuery(ctx, s.drv, sqlite().Insert(TurnoverChecklistsTable.Name).
		Columns(columnNames(TurnoverChecklistsColumns)...).
		Values(c.ID, c.LeaseID, c.UnitID, c.PropertyID, c.OwnerID,
			c.DepositProcessed, c.KeysCollected, c.UnitInspected,
			c.CleaningCompleted, c.RepairsCompleted, c.CreatedAt.UTC()))
	return err
}

func (s *SQLStore) MarkUnitAvailable(ctx context.Context, unitID string, from time.Time) error {
	n, err := execQuery(ctx, s.drv, sqlite().Update(UnitsTable.Name).
		Set("available", true).
		Set("available_from", from.UTC()).
		Where(entsql.EQ("id", unitID)))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}
	return nil
}
