// Package seed provides demo data seeding for the offboarding database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/offboarding"
)

// Fixed IDs so the demo leases can be addressed from the CLI and docs.
const (
	PropertyMapleCourt = "6f1d2c10-3b7a-4e55-9a61-0c8e2f1b7a01"
	PropertyOrphaned   = "6f1d2c10-3b7a-4e55-9a61-0c8e2f1b7a02"

	// LeaseStandard has overdue, pending and scheduled rent.
	LeaseStandard = "b7e4a9d2-51c3-4f08-8d2e-6a9f0c3e1d01"
	// LeaseDepositCovers owes less than its security deposit.
	LeaseDepositCovers = "b7e4a9d2-51c3-4f08-8d2e-6a9f0c3e1d02"
	// LeaseEviction is already in eviction.
	LeaseEviction = "b7e4a9d2-51c3-4f08-8d2e-6a9f0c3e1d03"
	// LeaseNoOwner sits on a property without a billing owner.
	LeaseNoOwner = "b7e4a9d2-51c3-4f08-8d2e-6a9f0c3e1d04"
)

type demoLease struct {
	id, tenantID, unitID, propertyID, unitNumber string
	first, last, email                           string
	deposit                                      int64
	status                                       offboarding.LeaseStatus
	noticeID                                     *string
	rent                                         []rentLine
}

// rentLine is one rent charge due months from the current month.
type rentLine struct {
	months int
	status offboarding.ObligationStatus
}

// Demo loads a small portfolio exercising every offboarding path, with
// leases billed in currency. Records that already exist are left alone, so
// seeding again completes a partly seeded store and is otherwise a no-op.
func Demo(ctx context.Context, l offboarding.Loader, currency string, logger hclog.Logger) error {
	s := &seeder{l: l, currency: currency}
	owner := "owner-maple-holdings"
	props := []offboarding.Property{
		{ID: PropertyMapleCourt, Name: "Maple Court", OwnerID: &owner},
		{ID: PropertyOrphaned, Name: "Harbor View (pending transfer)"},
	}
	for i := range props {
		if err := s.create("property "+props[i].Name, l.CreateProperty(ctx, &props[i])); err != nil {
			return err
		}
	}

	notice := "eviction-notice-2026-014"
	now := time.Now().UTC()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	leases := []demoLease{
		{
			id: LeaseStandard, tenantID: "c3a8f5e1-7d2b-4c96-b0e4-1f5a8d2c9e01", unitID: "d9b2e6f4-0a8c-4b1d-9e73-5c2a7f4e8b01",
			propertyID: PropertyMapleCourt, unitNumber: "1A",
			first: "Dana", last: "Reyes", email: "dana.reyes@example.com",
			deposit: 150000, status: offboarding.LeaseStatusActive,
			rent: []rentLine{{-1, offboarding.ObligationOverdue}, {0, offboarding.ObligationPending}, {1, offboarding.ObligationScheduled}},
		},
		{
			id: LeaseDepositCovers, tenantID: "c3a8f5e1-7d2b-4c96-b0e4-1f5a8d2c9e02", unitID: "d9b2e6f4-0a8c-4b1d-9e73-5c2a7f4e8b02",
			propertyID: PropertyMapleCourt, unitNumber: "2B",
			first: "Sam", last: "Okafor", email: "sam.okafor@example.com",
			deposit: 300000, status: offboarding.LeaseStatusMonthToMonthHoldover,
			rent: []rentLine{{-2, offboarding.ObligationPaid}, {-1, offboarding.ObligationOverdue}, {1, offboarding.ObligationScheduled}},
		},
		{
			id: LeaseEviction, tenantID: "c3a8f5e1-7d2b-4c96-b0e4-1f5a8d2c9e03", unitID: "d9b2e6f4-0a8c-4b1d-9e73-5c2a7f4e8b03",
			propertyID: PropertyMapleCourt, unitNumber: "3C",
			first: "Lee", last: "Marsh", email: "lee.marsh@example.com",
			deposit: 100000, status: offboarding.LeaseStatusEviction, noticeID: &notice,
			rent: []rentLine{{-3, offboarding.ObligationOverdue}, {-2, offboarding.ObligationOverdue}, {-1, offboarding.ObligationOverdue}},
		},
		{
			id: LeaseNoOwner, tenantID: "c3a8f5e1-7d2b-4c96-b0e4-1f5a8d2c9e04", unitID: "d9b2e6f4-0a8c-4b1d-9e73-5c2a7f4e8b04",
			propertyID: PropertyOrphaned, unitNumber: "101",
			first: "Ari", last: "Blum", email: "ari.blum@example.com",
			deposit: 120000, status: offboarding.LeaseStatusActive,
			rent: []rentLine{{0, offboarding.ObligationPending}},
		},
	}

	for _, d := range leases {
		if err := s.lease(ctx, d, month); err != nil {
			return err
		}
	}
	if s.created == 0 {
		logger.Info("demo data already seeded")
		return nil
	}
	logger.Info("seeded demo data", "properties", len(props), "leases", len(leases), "records", s.created)
	return nil
}

type seeder struct {
	l        offboarding.Loader
	currency string
	created  int
}

// create counts a successful write. A conflict means an earlier run wrote
// the record.
func (s *seeder) create(what string, err error) error {
	switch {
	case err == nil:
		s.created++
		return nil
	case errors.Is(err, offboarding.ErrConflict):
		return nil
	default:
		return fmt.Errorf("creating %s: %w", what, err)
	}
}

func (s *seeder) lease(ctx context.Context, d demoLease, month time.Time) error {
	const rent = 150000
	unit := &offboarding.Unit{ID: d.unitID, PropertyID: d.propertyID, UnitNumber: d.unitNumber}
	if err := s.create("unit "+d.unitNumber, s.l.CreateUnit(ctx, unit)); err != nil {
		return err
	}
	tenant := &offboarding.Tenant{ID: d.tenantID, FirstName: d.first, LastName: d.last, Email: d.email}
	if err := s.create("tenant "+d.first+" "+d.last, s.l.CreateTenant(ctx, tenant)); err != nil {
		return err
	}
	lease := &offboarding.Lease{
		ID:                   d.id,
		TenantID:             d.tenantID,
		UnitID:               d.unitID,
		StartDate:            month.AddDate(-1, 0, 0),
		RentAmountCents:      rent,
		SecurityDepositCents: d.deposit,
		Currency:             s.currency,
		Status:               d.status,
		EvictionNoticeID:     d.noticeID,
		UpdatedBy:            "seed",
	}
	if err := s.create("lease for unit "+d.unitNumber, s.l.CreateLease(ctx, lease)); err != nil {
		return err
	}
	for i, r := range d.rent {
		due := month.AddDate(0, r.months, 0)
		o := &offboarding.Obligation{
			ID:          fmt.Sprintf("%s-rent-%d", d.id, i+1),
			LeaseID:     d.id,
			Description: "Rent " + due.Format("January 2006"),
			AmountCents: rent,
			DueDate:     due,
			Status:      r.status,
		}
		if r.status == offboarding.ObligationPaid {
			o.PaidAmountCents = rent
			src := offboarding.PaymentSourceCash
			o.PaymentSource = &src
		}
		if err := s.create("obligation "+o.ID, s.l.CreateObligation(ctx, o)); err != nil {
			return err
		}
	}
	return nil
}
