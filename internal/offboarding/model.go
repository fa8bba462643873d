package offboarding

import (
	"time"
)

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseStatusDraft                LeaseStatus = "draft"
	LeaseStatusActive               LeaseStatus = "active"
	LeaseStatusMonthToMonthHoldover LeaseStatus = "month_to_month_holdover"
	LeaseStatusEviction             LeaseStatus = "eviction"
	LeaseStatusExpired              LeaseStatus = "expired"
	LeaseStatusTerminated           LeaseStatus = "terminated"
)

// ValidLeaseTransitions lists, per lease status, the statuses it may move to.
// Only the transitions relevant to offboarding are listed.
var ValidLeaseTransitions = map[string][]string{
	string(LeaseStatusDraft):                {string(LeaseStatusActive)},
	string(LeaseStatusActive):               {string(LeaseStatusMonthToMonthHoldover), string(LeaseStatusEviction), string(LeaseStatusExpired), string(LeaseStatusTerminated)},
	string(LeaseStatusMonthToMonthHoldover): {string(LeaseStatusEviction), string(LeaseStatusTerminated)},
	string(LeaseStatusEviction):             {string(LeaseStatusTerminated)},
	string(LeaseStatusExpired):              {string(LeaseStatusTerminated)},
	string(LeaseStatusTerminated):           {},
}

// DepartureType records why a tenant left. It doubles as the lease's
// termination reason.
type DepartureType string

const (
	DepartureVoluntary   DepartureType = "voluntary"
	DepartureEviction    DepartureType = "eviction"
	DepartureNonRenewal  DepartureType = "non_renewal"
	DepartureMutual      DepartureType = "mutual"
	DepartureAbandonment DepartureType = "abandonment"
)

// DepartureTypes lists every valid departure type.
var DepartureTypes = []DepartureType{
	DepartureVoluntary, DepartureEviction, DepartureNonRenewal, DepartureMutual, DepartureAbandonment,
}

// Valid reports whether t is a known departure type.
func (t DepartureType) Valid() bool {
	for _, v := range DepartureTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ObligationStatus is the state of a scheduled financial obligation.
type ObligationStatus string

const (
	ObligationScheduled ObligationStatus = "scheduled"
	ObligationPending   ObligationStatus = "pending"
	ObligationOverdue   ObligationStatus = "overdue"
	ObligationPaid      ObligationStatus = "paid"
	ObligationCancelled ObligationStatus = "cancelled"
)

// Outstanding reports whether money is currently owed on an obligation in s.
func (s ObligationStatus) Outstanding() bool {
	return s == ObligationPending || s == ObligationOverdue
}

// PaymentSource records where the money settling an obligation came from.
type PaymentSource string

const (
	PaymentSourceCash    PaymentSource = "cash"
	PaymentSourceDeposit PaymentSource = "deposit"
)

// Disposition is the strategy chosen for an outstanding balance.
type Disposition string

const (
	DispositionWriteOff     Disposition = "write_off"
	DispositionApplyDeposit Disposition = "apply_deposit"
	DispositionCollections  Disposition = "collections"
)

// Valid reports whether d is a known disposition.
func (d Disposition) Valid() bool {
	switch d {
	case DispositionWriteOff, DispositionApplyDeposit, DispositionCollections:
		return true
	}
	return false
}

// ExpenseCategory classifies a ledger expense.
type ExpenseCategory string

const ExpenseBadDebt ExpenseCategory = "bad_debt"

// Property is a rental property. OwnerID is the landlord or billing account.
type Property struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	OwnerID *string `json:"owner_id,omitempty"`
}

// Unit is a rentable unit within a property.
type Unit struct {
	ID            string     `json:"id"`
	PropertyID    string     `json:"property_id"`
	UnitNumber    string     `json:"unit_number"`
	Available     bool       `json:"available"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
}

// Tenant is the person holding a lease.
type Tenant struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Lease is a tenancy agreement. Leases are never hard-deleted.
type Lease struct {
	ID                   string         `json:"id"`
	TenantID             string         `json:"tenant_id"`
	UnitID               string         `json:"unit_id"`
	StartDate            time.Time      `json:"start_date"`
	EndDate              *time.Time     `json:"end_date,omitempty"`
	RentAmountCents      int64          `json:"rent_amount_cents"`
	SecurityDepositCents int64          `json:"security_deposit_cents"`
	Currency             string         `json:"currency"`
	Status               LeaseStatus    `json:"status"`
	TerminationReason    *DepartureType `json:"termination_reason,omitempty"`
	TerminatedAt         *time.Time     `json:"terminated_at,omitempty"`
	EvictionNoticeID     *string        `json:"eviction_notice_id,omitempty"`
	UpdatedBy            string         `json:"updated_by,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Obligation is a scheduled or outstanding charge on a lease.
type Obligation struct {
	ID              string `json:"id"`
	LeaseID         string `json:"lease_id"`
	Description     string `json:"description"`
	AmountCents     int64  `json:"amount_cents"`
	PaidAmountCents int64  `json:"paid_amount_cents"`
	// DepositAppliedCents is the part of PaidAmountCents funded by the
	// security deposit.
	DepositAppliedCents int64            `json:"deposit_applied_cents"`
	DueDate             time.Time        `json:"due_date"`
	Status              ObligationStatus `json:"status"`
	PaymentSource       *PaymentSource   `json:"payment_source,omitempty"`
	Disposition         *Disposition     `json:"disposition,omitempty"`
	ExpenseID           *string          `json:"expense_id,omitempty"`
	DisposedAt          *time.Time       `json:"disposed_at,omitempty"`
}

// OutstandingCents is the part of the obligation not yet paid.
func (o Obligation) OutstandingCents() int64 {
	return o.AmountCents - o.PaidAmountCents
}

// TenantDeparture is the append-only record of why and when a tenant left.
type TenantDeparture struct {
	ID               string        `json:"id"`
	LeaseID          string        `json:"lease_id"`
	TenantID         string        `json:"tenant_id"`
	UnitID           string        `json:"unit_id"`
	OwnerID          string        `json:"owner_id"`
	DepartureType    DepartureType `json:"departure_type"`
	DepartureDate    time.Time     `json:"departure_date"`
	Notes            string        `json:"notes,omitempty"`
	EvictionNoticeID *string       `json:"eviction_notice_id,omitempty"`
	RecordedBy       string        `json:"recorded_by"`
	CreatedAt        time.Time     `json:"created_at"`
}

// TenantHistory is a write-once snapshot of a tenancy taken at departure.
type TenantHistory struct {
	ID                   string        `json:"id"`
	LeaseID              string        `json:"lease_id"`
	TenantID             string        `json:"tenant_id"`
	OwnerID              string        `json:"owner_id"`
	PropertyID           string        `json:"property_id"`
	UnitID               string        `json:"unit_id"`
	FirstName            string        `json:"first_name"`
	LastName             string        `json:"last_name"`
	Email                string        `json:"email"`
	Phone                string        `json:"phone,omitempty"`
	LeaseStartDate       time.Time     `json:"lease_start_date"`
	LeaseEndDate         time.Time     `json:"lease_end_date"`
	RentAmountCents      int64         `json:"rent_amount_cents"`
	DepartureType        DepartureType `json:"departure_type"`
	DepartureDate        time.Time     `json:"departure_date"`
	DepositAmountCents   int64         `json:"deposit_amount_cents"`
	DepositRefundedCents int64         `json:"deposit_refunded_cents"`
	DepositDeductedCents int64         `json:"deposit_deducted_cents"`
	WasEvicted           bool          `json:"was_evicted"`
	CreatedAt            time.Time     `json:"created_at"`
}

// TurnoverChecklist tracks preparing a vacated unit for the next tenant.
type TurnoverChecklist struct {
	ID                string    `json:"id"`
	LeaseID           string    `json:"lease_id"`
	UnitID            string    `json:"unit_id"`
	PropertyID        string    `json:"property_id"`
	OwnerID           string    `json:"owner_id"`
	DepositProcessed  bool      `json:"deposit_processed"`
	KeysCollected     bool      `json:"keys_collected"`
	UnitInspected     bool      `json:"unit_inspected"`
	CleaningCompleted bool      `json:"cleaning_completed"`
	RepairsCompleted  bool      `json:"repairs_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

// Expense is a generic ledger entry.
type Expense struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	PropertyID  string          `json:"property_id"`
	UnitID      string          `json:"unit_id"`
	LeaseID     string          `json:"lease_id"`
	Category    ExpenseCategory `json:"category"`
	AmountCents int64           `json:"amount_cents"`
	Description string          `json:"description"`
	IncurredOn  time.Time       `json:"incurred_on"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LeaseContext is a lease loaded together with its tenant, unit, property,
// and currently outstanding obligations.
type LeaseContext struct {
	Lease       Lease        `json:"lease"`
	Tenant      Tenant       `json:"tenant"`
	Unit        Unit         `json:"unit"`
	Property    Property     `json:"property"`
	Outstanding []Obligation `json:"outstanding"`
}

// OwnerID returns the property's billing owner, if one is set.
func (c *LeaseContext) OwnerID() (string, bool) {
	if c.Property.OwnerID == nil || *c.Property.OwnerID == "" {
		return "", false
	}
	return *c.Property.OwnerID, true
}

// DepositSummary is the financial outcome of the security deposit.
type DepositSummary struct {
	RefundedCents int64 `json:"refunded_cents"`
	DeductedCents int64 `json:"deducted_cents"`
}

// sameDay reports whether a and b fall on the same UTC calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
