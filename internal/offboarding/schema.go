package offboarding

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PropertiesColumns holds the columns for the "properties" table.
	PropertiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString, Nullable: true},
	}
	// PropertiesTable holds the schema information for the "properties" table.
	PropertiesTable = &schema.Table{
		Name:       "properties",
		Columns:    PropertiesColumns,
		PrimaryKey: []*schema.Column{PropertiesColumns[0]},
	}
	// UnitsColumns holds the columns for the "units" table.
	UnitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "property_id", Type: field.TypeString},
		{Name: "unit_number", Type: field.TypeString},
		{Name: "available", Type: field.TypeBool, Default: false},
		{Name: "available_from", Type: field.TypeTime, Nullable: true},
	}
	// UnitsTable holds the schema information for the "units" table.
	UnitsTable = &schema.Table{
		Name:       "units",
		Columns:    UnitsColumns,
		PrimaryKey: []*schema.Column{UnitsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "units_properties_units",
				Columns:    []*schema.Column{UnitsColumns[1]},
				RefColumns: []*schema.Column{PropertiesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// TenantsColumns holds the columns for the "tenants" table.
	TenantsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "first_name", Type: field.TypeString},
		{Name: "last_name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Default: ""},
	}
	// TenantsTable holds the schema information for the "tenants" table.
	TenantsTable = &schema.Table{
		Name:       "tenants",
		Columns:    TenantsColumns,
		PrimaryKey: []*schema.Column{TenantsColumns[0]},
	}
	// LeasesColumns holds the columns for the "leases" table.
	LeasesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "tenant_id", Type: field.TypeString},
		{Name: "unit_id", Type: field.TypeString},
		{Name: "start_date", Type: field.TypeTime},
		{Name: "end_date", Type: field.TypeTime, Nullable: true},
		{Name: "rent_amount_cents", Type: field.TypeInt64},
		{Name: "security_deposit_cents", Type: field.TypeInt64, Default: 0},
		{Name: "currency", Type: field.TypeString, Default: "USD"},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"draft", "active", "month_to_month_holdover", "eviction", "expired", "terminated"}},
		{Name: "termination_reason", Type: field.TypeEnum, Nullable: true, Enums: []string{"voluntary", "eviction", "non_renewal", "mutual", "abandonment"}},
		{Name: "terminated_at", Type: field.TypeTime, Nullable: true},
		{Name: "eviction_notice_id", Type: field.TypeString, Nullable: true},
		{Name: "updated_by", Type: field.TypeString, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LeasesTable holds the schema information for the "leases" table.
	LeasesTable = &schema.Table{
		Name:       "leases",
		Columns:    LeasesColumns,
		PrimaryKey: []*schema.Column{LeasesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "leases_tenants_leases",
				Columns:    []*schema.Column{LeasesColumns[1]},
				RefColumns: []*schema.Column{TenantsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "leases_units_leases",
				Columns:    []*schema.Column{LeasesColumns[2]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "lease_status",
				Unique:  false,
				Columns: []*schema.Column{LeasesColumns[8]},
			},
		},
	}
	// ObligationsColumns holds the columns for the "obligations" table.
	ObligationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "lease_id", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "amount_cents", Type: field.TypeInt64},
		{Name: "paid_amount_cents", Type: field.TypeInt64, Default: 0},
		{Name: "deposit_applied_cents", Type: field.TypeInt64, Default: 0},
		{Name: "due_date", Type: field.TypeTime},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"scheduled", "pending", "overdue", "paid", "cancelled"}},
		{Name: "payment_source", Type: field.TypeEnum, Nullable: true, Enums: []string{"cash", "deposit"}},
		{Name: "disposition", Type: field.TypeEnum, Nullable: true, Enums: []string{"write_off", "apply_deposit", "collections"}},
		{Name: "expense_id", Type: field.TypeString, Nullable: true},
		{Name: "disposed_at", Type: field.TypeTime, Nullable: true},
	}
	// ObligationsTable holds the schema information for the "obligations" table.
	ObligationsTable = &schema.Table{
		Name:       "obligations",
		Columns:    ObligationsColumns,
		PrimaryKey: []*schema.Column{ObligationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "obligations_leases_obligations",
				Columns:    []*schema.Column{ObligationsColumns[1]},
				RefColumns: []*schema.Column{LeasesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "obligation_lease_id_status",
				Unique:  false,
				Columns: []*schema.Column{ObligationsColumns[1], ObligationsColumns[7]},
			},
		},
	}
	// TenantDeparturesColumns holds the columns for the "tenant_departures" table.
	TenantDeparturesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "lease_id", Type: field.TypeString},
		{Name: "tenant_id", Type: field.TypeString},
		{Name: "unit_id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "departure_type", Type: field.TypeEnum, Enums: []string{"voluntary", "eviction", "non_renewal", "mutual", "abandonment"}},
		{Name: "departure_date", Type: field.TypeTime},
		{Name: "notes", Type: field.TypeString, Default: ""},
		{Name: "eviction_notice_id", Type: field.TypeString, Nullable: true},
		{Name: "recorded_by", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// TenantDeparturesTable holds the schema information for the "tenant_departures" table.
	TenantDeparturesTable = &schema.Table{
		Name:       "tenant_departures",
		Columns:    TenantDeparturesColumns,
		PrimaryKey: []*schema.Column{TenantDeparturesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tenant_departures_leases_departures",
				Columns:    []*schema.Column{TenantDeparturesColumns[1]},
				RefColumns: []*schema.Column{LeasesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "tenantdeparture_lease_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{TenantDeparturesColumns[1], TenantDeparturesColumns[10]},
			},
		},
	}
	// TenantHistoriesColumns holds the columns for the "tenant_histories" table.
	TenantHistoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "lease_id", Type: field.TypeString},
		{Name: "tenant_id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "property_id", Type: field.TypeString},
		{Name: "unit_id", Type: field.TypeString},
		{Name: "first_name", Type: field.TypeString},
		{Name: "last_name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "lease_start_date", Type: field.TypeTime},
		{Name: "lease_end_date", Type: field.TypeTime},
		{Name: "rent_amount_cents", Type: field.TypeInt64},
		{Name: "departure_type", Type: field.TypeEnum, Enums: []string{"voluntary", "eviction", "non_renewal", "mutual", "abandonment"}},
		{Name: "departure_date", Type: field.TypeTime},
		{Name: "deposit_amount_cents", Type: field.TypeInt64},
		{Name: "deposit_refunded_cents", Type: field.TypeInt64},
		{Name: "deposit_deducted_cents", Type: field.TypeInt64},
		{Name: "was_evicted", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeTime},
	}
	// TenantHistoriesTable holds the schema information for the "tenant_histories" table.
	// It carries no foreign key to leases so the snapshot outlives the lease row.
	TenantHistoriesTable = &schema.Table{
		Name:       "tenant_histories",
		Columns:    TenantHistoriesColumns,
		PrimaryKey: []*schema.Column{TenantHistoriesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "tenanthistory_lease_id",
				Unique:  true,
				Columns: []*schema.Column{TenantHistoriesColumns[1]},
			},
		},
	}
	// TurnoverChecklistsColumns holds the columns for the "turnover_checklists" table.
	TurnoverChecklistsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "lease_id", Type: field.TypeString},
		{Name: "unit_id", Type: field.TypeString},
		{Name: "property_id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "deposit_processed", Type: field.TypeBool, Default: false},
		{Name: "keys_collected", Type: field.TypeBool, Default: false},
		{Name: "unit_inspected", Type: field.TypeBool, Default: false},
		{Name: "cleaning_completed", Type: field.TypeBool, Default: false},
		{Name: "repairs_completed", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	// TurnoverChecklistsTable holds the schema information for the "turnover_checklists" table.
	TurnoverChecklistsTable = &schema.Table{
		Name:       "turnover_checklists",
		Columns:    TurnoverChecklistsColumns,
		PrimaryKey: []*schema.Column{TurnoverChecklistsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "turnover_checklists_units_checklists",
				Columns:    []*schema.Column{TurnoverChecklistsColumns[2]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "turnoverchecklist_lease_id",
				Unique:  true,
				Columns: []*schema.Column{TurnoverChecklistsColumns[1]},
			},
		},
	}
	// ExpensesColumns holds the columns for the "expenses" table.
	ExpensesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "property_id", Type: field.TypeString},
		{Name: "unit_id", Type: field.TypeString},
		{Name: "lease_id", Type: field.TypeString},
		{Name: "category", Type: field.TypeEnum, Enums: []string{string(ExpenseBadDebt)}},
		{Name: "amount_cents", Type: field.TypeInt64},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "incurred_on", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ExpensesTable holds the schema information for the "expenses" table.
	ExpensesTable = &schema.Table{
		Name:       "expenses",
		Columns:    ExpensesColumns,
		PrimaryKey: []*schema.Column{ExpensesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "expense_lease_id",
				Unique:  false,
				Columns: []*schema.Column{ExpensesColumns[4]},
			},
		},
	}
	// Tables holds all the tables in the offboarding schema, parents first.
	Tables = []*schema.Table{
		PropertiesTable,
		UnitsTable,
		TenantsTable,
		LeasesTable,
		ObligationsTable,
		TenantDeparturesTable,
		TenantHistoriesTable,
		TurnoverChecklistsTable,
		ExpensesTable,
	}
)

func init() {
	UnitsTable.ForeignKeys[0].RefTable = PropertiesTable
	LeasesTable.ForeignKeys[0].RefTable = TenantsTable
	LeasesTable.ForeignKeys[1].RefTable = UnitsTable
	ObligationsTable.ForeignKeys[0].RefTable = LeasesTable
	TenantDeparturesTable.ForeignKeys[0].RefTable = LeasesTable
	TurnoverChecklistsTable.ForeignKeys[0].RefTable = UnitsTable
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
