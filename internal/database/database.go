// Package database opens the SQLite database and migrates every table the
// service owns.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/offboarding"
)

// Open connects to the SQLite database at dsn.
func Open(ctx context.Context, dsn string) (*entsql.Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys explicitly; DSNs without the pragma would skip them.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return entsql.OpenDB(dialect.SQLite, db), nil
}

// Tables lists every table, parents before children.
func Tables() []*schema.Table {
	tables := make([]*schema.Table, 0, len(offboarding.Tables)+len(activity.Tables))
	tables = append(tables, offboarding.Tables...)
	return append(tables, activity.Tables...)
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("running schema migration: %w", err)
	}
	return nil
}
