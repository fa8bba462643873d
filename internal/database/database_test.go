package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/offboarding/internal/offboarding"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	drv, err := Open(ctx, "file:"+uuid.NewString()+"?mode=memory")
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })

	require.NoError(t, Migrate(ctx, drv))
	// Migrating twice is a no-op.
	require.NoError(t, Migrate(ctx, drv))

	store := offboarding.NewSQLStore(drv)
	err = store.CreateUnit(ctx, &offboarding.Unit{ID: uuid.NewString(), PropertyID: "missing", UnitNumber: "1"})
	assert.ErrorIs(t, err, offboarding.ErrNotFound, "foreign keys must be enforced")
}

func TestTablesOrder(t *testing.T) {
	seen := map[string]bool{}
	for _, tbl := range Tables() {
		for _, fk := range tbl.ForeignKeys {
			assert.True(t, seen[fk.RefTable.Name], "%s references %s before it is created", tbl.Name, fk.RefTable.Name)
		}
		seen[tbl.Name] = true
	}
}
