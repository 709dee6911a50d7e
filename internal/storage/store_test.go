package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/testutil"
)

var drivers = []string{DriverDuckDB, DriverSQLite}

// newLoadedStore opens a store for driver and loads the built-in catalog
func newLoadedStore(t *testing.T, driver string) *SQLStore {
	t.Helper()

	ctx := context.Background()

	store, err := Open(ctx, driver)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tables, rows := catalog.Snapshot()
	require.NoError(t, store.Load(ctx, tables, rows))

	return store
}

func TestStoreMatchesBuiltInCatalog(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := newLoadedStore(t, driver)
			ctx := context.Background()

			tables, err := store.ListTables(ctx)
			require.NoError(t, err)
			assert.Equal(t, catalog.ListTables(), tables)

			for _, table := range tables {
				got, err := store.GetRows(ctx, table.Name)
				require.NoError(t, err)
				assert.Equal(t, catalog.GetRows(table.Name), got, "table %s", table.Name)
			}
		})
	}
}

func TestStoreUnknownTable(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := newLoadedStore(t, driver)

			for _, name := range []string{testutil.MissingTable, ""} {
				got, err := store.GetRows(context.Background(), name)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
		})
	}
}

func TestStoreScenarioValues(t *testing.T) {
	store := newLoadedStore(t, DriverSQLite)
	ctx := context.Background()

	users, err := store.GetRows(ctx, testutil.UsersTable)
	require.NoError(t, err)
	require.Len(t, users, 5)
	assert.Equal(t, 1, users[0]["ID"])
	assert.Equal(t, "2023-01-01", users[0]["註冊日期"])

	products, err := store.GetRows(ctx, testutil.ProductsTable)
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, 35000, products[0]["價格"])
	assert.Equal(t, 50, products[0]["庫存"])
}

func TestStoreLoadOnlyOnce(t *testing.T) {
	store := newLoadedStore(t, DriverSQLite)

	err := store.Load(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDatabase))
}

func TestStoreKeepsTablesWithoutColumns(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, DriverSQLite)
	require.NoError(t, err)
	defer store.Close()

	tables := []catalog.TableDescriptor{
		{Name: "empty", Columns: []catalog.ColumnDescriptor{}},
		{Name: "scores", Columns: []catalog.ColumnDescriptor{{Name: "value", DataType: catalog.TypeNumber}}},
	}
	rows := map[string][]catalog.Row{
		"scores": {{"value": 1.5, "ok": true}},
	}

	require.NoError(t, store.Load(ctx, tables, rows))

	got, err := store.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, tables, got)

	scores, err := store.GetRows(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, rows["scores"], scores)
}

func TestStoreStats(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := newLoadedStore(t, driver)

			stats, err := store.GetStats(context.Background())
			require.NoError(t, err)

			assert.Equal(t, driver, stats.Driver)
			assert.Equal(t, 2, stats.Tables)
			assert.Equal(t, 10, stats.Columns)
			assert.Equal(t, 10, stats.Rows)
		})
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "postgres")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDatabase))
}

func TestDecodeRow(t *testing.T) {
	r, err := decodeRow(`{"a": 1, "b": 2.5, "c": "x", "d": true, "e": null}`)
	require.NoError(t, err)

	assert.Equal(t, catalog.Row{"a": 1, "b": 2.5, "c": "x", "d": true, "e": nil}, r)

	_, err = decodeRow(`[1]`)
	assert.Error(t, err)
}
