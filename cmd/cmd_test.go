package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/testutil"
)

// mismatchedProvider serves a table whose rows break the declared types
type mismatchedProvider struct{}

func (mismatchedProvider) ListTables(context.Context) ([]catalog.TableDescriptor, error) {
	return []catalog.TableDescriptor{{
		Name: "訂單",
		Columns: []catalog.ColumnDescriptor{
			{Name: "ID", DataType: catalog.TypeNumber},
			{Name: "日期", DataType: catalog.TypeDate},
		},
	}}, nil
}

func (mismatchedProvider) GetRows(context.Context, string) ([]catalog.Row, error) {
	return []catalog.Row{
		{"ID": 1, "日期": "2024-01-01"},
		{"ID": "two", "日期": "yesterday"},
	}, nil
}

type failingProvider struct{}

func (failingProvider) ListTables(context.Context) ([]catalog.TableDescriptor, error) {
	return nil, stderrors.New("store unavailable")
}

func (failingProvider) GetRows(context.Context, string) ([]catalog.Row, error) {
	return nil, stderrors.New("store unavailable")
}

// isolateConfig points configuration at an empty directory
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("FILTER_FLOW_CONFIG", filepath.Join(t.TempDir(), "config.json"))
	t.Setenv("FILTER_FLOW_LOG_OUTPUT", "stderr")
	t.Setenv("FILTER_FLOW_STORE_BACKEND", "memory")
}

func TestRunTables(t *testing.T) {
	ctx := context.Background()

	t.Run("json lists both tables in order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runTables(ctx, &buf, catalog.NewStatic(), "json"))

		var tables []catalog.TableDescriptor
		require.NoError(t, json.Unmarshal(buf.Bytes(), &tables))
		require.Len(t, tables, 2)
		assert.Equal(t, testutil.UsersTable, tables[0].Name)
		assert.Equal(t, testutil.ProductsTable, tables[1].Name)
	})

	t.Run("table format shows column types", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runTables(ctx, &buf, catalog.NewStatic(), "table"))
		assert.Contains(t, buf.String(), "註冊日期:date")
		assert.Contains(t, buf.String(), "類別:enum")
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, runTables(ctx, &buf, catalog.NewStatic(), "yaml"))
		assert.Empty(t, buf.String())
	})

	t.Run("provider failure", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, runTables(ctx, &buf, failingProvider{}, "table"))
	})
}

func TestRunRows(t *testing.T) {
	ctx := context.Background()

	t.Run("csv follows declared column order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRows(ctx, &buf, catalog.NewStatic(), testutil.ProductsTable, "csv"))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 6)
		assert.Equal(t, "ID,名稱,價格,類別,庫存", string(lines[0]))
		assert.Equal(t, "101,筆記型電腦,35000,電子產品,50", string(lines[1]))
	})

	t.Run("json rows", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRows(ctx, &buf, catalog.NewStatic(), testutil.UsersTable, "json"))

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
		require.Len(t, rows, 5)
		assert.InDelta(t, 1, rows[0]["ID"], 0)
		assert.Equal(t, "2023-01-01", rows[0]["註冊日期"])
	})

	t.Run("unknown table prints a notice", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRows(ctx, &buf, catalog.NewStatic(), testutil.MissingTable, "table"))
		assert.Contains(t, buf.String(), "No rows found")
	})

	t.Run("empty name as json is an empty list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRows(ctx, &buf, catalog.NewStatic(), "", "json"))
		assert.JSONEq(t, "[]", buf.String())
	})
}

func TestRunCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in data conforms", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runCheck(ctx, &buf, catalog.NewStatic()))
		assert.Contains(t, buf.String(), "All 10 rows in 2 tables conform")
	})

	t.Run("mismatches are listed", func(t *testing.T) {
		var buf bytes.Buffer
		err := runCheck(ctx, &buf, mismatchedProvider{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		assert.Contains(t, buf.String(), "訂單[1].ID")
		assert.Contains(t, buf.String(), "訂單[1].日期")
		assert.NotContains(t, buf.String(), "訂單[0]")
	})
}

func TestRunStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runStats(context.Background(), &buf, catalog.NewStatic()))

	out := buf.String()
	assert.Contains(t, out, "Backend: memory")
	assert.Contains(t, out, "Tables: 2")
	assert.Contains(t, out, "Columns: 10")
	assert.Contains(t, out, "Rows: 10")
}

func TestRunView(t *testing.T) {
	ctx := context.Background()

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runView(ctx, &buf, catalog.NewStatic(), "/app", false))

		out := buf.String()
		assert.Contains(t, out, "# Filter Flow")
		assert.Contains(t, out, testutil.ProductsTable)
		assert.NotContains(t, out, "<h1>")
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runView(ctx, &buf, catalog.NewStatic(), "/app", true))
		assert.Contains(t, buf.String(), `<base href="/app/">`)
	})

	t.Run("provider failure", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, runView(ctx, &buf, failingProvider{}, "/", false))
	})
}

func TestApp(t *testing.T) {
	isolateConfig(t)

	t.Run("tables through the command tree", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewApp(&buf).Run(context.Background(), []string{"filter-flow", "tables", "--format", "json"})
		require.NoError(t, err)

		var tables []catalog.TableDescriptor
		require.NoError(t, json.Unmarshal(buf.Bytes(), &tables))
		assert.Len(t, tables, 2)
	})

	t.Run("rows on the sqlite backend", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewApp(&buf).Run(context.Background(),
			[]string{"filter-flow", "--backend", "sqlite", "rows", "--format", "csv", testutil.UsersTable})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "1,愛麗絲,alice@example.com,30,2023-01-01")
	})

	t.Run("rows requires a table name", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewApp(&buf).Run(context.Background(), []string{"filter-flow", "rows"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("unknown backend", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewApp(&buf).Run(context.Background(), []string{"filter-flow", "--backend", "oracle", "tables"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	})

	t.Run("registered commands", func(t *testing.T) {
		app := NewApp(&bytes.Buffer{})

		var names []string
		for _, c := range app.Commands {
			names = append(names, c.Name)
		}

		assert.ElementsMatch(t,
			[]string{"tables", "rows", "check", "stats", "serve", "mcp", "view", "config"}, names)
	})
}
