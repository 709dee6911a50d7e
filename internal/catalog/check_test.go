package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBuiltInData(t *testing.T) {
	tables, rows := Snapshot()
	assert.Empty(t, Check(tables, rows))
}

func TestCheckReportsViolations(t *testing.T) {
	tables := []TableDescriptor{
		{
			Name: "events",
			Columns: []ColumnDescriptor{
				{Name: "id", DataType: TypeNumber},
				{Name: "title", DataType: TypeString},
				{Name: "at", DataType: TypeDate},
				{Name: "done", DataType: TypeBoolean},
				{Name: "kind", DataType: TypeEnum},
			},
		},
	}

	rows := map[string][]Row{
		"events": {
			{"id": 1.5, "title": "ok", "at": time.Now(), "done": true, "kind": "a"},
			{"id": "1", "title": 7, "at": "yesterday", "done": "no", "kind": 3, "extra": 1},
			{"id": 2, "at": "2023-01-01T10:00:00Z"},
		},
	}

	got := Check(tables, rows)
	require.Len(t, got, 6)

	byColumn := map[string]Violation{}
	for _, v := range got {
		assert.Equal(t, "events", v.Table)
		assert.Equal(t, 1, v.Row)
		byColumn[v.Column] = v
	}

	assert.Equal(t, "undeclared column", byColumn["extra"].Reason)
	assert.Contains(t, byColumn["id"].Reason, "expected number")
	assert.Contains(t, byColumn["at"].Reason, "ISO-8601")
	assert.Equal(t, `events[1].done: expected boolean, got string`, byColumn["done"].String())
}

func TestCheckIgnoresRowsOfUndeclaredTables(t *testing.T) {
	got := Check(nil, map[string][]Row{"ghost": {{"a": 1}}})
	assert.Empty(t, got)
}
