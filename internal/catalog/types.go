package catalog

import (
	"fmt"
	"maps"
	"strings"
)

// DataType is the declared type of a column
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
	TypeEnum    DataType = "enum"
)

// Valid reports whether t is one of the known data types
func (t DataType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean, TypeEnum:
		return true
	default:
		return false
	}
}

// ParseDataType parses a data type name, ignoring case and surrounding space
func ParseDataType(s string) (DataType, error) {
	t := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown data type: %q", s)
	}

	return t, nil
}

// ColumnDescriptor describes a single column of a table
type ColumnDescriptor struct {
	Name     string   `json:"name"`
	DataType DataType `json:"dataType"`
}

// TableDescriptor describes the shape of a table. Column order is display order.
type TableDescriptor struct {
	Name    string             `json:"name"`
	Columns []ColumnDescriptor `json:"columns"`
}

// Clone returns a copy that shares no memory with t
func (t TableDescriptor) Clone() TableDescriptor {
	cols := make([]ColumnDescriptor, len(t.Columns))
	copy(cols, t.Columns)

	return TableDescriptor{Name: t.Name, Columns: cols}
}

// ColumnNames returns the column names in declared order
func (t TableDescriptor) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}

	return names
}

// Column returns the first column with the given name
func (t TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return ColumnDescriptor{}, false
}

// Row maps column names to values. Values are text, numbers, booleans or
// dates (time.Time or ISO-8601 text).
type Row map[string]any

// Clone returns a shallow copy of the row. Values are scalars, so the copy
// is fully independent.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}

	return maps.Clone(r)
}

func cloneTables(src []TableDescriptor) []TableDescriptor {
	out := make([]TableDescriptor, 0, len(src))
	for _, t := range src {
		out = append(out, t.Clone())
	}

	return out
}

func cloneRows(src []Row) []Row {
	out := make([]Row, 0, len(src))
	for _, r := range src {
		out = append(out, r.Clone())
	}

	return out
}
