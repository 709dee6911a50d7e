package catalog

import "context"

// Provider answers which tables exist and which rows they hold.
// Implementations return a non-nil empty slice for unknown table names.
type Provider interface {
	ListTables(ctx context.Context) ([]TableDescriptor, error)
	GetRows(ctx context.Context, table string) ([]Row, error)
}

// ListTables returns every table descriptor in catalog order.
func ListTables() []TableDescriptor {
	return cloneTables(tables)
}

// GetRows returns the rows of the table with exactly the given name, or an
// empty slice when no such table exists.
func GetRows(table string) []Row {
	src, ok := rows[table]
	if !ok {
		return []Row{}
	}

	return cloneRows(src)
}

// Snapshot returns copies of the full catalog and row store.
func Snapshot() ([]TableDescriptor, map[string][]Row) {
	out := make(map[string][]Row, len(rows))
	for name, rs := range rows {
		out[name] = cloneRows(rs)
	}

	return cloneTables(tables), out
}

// Static serves the built-in constants. It never blocks and never fails.
type Static struct{}

// NewStatic returns the built-in provider
func NewStatic() *Static {
	return &Static{}
}

func (*Static) ListTables(_ context.Context) ([]TableDescriptor, error) {
	return ListTables(), nil
}

func (*Static) GetRows(_ context.Context, table string) ([]Row, error) {
	return GetRows(table), nil
}

var _ Provider = (*Static)(nil)
