// Package storage mirrors the built-in catalog into an in-memory SQL
// database and answers lookups from it. The mirror lives for the lifetime
// of the process and is never written after Load.
package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/errors"
)

const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// in-memory DSNs; a single connection keeps the database alive and shared
var dsns = map[string]string{
	DriverDuckDB: "",
	DriverSQLite: "file::memory:",
}

// Stats summarizes what the store holds
type Stats struct {
	Driver  string `json:"driver"`
	Tables  int    `json:"tables"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
}

// SQLStore implements catalog.Provider on top of database/sql
type SQLStore struct {
	db     *sql.DB
	driver string

	mu     sync.Mutex
	loaded bool
}

var _ catalog.Provider = (*SQLStore)(nil)

// Open creates an in-memory store for driver and applies migrations
func Open(ctx context.Context, driver string) (*SQLStore, error) {
	dsn, ok := dsns[driver]
	if !ok {
		return nil, errors.Newf(errors.ErrTypeDatabase, "unsupported driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to open database")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to ping database")
	}

	if err := NewMigrationManager(db).MigrateUp(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to migrate database")
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Driver returns the database/sql driver name
func (s *SQLStore) Driver() string {
	return s.driver
}

// Load writes tables and rows in one transaction. It may run only once.
func (s *SQLStore) Load(ctx context.Context, tables []catalog.TableDescriptor, rows map[string][]catalog.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return errors.New(errors.ErrTypeDatabase, "store already loaded")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to begin transaction")
	}

	defer func() { _ = tx.Rollback() }()

	for i, t := range tables {
		tableID := uuid.New().String()

		_, err := tx.ExecContext(ctx,
			"INSERT INTO catalog_tables (id, name, ordinal) VALUES (?, ?, ?)",
			tableID, t.Name, i)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to insert table %s", t.Name)
		}

		for j, c := range t.Columns {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO catalog_columns (id, table_id, name, data_type, ordinal) VALUES (?, ?, ?, ?, ?)",
				uuid.New().String(), tableID, c.Name, string(c.DataType), j)
			if err != nil {
				return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to insert column %s.%s", t.Name, c.Name)
			}
		}
	}

	for name, rs := range rows {
		for i, r := range rs {
			data, err := json.Marshal(r)
			if err != nil {
				return errors.Wrapf(err, errors.ErrTypeValidation, "failed to encode row %d of %s", i, name)
			}

			_, err = tx.ExecContext(ctx,
				"INSERT INTO catalog_rows (id, table_name, ordinal, data) VALUES (?, ?, ?, ?)",
				uuid.New().String(), name, i, string(data))
			if err != nil {
				return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to insert row %d of %s", i, name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to commit load")
	}

	s.loaded = true

	return nil
}

// ListTables returns the stored descriptors in catalog order
func (s *SQLStore) ListTables(ctx context.Context) ([]catalog.TableDescriptor, error) {
	query := `
	SELECT t.ordinal, t.name, c.name, c.data_type
	FROM catalog_tables t
	LEFT JOIN catalog_columns c ON c.table_id = t.id
	ORDER BY t.ordinal, c.ordinal`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query tables")
	}

	defer rows.Close()

	tables := []catalog.TableDescriptor{}
	last := -1

	for rows.Next() {
		var (
			ordinal   int
			tableName string
			colName   sql.NullString
			dataType  sql.NullString
		)

		if err := rows.Scan(&ordinal, &tableName, &colName, &dataType); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan table")
		}

		if ordinal != last {
			tables = append(tables, catalog.TableDescriptor{Name: tableName, Columns: []catalog.ColumnDescriptor{}})
			last = ordinal
		}

		if colName.Valid {
			t := &tables[len(tables)-1]
			t.Columns = append(t.Columns, catalog.ColumnDescriptor{
				Name:     colName.String,
				DataType: catalog.DataType(dataType.String),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to read tables")
	}

	return tables, nil
}

// GetRows returns the rows stored for the exactly-named table, or an empty slice
func (s *SQLStore) GetRows(ctx context.Context, table string) ([]catalog.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM catalog_rows WHERE table_name = ? ORDER BY ordinal", table)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeDatabase, "failed to query rows of %s", table)
	}

	defer rows.Close()

	out := []catalog.Row{}

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan row")
		}

		r, err := decodeRow(data)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTypeDatabase, "failed to decode row of %s", table)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to read rows")
	}

	return out, nil
}

// GetStats counts what the store holds
func (s *SQLStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Driver: s.driver}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM catalog_tables", &stats.Tables},
		{"SELECT COUNT(*) FROM catalog_columns", &stats.Columns},
		{"SELECT COUNT(*) FROM catalog_rows", &stats.Rows},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to get statistics")
		}
	}

	return stats, nil
}

// Close releases the database; the in-memory data is gone afterwards
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// decodeRow restores integers as int so stored rows compare equal to the
// built-in ones
func decodeRow(data string) (catalog.Row, error) {
	dec := json.NewDecoder(bytes.NewBufferString(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid row json: %w", err)
	}

	r := make(catalog.Row, len(raw))

	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			r[k] = v
			continue
		}

		if i, err := n.Int64(); err == nil {
			r[k] = int(i)
		} else if f, err := n.Float64(); err == nil {
			r[k] = f
		} else {
			return nil, fmt.Errorf("invalid number %q for %s", n, k)
		}
	}

	return r, nil
}
