package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/kyleking/filter-flow/internal/logging"
)

// Migration represents a versioned schema change. Up and Down hold one
// statement per element so drivers without multi-statement support work.
type Migration struct {
	Version     int
	Description string
	Up          []string
	Down        []string
}

// MigrationManager handles database schema migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// GetMigrations returns all available migrations in order
func (m *MigrationManager) GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Catalog and row store",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS catalog_tables (
					id VARCHAR PRIMARY KEY,
					name VARCHAR NOT NULL,
					ordinal INTEGER NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS catalog_columns (
					id VARCHAR PRIMARY KEY,
					table_id VARCHAR NOT NULL,
					name VARCHAR NOT NULL,
					data_type VARCHAR NOT NULL,
					ordinal INTEGER NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS catalog_rows (
					id VARCHAR PRIMARY KEY,
					table_name VARCHAR NOT NULL,
					ordinal INTEGER NOT NULL,
					data VARCHAR NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_catalog_columns_table ON catalog_columns(table_id, ordinal)`,
				`CREATE INDEX IF NOT EXISTS idx_catalog_rows_table ON catalog_rows(table_name, ordinal)`,
			},
			Down: []string{
				`DROP INDEX IF EXISTS idx_catalog_rows_table`,
				`DROP INDEX IF EXISTS idx_catalog_columns_table`,
				`DROP TABLE IF EXISTS catalog_rows`,
				`DROP TABLE IF EXISTS catalog_columns`,
				`DROP TABLE IF EXISTS catalog_tables`,
			},
		},
	}
}

// InitializeMigrationTable creates the migration tracking table
func (m *MigrationManager) InitializeMigrationTable(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description VARCHAR NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}

	defer rows.Close()

	var versions []int

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}

		versions = append(versions, version)
	}

	return versions, rows.Err()
}

// IsMigrationApplied checks if a specific migration version has been applied
func (m *MigrationManager) IsMigrationApplied(ctx context.Context, version int) (bool, error) {
	var count int

	err := m.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}

	return count > 0, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(ctx context.Context, migration Migration) error {
	applied, err := m.IsMigrationApplied(ctx, migration.Version)
	if err != nil {
		return err
	}

	if applied {
		return fmt.Errorf("migration %d already applied", migration.Version)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migration.Up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		migration.Version, migration.Description)
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	return tx.Commit()
}

// RollbackMigration rolls back a single migration
func (m *MigrationManager) RollbackMigration(ctx context.Context, migration Migration) error {
	applied, err := m.IsMigrationApplied(ctx, migration.Version)
	if err != nil {
		return err
	}

	if !applied {
		return fmt.Errorf("migration %d not applied", migration.Version)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migration.Down {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", migration.Version, err)
		}
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", migration.Version)
	if err != nil {
		return fmt.Errorf("failed to remove migration record %d: %w", migration.Version, err)
	}

	return tx.Commit()
}

// MigrateUp applies all pending migrations
func (m *MigrationManager) MigrateUp(ctx context.Context) error {
	if err := m.InitializeMigrationTable(ctx); err != nil {
		return err
	}

	appliedVersions, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	appliedMap := make(map[int]bool)
	for _, version := range appliedVersions {
		appliedMap[version] = true
	}

	migrations := m.GetMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if appliedMap[migration.Version] {
			continue
		}

		logging.Debugf("Applying migration %d: %s", migration.Version, migration.Description)

		if err := m.ApplyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// MigrateDown rolls back migrations above targetVersion, newest first
func (m *MigrationManager) MigrateDown(ctx context.Context, targetVersion int) error {
	appliedVersions, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	migrationMap := make(map[int]Migration)
	for _, migration := range m.GetMigrations() {
		migrationMap[migration.Version] = migration
	}

	sort.Sort(sort.Reverse(sort.IntSlice(appliedVersions)))

	for _, version := range appliedVersions {
		if version <= targetVersion {
			break
		}

		migration, exists := migrationMap[version]
		if !exists {
			return fmt.Errorf("migration %d not found", version)
		}

		logging.Debugf("Rolling back migration %d: %s", version, migration.Description)

		if err := m.RollbackMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", version, err)
		}
	}

	return nil
}

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus(ctx context.Context) (map[int]MigrationStatus, error) {
	if err := m.InitializeMigrationTable(ctx); err != nil {
		return nil, err
	}

	appliedVersions, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	appliedMap := make(map[int]bool)
	for _, version := range appliedVersions {
		appliedMap[version] = true
	}

	status := make(map[int]MigrationStatus)

	for _, migration := range m.GetMigrations() {
		status[migration.Version] = MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     appliedMap[migration.Version],
		}
	}

	return status, nil
}
