// Package testutil provides common constants and utilities for tests
package testutil

import "time"

const (
	// TestTimeout is the default timeout for test operations
	TestTimeout = 30 * time.Second

	// ShortTestTimeout is a shorter timeout for quick operations
	ShortTestTimeout = 5 * time.Second
)

// Names of the built-in tables
const (
	// UsersTable is the first built-in table
	UsersTable = "使用者"

	// ProductsTable is the second built-in table
	ProductsTable = "產品"

	// MissingTable is a name that matches no table
	MissingTable = "nonexistent-table-xyz"
)
