package db

import (
	"context"
	"database/sql"

	"github.com/clindict/omopstat/pkg/config"
)

// Operator defines the interface for basic database management
// operations. It provides connection lifecycle management and exposes
// the *sql.DB handle for higher-level components (statistics engine,
// columnar search) to execute their specialized SQL internally.
//
// Design rationale:
// - Keeps interface minimal to avoid bloat with mixed semantics
// - DB() lets components run their own queries over database/sql,
//   which works uniformly across postgres, sqlite and duckdb backends
// - Rebind() hides the placeholder dialect difference between
//   backends, so components write queries once with '?'
type Operator interface {
	// Connect opens a connection to the configured database backend.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection.
	Close() error

	// DB returns the underlying handle for components to execute
	// specialized SQL operations.
	DB() *sql.DB

	// Driver returns the configured backend name:
	// "postgres", "sqlite" or "duckdb".
	Driver() string

	// Rebind converts '?' placeholders to the backend's dialect.
	Rebind(query string) string

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)
}
