// Package iodb implements database operations over database/sql.
// This is an impure I/O package that implements contracts
// defined in pkg/.
//
// Three backends are supported: PostgreSQL through the pgx stdlib
// adapter, SQLite through modernc.org/sqlite, and DuckDB through
// go-duckdb. The statistics engine and columnar search run the same
// SQL against any of them; only placeholder style and table-existence
// checks differ per dialect.
package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/clindict/omopstat/pkg/config"
	"github.com/clindict/omopstat/pkg/db"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// sqlOperator implements db.Operator over database/sql.
type sqlOperator struct {
	db     *sql.DB
	driver string
}

// New creates a new database operator (without connecting).
func New() db.Operator {
	return &sqlOperator{}
}

// Connect opens the configured backend and verifies the connection
// with a ping.
func (o *sqlOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	var (
		handle *sql.DB
		err    error
	)

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
			cfg.SSLMode,
		)
		handle, err = sql.Open("pgx", dsn)
	case "sqlite":
		handle, err = sql.Open("sqlite", cfg.Path)
	case "duckdb":
		handle, err = sql.Open("duckdb", cfg.Path)
	default:
		return BadDriverError(cfg.Driver)
	}

	if err != nil {
		return ConnectionError(cfg, err)
	}

	if err = handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return ConnectionError(cfg, err)
	}

	o.db = handle
	o.driver = cfg.Driver
	return nil
}

// Close releases the database connection.
func (o *sqlOperator) Close() error {
	if o.db != nil {
		return o.db.Close()
	}
	return nil
}

// DB returns the underlying handle for advanced operations.
func (o *sqlOperator) DB() *sql.DB {
	return o.db
}

// Driver returns the configured backend name.
func (o *sqlOperator) Driver() string {
	return o.driver
}

// Rebind converts '?' placeholders to the backend's dialect.
// PostgreSQL uses $1..$n; sqlite and duckdb take '?' as is.
func (o *sqlOperator) Rebind(query string) string {
	if o.driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TableExists checks if a table exists in the current database.
func (o *sqlOperator) TableExists(
	ctx context.Context,
	tableName string,
) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}

	var query string
	switch o.driver {
	case "postgres":
		query = `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = $1
			)
		`
	case "sqlite":
		query = `
			SELECT EXISTS (
				SELECT 1 FROM sqlite_master
				WHERE type = 'table' AND name = ?
			)
		`
	default: // duckdb
		query = `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = ?
			)
		`
	}

	var exists bool
	err := o.db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, TableExistsCheckError(tableName, err)
	}

	return exists, nil
}
