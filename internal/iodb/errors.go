package iodb

import (
	"fmt"

	"github.com/clindict/omopstat/pkg/config"
	"github.com/clindict/omopstat/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for a failed database connection.
func ConnectionError(cfg *config.DatabaseConfig, err error) error {
	var msg string
	var vars []any
	switch cfg.Driver {
	case "postgres":
		msg = `Could not connect to PostgreSQL database

<em>Connection settings:</em>
  Host:     %s
  Port:     %d
  Database: %s
  User:     %s

<em>How to fix:</em>
  1. Check PostgreSQL is running: <em>pg_isready -h %s -p %d</em>
  2. Review settings in <em>~/.config/omopstat/config.yaml</em>`
		vars = []any{cfg.Host, cfg.Port, cfg.Database, cfg.User,
			cfg.Host, cfg.Port}
	default:
		msg = `Could not open %s database at <em>%s</em>

<em>How to fix:</em>
  1. Check the file exists and is readable
  2. Review <em>database.path</em> in your configuration`
		vars = []any{cfg.Driver, cfg.Path}
	}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot connect to %s database: %w", cfg.Driver, err),
	}
}

// BadDriverError creates an error for an unsupported backend name.
func BadDriverError(driver string) error {
	msg := `Unsupported database driver '%s'

Valid values are:
  * postgres
  * sqlite
  * duckdb`

	return &gn.Error{
		Code: errcode.DBBadDriverError,
		Msg:  msg,
		Vars: []any{driver},
		Err:  fmt.Errorf("unsupported database driver: %s", driver),
	}
}

// NotConnectedError creates an error for operations attempted without
// a database connection.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Operation attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableExistsCheckError creates an error for a failed table check.
func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  "Could not check if table <em>%s</em> exists",
		Vars: []any{table},
		Err:  fmt.Errorf("cannot check table %s: %w", table, err),
	}
}
