package iostats

import (
	"fmt"

	"github.com/clindict/omopstat/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when the engine is invoked
// without a database connection.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Statistics computation attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// NoTablesError creates the fatal error for a run where none of the
// requested or configured event tables exist in the database.
func NoTablesError(requested []string) error {
	msg := `No usable OMOP event tables found in the database

<em>Requested tables:</em> %v

<em>How to fix:</em>
  1. Check the database contains OMOP CDM event tables
     (measurement, observation, drug_exposure, ...)
  2. Verify the connection settings point at the right database
  3. If using --tables, verify the domain names are spelled correctly`

	vars := []any{requestedOrAll(requested)}

	return &gn.Error{
		Code: errcode.StatsNoTablesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no usable tables found"),
	}
}

func requestedOrAll(requested []string) any {
	if len(requested) == 0 {
		return "all configured"
	}
	return requested
}

// ConceptQueryError creates an error for a failed concept-level query.
func ConceptQueryError(table string, err error) error {
	return &gn.Error{
		Code: errcode.StatsConceptQueryError,
		Msg:  "Query against table <em>%s</em> failed",
		Vars: []any{table},
		Err:  fmt.Errorf("concept query on %s: %w", table, err),
	}
}

// TotalsQueryError creates an error for a failed table totals query.
func TotalsQueryError(table string, err error) error {
	return &gn.Error{
		Code: errcode.StatsTotalsQueryError,
		Msg:  "Could not compute totals for table <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("totals query on %s: %w", table, err),
	}
}

// SinkError creates an error for a failed write to the output file.
func SinkError(path string, err error) error {
	return &gn.Error{
		Code: errcode.StatsSinkError,
		Msg:  "Could not write batch output to <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("sink %s: %w", path, err),
	}
}

// CancelledError creates an error for a run interrupted at a batch
// boundary.
func CancelledError(err error) error {
	return &gn.Error{
		Code: errcode.StatsCancelledError,
		Msg:  "Statistics computation was cancelled",
		Err:  fmt.Errorf("computation cancelled: %w", err),
	}
}
