// Package stats defines the contract of the statistics engine: batch
// and single-concept computation of statistical summaries from OMOP
// event tables. The concrete implementation lives in
// internal/iostats.
package stats

import (
	"context"

	"github.com/clindict/omopstat/pkg/omop"
)

// ProgressKind distinguishes the events reported during a batch run.
type ProgressKind int

const (
	// TableStart is emitted once per processed table, before any
	// concept work. Total holds the number of qualifying concepts.
	TableStart ProgressKind = iota
	// BatchDone is emitted after each batch of concepts completes.
	BatchDone
	// ConceptFailed is emitted when one concept's computation fails
	// and is skipped. The run continues.
	ConceptFailed
	// TableDone is emitted after the last batch of a table.
	TableDone
)

// Progress is one progress event from the batch driver. Events are
// emitted at batch boundaries, which are also the natural
// cancellation checkpoints of a run.
type Progress struct {
	Kind      ProgressKind
	Table     string
	ConceptID int64
	Done      int
	Total     int
	Err       error
}

// ProgressFunc receives progress events during a batch run. A nil
// callback disables reporting.
type ProgressFunc func(Progress)

// Computer computes concept statistical summaries. Implementations
// never own the database connection: the caller opens it before and
// closes it after the call.
type Computer interface {
	// ComputeAll scans the configured tables present in the database
	// and computes a summary record for every concept with at least
	// MinRows rows, in registry table order, concepts by descending
	// row count. A per-concept failure is reported through the
	// progress callback and skipped. ComputeAll fails only when none
	// of the requested tables exist in the database.
	//
	// When a sink is configured, each batch is appended to it as it
	// completes and the returned slice contains the same records.
	ComputeAll(ctx context.Context) ([]omop.SummaryRecord, error)

	// ComputeConcept computes the summary of a single concept in one
	// table. A concept with no matching rows yields the canonical
	// null template, not an error.
	ComputeConcept(
		ctx context.Context,
		conceptID int64,
		table omop.TableConfig,
	) (*omop.ConceptStatisticalSummary, error)
}
