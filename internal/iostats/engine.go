// Package iostats implements the statistics engine over OMOP event
// tables. This is an impure I/O package that scans event tables,
// computes per-concept statistical summaries in batches, and
// optionally appends each batch to a CSV sink.
package iostats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/clindict/omopstat/pkg/config"
	"github.com/clindict/omopstat/pkg/db"
	"github.com/clindict/omopstat/pkg/omop"
	"github.com/clindict/omopstat/pkg/stats"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// engine implements the stats.Computer interface.
type engine struct {
	cfg      *config.Config
	operator db.Operator
	progress stats.ProgressFunc

	// totals are cached per table for the duration of a table run,
	// so a table's full row and patient counts are fetched once,
	// not once per concept.
	mu     sync.Mutex
	totals map[string]tableTotals
}

type tableTotals struct {
	rows     int64
	patients int64
}

// New creates a new statistics engine. The caller owns the database
// connection lifecycle; the engine never closes it. The progress
// callback may be nil.
func New(
	cfg *config.Config,
	op db.Operator,
	progress stats.ProgressFunc,
) stats.Computer {
	return &engine{
		cfg:      cfg,
		operator: op,
		progress: progress,
		totals:   make(map[string]tableTotals),
	}
}

// ComputeAll scans the configured tables present in the connected
// database and computes a summary record for every qualifying
// concept. Only the complete absence of usable tables is fatal; a
// failure for one concept is reported via the progress callback and
// skipped.
func (e *engine) ComputeAll(
	ctx context.Context,
) ([]omop.SummaryRecord, error) {
	if e.operator.DB() == nil {
		return nil, NotConnectedError()
	}

	startTime := time.Now()
	slog.Info("Starting statistics computation")

	tables, err := e.availableTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, NoTablesError(e.cfg.Stats.Tables)
	}

	var sink *Sink
	if e.cfg.Stats.OutputFile != "" {
		sink, err = NewSink(e.cfg.Stats.OutputFile)
		if err != nil {
			return nil, err
		}
		defer func() { _ = sink.Close() }()
	}

	var res []omop.SummaryRecord
	for _, tc := range tables {
		records, err := e.computeTable(ctx, tc, sink)
		if err != nil {
			return nil, err
		}
		res = append(res, records...)
	}

	slog.Info("Statistics computation complete",
		"records", len(res),
		"tables", len(tables),
		"duration", gnfmt.TimeString(time.Since(startTime).Seconds()),
	)
	return res, nil
}

// availableTables filters the registry to tables present in the
// database, honoring the optional domain filter. Absent tables are
// skipped without error.
func (e *engine) availableTables(
	ctx context.Context,
) ([]omop.TableConfig, error) {
	requested := omop.Tables
	if len(e.cfg.Stats.Tables) > 0 {
		requested = requested[:0:0]
		for _, domain := range e.cfg.Stats.Tables {
			if tc, ok := omop.TableByDomain(domain); ok {
				requested = append(requested, tc)
			} else {
				slog.Warn("Unknown table domain requested",
					"domain", domain)
			}
		}
	}

	var res []omop.TableConfig
	for _, tc := range requested {
		exists, err := e.operator.TableExists(ctx, tc.Table)
		if err != nil {
			return nil, err
		}
		if !exists {
			slog.Info("Table not present, skipping", "table", tc.Table)
			continue
		}
		res = append(res, tc)
	}
	return res, nil
}

// computeTable processes every qualifying concept of one table in
// fixed-size batches. Batch boundaries are the cancellation
// checkpoints of a run.
func (e *engine) computeTable(
	ctx context.Context,
	tc omop.TableConfig,
	sink *Sink,
) ([]omop.SummaryRecord, error) {
	concepts, err := e.qualifyingConcepts(ctx, tc)
	if err != nil {
		return nil, err
	}

	// Warm the totals cache before the parallel per-concept phase.
	if _, err = e.tableTotals(ctx, tc); err != nil {
		return nil, err
	}

	e.report(stats.Progress{
		Kind:  stats.TableStart,
		Table: tc.Table,
		Total: len(concepts),
	})
	slog.Info("Processing table",
		"table", tc.Table, "concepts", len(concepts))

	batchSize := e.cfg.Stats.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	var res []omop.SummaryRecord
	for start := 0; start < len(concepts); start += batchSize {
		select {
		case <-ctx.Done():
			return nil, CancelledError(ctx.Err())
		default:
		}

		end := min(start+batchSize, len(concepts))
		batch, err := e.computeBatch(ctx, tc, concepts[start:end])
		if err != nil {
			return nil, err
		}

		if sink != nil {
			if err = sink.Append(batch); err != nil {
				return nil, err
			}
		}
		res = append(res, batch...)

		e.report(stats.Progress{
			Kind:  stats.BatchDone,
			Table: tc.Table,
			Done:  end,
			Total: len(concepts),
		})
	}

	e.report(stats.Progress{
		Kind:  stats.TableDone,
		Table: tc.Table,
		Done:  len(concepts),
		Total: len(concepts),
	})
	return res, nil
}

// computeBatch computes summaries for one batch of concepts.
// Vocabulary metadata is bulk-fetched once for the whole batch.
// Concepts are processed in parallel, bounded by JobsNumber; results
// keep the input order, and a failed concept leaves a gap that is
// filtered out after the batch completes.
func (e *engine) computeBatch(
	ctx context.Context,
	tc omop.TableConfig,
	conceptIDs []int64,
) ([]omop.SummaryRecord, error) {
	vocab := e.vocabularyMetadata(ctx, conceptIDs)

	records := make([]*omop.SummaryRecord, len(conceptIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.JobsNumber, 1))

	for i, conceptID := range conceptIDs {
		g.Go(func() error {
			summary, err := e.ComputeConcept(gctx, conceptID, tc)
			if err != nil {
				// Failure isolation: one bad concept must not abort
				// the batch. Report and leave the slot empty.
				e.report(stats.Progress{
					Kind:      stats.ConceptFailed,
					Table:     tc.Table,
					ConceptID: conceptID,
					Err:       err,
				})
				slog.Warn("Skipping concept after failure",
					"table", tc.Table,
					"concept_id", conceptID,
					"error", err,
				)
				return nil
			}

			rec := omop.SummaryRecord{
				ConceptID: conceptID,
				TableName: tc.Table,
				Summary:   summary,
			}
			if v, ok := vocab[conceptID]; ok {
				rec.VocabularyID = omop.Ptr(v.vocabularyID)
				rec.ConceptCode = omop.Ptr(v.conceptCode)
			}
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make([]omop.SummaryRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			res = append(res, *rec)
		}
	}
	return res, nil
}

// qualifyingConcepts returns the distinct concept ids of a table with
// at least MinRows rows, ordered by descending row count, concept id
// ascending on ties.
func (e *engine) qualifyingConcepts(
	ctx context.Context,
	tc omop.TableConfig,
) ([]int64, error) {
	query := e.operator.Rebind(`
		SELECT ` + tc.ConceptColumn + `
		FROM ` + tc.Table + `
		WHERE ` + tc.ConceptColumn + ` IS NOT NULL
		GROUP BY ` + tc.ConceptColumn + `
		HAVING COUNT(*) >= ?
		ORDER BY COUNT(*) DESC, ` + tc.ConceptColumn + ` ASC
	`)

	rows, err := e.operator.DB().QueryContext(
		ctx, query, e.cfg.Stats.MinRows)
	if err != nil {
		return nil, ConceptQueryError(tc.Table, err)
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, ConceptQueryError(tc.Table, err)
		}
		res = append(res, id)
	}
	if err = rows.Err(); err != nil {
		return nil, ConceptQueryError(tc.Table, err)
	}
	return res, nil
}

func (e *engine) report(p stats.Progress) {
	if e.progress != nil {
		e.progress(p)
	}
}
