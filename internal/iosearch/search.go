// Package iosearch implements fuzzy concept search against a live
// database. On DuckDB the similarity computation is pushed down to
// the engine's built-in Jaro-Winkler function, which keeps large
// concept tables searchable interactively; other backends fall back
// to the in-memory matcher over the fetched column. Both paths honor
// the same contract and are interchangeable at the call site.
package iosearch

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clindict/omopstat/pkg/db"
	"github.com/clindict/omopstat/pkg/fuzzy"
)

// Match is one search hit: the full row plus its similarity in [0,1],
// higher meaning more similar.
type Match struct {
	Row        map[string]any
	Similarity float64
}

// Options bound a columnar search.
type Options struct {
	// MinScore excludes rows with similarity at or below it.
	// Zero or negative falls back to the 0.75 default.
	MinScore float64

	// Limit caps the number of returned rows.
	Limit int

	// ExtraPredicate is an optional SQL predicate ANDed into the
	// WHERE clause, e.g. "standard_concept = 'S'".
	ExtraPredicate string
}

// Columnar searches a table column for the query, ordered by
// descending similarity. An empty query is a no-op returning no
// matches. DuckDB computes Jaro-Winkler in the engine; for other
// backends the column is fetched and scored in memory.
func Columnar(
	ctx context.Context,
	op db.Operator,
	table, column, query string,
	opts Options,
) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if op.DB() == nil {
		return nil, NotConnectedError()
	}
	if opts.Limit < 1 {
		opts.Limit = 100
	}
	if opts.MinScore <= 0 {
		opts.MinScore = 0.75
	}

	if op.Driver() == "duckdb" {
		return columnarDuckDB(ctx, op, table, column, query, opts)
	}
	return columnarFallback(ctx, op, table, column, query, opts)
}

// columnarDuckDB delegates similarity scoring to DuckDB's built-in
// jaro_winkler_similarity, case-folded on both sides.
func columnarDuckDB(
	ctx context.Context,
	op db.Operator,
	table, column, query string,
	opts Options,
) ([]Match, error) {
	simExpr := "jaro_winkler_similarity(lower(" + column + "), lower(?))"

	sqlQuery := `
		SELECT *, ` + simExpr + ` AS similarity
		FROM ` + table + `
		WHERE ` + simExpr + ` > ?`
	if opts.ExtraPredicate != "" {
		sqlQuery += "\n\t\tAND (" + opts.ExtraPredicate + ")"
	}
	sqlQuery += `
		ORDER BY similarity DESC
		LIMIT ?`

	rows, err := op.DB().QueryContext(
		ctx, sqlQuery, query, query, opts.MinScore, opts.Limit)
	if err != nil {
		return nil, QueryError(table, err)
	}
	defer rows.Close()

	return collectMatches(rows, table)
}

// columnarFallback fetches the column and scores it with the
// in-memory matcher. Levenshtein scores (lower is better) are mapped
// to [0,1] similarities so the two paths stay interchangeable.
func columnarFallback(
	ctx context.Context,
	op db.Operator,
	table, column, query string,
	opts Options,
) ([]Match, error) {
	sqlQuery := `SELECT * FROM ` + table
	if opts.ExtraPredicate != "" {
		sqlQuery += " WHERE (" + opts.ExtraPredicate + ")"
	}

	rows, err := op.DB().QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, QueryError(table, err)
	}
	defer rows.Close()

	all, err := collectRows(rows, table)
	if err != nil {
		return nil, err
	}

	normQuery := fuzzy.Normalize(query)
	queryTokens := strings.Fields(normQuery)

	var res []Match
	for _, row := range all {
		target, _ := row[column].(string)
		score := fuzzy.Score(normQuery, queryTokens, fuzzy.Normalize(target))
		// Substring and token hits map near 1; edit distances decay
		// with the query length.
		similarity := 1 - score/float64(max(len(normQuery), 1))
		if similarity > opts.MinScore {
			res = append(res, Match{Row: row, Similarity: similarity})
		}
	}

	sortMatches(res)
	if len(res) > opts.Limit {
		res = res[:opts.Limit]
	}
	return res, nil
}

func sortMatches(mm []Match) {
	// Stable descending by similarity.
	for i := 1; i < len(mm); i++ {
		for j := i; j > 0 && mm[j].Similarity > mm[j-1].Similarity; j-- {
			mm[j], mm[j-1] = mm[j-1], mm[j]
		}
	}
}

// collectMatches scans rows that carry a trailing similarity column.
func collectMatches(rows *sql.Rows, table string) ([]Match, error) {
	all, err := collectRows(rows, table)
	if err != nil {
		return nil, err
	}
	res := make([]Match, 0, len(all))
	for _, row := range all {
		m := Match{Row: row}
		if sim, ok := row["similarity"].(float64); ok {
			m.Similarity = sim
			delete(row, "similarity")
		}
		res = append(res, m)
	}
	return res, nil
}

// collectRows scans arbitrary rows into maps keyed by column name.
// Byte slices are converted to strings so callers get printable
// values regardless of driver.
func collectRows(rows *sql.Rows, table string) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, QueryError(table, err)
	}

	var res []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, QueryError(table, err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		res = append(res, row)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError(table, err)
	}
	return res, nil
}
