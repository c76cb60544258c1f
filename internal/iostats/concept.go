package iostats

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clindict/omopstat/pkg/omop"
)

// ComputeConcept computes the statistical summary of one concept in
// one table. A concept with no matching rows yields the canonical
// null template, not an error.
func (e *engine) ComputeConcept(
	ctx context.Context,
	conceptID int64,
	tc omop.TableConfig,
) (*omop.ConceptStatisticalSummary, error) {
	totals, err := e.tableTotals(ctx, tc)
	if err != nil {
		return nil, err
	}

	rows, err := e.conceptRows(ctx, conceptID, tc)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return omop.EmptySummary(), nil
	}

	res := &omop.ConceptStatisticalSummary{
		RowsCount: int64(len(rows)),
	}

	patients := make(map[string]struct{})
	var minDate, maxDate string
	for _, r := range rows {
		if r.person != "" {
			patients[r.person] = struct{}{}
		}
		if r.date != "" {
			if minDate == "" || r.date < minDate {
				minDate = r.date
			}
			if r.date > maxDate {
				maxDate = r.date
			}
		}
	}
	res.PatientsCount = int64(len(patients))

	if totals.rows > 0 {
		res.RowsPercent = omop.Ptr(omop.Round2(
			float64(res.RowsCount) / float64(totals.rows) * 100))
	}
	if totals.patients > 0 {
		res.PatientsPercent = omop.Ptr(omop.Round2(
			float64(res.PatientsCount) / float64(totals.patients) * 100))
	}
	if res.PatientsCount > 0 {
		res.MeasurementDensity = omop.Ptr(omop.Round2(
			float64(res.RowsCount) / float64(res.PatientsCount)))
	}
	if minDate != "" {
		res.DateRange = omop.DateRange{
			Min: omop.Ptr(minDate),
			Max: omop.Ptr(maxDate),
		}
	}

	if !tc.HasValue() {
		res.DataTypes = omop.Count
		return res, nil
	}

	e.classifyValues(res, rows)
	return res, nil
}

// classifyValues decides between a categorical frequency table and
// numeric descriptive statistics based on the distinct-value count.
func (e *engine) classifyValues(
	res *omop.ConceptStatisticalSummary,
	rows []conceptRow,
) {
	counts := make(map[string]int64)
	for _, r := range rows {
		counts[r.value]++
	}

	if len(counts) <= e.cfg.Stats.MaxCategoricalValues {
		res.DataTypes = omop.Categorical
		res.PossibleValues = omop.FrequencyTable(
			counts,
			res.RowsCount,
			int64(e.cfg.Stats.MinCategoricalCount),
			e.cfg.Stats.MaxStoredCategories,
		)
		return
	}

	res.DataTypes = omop.Numeric
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := omop.ParseNumeric(r.value); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		// Nothing coercible: fall back to the null template.
		*res = *omop.EmptySummary()
		return
	}

	withPercentiles := true
	if e.cfg.Stats.WithPercentiles != nil {
		withPercentiles = *e.cfg.Stats.WithPercentiles
	}
	res.StatisticalData = omop.Describe(values, withPercentiles)
}

// conceptRow is one event row of a concept: its raw value (empty for
// tables without value columns), patient id and event date, scanned
// as strings for backend portability.
type conceptRow struct {
	value  string
	person string
	date   string
}

// conceptRows fetches all rows of a concept. When the table has value
// columns, the numeric column is preferred and the categorical column
// fills in where it is null; rows where both are null are excluded.
func (e *engine) conceptRows(
	ctx context.Context,
	conceptID int64,
	tc omop.TableConfig,
) ([]conceptRow, error) {
	valueExpr := valueExpression(tc)

	var query string
	if valueExpr != "" {
		query = `
			SELECT ` + valueExpr + `, ` + tc.PersonColumn + `, ` + tc.DateColumn + `
			FROM ` + tc.Table + `
			WHERE ` + tc.ConceptColumn + ` = ?
			AND ` + valueExpr + ` IS NOT NULL
		`
	} else {
		query = `
			SELECT ` + tc.PersonColumn + `, ` + tc.DateColumn + `
			FROM ` + tc.Table + `
			WHERE ` + tc.ConceptColumn + ` = ?
		`
	}

	rows, err := e.operator.DB().QueryContext(
		ctx, e.operator.Rebind(query), conceptID)
	if err != nil {
		return nil, ConceptQueryError(tc.Table, err)
	}
	defer rows.Close()

	var res []conceptRow
	for rows.Next() {
		var value, person, date sql.NullString
		if valueExpr != "" {
			err = rows.Scan(&value, &person, &date)
		} else {
			err = rows.Scan(&person, &date)
		}
		if err != nil {
			return nil, ConceptQueryError(tc.Table, err)
		}
		res = append(res, conceptRow{
			value:  strings.TrimSpace(value.String),
			person: person.String,
			date:   normalizeDate(date.String),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, ConceptQueryError(tc.Table, err)
	}
	return res, nil
}

// valueExpression builds the SQL expression selecting a concept's raw
// value, preferring the numeric column and falling back to the
// categorical one. Empty for count-only tables.
func valueExpression(tc omop.TableConfig) string {
	num := tc.NumericValueColumn
	cat := tc.CategoricalValueColumn
	switch {
	case num != "" && cat != "":
		return "COALESCE(CAST(" + num + " AS VARCHAR), " + cat + ")"
	case num != "":
		return "CAST(" + num + " AS VARCHAR)"
	case cat != "":
		return cat
	}
	return ""
}

// normalizeDate trims time components so postgres timestamps and text
// dates compare the same way. OMOP date columns are ISO-8601, which
// orders lexicographically.
func normalizeDate(s string) string {
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		return s[:10]
	}
	return s
}

// tableTotals fetches (and caches) the full row count and distinct
// patient count of a table. The cache lives for the engine's
// lifetime, so a batch run fetches totals once per table.
func (e *engine) tableTotals(
	ctx context.Context,
	tc omop.TableConfig,
) (tableTotals, error) {
	e.mu.Lock()
	if t, ok := e.totals[tc.Table]; ok {
		e.mu.Unlock()
		return t, nil
	}
	e.mu.Unlock()

	query := `
		SELECT COUNT(*), COUNT(DISTINCT ` + tc.PersonColumn + `)
		FROM ` + tc.Table

	var t tableTotals
	err := e.operator.DB().
		QueryRowContext(ctx, query).
		Scan(&t.rows, &t.patients)
	if err != nil {
		return tableTotals{}, TotalsQueryError(tc.Table, err)
	}

	e.mu.Lock()
	e.totals[tc.Table] = t
	e.mu.Unlock()
	return t, nil
}
