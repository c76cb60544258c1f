// Package omop defines the data model for per-concept statistical
// summaries computed from OMOP CDM clinical event tables.
//
// This package has no I/O dependencies. It holds the canonical JSON
// shape of a summary, the closed set of data-type tags, the fixed
// registry of event tables, and pure descriptive-statistics helpers.
package omop

import (
	"fmt"

	"github.com/gnames/gnfmt"
)

// DataType is the closed set of tags classifying a concept's values.
type DataType int

const (
	// Numeric marks concepts whose values are continuous measurements.
	Numeric DataType = iota
	// Categorical marks concepts with a bounded set of distinct values.
	Categorical
	// Count marks concepts from tables without a value column, where
	// only occurrence counts are meaningful.
	Count
)

var dataTypeStrings = map[DataType]string{
	Numeric:     "numeric",
	Categorical: "categorical",
	Count:       "count",
}

func (dt DataType) String() string {
	if s, ok := dataTypeStrings[dt]; ok {
		return s
	}
	return "numeric"
}

// MarshalJSON encodes the tag as its lowercase string form.
func (dt DataType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.String() + `"`), nil
}

// UnmarshalJSON decodes the lowercase string form of the tag.
// Unknown tags are rejected so malformed summaries fail loudly.
func (dt *DataType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"numeric"`:
		*dt = Numeric
	case `"categorical"`:
		*dt = Categorical
	case `"count"`:
		*dt = Count
	default:
		return fmt.Errorf("unknown data type tag: %s", data)
	}
	return nil
}

// DateRange holds the earliest and latest observation dates for a
// concept. Dates are ISO-8601 strings as stored in OMOP date columns.
// Nil means no dated rows were found.
type DateRange struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

// StatisticalData holds descriptive statistics for numeric concepts.
// Every field is nullable: a concept with no coercible numeric values
// produces an all-null StatisticalData, not an error.
type StatisticalData struct {
	Min                    *float64 `json:"min"`
	Max                    *float64 `json:"max"`
	Mean                   *float64 `json:"mean"`
	Median                 *float64 `json:"median"`
	SD                     *float64 `json:"sd"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
	P5                     *float64 `json:"p5"`
	P25                    *float64 `json:"p25"`
	P75                    *float64 `json:"p75"`
	P95                    *float64 `json:"p95"`
}

// PossibleValue is one entry of a categorical frequency table.
type PossibleValue struct {
	Value   string  `json:"value"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// ConceptStatisticalSummary is the canonical summary of one
// (concept, source table) pair. Exactly one of StatisticalData and
// PossibleValues is populated, matching DataTypes; for Count concepts
// both stay empty. An all-null summary means "no data", never a
// computation failure.
type ConceptStatisticalSummary struct {
	DataTypes          DataType         `json:"data_types"`
	RowsCount          int64            `json:"rows_count"`
	RowsPercent        *float64         `json:"rows_percent"`
	PatientsCount      int64            `json:"patients_count"`
	PatientsPercent    *float64         `json:"patients_percent"`
	MeasurementDensity *float64         `json:"measurement_density"`
	DateRange          DateRange        `json:"date_range"`
	StatisticalData    *StatisticalData `json:"statistical_data"`
	PossibleValues     []PossibleValue  `json:"possible_values"`
}

// EmptySummary returns the canonical null template used when a concept
// has no matching rows. It is tagged Numeric as a conservative default.
func EmptySummary() *ConceptStatisticalSummary {
	return &ConceptStatisticalSummary{
		DataTypes:       Numeric,
		StatisticalData: &StatisticalData{},
	}
}

// ToJSON serializes the summary to its canonical compact JSON form.
// Absent values are encoded as explicit nulls, never omitted keys.
func (s *ConceptStatisticalSummary) ToJSON() ([]byte, error) {
	enc := gnfmt.GNjson{}
	return enc.Encode(s)
}

// SummaryFromJSON parses a summary from its canonical JSON form.
func SummaryFromJSON(data []byte) (*ConceptStatisticalSummary, error) {
	var res ConceptStatisticalSummary
	enc := gnfmt.GNjson{}
	if err := enc.Decode(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SummaryRecord pairs a summary with the vocabulary identity of its
// concept. Records are what the batch engine emits and the sink
// persists. Vocabulary fields stay nil when the concept is absent from
// the vocabulary dictionary.
type SummaryRecord struct {
	VocabularyID *string                    `json:"vocabulary_id"`
	ConceptID    int64                      `json:"concept_id"`
	ConceptCode  *string                    `json:"concept_code"`
	TableName    string                     `json:"table_name"`
	Summary      *ConceptStatisticalSummary `json:"statistical_summary"`
}

// Ptr returns a pointer to v. It keeps nullable-field literals short.
func Ptr[T any](v T) *T { return &v }
