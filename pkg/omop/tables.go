package omop

// TableConfig describes one clinical event table: where concept ids,
// values, patients and dates live. Value columns are optional; a table
// without any value column yields Count summaries.
type TableConfig struct {
	// Domain is the logical clinical domain, e.g. "measurement".
	Domain string

	// Table is the physical table name in the connected database.
	Table string

	// ConceptColumn holds the OMOP concept id.
	ConceptColumn string

	// NumericValueColumn holds continuous values, empty if none.
	NumericValueColumn string

	// CategoricalValueColumn holds coded/text values, empty if none.
	CategoricalValueColumn string

	// PersonColumn holds the patient identifier.
	PersonColumn string

	// DateColumn holds the event date.
	DateColumn string
}

// HasValue reports whether the table carries any value column.
func (tc TableConfig) HasValue() bool {
	return tc.NumericValueColumn != "" || tc.CategoricalValueColumn != ""
}

// Tables is the fixed registry of OMOP CDM event tables the statistics
// engine knows how to scan, in processing order. Only tables present
// in the connected database are processed; absent ones are skipped.
var Tables = []TableConfig{
	{
		Domain:                 "measurement",
		Table:                  "measurement",
		ConceptColumn:          "measurement_concept_id",
		NumericValueColumn:     "value_as_number",
		CategoricalValueColumn: "value_source_value",
		PersonColumn:           "person_id",
		DateColumn:             "measurement_date",
	},
	{
		Domain:                 "observation",
		Table:                  "observation",
		ConceptColumn:          "observation_concept_id",
		NumericValueColumn:     "value_as_number",
		CategoricalValueColumn: "value_as_string",
		PersonColumn:           "person_id",
		DateColumn:             "observation_date",
	},
	{
		Domain:             "drug_exposure",
		Table:              "drug_exposure",
		ConceptColumn:      "drug_concept_id",
		NumericValueColumn: "quantity",
		PersonColumn:       "person_id",
		DateColumn:         "drug_exposure_start_date",
	},
	{
		Domain:        "condition_occurrence",
		Table:         "condition_occurrence",
		ConceptColumn: "condition_concept_id",
		PersonColumn:  "person_id",
		DateColumn:    "condition_start_date",
	},
	{
		Domain:        "procedure_occurrence",
		Table:         "procedure_occurrence",
		ConceptColumn: "procedure_concept_id",
		PersonColumn:  "person_id",
		DateColumn:    "procedure_date",
	},
	{
		Domain:        "device_exposure",
		Table:         "device_exposure",
		ConceptColumn: "device_concept_id",
		PersonColumn:  "person_id",
		DateColumn:    "device_exposure_start_date",
	},
	{
		Domain:             "specimen",
		Table:              "specimen",
		ConceptColumn:      "specimen_concept_id",
		NumericValueColumn: "quantity",
		PersonColumn:       "person_id",
		DateColumn:         "specimen_date",
	},
}

// TableByDomain returns the registry entry for a logical domain.
func TableByDomain(domain string) (TableConfig, bool) {
	for _, tc := range Tables {
		if tc.Domain == domain {
			return tc, true
		}
	}
	return TableConfig{}, false
}
