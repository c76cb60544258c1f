package iostats

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/clindict/omopstat/pkg/omop"
)

// sinkHeader is the fixed column layout of the batch output file.
var sinkHeader = []string{
	"vocabulary_id",
	"concept_id",
	"concept_code",
	"table_name",
	"statistical_summary_json",
}

// Sink appends summary records to a CSV file incrementally, one batch
// at a time, so a long-running run is inspectable and resumable
// mid-flight. The header is written once, when the file is created or
// empty; reopening an existing sink appends rows.
type Sink struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewSink opens (or creates) the sink file at path.
func NewSink(path string) (*Sink, error) {
	file, err := os.OpenFile(
		path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, SinkError(path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, SinkError(path, err)
	}

	s := &Sink{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
	}

	if info.Size() == 0 {
		if err = s.writer.Write(sinkHeader); err != nil {
			_ = file.Close()
			return nil, SinkError(path, err)
		}
	}
	return s, nil
}

// Append writes one batch of records and flushes, so rows are durable
// at every batch boundary.
func (s *Sink) Append(records []omop.SummaryRecord) error {
	for _, rec := range records {
		summaryJSON, err := rec.Summary.ToJSON()
		if err != nil {
			return SinkError(s.path, err)
		}

		row := []string{
			strOrEmpty(rec.VocabularyID),
			strconv.FormatInt(rec.ConceptID, 10),
			strOrEmpty(rec.ConceptCode),
			rec.TableName,
			string(summaryJSON),
		}
		if err = s.writer.Write(row); err != nil {
			return SinkError(s.path, err)
		}
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return SinkError(s.path, err)
	}
	return nil
}

// Close flushes pending rows and closes the file.
func (s *Sink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return SinkError(s.path, err)
	}
	return s.file.Close()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
