package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/sslreport/internal/model"
)

// CSVWriter outputs one row per endpoint in model.RecordColumns order.
// The header row is always written, even for a report without records.
type CSVWriter struct {
	baseWriter

	formatter rowFormatter

	// comma is the field delimiter.
	comma rune
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithCSVFormat sets the per-host cell format.
func WithCSVFormat(lookup FormatLookup) CSVWriterOption {
	return func(w *CSVWriter) {
		w.formatter = newRowFormatter(lookup)
	}
}

// WithDelimiter sets the field delimiter. The default is a comma.
func WithDelimiter(comma rune) CSVWriterOption {
	return func(w *CSVWriter) {
		w.comma = comma
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		formatter:  newRowFormatter(nil),
		comma:      ',',
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the records of the report.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	rows := make([][]string, 0, len(report.Records)+1)
	rows = append(rows, model.RecordColumns())
	for _, rec := range report.Records {
		rows = append(rows, w.formatter.row(rec))
	}
	return w.writeRows(rows)
}

// WriteSummary outputs one row per finding.
func (w *CSVWriter) WriteSummary(summary *model.Summary) (int, error) {
	rows := make([][]string, 0, len(summary.Findings)+1)
	rows = append(rows, []string{"severity", "type", "host", "sniname", "port", "title", "value"})
	for _, f := range summary.Findings {
		rows = append(rows, []string{
			f.SeverityText,
			f.Type,
			f.Endpoint.Host,
			f.Endpoint.SNIName,
			strconv.Itoa(f.Endpoint.Port),
			f.Title,
			f.Value,
		})
	}
	return w.writeRows(rows)
}

// writeRows encodes rows into a buffer first so the byte count is exact.
func (w *CSVWriter) writeRows(rows [][]string) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = w.comma
	if err := cw.WriteAll(rows); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
