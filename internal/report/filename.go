package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OutputFormat names a report format on the command line.
type OutputFormat string

// Supported output formats.
const (
	FormatCSV      OutputFormat = "csv"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
	FormatText     OutputFormat = "text"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

// ErrUnknownFormat is returned by ParseOutputFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// OutputFormats lists the supported formats.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatCSV, FormatJSON, FormatMarkdown, FormatText}
}

// ParseOutputFormat parses a format name. "md" is accepted for markdown.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for the format, without a dot.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// DefaultFileName returns the output file name used when none is given,
// e.g. "sslscan_20240131_154500.csv".
func DefaultFileName(f OutputFormat, now time.Time) string {
	return fmt.Sprintf("sslscan_%s.%s", now.Format("20060102_150405"), f.Extension())
}

// IndexedFileName is DefaultFileName for one of several reports written in
// the same run, e.g. "sslscan_20240131_154500_2.csv". Index is 1-based.
func IndexedFileName(f OutputFormat, now time.Time, index int) string {
	return fmt.Sprintf("sslscan_%s_%d.%s", now.Format("20060102_150405"), index, f.Extension())
}
