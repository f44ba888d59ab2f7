// Package report renders normalized sslscan reports.
//
// This package contains writers for different output formats:
//   - CSVWriter: one row per endpoint, fixed column order, for spreadsheets
//   - JSONWriter / FullJSONWriter: structured output for tool integration
//   - MarkdownWriter: tables, a protocol distribution chart and findings
//   - SimpleWriter: human-readable terminal output with optional colour
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so that new output formats never touch
// the normalized records.
//
// Tabular writers share one cell formatter (see Format). Null values are
// rendered with a configurable placeholder, except for the minimum cipher
// strength, where an empty accepted-cipher list is always written as "none"
// so that it cannot be mistaken for a 0-bit cipher.
package report
