package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sslreport/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, mermaid charts and
// GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter

	formatter rowFormatter
	policy    model.PolicyLookup
	title     cases.Caser
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownFormat sets the per-host cell format of the endpoint table.
func WithMarkdownFormat(lookup FormatLookup) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.formatter = newRowFormatter(lookup)
	}
}

// WithMarkdownPolicy sets the policy used to derive findings.
func WithMarkdownPolicy(policy model.PolicyLookup) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.policy = policy
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		formatter:  newRowFormatter(nil),
		title:      cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.NewSummary(report, w.policy)

	w.writeHeader(md, report)
	w.writeDistribution(md, report)
	w.writeEndpoints(md, report)
	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeWarnings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the findings in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("sslscan Findings")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + summary.Source + "`"},
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Endpoints", strconv.Itoa(summary.Endpoints)},
		},
	})
	md.PlainText("")

	w.writeSummary(md, summary)
	w.writeFindings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with import information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("sslscan Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + report.Source + "`"},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Endpoints", strconv.Itoa(len(report.Records))},
		{"Warnings", strconv.Itoa(len(report.Warnings))},
	}
	if report.ScannerVersion != "" {
		rows = append(rows, []string{"Scanner Version", report.ScannerVersion})
	}
	if report.Digest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + shortDigest(report.Digest) + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDistribution writes a mermaid pie chart of minimum protocols.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, report *model.Report) {
	dist := protocolDistribution(report)
	if len(dist) == 0 {
		return
	}

	md.H2("Minimum Protocol Distribution")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Weakest Enabled Protocol per Endpoint"),
		piechart.WithShowData(true),
	)
	for _, d := range dist {
		chart.LabelAndIntValue(w.title.String(d.label), uint64(d.count))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeEndpoints writes one table row per record.
func (w *MarkdownWriter) writeEndpoints(md *markdown.Markdown, report *model.Report) {
	md.H2("Endpoints")
	md.PlainText("")

	if len(report.Records) == 0 {
		md.PlainText("No endpoint could be normalized.")
		md.PlainText("")
		return
	}

	columns := model.RecordColumns()
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = w.title.String(strings.ReplaceAll(c, "_", " "))
	}

	rows := make([][]string, len(report.Records))
	for i, rec := range report.Records {
		row := w.formatter.row(rec)
		for j, cell := range row {
			if cell == "" {
				row[j] = "-"
			}
		}
		rows[i] = row
	}

	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

// writeSummary writes the severity summary table and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(summary.CriticalCount)},
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case summary.CriticalCount > 0:
		md.Cautionf(
			"Critical TLS issues detected! %d critical finding(s) require immediate attention.",
			summary.CriticalCount,
		)
	case summary.HighCount > 0:
		md.Warningf(
			"High severity issues detected. %d high severity finding(s) should be addressed.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"Deprecated configurations found. %d medium severity finding(s).",
			summary.MediumCount,
		)
	case summary.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No TLS configuration issues detected.")
	}
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	if !summary.HasFindings() {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	for _, sev := range model.Severities() {
		findings := summary.GetFindingsBySeverity(sev)
		if len(findings) == 0 {
			continue
		}

		md.H3(severityHeader(sev))
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.Title,
			"`" + f.Endpoint.String() + "`",
			orDash(f.Value),
			truncateString(orDash(f.Recommendation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Endpoint", "Value", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	// One details block per finding type is enough; impact text is per type.
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Impact == "" || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		md.Details(f.Title, f.Impact)
	}
	md.PlainText("")
}

// writeWarnings lists normalization warnings and scanner errors.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.Report) {
	if len(report.Warnings) == 0 && len(report.DocumentErrors) == 0 {
		return
	}

	md.H2("Warnings")
	md.PlainText("")

	items := make([]string, 0, len(report.Warnings)+len(report.DocumentErrors))
	for _, wr := range report.Warnings {
		items = append(items, "entry "+strconv.Itoa(wr.Index)+" ("+wr.Kind+"): "+wr.Message)
	}
	for _, e := range report.DocumentErrors {
		items = append(items, "sslscan: "+strings.TrimSpace(e))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sslreport](https://github.com/nao1215/sslreport)*")
}

// severityHeader returns the heading text for a severity group.
func severityHeader(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴 Critical"
	case model.SeverityHigh:
		return "🟠 High"
	case model.SeverityMedium:
		return "🟡 Medium"
	case model.SeverityLow:
		return "🔵 Low"
	default:
		return "⚪ Info"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(d string) string {
	if len(d) <= 16 {
		return d
	}
	return d[:16]
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
