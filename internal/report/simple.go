package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/sslreport/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SimpleWriter outputs human-readable text reports for the terminal.
//
// Colour is off unless WithColor(true) is given, so output piped to a file
// stays plain. When enabled, weak protocols, vulnerable or expired
// endpoints and severe findings are highlighted.
type SimpleWriter struct {
	baseWriter

	format FormatLookup
	policy model.PolicyLookup
	title  cases.Caser

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose adds impact and recommendation text to findings.
	verbose bool

	bad  *color.Color
	warn *color.Color
	good *color.Color
	bold *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables or disables ANSI colour.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range []*color.Color{w.bad, w.warn, w.good, w.bold} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithSimpleFormat sets the per-host cell format.
func WithSimpleFormat(lookup FormatLookup) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.format = lookup
	}
}

// WithSimplePolicy sets the policy used to derive findings.
func WithSimplePolicy(policy model.PolicyLookup) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.policy = policy
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
		bad:        color.New(color.FgRed, color.Bold),
		warn:       color.New(color.FgYellow),
		good:       color.New(color.FgGreen),
		bold:       color.New(color.Bold),
	}
	WithColor(false)(w)

	for _, opt := range opts {
		opt(w)
	}
	if w.format == nil {
		w.format = func(string) Format { return DefaultFormat() }
	}
	if w.policy == nil {
		w.policy = func(string) model.Policy { return model.DefaultPolicy() }
	}
	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder
	summary := model.NewSummary(report, w.policy)

	w.writeHeader(&sb, report)
	w.writeEndpoints(&sb, report)
	w.writeSummary(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeWarnings(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteSummary outputs only the severity summary and findings.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeSummary(&sb, summary)
	w.writeFindings(&sb, summary)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with import information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           SSLSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:     %s\n", report.Source)
	fmt.Fprintf(sb, "Generated:  %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if report.ScannerVersion != "" {
		fmt.Fprintf(sb, "Scanner:    sslscan %s\n", report.ScannerVersion)
	}
	fmt.Fprintf(sb, "Endpoints:  %d\n", len(report.Records))
	if len(report.Warnings) > 0 {
		fmt.Fprintf(sb, "Warnings:   %s\n", w.warn.Sprint(len(report.Warnings)))
	}
	sb.WriteString("\n")
}

// writeEndpoints writes one block per record.
func (w *SimpleWriter) writeEndpoints(sb *strings.Builder, report *model.Report) {
	if len(report.Records) == 0 && !w.showEmpty {
		return
	}

	section(sb, "ENDPOINTS")

	if len(report.Records) == 0 {
		sb.WriteString("  No endpoints\n\n")
		return
	}

	for _, rec := range report.Records {
		w.writeRecord(sb, rec, w.format(rec.Host), w.policy(rec.Host))
	}
}

func (w *SimpleWriter) writeRecord(sb *strings.Builder, rec model.ScanRecord, f Format, policy model.Policy) {
	fmt.Fprintf(sb, "  %s\n", w.bold.Sprint(rec.Key().String()))

	protocol := w.warn.Sprint("none enabled")
	if v := rec.MinimumTLSVersion; v != nil {
		switch {
		case *v <= model.SSLv3:
			protocol = w.bad.Sprint(v.String())
		case v.Deprecated():
			protocol = w.warn.Sprint(v.String())
		default:
			protocol = w.good.Sprint(v.String())
		}
	}
	fmt.Fprintf(sb, "    Minimum protocol:  %s\n", protocol)

	cipher := w.warn.Sprint(NoCipher)
	if c := rec.MinimumCipherStrength; c != nil {
		cipher = c.String()
		if c.Strength != "" {
			cipher += " (" + w.title.String(c.Strength) + ")"
		}
		if policy.MinCipherBits > 0 && c.Bits < policy.MinCipherBits {
			cipher = w.bad.Sprint(cipher)
		}
	}
	fmt.Fprintf(sb, "    Minimum cipher:    %s\n", cipher)

	fmt.Fprintf(sb, "    Heartbleed:        %s\n", w.flag(rec.HeartbleedVulnerable))

	if !rec.HasCertificate() {
		sb.WriteString("    Certificate:       not reported\n\n")
		return
	}

	row := f.Row(rec)
	fmt.Fprintf(sb, "    Signature:         %s\n", orDash(row[6]))
	fmt.Fprintf(sb, "    Public key bits:   %s\n", orDash(row[7]))

	validity := orDash(row[8]) + " - " + orDash(row[9])
	if rec.ValidityDays != nil {
		days := fmt.Sprintf("(%d days)", *rec.ValidityDays)
		if policy.MaxValidityDays > 0 && *rec.ValidityDays > policy.MaxValidityDays {
			days = w.warn.Sprint(days)
		}
		validity += " " + days
	}
	fmt.Fprintf(sb, "    Valid:             %s\n", validity)
	fmt.Fprintf(sb, "    Expired:           %s\n", w.flag(rec.CertificateExpired))
	fmt.Fprintf(sb, "    Self-signed:       %s\n", w.flag(rec.SelfSigned))
	sb.WriteString("\n")
}

// flag renders a tri-state where "yes" is the bad outcome.
func (w *SimpleWriter) flag(t model.TriState) string {
	switch t {
	case model.TriStateTrue:
		return w.bad.Sprint(t.String())
	case model.TriStateFalse:
		return w.good.Sprint(t.String())
	default:
		return t.String()
	}
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *model.Summary) {
	section(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", summary.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", summary.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", summary.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", summary.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", summary.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d findings\n\n", summary.TotalFindings())
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, summary *model.Summary) {
	if !summary.HasFindings() && !w.showEmpty {
		return
	}

	section(sb, "FINDINGS")

	for _, severity := range model.Severities() {
		findings := summary.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	label := fmt.Sprintf("[%s] %s", severityIndicator(severity), severity.String())
	if severity >= model.SeverityHigh {
		label = w.bad.Sprint(label)
	}
	sb.WriteString(label + "\n")

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, f := range findings {
		fmt.Fprintf(sb, "  * %s\n", f.Title)
		fmt.Fprintf(sb, "    Endpoint: %s\n", f.Endpoint.String())
		if f.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", f.Value)
		}
		if w.verbose {
			if f.Impact != "" {
				fmt.Fprintf(sb, "    Impact: %s\n", f.Impact)
			}
			if f.Recommendation != "" {
				fmt.Fprintf(sb, "    Recommendation: %s\n", f.Recommendation)
			}
		}
	}
	sb.WriteString("\n")
}

// writeWarnings lists normalization warnings and scanner errors.
func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.Report) {
	if len(report.Warnings) == 0 && len(report.DocumentErrors) == 0 {
		return
	}

	section(sb, "WARNINGS")

	for _, wr := range report.Warnings {
		fmt.Fprintf(sb, "  [%s] entry %d: %s\n", w.warn.Sprint(wr.Kind), wr.Index, wr.Message)
	}
	for _, e := range report.DocumentErrors {
		fmt.Fprintf(sb, "  [%s] %s\n", w.warn.Sprint("sslscan"), strings.TrimSpace(e))
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sslreport\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
