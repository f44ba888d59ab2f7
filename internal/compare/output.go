package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/markdown"
	"github.com/nao1215/sslreport/internal/model"
)

// none is written where one side of a change has no value.
const none = "none"

// WriteJSON outputs the comparison result as indented JSON.
func WriteJSON(w io.Writer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// TextOptions configures WriteText.
type TextOptions struct {
	// Color highlights regressions in red and improvements in green.
	Color bool
}

// WriteText outputs the comparison result in human-readable text format.
func WriteText(w io.Writer, r *Result, opts TextOptions) error {
	bad := color.New(color.FgRed, color.Bold)
	good := color.New(color.FgGreen)
	for _, c := range []*color.Color{bad, good} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	paint := func(d Direction, s string) string {
		switch d {
		case Worsened:
			return bad.Sprint(s)
		case Improved:
			return good.Sprint(s)
		default:
			return s
		}
	}

	var b strings.Builder
	b.WriteString("Report Comparison\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "\nRisk Status: %s\n", paint(r.RiskChange.Direction, formatRiskDirection(r.RiskChange.Direction)))
	fmt.Fprintf(&b, "\nPrevious: %s\n", snapshotLabel(r.Previous))
	fmt.Fprintf(&b, "Current:  %s\n", snapshotLabel(r.Current))

	b.WriteString("\nFindings Summary:\n")
	fmt.Fprintf(&b, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	b.WriteString("  " + strings.Repeat("-", 45) + "\n")
	for _, row := range severityRows(r) {
		fmt.Fprintf(&b, "  %-10s  %-10d  %-10d  %-10s\n", row.label, row.previous, row.current, formatDelta(row.current-row.previous))
	}

	if len(r.AddedEndpoints) > 0 {
		fmt.Fprintf(&b, "\nAdded Endpoints (%d):\n", len(r.AddedEndpoints))
		for _, k := range r.AddedEndpoints {
			fmt.Fprintf(&b, "  [+] %s\n", k)
		}
	}
	if len(r.RemovedEndpoints) > 0 {
		fmt.Fprintf(&b, "\nRemoved Endpoints (%d):\n", len(r.RemovedEndpoints))
		for _, k := range r.RemovedEndpoints {
			fmt.Fprintf(&b, "  [-] %s\n", k)
		}
	}
	if len(r.ProtocolChanges) > 0 {
		fmt.Fprintf(&b, "\nProtocol Changes (%d):\n", len(r.ProtocolChanges))
		for _, c := range r.ProtocolChanges {
			line := fmt.Sprintf("%s: %s -> %s (%s)", c.Endpoint, protocolText(c.Previous), protocolText(c.Current), c.Direction)
			fmt.Fprintf(&b, "  %s\n", paint(c.Direction, line))
		}
	}
	if len(r.CipherChanges) > 0 {
		fmt.Fprintf(&b, "\nCipher Changes (%d):\n", len(r.CipherChanges))
		for _, c := range r.CipherChanges {
			line := fmt.Sprintf("%s: %s -> %s (%s)", c.Endpoint, cipherText(c.Previous), cipherText(c.Current), c.Direction)
			fmt.Fprintf(&b, "  %s\n", paint(c.Direction, line))
		}
	}
	if len(r.ExpiryChanges) > 0 {
		fmt.Fprintf(&b, "\nCertificate Expiry Changes (%d):\n", len(r.ExpiryChanges))
		for _, c := range r.ExpiryChanges {
			fmt.Fprintf(&b, "  %s\n", paint(c.Direction, expiryText(c)))
		}
	}

	if len(r.NewFindings) > 0 {
		fmt.Fprintf(&b, "\nNew Findings (%d):\n", len(r.NewFindings))
		for _, f := range r.NewFindings {
			fmt.Fprintf(&b, "  [+] [%s] %s\n", f.SeverityText, findingText(f))
		}
	}
	if len(r.ResolvedFindings) > 0 {
		fmt.Fprintf(&b, "\nResolved Findings (%d):\n", len(r.ResolvedFindings))
		for _, f := range r.ResolvedFindings {
			fmt.Fprintf(&b, "  [-] [%s] %s\n", f.SeverityText, findingText(f))
		}
	}
	if r.UnchangedFindings > 0 {
		fmt.Fprintf(&b, "\nUnchanged: %d findings\n", r.UnchangedFindings)
	}
	if !r.HasChanges() {
		b.WriteString("\nNo differences.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMarkdown outputs the comparison result in Markdown format.
func WriteMarkdown(w io.Writer, r *Result) error {
	md := markdown.NewMarkdown(w)

	md.H1("Report Comparison")
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Risk Status:"), formatRiskDirection(r.RiskChange.Direction))
	md.PlainText("")

	rows := [][]string{
		{"Source", markdown.Code(r.Previous.Source), markdown.Code(r.Current.Source), "-"},
		{"Generated", r.Previous.GeneratedAt.Format("2006-01-02 15:04"), r.Current.GeneratedAt.Format("2006-01-02 15:04"), "-"},
		{"Endpoints", strconv.Itoa(r.Previous.Endpoints), strconv.Itoa(r.Current.Endpoints), formatDelta(r.Current.Endpoints - r.Previous.Endpoints)},
	}
	for _, row := range severityRows(r) {
		rows = append(rows, []string{row.label, strconv.Itoa(row.previous), strconv.Itoa(row.current), formatDelta(row.current - row.previous)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(r.AddedEndpoints) > 0 || len(r.RemovedEndpoints) > 0 {
		md.H2("Endpoints")
		md.PlainText("")
		items := make([]string, 0, len(r.AddedEndpoints)+len(r.RemovedEndpoints))
		for _, k := range r.AddedEndpoints {
			items = append(items, "added "+markdown.Code(k.String()))
		}
		for _, k := range r.RemovedEndpoints {
			items = append(items, "removed "+markdown.Code(k.String()))
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(r.ProtocolChanges) > 0 || len(r.CipherChanges) > 0 || len(r.ExpiryChanges) > 0 {
		md.H2("Endpoint Changes")
		md.PlainText("")
		var changes [][]string
		for _, c := range r.ProtocolChanges {
			changes = append(changes, []string{c.Endpoint.String(), "protocol", protocolText(c.Previous), protocolText(c.Current), string(c.Direction)})
		}
		for _, c := range r.CipherChanges {
			changes = append(changes, []string{c.Endpoint.String(), "cipher", cipherText(c.Previous), cipherText(c.Current), string(c.Direction)})
		}
		for _, c := range r.ExpiryChanges {
			changes = append(changes, []string{c.Endpoint.String(), "expiry", dateText(c.Previous, c.PreviousExpired), dateText(c.Current, c.CurrentExpired), string(c.Direction)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Endpoint", "Field", "Previous", "Current", "Direction"},
			Rows:   changes,
		})
		md.PlainText("")
		if n := r.Regressions(); n > 0 {
			md.Warningf("%d endpoint regression(s) since the previous report.", n)
			md.PlainText("")
		}
	}

	if len(r.NewFindings) > 0 {
		md.H2f("New Findings (%d)", len(r.NewFindings))
		md.PlainText("")
		items := make([]string, 0, len(r.NewFindings))
		for _, f := range r.NewFindings {
			items = append(items, markdown.Bold("["+f.SeverityText+"]")+" "+findingText(f))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if len(r.ResolvedFindings) > 0 {
		md.H2f("Resolved Findings (%d)", len(r.ResolvedFindings))
		md.PlainText("")
		items := make([]string, 0, len(r.ResolvedFindings))
		for _, f := range r.ResolvedFindings {
			items = append(items, markdown.Strikethrough("["+f.SeverityText+"] "+findingText(f)))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if r.UnchangedFindings > 0 {
		md.HorizontalRule()
		md.PlainTextf("*%d findings unchanged*", r.UnchangedFindings)
	}
	if !r.HasChanges() {
		md.Note("No differences between the reports.")
	}

	return md.Build()
}

type severityRow struct {
	label             string
	previous, current int
}

func severityRows(r *Result) []severityRow {
	p, c := r.Previous, r.Current
	return []severityRow{
		{"Critical", p.CriticalCount, c.CriticalCount},
		{"High", p.HighCount, c.HighCount},
		{"Medium", p.MediumCount, c.MediumCount},
		{"Low", p.LowCount, c.LowCount},
		{"Info", p.InfoCount, c.InfoCount},
		{"Total", p.TotalFindings(), c.TotalFindings()},
	}
}

func snapshotLabel(s Snapshot) string {
	label := s.Source + " (" + s.GeneratedAt.Format("2006-01-02 15:04:05") + ")"
	if s.ImportID > 0 {
		label = "#" + strconv.FormatInt(s.ImportID, 10) + " " + label
	}
	return label
}

func protocolText(v *model.ProtocolVersion) string {
	if v == nil {
		return none
	}
	return v.String()
}

func cipherText(c *model.CipherStrength) string {
	if c == nil {
		return none
	}
	return c.String()
}

func dateText(d *model.Date, expired model.TriState) string {
	s := none
	if d != nil {
		s = d.Format(time.DateOnly)
	}
	if expired.IsTrue() {
		s += " (expired)"
	}
	return s
}

func expiryText(c ExpiryChange) string {
	return fmt.Sprintf("%s: %s -> %s (%s)", c.Endpoint,
		dateText(c.Previous, c.PreviousExpired), dateText(c.Current, c.CurrentExpired), c.Direction)
}

func findingText(f model.Finding) string {
	s := f.Endpoint.String() + " " + f.Title
	if f.Value != "" {
		s += ": " + f.Value
	}
	return s
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(d Direction) string {
	switch d {
	case Improved:
		return "IMPROVED (risk decreased)"
	case Worsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
