package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/sslreport/internal/model"
	"github.com/ncruces/go-strftime"
)

const (
	// DefaultDateFormat is the strftime pattern used for certificate dates.
	DefaultDateFormat = "%m/%d/%y"

	// DefaultNullValue is the placeholder written for null cells.
	DefaultNullValue = ""

	// NoCipher is written when an endpoint accepted no cipher.
	NoCipher = "none"
)

// Format controls how record cells are rendered.
type Format struct {
	// DateFormat is a strftime pattern, e.g. "%Y-%m-%d".
	DateFormat string

	// NullValue replaces fields the scanner did not report.
	NullValue string
}

// DefaultFormat returns the built-in cell format.
func DefaultFormat() Format {
	return Format{DateFormat: DefaultDateFormat, NullValue: DefaultNullValue}
}

// FormatLookup returns the cell format for a host.
type FormatLookup func(host string) Format

// ValidateDateFormat reports whether pattern is a usable strftime pattern.
func ValidateDateFormat(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("date format must not be empty")
	}
	if _, err := strftime.Layout(pattern); err != nil {
		return fmt.Errorf("invalid date format %q: %w", pattern, err)
	}
	return nil
}

// Row renders rec as cells in model.RecordColumns order.
func (f Format) Row(rec model.ScanRecord) []string {
	return []string{
		rec.Host,
		rec.SNIName,
		strconv.Itoa(rec.Port),
		f.protocol(rec.MinimumTLSVersion),
		rec.HeartbleedVulnerable.String(),
		CipherCell(rec.MinimumCipherStrength),
		f.text(rec.SignatureAlgorithm),
		f.number(rec.PublicKeyBits),
		f.date(rec.NotBefore),
		f.date(rec.NotAfter),
		f.number(rec.ValidityDays),
		rec.CertificateExpired.String(),
		rec.SelfSigned.String(),
	}
}

// Date renders t with the format's date pattern.
func (f Format) Date(t time.Time) string {
	pattern := f.DateFormat
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	return strftime.Format(pattern, t)
}

// CipherCell renders a minimum cipher strength, or NoCipher when nil.
func CipherCell(c *model.CipherStrength) string {
	if c == nil {
		return NoCipher
	}
	return c.String()
}

func (f Format) protocol(v *model.ProtocolVersion) string {
	if v == nil {
		return f.NullValue
	}
	return v.String()
}

func (f Format) text(s *string) string {
	if s == nil {
		return f.NullValue
	}
	return *s
}

func (f Format) number(n *int) string {
	if n == nil {
		return f.NullValue
	}
	return strconv.Itoa(*n)
}

func (f Format) date(d *model.Date) string {
	if d == nil {
		return f.NullValue
	}
	return f.Date(d.Time)
}

// rowFormatter resolves the per-host format for tabular writers.
type rowFormatter struct {
	lookup FormatLookup
}

func newRowFormatter(lookup FormatLookup) rowFormatter {
	if lookup == nil {
		lookup = func(string) Format { return DefaultFormat() }
	}
	return rowFormatter{lookup: lookup}
}

func (r rowFormatter) row(rec model.ScanRecord) []string {
	return r.lookup(rec.Host).Row(rec)
}

// labelCount is one slice of a distribution.
type labelCount struct {
	label string
	count int
}

// protocolDistribution returns the report's minimum protocol counts in
// ladder order, followed by endpoints with no enabled protocol.
func protocolDistribution(report *model.Report) []labelCount {
	dist := report.ProtocolDistribution()
	out := make([]labelCount, 0, len(dist))
	for _, v := range model.Ladder() {
		if n := dist[v.String()]; n > 0 {
			out = append(out, labelCount{label: v.String(), count: n})
		}
	}
	if n := dist["none"]; n > 0 {
		out = append(out, labelCount{label: "none", count: n})
	}
	return out
}
