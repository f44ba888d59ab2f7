package report

import (
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sslreport/internal/model"
)

func TestFormat_Row(t *testing.T) {
	t.Parallel()

	report := createTestReport()

	tests := []struct {
		name   string
		format Format
		rec    model.ScanRecord
		want   string
	}{
		{
			name:   "full record default format",
			format: DefaultFormat(),
			rec:    report.Records[0],
			want:   "example.com|example.com|443|tls 1.2|no|128 bit AES128-GCM-SHA256|sha256WithRSAEncryption|2048|01/01/23|01/01/24|365|no|no",
		},
		{
			name:   "bare record default format",
			format: DefaultFormat(),
			rec:    report.Records[1],
			want:   "10.0.0.1|10.0.0.1|8443||unknown|none||||||unknown|unknown",
		},
		{
			name:   "custom null and date",
			format: Format{DateFormat: "%Y-%m-%d", NullValue: "N/A"},
			rec:    report.Records[1],
			want:   "10.0.0.1|10.0.0.1|8443|N/A|unknown|none|N/A|N/A|N/A|N/A|N/A|unknown|unknown",
		},
		{
			name:   "iso dates",
			format: Format{DateFormat: "%Y-%m-%d"},
			rec:    report.Records[0],
			want:   "example.com|example.com|443|tls 1.2|no|128 bit AES128-GCM-SHA256|sha256WithRSAEncryption|2048|2023-01-01|2024-01-01|365|no|no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			row := tt.format.Row(tt.rec)
			if len(row) != len(model.RecordColumns()) {
				t.Fatalf("len(row) = %d, want %d", len(row), len(model.RecordColumns()))
			}
			if got := strings.Join(row, "|"); got != tt.want {
				t.Errorf("Row() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestFormat_DateDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	got := Format{}.Date(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	if got != "12/31/25" {
		t.Errorf("Date() = %q, want 12/31/25", got)
	}
}

func TestCipherCell(t *testing.T) {
	t.Parallel()

	if got := CipherCell(nil); got != "none" {
		t.Errorf("CipherCell(nil) = %q, want none", got)
	}
	c := &model.CipherStrength{Bits: 0, Name: "NULL-SHA"}
	if got := CipherCell(c); got != "0 bit NULL-SHA" {
		t.Errorf("CipherCell() = %q", got)
	}
}

func TestValidateDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		wantErr bool
	}{
		{pattern: "%m/%d/%y"},
		{pattern: "%Y-%m-%d"},
		{pattern: "%d %b %Y"},
		{pattern: "", wantErr: true},
		{pattern: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()

			err := ValidateDateFormat(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDateFormat(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestProtocolDistribution(t *testing.T) {
	t.Parallel()

	report := model.NewReport("x")
	report.Records = []model.ScanRecord{
		{MinimumTLSVersion: model.ProtocolPtr(model.TLSv12)},
		{},
		{MinimumTLSVersion: model.ProtocolPtr(model.TLSv10)},
		{MinimumTLSVersion: model.ProtocolPtr(model.TLSv12)},
	}

	got := protocolDistribution(report)
	want := []labelCount{{"tls 1.0", 1}, {"tls 1.2", 2}, {"none", 1}}
	if len(got) != len(want) {
		t.Fatalf("protocolDistribution() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
