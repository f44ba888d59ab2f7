package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/nao1215/sslreport/internal/model"
)

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and rows in column order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, want %d", n, buf.Len())
		}

		want := strings.Join([]string{
			"host,sniname,port,minimum_tls_version,heartbleed_vulnerable,minimum_cipher_strength,signature_algorithm,public_key_entropy,certificate_inception,certificate_expiration,validity_days,certificate_expired,self_signed",
			"example.com,example.com,443,tls 1.2,no,128 bit AES128-GCM-SHA256,sha256WithRSAEncryption,2048,01/01/23,01/01/24,365,no,no",
			"10.0.0.1,10.0.0.1,8443,,unknown,none,,,,,,unknown,unknown",
			"",
		}, "\n")
		if got := buf.String(); got != want {
			t.Errorf("output =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("header only for empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(model.NewReport("empty.xml")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 1 || len(records[0]) != 13 {
			t.Errorf("records = %v, want header only", records)
		}
	})

	t.Run("per-host format and delimiter", func(t *testing.T) {
		t.Parallel()

		lookup := func(host string) Format {
			if host == "10.0.0.1" {
				return Format{DateFormat: DefaultDateFormat, NullValue: "NULL"}
			}
			return Format{DateFormat: "%Y-%m-%d"}
		}

		var buf bytes.Buffer
		w := NewCSVWriter(&buf, WithCSVFormat(lookup), WithDelimiter(';'))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r := csv.NewReader(&buf)
		r.Comma = ';'
		records, err := r.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if got := records[1][8]; got != "2023-01-01" {
			t.Errorf("certificate_inception = %q, want 2023-01-01", got)
		}
		if got := records[2][3]; got != "NULL" {
			t.Errorf("minimum_tls_version = %q, want NULL", got)
		}
		if got := records[2][5]; got != "none" {
			t.Errorf("minimum_cipher_strength = %q, want none", got)
		}
	})

	t.Run("quotes fields containing the delimiter", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("x")
		report.Records = []model.ScanRecord{{
			Host:               "a",
			SNIName:            "a",
			Port:               1,
			SignatureAlgorithm: model.StringPtr("rsa,pss"),
		}}

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"rsa,pss"`) {
			t.Errorf("expected quoted field, got:\n%s", buf.String())
		}
	})
}

func TestCSVWriter_WriteSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	summary := model.NewSummary(createWeakReport(), nil)
	if _, err := NewCSVWriter(&buf).WriteSummary(summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != len(summary.Findings)+1 {
		t.Fatalf("len(records) = %d, want %d", len(records), len(summary.Findings)+1)
	}
	if records[0][0] != "severity" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "legacy.example.com" || records[1][4] != "443" {
		t.Errorf("first finding row = %v", records[1])
	}
}
