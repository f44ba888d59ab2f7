package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/sslreport/internal/model"
)

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes records with nulls", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Source  string           `json:"source"`
			Records []map[string]any `json:"records"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Source != "scan.xml" || len(decoded.Records) != 2 {
			t.Fatalf("decoded = %+v", decoded)
		}

		first := decoded.Records[0]
		if first["minimum_tls_version"] != "tls 1.2" {
			t.Errorf("minimum_tls_version = %v", first["minimum_tls_version"])
		}
		if first["certificate_inception"] != "2023-01-01" {
			t.Errorf("certificate_inception = %v", first["certificate_inception"])
		}
		if first["heartbleed_vulnerable"] != "no" {
			t.Errorf("heartbleed_vulnerable = %v", first["heartbleed_vulnerable"])
		}

		second := decoded.Records[1]
		for _, key := range []string{"minimum_tls_version", "minimum_cipher_strength", "signature_algorithm", "validity_days"} {
			v, ok := second[key]
			if !ok || v != nil {
				t.Errorf("%s = %v (present %v), want null", key, v, ok)
			}
		}
		if second["self_signed"] != "unknown" {
			t.Errorf("self_signed = %v", second["self_signed"])
		}
	})

	t.Run("round trips into model.Report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Report
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		rec := got.Records[0]
		if rec.MinimumTLSVersion == nil || *rec.MinimumTLSVersion != model.TLSv12 {
			t.Errorf("MinimumTLSVersion = %v", rec.MinimumTLSVersion)
		}
		if rec.NotAfter == nil || rec.NotAfter.Format("2006-01-02") != "2024-01-01" {
			t.Errorf("NotAfter = %v", rec.NotAfter)
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"source\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := model.NewSummary(createWeakReport(), nil)
		if _, err := NewJSONWriter(&buf).WriteSummary(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.CriticalCount != summary.CriticalCount || len(decoded.Findings) != len(summary.Findings) {
			t.Errorf("decoded = %+v", decoded)
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "v1.2.3", nil, WithPrettyPrint())
	if _, err := w.Write(createWeakReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("Version = %s", decoded.Version)
	}
	if len(decoded.Columns) != 13 || decoded.Columns[0] != "host" {
		t.Errorf("Columns = %v", decoded.Columns)
	}
	if decoded.Report == nil || len(decoded.Report.Warnings) != 1 {
		t.Errorf("Report = %+v", decoded.Report)
	}
	if decoded.Summary == nil || decoded.Summary.CriticalCount == 0 {
		t.Errorf("Summary = %+v", decoded.Summary)
	}
}
