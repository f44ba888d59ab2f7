package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordColumns(t *testing.T) {
	t.Parallel()

	want := []string{
		"host", "sniname", "port", "minimum_tls_version", "heartbleed_vulnerable",
		"minimum_cipher_strength", "signature_algorithm", "public_key_entropy",
		"certificate_inception", "certificate_expiration", "validity_days",
		"certificate_expired", "self_signed",
	}

	got := RecordColumns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("RecordColumns() = %v, want %v", got, want)
	}

	got[0] = "changed"
	if RecordColumns()[0] != "host" {
		t.Error("RecordColumns must return a fresh slice")
	}
}

func TestScanRecordJSONNulls(t *testing.T) {
	t.Parallel()

	rec := ScanRecord{Host: "example.com", SNIName: "example.com", Port: 443}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := string(data)
	for _, field := range []string{
		`"minimum_tls_version":null`,
		`"minimum_cipher_strength":null`,
		`"validity_days":null`,
		`"certificate_inception":null`,
		`"heartbleed_vulnerable":"unknown"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected %s in %s", field, out)
		}
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	d := NewDate(time.Date(2023, time.March, 4, 13, 14, 15, 0, time.UTC))
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2023-03-04"` {
		t.Errorf("got %s, want \"2023-03-04\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Year() != 2023 || back.Month() != time.March || back.Day() != 4 {
		t.Errorf("unexpected date %v", back.Time)
	}
}

func TestEndpointKeyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  EndpointKey
		want string
	}{
		{EndpointKey{Host: "a.example", SNIName: "a.example", Port: 443}, "a.example:443"},
		{EndpointKey{Host: "10.0.0.1", SNIName: "b.example", Port: 8443}, "10.0.0.1:8443 (sni b.example)"},
		{EndpointKey{Host: "c.example", Port: 993}, "c.example:993"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
