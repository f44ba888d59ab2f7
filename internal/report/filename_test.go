package report

import (
	"errors"
	"testing"
	"time"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: "JSON", want: FormatJSON},
		{input: "md", want: FormatMarkdown},
		{input: " markdown ", want: FormatMarkdown},
		{input: "text", want: FormatText},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("error = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 31, 15, 45, 0, 0, time.UTC)

	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatCSV, "sslscan_20240131_154500.csv"},
		{FormatJSON, "sslscan_20240131_154500.json"},
		{FormatMarkdown, "sslscan_20240131_154500.md"},
		{FormatText, "sslscan_20240131_154500.txt"},
	}

	for _, tt := range tests {
		if got := DefaultFileName(tt.format, now); got != tt.want {
			t.Errorf("DefaultFileName(%s) = %s, want %s", tt.format, got, tt.want)
		}
	}
}

func TestIndexedFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 31, 15, 45, 0, 0, time.UTC)

	if got, want := IndexedFileName(FormatMarkdown, now, 2), "sslscan_20240131_154500_2.md"; got != want {
		t.Errorf("IndexedFileName() = %s, want %s", got, want)
	}
	if IndexedFileName(FormatCSV, now, 1) == IndexedFileName(FormatCSV, now, 2) {
		t.Error("IndexedFileName() should differ per index")
	}
}
