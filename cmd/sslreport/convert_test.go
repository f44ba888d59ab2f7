package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sslreport/internal/config"
	"github.com/nao1215/sslreport/internal/database"
	"github.com/nao1215/sslreport/internal/report"
)

func TestNewConvertCmd(t *testing.T) {
	t.Parallel()

	cmd := NewConvertCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "format", shorthand: "f", defValue: config.DefaultFormat},
		{name: "output", shorthand: "o", defValue: ""},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "batch", shorthand: "b", defValue: "4"},
		{name: "strict", defValue: "false"},
		{name: "no-save", defValue: "false"},
		{name: "min-cipher-bits", defValue: "128"},
		{name: "max-validity-days", defValue: "398"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("shorthand = %q, want %q", flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("default = %q, want %q", flag.DefValue, tt.defValue)
			}
		})
	}

	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected an error without inputs")
	}
}

func TestRunConvert(t *testing.T) {
	t.Parallel()

	t.Run("writes csv to file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)
		output := filepath.Join(dir, "out", "report.csv")

		_, stderr, err := runCLI(t, nil, "convert", "--no-save", "-c", emptyConfig(t, dir), "-o", output, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), data)
		}
		if !strings.HasPrefix(lines[0], "host,sniname,port,minimum_tls_version") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.HasPrefix(lines[1], "www.example.com,www.example.com,443,tls 1.0,no,112 bit DES-CBC3-SHA") {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if !strings.HasPrefix(lines[2], "staging.example.com,staging.example.com,8443,tls 1.2,unknown,none") {
			t.Errorf("unexpected second row: %s", lines[2])
		}

		// The malformed entry is skipped with a warning.
		if !strings.Contains(stderr, "broken.example.com") {
			t.Errorf("expected a warning for the malformed entry, got: %s", stderr)
		}
	})

	t.Run("warnings are copied to the log file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)
		logPath := filepath.Join(dir, "logs", "sslreport.log")

		if _, _, err := runCLI(t, nil, "convert", "--no-save", "--log-file", logPath, "-c", emptyConfig(t, dir), "-o", "-", input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "broken.example.com") {
			t.Errorf("log file = %q, want the malformed entry warning", data)
		}
	})

	t.Run("text goes to stdout by default", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)

		stdout, _, err := runCLI(t, nil, "convert", "--no-save", "--no-color", "-c", emptyConfig(t, dir), "-f", "text", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "www.example.com") || !strings.Contains(stdout, "staging.example.com") {
			t.Errorf("expected both endpoints in output, got: %s", stdout)
		}
		if strings.Contains(stdout, "\x1b[") {
			t.Error("expected no colour escapes with --no-color")
		}
	})

	t.Run("reads stdin", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		stdout, _, err := runCLI(t, strings.NewReader(sampleXML),
			"convert", "--no-save", "-c", emptyConfig(t, dir), "-f", "json", "-o", "-", "-")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout)
		}
		if got.Report.Source != "stdin" {
			t.Errorf("source = %q, want stdin", got.Report.Source)
		}
		if len(got.Report.Records) != 2 {
			t.Errorf("records = %d, want 2", len(got.Report.Records))
		}
		if len(got.Report.Warnings) != 1 {
			t.Errorf("warnings = %d, want 1", len(got.Report.Warnings))
		}
	})

	t.Run("strict fails on warnings", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)

		_, _, err := runCLI(t, nil, "convert", "--no-save", "--strict", "-c", emptyConfig(t, dir), "-o", "-", input)
		if !errors.Is(err, ErrStrictWarnings) {
			t.Errorf("expected ErrStrictWarnings, got %v", err)
		}
	})

	t.Run("strict passes clean documents", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", hardenedXML)

		if _, _, err := runCLI(t, nil, "convert", "--no-save", "--strict", "-c", emptyConfig(t, dir), "-o", "-", input); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("config file ignores hosts and overrides null value", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)
		cfgPath := writeFile(t, dir, "sslreport.yaml", `
defaults:
  null_value: "n/a"
hosts:
  staging.example.com:
    ignore: true
`)

		stdout, _, err := runCLI(t, nil, "convert", "--no-save", "-c", cfgPath, "-o", "-", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, "staging.example.com") {
			t.Error("expected ignored host to be dropped")
		}
		if !strings.Contains(stdout, "n/a") {
			t.Errorf("expected configured null value, got: %s", stdout)
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)
		cfgPath := writeFile(t, dir, "sslreport.yaml", "defaults:\n  null_value: \"n/a\"\n")

		stdout, _, err := runCLI(t, nil, "convert", "--no-save", "-c", cfgPath, "--null-value", "NULL", "-o", "-", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, "n/a") || !strings.Contains(stdout, "NULL") {
			t.Errorf("expected flag null value to win, got: %s", stdout)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)

		_, _, err := runCLI(t, nil, "convert", "--no-save", "-c", filepath.Join(dir, "missing.yaml"), input)
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected config not found error, got %v", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)

		_, _, err := runCLI(t, nil, "convert", "--no-save", "-c", emptyConfig(t, dir), "-f", "xml", input)
		if !errors.Is(err, config.ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("one failure does not stop other inputs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "scan.xml", sampleXML)
		outDir := filepath.Join(dir, "reports")

		_, _, err := runCLI(t, nil, "convert", "--no-save", "-c", emptyConfig(t, dir), "-o", outDir,
			filepath.Join(dir, "missing.xml"), input)
		if err == nil || !strings.Contains(err.Error(), "missing.xml") {
			t.Fatalf("expected an error naming the missing input, got %v", err)
		}

		matches, err := filepath.Glob(filepath.Join(outDir, "sslscan_*_2.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Errorf("expected the second report to be written, found %v", matches)
		}
	})

	t.Run("saves to history", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		input := writeFile(t, dir, "scan.xml", sampleXML)

		for range 2 {
			if _, _, err := runCLI(t, nil, "convert", "--db-dir", dbDir, "-c", emptyConfig(t, dir), "-o", "-", input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		imports, err := db.ListImports(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list imports: %v", err)
		}
		if len(imports) != 2 {
			t.Fatalf("imports = %d, want 2", len(imports))
		}
		if imports[0].Digest != imports[1].Digest {
			t.Error("expected the same digest for the same document")
		}
		if imports[0].Records != 2 || imports[0].Warnings != 1 {
			t.Errorf("records = %d, warnings = %d", imports[0].Records, imports[0].Warnings)
		}
	})
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseOutput(t *testing.T) {
	t.Parallel()

	errClose := errors.New("disk full")
	errWrite := errors.New("write failed")

	tests := []struct {
		name     string
		closeErr error
		err      error
		want     []error
	}{
		{"clean close keeps nil", nil, nil, nil},
		{"clean close keeps write error", nil, errWrite, []error{errWrite}},
		{"close error is returned", errClose, nil, []error{errClose}},
		{"both errors are joined", errClose, errWrite, []error{errWrite, errClose}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := closeOutput(closerFunc(func() error { return tt.closeErr }), tt.err)
			if len(tt.want) == 0 {
				if got != nil {
					t.Errorf("closeOutput = %v, want nil", got)
				}
				return
			}
			for _, want := range tt.want {
				if !errors.Is(got, want) {
					t.Errorf("closeOutput = %v, want it to wrap %v", got, want)
				}
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 31, 15, 45, 0, 0, time.UTC)

	tests := []struct {
		name       string
		configured string
		format     report.OutputFormat
		n, i       int
		want       string
	}{
		{name: "stdout always wins", configured: "-", format: report.FormatCSV, n: 3, i: 1, want: "-"},
		{name: "single explicit file", configured: "out.csv", format: report.FormatCSV, n: 1, want: "out.csv"},
		{name: "single default file", format: report.FormatJSON, n: 1, want: "sslscan_20240131_154500.json"},
		{name: "single text to stdout", format: report.FormatText, n: 1, want: "-"},
		{name: "several text to stdout", format: report.FormatText, n: 2, i: 1, want: "-"},
		{name: "several default files", format: report.FormatCSV, n: 2, i: 1, want: "sslscan_20240131_154500_2.csv"},
		{name: "several into directory", configured: "reports", format: report.FormatMarkdown, n: 2, i: 0, want: filepath.Join("reports", "sslscan_20240131_154500_1.md")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := outputPath(tt.configured, tt.format, tt.n, tt.i, now); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
