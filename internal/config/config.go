package config

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sslreport"

	// DefaultFormat writes CSV, the layout downstream spreadsheets expect.
	DefaultFormat = string(report.FormatCSV)

	// DefaultBatchSize is the number of input files converted at once.
	DefaultBatchSize = 4

	// DefaultHistoryFile is the SQLite file name inside the data directory.
	DefaultHistoryFile = "history.db"
)

// DefaultConcurrency is the number of scan entries normalized at once.
var DefaultConcurrency = runtime.NumCPU()

// Config holds all configuration options for sslreport.
// This struct is populated from the config file and CLI flags and passed
// through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Per-host overrides live in HostConfigs and are resolved
// through FormatFor, PolicyFor and Ignored.
type Config struct {
	// Inputs are the sslscan XML files to convert. "-" reads stdin.
	Inputs []string

	// Format is the output format name (csv, json, markdown, text).
	Format string

	// OutputPath is where the report is written. "-" means stdout.
	// When empty, text goes to stdout and other formats to a
	// timestamped file in the working directory.
	OutputPath string

	// DateFormat is the strftime pattern for certificate dates.
	DateFormat string

	// NullValue is written for fields the scanner did not report.
	NullValue string

	// MinCipherBits flags endpoints whose weakest cipher is below it.
	// Zero disables the check.
	MinCipherBits int

	// MaxValidityDays flags certificates valid for longer than this.
	// Zero disables the check.
	MaxValidityDays int

	// Concurrency is the number of scan entries normalized in parallel.
	Concurrency int

	// BatchSize is the number of input files converted in parallel.
	BatchSize int

	// Strict turns normalization warnings into a failed run.
	Strict bool

	// SaveToDB stores every converted report in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/sslreport on Linux).
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// Color enables ANSI colour in text output.
	Color bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the usual locations (see FindConfigFile).
	ConfigFilePath string

	// HostConfigs holds the configuration file, if one was loaded.
	HostConfigs *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Format:          DefaultFormat,
		DateFormat:      report.DefaultDateFormat,
		NullValue:       report.DefaultNullValue,
		MinCipherBits:   model.DefaultMinCipherBits,
		MaxValidityDays: model.DefaultMaxValidityDays,
		Concurrency:     DefaultConcurrency,
		BatchSize:       DefaultBatchSize,
		SaveToDB:        true,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sslreport.
// On Linux: ~/.local/share/sslreport
// On macOS: ~/Library/Application Support/sslreport
// On Windows: %LOCALAPPDATA%\sslreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sslreport.
// On Linux: ~/.config/sslreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryPath returns the path of the history database file.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DBDir, DefaultHistoryFile)
}

// ApplyFile copies the file's defaults into the config and keeps the file
// for per-host lookups. Fields the file leaves empty keep their value.
// Call it before applying CLI flags so that flags win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.HostConfigs = f

	d := f.Defaults
	if d.DateFormat != "" {
		c.DateFormat = d.DateFormat
	}
	if d.NullValue != nil {
		c.NullValue = *d.NullValue
	}
	if d.MinCipherBits != 0 {
		c.MinCipherBits = max(d.MinCipherBits, 0)
	}
	if d.MaxValidityDays != 0 {
		c.MaxValidityDays = max(d.MaxValidityDays, 0)
	}
}

// hostConfig returns the per-host entry, or the zero value.
// File defaults are not included: ApplyFile already folded them into c,
// below any flags applied afterwards.
func (c *Config) hostConfig(host string) HostConfig {
	if c.HostConfigs == nil {
		return HostConfig{}
	}
	hc, _ := c.HostConfigs.HostEntry(host)
	return hc
}

// FormatFor returns the cell format for a host.
// A host entry in the config file wins over the global settings.
func (c *Config) FormatFor(host string) report.Format {
	f := report.Format{DateFormat: c.DateFormat, NullValue: c.NullValue}

	h := c.hostConfig(host)
	if h.DateFormat != "" {
		f.DateFormat = h.DateFormat
	}
	if h.NullValue != nil {
		f.NullValue = *h.NullValue
	}
	return f
}

// PolicyFor returns the policy thresholds for a host.
// In host entries, a negative threshold disables the check for that host.
func (c *Config) PolicyFor(host string) model.Policy {
	p := model.Policy{MinCipherBits: c.MinCipherBits, MaxValidityDays: c.MaxValidityDays}

	h := c.hostConfig(host)
	if h.MinCipherBits != 0 {
		p.MinCipherBits = max(h.MinCipherBits, 0)
	}
	if h.MaxValidityDays != 0 {
		p.MaxValidityDays = max(h.MaxValidityDays, 0)
	}
	return p
}

// Ignored reports whether records for host are dropped from the output.
func (c *Config) Ignored(host string) bool {
	return c.hostConfig(host).Ignore
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// The first error found is returned.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	stdin := 0
	for _, in := range c.Inputs {
		if in == report.Stdout {
			stdin++
		}
	}
	if stdin > 1 {
		return ErrStdinRepeated
	}

	if _, err := report.ParseOutputFormat(c.Format); err != nil {
		return ErrInvalidFormat
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MinCipherBits < 0 {
		return ErrInvalidMinCipherBits
	}
	if c.MaxValidityDays < 0 {
		return ErrInvalidMaxValidityDays
	}

	if err := report.ValidateDateFormat(c.DateFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
	}
	if c.HostConfigs != nil {
		for host, h := range c.HostConfigs.Hosts {
			if h.DateFormat == "" {
				continue
			}
			if err := report.ValidateDateFormat(h.DateFormat); err != nil {
				return fmt.Errorf("%w: host %s: %v", ErrInvalidDateFormat, host, err)
			}
		}
	}

	return nil
}
