package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/sslreport/internal/config"
	"github.com/nao1215/sslreport/internal/database"
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/normalize"
	"github.com/nao1215/sslreport/internal/pipeline"
	"github.com/nao1215/sslreport/internal/report"
	"github.com/spf13/cobra"
)

// ErrStrictWarnings is returned by convert --strict when any warning was logged.
var ErrStrictWarnings = errors.New("warnings were reported in strict mode")

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <scan.xml>... | -",
		Short: "Convert sslscan XML reports",
		Long: `Convert one or more sslscan XML reports into a flat report with one row per
scanned endpoint. Use "-" to read a report from standard input.

Without --output, text is printed to standard output and the other formats
are written to sslscan_YYYYMMDD_HHMMSS.<ext> in the working directory. When
several inputs are given, each report gets its own numbered file and
--output names a directory.

Every converted report is saved in the history database unless --no-save
is given.`,
		Example: `  # Convert a report to CSV
  sslreport convert scan.xml

  # Pipe sslscan output and print a text report
  sslscan --xml=- example.com | sslreport convert --format text -

  # Write Markdown to a file
  sslreport convert --format markdown -o report.md scan.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().StringP("format", "f", config.DefaultFormat, "Output format (csv, json, markdown, text)")
	cmd.Flags().StringP("output", "o", "", "Output file, directory for several inputs, or '-' for stdout")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (default: search .sslreport)")
	cmd.Flags().String("date-format", "", "strftime pattern for certificate dates (default %m/%d/%y)")
	cmd.Flags().String("null-value", "", "Placeholder for fields the scanner did not report")
	cmd.Flags().Int("min-cipher-bits", model.DefaultMinCipherBits, "Report ciphers weaker than this many bits (0 disables)")
	cmd.Flags().Int("max-validity-days", model.DefaultMaxValidityDays, "Report certificates valid for longer than this (0 disables)")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "Number of scan entries normalized in parallel")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of input files converted in parallel")
	cmd.Flags().Bool("strict", false, "Fail if any warning is reported")
	cmd.Flags().Bool("no-save", false, "Do not save the report to the history database")
	cmd.Flags().String("db-dir", "", "Directory of the history database (default: XDG data directory)")
	cmd.Flags().Bool("color", false, "Force coloured text output")
	cmd.Flags().Bool("no-color", false, "Disable coloured text output")
	cmd.Flags().Bool("summary-only", false, "Write only the policy findings")
	cmd.Flags().Bool("tee", false, "Also print a text report to stdout when writing a file")

	return cmd
}

// runConvert executes the conversion.
func runConvert(cmd *cobra.Command, args []string) error {
	logger, counter, closeLog, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := buildConvertConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := report.ParseOutputFormat(cfg.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store pipeline.HistoryStore
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warn("failed to close history database", "error", closeErr)
			}
		}()
		store = db
	}

	assembler := normalize.NewAssembler(
		normalize.WithConcurrency(cfg.Concurrency),
		normalize.WithLogger(logger),
	)
	factory := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(pipeline.ConvertOptions{
			Stdin:     cmd.InOrStdin(),
			Assembler: assembler,
			Ignored:   cfg.Ignored,
			History:   store,
			Policy:    cfg.PolicyFor,
			Logger:    logger,
		}, pipeline.WithLogger(logger))
	}

	processor := pipeline.NewBatchProcessor(factory,
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(cfg.BatchSize),
	)
	jobs, err := processor.ProcessBatch(ctx, cfg.Inputs)
	if err != nil {
		return fmt.Errorf("conversion interrupted: %w", err)
	}

	opts := outputOptions{
		format:      format,
		color:       useColor(cmd),
		summaryOnly: getBoolFlag(cmd, "summary-only"),
		tee:         getBoolFlag(cmd, "tee"),
		now:         time.Now(),
	}

	var errs []error
	for i, job := range jobs {
		if job.Failed() {
			errs = append(errs, fmt.Errorf("%s: %w", job.Source(), job.Err))
			continue
		}

		path := outputPath(cfg.OutputPath, format, len(jobs), i, opts.now)
		if err := writeJobReport(cmd, cfg, job, path, opts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Source(), err))
			continue
		}
		if path != report.Stdout {
			logger.Info("report written", "input", job.Source(), "output", path)
		}
		if job.ImportID != 0 {
			logger.Info("report saved to history", "input", job.Source(), "import_id", job.ImportID)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if cfg.Strict && counter.Count() > 0 {
		return fmt.Errorf("%w: %d warning(s)", ErrStrictWarnings, counter.Count())
	}
	return nil
}

// buildConvertConfig builds the configuration from the config file and CLI
// flags. Flags that were set explicitly win over the file.
func buildConvertConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	configPath, _ := cmd.Flags().GetString("config") //nolint:errcheck // flag is defined in NewConvertCmd
	if err := loadConfigFile(cfg, configPath); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("date-format") {
		cfg.DateFormat, _ = flags.GetString("date-format") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("null-value") {
		cfg.NullValue, _ = flags.GetString("null-value") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("min-cipher-bits") {
		cfg.MinCipherBits, _ = flags.GetInt("min-cipher-bits") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("max-validity-days") {
		cfg.MaxValidityDays, _ = flags.GetInt("max-validity-days") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("batch") {
		cfg.BatchSize, _ = flags.GetInt("batch") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	if flags.Changed("db-dir") {
		cfg.DBDir, _ = flags.GetString("db-dir") //nolint:errcheck // flag is defined in NewConvertCmd
	}
	cfg.Strict = getBoolFlag(cmd, "strict")
	cfg.SaveToDB = !getBoolFlag(cmd, "no-save")
	cfg.Color = useColor(cmd)

	return cfg, nil
}

// useColor decides whether text output is coloured.
// --no-color wins, --color forces colour, otherwise colour follows the
// terminal detection of fatih/color.
func useColor(cmd *cobra.Command) bool {
	if getBoolFlag(cmd, "no-color") {
		return false
	}
	if getBoolFlag(cmd, "color") {
		return true
	}
	return !color.NoColor
}

// outputOptions holds per-run output settings.
type outputOptions struct {
	format      report.OutputFormat
	color       bool
	summaryOnly bool
	tee         bool
	now         time.Time
}

// outputPath returns where the i-th of n reports is written.
func outputPath(configured string, format report.OutputFormat, n, i int, now time.Time) string {
	if configured == report.Stdout {
		return report.Stdout
	}
	if n == 1 {
		if configured != "" {
			return configured
		}
		if format == report.FormatText {
			return report.Stdout
		}
		return report.DefaultFileName(format, now)
	}
	if configured == "" && format == report.FormatText {
		return report.Stdout
	}
	return filepath.Join(configured, report.IndexedFileName(format, now, i+1))
}

// writeJobReport writes one converted report to path.
func writeJobReport(cmd *cobra.Command, cfg *config.Config, job *pipeline.Job, path string, opts outputOptions) (err error) {
	var out io.Writer = cmd.OutOrStdout()
	toFile := path != report.Stdout
	if toFile {
		f, createErr := createOutputFile(path)
		if createErr != nil {
			return createErr
		}
		defer func() { err = closeOutput(f, err) }()
		out = f
	}

	// Colour escapes only make sense on a terminal.
	w := newReportWriter(out, cfg, opts.format, opts.color && !toFile)
	if toFile && opts.tee {
		w = report.NewMultiWriter(w, newReportWriter(cmd.OutOrStdout(), cfg, report.FormatText, opts.color))
	}

	if opts.summaryOnly {
		_, err = w.WriteSummary(model.NewSummary(job.Report, cfg.PolicyFor))
	} else {
		_, err = w.Write(job.Report)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// closeOutput closes a written output file and joins a close failure,
// which may be the first sign of a failed write, into err.
func closeOutput(c io.Closer, err error) error {
	if closeErr := c.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("failed to close output file: %w", closeErr))
	}
	return err
}

// createOutputFile creates path and its parent directories.
func createOutputFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newReportWriter returns the writer for format.
func newReportWriter(out io.Writer, cfg *config.Config, format report.OutputFormat, colored bool) report.Writer {
	switch format {
	case report.FormatJSON:
		return report.NewFullJSONWriter(out, getVersion(), cfg.PolicyFor, report.WithPrettyPrint())
	case report.FormatMarkdown:
		return report.NewMarkdownWriter(out,
			report.WithMarkdownFormat(cfg.FormatFor),
			report.WithMarkdownPolicy(cfg.PolicyFor),
		)
	case report.FormatText:
		return report.NewSimpleWriter(out,
			report.WithSimpleFormat(cfg.FormatFor),
			report.WithSimplePolicy(cfg.PolicyFor),
			report.WithVerbose(cfg.Verbose),
			report.WithColor(colored),
		)
	default:
		return report.NewCSVWriter(out, report.WithCSVFormat(cfg.FormatFor))
	}
}
