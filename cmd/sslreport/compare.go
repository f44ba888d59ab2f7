package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nao1215/sslreport/internal/compare"
	"github.com/nao1215/sslreport/internal/config"
	"github.com/nao1215/sslreport/internal/database"
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/normalize"
	"github.com/nao1215/sslreport/internal/pipeline"
	"github.com/spf13/cobra"
)

// ErrRegressions is returned by compare --fail-on-regression.
var ErrRegressions = errors.New("endpoints regressed")

// NewCompareCmd creates the compare command.
// This command compares two converted reports.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-id new-id]",
		Short: "Compare two converted reports",
		Long: `Compare displays differences between two reports.

Endpoints are matched by host, SNI name and port. The comparison shows:
- Endpoints that appeared or disappeared
- Minimum protocol regressions and improvements
- Minimum cipher strength changes
- Certificate expiry changes
- New and resolved policy findings

Without arguments the latest two imports in the history database are
compared. With --files, the arguments are two sslscan XML files that are
converted on the fly and not saved.`,
		Example: `  # Compare the latest two imports
  sslreport compare

  # Compare imports 3 and 7
  sslreport compare 3 7

  # Compare two XML files directly
  sslreport compare --files last-week.xml today.xml

  # Markdown output for a pull request comment
  sslreport compare --markdown`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			if getBoolFlag(cmd, "files") && len(args) != 2 {
				return errors.New("--files requires two sslscan XML files")
			}
			return nil
		},
		RunE: runCompareCmd,
	}

	cmd.Flags().Bool("files", false, "Treat the arguments as sslscan XML files instead of import IDs")
	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison result in Markdown format")
	cmd.Flags().Bool("color", false, "Force coloured text output")
	cmd.Flags().Bool("no-color", false, "Disable coloured text output")
	cmd.Flags().Bool("fail-on-regression", false, "Exit with an error if any endpoint regressed")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (default: search .sslreport)")
	cmd.Flags().String("db-dir", "", "Directory of the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	logger, _, closeLog, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	jsonOutput := getBoolFlag(cmd, "json")
	markdownOutput := getBoolFlag(cmd, "markdown")
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown cannot be used together")
	}

	cfg, err := buildReadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var (
		previous, current *model.Report
		opts              = compare.Options{Policy: cfg.PolicyFor}
	)
	if getBoolFlag(cmd, "files") {
		previous, current, err = convertPair(ctx, cfg, args, logger)
	} else {
		previous, current, opts.PreviousID, opts.CurrentID, err = loadPair(ctx, cfg, args)
	}
	if err != nil {
		return err
	}

	result := compare.Compare(previous, current, opts)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		err = compare.WriteJSON(out, result)
	case markdownOutput:
		err = compare.WriteMarkdown(out, result)
	default:
		err = compare.WriteText(out, result, compare.TextOptions{Color: useColor(cmd)})
	}
	if err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}

	if getBoolFlag(cmd, "fail-on-regression") && result.Regressions() > 0 {
		return fmt.Errorf("%w: %d change(s)", ErrRegressions, result.Regressions())
	}
	return nil
}

// loadPair loads two stored reports. With no arguments the latest two
// imports are used.
func loadPair(ctx context.Context, cfg *config.Config, args []string) (prev, cur *model.Report, prevID, curID int64, err error) {
	// Validate arguments before opening the database.
	if len(args) == 2 {
		if prevID, err = parseImportID(args[0]); err != nil {
			return nil, nil, 0, 0, err
		}
		if curID, err = parseImportID(args[1]); err != nil {
			return nil, nil, 0, 0, err
		}
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		if prevID, curID, err = db.LatestTwo(ctx); err != nil {
			return nil, nil, 0, 0, err
		}
	}

	if prev, err = getStoredReport(ctx, db, prevID); err != nil {
		return nil, nil, 0, 0, err
	}
	if cur, err = getStoredReport(ctx, db, curID); err != nil {
		return nil, nil, 0, 0, err
	}
	return prev, cur, prevID, curID, nil
}

// getStoredReport returns an import or an error if it does not exist.
func getStoredReport(ctx context.Context, db *database.HistoryDB, id int64) (*model.Report, error) {
	rep, err := db.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("import %d not found (use 'sslreport history' to list imports)", id)
	}
	return rep, nil
}

// parseImportID parses a positive import ID.
func parseImportID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid import ID %q", s)
	}
	return id, nil
}

// convertPair converts two XML files without saving them.
func convertPair(ctx context.Context, cfg *config.Config, paths []string, logger *slog.Logger) (prev, cur *model.Report, err error) {
	assembler := normalize.NewAssembler(
		normalize.WithConcurrency(cfg.Concurrency),
		normalize.WithLogger(logger),
	)
	factory := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(pipeline.ConvertOptions{
			Assembler: assembler,
			Ignored:   cfg.Ignored,
			Logger:    logger,
		}, pipeline.WithLogger(logger))
	}

	jobs, err := pipeline.NewBatchProcessor(factory, pipeline.WithBatchLogger(logger)).ProcessBatch(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	for _, job := range jobs {
		if job.Failed() {
			return nil, nil, fmt.Errorf("%s: %w", job.Source(), job.Err)
		}
	}
	return jobs[0].Report, jobs[1].Report, nil
}
