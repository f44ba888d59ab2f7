package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/sslreport/internal/config"
	"github.com/nao1215/sslreport/internal/database"
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/report"
	"github.com/spf13/cobra"
)

const noFindingsMessage = "No findings"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect converted reports",
		Long: `History lists the reports stored by 'sslreport convert'.

Each import records its source, the document digest, the number of endpoints
and a risk summary. A stored import can be printed again in any output
format, and the state of a single endpoint can be followed across imports.`,
		Example: `  # List the 20 newest imports
  sslreport history

  # Print import 3 as Markdown
  sslreport history --show 3 --format markdown

  # Follow one endpoint across imports
  sslreport history --endpoint example.com:443

  # Delete import 3
  sslreport history --delete 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of imports to list (0 lists all)")
	cmd.Flags().Int64P("show", "s", 0, "Print the stored report with this import ID")
	cmd.Flags().StringP("format", "f", string(report.FormatText), "Output format for --show (csv, json, markdown, text)")
	cmd.Flags().StringP("endpoint", "e", "", "Show the history of one endpoint (host:port or host:port/sniname)")
	cmd.Flags().Int64("delete", 0, "Delete the import with this ID")
	cmd.Flags().BoolP("json", "j", false, "Output the listing in JSON format")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (default: search .sslreport)")
	cmd.Flags().String("db-dir", "", "Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	_, _, closeLog, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := buildReadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	showID, _ := flags.GetInt64("show")        //nolint:errcheck // flag is defined in NewHistoryCmd
	deleteID, _ := flags.GetInt64("delete")    //nolint:errcheck // flag is defined in NewHistoryCmd
	endpoint, _ := flags.GetString("endpoint") //nolint:errcheck // flag is defined in NewHistoryCmd
	limit, _ := flags.GetInt("limit")          //nolint:errcheck // flag is defined in NewHistoryCmd
	formatName, _ := flags.GetString("format") //nolint:errcheck // flag is defined in NewHistoryCmd
	jsonOutput := getBoolFlag(cmd, "json")

	// Validate arguments before opening the database.
	var format report.OutputFormat
	if showID != 0 {
		if format, err = report.ParseOutputFormat(formatName); err != nil {
			return err
		}
	}
	var key model.EndpointKey
	if endpoint != "" {
		if key, err = parseEndpoint(endpoint); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case deleteID != 0:
		deleted, err := db.DeleteImport(ctx, deleteID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("import %d not found", deleteID)
		}
		fmt.Fprintf(out, "Deleted import %d.\n", deleteID)
		return nil

	case showID != 0:
		rep, err := db.GetReportByID(ctx, showID)
		if err != nil {
			return err
		}
		if rep == nil {
			return fmt.Errorf("import %d not found", showID)
		}
		if _, err := newReportWriter(out, cfg, format, useColor(cmd)).Write(rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil

	case endpoint != "":
		snapshots, err := db.EndpointHistory(ctx, key)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, snapshots)
		}
		return writeEndpointHistory(out, key, snapshots)

	default:
		imports, err := db.ListImports(ctx, limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, imports)
		}
		return writeImportList(out, imports)
	}
}

// buildReadConfig builds the configuration used by commands that read the
// history database. Only the config file and --db-dir apply.
func buildReadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	configPath, _ := cmd.Flags().GetString("config") //nolint:errcheck // flag is defined by the command
	if err := loadConfigFile(cfg, configPath); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db-dir") {
		cfg.DBDir, _ = cmd.Flags().GetString("db-dir") //nolint:errcheck // flag is defined by the command
	}
	return cfg, nil
}

// parseEndpoint parses "host:port" or "host:port/sniname".
// Without an SNI name, the host is used, as sslscan does.
func parseEndpoint(s string) (model.EndpointKey, error) {
	hostPort, sni, _ := strings.Cut(s, "/")

	idx := strings.LastIndex(hostPort, ":")
	if idx <= 0 {
		return model.EndpointKey{}, fmt.Errorf("invalid endpoint %q: want host:port", s)
	}
	port, err := strconv.Atoi(hostPort[idx+1:])
	if err != nil || port <= 0 || port > 65535 {
		return model.EndpointKey{}, fmt.Errorf("invalid endpoint %q: bad port", s)
	}

	host := hostPort[:idx]
	if sni == "" {
		sni = host
	}
	return model.EndpointKey{Host: host, SNIName: sni, Port: port}, nil
}

// writeImportList prints the import table.
func writeImportList(w io.Writer, imports []database.ImportMetadata) error {
	if len(imports) == 0 {
		fmt.Fprintln(w, "No imports found in the history database.")
		fmt.Fprintln(w, "\nUse 'sslreport convert <scan.xml>' to convert and save a report.")
		return nil
	}

	fmt.Fprintf(w, "Imports (%d):\n\n", len(imports))
	fmt.Fprintf(w, "  %-6s  %-19s  %-8s  %-9s  %-8s  %-20s  %s\n", "ID", "Date", "Run", "Endpoints", "Warnings", "Risk Summary", "Source")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 100))

	for _, meta := range imports {
		fmt.Fprintf(w, "  %-6d  %-19s  %-8s  %-9d  %-8d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortRunID(meta.RunID),
			meta.Records,
			meta.Warnings,
			formatRiskSummary(meta.RiskSummary),
			meta.Source,
		)
	}

	fmt.Fprintln(w, "\nUse 'sslreport history --show <id>' to print a stored report.")
	fmt.Fprintln(w, "Use 'sslreport compare' to compare the latest two imports.")
	return nil
}

// writeEndpointHistory prints one endpoint's snapshots.
func writeEndpointHistory(w io.Writer, key model.EndpointKey, snapshots []database.EndpointSnapshot) error {
	if len(snapshots) == 0 {
		fmt.Fprintf(w, "No history found for %s\n", key)
		return nil
	}

	fmt.Fprintf(w, "History for %s (%d imports):\n\n", key, len(snapshots))
	fmt.Fprintf(w, "  %-6s  %-19s  %-9s  %-6s  %-10s  %-10s  %s\n", "ID", "Date", "Protocol", "Bits", "Heartbleed", "Expires", "Expired")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 80))

	for _, s := range snapshots {
		bits := "-"
		if s.MinimumCipherBits != nil {
			bits = strconv.Itoa(*s.MinimumCipherBits)
		}
		fmt.Fprintf(w, "  %-6d  %-19s  %-9s  %-6s  %-10s  %-10s  %s\n",
			s.ImportID,
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			dashIfEmpty(s.MinimumTLSVersion),
			bits,
			s.Heartbleed,
			dashIfEmpty(s.CertificateExpiration),
			s.CertificateExpired,
		)
	}
	return nil
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// shortRunID returns the first block of a run ID, which is enough to tell
// runs apart in a listing.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return dashIfEmpty(id)
}

// dashIfEmpty returns "-" for an empty string.
func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
