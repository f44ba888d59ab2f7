package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/sslreport/internal/config"
	"github.com/nao1215/sslreport/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sslreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sslreport",
		Short: "Convert sslscan XML reports into flat endpoint reports",
		Long: `sslreport converts sslscan XML output into a flat report with one row per
scanned endpoint (host, SNI name, port). Each row carries the weakest enabled
protocol, the weakest accepted cipher, the Heartbleed result and the leaf
certificate's key facts.

Every conversion is stored in a local history database so that later scans
can be compared with earlier ones.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs to stderr as JSON lines")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this file (rotated at 10 MB)")

	// Add subcommands
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the stderr logger from the global flags and makes it
// the default logger. The returned handler counts warnings, and the
// returned function closes the log file, if any.
func setupLogger(cmd *cobra.Command) (*slog.Logger, *log.CountingHandler, func(), error) {
	var file io.WriteCloser
	if path := getStringFlag(cmd, "log-file"); path != "" {
		f, err := log.OpenFile(path)
		if err != nil {
			return nil, nil, nil, err
		}
		file = f
	}

	handler := log.NewHandler(log.Tee(cmd.ErrOrStderr(), file), getBoolFlag(cmd, "verbose"), getBoolFlag(cmd, "json-logs"))
	logger := slog.New(handler)
	slog.SetDefault(logger)

	closeFn := func() {
		if file != nil {
			_ = file.Close() //nolint:errcheck // nothing left to log to
		}
	}
	return logger, handler, closeFn, nil
}

// getStringFlag retrieves a string flag from the command or the root's
// persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfigFile finds and loads the configuration file into cfg.
// If the user explicitly specified a path, a missing file is an error.
// If no path was specified, a missing file leaves cfg unchanged.
func loadConfigFile(cfg *config.Config, explicitPath string) error {
	cfg.ConfigFilePath = explicitPath

	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file)
	return nil
}
