// Package cli implements the pexload command line: load a tabular file and
// print its typed columns, inspect workbooks, or run the preview server.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pex/internal/config"
	"github.com/JonMunkholm/pex/internal/loader"
	"github.com/JonMunkholm/pex/internal/logging"
)

// app carries the state shared by every subcommand once the root's
// pre-run hook has loaded configuration.
type app struct {
	cfg      *config.Config
	logLevel string
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pexload",
		Short: "Load CSV and spreadsheet files into typed tables",
		Long: `pexload reads CSV, Excel (xls, xlsx, xlsm), and OpenDocument (ods, odt, odf)
files into typed tables. Column types are inferred unless forced with
--discrete, --datetime, or --dtype; missing-value markers follow the usual
NA/NaN/NULL list plus anything given with --na.

Configuration comes from the environment (PEX_* variables, optionally from a
.env file in the working directory); flags override it per invocation.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  10 - Invalid configuration
  11 - The file could not be loaded`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newLoadCmd(a),
		newResolveCmd(a),
		newSheetsCmd(),
		newFormatsCmd(),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads .env and the environment configuration, then installs the
// logger on stderr so stdout stays clean for table output.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	envErr := godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	if envErr == nil {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}
	slog.Debug("configuration loaded", "config", cfg.String())

	a.cfg = cfg
	return nil
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
	}
	return err
}

// describe prefers the mapped user message and keeps the technical error
// as detail.
func describe(err error) string {
	if loader.IsUserFacing(err) {
		return loader.FormatUserError(err) + "\n  detail: " + err.Error()
	}
	return err.Error()
}
