// Package cli implements the cobra-based command line for vestige.
//
// The root command cleans a file or directory; fetch-model downloads the
// classifier artifact ahead of time. This file defines the root command,
// its flags, logging setup, and the translation of errors into exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shinji-kodama/vestige/internal/model"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput switches results and errors to JSON for machine consumption.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool

	// logger is replaced in PersistentPreRunE; the no-op default keeps
	// functions usable when called directly from tests.
	logger = zap.NewNop()
)

// Version, Commit, and Date are set at build time via ldflags, injected
// from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root cobra command with every flag and
// subcommand registered.
func NewRootCommand() *cobra.Command {
	flags := &cleanFlags{}

	rootCmd := &cobra.Command{
		Use:   "vestige <path>",
		Short: "Remove commented-out code from source files",
		Long: `vestige removes commented-out code while keeping genuine comments.

Each comment is classified as natural language or code. Comments judged to
be code are cut from the line; a line left empty is dropped entirely.
Comments judged to be prose are never touched.

A single file is rewritten in place unless --output is given. A directory
is cleaned file by file (add -r to descend into subdirectories). Plain .txt
files are reviewed line by line and nothing is removed without a "y".

Examples:
  vestige app.py
  vestige app.py -o app.clean.py
  vestige src -r --dry-run
  vestige src -r --backend heuristic --json
  vestige notes.txt`,

		Args: cobra.ExactArgs(1),

		// Errors are printed by Execute in text or JSON form.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, flags, args[0])
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.register(rootCmd)

	rootCmd.AddCommand(NewFetchModelCommand())

	return rootCmd
}

// newLogger builds a production zap logger with console encoding on
// stderr. Only warnings and errors are shown unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// Execute runs the root command and exits with the code carried by a
// CLIError, or 1 for any other error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError writes an error to stderr as text or, with --json, as
// {"error": {"message": ..., "detail": ...}}.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
