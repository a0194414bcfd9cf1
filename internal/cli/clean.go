package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/clean"
	"github.com/shinji-kodama/vestige/internal/config"
	"github.com/shinji-kodama/vestige/internal/excise"
	"github.com/shinji-kodama/vestige/internal/extract"
	"github.com/shinji-kodama/vestige/internal/model"
	"github.com/shinji-kodama/vestige/internal/report"
	"github.com/shinji-kodama/vestige/internal/vcs"
)

// cleanFlags holds the flag values of the root command.
type cleanFlags struct {
	recursive  bool
	output     string
	backend    string
	modelPath  string
	modelURL   string
	configPath string
	dryRun     bool
	yes        bool
	jobs       int
	tracked    bool
	reportPath string
}

func (f *cleanFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVarP(&f.recursive, "recursive", "r", false, "Recurse into subdirectories (directory mode)")
	fl.StringVarP(&f.output, "output", "o", "", "Destination file, or destination root in directory mode (default: in place)")
	fl.StringVar(&f.backend, "backend", classify.BackendModel, "Classifier backend: model, heuristic, gemini")
	fl.StringVar(&f.modelPath, "model", "", "Path to the model artifact (default: <user cache dir>/vestige/model.json)")
	fl.StringVar(&f.modelURL, "model-url", "", "Where to fetch the model artifact on first run")
	fl.StringVar(&f.configPath, "config", "", "Project config file (default: .vestige.yaml or .vestige.json in the working directory)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Report what would be removed without writing")
	fl.BoolVarP(&f.yes, "yes", "y", false, "Confirm every removal in plain-text mode")
	fl.IntVarP(&f.jobs, "jobs", "j", 1, "Files processed concurrently in directory mode")
	fl.BoolVar(&f.tracked, "tracked", false, "Directory mode: only clean files tracked by git")
	fl.StringVar(&f.reportPath, "report", "", "Write a run report (.yaml, .yml or .json)")
}

// resolveConfig loads the project config and applies the flags the user
// set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, flags *cleanFlags) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(wd, flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.Backend = flags.backend
	}
	if changed("model") {
		cfg.ModelPath = flags.modelPath
	}
	if changed("model-url") {
		cfg.ModelURL = flags.modelURL
	}
	if changed("jobs") {
		cfg.Jobs = flags.jobs
	}
	if changed("tracked") {
		cfg.TrackedOnly = flags.tracked
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("loaded config", zap.String("path", cfg.Source))
	}
	return cfg, nil
}

// runClean cleans the file or directory at target.
//
// Everything that can fail without touching a file (config, unsupported
// format, classifier loading) is checked before any file is read.
func runClean(cmd *cobra.Command, flags *cleanFlags, target string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return model.WrapCLIError(model.ExitIOFailure, fmt.Sprintf("cannot read %s", target), err)
	}

	cleaner := &clean.Cleaner{
		Extractors: extract.DefaultRegistry(),
		Confirm:    confirmer(cmd, flags.yes),
		Logger:     logger,
		DryRun:     flags.dryRun,
		Jobs:       cfg.Jobs,
		Exclude:    cfg.Exclude,
	}
	if cfg.TrackedOnly && info.IsDir() {
		root, err := vcs.RepoRoot(ctx, target)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("--tracked needs a git working tree: %s", target), err)
		}
		logger.Debug("restricting to tracked files", zap.String("repository", root))
		cleaner.Tracked = vcs.ListTracked
	}

	if !info.IsDir() {
		if _, err := cleaner.ModeFor(target); err != nil {
			return model.WrapCLIError(model.ExitUnsupportedFormat, fmt.Sprintf("file type unsupported: %s (supported: %s)",
				target, strings.Join(cleaner.SupportedExtensions(), ", ")), model.ErrUnsupportedFormat)
		}
	}

	opts := cfg.ClassifierOptions()
	opts.Logger = logger
	c, err := classify.Open(ctx, opts)
	if err != nil {
		return model.WrapCLIError(model.ExitClassifierUnavailable, "classifier unavailable", err)
	}
	cleaner.Classifier = c

	var results []model.FileResult
	if info.IsDir() {
		results, err = cleaner.CleanDirectory(ctx, target, flags.output, flags.recursive)
		if err != nil {
			return model.WrapCLIError(model.ExitCodeFor(err), fmt.Sprintf("failed to clean %s", target), err)
		}
	} else {
		results = []model.FileResult{cleaner.CleanFile(ctx, target, flags.output)}
	}

	rep := report.New(cfg.Backend, flags.dryRun, results)
	if flags.reportPath != "" {
		if err := report.Write(flags.reportPath, rep); err != nil {
			return model.WrapCLIError(model.ExitIOFailure, "failed to write report", err)
		}
	}

	if IsJSONOutput() {
		if err := report.Encode(out, rep, report.FormatJSON); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	} else {
		printResults(out, rep)
	}

	return exitError(info.IsDir(), results)
}

// exitError turns failed results into the CLIError that sets the exit
// code. A single file keeps the code of its failure; a directory run with
// any failure exits with ExitPartialFailure.
func exitError(directory bool, results []model.FileResult) error {
	var failed []model.FileResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return nil
	}

	if !directory {
		r := failed[0]
		return model.WrapCLIError(model.ExitCodeFor(r.Err), fmt.Sprintf("failed to clean %s", r.Path), r.Err)
	}
	return model.NewCLIError(model.ExitPartialFailure,
		fmt.Sprintf("%d of %d files failed", len(failed), len(results)))
}

// confirmer picks the oracle for plain-text removals: --yes confirms all,
// an interactive stdin prompts, anything else declines.
func confirmer(cmd *cobra.Command, yes bool) excise.ConfirmFunc {
	if yes {
		return excise.AssumeYes
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(f) {
		return excise.NewTerminalConfirmer(f, cmd.ErrOrStderr()).Confirm
	}
	logger.Debug("stdin is not a terminal, plain-text removals will be declined")
	return excise.AssumeNo
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
