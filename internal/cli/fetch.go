package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/config"
	"github.com/shinji-kodama/vestige/internal/model"
)

// fetchFlags holds the flag values for the fetch-model command.
type fetchFlags struct {
	modelPath     string
	modelURL      string
	modelURLSet   bool
	configPath    string
	force         bool
	fromHeuristic bool
}

// NewFetchModelCommand creates the "fetch-model" cobra command.
func NewFetchModelCommand() *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   "fetch-model",
		Short: "Download the classifier model artifact",
		Long: `Download the model artifact used by the default "model" backend.

The artifact is otherwise fetched automatically on the first run, and
seeded with the built-in heuristic weights when it cannot be downloaded.
Use this command to prepare machines without network access at run time,
or with --force to replace an existing artifact. --from-heuristic writes
the built-in weights without touching the network.

Examples:
  vestige fetch-model
  vestige fetch-model --force
  vestige fetch-model --from-heuristic
  vestige fetch-model --model ./model.json --model-url https://mirror.example.com/model.json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			// An explicit empty --model-url disables the download.
			flags.modelURLSet = cmd.Flags().Changed("model-url")
			return runFetchModel(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.modelPath, "model", "", "Where to store the artifact (default: <user cache dir>/vestige/model.json)")
	cmd.Flags().StringVar(&flags.modelURL, "model-url", "", "Where to download the artifact from")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Project config file")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Download even if the artifact already exists")
	cmd.Flags().BoolVar(&flags.fromHeuristic, "from-heuristic", false, "Write the built-in heuristic weights instead of downloading")

	return cmd
}

// fetchResultJSON is the --json output of fetch-model.
type fetchResultJSON struct {
	Path       string `json:"path"`
	URL        string `json:"url"`
	Downloaded bool   `json:"downloaded"`
	Seeded     bool   `json:"seeded,omitempty"`
}

func runFetchModel(ctx context.Context, out io.Writer, flags *fetchFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	wd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get working directory", err)
	}
	cfg, err := config.Load(wd, flags.configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}

	path := flags.modelPath
	if path == "" {
		path = cfg.ModelPath
	}
	if path == "" {
		if path, err = classify.DefaultModelPath(); err != nil {
			return model.WrapCLIError(model.ExitClassifierUnavailable, "cannot locate model cache", err)
		}
	}
	url := cfg.ModelURL
	if flags.modelURLSet {
		url = flags.modelURL
	}

	var downloaded, seeded bool
	if flags.fromHeuristic {
		url = ""
		if seeded, err = seedArtifact(path, flags.force); err != nil {
			return model.WrapCLIError(model.ExitClassifierUnavailable, "failed to write model artifact", err)
		}
	} else {
		fetcher := &classify.Fetcher{Logger: logger}
		if downloaded, err = fetcher.EnsureArtifact(ctx, path, url, flags.force); err != nil {
			return model.WrapCLIError(model.ExitClassifierUnavailable, "failed to fetch model artifact", err)
		}
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(fetchResultJSON{Path: path, URL: url, Downloaded: downloaded, Seeded: seeded}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	switch {
	case seeded:
		fmt.Fprintf(out, "Model artifact seeded with built-in weights at %s\n", path)
	case downloaded:
		fmt.Fprintf(out, "Model artifact saved to %s\n", path)
	default:
		fmt.Fprintf(out, "Model artifact already present at %s (use --force to replace it)\n", path)
	}
	return nil
}

// seedArtifact writes the heuristic weights to path unless an artifact is
// already there and force is unset.
func seedArtifact(path string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := classify.WriteArtifact(path, classify.Heuristic()); err != nil {
		return false, err
	}
	logger.Debug("model artifact seeded", zap.String("path", path))
	return true, nil
}
