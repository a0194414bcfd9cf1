package classify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shinji-kodama/vestige/internal/model"
)

// Backend names accepted by Open.
const (
	BackendModel     = "model"
	BackendHeuristic = "heuristic"
	BackendGemini    = "gemini"
)

// Backends lists the accepted backend names in help-text order.
var Backends = []string{BackendModel, BackendHeuristic, BackendGemini}

// Options selects and configures a classifier backend.
type Options struct {
	// Backend is one of BackendModel, BackendHeuristic, BackendGemini.
	Backend string

	// ModelPath is the local artifact path for BackendModel.
	ModelPath string

	// ModelURL is where the artifact is fetched from when ModelPath is missing.
	ModelURL string

	// APIKey and GeminiModel configure BackendGemini.
	APIKey      string
	GeminiModel string

	// HTTPClient is used for the artifact download.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Open builds the classifier described by opts. For BackendModel this is
// where the one-time artifact download happens, before any file is read.
// When the artifact is missing and cannot be downloaded, it is seeded from
// the Heuristic weights so a first run works offline. Every failure wraps
// model.ErrClassifierUnavailable.
func Open(ctx context.Context, opts Options) (Classifier, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendModel:
		path := opts.ModelPath
		if path == "" {
			p, err := DefaultModelPath()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
			}
			path = p
		}
		f := &Fetcher{Client: opts.HTTPClient, Logger: logger}
		if _, err := f.EnsureArtifact(ctx, path, opts.ModelURL, false); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			logger.Warn("model artifact unavailable, seeding it with the built-in weights",
				zap.String("path", path), zap.Error(err))
			if werr := WriteArtifact(path, Heuristic()); werr != nil {
				return nil, fmt.Errorf("%w (seeding failed: %v)", err, werr)
			}
		}
		m, err := LoadModel(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded model artifact", zap.String("path", path), zap.Int("weights", len(m.Weights)))
		return m, nil

	case BackendHeuristic:
		return Heuristic(), nil

	case BackendGemini:
		return DialGemini(ctx, opts.APIKey, opts.GeminiModel)

	default:
		return nil, fmt.Errorf("%w: unknown classifier backend %q (valid: %s)",
			model.ErrClassifierUnavailable, opts.Backend, strings.Join(Backends, ", "))
	}
}
