package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shinji-kodama/vestige/internal/fsutil"
	"github.com/shinji-kodama/vestige/internal/model"
)

// DefaultModelURL is where the model artifact is fetched from on first run
// unless a URL is configured.
const DefaultModelURL = "https://github.com/shinji-kodama/vestige/releases/latest/download/model.json"

// maxArtifactSize bounds the download; real artifacts are a few kilobytes.
const maxArtifactSize = 16 << 20

// DefaultModelPath returns the well-known location of the model artifact:
// <user cache dir>/vestige/model.json.
func DefaultModelPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(dir, "vestige", "model.json"), nil
}

// Fetcher downloads the model artifact.
type Fetcher struct {
	// Client performs the HTTP request. Defaults to a client with a
	// one-minute timeout.
	Client *http.Client

	// Logger receives progress messages. Defaults to a no-op logger.
	Logger *zap.Logger
}

// EnsureArtifact makes sure a model artifact exists at path, downloading it
// from url when it is missing or force is set. It returns true when a
// download happened.
//
// The download goes to a temporary file next to path and is validated with
// ParseModel before being renamed into place, so a failed or truncated
// download never leaves a corrupt artifact behind. Any failure is reported
// as model.ErrClassifierUnavailable.
func (f *Fetcher) EnsureArtifact(ctx context.Context, path, url string, force bool) (bool, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			logger.Debug("model artifact present", zap.String("path", path))
			return false, nil
		}
	}
	if url == "" {
		return false, fmt.Errorf("%w: no model artifact at %s and no download URL configured", model.ErrClassifierUnavailable, path)
	}

	logger.Info("downloading model artifact", zap.String("url", url), zap.String("path", path))
	data, err := f.download(ctx, url)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
	}
	if _, err := ParseModel(data); err != nil {
		return false, fmt.Errorf("%w: downloaded artifact from %s is invalid: %v", model.ErrClassifierUnavailable, url, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
	}
	logger.Debug("model artifact stored", zap.String("path", path), zap.Int("bytes", len(data)))
	return true, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid model URL %q: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model artifact: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch model artifact: %s returned %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("model artifact exceeds %d bytes", maxArtifactSize)
	}
	return data, nil
}

// WriteArtifact stores m at path as a model artifact. It is how the cache is
// seeded from Heuristic when no artifact can be downloaded.
func WriteArtifact(path string, m *TokenModel) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to store model artifact: %w", err)
	}
	return nil
}
