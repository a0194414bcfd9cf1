// Package config loads vestige's project configuration.
//
// Settings come from four layers, highest precedence first:
//  1. command-line flags (applied by the cli package)
//  2. environment variables (VESTIGE_BACKEND, VESTIGE_MODEL, VESTIGE_MODEL_URL,
//     VESTIGE_GEMINI_MODEL, GEMINI_API_KEY)
//  3. a project file: .vestige.yaml / .vestige.yml (YAML) or
//     .vestige.json / .vestige.jsonc (JSON with comments)
//  4. built-in defaults
//
// YAML files are parsed with gopkg.in/yaml.v3. JSON files may contain
// comments and trailing commas; github.com/tidwall/jsonc strips them before
// encoding/json parses the result, the same way devcontainer.json files are
// commonly handled.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/vestige/internal/classify"
)

// FileNames are the project config files looked up in the working
// directory, in order.
var FileNames = []string{".vestige.yaml", ".vestige.yml", ".vestige.json", ".vestige.jsonc"}

// Config holds every setting that can come from a project file.
type Config struct {
	// Backend selects the classifier: "model", "heuristic", or "gemini".
	Backend string `yaml:"backend" json:"backend"`

	// ModelPath is the local model artifact path.
	ModelPath string `yaml:"model" json:"model"`

	// ModelURL is where the artifact is downloaded from on first run.
	ModelURL string `yaml:"modelUrl" json:"modelUrl"`

	// GeminiModel names the Gemini model for the gemini backend.
	GeminiModel string `yaml:"geminiModel" json:"geminiModel"`

	// APIKey is the Gemini API key. Only read from the environment; a key
	// in a checked-in project file would leak.
	APIKey string `yaml:"-" json:"-"`

	// Exclude lists slash-separated glob patterns, relative to the input
	// directory, of files and directories that directory mode skips.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Jobs is the number of files processed concurrently in directory mode.
	Jobs int `yaml:"jobs" json:"jobs"`

	// TrackedOnly restricts directory mode to files tracked by git.
	TrackedOnly bool `yaml:"trackedOnly" json:"trackedOnly"`

	// Source is the file the configuration was loaded from, if any.
	Source string `yaml:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:  classify.BackendModel,
		ModelURL: classify.DefaultModelURL,
		Jobs:     1,
	}
}

// Load reads the project config. When path is empty the FileNames are
// looked up in dir and a missing file is not an error. Environment
// variables are applied on top of the file.
func Load(dir, path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges the settings in path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file type %q (use .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}

	c.Source = path
	return nil
}

// applyEnv overrides file settings with environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("VESTIGE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("VESTIGE_MODEL"); v != "" {
		c.ModelPath = v
	}
	if v := getenv("VESTIGE_MODEL_URL"); v != "" {
		c.ModelURL = v
	}
	if v := getenv("VESTIGE_GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	valid := false
	for _, b := range classify.Backends {
		if strings.EqualFold(c.Backend, b) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid backend %q (valid: %s)", c.Backend, strings.Join(classify.Backends, ", "))
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// ClassifierOptions converts the configuration into classifier options.
func (c *Config) ClassifierOptions() classify.Options {
	return classify.Options{
		Backend:     c.Backend,
		ModelPath:   c.ModelPath,
		ModelURL:    c.ModelURL,
		APIKey:      c.APIKey,
		GeminiModel: c.GeminiModel,
	}
}
