package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/vestige/internal/model"
)

// ArtifactVersion is the only model artifact format this build understands.
const ArtifactVersion = 1

// TokenModel is a logistic model over the lexical features of a comment:
//
//	P(code) = sigmoid(bias + Σ weight[f] * count[f])
//
// It is read-only after construction and safe for concurrent use.
type TokenModel struct {
	// Version is the artifact format version.
	Version int `json:"version"`

	// Bias is the intercept of the logistic model.
	Bias float64 `json:"bias"`

	// Weights maps feature names (see Features) to their coefficients.
	Weights map[string]float64 `json:"weights"`
}

var (
	_ Classifier      = (*TokenModel)(nil)
	_ ConcurrencySafe = (*TokenModel)(nil)
)

// Predict implements Classifier.
func (m *TokenModel) Predict(ctx context.Context, text string) (model.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return model.Distribution{}, err
	}
	p := m.Probability(text)
	return model.Distribution{1 - p, p}, nil
}

// ConcurrencySafe implements ConcurrencySafe.
func (m *TokenModel) ConcurrencySafe() bool { return true }

// Probability returns P(code) for text.
func (m *TokenModel) Probability(text string) float64 {
	return sigmoid(m.Score(text))
}

// Score returns the raw logit for text.
func (m *TokenModel) Score(text string) float64 {
	score := m.Bias
	for name, count := range Features(text) {
		score += m.Weights[name] * count
	}
	return score
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ParseModel decodes a model artifact. The artifact is JSON; comments and
// trailing commas are tolerated the same way project config files are.
func ParseModel(data []byte) (*TokenModel, error) {
	var m TokenModel
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if m.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported model artifact version %d (want %d)", m.Version, ArtifactVersion)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model artifact has no weights")
	}
	return &m, nil
}

// LoadModel reads and parses the model artifact at path. Any failure is
// reported as model.ErrClassifierUnavailable.
func LoadModel(path string) (*TokenModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model artifact %s: %v", model.ErrClassifierUnavailable, path, err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrClassifierUnavailable, path, err)
	}
	return m, nil
}

// Heuristic returns a TokenModel with built-in weights. It needs no artifact
// and is the backend used when no model can or should be downloaded.
func Heuristic() *TokenModel {
	return &TokenModel{
		Version: ArtifactVersion,
		Bias:    -1.5,
		Weights: map[string]float64{
			FeatureAssign:    2.0,
			FeatureCall:      2.0,
			FeatureAttribute: 0.75,
			FeatureBracket:   0.5,
			FeatureEndColon:  1.0,
			FeatureOperator:  1.5,
			FeatureQuote:     0.5,
			FeatureProse:     -3.0,
			FeatureSentence:  -2.5,
			FeatureTodo:      -6.0,
			FeaturePragma:    -12.0,
			FeatureURL:       -2.0,
			FeatureEmpty:     -12.0,

			FeatureFirstToken + "def":      3.0,
			FeatureFirstToken + "class":    2.5,
			FeatureFirstToken + "import":   3.5,
			FeatureFirstToken + "from":     1.0,
			FeatureFirstToken + "return":   3.0,
			FeatureFirstToken + "print":    1.5,
			FeatureFirstToken + "if":       1.0,
			FeatureFirstToken + "elif":     2.5,
			FeatureFirstToken + "else":     1.5,
			FeatureFirstToken + "for":      1.0,
			FeatureFirstToken + "while":    1.0,
			FeatureFirstToken + "try":      1.5,
			FeatureFirstToken + "except":   2.0,
			FeatureFirstToken + "finally":  1.5,
			FeatureFirstToken + "with":     0.5,
			FeatureFirstToken + "pass":     3.0,
			FeatureFirstToken + "raise":    2.0,
			FeatureFirstToken + "assert":   2.0,
			FeatureFirstToken + "yield":    2.0,
			FeatureFirstToken + "lambda":   2.0,
			FeatureFirstToken + "self":     2.0,
			FeatureFirstToken + "del":      1.5,
			FeatureFirstToken + "global":   2.0,
			FeatureFirstToken + "break":    2.5,
			FeatureFirstToken + "continue": 2.5,
		},
	}
}
