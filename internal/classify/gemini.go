package classify

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shinji-kodama/vestige/internal/model"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Verdict tokens the Gemini backend is instructed to answer with.
const (
	verdictCode    = "CODE"
	verdictNotCode = "NOT_CODE"
)

// Ensure Gemini implements Classifier at compile time.
var _ Classifier = (*Gemini)(nil)

// Gemini classifies comments by asking a Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini classifier from an existing client.
func NewGemini(client *genai.Client, modelName string) *Gemini {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &Gemini{client: client, model: modelName}
}

// DialGemini connects to the Gemini API with apiKey.
func DialGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", model.ErrClassifierUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to Gemini API: %v", model.ErrClassifierUnavailable, err)
	}
	return NewGemini(client, modelName), nil
}

// ConcurrencySafe implements ConcurrencySafe. The genai client is safe for
// concurrent requests.
func (g *Gemini) ConcurrencySafe() bool { return true }

// Predict implements Classifier.
func (g *Gemini) Predict(ctx context.Context, text string) (model.Distribution, error) {
	if g.client == nil {
		return model.Distribution{}, fmt.Errorf("%w: gemini client not configured", model.ErrClassifierUnavailable)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildPrompt(text)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return model.Distribution{}, err
	}
	if result == nil {
		return model.Distribution{}, fmt.Errorf("gemini returned nil result")
	}
	return OneHot(ParseVerdict(result.Text())), nil
}

// BuildConfig returns the GenerateContentConfig for classification calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You review source code comments. Decide whether a comment is commented-out source code " +
					"or a natural-language annotation written for humans. Answer with exactly one token: " +
					verdictCode + " or " + verdictNotCode + ".",
			}},
		},
		Temperature: &temp,
	}
}

// BuildPrompt wraps a comment for classification.
func BuildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("<comment>\n")
	sb.WriteString(text)
	sb.WriteString("\n</comment>\n\n")
	sb.WriteString("Is this comment commented-out code? Answer " + verdictCode + " or " + verdictNotCode + ".")
	return sb.String()
}

// ParseVerdict maps a model answer to a label. Anything that is not a clear
// CODE answer is NotCode, so an odd response never deletes text.
func ParseVerdict(answer string) model.Label {
	a := strings.ToUpper(strings.TrimSpace(answer))
	a = strings.Trim(a, "`\"'. ")
	switch {
	case strings.HasPrefix(a, verdictNotCode), strings.HasPrefix(a, "NOT CODE"):
		return model.NotCode
	case strings.HasPrefix(a, verdictCode):
		return model.Code
	default:
		return model.NotCode
	}
}
