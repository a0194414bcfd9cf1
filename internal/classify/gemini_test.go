package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/vestige/internal/model"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		answer   string
		expected model.Label
	}{
		{"CODE", model.Code},
		{"code\n", model.Code},
		{"`CODE`.", model.Code},
		{"NOT_CODE", model.NotCode},
		{"not code", model.NotCode},
		{"I am not sure", model.NotCode},
		{"", model.NotCode},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseVerdict(tt.answer))
		})
	}
}

func TestBuildPrompt_IncludesComment(t *testing.T) {
	prompt := BuildPrompt("# x = compute()")

	assert.Contains(t, prompt, "<comment>\n# x = compute()\n</comment>")
	assert.Contains(t, prompt, "CODE or NOT_CODE")
}

func TestBuildConfig_IsDeterministic(t *testing.T) {
	config := BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.NotNil(t, config.Temperature)
	assert.Equal(t, float32(0), *config.Temperature)
}

func TestGemini_PredictWithoutClient(t *testing.T) {
	g := NewGemini(nil, "")

	_, err := g.Predict(context.Background(), "# x = 1")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrClassifierUnavailable)
	assert.Equal(t, DefaultGeminiModel, g.model)
}
