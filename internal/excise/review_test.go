package excise

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReviewLines_DeclineKeepsLine verifies the bias toward keeping content:
// a code-classified line survives a declined confirmation unchanged.
func TestReviewLines_DeclineKeepsLine(t *testing.T) {
	lines := []string{"Some notes", "x = compute()", "more notes"}

	var asked []string
	confirm := func(line string) bool {
		asked = append(asked, line)
		return false
	}

	res, err := ReviewLines(context.Background(), lines, codeIf("("), confirm)
	require.NoError(t, err)

	assert.Equal(t, lines, res.Lines)
	assert.Empty(t, res.Removals)
	assert.Equal(t, []string{"x = compute()"}, asked, "only code-classified lines are shown")
}

// TestReviewLines_ConfirmDropsLine verifies that an affirmative answer
// removes the whole line and nothing else.
func TestReviewLines_ConfirmDropsLine(t *testing.T) {
	lines := []string{"Some notes", "x = compute()", "more notes", "y = f(x)"}

	res, err := ReviewLines(context.Background(), lines, codeIf("("), AssumeYes)
	require.NoError(t, err)

	assert.Equal(t, []string{"Some notes", "more notes"}, res.Lines)
	require.Len(t, res.Removals, 2)
	assert.Equal(t, 2, res.Removals[0].Line)
	assert.Equal(t, "x = compute()", res.Removals[0].Text)
	assert.True(t, res.Removals[0].WholeLine)
	assert.Equal(t, 4, res.Considered)
}

// TestReviewLines_NeverEditsLines checks that kept lines are byte-identical.
func TestReviewLines_NeverEditsLines(t *testing.T) {
	lines := []string{"  indented  # with hash  ", "\tx = 1\r"}

	res, err := ReviewLines(context.Background(), lines, alwaysCode, AssumeNo)
	require.NoError(t, err)
	assert.Equal(t, lines, res.Lines)
}

// TestReviewLines_NilConfirmKeeps treats a missing oracle as a decline.
func TestReviewLines_NilConfirmKeeps(t *testing.T) {
	lines := []string{"x = 1"}

	res, err := ReviewLines(context.Background(), lines, alwaysCode, nil)
	require.NoError(t, err)
	assert.Equal(t, lines, res.Lines)
}

// TestTerminalConfirmer covers the answers the prompt accepts and rejects.
func TestTerminalConfirmer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase Y with spaces", "  Y  \n", true},
		{"y at end of input", "y", true},
		{"n", "n\n", false},
		{"yes is not exact", "yes\n", false},
		{"empty line", "\n", false},
		{"end of input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewTerminalConfirmer(strings.NewReader(tt.input), &out)

			assert.Equal(t, tt.expected, c.Confirm("x = compute()"))
			assert.Contains(t, out.String(), "x = compute()")
			assert.Contains(t, out.String(), "Is this commented code? y/n :")
			if !tt.expected && tt.input != "" {
				assert.Contains(t, out.String(), "Comment will be left in, thanks!")
			}
		})
	}
}

// TestTerminalConfirmer_MultipleLines reads one answer per prompt.
func TestTerminalConfirmer_MultipleLines(t *testing.T) {
	var out bytes.Buffer
	c := NewTerminalConfirmer(strings.NewReader("n\ny\n"), &out)

	res, err := ReviewLines(context.Background(), []string{"a = f()", "b = g()"}, alwaysCode, c.Confirm)
	require.NoError(t, err)
	assert.Equal(t, []string{"a = f()"}, res.Lines)
}
