package excise

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/model"
)

// ConfirmFunc asks whether line should be removed. It blocks until an answer
// is available and returns true only for an affirmative answer.
type ConfirmFunc func(line string) bool

// AssumeNo declines every removal. It is the safe default when nobody is
// available to answer.
func AssumeNo(string) bool { return false }

// AssumeYes confirms every removal.
func AssumeYes(string) bool { return true }

// ReviewLines classifies each whole line and drops the ones labeled code
// that confirm approves. Lines are kept or dropped whole, never edited, and
// kept lines stay in their original order.
func ReviewLines(ctx context.Context, lines []string, c classify.Classifier, confirm ConfirmFunc) (Result, error) {
	if confirm == nil {
		confirm = AssumeNo
	}

	p := newPlan()
	var res Result
	for i, line := range lines {
		res.Considered++
		label, err := classify.Decide(ctx, c, line)
		if err != nil {
			return Result{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		if label != model.Code || !confirm(line) {
			continue
		}
		p.remove(i)
		res.Removals = append(res.Removals, model.Removal{Line: i + 1, Text: line, WholeLine: true})
	}

	res.Lines = p.apply(lines)
	return res, nil
}

// affirmative is the only answer that confirms a removal.
const affirmative = "y"

var (
	candidateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			PaddingLeft(4)
	promptStyle = lipgloss.NewStyle().Bold(true)
)

// TerminalConfirmer asks a human on a terminal.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer reads answers from in and writes prompts to out.
func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm shows line and asks whether it is commented code. Only "y"
// (any case, surrounding whitespace ignored) confirms; any other answer,
// end of input, or a read error keeps the line.
func (t *TerminalConfirmer) Confirm(line string) bool {
	_, _ = fmt.Fprintf(t.out, "\n%s\n\n", candidateStyle.Render(fmt.Sprintf("%q", line)))
	_, _ = fmt.Fprint(t.out, promptStyle.Render("Is this commented code? y/n :"))

	answer, err := t.in.ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(t.out)
		return false
	}
	if strings.ToLower(strings.TrimSpace(answer)) != affirmative {
		_, _ = fmt.Fprintln(t.out, "Comment will be left in, thanks!")
		return false
	}
	return true
}
