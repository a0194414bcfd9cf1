// Package excise removes commented-out code from source lines.
//
// Two paths share one bookkeeping model:
//   - Excise (structured mode) truncates lines at the comments a classifier
//     labels as code, dropping lines left with nothing but whitespace.
//   - ReviewLines (plain mode) classifies whole lines and drops a line only
//     after a human confirms it.
//
// Neither path mutates its input. Decisions are collected as an edit list
// plus a removal set and materialised in a single pass, so no line index
// shifts while decisions are being made.
package excise

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/model"
)

// Result is the outcome of rewriting a file's lines.
type Result struct {
	// Lines is the rewritten content.
	Lines []string

	// Removals lists what was excised, in file order.
	Removals []model.Removal

	// Considered is the number of spans (or lines) sent to the classifier.
	Considered int
}

// plan accumulates per-line decisions against the original line indices.
type plan struct {
	edits   map[int]string
	removed map[int]struct{}
}

func newPlan() *plan {
	return &plan{edits: make(map[int]string), removed: make(map[int]struct{})}
}

func (p *plan) edit(idx int, line string) {
	p.edits[idx] = line
}

func (p *plan) remove(idx int) {
	delete(p.edits, idx)
	p.removed[idx] = struct{}{}
}

// apply builds the rewritten line sequence in one pass over the originals.
func (p *plan) apply(lines []string) []string {
	out := make([]string, 0, len(lines)-len(p.removed))
	for i, line := range lines {
		if _, gone := p.removed[i]; gone {
			continue
		}
		if edited, ok := p.edits[i]; ok {
			line = edited
		}
		out = append(out, line)
	}
	return out
}

// Excise removes every single-line comment span that c labels as code.
//
// Spans must be in ascending line order, as extractors report them. A span
// labeled code is cut at its offset, derived from the line length and the
// span length, never by searching the line for the comment text. Blanks
// before the delimiter are trimmed; a line left empty is dropped entirely.
//
// Excise fails with model.ErrExtractorContract when a span does not sit at
// the end of the line it names, in which case nothing should be written.
func Excise(ctx context.Context, lines []string, spans []model.CommentSpan, c classify.Classifier) (Result, error) {
	p := newPlan()
	var res Result

	for _, span := range spans {
		if span.Multiline {
			continue
		}
		idx := span.Line - 1
		if idx < 0 || idx >= len(lines) {
			return Result{}, fmt.Errorf("%w: comment on line %d but file has %d lines",
				model.ErrExtractorContract, span.Line, len(lines))
		}

		res.Considered++
		label, err := classify.Decide(ctx, c, span.Text)
		if err != nil {
			return Result{}, fmt.Errorf("line %d: %w", span.Line, err)
		}
		if label != model.Code {
			continue
		}

		// Several spans on one line are not produced by single-line grammars,
		// but cutting the current text keeps the offsets consistent if they are.
		current := lines[idx]
		if edited, ok := p.edits[idx]; ok {
			current = edited
		}
		kept, err := cut(current, span)
		if err != nil {
			return Result{}, err
		}

		whole := strings.TrimSpace(kept) == ""
		if whole {
			p.remove(idx)
		} else {
			p.edit(idx, kept)
		}
		res.Removals = append(res.Removals, model.Removal{
			Line:      span.Line,
			Text:      span.Text,
			WholeLine: whole,
		})
	}

	res.Lines = p.apply(lines)
	return res, nil
}

// cut returns line truncated before span's delimiter, with trailing blanks
// trimmed. A CR left over from a CRLF line ending is kept.
func cut(line string, span model.CommentSpan) (string, error) {
	body, cr := strings.CutSuffix(line, "\r")
	crSuffix := ""
	if cr {
		crSuffix = "\r"
	}

	offset, err := Offset(body, span)
	if err != nil {
		return "", err
	}

	kept := strings.TrimRight(body[:offset], " \t")
	if strings.TrimSpace(kept) == "" {
		return "", nil
	}
	return kept + crSuffix, nil
}

// Offset returns the byte offset within line where span's delimiter starts:
// len(line) - len(span.Text). The result is verified rather than trusted:
// the line must end with the span text, the text must open with a comment
// delimiter, and a reported column must agree with the derived offset.
func Offset(line string, span model.CommentSpan) (int, error) {
	if span.Text == "" {
		return 0, fmt.Errorf("%w: empty comment on line %d", model.ErrExtractorContract, span.Line)
	}
	offset := len(line) - len(span.Text)
	if offset < 0 || line[offset:] != span.Text {
		return 0, fmt.Errorf("%w: line %d does not end with comment %q",
			model.ErrExtractorContract, span.Line, span.Text)
	}
	if !opensWithDelimiter(span) {
		return 0, fmt.Errorf("%w: comment %q on line %d does not start with a comment delimiter",
			model.ErrExtractorContract, span.Text, span.Line)
	}
	if span.Column >= 0 && span.Column != offset {
		return 0, fmt.Errorf("%w: comment on line %d reported at column %d but ends the line at column %d",
			model.ErrExtractorContract, span.Line, span.Column, offset)
	}
	return offset, nil
}

func opensWithDelimiter(span model.CommentSpan) bool {
	if span.Delimiter != "" {
		return strings.HasPrefix(span.Text, span.Delimiter)
	}
	for _, d := range model.CommentDelimiters {
		if strings.HasPrefix(span.Text, d) {
			return true
		}
	}
	return false
}
