package model

import (
	"fmt"
	"strings"
)

// Label is the binary verdict a classifier gives for a piece of comment text.
// The numeric values double as indices into a Distribution, so the argmax of
// a distribution converts directly to a Label.
type Label int

const (
	// NotCode marks a genuine natural-language annotation. It is always kept.
	NotCode Label = 0

	// Code marks inert, previously-executable code that was commented out.
	Code Label = 1
)

// String returns the label name used in CLI output and reports.
func (l Label) String() string {
	switch l {
	case NotCode:
		return "NOT_CODE"
	case Code:
		return "CODE"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// IsValid checks whether the Label is one of the two defined verdicts.
func (l Label) IsValid() bool {
	return l == NotCode || l == Code
}

// Distribution is a probability distribution over {NotCode, Code},
// indexed by Label.
type Distribution [2]float64

// Argmax reduces the distribution to a Label. Ties resolve to NotCode so
// that an undecided classifier never causes text to be deleted.
func (d Distribution) Argmax() Label {
	if d[Code] > d[NotCode] {
		return Code
	}
	return NotCode
}

// Mode selects which processing path handles a file.
type Mode string

const (
	// ModeStructured runs the Excision Engine over extractor-reported
	// comment spans. Used for every extension with a registered grammar.
	ModeStructured Mode = "structured"

	// ModePlain runs the Interactive Line Reviewer over whole lines.
	// Used for plain text files that have no comment grammar.
	ModePlain Mode = "plain"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// SourceFile is a file's content split into lines. It is never edited in
// place: processing produces a new slice of lines.
type SourceFile struct {
	// Path is the filesystem path the content was read from.
	Path string

	// Lines is the content split on "\n" with the terminator stripped.
	// Content ending in a newline yields a final empty element, so joining
	// Lines with "\n" reproduces the original bytes exactly.
	Lines []string
}

// NewSourceFile splits raw file content into a SourceFile.
func NewSourceFile(path string, content []byte) *SourceFile {
	return &SourceFile{
		Path:  path,
		Lines: strings.Split(string(content), "\n"),
	}
}

// JoinLines reinserts a single "\n" between lines, with none after the
// last element. It is the inverse of NewSourceFile's split.
func JoinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// CommentSpan is a comment reported by an Extractor.
type CommentSpan struct {
	// Line is the 1-based line number the comment starts on.
	Line int `json:"line" yaml:"line"`

	// Column is the 0-based byte offset of the comment delimiter within the
	// line, or -1 when the extractor does not report columns.
	Column int `json:"column" yaml:"column"`

	// Text is the exact comment text including its delimiter.
	Text string `json:"text" yaml:"text"`

	// Multiline is true for comments spanning more than one line. Those are
	// never classified and always preserved verbatim.
	Multiline bool `json:"multiline,omitempty" yaml:"multiline,omitempty"`

	// Delimiter is the token that opens a comment in the file's grammar,
	// e.g. "#". Empty means any of CommentDelimiters.
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
}

// CommentDelimiters lists the line-comment openers accepted when an
// extractor does not report the delimiter of its grammar.
var CommentDelimiters = []string{"#", "//", "--", ";", "/*"}

// Removal records one piece of text that was excised from a file.
type Removal struct {
	// Line is the 1-based line number in the original file.
	Line int `json:"line" yaml:"line"`

	// Text is the removed text: the comment for structured mode, the
	// whole line for plain mode.
	Text string `json:"text" yaml:"text"`

	// WholeLine is true when the entire line was dropped from the output.
	WholeLine bool `json:"wholeLine" yaml:"wholeLine"`
}

// FileResult is the outcome of processing a single file.
type FileResult struct {
	// Path is the input path.
	Path string `json:"path" yaml:"path"`

	// Output is the destination path the rewrite was (or would be) written to.
	Output string `json:"output" yaml:"output"`

	// Mode is the processing path that handled the file.
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Spans is the number of comments that were eligible for classification
	// (or the number of lines, in plain mode).
	Spans int `json:"spans" yaml:"spans"`

	// Removals lists everything that was excised, in file order.
	Removals []Removal `json:"removals,omitempty" yaml:"removals,omitempty"`

	// Written is true once the rewrite reached the destination path.
	Written bool `json:"written" yaml:"written"`

	// Lines holds the rewritten content. It is not serialized.
	Lines []string `json:"-" yaml:"-"`

	// Err is the failure that stopped this file, if any.
	Err error `json:"-" yaml:"-"`
}

// Failed reports whether processing this file ended in an error.
func (r *FileResult) Failed() bool {
	return r.Err != nil
}

// Changed reports whether anything was excised.
func (r *FileResult) Changed() bool {
	return len(r.Removals) > 0
}
