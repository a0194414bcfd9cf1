// Package extract locates comments in source files.
//
// Comment extraction is grammar-driven: each supported language is parsed
// with Tree-sitter and every "comment" node is reported as a
// model.CommentSpan in document order. A Registry maps file extensions to
// the Extractor for their grammar; files whose extension is not registered
// are model.ErrUnsupportedFormat.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/shinji-kodama/vestige/internal/model"
)

// Extractor returns the comments in a file's content, in file order.
type Extractor interface {
	// Language names the grammar, e.g. "python".
	Language() string

	// Extract parses content and returns its comment spans.
	Extract(ctx context.Context, content []byte) ([]model.CommentSpan, error)
}

// TreeSitter is an Extractor backed by a Tree-sitter grammar.
// A new parser is created per call, so a TreeSitter value is safe for
// concurrent use.
type TreeSitter struct {
	name     string
	language *sitter.Language
	nodeType string
	delim    string
}

// NewTreeSitter creates an Extractor that reports nodes of nodeType from
// the given grammar. delim is the line-comment opener every reported span
// is expected to start with.
func NewTreeSitter(name string, language *sitter.Language, nodeType, delim string) *TreeSitter {
	return &TreeSitter{name: name, language: language, nodeType: nodeType, delim: delim}
}

// Python returns the Extractor for Python source files.
func Python() *TreeSitter {
	return NewTreeSitter("python", python.GetLanguage(), "comment", "#")
}

// Language implements Extractor.
func (t *TreeSitter) Language() string {
	return t.name
}

// Extract implements Extractor.
func (t *TreeSitter) Extract(ctx context.Context, content []byte) ([]model.CommentSpan, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(t.language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", t.name, err)
	}
	defer tree.Close()

	var spans []model.CommentSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == t.nodeType {
			spans = append(spans, t.span(n, content))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	// Tree order is document order already; sorting guards against grammars
	// that attach comments ("extras") to a later sibling.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Line != spans[j].Line {
			return spans[i].Line < spans[j].Line
		}
		return spans[i].Column < spans[j].Column
	})
	return spans, nil
}

func (t *TreeSitter) span(n *sitter.Node, content []byte) model.CommentSpan {
	start, end := n.StartPoint(), n.EndPoint()
	text := n.Content(content)
	// A comment token may swallow the CR of a CRLF line ending.
	text = strings.TrimRight(text, "\r")
	return model.CommentSpan{
		Line:      int(start.Row) + 1,
		Column:    int(start.Column),
		Text:      text,
		Multiline: start.Row != end.Row,
		Delimiter: t.delim,
	}
}

// Registry maps file extensions to Extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// DefaultRegistry returns a Registry with every built-in grammar registered.
// Python is the only grammar: ".py" and ".pyw".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	py := Python()
	r.Register(py, ".py", ".pyw")
	return r
}

// Register associates e with each extension. Extensions are matched
// case-insensitively and must include the leading dot.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Lookup returns the Extractor registered for path's extension.
func (r *Registry) Lookup(path string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile looks up path's grammar and extracts the comments in content.
func (r *Registry) ExtractFile(ctx context.Context, path string, content []byte) ([]model.CommentSpan, error) {
	e, ok := r.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, model.ErrUnsupportedFormat)
	}
	spans, err := e.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spans, nil
}
