// Package clean drives vestige over files and directories.
//
// A Cleaner reads a file whole, chooses a processing mode from its
// extension, runs the excise engine (or the line reviewer for plain text),
// and writes the rewrite back whole. Nothing is streamed: a file either
// receives its complete rewrite or is left exactly as it was.
package clean

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/excise"
	"github.com/shinji-kodama/vestige/internal/extract"
	"github.com/shinji-kodama/vestige/internal/fsutil"
	"github.com/shinji-kodama/vestige/internal/model"
)

// PlainTextExtension selects the interactive line reviewer.
const PlainTextExtension = ".txt"

// TrackedFunc lists the files under root that belong to version control,
// keyed by absolute path.
type TrackedFunc func(ctx context.Context, root string) (map[string]bool, error)

// Cleaner holds everything needed to process files. The zero value is not
// usable: Classifier and Extractors are required.
type Cleaner struct {
	Classifier classify.Classifier
	Extractors *extract.Registry

	// Confirm answers plain-text removal prompts. Nil declines everything.
	Confirm excise.ConfirmFunc

	Logger *zap.Logger

	// DryRun computes removals without writing anything.
	DryRun bool

	// Jobs bounds how many files CleanDirectory processes at once.
	Jobs int

	// Exclude holds slash-separated globs matched against paths relative
	// to the directory root, and against base names.
	Exclude []string

	// Tracked, when set, restricts CleanDirectory to the files it returns.
	Tracked TrackedFunc
}

func (c *Cleaner) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ModeFor returns the processing mode for path, or ErrUnsupportedFormat.
func (c *Cleaner) ModeFor(path string) (model.Mode, error) {
	if c.Extractors.Supports(path) {
		return model.ModeStructured, nil
	}
	if strings.EqualFold(filepath.Ext(path), PlainTextExtension) {
		return model.ModePlain, nil
	}
	return "", fmt.Errorf("file type unsupported: %s (supported: %s): %w",
		path, strings.Join(c.SupportedExtensions(), ", "), model.ErrUnsupportedFormat)
}

// SupportedExtensions lists every extension ModeFor accepts, sorted.
func (c *Cleaner) SupportedExtensions() []string {
	exts := append(c.Extractors.Extensions(), PlainTextExtension)
	sort.Strings(exts)
	return exts
}

// CleanFile rewrites in to out (in place when out is empty). The returned
// result carries any failure in Err; out is only touched when the whole
// rewrite succeeded.
func (c *Cleaner) CleanFile(ctx context.Context, in, out string) model.FileResult {
	if out == "" {
		out = in
	}
	res := model.FileResult{Path: in, Output: out}
	log := c.logger().With(zap.String("path", in))

	mode, err := c.ModeFor(in)
	if err != nil {
		res.Err = err
		return res
	}
	res.Mode = mode

	info, err := os.Stat(in)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", model.ErrIO, err)
		return res
	}
	if info.IsDir() {
		res.Err = fmt.Errorf("%w: %s is a directory", model.ErrIO, in)
		return res
	}
	content, err := os.ReadFile(in)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", model.ErrIO, err)
		return res
	}

	src := model.NewSourceFile(in, content)
	var rewrite excise.Result
	switch mode {
	case model.ModeStructured:
		rewrite, err = c.structured(ctx, log, src, content)
	case model.ModePlain:
		rewrite, err = c.plain(ctx, src)
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", in, err)
		return res
	}

	res.Spans = rewrite.Considered
	res.Removals = rewrite.Removals
	res.Lines = rewrite.Lines
	log.Debug("classified file",
		zap.String("mode", mode.String()),
		zap.Int("considered", rewrite.Considered),
		zap.Int("removed", len(rewrite.Removals)))

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if c.DryRun {
		return res
	}
	// An unchanged file is not rewritten in place, which keeps its mtime.
	if !res.Changed() && out == in {
		return res
	}

	if err := fsutil.WriteFileAtomic(out, model.JoinLines(rewrite.Lines), info.Mode().Perm()); err != nil {
		res.Err = fmt.Errorf("%w: %w", model.ErrIO, err)
		return res
	}
	res.Written = true
	log.Info("cleaned file", zap.String("output", out), zap.Int("removed", len(res.Removals)))
	return res
}

func (c *Cleaner) structured(ctx context.Context, log *zap.Logger, src *model.SourceFile, content []byte) (excise.Result, error) {
	ex, _ := c.Extractors.Lookup(src.Path)
	spans, err := ex.Extract(ctx, content)
	if err != nil {
		return excise.Result{}, err
	}
	log.Debug("extracted comments", zap.String("language", ex.Language()), zap.Int("spans", len(spans)))
	return excise.Excise(ctx, src.Lines, spans, c.Classifier)
}

// plain reviews every line except the empty element that a final newline
// leaves at the end of the split; it is re-appended so the newline survives.
func (c *Cleaner) plain(ctx context.Context, src *model.SourceFile) (excise.Result, error) {
	lines := src.Lines
	trailing := len(lines) > 0 && lines[len(lines)-1] == ""
	if trailing {
		lines = lines[:len(lines)-1]
	}

	res, err := excise.ReviewLines(ctx, lines, c.Classifier, c.Confirm)
	if err != nil {
		return excise.Result{}, err
	}
	if trailing {
		res.Lines = append(res.Lines, "")
	}
	return res, nil
}
