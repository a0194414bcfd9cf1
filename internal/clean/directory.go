package clean

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/model"
)

// CleanDirectory cleans every file under root with a registered grammar.
// Without recursive only the entries directly in root are considered.
// Output paths mirror the input layout under outRoot (root when empty).
//
// A failing file never stops the others; its error is recorded on its
// result. The returned error is reserved for failures that prevent the
// directory from being listed at all. Results are in path order.
func (c *Cleaner) CleanDirectory(ctx context.Context, root, outRoot string, recursive bool) ([]model.FileResult, error) {
	if outRoot == "" {
		outRoot = root
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", model.ErrIO, root)
	}

	files, err := c.collect(root, recursive)
	if err != nil {
		return nil, err
	}

	if c.Tracked != nil {
		tracked, err := c.Tracked(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("failed to list tracked files: %w", err)
		}
		files = filterTracked(files, tracked)
	}

	c.logger().Debug("collected files", zap.String("root", root), zap.Int("count", len(files)))

	outputs := make([]string, len(files))
	for i, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", file, err)
		}
		outputs[i] = filepath.Join(outRoot, rel)
	}

	results := make([]model.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs())
	for i, file := range files {
		g.Go(func() error {
			results[i] = c.CleanFile(gctx, file, outputs[i])
			if results[i].Failed() {
				c.logger().Warn("file failed", zap.String("path", file), zap.Error(results[i].Err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

// jobs returns the effective concurrency. Classifiers that do not declare
// themselves safe for concurrent use get one file at a time.
func (c *Cleaner) jobs() int {
	if c.Jobs <= 1 {
		return 1
	}
	if !classify.IsConcurrencySafe(c.Classifier) {
		c.logger().Debug("classifier is not concurrency safe, processing files sequentially")
		return 1
	}
	return c.Jobs
}

// collect lists the candidate files in lexical order.
func (c *Cleaner) collect(root string, recursive bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrIO, err)
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !recursive || strings.HasPrefix(d.Name(), ".") || c.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.excluded(rel) || !c.Extractors.Supports(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// excluded reports whether rel, or its base name, matches an exclude glob.
func (c *Cleaner) excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range c.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func filterTracked(files []string, tracked map[string]bool) []string {
	kept := files[:0]
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if tracked[filepath.Clean(abs)] {
			kept = append(kept, f)
		}
	}
	return kept
}
