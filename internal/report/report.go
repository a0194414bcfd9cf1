// Package report renders the outcome of a vestige run for machines.
//
// The same Report is printed as JSON on stdout with --json and written to
// a file with --report, as YAML or JSON depending on the file extension.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/vestige/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// File is one processed file.
type File struct {
	Path     string          `json:"path" yaml:"path"`
	Output   string          `json:"output" yaml:"output"`
	Mode     model.Mode      `json:"mode,omitempty" yaml:"mode,omitempty"`
	Spans    int             `json:"spans" yaml:"spans"`
	Removals []model.Removal `json:"removals,omitempty" yaml:"removals,omitempty"`
	Written  bool            `json:"written" yaml:"written"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Totals aggregates the files of a run.
type Totals struct {
	Files   int `json:"files" yaml:"files"`
	Changed int `json:"changed" yaml:"changed"`
	Failed  int `json:"failed" yaml:"failed"`
	Removed int `json:"removed" yaml:"removed"`
}

// Report is the outcome of a run.
type Report struct {
	Backend string `json:"backend" yaml:"backend"`
	DryRun  bool   `json:"dryRun" yaml:"dryRun"`
	Files   []File `json:"files" yaml:"files"`
	Totals  Totals `json:"totals" yaml:"totals"`
}

// New builds a Report from file results, in the order given.
func New(backend string, dryRun bool, results []model.FileResult) *Report {
	r := &Report{Backend: backend, DryRun: dryRun, Files: make([]File, 0, len(results))}
	for i := range results {
		res := &results[i]
		f := File{
			Path:     res.Path,
			Output:   res.Output,
			Mode:     res.Mode,
			Spans:    res.Spans,
			Removals: res.Removals,
			Written:  res.Written,
		}
		if res.Failed() {
			f.Error = res.Err.Error()
			r.Totals.Failed++
		}
		if res.Changed() {
			r.Totals.Changed++
		}
		r.Totals.Removed += len(res.Removals)
		r.Files = append(r.Files, f)
	}
	r.Totals.Files = len(results)
	return r
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report file type %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Write saves r to path, choosing the format from its extension.
func Write(path string, r *Report) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	if err := Encode(f, r, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	return nil
}
