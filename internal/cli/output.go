package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/vestige/internal/report"
)

var (
	cleanedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// printResults writes a human-readable summary of rep to w: one line per
// file, the removals under it on a dry run, and a totals line.
func printResults(w io.Writer, rep *report.Report) {
	for _, f := range rep.Files {
		fmt.Fprintln(w, FormatFileLine(f, rep.DryRun))
		if rep.DryRun {
			for _, r := range f.Removals {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("    line %d: %s", r.Line, r.Text)))
			}
		}
	}
	fmt.Fprintln(w, FormatTotals(rep.Totals, rep.DryRun))
}

// FormatFileLine describes the outcome for one file.
func FormatFileLine(f report.File, dryRun bool) string {
	switch {
	case f.Error != "":
		return failedStyle.Render(fmt.Sprintf("✗ %s: %s", f.Path, f.Error))
	case len(f.Removals) == 0:
		return mutedStyle.Render(fmt.Sprintf("- %s: nothing to remove", f.Path))
	}

	verb := "removed"
	if dryRun {
		verb = "would remove"
	}
	line := fmt.Sprintf("✓ %s: %s %s", f.Path, verb, pluralize(len(f.Removals), "comment"))
	if f.Output != "" && f.Output != f.Path {
		line += " -> " + f.Output
	}
	return cleanedStyle.Render(line)
}

// FormatTotals renders the closing summary line.
func FormatTotals(t report.Totals, dryRun bool) string {
	outcome := "removed"
	if dryRun {
		outcome = "to remove"
	}
	parts := []string{
		pluralize(t.Files, "file"),
		fmt.Sprintf("%s %s", pluralize(t.Removed, "comment"), outcome),
	}
	if t.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", t.Failed))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
