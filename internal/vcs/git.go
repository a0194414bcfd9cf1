// Package vcs restricts directory mode to the files git tracks.
//
// It shells out to the git CLI rather than linking a Go git library: the
// only operations needed are `rev-parse --show-toplevel` and `ls-files`,
// and the user's git honours their own ignore rules and config.
package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoRoot returns the absolute path of the working tree containing path.
func RepoRoot(ctx context.Context, path string) (string, error) {
	output, err := runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// ListTracked returns the set of files git tracks under dir, keyed by their
// absolute, cleaned path. Untracked and ignored files are absent.
func ListTracked(ctx context.Context, dir string) (map[string]bool, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	// -z keeps file names with spaces or newlines intact; --full-name is not
	// used, so paths come back relative to dir.
	output, err := runGit(ctx, abs, "ls-files", "-z", "--cached")
	if err != nil {
		return nil, err
	}

	return parseLsFiles(abs, output), nil
}

// parseLsFiles converts NUL-separated `git ls-files -z` output into a set
// of absolute paths rooted at dir.
func parseLsFiles(dir, output string) map[string]bool {
	tracked := make(map[string]bool)
	for _, name := range strings.Split(output, "\x00") {
		if name == "" {
			continue
		}
		tracked[filepath.Join(dir, filepath.FromSlash(name))] = true
	}
	return tracked
}

// runGit executes git with -C dir so the process working directory is never
// changed. On failure the error carries git's stderr.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
