// Package main is the entry point for the vestige CLI.
//
// vestige removes commented-out code from source files while keeping
// genuine comments. All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// at release time and default to "dev", "none", and "unknown".
package main

import (
	"github.com/shinji-kodama/vestige/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
