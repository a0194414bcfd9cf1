// Package model defines the domain types and value objects for the
// vestige CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (SourceFile, CommentSpan, Removal, FileResult) are created and
// consumed within a single file-processing call; nothing persists across
// files or runs except the downloaded classifier artifact.
//
// The package also defines exit codes (ExitCode), a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling,
// and the sentinel errors the rest of the module wraps.
package model
