package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the cleaner distinguishes.
// Callers wrap them with context (path, line) via fmt.Errorf("...: %w") and
// test for them with errors.Is.
var (
	// ErrUnsupportedFormat is returned when a file's extension has no
	// registered comment grammar and is not plain text.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractorContract is returned when a comment span does not line up
	// with the text on the line it claims to be on. Truncating at a wrong
	// offset would corrupt code, so the file is left untouched instead.
	ErrExtractorContract = errors.New("extractor contract violation")

	// ErrClassifierUnavailable is returned when the classifier cannot be
	// loaded or its artifact cannot be fetched.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrIO is returned when a file cannot be read or written.
	ErrIO = errors.New("i/o failure")
)

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a run.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUnsupportedFormat indicates the input file type has no grammar.
	// No file was modified.
	ExitUnsupportedFormat ExitCode = 2

	// ExitClassifierUnavailable indicates the classifier could not be
	// loaded. No file was modified.
	ExitClassifierUnavailable ExitCode = 3

	// ExitIOFailure indicates the input could not be read or the output
	// could not be written.
	ExitIOFailure ExitCode = 4

	// ExitExtractorContract indicates a comment span did not match its line.
	ExitExtractorContract ExitCode = 5

	// ExitPartialFailure indicates that in directory mode at least one file
	// failed while the others were processed.
	ExitPartialFailure ExitCode = 6
)

// ExitCodeFor maps an error to the exit code of the first sentinel it wraps.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, ErrClassifierUnavailable):
		return ExitClassifierUnavailable
	case errors.Is(err, ErrExtractorContract):
		return ExitExtractorContract
	case errors.Is(err, ErrIO):
		return ExitIOFailure
	default:
		return ExitGeneralError
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
