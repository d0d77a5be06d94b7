package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/roach88/mlops-seed/internal/platform"
	"github.com/roach88/mlops-seed/internal/stageconfig"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Remote or deployment failure (no approved package, API error, ...)
	ExitCommandError = 2 // Command error (bad flags, invalid config file, missing database, ...)
)

// Error code constants, unified across all commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInvalidFlags  = "E002" // Flag combination cannot be used
	ErrCodeFileNotFound  = "E003" // Input file does not exist
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeConfiguration = "E010" // Stage configuration rejected
	ErrCodeTemplate      = "E011" // Template unreadable or malformed
	ErrCodeNoPackage     = "E020" // No approved model package
	ErrCodeRemote        = "E030" // AWS API call failed
	ErrCodeHistory       = "E040" // Ledger could not be opened or written
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a domain error to its error code and exit code.
func classify(err error) (string, int) {
	var (
		cfgErr    *stageconfig.ConfigurationError
		writeErr  *stageconfig.WriteError
		noPackage *platform.NoApprovedPackageError
		remote    *platform.RemoteServiceError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ErrCodeConfiguration, ExitCommandError
	// Before ErrNotExist: writing into a missing directory is a write failure,
	// not a missing input.
	case errors.As(err, &writeErr):
		return ErrCodeWriteFailed, ExitFailure
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeFileNotFound, ExitCommandError
	case errors.As(err, &noPackage):
		return ErrCodeNoPackage, ExitFailure
	case errors.As(err, &remote):
		return ErrCodeRemote, ExitFailure
	}
	return ErrCodeGeneric, ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E010", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON writes a successful JSON response. Text output is written by each command.
func (f *OutputFormatter) JSON(data any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: "ok", Data: data})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), err)
}

// FailWith reports a failure with an explicit error code.
func (f *OutputFormatter) FailWith(code string, exit int, message string, err error) error {
	if err == nil {
		_ = f.Error(code, message, nil)
		return NewExitError(exit, fmt.Sprintf("%s: %s", code, message))
	}
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
