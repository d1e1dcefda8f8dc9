package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/config"
	"github.com/roach88/redirector/internal/optimize"
	"github.com/roach88/redirector/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Resolution failure (ambiguous language, missing config, bad override)
	ExitCommandError = 2 // Command error (bad flags, unreadable local.xml, database or write failure)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeNotFound        = "E002" // Input path not found or unreadable
	ErrCodeDatabase        = "E003" // Database connection or query error
	ErrCodeWriteFailed     = "E004" // Output write error
	ErrCodeInvalidOptions  = "E005" // Options file or flags rejected
	ErrCodeAmbiguous       = "E101" // Language claimed by several stores
	ErrCodeInvalidOverride = "E102" // Override names unknown language or store
	ErrCodeConfigMissing   = "E103" // Locale or base URL unset at every scope
	ErrCodeDuplicateStore  = "E104" // Two records share a store code
	ErrCodeRuleConflict    = "E105" // Rule chain holds an empty or repeated language
	ErrCodeUnresolvedURL   = "E106" // Base URL still holds a Magento placeholder
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
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

// classify maps a pipeline error to its CLI error code and exit code.
func classify(err error) (string, int) {
	var (
		ambiguous *assign.AmbiguousLanguageError
		override  *assign.InvalidOverrideError
		dupStore  *assign.DuplicateCodeError
		dupLang   *optimize.DuplicateLanguageError
		missing   *store.ConfigMissingError
		unresolve *store.UnresolvedURLError
		invalid   *config.ValidationError
	)
	switch {
	case errors.As(err, &ambiguous):
		return ErrCodeAmbiguous, ExitFailure
	case errors.As(err, &override):
		return ErrCodeInvalidOverride, ExitFailure
	case errors.As(err, &missing):
		return ErrCodeConfigMissing, ExitFailure
	case errors.As(err, &unresolve):
		return ErrCodeUnresolvedURL, ExitFailure
	case errors.As(err, &dupStore):
		return ErrCodeDuplicateStore, ExitFailure
	case errors.As(err, &dupLang), errors.Is(err, optimize.ErrEmptyLanguage):
		return ErrCodeRuleConflict, ExitFailure
	case errors.As(err, &invalid):
		return ErrCodeInvalidOptions, ExitCommandError
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}

// codedError tags an I/O error with the CLI error code of its stage.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error {
	return &codedError{code: code, err: err}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	TraceID   string // Run id echoed in JSON responses
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string      `json:"status"`             // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`     // success payload
	Error   *CLIError   `json:"error,omitempty"`    // error details
	TraceID string      `json:"trace_id,omitempty"` // run correlation id
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: f.TraceID,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			TraceID: f.TraceID,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error, details interface{}) error {
	code, exit := classify(err)
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
