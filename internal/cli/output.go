package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/apothecary/internal/engine"
	"github.com/roach88/apothecary/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Negative result (duplicate combination, integrity issues, failed scenarios)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, I/O failures)
)

// Error codes of the JSON envelope that do not come from a typed error.
const (
	CodeIncompatible = "INCOMPATIBLE"
	CodeIntegrity    = "INTEGRITY_ISSUES"
	CodeTestFailed   = "TEST_FAILED"
	CodeCommand      = "COMMAND_ERROR"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// reported is set once the error has been written through an
	// OutputFormatter, so Execute does not print it twice.
	reported bool
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
// Errors that are not an ExitError come from argument parsing and map to
// ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics and text-mode errors (defaults to Writer)
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
	Code    string `json:"code"`              // DUPLICATE_COMBINATION, NOT_FOUND, ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs data in the configured format. In text mode text renders
// the human-readable form; a nil text prints data with fmt.Println.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format. JSON errors go to Writer
// so the envelope stays on one stream; text errors go to ErrWriter.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Typed domain errors are negative results
// (ExitFailure) carrying their own code; anything else is a command error.
func (f *OutputFormatter) Fail(err error) error {
	c := classify(err)
	var details any
	if c.details != nil {
		details = c.details
	}
	return f.FailWith(c.code, c.exit, c.message, details, err)
}

// FailWith reports an error with an explicit code and exit code.
func (f *OutputFormatter) FailWith(code string, exit int, message string, details any, err error) error {
	if writeErr := f.Error(code, message, details); writeErr != nil {
		return writeErr
	}
	return &ExitError{Code: exit, Message: message, Err: err, reported: true}
}

// Warn writes a diagnostic line to ErrWriter regardless of format.
func (f *OutputFormatter) Warn(format string, args ...any) {
	fmt.Fprintf(f.GetErrWriter(), "Warning: "+format+"\n", args...)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

type classified struct {
	code    string
	exit    int
	message string
	details map[string]string
}

// classify maps an error to an envelope code, an exit code and the message
// shown to the user.
func classify(err error) classified {
	var ce *engine.CombinationError
	if errors.As(err, &ce) {
		c := classified{code: string(ce.Code), exit: ExitFailure, message: ce.Message}
		if ce.Key != "" || ce.Existing != "" {
			c.details = map[string]string{}
			if ce.Key != "" {
				c.details["key"] = ce.Key
			}
			if ce.Existing != "" {
				c.details["existing"] = ce.Existing
				c.message = fmt.Sprintf("%s (%s)", ce.Message, ce.Existing)
			}
		}
		return c
	}
	var se *store.Error
	if errors.As(err, &se) {
		c := classified{code: string(se.Code), exit: ExitFailure, message: se.Message}
		if se.Code == store.ErrCodeLoad {
			c.exit = ExitCommandError
		}
		if se.Subject != "" {
			c.message = fmt.Sprintf("%s: %s", se.Message, se.Subject)
			c.details = map[string]string{"subject": se.Subject}
		}
		if se.Err != nil {
			c.message += ": " + se.Err.Error()
		}
		return c
	}
	return classified{code: CodeCommand, exit: ExitCommandError, message: err.Error()}
}
