package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/artkeep/artkeep/internal/result"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (item not closable, checksum mismatch, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, broken data folder)
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ResultError turns a failed result code into an ExitError.
func ResultError(res result.Result, message string) *ExitError {
	return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%s: %s", message, string(res))}
}

// GetExitCode extracts the exit code from an error. Plain errors map to
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string      `json:"status"`
	Result string      `json:"result,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Success outputs a payload in the configured format. In text mode the
// payload is printed with its default formatting.
func (f *OutputFormatter) Success(res result.Result, data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "ok",
			Result: string(res),
			Data:   data,
		})
	}
	if data != nil {
		fmt.Fprintln(f.Writer, data)
	}
	if res != result.Success {
		fmt.Fprintln(f.Writer, string(res))
	}
	return nil
}

// Successf outputs a formatted text line, or the same line as a JSON
// payload.
func (f *OutputFormatter) Successf(formatStr string, args ...interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "ok",
			Data:   fmt.Sprintf(formatStr, args...),
		})
	}
	fmt.Fprintf(f.Writer, formatStr+"\n", args...)
	return nil
}
