package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified buildprobe error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message naming the offending identifier.
	Message string `json:"message"`
	// Details contains the offending identifiers keyed by kind.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// MissingFixtureDescriptor creates an error for a fixture type that carries no descriptor.
func MissingFixtureDescriptor(typeName string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingFixtureDescriptor,
		Message: fmt.Sprintf("fixture %s must embed probe.Fixture with a probe:\"template=...\" tag or implement probe.Describer", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// ResourceNotFound creates an error for a template missing from the resource FS.
func ResourceNotFound(template string) *AppError {
	return &AppError{
		Code:    ErrCodeResourceNotFound,
		Message: fmt.Sprintf("resource %s not found", template),
		Details: map[string]any{"template": template},
	}
}

// ProjectFileNotFound creates an error for a relative path missing from a staged workspace.
func ProjectFileNotFound(relativePath string) *AppError {
	return &AppError{
		Code:    ErrCodeProjectFileNotFound,
		Message: fmt.Sprintf("file %s not found", relativePath),
		Details: map[string]any{"path": relativePath},
	}
}

// InvalidField creates an error for a malformed injection point.
func InvalidField(field, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("field %s: %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// ConflictingMarkers creates an error for a field carrying more than one marker.
func ConflictingMarkers(field string, markers []string) *AppError {
	return &AppError{
		Code:    ErrCodeConflictingMarkers,
		Message: fmt.Sprintf("field %s carries %d markers (%s), expected exactly one", field, len(markers), strings.Join(markers, ", ")),
		Details: map[string]any{"field": field, "markers": markers},
	}
}

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: message,
	}
}

// IO creates an error for a failed filesystem operation on path.
func IO(op, path string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeIO,
		Message: fmt.Sprintf("%s %s failed", op, path),
		Details: map[string]any{"operation": op, "path": path},
		Cause:   cause,
	}
}

// UnexpectedSuccess creates an error for a build that was expected to fail.
func UnexpectedSuccess(tasks []string) *AppError {
	return &AppError{
		Code:    ErrCodeUnexpectedSuccess,
		Message: fmt.Sprintf("build of [%s] was expected to fail but succeeded", strings.Join(tasks, " ")),
		Details: map[string]any{"tasks": tasks},
	}
}

// UnexpectedFailure creates an error for a build that was expected to succeed.
func UnexpectedFailure(tasks []string, exitCode int) *AppError {
	return &AppError{
		Code:    ErrCodeUnexpectedFailure,
		Message: fmt.Sprintf("build of [%s] failed with exit code %d", strings.Join(tasks, " "), exitCode),
		Details: map[string]any{"tasks": tasks, "exit_code": exitCode},
	}
}

// ToolExecution creates an error for a tool that could not be run to completion.
func ToolExecution(binary string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeToolExecution,
		Message: fmt.Sprintf("running %s failed", binary),
		Details: map[string]any{"binary": binary},
		Cause:   cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
