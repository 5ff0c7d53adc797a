// Package errors provides unified error handling across the llm-prompts tool.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the foundation for error handling in the deploy pipeline and CLI.
// Every fatal condition of a run surfaces as an *AppError carrying a code, a category
// and a severity, so the CLI can report it consistently.
//
// KEY RESPONSIBILITIES:
// - Define error codes and categories for loader, renderer, filesystem and usage failures
// - Provide the structured AppError type with severity levels and context
// - Keep the cause chain intact so errors.Is still matches fs.ErrNotExist
// - Format AppErrors for the terminal (handlers.go)
//
// INTEGRATION POINTS:
// - internal/storage/storage.go: ParseError for bad prompt files, FilesystemError for I/O
// - internal/renderer/renderer.go: TemplateError for missing, malformed or failing templates
// - internal/config/config.go: ConfigError for unreadable config files
// - internal/validation/validator.go: Report.ToAppError() converts check failures
// - internal/cli/cli.go: InvalidCommandError for rejected flags and CLIErrorHandler for output
//
// USAGE PATTERNS:
// - Create errors: use constructors like ParseError(), TemplateError(), FilesystemError()
// - Wrap errors: use Wrap() to attach a code to an existing error
// - Check types: use IsAppError(), GetAppError() and HasCode() through wrapped chains
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Input errors
	ErrCodeParse              ErrorCode = "PARSE_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingVersionFile ErrorCode = "MISSING_VERSION_FILE"

	// Rendering errors
	ErrCodeTemplate ErrorCode = "TEMPLATE_ERROR"

	// Filesystem errors
	ErrCodeFilesystem       ErrorCode = "FILESYSTEM_ERROR"
	ErrCodeFileNotFound     ErrorCode = "FILE_NOT_FOUND"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Command errors
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"
	ErrCodeConfig         ErrorCode = "CONFIG_ERROR"
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryInput      ErrorCategory = "input"
	CategoryTemplate   ErrorCategory = "template"
	CategoryFilesystem ErrorCategory = "filesystem"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code     ErrorCode
	Message  string
	Details  string
	Severity ErrorSeverity
	Category ErrorCategory
	Cause    error
	Context  map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: severity,
		Category: category,
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeMissingVersionFile:
		return CategoryInput, SeverityWarning
	case ErrCodeParse, ErrCodeValidation:
		return CategoryInput, SeverityError

	case ErrCodeTemplate:
		return CategoryTemplate, SeverityError

	case ErrCodeFilesystem, ErrCodeFileNotFound, ErrCodePermissionDenied:
		return CategoryFilesystem, SeverityError

	case ErrCodeInvalidCommand, ErrCodeConfig:
		return CategoryCommand, SeverityError

	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical

	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// ParseError reports a record file that is not a YAML mapping
func ParseError(path string, err error) *AppError {
	return Wrap(err, ErrCodeParse, fmt.Sprintf("failed to parse %s", path)).
		WithContext("path", path)
}

// TemplateError reports a missing, malformed or failing template
func TemplateError(path string, err error) *AppError {
	return Wrap(err, ErrCodeTemplate, fmt.Sprintf("failed to render template %s", path)).
		WithContext("template", path)
}

// FilesystemError classifies an I/O failure by its cause
func FilesystemError(operation string, err error) *AppError {
	code := ErrCodeFilesystem
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		code = ErrCodeFileNotFound
	case stderrors.Is(err, fs.ErrPermission):
		code = ErrCodePermissionDenied
	}
	return Wrap(err, code, fmt.Sprintf("filesystem operation failed: %s", operation))
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func ConfigError(message string, err error) *AppError {
	return Wrap(err, ErrCodeConfig, message)
}

// InvalidCommandError reports flags or arguments the command line rejected
func InvalidCommandError(command string, err error) *AppError {
	return Wrap(err, ErrCodeInvalidCommand, "invalid usage").
		WithContext("command", command).
		WithDetails(fmt.Sprintf("run '%s --help' for usage", command))
}
