// Package errors provides standardized error types for the hostctl CLI tool.
//
// The errors package defines the provisioning error taxonomy so that callers
// can tell a silent no-op apart from a failed shell command or an
// unavailable store without parsing messages.
//
// # Error Types
//
// HostingError is the primary error type, containing:
//   - Code: Categorizes the error (NOT_FOUND, EXTERNAL_COMMAND, etc.)
//   - Message: Human-readable error description
//   - Entity: The client or host name involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Each code has a sentinel usable with errors.Is:
//
//	errors.ErrNotFound         // lookup found no record
//	errors.ErrConflict         // record already exists
//	errors.ErrExternalCommand  // shell or service action failed
//	errors.ErrTemplate         // template compile/render failure
//	errors.ErrPersistence      // store unavailable or constraint violation
//
// # Usage
//
//	// Client not found
//	return errors.NotFound("client", "acme")
//
//	// A command exited non-zero
//	return errors.Command("useradd acme", output, err)
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodePersistence, "failed to insert host", err)
//
// # Error Checking
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // treat as no-op
//	}
//
//	var hErr *errors.HostingError
//	if errors.As(err, &hErr) {
//	    fmt.Printf("code=%s entity=%s\n", hErr.Code, hErr.Entity)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"        // Record not found
	ErrCodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"   // Record already exists
	ErrCodeExternalCommand ErrorCode = "EXTERNAL_COMMAND" // Shell/service action failed
	ErrCodeTemplate        ErrorCode = "TEMPLATE"         // Template compile or render failed
	ErrCodePersistence     ErrorCode = "PERSISTENCE"      // Store failure
	ErrCodeValidation      ErrorCode = "VALIDATION"       // Input validation failed
	ErrCodePermission      ErrorCode = "PERMISSION"       // Permission denied
	ErrCodeConfig          ErrorCode = "CONFIG"           // Configuration error
	ErrCodeInternal        ErrorCode = "INTERNAL"         // Internal/unexpected error
)

// HostingError represents a structured error with context about the operation.
type HostingError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Entity  string    // Client or host name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *HostingError) Error() string {
	var b strings.Builder
	if e.Entity != "" {
		b.WriteString(e.Entity)
		if e.Message != "" || e.Err != nil {
			b.WriteString(": ")
		}
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain traversal.
func (e *HostingError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *HostingError) Is(target error) bool {
	t, ok := target.(*HostingError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors, one per code. Use these with errors.Is().
var (
	ErrNotFound        = &HostingError{Code: ErrCodeNotFound, Message: "not found"}
	ErrConflict        = &HostingError{Code: ErrCodeAlreadyExists, Message: "already exists"}
	ErrExternalCommand = &HostingError{Code: ErrCodeExternalCommand, Message: "external command failed"}
	ErrTemplate        = &HostingError{Code: ErrCodeTemplate, Message: "template error"}
	ErrPersistence     = &HostingError{Code: ErrCodePersistence, Message: "persistence error"}
	ErrValidation      = &HostingError{Code: ErrCodeValidation, Message: "validation failed"}
	ErrPermission      = &HostingError{Code: ErrCodePermission, Message: "permission denied"}
	ErrConfigInvalid   = &HostingError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &HostingError{Code: ErrCodePermission, Message: "this operation requires root privileges. Please run with sudo"}
)

// NotFound creates an error for a client or host record that doesn't exist.
func NotFound(kind, name string) error {
	return &HostingError{
		Code:    ErrCodeNotFound,
		Message: kind + " not found",
		Entity:  name,
	}
}

// AlreadyExists creates an error for a record that already exists.
func AlreadyExists(kind, name string) error {
	return &HostingError{
		Code:    ErrCodeAlreadyExists,
		Message: kind + " already exists",
		Entity:  name,
	}
}

// Validation creates a validation error with a custom message.
func Validation(format string, args ...interface{}) error {
	return &HostingError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Command creates an error for a command that exited unsuccessfully.
// The trimmed output is kept in the message since it usually names the cause.
func Command(cmdline string, output []byte, err error) error {
	msg := "command failed: " + cmdline
	if out := strings.TrimSpace(string(output)); out != "" {
		msg += ": " + out
	}
	return &HostingError{
		Code:    ErrCodeExternalCommand,
		Message: msg,
		Err:     err,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &HostingError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapEntity creates an error with entity context and underlying error.
func WrapEntity(code ErrorCode, entity, msg string, err error) error {
	return &HostingError{
		Code:    code,
		Entity:  entity,
		Message: msg,
		Err:     err,
	}
}

// CodeOf returns the code of the first HostingError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var hErr *HostingError
	if errors.As(err, &hErr) {
		return hErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
