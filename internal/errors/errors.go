// Package errors provides centralized error definitions and error handling utilities
// for the council codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - ConversationError: errors raised while running a conversation turn
//   - ProviderError: failures of an external completion backend
//   - RoleError: errors loading or resolving role definitions
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewConversationError("turn rejected", errors.ErrEmptyMessage).
//	    WithConversationID(id)
//
//	err := errors.NewNotFoundError("conversation", id).WithCause(errors.ErrConversationNotFound)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrConversationNotFound) { ... }
//
//	var provErr *errors.ProviderError
//	if errors.As(err, &provErr) { ... }
//
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Conversation-related sentinel errors
var (
	// ErrConversationNotFound indicates that a conversation id is unknown.
	ErrConversationNotFound = New("conversation not found")
	// ErrEmptyMessage indicates that an incoming message has no content.
	ErrEmptyMessage = New("message is empty")
)

// Role-related sentinel errors
var (
	// ErrUnknownRole indicates that a role id is not in the registry.
	ErrUnknownRole = New("unknown role")
	// ErrRoleFileInvalid indicates that a role definition file could not be parsed.
	ErrRoleFileInvalid = New("role definition file invalid")
)

// Collaborator sentinel errors
var (
	// ErrProviderUnavailable indicates that a completion backend is not configured
	// or temporarily disabled.
	ErrProviderUnavailable = New("completion provider unavailable")
	// ErrRetrievalFailed indicates that reference content could not be fetched.
	ErrRetrievalFailed = New("content retrieval failed")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// CouncilError is the base interface for all council errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type CouncilError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// formatWithContext renders "<kind> [k=v, ...]: message: cause".
func formatWithContext(kind string, parts []string, message string, cause error) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConversationError represents errors raised while handling a conversation.
//
// Example:
//
//	err := errors.NewConversationError("turn rejected", errors.ErrEmptyMessage)
//	err = err.WithConversationID("c-1")
//	fmt.Println(err) // "conversation error [conversation=c-1]: turn rejected: message is empty"
type ConversationError struct {
	baseError
	ConversationID string
	State          string
}

// NewConversationError creates a new ConversationError.
func NewConversationError(message string, cause error) *ConversationError {
	return &ConversationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithConversationID adds a conversation ID to the error context.
func (e *ConversationError) WithConversationID(id string) *ConversationError {
	e.ConversationID = id
	return e
}

// WithState adds the turn state in which the error occurred.
func (e *ConversationError) WithState(state string) *ConversationError {
	e.State = state
	return e
}

// Error returns the formatted error message.
func (e *ConversationError) Error() string {
	var parts []string
	if e.ConversationID != "" {
		parts = append(parts, fmt.Sprintf("conversation=%s", e.ConversationID))
	}
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", e.State))
	}
	return formatWithContext("conversation error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ConversationError) Is(target error) bool {
	if _, ok := target.(*ConversationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ProviderError represents a failed call to a completion backend.
//
// Example:
//
//	err := errors.NewProviderError("chat completion failed", cause).
//	    WithBackend("openai").WithModel("gpt-4o-mini").WithRole("engineer")
type ProviderError struct {
	baseError
	Backend string
	Model   string
	RoleID  string
}

// NewProviderError creates a new ProviderError. Provider errors are
// retryable by default since most backend failures are transient.
func NewProviderError(message string, cause error) *ProviderError {
	return &ProviderError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			retryable: true,
		},
	}
}

// WithBackend adds the backend name to the error context.
func (e *ProviderError) WithBackend(backend string) *ProviderError {
	e.Backend = backend
	return e
}

// WithModel adds the model name to the error context.
func (e *ProviderError) WithModel(model string) *ProviderError {
	e.Model = model
	return e
}

// WithRole adds the consulted role to the error context.
func (e *ProviderError) WithRole(roleID string) *ProviderError {
	e.RoleID = roleID
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ProviderError) WithRetryable(r bool) *ProviderError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ProviderError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	if e.RoleID != "" {
		parts = append(parts, fmt.Sprintf("role=%s", e.RoleID))
	}
	return formatWithContext("provider error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ProviderError) Is(target error) bool {
	if _, ok := target.(*ProviderError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RoleError represents errors loading or resolving role definitions.
//
// Example:
//
//	err := errors.NewRoleError("parse roles file", errors.ErrRoleFileInvalid).WithPath(path)
type RoleError struct {
	baseError
	RoleID string
	Path   string
}

// NewRoleError creates a new RoleError.
func NewRoleError(message string, cause error) *RoleError {
	return &RoleError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithRoleID adds a role ID to the error context.
func (e *RoleError) WithRoleID(id string) *RoleError {
	e.RoleID = id
	return e
}

// WithPath adds the role definition file path to the error context.
func (e *RoleError) WithPath(path string) *RoleError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *RoleError) Error() string {
	var parts []string
	if e.RoleID != "" {
		parts = append(parts, fmt.Sprintf("role=%s", e.RoleID))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return formatWithContext("role error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *RoleError) Is(target error) bool {
	if _, ok := target.(*RoleError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("conversation", "abc123")
//	fmt.Println(err) // "conversation 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("message text cannot be empty").WithField("text")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return formatWithContext("validation error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("fetch https://example.com", 10*time.Second)
//	fmt.Println(err) // "timeout error: fetch https://example.com (timeout: 10s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var councilErr CouncilError
	if As(err, &councilErr) {
		return councilErr.IsRetryable()
	}
	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    writeJSON(w, status, map[string]string{"error": err.Error()})
//	} else {
//	    writeJSON(w, status, map[string]string{"error": "internal error"})
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var councilErr CouncilError
	if As(err, &councilErr) {
		return councilErr.IsUserFacing()
	}
	return false
}

// IsNotFound reports whether err is a NotFoundError or wraps one of the
// not-found sentinels.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	return As(err, &notFound) || Is(err, ErrConversationNotFound)
}

// IsValidation reports whether err represents rejected input.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var validation *ValidationError
	return As(err, &validation) || Is(err, ErrInvalidInput) ||
		Is(err, ErrEmptyMessage) || Is(err, ErrUnknownRole)
}
