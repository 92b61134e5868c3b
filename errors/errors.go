package errors

import (
	stderrors "errors"
	"fmt"
)

// InfraError is the unified testkit infrastructure error type.
type InfraError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *InfraError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *InfraError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *InfraError) WithCause(cause error) *InfraError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *InfraError) WithDetail(key string, value any) *InfraError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new InfraError.
func New(code ErrorCode, message string) *InfraError {
	return &InfraError{Code: code, Message: message}
}

// IsSetup reports whether err is (or wraps) an infrastructure setup failure,
// as opposed to an ordinary test-body failure.
func IsSetup(err error) bool {
	var ie *InfraError
	if stderrors.As(err, &ie) {
		return IsSetupCode(ie.Code)
	}
	return false
}

// CodeOf returns the error code of err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var ie *InfraError
	if stderrors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// --- Common Error Constructors ---

// ActivationRequired creates an error for a capability requested in a scope
// that has not opted in to it.
func ActivationRequired(capability string) *InfraError {
	return &InfraError{
		Code:    ErrCodeActivationRequired,
		Message: fmt.Sprintf("capability %q is not active in this scope", capability),
		Details: map[string]any{"capability": capability},
	}
}

// DirectiveConflict creates an error for contradictory directives on one key
// at the same declaration level.
func DirectiveConflict(key, level string) *InfraError {
	return &InfraError{
		Code:    ErrCodeDirectiveConflict,
		Message: fmt.Sprintf("conflicting set and clear directives for key %q at %s level", key, level),
		Details: map[string]any{"key": key, "level": level},
	}
}

// ScopeClosed creates an error for an operation on an already closed scope.
func ScopeClosed(scope string) *InfraError {
	return &InfraError{
		Code:    ErrCodeScopeClosed,
		Message: fmt.Sprintf("scope %q is already closed", scope),
		Details: map[string]any{"scope": scope},
	}
}

// FactoryFailed creates an error for a resource factory that returned an error.
func FactoryFailed(key string, cause error) *InfraError {
	return &InfraError{
		Code:    ErrCodeFactoryFailed,
		Message: fmt.Sprintf("factory for resource %q failed", key),
		Details: map[string]any{"key": key},
		Cause:   cause,
	}
}

// InvalidInput creates an error for an invalid declaration or argument.
func InvalidInput(field, reason string) *InfraError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &InfraError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// PlatformMutation creates an error for a global store that refused a read
// or write.
func PlatformMutation(op, key string, cause error) *InfraError {
	return &InfraError{
		Code:    ErrCodePlatformMutation,
		Message: fmt.Sprintf("platform refused to %s key %q", op, key),
		Details: map[string]any{"operation": op, "key": key},
		Cause:   cause,
	}
}

// TeardownFailed creates an error for a failed resource cleanup callback.
func TeardownFailed(scope string, cause error) *InfraError {
	return &InfraError{
		Code:    ErrCodeTeardownFailed,
		Message: fmt.Sprintf("teardown in scope %q failed", scope),
		Details: map[string]any{"scope": scope},
		Cause:   cause,
	}
}

// NotFound creates an error for an entry that was not found.
func NotFound(key string) *InfraError {
	return &InfraError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no entry for key %q", key),
		Details: map[string]any{"key": key},
	}
}
