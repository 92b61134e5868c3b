package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors: the invocation is refused or misconfigured before its body runs.
const (
	// ErrCodeActivationRequired indicates a capability was requested in a
	// scope that never opted in to it.
	ErrCodeActivationRequired ErrorCode = "ACTIVATION_REQUIRED"
	// ErrCodeDirectiveConflict indicates contradictory directives for the
	// same key at the same declaration level.
	ErrCodeDirectiveConflict ErrorCode = "DIRECTIVE_CONFLICT"
	// ErrCodeScopeClosed indicates an operation on a scope that was already closed.
	ErrCodeScopeClosed ErrorCode = "SCOPE_CLOSED"
	// ErrCodeFactoryFailed indicates a scoped resource factory returned an error.
	ErrCodeFactoryFailed ErrorCode = "FACTORY_FAILED"
	// ErrCodeInvalidInput indicates an invalid declaration or argument.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Platform and teardown errors: attached to the invocation result, never
// silently dropped.
const (
	// ErrCodePlatformMutation indicates the underlying global store refused
	// a read or write.
	ErrCodePlatformMutation ErrorCode = "PLATFORM_MUTATION"
	// ErrCodeTeardownFailed indicates a resource cleanup callback failed.
	ErrCodeTeardownFailed ErrorCode = "TEARDOWN_FAILED"
)

// Lookup errors
const (
	// ErrCodeNotFound indicates the requested entry was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

var setupCodes = map[ErrorCode]bool{
	ErrCodeActivationRequired: true,
	ErrCodeDirectiveConflict:  true,
	ErrCodeScopeClosed:        true,
	ErrCodeFactoryFailed:      true,
	ErrCodeInvalidInput:       true,
	ErrCodePlatformMutation:   true,
}

// IsSetupCode returns true if the code marks a setup failure rather than a
// test-body failure.
func IsSetupCode(code ErrorCode) bool {
	return setupCodes[code]
}
