package loom

import (
	"github.com/danpasecinic/loom/internal/container"
)

// Error is the failure type returned by every engine operation. Its
// Chain field carries the dependency key path that led to the failure.
type Error = container.Error

// ErrorCode classifies engine failures.
type ErrorCode = container.Code

const (
	ErrCodeUnknown                = container.CodeUnknown
	ErrCodeUnknownDependency      = container.CodeUnknownDependency
	ErrCodeDuplicateProvider      = container.CodeDuplicateProvider
	ErrCodeCyclicDependency       = container.CodeCyclicDependency
	ErrCodeScopeMismatch          = container.CodeScopeMismatch
	ErrCodeScopeOrderingViolation = container.CodeScopeOrderingViolation
	ErrCodeScopeClosed            = container.CodeScopeClosed
	ErrCodeProviderFailure        = container.CodeProviderFailure
	ErrCodeTeardownFailure        = container.CodeTeardownFailure
	ErrCodeCancelled              = container.CodeCancelled
	ErrCodeInvalidScope           = container.CodeInvalidScope
	ErrCodeValidationFailed       = container.CodeValidationFailed
	ErrCodeAlreadyStarted         = container.CodeAlreadyStarted
)

// CodeOf extracts the engine error code from err, or ErrCodeUnknown
// when err does not carry one.
func CodeOf(err error) ErrorCode {
	return container.CodeOf(err)
}

func IsUnknownDependency(err error) bool {
	return CodeOf(err) == ErrCodeUnknownDependency
}

func IsDuplicateProvider(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateProvider
}

func IsCyclicDependency(err error) bool {
	return CodeOf(err) == ErrCodeCyclicDependency
}

func IsScopeMismatch(err error) bool {
	return CodeOf(err) == ErrCodeScopeMismatch
}

func IsScopeOrderingViolation(err error) bool {
	return CodeOf(err) == ErrCodeScopeOrderingViolation
}

func IsScopeClosed(err error) bool {
	return CodeOf(err) == ErrCodeScopeClosed
}

func IsProviderFailure(err error) bool {
	return CodeOf(err) == ErrCodeProviderFailure
}

func IsTeardownFailure(err error) bool {
	return CodeOf(err) == ErrCodeTeardownFailure
}

func IsCancelled(err error) bool {
	return CodeOf(err) == ErrCodeCancelled
}

func IsInvalidScope(err error) bool {
	return CodeOf(err) == ErrCodeInvalidScope
}

func IsValidationFailed(err error) bool {
	return CodeOf(err) == ErrCodeValidationFailed
}
