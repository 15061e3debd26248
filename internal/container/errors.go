package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/loom/internal/keys"
)

// Code classifies resolution and lifecycle failures.
type Code uint16

const (
	CodeUnknown Code = iota
	CodeUnknownDependency
	CodeDuplicateProvider
	CodeCyclicDependency
	CodeScopeMismatch
	CodeScopeOrderingViolation
	CodeScopeClosed
	CodeProviderFailure
	CodeTeardownFailure
	CodeCancelled
	CodeInvalidScope
	CodeValidationFailed
	CodeAlreadyStarted
)

var codeNames = map[Code]string{
	CodeUnknown:                "UNKNOWN",
	CodeUnknownDependency:      "UNKNOWN_DEPENDENCY",
	CodeDuplicateProvider:      "DUPLICATE_PROVIDER",
	CodeCyclicDependency:       "CYCLIC_DEPENDENCY",
	CodeScopeMismatch:          "SCOPE_MISMATCH",
	CodeScopeOrderingViolation: "SCOPE_ORDERING_VIOLATION",
	CodeScopeClosed:            "SCOPE_CLOSED",
	CodeProviderFailure:        "PROVIDER_FAILURE",
	CodeTeardownFailure:        "TEARDOWN_FAILURE",
	CodeCancelled:              "CANCELLED",
	CodeInvalidScope:           "INVALID_SCOPE",
	CodeValidationFailed:       "VALIDATION_FAILED",
	CodeAlreadyStarted:         "ALREADY_STARTED",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(c))
}

// Error is the failure type surfaced by every engine operation. Chain
// holds the dependency key path that led to the failure, innermost
// last, so mis-registrations are diagnosable from the top-level error.
type Error struct {
	Code    Code
	Message string
	Key     keys.Key
	Chain   []keys.Key
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code.String())
	b.WriteString("]")

	if e.Key != "" {
		fmt.Fprintf(&b, " key=%q:", e.Key.String())
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if len(e.Chain) > 1 {
		b.WriteString(" (via ")
		b.WriteString(keys.Join(e.Chain))
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) withChain(chain []keys.Key) *Error {
	e.Chain = append([]keys.Key(nil), chain...)
	return e
}

func newError(code Code, key keys.Key, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Key:     key,
		Cause:   cause,
	}
}

// CodeOf extracts the engine error code from err, or CodeUnknown when
// err does not carry one.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func errUnknownDependency(key keys.Key) *Error {
	return newError(CodeUnknownDependency, key, "no provider registered", nil)
}

func errDuplicateProvider(key keys.Key) *Error {
	return newError(CodeDuplicateProvider, key, "provider already registered", nil)
}

func errCyclicDependency(cycle []keys.Key) *Error {
	key := keys.Key("")
	if len(cycle) > 0 {
		key = cycle[0]
	}
	e := newError(CodeCyclicDependency, key, "cyclic dependency: "+keys.Join(cycle), nil)
	e.Chain = append([]keys.Key(nil), cycle...)
	return e
}

func errScopeMismatch(from, to keys.Key, detail string) *Error {
	return newError(
		CodeScopeMismatch,
		from,
		fmt.Sprintf("%s (depends on %s)", detail, to),
		nil,
	)
}

func errScopeInactive(key keys.Key) *Error {
	return newError(
		CodeScopeMismatch,
		key,
		"contextual provider resolved outside an entered scope; use EnterScope first",
		nil,
	)
}

func errScopeOrdering(detail string) *Error {
	return newError(CodeScopeOrderingViolation, "", detail, nil)
}

func errScopeClosed(key keys.Key, scopeID string) *Error {
	return newError(
		CodeScopeClosed,
		key,
		fmt.Sprintf("scope %s is closed", scopeID),
		nil,
	)
}

func errProviderFailure(key keys.Key, cause error) *Error {
	return newError(CodeProviderFailure, key, "provider failed", cause)
}

func errTeardownFailure(scopeID string, cause error) *Error {
	return newError(
		CodeTeardownFailure,
		"",
		fmt.Sprintf("teardown of scope %s failed", scopeID),
		cause,
	)
}

func errCancelled(key keys.Key, cause error) *Error {
	return newError(CodeCancelled, key, "resolution cancelled", cause)
}

func errInvalidScope(key keys.Key, detail string) *Error {
	return newError(CodeInvalidScope, key, detail, nil)
}

func errValidationFailed(detail string, cause error) *Error {
	return newError(CodeValidationFailed, "", detail, cause)
}
