package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so callers can react without
// inspecting message strings.
type ErrorKind int

const (
	// KindValidation marks malformed input rejected at construction time.
	KindValidation ErrorKind = iota + 1
	// KindBusinessRule marks a well-formed request that violates an invariant.
	KindBusinessRule
	// KindIllegalState marks an operation attempted from a state that does not permit it.
	KindIllegalState
	// KindNotFound marks a reference to an identifier absent from a collection.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindIllegalState:
		return "illegal_state"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by the domain layer. Every
// aggregate operation either fully succeeds or fails with one of these,
// leaving the aggregate state untouched.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports kind equality so sentinel comparisons with errors.Is work.
func (e *Error) Is(target error) bool {
	var de *Error
	if errors.As(target, &de) {
		return de.Kind == e.Kind && (de.Message == "" || de.Message == e.Message)
	}
	return false
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports malformed input.
func NewValidationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// NewBusinessRuleError reports a domain invariant violation.
func NewBusinessRuleError(format string, args ...any) *Error {
	return newError(KindBusinessRule, format, args...)
}

// NewIllegalStateError reports an operation attempted from a forbidden state.
func NewIllegalStateError(format string, args ...any) *Error {
	return newError(KindIllegalState, format, args...)
}

// NewNotFoundError reports a missing identifier.
func NewNotFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// KindOf returns the domain error kind of err, or 0 if err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
