package workbench

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an action failure. Kinds are stable identifiers that
// hosts may branch on; messages are for humans.
type ErrorKind string

const (
	// KindNotFound indicates a missing input file.
	KindNotFound ErrorKind = "not_found"
	// KindUnsupportedType indicates a file extension outside the
	// collection's allow-list.
	KindUnsupportedType ErrorKind = "unsupported_type"
	// KindValidation indicates a malformed request shape.
	KindValidation ErrorKind = "validation"
	// KindUpstream indicates a remote API non-success or transport failure.
	KindUpstream ErrorKind = "upstream_failure"
	// KindSandboxViolation indicates a resolved path escaping the workspace.
	KindSandboxViolation ErrorKind = "sandbox_violation"
	// KindSizeLimit indicates a download or read exceeding the byte ceiling.
	KindSizeLimit ErrorKind = "size_limit_exceeded"
	// KindInternal is the catch-all for unanticipated failures.
	KindInternal ErrorKind = "internal"
)

// Error is a classified action error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return newErrorf(KindNotFound, format, args...)
}

// UnsupportedTypef builds a KindUnsupportedType error.
func UnsupportedTypef(format string, args ...any) *Error {
	return newErrorf(KindUnsupportedType, format, args...)
}

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) *Error {
	return newErrorf(KindValidation, format, args...)
}

// Upstreamf builds a KindUpstream error.
func Upstreamf(format string, args ...any) *Error {
	return newErrorf(KindUpstream, format, args...)
}

// SandboxViolationf builds a KindSandboxViolation error.
func SandboxViolationf(format string, args ...any) *Error {
	return newErrorf(KindSandboxViolation, format, args...)
}

// SizeLimitf builds a KindSizeLimit error.
func SizeLimitf(format string, args ...any) *Error {
	return newErrorf(KindSizeLimit, format, args...)
}

// Internalf builds a KindInternal error.
func Internalf(format string, args ...any) *Error {
	return newErrorf(KindInternal, format, args...)
}

// KindOf returns the classification of err. Errors that do not carry a kind
// are reported as KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
