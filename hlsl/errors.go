// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ErrorKind categorizes HLSL emission errors.
type ErrorKind uint8

const (
	// ErrInvalidGPUType indicates a type that cannot appear in shader code.
	ErrInvalidGPUType ErrorKind = iota

	// ErrUnmatchedScope indicates ExitScope without a matching EnterScope.
	ErrUnmatchedScope

	// ErrUnknownValueType indicates a literal whose Go data does not match its type.
	ErrUnknownValueType

	// ErrInvalidValue indicates a literal that has no HLSL spelling (NaN, infinity).
	ErrInvalidValue

	// ErrUnresolvedExpression indicates an expression that should have been
	// mapped to a uniform or texture but has no name.
	ErrUnresolvedExpression

	// ErrInvalidArgument indicates a write-mode argument that is not an attribute.
	ErrInvalidArgument
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidGPUType:
		return "InvalidGPUType"
	case ErrUnmatchedScope:
		return "UnmatchedScope"
	case ErrUnknownValueType:
		return "UnknownValueType"
	case ErrInvalidValue:
		return "InvalidValue"
	case ErrUnresolvedExpression:
		return "UnresolvedExpression"
	case ErrInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL emission error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// Is matches errors of the same kind, so callers can test with
// errors.Is(err, &hlsl.Error{Kind: hlsl.ErrInvalidGPUType}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError creates a new HLSL error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
