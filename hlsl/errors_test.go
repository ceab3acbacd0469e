// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrInvalidGPUType, "InvalidGPUType"},
		{ErrUnmatchedScope, "UnmatchedScope"},
		{ErrUnknownValueType, "UnknownValueType"},
		{ErrInvalidValue, "InvalidValue"},
		{ErrUnresolvedExpression, "UnresolvedExpression"},
		{ErrInvalidArgument, "InvalidArgument"},
		{ErrorKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.want {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := NewError(ErrInvalidGPUType, "type %s is not valid on GPU", "curve")
	got := err.Error()
	if !strings.Contains(got, "InvalidGPUType") {
		t.Errorf("Error() should contain kind, got %q", got)
	}
	if !strings.Contains(got, "curve") {
		t.Errorf("Error() should contain message, got %q", got)
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("writing block: %w", NewError(ErrUnmatchedScope, "boom"))
	if !errors.Is(err, &Error{Kind: ErrUnmatchedScope}) {
		t.Error("errors.Is should match the same kind through wrapping")
	}
	if errors.Is(err, &Error{Kind: ErrInvalidGPUType}) {
		t.Error("errors.Is should not match a different kind")
	}
}
