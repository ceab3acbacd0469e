// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"
)

// Mode is a compilation mode. Each mode may have its own template variant.
type Mode uint8

const (
	ModeDebug Mode = iota
	ModeRuntime
)

func (m Mode) String() string {
	switch m {
	case ModeDebug:
		return "Debug"
	case ModeRuntime:
		return "Runtime"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "debug":
		return ModeDebug, nil
	case "runtime":
		return ModeRuntime, nil
	default:
		return 0, fmt.Errorf("codegen: unknown mode %q", s)
	}
}

// Options configures a Generator.
type Options struct {
	// Templates holds the .template files and their includes.
	Templates fs.FS

	// Includes are written as #include lines in the global include block.
	Includes []string

	// ThreadsPerGroup is the compute group size (NB_THREADS_PER_GROUP).
	ThreadsPerGroup int

	// CBufferName names the constant buffer holding uniforms.
	CBufferName string

	// RegisterSpace is the register space of every binding.
	RegisterSpace uint8

	// RegexTimeout bounds each author filter match. Zero means no limit.
	RegexTimeout time.Duration

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the default options without templates.
func DefaultOptions() Options {
	return Options{
		Includes:        []string{"VFXCommon.hlsl"},
		ThreadsPerGroup: 64,
		CBufferName:     "parameters",
	}
}
