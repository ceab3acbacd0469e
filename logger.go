// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfxgen

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/vfxgen/internal/logging"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while shaders are being generated.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for vfxgen and the generators it creates.
// By default vfxgen produces no log output. Pass nil to restore silence.
//
// Log levels used by vfxgen:
//   - [slog.LevelDebug]: template resolution and generated sources
//   - [slog.LevelInfo]: files written, watch started
//   - [slog.LevelWarn]: recoverable errors while watching
//
// Example:
//
//	vfxgen.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}

// Logger returns the current logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
