// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command vfxgen generates HLSL particle shaders from system descriptions.
//
// Usage:
//
//	vfxgen generate [flags] <system.yaml>...
//	vfxgen watch [flags] <system.yaml>...
//	vfxgen version
//
// Examples:
//
//	vfxgen generate fountain.yaml                 # Runtime shaders in the working directory
//	vfxgen generate -o build -m debug,runtime *.yaml
//	vfxgen watch -t shaders fountain.yaml         # Regenerate on template or system changes
//
// Settings are read from vfxgen.toml in the working directory when present,
// or from the file given with --config. Flags override file values.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
