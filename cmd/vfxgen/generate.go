// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/vfxgen"
	"github.com/gogpu/vfxgen/config"
)

func newGenerateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <system.yaml>...",
		Short: "Generate the shaders of one or more particle systems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := o.newRunner(cmd)
			if err != nil {
				return err
			}
			written, err := r.generate(cmd.Context(), args)
			r.report(written)
			return err
		},
	}
}

// runner generates shaders for a fixed configuration.
type runner struct {
	cfg  *config.Config
	opts vfxgen.CompileOptions
	log  *slog.Logger
	jobs int
	out  io.Writer
}

// generate compiles every system file, at most r.jobs at a time, and writes
// the shaders to the output directory. It returns the paths written, in
// argument order, even when some system failed.
func (r *runner) generate(ctx context.Context, files []string) ([]string, error) {
	if err := os.MkdirAll(r.cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	results := make([][]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shaders, err := vfxgen.CompileFile(file, r.opts)
			if err != nil {
				return err
			}
			for _, s := range shaders {
				p := filepath.Join(r.cfg.Output, s.FileName())
				if err := os.WriteFile(p, []byte(s.Source), 0o644); err != nil { //nolint:gosec // G306: shader sources are not secret
					return fmt.Errorf("write %s: %w", p, err)
				}
				results[i] = append(results[i], p)
			}
			r.log.Info("generated system", "file", file, "shaders", len(shaders))
			return nil
		})
	}
	err := g.Wait()

	var written []string
	for _, paths := range results {
		written = append(written, paths...)
	}
	return written, err
}

func (r *runner) report(written []string) {
	for _, p := range written {
		fmt.Fprintln(r.out, p)
	}
}
