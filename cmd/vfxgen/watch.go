// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/vfxgen/template"
)

func newWatchCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <system.yaml>...",
		Short: "Regenerate shaders whenever a system file or template changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := o.newRunner(cmd)
			if err != nil {
				return err
			}
			return r.watch(cmd.Context(), args)
		},
	}
}

// watch generates once, then again after every relevant change until ctx
// is done. Generation errors are logged and do not stop watching.
func (r *runner) watch(ctx context.Context, files []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	if r.cfg.Templates != "" {
		dirs[filepath.Clean(r.cfg.Templates)] = true
	}
	for _, d := range slices.Sorted(maps.Keys(dirs)) {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	r.rebuild(ctx, files)
	r.log.Info("watching", "files", len(files), "dirs", len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !r.relevant(ev, files) {
				continue
			}
			r.log.Debug("change", "path", ev.Name, "op", ev.Op.String())
			r.rebuild(ctx, files)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch error", "err", err)
		}
	}
}

func (r *runner) rebuild(ctx context.Context, files []string) {
	written, err := r.generate(ctx, files)
	r.report(written)
	if err != nil {
		r.log.Warn("generation failed", "err", err)
	}
}

// relevant reports whether ev changes an input: one of the system files, or
// a template or include in the template directory. Files in the output
// directory are ignored so that writing shaders never triggers a rebuild.
func (r *runner) relevant(ev fsnotify.Event, files []string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	for _, f := range files {
		if filepath.Clean(f) == name {
			return true
		}
	}
	dir := filepath.Dir(name)
	if dir == filepath.Clean(r.cfg.Output) || r.cfg.Templates == "" || dir != filepath.Clean(r.cfg.Templates) {
		return false
	}
	switch filepath.Ext(name) {
	case template.Extension, ".hlsl":
		return true
	default:
		return false
	}
}
