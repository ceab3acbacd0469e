// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vfxgen generates HLSL shaders for GPU particle systems.
//
// A particle system is a list of contexts (initialization, update, output),
// each running a sequence of blocks over every particle. vfxgen expands a
// shader template per context: it declares the uniforms the blocks need,
// wraps each block in a function, loads and stores particle attributes and
// calls the blocks in order.
//
// Example usage:
//
//	system, err := vfxfile.Load("fountain.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shaders, err := vfxgen.Compile(system)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range shaders {
//	    os.WriteFile(s.FileName(), []byte(s.Source), 0o644)
//	}
//
// For lower-level control use the codegen package directly with contexts
// built by hand and a particle.Layout.
package vfxgen

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/gogpu/vfxgen/codegen"
	"github.com/gogpu/vfxgen/shaders"
	"github.com/gogpu/vfxgen/vfx"
	"github.com/gogpu/vfxgen/vfxfile"
)

// CompileOptions configures shader generation.
type CompileOptions struct {
	// Modes lists the compilation modes to generate (default: Runtime).
	Modes []codegen.Mode

	// Generator configures the code generator. A nil Templates uses the
	// built-in templates of package shaders, and a nil Logger uses Logger().
	Generator codegen.Options
}

// DefaultOptions returns the built-in templates and the Runtime mode.
func DefaultOptions() CompileOptions {
	opts := codegen.DefaultOptions()
	opts.Templates = shaders.FS
	return CompileOptions{
		Modes:     []codegen.Mode{codegen.ModeRuntime},
		Generator: opts,
	}
}

// Shader is the generated source of one context in one mode.
type Shader struct {
	System  string
	Context string
	Mode    codegen.Mode
	Source  string
}

// FileName returns "<system>_<context>_<mode>.hlsl".
func (s Shader) FileName() string {
	return fmt.Sprintf("%s_%s_%s.hlsl", s.System, s.Context, strings.ToLower(s.Mode.String()))
}

// Compile generates every shader of system with default options.
func Compile(system *vfxfile.System) ([]Shader, error) {
	return CompileWithOptions(system, DefaultOptions())
}

// CompileWithOptions generates one shader per GPU context and mode, in
// context order. Spawner contexts run on the host and are skipped.
func CompileWithOptions(system *vfxfile.System, opts CompileOptions) ([]Shader, error) {
	if len(opts.Modes) == 0 {
		opts.Modes = []codegen.Mode{codegen.ModeRuntime}
	}
	if opts.Generator.Templates == nil {
		opts.Generator.Templates = shaders.FS
	}
	if opts.Generator.Logger == nil {
		opts.Generator.Logger = Logger()
	}

	g, err := codegen.New(opts.Generator)
	if err != nil {
		return nil, err
	}

	var out []Shader
	for _, c := range system.Contexts {
		if c.Type == vfx.ContextSpawner {
			continue
		}
		sources, err := g.Generate(c, opts.Modes...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", system.Name, err)
		}
		for i, src := range sources {
			out = append(out, Shader{
				System:  system.Name,
				Context: c.Name,
				Mode:    opts.Modes[i],
				Source:  src,
			})
		}
	}
	Logger().Debug("compiled system", "system", system.Name, "shaders", len(out))
	return out, nil
}

// CompileFile loads a system description and compiles it.
func CompileFile(path string, opts CompileOptions) ([]Shader, error) {
	system, err := vfxfile.Load(path)
	if err != nil {
		return nil, err
	}
	return CompileWithOptions(system, opts)
}

// Templates returns the built-in template file system.
func Templates() fs.FS {
	return shaders.FS
}
