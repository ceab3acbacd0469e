// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package codegen generates HLSL sources for particle contexts from
// templates.
//
// A template is HLSL with markers that the generator replaces:
//
//	${VFXGlobalInclude}          defines and includes
//	${VFXGlobalDeclaration}      constant buffer, textures and samplers
//	${VFXGeneratedBlockFunction} one function per distinct block
//	${VFXProcessBlocks}          the block calls, in order
//	${VFXLoadAttributes}         attribute loads, optionally ${VFXLoadAttributes:{regex}}
//	${VFXStoreAttributes}        attribute stores, optionally filtered
//	${VFXLoadParameter:{regex}}  context parameters
//
// Context replacements are applied last. A generated source never contains
// an unresolved marker.
package codegen

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/vfxgen/internal/logging"
	"github.com/gogpu/vfxgen/template"
	"github.com/gogpu/vfxgen/vfx"
)

var (
	// ErrNoTemplates is returned when Options.Templates is nil.
	ErrNoTemplates = errors.New("codegen: no template file system")

	// ErrUnresolvedMarker is returned when generated text still contains markers.
	ErrUnresolvedMarker = errors.New("codegen: unresolved marker")

	// ErrOutputCount is returned when Build gets a different number of
	// outputs and modes.
	ErrOutputCount = errors.New("codegen: outputs do not match modes")
)

// Generator produces shader sources. It holds no state between calls and
// may be used from several goroutines.
type Generator struct {
	opts    Options
	loader  *template.Loader
	scanner *template.Scanner
	log     *slog.Logger
}

// New returns a generator. Zero option fields take their defaults.
func New(opts Options) (*Generator, error) {
	if opts.Templates == nil {
		return nil, ErrNoTemplates
	}
	def := DefaultOptions()
	if opts.ThreadsPerGroup <= 0 {
		opts.ThreadsPerGroup = def.ThreadsPerGroup
	}
	if opts.CBufferName == "" {
		opts.CBufferName = def.CBufferName
	}
	return &Generator{
		opts:    opts,
		loader:  template.NewLoader(opts.Templates),
		scanner: template.NewScanner(opts.RegexTimeout),
		log:     logging.OrNop(opts.Logger),
	}, nil
}

// Generate returns one source per mode.
func (g *Generator) Generate(c *vfx.Context, modes ...Mode) ([]string, error) {
	outputs := make([]*strings.Builder, len(modes))
	for i := range outputs {
		outputs[i] = &strings.Builder{}
	}
	if err := g.Build(c, modes, outputs); err != nil {
		return nil, err
	}
	sources := make([]string, len(outputs))
	for i, o := range outputs {
		sources[i] = o.String()
	}
	return sources, nil
}

// Build writes the source of c for each mode to the matching output.
// Modes whose templates expand to the same text are generated once. On
// error nothing is written.
func (g *Generator) Build(c *vfx.Context, modes []Mode, outputs []*strings.Builder) error {
	if len(modes) != len(outputs) {
		return fmt.Errorf("%w: %d modes, %d outputs", ErrOutputCount, len(modes), len(outputs))
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}

	cache := make(map[string]string)
	sources := make([]string, len(modes))
	for i, mode := range modes {
		p, err := g.loader.Resolve(c.Template, mode.String())
		if err != nil {
			return fmt.Errorf("codegen: %s: %w", c.Name, err)
		}
		text, err := g.loader.Load(p, c.Defines)
		if err != nil {
			return fmt.Errorf("codegen: %s: %w", c.Name, err)
		}
		g.log.Debug("resolved template", "context", c.Name, "mode", mode.String(), "path", p)

		source, ok := cache[text]
		if !ok {
			source, err = newPass(g, c).run(text)
			if err != nil {
				return fmt.Errorf("codegen: %s: %w", c.Name, err)
			}
			cache[text] = source
		}
		sources[i] = source
		g.log.Debug("generated shader", "context", c.String(), "mode", mode.String(), "source", source)
	}

	for i, s := range sources {
		outputs[i].WriteString(s)
	}
	return nil
}
