// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package uniform assigns GPU resource slots to the expressions that the
// host evaluates on the CPU.
//
// Every distinct non-constant, CPU-computable, GPU-valid expression is given
// exactly one slot: a constant buffer member for scalar, vector and matrix
// types, or a texture plus sampler pair for texture types. Distinct means
// distinct node: the mapper is keyed by expression identity.
package uniform

import (
	"fmt"

	"github.com/gogpu/naga/hlsl"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/internal/naming"
)

// Name prefixes of generated slots.
const (
	UniformPrefix = "uniform_"
	TexturePrefix = "texture_"
	SamplerPrefix = "sampler"
)

// Mapper collects uniforms and textures.
type Mapper struct {
	// Space is the register space used for every binding.
	Space uint8

	uniforms []expr.Expression
	textures []expr.Expression
	names    map[expr.Expression]string
	namer    *naming.Namer
	index    uint32
}

// NewMapper returns an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		names: make(map[expr.Expression]string),
		namer: naming.NewNamer(),
	}
}

// Collect maps e, or the CPU-computable sub-trees of e when e itself must
// be computed on the GPU. A non-empty name is used for e itself; nested
// uniforms get generated names.
//
// Constants are never mapped: they are inlined as literals. Expressions of a
// CPU-only type are skipped since they never reach the shader.
func (m *Mapper) Collect(e expr.Expression, name string) {
	if e == nil {
		return
	}
	flags := e.Flags()
	if flags.Has(expr.FlagGPUOnly) {
		for _, p := range e.Parents() {
			m.Collect(p, "")
		}
		return
	}
	if flags.Has(expr.FlagConstant) {
		return
	}
	if _, ok := m.names[e]; ok {
		return
	}

	if b, ok := e.(*expr.Builtin); ok && name == "" {
		name = b.Kind.String()
	}

	t := e.Type()
	switch {
	case t.IsUniform():
		m.names[e] = m.newName(UniformPrefix, name)
		m.uniforms = append(m.uniforms, e)
	case t.IsTexture():
		m.names[e] = m.newName(TexturePrefix, name)
		m.textures = append(m.textures, e)
	}
}

func (m *Mapper) newName(prefix, name string) string {
	if name == "" {
		generated := prefix + naming.Base26(m.index)
		m.index++
		return m.namer.Call(generated)
	}
	return m.namer.Call(name)
}

// Uniforms returns the constant buffer expressions in collection order.
func (m *Mapper) Uniforms() []expr.Expression {
	return m.uniforms
}

// Textures returns the texture expressions in collection order.
func (m *Mapper) Textures() []expr.Expression {
	return m.textures
}

// Name returns the name assigned to e.
func (m *Mapper) Name(e expr.Expression) (string, bool) {
	name, ok := m.names[e]
	return name, ok
}

// Names returns a copy of the expression to name mapping.
func (m *Mapper) Names() map[expr.Expression]string {
	out := make(map[expr.Expression]string, len(m.names))
	for e, n := range m.names {
		out[e] = n
	}
	return out
}

// SamplerName returns the sampler paired with a texture name.
func SamplerName(texture string) string {
	return SamplerPrefix + texture
}

// CBufferBinding returns the register target of the constant buffer.
func (m *Mapper) CBufferBinding() hlsl.BindTarget {
	return hlsl.DefaultBindTarget().WithSpace(m.Space)
}

// TextureBinding returns the t-register target of a mapped texture.
func (m *Mapper) TextureBinding(e expr.Expression) (hlsl.BindTarget, bool) {
	for i, t := range m.textures {
		if t == e {
			return hlsl.DefaultBindTarget().WithSpace(m.Space).WithRegister(uint32(i)), true //nolint:gosec // G115: texture count is small
		}
	}
	return hlsl.BindTarget{}, false
}

// SamplerBinding returns the s-register target of a mapped texture's sampler.
// Samplers share the index of their texture.
func (m *Mapper) SamplerBinding(e expr.Expression) (hlsl.BindTarget, bool) {
	return m.TextureBinding(e)
}

// Register formats a binding as an HLSL register clause, e.g. "register(t0, space0)".
func Register(rt hlsl.RegisterType, bt hlsl.BindTarget) string {
	return fmt.Sprintf("register(%s%d, space%d)", rt, bt.Register, bt.Space)
}
