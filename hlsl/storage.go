// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"sort"

	nhlsl "github.com/gogpu/naga/hlsl"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/uniform"
)

// rowComponents is the number of 32-bit components in a constant buffer row.
const rowComponents = 4

// PaddingPrefix prefixes constant buffer padding members.
const PaddingPrefix = "PADDING_"

// PackUniforms groups uniforms into constant buffer rows. Constant uniforms
// and values of CPU-only types are dropped, the rest are ordered by component count,
// largest first, and placed into the first row with enough room. A type
// wider than a row occupies rows of its own.
func PackUniforms(uniforms []expr.Expression) [][]expr.Expression {
	values := make([]expr.Expression, 0, len(uniforms))
	for _, u := range uniforms {
		if u.Flags().Has(expr.FlagConstant) || !u.Type().IsValidOnGPU() {
			continue
		}
		values = append(values, u)
	}
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Type().Components() > values[j].Type().Components()
	})

	var rows [][]expr.Expression
	var used []int
	for _, v := range values {
		size := v.Type().Components()
		placed := false
		for i := range rows {
			if used[i]+size <= rowComponents {
				rows[i] = append(rows[i], v)
				used[i] += size
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []expr.Expression{v})
			used = append(used, size)
		}
	}
	return rows
}

// WriteCBuffer writes the constant buffer holding the mapper's uniforms.
// Nothing is written when there are no uniforms.
//
// Example output:
//
//	cbuffer parameters : register(b0, space0) {
//	    float3 uniform_a;
//	    float uniform_b;
//	};
func (w *Writer) WriteCBuffer(m *uniform.Mapper, name string) error {
	rows := PackUniforms(m.Uniforms())
	if len(rows) == 0 {
		return nil
	}

	w.WriteLine("cbuffer %s : %s {", name, uniform.Register(nhlsl.RegisterTypeB, m.CBufferBinding()))
	w.pushIndent()
	padding := 0
	for _, row := range rows {
		current := 0
		for _, v := range row {
			member, ok := m.Name(v)
			if !ok {
				return NewError(ErrUnresolvedExpression, "uniform of type %s has no slot", v.Type())
			}
			if err := w.WriteDeclaration(v.Type(), member); err != nil {
				return err
			}
			current += v.Type().Components()
		}
		if pad := (rowComponents - current%rowComponents) % rowComponents; pad > 0 {
			typeName, _ := TypeName(expr.FloatVector(pad))
			w.WriteLine("%s %s%d;", typeName, PaddingPrefix, padding)
			padding++
		}
	}
	w.popIndent()
	w.WriteLine("};")
	return nil
}

// WriteTexturesAndSamplers declares every mapped texture with its sampler.
//
// Example output:
//
//	Texture2D texture_a : register(t0, space0);
//	SamplerState samplertexture_a : register(s0, space0);
func (w *Writer) WriteTexturesAndSamplers(m *uniform.Mapper) error {
	for _, tex := range m.Textures() {
		name, ok := m.Name(tex)
		if !ok {
			return NewError(ErrUnresolvedExpression, "texture of type %s has no slot", tex.Type())
		}
		typeName, err := TypeName(tex.Type())
		if err != nil {
			return err
		}
		tb, _ := m.TextureBinding(tex)
		sb, _ := m.SamplerBinding(tex)
		w.WriteLine("%s %s : %s;", typeName, name, uniform.Register(nhlsl.RegisterTypeT, tb))
		w.WriteLine("%s %s : %s;", samplerType, uniform.SamplerName(name), uniform.Register(nhlsl.RegisterTypeS, sb))
	}
	return nil
}

const samplerType = "SamplerState"

// textureArgs returns the parameter or argument list for a texture and its
// sampler.
func textureArgs(typeName, name string) []string {
	if typeName == "" {
		return []string{name, uniform.SamplerName(name)}
	}
	return []string{
		fmt.Sprintf("%s %s", typeName, name),
		fmt.Sprintf("%s %s", samplerType, uniform.SamplerName(name)),
	}
}
