// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl provides the HLSL text emitter used by the particle code
// generator.
//
// A [Writer] accumulates HLSL source with four-space indentation and
// brace-delimited scopes. On top of plain line output it knows how to
// declare typed variables, emit an expression DAG as a sequence of
// temporaries, pack uniforms into a constant buffer, and write block
// functions together with their call sites.
//
// # Expressions
//
// [Writer.WriteExpression] walks an expression DAG in post-order. A
// [NameCache] remembers the name of every node already emitted, so each node
// is computed once and its dependencies always come first:
//
//	cache := hlsl.NewNameCache()
//	cache.Seed(mapper.Names())
//	if err := w.WriteExpression(e, cache); err != nil {
//	    return err
//	}
//	name, _ := cache.Lookup(e) // "tmp_a", a literal, or a uniform name
//
// Constants are inlined as literals and never get a temporary.
//
// # Constant Buffer Packing
//
// Uniforms are sorted by component count, largest first, and packed first-fit
// into 16-byte rows:
//
//	cbuffer parameters : register(b0, space0) {
//	    float3 uniform_a;
//	    float uniform_b;
//	    float2 uniform_c;
//	    float2 PADDING_0;
//	};
//
// # Errors
//
// Errors are reported as [*Error] values. They indicate a bug in the caller
// (a CPU-only type reaching the shader, an unbalanced scope), not a problem
// with user content.
package hlsl
