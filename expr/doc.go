// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package expr provides the typed expression model consumed by the shader
// generator.
//
// An expression graph is a DAG of [Expression] nodes. The set of node kinds
// is closed: every kind is a pointer type declared in this package, and code
// emission pattern-matches on the concrete kind with a type switch.
//
// Node identity is pointer identity. Two structurally equal nodes are still
// distinct; sharing a computation across the graph means sharing the node.
// Maps keyed by [Expression] therefore behave as identity maps.
//
// # Flags
//
// Each node reports [Flags] derived from its leaves:
//
//	Constant      every leaf is a constant value; the node can be folded
//	GPUOnly       the node cannot be evaluated on the CPU
//	PerElement    the node depends on mutable per-particle state
//	InvalidOnGPU  a CPU-only value type appears in the tree
//
// Nodes that are neither Constant nor GPUOnly are evaluated on the CPU and
// uploaded to the GPU as uniforms by the uniform mapper.
//
// # Folding
//
// [Folder] replaces constant sub-trees with [Value] constants:
//
//	f := expr.NewFolder()
//	speed := f.Fold(expr.NewBinary(expr.OpMul, expr.ConstFloat(2), expr.ConstFloat(3)))
//	// speed is a *Value holding float32(6)
package expr
