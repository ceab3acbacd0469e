// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfx

import "github.com/gogpu/vfxgen/expr"

// registry lists the built-in attributes. Storage layout follows this order.
var registry = []Attribute{
	{Name: "position", Type: expr.TypeFloat3, Default: [3]float32{0, 0, 0}},
	{Name: "velocity", Type: expr.TypeFloat3, Default: [3]float32{0, 0, 0}},
	{Name: "color", Type: expr.TypeFloat3, Default: [3]float32{1, 1, 1}},
	{Name: "alpha", Type: expr.TypeFloat, Default: float32(1)},
	{Name: "size", Type: expr.TypeFloat, Default: float32(0.1)},
	{Name: "lifetime", Type: expr.TypeFloat, Default: float32(1)},
	{Name: "age", Type: expr.TypeFloat, Default: float32(0)},
	{Name: "alive", Type: expr.TypeBool, Default: true},
	{Name: "seed", Type: expr.TypeUint32, Default: uint32(0)},
	{Name: "angle", Type: expr.TypeFloat, Default: float32(0)},
	{Name: "angularVelocity", Type: expr.TypeFloat, Default: float32(0)},
	{Name: "texIndex", Type: expr.TypeFloat, Default: float32(0)},
	{Name: "pivot", Type: expr.TypeFloat3, Default: [3]float32{0, 0, 0}},
	{Name: "mass", Type: expr.TypeFloat, Default: float32(1)},
}

// Find returns the built-in attribute with the given name.
func Find(name string) (Attribute, bool) {
	for _, a := range registry {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// MustFind is like Find but panics on unknown names.
// It is meant for package-level block definitions.
func MustFind(name string) Attribute {
	a, ok := Find(name)
	if !ok {
		panic("vfx: unknown attribute " + name)
	}
	return a
}

// Attributes returns the built-in attributes in registry order.
func Attributes() []Attribute {
	out := make([]Attribute, len(registry))
	copy(out, registry)
	return out
}

// Order returns the registry position of name, or len(registry) for
// attributes outside the registry.
func Order(name string) int {
	for i, a := range registry {
		if a.Name == name {
			return i
		}
	}
	return len(registry)
}
