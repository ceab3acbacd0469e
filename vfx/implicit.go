// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfx

import "github.com/gogpu/vfxgen/expr"

func deltaTimeOrBuiltin(deltaTime expr.Expression) expr.Expression {
	if deltaTime == nil {
		return expr.NewBuiltin(expr.BuiltinDeltaTime)
	}
	return deltaTime
}

// EulerIntegration moves particles along their velocity.
// A nil deltaTime uses the frame delta time builtin.
func EulerIntegration(deltaTime expr.Expression) *Block {
	return &Block{
		Name:   "EulerIntegration",
		Source: "position += velocity * deltaTime;",
		Attributes: []AttributeUse{
			{Attribute: MustFind("position"), Location: Current, Mode: ModeReadWrite},
			{Attribute: MustFind("velocity"), Location: Current, Mode: ModeRead},
		},
		Parameters: []NamedExpression{{Name: "deltaTime", Expr: deltaTimeOrBuiltin(deltaTime)}},
	}
}

// Aging advances particle age.
func Aging(deltaTime expr.Expression) *Block {
	return &Block{
		Name:   "Age",
		Source: "age += deltaTime;",
		Attributes: []AttributeUse{
			{Attribute: MustFind("age"), Location: Current, Mode: ModeReadWrite},
		},
		Parameters: []NamedExpression{{Name: "deltaTime", Expr: deltaTimeOrBuiltin(deltaTime)}},
	}
}

// Reaping kills particles older than their lifetime.
func Reaping() *Block {
	return &Block{
		Name:   "Reap",
		Source: "if (age > lifetime)\n    alive = false;",
		Attributes: []AttributeUse{
			{Attribute: MustFind("age"), Location: Current, Mode: ModeRead},
			{Attribute: MustFind("lifetime"), Location: Current, Mode: ModeRead},
			{Attribute: MustFind("alive"), Location: Current, Mode: ModeReadWrite},
		},
	}
}
