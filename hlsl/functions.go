// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/vfxgen/expr"
)

// Parameter is one argument of a block function.
type Parameter struct {
	// Name is the parameter name inside the function body.
	Name string

	// Expr is the value passed at the call site. Its type is the
	// parameter type.
	Expr expr.Expression

	// Write marks an inout parameter. The argument must be an attribute.
	Write bool
}

// WriteBlockFunction writes a void function wrapping a block's source.
// Texture parameters expand to a texture and its sampler; write parameters
// are declared inout.
//
// Example output:
//
//	// Applies gravity
//	void Gravity_a(inout float3 velocity, float3 force, float deltaTime)
//	{
//	    velocity += force * deltaTime;
//	}
func (w *Writer) WriteBlockFunction(name, source string, params []Parameter, comment string) error {
	args := make([]string, 0, len(params))
	for _, p := range params {
		t := p.Expr.Type()
		typeName, err := TypeName(t)
		if err != nil {
			return err
		}
		if t.IsTexture() {
			if p.Write {
				return NewError(ErrInvalidArgument, "texture parameter %q cannot be written", p.Name)
			}
			args = append(args, textureArgs(typeName, p.Name)...)
			continue
		}
		if p.Write {
			typeName = "inout " + typeName
		}
		args = append(args, typeName+" "+p.Name)
	}

	if comment != "" {
		w.WriteComment(comment)
	}
	w.WriteLine("void %s(%s)", name, strings.Join(args, ", "))
	w.EnterScope()
	w.WriteLines(source)
	return w.ExitScope()
}

// WriteCallFunction writes the temporaries feeding params, then the call.
func (w *Writer) WriteCallFunction(name string, params []Parameter, cache *NameCache) error {
	args := make([]string, 0, len(params))
	for _, p := range params {
		if p.Write {
			if _, ok := p.Expr.(*expr.AttributeRef); !ok {
				return NewError(ErrInvalidArgument, "argument %q of %s is written but is not an attribute", p.Name, name)
			}
		}
		if err := w.WriteExpression(p.Expr, cache); err != nil {
			return err
		}
		arg, _ := cache.Lookup(p.Expr)
		if p.Expr.Type().IsTexture() {
			args = append(args, textureArgs("", arg)...)
			continue
		}
		args = append(args, arg)
	}
	w.WriteLine("%s(%s);", name, strings.Join(args, ", "))
	return nil
}
