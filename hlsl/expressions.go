// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vfxgen/expr"
)

// WriteExpression emits the statements computing e and records its name in
// cache. Nodes already named in cache produce no output. Constants are
// inlined; attributes and GPU builtins resolve to their in-shader variables;
// uniforms and textures must have been seeded into cache by the caller.
func (w *Writer) WriteExpression(e expr.Expression, cache *NameCache) error {
	if _, ok := cache.Lookup(e); ok {
		return nil
	}
	if !e.Type().IsValidOnGPU() {
		return NewError(ErrInvalidGPUType, "%T of type %s cannot be computed on GPU", e, e.Type())
	}

	switch n := e.(type) {
	case *expr.Value:
		if n.Mode() != expr.ValueConstant {
			return NewError(ErrUnresolvedExpression, "uniform of type %s has no slot", n.Type())
		}
		s, err := ValueString(n.Type(), n.Data())
		if err != nil {
			return err
		}
		cache.record(e, s)
		return nil
	case *expr.Texture:
		return NewError(ErrUnresolvedExpression, "texture %q has no slot", n.Asset)
	case *expr.AttributeRef:
		cache.record(e, n.Code())
		return nil
	case *expr.Builtin:
		if !n.Flags().Has(expr.FlagGPUOnly) {
			return NewError(ErrUnresolvedExpression, "builtin %s has no slot", n.Kind)
		}
		cache.record(e, n.Code())
		return nil
	}

	parents := e.Parents()
	args := make([]string, len(parents))
	for i, p := range parents {
		if err := w.WriteExpression(p, cache); err != nil {
			return err
		}
		args[i], _ = cache.Lookup(p)
	}

	code, err := expressionCode(e, args)
	if err != nil {
		return err
	}
	name := cache.nextTemp()
	if err := w.WriteVariable(e.Type(), name, code); err != nil {
		return err
	}
	cache.record(e, name)
	return nil
}

// expressionCode returns the right-hand side computing e from the names of
// its parents.
func expressionCode(e expr.Expression, args []string) (string, error) {
	switch n := e.(type) {
	case *expr.Random:
		if c := n.Type().Components(); c > 1 {
			return fmt.Sprintf("RAND%d", c), nil
		}
		return "RAND", nil
	case *expr.Unary:
		if n.Op == expr.OpNegate {
			return "-" + args[0], nil
		}
		return fmt.Sprintf("%s(%s)", n.Op, args[0]), nil
	case *expr.Binary:
		switch n.Op {
		case expr.OpAdd:
			return args[0] + " + " + args[1], nil
		case expr.OpSub:
			return args[0] + " - " + args[1], nil
		case expr.OpMul:
			return args[0] + " * " + args[1], nil
		case expr.OpDiv:
			return args[0] + " / " + args[1], nil
		default:
			return fmt.Sprintf("%s(%s, %s)", n.Op, args[0], args[1]), nil
		}
	case *expr.Combine:
		typeName, err := TypeName(n.Type())
		if err != nil {
			return "", err
		}
		return typeName + "(" + strings.Join(args, ", ") + ")", nil
	case *expr.Extract:
		if n.Component < 0 || n.Component >= n.X.Type().Components() || n.Component > 3 {
			return "", NewError(ErrInvalidArgument, "component %d out of range for %s", n.Component, n.X.Type())
		}
		return args[0] + "." + string("xyzw"[n.Component]), nil
	case *expr.Cast:
		typeName, err := TypeName(n.To)
		if err != nil {
			return "", err
		}
		return "(" + typeName + ")" + args[0], nil
	default:
		return "", NewError(ErrUnresolvedExpression, "unsupported expression %T", e)
	}
}
