// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfxfile

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/vfx"
)

// exprNode is one expression in its YAML form. Exactly one of the form keys
// (const, uniform, texture, builtin, attribute, random, op, combine,
// extract, cast, ref) is set.
type exprNode struct {
	Const     string      `yaml:"const"`
	Uniform   string      `yaml:"uniform"`
	Value     yaml.Node   `yaml:"value"`
	Texture   string      `yaml:"texture"`
	Name      string      `yaml:"name"`
	Builtin   string      `yaml:"builtin"`
	Attribute string      `yaml:"attribute"`
	Location  string      `yaml:"location"`
	Random    string      `yaml:"random"`
	Op        string      `yaml:"op"`
	Combine   string      `yaml:"combine"`
	Extract   *int        `yaml:"extract"`
	Cast      string      `yaml:"cast"`
	Args      []yaml.Node `yaml:"args"`
	Arg       yaml.Node   `yaml:"arg"`
	Ref       string      `yaml:"ref"`
}

var formKeys = []string{
	"const", "uniform", "texture", "builtin", "attribute", "random",
	"op", "combine", "extract", "cast", "ref",
}

var operandKeys = map[string]bool{
	"value": true, "name": true, "location": true, "args": true, "arg": true,
}

// builder turns expression nodes into expressions. Named entries of the
// expression table are built once and shared.
type builder struct {
	raw     map[string]*yaml.Node
	built   map[string]expr.Expression
	pending map[string]bool
}

func newBuilder(table *yaml.Node) (*builder, error) {
	b := &builder{
		raw:     make(map[string]*yaml.Node),
		built:   make(map[string]expr.Expression),
		pending: make(map[string]bool),
	}
	if table.Kind == 0 {
		return b, nil
	}
	if table.Kind != yaml.MappingNode {
		return nil, invalid(table.Line, "expressions must be a mapping")
	}
	for i := 0; i+1 < len(table.Content); i += 2 {
		key := table.Content[i]
		if _, dup := b.raw[key.Value]; dup {
			return nil, invalid(key.Line, "duplicate expression %q", key.Value)
		}
		b.raw[key.Value] = table.Content[i+1]
	}
	for i := 0; i+1 < len(table.Content); i += 2 {
		key := table.Content[i]
		if _, err := b.ref(key.Value, key.Line); err != nil {
			return nil, fmt.Errorf("expression %s: %w", key.Value, err)
		}
	}
	return b, nil
}

func (b *builder) ref(name string, line int) (expr.Expression, error) {
	if e, ok := b.built[name]; ok {
		return e, nil
	}
	n, ok := b.raw[name]
	if !ok {
		return nil, invalid(line, "unknown expression %q", name)
	}
	if b.pending[name] {
		return nil, invalid(line, "expression %q refers to itself", name)
	}
	b.pending[name] = true
	defer delete(b.pending, name)

	e, err := b.expression(n)
	if err != nil {
		return nil, err
	}
	b.built[name] = e
	return e, nil
}

func (b *builder) expression(n *yaml.Node) (expr.Expression, error) {
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n.Line, "expression must be a mapping")
	}
	var forms []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		switch {
		case slices.Contains(formKeys, key):
			forms = append(forms, key)
		case operandKeys[key]:
		default:
			return nil, invalid(n.Content[i].Line, "unknown expression key %q", key)
		}
	}
	if len(forms) != 1 {
		return nil, invalid(n.Line, "expression needs exactly one of %s, got %d", strings.Join(formKeys, ", "), len(forms))
	}

	var en exprNode
	if err := n.Decode(&en); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch forms[0] {
	case "ref":
		return b.ref(en.Ref, n.Line)

	case "const", "uniform":
		typeName, mode := en.Const, expr.NewConstant
		if forms[0] == "uniform" {
			typeName, mode = en.Uniform, expr.NewUniform
		}
		t, err := valueType(typeName, n.Line)
		if err != nil {
			return nil, err
		}
		if forms[0] == "const" && en.Value.Kind == 0 {
			return nil, invalid(n.Line, "constant without value")
		}
		data, err := decodeValue(t, &en.Value)
		if err != nil {
			return nil, err
		}
		return mode(t, data), nil

	case "texture":
		t, err := valueType(en.Texture, n.Line)
		if err != nil {
			return nil, err
		}
		if !t.IsTexture() {
			return nil, invalid(n.Line, "%s is not a texture type", t)
		}
		return expr.NewTexture(t, en.Name), nil

	case "builtin":
		kind, ok := expr.ParseBuiltin(en.Builtin)
		if !ok {
			return nil, invalid(n.Line, "unknown builtin %q", en.Builtin)
		}
		return expr.NewBuiltin(kind), nil

	case "attribute":
		a, ok := vfx.Find(en.Attribute)
		if !ok {
			return nil, invalid(n.Line, "unknown attribute %q", en.Attribute)
		}
		loc, ok := vfx.ParseLocation(en.Location)
		if !ok {
			return nil, invalid(n.Line, "unknown location %q", en.Location)
		}
		return a.Ref(loc), nil

	case "random":
		t, err := valueType(en.Random, n.Line)
		if err != nil {
			return nil, err
		}
		if !t.IsFloat() || t == expr.TypeMatrix4x4 {
			return nil, invalid(n.Line, "random values must be float vectors, got %s", t)
		}
		return expr.NewRandom(t), nil

	case "op":
		args, err := b.args(en.Args)
		if err != nil {
			return nil, err
		}
		u, isUnary, bop, isBinary := expr.ParseOp(en.Op)
		switch {
		case isUnary && len(args) == 1:
			return expr.NewUnary(u, args[0]), nil
		case isBinary && len(args) == 2:
			return expr.NewBinary(bop, args[0], args[1]), nil
		case isUnary || isBinary:
			return nil, invalid(n.Line, "op %s: wrong number of arguments (%d)", en.Op, len(args))
		default:
			return nil, invalid(n.Line, "unknown op %q", en.Op)
		}

	case "combine":
		t, err := valueType(en.Combine, n.Line)
		if err != nil {
			return nil, err
		}
		args, err := b.args(en.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != t.Components() {
			return nil, invalid(n.Line, "combine %s needs %d components, got %d", t, t.Components(), len(args))
		}
		return expr.NewCombine(t, args...), nil

	case "extract", "cast":
		if en.Arg.Kind == 0 || (forms[0] == "extract" && en.Extract == nil) {
			return nil, invalid(n.Line, "%s without arg", forms[0])
		}
		x, err := b.expression(&en.Arg)
		if err != nil {
			return nil, err
		}
		if forms[0] == "extract" {
			return expr.NewExtract(x, *en.Extract), nil
		}
		t, err := valueType(en.Cast, n.Line)
		if err != nil {
			return nil, err
		}
		return expr.NewCast(t, x), nil
	}
	return nil, invalid(n.Line, "unsupported expression form %q", forms[0])
}

func (b *builder) args(nodes []yaml.Node) ([]expr.Expression, error) {
	out := make([]expr.Expression, len(nodes))
	for i := range nodes {
		e, err := b.expression(&nodes[i])
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func valueType(name string, line int) (expr.ValueType, error) {
	t, ok := expr.ParseValueType(name)
	if !ok {
		return expr.TypeNone, invalid(line, "unknown type %q", name)
	}
	return t, nil
}

// decodeValue converts a YAML value to the Go representation of t. A
// missing value yields the zero value. CPU-only types carry no data.
func decodeValue(t expr.ValueType, n *yaml.Node) (any, error) {
	if !t.IsUniform() {
		if t.IsValidOnGPU() {
			return nil, invalid(n.Line, "type %s has no value form", t)
		}
		return nil, nil
	}
	if t.Components() > 1 {
		v := make([]float32, t.Components())
		if n.Kind != 0 {
			if err := n.Decode(&v); err != nil {
				return nil, invalid(n.Line, "%v", err)
			}
			if len(v) != t.Components() {
				return nil, invalid(n.Line, "want %d components, got %d", t.Components(), len(v))
			}
		}
		switch t {
		case expr.TypeFloat2:
			return [2]float32(v), nil
		case expr.TypeFloat3:
			return [3]float32(v), nil
		case expr.TypeFloat4:
			return [4]float32(v), nil
		default:
			return [16]float32(v), nil
		}
	}

	var v any
	switch t {
	case expr.TypeFloat:
		v = new(float32)
	case expr.TypeInt32:
		v = new(int32)
	case expr.TypeUint32:
		v = new(uint32)
	default:
		v = new(bool)
	}
	if n.Kind != 0 {
		if err := n.Decode(v); err != nil {
			return nil, invalid(n.Line, "%v", err)
		}
	}
	switch p := v.(type) {
	case *float32:
		return *p, nil
	case *int32:
		return *p, nil
	case *uint32:
		return *p, nil
	default:
		return *(v.(*bool)), nil
	}
}
