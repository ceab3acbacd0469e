// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vfxfile decodes YAML particle system descriptions into contexts
// ready for code generation.
//
// A description names the system, its particle capacity, a table of shared
// expressions and the contexts:
//
//	name: fountain
//	capacity: 1024
//	expressions:
//	  dt: {builtin: deltaTime}
//	contexts:
//	  - name: update
//	    type: update
//	    template: VFXUpdate
//	    integration: euler
//	    delta_time: {ref: dt}
//
// Every reference to a shared expression resolves to the same node, so the
// generator computes it once.
package vfxfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/particle"
	"github.com/gogpu/vfxgen/vfx"
)

// ErrInvalid is wrapped by every description error.
var ErrInvalid = errors.New("vfxfile: invalid description")

// System is a decoded description.
type System struct {
	Name     string
	Capacity uint32
	Contexts []*vfx.Context
	Layout   *particle.Layout
}

// Context returns the context with the given name.
func (s *System) Context(name string) (*vfx.Context, bool) {
	for _, c := range s.Contexts {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

type file struct {
	Name        string        `yaml:"name"`
	Capacity    uint32        `yaml:"capacity"`
	Expressions yaml.Node     `yaml:"expressions"`
	Contexts    []contextNode `yaml:"contexts"`
}

type contextNode struct {
	Name         string            `yaml:"name"`
	Type         string            `yaml:"type"`
	Template     string            `yaml:"template"`
	Defines      []string          `yaml:"defines"`
	Blocks       []blockNode       `yaml:"blocks"`
	Parameters   []parameterNode   `yaml:"parameters"`
	Integration  string            `yaml:"integration"`
	Aging        bool              `yaml:"aging"`
	Reaping      bool              `yaml:"reaping"`
	DeltaTime    yaml.Node         `yaml:"delta_time"`
	Replacements []replacementNode `yaml:"replacements"`

	line int
}

func (c *contextNode) UnmarshalYAML(n *yaml.Node) error {
	type plain contextNode
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line = n.Line
	return nil
}

type blockNode struct {
	Name       string          `yaml:"name"`
	Function   string          `yaml:"function"`
	Source     string          `yaml:"source"`
	Comment    string          `yaml:"comment"`
	Attributes []attributeNode `yaml:"attributes"`
	Parameters []parameterNode `yaml:"parameters"`

	line int
}

func (b *blockNode) UnmarshalYAML(n *yaml.Node) error {
	type plain blockNode
	if err := n.Decode((*plain)(b)); err != nil {
		return err
	}
	b.line = n.Line
	return nil
}

type attributeNode struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Mode     string `yaml:"mode"`

	line int
}

func (a *attributeNode) UnmarshalYAML(n *yaml.Node) error {
	type plain attributeNode
	if err := n.Decode((*plain)(a)); err != nil {
		return err
	}
	a.line = n.Line
	return nil
}

type parameterNode struct {
	Name string    `yaml:"name"`
	Expr yaml.Node `yaml:"expr"`
}

type replacementNode struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Load reads and decodes the description at path.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vfxfile: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a description held in memory.
func Parse(data []byte) (*System, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one description from r, builds its contexts and attaches
// them to a particle layout.
func Decode(r io.Reader) (*System, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if f.Capacity == 0 {
		return nil, fmt.Errorf("%w: %s: capacity must be positive", ErrInvalid, f.Name)
	}

	b, err := newBuilder(&f.Expressions)
	if err != nil {
		return nil, err
	}

	s := &System{Name: f.Name, Capacity: f.Capacity}
	for i := range f.Contexts {
		c, err := b.context(&f.Contexts[i])
		if err != nil {
			return nil, err
		}
		if _, dup := s.Context(c.Name); dup {
			return nil, invalid(f.Contexts[i].line, "duplicate context %q", c.Name)
		}
		s.Contexts = append(s.Contexts, c)
	}

	s.Layout = particle.NewLayout(f.Capacity)
	if err := s.Layout.Attach(s.Contexts...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return s, nil
}

func (b *builder) context(n *contextNode) (*vfx.Context, error) {
	if n.Name == "" {
		return nil, invalid(n.line, "context without name")
	}
	typ, ok := vfx.ParseContextType(n.Type)
	if !ok {
		return nil, invalid(n.line, "context %s: unknown type %q", n.Name, n.Type)
	}
	c := &vfx.Context{
		Name:     n.Name,
		Type:     typ,
		Template: n.Template,
		Defines:  n.Defines,
	}
	if c.Template == "" {
		return nil, invalid(n.line, "context %s: missing template", n.Name)
	}

	for i := range n.Blocks {
		blk, err := b.block(&n.Blocks[i])
		if err != nil {
			return nil, fmt.Errorf("context %s: %w", n.Name, err)
		}
		c.Blocks = append(c.Blocks, blk)
	}

	params, err := b.parameters(n.Parameters)
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", n.Name, err)
	}
	c.Parameters = params

	var dt expr.Expression
	if n.DeltaTime.Kind != 0 {
		if dt, err = b.expression(&n.DeltaTime); err != nil {
			return nil, fmt.Errorf("context %s: delta_time: %w", n.Name, err)
		}
		if dt.Type() != expr.TypeFloat {
			return nil, invalid(n.DeltaTime.Line, "context %s: delta_time is %s, want float", n.Name, dt.Type())
		}
	}
	switch n.Integration {
	case "", "none":
	case "euler":
		c.Implicit = append(c.Implicit, vfx.EulerIntegration(dt))
	default:
		return nil, invalid(n.line, "context %s: unknown integration %q", n.Name, n.Integration)
	}
	if n.Aging {
		c.Implicit = append(c.Implicit, vfx.Aging(dt))
	}
	if n.Reaping {
		c.Implicit = append(c.Implicit, vfx.Reaping())
	}

	for _, r := range n.Replacements {
		c.Replacements = append(c.Replacements, vfx.Replacement{Key: r.Key, Value: r.Value})
	}
	return c, nil
}

func (b *builder) block(n *blockNode) (*vfx.Block, error) {
	if n.Name == "" {
		return nil, invalid(n.line, "block without name")
	}
	blk := &vfx.Block{
		Name:     n.Name,
		Function: n.Function,
		Source:   n.Source,
		Comment:  n.Comment,
	}
	for _, an := range n.Attributes {
		a, ok := vfx.Find(an.Name)
		if !ok {
			return nil, invalid(an.line, "block %s: unknown attribute %q", n.Name, an.Name)
		}
		loc, ok := vfx.ParseLocation(an.Location)
		if !ok {
			return nil, invalid(an.line, "block %s: unknown location %q", n.Name, an.Location)
		}
		mode, ok := vfx.ParseAttributeMode(an.Mode)
		if !ok {
			return nil, invalid(an.line, "block %s: attribute %s: unknown mode %q", n.Name, an.Name, an.Mode)
		}
		blk.Attributes = append(blk.Attributes, vfx.AttributeUse{Attribute: a, Location: loc, Mode: mode})
	}
	params, err := b.parameters(n.Parameters)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", n.Name, err)
	}
	blk.Parameters = params
	return blk, nil
}

func (b *builder) parameters(nodes []parameterNode) ([]vfx.NamedExpression, error) {
	out := make([]vfx.NamedExpression, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Name == "" {
			return nil, invalid(n.Expr.Line, "parameter without name")
		}
		if n.Expr.Kind == 0 {
			return nil, fmt.Errorf("%w: parameter %s has no expr", ErrInvalid, n.Name)
		}
		e, err := b.expression(&n.Expr)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", n.Name, err)
		}
		out = append(out, vfx.NamedExpression{Name: n.Name, Expr: e})
	}
	return out, nil
}

func invalid(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalid, line, fmt.Sprintf(format, args...))
}
