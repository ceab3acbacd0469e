// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfx

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gogpu/vfxgen/expr"
)

// ErrInvalidContext is returned by Context.Validate.
var ErrInvalidContext = errors.New("vfx: invalid context")

// ContextType is the stage a context runs in.
type ContextType uint8

const (
	ContextSpawner ContextType = iota
	ContextInit
	ContextUpdate
	ContextOutput
)

var contextTypeNames = [...]string{
	ContextSpawner: "spawner",
	ContextInit:    "init",
	ContextUpdate:  "update",
	ContextOutput:  "output",
}

func (t ContextType) String() string {
	if int(t) < len(contextTypeNames) {
		return contextTypeNames[t]
	}
	return fmt.Sprintf("context(%d)", uint8(t))
}

// ParseContextType returns the context type with the given name.
func ParseContextType(name string) (ContextType, bool) {
	for t, n := range contextTypeNames {
		if strings.EqualFold(n, name) {
			return ContextType(t), true
		}
	}
	return 0, false
}

// Block is one step of a context: a verbatim HLSL body wrapped in a
// generated function.
type Block struct {
	Name string

	// Function overrides the generated function name.
	Function string

	// Source is the function body.
	Source string

	Attributes []AttributeUse
	Parameters []NamedExpression

	// Comment is written above the function definition.
	Comment string
}

// FunctionName returns the HLSL function name of the block. Blocks with
// the same function name share one definition.
func (b *Block) FunctionName() string {
	if b.Function != "" {
		return b.Function
	}
	return sanitize(b.Name)
}

func sanitize(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))):
			if i == 0 && unicode.IsDigit(r) {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "Block"
	}
	return sb.String()
}

// Replacement is an extra textual substitution applied after generation.
type Replacement struct {
	Key   string
	Value string
}

// DataLayout answers storage questions about attributes.
type DataLayout interface {
	// Attributes returns every attribute used by any attached context.
	Attributes() []Attribute

	IsStored(a Attribute) bool
	IsCurrentRead(a Attribute, c *Context) bool
	IsCurrentWritten(a Attribute, c *Context) bool
	IsSourceUsed(a Attribute, c *Context) bool

	// LoadCode returns an HLSL expression reading a from storage.
	LoadCode(a Attribute, loc Location) (string, error)

	// StoreCode returns an HLSL statement, without the semicolon, writing
	// value to a's storage.
	StoreCode(a Attribute, value string) (string, error)
}

// Context is a compiled stage of a particle system.
type Context struct {
	Name     string
	Type     ContextType
	Template string

	Blocks []*Block

	// Implicit blocks run after Blocks.
	Implicit []*Block

	// Parameters are available to templates through VFXLoadParameter.
	Parameters []NamedExpression

	Defines      []string
	Replacements []Replacement

	Data DataLayout
}

// AllBlocks returns the declared blocks followed by the implicit ones.
func (c *Context) AllBlocks() []*Block {
	out := make([]*Block, 0, len(c.Blocks)+len(c.Implicit))
	out = append(out, c.Blocks...)
	return append(out, c.Implicit...)
}

func (c *Context) String() string {
	return fmt.Sprintf("%s context %q (template %s, %d blocks)", c.Type, c.Name, c.Template, len(c.Blocks)+len(c.Implicit))
}

// Validate checks the context for mistakes that would produce invalid HLSL.
func (c *Context) Validate() error {
	if c.Template == "" {
		return fmt.Errorf("%w: %s: no template", ErrInvalidContext, c.Name)
	}
	if c.Data == nil {
		return fmt.Errorf("%w: %s: no data layout", ErrInvalidContext, c.Name)
	}
	for _, p := range c.Parameters {
		if p.Expr == nil {
			return fmt.Errorf("%w: %s: parameter %q has no expression", ErrInvalidContext, c.Name, p.Name)
		}
	}
	for _, b := range c.AllBlocks() {
		if err := validateBlock(b); err != nil {
			return fmt.Errorf("%w: %s: block %s: %w", ErrInvalidContext, c.Name, b.Name, err)
		}
	}
	return nil
}

func validateBlock(b *Block) error {
	names := make(map[string]bool)
	for _, u := range b.Attributes {
		if u.Mode == ModeNone {
			return fmt.Errorf("attribute %s has no access mode", u.Attribute.Name)
		}
		if u.Location == Source && u.Mode.Has(ModeWrite) {
			return fmt.Errorf("source attribute %s is read-only", u.Attribute.Name)
		}
		if !u.Attribute.Type.IsUniform() || u.Attribute.Size() > 4 {
			return fmt.Errorf("attribute %s has unsupported type %s", u.Attribute.Name, u.Attribute.Type)
		}
		name := u.Attribute.InCodeName(u.Location)
		if names[name] {
			return fmt.Errorf("duplicate argument %s", name)
		}
		names[name] = true
	}
	for _, p := range b.Parameters {
		if p.Expr == nil {
			return fmt.Errorf("parameter %q has no expression", p.Name)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate argument %s", p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

// GPUParameters returns the block parameters whose type can be passed to a
// shader function. CPU-only parameters are consumed by the host.
func (b *Block) GPUParameters() []NamedExpression {
	out := make([]NamedExpression, 0, len(b.Parameters))
	for _, p := range b.Parameters {
		if p.Expr.Type().IsValidOnGPU() {
			out = append(out, p)
		}
	}
	return out
}

// Refs returns the attribute references reachable from e.
func Refs(e expr.Expression) []*expr.AttributeRef {
	var out []*expr.AttributeRef
	seen := make(map[expr.Expression]bool)
	var walk func(expr.Expression)
	walk = func(e expr.Expression) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		if r, ok := e.(*expr.AttributeRef); ok {
			out = append(out, r)
			return
		}
		for _, p := range e.Parents() {
			walk(p)
		}
	}
	walk(e)
	return out
}
