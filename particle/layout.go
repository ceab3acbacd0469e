// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package particle decides which attributes a particle system stores and
// where they live in its GPU buffers.
//
// Stored attributes use a structure-of-arrays layout in a raw
// attributeBuffer: each attribute owns a region of capacity elements, so the
// word address of element index is
//
//	index * size + capacity * (sum of sizes of the attributes before it)
//
// Source attributes, read by initialization from the spawn event, are
// packed array-of-structures in sourceAttributeBuffer and addressed by
// sourceIndex.
package particle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/vfx"
)

// Buffer and index names used in generated code.
const (
	AttributeBuffer       = "attributeBuffer"
	SourceAttributeBuffer = "sourceAttributeBuffer"
	Index                 = "index"
	SourceIndex           = "sourceIndex"
)

var (
	// ErrNotStored is returned when code is requested for an attribute that
	// has no storage.
	ErrNotStored = errors.New("particle: attribute not stored")

	// ErrTypeMismatch is returned when two uses of one attribute disagree on
	// its type.
	ErrTypeMismatch = errors.New("particle: attribute type mismatch")
)

type usageKey struct {
	name string
	loc  vfx.Location
}

// Layout is the data layout shared by the contexts of one particle system.
type Layout struct {
	capacity uint32
	contexts []*vfx.Context
	usage    map[*vfx.Context]map[usageKey]vfx.AttributeMode

	attributes []vfx.Attribute
	offsets    map[string]uint32 // stored attributes, in words
	words      uint32            // words per particle

	sources      map[string]uint32 // source attributes, offset in struct
	sourceStride uint32
}

var _ vfx.DataLayout = (*Layout)(nil)

// NewLayout returns an empty layout for capacity particles.
func NewLayout(capacity uint32) *Layout {
	return &Layout{
		capacity: capacity,
		usage:    make(map[*vfx.Context]map[usageKey]vfx.AttributeMode),
	}
}

// Attach records the attribute usage of contexts, makes l their data
// layout and recomputes storage.
func (l *Layout) Attach(contexts ...*vfx.Context) error {
	for _, c := range contexts {
		if _, ok := l.usage[c]; !ok {
			l.contexts = append(l.contexts, c)
		}
		u := make(map[usageKey]vfx.AttributeMode)
		for _, b := range c.AllBlocks() {
			for _, a := range b.Attributes {
				u[usageKey{a.Attribute.Name, a.Location}] |= a.Mode
			}
			for _, p := range b.Parameters {
				recordRefs(u, p.Expr)
			}
		}
		for _, p := range c.Parameters {
			recordRefs(u, p.Expr)
		}
		l.usage[c] = u
		c.Data = l
	}
	return l.compile()
}

func recordRefs(u map[usageKey]vfx.AttributeMode, e expr.Expression) {
	for _, r := range vfx.Refs(e) {
		u[usageKey{r.Name, r.Location}] |= vfx.ModeRead
	}
}

func (l *Layout) compile() error {
	types := make(map[string]vfx.Attribute)
	for _, c := range l.contexts {
		for _, b := range c.AllBlocks() {
			for _, a := range b.Attributes {
				if err := addType(types, a.Attribute); err != nil {
					return err
				}
			}
			for _, p := range b.Parameters {
				if err := addRefTypes(types, p.Expr); err != nil {
					return err
				}
			}
		}
		for _, p := range c.Parameters {
			if err := addRefTypes(types, p.Expr); err != nil {
				return err
			}
		}
	}

	l.attributes = l.attributes[:0]
	for _, a := range types {
		l.attributes = append(l.attributes, a)
	}
	sort.Slice(l.attributes, func(i, j int) bool {
		oi, oj := vfx.Order(l.attributes[i].Name), vfx.Order(l.attributes[j].Name)
		if oi != oj {
			return oi < oj
		}
		return l.attributes[i].Name < l.attributes[j].Name
	})

	l.offsets = make(map[string]uint32)
	l.words = 0
	l.sources = make(map[string]uint32)
	l.sourceStride = 0
	for _, a := range l.attributes {
		size := uint32(a.Size()) //nolint:gosec // G115: at most 4
		if l.isStored(a.Name) {
			l.offsets[a.Name] = l.capacity * l.words
			l.words += size
		}
		if l.isSourceRead(a.Name) {
			l.sources[a.Name] = l.sourceStride
			l.sourceStride += size
		}
	}
	return nil
}

func addType(types map[string]vfx.Attribute, a vfx.Attribute) error {
	if prev, ok := types[a.Name]; ok {
		if prev.Type != a.Type {
			return fmt.Errorf("%w: %s used as %s and %s", ErrTypeMismatch, a.Name, prev.Type, a.Type)
		}
		return nil
	}
	if a.Default == nil {
		if reg, ok := vfx.Find(a.Name); ok && reg.Type == a.Type {
			a.Default = reg.Default
		}
	}
	types[a.Name] = a
	return nil
}

func addRefTypes(types map[string]vfx.Attribute, e expr.Expression) error {
	for _, r := range vfx.Refs(e) {
		a, ok := vfx.Find(r.Name)
		if !ok || a.Type != r.Type() {
			a = vfx.Attribute{Name: r.Name, Type: r.Type()}
		}
		if err := addType(types, a); err != nil {
			return err
		}
	}
	return nil
}

// isStored: written by some context and read by some context other than
// initialization.
func (l *Layout) isStored(name string) bool {
	written, read := false, false
	key := usageKey{name, vfx.Current}
	for _, c := range l.contexts {
		m := l.usage[c][key]
		written = written || m.Has(vfx.ModeWrite)
		if c.Type != vfx.ContextInit {
			read = read || m.Has(vfx.ModeRead)
		}
	}
	return written && read
}

func (l *Layout) isSourceRead(name string) bool {
	key := usageKey{name, vfx.Source}
	for _, c := range l.contexts {
		if c.Type == vfx.ContextInit && l.usage[c][key] != vfx.ModeNone {
			return true
		}
	}
	return false
}

// Capacity returns the particle capacity.
func (l *Layout) Capacity() uint32 {
	return l.capacity
}

// BufferSize returns the attribute buffer size in bytes.
func (l *Layout) BufferSize() uint32 {
	return l.capacity * l.words * 4
}

// SourceStride returns the size of one source event in bytes.
func (l *Layout) SourceStride() uint32 {
	return l.sourceStride * 4
}

// Attributes implements vfx.DataLayout.
func (l *Layout) Attributes() []vfx.Attribute {
	out := make([]vfx.Attribute, len(l.attributes))
	copy(out, l.attributes)
	return out
}

// IsStored implements vfx.DataLayout.
func (l *Layout) IsStored(a vfx.Attribute) bool {
	_, ok := l.offsets[a.Name]
	return ok
}

// IsCurrentRead implements vfx.DataLayout.
func (l *Layout) IsCurrentRead(a vfx.Attribute, c *vfx.Context) bool {
	return l.usage[c][usageKey{a.Name, vfx.Current}].Has(vfx.ModeRead)
}

// IsCurrentWritten implements vfx.DataLayout.
func (l *Layout) IsCurrentWritten(a vfx.Attribute, c *vfx.Context) bool {
	return l.usage[c][usageKey{a.Name, vfx.Current}].Has(vfx.ModeWrite)
}

// IsSourceUsed implements vfx.DataLayout.
func (l *Layout) IsSourceUsed(a vfx.Attribute, c *vfx.Context) bool {
	return l.usage[c][usageKey{a.Name, vfx.Source}] != vfx.ModeNone
}

// LoadCode implements vfx.DataLayout.
func (l *Layout) LoadCode(a vfx.Attribute, loc vfx.Location) (string, error) {
	buffer, index := AttributeBuffer, Index
	var offset, stride uint32
	switch loc {
	case vfx.Current:
		off, ok := l.offsets[a.Name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotStored, a.Name)
		}
		offset, stride = off, uint32(a.Size()) //nolint:gosec // G115: at most 4
	default:
		off, ok := l.sources[a.Name]
		if !ok {
			return "", fmt.Errorf("%w: source %s", ErrNotStored, a.Name)
		}
		buffer, index = SourceAttributeBuffer, SourceIndex
		offset, stride = off, l.sourceStride
	}

	load := fmt.Sprintf("%s.%s(%s)", buffer, loadFunc("Load", a.Size()), address(index, stride, offset))
	switch a.Type.Scalar() {
	case expr.TypeFloat:
		return "asfloat(" + load + ")", nil
	case expr.TypeInt32:
		return "asint(" + load + ")", nil
	case expr.TypeBool:
		return "(bool)" + load, nil
	case expr.TypeUint32:
		return load, nil
	default:
		return "", fmt.Errorf("particle: cannot load %s of type %s", a.Name, a.Type)
	}
}

// StoreCode implements vfx.DataLayout.
func (l *Layout) StoreCode(a vfx.Attribute, value string) (string, error) {
	off, ok := l.offsets[a.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotStored, a.Name)
	}
	switch a.Type.Scalar() {
	case expr.TypeFloat, expr.TypeInt32:
		value = "asuint(" + value + ")"
	case expr.TypeBool:
		value = "uint(" + value + ")"
	case expr.TypeUint32:
	default:
		return "", fmt.Errorf("particle: cannot store %s of type %s", a.Name, a.Type)
	}
	addr := address(Index, uint32(a.Size()), off) //nolint:gosec // G115: at most 4
	return fmt.Sprintf("%s.%s(%s,%s)", AttributeBuffer, loadFunc("Store", a.Size()), addr, value), nil
}

func loadFunc(base string, size int) string {
	if size == 1 {
		return base
	}
	return fmt.Sprintf("%s%d", base, size)
}

// address returns the byte address of element index.
func address(index string, stride, offset uint32) string {
	return fmt.Sprintf("(%s * 0x%x + 0x%x) << 2", index, stride, offset)
}
