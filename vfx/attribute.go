// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vfx describes particle contexts: the attributes they touch, the
// blocks they run, and the data layout that stores attributes between
// contexts.
package vfx

import (
	"fmt"
	"strings"

	"github.com/gogpu/vfxgen/expr"
)

// Location selects which copy of an attribute a block accesses.
type Location = expr.Location

// Attribute locations.
const (
	Current = expr.LocationCurrent
	Source  = expr.LocationSource
)

// AttributeMode is the access a block has to an attribute.
type AttributeMode uint8

const (
	ModeNone      AttributeMode = 0
	ModeRead      AttributeMode = 1 << 0
	ModeWrite     AttributeMode = 1 << 1
	ModeReadWrite               = ModeRead | ModeWrite
)

// Has reports whether m includes every bit of o.
func (m AttributeMode) Has(o AttributeMode) bool {
	return m&o == o && o != 0
}

func (m AttributeMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeReadWrite:
		return "readwrite"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseAttributeMode parses "read", "write" or "readwrite" (also "rw").
func ParseAttributeMode(s string) (AttributeMode, bool) {
	switch strings.ToLower(s) {
	case "read", "r":
		return ModeRead, true
	case "write", "w":
		return ModeWrite, true
	case "readwrite", "rw":
		return ModeReadWrite, true
	default:
		return ModeNone, false
	}
}

// ParseLocation parses "current" or "source".
func ParseLocation(s string) (Location, bool) {
	switch strings.ToLower(s) {
	case "", "current":
		return Current, true
	case "source":
		return Source, true
	default:
		return Current, false
	}
}

// Attribute is a named per-particle value.
type Attribute struct {
	Name    string
	Type    expr.ValueType
	Default any
}

// InCodeName returns the shader variable holding the attribute at loc.
func (a Attribute) InCodeName(loc Location) string {
	return expr.InCodeName(a.Name, loc)
}

// Ref returns a fresh expression node reading the attribute at loc.
func (a Attribute) Ref(loc Location) *expr.AttributeRef {
	return expr.NewAttributeRef(a.Name, a.Type, loc)
}

// DefaultValue returns the attribute's default as a constant.
func (a Attribute) DefaultValue() *expr.Value {
	return expr.NewConstant(a.Type, a.Default)
}

// Size returns the number of 32-bit words the attribute occupies.
func (a Attribute) Size() int {
	return a.Type.Components()
}

// AttributeUse is one attribute access by a block.
type AttributeUse struct {
	Attribute Attribute
	Location  Location
	Mode      AttributeMode
}

// NamedExpression binds an expression to a parameter name.
type NamedExpression struct {
	Name string
	Expr expr.Expression
}
