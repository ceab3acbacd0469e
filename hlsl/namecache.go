// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/internal/naming"
)

// TempPrefix prefixes generated temporaries.
const TempPrefix = "tmp_"

// NameCache maps expressions to the HLSL names that hold their values.
//
// Caches form a chain of layers sharing one temporary counter, so names never
// collide within a file. A layer made with [NameCache.Child] keeps per-element
// names (attributes, random numbers) to itself and forwards everything else to
// its parent: uniform-only sub-expressions are computed once and reused by
// later block calls, while per-element values are recomputed for each call. A
// layer made with [NameCache.Local] keeps every name, for code emitted inside
// its own scope.
type NameCache struct {
	names   map[expr.Expression]string
	parent  *NameCache
	counter *uint32
	local   bool
}

// NewNameCache returns an empty root cache.
func NewNameCache() *NameCache {
	return &NameCache{
		names:   make(map[expr.Expression]string),
		counter: new(uint32),
	}
}

// Child returns a layer for one block call emitted in the parent's scope.
func (c *NameCache) Child() *NameCache {
	return &NameCache{
		names:   make(map[expr.Expression]string),
		parent:  c,
		counter: c.counter,
	}
}

// Local returns a layer whose names are all discarded with it.
func (c *NameCache) Local() *NameCache {
	l := c.Child()
	l.local = true
	return l
}

// Fork returns an empty root cache sharing c's temporary counter, for code
// emitted in a different function.
func (c *NameCache) Fork() *NameCache {
	return &NameCache{
		names:   make(map[expr.Expression]string),
		counter: c.counter,
	}
}

// Seed adds fixed names, such as uniform slots, to this layer.
func (c *NameCache) Seed(names map[expr.Expression]string) {
	for e, n := range names {
		c.names[e] = n
	}
}

// Set records name for e in this layer.
func (c *NameCache) Set(e expr.Expression, name string) {
	c.names[e] = name
}

// Lookup returns the name of e in this layer or any ancestor.
func (c *NameCache) Lookup(e expr.Expression) (string, bool) {
	for l := c; l != nil; l = l.parent {
		if n, ok := l.names[e]; ok {
			return n, true
		}
	}
	return "", false
}

// Len returns the number of names in this layer.
func (c *NameCache) Len() int {
	return len(c.names)
}

func (c *NameCache) record(e expr.Expression, name string) {
	l := c
	if !e.Flags().Has(expr.FlagPerElement) {
		for !l.local && l.parent != nil {
			l = l.parent
		}
	}
	l.names[e] = name
}

func (c *NameCache) nextTemp() string {
	n := *c.counter
	*c.counter++
	return TempPrefix + naming.Base26(n)
}
