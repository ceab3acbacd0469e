// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package naming generates identifiers for generated HLSL.
package naming

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/hlsl"
)

// Base26 returns index written with the digits a..z: 0 is "a", 25 is "z",
// 26 is "ba". Distinct indices give distinct strings.
func Base26(index uint32) string {
	if index == 0 {
		return "a"
	}
	var buf [8]byte
	i := len(buf)
	for index != 0 {
		i--
		buf[i] = byte('a' + index%26)
		index /= 26
	}
	return string(buf[i:])
}

// Namer hands out unique identifiers.
// It escapes HLSL reserved words and, since some HLSL compilers treat
// identifiers case-insensitively, compares names case-insensitively.
type Namer struct {
	// used tracks names handed out so far, lower-cased.
	used map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

// NewNamer returns an empty namer.
func NewNamer() *Namer {
	return &Namer{used: make(map[string]struct{})}
}

// Call returns a unique name derived from base.
// Reserved words get a trailing underscore; collisions get a numeric suffix.
func (n *Namer) Call(base string) string {
	escaped := hlsl.Escape(base)

	lower := strings.ToLower(escaped)
	if _, used := n.used[lower]; !used {
		n.used[lower] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lowerCandidate := strings.ToLower(candidate)
		if _, used := n.used[lowerCandidate]; !used {
			n.used[lowerCandidate] = struct{}{}
			return candidate
		}
	}
}

// Reserve marks a name as used without returning it.
func (n *Namer) Reserve(name string) {
	n.used[strings.ToLower(name)] = struct{}{}
}

// IsUsed reports whether name was handed out or reserved.
func (n *Namer) IsUsed(name string) bool {
	_, used := n.used[strings.ToLower(name)]
	return used
}
