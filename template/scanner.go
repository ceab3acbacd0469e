// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// Parametrized marker keys.
const (
	KeyLoadParameter   = "LoadParameter"
	KeyLoadAttributes  = "LoadAttributes"
	KeyStoreAttributes = "StoreAttributes"
)

// MatchAll is the filter of a marker written without one.
const MatchAll = ".*"

const (
	parametrizedPattern = `\$\{VFX(LoadParameter|LoadAttributes|StoreAttributes)(?::\{(.*?)\})?\}`
	markerPattern       = `\$\{[^}\r\n]*\}?`
)

// Marker is one parametrized marker found in a template.
type Marker struct {
	// Text is the marker as written, e.g. "${VFXLoadAttributes:{(position|velocity)}}".
	Text string

	// Key is one of KeyLoadParameter, KeyLoadAttributes and KeyStoreAttributes.
	Key string

	// Filter is the author-supplied regular expression, MatchAll if absent.
	Filter string
}

// Scanner finds parametrized markers and compiles their filters.
// Filters use .NET regular expression syntax.
type Scanner struct {
	timeout time.Duration
	markers *regexp2.Regexp
}

// NewScanner returns a scanner. A positive timeout bounds every filter
// match.
func NewScanner(timeout time.Duration) *Scanner {
	s := &Scanner{
		timeout: timeout,
		markers: regexp2.MustCompile(parametrizedPattern, regexp2.None),
	}
	if timeout > 0 {
		s.markers.MatchTimeout = timeout
	}
	return s
}

// FindNext returns the first parametrized marker in text.
func (s *Scanner) FindNext(text string) (Marker, bool, error) {
	m, err := s.markers.FindStringMatch(text)
	if err != nil {
		return Marker{}, false, fmt.Errorf("template: scanning markers: %w", err)
	}
	if m == nil {
		return Marker{}, false, nil
	}
	marker := Marker{Text: m.String(), Key: m.GroupByNumber(1).String(), Filter: MatchAll}
	if g := m.GroupByNumber(2); g != nil && len(g.Captures) > 0 {
		marker.Filter = g.String()
	}
	return marker, true, nil
}

// Filter is a compiled author filter.
type Filter struct {
	re *regexp2.Regexp
}

// Filter compiles pattern. Matching is unanchored, as with .NET Regex.IsMatch.
func (s *Scanner) Filter(pattern string) (*Filter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("template: filter %q: %w", pattern, err)
	}
	if s.timeout > 0 {
		re.MatchTimeout = s.timeout
	}
	return &Filter{re: re}, nil
}

// Match reports whether name matches the filter.
func (f *Filter) Match(name string) (bool, error) {
	ok, err := f.re.MatchString(name)
	if err != nil {
		return false, fmt.Errorf("template: filter %q: %w", f.re.String(), err)
	}
	return ok, nil
}

var unresolvedPattern = regexp2.MustCompile(markerPattern, regexp2.None)

// Unresolved returns the markers left in text.
func Unresolved(text string) []string {
	var out []string
	m, _ := unresolvedPattern.FindStringMatch(text)
	for m != nil {
		out = append(out, m.String())
		m, _ = unresolvedPattern.FindNextMatch(m)
	}
	return out
}
