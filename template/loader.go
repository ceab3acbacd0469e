// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package template loads shader templates and performs the textual
// substitutions of the code generator.
//
// Templates are plain HLSL with ${...} markers. A template named Foo is
// stored as Foo.template, with optional per-mode variants such as
// Foo_Debug.template. Templates may include other files:
//
//	${VFXInclude("Shaders/Common.hlsl")}
//	${VFXInclude("Shaders/Spawn.hlsl"),USE_SPAWN}
//
// The second form is only expanded when USE_SPAWN is among the context's
// defines. The final line break of an included file is dropped, the one
// after the directive ends its last line instead.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
)

// Extension is the file extension of templates.
const Extension = ".template"

// ErrIncludeCycle is returned when a template includes itself.
var ErrIncludeCycle = errors.New("template: include cycle")

var includePattern = regexp2.MustCompile(`\$\{VFXInclude\("([^"]*)"\)(?:,\s*(\w+))?\}`, regexp2.None)

// Loader reads templates from a file system.
type Loader struct {
	fsys fs.FS
}

// NewLoader returns a loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Resolve returns the path of the template for name and mode: the mode
// variant if present, else the plain template.
func (l *Loader) Resolve(name, mode string) (string, error) {
	var candidates []string
	if mode != "" {
		candidates = append(candidates, name+"_"+mode+Extension)
	}
	candidates = append(candidates, name+Extension)

	for _, p := range candidates {
		info, err := fs.Stat(l.fsys, p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("template: %w", err)
		}
	}
	return "", &fs.PathError{Op: "resolve", Path: name + Extension, Err: fs.ErrNotExist}
}

// Load reads the template at p and expands its includes.
func (l *Loader) Load(p string, defines []string) (string, error) {
	return l.load(p, defines, nil)
}

func (l *Loader) load(p string, defines, stack []string) (string, error) {
	if slices.Contains(stack, p) {
		return "", fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(append(stack, p), " -> "))
	}
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	text := string(data)
	stack = append(stack, p)

	type include struct {
		directive, path, define string
	}
	var includes []include
	m, err := includePattern.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = includePattern.FindNextMatch(m) {
		inc := include{directive: m.String(), path: m.GroupByNumber(1).String()}
		if g := m.GroupByNumber(2); g != nil && len(g.Captures) > 0 {
			inc.define = g.String()
		}
		includes = append(includes, inc)
	}
	if err != nil {
		return "", fmt.Errorf("template: scanning %s: %w", p, err)
	}

	for _, inc := range includes {
		content := ""
		if inc.define == "" || slices.Contains(defines, inc.define) {
			target := path.Clean(inc.path)
			if !fs.ValidPath(target) {
				return "", fmt.Errorf("template: %s: invalid include path %q", p, inc.path)
			}
			content, err = l.load(target, defines, stack)
			if err != nil {
				return "", err
			}
			content = strings.TrimSuffix(strings.TrimSuffix(content, "\n"), "\r")
		}
		text = strings.Replace(text, inc.directive, content, 1)
	}
	return text, nil
}
