// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"slices"

	"github.com/gogpu/vfxgen/hlsl"
	"github.com/gogpu/vfxgen/template"
	"github.com/gogpu/vfxgen/vfx"
)

// resolveParametrized replaces parametrized markers until none is left.
// Each replacement removes every copy of its marker and generated text never
// contains "${", so the loop ends.
func (p *pass) resolveParametrized(text string) (string, error) {
	for {
		m, ok, err := p.g.scanner.FindNext(text)
		if err != nil {
			return "", err
		}
		if !ok {
			return text, nil
		}
		filter, err := p.g.scanner.Filter(m.Filter)
		if err != nil {
			return "", err
		}

		var code string
		switch m.Key {
		case template.KeyLoadParameter:
			code, err = p.loadParameters(filter)
		case template.KeyLoadAttributes:
			code, err = p.loadAttributes(filter)
		case template.KeyStoreAttributes:
			code, err = p.storeAttributes(filter)
		default:
			err = fmt.Errorf("unknown marker %s", m.Text)
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", m.Text, err)
		}
		if err := template.CheckFragment(m.Text, code); err != nil {
			return "", err
		}
		text = template.ReplaceMultiline(text, m.Text, code)
	}
}

func (p *pass) matching(filter *template.Filter) ([]vfx.Attribute, error) {
	var out []vfx.Attribute
	for _, a := range p.data.Attributes() {
		ok, err := filter.Match(a.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// currentAttributes returns the attributes the context holds in local
// variables: those it reads or writes, plus every stored attribute during
// initialization.
func (p *pass) currentAttributes(attrs []vfx.Attribute) []vfx.Attribute {
	isInit := p.c.Type == vfx.ContextInit
	var out []vfx.Attribute
	for _, a := range attrs {
		used := p.data.IsCurrentRead(a, p.c) || p.data.IsCurrentWritten(a, p.c)
		if used || (isInit && p.data.IsStored(a)) {
			out = append(out, a)
		}
	}
	return out
}

// loadAttributes declares current attributes, then source attributes.
//
// A current attribute is loaded when it is stored and read outside
// initialization; otherwise it starts at its default. A source attribute is
// loaded from the source buffer during initialization; elsewhere it aliases
// the current value when there is one, else its default.
func (p *pass) loadAttributes(filter *template.Filter) (string, error) {
	attrs, err := p.matching(filter)
	if err != nil {
		return "", err
	}
	isInit := p.c.Type == vfx.ContextInit
	current := p.currentAttributes(attrs)

	w := hlsl.NewWriter()
	for _, a := range current {
		var value string
		if !isInit && p.data.IsStored(a) && p.data.IsCurrentRead(a, p.c) {
			value, err = p.data.LoadCode(a, vfx.Current)
		} else {
			value, err = defaultValue(a)
		}
		if err != nil {
			return "", err
		}
		if err := w.WriteVariable(a.Type, a.InCodeName(vfx.Current), value); err != nil {
			return "", err
		}
	}

	for _, a := range attrs {
		if !p.data.IsSourceUsed(a, p.c) {
			continue
		}
		var value string
		switch {
		case isInit:
			value, err = p.data.LoadCode(a, vfx.Source)
		case slices.ContainsFunc(current, func(c vfx.Attribute) bool { return c.Name == a.Name }):
			value = a.InCodeName(vfx.Current)
		default:
			value, err = defaultValue(a)
		}
		if err != nil {
			return "", err
		}
		if err := w.WriteVariable(a.Type, a.InCodeName(vfx.Source), value); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

// storeAttributes writes back stored attributes the context writes. During
// initialization every stored attribute is written.
func (p *pass) storeAttributes(filter *template.Filter) (string, error) {
	attrs, err := p.matching(filter)
	if err != nil {
		return "", err
	}
	isInit := p.c.Type == vfx.ContextInit

	w := hlsl.NewWriter()
	for _, a := range attrs {
		if !p.data.IsStored(a) || !(isInit || p.data.IsCurrentWritten(a, p.c)) {
			continue
		}
		code, err := p.data.StoreCode(a, a.InCodeName(vfx.Current))
		if err != nil {
			return "", err
		}
		w.WriteLine("%s;", code)
	}
	return w.String(), nil
}

// loadParameters declares the matching context parameters. Each value is
// computed in its own scope; a parameter already available under its own
// name, such as a builtin uniform, is skipped.
func (p *pass) loadParameters(filter *template.Filter) (string, error) {
	cache := p.root.Fork()
	cache.Seed(p.mapper.Names())

	w := hlsl.NewWriter()
	for _, np := range p.parameters {
		ok, err := filter.Match(np.Name)
		if err != nil {
			return "", err
		}
		if !ok || np.Expr.Type().IsTexture() {
			continue
		}
		if name, ok := cache.Lookup(np.Expr); ok && name == np.Name {
			continue
		}
		if err := w.WriteVariable(np.Expr.Type(), np.Name, "0"); err != nil {
			return "", err
		}
		w.EnterScope()
		local := cache.Local()
		if err := w.WriteExpression(np.Expr, local); err != nil {
			return "", err
		}
		value, _ := local.Lookup(np.Expr)
		w.WriteAssignment(np.Name, value)
		if err := w.ExitScope(); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

func defaultValue(a vfx.Attribute) (string, error) {
	if a.Default == nil {
		typeName, err := hlsl.TypeName(a.Type)
		if err != nil {
			return "", err
		}
		return "(" + typeName + ")0", nil
	}
	return hlsl.ValueString(a.Type, a.Default)
}
