// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"strings"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/hlsl"
	"github.com/gogpu/vfxgen/template"
	"github.com/gogpu/vfxgen/uniform"
	"github.com/gogpu/vfxgen/vfx"
)

// Fixed markers.
const (
	MarkerGlobalInclude          = "${VFXGlobalInclude}"
	MarkerGlobalDeclaration      = "${VFXGlobalDeclaration}"
	MarkerGeneratedBlockFunction = "${VFXGeneratedBlockFunction}"
	MarkerProcessBlocks          = "${VFXProcessBlocks}"
)

// pass holds the state of one generation. It is never shared.
type pass struct {
	g      *Generator
	c      *vfx.Context
	data   vfx.DataLayout
	folder *expr.Folder
	mapper *uniform.Mapper
	root   *hlsl.NameCache

	blocks     []*vfx.Block
	params     map[*vfx.Block][]hlsl.Parameter
	parameters []vfx.NamedExpression
}

func newPass(g *Generator, c *vfx.Context) *pass {
	mapper := uniform.NewMapper()
	mapper.Space = g.opts.RegisterSpace
	return &pass{
		g:      g,
		c:      c,
		data:   c.Data,
		folder: expr.NewFolder(),
		mapper: mapper,
		root:   hlsl.NewNameCache(),
		blocks: c.AllBlocks(),
		params: make(map[*vfx.Block][]hlsl.Parameter),
	}
}

func (p *pass) run(text string) (string, error) {
	p.collect()

	include := p.globalInclude()
	declaration, err := p.globalDeclaration()
	if err != nil {
		return "", err
	}
	functions, calls, err := p.blockFunctions()
	if err != nil {
		return "", err
	}

	fragments := []struct{ marker, text string }{
		{MarkerGlobalInclude, include},
		{MarkerGlobalDeclaration, declaration},
		{MarkerGeneratedBlockFunction, functions},
		{MarkerProcessBlocks, calls},
	}
	for _, f := range fragments {
		if err := template.CheckFragment(f.marker, f.text); err != nil {
			return "", err
		}
		text = template.ReplaceMultiline(text, f.marker, f.text)
	}

	text, err = p.resolveParametrized(text)
	if err != nil {
		return "", err
	}

	for _, r := range p.c.Replacements {
		if err := template.CheckFragment(r.Key, r.Value); err != nil {
			return "", err
		}
		text = template.ReplaceMultiline(text, r.Key, r.Value)
	}

	if left := template.Unresolved(text); len(left) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedMarker, strings.Join(left, ", "))
	}
	return text, nil
}

// collect folds parameters and maps their uniforms. Block parameters come
// first, in block order, then context parameters.
func (p *pass) collect() {
	for _, b := range p.blocks {
		params := make([]hlsl.Parameter, 0, len(b.Attributes)+len(b.Parameters))
		for _, u := range b.Attributes {
			params = append(params, hlsl.Parameter{
				Name:  u.Attribute.InCodeName(u.Location),
				Expr:  u.Attribute.Ref(u.Location),
				Write: u.Mode.Has(vfx.ModeWrite),
			})
		}
		for _, np := range b.GPUParameters() {
			e := p.folder.Fold(np.Expr)
			p.mapper.Collect(e, "")
			params = append(params, hlsl.Parameter{Name: np.Name, Expr: e})
		}
		p.params[b] = params
	}

	for _, np := range p.c.Parameters {
		if !np.Expr.Type().IsValidOnGPU() {
			continue
		}
		e := p.folder.Fold(np.Expr)
		p.mapper.Collect(e, "")
		p.parameters = append(p.parameters, vfx.NamedExpression{Name: np.Name, Expr: e})
	}
	p.root.Seed(p.mapper.Names())
}

func (p *pass) globalInclude() string {
	w := hlsl.NewWriter()
	w.WriteLine("#define NB_THREADS_PER_GROUP %d", p.g.opts.ThreadsPerGroup)
	attrs := p.data.Attributes()
	for _, a := range attrs {
		w.WriteLine("#define VFX_USE_%s_CURRENT 1", strings.ToUpper(a.Name))
	}
	for _, a := range attrs {
		if p.data.IsSourceUsed(a, p.c) {
			w.WriteLine("#define VFX_USE_%s_SOURCE 1", strings.ToUpper(a.Name))
		}
	}
	for _, d := range p.c.Defines {
		w.WriteLine("#define %s 1", d)
	}
	for _, inc := range p.g.opts.Includes {
		w.WriteLine("#include \"%s\"", inc)
	}
	return w.String()
}

func (p *pass) globalDeclaration() (string, error) {
	w := hlsl.NewWriter()
	if err := w.WriteCBuffer(p.mapper, p.g.opts.CBufferName); err != nil {
		return "", err
	}
	if err := w.WriteTexturesAndSamplers(p.mapper); err != nil {
		return "", err
	}
	return w.String(), nil
}

// blockFunctions returns the function definitions and the call sequence.
// Calls are emitted in one flat scope so that temporaries computed from
// uniforms alone are shared by every later call.
func (p *pass) blockFunctions() (string, string, error) {
	functions := hlsl.NewWriter()
	calls := hlsl.NewWriter()
	defined := make(map[string]bool)

	for _, b := range p.blocks {
		name := b.FunctionName()
		params := p.params[b]
		if !defined[name] {
			defined[name] = true
			if err := template.CheckFragment("block "+b.Name, b.Source); err != nil {
				return "", "", err
			}
			if err := functions.WriteBlockFunction(name, b.Source, params, b.Comment); err != nil {
				return "", "", fmt.Errorf("block %s: %w", b.Name, err)
			}
			functions.WriteLine("")
		}
		if err := calls.WriteCallFunction(name, params, p.root.Child()); err != nil {
			return "", "", fmt.Errorf("block %s: %w", b.Name, err)
		}
	}
	return functions.String(), calls.String(), nil
}
