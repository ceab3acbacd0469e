// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/particle"
	"github.com/gogpu/vfxgen/template"
	"github.com/gogpu/vfxgen/vfx"
)

const computeTemplate = `${VFXGlobalInclude}
${VFXGlobalDeclaration}
${VFXGeneratedBlockFunction}
void CSMain(uint index)
{
    ${VFXLoadParameter:{^deltaTime$}}
    ${VFXLoadAttributes}
    ${VFXProcessBlocks}
    ${VFXStoreAttributes}
}
`

func use(name string, loc vfx.Location, mode vfx.AttributeMode) vfx.AttributeUse {
	return vfx.AttributeUse{Attribute: vfx.MustFind(name), Location: loc, Mode: mode}
}

func newGenerator(t *testing.T, files fstest.MapFS) *Generator {
	t.Helper()
	opts := DefaultOptions()
	opts.Templates = files
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func generate(t *testing.T, g *Generator, c *vfx.Context, mode Mode) string {
	t.Helper()
	out, err := g.Generate(c, mode)
	if err != nil {
		t.Fatalf("Generate(%s): %v", c.Name, err)
	}
	return out[0]
}

func attach(t *testing.T, capacity uint32, contexts ...*vfx.Context) {
	t.Helper()
	if err := particle.NewLayout(capacity).Attach(contexts...); err != nil {
		t.Fatalf("Attach: %v", err)
	}
}

// moveSystem returns an init context writing position and velocity and an
// update context scaling velocity by a constant speed.
func moveSystem(t *testing.T) (*vfx.Context, *vfx.Context) {
	t.Helper()
	initCtx := &vfx.Context{Name: "init", Type: vfx.ContextInit, Template: "Test", Blocks: []*vfx.Block{{
		Name:   "Spawn",
		Source: "position = float3(0, 0, 0);\nvelocity = float3(0, 1, 0);",
		Attributes: []vfx.AttributeUse{
			use("position", vfx.Current, vfx.ModeWrite),
			use("velocity", vfx.Current, vfx.ModeWrite),
		},
	}}}
	update := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test", Blocks: []*vfx.Block{{
		Name:   "Move",
		Source: "velocity *= speed;\nposition += velocity;",
		Attributes: []vfx.AttributeUse{
			use("position", vfx.Current, vfx.ModeRead),
			use("velocity", vfx.Current, vfx.ModeReadWrite),
		},
		Parameters: []vfx.NamedExpression{{Name: "speed", Expr: expr.ConstFloat(2)}},
	}}}
	attach(t, 64, initCtx, update)
	return initCtx, update
}

func TestGenerate_Update(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte(computeTemplate)}})
	_, update := moveSystem(t)

	got := generate(t, g, update, ModeRuntime)
	want := `#define NB_THREADS_PER_GROUP 64
#define VFX_USE_POSITION_CURRENT 1
#define VFX_USE_VELOCITY_CURRENT 1
#include "VFXCommon.hlsl"
void Move(float3 position, inout float3 velocity, float speed)
{
    velocity *= speed;
    position += velocity;
}

void CSMain(uint index)
{
    float3 position = asfloat(attributeBuffer.Load3((index * 0x3 + 0x0) << 2));
    float3 velocity = asfloat(attributeBuffer.Load3((index * 0x3 + 0xc0) << 2));
    Move(position, velocity, (float)2);
    attributeBuffer.Store3((index * 0x3 + 0xc0) << 2,asuint(velocity));
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("update source mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Init(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte(computeTemplate)}})
	direction := expr.NewUniform(expr.TypeFloat3, [3]float32{0, 1, 0})
	initCtx := &vfx.Context{Name: "init", Type: vfx.ContextInit, Template: "Test", Blocks: []*vfx.Block{
		{
			Name:   "SetPosition",
			Source: "position = source_position;",
			Attributes: []vfx.AttributeUse{
				use("position", vfx.Current, vfx.ModeWrite),
				use("position", vfx.Source, vfx.ModeRead),
			},
		},
		{
			Name:       "SetVelocity",
			Source:     "velocity = direction * random;",
			Attributes: []vfx.AttributeUse{use("velocity", vfx.Current, vfx.ModeWrite)},
			Parameters: []vfx.NamedExpression{
				{Name: "direction", Expr: direction},
				{Name: "random", Expr: expr.NewRandom(expr.TypeFloat)},
			},
		},
	}}
	update := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test", Blocks: []*vfx.Block{{
		Name: "Move",
		Attributes: []vfx.AttributeUse{
			use("position", vfx.Current, vfx.ModeReadWrite),
			use("velocity", vfx.Current, vfx.ModeRead),
		},
	}}}
	attach(t, 64, initCtx, update)

	got := generate(t, g, initCtx, ModeRuntime)
	for _, want := range []string{
		"#define VFX_USE_POSITION_SOURCE 1\n",
		"cbuffer parameters : register(b0, space0) {\n    float3 uniform_a;\n    float PADDING_0;\n};\n",
		"void SetPosition(inout float3 position, float3 source_position)\n",
		"void SetVelocity(inout float3 velocity, float3 direction, float random)\n",
		"    float3 position = float3(0,0,0);\n",
		"    float3 velocity = float3(0,0,0);\n",
		"    float3 source_position = asfloat(sourceAttributeBuffer.Load3((sourceIndex * 0x3 + 0x0) << 2));\n",
		"    SetPosition(position, source_position);\n    float tmp_a = RAND;\n    SetVelocity(velocity, uniform_a, tmp_a);\n",
		"    attributeBuffer.Store3((index * 0x3 + 0x0) << 2,asuint(position));\n",
		"    attributeBuffer.Store3((index * 0x3 + 0xc0) << 2,asuint(velocity));\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("init source lacks %q\n%s", want, got)
		}
	}
}

func TestGenerate_SourceOutsideInit(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte("${VFXLoadAttributes}\n")}})
	spawn := &vfx.Context{Name: "init", Type: vfx.ContextInit, Template: "Test", Blocks: []*vfx.Block{{
		Name:       "Spawn",
		Attributes: []vfx.AttributeUse{use("velocity", vfx.Current, vfx.ModeWrite)},
	}}}
	update := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test", Blocks: []*vfx.Block{{
		Name: "Compare",
		Attributes: []vfx.AttributeUse{
			use("velocity", vfx.Current, vfx.ModeRead),
			use("velocity", vfx.Source, vfx.ModeRead),
			use("age", vfx.Source, vfx.ModeRead),
		},
	}}}
	attach(t, 16, spawn, update)

	got := generate(t, g, update, ModeRuntime)
	want := "float3 velocity = asfloat(attributeBuffer.Load3((index * 0x3 + 0x0) << 2));\n" +
		"float3 source_velocity = velocity;\n" +
		"float source_age = (float)0;\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loads mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte(computeTemplate)}})
	_, update := moveSystem(t)
	update.Blocks[0].Parameters = append(update.Blocks[0].Parameters,
		vfx.NamedExpression{Name: "a", Expr: expr.NewUniform(expr.TypeFloat, float32(1))},
		vfx.NamedExpression{Name: "b", Expr: expr.NewUniform(expr.TypeFloat2, [2]float32{1, 2})},
		vfx.NamedExpression{Name: "c", Expr: expr.NewUniform(expr.TypeFloat3, [3]float32{1, 2, 3})},
	)

	first := generate(t, g, update, ModeRuntime)
	for i := 0; i < 10; i++ {
		if got := generate(t, g, update, ModeRuntime); got != first {
			t.Fatalf("run %d differs:\n%s", i, cmp.Diff(first, got))
		}
	}
}

func TestGenerate_SharedTemporaries(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte("${VFXGlobalDeclaration}\n${VFXProcessBlocks}\n")}})
	scale := expr.NewBinary(expr.OpMul,
		expr.NewCast(expr.TypeFloat, expr.NewBuiltin(expr.BuiltinParticleIndex)),
		expr.NewUniform(expr.TypeFloat, float32(3)))
	random := expr.NewRandom(expr.TypeFloat)
	c := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test", Blocks: []*vfx.Block{
		{Name: "A", Parameters: []vfx.NamedExpression{{Name: "scale", Expr: scale}, {Name: "r", Expr: random}}},
		{Name: "B", Parameters: []vfx.NamedExpression{{Name: "scale", Expr: scale}, {Name: "r", Expr: random}}},
	}}
	attach(t, 16, c)

	got := generate(t, g, c, ModeRuntime)
	want := `cbuffer parameters : register(b0, space0) {
    float uniform_a;
    float3 PADDING_0;
};
float tmp_a = (float)index;
float tmp_b = tmp_a * uniform_a;
float tmp_c = RAND;
A(tmp_b, tmp_c);
float tmp_d = RAND;
B(tmp_b, tmp_d);
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_BlockFunctionsDeduplicated(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte("${VFXGeneratedBlockFunction}\n${VFXProcessBlocks}\n")}})
	c := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test", Blocks: []*vfx.Block{
		{Name: "Push", Source: "v += f;", Attributes: []vfx.AttributeUse{use("velocity", vfx.Current, vfx.ModeReadWrite)},
			Parameters: []vfx.NamedExpression{{Name: "f", Expr: expr.ConstFloat3(0, 1, 0)}}},
		{Name: "Push", Source: "v += f;", Attributes: []vfx.AttributeUse{use("velocity", vfx.Current, vfx.ModeReadWrite)},
			Parameters: []vfx.NamedExpression{{Name: "f", Expr: expr.ConstFloat3(1, 0, 0)}}},
	}}
	attach(t, 16, c)

	got := generate(t, g, c, ModeRuntime)
	if n := strings.Count(got, "void Push("); n != 1 {
		t.Errorf("Push defined %d times, want 1\n%s", n, got)
	}
	for _, call := range []string{"Push(velocity, float3(0,1,0));", "Push(velocity, float3(1,0,0));"} {
		if !strings.Contains(got, call) {
			t.Errorf("missing call %q\n%s", call, got)
		}
	}
}

func TestGenerate_LoadParameter(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte("${VFXLoadParameter:{.*}}\n")}})
	c := &vfx.Context{
		Name: "update", Type: vfx.ContextUpdate, Template: "Test",
		Parameters: []vfx.NamedExpression{
			{Name: "deltaTime", Expr: expr.NewBuiltin(expr.BuiltinDeltaTime)},
			{Name: "gravity", Expr: expr.NewUniform(expr.TypeFloat3, [3]float32{0, -9.81, 0})},
			{Name: "phase", Expr: expr.NewCast(expr.TypeFloat, expr.NewBuiltin(expr.BuiltinParticleIndex))},
			{Name: "ramp", Expr: expr.NewTexture(expr.TypeTexture2D, "ramp.png")},
		},
	}
	attach(t, 16, c)

	got := generate(t, g, c, ModeRuntime)
	want := `float3 gravity = 0;
{
    gravity = uniform_a;
}
float phase = 0;
{
    float tmp_a = (float)index;
    phase = tmp_a;
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Modes(t *testing.T) {
	files := fstest.MapFS{
		"Test.template":       {Data: []byte(computeTemplate)},
		"Test_Debug.template": {Data: []byte("// debug\n" + computeTemplate)},
	}
	g := newGenerator(t, files)
	_, update := moveSystem(t)

	out, err := g.Generate(update, ModeDebug, ModeRuntime)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(out[0], "// debug\n") {
		t.Errorf("debug source does not use the debug variant:\n%s", out[0])
	}
	if strings.HasPrefix(out[1], "// debug\n") {
		t.Errorf("runtime source uses the debug variant:\n%s", out[1])
	}
	if got := strings.TrimPrefix(out[0], "// debug\n"); got != out[1] {
		t.Errorf("variants differ beyond the template:\n%s", cmp.Diff(out[1], got))
	}
}

func TestGenerate_SameTemplateForAllModes(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte(computeTemplate)}})
	_, update := moveSystem(t)

	out, err := g.Generate(update, ModeDebug, ModeRuntime)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out[0] != out[1] {
		t.Errorf("modes differ:\n%s", cmp.Diff(out[0], out[1]))
	}
}

func TestGenerate_Replacements(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte("${VFXProcessBlocks}\n    ${CustomTail}\n")}})
	_, update := moveSystem(t)
	update.Replacements = []vfx.Replacement{{Key: "${CustomTail}", Value: "// first\n// second"}}

	got := generate(t, g, update, ModeRuntime)
	want := "Move(position, velocity, (float)2);\n    // first\n    // second\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("replacement mismatch (-want +got):\n%s", diff)
	}

	update.Replacements = []vfx.Replacement{{Key: "${CustomTail}", Value: "${Nested}"}}
	if _, err := g.Generate(update, ModeRuntime); !errors.Is(err, template.ErrMarkerInFragment) {
		t.Errorf("Generate error = %v, want ErrMarkerInFragment", err)
	}
}

func TestGenerate_NoMarkersLeft(t *testing.T) {
	files := fstest.MapFS{
		"Test.template":    {Data: []byte(computeTemplate)},
		"Unknown.template": {Data: []byte("${VFXProcessBlocks}\n${VFXUnknown}\n")},
	}
	g := newGenerator(t, files)
	_, update := moveSystem(t)

	got := generate(t, g, update, ModeRuntime)
	if left := template.Unresolved(got); len(left) > 0 {
		t.Errorf("unresolved markers %v", left)
	}

	update.Template = "Unknown"
	_, err := g.Generate(update, ModeRuntime)
	if !errors.Is(err, ErrUnresolvedMarker) {
		t.Fatalf("Generate error = %v, want ErrUnresolvedMarker", err)
	}
	if !strings.Contains(err.Error(), "${VFXUnknown}") {
		t.Errorf("error %q does not name the marker", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	g := newGenerator(t, fstest.MapFS{"Test.template": {Data: []byte(computeTemplate)}})

	t.Run("missing template", func(t *testing.T) {
		_, update := moveSystem(t)
		update.Template = "Missing"
		if _, err := g.Generate(update, ModeRuntime); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Generate error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("no data layout", func(t *testing.T) {
		c := &vfx.Context{Name: "update", Type: vfx.ContextUpdate, Template: "Test"}
		if _, err := g.Generate(c, ModeRuntime); !errors.Is(err, vfx.ErrInvalidContext) {
			t.Errorf("Generate error = %v, want ErrInvalidContext", err)
		}
	})

	t.Run("output count", func(t *testing.T) {
		_, update := moveSystem(t)
		var out strings.Builder
		err := g.Build(update, []Mode{ModeDebug, ModeRuntime}, []*strings.Builder{&out})
		if !errors.Is(err, ErrOutputCount) {
			t.Errorf("Build error = %v, want ErrOutputCount", err)
		}
		if out.Len() != 0 {
			t.Errorf("Build wrote %q on error", out.String())
		}
	})

	t.Run("marker in block source", func(t *testing.T) {
		_, update := moveSystem(t)
		update.Blocks[0].Source = "${VFXProcessBlocks}"
		if _, err := g.Generate(update, ModeRuntime); !errors.Is(err, template.ErrMarkerInFragment) {
			t.Errorf("Generate error = %v, want ErrMarkerInFragment", err)
		}
	})

	t.Run("no templates", func(t *testing.T) {
		if _, err := New(Options{}); !errors.Is(err, ErrNoTemplates) {
			t.Errorf("New error = %v, want ErrNoTemplates", err)
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"debug", ModeDebug, false},
		{"Runtime", ModeRuntime, false},
		{"release", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
