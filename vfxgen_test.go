// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vfxgen

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gogpu/vfxgen/codegen"
	"github.com/gogpu/vfxgen/template"
	"github.com/gogpu/vfxgen/vfxfile"
)

const fountainYAML = `name: fountain
capacity: 1024
expressions:
  dt: {builtin: deltaTime}
contexts:
  - name: spawn
    type: spawner
    template: Spawner
  - name: init
    type: init
    template: VFXInit
    blocks:
      - name: SetVelocity
        source: velocity = speed * direction;
        attributes: [{name: velocity, mode: write}]
        parameters:
          - {name: speed, expr: {const: float, value: 2.0}}
          - {name: direction, expr: {uniform: float3, value: [0, 1, 0]}}
      - name: SetLifetime
        source: lifetime = 1 + random;
        attributes: [{name: lifetime, mode: write}]
        parameters:
          - {name: random, expr: {random: float}}
  - name: update
    type: update
    template: VFXUpdate
    integration: euler
    aging: true
    reaping: true
    delta_time: {ref: dt}
  - name: output
    type: output
    template: VFXOutput
    blocks:
      - name: Render
        attributes:
          - {name: position, mode: read}
          - {name: color, mode: read}
          - {name: alive, mode: read}
`

func loadFountain(t testing.TB) *vfxfile.System {
	t.Helper()
	s, err := vfxfile.Parse([]byte(fountainYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestCompile(t *testing.T) {
	shaders, err := Compile(loadFountain(t))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var names []string
	for _, s := range shaders {
		names = append(names, s.FileName())
		if left := template.Unresolved(s.Source); len(left) > 0 {
			t.Errorf("%s: unresolved markers %v", s.FileName(), left)
		}
		if !strings.Contains(s.Source, "#define NB_THREADS_PER_GROUP 64") {
			t.Errorf("%s: missing global include block", s.FileName())
		}
	}
	want := "fountain_init_runtime.hlsl fountain_update_runtime.hlsl fountain_output_runtime.hlsl"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("shaders = %s, want %s", got, want)
	}

	update := shaders[1].Source
	for _, want := range []string{
		"void EulerIntegration(inout float3 position, float3 velocity, float deltaTime)",
		"EulerIntegration(position, velocity, deltaTime);",
		"Age(age, deltaTime);",
		"Reap(age, lifetime, alive);",
		"float deltaTime;",
	} {
		if !strings.Contains(update, want) {
			t.Errorf("update shader lacks %q", want)
		}
	}

	output := shaders[2].Source
	if !strings.Contains(output, "float3 color = float3(1,1,1);") {
		t.Errorf("output shader does not default the unstored color:\n%s", output)
	}
}

func TestCompileWithOptions_Modes(t *testing.T) {
	files := fstest.MapFS{
		"Simple.template":       {Data: []byte("${VFXGlobalDeclaration}\n${VFXProcessBlocks}\n")},
		"Simple_Debug.template": {Data: []byte("// debug\n${VFXProcessBlocks}\n")},
	}
	s, err := vfxfile.Parse([]byte(`name: simple
capacity: 16
contexts:
  - name: update
    type: update
    template: Simple
    aging: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	opts := DefaultOptions()
	opts.Modes = []codegen.Mode{codegen.ModeDebug, codegen.ModeRuntime}
	opts.Generator.Templates = files
	shaders, err := CompileWithOptions(s, opts)
	if err != nil {
		t.Fatalf("CompileWithOptions: %v", err)
	}
	if len(shaders) != 2 {
		t.Fatalf("got %d shaders, want 2", len(shaders))
	}
	if got, want := shaders[0].Source, "// debug\nAge(age, deltaTime);\n"; got != want {
		t.Errorf("debug source = %q, want %q", got, want)
	}
	if got := shaders[1].FileName(); got != "simple_update_runtime.hlsl" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fountain.yaml")
	if err := os.WriteFile(path, []byte(fountainYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	shaders, err := CompileFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if len(shaders) != 3 {
		t.Errorf("got %d shaders, want 3", len(shaders))
	}

	if _, err := CompileFile(filepath.Join(t.TempDir(), "none.yaml"), DefaultOptions()); err == nil {
		t.Error("CompileFile on a missing file succeeded")
	}
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	if _, err := Compile(loadFountain(t)); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, msg := range []string{"resolved template", "generated shader", "compiled system"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log lacks %q", msg)
		}
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) left logging enabled")
	}
}
