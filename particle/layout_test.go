// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package particle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/vfxgen/expr"
	"github.com/gogpu/vfxgen/vfx"
)

func use(name string, loc vfx.Location, mode vfx.AttributeMode) vfx.AttributeUse {
	return vfx.AttributeUse{Attribute: vfx.MustFind(name), Location: loc, Mode: mode}
}

func fountain(t *testing.T) (*Layout, *vfx.Context, *vfx.Context, *vfx.Context) {
	t.Helper()
	mass := expr.NewAttributeRef("mass", expr.TypeFloat, vfx.Current)
	initCtx := &vfx.Context{Name: "init", Type: vfx.ContextInit, Template: "VFXInit", Blocks: []*vfx.Block{{
		Name: "Spawn",
		Attributes: []vfx.AttributeUse{
			use("position", vfx.Current, vfx.ModeWrite),
			use("velocity", vfx.Current, vfx.ModeWrite),
			use("lifetime", vfx.Current, vfx.ModeWrite),
			use("position", vfx.Source, vfx.ModeRead),
		},
	}}}
	update := &vfx.Context{
		Name: "update", Type: vfx.ContextUpdate, Template: "VFXUpdate",
		Blocks: []*vfx.Block{{
			Name:       "Drag",
			Attributes: []vfx.AttributeUse{use("velocity", vfx.Current, vfx.ModeReadWrite)},
			Parameters: []vfx.NamedExpression{{Name: "invMass", Expr: expr.NewBinary(expr.OpDiv, expr.ConstFloat(1), mass)}},
		}},
		Implicit: []*vfx.Block{vfx.EulerIntegration(nil), vfx.Aging(nil), vfx.Reaping()},
	}
	output := &vfx.Context{Name: "output", Type: vfx.ContextOutput, Template: "VFXOutput", Blocks: []*vfx.Block{{
		Name: "Render",
		Attributes: []vfx.AttributeUse{
			use("position", vfx.Current, vfx.ModeRead),
			use("color", vfx.Current, vfx.ModeRead),
			use("alive", vfx.Current, vfx.ModeRead),
		},
	}}}

	l := NewLayout(100)
	if err := l.Attach(initCtx, update, output); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return l, initCtx, update, output
}

func TestLayout_Storage(t *testing.T) {
	l, initCtx, update, output := fountain(t)
	if initCtx.Data != l || update.Data != l || output.Data != l {
		t.Fatal("Attach did not set Data")
	}

	var names []string
	for _, a := range l.Attributes() {
		names = append(names, a.Name)
	}
	want := []string{"position", "velocity", "color", "lifetime", "age", "alive", "mass"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Attributes() mismatch (-want +got):\n%s", diff)
	}

	stored := map[string]bool{
		"position": true, "velocity": true, "lifetime": true, "age": true, "alive": true,
		"color": false, "mass": false,
	}
	for name, want := range stored {
		a, _ := vfx.Find(name)
		if got := l.IsStored(a); got != want {
			t.Errorf("IsStored(%s) = %v, want %v", name, got, want)
		}
	}
	if got := l.BufferSize(); got != 100*9*4 {
		t.Errorf("BufferSize() = %d, want %d", got, 100*9*4)
	}
	if got := l.SourceStride(); got != 12 {
		t.Errorf("SourceStride() = %d, want 12", got)
	}
}

func TestLayout_Usage(t *testing.T) {
	l, initCtx, update, _ := fountain(t)
	velocity := vfx.MustFind("velocity")
	position := vfx.MustFind("position")
	mass := vfx.MustFind("mass")

	if l.IsCurrentRead(velocity, initCtx) || !l.IsCurrentWritten(velocity, initCtx) {
		t.Error("init should only write velocity")
	}
	if !l.IsCurrentRead(velocity, update) || !l.IsCurrentWritten(velocity, update) {
		t.Error("update should read and write velocity")
	}
	if !l.IsCurrentRead(mass, update) {
		t.Error("attribute referenced by a parameter should count as read")
	}
	if !l.IsSourceUsed(position, initCtx) || l.IsSourceUsed(position, update) {
		t.Error("source position should be used by init only")
	}
}

func TestLayout_Code(t *testing.T) {
	l, _, _, _ := fountain(t)
	tests := []struct {
		name string
		got  func() (string, error)
		want string
	}{
		{
			"load position",
			func() (string, error) { return l.LoadCode(vfx.MustFind("position"), vfx.Current) },
			"asfloat(attributeBuffer.Load3((index * 0x3 + 0x0) << 2))",
		},
		{
			"load velocity",
			func() (string, error) { return l.LoadCode(vfx.MustFind("velocity"), vfx.Current) },
			"asfloat(attributeBuffer.Load3((index * 0x3 + 0x12c) << 2))",
		},
		{
			"load alive",
			func() (string, error) { return l.LoadCode(vfx.MustFind("alive"), vfx.Current) },
			"(bool)attributeBuffer.Load((index * 0x1 + 0x320) << 2)",
		},
		{
			"load source position",
			func() (string, error) { return l.LoadCode(vfx.MustFind("position"), vfx.Source) },
			"asfloat(sourceAttributeBuffer.Load3((sourceIndex * 0x3 + 0x0) << 2))",
		},
		{
			"store position",
			func() (string, error) { return l.StoreCode(vfx.MustFind("position"), "position") },
			"attributeBuffer.Store3((index * 0x3 + 0x0) << 2,asuint(position))",
		},
		{
			"store alive",
			func() (string, error) { return l.StoreCode(vfx.MustFind("alive"), "alive") },
			"attributeBuffer.Store((index * 0x1 + 0x320) << 2,uint(alive))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := l.LoadCode(vfx.MustFind("color"), vfx.Current); !errors.Is(err, ErrNotStored) {
		t.Errorf("LoadCode(color) error = %v, want ErrNotStored", err)
	}
	if _, err := l.StoreCode(vfx.MustFind("mass"), "mass"); !errors.Is(err, ErrNotStored) {
		t.Errorf("StoreCode(mass) error = %v, want ErrNotStored", err)
	}
	if _, err := l.LoadCode(vfx.MustFind("velocity"), vfx.Source); !errors.Is(err, ErrNotStored) {
		t.Errorf("LoadCode(source velocity) error = %v, want ErrNotStored", err)
	}
}

func TestLayout_UintAndInt(t *testing.T) {
	counter := vfx.Attribute{Name: "counter", Type: expr.TypeInt32, Default: int32(0)}
	initCtx := &vfx.Context{Type: vfx.ContextInit, Blocks: []*vfx.Block{{Attributes: []vfx.AttributeUse{
		use("seed", vfx.Current, vfx.ModeWrite),
		{Attribute: counter, Location: vfx.Current, Mode: vfx.ModeWrite},
	}}}}
	update := &vfx.Context{Type: vfx.ContextUpdate, Blocks: []*vfx.Block{{Attributes: []vfx.AttributeUse{
		use("seed", vfx.Current, vfx.ModeRead),
		{Attribute: counter, Location: vfx.Current, Mode: vfx.ModeRead},
	}}}}
	l := NewLayout(16)
	if err := l.Attach(initCtx, update); err != nil {
		t.Fatal(err)
	}

	seed := vfx.MustFind("seed")
	if got, _ := l.LoadCode(seed, vfx.Current); got != "attributeBuffer.Load((index * 0x1 + 0x0) << 2)" {
		t.Errorf("LoadCode(seed) = %q", got)
	}
	if got, _ := l.StoreCode(seed, "seed"); got != "attributeBuffer.Store((index * 0x1 + 0x0) << 2,seed)" {
		t.Errorf("StoreCode(seed) = %q", got)
	}
	if got, _ := l.LoadCode(counter, vfx.Current); got != "asint(attributeBuffer.Load((index * 0x1 + 0x10) << 2))" {
		t.Errorf("LoadCode(counter) = %q", got)
	}
	if got, _ := l.StoreCode(counter, "counter"); got != "attributeBuffer.Store((index * 0x1 + 0x10) << 2,asuint(counter))" {
		t.Errorf("StoreCode(counter) = %q", got)
	}
}

func TestLayout_TypeMismatch(t *testing.T) {
	bad := vfx.Attribute{Name: "age", Type: expr.TypeFloat3}
	c := &vfx.Context{Type: vfx.ContextUpdate, Blocks: []*vfx.Block{
		{Attributes: []vfx.AttributeUse{use("age", vfx.Current, vfx.ModeRead)}},
		{Attributes: []vfx.AttributeUse{{Attribute: bad, Location: vfx.Current, Mode: vfx.ModeRead}}},
	}}
	if err := NewLayout(1).Attach(c); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Attach error = %v, want ErrTypeMismatch", err)
	}
}
