// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package expr

import "testing"

func TestValueType_Components(t *testing.T) {
	tests := []struct {
		t    ValueType
		want int
	}{
		{TypeFloat, 1},
		{TypeFloat2, 2},
		{TypeFloat3, 3},
		{TypeFloat4, 4},
		{TypeInt32, 1},
		{TypeUint32, 1},
		{TypeBool, 1},
		{TypeMatrix4x4, 16},
		{TypeTexture2D, 0},
		{TypeCurve, 0},
		{TypeNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			if got := tt.t.Components(); got != tt.want {
				t.Errorf("Components() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueType_GPUValidity(t *testing.T) {
	valid := []ValueType{TypeFloat, TypeFloat3, TypeUint32, TypeMatrix4x4, TypeTexture2D, TypeTextureCube}
	for _, vt := range valid {
		if !vt.IsValidOnGPU() {
			t.Errorf("%s should be valid on GPU", vt)
		}
	}
	invalid := []ValueType{TypeNone, TypeCurve, TypeColorGradient, TypeMesh}
	for _, vt := range invalid {
		if vt.IsValidOnGPU() {
			t.Errorf("%s should not be valid on GPU", vt)
		}
	}
}

func TestParseValueType(t *testing.T) {
	for _, vt := range []ValueType{TypeFloat, TypeFloat3, TypeInt32, TypeTexture2DArray, TypeMesh} {
		got, ok := ParseValueType(vt.String())
		if !ok || got != vt {
			t.Errorf("ParseValueType(%q) = %v, %v", vt.String(), got, ok)
		}
	}
	if _, ok := ParseValueType("none"); ok {
		t.Error("ParseValueType(\"none\") should fail")
	}
	if _, ok := ParseValueType("double"); ok {
		t.Error("ParseValueType(\"double\") should fail")
	}
}

func TestFlags_Propagation(t *testing.T) {
	c := ConstFloat(2)
	u := NewUniform(TypeFloat, float32(1))
	attr := NewAttributeRef("age", TypeFloat, LocationCurrent)
	idx := NewBuiltin(BuiltinParticleIndex)

	tests := []struct {
		name string
		e    Expression
		has  Flags
		not  Flags
	}{
		{"constant", c, FlagConstant, FlagGPUOnly},
		{"uniform", u, 0, FlagConstant | FlagGPUOnly},
		{"const*const", NewBinary(OpMul, c, c), FlagConstant, FlagGPUOnly},
		{"const*uniform", NewBinary(OpMul, c, u), 0, FlagConstant | FlagGPUOnly},
		{"attr*const", NewBinary(OpMul, attr, c), FlagGPUOnly | FlagPerElement, FlagConstant},
		{"index", NewCast(TypeFloat, idx), FlagGPUOnly, FlagConstant | FlagPerElement},
		{"curve", NewUniform(TypeCurve, nil), FlagInvalidOnGPU, 0},
		{"random", NewRandom(TypeFloat), FlagGPUOnly | FlagPerElement, FlagConstant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.e.Flags()
			if !f.Has(tt.has) {
				t.Errorf("flags %04b missing %04b", f, tt.has)
			}
			if f.Any(tt.not) {
				t.Errorf("flags %04b should not contain %04b", f, tt.not)
			}
		})
	}
}

func TestBinary_TypeBroadcast(t *testing.T) {
	v := ConstFloat3(1, 2, 3)
	s := ConstFloat(2)
	if got := NewBinary(OpMul, s, v).Type(); got != TypeFloat3 {
		t.Errorf("scalar*vector type = %s, want float3", got)
	}
	if got := NewBinary(OpDot, v, v).Type(); got != TypeFloat {
		t.Errorf("dot type = %s, want float", got)
	}
	if got := NewUnary(OpLength, v).Type(); got != TypeFloat {
		t.Errorf("length type = %s, want float", got)
	}
	if got := NewExtract(v, 1).Type(); got != TypeFloat {
		t.Errorf("extract type = %s, want float", got)
	}
}

func TestAttributeRef_Code(t *testing.T) {
	if got := NewAttributeRef("position", TypeFloat3, LocationCurrent).Code(); got != "position" {
		t.Errorf("current code = %q, want \"position\"", got)
	}
	if got := NewAttributeRef("position", TypeFloat3, LocationSource).Code(); got != "source_position" {
		t.Errorf("source code = %q, want \"source_position\"", got)
	}
}

func TestParseOp(t *testing.T) {
	u, isU, _, isB := ParseOp("saturate")
	if !isU || isB || u != OpSaturate {
		t.Errorf("ParseOp(saturate) = %v %v %v", u, isU, isB)
	}
	_, isU, b, isB := ParseOp("cross")
	if isU || !isB || b != OpCross {
		t.Errorf("ParseOp(cross) = %v %v %v", b, isU, isB)
	}
	_, isU, _, isB = ParseOp("lerp")
	if isU || isB {
		t.Error("ParseOp(lerp) should fail")
	}
}
