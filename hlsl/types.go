// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"math"
	"strconv"
	"strings"

	nhlsl "github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/vfxgen/expr"
)

var (
	f32 = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	i32 = ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	u32 = ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	b8  = ir.ScalarType{Kind: ir.ScalarBool, Width: 1}
)

// TypeName returns the HLSL spelling of t.
func TypeName(t expr.ValueType) (string, error) {
	switch t {
	case expr.TypeFloat:
		return nhlsl.ScalarToHLSL(f32), nil
	case expr.TypeFloat2:
		return nhlsl.VectorToHLSL(ir.VectorType{Size: ir.Vec2, Scalar: f32}), nil
	case expr.TypeFloat3:
		return nhlsl.VectorToHLSL(ir.VectorType{Size: ir.Vec3, Scalar: f32}), nil
	case expr.TypeFloat4:
		return nhlsl.VectorToHLSL(ir.VectorType{Size: ir.Vec4, Scalar: f32}), nil
	case expr.TypeInt32:
		return nhlsl.ScalarToHLSL(i32), nil
	case expr.TypeUint32:
		return nhlsl.ScalarToHLSL(u32), nil
	case expr.TypeBool:
		return nhlsl.ScalarToHLSL(b8), nil
	case expr.TypeMatrix4x4:
		return nhlsl.MatrixToHLSL(ir.MatrixType{Columns: ir.Vec4, Rows: ir.Vec4, Scalar: f32}), nil
	case expr.TypeTexture2D:
		return "Texture2D", nil
	case expr.TypeTexture2DArray:
		return "Texture2DArray", nil
	case expr.TypeTexture3D:
		return "Texture3D", nil
	case expr.TypeTextureCube:
		return "TextureCube", nil
	default:
		return "", NewError(ErrInvalidGPUType, "type %s is not valid on GPU", t)
	}
}

// ValueString returns the HLSL literal for a constant of type t.
// Scalars carry an explicit cast, "(float)2"; vectors and matrices use a
// constructor, "float3(1,2,3)".
func ValueString(t expr.ValueType, data any) (string, error) {
	switch t {
	case expr.TypeFloat:
		v, ok := data.(float32)
		if !ok {
			return "", mismatch(t, data)
		}
		s, err := formatFloat(v)
		if err != nil {
			return "", err
		}
		return "(float)" + s, nil
	case expr.TypeInt32:
		v, ok := data.(int32)
		if !ok {
			return "", mismatch(t, data)
		}
		return "(int)" + strconv.FormatInt(int64(v), 10), nil
	case expr.TypeUint32:
		v, ok := data.(uint32)
		if !ok {
			return "", mismatch(t, data)
		}
		return "(uint)" + strconv.FormatUint(uint64(v), 10), nil
	case expr.TypeBool:
		v, ok := data.(bool)
		if !ok {
			return "", mismatch(t, data)
		}
		return "(bool)" + strconv.FormatBool(v), nil
	}

	var comps []float32
	switch v := data.(type) {
	case [2]float32:
		comps = v[:]
	case [3]float32:
		comps = v[:]
	case [4]float32:
		comps = v[:]
	case [16]float32:
		comps = v[:]
	}
	if !t.IsFloat() || len(comps) != t.Components() {
		return "", mismatch(t, data)
	}

	typeName, err := TypeName(t)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(comps))
	for i, c := range comps {
		if parts[i], err = formatFloat(c); err != nil {
			return "", err
		}
	}
	return typeName + "(" + strings.Join(parts, ",") + ")", nil
}

func formatFloat(v float32) (string, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", NewError(ErrInvalidValue, "non-finite float %v", v)
	}
	return strconv.FormatFloat(f, 'g', -1, 32), nil
}

func mismatch(t expr.ValueType, data any) *Error {
	return NewError(ErrUnknownValueType, "cannot format %T as %s", data, t)
}
