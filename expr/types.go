// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package expr

// ValueType is the type of the value produced by an expression.
type ValueType uint8

const (
	// TypeNone is the zero value and is never valid in generated code.
	TypeNone ValueType = iota

	TypeFloat
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeInt32
	TypeUint32
	TypeBool
	TypeMatrix4x4

	TypeTexture2D
	TypeTexture2DArray
	TypeTexture3D
	TypeTextureCube

	// CPU-only types. They exist in the graph but are baked or consumed on
	// the CPU and must never reach generated shader code.
	TypeCurve
	TypeColorGradient
	TypeMesh
)

var valueTypeNames = [...]string{
	TypeNone:           "none",
	TypeFloat:          "float",
	TypeFloat2:         "float2",
	TypeFloat3:         "float3",
	TypeFloat4:         "float4",
	TypeInt32:          "int",
	TypeUint32:         "uint",
	TypeBool:           "bool",
	TypeMatrix4x4:      "float4x4",
	TypeTexture2D:      "texture2d",
	TypeTexture2DArray: "texture2darray",
	TypeTexture3D:      "texture3d",
	TypeTextureCube:    "texturecube",
	TypeCurve:          "curve",
	TypeColorGradient:  "gradient",
	TypeMesh:           "mesh",
}

// String returns the short name of the type, as used in description files.
func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// ParseValueType returns the type whose String matches name.
func ParseValueType(name string) (ValueType, bool) {
	for t, n := range valueTypeNames {
		if n == name && ValueType(t) != TypeNone {
			return ValueType(t), true
		}
	}
	return TypeNone, false
}

// Components returns the number of 32-bit components of a uniform type.
// Textures and CPU-only types have no components.
func (t ValueType) Components() int {
	switch t {
	case TypeFloat, TypeInt32, TypeUint32, TypeBool:
		return 1
	case TypeFloat2:
		return 2
	case TypeFloat3:
		return 3
	case TypeFloat4:
		return 4
	case TypeMatrix4x4:
		return 16
	default:
		return 0
	}
}

// IsUniform reports whether values of the type live in a constant buffer.
func (t ValueType) IsUniform() bool {
	return t.Components() > 0
}

// IsTexture reports whether the type is bound as a texture and sampler pair.
func (t ValueType) IsTexture() bool {
	switch t {
	case TypeTexture2D, TypeTexture2DArray, TypeTexture3D, TypeTextureCube:
		return true
	default:
		return false
	}
}

// IsValidOnGPU reports whether the type can appear in generated code.
func (t ValueType) IsValidOnGPU() bool {
	return t.IsUniform() || t.IsTexture()
}

// IsFloat reports whether the scalar component type is float.
func (t ValueType) IsFloat() bool {
	switch t {
	case TypeFloat, TypeFloat2, TypeFloat3, TypeFloat4, TypeMatrix4x4:
		return true
	default:
		return false
	}
}

// Scalar returns the component type: TypeFloat for float vectors and
// matrices, the type itself for scalars, TypeNone otherwise.
func (t ValueType) Scalar() ValueType {
	switch t {
	case TypeFloat, TypeFloat2, TypeFloat3, TypeFloat4, TypeMatrix4x4:
		return TypeFloat
	case TypeInt32, TypeUint32, TypeBool:
		return t
	default:
		return TypeNone
	}
}

// FloatVector returns the float type with n components (1 to 4).
func FloatVector(n int) ValueType {
	switch n {
	case 1:
		return TypeFloat
	case 2:
		return TypeFloat2
	case 3:
		return TypeFloat3
	case 4:
		return TypeFloat4
	default:
		return TypeNone
	}
}
