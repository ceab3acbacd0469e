// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package expr

import "fmt"

// Expression is a node of an expression DAG.
// The set of implementations is closed; see the package documentation.
type Expression interface {
	// Type returns the type of the produced value.
	Type() ValueType

	// Parents returns the operands in evaluation order.
	Parents() []Expression

	// Flags returns the flags derived from the node and its parents.
	Flags() Flags

	expression()
}

// Flags describe where and how an expression can be evaluated.
type Flags uint8

const (
	// FlagConstant marks a tree whose leaves are all constants.
	FlagConstant Flags = 1 << iota

	// FlagGPUOnly marks a tree that cannot be evaluated on the CPU.
	FlagGPUOnly

	// FlagPerElement marks a tree that depends on mutable per-particle state.
	FlagPerElement

	// FlagInvalidOnGPU marks a tree containing a CPU-only value type.
	FlagInvalidOnGPU
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Any reports whether any bit of f2 is set.
func (f Flags) Any(f2 Flags) bool {
	return f&f2 != 0
}

// derive computes the flags of a node of type t from its parents.
// Constant only survives when every parent is constant.
func derive(t ValueType, parents []Expression, own Flags) Flags {
	flags := own
	constant := len(parents) > 0
	for _, p := range parents {
		pf := p.Flags()
		flags |= pf & (FlagGPUOnly | FlagPerElement | FlagInvalidOnGPU)
		if !pf.Has(FlagConstant) {
			constant = false
		}
	}
	if constant {
		flags |= FlagConstant
	}
	if !t.IsValidOnGPU() {
		flags |= FlagInvalidOnGPU
	}
	return flags
}

// =============================================================================
// Leaves
// =============================================================================

// ValueMode tells whether a value is baked into the code or uploaded.
type ValueMode uint8

const (
	// ValueConstant values are inlined as literals.
	ValueConstant ValueMode = iota

	// ValueUniform values are set by the host every frame.
	ValueUniform
)

// Value is a literal of a given type.
//
// Data holds the Go representation of the value:
//
//	TypeFloat      float32
//	TypeFloat2     [2]float32
//	TypeFloat3     [3]float32
//	TypeFloat4     [4]float32
//	TypeMatrix4x4  [16]float32
//	TypeInt32      int32
//	TypeUint32     uint32
//	TypeBool       bool
//
// CPU-only types carry opaque data.
type Value struct {
	t     ValueType
	mode  ValueMode
	data  any
	flags Flags
}

// NewConstant returns a constant value.
func NewConstant(t ValueType, data any) *Value {
	return newValue(t, ValueConstant, data)
}

// NewUniform returns a value updated by the host.
func NewUniform(t ValueType, data any) *Value {
	return newValue(t, ValueUniform, data)
}

func newValue(t ValueType, mode ValueMode, data any) *Value {
	var own Flags
	if mode == ValueConstant {
		own = FlagConstant
	}
	if !t.IsValidOnGPU() {
		own |= FlagInvalidOnGPU
	}
	return &Value{t: t, mode: mode, data: data, flags: own}
}

// ConstFloat returns a float constant.
func ConstFloat(v float32) *Value { return NewConstant(TypeFloat, v) }

// ConstFloat2 returns a float2 constant.
func ConstFloat2(x, y float32) *Value { return NewConstant(TypeFloat2, [2]float32{x, y}) }

// ConstFloat3 returns a float3 constant.
func ConstFloat3(x, y, z float32) *Value { return NewConstant(TypeFloat3, [3]float32{x, y, z}) }

// ConstFloat4 returns a float4 constant.
func ConstFloat4(x, y, z, w float32) *Value {
	return NewConstant(TypeFloat4, [4]float32{x, y, z, w})
}

// ConstInt returns an int constant.
func ConstInt(v int32) *Value { return NewConstant(TypeInt32, v) }

// ConstUint returns a uint constant.
func ConstUint(v uint32) *Value { return NewConstant(TypeUint32, v) }

// ConstBool returns a bool constant.
func ConstBool(v bool) *Value { return NewConstant(TypeBool, v) }

func (v *Value) Type() ValueType       { return v.t }
func (v *Value) Parents() []Expression { return nil }
func (v *Value) Flags() Flags          { return v.flags }
func (*Value) expression()             {}

// Mode returns whether the value is constant or uniform.
func (v *Value) Mode() ValueMode { return v.mode }

// Data returns the Go representation of the value.
func (v *Value) Data() any { return v.data }

// Texture is a texture resource. Textures are always uniforms.
type Texture struct {
	t ValueType

	// Asset names the texture on the host side. It is informational only.
	Asset string
}

// NewTexture returns a texture of the given texture type.
func NewTexture(t ValueType, asset string) *Texture {
	return &Texture{t: t, Asset: asset}
}

func (x *Texture) Type() ValueType     { return x.t }
func (*Texture) Parents() []Expression { return nil }
func (x *Texture) Flags() Flags        { return derive(x.t, nil, 0) }
func (*Texture) expression()           {}

// BuiltinKind enumerates builtin values.
type BuiltinKind uint8

const (
	BuiltinDeltaTime BuiltinKind = iota
	BuiltinTotalTime
	BuiltinFrameIndex
	BuiltinSystemSeed
	BuiltinParticleIndex
)

var builtinNames = [...]string{
	BuiltinDeltaTime:     "deltaTime",
	BuiltinTotalTime:     "totalTime",
	BuiltinFrameIndex:    "frameIndex",
	BuiltinSystemSeed:    "systemSeed",
	BuiltinParticleIndex: "particleIndex",
}

// String returns the builtin name.
func (k BuiltinKind) String() string {
	if int(k) < len(builtinNames) {
		return builtinNames[k]
	}
	return fmt.Sprintf("builtin(%d)", k)
}

// ParseBuiltin returns the builtin with the given name.
func ParseBuiltin(name string) (BuiltinKind, bool) {
	for k, n := range builtinNames {
		if n == name {
			return BuiltinKind(k), true
		}
	}
	return 0, false
}

// Builtin is a value provided by the runtime.
// CPU builtins (time, frame index, seed) become uniforms; GPU builtins are
// read from shader-local variables.
type Builtin struct {
	Kind BuiltinKind
}

// NewBuiltin returns a builtin node.
func NewBuiltin(kind BuiltinKind) *Builtin { return &Builtin{Kind: kind} }

func (b *Builtin) Type() ValueType {
	switch b.Kind {
	case BuiltinDeltaTime, BuiltinTotalTime:
		return TypeFloat
	default:
		return TypeUint32
	}
}
func (*Builtin) Parents() []Expression { return nil }
func (b *Builtin) Flags() Flags {
	if b.Kind == BuiltinParticleIndex {
		return FlagGPUOnly
	}
	return 0
}
func (*Builtin) expression() {}

// Code returns the shader-local variable holding a GPU builtin.
func (b *Builtin) Code() string {
	if b.Kind == BuiltinParticleIndex {
		return "index"
	}
	return b.Kind.String()
}

// Location selects which copy of an attribute is referenced.
type Location uint8

const (
	// LocationCurrent is the live per-particle value.
	LocationCurrent Location = iota

	// LocationSource is the value copied from the spawning event.
	LocationSource
)

// String returns "current" or "source".
func (l Location) String() string {
	if l == LocationSource {
		return "source"
	}
	return "current"
}

// AttributeRef reads a particle attribute.
type AttributeRef struct {
	Name     string
	Location Location
	t        ValueType
}

// NewAttributeRef returns a reference to the named attribute.
func NewAttributeRef(name string, t ValueType, loc Location) *AttributeRef {
	return &AttributeRef{Name: name, Location: loc, t: t}
}

func (a *AttributeRef) Type() ValueType     { return a.t }
func (*AttributeRef) Parents() []Expression { return nil }
func (a *AttributeRef) Flags() Flags        { return derive(a.t, nil, FlagGPUOnly|FlagPerElement) }
func (*AttributeRef) expression()           {}

// Code returns the in-code variable name of the attribute.
func (a *AttributeRef) Code() string {
	return InCodeName(a.Name, a.Location)
}

// InCodeName returns the variable name used for an attribute at loc.
func InCodeName(name string, loc Location) string {
	if loc == LocationSource {
		return "source_" + name
	}
	return name
}

// Random is a per-element random value in [0, 1).
type Random struct {
	t ValueType
}

// NewRandom returns a random node of a float type.
func NewRandom(t ValueType) *Random { return &Random{t: t} }

func (r *Random) Type() ValueType     { return r.t }
func (*Random) Parents() []Expression { return nil }
func (r *Random) Flags() Flags        { return derive(r.t, nil, FlagGPUOnly|FlagPerElement) }
func (*Random) expression()           {}

// =============================================================================
// Operations
// =============================================================================

// UnaryOp enumerates unary operations.
type UnaryOp uint8

const (
	OpNegate UnaryOp = iota
	OpAbs
	OpSqrt
	OpSin
	OpCos
	OpFloor
	OpFrac
	OpSaturate
	OpLength
	OpNormalize
)

var unaryNames = [...]string{
	OpNegate:    "negate",
	OpAbs:       "abs",
	OpSqrt:      "sqrt",
	OpSin:       "sin",
	OpCos:       "cos",
	OpFloor:     "floor",
	OpFrac:      "frac",
	OpSaturate:  "saturate",
	OpLength:    "length",
	OpNormalize: "normalize",
}

// String returns the operation name.
func (op UnaryOp) String() string {
	if int(op) < len(unaryNames) {
		return unaryNames[op]
	}
	return fmt.Sprintf("unary(%d)", op)
}

// Unary applies a unary operation.
type Unary struct {
	Op      UnaryOp
	X       Expression
	parents []Expression
	flags   Flags
}

// NewUnary returns op(x).
func NewUnary(op UnaryOp, x Expression) *Unary {
	u := &Unary{Op: op, X: x, parents: []Expression{x}}
	u.flags = derive(u.Type(), u.parents, 0)
	return u
}

func (u *Unary) Type() ValueType {
	if u.Op == OpLength {
		return u.X.Type().Scalar()
	}
	return u.X.Type()
}
func (u *Unary) Parents() []Expression { return u.parents }
func (u *Unary) Flags() Flags          { return u.flags }
func (*Unary) expression()             {}

// BinaryOp enumerates binary operations.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpPow
	OpDot
	OpCross
)

var binaryNames = [...]string{
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpDiv:   "div",
	OpMin:   "min",
	OpMax:   "max",
	OpPow:   "pow",
	OpDot:   "dot",
	OpCross: "cross",
}

// String returns the operation name.
func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("binary(%d)", op)
}

// ParseOp returns the unary or binary operation with the given name.
// Exactly one of the returned booleans is true on success.
func ParseOp(name string) (u UnaryOp, isUnary bool, b BinaryOp, isBinary bool) {
	for op, n := range unaryNames {
		if n == name {
			return UnaryOp(op), true, 0, false
		}
	}
	for op, n := range binaryNames {
		if n == name {
			return 0, false, BinaryOp(op), true
		}
	}
	return 0, false, 0, false
}

// Binary applies a binary operation. Mixing a scalar with a vector
// broadcasts the scalar, as HLSL does.
type Binary struct {
	Op      BinaryOp
	X, Y    Expression
	parents []Expression
	flags   Flags
}

// NewBinary returns op(x, y).
func NewBinary(op BinaryOp, x, y Expression) *Binary {
	b := &Binary{Op: op, X: x, Y: y, parents: []Expression{x, y}}
	b.flags = derive(b.Type(), b.parents, 0)
	return b
}

func (b *Binary) Type() ValueType {
	if b.Op == OpDot {
		return b.X.Type().Scalar()
	}
	tx, ty := b.X.Type(), b.Y.Type()
	if ty.Components() > tx.Components() {
		return ty
	}
	return tx
}
func (b *Binary) Parents() []Expression { return b.parents }
func (b *Binary) Flags() Flags          { return b.flags }
func (*Binary) expression()             {}

// Combine builds a vector from scalar components.
type Combine struct {
	t          ValueType
	Components []Expression
	flags      Flags
}

// NewCombine returns a vector of type t built from the given components.
func NewCombine(t ValueType, components ...Expression) *Combine {
	c := &Combine{t: t, Components: components}
	c.flags = derive(t, components, 0)
	return c
}

func (c *Combine) Type() ValueType       { return c.t }
func (c *Combine) Parents() []Expression { return c.Components }
func (c *Combine) Flags() Flags          { return c.flags }
func (*Combine) expression()             {}

// Extract reads one component of a vector.
type Extract struct {
	X         Expression
	Component int
	parents   []Expression
	flags     Flags
}

// NewExtract returns component i of x.
func NewExtract(x Expression, i int) *Extract {
	e := &Extract{X: x, Component: i, parents: []Expression{x}}
	e.flags = derive(e.Type(), e.parents, 0)
	return e
}

func (e *Extract) Type() ValueType       { return e.X.Type().Scalar() }
func (e *Extract) Parents() []Expression { return e.parents }
func (e *Extract) Flags() Flags          { return e.flags }
func (*Extract) expression()             {}

// Cast converts a scalar to another scalar type.
type Cast struct {
	To      ValueType
	X       Expression
	parents []Expression
	flags   Flags
}

// NewCast returns x converted to t.
func NewCast(t ValueType, x Expression) *Cast {
	c := &Cast{To: t, X: x, parents: []Expression{x}}
	c.flags = derive(t, c.parents, 0)
	return c
}

func (c *Cast) Type() ValueType       { return c.To }
func (c *Cast) Parents() []Expression { return c.parents }
func (c *Cast) Flags() Flags          { return c.flags }
func (*Cast) expression()             {}
