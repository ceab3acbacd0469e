// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package expr

import "math"

// Folder replaces constant sub-trees with constant values.
//
// Results are memoized by node identity: folding the same node twice returns
// the same result, and a node shared by several parents stays shared after
// folding. A Folder is not safe for concurrent use.
type Folder struct {
	cache map[Expression]Expression
}

// NewFolder returns an empty folder.
func NewFolder() *Folder {
	return &Folder{cache: make(map[Expression]Expression)}
}

// Fold returns e with every foldable constant sub-tree replaced by a
// constant *Value. Nodes that cannot be folded are returned unchanged when
// none of their parents changed, or rebuilt over the folded parents.
func (f *Folder) Fold(e Expression) Expression {
	if e == nil {
		return nil
	}
	if r, ok := f.cache[e]; ok {
		return r
	}
	r := f.fold(e)
	f.cache[e] = r
	return r
}

func (f *Folder) fold(e Expression) Expression {
	switch n := e.(type) {
	case *Unary:
		x := f.Fold(n.X)
		if v, ok := constantValue(x); ok {
			if r, ok := foldUnary(n.Op, v, n.Type()); ok {
				return r
			}
		}
		if x != n.X {
			return NewUnary(n.Op, x)
		}
	case *Binary:
		x, y := f.Fold(n.X), f.Fold(n.Y)
		vx, okx := constantValue(x)
		vy, oky := constantValue(y)
		if okx && oky {
			if r, ok := foldBinary(n.Op, vx, vy, n.Type()); ok {
				return r
			}
		}
		if x != n.X || y != n.Y {
			return NewBinary(n.Op, x, y)
		}
	case *Combine:
		folded := make([]Expression, len(n.Components))
		changed := false
		all := true
		var comps []float64
		for i, c := range n.Components {
			folded[i] = f.Fold(c)
			changed = changed || folded[i] != c
			v, ok := constantValue(folded[i])
			if !ok {
				all = false
				continue
			}
			if cc, ok := components(v); ok && len(cc) == 1 {
				comps = append(comps, cc[0])
			} else {
				all = false
			}
		}
		if all && len(comps) == n.t.Components() {
			if data, ok := fromComponents(n.t, comps); ok {
				return NewConstant(n.t, data)
			}
		}
		if changed {
			return NewCombine(n.t, folded...)
		}
	case *Extract:
		x := f.Fold(n.X)
		if v, ok := constantValue(x); ok {
			if comps, ok := components(v); ok && n.Component >= 0 && n.Component < len(comps) {
				if data, ok := fromComponents(n.Type(), comps[n.Component:n.Component+1]); ok {
					return NewConstant(n.Type(), data)
				}
			}
		}
		if x != n.X {
			return NewExtract(x, n.Component)
		}
	case *Cast:
		x := f.Fold(n.X)
		if v, ok := constantValue(x); ok {
			if comps, ok := components(v); ok && len(comps) == 1 && n.To.Components() == 1 {
				if data, ok := castScalar(n.To, comps[0]); ok {
					return NewConstant(n.To, data)
				}
			}
		}
		if x != n.X {
			return NewCast(n.To, x)
		}
	}
	return e
}

func constantValue(e Expression) (*Value, bool) {
	v, ok := e.(*Value)
	if !ok || v.mode != ValueConstant {
		return nil, false
	}
	return v, true
}

// components returns the value as float64 components.
func components(v *Value) ([]float64, bool) {
	switch d := v.data.(type) {
	case float32:
		return []float64{float64(d)}, true
	case [2]float32:
		return []float64{float64(d[0]), float64(d[1])}, true
	case [3]float32:
		return []float64{float64(d[0]), float64(d[1]), float64(d[2])}, true
	case [4]float32:
		return []float64{float64(d[0]), float64(d[1]), float64(d[2]), float64(d[3])}, true
	case [16]float32:
		c := make([]float64, 16)
		for i := range d {
			c[i] = float64(d[i])
		}
		return c, true
	case int32:
		return []float64{float64(d)}, true
	case uint32:
		return []float64{float64(d)}, true
	case bool:
		if d {
			return []float64{1}, true
		}
		return []float64{0}, true
	default:
		return nil, false
	}
}

// fromComponents builds the Go data of type t from float64 components.
func fromComponents(t ValueType, c []float64) (any, bool) {
	if len(c) != t.Components() {
		return nil, false
	}
	for _, x := range c {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
	}
	switch t {
	case TypeFloat:
		return float32(c[0]), true
	case TypeFloat2:
		return [2]float32{float32(c[0]), float32(c[1])}, true
	case TypeFloat3:
		return [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}, true
	case TypeFloat4:
		return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}, true
	case TypeMatrix4x4:
		var m [16]float32
		for i := range m {
			m[i] = float32(c[i])
		}
		return m, true
	case TypeInt32:
		return int32(c[0]), true
	case TypeUint32:
		if c[0] < 0 || c[0] > math.MaxUint32 {
			return nil, false
		}
		return uint32(c[0]), true
	case TypeBool:
		return c[0] != 0, true
	default:
		return nil, false
	}
}

func castScalar(t ValueType, x float64) (any, bool) {
	switch t {
	case TypeFloat:
		return float32(x), true
	case TypeInt32:
		return int32(math.Trunc(x)), true
	case TypeUint32:
		if x < 0 {
			return nil, false
		}
		return uint32(math.Trunc(x)), true
	case TypeBool:
		return x != 0, true
	default:
		return nil, false
	}
}

func foldUnary(op UnaryOp, v *Value, t ValueType) (*Value, bool) {
	c, ok := components(v)
	if !ok || v.t == TypeBool {
		return nil, false
	}
	isFloat := v.t.IsFloat()
	out := make([]float64, len(c))
	switch op {
	case OpNegate:
		if v.t == TypeUint32 {
			return nil, false
		}
		for i, x := range c {
			out[i] = -x
		}
	case OpAbs:
		for i, x := range c {
			out[i] = math.Abs(x)
		}
	case OpLength, OpNormalize:
		if !isFloat {
			return nil, false
		}
		var sum float64
		for _, x := range c {
			sum += x * x
		}
		length := math.Sqrt(sum)
		if op == OpLength {
			out = []float64{length}
			break
		}
		if length == 0 {
			return nil, false
		}
		for i, x := range c {
			out[i] = x / length
		}
	default:
		if !isFloat {
			return nil, false
		}
		for i, x := range c {
			r, ok := applyFloatUnary(op, x)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
	}
	data, ok := fromComponents(t, out)
	if !ok {
		return nil, false
	}
	return NewConstant(t, data), true
}

func applyFloatUnary(op UnaryOp, x float64) (float64, bool) {
	switch op {
	case OpSqrt:
		if x < 0 {
			return 0, false
		}
		return math.Sqrt(x), true
	case OpSin:
		return math.Sin(x), true
	case OpCos:
		return math.Cos(x), true
	case OpFloor:
		return math.Floor(x), true
	case OpFrac:
		return x - math.Floor(x), true
	case OpSaturate:
		return math.Min(math.Max(x, 0), 1), true
	default:
		return 0, false
	}
}

// broadcast widens a single component to n components.
func broadcast(c []float64, n int) []float64 {
	if len(c) == n || len(c) != 1 {
		return c
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = c[0]
	}
	return out
}

func foldBinary(op BinaryOp, vx, vy *Value, t ValueType) (*Value, bool) {
	if vx.t.Scalar() != vy.t.Scalar() || vx.t == TypeBool || vx.t == TypeMatrix4x4 || vy.t == TypeMatrix4x4 {
		return nil, false
	}
	cx, okx := components(vx)
	cy, oky := components(vy)
	if !okx || !oky {
		return nil, false
	}
	isFloat := vx.t.IsFloat()

	var out []float64
	switch op {
	case OpDot:
		if len(cx) != len(cy) || !isFloat {
			return nil, false
		}
		var sum float64
		for i := range cx {
			sum += cx[i] * cy[i]
		}
		out = []float64{sum}
	case OpCross:
		if len(cx) != 3 || len(cy) != 3 {
			return nil, false
		}
		out = []float64{
			cx[1]*cy[2] - cx[2]*cy[1],
			cx[2]*cy[0] - cx[0]*cy[2],
			cx[0]*cy[1] - cx[1]*cy[0],
		}
	default:
		n := t.Components()
		cx, cy = broadcast(cx, n), broadcast(cy, n)
		if len(cx) != n || len(cy) != n {
			return nil, false
		}
		out = make([]float64, n)
		for i := range out {
			r, ok := applyBinary(op, cx[i], cy[i], isFloat)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
	}
	data, ok := fromComponents(t, out)
	if !ok {
		return nil, false
	}
	return NewConstant(t, data), true
}

func applyBinary(op BinaryOp, x, y float64, isFloat bool) (float64, bool) {
	switch op {
	case OpAdd:
		return x + y, true
	case OpSub:
		return x - y, true
	case OpMul:
		return x * y, true
	case OpDiv:
		if y == 0 {
			return 0, false
		}
		if isFloat {
			return x / y, true
		}
		return math.Trunc(x / y), true
	case OpMin:
		return math.Min(x, y), true
	case OpMax:
		return math.Max(x, y), true
	case OpPow:
		if !isFloat {
			return 0, false
		}
		return math.Pow(x, y), true
	default:
		return 0, false
	}
}
