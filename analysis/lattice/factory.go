package lattice

import (
	"fmt"
	"go/types"
	"math"

	"github.com/absint-dk/dfval/analysis/constraint"
	"github.com/absint-dk/dfval/analysis/rangeset"
)

// RangePolicy bounds the cost of integer range tracking.
var RangePolicy = struct {
	// MaxParts is the largest number of disjoint intervals a joined range
	// may keep before it is widened to its covering interval; zero disables
	// the limit.
	MaxParts int
	// KeepWide retains pre-widening range bookkeeping on join results, which
	// iterative analyses use to detect convergence.
	KeepWide bool
}{
	MaxParts: 8,
	KeepWide: true,
}

// intRange is the canonicalizing constructor behind every range factory:
// empty ranges collapse to Bottom, the full machine-width domain to the
// interned generic element, and singletons to constants.
func intRange(w Width, rng rangeset.Set) Value {
	return intRangeWide(w, rng, rangeset.Empty())
}

func intRangeWide(w Width, rng, wide rangeset.Set) Value {
	if !RangePolicy.KeepWide || wide.Equal(rng) {
		wide = rangeset.Empty()
	}
	switch {
	case rng.IsEmpty():
		return Bottom
	case rng.Equal(w.domain()):
		if wide.IsEmpty() {
			if w == Width64 {
				return Long
			}
			return Int
		}
		return IntRange{w, rng, wide}
	}
	if v, ok := rng.ConstantValue(); ok {
		return IntConst{w, v, wide}
	}
	return IntRange{w, rng, wide}
}

// IntValue returns the 32-bit integer constant v.
func IntValue(v int32) Value { return IntConst{width: Width32, value: int64(v)} }

// LongValue returns the 64-bit integer constant v.
func LongValue(v int64) Value { return IntConst{width: Width64, value: v} }

// IntRangeOf builds a 32-bit element from a range set. Values outside the
// 32-bit domain are an error.
func IntRangeOf(rng rangeset.Set) (Value, error) {
	if !rangeset.Full32.Subsumes(rng) {
		return nil, fmt.Errorf("%w: %v exceeds int32", ErrOutOfDomain, rng)
	}
	return intRange(Width32, rng), nil
}

// LongRangeOf builds a 64-bit element from a range set.
func LongRangeOf(rng rangeset.Set) Value {
	return intRange(Width64, rng)
}

// IntRangeClamped builds a 32-bit element from a range set, discarding
// whatever falls outside the 32-bit domain.
func IntRangeClamped(rng rangeset.Set) Value {
	return intRange(Width32, rng.Intersect(rangeset.Full32))
}

// RangeClamped builds an element of the given width, clamping to its domain.
func RangeClamped(rng rangeset.Set, w Width) Value {
	return intRange(w, rng.Intersect(w.domain()))
}

// IntRangeWide builds a 32-bit element carrying pre-widening bookkeeping.
// The bookkeeping is dropped when empty or identical to the narrow range.
func IntRangeWide(rng, wide rangeset.Set) (Value, error) {
	if !rangeset.Full32.Subsumes(rng) || !rangeset.Full32.Subsumes(wide) {
		return nil, fmt.Errorf("%w: exceeds int32", ErrOutOfDomain)
	}
	return intRangeWide(Width32, rng, wide), nil
}

// LongRangeWide builds a 64-bit element carrying pre-widening bookkeeping.
func LongRangeWide(rng, wide rangeset.Set) Value {
	return intRangeWide(Width64, rng, wide)
}

// FloatValue returns the 32-bit floating-point constant v.
func FloatValue(v float32) Value {
	return FloatConst{double: false, value: float64(v)}
}

// DoubleValue returns the 64-bit floating-point constant v.
func DoubleValue(v float64) Value {
	return FloatConst{double: true, value: v}
}

// ConstantOf builds the constant element describing a concrete value drawn
// from the closed enumeration of payload kinds the lattice understands:
// untyped nil, booleans, fixed-width integers, floats, strings, and go/types
// descriptors. Anything else is ErrUnsupportedConstant.
func ConstantOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null, nil
	case bool:
		return BoolValue(v), nil
	case int8:
		return IntValue(int32(v)), nil
	case int16:
		return IntValue(int32(v)), nil
	case int32:
		return IntValue(v), nil
	case uint8:
		return IntValue(int32(v)), nil
	case uint16:
		return IntValue(int32(v)), nil
	case int:
		return LongValue(int64(v)), nil
	case int64:
		return LongValue(v), nil
	case uint32:
		return LongValue(int64(v)), nil
	case float32:
		return FloatValue(v), nil
	case float64:
		return DoubleValue(v), nil
	case string:
		return RefConst{
			value:  v,
			constr: constraint.ExactType(types.Typ[types.String]),
		}, nil
	case *types.Const:
		return RefConst{value: v, constr: constraint.SubtypeOf(v.Type())}, nil
	case *types.Var:
		return RefConst{value: v, constr: constraint.SubtypeOf(v.Type())}, nil
	case types.Type:
		return RefConst{value: v, constr: constraint.Unconstrained()}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedConstant, v)
}

// SynthesizedString returns the string constant v marked as materialized by
// the analysis rather than read from source.
func SynthesizedString(v string) Value {
	return RefConst{
		value:       v,
		constr:      constraint.ExactType(types.Typ[types.String]),
		synthesized: true,
	}
}

// CustomObject builds a reference descriptor from explicit facts. Callers
// asserting definite nullness must use Null instead; that combination is a
// caller bug and panics.
func CustomObject(c constraint.Constraint, n Nullability, m Mutability,
	field SpecialField, fieldValue Value) Value {
	return NewReference(c, n, m, field, fieldValue, false)
}

// TypedObject builds the element describing an arbitrary value of a static
// type: primitive types map onto their dedicated domains and everything else
// onto a reference descriptor with the given nullability. A nil type means
// no static information (Top); an empty result tuple means no value at all
// (Bottom).
func TypedObject(t types.Type, n Nullability) Value {
	if t == nil {
		return Top
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return typedBasic(u)
	case *types.Tuple:
		if u.Len() == 0 {
			return Bottom
		}
	}
	if n == DefinitelyNull {
		return Null
	}
	c := constraintFor(t)
	if c.IsUnsatisfiable() {
		if n == NotNull {
			return Bottom
		}
		return Null
	}
	return NewReference(c, n, MutabilityUnknown, NoField, nil, false)
}

func typedBasic(b *types.Basic) Value {
	switch b.Kind() {
	case types.Invalid:
		return Bottom
	case types.Bool, types.UntypedBool:
		return Boolean
	case types.Int8:
		return IntRangeClamped(rangeset.Range(math.MinInt8, math.MaxInt8))
	case types.Int16:
		return IntRangeClamped(rangeset.Range(math.MinInt16, math.MaxInt16))
	case types.Int32:
		return Int
	case types.Uint8:
		return IntRangeClamped(rangeset.Range(0, math.MaxUint8))
	case types.Uint16:
		return IntRangeClamped(rangeset.Range(0, math.MaxUint16))
	case types.Uint32:
		return LongRangeOf(rangeset.Range(0, math.MaxUint32))
	case types.Int, types.Int64, types.Uint, types.Uint64, types.Uintptr,
		types.UntypedInt, types.UntypedRune:
		return Long
	case types.Float32:
		return Float
	case types.Float64, types.UntypedFloat:
		return Double
	case types.String, types.UntypedString:
		return NewReference(constraint.ExactType(types.Typ[types.String]),
			NotNull, Unmodifiable, NoField, nil, false)
	case types.UntypedNil:
		return Null
	}
	return Top
}

// constraintFor picks the constraint flavor for a static type: interface
// types bound the dynamic type from above, concrete types pin it exactly.
func constraintFor(t types.Type) constraint.Constraint {
	if _, ok := t.Underlying().(*types.Interface); ok {
		return constraint.SubtypeOf(t)
	}
	return constraint.ExactType(t)
}

// DefaultValue returns the element describing the zero value of a static
// type: false, 0, 0.0, or nil.
func DefaultValue(t types.Type) Value {
	if t == nil {
		return Null
	}
	if b, ok := t.Underlying().(*types.Basic); ok {
		switch {
		case b.Info()&types.IsBoolean != 0:
			return False
		case b.Kind() == types.Float32:
			return FloatValue(0)
		case b.Kind() == types.Float64:
			return DoubleValue(0)
		case b.Kind() == types.Int32:
			return IntValue(0)
		case b.Info()&types.IsInteger != 0:
			return LongValue(0)
		case b.Info()&types.IsString != 0:
			v, _ := ConstantOf("")
			return v
		}
	}
	return Null
}
