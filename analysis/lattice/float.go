package lattice

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/absint-dk/dfval/utils"
)

// Floating-point constants are identified by their IEEE-754 bit patterns:
// +0.0 and -0.0 are distinct constants, and NaN equals itself. NaN is never
// part of an interval; it only ever appears as a standalone constant or as a
// member of a not-value exclusion set.
const (
	posZeroBits = uint64(0)
	negZeroBits = uint64(1) << 63
)

type (
	// floatTop is the generic float32/float64 domain.
	floatTop struct {
		double bool
	}

	// floatZero is the signed-zero bucket: it represents +0.0 and -0.0 at
	// the same time, and nothing else.
	floatZero struct {
		double bool
	}

	// FloatConst is a single floating-point constant.
	FloatConst struct {
		double bool
		value  float64
	}

	// FloatNotValue is a floating-point domain minus a finite excluded set
	// of values, stored as sorted IEEE-754 bit patterns.
	FloatNotValue struct {
		double   bool
		excluded []uint64
	}
)

func genericFloat(double bool) Value {
	if double {
		return Double
	}
	return Float
}

func zeroFloat(double bool) Value {
	if double {
		return DoubleZero
	}
	return FloatZero
}

func familyName(double bool) string {
	if double {
		return "float64"
	}
	return "float32"
}

// FloatVal retrieves the underlying constant, widened to float64.
func (c FloatConst) FloatVal() float64 { return c.value }

// IsDouble distinguishes the float64 family from the float32 family.
func (c FloatConst) IsDouble() bool { return c.double }

// Excluded retrieves the excluded values.
func (n FloatNotValue) Excluded() []float64 {
	vals := make([]float64, len(n.excluded))
	for i, bits := range n.excluded {
		vals[i] = math.Float64frombits(bits)
	}
	return vals
}

// notValueOf builds the canonical not-value element excluding the given
// values; with nothing to exclude it degrades to the generic domain.
func notValueOf(double bool, vals ...float64) Value {
	bits := make([]uint64, 0, len(vals))
	for _, v := range vals {
		bits = append(bits, math.Float64bits(v))
	}
	return notValueOfBits(double, bits)
}

func notValueOfBits(double bool, bits []uint64) Value {
	sort.Slice(bits, func(i, j int) bool { return bits[i] < bits[j] })
	dedup := bits[:0]
	for i, b := range bits {
		if i == 0 || b != bits[i-1] {
			dedup = append(dedup, b)
		}
	}
	if len(dedup) == 0 {
		return genericFloat(double)
	}
	return FloatNotValue{double, dedup}
}

func (n FloatNotValue) excludes(bits uint64) bool {
	i := sort.Search(len(n.excluded), func(i int) bool { return n.excluded[i] >= bits })
	return i < len(n.excluded) && n.excluded[i] == bits
}

func (f floatTop) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case floatTop:
		return o.double == f.double
	case floatZero:
		return o.double == f.double
	case FloatConst:
		return o.double == f.double
	case FloatNotValue:
		return o.double == f.double
	}
	return false
}

func (f floatTop) Join(o Value) Value {
	switch {
	case f.IsSuperType(o):
		return f
	case o.IsSuperType(f):
		return o
	}
	return Top
}

func (f floatTop) Meet(o Value) Value {
	switch {
	case f.IsSuperType(o):
		return o
	case o.IsSuperType(f):
		return f
	}
	return Bottom
}

func (floatTop) TryNegate() Value { return Bottom }

func (floatTop) Constant() (any, bool) { return nil, false }

func (f floatTop) Equal(o Value) bool {
	of, ok := o.(floatTop)
	return ok && f.double == of.double
}

func (f floatTop) Hash() uint32 {
	return utils.HashCombine(0x1f14e2d9, boolBit(f.double))
}

func (f floatTop) String() string {
	return colorize.Element(familyName(f.double))
}

func (z floatZero) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case floatZero:
		return o.double == z.double
	case FloatConst:
		// Numeric comparison: both zero constants satisfy the bucket.
		return o.double == z.double && o.value == 0
	}
	return false
}

func (z floatZero) Join(o Value) Value {
	switch o := o.(type) {
	case FloatNotValue:
		if o.double == z.double {
			return o.Join(z)
		}
		return Top
	default:
		switch {
		case z.IsSuperType(o):
			return z
		case o.IsSuperType(z):
			return o
		}
		if fam, ok := floatFamily(o); ok && fam == z.double {
			return genericFloat(z.double)
		}
		return Top
	}
}

func (z floatZero) Meet(o Value) Value {
	switch o := o.(type) {
	case FloatNotValue:
		if o.double == z.double {
			return o.Meet(z)
		}
		return Bottom
	default:
		switch {
		case z.IsSuperType(o):
			return o
		case o.IsSuperType(z):
			return z
		}
		return Bottom
	}
}

// TryNegate yields the not-value element excluding exactly {+0.0, -0.0}, so
// a "value is not zero" condition retains full precision, NaN included.
func (z floatZero) TryNegate() Value {
	return notValueOf(z.double, 0.0, math.Copysign(0, -1))
}

func (floatZero) Constant() (any, bool) { return nil, false }

func (z floatZero) Equal(o Value) bool {
	oz, ok := o.(floatZero)
	return ok && z.double == oz.double
}

func (z floatZero) Hash() uint32 {
	return utils.HashCombine(0x632a1907, boolBit(z.double))
}

func (z floatZero) String() string {
	return colorize.Element(familyName(z.double)) + " " + colorize.Const("±0.0")
}

func (c FloatConst) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case FloatConst:
		return c.Equal(o)
	}
	return false
}

func (c FloatConst) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return c
	case top:
		return o
	case FloatConst:
		if c.Equal(o) {
			return c
		}
		if o.double == c.double {
			return genericFloat(c.double)
		}
		return Top
	case floatZero:
		return o.Join(c)
	case FloatNotValue:
		if o.double == c.double {
			return o.Join(c)
		}
		return Top
	case floatTop:
		if o.double == c.double {
			return o
		}
		return Top
	}
	return Top
}

func (c FloatConst) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return c
	case floatTop:
		if o.double == c.double {
			return c
		}
	case floatZero:
		if o.double == c.double && c.value == 0 {
			return c
		}
	case FloatConst:
		if c.Equal(o) {
			return c
		}
	case FloatNotValue:
		if o.double == c.double {
			return o.Meet(c)
		}
	}
	return Bottom
}

// TryNegate yields the not-value element excluding exactly this constant.
func (c FloatConst) TryNegate() Value {
	return notValueOf(c.double, c.value)
}

func (c FloatConst) Constant() (any, bool) {
	if c.double {
		return c.value, true
	}
	return float32(c.value), true
}

func (c FloatConst) Equal(o Value) bool {
	oc, ok := o.(FloatConst)
	return ok && c.double == oc.double &&
		math.Float64bits(c.value) == math.Float64bits(oc.value)
}

func (c FloatConst) Hash() uint32 {
	bits := math.Float64bits(c.value)
	return utils.HashCombine(0x23ab9472, boolBit(c.double),
		uint32(bits), uint32(bits>>32))
}

func (c FloatConst) String() string {
	return colorize.Const(fmt.Sprintf("%v", c.value))
}

func (n FloatNotValue) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case FloatConst:
		return o.double == n.double && !n.excludes(math.Float64bits(o.value))
	case floatZero:
		return o.double == n.double &&
			!n.excludes(posZeroBits) && !n.excludes(negZeroBits)
	case FloatNotValue:
		if o.double != n.double {
			return false
		}
		// Fewer exclusions is the wider set.
		for _, bits := range n.excluded {
			if !o.excludes(bits) {
				return false
			}
		}
		return true
	}
	return false
}

func (n FloatNotValue) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return n
	case top:
		return o
	case FloatConst:
		if o.double != n.double {
			return Top
		}
		return n.without(math.Float64bits(o.value))
	case floatZero:
		if o.double != n.double {
			return Top
		}
		return n.without(posZeroBits, negZeroBits)
	case FloatNotValue:
		if o.double != n.double {
			return Top
		}
		common := []uint64{}
		for _, bits := range n.excluded {
			if o.excludes(bits) {
				common = append(common, bits)
			}
		}
		return notValueOfBits(n.double, common)
	case floatTop:
		if o.double == n.double {
			return o
		}
		return Top
	}
	return Top
}

// without drops satisfied exclusions, degrading to the generic domain when
// none remain.
func (n FloatNotValue) without(drop ...uint64) Value {
	kept := []uint64{}
outer:
	for _, bits := range n.excluded {
		for _, d := range drop {
			if bits == d {
				continue outer
			}
		}
		kept = append(kept, bits)
	}
	return notValueOfBits(n.double, kept)
}

func (n FloatNotValue) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return n
	case floatTop:
		if o.double == n.double {
			return n
		}
	case FloatConst:
		if o.double == n.double && !n.excludes(math.Float64bits(o.value)) {
			return o
		}
	case floatZero:
		if o.double != n.double {
			return Bottom
		}
		switch {
		case !n.excludes(posZeroBits) && !n.excludes(negZeroBits):
			return o
		case !n.excludes(posZeroBits):
			return FloatConst{n.double, 0.0}
		case !n.excludes(negZeroBits):
			return FloatConst{n.double, math.Copysign(0, -1)}
		}
	case FloatNotValue:
		if o.double != n.double {
			return Bottom
		}
		merged := make([]uint64, 0, len(n.excluded)+len(o.excluded))
		merged = append(merged, n.excluded...)
		merged = append(merged, o.excluded...)
		return notValueOfBits(n.double, merged)
	}
	return Bottom
}

// TryNegate inverts the exclusion set where the result is representable: the
// {+0.0, -0.0} exclusion negates back to the signed-zero bucket and a
// singleton exclusion to the constant itself.
func (n FloatNotValue) TryNegate() Value {
	switch {
	case len(n.excluded) == 2 &&
		n.excluded[0] == posZeroBits && n.excluded[1] == negZeroBits:
		return zeroFloat(n.double)
	case len(n.excluded) == 1:
		return FloatConst{n.double, math.Float64frombits(n.excluded[0])}
	}
	return Bottom
}

func (FloatNotValue) Constant() (any, bool) { return nil, false }

func (n FloatNotValue) Equal(o Value) bool {
	on, ok := o.(FloatNotValue)
	if !ok || n.double != on.double || len(n.excluded) != len(on.excluded) {
		return false
	}
	for i, bits := range n.excluded {
		if bits != on.excluded[i] {
			return false
		}
	}
	return true
}

func (n FloatNotValue) Hash() uint32 {
	hs := []uint32{0x54ff90c3, boolBit(n.double)}
	for _, bits := range n.excluded {
		hs = append(hs, uint32(bits), uint32(bits>>32))
	}
	return utils.HashCombine(hs...)
}

func (n FloatNotValue) String() string {
	parts := make([]string, len(n.excluded))
	for i, bits := range n.excluded {
		parts[i] = fmt.Sprintf("%v", math.Float64frombits(bits))
	}
	return colorize.Element(familyName(n.double)) +
		" ∉ {" + colorize.Const(strings.Join(parts, ", ")) + "}"
}

func floatFamily(o Value) (double bool, ok bool) {
	switch o := o.(type) {
	case floatTop:
		return o.double, true
	case floatZero:
		return o.double, true
	case FloatConst:
		return o.double, true
	case FloatNotValue:
		return o.double, true
	}
	return false, false
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
