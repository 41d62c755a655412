package lattice

import (
	"strconv"

	"github.com/absint-dk/dfval/analysis/rangeset"
	"github.com/absint-dk/dfval/utils"
)

// Width is the machine bit width of an integer domain. The two integer
// families never mix: operations across widths degrade to Top/Bottom.
type Width uint8

const (
	Width32 Width = 32
	Width64 Width = 64
)

func (w Width) domain() rangeset.Set {
	if w == Width64 {
		return rangeset.Full64
	}
	return rangeset.Full32
}

func (w Width) String() string {
	if w == Width64 {
		return "int64"
	}
	return "int32"
}

type (
	// IntRange is a multi-point integer range: a set of disjoint,
	// width-clamped closed intervals. The factory never leaves a singleton
	// range in this form; it collapses to IntConst.
	//
	// wide records the widest range observed for this quantity before
	// narrowing. It is convergence bookkeeping for iterative analysis and
	// does not participate in Equal/Hash.
	IntRange struct {
		width Width
		rng   rangeset.Set
		wide  rangeset.Set
	}

	// IntConst is a single-point integer constant.
	IntConst struct {
		width Width
		value int64
		wide  rangeset.Set
	}
)

// Width retrieves the machine width of the range.
func (r IntRange) Width() Width { return r.width }

// Range retrieves the underlying range set.
func (r IntRange) Range() rangeset.Set { return r.rng }

// WideRange retrieves the pre-widening bookkeeping range; empty when absent.
func (r IntRange) WideRange() rangeset.Set { return r.wide }

// Width retrieves the machine width of the constant.
func (c IntConst) Width() Width { return c.width }

// IntVal retrieves the underlying constant.
func (c IntConst) IntVal() int64 { return c.value }

// WideRange retrieves the pre-widening bookkeeping range; empty when absent.
func (c IntConst) WideRange() rangeset.Set { return c.wide }

func (c IntConst) asRange() rangeset.Set { return rangeset.Point(c.value) }

// joinRanges unions two range sets, widening to the covering interval when
// the union keeps more disjoint parts than the range policy allows.
func joinRanges(a, b rangeset.Set) rangeset.Set {
	u := a.Union(b)
	if RangePolicy.MaxParts > 0 && u.Parts() > RangePolicy.MaxParts {
		u = u.Span()
	}
	return u
}

// joinWide merges the wide-range bookkeeping of two operands. An operand
// without a wide range contributes its narrow range instead; the result is
// empty when neither operand carries bookkeeping.
func joinWide(narrowA, wideA, narrowB, wideB rangeset.Set) rangeset.Set {
	if !RangePolicy.KeepWide || (wideA.IsEmpty() && wideB.IsEmpty()) {
		return rangeset.Empty()
	}
	ea, eb := wideA, wideB
	if ea.IsEmpty() {
		ea = narrowA
	}
	if eb.IsEmpty() {
		eb = narrowB
	}
	return ea.Union(eb)
}

func (r IntRange) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case IntConst:
		return o.width == r.width && r.rng.Contains(o.value)
	case IntRange:
		return o.width == r.width && r.rng.Subsumes(o.rng)
	}
	return false
}

func (r IntRange) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return r
	case top:
		return o
	case IntConst:
		if o.width != r.width {
			return Top
		}
		return intRangeWide(r.width,
			joinRanges(r.rng, o.asRange()),
			joinWide(r.rng, r.wide, o.asRange(), o.wide))
	case IntRange:
		if o.width != r.width {
			return Top
		}
		return intRangeWide(r.width,
			joinRanges(r.rng, o.rng),
			joinWide(r.rng, r.wide, o.rng, o.wide))
	}
	return Top
}

func (r IntRange) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return r
	case IntConst:
		if o.width == r.width && r.rng.Contains(o.value) {
			return o
		}
	case IntRange:
		if o.width != r.width {
			return Bottom
		}
		return intRangeWide(r.width,
			r.rng.Intersect(o.rng),
			joinWide(r.rng, r.wide, o.rng, o.wide))
	}
	return Bottom
}

// TryNegate complements the range within its machine-width domain. The
// bookkeeping wide range does not survive negation.
func (r IntRange) TryNegate() Value {
	return intRange(r.width, r.rng.Complement(r.width.domain()))
}

func (r IntRange) Constant() (any, bool) { return nil, false }

func (r IntRange) Equal(o Value) bool {
	or, ok := o.(IntRange)
	return ok && r.width == or.width && r.rng.Equal(or.rng)
}

func (r IntRange) Hash() uint32 {
	return utils.HashCombine(0x5e132373, uint32(r.width), r.rng.Hash())
}

func (r IntRange) String() string {
	if r.rng.Equal(r.width.domain()) {
		return colorize.Element(r.width.String())
	}
	return colorize.Element(r.width.String()) + " ∈ " + colorize.Const(r.rng.String())
}

func (c IntConst) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case IntConst:
		return o.width == c.width && o.value == c.value
	}
	return false
}

func (c IntConst) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return c
	case top:
		return o
	case IntConst:
		if o.width != c.width {
			return Top
		}
		return intRangeWide(c.width,
			joinRanges(c.asRange(), o.asRange()),
			joinWide(c.asRange(), c.wide, o.asRange(), o.wide))
	case IntRange:
		return o.Join(c)
	}
	return Top
}

func (c IntConst) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return c
	case IntConst:
		if o.width == c.width && o.value == c.value {
			return c
		}
	case IntRange:
		if o.width == c.width && o.rng.Contains(c.value) {
			return c
		}
	}
	return Bottom
}

// TryNegate yields the machine-width domain minus the constant.
func (c IntConst) TryNegate() Value {
	return intRange(c.width, c.asRange().Complement(c.width.domain()))
}

func (c IntConst) Constant() (any, bool) { return c.value, true }

func (c IntConst) Equal(o Value) bool {
	oc, ok := o.(IntConst)
	return ok && c.width == oc.width && c.value == oc.value
}

func (c IntConst) Hash() uint32 {
	return utils.HashCombine(0x30d48eb1, uint32(c.width),
		uint32(uint64(c.value)), uint32(uint64(c.value)>>32))
}

func (c IntConst) String() string {
	return colorize.Const(strconv.FormatInt(c.value, 10))
}
