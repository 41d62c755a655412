package lattice

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/absint-dk/dfval/analysis/constraint"
	"github.com/absint-dk/dfval/utils"
)

// Nullability tracks whether a reference may be nil.
type Nullability uint8

const (
	NullabilityUnknown Nullability = iota
	NotNull
	Nullable
	DefinitelyNull
)

func (n Nullability) String() string {
	switch n {
	case NotNull:
		return "not-null"
	case Nullable:
		return "nullable"
	case DefinitelyNull:
		return "null"
	}
	return "unknown-nullability"
}

// subsumesNull is the nullability order: Unknown above all, Nullable above
// NotNull and DefinitelyNull.
func subsumesNull(a, b Nullability) bool {
	switch {
	case a == b, a == NullabilityUnknown:
		return true
	case a == Nullable:
		return b == NotNull || b == DefinitelyNull
	}
	return false
}

func joinNullability(a, b Nullability) Nullability {
	switch {
	case subsumesNull(a, b):
		return a
	case subsumesNull(b, a):
		return b
	}
	// NotNull with DefinitelyNull, or either with Nullable.
	return Nullable
}

func meetNullability(a, b Nullability) (Nullability, bool) {
	switch {
	case subsumesNull(a, b):
		return b, true
	case subsumesNull(b, a):
		return a, true
	}
	return 0, false
}

// Mutability tracks whether a reference's target may be modified. The
// states form a chain: Unknown admits any target, Mutable admits targets
// that may or may not be modified, Unmodifiable only known-immutable ones.
type Mutability uint8

const (
	MutabilityUnknown Mutability = iota
	Mutable
	Unmodifiable
)

func (m Mutability) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case Unmodifiable:
		return "unmodifiable"
	}
	return "unknown-mutability"
}

func subsumesMut(a, b Mutability) bool {
	return a == b || a == MutabilityUnknown ||
		(a == Mutable && b == Unmodifiable)
}

func joinMutability(a, b Mutability) Mutability {
	switch {
	case subsumesMut(a, b):
		return a
	case subsumesMut(b, a):
		return b
	}
	return MutabilityUnknown
}

func meetMutability(a, b Mutability) Mutability {
	if subsumesMut(a, b) {
		return b
	}
	return a
}

// SpecialField identifies an intrinsic derived quantity of a reference, such
// as the length of a slice or string.
type SpecialField uint8

const (
	NoField SpecialField = iota
	FieldLen
	FieldCap
)

func (f SpecialField) String() string {
	switch f {
	case FieldLen:
		return "len"
	case FieldCap:
		return "cap"
	}
	return ""
}

type (
	// nullConst is the definitely-nil reference.
	nullConst struct{}

	// Reference describes a non-constant reference value by a conjunction of
	// facts: a nominal type constraint, nullability, mutability, an optional
	// abstract value for one intrinsic field, and whether the referenced
	// object is known local to the analyzed function (not escaped).
	Reference struct {
		constr      constraint.Constraint
		nullability Nullability
		mutability  Mutability
		field       SpecialField
		fieldValue  Value
		local       bool
	}
)

// NewReference builds a reference descriptor. A field value of nil (or a
// field of NoField) records no field fact. Definitely-null references are
// the dedicated Null element, never a descriptor; asserting definite
// nullness here is a caller bug and panics.
func NewReference(c constraint.Constraint, n Nullability, m Mutability,
	field SpecialField, fieldValue Value, local bool) Value {
	if n == DefinitelyNull {
		panic("lattice: reference with definitely-null nullability")
	}
	if c.IsUnsatisfiable() {
		if n == Nullable {
			return Null
		}
		return Bottom
	}
	if field == NoField || fieldValue == nil {
		field, fieldValue = NoField, nil
	}
	return Reference{c, n, m, field, fieldValue, local}
}

// TypeConstraint retrieves the nominal constraint.
func (r Reference) TypeConstraint() constraint.Constraint { return r.constr }

// Nullability retrieves the nullability fact.
func (r Reference) Nullability() Nullability { return r.nullability }

// Mutability retrieves the mutability fact.
func (r Reference) Mutability() Mutability { return r.mutability }

// SpecialField retrieves the tracked intrinsic field, NoField when none.
func (r Reference) SpecialField() SpecialField { return r.field }

// SpecialFieldValue retrieves the abstract value of the tracked field; Bottom
// when no field is tracked.
func (r Reference) SpecialFieldValue() Value { return r.fv() }

// IsLocal is true when the referenced object is known not to have escaped.
func (r Reference) IsLocal() bool { return r.local }

func (r Reference) fv() Value {
	if r.fieldValue == nil {
		return Bottom
	}
	return r.fieldValue
}

func (r Reference) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case nullConst:
		return subsumesNull(r.nullability, DefinitelyNull) &&
			r.field == NoField && !r.local
	case Reference:
		if !r.constr.Subsumes(o.constr) ||
			!subsumesNull(r.nullability, o.nullability) ||
			!subsumesMut(r.mutability, o.mutability) {
			return false
		}
		if r.local && !o.local {
			return false
		}
		if r.field != NoField {
			return o.field == r.field && r.fv().IsSuperType(o.fv())
		}
		return true
	case RefConst:
		return r.IsSuperType(o.toGeneric())
	}
	return false
}

func (r Reference) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return r
	case top:
		return o
	case nullConst:
		return r.joinNull()
	case RefConst:
		return r.Join(o.toGeneric())
	case Reference:
		field, fv := r.field, r.fieldValue
		if o.field != r.field {
			field, fv = NoField, nil
		} else if field != NoField {
			fv = r.fv().Join(o.fv())
		}
		return Reference{
			constr:      r.constr.Join(o.constr),
			nullability: joinNullability(r.nullability, o.nullability),
			mutability:  joinMutability(r.mutability, o.mutability),
			field:       field,
			fieldValue:  fv,
			local:       r.local && o.local,
		}
	}
	return Top
}

// joinNull admits nil into the descriptor: nullability weakens to Nullable
// and nil-incompatible facts (field value, locality) are dropped.
func (r Reference) joinNull() Value {
	n := joinNullability(r.nullability, DefinitelyNull)
	return Reference{constr: r.constr, nullability: n, mutability: r.mutability}
}

func (r Reference) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return r
	case nullConst:
		return r.meetNull()
	case RefConst:
		if r.IsSuperType(o.toGeneric()) {
			return o
		}
		return Bottom
	case Reference:
		c := r.constr.Meet(o.constr)
		if c.IsUnsatisfiable() {
			return Bottom
		}
		n, ok := meetNullability(r.nullability, o.nullability)
		if !ok {
			return Bottom
		}
		field, fv := r.field, r.fieldValue
		switch {
		case r.field == NoField:
			field, fv = o.field, o.fieldValue
		case o.field == NoField:
		case o.field == r.field:
			m := r.fv().Meet(o.fv())
			if m.Equal(Bottom) {
				return Bottom
			}
			fv = m
		default:
			// The single binding slot cannot hold both fields, and any
			// element below both operands would have to.
			return Bottom
		}
		return Reference{
			constr:      c,
			nullability: n,
			mutability:  meetMutability(r.mutability, o.mutability),
			field:       field,
			fieldValue:  fv,
			local:       r.local || o.local,
		}
	}
	return Bottom
}

// meetNull narrows against the nil constant: any fact incompatible with nil
// makes the meet empty.
func (r Reference) meetNull() Value {
	if r.nullability == NotNull || r.field != NoField || r.local {
		return Bottom
	}
	return Null
}

// TryNegate is representable only for the bare not-null reference, whose
// complement is nil itself.
func (r Reference) TryNegate() Value {
	if r.Equal(NotNullObject) {
		return Null
	}
	return Bottom
}

func (Reference) Constant() (any, bool) { return nil, false }

func (r Reference) Equal(o Value) bool {
	or, ok := o.(Reference)
	return ok &&
		r.constr.Equal(or.constr) &&
		r.nullability == or.nullability &&
		r.mutability == or.mutability &&
		r.field == or.field &&
		r.fv().Equal(or.fv()) &&
		r.local == or.local
}

func (r Reference) Hash() uint32 {
	return utils.HashCombine(0x4a1c8e55,
		r.constr.Hash(),
		uint32(r.nullability),
		uint32(r.mutability),
		uint32(r.field),
		r.fv().Hash(),
		boolBit(r.local))
}

func (r Reference) String() string {
	attrs := []string{}
	if !r.constr.IsUnconstrained() {
		attrs = append(attrs, colorize.Attr(r.constr.String()))
	}
	if r.nullability != NullabilityUnknown {
		attrs = append(attrs, colorize.Attr(r.nullability.String()))
	}
	if r.mutability != MutabilityUnknown {
		attrs = append(attrs, colorize.Attr(r.mutability.String()))
	}
	if r.local {
		attrs = append(attrs, colorize.Attr("local"))
	}
	if r.field != NoField {
		attrs = append(attrs,
			colorize.Field(r.field.String())+" = "+r.fv().String())
	}
	if len(attrs) == 0 {
		return colorize.Element("ref")
	}
	return colorize.Element("ref") + " {" + strings.Join(attrs, ", ") + "}"
}

func (nullConst) IsSuperType(o Value) bool {
	switch o.(type) {
	case bottom, nullConst:
		return true
	}
	return false
}

func (n nullConst) Join(o Value) Value {
	switch o := o.(type) {
	case bottom, nullConst:
		return n
	case top:
		return o
	case Reference:
		return o.joinNull()
	case RefConst:
		return o.toGeneric().(Reference).joinNull()
	}
	return Top
}

func (n nullConst) Meet(o Value) Value {
	switch o := o.(type) {
	case top, nullConst:
		return Null
	case Reference:
		return o.meetNull()
	}
	return Bottom
}

// TryNegate yields the bare not-null reference.
func (nullConst) TryNegate() Value { return NotNullObject }

// Constant reports nil as a known concrete value.
func (nullConst) Constant() (any, bool) { return nil, true }

func (nullConst) Equal(o Value) bool {
	_, ok := o.(nullConst)
	return ok
}

func (nullConst) Hash() uint32 { return 0x6e19d30f }

func (nullConst) String() string { return colorize.Const("null") }

// RefConst is a known reference constant: an interned payload plus its
// nominal constraint. The synthesized flag marks constants materialized by
// the analysis itself rather than read from source; it is presentation-only
// and excluded from Equal and Hash.
type RefConst struct {
	value       any
	constr      constraint.Constraint
	synthesized bool
}

// NewRefConst builds a reference constant from an interned payload.
func NewRefConst(value any, c constraint.Constraint) Value {
	if c.IsUnsatisfiable() {
		return Bottom
	}
	return RefConst{value: value, constr: c}
}

// RefVal retrieves the underlying payload.
func (c RefConst) RefVal() any { return c.value }

// TypeConstraint retrieves the nominal constraint.
func (c RefConst) TypeConstraint() constraint.Constraint { return c.constr }

// IsSynthesized is true for constants materialized by the analysis.
func (c RefConst) IsSynthesized() bool { return c.synthesized }

// Synthesized marks the constant as analysis-materialized.
func (c RefConst) Synthesized() RefConst {
	c.synthesized = true
	return c
}

// toGeneric widens the constant to the reference descriptor every constant
// satisfies: non-nil, unmodifiable, not known local.
func (c RefConst) toGeneric() Value {
	return Reference{
		constr:      c.constr,
		nullability: NotNull,
		mutability:  Unmodifiable,
	}
}

func (c RefConst) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case RefConst:
		return c.Equal(o)
	}
	return false
}

func (c RefConst) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return c
	case top:
		return o
	case RefConst:
		if c.Equal(o) {
			return c
		}
		return c.toGeneric().Join(o.toGeneric())
	case nullConst, Reference:
		return c.toGeneric().Join(o)
	}
	return Top
}

func (c RefConst) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return c
	case RefConst:
		if c.Equal(o) {
			return c
		}
	case Reference:
		return o.Meet(c)
	}
	return Bottom
}

// TryNegate fails: "any reference but this one" is not representable.
func (RefConst) TryNegate() Value { return Bottom }

func (c RefConst) Constant() (any, bool) { return c.value, true }

func (c RefConst) Equal(o Value) bool {
	oc, ok := o.(RefConst)
	return ok && c.constr.Equal(oc.constr) && payloadEqual(c.value, oc.value)
}

// payloadEqual compares interned payloads. Type descriptors compare by
// identity of the described type, everything else by interned equality.
func payloadEqual(a, b any) bool {
	if at, ok := a.(types.Type); ok {
		bt, ok := b.(types.Type)
		return ok && types.Identical(at, bt)
	}
	return a == b
}

func (c RefConst) Hash() uint32 {
	return utils.HashCombine(0x19c2f6a7, c.constr.Hash(), payloadHash(c.value))
}

func payloadHash(v any) uint32 {
	switch v := v.(type) {
	case string:
		return utils.HashString(v)
	case types.Type:
		return constraint.HashType(v)
	case types.Object:
		return utils.HashString(v.Id())
	}
	return utils.HashString(fmt.Sprintf("%v", v))
}

func (c RefConst) String() string {
	var s string
	switch v := c.value.(type) {
	case string:
		s = colorize.Const(fmt.Sprintf("%q", v))
	case types.Object:
		s = colorize.Const(v.Name())
	case types.Type:
		s = colorize.Const(v.String())
	default:
		s = colorize.Const(fmt.Sprintf("%v", v))
	}
	if c.synthesized {
		return s + " " + colorize.Attr("(synthesized)")
	}
	return s
}
