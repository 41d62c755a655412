package lattice

import (
	"github.com/absint-dk/dfval/analysis/constraint"
	"github.com/absint-dk/dfval/analysis/rangeset"
)

// Interned lattice members. Factories return these instances where the
// canonical form matches, so pointer-free comparison via Equal stays cheap
// and printed output stays stable.
var (
	// Top is the universal element: no information.
	Top Value = top{}
	// Bottom is the empty element: no possible value.
	Bottom Value = bottom{}

	// Boolean is the generic boolean domain.
	Boolean Value = boolean{}
	// True and False are the boolean constants.
	True  Value = BoolConst{true}
	False Value = BoolConst{false}

	// Int and Long are the full 32- and 64-bit integer domains.
	Int  Value = IntRange{width: Width32, rng: rangeset.Full32}
	Long Value = IntRange{width: Width64, rng: rangeset.Full64}

	// Float and Double are the generic 32- and 64-bit floating-point
	// domains.
	Float  Value = floatTop{double: false}
	Double Value = floatTop{double: true}
	// FloatZero and DoubleZero are the signed-zero buckets, holding +0.0
	// and -0.0 at once.
	FloatZero  Value = floatZero{double: false}
	DoubleZero Value = floatZero{double: true}

	// Null is the definitely-nil reference constant.
	Null Value = nullConst{}
	// NotNullObject is the bare non-nil reference.
	NotNullObject Value = Reference{
		constr:      constraint.Unconstrained(),
		nullability: NotNull,
	}
	// ObjectOrNull is the reference about which nothing is known.
	ObjectOrNull Value = Reference{constr: constraint.Unconstrained()}
	// LocalObject is the non-nil reference known not to have escaped the
	// analyzed function.
	LocalObject Value = Reference{
		constr:      constraint.Unconstrained(),
		nullability: NotNull,
		local:       true,
	}
)
