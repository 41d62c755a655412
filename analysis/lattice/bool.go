package lattice

import "github.com/absint-dk/dfval/utils"

type (
	// boolean is the generic two-valued boolean domain.
	boolean struct{}

	// BoolConst is a boolean constant.
	BoolConst struct {
		value bool
	}
)

// BoolValue returns the boolean constant with the given value.
func BoolValue(v bool) Value {
	if v {
		return True
	}
	return False
}

// BoolVal retrieves the underlying constant.
func (c BoolConst) BoolVal() bool { return c.value }

func (boolean) IsSuperType(o Value) bool {
	switch o.(type) {
	case bottom, boolean, BoolConst:
		return true
	}
	return false
}

func (b boolean) Join(o Value) Value {
	switch o.(type) {
	case bottom, boolean, BoolConst:
		return b
	}
	return Top
}

func (b boolean) Meet(o Value) Value {
	switch o := o.(type) {
	case top:
		return b
	case boolean:
		return b
	case BoolConst:
		return o
	}
	return Bottom
}

// TryNegate fails to Bottom: there is no "non-boolean" expressible within
// the boolean universe.
func (boolean) TryNegate() Value { return Bottom }

func (boolean) Constant() (any, bool) { return nil, false }

func (boolean) Equal(o Value) bool {
	_, ok := o.(boolean)
	return ok
}

func (boolean) Hash() uint32 { return 0x0546cd5d }

func (boolean) String() string { return colorize.Element("bool") }

func (c BoolConst) IsSuperType(o Value) bool {
	switch o := o.(type) {
	case bottom:
		return true
	case BoolConst:
		return c.value == o.value
	}
	return false
}

func (c BoolConst) Join(o Value) Value {
	switch o := o.(type) {
	case bottom:
		return c
	case BoolConst:
		if c.value == o.value {
			return c
		}
		return Boolean
	case boolean:
		return o
	case top:
		return o
	}
	return Top
}

func (c BoolConst) Meet(o Value) Value {
	switch o := o.(type) {
	case top, boolean:
		return c
	case BoolConst:
		if c.value == o.value {
			return c
		}
	}
	return Bottom
}

// TryNegate yields the other boolean constant.
func (c BoolConst) TryNegate() Value { return BoolValue(!c.value) }

func (c BoolConst) Constant() (any, bool) { return c.value, true }

func (c BoolConst) Equal(o Value) bool {
	oc, ok := o.(BoolConst)
	return ok && c.value == oc.value
}

func (c BoolConst) Hash() uint32 {
	if c.value {
		return utils.HashCombine(0x11b5c61b, 1)
	}
	return utils.HashCombine(0x11b5c61b, 0)
}

func (c BoolConst) String() string {
	if c.value {
		return colorize.Const("true")
	}
	return colorize.Const("false")
}
