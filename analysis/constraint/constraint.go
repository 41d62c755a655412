// Package constraint supplies nominal type-constraint tokens for the
// reference domain of the abstract value lattice. Tokens wrap `go/types`
// descriptors; the lattice stores and forwards them without inspecting the
// descriptors themselves.
package constraint

import (
	"go/types"
	"sync"

	"golang.org/x/tools/go/types/typeutil"

	"github.com/absint-dk/dfval/utils"
)

type kind uint8

const (
	kindTop kind = iota
	kindExact
	kindBound
	kindBottom
)

// Constraint is a nominal bound on the dynamic type of a reference value.
// The zero value is the unconstrained token.
type Constraint struct {
	kind kind
	typ  types.Type
}

// Unconstrained returns the token admitting any reference type.
func Unconstrained() Constraint { return Constraint{} }

// Unsatisfiable returns the token admitted by no reference type.
func Unsatisfiable() Constraint { return Constraint{kind: kindBottom} }

// ExactType returns the token admitting exactly the given dynamic type.
func ExactType(t types.Type) Constraint {
	if isInvalid(t) {
		return Unsatisfiable()
	}
	return Constraint{kindExact, t}
}

// SubtypeOf returns the token admitting the given type and everything that
// may appear where it is required. An empty interface bound degrades to the
// unconstrained token.
func SubtypeOf(t types.Type) Constraint {
	if isInvalid(t) {
		return Unsatisfiable()
	}
	if iface, ok := t.Underlying().(*types.Interface); ok && iface.Empty() {
		return Unconstrained()
	}
	return Constraint{kindBound, t}
}

func isInvalid(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Kind() == types.Invalid
}

// conformsTo checks whether a value of dynamic type sub may appear where a
// value of type super is required.
func conformsTo(sub, super types.Type) bool {
	if types.Identical(sub, super) {
		return true
	}
	if iface, ok := super.Underlying().(*types.Interface); ok {
		return types.Implements(sub, iface) || types.Implements(types.NewPointer(sub), iface)
	}
	return types.AssignableTo(sub, super)
}

// IsUnconstrained is true for the universal token.
func (c Constraint) IsUnconstrained() bool { return c.kind == kindTop }

// IsUnsatisfiable is true for the empty token.
func (c Constraint) IsUnsatisfiable() bool { return c.kind == kindBottom }

// Type returns the underlying descriptor; nil for the unconstrained and
// unsatisfiable tokens.
func (c Constraint) Type() types.Type { return c.typ }

// Subsumes reports whether every dynamic type admitted by o is also admitted
// by c.
func (c Constraint) Subsumes(o Constraint) bool {
	switch {
	case o.kind == kindBottom || c.kind == kindTop:
		return true
	case c.kind == kindBottom || o.kind == kindTop:
		return false
	case c.kind == kindExact:
		return o.kind == kindExact && types.Identical(c.typ, o.typ)
	default: // kindBound
		return conformsTo(o.typ, c.typ)
	}
}

// Join computes the least constraint subsuming both operands; when no common
// bound is known the result is unconstrained.
func (c Constraint) Join(o Constraint) Constraint {
	switch {
	case c.Subsumes(o):
		return c
	case o.Subsumes(c):
		return o
	default:
		return Unconstrained()
	}
}

// Meet narrows to the constraint admitted by both operands; disjoint
// constraints produce the unsatisfiable token. Two incomparable interface
// bounds cannot be represented by a single token; the left operand is kept.
func (c Constraint) Meet(o Constraint) Constraint {
	switch {
	case c.Subsumes(o):
		return o
	case o.Subsumes(c):
		return c
	case c.kind == kindBound && o.kind == kindBound && (isIface(c.typ) || isIface(o.typ)):
		return c
	default:
		return Unsatisfiable()
	}
}

func isIface(t types.Type) bool {
	_, ok := t.Underlying().(*types.Interface)
	return ok
}

// Equal checks token equality.
func (c Constraint) Equal(o Constraint) bool {
	if c.kind != o.kind {
		return false
	}
	if c.typ == nil || o.typ == nil {
		return c.typ == o.typ
	}
	return types.Identical(c.typ, o.typ)
}

// Hash computes a uint32 hash consistent with Equal.
func (c Constraint) Hash() uint32 {
	if c.typ == nil {
		return utils.HashCombine(uint32(c.kind))
	}
	return utils.HashCombine(uint32(c.kind), HashType(c.typ))
}

var _ utils.HashableEq[Constraint] = Constraint{}

func (c Constraint) String() string {
	switch c.kind {
	case kindTop:
		return "any"
	case kindBottom:
		return "⊥"
	case kindExact:
		return "exact " + c.typ.String()
	default:
		return "≤ " + c.typ.String()
	}
}

// The typeutil hasher is stateful; guard it so that Hash stays safe under
// concurrent analyses.
var (
	hasherMu sync.Mutex
	hasher   = typeutil.MakeHasher()
)

// HashType computes a uint32 hash of a type descriptor, consistent with
// types.Identical.
func HashType(t types.Type) uint32 {
	hasherMu.Lock()
	defer hasherMu.Unlock()
	return hasher.Hash(t)
}
