// Package lattice implements the bounded lattice of abstract values assigned
// to program expressions and variables by a dataflow analysis. Every member
// is an immutable descriptor of a set of possible runtime values; the
// analysis driver merges them with Join at control-flow merge points,
// narrows them with Meet when a condition is known to hold, and splits
// branches with TryNegate.
package lattice

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/fatih/color"

	"github.com/absint-dk/dfval/utils"
)

var colorize = struct {
	Element func(...interface{}) string
	Const   func(...interface{}) string
	Attr    func(...interface{}) string
	Field   func(...interface{}) string
}{
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
	Attr: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
	Field: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgGreen).SprintFunc())(is...)
	},
}

var (
	// ErrUnsupportedConstant reports constant construction from an object
	// kind outside the supported closed enumeration.
	ErrUnsupportedConstant = errors.New("unsupported constant kind")
	// ErrOutOfDomain reports a strict range construction whose requested
	// values are not fully representable in the machine-width domain.
	ErrOutOfDomain = errors.New("range not representable in domain")
)

// Value is an immutable member of the abstract value lattice.
//
// All operations are total: loss of precision is reported by returning Top
// (for Join) or Bottom (for Meet and TryNegate), never by failing, so that a
// dataflow fixpoint has a defined value at every merge point. Values are
// safe for unsynchronized concurrent use.
type Value interface {
	// IsSuperType reports whether every concrete value representable by
	// other is also representable by the receiver. It is a non-strict
	// partial order: reflexive, transitive, and antisymmetric up to Equal;
	// Bottom is a subtype of everything and Top a supertype of everything.
	IsSuperType(other Value) bool
	// Join computes the least upper bound of the receiver and other. When
	// no tighter common representation exists the result is Top.
	Join(other Value) Value
	// Meet computes the greatest lower bound of the receiver and other.
	// Disjoint representations meet to Bottom.
	Meet(other Value) Value
	// TryNegate computes the best-effort complement of the receiver within
	// its own universe. Bottom is returned when the complement is not
	// representable; callers must treat that as "no information", not as a
	// contradiction.
	TryNegate() Value
	// Constant extracts the concrete value of a constant element. The
	// second result is false for non-constant elements; the Null element
	// reports (nil, true).
	Constant() (any, bool)
	// Equal is structural equality, consistent with Hash.
	Equal(other Value) bool
	// Hash computes a uint32 hash consistent with Equal, fit for keying
	// memoized analysis state.
	Hash() uint32

	fmt.Stringer
}

var _ utils.HashableEq[Value] = Value(nil)

// NewMemo creates an immutable map keyed by structural value equality, as
// used by analysis drivers to memoize per-expression state.
func NewMemo[V any]() *immutable.Map[Value, V] {
	return utils.NewImmMap[Value, V]()
}

type (
	top    struct{}
	bottom struct{}
)

func (top) IsSuperType(Value) bool { return true }

func (top) Join(Value) Value { return Top }

func (t top) Meet(o Value) Value { return o }

func (top) TryNegate() Value { return Bottom }

func (top) Constant() (any, bool) { return nil, false }

func (top) Equal(o Value) bool {
	_, ok := o.(top)
	return ok
}

func (top) Hash() uint32 { return 0x7b0c1c39 }

func (top) String() string { return colorize.Element("⊤") }

func (bottom) IsSuperType(o Value) bool {
	_, ok := o.(bottom)
	return ok
}

func (b bottom) Join(o Value) Value { return o }

func (bottom) Meet(Value) Value { return Bottom }

func (bottom) TryNegate() Value { return Top }

func (bottom) Constant() (any, bool) { return nil, false }

func (bottom) Equal(o Value) bool {
	_, ok := o.(bottom)
	return ok
}

func (bottom) Hash() uint32 { return 0x2d8f00a5 }

func (bottom) String() string { return colorize.Element("⊥") }
