// Package rangeset implements sets of disjoint, closed intervals over int64,
// the interval representation consumed by the ranged integer domains of the
// abstract value lattice. Sets are immutable; every operation returns a fresh
// normalized set (ascending, non-overlapping, non-adjacent intervals).
package rangeset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/absint-dk/dfval/utils"
)

// Interval is a closed interval [Low, High]. Intervals with Low > High are
// treated as empty and discarded during normalization.
type Interval struct {
	Low  int64
	High int64
}

func (iv Interval) String() string {
	if iv.Low == iv.High {
		return strconv.FormatInt(iv.Low, 10)
	}
	return "[" + strconv.FormatInt(iv.Low, 10) + ", " + strconv.FormatInt(iv.High, 10) + "]"
}

// Set is a set of int64 values represented as disjoint closed intervals in
// ascending order. The zero value is the empty set.
type Set struct {
	ivs []Interval
}

// Full32 and Full64 are the 32-bit and 64-bit signed machine-width domains.
var (
	Full32 = Range(math.MinInt32, math.MaxInt32)
	Full64 = Range(math.MinInt64, math.MaxInt64)
)

// Empty returns the empty set.
func Empty() Set { return Set{} }

// Point returns the singleton set {v}.
func Point(v int64) Set { return Set{[]Interval{{v, v}}} }

// Range returns the set of all values in [low, high]; empty if low > high.
func Range(low, high int64) Set {
	if low > high {
		return Set{}
	}
	return Set{[]Interval{{low, high}}}
}

// Of builds a normalized set from arbitrary intervals.
func Of(ivs ...Interval) Set { return normalize(ivs) }

func normalize(ivs []Interval) Set {
	kept := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Low <= iv.High {
			kept = append(kept, iv)
		}
	}
	if len(kept) == 0 {
		return Set{}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Low < kept[j].Low })

	res := kept[:1]
	for _, iv := range kept[1:] {
		cur := &res[len(res)-1]
		// Merge overlapping or adjacent intervals, guarding the +1 overflow
		// at the top of the domain.
		if iv.Low <= cur.High || (cur.High != math.MaxInt64 && iv.Low == cur.High+1) {
			if iv.High > cur.High {
				cur.High = iv.High
			}
		} else {
			res = append(res, iv)
		}
	}
	return Set{res}
}

// IsEmpty is true for the empty set.
func (s Set) IsEmpty() bool { return len(s.ivs) == 0 }

// Parts returns the number of disjoint intervals in the set.
func (s Set) Parts() int { return len(s.ivs) }

// Intervals returns a copy of the underlying intervals.
func (s Set) Intervals() []Interval {
	return append([]Interval(nil), s.ivs...)
}

// Min returns the least member of the set, and panics if the set is empty.
func (s Set) Min() int64 {
	if s.IsEmpty() {
		panic("Min of empty range set")
	}
	return s.ivs[0].Low
}

// Max returns the greatest member of the set, and panics if the set is empty.
func (s Set) Max() int64 {
	if s.IsEmpty() {
		panic("Max of empty range set")
	}
	return s.ivs[len(s.ivs)-1].High
}

// Span returns the covering interval set [Min, Max] of a non-empty set.
func (s Set) Span() Set {
	if s.IsEmpty() {
		return Set{}
	}
	return Range(s.Min(), s.Max())
}

// Contains checks membership of a single value.
func (s Set) Contains(v int64) bool {
	i := sort.Search(len(s.ivs), func(i int) bool { return s.ivs[i].High >= v })
	return i < len(s.ivs) && s.ivs[i].Low <= v
}

// ConstantValue extracts the sole member of a singleton set.
func (s Set) ConstantValue() (int64, bool) {
	if len(s.ivs) == 1 && s.ivs[0].Low == s.ivs[0].High {
		return s.ivs[0].Low, true
	}
	return 0, false
}

// Union computes the set union.
func (s Set) Union(o Set) Set {
	ivs := make([]Interval, 0, len(s.ivs)+len(o.ivs))
	ivs = append(ivs, s.ivs...)
	ivs = append(ivs, o.ivs...)
	return normalize(ivs)
}

// Intersect computes the set intersection.
func (s Set) Intersect(o Set) Set {
	res := []Interval{}
	i, j := 0, 0
	for i < len(s.ivs) && j < len(o.ivs) {
		a, b := s.ivs[i], o.ivs[j]
		low, high := a.Low, a.High
		if b.Low > low {
			low = b.Low
		}
		if b.High < high {
			high = b.High
		}
		if low <= high {
			res = append(res, Interval{low, high})
		}
		if a.High < b.High {
			i++
		} else {
			j++
		}
	}
	return Set{res}
}

// Intersects reports whether the two sets share any value.
func (s Set) Intersects(o Set) bool {
	return !s.Intersect(o).IsEmpty()
}

// Diff computes the set difference s \ o.
func (s Set) Diff(o Set) Set {
	res := []Interval{}
	j := 0
	for _, a := range s.ivs {
		low := a.Low
		covered := false
		for j < len(o.ivs) && o.ivs[j].High < a.Low {
			j++
		}
		for k := j; k < len(o.ivs) && o.ivs[k].Low <= a.High; k++ {
			b := o.ivs[k]
			if b.Low > low {
				res = append(res, Interval{low, b.Low - 1})
			}
			if b.High >= a.High {
				covered = true
				break
			}
			if b.High+1 > low {
				low = b.High + 1
			}
		}
		if !covered && low <= a.High {
			res = append(res, Interval{low, a.High})
		}
	}
	return Set{res}
}

// Complement computes the complement of the set within the given domain.
func (s Set) Complement(domain Set) Set {
	return domain.Diff(s)
}

// Subsumes reports whether the set is a (non-strict) superset of o.
func (s Set) Subsumes(o Set) bool {
	i := 0
	for _, b := range o.ivs {
		for i < len(s.ivs) && s.ivs[i].High < b.Low {
			i++
		}
		if i == len(s.ivs) || s.ivs[i].Low > b.Low || s.ivs[i].High < b.High {
			return false
		}
	}
	return true
}

// Equal checks set equality.
func (s Set) Equal(o Set) bool {
	if len(s.ivs) != len(o.ivs) {
		return false
	}
	for i, iv := range s.ivs {
		if iv != o.ivs[i] {
			return false
		}
	}
	return true
}

// Hash computes a uint32 hash consistent with Equal.
func (s Set) Hash() uint32 {
	hs := make([]uint32, 0, 2*len(s.ivs))
	for _, iv := range s.ivs {
		hs = append(hs,
			uint32(uint64(iv.Low)), uint32(uint64(iv.Low)>>32),
			uint32(uint64(iv.High)), uint32(uint64(iv.High)>>32))
	}
	return utils.HashCombine(hs...)
}

var _ utils.HashableEq[Set] = Set{}

func (s Set) String() string {
	switch len(s.ivs) {
	case 0:
		return "∅"
	case 1:
		return s.ivs[0].String()
	}
	parts := make([]string, len(s.ivs))
	for i, iv := range s.ivs {
		parts[i] = iv.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
