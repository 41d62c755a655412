package rangeset

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Set
		expected Set
	}{
		{"empty", Of(), Empty()},
		{"inverted interval dropped", Of(Interval{5, 1}), Empty()},
		{"point", Of(Interval{3, 3}), Point(3)},
		{"overlap merged", Of(Interval{0, 5}, Interval{3, 9}), Range(0, 9)},
		{"adjacent merged", Of(Interval{0, 4}, Interval{5, 9}), Range(0, 9)},
		{"gap kept", Of(Interval{0, 3}, Interval{5, 9}), Of(Interval{0, 3}, Interval{5, 9})},
		{"unsorted input", Of(Interval{5, 9}, Interval{0, 3}), Of(Interval{0, 3}, Interval{5, 9})},
		{"max int64 adjacency guard", Of(Interval{0, math.MaxInt64}, Interval{-5, -1}), Range(-5, math.MaxInt64)},
	}

	for _, test := range tests {
		if !test.in.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.in, test.expected)
		}
	}
}

func TestSetOps(t *testing.T) {
	a := Of(Interval{0, 10}, Interval{20, 30})
	b := Of(Interval{5, 25})

	tests := []struct {
		name     string
		got      Set
		expected Set
	}{
		{"union", a.Union(b), Range(0, 30)},
		{"intersect", a.Intersect(b), Of(Interval{5, 10}, Interval{20, 25})},
		{"diff", a.Diff(b), Of(Interval{0, 4}, Interval{26, 30})},
		{"diff reversed", b.Diff(a), Range(11, 19)},
		{"complement", Point(0).Complement(Range(-2, 2)), Of(Interval{-2, -1}, Interval{1, 2})},
		{"diff disjoint", a.Diff(Range(100, 200)), a},
		{"diff covering", a.Diff(Range(-5, 35)), Empty()},
	}

	for _, test := range tests {
		if !test.got.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.got, test.expected)
		}
	}
}

func TestSubsumesContains(t *testing.T) {
	s := Of(Interval{0, 10}, Interval{20, 30})

	if !s.Subsumes(Range(2, 8)) || !s.Subsumes(Point(20)) || !s.Subsumes(Empty()) {
		t.Errorf("%s should subsume its subsets", s)
	}
	if s.Subsumes(Range(8, 22)) {
		t.Errorf("%s should not subsume a range crossing its gap", s)
	}
	if !s.Contains(10) || s.Contains(15) || s.Contains(31) {
		t.Errorf("membership in %s broken", s)
	}
}

func TestConstantValue(t *testing.T) {
	if v, ok := Point(42).ConstantValue(); !ok || v != 42 {
		t.Errorf("Point(42) should report constant 42")
	}
	if _, ok := Range(1, 2).ConstantValue(); ok {
		t.Errorf("[1, 2] is not a constant")
	}
	if _, ok := Empty().ConstantValue(); ok {
		t.Errorf("∅ is not a constant")
	}
}

func TestHashEqualConsistency(t *testing.T) {
	a := Of(Interval{0, 5}, Interval{3, 9})
	b := Range(0, 9)
	if !a.Equal(b) {
		t.Fatalf("%s and %s should normalize to the same set", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Errorf("equal sets hash differently: %d vs %d", a.Hash(), b.Hash())
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in       Set
		expected string
	}{
		{Empty(), "∅"},
		{Point(7), "7"},
		{Range(0, 4), "[0, 4]"},
		{Of(Interval{0, 3}, Interval{5, 5}), "{[0, 3], 5}"},
	}

	for _, test := range tests {
		if got := test.in.String(); got != test.expected {
			t.Errorf("got %q, expected %q", got, test.expected)
		}
	}
}
