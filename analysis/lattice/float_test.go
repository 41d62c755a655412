package lattice

import (
	"math"
	"testing"
)

var negZero = math.Copysign(0, -1)

func TestSignedZeroBucket(t *testing.T) {
	tests := []struct {
		name     string
		got      bool
		expected bool
	}{
		{"zero bucket covers +0.0", DoubleZero.IsSuperType(DoubleValue(0)), true},
		{"zero bucket covers -0.0", DoubleZero.IsSuperType(DoubleValue(negZero)), true},
		{"zero bucket rejects non-zero", DoubleZero.IsSuperType(DoubleValue(1)), false},
		{"32-bit bucket covers 32-bit zero", FloatZero.IsSuperType(FloatValue(0)), true},
		{"families do not mix", FloatZero.IsSuperType(DoubleValue(0)), false},
		{"generic covers bucket", Double.IsSuperType(DoubleZero), true},
	}

	for _, test := range tests {
		if test.got != test.expected {
			t.Errorf("%s: got %v", test.name, test.got)
		}
	}
}

func TestFloatConstantsBitwise(t *testing.T) {
	if DoubleValue(0).Equal(DoubleValue(negZero)) {
		t.Errorf("+0.0 and -0.0 are distinct constants")
	}
	if !DoubleValue(math.NaN()).Equal(DoubleValue(math.NaN())) {
		t.Errorf("NaN should equal itself bitwise")
	}
	if got := DoubleValue(0).Join(DoubleValue(negZero)); !got.Equal(Double) {
		t.Errorf("+0.0 ⊔ -0.0 = %s, expected the generic domain", got)
	}
	if got := DoubleValue(0).Meet(DoubleValue(negZero)); !got.Equal(Bottom) {
		t.Errorf("+0.0 ⊓ -0.0 = %s, expected ⊥", got)
	}
}

func TestFloatJoinMeet(t *testing.T) {
	tests := []struct {
		name     string
		got      Value
		expected Value
	}{
		{"const joins into bucket", DoubleZero.Join(DoubleValue(0)), DoubleZero},
		{"bucket join non-zero const", DoubleZero.Join(DoubleValue(1.5)), Double},
		{"bucket meet +0.0", DoubleZero.Meet(DoubleValue(0)), DoubleValue(0)},
		{"bucket meet non-zero", DoubleZero.Meet(DoubleValue(1.5)), Bottom},
		{"const join across families", FloatValue(1).Join(DoubleValue(1)), Top},
		{"generic join across families", Float.Join(Double), Top},
		{"generic meet across families", Float.Meet(Double), Bottom},
		{"generic meet bucket", Double.Meet(DoubleZero), DoubleZero},
	}

	for _, test := range tests {
		if !test.got.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.got, test.expected)
		}
	}
}

func TestFloatNegation(t *testing.T) {
	// Negating the zero bucket excludes exactly both zeroes; negating that
	// restores the bucket.
	notZero := DoubleZero.TryNegate()
	if notZero.Equal(Bottom) {
		t.Fatalf("the zero bucket must have a representable complement")
	}
	if notZero.IsSuperType(DoubleValue(0)) || notZero.IsSuperType(DoubleValue(negZero)) {
		t.Errorf("%s must exclude both zeroes", notZero)
	}
	if !notZero.IsSuperType(DoubleValue(1.5)) || !notZero.IsSuperType(DoubleValue(math.NaN())) {
		t.Errorf("%s must keep every non-zero value, NaN included", notZero)
	}
	if !notZero.TryNegate().Equal(DoubleZero) {
		t.Errorf("double negation should restore the zero bucket")
	}
	if !notZero.Meet(DoubleZero).Equal(Bottom) {
		t.Errorf("the bucket and its negation must meet to ⊥")
	}

	// Negating a constant excludes exactly that bit pattern.
	notOne := DoubleValue(1.5).TryNegate()
	if notOne.IsSuperType(DoubleValue(1.5)) || !notOne.IsSuperType(DoubleValue(0)) {
		t.Errorf("%s should exclude exactly 1.5", notOne)
	}
	if !notOne.TryNegate().Equal(DoubleValue(1.5)) {
		t.Errorf("double negation should restore the constant")
	}

	// The generic domain has no representable complement.
	if !Double.TryNegate().Equal(Bottom) {
		t.Errorf("¬float64 should be ⊥")
	}
}

func TestFloatNotValue(t *testing.T) {
	notZero := DoubleZero.TryNegate()

	// Joining back an excluded constant drops the exclusion.
	if got := notZero.Join(DoubleValue(0)); !got.IsSuperType(DoubleValue(0)) {
		t.Errorf("%s ⊔ 0 = %s should readmit +0.0", notZero, got)
	}
	if got := notZero.Join(DoubleZero); !got.Equal(Double) {
		t.Errorf("%s ⊔ ±0.0 = %s, expected the generic domain", notZero, got)
	}

	// Meeting with the bucket when only one zero is excluded pins the other.
	notPos := DoubleValue(0).TryNegate()
	if got := notPos.Meet(DoubleZero); !got.Equal(DoubleValue(negZero)) {
		t.Errorf("%s ⊓ ±0.0 = %s, expected -0.0", notPos, got)
	}

	// Meeting two exclusion sets merges them.
	merged := notZero.Meet(DoubleValue(1.5).TryNegate())
	for _, v := range []float64{0, negZero, 1.5} {
		if merged.IsSuperType(DoubleValue(v)) {
			t.Errorf("%s should exclude %v", merged, v)
		}
	}
	if !merged.IsSuperType(DoubleValue(2)) {
		t.Errorf("%s should keep unexcluded values", merged)
	}
}
