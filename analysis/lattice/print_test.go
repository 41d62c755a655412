package lattice

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"

	"github.com/absint-dk/dfval/analysis/constraint"
	"github.com/absint-dk/dfval/analysis/rangeset"
)

func TestValueStrings(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	values := []Value{
		Top,
		Bottom,
		Boolean,
		True,
		False,
		Int,
		Long,
		IntValue(42),
		IntRangeClamped(rangeset.Range(0, 10)),
		LongRangeOf(rangeset.Of(
			rangeset.Interval{Low: 0, High: 3},
			rangeset.Interval{Low: 5, High: 5})),
		Float,
		Double,
		FloatZero,
		DoubleZero,
		DoubleValue(2.5),
		DoubleZero.TryNegate(),
		Null,
		ObjectOrNull,
		NotNullObject,
		LocalObject,
		CustomObject(constraint.Unconstrained(),
			NotNull, Unmodifiable, FieldLen, IntValue(3)),
		mustConstantOf(t, "hi"),
		SynthesizedString("gen"),
	}

	var out bytes.Buffer
	for _, v := range values {
		fmt.Fprintln(&out, v)
	}

	g := goldie.New(t)
	g.Assert(t, t.Name(), out.Bytes())
}

func mustConstantOf(t *testing.T, v any) Value {
	t.Helper()
	res, err := ConstantOf(v)
	if err != nil {
		t.Fatalf("ConstantOf(%v): %v", v, err)
	}
	return res
}
