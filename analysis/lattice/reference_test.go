package lattice

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/absint-dk/dfval/analysis/constraint"
	"github.com/absint-dk/dfval/analysis/rangeset"
)

// refTestTypes builds an interface I { M() }, an implementing struct T, and
// an unrelated struct P.
func refTestTypes() (iface, impl, plain types.Type) {
	pkg := types.NewPackage("example.com/p", "p")

	sig := types.NewSignatureType(nil, nil, nil, nil, nil, false)
	it := types.NewInterfaceType(
		[]*types.Func{types.NewFunc(token.NoPos, pkg, "M", sig)}, nil)
	it.Complete()
	iface = types.NewNamed(
		types.NewTypeName(token.NoPos, pkg, "I", nil), it, nil)

	implNamed := types.NewNamed(
		types.NewTypeName(token.NoPos, pkg, "T", nil),
		types.NewStruct(nil, nil), nil)
	recv := types.NewVar(token.NoPos, pkg, "", implNamed)
	implNamed.AddMethod(types.NewFunc(token.NoPos, pkg, "M",
		types.NewSignatureType(recv, nil, nil, nil, nil, false)))
	impl = implNamed

	plain = types.NewNamed(
		types.NewTypeName(token.NoPos, pkg, "P", nil),
		types.NewStruct(nil, nil), nil)
	return
}

func TestNullability(t *testing.T) {
	nullable := CustomObject(constraint.Unconstrained(),
		Nullable, MutabilityUnknown, NoField, nil)

	tests := []struct {
		name     string
		got      Value
		expected Value
	}{
		{"null joins into references as nullable", NotNullObject.Join(Null), nullable},
		{"join is symmetric", Null.Join(NotNullObject), nullable},
		{"unknown reference admits null", ObjectOrNull.Meet(Null), Null},
		{"nullable reference admits null", nullable.Meet(Null), Null},
		{"not-null reference rejects null", NotNullObject.Meet(Null), Bottom},
		{"negating null", Null.TryNegate(), NotNullObject},
		{"negating the bare not-null reference", NotNullObject.TryNegate(), Null},
		{"richer references have no complement", LocalObject.TryNegate(), Bottom},
	}

	for _, test := range tests {
		if !test.got.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.got, test.expected)
		}
	}

	if v, ok := Null.Constant(); !ok || v != nil {
		t.Errorf("Null should extract as the constant nil")
	}
}

func TestReferenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		got      bool
		expected bool
	}{
		{"not-null over local", NotNullObject.IsSuperType(LocalObject), true},
		{"local not over not-null", LocalObject.IsSuperType(NotNullObject), false},
		{"unknown over not-null", ObjectOrNull.IsSuperType(NotNullObject), true},
		{"unknown over null", ObjectOrNull.IsSuperType(Null), true},
		{"not-null not over null", NotNullObject.IsSuperType(Null), false},
		{"top over references", Top.IsSuperType(ObjectOrNull), true},
		{"references not over booleans", ObjectOrNull.IsSuperType(True), false},
	}

	for _, test := range tests {
		if test.got != test.expected {
			t.Errorf("%s: got %v", test.name, test.got)
		}
	}
}

func TestReferenceConstraints(t *testing.T) {
	iface, impl, plain := refTestTypes()

	anyI := TypedObject(iface, Nullable)
	concrete := TypedObject(impl, NotNull)
	other := TypedObject(plain, NotNull)

	narrowed := anyI.Meet(concrete)
	if !narrowed.Equal(concrete) {
		t.Errorf("narrowing an interface bound by a conforming exact type: got %s", narrowed)
	}
	if got := concrete.Meet(other); !got.Equal(Bottom) {
		t.Errorf("unrelated exact types must meet to ⊥, got %s", got)
	}
	if got := other.Meet(Null); !got.Equal(Bottom) {
		t.Errorf("a not-null typed reference must reject null, got %s", got)
	}

	widened := concrete.Join(other)
	ref, ok := widened.(Reference)
	if !ok || !ref.TypeConstraint().IsUnconstrained() {
		t.Errorf("joining unrelated exact types should drop the constraint, got %s", widened)
	}
}

func TestSpecialFields(t *testing.T) {
	withLen := func(v Value) Value {
		return CustomObject(constraint.Unconstrained(),
			NotNull, MutabilityUnknown, FieldLen, v)
	}

	a := withLen(IntValue(3))
	b := withLen(mustIntRange(t, rangeset.Range(0, 10)))

	if !b.IsSuperType(a) || a.IsSuperType(b) {
		t.Errorf("field values must be ordered recursively")
	}

	joined := a.Join(b)
	if !joined.Equal(b) {
		t.Errorf("%s ⊔ %s = %s, expected %s", a, b, joined, b)
	}

	met := b.Meet(a)
	if !met.Equal(a) {
		t.Errorf("%s ⊓ %s = %s, expected %s", b, a, met, a)
	}

	// Contradictory field values empty the whole reference.
	if got := a.Meet(withLen(IntValue(4))); !got.Equal(Bottom) {
		t.Errorf("contradictory field facts should meet to ⊥, got %s", got)
	}

	// Differing tracked fields cannot be merged; the join drops the fact.
	withCap := CustomObject(constraint.Unconstrained(),
		NotNull, MutabilityUnknown, FieldCap, IntValue(5))
	joined = a.Join(withCap)
	if ref, ok := joined.(Reference); !ok || ref.SpecialField() != NoField {
		t.Errorf("joining differing fields should drop the fact, got %s", joined)
	}

	// No element can bind both fields at once, so the meet is empty, in
	// both operand orders.
	if got := a.Meet(withCap); !got.Equal(Bottom) {
		t.Errorf("%s ⊓ %s = %s, expected ⊥", a, withCap, got)
	}
	if got := withCap.Meet(a); !got.Equal(Bottom) {
		t.Errorf("%s ⊓ %s = %s, expected ⊥", withCap, a, got)
	}
}

func TestMutabilityOrder(t *testing.T) {
	unknown := NotNullObject
	mut := CustomObject(constraint.Unconstrained(),
		NotNull, Mutable, NoField, nil)
	immut := CustomObject(constraint.Unconstrained(),
		NotNull, Unmodifiable, NoField, nil)

	// The states form a chain: unknown over mutable over unmodifiable.
	if !unknown.IsSuperType(mut) || !mut.IsSuperType(immut) || !unknown.IsSuperType(immut) {
		t.Errorf("mutability chain broken")
	}
	if immut.IsSuperType(mut) || mut.IsSuperType(unknown) {
		t.Errorf("mutability order must be strict downward")
	}

	// Join and meet follow the chain, and the meet is a lower bound of
	// both operands.
	if got := mut.Join(immut); !got.Equal(mut) {
		t.Errorf("mutable ⊔ unmodifiable = %s, expected the mutable view", got)
	}
	met := mut.Meet(immut)
	if !met.Equal(immut) {
		t.Errorf("mutable ⊓ unmodifiable = %s, expected unmodifiable", met)
	}
	if !mut.IsSuperType(met) || !immut.IsSuperType(met) {
		t.Errorf("%s is not a lower bound of both operands", met)
	}
	if !immut.Meet(mut).Equal(met) {
		t.Errorf("mutability meet must be order-independent")
	}
}

func TestRefConst(t *testing.T) {
	hi, err := ConstantOf("hi")
	if err != nil {
		t.Fatalf("ConstantOf: %v", err)
	}
	if v, ok := hi.Constant(); !ok || v != "hi" {
		t.Errorf("string constant should extract its payload")
	}

	hi2, _ := ConstantOf("hi")
	if !hi.Equal(hi2) || hi.Hash() != hi2.Hash() {
		t.Errorf("equal payloads should produce equal constants")
	}

	bye, _ := ConstantOf("bye")
	joined := hi.Join(bye)
	ref, ok := joined.(Reference)
	if !ok || ref.Nullability() != NotNull || ref.Mutability() != Unmodifiable {
		t.Errorf("distinct constants should widen to a not-null unmodifiable reference, got %s", joined)
	}

	if got := NotNullObject.Meet(hi); !got.Equal(hi) {
		t.Errorf("a compatible reference should narrow to the constant, got %s", got)
	}
	if got := Null.Meet(hi); !got.Equal(Bottom) {
		t.Errorf("null and a constant should meet to ⊥, got %s", got)
	}
	if got := hi.Meet(bye); !got.Equal(Bottom) {
		t.Errorf("distinct constants should meet to ⊥, got %s", got)
	}

	if !hi.TryNegate().Equal(Bottom) {
		t.Errorf("reference constants have no representable complement")
	}

	// The synthesized flag is presentation only.
	synth := SynthesizedString("hi")
	if !synth.Equal(hi) || synth.Hash() != hi.Hash() {
		t.Errorf("the synthesized flag must not affect Equal/Hash")
	}
	if !synth.(RefConst).IsSynthesized() {
		t.Errorf("SynthesizedString should mark its result")
	}
}

func TestTypedObject(t *testing.T) {
	iface, impl, _ := refTestTypes()

	tests := []struct {
		name     string
		got      Value
		expected Value
	}{
		{"no static type", TypedObject(nil, NullabilityUnknown), Top},
		{"invalid type", TypedObject(types.Typ[types.Invalid], NullabilityUnknown), Bottom},
		{"empty result tuple", TypedObject(types.NewTuple(), NullabilityUnknown), Bottom},
		{"bool", TypedObject(types.Typ[types.Bool], NullabilityUnknown), Boolean},
		{"int32", TypedObject(types.Typ[types.Int32], NullabilityUnknown), Int},
		{"int", TypedObject(types.Typ[types.Int], NullabilityUnknown), Long},
		{"int8", TypedObject(types.Typ[types.Int8], NullabilityUnknown),
			IntRangeClamped(rangeset.Range(-128, 127))},
		{"uint16", TypedObject(types.Typ[types.Uint16], NullabilityUnknown),
			IntRangeClamped(rangeset.Range(0, 65535))},
		{"float32", TypedObject(types.Typ[types.Float32], NullabilityUnknown), Float},
		{"float64", TypedObject(types.Typ[types.Float64], NullabilityUnknown), Double},
		{"untyped nil", TypedObject(types.Typ[types.UntypedNil], NullabilityUnknown), Null},
		{"string", TypedObject(types.Typ[types.String], NullabilityUnknown),
			CustomObject(constraint.ExactType(types.Typ[types.String]),
				NotNull, Unmodifiable, NoField, nil)},
		{"empty interface", TypedObject(anyType(), NullabilityUnknown), ObjectOrNull},
		{"interface", TypedObject(iface, Nullable),
			CustomObject(constraint.SubtypeOf(iface),
				Nullable, MutabilityUnknown, NoField, nil)},
		{"concrete", TypedObject(impl, NotNull),
			CustomObject(constraint.ExactType(impl),
				NotNull, MutabilityUnknown, NoField, nil)},
		{"definitely null", TypedObject(impl, DefinitelyNull), Null},
	}

	for _, test := range tests {
		if !test.got.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.got, test.expected)
		}
	}
}

func anyType() types.Type {
	it := types.NewInterfaceType(nil, nil)
	it.Complete()
	return it
}

func TestCustomObjectNullPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("CustomObject with definitely-null nullability should panic")
		}
	}()
	CustomObject(constraint.Unconstrained(),
		DefinitelyNull, MutabilityUnknown, NoField, nil)
}

func TestNewReferenceNullPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewReference with definitely-null nullability should panic")
		}
	}()
	NewReference(constraint.Unconstrained(),
		DefinitelyNull, MutabilityUnknown, NoField, nil, false)
}

func TestConstantOf(t *testing.T) {
	tests := []struct {
		in       any
		expected Value
	}{
		{nil, Null},
		{true, True},
		{false, False},
		{int8(-3), IntValue(-3)},
		{int32(7), IntValue(7)},
		{uint16(9), IntValue(9)},
		{int(42), LongValue(42)},
		{int64(42), LongValue(42)},
		{uint32(1 << 31), LongValue(1 << 31)},
		{float32(1.5), FloatValue(1.5)},
		{2.5, DoubleValue(2.5)},
	}

	for _, test := range tests {
		got, err := ConstantOf(test.in)
		if err != nil {
			t.Errorf("ConstantOf(%v): %v", test.in, err)
		} else if !got.Equal(test.expected) {
			t.Errorf("ConstantOf(%v) = %s, expected %s", test.in, got, test.expected)
		}
	}

	if _, err := ConstantOf(struct{}{}); err == nil {
		t.Errorf("unsupported payload kinds must be rejected")
	}
}

func TestDefaultValue(t *testing.T) {
	_, impl, _ := refTestTypes()
	emptyString, _ := ConstantOf("")

	tests := []struct {
		name     string
		got      Value
		expected Value
	}{
		{"bool", DefaultValue(types.Typ[types.Bool]), False},
		{"int32", DefaultValue(types.Typ[types.Int32]), IntValue(0)},
		{"int", DefaultValue(types.Typ[types.Int]), LongValue(0)},
		{"float32", DefaultValue(types.Typ[types.Float32]), FloatValue(0)},
		{"float64", DefaultValue(types.Typ[types.Float64]), DoubleValue(0)},
		{"string", DefaultValue(types.Typ[types.String]), emptyString},
		{"reference", DefaultValue(impl), Null},
		{"no type", DefaultValue(nil), Null},
	}

	for _, test := range tests {
		if !test.got.Equal(test.expected) {
			t.Errorf("%s: got %s, expected %s", test.name, test.got, test.expected)
		}
	}
}
