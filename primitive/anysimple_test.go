package primitive_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/xerrors"
)

func TestNewIntRangeCheck(t *testing.T) {
	// S1 — AnySimple{PTK_Int8, 200} is out of range.
	if _, err := primitive.NewInt(primitive.Int8, 200); err == nil {
		t.Fatalf("expected InvalidAnyType for 200 in Int8, got nil")
	} else {
		var exc *xerrors.Exception
		if !asException(err, &exc) || exc.Kind != xerrors.InvalidAnyType {
			t.Fatalf("expected InvalidAnyType, got %v", err)
		}
	}

	v, err := primitive.NewInt(primitive.Int8, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.AsInt8()
	if got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestRoundTripAllKinds(t *testing.T) {
	// invariant 2: construct then extract yields the same value.
	cases := []primitive.AnySimple{
		primitive.NewBool(true),
		primitive.NewChar8('a'),
		primitive.NewInt32(-42),
		primitive.NewUInt64(18446744073709551615),
		primitive.NewFloat64(3.25),
		primitive.NewString8("hello"),
	}
	for _, c := range cases {
		if c.String() == "" && c.Kind() != primitive.None {
			t.Fatalf("unexpected empty rendering for %v", c.Kind())
		}
	}
	if v, ok := cases[0].AsBool(); !ok || v != true {
		t.Fatalf("Bool round trip: got %v, %v", v, ok)
	}
	if v, ok := cases[1].AsChar8(); !ok || v != 'a' {
		t.Fatalf("Char8 round trip: got %v, %v", v, ok)
	}
	if v, ok := cases[2].AsInt32(); !ok || v != -42 {
		t.Fatalf("Int32 round trip: got %v, %v", v, ok)
	}
	if v, ok := cases[3].AsUInt64(); !ok || v != 18446744073709551615 {
		t.Fatalf("UInt64 round trip: got %v, %v", v, ok)
	}
	if v, ok := cases[4].AsFloat64(); !ok || v != 3.25 {
		t.Fatalf("Float64 round trip: got %v, %v", v, ok)
	}
	if v, ok := cases[5].AsString(); !ok || v != "hello" {
		t.Fatalf("String8 round trip: got %v, %v", v, ok)
	}
}

func TestAssignToMismatchedKind(t *testing.T) {
	a := primitive.NewBool(true)
	if _, err := a.AssignTo(primitive.Int32); err == nil {
		t.Fatalf("expected InvalidAnyType assigning Bool to Int32")
	}
}

func TestEqualNeverThrows(t *testing.T) {
	a := primitive.NewInt32(1)
	b := primitive.NewString8("1")
	if a.Equal(b) {
		t.Fatalf("expected no conversion between Int32 and String8")
	}
}

func TestEqualFloatEpsilon(t *testing.T) {
	a := primitive.NewFloat64(1.0000000001)
	b := primitive.NewFloat64(1.0000000002)
	if !a.Equal(b) {
		t.Fatalf("expected near-equal floats to compare equal")
	}
}

func TestIntegerWideningEquality(t *testing.T) {
	a := primitive.NewInt32(5)
	b := primitive.NewInt64(5)
	if !a.Equal(b) {
		t.Fatalf("expected Int32(5) == Int64(5) after safe conversion")
	}
	if diff := cmp.Diff(a.Kind(), primitive.Int32); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func asException(err error, out **xerrors.Exception) bool {
	exc, ok := err.(*xerrors.Exception)
	if ok {
		*out = exc
	}
	return ok
}
