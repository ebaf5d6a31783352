package types_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := types.NewRegistry()
	for _, k := range []primitive.Kind{primitive.Bool, primitive.Int32, primitive.Float64, primitive.String8} {
		id := types.PrimitiveUUID(k)
		got, err := r.Lookup(id)
		if err != nil {
			t.Fatalf("lookup %v: %v", k, err)
		}
		if got.PrimitiveKind() != k {
			t.Fatalf("got %v, want %v", got.PrimitiveKind(), k)
		}
	}
	if _, err := r.Lookup(types.SimulatorStateKindUUID); err != nil {
		t.Fatalf("SimulatorStateKind should be pre-registered: %v", err)
	}
}

func TestRegisterEnumDuplicateLiteral(t *testing.T) {
	// S2 — enum with unique literal values.
	r := types.NewRegistry()
	id := uuid.New()
	_, err := r.RegisterEnumeration(id, "E", "test enum",
		types.EnumLiteral{Name: "L1", Value: 0},
		types.EnumLiteral{Name: "L2", Value: 0},
	)
	if err == nil {
		t.Fatalf("expected DuplicateLiteral")
	}
	exc := err.(*xerrors.Exception)
	if exc.Kind != xerrors.DuplicateLiteral {
		t.Fatalf("got %v, want DuplicateLiteral", exc.Kind)
	}
}

func TestRegisterDuplicateUUID(t *testing.T) {
	r := types.NewRegistry()
	id := uuid.New()
	if _, err := r.RegisterString(id, "S1", "", 10); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, err := r.RegisterString(id, "S2", "", 10); err == nil {
		t.Fatalf("expected TypeAlreadyRegistered")
	} else if err.(*xerrors.Exception).Kind != xerrors.TypeAlreadyRegistered {
		t.Fatalf("got %v", err)
	}
}

func TestRegisterIntegerRequiresIntegerPrimitive(t *testing.T) {
	r := types.NewRegistry()
	_, err := r.RegisterInteger(uuid.New(), "Bad", "", primitive.Float64, 0, 10)
	if err == nil {
		t.Fatalf("expected InvalidPrimitiveType")
	}
	if err.(*xerrors.Exception).Kind != xerrors.InvalidPrimitiveType {
		t.Fatalf("got %v", err)
	}
}

func TestRegisterNestedStructure(t *testing.T) {
	r := types.NewRegistry()
	innerID := uuid.New()
	inner, err := r.RegisterStructure(innerID, "Inner", "", types.StructureMember{
		Name: "x", Type: types.PrimitiveUUID(primitive.Int32),
	})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	outerID := uuid.New()
	outer, err := r.RegisterStructure(outerID, "Outer", "", types.StructureMember{
		Name: "inner", Type: inner.UUID(),
	})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(outer.Members) != 1 || outer.Members[0].Type != innerID {
		t.Fatalf("nested structure member not preserved")
	}
}
