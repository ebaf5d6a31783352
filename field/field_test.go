package field_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/primitive"
)

type root struct{ name string }

func (r *root) Name() string             { return r.name }
func (r *root) Parent() identity.Named   { return nil }

func TestSimpleFieldSetValueRangeChecked(t *testing.T) {
	f := field.NewSimpleField("src", "", nil, uuid.New(), primitive.Int8, field.ViewAll, true, false, true)
	if err := f.SetValue(primitive.NewInt32(200)); err == nil {
		t.Fatalf("expected InvalidFieldValue for out-of-range Int8 assignment")
	}
	if err := f.SetValue(primitive.NewInt32(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.GetValue(); got.String() != "42" {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestForcibleFieldDiscardsWritesWhileForced(t *testing.T) {
	simple := field.NewSimpleField("f", "", nil, uuid.New(), primitive.Float64, field.ViewAll, true, false, false)
	forcible := field.NewForcibleField(simple)
	if err := forcible.ForceValue(primitive.NewFloat64(3.25)); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := forcible.SetValue(primitive.NewFloat64(9.0)); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	got, _ := forcible.GetValue().AsFloat64()
	if got != 3.25 {
		t.Fatalf("got %v, want 3.25 (write while forced should be discarded)", got)
	}
}

func TestDataflowConnectAndPush(t *testing.T) {
	// S3 — connect Bool src -> dst, push, expect equal; re-connect fails.
	src := field.NewSimpleField("src", "", nil, uuid.New(), primitive.Bool, field.ViewAll, false, false, true)
	dst := field.NewSimpleField("dst", "", nil, uuid.New(), primitive.Bool, field.ViewAll, false, true, false)

	if err := field.Connect(src, dst); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := src.SetValue(primitive.NewBool(true)); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := field.Push(src); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, _ := dst.GetValue().AsBool()
	if !got {
		t.Fatalf("expected dst to be true after push")
	}

	if err := field.Connect(src, dst); err == nil {
		t.Fatalf("expected FieldAlreadyConnected on re-connect")
	}
}

func TestConnectRejectsNonInputTarget(t *testing.T) {
	src := field.NewSimpleField("src", "", nil, uuid.New(), primitive.Bool, field.ViewAll, false, false, true)
	notInput := field.NewSimpleField("dst", "", nil, uuid.New(), primitive.Bool, field.ViewAll, false, false, false)
	if err := field.Connect(src, notInput); err == nil {
		t.Fatalf("expected InvalidTarget because target is not an input field")
	}
}

func TestPathResolutionRoundTrip(t *testing.T) {
	r := &root{name: "comp"}
	structure := field.NewStructureField("state", "", r, uuid.New(), field.ViewAll, true, false, false)
	child := field.NewSimpleField("x", "", structure, uuid.New(), primitive.Int32, field.ViewAll, true, false, false)
	structure.AddChild(child)

	path := field.Path(child)
	if path != "comp.state.x" {
		t.Fatalf("got path %q, want comp.state.x", path)
	}
	resolved, ok := field.Resolve(structure, "state.x")
	if !ok || resolved != field.Field(child) {
		t.Fatalf("resolve failed for comp.state.x")
	}
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	// S6 — Int32 field + forced Float64 field round-trip through bytes.
	intField := field.NewSimpleField("count", "", nil, uuid.New(), primitive.Int32, field.ViewAll, true, false, false)
	_ = intField.SetValue(primitive.NewInt32(7))

	inner := field.NewSimpleField("gain", "", nil, uuid.New(), primitive.Float64, field.ViewAll, true, false, false)
	forced := field.NewForcibleField(inner)
	_ = forced.ForceValue(primitive.NewFloat64(3.25))

	var buf bytes.Buffer
	if err := field.WriteValue(&buf, intField); err != nil {
		t.Fatalf("write int: %v", err)
	}
	if err := field.WriteValue(&buf, forced); err != nil {
		t.Fatalf("write forced: %v", err)
	}

	_ = intField.SetValue(primitive.NewInt32(999))
	_ = forced.SetValue(primitive.NewFloat64(1.0)) // discarded: still forced

	if err := field.ReadValue(&buf, intField); err != nil {
		t.Fatalf("read int: %v", err)
	}
	if err := field.ReadValue(&buf, forced); err != nil {
		t.Fatalf("read forced: %v", err)
	}

	gotInt, _ := intField.GetValue().AsInt32()
	if gotInt != 7 {
		t.Fatalf("got %d, want 7", gotInt)
	}
	if !forced.Forced() {
		t.Fatalf("expected field to still be forced after restore")
	}
	gotFloat, _ := forced.GetValue().AsFloat64()
	if gotFloat != 3.25 {
		t.Fatalf("got %v, want 3.25", gotFloat)
	}
}
