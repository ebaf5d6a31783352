package persist_test

import (
	"bytes"
	"testing"

	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/persist"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/types"
)

type identityStub struct{ name string }

func (o *identityStub) Name() string           { return o.name }
func (o *identityStub) Parent() identity.Named { return nil }

type leafComponent struct {
	name string
	pub  *fakePublication
	cts  []persist.Container
}

func (c *leafComponent) Name() string                     { return c.name }
func (c *leafComponent) Publication() persist.Publication { return c.pub }
func (c *leafComponent) Containers() []persist.Container  { return c.cts }

type fakePublication struct{ fields []field.Field }

func (p *fakePublication) GetFields() []field.Field { return p.fields }

type fakeContainer struct {
	name string
	kids []persist.Component
}

func (c *fakeContainer) Name() string                     { return c.name }
func (c *fakeContainer) Components() []persist.Component { return c.kids }

func TestStoreRestoreRoundTripsFieldValues(t *testing.T) {
	owner := &identityStub{name: "child"}
	f := field.NewSimpleField("count", "", owner, types.PrimitiveUUID(primitive.Int32), primitive.Int32, field.ViewAll, true, false, false)
	if err := f.SetValue(primitive.NewInt32(42)); err != nil {
		t.Fatalf("setvalue: %v", err)
	}

	child := &leafComponent{name: "child", pub: &fakePublication{fields: []field.Field{f}}}
	root := &leafComponent{name: "root", pub: &fakePublication{}, cts: []persist.Container{
		&fakeContainer{name: "children", kids: []persist.Component{child}},
	}}

	var buf bytes.Buffer
	if err := persist.Store(&buf, root); err != nil {
		t.Fatalf("store: %v", err)
	}

	if err := f.SetValue(primitive.NewInt32(0)); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := persist.Restore(&buf, root); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := f.GetValue().AsInt32()
	if got != 42 {
		t.Fatalf("got %d after restore, want 42", got)
	}
}

func TestRestoreRejectsMismatchedComponentName(t *testing.T) {
	a := &leafComponent{name: "a", pub: &fakePublication{}}
	b := &leafComponent{name: "b", pub: &fakePublication{}}

	var buf bytes.Buffer
	if err := persist.Store(&buf, a); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := persist.Restore(&buf, b); err == nil {
		t.Fatalf("expected CannotRestore for a mismatched component name")
	}
}
