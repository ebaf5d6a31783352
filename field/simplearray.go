package field

import (
	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/xerrors"
)

// SimpleArrayField is a fixed-length array of a simple primitive kind,
// stored contiguously (no per-item Field objects).
type SimpleArrayField struct {
	base
	kind     primitive.Kind
	values   []primitive.AnySimple
	accessor []Accessor // non-nil when address-backed, one per element
}

// NewSimpleArrayField constructs an owned simple-array field of count
// elements of kind, zero-initialised.
func NewSimpleArrayField(name, desc string, parent identity.Named, typeUUID uuid.UUID, kind primitive.Kind, count int, view ViewKind, state, input, output bool) *SimpleArrayField {
	values := make([]primitive.AnySimple, count)
	for i := range values {
		values[i] = zeroValue(kind)
	}
	return &SimpleArrayField{
		base:   newBase(name, desc, parent, typeUUID, view, state, input, output),
		kind:   kind,
		values: values,
	}
}

// NewAddressBackedSimpleArrayField constructs an array field whose elements
// are each backed by a model-supplied accessor.
func NewAddressBackedSimpleArrayField(name, desc string, parent identity.Named, typeUUID uuid.UUID, kind primitive.Kind, view ViewKind, state, input, output bool, accessors []Accessor) *SimpleArrayField {
	return &SimpleArrayField{
		base:     newBase(name, desc, parent, typeUUID, view, state, input, output),
		kind:     kind,
		accessor: accessors,
	}
}

// Kind returns the element kind.
func (f *SimpleArrayField) Kind() primitive.Kind { return f.kind }

// Count returns the fixed element count. Array sizes never change after
// publication; resizing attempts are a contract violation.
func (f *SimpleArrayField) Count() int {
	if f.accessor != nil {
		return len(f.accessor)
	}
	return len(f.values)
}

func (f *SimpleArrayField) indexError(i int) error {
	return xerrors.New(xerrors.InvalidArrayIndex, identity.GetPath(f),
		"Array index is out of bounds", "index out of range", map[string]any{"index": i, "size": f.Count()})
}

// GetValueAt returns the i'th element's value.
func (f *SimpleArrayField) GetValueAt(i int) (primitive.AnySimple, error) {
	if i < 0 || i >= f.Count() {
		return primitive.AnySimple{}, f.indexError(i)
	}
	if f.accessor != nil {
		return f.accessor[i].Retrieve(), nil
	}
	return f.values[i], nil
}

// SetValueAt range-checks and assigns the i'th element.
func (f *SimpleArrayField) SetValueAt(i int, v primitive.AnySimple) error {
	if i < 0 || i >= f.Count() {
		return f.indexError(i)
	}
	converted, err := v.AssignTo(f.kind)
	if err != nil {
		return newInvalidFieldValue(f, err.Error())
	}
	if f.accessor != nil {
		f.accessor[i].Push(converted)
		return nil
	}
	f.values[i] = converted
	return nil
}
