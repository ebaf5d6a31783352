package field

import (
	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/primitive"
)

// SimpleField holds (or address-backs) a single AnySimple value of a fixed
// primitive kind.
type SimpleField struct {
	base
	kind     primitive.Kind
	accessor Accessor
}

// NewSimpleField constructs an owned simple field initialised to the zero
// value of kind. It does not check typeUUID: rejecting the Void type and the
// bare String8 primitive type is left to the caller (Publication), since
// this constructor has no access to the type registry.
func NewSimpleField(name, desc string, parent identity.Named, typeUUID uuid.UUID, kind primitive.Kind, view ViewKind, state, input, output bool) *SimpleField {
	return &SimpleField{
		base:     newBase(name, desc, parent, typeUUID, view, state, input, output),
		kind:     kind,
		accessor: &valueAccessor{v: zeroValue(kind)},
	}
}

// NewAddressBackedSimpleField constructs a simple field whose storage is
// delegated to accessor, which the owning model supplies (its Retrieve/Push
// read and write the model's own memory).
func NewAddressBackedSimpleField(name, desc string, parent identity.Named, typeUUID uuid.UUID, kind primitive.Kind, view ViewKind, state, input, output bool, accessor Accessor) *SimpleField {
	return &SimpleField{
		base:     newBase(name, desc, parent, typeUUID, view, state, input, output),
		kind:     kind,
		accessor: accessor,
	}
}

func zeroValue(kind primitive.Kind) primitive.AnySimple { return primitive.ZeroValue(kind) }

// Kind returns the field's fixed primitive kind.
func (f *SimpleField) Kind() primitive.Kind { return f.kind }

// GetValue returns the field's current value.
func (f *SimpleField) GetValue() primitive.AnySimple { return f.accessor.Retrieve() }

// SetValue assigns v, range-checking/converting it to f.Kind(). It reports
// InvalidFieldValue on a kind mismatch or an out-of-range conversion and
// leaves the field unchanged.
func (f *SimpleField) SetValue(v primitive.AnySimple) error {
	converted, err := v.AssignTo(f.kind)
	if err != nil {
		return newInvalidFieldValue(f, err.Error())
	}
	f.accessor.Push(converted)
	return nil
}

// forceGuardedSetValue is shared by ForcibleField: writes are discarded,
// not erroring, while forced (spec.md §9 open question (a)).
func (f *SimpleField) forceGuardedSetValue(v primitive.AnySimple, forced bool) error {
	if forced {
		return nil
	}
	return f.SetValue(v)
}
