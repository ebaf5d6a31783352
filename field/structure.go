package field

import (
	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
)

// StructureField is a composite field whose named children are themselves
// Fields, possibly nested structures or arrays.
type StructureField struct {
	base
	Children []Field
}

// NewStructureField constructs a structure field with no children. The
// caller then constructs each child with the returned field as its parent
// and attaches it with AddChild.
func NewStructureField(name, desc string, parent identity.Named, typeUUID uuid.UUID, view ViewKind, state, input, output bool) *StructureField {
	return &StructureField{base: newBase(name, desc, parent, typeUUID, view, state, input, output)}
}

// AddChild appends a pre-constructed child field (its parent must already
// reference this structure field).
func (f *StructureField) AddChild(child Field) { f.Children = append(f.Children, child) }

// GetChild resolves a direct (non-dotted) child by name.
func (f *StructureField) GetChild(name string) (Field, bool) {
	for _, c := range f.Children {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// ArrayField is a fixed-length array whose elements are themselves
// (possibly composite) Fields, as opposed to SimpleArrayField's packed
// primitive storage.
type ArrayField struct {
	base
	Items []Field
}

// NewArrayField constructs a structured array field; items are supplied
// already constructed with this field as their parent.
func NewArrayField(name, desc string, parent identity.Named, typeUUID uuid.UUID, view ViewKind, state, input, output bool, items []Field) *ArrayField {
	return &ArrayField{base: newBase(name, desc, parent, typeUUID, view, state, input, output), Items: items}
}

// Count returns the fixed element count.
func (f *ArrayField) Count() int { return len(f.Items) }
