// Package publication implements the per-component registry of spec.md
// §3/§4.5: published fields (owned and delegated), operations, properties,
// and the reflected requests built over them.
package publication

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/request"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

// Publication holds one component's published fields, operations and
// properties, all addressable by name and iterable in publication order.
type Publication struct {
	owner    identity.Named
	registry *types.Registry

	fieldOrder []string
	fields     map[string]field.Field

	opOrder    []string
	operations map[string]*request.Operation

	propOrder  []string
	properties map[string]*request.Property
}

// New creates an empty publication registry for owner, resolving published
// field types through registry.
func New(owner identity.Named, registry *types.Registry) *Publication {
	return &Publication{
		owner:      owner,
		registry:   registry,
		fields:     map[string]field.Field{},
		operations: map[string]*request.Operation{},
		properties: map[string]*request.Property{},
	}
}

func duplicateNameErr(p *Publication, name string) error {
	return xerrors.New(xerrors.DuplicateName, identity.GetPath(p.owner),
		"A field, operation or property with this name is already published",
		fmt.Sprintf("%q is already published", name), map[string]any{"name": name})
}

func newInvalidFieldType(p *Publication, name, detail string) error {
	return xerrors.New(xerrors.InvalidFieldType, identity.GetPath(p.owner),
		"This field type cannot be published", detail, map[string]any{"field": name})
}

// GetFields returns every published field (owned and delegated) in
// publication order.
func (p *Publication) GetFields() []field.Field {
	out := make([]field.Field, len(p.fieldOrder))
	for i, name := range p.fieldOrder {
		out[i] = p.fields[name]
	}
	return out
}

// GetField resolves a direct (non-dotted) field by name.
func (p *Publication) GetField(name string) (field.Field, bool) {
	f, ok := p.fields[name]
	return f, ok
}

// PublishField registers a pre-constructed field, typically one an
// address-backed model built itself against its own memory. Re-publishing
// the same name fails with DuplicateName.
func (p *Publication) PublishField(f field.Field) error {
	if err := identity.ValidateName(f.Name()); err != nil {
		return err
	}
	if _, exists := p.fields[f.Name()]; exists {
		return duplicateNameErr(p, f.Name())
	}
	if f.TypeUUID() == types.VoidUUID {
		return newInvalidFieldType(p, f.Name(), "Void fields cannot be published")
	}
	if f.TypeUUID() == types.PrimitiveUUID(primitive.String8) {
		return newInvalidFieldType(p, f.Name(), "the bare String8 primitive type cannot be published")
	}
	p.fields[f.Name()] = f
	p.fieldOrder = append(p.fieldOrder, f.Name())
	return nil
}

// PublishFieldByType constructs and publishes an owned field of typeUUID,
// shaping it from the type registry: a simple primitive type yields a
// SimpleField, an array type yields a SimpleArrayField or ArrayField
// depending on its SimpleArray flag, and a structure/class type yields a
// StructureField whose members are built recursively.
func (p *Publication) PublishFieldByType(name, desc string, typeUUID uuid.UUID, view field.ViewKind, state, input, output bool) (field.Field, error) {
	if err := identity.ValidateName(name); err != nil {
		return nil, err
	}
	if _, exists := p.fields[name]; exists {
		return nil, duplicateNameErr(p, name)
	}
	f, err := p.buildField(p.owner, name, desc, typeUUID, view, state, input, output)
	if err != nil {
		return nil, err
	}
	p.fields[name] = f
	p.fieldOrder = append(p.fieldOrder, name)
	return f, nil
}

func (p *Publication) buildField(parent identity.Named, name, desc string, typeUUID uuid.UUID, view field.ViewKind, state, input, output bool) (field.Field, error) {
	if typeUUID == types.VoidUUID {
		return nil, newInvalidFieldType(p, name, "Void fields cannot be published")
	}
	t, err := p.registry.Lookup(typeUUID)
	if err != nil {
		return nil, err
	}

	switch t.Category() {
	case types.CategoryPrimitive:
		if t.PrimitiveKind() == primitive.String8 {
			return nil, newInvalidFieldType(p, name, "the bare String8 primitive type cannot be published")
		}
		return field.NewSimpleField(name, desc, parent, typeUUID, t.PrimitiveKind(), view, state, input, output), nil

	case types.CategoryInteger, types.CategoryFloat, types.CategoryEnumeration, types.CategoryString:
		return field.NewSimpleField(name, desc, parent, typeUUID, t.PrimitiveKind(), view, state, input, output), nil

	case types.CategoryArray:
		at := t.(*types.ArrayType)
		if at.SimpleArray {
			item, err := p.registry.Lookup(at.ItemType)
			if err != nil {
				return nil, err
			}
			return field.NewSimpleArrayField(name, desc, parent, typeUUID, item.PrimitiveKind(), at.Count, view, state, input, output), nil
		}
		arr := field.NewArrayField(name, desc, parent, typeUUID, view, state, input, output, nil)
		items := make([]field.Field, at.Count)
		for i := 0; i < at.Count; i++ {
			item, err := p.buildField(arr, fmt.Sprintf("[%d]", i), "", at.ItemType, view, state, input, output)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		arr.Items = items
		return arr, nil

	case types.CategoryStructure, types.CategoryClass:
		members := structureMembers(t)
		structure := field.NewStructureField(name, desc, parent, typeUUID, view, state, input, output)
		for _, m := range members {
			child, err := p.buildField(structure, m.Name, "", m.Type, view, state, input, output)
			if err != nil {
				return nil, err
			}
			structure.AddChild(child)
		}
		return structure, nil

	default:
		return nil, newInvalidFieldType(p, name, "unrecognized type category")
	}
}

func structureMembers(t types.Type) []types.StructureMember {
	switch st := t.(type) {
	case *types.StructureType:
		return st.Members
	case *types.ClassType:
		return st.Members
	default:
		return nil
	}
}

// GetOperations returns every published operation in publication order.
func (p *Publication) GetOperations() []*request.Operation {
	out := make([]*request.Operation, len(p.opOrder))
	for i, name := range p.opOrder {
		out[i] = p.operations[name]
	}
	return out
}

// GetOperation resolves a published operation by name.
func (p *Publication) GetOperation(name string) (*request.Operation, bool) {
	op, ok := p.operations[name]
	return op, ok
}

// PublishOperation is idempotent on name: a first call constructs and
// registers the operation; a later call with the same name updates its
// description/view and returns the existing handle, so parameters declared
// on it are preserved across re-publication.
func (p *Publication) PublishOperation(name, desc string, view field.ViewKind) *request.Operation {
	if op, exists := p.operations[name]; exists {
		op.Update(desc, view)
		return op
	}
	op := request.NewOperation(name, desc, view)
	p.operations[name] = op
	p.opOrder = append(p.opOrder, name)
	return op
}

// GetProperties returns every published property in publication order.
func (p *Publication) GetProperties() []*request.Property {
	out := make([]*request.Property, len(p.propOrder))
	for i, name := range p.propOrder {
		out[i] = p.properties[name]
	}
	return out
}

// GetProperty resolves a published property by name.
func (p *Publication) GetProperty(name string) (*request.Property, bool) {
	prop, ok := p.properties[name]
	return prop, ok
}

// PublishProperty is idempotent on name, mirroring PublishOperation.
func (p *Publication) PublishProperty(name, desc string, typeUUID uuid.UUID, access request.AccessKind, view field.ViewKind,
	get func() (primitive.AnySimple, error), set func(primitive.AnySimple) error) *request.Property {
	if prop, exists := p.properties[name]; exists {
		prop.Update(desc, view)
		return prop
	}
	prop := request.NewProperty(name, desc, typeUUID, access, view, get, set)
	p.properties[name] = prop
	p.propOrder = append(p.propOrder, name)
	return prop
}

// CreateRequest builds a Request for opName: a direct operation if one by
// that name is published, or a synthesized getter/setter request for a
// "get_"/"set_" prefixed property name. It returns nil if opName resolves to
// neither.
func (p *Publication) CreateRequest(opName string) *request.Request {
	if op, ok := p.operations[opName]; ok {
		return request.NewOperationRequest(opName, op, p.registry)
	}
	if propName, ok := strings.CutPrefix(opName, "get_"); ok {
		if prop, ok := p.properties[propName]; ok {
			return request.NewPropertyGetterRequest(opName, prop.Get)
		}
	}
	if propName, ok := strings.CutPrefix(opName, "set_"); ok {
		if prop, ok := p.properties[propName]; ok {
			kind := primitive.None
			if t, err := p.registry.Lookup(prop.TypeUUID()); err == nil {
				kind = t.PrimitiveKind()
			}
			return request.NewPropertySetterRequest(opName, prop.Set, primitive.ZeroValue(kind))
		}
	}
	return nil
}

// DeleteRequest releases a request created by CreateRequest. Requests hold
// no resources beyond the Go heap, so there is nothing to do beyond letting
// r go out of scope; the method exists for symmetry with CreateRequest.
func (p *Publication) DeleteRequest(r *request.Request) {}

// Unpublish clears the three collections: fields, operations and
// properties. Requests created earlier keep their own reference to their
// operation and are not invalidated.
func (p *Publication) Unpublish() {
	p.fieldOrder = nil
	p.fields = map[string]field.Field{}
	p.opOrder = nil
	p.operations = map[string]*request.Operation{}
	p.propOrder = nil
	p.properties = map[string]*request.Property{}
}
