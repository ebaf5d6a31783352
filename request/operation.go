// Package request implements the reflected invocation layer of spec.md §3/
// §4.5: operations, properties, parameter slots and the Request objects
// that bind and dispatch them.
package request

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

// Direction tags a parameter's data-flow direction.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirInOut
	DirReturn
)

// ParamDecl declares one operation parameter: its name, its type, and the
// direction in which it carries data.
type ParamDecl struct {
	Name      string
	TypeUUID  uuid.UUID
	Direction Direction
}

// Handler is the model-supplied implementation of an operation. args holds
// the current value of every declared parameter slot (in, out and inout) in
// declaration order; it returns the updated out/inout values (by position, matching
// only the out/inout parameters) plus the return value (ignored for void
// operations).
type Handler func(args []primitive.AnySimple) (outs []primitive.AnySimple, ret primitive.AnySimple, err error)

// Operation is a published, reflectively invocable operation.
type Operation struct {
	name       string
	desc       string
	view       field.ViewKind
	params     []ParamDecl
	returnType uuid.UUID // types.VoidUUID for a void operation
	handler    Handler
}

// NewOperation constructs an operation with no parameters yet; declare them
// with AddParameter, then set the handler with SetHandler.
func NewOperation(name, desc string, view field.ViewKind) *Operation {
	return &Operation{name: name, desc: desc, view: view, returnType: types.VoidUUID}
}

func (o *Operation) Name() string             { return o.name }
func (o *Operation) Description() string      { return o.desc }
func (o *Operation) View() field.ViewKind      { return o.view }
func (o *Operation) Parameters() []ParamDecl   { return o.params }
func (o *Operation) ReturnType() uuid.UUID     { return o.returnType }
func (o *Operation) IsVoid() bool              { return o.returnType == types.VoidUUID }

// AddParameter declares one more parameter, in call order.
func (o *Operation) AddParameter(p ParamDecl) *Operation {
	o.params = append(o.params, p)
	return o
}

// SetReturnType declares a non-void return type.
func (o *Operation) SetReturnType(id uuid.UUID) *Operation {
	o.returnType = id
	return o
}

// SetHandler wires the Go implementation invoked on Request.Invoke.
func (o *Operation) SetHandler(h Handler) *Operation {
	o.handler = h
	return o
}

// Update republishing with a new description/view, matching spec.md
// §4.5's "re-publishing updates description and view" idempotence rule.
func (o *Operation) Update(desc string, view field.ViewKind) {
	o.desc = desc
	o.view = view
}

// AccessKind mirrors the standard AccessKind enum for properties.
type AccessKind int

const (
	AccessReadWrite AccessKind = iota
	AccessReadOnly
	AccessWriteOnly
)

// Property is a published, reflectively gettable/settable value exposed as
// a pair of synthesized get_/set_ operations.
type Property struct {
	name     string
	desc     string
	typeUUID uuid.UUID
	access   AccessKind
	view     field.ViewKind
	get      func() (primitive.AnySimple, error)
	set      func(primitive.AnySimple) error
}

// NewProperty constructs a property bound to get/set callbacks (set may be
// nil for AccessReadOnly, get may be nil for AccessWriteOnly).
func NewProperty(name, desc string, typeUUID uuid.UUID, access AccessKind, view field.ViewKind,
	get func() (primitive.AnySimple, error), set func(primitive.AnySimple) error) *Property {
	return &Property{name: name, desc: desc, typeUUID: typeUUID, access: access, view: view, get: get, set: set}
}

func (p *Property) Name() string         { return p.name }
func (p *Property) Description() string  { return p.desc }
func (p *Property) TypeUUID() uuid.UUID  { return p.typeUUID }
func (p *Property) Access() AccessKind   { return p.access }
func (p *Property) View() field.ViewKind { return p.view }

// Update republishes with a new description/view.
func (p *Property) Update(desc string, view field.ViewKind) {
	p.desc = desc
	p.view = view
}

// Get invokes the property's getter. It fails with InvalidOperationName if
// the property is write-only.
func (p *Property) Get() (primitive.AnySimple, error) {
	if p.get == nil {
		return primitive.AnySimple{}, xerrors.New(xerrors.InvalidOperationName, p.name,
			"Property has no getter", fmt.Sprintf("%q is write-only", p.name), nil)
	}
	return p.get()
}

// Set invokes the property's setter. It fails with InvalidOperationName if
// the property is read-only.
func (p *Property) Set(v primitive.AnySimple) error {
	if p.set == nil {
		return xerrors.New(xerrors.InvalidOperationName, p.name,
			"Property has no setter", fmt.Sprintf("%q is read-only", p.name), nil)
	}
	return p.set(v)
}
