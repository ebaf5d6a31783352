package request

import (
	"fmt"

	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

// Request binds an operation (or a property getter/setter) to an ordered
// list of parameter slots and dispatches the call (spec.md §3 "Requests").
type Request struct {
	opName string
	op     *Operation
	values []primitive.AnySimple // one per declared parameter, in order
	result primitive.AnySimple
	hasRet bool

	// propertyGet/propertySet are set instead of op when this request was
	// created from a "get_"/"set_" property name.
	propertyGet func() (primitive.AnySimple, error)
	propertySet func(primitive.AnySimple) error
}

// NewOperationRequest binds a fresh request to op, with every parameter
// slot initialised to the zero value of its declared type, resolved
// through reg.
func NewOperationRequest(opName string, op *Operation, reg *types.Registry) *Request {
	values := make([]primitive.AnySimple, len(op.params))
	for i, p := range op.params {
		kind := primitive.None
		if t, err := reg.Lookup(p.TypeUUID); err == nil {
			kind = t.PrimitiveKind()
		}
		values[i] = primitive.ZeroValue(kind)
	}
	return &Request{opName: opName, op: op, values: values}
}

// NewPropertyGetterRequest binds a request to a property's getter.
func NewPropertyGetterRequest(opName string, get func() (primitive.AnySimple, error)) *Request {
	return &Request{opName: opName, propertyGet: get}
}

// NewPropertySetterRequest binds a request to a property's setter; the
// request carries exactly one parameter slot, "value", seeded with zero.
func NewPropertySetterRequest(opName string, set func(primitive.AnySimple) error, zero primitive.AnySimple) *Request {
	return &Request{opName: opName, propertySet: set, values: []primitive.AnySimple{zero}}
}

// OperationName returns the name this request was created with ("get_x",
// "set_x", or a plain operation name).
func (r *Request) OperationName() string { return r.opName }

// ParameterCount returns the number of parameter slots.
func (r *Request) ParameterCount() int { return len(r.values) }

func (r *Request) paramIndex(name string) (int, bool) {
	if r.op == nil {
		return -1, false
	}
	for i, p := range r.op.params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

func invalidIndex(r *Request, i int) error {
	return xerrors.New(xerrors.InvalidParameterIndex, r.opName,
		"Parameter index is out of range", fmt.Sprintf("index %d out of range [0,%d)", i, len(r.values)),
		map[string]any{"index": i, "count": len(r.values)})
}

// SetParameterByIndex assigns the i'th parameter slot. It reports
// InvalidParameterIndex if out of range. A v whose kind differs from the
// declared parameter kind is converted with AssignTo; InvalidParameterValue
// is reported when that conversion fails.
func (r *Request) SetParameterByIndex(i int, v primitive.AnySimple) error {
	if i < 0 || i >= len(r.values) {
		return invalidIndex(r, i)
	}
	if r.op != nil {
		expectedKind := r.values[i].Kind()
		if expectedKind != primitive.None && v.Kind() != expectedKind {
			converted, err := v.AssignTo(expectedKind)
			if err != nil {
				return xerrors.New(xerrors.InvalidParameterValue, r.opName,
					"Parameter value has an incompatible kind", err.Error(),
					map[string]any{"index": i})
			}
			v = converted
		}
	}
	r.values[i] = v
	return nil
}

// SetParameterByName assigns a parameter by its declared name.
func (r *Request) SetParameterByName(name string, v primitive.AnySimple) error {
	i, ok := r.paramIndex(name)
	if !ok {
		return xerrors.New(xerrors.InvalidParameterIndex, r.opName,
			"No such parameter", fmt.Sprintf("parameter %q is not declared on %q", name, r.opName),
			map[string]any{"name": name})
	}
	return r.SetParameterByIndex(i, v)
}

// GetParameterByIndex reads back the i'th parameter slot.
func (r *Request) GetParameterByIndex(i int) (primitive.AnySimple, error) {
	if i < 0 || i >= len(r.values) {
		return primitive.AnySimple{}, invalidIndex(r, i)
	}
	return r.values[i], nil
}

// GetParameterByName reads back a parameter by its declared name.
func (r *Request) GetParameterByName(name string) (primitive.AnySimple, error) {
	i, ok := r.paramIndex(name)
	if !ok {
		return primitive.AnySimple{}, xerrors.New(xerrors.InvalidParameterIndex, r.opName,
			"No such parameter", fmt.Sprintf("parameter %q is not declared on %q", name, r.opName),
			map[string]any{"name": name})
	}
	return r.GetParameterByIndex(i)
}

// GetReturnValue reads the result of a non-void operation. Calling it on a
// void operation (or before Invoke) reports VoidOperation.
func (r *Request) GetReturnValue() (primitive.AnySimple, error) {
	if !r.hasRet {
		return primitive.AnySimple{}, xerrors.New(xerrors.VoidOperation, r.opName,
			"Operation has no return value", fmt.Sprintf("%q is a void operation", r.opName), nil)
	}
	return r.result, nil
}

// Invoke dispatches the bound operation or property accessor.
func (r *Request) Invoke() error {
	switch {
	case r.propertyGet != nil:
		v, err := r.propertyGet()
		if err != nil {
			return err
		}
		r.result = v
		r.hasRet = true
		return nil
	case r.propertySet != nil:
		if len(r.values) != 1 {
			return xerrors.New(xerrors.InvalidParameterCount, r.opName,
				"Property setters take exactly one parameter", "missing value parameter", nil)
		}
		return r.propertySet(r.values[0])
	case r.op != nil:
		outs, ret, err := r.op.handler(append([]primitive.AnySimple(nil), r.values...))
		if err != nil {
			return err
		}
		oi := 0
		for i, p := range r.op.params {
			if p.Direction == DirOut || p.Direction == DirInOut {
				if oi < len(outs) {
					r.values[i] = outs[oi]
					oi++
				}
			}
		}
		if !r.op.IsVoid() {
			r.result = ret
			r.hasRet = true
		}
		return nil
	default:
		return xerrors.New(xerrors.InvalidOperationName, r.opName,
			"Request is not bound to an operation or property", "no handler", nil)
	}
}
