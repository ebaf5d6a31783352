package request_test

import (
	"testing"

	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/request"
	"github.com/sarchlab/smp/types"
)

func newRegistry() *types.Registry { return types.NewRegistry() }

func TestInvokeOperationWithParametersAndReturn(t *testing.T) {
	reg := newRegistry()
	op := request.NewOperation("add", "adds two integers", field.ViewAll)
	op.AddParameter(request.ParamDecl{Name: "a", TypeUUID: types.PrimitiveUUID(primitive.Int32), Direction: request.DirIn})
	op.AddParameter(request.ParamDecl{Name: "b", TypeUUID: types.PrimitiveUUID(primitive.Int32), Direction: request.DirIn})
	op.SetReturnType(types.PrimitiveUUID(primitive.Int32))
	op.SetHandler(func(args []primitive.AnySimple) ([]primitive.AnySimple, primitive.AnySimple, error) {
		a, _ := args[0].AsInt32()
		b, _ := args[1].AsInt32()
		return nil, primitive.NewInt32(a + b), nil
	})

	req := request.NewOperationRequest("add", op, reg)
	if err := req.SetParameterByName("a", primitive.NewInt32(3)); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := req.SetParameterByIndex(1, primitive.NewInt32(4)); err != nil {
		t.Fatalf("set b: %v", err)
	}
	if err := req.Invoke(); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	ret, err := req.GetReturnValue()
	if err != nil {
		t.Fatalf("return value: %v", err)
	}
	got, _ := ret.AsInt32()
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestSetParameterByIndexOutOfRangeFails(t *testing.T) {
	reg := newRegistry()
	op := request.NewOperation("noop", "", field.ViewAll)
	op.SetHandler(func(args []primitive.AnySimple) ([]primitive.AnySimple, primitive.AnySimple, error) {
		return nil, primitive.AnySimple{}, nil
	})
	req := request.NewOperationRequest("noop", op, reg)
	if err := req.SetParameterByIndex(0, primitive.NewInt32(1)); err == nil {
		t.Fatalf("expected InvalidParameterIndex for an operation with no parameters")
	}
}

func TestGetReturnValueOfVoidOperationFails(t *testing.T) {
	reg := newRegistry()
	op := request.NewOperation("log", "", field.ViewAll)
	op.SetHandler(func(args []primitive.AnySimple) ([]primitive.AnySimple, primitive.AnySimple, error) {
		return nil, primitive.AnySimple{}, nil
	})
	req := request.NewOperationRequest("log", op, reg)
	if err := req.Invoke(); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if _, err := req.GetReturnValue(); err == nil {
		t.Fatalf("expected VoidOperation for a void operation's return value")
	}
}

func TestPropertyGetterAndSetterRequests(t *testing.T) {
	value := primitive.NewFloat64(1.5)
	getReq := request.NewPropertyGetterRequest("get_gain", func() (primitive.AnySimple, error) {
		return value, nil
	})
	if err := getReq.Invoke(); err != nil {
		t.Fatalf("invoke getter: %v", err)
	}
	got, err := getReq.GetReturnValue()
	if err != nil {
		t.Fatalf("return value: %v", err)
	}
	if f, _ := got.AsFloat64(); f != 1.5 {
		t.Fatalf("got %v, want 1.5", f)
	}

	setReq := request.NewPropertySetterRequest("set_gain", func(v primitive.AnySimple) error {
		value = v
		return nil
	}, primitive.NewFloat64(0))
	if err := setReq.SetParameterByIndex(0, primitive.NewFloat64(2.5)); err != nil {
		t.Fatalf("set parameter: %v", err)
	}
	if err := setReq.Invoke(); err != nil {
		t.Fatalf("invoke setter: %v", err)
	}
	if f, _ := value.AsFloat64(); f != 2.5 {
		t.Fatalf("got %v, want 2.5", f)
	}
}
