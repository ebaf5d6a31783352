// Package xerrors implements the exception taxonomy of spec.md §4.7 as
// typed Go errors carrying structured, kind-specific accessors.
package xerrors

import "fmt"

// Kind names one of the ~40 exception kinds of the taxonomy.
type Kind string

const (
	InvalidObjectName Kind = "InvalidObjectName"
	DuplicateName Kind = "DuplicateName"
	ContainerFull Kind = "ContainerFull"
	ReferenceFull Kind = "ReferenceFull"
	NotContained Kind = "NotContained"
	CannotDelete Kind = "CannotDelete"
	NotReferenced Kind = "NotReferenced"
	CannotRemove Kind = "CannotRemove"
	InvalidComponentState Kind = "InvalidComponentState"
	InvalidObjectType Kind = "InvalidObjectType"
	InvalidEventSink Kind = "InvalidEventSink"
	EventSinkAlreadySubscribed Kind = "EventSinkAlreadySubscribed"
	EventSinkNotSubscribed Kind = "EventSinkNotSubscribed"
	InvalidOperationName Kind = "InvalidOperationName"
	InvalidParameterCount Kind = "InvalidParameterCount"
	InvalidParameterType Kind = "InvalidParameterType"
	InvalidParameterIndex Kind = "InvalidParameterIndex"
	InvalidParameterValue Kind = "InvalidParameterValue"
	InvalidReturnValue Kind = "InvalidReturnValue"
	VoidOperation Kind = "VoidOperation"
	InvalidArrayIndex Kind = "InvalidArrayIndex"
	InvalidArraySize Kind = "InvalidArraySize"
	InvalidArrayValue Kind = "InvalidArrayValue"
	InvalidFieldValue Kind = "InvalidFieldValue"
	InvalidFieldName Kind = "InvalidFieldName"
	InvalidFieldType Kind = "InvalidFieldType"
	InvalidEventId Kind = "InvalidEventId"
	InvalidEventName Kind = "InvalidEventName"
	InvalidEventTime Kind = "InvalidEventTime"
	InvalidCycleTime Kind = "InvalidCycleTime"
	EntryPointAlreadySubscribed Kind = "EntryPointAlreadySubscribed"
	EntryPointNotSubscribed Kind = "EntryPointNotSubscribed"
	TypeNotRegistered Kind = "TypeNotRegistered"
	TypeAlreadyRegistered Kind = "TypeAlreadyRegistered"
	InvalidPrimitiveType Kind = "InvalidPrimitiveType"
	DuplicateLiteral Kind = "DuplicateLiteral"
	DuplicateUuid Kind = "DuplicateUuid"
	LibraryNotFound Kind = "LibraryNotFound"
	InvalidLibrary Kind = "InvalidLibrary"
	InvalidSimulationTime Kind = "InvalidSimulationTime"
	InvalidSimulatorState Kind = "InvalidSimulatorState"
	FieldAlreadyConnected Kind = "FieldAlreadyConnected"
	InvalidTarget Kind = "InvalidTarget"
	CannotStore Kind = "CannotStore"
	CannotRestore Kind = "CannotRestore"
	InvalidAnyType Kind = "InvalidAnyType"
)

// Exception is the single concrete error type for every kind in the
// taxonomy. Construct one with New and inspect it with Is/As the usual Go
// way, or pull kind-specific fields out of Fields.
type Exception struct {
	Kind        Kind
	Sender      string
	Name        string
	Description string
	Message     string

	// Fields carries kind-specific structured data, e.g. "expected"/
	// "invalid" for InvalidAnyType, "current"/"provided"/"max" for
	// InvalidSimulationTime. The typed per-kind accessors below name the
	// keys they read.
	Fields map[string]any
}

// New constructs an Exception. sender is the path of the object raising it
// ("<unknown>" if none), description is a short human summary, message is
// the detailed, kind-specific explanation, and fields carries the
// structured accessors listed in spec.md §4.7 for that kind.
func New(kind Kind, sender, description, message string, fields map[string]any) *Exception {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Exception{
		Kind:        kind,
		Sender:      sender,
		Name:        string(kind),
		Description: description,
		Message:     message,
		Fields:      fields,
	}
}

func (e *Exception) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Name, e.Description, e.Message)
}

// GetSender returns the path of the object that raised the exception.
func (e *Exception) GetSender() string { return e.Sender }

// GetName returns the exception kind's name.
func (e *Exception) GetName() string { return e.Name }

// GetDescription returns the short human-readable summary.
func (e *Exception) GetDescription() string { return e.Description }

// GetMessage returns the detailed message.
func (e *Exception) GetMessage() string { return e.Message }

// Field fetches a kind-specific structured field by name.
func (e *Exception) Field(name string) (any, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// InvalidAnyType returns the expected and actual primitive kinds recorded on
// an InvalidAnyType exception, as the primitive.Kind values New was given
// (boxed as any: xerrors sits below primitive in the import graph and
// cannot name that type directly). ok is false if e is not that kind.
func (e *Exception) InvalidAnyType() (expected, invalid any, ok bool) {
	if e.Kind != InvalidAnyType {
		return nil, nil, false
	}
	exp, _ := e.Field("expected")
	inv, _ := e.Field("invalid")
	return exp, inv, true
}

// InvalidSimulationTime returns the current simulation time, the rejected
// target, and the upper bound it exceeded. ok is false if e is not that
// kind.
func (e *Exception) InvalidSimulationTime() (current, provided, max any, ok bool) {
	if e.Kind != InvalidSimulationTime {
		return nil, nil, nil, false
	}
	c, _ := e.Field("current")
	p, _ := e.Field("provided")
	m, _ := e.Field("max")
	return c, p, m, true
}

// InvalidFieldType returns the name of the field whose type is invalid. ok
// is false if e is not that kind.
func (e *Exception) InvalidFieldType() (field string, ok bool) {
	if e.Kind != InvalidFieldType {
		return "", false
	}
	return fieldString(e.Fields, "field"), true
}

// InvalidFieldValue returns the name of the field the invalid value was
// assigned to. ok is false if e is not that kind.
func (e *Exception) InvalidFieldValue() (field string, ok bool) {
	if e.Kind != InvalidFieldValue {
		return "", false
	}
	return fieldString(e.Fields, "field"), true
}

// InvalidObjectName returns the rejected name. ok is false if e is not that
// kind.
func (e *Exception) InvalidObjectName() (name string, ok bool) {
	if e.Kind != InvalidObjectName {
		return "", false
	}
	return fieldString(e.Fields, "name"), true
}

// InvalidEventId returns the unregistered id. ok is false if e is not that
// kind.
func (e *Exception) InvalidEventId() (id any, ok bool) {
	if e.Kind != InvalidEventId {
		return nil, false
	}
	v, _ := e.Field("id")
	return v, true
}

// InvalidEventTime returns the exception's message, which describes the
// rejected time. ok is false if e is not that kind.
func (e *Exception) InvalidEventTime() (detail string, ok bool) {
	if e.Kind != InvalidEventTime {
		return "", false
	}
	return e.Message, true
}

// fieldString type-asserts a Fields entry to string, returning "" if absent
// or of another type.
func fieldString(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// Is lets errors.Is(err, xerrors.Sentinel(xerrors.InvalidFieldType)) work by
// comparing kinds when the target is a sentinel Exception (no sender,
// description, message or fields).
func (e *Exception) Is(target error) bool {
	other, ok := target.(*Exception)
	if !ok {
		return false
	}
	if other.Sender == "" && other.Description == "" && other.Message == "" && len(other.Fields) == 0 {
		return e.Kind == other.Kind
	}
	return e == other
}

// Sentinel returns a minimal Exception usable as an errors.Is target for
// kind, e.g. errors.Is(err, xerrors.Sentinel(xerrors.InvalidFieldType)).
func Sentinel(kind Kind) *Exception {
	return &Exception{Kind: kind, Name: string(kind)}
}
