package types

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/xerrors"
)

// Well-known UUIDs for the fifteen built-in primitives and the standard
// enums/integer aliases. These are fixed so that plugins compiled against
// this registry's generated bindings always resolve the same identifiers.
var (
	primitiveUUIDs = map[primitive.Kind]uuid.UUID{
		primitive.None:     uuid.MustParse("00000000-0000-0000-0000-000000000000"),
		primitive.Bool:     uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000001"),
		primitive.Char8:    uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000002"),
		primitive.Int8:     uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000003"),
		primitive.Int16:    uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000004"),
		primitive.Int32:    uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000005"),
		primitive.Int64:    uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000006"),
		primitive.UInt8:    uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000007"),
		primitive.UInt16:   uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000008"),
		primitive.UInt32:   uuid.MustParse("a3e0e0e0-0001-4000-8000-000000000009"),
		primitive.UInt64:   uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000a"),
		primitive.Float32:  uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000b"),
		primitive.Float64:  uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000c"),
		primitive.DateTime: uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000d"),
		primitive.Duration: uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000e"),
		primitive.String8:  uuid.MustParse("a3e0e0e0-0001-4000-8000-00000000000f"),
	}

	// VoidUUID names the pseudo-type of an operation with no return value.
	VoidUUID = uuid.MustParse("a3e0e0e0-0001-4000-8000-0000000000ff")

	// Standard enum/integer-alias UUIDs, spec.md §3.
	PrimitiveTypeKindUUID    = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000001")
	TimeKindUUID             = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000002")
	ViewKindUUID             = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000003")
	ParameterDirectionKindUUID = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000004")
	ComponentStateKindUUID   = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000005")
	AccessKindUUID           = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000006")
	SimulatorStateKindUUID   = uuid.MustParse("a3e0e0e0-0002-4000-8000-000000000007")
	EventIdUUID              = uuid.MustParse("a3e0e0e0-0003-4000-8000-000000000001")
	LogMessageKindUUID       = uuid.MustParse("a3e0e0e0-0003-4000-8000-000000000002")
)

// Registry maps UUID to Type. It is populated at construction with the
// fifteen primitives and the standard enums/aliases, then grows with
// user-registered types as plugin libraries call Register*.
type Registry struct {
	byUUID map[uuid.UUID]Type
}

// NewRegistry builds a Registry pre-populated with every built-in type.
func NewRegistry() *Registry {
	r := &Registry{byUUID: map[uuid.UUID]Type{}}
	r.registerBuiltinPrimitives()
	r.registerBuiltinEnums()
	return r
}

func (r *Registry) registerBuiltinPrimitives() {
	for kind, id := range primitiveUUIDs {
		r.byUUID[id] = &PrimitiveType{baseType{uuid: id, name: kind.String(), cat: CategoryPrimitive, kind: kind}}
	}
}

func mustEnum(r *Registry, id uuid.UUID, name string, literals ...EnumLiteral) {
	e := &EnumerationType{
		baseType:    baseType{uuid: id, name: name, cat: CategoryEnumeration, kind: primitive.Int32},
		Literals:    literals,
		valueByName: map[string]int64{},
		nameByValue: map[int64]string{},
	}
	for _, l := range literals {
		e.valueByName[l.Name] = l.Value
		e.nameByValue[l.Value] = l.Name
	}
	r.byUUID[id] = e
}

func (r *Registry) registerBuiltinEnums() {
	mustEnum(r, PrimitiveTypeKindUUID, "PrimitiveTypeKind",
		EnumLiteral{"PTK_None", 0}, EnumLiteral{"PTK_Char8", 1}, EnumLiteral{"PTK_Bool", 2},
		EnumLiteral{"PTK_Int8", 3}, EnumLiteral{"PTK_UInt8", 4}, EnumLiteral{"PTK_Int16", 5},
		EnumLiteral{"PTK_UInt16", 6}, EnumLiteral{"PTK_Int32", 7}, EnumLiteral{"PTK_UInt32", 8},
		EnumLiteral{"PTK_Int64", 9}, EnumLiteral{"PTK_UInt64", 10}, EnumLiteral{"PTK_Float32", 11},
		EnumLiteral{"PTK_Float64", 12}, EnumLiteral{"PTK_DateTime", 13}, EnumLiteral{"PTK_Duration", 14},
		EnumLiteral{"PTK_String8", 15})

	mustEnum(r, TimeKindUUID, "TimeKind",
		EnumLiteral{"TK_Simulation", 0}, EnumLiteral{"TK_Mission", 1},
		EnumLiteral{"TK_Epoch", 2}, EnumLiteral{"TK_Zulu", 3})

	mustEnum(r, ViewKindUUID, "ViewKind",
		EnumLiteral{"VK_None", 0}, EnumLiteral{"VK_Debug", 1},
		EnumLiteral{"VK_Expert", 2}, EnumLiteral{"VK_All", 3})

	mustEnum(r, ParameterDirectionKindUUID, "ParameterDirectionKind",
		EnumLiteral{"PDK_In", 0}, EnumLiteral{"PDK_Out", 1}, EnumLiteral{"PDK_InOut", 2},
		EnumLiteral{"PDK_Return", 3})

	mustEnum(r, ComponentStateKindUUID, "ComponentStateKind",
		EnumLiteral{"CSK_Created", 0}, EnumLiteral{"CSK_Publishing", 1},
		EnumLiteral{"CSK_Configured", 2}, EnumLiteral{"CSK_Connected", 3},
		EnumLiteral{"CSK_Disconnected", 4})

	mustEnum(r, AccessKindUUID, "AccessKind",
		EnumLiteral{"AK_ReadWrite", 0}, EnumLiteral{"AK_ReadOnly", 1}, EnumLiteral{"AK_WriteOnly", 2})

	mustEnum(r, SimulatorStateKindUUID, "SimulatorStateKind",
		EnumLiteral{"SSK_Building", 0}, EnumLiteral{"SSK_Connecting", 1},
		EnumLiteral{"SSK_Initialising", 2}, EnumLiteral{"SSK_Standby", 3},
		EnumLiteral{"SSK_Executing", 4}, EnumLiteral{"SSK_Storing", 5},
		EnumLiteral{"SSK_Restoring", 6}, EnumLiteral{"SSK_Reconnecting", 7},
		EnumLiteral{"SSK_Exiting", 8}, EnumLiteral{"SSK_Aborting", 9})

	// Standard integer aliases.
	r.byUUID[EventIdUUID] = &IntegerType{
		baseType: baseType{uuid: EventIdUUID, name: "EventId", cat: CategoryInteger, kind: primitive.Int64},
		Min:      math.MinInt64, Max: math.MaxInt64,
	}
	r.byUUID[LogMessageKindUUID] = &IntegerType{
		baseType: baseType{uuid: LogMessageKindUUID, name: "LogMessageKind", cat: CategoryInteger, kind: primitive.Int32},
		Min:      0, Max: math.MaxInt32,
	}
}

// PrimitiveUUID returns the well-known UUID of a built-in primitive kind.
func PrimitiveUUID(kind primitive.Kind) uuid.UUID { return primitiveUUIDs[kind] }

// Lookup resolves a UUID to its Type, or TypeNotRegistered.
func (r *Registry) Lookup(id uuid.UUID) (Type, error) {
	t, ok := r.byUUID[id]
	if !ok {
		return nil, xerrors.New(xerrors.TypeNotRegistered, "<unknown>",
			"Type UUID is not registered", fmt.Sprintf("no type registered for UUID %s", id),
			map[string]any{"uuid": id})
	}
	return t, nil
}

func (r *Registry) register(id uuid.UUID, t Type) error {
	if _, exists := r.byUUID[id]; exists {
		return xerrors.New(xerrors.TypeAlreadyRegistered, "<unknown>",
			"A type with this UUID is already registered",
			fmt.Sprintf("UUID %s is already registered", id),
			map[string]any{"uuid": id, "name": t.Name()})
	}
	r.byUUID[id] = t
	return nil
}

// RegisterInteger registers a user integer type backed by a primitive
// integer kind, bounded to [min, max]. kind must be an integer kind.
func (r *Registry) RegisterInteger(id uuid.UUID, name, desc string, kind primitive.Kind, min, max int64) (*IntegerType, error) {
	if !kind.IsInteger() {
		return nil, xerrors.New(xerrors.InvalidPrimitiveType, "<unknown>",
			"Integer types must be backed by an integer primitive",
			fmt.Sprintf("%s is not an integer kind", kind), map[string]any{"kind": kind})
	}
	t := &IntegerType{baseType: baseType{uuid: id, name: name, desc: desc, cat: CategoryInteger, kind: kind}, Min: min, Max: max}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterFloat registers a user float type backed by a primitive float
// kind, bounded to (min, max) per the inclusive flags.
func (r *Registry) RegisterFloat(id uuid.UUID, name, desc string, kind primitive.Kind, min, max float64, minIncl, maxIncl bool) (*FloatType, error) {
	if !kind.IsFloat() {
		return nil, xerrors.New(xerrors.InvalidPrimitiveType, "<unknown>",
			"Float types must be backed by a float primitive",
			fmt.Sprintf("%s is not a float kind", kind), map[string]any{"kind": kind})
	}
	t := &FloatType{baseType: baseType{uuid: id, name: name, desc: desc, cat: CategoryFloat, kind: kind},
		Min: min, Max: max, MinInclusive: minIncl, MaxInclusive: maxIncl}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterEnumeration registers a user enum. Literal values must be unique.
func (r *Registry) RegisterEnumeration(id uuid.UUID, name, desc string, literals ...EnumLiteral) (*EnumerationType, error) {
	seen := map[int64]bool{}
	for _, l := range literals {
		if seen[l.Value] {
			return nil, xerrors.New(xerrors.DuplicateLiteral, "<unknown>",
				"Enumeration literal values must be unique",
				fmt.Sprintf("literal value %d is declared more than once in %s", l.Value, name),
				map[string]any{"uuid": id, "name": l.Name})
		}
		seen[l.Value] = true
	}
	e := &EnumerationType{
		baseType:    baseType{uuid: id, name: name, desc: desc, cat: CategoryEnumeration, kind: primitive.Int32},
		Literals:    literals,
		valueByName: map[string]int64{},
		nameByValue: map[int64]string{},
	}
	for _, l := range literals {
		e.valueByName[l.Name] = l.Value
		e.nameByValue[l.Value] = l.Name
	}
	if err := r.register(id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RegisterArray registers a fixed-size array type over an already-registered
// item type.
func (r *Registry) RegisterArray(id uuid.UUID, name, desc string, itemType uuid.UUID, count int, simpleArray bool) (*ArrayType, error) {
	item, err := r.Lookup(itemType)
	if err != nil {
		return nil, err
	}
	t := &ArrayType{
		baseType:    baseType{uuid: id, name: name, desc: desc, cat: CategoryArray, kind: primitive.String8},
		ItemType:    itemType,
		ItemSize:    item.PrimitiveKind().ByteSize(),
		Count:       count,
		SimpleArray: simpleArray,
	}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterString registers a bounded String8 type.
func (r *Registry) RegisterString(id uuid.UUID, name, desc string, maxLength int) (*StringType, error) {
	t := &StringType{baseType: baseType{uuid: id, name: name, desc: desc, cat: CategoryString, kind: primitive.String8}, MaxLength: maxLength}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterStructure registers a composite type made of named, typed
// members; members may themselves reference structure types (nesting).
func (r *Registry) RegisterStructure(id uuid.UUID, name, desc string, members ...StructureMember) (*StructureType, error) {
	for _, m := range members {
		if _, err := r.Lookup(m.Type); err != nil {
			return nil, err
		}
	}
	t := &StructureType{baseType: baseType{uuid: id, name: name, desc: desc, cat: CategoryStructure, kind: primitive.String8}, Members: members}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterClass registers a class type: a structure type additionally
// marking the described shape as a component's published field layout.
func (r *Registry) RegisterClass(id uuid.UUID, name, desc string, members ...StructureMember) (*ClassType, error) {
	for _, m := range members {
		if _, err := r.Lookup(m.Type); err != nil {
			return nil, err
		}
	}
	t := &ClassType{StructureType{baseType: baseType{uuid: id, name: name, desc: desc, cat: CategoryClass, kind: primitive.String8}, Members: members}}
	if err := r.register(id, t); err != nil {
		return nil, err
	}
	return t, nil
}
