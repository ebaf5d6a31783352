// Package types implements the UUID-keyed reflective type registry:
// primitive, enumeration, integer, float, array, string, structure and
// class types (spec.md §3 "Type registry" and §4 component design).
package types

import (
	"github.com/google/uuid"
	"github.com/sarchlab/smp/primitive"
)

// Category distinguishes the concrete shape of a Type.
type Category int

const (
	CategoryPrimitive Category = iota
	CategoryEnumeration
	CategoryInteger
	CategoryFloat
	CategoryArray
	CategoryString
	CategoryStructure
	CategoryClass
)

// Type is the common descriptor every registered type implements.
type Type interface {
	UUID() uuid.UUID
	Name() string
	Description() string
	Category() Category
	// PrimitiveKind returns the primitive kind used to store values of this
	// type: itself for a PrimitiveType, the backing kind for Integer/Float/
	// Enumeration types, String8 for String/Array(simple)/Structure, etc.
	PrimitiveKind() primitive.Kind
}

type baseType struct {
	uuid uuid.UUID
	name string
	desc string
	cat  Category
	kind primitive.Kind
}

func (t *baseType) UUID() uuid.UUID              { return t.uuid }
func (t *baseType) Name() string                 { return t.name }
func (t *baseType) Description() string          { return t.desc }
func (t *baseType) Category() Category           { return t.cat }
func (t *baseType) PrimitiveKind() primitive.Kind { return t.kind }

// PrimitiveType describes one of the fifteen built-in primitive kinds.
type PrimitiveType struct{ baseType }

// EnumerationType describes a user-defined enum: an Int32-backed type whose
// literals carry unique integer values.
type EnumerationType struct {
	baseType
	Literals    []EnumLiteral
	valueByName map[string]int64
	nameByValue map[int64]string
}

// EnumLiteral is one named, valued member of an EnumerationType.
type EnumLiteral struct {
	Name  string
	Value int64
}

// ValueOf resolves a literal name to its integer value.
func (e *EnumerationType) ValueOf(name string) (int64, bool) {
	v, ok := e.valueByName[name]
	return v, ok
}

// NameOf resolves an integer value to its literal name.
func (e *EnumerationType) NameOf(value int64) (string, bool) {
	n, ok := e.nameByValue[value]
	return n, ok
}

// IsValidValue reports whether value matches a declared literal.
func (e *EnumerationType) IsValidValue(value int64) bool {
	_, ok := e.nameByValue[value]
	return ok
}

// IntegerType is an integer primitive range-restricted to [Min, Max].
type IntegerType struct {
	baseType
	Min, Max int64
}

// InRange reports whether v satisfies the declared bounds.
func (t *IntegerType) InRange(v int64) bool { return v >= t.Min && v <= t.Max }

// FloatType is a float primitive range-restricted to [Min, Max].
type FloatType struct {
	baseType
	Min, Max             float64
	MinInclusive, MaxInclusive bool
}

// InRange reports whether v satisfies the declared bounds.
func (t *FloatType) InRange(v float64) bool {
	if t.MinInclusive {
		if v < t.Min {
			return false
		}
	} else if v <= t.Min {
		return false
	}
	if t.MaxInclusive {
		if v > t.Max {
			return false
		}
	} else if v >= t.Max {
		return false
	}
	return true
}

// StringType bounds a String8 to a maximum length (0 = unbounded).
type StringType struct {
	baseType
	MaxLength int
}

// ArrayType describes a fixed-size array of a homogeneous item type.
type ArrayType struct {
	baseType
	ItemType    uuid.UUID
	ItemSize    int
	Count       int
	SimpleArray bool // true when items are a simple (non-composite) kind
}

// StructureMember is one named, typed field of a StructureType/ClassType.
type StructureMember struct {
	Name string
	Type uuid.UUID
}

// StructureType describes a composite type made of named, typed members.
// It nests: a member's Type may itself resolve to another StructureType.
type StructureType struct {
	baseType
	Members []StructureMember
}

// ClassType is a StructureType additionally describing a component's
// published shape (used by factories to pre-declare a component's fields).
type ClassType struct {
	StructureType
}
