// Package primitive implements the fifteen primitive value kinds of the
// reflective type system and the AnySimple tagged union over them.
package primitive

// Kind tags one of the fifteen primitive value kinds.
type Kind int

const (
	None Kind = iota
	Bool
	Char8
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	DateTime
	Duration
	String8
)

var kindNames = map[Kind]string{
	None:     "None",
	Bool:     "Bool",
	Char8:    "Char8",
	Int8:     "Int8",
	Int16:    "Int16",
	Int32:    "Int32",
	Int64:    "Int64",
	UInt8:    "UInt8",
	UInt16:   "UInt16",
	UInt32:   "UInt32",
	UInt64:   "UInt64",
	Float32:  "Float32",
	Float64:  "Float64",
	DateTime: "DateTime",
	Duration: "Duration",
	String8:  "String8",
}

// String renders the kind's name, e.g. "Int32".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsInteger reports whether k is one of the eight integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	}
	return false
}

// IsFloat reports whether k is one of the two floating-point kinds.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// ByteSize returns the fixed storage size of k in bytes, or 0 for String8
// (variable length) and None (no storage).
func (k Kind) ByteSize() int {
	switch k {
	case Bool, Char8, Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	case Int64, UInt64, Float64, DateTime, Duration:
		return 8
	default:
		return 0
	}
}
