package primitive

import (
	"fmt"
	"math"
	"time"

	"github.com/sarchlab/smp/xerrors"
)

// Epsilon is the tolerance used for Float32/Float64 equality comparisons.
const Epsilon = 1e-9

// AnySimple is a discriminated value carrying one of the fifteen primitive
// kinds and storage for that kind. It is the universal currency for
// parameter passing, field values and byte-stream (de)serialization.
type AnySimple struct {
	kind Kind
	val  any // bool, byte, int8..uint64, float32/64, time.Duration, string, or nil for None
}

// NewNone returns the canonical None-kind value.
func NewNone() AnySimple { return AnySimple{kind: None} }

// Kind returns the value's tag.
func (a AnySimple) Kind() Kind { return a.kind }

func newInvalidAnyType(expected, invalid Kind, detail string) *xerrors.Exception {
	return xerrors.New(xerrors.InvalidAnyType, "<unknown>",
		"Invalid type conversion or assignment for AnySimple",
		detail,
		map[string]any{"expected": expected, "invalid": invalid})
}

// --- constructors ---------------------------------------------------------

func NewBool(v bool) AnySimple     { return AnySimple{kind: Bool, val: v} }
func NewChar8(v byte) AnySimple    { return AnySimple{kind: Char8, val: v} }
func NewInt8(v int8) AnySimple     { return AnySimple{kind: Int8, val: v} }
func NewInt16(v int16) AnySimple   { return AnySimple{kind: Int16, val: v} }
func NewInt32(v int32) AnySimple   { return AnySimple{kind: Int32, val: v} }
func NewInt64(v int64) AnySimple   { return AnySimple{kind: Int64, val: v} }
func NewUInt8(v uint8) AnySimple   { return AnySimple{kind: UInt8, val: v} }
func NewUInt16(v uint16) AnySimple { return AnySimple{kind: UInt16, val: v} }
func NewUInt32(v uint32) AnySimple { return AnySimple{kind: UInt32, val: v} }
func NewUInt64(v uint64) AnySimple { return AnySimple{kind: UInt64, val: v} }
func NewFloat32(v float32) AnySimple { return AnySimple{kind: Float32, val: v} }
func NewFloat64(v float64) AnySimple { return AnySimple{kind: Float64, val: v} }
func NewDateTime(v time.Duration) AnySimple { return AnySimple{kind: DateTime, val: v} }
func NewDuration(v time.Duration) AnySimple { return AnySimple{kind: Duration, val: v} }
func NewString8(v string) AnySimple          { return AnySimple{kind: String8, val: v} }

// ZeroValue returns kind's zero value: false, 0, "", or None for kind itself
// being None. Used to seed owned fields and parameter slots before a first
// write.
func ZeroValue(kind Kind) AnySimple {
	switch kind {
	case Bool:
		return NewBool(false)
	case Char8:
		return NewChar8(0)
	case Int8:
		return NewInt8(0)
	case Int16:
		return NewInt16(0)
	case Int32:
		return NewInt32(0)
	case Int64:
		return NewInt64(0)
	case UInt8:
		return NewUInt8(0)
	case UInt16:
		return NewUInt16(0)
	case UInt32:
		return NewUInt32(0)
	case UInt64:
		return NewUInt64(0)
	case Float32:
		return NewFloat32(0)
	case Float64:
		return NewFloat64(0)
	case DateTime:
		return NewDateTime(0)
	case Duration:
		return NewDuration(0)
	case String8:
		return NewString8("")
	default:
		return NewNone()
	}
}

// NewInt constructs a signed-integer AnySimple of kind, range-checking v.
// It returns InvalidAnyType if v does not fit in kind's range.
func NewInt(kind Kind, v int64) (AnySimple, error) {
	switch kind {
	case Int8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for Int8", v))
		}
		return NewInt8(int8(v)), nil
	case Int16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for Int16", v))
		}
		return NewInt16(int16(v)), nil
	case Int32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for Int32", v))
		}
		return NewInt32(int32(v)), nil
	case Int64:
		return NewInt64(v), nil
	default:
		return AnySimple{}, newInvalidAnyType(kind, kind, "NewInt requires a signed integer kind")
	}
}

// NewUInt constructs an unsigned-integer AnySimple of kind, range-checking v.
func NewUInt(kind Kind, v uint64) (AnySimple, error) {
	switch kind {
	case UInt8:
		if v > math.MaxUint8 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for UInt8", v))
		}
		return NewUInt8(uint8(v)), nil
	case UInt16:
		if v > math.MaxUint16 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for UInt16", v))
		}
		return NewUInt16(uint16(v)), nil
	case UInt32:
		if v > math.MaxUint32 {
			return AnySimple{}, newInvalidAnyType(kind, kind, fmt.Sprintf("value %d out of range for UInt32", v))
		}
		return NewUInt32(uint32(v)), nil
	case UInt64:
		return NewUInt64(v), nil
	default:
		return AnySimple{}, newInvalidAnyType(kind, kind, "NewUInt requires an unsigned integer kind")
	}
}

// --- extraction ------------------------------------------------------------

func (a AnySimple) AsBool() (bool, bool)       { v, ok := a.val.(bool); return v, ok }
func (a AnySimple) AsChar8() (byte, bool)      { v, ok := a.val.(byte); return v, ok }
func (a AnySimple) AsInt8() (int8, bool)       { v, ok := a.val.(int8); return v, ok }
func (a AnySimple) AsInt16() (int16, bool)     { v, ok := a.val.(int16); return v, ok }
func (a AnySimple) AsInt32() (int32, bool)     { v, ok := a.val.(int32); return v, ok }
func (a AnySimple) AsInt64() (int64, bool)     { v, ok := a.val.(int64); return v, ok }
func (a AnySimple) AsUInt8() (uint8, bool)     { v, ok := a.val.(uint8); return v, ok }
func (a AnySimple) AsUInt16() (uint16, bool)   { v, ok := a.val.(uint16); return v, ok }
func (a AnySimple) AsUInt32() (uint32, bool)   { v, ok := a.val.(uint32); return v, ok }
func (a AnySimple) AsUInt64() (uint64, bool)   { v, ok := a.val.(uint64); return v, ok }
func (a AnySimple) AsFloat32() (float32, bool) { v, ok := a.val.(float32); return v, ok }
func (a AnySimple) AsFloat64() (float64, bool) { v, ok := a.val.(float64); return v, ok }
func (a AnySimple) AsDuration() (time.Duration, bool) {
	v, ok := a.val.(time.Duration)
	return v, ok
}
func (a AnySimple) AsString() (string, bool) { v, ok := a.val.(string); return v, ok }

// AsInt64Value widens any integer kind to int64, for use by range-checked
// assignment and by the persistence layer. ok is false for non-integer kinds.
func (a AnySimple) AsInt64Value() (int64, bool) {
	switch v := a.val.(type) {
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat64Value widens any float kind to float64. ok is false otherwise.
func (a AnySimple) AsFloat64Value() (float64, bool) {
	switch v := a.val.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// --- assignment --------------------------------------------------------

// AssignTo range-checks a and converts it to kind, returning InvalidAnyType
// on a kind mismatch that has no safe conversion, or on overflow.
func (a AnySimple) AssignTo(kind Kind) (AnySimple, error) {
	if a.kind == kind {
		return a, nil
	}
	if a.kind == String8 || kind == String8 {
		return AnySimple{}, newInvalidAnyType(kind, a.kind, "String8 does not convert to or from other kinds")
	}
	if kind.IsInteger() && a.kind.IsInteger() {
		iv, _ := a.AsInt64Value()
		if kind.IsSigned() {
			return NewInt(kind, iv)
		}
		if iv < 0 {
			return AnySimple{}, newInvalidAnyType(kind, a.kind, "negative value cannot convert to an unsigned kind")
		}
		return NewUInt(kind, uint64(iv))
	}
	if kind.IsFloat() && a.kind.IsFloat() {
		fv, _ := a.AsFloat64Value()
		if kind == Float32 {
			f32 := float32(fv)
			if math.Abs(float64(f32)-fv) > Epsilon*math.Max(1, math.Abs(fv)) {
				return AnySimple{}, newInvalidAnyType(kind, a.kind, "value cannot be represented in Float32 without truncation")
			}
			return NewFloat32(f32), nil
		}
		return NewFloat64(fv), nil
	}
	if kind == Bool && a.kind == Bool {
		return a, nil
	}
	return AnySimple{}, newInvalidAnyType(kind, a.kind, "no safe conversion between these kinds")
}

// --- equality --------------------------------------------------------

// Equal reports whether a and b compare equal after a safe conversion of b
// to a's kind. It never errors: if no conversion exists, it returns false.
func (a AnySimple) Equal(b AnySimple) bool {
	conv, err := b.AssignTo(a.kind)
	if err != nil {
		return false
	}
	switch a.kind {
	case Float32:
		av, _ := a.AsFloat32()
		bv, _ := conv.AsFloat32()
		return math.Abs(float64(av-bv)) <= Epsilon
	case Float64:
		av, _ := a.AsFloat64()
		bv, _ := conv.AsFloat64()
		return math.Abs(av-bv) <= Epsilon
	case String8:
		av, _ := a.AsString()
		bv, _ := conv.AsString()
		return av == bv
	default:
		return a.val == conv.val
	}
}

// String renders the value for logging and the %m pattern-layout token.
func (a AnySimple) String() string {
	switch a.kind {
	case None:
		return "<none>"
	case String8:
		s, _ := a.AsString()
		return s
	default:
		return fmt.Sprintf("%v", a.val)
	}
}
