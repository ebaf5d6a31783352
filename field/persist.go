package field

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/xerrors"
)

// WriteValue writes f's raw byte payload to w in the layout spec.md §6
// describes: little-endian primitive bytes for simple fields, element-by-
// element for simple arrays, nested recursively for arrays/structures, plus
// a trailing forced-flag or failed-flag byte for those capabilities.
func WriteValue(w io.Writer, f Field) error {
	switch v := f.(type) {
	case *ForcibleField:
		if err := writeSimple(w, v.SimpleField); err != nil {
			return err
		}
		return writeBool(w, v.forced)
	case *FailureField:
		if err := writeSimple(w, v.SimpleField); err != nil {
			return err
		}
		return writeBool(w, v.failed)
	case *SimpleField:
		return writeSimple(w, v)
	case *SimpleArrayField:
		for i := 0; i < v.Count(); i++ {
			val, err := v.GetValueAt(i)
			if err != nil {
				return err
			}
			if err := writeAnySimple(w, val); err != nil {
				return err
			}
		}
		return nil
	case *ArrayField:
		for _, item := range v.Items {
			if err := WriteValue(w, item); err != nil {
				return err
			}
		}
		return nil
	case *StructureField:
		for _, child := range v.Children {
			if err := WriteValue(w, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return xerrors.New(xerrors.CannotStore, identityPath(f),
			"Unsupported field kind for state persistence", "unknown field concrete type", nil)
	}
}

// ReadValue reads f's byte payload from r and restores it, bypassing the
// forced-write-discard rule so a forced field's stored value round-trips.
func ReadValue(r io.Reader, f Field) error {
	switch v := f.(type) {
	case *ForcibleField:
		if err := readSimpleInto(r, v.SimpleField); err != nil {
			return err
		}
		forced, err := readBool(r)
		if err != nil {
			return err
		}
		v.forced = forced
		return nil
	case *FailureField:
		if err := readSimpleInto(r, v.SimpleField); err != nil {
			return err
		}
		failed, err := readBool(r)
		if err != nil {
			return err
		}
		v.failed = failed
		return nil
	case *SimpleField:
		return readSimpleInto(r, v)
	case *SimpleArrayField:
		for i := 0; i < v.Count(); i++ {
			val, err := readAnySimple(r, v.kind)
			if err != nil {
				return err
			}
			if v.accessor != nil {
				v.accessor[i].Push(val)
			} else {
				v.values[i] = val
			}
		}
		return nil
	case *ArrayField:
		for _, item := range v.Items {
			if err := ReadValue(r, item); err != nil {
				return err
			}
		}
		return nil
	case *StructureField:
		for _, child := range v.Children {
			if err := ReadValue(r, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return xerrors.New(xerrors.CannotRestore, identityPath(f),
			"Unsupported field kind for state persistence", "unknown field concrete type", nil)
	}
}

func identityPath(f Field) string { return Path(f) }

func writeSimple(w io.Writer, f *SimpleField) error {
	return writeAnySimple(w, f.GetValue())
}

func readSimpleInto(r io.Reader, f *SimpleField) error {
	val, err := readAnySimple(r, f.kind)
	if err != nil {
		return err
	}
	f.accessor.Push(val)
	return nil
}

func writeBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeAnySimple(w io.Writer, v primitive.AnySimple) error {
	switch v.Kind() {
	case primitive.Bool:
		b, _ := v.AsBool()
		return writeBool(w, b)
	case primitive.Char8:
		c, _ := v.AsChar8()
		_, err := w.Write([]byte{c})
		return err
	case primitive.Int8:
		n, _ := v.AsInt8()
		_, err := w.Write([]byte{byte(n)})
		return err
	case primitive.UInt8:
		n, _ := v.AsUInt8()
		_, err := w.Write([]byte{n})
		return err
	case primitive.Int16:
		n, _ := v.AsInt16()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.UInt16:
		n, _ := v.AsUInt16()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.Int32:
		n, _ := v.AsInt32()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.UInt32:
		n, _ := v.AsUInt32()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.Int64:
		n, _ := v.AsInt64()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.UInt64:
		n, _ := v.AsUInt64()
		return binary.Write(w, binary.LittleEndian, n)
	case primitive.Float32:
		f, _ := v.AsFloat32()
		return binary.Write(w, binary.LittleEndian, math.Float32bits(f))
	case primitive.Float64:
		f, _ := v.AsFloat64()
		return binary.Write(w, binary.LittleEndian, math.Float64bits(f))
	case primitive.DateTime, primitive.Duration:
		d, _ := v.AsDuration()
		return binary.Write(w, binary.LittleEndian, int64(d))
	case primitive.String8:
		s, _ := v.AsString()
		b := []byte(s)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	default:
		return nil
	}
}

func readAnySimple(r io.Reader, kind primitive.Kind) (primitive.AnySimple, error) {
	switch kind {
	case primitive.Bool:
		b, err := readBool(r)
		return primitive.NewBool(b), err
	case primitive.Char8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewChar8(buf[0]), nil
	case primitive.Int8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewInt8(int8(buf[0])), nil
	case primitive.UInt8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewUInt8(buf[0]), nil
	case primitive.Int16:
		var n int16
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewInt16(n), err
	case primitive.UInt16:
		var n uint16
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewUInt16(n), err
	case primitive.Int32:
		var n int32
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewInt32(n), err
	case primitive.UInt32:
		var n uint32
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewUInt32(n), err
	case primitive.Int64:
		var n int64
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewInt64(n), err
	case primitive.UInt64:
		var n uint64
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewUInt64(n), err
	case primitive.Float32:
		var bits uint32
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewFloat32(math.Float32frombits(bits)), nil
	case primitive.Float64:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewFloat64(math.Float64frombits(bits)), nil
	case primitive.DateTime:
		var n int64
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewDateTime(time.Duration(n)), err
	case primitive.Duration:
		var n int64
		err := binary.Read(r, binary.LittleEndian, &n)
		return primitive.NewDuration(time.Duration(n)), err
	case primitive.String8:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return primitive.AnySimple{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return primitive.AnySimple{}, err
		}
		return primitive.NewString8(string(buf)), nil
	default:
		return primitive.NewNone(), nil
	}
}
