package field

import "github.com/sarchlab/smp/primitive"

// ForcibleField wraps a SimpleField with a "forced" flag: while forced, all
// writes through SetValue are silently discarded rather than erroring
// (spec.md §9 open question (a), preserved for compatibility).
type ForcibleField struct {
	*SimpleField
	forced bool
}

// NewForcibleField wraps simple as a forcible field, initially unforced.
func NewForcibleField(simple *SimpleField) *ForcibleField {
	return &ForcibleField{SimpleField: simple}
}

// Forced reports whether the field is currently forced.
func (f *ForcibleField) Forced() bool { return f.forced }

// SetForced sets or clears the forced flag. It does not itself change the
// stored value.
func (f *ForcibleField) SetForced(forced bool) { f.forced = forced }

// SetValue silently discards the write while forced; otherwise it delegates
// to SimpleField.SetValue (range-checked assignment).
func (f *ForcibleField) SetValue(v primitive.AnySimple) error {
	if f.forced {
		return nil
	}
	return f.SimpleField.SetValue(v)
}

// ForceValue assigns v and sets forced regardless of the prior forced
// state — the one write path that bypasses the silent-discard rule, used by
// an operator to pin a field to a value (e.g. for fault injection).
func (f *ForcibleField) ForceValue(v primitive.AnySimple) error {
	if err := f.SimpleField.SetValue(v); err != nil {
		return err
	}
	f.forced = true
	return nil
}
