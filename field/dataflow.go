package field

import (
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/xerrors"
)

func newInvalidTarget(source, target Field, detail string) error {
	return xerrors.New(xerrors.InvalidTarget, identity.GetPath(source),
		"Target field is not a valid dataflow connection target", detail,
		map[string]any{"source": identity.GetPath(source), "target": identity.GetPath(target)})
}

// shapeCompatible reports whether target can receive pushes from source:
// same concrete shape (kind, nested layout, element counts) as spec.md §4.6.
func shapeCompatible(source, target Field) bool {
	switch s := source.(type) {
	case *SimpleField:
		t, ok := target.(*SimpleField)
		return ok && t.Kind() == s.Kind()
	case *SimpleArrayField:
		t, ok := target.(*SimpleArrayField)
		return ok && t.Kind() == s.Kind() && t.Count() == s.Count()
	case *ArrayField:
		t, ok := target.(*ArrayField)
		if !ok || t.Count() != s.Count() {
			return false
		}
		for i := range s.Items {
			if !shapeCompatible(s.Items[i], t.Items[i]) {
				return false
			}
		}
		return true
	case *StructureField:
		t, ok := target.(*StructureField)
		if !ok || len(t.Children) != len(s.Children) {
			return false
		}
		for i := range s.Children {
			if !shapeCompatible(s.Children[i], t.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func targetsOf(source Field) []Field {
	switch s := source.(type) {
	case *SimpleField:
		return s.targets
	case *SimpleArrayField:
		return s.targets
	case *ArrayField:
		return s.targets
	case *StructureField:
		return s.targets
	default:
		return nil
	}
}

func addTargetTo(source, target Field) {
	switch s := source.(type) {
	case *SimpleField:
		s.addTarget(target)
	case *SimpleArrayField:
		s.addTarget(target)
	case *ArrayField:
		s.addTarget(target)
	case *StructureField:
		s.addTarget(target)
	}
}

func hasTargetOn(source, target Field) bool {
	switch s := source.(type) {
	case *SimpleField:
		return s.hasTarget(target)
	case *SimpleArrayField:
		return s.hasTarget(target)
	case *ArrayField:
		return s.hasTarget(target)
	case *StructureField:
		return s.hasTarget(target)
	default:
		return false
	}
}

// Connect establishes a dataflow link from source (an output field) to
// target (an input field). It fails with InvalidTarget if target is not an
// input, target == source, or the two are not shape-compatible; with
// FieldAlreadyConnected if the pair is already linked.
func Connect(source, target Field) error {
	if !source.Output() {
		return newInvalidTarget(source, target, "source field is not an output field")
	}
	if !target.Input() {
		return newInvalidTarget(source, target, "target field is not an input field")
	}
	if source == target {
		return newInvalidTarget(source, target, "a field cannot be connected to itself")
	}
	if !shapeCompatible(source, target) {
		return newInvalidTarget(source, target, "source and target fields are not shape-compatible")
	}
	if hasTargetOn(source, target) {
		return xerrors.New(xerrors.FieldAlreadyConnected, identity.GetPath(source),
			"Fields are already connected",
			"source and target are already connected",
			map[string]any{"source": identity.GetPath(source), "target": identity.GetPath(target)})
	}
	addTargetTo(source, target)
	return nil
}

// Push propagates source's current value to every connected target,
// recursing into arrays and structures by position (spec.md §4.6).
func Push(source Field) error {
	for _, target := range targetsOf(source) {
		if err := pushPair(source, target); err != nil {
			return err
		}
	}
	return nil
}

func pushPair(source, target Field) error {
	switch s := source.(type) {
	case *SimpleField:
		t := target.(*SimpleField)
		return t.SetValue(s.GetValue())
	case *SimpleArrayField:
		t := target.(*SimpleArrayField)
		for i := 0; i < s.Count(); i++ {
			v, err := s.GetValueAt(i)
			if err != nil {
				return err
			}
			if err := t.SetValueAt(i, v); err != nil {
				return err
			}
		}
		return nil
	case *ArrayField:
		t := target.(*ArrayField)
		for i := range s.Items {
			if err := pushPair(s.Items[i], t.Items[i]); err != nil {
				return err
			}
		}
		return nil
	case *StructureField:
		t := target.(*StructureField)
		for i := range s.Children {
			if err := pushPair(s.Children[i], t.Children[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
