// Package field implements the polymorphic field hierarchy of spec.md §3/§4:
// address-backed and owned fields, simple/array/structure/forcible/failure
// capabilities, dotted-path resolution, dataflow connections and the
// byte-level (de)serialization used by state persistence.
package field

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/primitive"
	"github.com/sarchlab/smp/xerrors"
)

// ViewKind mirrors the standard ViewKind enum (spec.md §3) without pulling
// in the types registry, since fields are constructed before a component's
// owning registry lookup is convenient in hot paths.
type ViewKind int

const (
	ViewNone ViewKind = iota
	ViewDebug
	ViewExpert
	ViewAll
)

// Field is the capability every field variant implements: identity, type,
// and the three orthogonal persistence/dataflow flags.
type Field interface {
	identity.Named
	Description() string
	TypeUUID() uuid.UUID
	View() ViewKind
	State() bool
	Input() bool
	Output() bool
}

// base is embedded by every concrete field kind.
type base struct {
	name     string
	desc     string
	parent   identity.Named
	typeUUID uuid.UUID
	view     ViewKind
	state    bool
	input    bool
	output   bool
	targets  []Field
}

func newBase(name, desc string, parent identity.Named, typeUUID uuid.UUID, view ViewKind, state, input, output bool) base {
	return base{name: name, desc: desc, parent: parent, typeUUID: typeUUID, view: view, state: state, input: input, output: output}
}

func (b *base) Name() string           { return b.name }
func (b *base) Description() string    { return b.desc }
func (b *base) Parent() identity.Named { return b.parent }
func (b *base) TypeUUID() uuid.UUID    { return b.typeUUID }
func (b *base) View() ViewKind         { return b.view }
func (b *base) State() bool            { return b.state }
func (b *base) Input() bool            { return b.input }
func (b *base) Output() bool           { return b.output }

// Path returns the field's dotted path from the root of the model tree.
func Path(f Field) string { return identity.GetPath(f) }

// Targets returns the set of fields connected as dataflow targets of f (only
// meaningful when f.Output() is true; empty otherwise).
func (b *base) Targets() []Field { return append([]Field(nil), b.targets...) }

func (b *base) hasTarget(t Field) bool {
	for _, existing := range b.targets {
		if existing == t {
			return true
		}
	}
	return false
}

func (b *base) addTarget(t Field) { b.targets = append(b.targets, t) }

// Accessor is the address-backed storage seam: a field that wraps model
// memory calls Retrieve/Push against the model-supplied accessor rather
// than holding its own value. Owned fields use valueAccessor (below)
// instead and need no external wiring.
type Accessor interface {
	Retrieve() primitive.AnySimple
	Push(primitive.AnySimple)
}

type valueAccessor struct{ v primitive.AnySimple }

func (a *valueAccessor) Retrieve() primitive.AnySimple { return a.v }
func (a *valueAccessor) Push(v primitive.AnySimple)    { a.v = v }

func newInvalidFieldType(f Field, detail string) error {
	return xerrors.New(xerrors.InvalidFieldType, identity.GetPath(f),
		"This field type cannot be published", detail, map[string]any{"field": f.Name()})
}

// newInvalidFieldValue reports a kind mismatch or out-of-range SetValue.
func newInvalidFieldValue(f Field, detail string) error {
	return xerrors.New(xerrors.InvalidFieldValue, identity.GetPath(f),
		"The value assigned to this field is invalid", detail, map[string]any{"field": f.Name()})
}

// resolveChild locates the next dotted-path segment among a structure's
// named children, honoring the bracket-suffix array-item convention.
func resolveChild(children []Field, segment string) (Field, string, bool) {
	for _, c := range children {
		if c.Name() == segment {
			return c, "", true
		}
	}
	// support "items[3]" as a single segment addressing an array field's item.
	if idx := strings.IndexByte(segment, '['); idx >= 0 {
		base, rest := segment[:idx], segment[idx:]
		for _, c := range children {
			if c.Name() == base {
				if arr, ok := c.(*ArrayField); ok {
					return resolveArrayItem(arr, rest)
				}
			}
		}
	}
	return nil, "", false
}

func resolveArrayItem(arr *ArrayField, bracketed string) (Field, string, bool) {
	end := strings.IndexByte(bracketed, ']')
	if end < 0 || !strings.HasPrefix(bracketed, "[") {
		return nil, "", false
	}
	var idx int
	if _, err := fmt.Sscanf(bracketed[1:end], "%d", &idx); err != nil {
		return nil, "", false
	}
	if idx < 0 || idx >= len(arr.Items) {
		return nil, "", false
	}
	return arr.Items[idx], bracketed[end+1:], true
}

// Resolve walks a dotted path starting at root (a StructureField or
// ArrayField), returning the field it names. It is GetPath's inverse.
func Resolve(root Field, path string) (Field, bool) {
	if path == "" || path == root.Name() {
		return root, true
	}
	rest := strings.TrimPrefix(path, root.Name())
	if rest == path {
		return nil, false
	}
	rest = strings.TrimPrefix(rest, ".")
	cur := root
	for rest != "" {
		segEnd := strings.IndexByte(rest, '.')
		seg := rest
		if segEnd >= 0 {
			seg = rest[:segEnd]
		}
		var children []Field
		switch c := cur.(type) {
		case *StructureField:
			children = c.Children
		case *ArrayField:
			children = c.Items
		default:
			return nil, false
		}
		next, leftover, ok := resolveChild(children, seg)
		if !ok {
			return nil, false
		}
		cur = next
		if leftover != "" {
			rest = strings.TrimPrefix(leftover, ".")
			continue
		}
		if segEnd >= 0 {
			rest = rest[segEnd+1:]
		} else {
			rest = ""
		}
	}
	return cur, true
}
