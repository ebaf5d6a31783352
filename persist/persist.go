// Package persist implements the tagged binary state walker of spec.md §6:
// a depth-first traversal of the component hierarchy producing (and, on
// restore, validating) an alternating sequence of PERSIST/COMPONENT/
// COMPOSITE/CONTAINER/FIELD tagged sections.
package persist

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/smp/field"
	"github.com/sarchlab/smp/xerrors"
)

// Tag enumerates the five section kinds a state file is built from.
type Tag byte

const (
	TagPersist Tag = iota
	TagComponent
	TagComposite
	TagContainer
	TagField
)

// Component is the subset of simulator.Component the walker needs, kept
// narrow so this package has no import-cycle dependency on simulator.
type Component interface {
	Name() string
	Publication() Publication
	Containers() []Container
}

// Publication is the subset of publication.Publication the walker needs.
type Publication interface {
	GetFields() []field.Field
}

// Container is the subset of simulator.Container the walker needs.
type Container interface {
	Name() string
	Components() []Component
}

func writeTag(w io.Writer, t Tag) error {
	_, err := w.Write([]byte{byte(t)})
	return err
}

func readTag(r io.Reader) (Tag, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Tag(b[0]), nil
}

func cannotRestore(detail string) error {
	return xerrors.New(xerrors.CannotRestore, "<unknown>",
		"Restored state does not match the expected tagged layout", detail, nil)
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Store writes root's persistable state to w: for every component reachable
// through nested containers in depth-first order, a PERSIST section naming
// it, a COMPONENT section with one FIELD per state-flagged published field,
// and a COMPOSITE section recursing into its containers.
func Store(w io.Writer, root Component) error {
	if err := writeTag(w, TagPersist); err != nil {
		return err
	}
	if err := writeString(w, root.Name()); err != nil {
		return err
	}

	if err := writeTag(w, TagComponent); err != nil {
		return err
	}
	for _, f := range root.Publication().GetFields() {
		if !f.State() {
			continue
		}
		if err := writeTag(w, TagField); err != nil {
			return err
		}
		if err := field.WriteValue(w, f); err != nil {
			return fmt.Errorf("persist: writing field %q: %w", f.Name(), err)
		}
	}

	if err := writeTag(w, TagComposite); err != nil {
		return err
	}
	for _, ct := range root.Containers() {
		if err := writeTag(w, TagContainer); err != nil {
			return err
		}
		if err := writeString(w, ct.Name()); err != nil {
			return err
		}
		for _, child := range ct.Components() {
			if err := Store(w, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// Restore reads state written by Store back into root, validating every tag
// and component/container name along the way. A mismatch fails with
// CannotRestore.
func Restore(r io.Reader, root Component) error {
	tag, err := readTag(r)
	if err != nil {
		return err
	}
	if tag != TagPersist {
		return cannotRestore(fmt.Sprintf("expected PERSIST tag for %q, got %d", root.Name(), tag))
	}
	name, err := readString(r)
	if err != nil {
		return err
	}
	if name != root.Name() {
		return cannotRestore(fmt.Sprintf("expected component %q, stream names %q", root.Name(), name))
	}

	tag, err = readTag(r)
	if err != nil {
		return err
	}
	if tag != TagComponent {
		return cannotRestore(fmt.Sprintf("expected COMPONENT tag for %q, got %d", root.Name(), tag))
	}
	for _, f := range root.Publication().GetFields() {
		if !f.State() {
			continue
		}
		tag, err = readTag(r)
		if err != nil {
			return err
		}
		if tag != TagField {
			return cannotRestore(fmt.Sprintf("expected FIELD tag for %q.%q, got %d", root.Name(), f.Name(), tag))
		}
		if err := field.ReadValue(r, f); err != nil {
			return fmt.Errorf("persist: reading field %q: %w", f.Name(), err)
		}
	}

	tag, err = readTag(r)
	if err != nil {
		return err
	}
	if tag != TagComposite {
		return cannotRestore(fmt.Sprintf("expected COMPOSITE tag for %q, got %d", root.Name(), tag))
	}
	for _, ct := range root.Containers() {
		tag, err = readTag(r)
		if err != nil {
			return err
		}
		if tag != TagContainer {
			return cannotRestore(fmt.Sprintf("expected CONTAINER tag for %q, got %d", ct.Name(), tag))
		}
		name, err = readString(r)
		if err != nil {
			return err
		}
		if name != ct.Name() {
			return cannotRestore(fmt.Sprintf("expected container %q, stream names %q", ct.Name(), name))
		}
		for _, child := range ct.Components() {
			if err := Restore(r, child); err != nil {
				return err
			}
		}
	}
	return nil
}
