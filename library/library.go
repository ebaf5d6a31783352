// Package library wraps Go's plugin package behind the Loader interface
// spec.md §6 describes: resolve a shared object, find its Initialise and
// Finalise entry points, and hand them back. No other pack dependency wraps
// OS-level dlopen, so this is the one place the runtime reaches for stdlib
// with no ecosystem alternative (see DESIGN.md).
package library

import (
	"fmt"
	"plugin"

	"github.com/sarchlab/smp/xerrors"
)

// InitialiseFunc is a library's entry point for registering factories and
// types. It returns false if initialisation failed.
type InitialiseFunc func(sim, registry any) bool

// FinaliseFunc is a library's teardown entry point.
type FinaliseFunc func(sim any)

// Library is a loaded plugin's two resolved entry points.
type Library struct {
	Path      string
	Initialise InitialiseFunc
	Finalise   FinaliseFunc
}

// Loader resolves shared objects into Libraries. The default implementation
// wraps plugin.Open; tests substitute a fake.
type Loader interface {
	Load(path string) (*Library, error)
}

// PluginLoader is the production Loader, backed by Go's plugin package.
type PluginLoader struct{}

func invalidLibrary(path, detail string) error {
	return xerrors.New(xerrors.InvalidLibrary, path,
		"Library is missing a required entry point", detail, map[string]any{"path": path})
}

// Load resolves path and looks up its Initialise/Finalise symbols. A path
// that cannot be opened fails with LibraryNotFound; one missing either
// symbol (or whose Initialise does not match the expected signature) fails
// with InvalidLibrary.
func (PluginLoader) Load(path string) (*Library, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, xerrors.New(xerrors.LibraryNotFound, path,
			"Library could not be resolved", err.Error(), map[string]any{"path": path})
	}

	initSym, err := p.Lookup("Initialise")
	if err != nil {
		return nil, invalidLibrary(path, fmt.Sprintf("missing Initialise: %v", err))
	}
	init, ok := initSym.(func(any, any) bool)
	if !ok {
		return nil, invalidLibrary(path, "Initialise has the wrong signature")
	}

	finSym, err := p.Lookup("Finalise")
	if err != nil {
		return nil, invalidLibrary(path, fmt.Sprintf("missing Finalise: %v", err))
	}
	fin, ok := finSym.(func(any))
	if !ok {
		return nil, invalidLibrary(path, "Finalise has the wrong signature")
	}

	return &Library{Path: path, Initialise: InitialiseFunc(init), Finalise: FinaliseFunc(fin)}, nil
}
