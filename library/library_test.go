package library_test

import (
	"testing"

	"github.com/sarchlab/smp/library"
)

// fakeLoader stands in for PluginLoader so tests don't need an actual
// compiled .so on disk.
type fakeLoader struct {
	libs map[string]*library.Library
}

func (f fakeLoader) Load(path string) (*library.Library, error) {
	if lib, ok := f.libs[path]; ok {
		return lib, nil
	}
	return nil, errNotFound(path)
}

func errNotFound(path string) error { return &notFoundErr{path} }

type notFoundErr struct{ path string }

func (e *notFoundErr) Error() string { return "not found: " + e.path }

func TestLoaderResolvesRegisteredLibrary(t *testing.T) {
	var initialised, finalised bool
	lib := &library.Library{
		Path:       "mymodel.so",
		Initialise: func(sim, registry any) bool { initialised = true; return true },
		Finalise:   func(sim any) { finalised = true },
	}
	loader := fakeLoader{libs: map[string]*library.Library{"mymodel.so": lib}}

	got, err := loader.Load("mymodel.so")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Initialise(nil, nil) || !initialised {
		t.Fatalf("expected Initialise to run and report success")
	}
	got.Finalise(nil)
	if !finalised {
		t.Fatalf("expected Finalise to run")
	}
}

func TestLoaderMissingPathFails(t *testing.T) {
	loader := fakeLoader{libs: map[string]*library.Library{}}
	if _, err := loader.Load("missing.so"); err == nil {
		t.Fatalf("expected an error for an unresolvable library path")
	}
}
