package simulator

import (
	"strings"
	"sync"

	"github.com/sarchlab/smp/xerrors"
)

// LinkRegistry is one of the simulator's six standard services: a mapping
// from a symbolic link name (as used by configuration/manifest files) to
// the dotted path it resolves to. It exists so a bootstrap manifest can
// refer to "the sensor feeding this actuator" by name instead of a literal
// path that might move if the tree is restructured.
type LinkRegistry struct {
	mu    sync.Mutex
	links map[string]string
}

// NewLinkRegistry constructs an empty LinkRegistry.
func NewLinkRegistry() *LinkRegistry { return &LinkRegistry{links: map[string]string{}} }

// Link records that name refers to path, overwriting any previous value.
func (r *LinkRegistry) Link(name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[name] = path
}

// Resolve returns the path registered for name, if any.
func (r *LinkRegistry) Resolve(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.links[name]
	return p, ok
}

// Resolver is the simulator's name-resolution standard service: it walks
// the Models/Services hierarchies to find the component named by a dotted
// path, the same addressing scheme identity.GetPath produces.
type Resolver struct {
	sim *Simulator
}

// NewResolver constructs a Resolver bound to sim.
func NewResolver(sim *Simulator) *Resolver { return &Resolver{sim: sim} }

func invalidTarget(path string) error {
	return xerrors.New(xerrors.InvalidTarget, path,
		"No component or container matches this path", "could not resolve '"+path+"'", nil)
}

// ResolveComponent finds the component at path, rooted at either "Models"
// or "Services".
func (r *Resolver) ResolveComponent(path string) (*Component, error) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 {
		return nil, invalidTarget(path)
	}
	var cur *Component
	switch segments[0] {
	case r.sim.models.Name():
		cur = r.sim.models
	case r.sim.services.Name():
		cur = r.sim.services
	default:
		return nil, invalidTarget(path)
	}
	for _, seg := range segments[1:] {
		next := findChild(cur, seg)
		if next == nil {
			return nil, invalidTarget(path)
		}
		cur = next
	}
	return cur, nil
}

func findChild(c *Component, name string) *Component {
	for _, ct := range c.containers {
		for _, child := range ct.children {
			if child.name == name {
				return child
			}
		}
	}
	return nil
}
