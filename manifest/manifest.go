// Package manifest implements the YAML bootstrap manifest: a declarative,
// argv-free stand-in for an external driver that would otherwise load
// libraries and build the initial component tree by hand. It is sugar over
// Simulator's programmatic API, not a replacement for it.
package manifest

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/smp/simulator"
)

// ComponentSpec names one component to create from an already-registered
// factory and attach to either the Models or Services root.
type ComponentSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"` // factory UUID, canonical form
	Root        string `yaml:"root"` // "Models" or "Services"
}

// Manifest is the top-level document: libraries to load, in order, and the
// components to instantiate afterward, also in order.
type Manifest struct {
	Libraries  []string        `yaml:"libraries"`
	Components []ComponentSpec `yaml:"components"`
}

// Parse decodes a manifest document from r.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// Apply loads every library and creates every component against sim, in
// file order. A library load or component creation failure stops
// processing and returns the error immediately; components already created
// are left in place, matching the simulator's own partial-failure posture
// for AddModel/AddService.
func (m *Manifest) Apply(sim *simulator.Simulator) error {
	for _, path := range m.Libraries {
		if err := sim.LoadLibrary(path); err != nil {
			return fmt.Errorf("manifest: load library %q: %w", path, err)
		}
	}
	for _, spec := range m.Components {
		if err := applyComponent(sim, spec); err != nil {
			return fmt.Errorf("manifest: component %q: %w", spec.Name, err)
		}
	}
	return nil
}

func applyComponent(sim *simulator.Simulator, spec ComponentSpec) error {
	id, err := uuid.Parse(spec.Type)
	if err != nil {
		return fmt.Errorf("invalid type uuid %q: %w", spec.Type, err)
	}

	var parent *simulator.Component
	switch spec.Root {
	case "Models", "":
		parent = sim.Models()
	case "Services":
		parent = sim.Services()
	default:
		return fmt.Errorf("unknown root %q (want Models or Services)", spec.Root)
	}

	c, err := sim.CreateInstance(id, spec.Name, spec.Description, parent)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("no factory registered for type %s", spec.Type)
	}

	if spec.Root == "Services" {
		return sim.AddService(c)
	}
	return sim.AddModel(c)
}
