package manifest_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/manifest"
	"github.com/sarchlab/smp/simulator"
	"github.com/sarchlab/smp/types"
)

func TestParseReadsLibrariesAndComponents(t *testing.T) {
	doc := `
libraries:
  - ./sensors.so
components:
  - name: sensorA
    type: 11111111-1111-1111-1111-111111111111
    root: Models
  - name: logger
    type: 22222222-2222-2222-2222-222222222222
    root: Services
`
	m, err := manifest.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m.Libraries) != 1 || m.Libraries[0] != "./sensors.so" {
		t.Fatalf("got libraries %v", m.Libraries)
	}
	if len(m.Components) != 2 || m.Components[1].Root != "Services" {
		t.Fatalf("got components %+v", m.Components)
	}
}

func TestApplyCreatesComponentsFromRegisteredFactories(t *testing.T) {
	sim := simulator.New()
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	factory := simulator.Factory(func(name, desc string, parent identity.Named, reg *types.Registry) (*simulator.Component, error) {
		return simulator.NewComponent(name, desc, parent, reg)
	})
	if err := sim.RegisterFactory(id, factory); err != nil {
		t.Fatalf("register: %v", err)
	}

	m := &manifest.Manifest{Components: []manifest.ComponentSpec{
		{Name: "sensorA", Type: id.String(), Root: "Models"},
	}}
	if err := m.Apply(sim); err != nil {
		t.Fatalf("apply: %v", err)
	}

	found := false
	for _, ct := range sim.Models().Containers() {
		for _, c := range ct.Components() {
			if c.Name() == "sensorA" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected sensorA to be attached under Models")
	}
}

func TestApplyFailsForUnregisteredType(t *testing.T) {
	sim := simulator.New()
	m := &manifest.Manifest{Components: []manifest.ComponentSpec{
		{Name: "ghost", Type: uuid.New().String(), Root: "Models"},
	}}
	if err := m.Apply(sim); err == nil {
		t.Fatalf("expected an error for an unregistered factory type")
	}
}
