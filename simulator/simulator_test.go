package simulator_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/simulator"
	"github.com/sarchlab/smp/types"
)

func mustComponent(t *testing.T, sim *simulator.Simulator, name string) *simulator.Component {
	t.Helper()
	c, err := simulator.NewComponent(name, "", sim.Models(), sim.TypeRegistry())
	if err != nil {
		t.Fatalf("NewComponent(%q): %v", name, err)
	}
	return c
}

func TestLifecycleAdvancesComponentsThroughConnect(t *testing.T) {
	sim := simulator.New()
	child := mustComponent(t, sim, "sensor")
	if err := sim.AddModel(child); err != nil {
		t.Fatalf("AddModel: %v", err)
	}

	sim.Publish()
	if child.State() != simulator.StatePublishing {
		t.Fatalf("got %v after Publish, want Publishing", child.State())
	}
	sim.Configure()
	if child.State() != simulator.StateConfigured {
		t.Fatalf("got %v after Configure, want Configured", child.State())
	}
	sim.Connect()
	if sim.State() != simulator.StateStandby {
		t.Fatalf("got simulator state %v after Connect, want Standby", sim.State())
	}
	if child.State() != simulator.StateConnected {
		t.Fatalf("got %v after Connect, want Connected", child.State())
	}
}

func TestAddModelDuplicateNameFails(t *testing.T) {
	sim := simulator.New()
	a := mustComponent(t, sim, "dup")
	b := mustComponent(t, sim, "dup")
	if err := sim.AddModel(a); err != nil {
		t.Fatalf("first AddModel: %v", err)
	}
	if err := sim.AddModel(b); err == nil {
		t.Fatalf("expected DuplicateName on the second AddModel with the same name")
	}
}

func TestAddModelWhileExecutingFails(t *testing.T) {
	sim := simulator.New()
	sim.Publish()
	sim.Configure()
	sim.Connect()

	var addErr error
	_, err := sim.Scheduler().AddSimulationTimeEvent(func() {
		addErr = sim.AddModel(mustComponent(t, sim, "lateArrival"))
	}, time.Nanosecond, 0, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	sim.RunFor(10 * time.Nanosecond)

	if addErr == nil {
		t.Fatalf("expected InvalidSimulatorState for AddModel called while Executing")
	}
}

func TestRunForAdvancesSimulationTime(t *testing.T) {
	sim := simulator.New()
	sim.Publish()
	sim.Configure()
	sim.Connect()

	var fired bool
	if _, err := sim.Scheduler().AddSimulationTimeEvent(func() { fired = true }, 5*time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	sim.RunFor(10 * time.Nanosecond)

	if !fired {
		t.Fatalf("expected the scheduled event to fire within RunFor's window")
	}
	if sim.State() != simulator.StateStandby {
		t.Fatalf("expected Standby after RunFor returns, got %v", sim.State())
	}
}

func TestHoldImmediateReturnsToStandby(t *testing.T) {
	sim := simulator.New()
	sim.Publish()
	sim.Configure()
	sim.Connect()

	if _, err := sim.Scheduler().AddSimulationTimeEvent(func() { sim.Hold(true) }, time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	sim.Run()
	if sim.State() != simulator.StateStandby {
		t.Fatalf("got %v, want Standby after an immediate Hold", sim.State())
	}
}

func TestFactoryRegistryRejectsDuplicateUuid(t *testing.T) {
	sim := simulator.New()
	id := uuid.New()
	factory := simulator.Factory(func(name, desc string, parent identity.Named, reg *types.Registry) (*simulator.Component, error) {
		return simulator.NewComponent(name, desc, parent, reg)
	})

	if err := sim.RegisterFactory(id, factory); err != nil {
		t.Fatalf("first RegisterFactory: %v", err)
	}
	if err := sim.RegisterFactory(id, factory); err == nil {
		t.Fatalf("expected DuplicateUuid on re-registering the same UUID")
	}

	c, err := sim.CreateInstance(id, "created", "", sim.Models())
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if c == nil || c.Name() != "created" {
		t.Fatalf("expected CreateInstance to delegate to the registered factory")
	}

	if c, err := sim.CreateInstance(uuid.New(), "nope", "", sim.Models()); err != nil || c != nil {
		t.Fatalf("expected CreateInstance for an unregistered UUID to return (nil, nil)")
	}
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	sim := simulator.New()
	sim.Publish()
	sim.Configure()
	sim.Connect()

	var buf bytes.Buffer
	if err := sim.Store(&buf); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := sim.Restore(&buf); err != nil {
		t.Fatalf("restore: %v", err)
	}
}
