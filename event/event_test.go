package event_test

import (
	"testing"

	"github.com/sarchlab/smp/event"
)

func TestStandardEventsPreregistered(t *testing.T) {
	m := event.New()
	for _, name := range []string{
		event.EnterBuilding, event.LeaveBuilding,
		event.EnterState("Executing"), event.LeaveState("Executing"),
		event.PreSimTimeChange, event.PostSimTimeChange,
		event.EnterReconnecting, event.LeaveReconnecting, event.EnterAborting,
	} {
		if _, err := m.Lookup(name); err != nil {
			t.Fatalf("expected %q to be pre-registered: %v", name, err)
		}
	}
}

func TestLookupEmptyNameFails(t *testing.T) {
	m := event.New()
	if _, err := m.Lookup(""); err == nil {
		t.Fatalf("expected InvalidEventName for an empty name")
	}
}

func TestSubscribeSameClosureLiteralTwiceYieldsIndependentHandles(t *testing.T) {
	// Two components of the same type each subscribing their own
	// bound-method closure built from the same literal must not collide:
	// each Subscribe call is a logically distinct entry-point.
	m := event.New()
	id, _ := m.Lookup(event.EnterBuilding)
	makeEP := func() event.EntryPoint { return func() {} }

	h1, err := m.Subscribe(id, makeEP())
	if err != nil {
		t.Fatalf("subscribe 1: %v", err)
	}
	h2, err := m.Subscribe(id, makeEP())
	if err != nil {
		t.Fatalf("subscribe 2: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct handles from two Subscribe calls")
	}
	if err := m.Unsubscribe(id, h1); err != nil {
		t.Fatalf("unsubscribe 1: %v", err)
	}
	if err := m.Unsubscribe(id, h2); err != nil {
		t.Fatalf("unsubscribe 2: %v", err)
	}
}

func TestUnsubscribeNotSubscribedFails(t *testing.T) {
	m := event.New()
	id, _ := m.Lookup(event.EnterBuilding)
	if err := m.Unsubscribe(id, &event.Subscription{}); err == nil {
		t.Fatalf("expected EntryPointNotSubscribed")
	}
}

func TestEmitInvokesSubscribersInOrder(t *testing.T) {
	m := event.New()
	id, _ := m.Lookup(event.PreSimTimeChange)
	var order []int
	if _, err := m.Subscribe(id, func() { order = append(order, 1) }); err != nil {
		t.Fatalf("subscribe 1: %v", err)
	}
	if _, err := m.Subscribe(id, func() { order = append(order, 2) }); err != nil {
		t.Fatalf("subscribe 2: %v", err)
	}
	if err := m.Emit(id); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("got %v, want [1 2]", order)
	}
}

func TestEmitInvalidIdFails(t *testing.T) {
	m := event.New()
	if err := m.Emit(event.Id(999999)); err == nil {
		t.Fatalf("expected InvalidEventId")
	}
}
