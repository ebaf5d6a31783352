package scheduler_test

import (
	"testing"
	"time"

	"github.com/sarchlab/smp/event"
	"github.com/sarchlab/smp/scheduler"
	"github.com/sarchlab/smp/timekeeper"
)

func newScheduler() (*scheduler.Scheduler, *timekeeper.TimeKeeper) {
	tk := timekeeper.New()
	tk.SetNextScheduledEventTime(1 * time.Hour)
	s := scheduler.New(tk, event.New())
	s.SetTargetSpeed(100.0) // free-running: no wall-clock pacing delay
	return s, tk
}

func TestDispatchOrdersByTimeThenPostOrder(t *testing.T) {
	s, _ := newScheduler()
	var order []string

	if _, err := s.AddSimulationTimeEvent(func() { order = append(order, "ep1") }, 10*time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add ep1: %v", err)
	}
	if _, err := s.AddSimulationTimeEvent(func() { order = append(order, "ep2") }, 10*time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add ep2: %v", err)
	}
	if _, err := s.AddSimulationTimeEvent(func() { order = append(order, "ep3") }, 5*time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add ep3: %v", err)
	}

	s.Run()

	want := []string{"ep3", "ep1", "ep2"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestRemoveEventFromWithinItsOwnDispatchDegradesToOneShot(t *testing.T) {
	s, _ := newScheduler()
	dispatches := 0

	var id scheduler.EventId
	id, err := s.AddSimulationTimeEvent(func() {
		dispatches++
		s.RemoveEvent(id)
	}, 10*time.Nanosecond, 10*time.Nanosecond, -1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	s.Run()
	if dispatches != 1 {
		t.Fatalf("got %d dispatches, want exactly 1", dispatches)
	}
	if next := s.GetNextScheduledEventTime(); next <= 10*time.Nanosecond {
		t.Fatalf("event should not have rescheduled, next=%v", next)
	}
}

func TestAddSimulationTimeEventRejectsNegativeDelta(t *testing.T) {
	s, _ := newScheduler()
	if _, err := s.AddSimulationTimeEvent(func() {}, -1*time.Nanosecond, 0, 0); err == nil {
		t.Fatalf("expected InvalidEventTime for a negative delta")
	}
}

func TestAddSimulationTimeEventRejectsNonPositiveCycleWhenRepeating(t *testing.T) {
	s, _ := newScheduler()
	if _, err := s.AddSimulationTimeEvent(func() {}, time.Nanosecond, 0, -1); err == nil {
		t.Fatalf("expected InvalidCycleTime for repeat!=0 with cycle<=0")
	}
}

func TestMissionTimeEventSkippedWhenBaseMovesPastTarget(t *testing.T) {
	s, tk := newScheduler()
	fired := false
	if _, err := s.AddMissionTimeEvent(func() { fired = true }, 10*time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Re-anchor the mission clock forward so its target is already behind it
	// by the time the scheduler reaches the originally-converted simulation
	// time.
	tk.SetMissionTime(50 * time.Nanosecond)

	s.Run()
	if fired {
		t.Fatalf("expected the stale mission-time event to be skipped, not dispatched")
	}
}

func TestImmediateEventsRunBeforeTimedEvents(t *testing.T) {
	s, _ := newScheduler()
	var order []string
	s.AddImmediateEvent(func() { order = append(order, "immediate") })
	if _, err := s.AddSimulationTimeEvent(func() { order = append(order, "timed") }, time.Nanosecond, 0, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Run()
	if len(order) != 2 || order[0] != "immediate" || order[1] != "timed" {
		t.Fatalf("got %v, want [immediate timed]", order)
	}
}

func TestHoldStopsTheExecutionLoop(t *testing.T) {
	s, _ := newScheduler()
	var ran []int
	for i := 0; i < 3; i++ {
		i := i
		if _, err := s.AddSimulationTimeEvent(func() {
			ran = append(ran, i)
			if i == 0 {
				s.Hold(true)
			}
		}, time.Duration(i+1)*time.Nanosecond, 0, 0); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	s.Run()
	if len(ran) != 1 || ran[0] != 0 {
		t.Fatalf("got %v, want only event 0 to have run before Hold stopped the loop", ran)
	}
}
