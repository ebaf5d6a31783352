package timekeeper_test

import (
	"testing"
	"time"

	"github.com/sarchlab/smp/timekeeper"
)

func TestSetSimulationTimeBoundsCheck(t *testing.T) {
	tk := timekeeper.New()
	tk.SetNextScheduledEventTime(100 * time.Nanosecond)

	if err := tk.SetSimulationTime(50 * time.Nanosecond); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got := tk.SimulationTime(); got != 50*time.Nanosecond {
		t.Fatalf("got %v, want 50ns", got)
	}
	if err := tk.SetSimulationTime(200 * time.Nanosecond); err == nil {
		t.Fatalf("expected InvalidSimulationTime beyond the next scheduled event")
	}
	if err := tk.SetSimulationTime(10 * time.Nanosecond); err == nil {
		t.Fatalf("expected InvalidSimulationTime for moving backwards")
	}
}

func TestMissionAndEpochAreIndependentOffsets(t *testing.T) {
	tk := timekeeper.New()
	tk.SetNextScheduledEventTime(1000 * time.Nanosecond)
	_ = tk.SetSimulationTime(100 * time.Nanosecond)

	tk.SetMissionTime(10 * time.Nanosecond)
	tk.SetEpochTime(500 * time.Nanosecond)

	if got := tk.MissionTime(); got != 10*time.Nanosecond {
		t.Fatalf("got mission %v, want 10ns", got)
	}
	if got := tk.EpochTime(); got != 500*time.Nanosecond {
		t.Fatalf("got epoch %v, want 500ns", got)
	}

	// Re-anchoring mission must not disturb epoch, and vice versa.
	tk.SetMissionStartTime(90 * time.Nanosecond)
	if got := tk.EpochTime(); got != 500*time.Nanosecond {
		t.Fatalf("epoch changed after SetMissionStartTime: got %v, want 500ns", got)
	}
	if got := tk.MissionTime(); got != 10*time.Nanosecond {
		t.Fatalf("got mission %v, want 10ns (100-90)", got)
	}
}
