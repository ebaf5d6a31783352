// Package timekeeper implements the four time bases of spec.md §4.2:
// simulation, mission, epoch and zulu (wall-clock) time.
package timekeeper

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sarchlab/smp/xerrors"
)

// TimeKeeper holds the simulation clock and the mission/epoch offsets
// projected from it. Mission and epoch are independent re-anchorable
// offsets of the same underlying simulation clock — re-anchoring one never
// moves the other. Zulu time is read directly from the OS clock and is
// never set.
type TimeKeeper struct {
	sync.RWMutex

	simulation    time.Duration
	missionStart  time.Duration // MissionTime() == simulation - missionStart
	epochOffset   time.Duration // EpochTime() == simulation - epochOffset
	nextScheduled time.Duration
}

// New constructs a TimeKeeper at simulation time zero with no scheduled
// event pending (NextScheduledEventTime reads the maximum duration until the
// scheduler records one).
func New() *TimeKeeper {
	return &TimeKeeper{nextScheduled: time.Duration(math.MaxInt64)}
}

// SimulationTime returns the current simulation-time reading.
func (tk *TimeKeeper) SimulationTime() time.Duration {
	tk.RLock()
	defer tk.RUnlock()
	return tk.simulation
}

// MissionTime returns the current mission-time reading.
func (tk *TimeKeeper) MissionTime() time.Duration {
	tk.RLock()
	defer tk.RUnlock()
	return tk.simulation - tk.missionStart
}

// EpochTime returns the current epoch-time reading.
func (tk *TimeKeeper) EpochTime() time.Duration {
	tk.RLock()
	defer tk.RUnlock()
	return tk.simulation - tk.epochOffset
}

// ZuluTime returns the current wall-clock reading. It is never settable.
func (tk *TimeKeeper) ZuluTime() time.Time { return time.Now().UTC() }

// NextScheduledEventTime returns the upper bound SetSimulationTime enforces,
// as recorded by the most recent SetNextScheduledEventTime call.
func (tk *TimeKeeper) NextScheduledEventTime() time.Duration {
	tk.RLock()
	defer tk.RUnlock()
	return tk.nextScheduled
}

// SetNextScheduledEventTime records the scheduler's next target simulation
// time, the upper bound future SetSimulationTime calls may advance to.
func (tk *TimeKeeper) SetNextScheduledEventTime(t time.Duration) {
	tk.Lock()
	defer tk.Unlock()
	tk.nextScheduled = t
}

// SetSimulationTime advances the simulation clock to t. It is valid only for
// now <= t <= NextScheduledEventTime(); otherwise it reports
// InvalidSimulationTime and leaves the clock unchanged.
func (tk *TimeKeeper) SetSimulationTime(t time.Duration) error {
	tk.Lock()
	defer tk.Unlock()
	if t < tk.simulation || t > tk.nextScheduled {
		return xerrors.New(xerrors.InvalidSimulationTime, "<unknown>",
			"Simulation time may only advance up to the next scheduled event",
			fmt.Sprintf("cannot set simulation time to %s (current %s, max %s)", t, tk.simulation, tk.nextScheduled),
			map[string]any{"current": tk.simulation, "provided": t, "max": tk.nextScheduled})
	}
	tk.simulation = t
	return nil
}

// SetMissionStartTime assigns the mission clock's anchor directly: the
// simulation-time instant at which MissionTime reads zero. It does not
// change EpochTime.
func (tk *TimeKeeper) SetMissionStartTime(t time.Duration) {
	tk.Lock()
	defer tk.Unlock()
	tk.missionStart = t
}

// SetMissionTime re-anchors the mission clock so it reads t right now. It
// does not change EpochTime.
func (tk *TimeKeeper) SetMissionTime(t time.Duration) {
	tk.Lock()
	defer tk.Unlock()
	tk.missionStart = tk.simulation - t
}

// SetEpochTime re-anchors the epoch clock so it reads t right now. It does
// not change MissionTime.
func (tk *TimeKeeper) SetEpochTime(t time.Duration) {
	tk.Lock()
	defer tk.Unlock()
	tk.epochOffset = tk.simulation - t
}
