// Package scheduler implements the four-timebase event scheduler of
// spec.md §4.2: simulation/mission/epoch events share one time-ordered
// queue (mission and epoch targets are converted to simulation time at
// creation), zulu (wall-clock) events live in their own queue drained by a
// dedicated worker goroutine, and an immediate queue fires between every
// timed dispatch.
package scheduler

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/sarchlab/smp/event"
	"github.com/sarchlab/smp/metrics"
	"github.com/sarchlab/smp/timekeeper"
	"github.com/sarchlab/smp/xerrors"
)

// EventId numbers a scheduled dispatch. -1 means "none"; -2 is reserved for
// the scheduler's internal sentinel hold event.
type EventId int64

// NoEvent is the sentinel meaning "no event".
const NoEvent EventId = -1

const sentinelHoldID EventId = -2

// EntryPoint is a nullary callable belonging to a component.
type EntryPoint = event.EntryPoint

// TimeKind tags which clock an event's time is expressed against.
type TimeKind int

const (
	TimeSimulation TimeKind = iota
	TimeMission
	TimeEpoch
)

func (k TimeKind) String() string {
	switch k {
	case TimeMission:
		return "mission"
	case TimeEpoch:
		return "epoch"
	default:
		return "simulation"
	}
}

type eventRecord struct {
	id      EventId
	ep      EntryPoint
	kind    TimeKind
	target  time.Duration // simulation-time dispatch key
	origin  time.Duration // the originally requested value in kind's own base (Mission/Epoch only); re-validated at dispatch
	cycle   time.Duration
	repeat  int64 // -1 infinite, 0 one-shot, N => N further repeats
	posted  uint64
	removed bool
}

// pqItem is one (time, post-order) entry in a time-ordered queue.
type pqItem struct {
	id     EventId
	target time.Duration
	posted uint64
}

type timeQueue []pqItem

func (q timeQueue) Len() int { return len(q) }
func (q timeQueue) Less(i, j int) bool {
	if q[i].target != q[j].target {
		return q[i].target < q[j].target
	}
	return q[i].posted < q[j].posted
}
func (q timeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *timeQueue) Push(x interface{}) { *q = append(*q, x.(pqItem)) }
func (q *timeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *timeQueue) removeID(id EventId) {
	for i, it := range *q {
		if it.id == id {
			heap.Remove(q, i)
			return
		}
	}
}

// Scheduler drains simulation/mission/epoch-time events in monotonically
// increasing time order, plus a zulu-time queue on a dedicated goroutine and
// an immediate queue drained between every dispatch.
type Scheduler struct {
	mu        sync.Mutex // guards simQueue, immediate, byID, nextID, posted, currentID, targetSpeed, hold*
	simQueue  timeQueue
	immediate []EventId
	byID      map[EventId]*eventRecord
	nextID    EventId
	posted    uint64
	currentID EventId

	holdRequested bool
	holdImmediate bool
	holdWake      chan struct{}

	targetSpeed float64

	zuluMu    sync.Mutex
	zuluCond  *sync.Cond
	zuluQueue timeQueue
	zuluStop  bool
	zuluDone  chan struct{}

	// dispatchable reports whether the zulu worker may currently fire
	// events (spec.md: "only dispatch if the simulator is in Executing or
	// Standby"). Defaults to always-dispatchable when unset.
	dispatchable func() bool

	tk     *timekeeper.TimeKeeper
	events *event.Manager
	log    *slog.Logger
	mx     *metrics.Metrics
}

// New constructs a Scheduler driven by tk and emitting lifecycle events
// through events. Target speed starts at its free-running upper bound.
func New(tk *timekeeper.TimeKeeper, events *event.Manager) *Scheduler {
	s := &Scheduler{
		byID:        map[EventId]*eventRecord{},
		currentID:   NoEvent,
		targetSpeed: 100.0,
		holdWake:    make(chan struct{}, 1),
		zuluDone:    make(chan struct{}),
		tk:          tk,
		events:      events,
		log:         slog.Default(),
	}
	s.zuluCond = sync.NewCond(&s.zuluMu)
	s.installSentinel()
	return s
}

// WithMetrics enables Prometheus instrumentation.
func (s *Scheduler) WithMetrics(mx *metrics.Metrics) *Scheduler {
	s.mx = mx
	return s
}

// WithLogger overrides the logger used for dispatch-panic reporting and
// skipped-event debug lines.
func (s *Scheduler) WithLogger(log *slog.Logger) *Scheduler {
	s.log = log
	return s
}

// WithDispatchableQuery lets the Simulator restrict zulu dispatch to its
// Executing/Standby states, as spec.md requires. Unset, the zulu worker
// always dispatches.
func (s *Scheduler) WithDispatchableQuery(f func() bool) *Scheduler {
	s.dispatchable = f
	return s
}

func (s *Scheduler) installSentinel() {
	s.byID[sentinelHoldID] = &eventRecord{
		id:     sentinelHoldID,
		ep:     func() { s.Hold(true) },
		kind:   TimeSimulation,
		target: time.Duration(math.MaxInt64),
		repeat: 0,
	}
	heap.Push(&s.simQueue, pqItem{id: sentinelHoldID, target: time.Duration(math.MaxInt64), posted: 0})
	s.syncNextScheduledLocked()
}

func (s *Scheduler) nextEventID() EventId {
	id := s.nextID
	s.nextID++
	return id
}

// syncNextScheduledLocked keeps the TimeKeeper's NextScheduledEventTime
// equal to the earliest pending simQueue target, so SetSimulationTime's
// "now <= t <= nextScheduledEventTime" bound (spec.md §4.4) actually tracks
// what the scheduler is about to dispatch instead of sitting frozen at its
// construction-time default. Callers must hold s.mu.
func (s *Scheduler) syncNextScheduledLocked() {
	if len(s.simQueue) == 0 {
		s.tk.SetNextScheduledEventTime(time.Duration(math.MaxInt64))
		return
	}
	s.tk.SetNextScheduledEventTime(s.simQueue[0].target)
}

// SetTargetSpeed clamps speed to [0.01, 100.0] and applies it as the
// divisor on the real-time delay between simulation-time events.
func (s *Scheduler) SetTargetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed < 0.01 {
		speed = 0.01
	}
	if speed > 100.0 {
		speed = 100.0
	}
	s.targetSpeed = speed
}

// AddImmediateEvent allocates an id, appends ep to the immediate queue (run
// between every timed dispatch), and returns the id.
func (s *Scheduler) AddImmediateEvent(ep EntryPoint) EventId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextEventID()
	s.byID[id] = &eventRecord{id: id, ep: ep, kind: TimeSimulation}
	s.immediate = append(s.immediate, id)
	return id
}

func invalidEventTime(detail string) error {
	return xerrors.New(xerrors.InvalidEventTime, "<unknown>",
		"Event target time must not precede the current time", detail, nil)
}

func invalidCycleTime(detail string) error {
	return xerrors.New(xerrors.InvalidCycleTime, "<unknown>",
		"A repeating event's cycle time must be positive", detail, nil)
}

func validateCycle(cycle time.Duration, repeat int64) error {
	if repeat != 0 && cycle <= 0 {
		return invalidCycleTime(fmt.Sprintf("cycle %s is not positive for repeat=%d", cycle, repeat))
	}
	return nil
}

// AddSimulationTimeEvent schedules ep to fire at now+dt. It fails with
// InvalidEventTime if dt is negative and InvalidCycleTime if repeat != 0 but
// cycle <= 0.
func (s *Scheduler) AddSimulationTimeEvent(ep EntryPoint, dt, cycle time.Duration, repeat int64) (EventId, error) {
	if dt < 0 {
		return NoEvent, invalidEventTime(fmt.Sprintf("dt %s is negative", dt))
	}
	if err := validateCycle(cycle, repeat); err != nil {
		return NoEvent, err
	}
	now := s.tk.SimulationTime()
	target := now + dt
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSimLocked(ep, TimeSimulation, target, 0, cycle, repeat), nil
}

// AddMissionTimeEvent schedules ep at mission-time now+dt, converting to an
// equivalent simulation-time target via the TimeKeeper's current offset. The
// originally requested mission-time value is retained and re-checked at
// dispatch in case the mission anchor moves before then.
func (s *Scheduler) AddMissionTimeEvent(ep EntryPoint, dt, cycle time.Duration, repeat int64) (EventId, error) {
	if dt < 0 {
		return NoEvent, invalidEventTime(fmt.Sprintf("dt %s is negative", dt))
	}
	if err := validateCycle(cycle, repeat); err != nil {
		return NoEvent, err
	}
	origin := s.tk.MissionTime() + dt
	target := s.tk.SimulationTime() + dt
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSimLocked(ep, TimeMission, target, origin, cycle, repeat), nil
}

// AddEpochTimeEvent is AddMissionTimeEvent's epoch-time counterpart.
func (s *Scheduler) AddEpochTimeEvent(ep EntryPoint, dt, cycle time.Duration, repeat int64) (EventId, error) {
	if dt < 0 {
		return NoEvent, invalidEventTime(fmt.Sprintf("dt %s is negative", dt))
	}
	if err := validateCycle(cycle, repeat); err != nil {
		return NoEvent, err
	}
	origin := s.tk.EpochTime() + dt
	target := s.tk.SimulationTime() + dt
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSimLocked(ep, TimeEpoch, target, origin, cycle, repeat), nil
}

func (s *Scheduler) insertSimLocked(ep EntryPoint, kind TimeKind, target, origin, cycle time.Duration, repeat int64) EventId {
	id := s.nextEventID()
	s.posted++
	r := &eventRecord{id: id, ep: ep, kind: kind, target: target, origin: origin, cycle: cycle, repeat: repeat, posted: s.posted}
	s.byID[id] = r
	heap.Push(&s.simQueue, pqItem{id: id, target: target, posted: r.posted})
	s.syncNextScheduledLocked()
	return id
}

// AddZuluTimeEvent schedules ep at wall-clock now+dt and wakes the zulu
// worker.
func (s *Scheduler) AddZuluTimeEvent(ep EntryPoint, dt, cycle time.Duration, repeat int64) (EventId, error) {
	if dt < 0 {
		return NoEvent, invalidEventTime(fmt.Sprintf("dt %s is negative", dt))
	}
	if err := validateCycle(cycle, repeat); err != nil {
		return NoEvent, err
	}
	target := time.Duration(time.Now().UnixNano()) + dt

	s.mu.Lock()
	id := s.nextEventID()
	s.posted++
	r := &eventRecord{id: id, ep: ep, kind: TimeSimulation, target: target, cycle: cycle, repeat: repeat, posted: s.posted}
	s.byID[id] = r
	posted := r.posted
	s.mu.Unlock()

	s.zuluMu.Lock()
	heap.Push(&s.zuluQueue, pqItem{id: id, target: target, posted: posted})
	s.zuluMu.Unlock()
	s.zuluCond.Signal()
	return id, nil
}

// GetCurrentEventId returns the id of the event currently dispatching, or
// NoEvent outside of dispatch.
func (s *Scheduler) GetCurrentEventId() EventId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// GetNextScheduledEventTime returns the simulation time of the earliest
// pending simulation/mission/epoch event, or math.MaxInt64 ns if none is
// pending (only the sentinel hold event remains).
func (s *Scheduler) GetNextScheduledEventTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.simQueue) == 0 {
		return time.Duration(math.MaxInt64)
	}
	return s.simQueue[0].target
}

// RemoveEvent removes id. If id is the event currently dispatching, it is
// instead degraded to a one-shot (repeat set to 0) so it will not
// reschedule after the in-flight call returns.
func (s *Scheduler) RemoveEvent(id EventId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return
	}
	if id == s.currentID {
		r.repeat = 0
		return
	}
	r.removed = true
	s.simQueue.removeID(id)
	s.syncNextScheduledLocked()
	delete(s.byID, id)
	for i, pending := range s.immediate {
		if pending == id {
			s.immediate = append(s.immediate[:i], s.immediate[i+1:]...)
			break
		}
	}
}

// SetEventSimulationTime re-inserts id at a new simulation-time target,
// silently discarding it if the new time has already passed.
func (s *Scheduler) SetEventSimulationTime(id EventId, t time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return
	}
	now := s.tk.SimulationTime()
	s.simQueue.removeID(id)
	if t < now {
		delete(s.byID, id)
		s.syncNextScheduledLocked()
		return
	}
	r.kind, r.target, r.origin = TimeSimulation, t, 0
	heap.Push(&s.simQueue, pqItem{id: id, target: t, posted: r.posted})
	s.syncNextScheduledLocked()
}

// SetEventCycleTime updates id's cycle time, re-validating cycle>0 if the
// event currently repeats.
func (s *Scheduler) SetEventCycleTime(id EventId, cycle time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil
	}
	if err := validateCycle(cycle, r.repeat); err != nil {
		return err
	}
	r.cycle = cycle
	return nil
}

// SetEventRepeat updates id's repeat counter, re-validating cycle>0 if the
// new repeat value requires cycling.
func (s *Scheduler) SetEventRepeat(id EventId, repeat int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil
	}
	if err := validateCycle(r.cycle, repeat); err != nil {
		return err
	}
	r.repeat = repeat
	return nil
}

// Hold requests the execution loop stop. immediate=true stops at the next
// suspension or inter-event check; immediate=false installs a one-shot hold
// at the next PreSimTimeChange.
func (s *Scheduler) Hold(immediate bool) {
	s.mu.Lock()
	s.holdRequested = true
	if immediate {
		s.holdImmediate = true
	}
	s.mu.Unlock()
	select {
	case s.holdWake <- struct{}{}:
	default:
	}
}

func safeInvoke(log *slog.Logger, sender string, ep EntryPoint) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("entry point panicked during dispatch", "sender", sender, "recovered", r)
		}
	}()
	ep()
}

// Run drains the immediate queue, then dispatches simulation/mission/epoch
// events in ascending time order until a Hold is observed or the queue is
// empty. Once every other event has run, the sentinel hold event at
// math.MaxInt64 is dispatched like any other and supplies that Hold.
func (s *Scheduler) Run() {
	s.drainImmediate()
	for {
		s.mu.Lock()
		if s.holdImmediate {
			s.holdRequested, s.holdImmediate = false, false
			s.mu.Unlock()
			return
		}
		if len(s.simQueue) == 0 {
			s.mu.Unlock()
			return
		}
		target := s.simQueue[0].target
		s.mu.Unlock()

		if err := s.events.EmitByName(event.PreSimTimeChange); err != nil {
			s.log.Warn("PreSimTimeChange emission failed", "error", err)
		}

		s.mu.Lock()
		if s.holdRequested {
			s.holdRequested, s.holdImmediate = false, false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.paceTo(target)

		if err := s.tk.SetSimulationTime(target); err != nil {
			s.log.Warn("scheduler could not advance simulation time", "error", err, "target", target)
			s.mu.Lock()
			s.simQueue.removeID(s.simQueue[0].id)
			s.mu.Unlock()
			continue
		}
		if err := s.events.EmitByName(event.PostSimTimeChange); err != nil {
			s.log.Warn("PostSimTimeChange emission failed", "error", err)
		}

		s.dispatchAt(target)
		s.drainImmediate()

		s.mu.Lock()
		hold := s.holdImmediate
		if hold {
			s.holdRequested, s.holdImmediate = false, false
		}
		s.mu.Unlock()
		if hold {
			return
		}
	}
}

// paceTo sleeps until target should fire under the current target speed,
// wakeable early by Hold.
func (s *Scheduler) paceTo(target time.Duration) {
	s.mu.Lock()
	now := s.tk.SimulationTime()
	speed := s.targetSpeed
	s.mu.Unlock()

	delta := target - now
	if delta <= 0 || speed >= 100.0 {
		return
	}
	wallDelay := time.Duration(float64(delta) / speed)
	start := time.Now()
	timer := time.NewTimer(wallDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.holdWake:
	}
	s.mx.SetWallClockDrift(time.Since(start).Seconds() - wallDelay.Seconds())
}

// dispatchAt executes, in posted order, every event whose target equals t,
// swapping the pending set aside first so events posted during this batch's
// dispatch are observed only on Run's next iteration.
func (s *Scheduler) dispatchAt(t time.Duration) {
	s.mu.Lock()
	var batch []EventId
	for len(s.simQueue) > 0 && s.simQueue[0].target == t {
		item := heap.Pop(&s.simQueue).(pqItem)
		batch = append(batch, item.id)
	}
	s.syncNextScheduledLocked()
	s.mu.Unlock()

	for _, id := range batch {
		s.mu.Lock()
		r, ok := s.byID[id]
		if !ok || r.removed {
			s.mu.Unlock()
			continue
		}
		s.currentID = id
		s.mu.Unlock()

		skip := false
		if r.kind == TimeMission && s.tk.MissionTime() > r.origin {
			skip = true
		}
		if r.kind == TimeEpoch && s.tk.EpochTime() > r.origin {
			skip = true
		}
		if !skip {
			sender := fmt.Sprintf("event:%d", id)
			safeInvoke(s.log, sender, r.ep)
			s.mx.IncDispatched(r.kind.String())
		} else {
			s.log.Debug("skipped stale mission/epoch event, base moved past target",
				"id", id, "kind", r.kind.String())
		}

		s.mu.Lock()
		s.currentID = NoEvent
		r, ok = s.byID[id]
		if ok && !r.removed {
			if r.repeat == 0 {
				delete(s.byID, id)
			} else {
				if r.repeat > 0 {
					r.repeat--
				}
				r.target += r.cycle
				s.posted++
				r.posted = s.posted
				heap.Push(&s.simQueue, pqItem{id: id, target: r.target, posted: r.posted})
				s.syncNextScheduledLocked()
			}
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) drainImmediate() {
	for {
		s.mu.Lock()
		if len(s.immediate) == 0 {
			s.mu.Unlock()
			return
		}
		id := s.immediate[0]
		s.immediate = s.immediate[1:]
		r, ok := s.byID[id]
		if ok {
			delete(s.byID, id)
		}
		s.mu.Unlock()
		if ok && !r.removed {
			safeInvoke(s.log, fmt.Sprintf("event:%d", id), r.ep)
		}
	}
}

// StartZuluWorker launches the dedicated goroutine that drains zulu-time
// events, gated by the dispatchable query.
func (s *Scheduler) StartZuluWorker() {
	go s.zuluLoop()
}

// StopZuluWorker terminates the zulu worker and waits for it to exit.
func (s *Scheduler) StopZuluWorker() {
	s.zuluMu.Lock()
	s.zuluStop = true
	s.zuluMu.Unlock()
	s.zuluCond.Signal()
	<-s.zuluDone
}

func (s *Scheduler) zuluLoop() {
	defer close(s.zuluDone)
	for {
		s.zuluMu.Lock()
		for !s.zuluStop && (len(s.zuluQueue) == 0 || s.zuluQueue[0].target > time.Duration(time.Now().UnixNano())) {
			if len(s.zuluQueue) == 0 {
				s.zuluCond.Wait()
				continue
			}
			wait := s.zuluQueue[0].target - time.Duration(time.Now().UnixNano())
			s.zuluMu.Unlock()
			if wait > 0 {
				time.Sleep(minDuration(wait, 50*time.Millisecond))
			}
			s.zuluMu.Lock()
			if s.zuluStop {
				break
			}
		}
		if s.zuluStop {
			s.zuluMu.Unlock()
			return
		}
		var batch []EventId
		for len(s.zuluQueue) > 0 && s.zuluQueue[0].target <= time.Duration(time.Now().UnixNano()) {
			batch = append(batch, heap.Pop(&s.zuluQueue).(pqItem).id)
		}
		s.zuluMu.Unlock()

		if s.dispatchable != nil && !s.dispatchable() {
			continue
		}
		for _, id := range batch {
			s.mu.Lock()
			r, ok := s.byID[id]
			s.mu.Unlock()
			if !ok || r.removed {
				continue
			}
			safeInvoke(s.log, fmt.Sprintf("event:%d", id), r.ep)
			s.mx.IncDispatched("zulu")

			if r.repeat == 0 {
				s.mu.Lock()
				delete(s.byID, id)
				s.mu.Unlock()
				continue
			}
			if r.repeat > 0 {
				r.repeat--
			}
			r.target += r.cycle
			s.zuluMu.Lock()
			heap.Push(&s.zuluQueue, pqItem{id: id, target: r.target, posted: r.posted})
			s.zuluMu.Unlock()
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
