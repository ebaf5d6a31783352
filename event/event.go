// Package event implements the global event manager of spec.md §4.3: a
// name-to-id registry for global (lifecycle) events and an ordered,
// subscribable dispatch list per event id.
package event

import (
	"fmt"
	"sync"

	"github.com/sarchlab/smp/xerrors"
)

// Id names a global event. It has nothing to do with Scheduler event ids
// despite the shared "EventId" vocabulary in spec.md — one numbers
// subscribable global events, the other numbers scheduled dispatches.
type Id int64

// EntryPoint is a nullary callable belonging to a component (spec.md
// GLOSSARY "Entry-point").
type EntryPoint func()

// Standard global event names, pre-registered at construction. EnterState/
// LeaveState synthesize the state-transition pair for each of the ten
// simulator lifecycle states.
const (
	EnterBuilding      = "EnterBuilding"
	LeaveBuilding      = "LeaveBuilding"
	PreSimTimeChange   = "PreSimTimeChange"
	PostSimTimeChange  = "PostSimTimeChange"
	EnterReconnecting  = "EnterReconnecting"
	LeaveReconnecting  = "LeaveReconnecting"
	EnterAborting      = "EnterAborting"
)

// StandardSimulatorStates lists the ten simulator lifecycle state names used
// to synthesize "Enter<State>"/"Leave<State>" global event names.
var StandardSimulatorStates = []string{
	"Building", "Connecting", "Initialising", "Standby", "Executing",
	"Storing", "Restoring", "Reconnecting", "Exiting", "Aborting",
}

// EnterState and LeaveState name the enter/leave event for a lifecycle
// state, e.g. EnterState("Executing") == "EnterExecuting".
func EnterState(state string) string { return "Enter" + state }
func LeaveState(state string) string { return "Leave" + state }

// Subscription is the opaque handle Subscribe returns. It, not the
// EntryPoint value itself, is what Unsubscribe needs: a func value's
// reflected code pointer is shared by every closure compiled from the same
// literal (reflect.Value.Pointer's doc says as much), so two components of
// the same type each subscribing their own bound-method closure to the
// same event would otherwise collide on that shared code pointer. Minting
// a fresh handle per Subscribe call gives every subscription, even two
// built from the same closure literal, a distinct identity.
type Subscription struct{ _ byte } // non-zero size: Go may give distinct zero-size allocations the same address

type subscription struct {
	handle *Subscription
	ep     EntryPoint
}

// Manager is the global event registry and dispatcher.
type Manager struct {
	mu          sync.Mutex
	nextID      Id
	nameToID    map[string]Id
	idToName    map[Id]string
	subscribers map[Id][]subscription
}

// New constructs a Manager with the standard global events pre-registered.
func New() *Manager {
	m := &Manager{
		nameToID:    map[string]Id{},
		idToName:    map[Id]string{},
		subscribers: map[Id][]subscription{},
	}
	m.Register(EnterBuilding)
	m.Register(LeaveBuilding)
	for _, state := range StandardSimulatorStates {
		m.Register(EnterState(state))
		m.Register(LeaveState(state))
	}
	m.Register(PreSimTimeChange)
	m.Register(PostSimTimeChange)
	m.Register(EnterReconnecting)
	m.Register(LeaveReconnecting)
	m.Register(EnterAborting)
	return m
}

// Register returns name's global event id, assigning a fresh one the first
// time name is seen. Subsequent calls with the same name are idempotent.
func (m *Manager) Register(name string) Id {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerLocked(name)
}

func (m *Manager) registerLocked(name string) Id {
	if id, ok := m.nameToID[name]; ok {
		return id
	}
	id := m.nextID
	m.nextID++
	m.nameToID[name] = id
	m.idToName[id] = name
	return id
}

// Lookup resolves a registered event name to its id. It fails with
// InvalidEventName for an empty or unregistered name.
func (m *Manager) Lookup(name string) (Id, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		return 0, xerrors.New(xerrors.InvalidEventName, "<unknown>",
			"Event name must not be empty", "empty event name", nil)
	}
	id, ok := m.nameToID[name]
	if !ok {
		return 0, xerrors.New(xerrors.InvalidEventName, "<unknown>",
			"No event is registered under this name", fmt.Sprintf("%q is not a registered event name", name),
			map[string]any{"name": name})
	}
	return id, nil
}

// Name resolves an id back to its registered name.
func (m *Manager) Name(id Id) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.idToName[id]
	return name, ok
}

func invalidEventId(id Id) error {
	return xerrors.New(xerrors.InvalidEventId, "<unknown>",
		"No event is registered under this id", fmt.Sprintf("event id %d is not registered", id),
		map[string]any{"id": id})
}

// Subscribe appends ep to id's subscriber list and returns a handle
// identifying this specific subscription, for later Unsubscribe. Every
// call mints a new handle, even when ep is built from the same closure
// literal as an earlier subscription to the same id: in Go, unlike the
// bound-method objects spec.md's EntryPoint models, two such closures have
// no reliable shared identity to dedup on, so each Subscribe call is
// always accepted as a logically distinct entry-point.
func (m *Manager) Subscribe(id Id, ep EntryPoint) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.idToName[id]; !ok {
		return nil, invalidEventId(id)
	}
	h := &Subscription{}
	m.subscribers[id] = append(m.subscribers[id], subscription{handle: h, ep: ep})
	return h, nil
}

// Unsubscribe removes the subscription identified by h from id's
// subscriber list. It fails with EntryPointNotSubscribed if h is not a
// handle currently subscribed to id.
func (m *Manager) Unsubscribe(id Id, h *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.idToName[id]; !ok {
		return invalidEventId(id)
	}
	subs := m.subscribers[id]
	for i, s := range subs {
		if s.handle == h {
			m.subscribers[id] = append(subs[:i], subs[i+1:]...)
			return nil
		}
	}
	return xerrors.New(xerrors.EntryPointNotSubscribed, "<unknown>",
		"This entry point is not subscribed to this event",
		fmt.Sprintf("entry point not subscribed to event id %d", id), map[string]any{"id": id})
}

// Emit walks id's subscribers in subscription order, calling each
// synchronously on the calling goroutine.
func (m *Manager) Emit(id Id) error {
	m.mu.Lock()
	if _, ok := m.idToName[id]; !ok {
		m.mu.Unlock()
		return invalidEventId(id)
	}
	subs := append([]subscription(nil), m.subscribers[id]...)
	m.mu.Unlock()

	for _, s := range subs {
		s.ep()
	}
	return nil
}

// EmitByName resolves name and emits it, for callers without a cached id.
func (m *Manager) EmitByName(name string) error {
	id, err := m.Lookup(name)
	if err != nil {
		return err
	}
	return m.Emit(id)
}
