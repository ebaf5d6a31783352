// Package simulator implements the ten-state simulator lifecycle of
// spec.md §4.1: construction, library loading, the models/services
// hierarchy, the factory registry, and the Publish/Configure/Connect/
// Initialise/Run/Hold/Store/Restore/Reconnect/Exit/Abort transitions.
package simulator

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sarchlab/smp/event"
	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/library"
	"github.com/sarchlab/smp/logging"
	"github.com/sarchlab/smp/metrics"
	"github.com/sarchlab/smp/persist"
	"github.com/sarchlab/smp/scheduler"
	"github.com/sarchlab/smp/timekeeper"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

// SimulatorStateKind is one of the ten states of the simulator lifecycle
// (spec.md §3 "Simulator lifecycle state").
type SimulatorStateKind int

const (
	StateBuilding SimulatorStateKind = iota
	StateConnecting
	StateInitialising
	StateStandby
	StateExecuting
	StateStoring
	StateRestoring
	StateReconnecting
	StateExiting
	StateAborting
)

func (s SimulatorStateKind) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateInitialising:
		return "Initialising"
	case StateStandby:
		return "Standby"
	case StateExecuting:
		return "Executing"
	case StateStoring:
		return "Storing"
	case StateRestoring:
		return "Restoring"
	case StateReconnecting:
		return "Reconnecting"
	case StateExiting:
		return "Exiting"
	case StateAborting:
		return "Aborting"
	default:
		return "Building"
	}
}

// Factory constructs a new component instance under parent.
type Factory func(name, desc string, parent identity.Named, reg *types.Registry) (*Component, error)

// Simulator owns the root models/services hierarchy, the type registry, the
// factory registry and the standard services (timekeeper, scheduler, event
// manager), and sequences the ten-state lifecycle.
type Simulator struct {
	mu    sync.Mutex
	state SimulatorStateKind

	registry *types.Registry
	events   *event.Manager
	tk       *timekeeper.TimeKeeper
	sched    *scheduler.Scheduler
	linkReg  *LinkRegistry
	resolver *Resolver

	models   *Component
	services *Component

	factories map[uuid.UUID]Factory

	loader library.Loader
	libs   []*library.Library

	initEPs []func()

	mx  *metrics.Metrics
	log *slog.Logger
}

// New constructs a Simulator in the Building state, with empty Models and
// Services root components and the standard services wired together.
func New() *Simulator {
	reg := types.NewRegistry()
	events := event.New()
	tk := timekeeper.New()
	sched := scheduler.New(tk, events)

	sim := &Simulator{
		state:     StateBuilding,
		registry:  reg,
		events:    events,
		tk:        tk,
		sched:     sched,
		linkReg:   NewLinkRegistry(),
		factories: map[uuid.UUID]Factory{},
		loader:    library.PluginLoader{},
		log:       slog.Default(),
	}
	sim.models, _ = NewComponent("Models", "", nil, reg)
	sim.services, _ = NewComponent("Services", "", nil, reg)
	sim.resolver = NewResolver(sim)
	sched.WithDispatchableQuery(func() bool {
		sim.mu.Lock()
		defer sim.mu.Unlock()
		return sim.state == StateExecuting || sim.state == StateStandby
	})
	return sim
}

// WithMetrics enables Prometheus instrumentation on the simulator and its
// scheduler.
func (s *Simulator) WithMetrics(mx *metrics.Metrics) *Simulator {
	s.mx = mx
	s.sched.WithMetrics(mx)
	return s
}

// WithLoader overrides the library loader (tests substitute a fake).
func (s *Simulator) WithLoader(l library.Loader) *Simulator {
	s.loader = l
	return s
}

// WithLogger routes every slog call the simulator and scheduler make
// through lg, an XsmpLogger.properties-configured logging.Logger, instead
// of slog's process-wide default handler.
func (s *Simulator) WithLogger(lg *logging.Logger) *Simulator {
	s.log = slog.New(lg.SlogHandler())
	s.sched.WithLogger(s.log)
	return s
}

func (s *Simulator) TypeRegistry() *types.Registry   { return s.registry }
func (s *Simulator) EventManager() *event.Manager    { return s.events }
func (s *Simulator) TimeKeeper() *timekeeper.TimeKeeper { return s.tk }
func (s *Simulator) Scheduler() *scheduler.Scheduler  { return s.sched }
func (s *Simulator) LinkRegistry() *LinkRegistry      { return s.linkReg }
func (s *Simulator) Resolver() *Resolver              { return s.resolver }
func (s *Simulator) Logger() *slog.Logger             { return s.log }

func (s *Simulator) State() SimulatorStateKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulator) Models() *Component   { return s.models }
func (s *Simulator) Services() *Component { return s.services }

func invalidSimulatorState(op string, got SimulatorStateKind) error {
	return xerrors.New(xerrors.InvalidSimulatorState, op,
		"Simulator is not in a state that permits this operation",
		fmt.Sprintf("%s is not permitted while the simulator is %s", op, got), nil)
}

// setState transitions the simulator, emitting Leave<old> then Enter<new>
// through the event manager, and updates the simulator-state gauge.
func (s *Simulator) setState(next SimulatorStateKind) {
	prev := s.state
	s.state = next
	if err := s.events.EmitByName(event.LeaveState(prev.String())); err != nil {
		s.log.Warn("LeaveState emission failed", "state", prev, "error", err)
	}
	if err := s.events.EmitByName(event.EnterState(next.String())); err != nil {
		s.log.Warn("EnterState emission failed", "state", next, "error", err)
	}
	s.mx.SetSimulatorState(float64(next))
}

func (s *Simulator) warnWrongState(op string) {
	s.log.Warn("lifecycle transition attempted in the wrong state", "operation", op, "state", s.state.String())
}

// Publish requires Building; walks Models and Services depth-first,
// advancing each component by at most one state (Created→Publishing;
// Publishing→Configured is Configure's job).
func (s *Simulator) Publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBuilding {
		s.warnWrongState("Publish")
		return
	}
	for _, root := range []*Component{s.models, s.services} {
		Walk(root, func(c *Component) {
			if c.state == StateCreated {
				c.advance(StatePublishing)
			}
		})
	}
}

// Configure requires Building; advances every Publishing component to
// Configured.
func (s *Simulator) Configure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBuilding {
		s.warnWrongState("Configure")
		return
	}
	for _, root := range []*Component{s.models, s.services} {
		Walk(root, func(c *Component) {
			if c.state == StatePublishing {
				c.advance(StateConfigured)
			}
		})
	}
}

// Connect requires Building: Building→Connecting, advances every descendant
// through Connected, then Connecting→Initialising, runs the queued init
// entry-points in insertion order, then Initialising→Standby. The zulu worker is started here.
func (s *Simulator) Connect() {
	s.mu.Lock()
	if s.state != StateBuilding {
		s.warnWrongState("Connect")
		s.mu.Unlock()
		return
	}
	s.setState(StateConnecting)
	for _, root := range []*Component{s.models, s.services} {
		Walk(root, func(c *Component) {
			if c.state < StateConnected {
				c.advance(StateConnected)
			}
		})
	}
	s.setState(StateInitialising)
	eps := append([]func(){}, s.initEPs...)
	s.mu.Unlock()

	for _, ep := range eps {
		ep()
	}

	s.mu.Lock()
	s.setState(StateStandby)
	s.mu.Unlock()

	s.sched.StartZuluWorker()
}

// Initialise requires Standby; Standby→Initialising→Standby.
func (s *Simulator) Initialise() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStandby {
		s.warnWrongState("Initialise")
		return
	}
	s.setState(StateInitialising)
	s.setState(StateStandby)
}

// Run requires Standby; Standby→Executing, then drives the scheduler's main
// execution loop until a Hold returns control to the caller.
func (s *Simulator) Run() {
	s.mu.Lock()
	if s.state != StateStandby {
		s.warnWrongState("Run")
		s.mu.Unlock()
		return
	}
	s.setState(StateExecuting)
	s.mu.Unlock()

	s.sched.Run()

	s.mu.Lock()
	if s.state == StateExecuting {
		s.setState(StateStandby)
	}
	s.mu.Unlock()
}

// RunFor requires Standby; schedules a one-shot simulation-time event at
// now+duration that calls Hold(false), then behaves as Run.
func (s *Simulator) RunFor(duration time.Duration) {
	if s.State() != StateStandby {
		s.mu.Lock()
		s.warnWrongState("Run")
		s.mu.Unlock()
		return
	}
	if _, err := s.sched.AddSimulationTimeEvent(func() { s.Hold(false) }, duration, 0, 0); err != nil {
		s.log.Warn("could not schedule Run(duration)'s hold event", "error", err)
		return
	}
	s.Run()
}

// Hold(true) transitions Executing→Standby immediately and notifies the
// scheduler. Hold(false) defers: it subscribes a one-shot entry-point to
// PreSimTimeChange so the scheduler requests a hold at the next time
// advance.
func (s *Simulator) Hold(immediate bool) {
	if immediate {
		s.sched.Hold(true)
		s.mu.Lock()
		if s.state == StateExecuting {
			s.setState(StateStandby)
		}
		s.mu.Unlock()
		return
	}
	id, _ := s.events.Lookup(event.PreSimTimeChange)
	var handle *event.Subscription
	ep := func() {
		s.sched.Hold(true)
		_ = s.events.Unsubscribe(id, handle)
	}
	h, err := s.events.Subscribe(id, ep)
	if err != nil {
		s.log.Warn("could not subscribe deferred hold", "error", err)
		return
	}
	handle = h
}

// Reconnect requires Standby; advances any Created/Publishing/Configured
// descendant of root through Connected.
func (s *Simulator) Reconnect(root *Component) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStandby {
		s.warnWrongState("Reconnect")
		return
	}
	s.setState(StateReconnecting)
	Walk(root, func(c *Component) {
		if c.state < StateConnected {
			c.advance(StateConnected)
		}
	})
	s.setState(StateStandby)
}

// Exit requires Standby; walks all descendants and disconnects any
// Connected component, then stops the zulu worker.
func (s *Simulator) Exit() {
	s.mu.Lock()
	if s.state != StateStandby {
		s.warnWrongState("Exit")
		s.mu.Unlock()
		return
	}
	s.setState(StateExiting)
	for _, root := range []*Component{s.models, s.services} {
		Walk(root, func(c *Component) {
			if c.state == StateConnected {
				c.advance(StateDisconnected)
			}
		})
	}
	s.mu.Unlock()

	s.sched.StopZuluWorker()
	s.unloadLibraries()
}

// Abort is legal from any state; it terminates the simulator without
// running the orderly Exit sequence.
func (s *Simulator) Abort() {
	s.mu.Lock()
	s.setState(StateAborting)
	s.mu.Unlock()
}

// Shutdown implements spec.md's "if the simulator is destructed while
// Executing, it first holds immediately, then exits" rule. Callers invoke
// it from a defer at the top of main, mirroring a C++ destructor.
func (s *Simulator) Shutdown() {
	if s.State() == StateExecuting {
		s.Hold(true)
	}
	if s.State() == StateStandby {
		s.Exit()
	}
}

// AddModel registers c as a child of the root Models component's container
// named "Models" (created on first use, unbounded). It is restricted
// to {Building, Connecting, Standby}; elsewhere it fails with
// InvalidSimulatorState.
func (s *Simulator) AddModel(c *Component) error { return s.addTo(s.models, "Models", c) }

// AddService is AddModel's Services-container counterpart.
func (s *Simulator) AddService(c *Component) error { return s.addTo(s.services, "Services", c) }

func (s *Simulator) addTo(root *Component, containerName string, c *Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBuilding && s.state != StateConnecting && s.state != StateStandby {
		return invalidSimulatorState("AddModel/AddService", s.state)
	}
	var ct *Container
	for _, existing := range root.containers {
		if existing.name == containerName {
			ct = existing
			break
		}
	}
	if ct == nil {
		ct = root.AddContainer(containerName, 0)
	}
	return ct.Add(c)
}

// AddInitEntryPoint queues ep to run, in insertion order, during Connect's
// Initialising phase.
func (s *Simulator) AddInitEntryPoint(ep func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initEPs = append(s.initEPs, ep)
}

// RegisterFactory adds a UUID→factory mapping. A duplicate UUID fails with
// DuplicateUuid.
func (s *Simulator) RegisterFactory(id uuid.UUID, f Factory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.factories[id]; exists {
		return xerrors.New(xerrors.DuplicateUuid, id.String(),
			"A factory is already registered for this UUID",
			"factory UUID "+id.String()+" is already registered", nil)
	}
	s.factories[id] = f
	return nil
}

// CreateInstance delegates to the factory registered for id, returning nil
// if no factory is registered (spec.md §4.1).
func (s *Simulator) CreateInstance(id uuid.UUID, name, desc string, parent identity.Named) (*Component, error) {
	s.mu.Lock()
	f, ok := s.factories[id]
	reg := s.registry
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f(name, desc, parent, reg)
}

// LoadLibrary resolves path via the configured Loader, calls its Initialise
// hook with this simulator and its type registry, and keeps it for ordered
// unload at Exit. A library whose Initialise reports failure is treated the
// same as one missing the symbol: InvalidLibrary.
func (s *Simulator) LoadLibrary(path string) error {
	lib, err := s.loader.Load(path)
	if err != nil {
		return err
	}
	if ok := lib.Initialise(s, s.registry); !ok {
		return xerrors.New(xerrors.InvalidLibrary, path,
			"Library's Initialise hook reported failure",
			"Initialise returned false for "+path, nil)
	}
	s.mu.Lock()
	s.libs = append(s.libs, lib)
	s.mu.Unlock()
	return nil
}

// unloadLibraries calls Finalise on every loaded library in reverse
// insertion order.
func (s *Simulator) unloadLibraries() {
	s.mu.Lock()
	libs := append([]*library.Library{}, s.libs...)
	s.libs = nil
	s.mu.Unlock()

	for i := len(libs) - 1; i >= 0; i-- {
		libs[i].Finalise(s)
	}
}

// persistComponent adapts *Component to persist.Component: Go interface
// satisfaction is structural but not covariant, so the concrete
// *publication.Publication/*Container return types need an explicit
// wrapper to line up with persist's narrower interfaces.
type persistComponent struct{ c *Component }

func (p persistComponent) Name() string                      { return p.c.Name() }
func (p persistComponent) Publication() persist.Publication   { return p.c.Publication() }
func (p persistComponent) Containers() []persist.Container {
	cts := p.c.Containers()
	out := make([]persist.Container, len(cts))
	for i, ct := range cts {
		out[i] = persistContainer{ct}
	}
	return out
}

type persistContainer struct{ ct *Container }

func (p persistContainer) Name() string { return p.ct.Name() }
func (p persistContainer) Components() []persist.Component {
	children := p.ct.Components()
	out := make([]persist.Component, len(children))
	for i, child := range children {
		out[i] = persistComponent{child}
	}
	return out
}

// Store requires Standby; Standby→Storing→Standby. It writes the Models and
// Services hierarchies' persistable state to file as tagged sections.
func (s *Simulator) Store(file io.Writer) error {
	s.mu.Lock()
	if s.state != StateStandby {
		s.warnWrongState("Store")
		s.mu.Unlock()
		return nil
	}
	s.setState(StateStoring)
	s.mu.Unlock()

	var err error
	for _, root := range []*Component{s.models, s.services} {
		if err = persist.Store(file, persistComponent{root}); err != nil {
			break
		}
	}

	s.mu.Lock()
	s.setState(StateStandby)
	s.mu.Unlock()
	return err
}

// Restore requires Standby; Standby→Restoring→Standby. It reads state
// written by Store back into the Models and Services hierarchies,
// validating every tag.
func (s *Simulator) Restore(file io.Reader) error {
	s.mu.Lock()
	if s.state != StateStandby {
		s.warnWrongState("Restore")
		s.mu.Unlock()
		return nil
	}
	s.setState(StateRestoring)
	s.mu.Unlock()

	var err error
	for _, root := range []*Component{s.models, s.services} {
		if err = persist.Restore(file, persistComponent{root}); err != nil {
			break
		}
	}

	s.mu.Lock()
	s.setState(StateStandby)
	s.mu.Unlock()
	return err
}
