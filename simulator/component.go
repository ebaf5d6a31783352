package simulator

import (
	"strconv"

	"github.com/sarchlab/smp/identity"
	"github.com/sarchlab/smp/publication"
	"github.com/sarchlab/smp/types"
	"github.com/sarchlab/smp/xerrors"
)

// ComponentState is one of the five states a component passes through
// monotonically within a run (spec.md §3 "Component lifecycle state").
type ComponentState int

const (
	StateCreated ComponentState = iota
	StatePublishing
	StateConfigured
	StateConnected
	StateDisconnected
)

func (s ComponentState) String() string {
	switch s {
	case StatePublishing:
		return "Publishing"
	case StateConfigured:
		return "Configured"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Created"
	}
}

// Component is one node of the models/services tree: it owns a Publication
// registry, an ordered set of child Containers, and advances through
// ComponentState as the Simulator walks the hierarchy.
type Component struct {
	name   string
	desc   string
	parent identity.Named
	state  ComponentState
	pub    *publication.Publication

	containers []*Container
}

// NewComponent constructs a component named name under parent, with a fresh
// Publication registry resolved through reg. It fails with InvalidObjectName
// if name does not conform to the object-name syntax.
func NewComponent(name, desc string, parent identity.Named, reg *types.Registry) (*Component, error) {
	if err := identity.ValidateName(name); err != nil {
		return nil, err
	}
	c := &Component{name: name, desc: desc, parent: parent, state: StateCreated}
	c.pub = publication.New(c, reg)
	return c, nil
}

func (c *Component) Name() string                      { return c.name }
func (c *Component) Description() string               { return c.desc }
func (c *Component) Parent() identity.Named             { return c.parent }
func (c *Component) State() ComponentState              { return c.state }
func (c *Component) Publication() *publication.Publication { return c.pub }
func (c *Component) Containers() []*Container           { return c.containers }

// AddContainer declares a named child container, bounded by maxCount items
// (0 means unbounded).
func (c *Component) AddContainer(name string, maxCount int) *Container {
	ct := &Container{name: name, parent: c, maxCount: maxCount}
	c.containers = append(c.containers, ct)
	return ct
}

// advance moves the component straight to target, doing nothing if it is
// already at or past target. This is what makes
// Publish/Configure/Connect/Disconnect idempotent when re-applied by
// Walk during a traversal that mixes freshly-added and already-advanced
// components.
func (c *Component) advance(target ComponentState) {
	if c.state < target {
		c.state = target
	}
}

// Container holds one named, ordered collection of child components inside
// a composite component (spec.md §4.1 "traversal primitive").
type Container struct {
	name     string
	parent   *Component
	maxCount int
	children []*Component
}

func (ct *Container) Name() string           { return ct.name }
func (ct *Container) Components() []*Component { return append([]*Component(nil), ct.children...) }

func duplicateComponentName(ct *Container, name string) error {
	return xerrors.New(xerrors.DuplicateName, name,
		"A component with this name already exists in the container",
		"container '"+ct.name+"' already holds a component named '"+name+"'", nil)
}

func containerFull(ct *Container) error {
	return xerrors.New(xerrors.ContainerFull, ct.name,
		"Container has reached its maximum element count",
		"container '"+ct.name+"' is bounded to "+strconv.Itoa(ct.maxCount)+" elements", nil)
}

// Add appends child to the container, in order. It fails with DuplicateName
// if a same-named child already exists and ContainerFull if maxCount (when
// nonzero) has been reached.
func (ct *Container) Add(child *Component) error {
	if ct.maxCount > 0 && len(ct.children) >= ct.maxCount {
		return containerFull(ct)
	}
	for _, existing := range ct.children {
		if existing.name == child.name {
			return duplicateComponentName(ct, child.name)
		}
	}
	ct.children = append(ct.children, child)
	return nil
}

// Walk visits root and every descendant reachable through nested containers
// in depth-first order, applying visit to each. The traversal order is
// deterministic: containers in declaration order, children within a
// container in insertion order.
func Walk(root *Component, visit func(*Component)) {
	visit(root)
	for _, ct := range root.containers {
		for _, child := range ct.children {
			Walk(child, visit)
		}
	}
}
