// Package modeling defines the components of a phased simulation and how
// they exchange data.
package modeling

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/naming"
	"github.com/sarchlab/phasesim/sim/timing"
)

// A Component is an element that is being simulated.
type Component interface {
	naming.Named
	hooking.Hookable

	// SourceKeys lists the keys that others can read from the component.
	SourceKeys() []Key

	// TargetKeys lists the keys that the component accepts deliveries on.
	TargetKeys() []Key

	HasSourceKey(k Key) bool
	HasTargetKey(k Key) bool

	// Read returns the current value of a source key. It must not change the
	// component and must be safe to call while the component handles a phase.
	Read(k Key) (any, bool)

	// Deliver hands a value that came from source to the target key.
	Deliver(target Key, source Address, value any) error

	AttachBorder(b Border)
	DetachBorder(b Border)
	Borders() []Border

	// Dispatch lets the component handle the phase of now.
	Dispatch(now timing.Time) error
}

// A Delivery is one value that a border routes to a target key.
type Delivery struct {
	Target Key
	Source Address
	Value  any
}

// A Border provides the data that flows into a component.
type Border interface {
	// Query reads, fresh, every value routed to the destination component.
	Query(dest Component) ([]Delivery, error)
}

// Preparer is implemented by components that replace the default Prepare
// behavior, which pulls data from the attached borders.
type Preparer interface {
	Prepare(now timing.Time) error
}

// Calculator is implemented by components that act in the Calculate phase.
type Calculator interface {
	Calculate(now timing.Time) error
}

// Updater is implemented by components that act in the Update phase.
type Updater interface {
	Update(now timing.Time) error
}

// CleanUpper is implemented by components that act in the CleanUp phase.
type CleanUpper interface {
	CleanUp(now timing.Time) error
}

// PhaseHandler is implemented by components that run on a custom phase cycle.
// It receives every phase that is not one of the four standard phases.
type PhaseHandler interface {
	HandlePhase(now timing.Time) error
}

// Receiver is implemented by components that accept deliveries. Receive is
// only called after the delivery passed validation.
type Receiver interface {
	Receive(target Key, source Address, value any) error
}

type hookDomainProvider interface {
	hookDomain() hooking.Hookable
}

// ComponentBase implements Component. Concrete components embed it and pass
// themselves as the owner, the same way a ticking component passes itself as
// the ticker. ComponentBase finds the phase behaviors of the owner through
// the Preparer, Calculator, Updater, CleanUpper, PhaseHandler, and Receiver
// interfaces.
type ComponentBase struct {
	hooking.HookableBase
	naming.NamedBase

	owner   any
	sources keySet
	targets keySet

	valueLock sync.RWMutex
	values    map[Key]any

	policyLock sync.RWMutex
	nonNil     map[Key]bool
	types      map[Key]reflect.Type

	borderLock sync.RWMutex
	borders    []Border
}

// NewComponentBase creates a new ComponentBase. It panics if the name or one
// of the keys is invalid, or if a key is declared twice.
func NewComponentBase(
	name string,
	owner any,
	sourceKeys, targetKeys []Key,
) *ComponentBase {
	c := &ComponentBase{
		NamedBase: naming.MakeNamedBase(name),
		owner:     owner,
		sources:   makeKeySet("source", sourceKeys),
		targets:   makeKeySet("target", targetKeys),
		values:    make(map[Key]any),
		nonNil:    make(map[Key]bool),
		types:     make(map[Key]reflect.Type),
	}

	if c.owner == nil {
		c.owner = c
	}

	return c
}

// SourceKeys lists the declared source keys in declaration order.
func (c *ComponentBase) SourceKeys() []Key {
	return c.sources.list()
}

// TargetKeys lists the declared target keys in declaration order.
func (c *ComponentBase) TargetKeys() []Key {
	return c.targets.list()
}

// HasSourceKey tells if the key is a declared source key.
func (c *ComponentBase) HasSourceKey(k Key) bool {
	return c.sources.has(k)
}

// HasTargetKey tells if the key is a declared target key.
func (c *ComponentBase) HasTargetKey(k Key) bool {
	return c.targets.has(k)
}

// Expose publishes the value that Read returns for a source key.
func (c *ComponentBase) Expose(k Key, value any) {
	if !c.sources.has(k) {
		panic(fmt.Sprintf(
			"component %s does not declare source key %s", c.Name(), k))
	}

	c.valueLock.Lock()
	c.values[k] = value
	c.valueLock.Unlock()
}

// Read returns the last exposed value of a source key.
func (c *ComponentBase) Read(k Key) (any, bool) {
	if !c.sources.has(k) {
		return nil, false
	}

	c.valueLock.RLock()
	defer c.valueLock.RUnlock()

	v, found := c.values[k]

	return v, found
}

// RequireNonNil makes deliveries of nil to the keys fail.
func (c *ComponentBase) RequireNonNil(keys ...Key) {
	c.policyLock.Lock()
	defer c.policyLock.Unlock()

	for _, k := range keys {
		c.targetKeyMustBeDeclared(k)
		c.nonNil[k] = true
	}
}

// RequireType makes deliveries to the key fail unless the value can be
// assigned to the type of sample. Nil deliveries are governed by
// RequireNonNil only.
func (c *ComponentBase) RequireType(k Key, sample any) {
	if sample == nil {
		panic("sample value must not be nil")
	}

	c.policyLock.Lock()
	defer c.policyLock.Unlock()

	c.targetKeyMustBeDeclared(k)
	c.types[k] = reflect.TypeOf(sample)
}

func (c *ComponentBase) targetKeyMustBeDeclared(k Key) {
	if !c.targets.has(k) {
		panic(fmt.Sprintf(
			"component %s does not declare target key %s", c.Name(), k))
	}
}

// Deliver validates the delivery and forwards it to the owner's Receiver.
// Deliveries to owners that do not implement Receiver are validated and then
// dropped.
func (c *ComponentBase) Deliver(target Key, source Address, value any) error {
	if err := c.validateDelivery(target, value); err != nil {
		return fmt.Errorf("%s: deliver %s to %s: %w",
			c.Name(), source, target, err)
	}

	r, ok := c.owner.(Receiver)
	if !ok {
		return nil
	}

	return r.Receive(target, source, value)
}

func (c *ComponentBase) validateDelivery(target Key, value any) error {
	if !c.targets.has(target) {
		return ErrUndeclaredKey
	}

	c.policyLock.RLock()
	defer c.policyLock.RUnlock()

	if value == nil {
		if c.nonNil[target] {
			return ErrNilValue
		}

		return nil
	}

	t, typed := c.types[target]
	if typed && !reflect.TypeOf(value).AssignableTo(t) {
		return fmt.Errorf("%w: got %T, want %s", ErrValueType, value, t)
	}

	return nil
}

// AttachBorder makes the component pull data from the border. Attaching the
// same border twice has no effect.
func (c *ComponentBase) AttachBorder(b Border) {
	c.borderLock.Lock()
	defer c.borderLock.Unlock()

	for _, existing := range c.borders {
		if existing == b {
			return
		}
	}

	c.borders = append(c.borders, b)
}

// DetachBorder stops the component from pulling data from the border.
func (c *ComponentBase) DetachBorder(b Border) {
	c.borderLock.Lock()
	defer c.borderLock.Unlock()

	for i, existing := range c.borders {
		if existing == b {
			c.borders = append(c.borders[:i:i], c.borders[i+1:]...)
			return
		}
	}
}

// Borders returns the attached borders in attach order.
func (c *ComponentBase) Borders() []Border {
	c.borderLock.RLock()
	defer c.borderLock.RUnlock()

	out := make([]Border, len(c.borders))
	copy(out, c.borders)

	return out
}

// PullBorders queries every attached border and delivers what they return.
// It is the default Prepare behavior; components that implement Preparer can
// call it themselves.
func (c *ComponentBase) PullBorders(_ timing.Time) error {
	self := c.self()

	for _, b := range c.Borders() {
		deliveries, err := b.Query(self)
		if err != nil {
			return err
		}

		for _, d := range deliveries {
			err = self.Deliver(d.Target, d.Source, d.Value)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Dispatch runs the owner's behavior for the phase of now, surrounded by the
// BeforePhase and AfterPhase hooks.
func (c *ComponentBase) Dispatch(now timing.Time) error {
	ctx := hooking.HookCtx{
		Domain: c.domain(),
		Pos:    hooking.HookPosBeforePhase,
		Item:   now,
		Detail: now.Phase,
	}
	c.InvokeHook(ctx)

	err := c.handlePhase(now)

	ctx.Pos = hooking.HookPosAfterPhase
	c.InvokeHook(ctx)

	return err
}

func (c *ComponentBase) handlePhase(now timing.Time) error {
	switch now.Phase {
	case timing.PhasePrepare:
		if p, ok := c.owner.(Preparer); ok {
			return p.Prepare(now)
		}

		return c.PullBorders(now)
	case timing.PhaseCalculate:
		if p, ok := c.owner.(Calculator); ok {
			return p.Calculate(now)
		}
	case timing.PhaseUpdate:
		if p, ok := c.owner.(Updater); ok {
			return p.Update(now)
		}
	case timing.PhaseCleanUp:
		if p, ok := c.owner.(CleanUpper); ok {
			return p.CleanUp(now)
		}
	default:
		if p, ok := c.owner.(PhaseHandler); ok {
			return p.HandlePhase(now)
		}
	}

	return nil
}

// self returns the component that borders should see, which is the owner
// whenever the owner embeds the base.
func (c *ComponentBase) self() Component {
	if p, ok := c.owner.(hookDomainProvider); ok {
		if comp, ok := p.hookDomain().(Component); ok {
			return comp
		}
	}

	if comp, ok := c.owner.(Component); ok {
		return comp
	}

	return c
}

func (c *ComponentBase) domain() hooking.Hookable {
	return c.self()
}
