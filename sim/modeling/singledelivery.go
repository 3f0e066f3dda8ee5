package modeling

import (
	"fmt"
	"sync"

	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/timing"
)

// Committer is implemented by single-delivery components to take the value a
// key received in the current tick.
type Committer interface {
	Commit(now timing.Time, k Key, source Address, value any) error
}

// Blanker is implemented by single-delivery components that want to know
// which keys received nothing in the current tick.
type Blanker interface {
	Blank(now timing.Time, k Key) error
}

// SingleDeliveryComponent is a component that accepts at most one value per
// target key per tick. Deliveries are buffered during the tick; the buffer is
// cleared at the start of Prepare and committed during Update, before the
// owner's own Update runs.
type SingleDeliveryComponent struct {
	*ComponentBase

	owner any

	lock         sync.Mutex
	buffer       map[Key]Delivery
	reportBlanks bool
}

// NewSingleDeliveryComponent creates a single-delivery component. The owner
// receives Commit and, if enabled, Blank calls, plus the regular phase
// behaviors except Receive.
func NewSingleDeliveryComponent(
	name string,
	owner any,
	sourceKeys, targetKeys []Key,
) *SingleDeliveryComponent {
	c := &SingleDeliveryComponent{
		owner:  owner,
		buffer: make(map[Key]Delivery),
	}

	c.ComponentBase = NewComponentBase(
		name, singleDeliveryPhases{c}, sourceKeys, targetKeys)

	if c.owner == nil {
		c.owner = c
	}

	return c
}

// SetReportBlanks decides whether the owner's Blank is called for target keys
// that received nothing in a tick.
func (c *SingleDeliveryComponent) SetReportBlanks(report bool) {
	c.lock.Lock()
	c.reportBlanks = report
	c.lock.Unlock()
}

// Pending returns what the key received so far in the current tick.
func (c *SingleDeliveryComponent) Pending(k Key) (Delivery, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	d, found := c.buffer[k]

	return d, found
}

func (c *SingleDeliveryComponent) clear() {
	c.lock.Lock()
	c.buffer = make(map[Key]Delivery)
	c.lock.Unlock()
}

func (c *SingleDeliveryComponent) store(d Delivery) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if prev, found := c.buffer[d.Target]; found {
		return fmt.Errorf("%s: deliver %s to %s, already received from %s: %w",
			c.Name(), d.Source, d.Target, prev.Source, ErrDuplicateDelivery)
	}

	c.buffer[d.Target] = d

	return nil
}

func (c *SingleDeliveryComponent) commit(now timing.Time) error {
	c.lock.Lock()
	buffer := c.buffer
	reportBlanks := c.reportBlanks
	c.lock.Unlock()

	committer, canCommit := c.owner.(Committer)
	blanker, canBlank := c.owner.(Blanker)

	for _, k := range c.TargetKeys() {
		d, received := buffer[k]

		var err error

		switch {
		case received && canCommit:
			err = committer.Commit(now, k, d.Source, d.Value)
		case !received && reportBlanks && canBlank:
			err = blanker.Blank(now, k)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// singleDeliveryPhases is the owner the embedded ComponentBase sees. It keeps
// the buffering steps out of the method set of the concrete component so that
// the concrete component can still define its own Prepare or Update.
type singleDeliveryPhases struct {
	c *SingleDeliveryComponent
}

func (p singleDeliveryPhases) hookDomain() hooking.Hookable {
	if h, ok := p.c.owner.(hooking.Hookable); ok {
		return h
	}

	return p.c
}

func (p singleDeliveryPhases) Prepare(now timing.Time) error {
	p.c.clear()

	if o, ok := p.c.owner.(Preparer); ok {
		return o.Prepare(now)
	}

	return p.c.PullBorders(now)
}

func (p singleDeliveryPhases) Calculate(now timing.Time) error {
	if o, ok := p.c.owner.(Calculator); ok {
		return o.Calculate(now)
	}

	return nil
}

func (p singleDeliveryPhases) Update(now timing.Time) error {
	if err := p.c.commit(now); err != nil {
		return err
	}

	if o, ok := p.c.owner.(Updater); ok {
		return o.Update(now)
	}

	return nil
}

func (p singleDeliveryPhases) CleanUp(now timing.Time) error {
	if o, ok := p.c.owner.(CleanUpper); ok {
		return o.CleanUp(now)
	}

	return nil
}

func (p singleDeliveryPhases) HandlePhase(now timing.Time) error {
	if o, ok := p.c.owner.(PhaseHandler); ok {
		return o.HandlePhase(now)
	}

	return nil
}

func (p singleDeliveryPhases) Receive(target Key, source Address, value any) error {
	return p.c.store(Delivery{Target: target, Source: source, Value: value})
}
