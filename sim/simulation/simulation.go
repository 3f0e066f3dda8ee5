// Package simulation drives a set of components through the phases of a
// clock.
//
// A Simulation owns one worker goroutine, started by Init. The worker runs
// ticks while the simulation is Running or Stepping. Within a tick, every
// component handles a phase before any component handles the next one.
package simulation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phasesim/sim/id"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/timing"
)

// A Simulation coordinates a clock, a set of components, and a worker
// goroutine that is controlled through a run-state machine.
type Simulation struct {
	id    string
	clock *timing.Clock
	log   *logrus.Entry

	stateLock sync.Mutex
	stateCond *sync.Cond
	state     State
	tickDelay time.Duration
	err       error

	pendingStates []State
	delivering    bool

	compLock   sync.RWMutex
	registry   *id.Registry[modeling.Component]
	components []modeling.Component

	listenerLock sync.RWMutex
	listeners    []Listener

	started    atomic.Bool
	doneOnce   sync.Once
	done       chan struct{}
	workerDone chan struct{}
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Clock returns the clock of the simulation. Only the worker advances it.
func (s *Simulation) Clock() *timing.Clock {
	return s.clock
}

// Now returns the current time.
func (s *Simulation) Now() timing.Time {
	return s.clock.Now()
}

// State returns the current run-state.
func (s *Simulation) State() State {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.state
}

// Err returns the error that stopped the worker, if any.
func (s *Simulation) Err() error {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.err
}

// Done returns a channel that is closed when the simulation finishes.
func (s *Simulation) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the simulation finishes, the worker has stopped, and
// every state change has been delivered to the listeners. It returns the
// error that stopped the worker, or the context's error. Listeners must not
// call Wait.
func (s *Simulation) Wait(ctx context.Context) error {
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.started.Load() {
		select {
		case <-s.workerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.stateLock.Lock()
	for s.delivering || len(s.pendingStates) > 0 {
		s.stateCond.Wait()
	}
	s.stateLock.Unlock()

	return s.Err()
}

// Init starts the worker. The simulation becomes Ready.
func (s *Simulation) Init() error {
	if err := s.transition("init", StateReady); err != nil {
		return err
	}

	s.started.Store(true)
	go s.work()

	return nil
}

// Step makes the worker execute one tick and then return to Ready.
func (s *Simulation) Step() error {
	return s.transition("step", StateStepping)
}

// Run makes the worker execute ticks until paused or finished.
func (s *Simulation) Run() error {
	return s.transition("run", StateRunning)
}

// Pause stops a running simulation after the current tick. Only a Running
// simulation can be paused; a step always completes its tick.
func (s *Simulation) Pause() error {
	running := StateRunning
	return s.transitionFrom("pause", &running, StateReady)
}

// Finish ends the simulation. A tick in progress is completed first, but a
// pending tick delay is abandoned. Finished is terminal.
func (s *Simulation) Finish() error {
	return s.transition("finish", StateFinished)
}

func (s *Simulation) transition(op string, to State) error {
	return s.transitionFrom(op, nil, to)
}

// transitionFrom changes the state to the target state. If expected is not
// nil, the transition only happens when the current state is *expected.
func (s *Simulation) transitionFrom(op string, expected *State, to State) error {
	s.stateLock.Lock()

	from := s.state
	if expected != nil && from != *expected {
		s.stateLock.Unlock()
		return fmt.Errorf("%s: %s to %s: %w", op, from, to, ErrIllegalTransition)
	}

	if !from.CanTransitionTo(to) {
		s.stateLock.Unlock()
		return fmt.Errorf("%s: %s to %s: %w", op, from, to, ErrIllegalTransition)
	}

	s.state = to
	s.pendingStates = append(s.pendingStates, to)
	s.stateCond.Broadcast()
	s.stateLock.Unlock()

	if to == StateFinished {
		s.doneOnce.Do(func() { close(s.done) })
	}

	s.log.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Info(op)

	s.deliverStateChanges()

	return nil
}

// deliverStateChanges notifies the listeners of the queued state changes in
// the order they happened. One goroutine delivers at a time. A goroutine that
// finds another one delivering leaves its change in the queue for it.
func (s *Simulation) deliverStateChanges() {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	if s.delivering {
		return
	}

	s.delivering = true

	for len(s.pendingStates) > 0 {
		next := s.pendingStates[0]
		s.pendingStates = s.pendingStates[1:]

		s.stateLock.Unlock()
		s.notify(func(l Listener) { l.StateChanged(s, next) })
		s.stateLock.Lock()
	}

	s.delivering = false
	s.stateCond.Broadcast()
}

// TickDelay returns the delay between ticks of a running simulation.
func (s *Simulation) TickDelay() time.Duration {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.tickDelay
}

// SetTickDelay changes the delay between ticks. It takes effect after the
// current delay. It panics if the delay is negative.
func (s *Simulation) SetTickDelay(d time.Duration) {
	if d < 0 {
		panic("tick delay must not be negative")
	}

	s.stateLock.Lock()
	s.tickDelay = d
	s.stateLock.Unlock()

	s.notify(func(l Listener) { l.TickDelayChanged(s, d) })
}

// AddComponent makes the component take part in the simulation, starting
// with the next phase that the worker dispatches. The component's name must
// be valid and not used by another component of the registry.
func (s *Simulation) AddComponent(c modeling.Component) error {
	if c == nil {
		panic("component must not be nil")
	}

	s.compLock.Lock()

	if err := s.registry.Register(c); err != nil {
		s.compLock.Unlock()
		return fmt.Errorf("add component: %w", err)
	}

	s.components = append(s.components, c)
	s.compLock.Unlock()

	s.notify(func(l Listener) { l.ComponentAdded(s, c) })

	return nil
}

// RemoveComponent stops the component from being dispatched, starting with
// the next phase. Border associations that name the component are kept.
func (s *Simulation) RemoveComponent(c modeling.Component) error {
	s.compLock.Lock()

	index := -1
	for i, existing := range s.components {
		if existing == c {
			index = i
			break
		}
	}

	if index < 0 {
		s.compLock.Unlock()
		return fmt.Errorf("remove component %s: %w", c.Name(), id.ErrNotRegistered)
	}

	if err := s.registry.Unregister(c); err != nil {
		s.compLock.Unlock()
		return fmt.Errorf("remove component: %w", err)
	}

	s.components = append(s.components[:index:index], s.components[index+1:]...)
	s.compLock.Unlock()

	s.notify(func(l Listener) { l.ComponentRemoved(s, c) })

	return nil
}

// Components returns the components in the order they were added.
func (s *Simulation) Components() []modeling.Component {
	s.compLock.RLock()
	defer s.compLock.RUnlock()

	out := make([]modeling.Component, len(s.components))
	copy(out, s.components)

	return out
}

// Component returns the component with the given name.
func (s *Simulation) Component(name string) (modeling.Component, bool) {
	s.compLock.RLock()
	defer s.compLock.RUnlock()

	for _, c := range s.components {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

// Lookup finds a component by name. It lets a simulation serve as the lookup
// of a border file.
func (s *Simulation) Lookup(name string) (modeling.Component, bool) {
	return s.Component(name)
}

// AddListener registers a listener.
func (s *Simulation) AddListener(l Listener) {
	if l == nil {
		panic("listener must not be nil")
	}

	s.listenerLock.Lock()
	s.listeners = append(s.listeners, l)
	s.listenerLock.Unlock()
}

// RemoveListener removes a listener. Removing an unknown listener has no
// effect.
func (s *Simulation) RemoveListener(l Listener) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()

	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Simulation) notify(f func(l Listener)) {
	s.listenerLock.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerLock.RUnlock()

	for _, l := range listeners {
		f(l)
	}
}
