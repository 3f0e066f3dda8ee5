package simulation

import (
	"time"

	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/timing"
)

// A Listener is notified about changes of a simulation. Notifications are
// delivered synchronously on the goroutine that made the change, after the
// simulation released its locks. A listener may therefore call back into the
// simulation.
//
// State changes reach the listeners in the order they happened. If a state
// changes while another goroutine, or a listener, is still delivering an
// earlier change, the goroutine already delivering also delivers the new one.
type Listener interface {
	StateChanged(s *Simulation, state State)
	TimeChanged(s *Simulation, now timing.Time)
	TickDelayChanged(s *Simulation, delay time.Duration)
	ComponentAdded(s *Simulation, c modeling.Component)
	ComponentRemoved(s *Simulation, c modeling.Component)
}

// ListenerBase implements every Listener method as a no-op. Embed it to
// listen to a subset of the notifications.
type ListenerBase struct{}

// StateChanged does nothing.
func (ListenerBase) StateChanged(*Simulation, State) {}

// TimeChanged does nothing.
func (ListenerBase) TimeChanged(*Simulation, timing.Time) {}

// TickDelayChanged does nothing.
func (ListenerBase) TickDelayChanged(*Simulation, time.Duration) {}

// ComponentAdded does nothing.
func (ListenerBase) ComponentAdded(*Simulation, modeling.Component) {}

// ComponentRemoved does nothing.
func (ListenerBase) ComponentRemoved(*Simulation, modeling.Component) {}
