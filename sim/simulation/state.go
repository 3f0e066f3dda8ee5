package simulation

import (
	"fmt"

	"github.com/sarchlab/phasesim/sim/modeling"
)

// State is the run-state of a simulation.
type State int

// The run-states of a simulation.
const (
	StateInitial State = iota
	StateReady
	StateStepping
	StateRunning
	StateFinished
)

// ErrIllegalTransition is returned by control calls made from a state that
// does not allow them.
var ErrIllegalTransition = fmt.Errorf(
	"%w: illegal state transition", modeling.ErrInvariantViolation)

var transitions = map[State][]State{
	StateInitial:  {StateReady},
	StateReady:    {StateStepping, StateRunning, StateFinished},
	StateStepping: {StateReady, StateFinished},
	StateRunning:  {StateStepping, StateReady, StateFinished},
}

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateReady:
		return "Ready"
	case StateStepping:
		return "Stepping"
	case StateRunning:
		return "Running"
	case StateFinished:
		return "Finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CanTransitionTo tells if the state machine allows moving from s to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsActive tells if the worker executes ticks in this state.
func (s State) IsActive() bool {
	return s == StateRunning || s == StateStepping
}
