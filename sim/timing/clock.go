package timing

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownPhase is returned when a time refers to a phase that the clock
// does not declare.
var ErrUnknownPhase = errors.New("phase is not part of the clock's cycle")

// A Clock holds the current time of a simulation and moves it forward one
// phase at a time. All methods are safe for concurrent use.
type Clock struct {
	cycle *PhaseCycle

	lock sync.RWMutex
	now  Time
}

// NewClock creates a clock at tick 0, first phase of the cycle.
func NewClock(cycle *PhaseCycle) *Clock {
	if cycle == nil {
		panic("clock requires a phase cycle")
	}

	return &Clock{
		cycle: cycle,
		now:   Time{Tick: 0, Phase: cycle.First()},
	}
}

// Phases returns the cycle the clock walks through.
func (c *Clock) Phases() *PhaseCycle {
	return c.cycle
}

// Now returns the current time.
func (c *Clock) Now() Time {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.now
}

// Advance moves the clock to the next phase. Wrapping past the last phase
// increments the tick. It returns the new time.
func (c *Clock) Advance() Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	next, wrapped := c.cycle.Next(c.now.Phase)
	if wrapped {
		c.now.Tick++
	}

	c.now.Phase = next

	return c.now
}

// SetTime overwrites the current time. Times whose phase is not in the cycle
// are rejected and leave the clock untouched.
func (c *Clock) SetTime(t Time) error {
	if !c.cycle.Contains(t.Phase) {
		return fmt.Errorf("set time %s: %w", t, ErrUnknownPhase)
	}

	c.lock.Lock()
	c.now = t
	c.lock.Unlock()

	return nil
}
