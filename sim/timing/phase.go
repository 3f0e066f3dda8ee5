package timing

import (
	"fmt"
	"strings"
)

// A Phase is one stage of a tick.
type Phase string

// The phases of the standard cycle.
const (
	PhasePrepare   Phase = "Prepare"
	PhaseCalculate Phase = "Calculate"
	PhaseUpdate    Phase = "Update"
	PhaseCleanUp   Phase = "CleanUp"
)

// A PhaseCycle is the fixed, ordered list of phases that every tick walks
// through. A PhaseCycle is immutable once created.
type PhaseCycle struct {
	phases []Phase
	index  map[Phase]int
}

// NewPhaseCycle creates a cycle from the given phases, in order. It panics if
// the list is empty or if a phase is empty or repeated.
func NewPhaseCycle(phases ...Phase) *PhaseCycle {
	if len(phases) == 0 {
		panic("phase cycle must have at least one phase")
	}

	c := &PhaseCycle{
		phases: make([]Phase, len(phases)),
		index:  make(map[Phase]int, len(phases)),
	}

	for i, p := range phases {
		if strings.TrimSpace(string(p)) == "" {
			panic(fmt.Sprintf("phase %d must have a name", i))
		}

		if _, found := c.index[p]; found {
			panic(fmt.Sprintf("phase %s is declared more than once", p))
		}

		c.phases[i] = p
		c.index[p] = i
	}

	return c
}

// StandardPhases returns the Prepare, Calculate, Update, CleanUp cycle.
func StandardPhases() *PhaseCycle {
	return NewPhaseCycle(PhasePrepare, PhaseCalculate, PhaseUpdate, PhaseCleanUp)
}

// Len returns the number of phases in a tick.
func (c *PhaseCycle) Len() int {
	return len(c.phases)
}

// Phases returns a copy of the phases in cycle order.
func (c *PhaseCycle) Phases() []Phase {
	out := make([]Phase, len(c.phases))
	copy(out, c.phases)

	return out
}

// First returns the phase that starts every tick.
func (c *PhaseCycle) First() Phase {
	return c.phases[0]
}

// Contains tells if the phase belongs to the cycle.
func (c *PhaseCycle) Contains(p Phase) bool {
	_, found := c.index[p]
	return found
}

// Index returns the position of the phase in the cycle, or -1 if the phase is
// not part of the cycle.
func (c *PhaseCycle) Index(p Phase) int {
	i, found := c.index[p]
	if !found {
		return -1
	}

	return i
}

// Next returns the phase after p and whether moving to it starts a new tick.
func (c *PhaseCycle) Next(p Phase) (next Phase, wrapped bool) {
	i := c.Index(p)
	if i < 0 {
		panic(fmt.Sprintf("phase %s is not part of the cycle", p))
	}

	if i == len(c.phases)-1 {
		return c.phases[0], true
	}

	return c.phases[i+1], false
}

// Compare orders two times by tick, then by phase position. It returns -1, 0,
// or 1.
func (c *PhaseCycle) Compare(a, b Time) int {
	switch {
	case a.Tick < b.Tick:
		return -1
	case a.Tick > b.Tick:
		return 1
	}

	ia, ib := c.Index(a.Phase), c.Index(b.Phase)

	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}
