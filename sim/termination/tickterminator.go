package termination

import (
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/timing"
)

// TickKey is the only key of a TickTerminator.
const TickKey modeling.Key = "Tick"

// TickTerminator finishes a simulation once the clock reaches a tick. In its
// own CleanUp phase it delivers the current tick to itself.
//
// With the default condition, tick >= bound, the terminator is satisfied
// during the CleanUp of tick bound, and the clock has already moved on to
// tick bound+1 when the simulation stops. WithExactBound shifts the
// condition by one so that the simulation stops at tick bound. An exact bound
// must be at least 1, since tick 0 has always started before any CleanUp.
type TickTerminator struct {
	*TerminatorBase

	clock timing.TimeTeller
	bound timing.VTick
	exact bool
}

// A TickOption configures a TickTerminator.
type TickOption func(t *TickTerminator)

// WithExactBound makes the simulation stop with the clock at the bound.
func WithExactBound() TickOption {
	return func(t *TickTerminator) {
		t.exact = true
	}
}

// NewTickTerminator creates a TickTerminator that reads the given clock.
func NewTickTerminator(
	name string,
	clock timing.TimeTeller,
	bound timing.VTick,
	opts ...TickOption,
) *TickTerminator {
	if clock == nil {
		panic("tick terminator needs a clock")
	}

	t := &TickTerminator{
		clock: clock,
		bound: bound,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.exact && t.bound == 0 {
		panic("tick terminator " + name + " cannot stop exactly at tick 0")
	}

	t.TerminatorBase = NewTerminatorBase(name, t,
		map[modeling.Key]Condition{TickKey: t.tickReached})

	return t
}

// Bound returns the tick that the terminator waits for.
func (t *TickTerminator) Bound() timing.VTick {
	return t.bound
}

// CleanUp delivers the current tick of the clock.
func (t *TickTerminator) CleanUp(_ timing.Time) error {
	return t.Deliver(TickKey, modeling.AnyKeyOf(t), t.clock.Now().Tick)
}

func (t *TickTerminator) tickReached(value any) bool {
	tick, ok := value.(timing.VTick)
	if !ok {
		return false
	}

	if t.exact {
		return tick+1 >= t.bound
	}

	return tick >= t.bound
}
