package timing

import "fmt"

// VTick counts the completed phase cycles of a simulation.
type VTick = uint64

// Time is a point in simulated time. Times are only ordered relative to a
// PhaseCycle, see PhaseCycle.Compare.
type Time struct {
	Tick  VTick
	Phase Phase
}

func (t Time) String() string {
	return fmt.Sprintf("%d:%s", t.Tick, t.Phase)
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() Time
}
