package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/phasesim/datarecording"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/simulation"
	"github.com/sarchlab/phasesim/sim/timing"
)

// Table names used by the DBTracer.
const (
	TimeTable     = "phasesim_time"
	StateTable    = "phasesim_state"
	DelayTable    = "phasesim_tick_delay"
	MemberTable   = "phasesim_membership"
	DispatchTable = "phasesim_dispatch"
)

const (
	memberAdded   = "added"
	memberRemoved = "removed"
)

// TimeEntry is written once per phase advance.
type TimeEntry struct {
	Seq        uint64
	Simulation string
	Tick       uint64
	Phase      string
}

// StateEntry is written for every state change.
type StateEntry struct {
	Seq        uint64
	Simulation string
	Tick       uint64
	Phase      string
	State      string
}

// DelayEntry is written when the tick delay changes.
type DelayEntry struct {
	Seq        uint64
	Simulation string
	Tick       uint64
	Phase      string
	DelayNS    int64
}

// MemberEntry is written when a component joins or leaves a simulation.
type MemberEntry struct {
	Seq        uint64
	Simulation string
	Tick       uint64
	Phase      string
	Component  string
	Event      string
}

// DispatchEntry is written after a traced component handled a phase.
type DispatchEntry struct {
	Seq       uint64
	Component string
	Tick      uint64
	Phase     string
	WallNS    int64
}

// DBTracer listens to a simulation and stores what it observes in a data
// recorder. When phase tracing is enabled, it also traces every component
// added to the simulation from then on.
type DBTracer struct {
	backend datarecording.DataRecorder
	clock   func() time.Time

	lock        sync.Mutex
	seq         uint64
	tracePhases bool
	starts      map[string]time.Time
}

// NewDBTracer creates a DBTracer and the tables it writes to.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(TimeTable, TimeEntry{})
	backend.CreateTable(StateTable, StateEntry{})
	backend.CreateTable(DelayTable, DelayEntry{})
	backend.CreateTable(MemberTable, MemberEntry{})
	backend.CreateTable(DispatchTable, DispatchEntry{})

	return &DBTracer{
		backend: backend,
		clock:   time.Now,
		starts:  make(map[string]time.Time),
	}
}

// EnablePhaseTracing makes the tracer trace the components that are added to
// the simulation after the call.
func (t *DBTracer) EnablePhaseTracing() {
	t.lock.Lock()
	t.tracePhases = true
	t.lock.Unlock()
}

// IsTracingPhases tells if phase tracing is enabled.
func (t *DBTracer) IsTracingPhases() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.tracePhases
}

// Flush writes the buffered entries.
func (t *DBTracer) Flush() {
	t.backend.Flush()
}

var _ simulation.Listener = (*DBTracer)(nil)

func (t *DBTracer) nextSeq() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.seq++

	return t.seq
}

// StateChanged records the new state.
func (t *DBTracer) StateChanged(s *simulation.Simulation, state simulation.State) {
	now := s.Now()

	t.backend.InsertData(StateTable, StateEntry{
		Seq:        t.nextSeq(),
		Simulation: s.ID(),
		Tick:       now.Tick,
		Phase:      string(now.Phase),
		State:      state.String(),
	})

	if state == simulation.StateFinished {
		t.Flush()
	}
}

// TimeChanged records the new time.
func (t *DBTracer) TimeChanged(s *simulation.Simulation, now timing.Time) {
	t.backend.InsertData(TimeTable, TimeEntry{
		Seq:        t.nextSeq(),
		Simulation: s.ID(),
		Tick:       now.Tick,
		Phase:      string(now.Phase),
	})
}

// TickDelayChanged records the new delay.
func (t *DBTracer) TickDelayChanged(s *simulation.Simulation, delay time.Duration) {
	now := s.Now()

	t.backend.InsertData(DelayTable, DelayEntry{
		Seq:        t.nextSeq(),
		Simulation: s.ID(),
		Tick:       now.Tick,
		Phase:      string(now.Phase),
		DelayNS:    delay.Nanoseconds(),
	})
}

// ComponentAdded records the component and, if phase tracing is enabled,
// starts tracing it.
func (t *DBTracer) ComponentAdded(s *simulation.Simulation, c modeling.Component) {
	t.recordMember(s, c, memberAdded)

	if t.IsTracingPhases() && !IsTraced(c, t) {
		CollectTrace(c, t)
	}
}

// ComponentRemoved records that the component left.
func (t *DBTracer) ComponentRemoved(s *simulation.Simulation, c modeling.Component) {
	t.recordMember(s, c, memberRemoved)
}

func (t *DBTracer) recordMember(
	s *simulation.Simulation,
	c modeling.Component,
	event string,
) {
	now := s.Now()

	t.backend.InsertData(MemberTable, MemberEntry{
		Seq:        t.nextSeq(),
		Simulation: s.ID(),
		Tick:       now.Tick,
		Phase:      string(now.Phase),
		Component:  c.Name(),
		Event:      event,
	})
}

// StartPhase remembers when the component started the phase.
func (t *DBTracer) StartPhase(component string, _ timing.Time) {
	t.lock.Lock()
	t.starts[component] = t.clock()
	t.lock.Unlock()
}

// EndPhase records the phase the component handled.
func (t *DBTracer) EndPhase(component string, now timing.Time) {
	t.lock.Lock()
	start, found := t.starts[component]
	delete(t.starts, component)
	t.lock.Unlock()

	var wall time.Duration
	if found {
		wall = t.clock().Sub(start)
	}

	t.backend.InsertData(DispatchTable, DispatchEntry{
		Seq:       t.nextSeq(),
		Component: component,
		Tick:      now.Tick,
		Phase:     string(now.Phase),
		WallNS:    wall.Nanoseconds(),
	})
}
