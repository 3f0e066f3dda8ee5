package tracing

import (
	"sort"
	"sync"
	"time"

	"github.com/sarchlab/phasesim/sim/timing"
)

type phaseKey struct {
	component string
	phase     timing.Phase
}

// BusyTimeTracer measures the wall-clock time that components spend handling
// each phase.
type BusyTimeTracer struct {
	lock     sync.Mutex
	clock    func() time.Time
	inflight map[string]time.Time
	busyTime map[phaseKey]time.Duration
	count    map[phaseKey]uint64
}

// NewBusyTimeTracer creates a new BusyTimeTracer.
func NewBusyTimeTracer() *BusyTimeTracer {
	return &BusyTimeTracer{
		clock:    time.Now,
		inflight: make(map[string]time.Time),
		busyTime: make(map[phaseKey]time.Duration),
		count:    make(map[phaseKey]uint64),
	}
}

// StartPhase records when the component started handling the phase.
func (t *BusyTimeTracer) StartPhase(component string, _ timing.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflight[component] = t.clock()
}

// EndPhase adds the time since StartPhase to the busy time of the phase.
func (t *BusyTimeTracer) EndPhase(component string, now timing.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[component]
	if !ok {
		return
	}

	delete(t.inflight, component)

	key := phaseKey{component: component, phase: now.Phase}
	t.busyTime[key] += t.clock().Sub(start)
	t.count[key]++
}

// BusyTime returns the total time the component spent in the phase.
func (t *BusyTimeTracer) BusyTime(component string, phase timing.Phase) time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busyTime[phaseKey{component: component, phase: phase}]
}

// Count returns how many times the component handled the phase.
func (t *BusyTimeTracer) Count(component string, phase timing.Phase) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count[phaseKey{component: component, phase: phase}]
}

// BusyTimeEntry is one line of a busy time report.
type BusyTimeEntry struct {
	Component string        `json:"component"`
	Phase     timing.Phase  `json:"phase"`
	Count     uint64        `json:"count"`
	BusyTime  time.Duration `json:"busy_time_ns"`
}

// Report lists the busy time of every component and phase, sorted by
// component name and then by phase name.
func (t *BusyTimeTracer) Report() []BusyTimeEntry {
	t.lock.Lock()
	defer t.lock.Unlock()

	entries := make([]BusyTimeEntry, 0, len(t.busyTime))
	for k, d := range t.busyTime {
		entries = append(entries, BusyTimeEntry{
			Component: k.component,
			Phase:     k.phase,
			Count:     t.count[k],
			BusyTime:  d,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Component != entries[j].Component {
			return entries[i].Component < entries[j].Component
		}

		return entries[i].Phase < entries[j].Phase
	})

	return entries
}
