package hooking

import (
	"sync"

	"github.com/sarchlab/phasesim/sim/naming"
	"github.com/sarchlab/phasesim/sim/timing"
)

// PhaseCountTracer counts how many times each element handled each phase.
type PhaseCountTracer struct {
	lock   sync.Mutex
	counts map[string]map[timing.Phase]uint64
	last   map[string]timing.Time
}

// NewPhaseCountTracer creates a new PhaseCountTracer.
func NewPhaseCountTracer() *PhaseCountTracer {
	return &PhaseCountTracer{
		counts: make(map[string]map[timing.Phase]uint64),
		last:   make(map[string]timing.Time),
	}
}

// Func counts the phase once it has been handled.
func (t *PhaseCountTracer) Func(ctx HookCtx) {
	if ctx.Pos != HookPosAfterPhase {
		return
	}

	now, ok := ctx.Item.(timing.Time)
	if !ok {
		return
	}

	name := domainName(ctx.Domain)

	t.lock.Lock()
	defer t.lock.Unlock()

	perPhase, found := t.counts[name]
	if !found {
		perPhase = make(map[timing.Phase]uint64)
		t.counts[name] = perPhase
	}

	perPhase[now.Phase]++
	t.last[name] = now
}

// Count returns the number of times the named element handled the phase.
func (t *PhaseCountTracer) Count(name string, phase timing.Phase) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[name][phase]
}

// LastTime returns the last time the named element handled a phase.
func (t *PhaseCountTracer) LastTime(name string) (timing.Time, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	now, found := t.last[name]

	return now, found
}

func domainName(d Hookable) string {
	if named, ok := d.(naming.Named); ok {
		return named.Name()
	}

	return ""
}
