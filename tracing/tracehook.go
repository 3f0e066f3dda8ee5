// Package tracing records what happens in a simulation.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/naming"
	"github.com/sarchlab/phasesim/sim/timing"
)

// A PhaseTracer is told about every phase that a traced component handles.
type PhaseTracer interface {
	StartPhase(component string, now timing.Time)
	EndPhase(component string, now timing.Time)
}

// NamedHookable is a hookable element with a name, such as a component.
type NamedHookable interface {
	naming.Named
	hooking.Hookable
}

// CollectTrace lets the tracer trace the phases handled by the domain. It
// panics if the tracer already traces the domain.
func CollectTrace(domain NamedHookable, tracer PhaseTracer) {
	if IsTraced(domain, tracer) {
		panic(fmt.Sprintf(
			"domain %s already has tracer %s",
			domain.Name(), reflect.TypeOf(tracer)))
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// IsTraced tells if the tracer already traces the domain.
func IsTraced(domain hooking.Hookable, tracer PhaseTracer) bool {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.t == tracer {
			return true
		}
	}

	return false
}

// A traceHook turns phase hooks into tracer calls.
type traceHook struct {
	t PhaseTracer
}

// Func calls the tracer when the hook is triggered.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	named, ok := ctx.Domain.(naming.Named)
	if !ok {
		return
	}

	now, ok := ctx.Item.(timing.Time)
	if !ok {
		return
	}

	switch ctx.Pos {
	case hooking.HookPosBeforePhase:
		h.t.StartPhase(named.Name(), now)
	case hooking.HookPosAfterPhase:
		h.t.EndPhase(named.Name(), now)
	}
}
