// Package termination provides components that decide when a simulation is
// complete.
package termination

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/phasesim/sim/modeling"
)

// A Terminator is a component that can ask the simulation to finish. Its
// target keys are its condition keys.
type Terminator interface {
	modeling.Component

	// Reached tells if any condition has been satisfied.
	Reached() bool
}

// TerminatorBase implements the condition bookkeeping of a Terminator. Each
// delivery evaluates the condition of its key; once a condition is satisfied,
// it stays satisfied.
type TerminatorBase struct {
	*modeling.ComponentBase

	conditions map[modeling.Key]Condition

	lock      sync.RWMutex
	satisfied map[modeling.Key]bool
}

// NewTerminatorBase creates a TerminatorBase whose target keys are the keys
// of the condition map. Concrete terminators pass themselves as the owner. It
// panics if there are no conditions or if a condition is nil.
func NewTerminatorBase(
	name string,
	owner any,
	conditions map[modeling.Key]Condition,
) *TerminatorBase {
	if len(conditions) == 0 {
		panic("terminator " + name + " must have at least one condition")
	}

	keys := make([]modeling.Key, 0, len(conditions))
	for k, c := range conditions {
		if c == nil {
			panic(fmt.Sprintf("terminator %s has a nil condition for %s",
				name, k))
		}

		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	t := &TerminatorBase{
		conditions: make(map[modeling.Key]Condition, len(conditions)),
		satisfied:  make(map[modeling.Key]bool, len(conditions)),
	}

	for k, c := range conditions {
		t.conditions[k] = c
		t.satisfied[k] = false
	}

	if owner == nil {
		owner = t
	}

	t.ComponentBase = modeling.NewComponentBase(name, owner, nil, keys)

	return t
}

// Receive evaluates the condition of the key against the value.
func (t *TerminatorBase) Receive(
	target modeling.Key,
	_ modeling.Address,
	value any,
) error {
	if !t.conditions[target](value) {
		return nil
	}

	t.lock.Lock()
	t.satisfied[target] = true
	t.lock.Unlock()

	return nil
}

// Reached tells if any condition has been satisfied.
func (t *TerminatorBase) Reached() bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	for _, s := range t.satisfied {
		if s {
			return true
		}
	}

	return false
}

// Satisfied tells if the condition of a key has been satisfied.
func (t *TerminatorBase) Satisfied(k modeling.Key) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.satisfied[k]
}

// DataTerminator finishes a simulation based on data routed to it through an
// ordinary border.
type DataTerminator struct {
	*TerminatorBase
}

// NewDataTerminator creates a DataTerminator with one target key per
// condition.
func NewDataTerminator(
	name string,
	conditions map[modeling.Key]Condition,
) *DataTerminator {
	t := &DataTerminator{}
	t.TerminatorBase = NewTerminatorBase(name, t, conditions)

	return t
}
