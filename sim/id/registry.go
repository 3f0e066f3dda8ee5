package id

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/phasesim/sim/naming"
)

var (
	// ErrDuplicateName is returned when registering a name that is taken.
	ErrDuplicateName = errors.New("name already registered")

	// ErrNotRegistered is returned when removing an unknown element.
	ErrNotRegistered = errors.New("name not registered")
)

// A Registry keeps the names of live elements unique. Each simulation owns its
// own registry, so separate simulations never see each other's names.
type Registry[T naming.Named] struct {
	lock     sync.RWMutex
	elements map[string]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T naming.Named]() *Registry[T] {
	return &Registry[T]{elements: make(map[string]T)}
}

// Register claims the element's name.
func (r *Registry[T]) Register(e T) error {
	name := e.Name()
	if err := naming.ValidateName(name); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.elements[name]; found {
		return fmt.Errorf("register %s: %w", name, ErrDuplicateName)
	}

	r.elements[name] = e

	return nil
}

// Unregister releases the name of the element.
func (r *Registry[T]) Unregister(e T) error {
	name := e.Name()

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.elements[name]; !found {
		return fmt.Errorf("unregister %s: %w", name, ErrNotRegistered)
	}

	delete(r.elements, name)

	return nil
}

// Lookup returns the element registered under the name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, found := r.elements[name]

	return e, found
}

// Names returns the registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.lock.RLock()
	names := make([]string, 0, len(r.elements))
	for n := range r.elements {
		names = append(names, n)
	}
	r.lock.RUnlock()

	sort.Strings(names)

	return names
}

// Len returns the number of registered elements.
func (r *Registry[T]) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.elements)
}
