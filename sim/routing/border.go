// Package routing moves data between components.
//
// A Border stores associations from source addresses to target addresses.
// Components pull from the borders attached to them; nothing is pushed and
// nothing is cached, so every query reads the sources again.
package routing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/phasesim/sim/modeling"
)

var (
	// ErrSourceUnbound is returned when a source address has no component.
	ErrSourceUnbound = errors.New("source address must name a component")

	// ErrUndeclaredKey is returned when an association refers to a key that
	// the component does not declare.
	ErrUndeclaredKey = errors.New("key not declared by component")

	// ErrTransformShared is returned when a stateful transform is reused.
	ErrTransformShared = errors.New(
		"stateful transform already belongs to another association")
)

// Data maps target keys to the values each source address provided.
type Data map[modeling.Key]map[modeling.Address]any

type association struct {
	source    modeling.Address
	transform Transform
	target    modeling.Address
}

// A Border routes data from source addresses to target addresses.
// Associations cannot be removed once created.
type Border struct {
	lock         sync.RWMutex
	associations []association
	attached     []modeling.Component
}

// NewBorder creates an empty border.
func NewBorder() *Border {
	return &Border{}
}

// Associate routes the source to the target, passing values through the
// transform. A nil transform leaves values unchanged. Associating several
// sources with one target fans them in.
func (b *Border) Associate(
	source modeling.Address,
	transform Transform,
	target modeling.Address,
) error {
	if err := associationMustBeValid(source, target); err != nil {
		return fmt.Errorf("associate %s -> %s: %w", source, target, err)
	}

	if s, ok := transform.(Stateful); ok && !s.claim() {
		return fmt.Errorf("associate %s -> %s: %w",
			source, target, ErrTransformShared)
	}

	b.lock.Lock()
	b.associations = append(b.associations, association{
		source:    source,
		transform: transform,
		target:    target,
	})
	b.lock.Unlock()

	return nil
}

func associationMustBeValid(source, target modeling.Address) error {
	if source.Component == nil {
		return ErrSourceUnbound
	}

	if source.Key != "" && !source.Component.HasSourceKey(source.Key) {
		return fmt.Errorf("%w: %s has no source key %s",
			ErrUndeclaredKey, source.Component.Name(), source.Key)
	}

	if target.IsConcrete() && !target.Component.HasTargetKey(target.Key) {
		return fmt.Errorf("%w: %s has no target key %s",
			ErrUndeclaredKey, target.Component.Name(), target.Key)
	}

	return nil
}

// AssociateDirect routes the source to the target without a transform.
func (b *Border) AssociateDirect(source, target modeling.Address) error {
	return b.Associate(source, nil, target)
}

// AssociateAll routes every source to every target. Each association gets
// its own transform from the factory; a nil factory means no transform.
func (b *Border) AssociateAll(
	sources, targets []modeling.Address,
	factory TransformFactory,
) error {
	for _, s := range sources {
		for _, t := range targets {
			var transform Transform
			if factory != nil {
				transform = factory()
			}

			if err := b.Associate(s, transform, t); err != nil {
				return err
			}
		}
	}

	return nil
}

// Len returns the number of associations.
func (b *Border) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return len(b.associations)
}

// Query reads, fresh, every value routed to the destination component. The
// result follows association order, then declared key order.
func (b *Border) Query(dest modeling.Component) ([]modeling.Delivery, error) {
	b.lock.RLock()
	associations := b.associations
	b.lock.RUnlock()

	var deliveries []modeling.Delivery

	for _, a := range associations {
		if a.target.Component != nil && a.target.Component != dest {
			continue
		}

		for _, tk := range resolveTargetKeys(a.target, dest) {
			for _, sk := range resolveSourceKeys(a.source) {
				value, found := a.source.Component.Read(sk)
				if !found {
					continue
				}

				if a.transform != nil {
					var err error

					value, err = a.transform.Apply(value)
					if err != nil {
						return nil, fmt.Errorf("transform %s -> %s:%s: %w",
							modeling.At(a.source.Component, sk),
							dest.Name(), tk, err)
					}
				}

				deliveries = append(deliveries, modeling.Delivery{
					Target: tk,
					Source: modeling.At(a.source.Component, sk),
					Value:  value,
				})
			}
		}
	}

	return deliveries, nil
}

// QueryData is Query grouped by target key and source address.
func (b *Border) QueryData(dest modeling.Component) (Data, error) {
	deliveries, err := b.Query(dest)
	if err != nil {
		return nil, err
	}

	data := make(Data)

	for _, d := range deliveries {
		bySource, found := data[d.Target]
		if !found {
			bySource = make(map[modeling.Address]any)
			data[d.Target] = bySource
		}

		bySource[d.Source] = d.Value
	}

	return data, nil
}

func resolveTargetKeys(
	target modeling.Address,
	dest modeling.Component,
) []modeling.Key {
	if target.Key == "" {
		return dest.TargetKeys()
	}

	if !dest.HasTargetKey(target.Key) {
		return nil
	}

	return []modeling.Key{target.Key}
}

func resolveSourceKeys(source modeling.Address) []modeling.Key {
	if source.Key == "" {
		return source.Component.SourceKeys()
	}

	return []modeling.Key{source.Key}
}

// Targets returns the distinct components named by target addresses, in
// association order.
func (b *Border) Targets() []modeling.Component {
	b.lock.RLock()
	defer b.lock.RUnlock()

	var comps []modeling.Component

	seen := make(map[modeling.Component]bool)
	for _, a := range b.associations {
		c := a.target.Component
		if c == nil || seen[c] {
			continue
		}

		seen[c] = true
		comps = append(comps, c)
	}

	return comps
}

// Attach registers the border with every component named by a target
// address. Components reached only through wildcard targets must attach the
// border themselves.
func (b *Border) Attach() {
	targets := b.Targets()

	b.lock.Lock()
	b.attached = targets
	b.lock.Unlock()

	for _, c := range targets {
		c.AttachBorder(b)
	}
}

// Detach removes the border from the components that Attach registered it
// with.
func (b *Border) Detach() {
	b.lock.Lock()
	attached := b.attached
	b.attached = nil
	b.lock.Unlock()

	for _, c := range attached {
		c.DetachBorder(b)
	}
}
