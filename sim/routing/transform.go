package routing

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// A Transform changes a value on its way across a border.
type Transform interface {
	Apply(value any) (any, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(value any) (any, error)

// Apply calls f(value).
func (f TransformFunc) Apply(value any) (any, error) {
	return f(value)
}

// A TransformFactory creates a fresh transform for every association that it
// is used for.
type TransformFactory func() Transform

// Identity returns values unchanged.
var Identity Transform = TransformFunc(func(v any) (any, error) { return v, nil })

// Scale multiplies numeric values by a factor. The result is a float64.
func Scale(factor float64) Transform {
	return TransformFunc(func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}

		return f * factor, nil
	})
}

// Stateful is implemented by transforms that remember earlier values. A
// stateful transform belongs to exactly one association; a border refuses to
// use an instance that another association already owns.
type Stateful interface {
	Transform

	claim() bool
}

// StatefulBase marks a transform as stateful. Embed it in a transform to make
// borders enforce single ownership.
type StatefulBase struct {
	claimed atomic.Bool
}

func (b *StatefulBase) claim() bool {
	return b.claimed.CompareAndSwap(false, true)
}

// Claimed tells if an association owns the transform.
func (b *StatefulBase) Claimed() bool {
	return b.claimed.Load()
}

// ChangeDetector turns each value into a bool that tells whether the value
// differs from the one seen on the previous call. The first value always
// counts as a change.
type ChangeDetector struct {
	StatefulBase

	lock sync.Mutex
	seen bool
	last any
}

// NewChangeDetector creates a new ChangeDetector.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Apply reports whether the value changed.
func (d *ChangeDetector) Apply(value any) (any, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	changed := !d.seen || !reflect.DeepEqual(d.last, value)
	d.seen = true
	d.last = value

	return changed, nil
}

// RunningSum turns each numeric value into the sum of all values seen so far.
type RunningSum struct {
	StatefulBase

	lock  sync.Mutex
	total float64
}

// NewRunningSum creates a new RunningSum.
func NewRunningSum() *RunningSum {
	return &RunningSum{}
}

// Apply adds the value to the total and returns the total.
func (s *RunningSum) Apply(value any) (any, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.total += f

	return s.total, nil
}

func toFloat(v any) (float64, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, fmt.Errorf("value %v of type %T is not numeric", v, v)
	}
}
