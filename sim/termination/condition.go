package termination

import (
	"reflect"
)

// A Condition decides whether a delivered value satisfies a terminator key.
type Condition func(value any) bool

// Equals is satisfied by values deeply equal to want.
func Equals(want any) Condition {
	return func(value any) bool {
		return reflect.DeepEqual(value, want)
	}
}

// AtLeast is satisfied by numeric values that are not smaller than bound.
// Non-numeric values never satisfy it.
func AtLeast(bound float64) Condition {
	return func(value any) bool {
		f, ok := toFloat(value)
		return ok && f >= bound
	}
}

// NotNil is satisfied by any value that is not nil.
func NotNil() Condition {
	return func(value any) bool {
		if value == nil {
			return false
		}

		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface,
			reflect.Chan, reflect.Func:
			return !rv.IsNil()
		}

		return true
	}
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
