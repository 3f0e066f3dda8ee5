package modeling

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is wrapped by every error caused by breaking a rule
// of the component contract at run time.
var ErrInvariantViolation = errors.New("state invariant violation")

var (
	// ErrUndeclaredKey reports a delivery or association to a key that the
	// component does not declare.
	ErrUndeclaredKey = fmt.Errorf("%w: undeclared key", ErrInvariantViolation)

	// ErrNilValue reports a nil delivery to a key that requires a value.
	ErrNilValue = fmt.Errorf("%w: nil value", ErrInvariantViolation)

	// ErrValueType reports a delivery whose type the key does not accept.
	ErrValueType = fmt.Errorf("%w: unexpected value type", ErrInvariantViolation)

	// ErrDuplicateDelivery reports a second delivery to the same key of a
	// single-delivery component within one tick.
	ErrDuplicateDelivery = fmt.Errorf(
		"%w: more than one delivery in a tick", ErrInvariantViolation)
)
