package core

import (
	"errors"
	"fmt"
)

// ErrPaymentNotFound signals an unknown payment identifier
var ErrPaymentNotFound = errors.New("payment not found")

// InvalidArgumentError rejects payment construction before any persistence
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateTransitionError reports an operation attempted from a state whose guard
// does not allow it. It is a conflict, distinct from not-found: callers must
// not retry it blindly.
type StateTransitionError struct {
	Current   PaymentStatus
	Operation string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s payment in state %s", e.Operation, e.Current)
}

// GatewayError reports an infrastructure failure during the settlement call,
// as opposed to a business decline returned by the gateway itself
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("settlement gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
