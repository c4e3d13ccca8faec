package routing

import (
	"errors"
	"fmt"
)

// ErrEmptyChain indicates execution was asked to walk a chain with no
// targets. Chains from configuration or taxonomy rules are never empty, so
// this points at a programming error in the caller.
var ErrEmptyChain = errors.New("empty target chain")

// AllTargetsFailedError is the single aggregate error surfaced when every
// target in a chain failed with retryable errors. It carries the attempted
// chain so the boundary can produce one consistent client-facing error.
type AllTargetsFailedError struct {
	// Attempted lists every target tried, in order.
	Attempted []Target

	// LastErr is the failure from the final target.
	LastErr error
}

// Error implements the error interface.
func (e *AllTargetsFailedError) Error() string {
	return fmt.Sprintf("all %d targets failed, last error from %q: %v",
		len(e.Attempted), last(e.Attempted).Provider, e.LastErr)
}

// Unwrap returns the final target's error for error chain support.
func (e *AllTargetsFailedError) Unwrap() error {
	return e.LastErr
}

func last(targets []Target) Target {
	if len(targets) == 0 {
		return Target{}
	}
	return targets[len(targets)-1]
}
