package crossref

import (
	"errors"
	"fmt"
)

// State is the lifecycle stage of a Validator run.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateLoading       State = "LOADING"
	StateAggregating   State = "AGGREGATING"
	StateChecking      State = "CHECKING"
	StateDone          State = "DONE"
)

// ErrInvalidTransition is returned when a run is started on a used
// Validator or a stage is entered out of order.
var ErrInvalidTransition = errors.New("crossref: invalid state transition")

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s State) bool {
	return s == StateDone
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateUninitialized:
		return to == StateLoading
	case StateLoading:
		return to == StateAggregating
	case StateAggregating:
		return to == StateChecking
	case StateChecking:
		return to == StateDone
	default:
		return false
	}
}

// transition moves the validator from an expected state to the next one.
func (v *Validator) transition(from, to State) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != from {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidTransition, from, v.state)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	v.state = to
	return nil
}
