package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state. Firing any trigger from a terminal state yields this.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a known lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every guard on a permitted trigger fails.
	ErrGuardFailed = errors.New("guard condition failed")
)
