package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition     = errors.New("statemachine: invalid transition")
	ErrNoTransitionAvailable = errors.New("statemachine: no transition available")
	ErrTransitionRejected    = errors.New("statemachine: transition rejected by guard")
)

// TransitionError reports which state and event failed to fire. It matches
// ErrNoTransitionAvailable or ErrTransitionRejected via errors.Is.
type TransitionError struct {
	State    string
	Event    string
	Rejected bool
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: event %q rejected in state %q", e.Event, e.State)
	}
	return fmt.Sprintf("statemachine: no transition for event %q in state %q", e.Event, e.State)
}

func (e *TransitionError) Is(target error) bool {
	if e.Rejected {
		return target == ErrTransitionRejected
	}
	return target == ErrNoTransitionAvailable
}
