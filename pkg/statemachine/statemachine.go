package statemachine

import "context"

// State is a node of the machine. States compare by Name.
type State interface {
	Name() string
}

// Event triggers a transition. Events compare by Name.
type Event interface {
	Name() string
}

// StringState is a State backed by a string.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is an Event backed by a string.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Guard reports whether a transition may be taken for the given data.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition describes a single edge of the machine.
type Transition struct {
	From   State
	To     State
	Event  Event
	Guards []Guard
}

func (t Transition) allowed(ctx context.Context, event Event, data any) bool {
	for _, g := range t.Guards {
		if !g(ctx, t.From, event, data) {
			return false
		}
	}
	return true
}
