package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Machine is a guarded finite-state machine.
type Machine struct {
	mu      sync.RWMutex
	current State
	edges   map[string]map[string][]Transition
}

// Option configures a Machine.
type Option func(*Machine) error

// TransitionOption configures a single Transition.
type TransitionOption func(*Transition)

// WithGuard adds a guard to a transition.
func WithGuard(g Guard) TransitionOption {
	return func(t *Transition) {
		if g != nil {
			t.Guards = append(t.Guards, g)
		}
	}
}

// WithTransition registers the edge from -> to for event.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		t := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		return m.add(t)
	}
}

// WithTransitions registers prebuilt transitions.
func WithTransitions(ts ...Transition) Option {
	return func(m *Machine) error {
		for _, t := range ts {
			if err := m.add(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// New builds a machine starting in initial.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: initial state is required", ErrInvalidTransition)
	}
	m := &Machine{
		current: initial,
		edges:   make(map[string]map[string][]Transition),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Machine) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	byEvent, ok := m.edges[t.From.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		m.edges[t.From.Name()] = byEvent
	}
	byEvent[t.Event.Name()] = append(byEvent[t.Event.Name()], t)
	return nil
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CanFire reports whether Fire would succeed for event and data.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.resolve(ctx, event, data)
	return err == nil
}

// Fire moves the machine along the first allowed transition for event.
// It returns a *TransitionError when no edge exists or every guard refuses.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.resolve(ctx, event, data)
	if err != nil {
		return err
	}
	m.current = t.To
	return nil
}

func (m *Machine) resolve(ctx context.Context, event Event, data any) (Transition, error) {
	if event == nil {
		return Transition{}, fmt.Errorf("%w: event is required", ErrInvalidTransition)
	}
	candidates := m.edges[m.current.Name()][event.Name()]
	if len(candidates) == 0 {
		return Transition{}, &TransitionError{State: m.current.Name(), Event: event.Name()}
	}
	for _, t := range candidates {
		if t.allowed(ctx, event, data) {
			return t, nil
		}
	}
	return Transition{}, &TransitionError{State: m.current.Name(), Event: event.Name(), Rejected: true}
}

// IsNoTransition reports whether err means the event has no edge from the
// current state.
func IsNoTransition(err error) bool { return errors.Is(err, ErrNoTransitionAvailable) }

// IsRejected reports whether err means a guard refused the event.
func IsRejected(err error) bool { return errors.Is(err, ErrTransitionRejected) }
