package twofactor

import (
	"context"

	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/pkg/statemachine"
)

type State string

const (
	StateDisabled State = "disabled"
	StatePending  State = "pending"
	StateEnabled  State = "enabled"
)

func (s State) Name() string { return string(s) }

const (
	eventEnable  = statemachine.StringEvent("enable")
	eventConfirm = statemachine.StringEvent("confirm")
	eventDisable = statemachine.StringEvent("disable")
	eventVerify  = statemachine.StringEvent("verify")
)

// lifecycle lists every allowed edge. Re-enrolling from pending replaces the
// unconfirmed secret; disabling an enabled account needs a code or backup code.
var lifecycle = []statemachine.Transition{
	{From: StateDisabled, To: StatePending, Event: eventEnable},
	{From: StatePending, To: StatePending, Event: eventEnable},
	{From: StatePending, To: StateEnabled, Event: eventConfirm},
	{From: StatePending, To: StateDisabled, Event: eventDisable},
	{From: StateEnabled, To: StateDisabled, Event: eventDisable, Guards: []statemachine.Guard{credentialsPresented}},
	{From: StateEnabled, To: StateEnabled, Event: eventVerify},
}

func credentialsPresented(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	creds, ok := data.(Credentials)
	return ok && !creds.empty()
}

// StateOf derives the lifecycle state from persisted fields.
func StateOf(tf store.TwoFactor) State {
	switch {
	case tf.Enabled && tf.Secret != "":
		return StateEnabled
	case tf.Secret != "":
		return StatePending
	default:
		return StateDisabled
	}
}

// advance fires e from the state of tf and returns the resulting state, or
// the domain error describing why e is not allowed.
func advance(ctx context.Context, tf store.TwoFactor, e statemachine.Event, data any) (State, error) {
	from := StateOf(tf)
	m := statemachine.MustNew(from, statemachine.WithTransitions(lifecycle...))
	if err := m.Fire(ctx, e, data); err != nil {
		return from, transitionError(from, e, err)
	}
	return m.Current().(State), nil
}

func transitionError(from State, e statemachine.Event, err error) error {
	switch {
	case statemachine.IsRejected(err):
		return ErrCodeRequired
	case !statemachine.IsNoTransition(err):
		return err
	case from == StateEnabled:
		return ErrAlreadyEnabled
	case e == eventConfirm:
		return ErrNotPending
	default:
		return ErrNotEnabled
	}
}
