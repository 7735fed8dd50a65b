package statemachine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/statemachine"
)

const (
	locked   = statemachine.StringState("locked")
	unlocked = statemachine.StringState("unlocked")

	coin = statemachine.StringEvent("coin")
	push = statemachine.StringEvent("push")
)

func enoughCoins(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	n, ok := data.(int)
	return ok && n >= 2
}

func turnstile(t *testing.T) *statemachine.Machine {
	t.Helper()
	m, err := statemachine.New(locked,
		statemachine.WithTransition(locked, unlocked, coin, statemachine.WithGuard(enoughCoins)),
		statemachine.WithTransition(unlocked, locked, push),
	)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil initial state", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(nil)
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("incomplete transition", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(locked, statemachine.WithTransition(locked, nil, coin))
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("must new panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { statemachine.MustNew(nil) })
	})
}

func TestFire(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		event        statemachine.Event
		data         any
		want         statemachine.State
		noTransition bool
		rejected     bool
	}{
		{name: "guard passes", event: coin, data: 2, want: unlocked},
		{name: "guard refuses", event: coin, data: 1, want: locked, rejected: true},
		{name: "guard refuses wrong data type", event: coin, data: "two", want: locked, rejected: true},
		{name: "no edge", event: push, want: locked, noTransition: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := turnstile(t)
			ctx := context.Background()

			assert.Equal(t, !tt.rejected && !tt.noTransition, m.CanFire(ctx, tt.event, tt.data))

			err := m.Fire(ctx, tt.event, tt.data)
			assert.Equal(t, tt.want, m.Current())
			assert.Equal(t, tt.rejected, statemachine.IsRejected(err))
			assert.Equal(t, tt.noTransition, statemachine.IsNoTransition(err))
			if !tt.rejected && !tt.noTransition {
				assert.NoError(t, err)
			}

			var te *statemachine.TransitionError
			if err != nil {
				require.ErrorAs(t, err, &te)
				assert.Equal(t, "locked", te.State)
				assert.Equal(t, tt.event.Name(), te.Event)
			}
		})
	}
}

func TestFireFirstAllowedTransitionWins(t *testing.T) {
	t.Parallel()

	jammed := statemachine.StringState("jammed")
	m := statemachine.MustNew(locked,
		statemachine.WithTransition(locked, unlocked, coin, statemachine.WithGuard(enoughCoins)),
		statemachine.WithTransition(locked, jammed, coin),
	)

	require.NoError(t, m.Fire(context.Background(), coin, 5))
	assert.Equal(t, unlocked, m.Current())

	m = statemachine.MustNew(locked, statemachine.WithTransitions(
		statemachine.Transition{From: locked, To: unlocked, Event: coin, Guards: []statemachine.Guard{enoughCoins}},
		statemachine.Transition{From: locked, To: jammed, Event: coin},
	))
	require.NoError(t, m.Fire(context.Background(), coin, 0))
	assert.Equal(t, jammed, m.Current())
}

func TestFireNilEvent(t *testing.T) {
	t.Parallel()

	m := turnstile(t)
	assert.ErrorIs(t, m.Fire(context.Background(), nil, nil), statemachine.ErrInvalidTransition)
	assert.False(t, m.CanFire(context.Background(), nil, nil))
}

func TestConcurrentFire(t *testing.T) {
	t.Parallel()

	m := turnstile(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Fire(ctx, coin, 2)
			_ = m.Fire(ctx, push, nil)
			_ = m.Current()
		}()
	}
	wg.Wait()

	assert.Contains(t, []statemachine.State{locked, unlocked}, m.Current())
}
