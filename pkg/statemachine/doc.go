// Package statemachine provides a small guarded finite-state machine.
//
// A Machine is built from an initial state and a set of transitions. Each
// transition names a source state, an event and a target state, and may carry
// guards that inspect the data passed to Fire. The first transition for a
// (state, event) pair whose guards all pass is taken.
//
//	m, err := statemachine.New(statemachine.StringState("draft"),
//		statemachine.WithTransition(draft, published, publish,
//			statemachine.WithGuard(isReviewed)),
//	)
//	if err := m.Fire(ctx, publish, doc); err != nil {
//		if errors.Is(err, statemachine.ErrTransitionRejected) {
//			// a guard refused the event
//		}
//	}
//
// Machines are safe for concurrent use.
package statemachine
