package machine

// TransitionBuilder completes the declaration of a transition. Created by
// OnTransition or OnInternal, optionally refined with When, and inserted by
// Invoke or Commit:
//
//	machine.OnTransition(m, start, next, event).When(condition).Invoke(action)
type TransitionBuilder[S comparable, A any] struct {
	m         *Machine[S]
	key       transitionKey[S]
	t         *transition[S]
	committed bool
}

// OnTransition declares a transition from one state to another triggered by
// event. A transition to the same state causes the state to be exited and
// re-entered.
func OnTransition[S comparable, A any](m *Machine[S], from, to S, event Event[A]) *TransitionBuilder[S, A] {
	return &TransitionBuilder[S, A]{
		m:   m,
		key: transitionKey[S]{state: from, event: event.id},
		t: &transition[S]{
			next: to,
		},
	}
}

// OnInternal declares an internal transition in state triggered by event.
// The action runs without exit or entry actions and the state is not
// re-entered.
func OnInternal[S comparable, A any](m *Machine[S], state S, event Event[A]) *TransitionBuilder[S, A] {
	return &TransitionBuilder[S, A]{
		m:   m,
		key: transitionKey[S]{state: state, event: event.id},
		t: &transition[S]{
			next:     state,
			internal: true,
		},
	}
}

// When adds a guard to the transition. The guard is evaluated with the
// event's argument and must not consume it; the same argument is passed to
// the action. A guard that panics is treated as not passed.
func (b *TransitionBuilder[S, A]) When(condition func(A) bool) *TransitionBuilder[S, A] {
	b.t.guard = func(arg any) bool {
		return condition(arg.(A))
	}
	return b
}

// Invoke adds the transition action and inserts the transition.
func (b *TransitionBuilder[S, A]) Invoke(action func(A)) {
	b.t.action = func(arg any) {
		action(arg.(A))
	}
	b.Commit()
}

// Commit inserts the transition without an action.
func (b *TransitionBuilder[S, A]) Commit() {
	if b.committed {
		return
	}
	b.committed = true

	b.m.addTransition(b.key, b.t)
}

// ActionBuilder completes the declaration of an entry or exit action:
//
//	m.OnEntry(state).Invoke(action)
type ActionBuilder[S comparable] struct {
	m     *Machine[S]
	state S
	entry bool
}

// OnEntry declares the entry action of state. In case state is the initial
// state the action runs on initial entry as well.
func (m *Machine[S]) OnEntry(state S) ActionBuilder[S] {
	return ActionBuilder[S]{m: m, state: state, entry: true}
}

// OnExit declares the exit action of state.
func (m *Machine[S]) OnExit(state S) ActionBuilder[S] {
	return ActionBuilder[S]{m: m, state: state}
}

// Invoke registers the action. A state holds at most one entry and one exit
// action; duplicates are reported and ignored.
func (b ActionBuilder[S]) Invoke(action func()) {
	if b.entry {
		b.m.addEntryAction(b.state, action)
		return
	}
	b.m.addExitAction(b.state, action)
}
