package machine

import (
	"os"

	"github.com/rs/zerolog"
)

// Machine is a hierarchical event-driven state machine over states of type S.
//
// Supported features:
// - transitions between states on events,
// - state-internal transitions,
// - guard conditions on transitions,
// - transition actions,
// - state entry/exit actions,
// - state hierarchy,
// - recursive events (events raised from actions), queued and handled after
//   the handling of the current event completes. As any event may turn out
//   recursive, all event arguments must be copyable values.
//
// A machine is single-threaded with respect to event handling. Callers
// sharing one across goroutines must synchronize externally.
type Machine[S comparable] struct {
	current S
	parent  map[S]S

	transitions  map[transitionKey[S]][]*transition[S]
	entryActions map[S]func()
	exitActions  map[S]func()

	entered bool
	depth   int
	pending []invocation

	logger zerolog.Logger
}

type transitionKey[S comparable] struct {
	state S
	event eventID
}

type transition[S comparable] struct {
	next     S
	internal bool
	guard    func(any) bool
	action   func(any)
}

type invocation struct {
	id  eventID
	arg any
}

// Option configures a machine.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger routes the machine's diagnostics to the given sink.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New constructs a machine resting in the initial state. The initial state is
// entered lazily on the first event, or explicitly by EnterInitialState.
func New[S comparable](initial S, opts ...Option) *Machine[S] {
	o := options{
		logger: zerolog.New(os.Stderr),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Machine[S]{
		current:      initial,
		parent:       map[S]S{},
		transitions:  map[transitionKey[S]][]*transition[S]{},
		entryActions: map[S]func(){},
		exitActions:  map[S]func(){},
		logger:       o.logger,
	}
}

// Handle dispatches event with arg on the machine. If an action of the
// resulting transition raises another event on the same machine, that event
// is queued together with a copy of its argument and handled after the
// current handling completes.
func Handle[S comparable, A any](m *Machine[S], event Event[A], arg A) {
	m.dispatch(event.id, arg)
}

// Trigger dispatches an event carrying no payload.
func Trigger[S comparable](m *Machine[S], event Signal) {
	Handle(m, event, None{})
}

// EnterInitialState executes the entry chain of the initial state's
// ancestors, outermost first. It runs at most once per machine; subsequent
// calls have no effect. Handling the first event performs it implicitly.
func (m *Machine[S]) EnterInitialState() {
	if m.entered {
		return
	}
	m.entered = true

	m.depth++
	ancestors := m.ancestors(m.current)
	for i := len(ancestors) - 1; i >= 0; i-- {
		m.runEntry(ancestors[i])
	}
	m.depth--

	// Every queued invocation holds one depth unit until it is executed, so
	// no handler is running when the depth equals the queue length.
	if m.depth == len(m.pending) {
		m.drain()
	}
}

// State returns the current state.
func (m *Machine[S]) State() S {
	return m.current
}

// SetParent declares parent as the parent of each of the children. Requests
// introducing a self-parent, a cycle or a second parent are reported and
// ignored.
func (m *Machine[S]) SetParent(parent S, children ...S) {
	for _, child := range children {
		m.setParent(parent, child)
	}
}

func (m *Machine[S]) setParent(parent, child S) {
	if parent == child {
		m.logger.Warn().Interface("state", child).Msg("cannot set state as its own parent")
		return
	}

	for _, a := range m.ancestors(parent) {
		if a == child {
			m.logger.Warn().Interface("parent", parent).Interface("child", child).
				Msg("cannot create cyclic parent hierarchy")
			return
		}
	}

	if existing, exists := m.parent[child]; exists {
		m.logger.Warn().Interface("parent", parent).Interface("child", child).
			Interface("existing", existing).Msg("state already has a parent")
		return
	}

	m.parent[child] = parent
}

func (m *Machine[S]) dispatch(id eventID, arg any) {
	if !m.entered {
		m.EnterInitialState()
	}

	m.depth++
	if m.depth > 1 {
		// Recursive event: handled after the current handling is done.
		// The argument has already been copied into arg.
		m.pending = append(m.pending, invocation{id: id, arg: arg})
		return
	}

	m.execute(id, arg)
	m.drain()
}

func (m *Machine[S]) drain() {
	for len(m.pending) > 0 {
		inv := m.pending[0]
		m.pending = m.pending[1:]
		m.execute(inv.id, inv.arg)
	}
}

func (m *Machine[S]) execute(id eventID, arg any) {
	defer func() {
		m.depth--
	}()

	t := m.findTransition(id, arg)
	if t == nil {
		m.logger.Warn().Int32("event", int32(id)).Interface("state", m.current).Msg("unhandled event")
		return
	}

	if t.internal {
		if t.action != nil {
			t.action(arg)
		}
		return
	}

	previous := m.current

	for _, s := range m.ancestorsUntilCommon(previous, t.next) {
		m.runExit(s)
	}

	if t.action != nil {
		t.action(arg)
	}
	m.current = t.next

	entries := m.ancestorsUntilCommon(t.next, previous)
	for i := len(entries) - 1; i >= 0; i-- {
		m.runEntry(entries[i])
	}
}

func (m *Machine[S]) findTransition(id eventID, arg any) *transition[S] {
	for _, s := range m.ancestors(m.current) {
		for _, t := range m.transitions[transitionKey[S]{state: s, event: id}] {
			if m.guardPasses(t, arg) {
				return t
			}
		}
	}
	return nil
}

func (m *Machine[S]) guardPasses(t *transition[S], arg any) (passed bool) {
	if t.guard == nil {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn().Interface("panic", r).Msg("guard panicked, treated as not passed")
			passed = false
		}
	}()

	return t.guard(arg)
}

func (m *Machine[S]) runEntry(state S) {
	if action, exists := m.entryActions[state]; exists {
		action()
	}
}

func (m *Machine[S]) runExit(state S) {
	if action, exists := m.exitActions[state]; exists {
		action()
	}
}

// ancestors returns state followed by its parents up to the root.
func (m *Machine[S]) ancestors(state S) []S {
	ancestors := []S{state}

	s := state
	for {
		parent, exists := m.parent[s]
		if !exists {
			return ancestors
		}
		ancestors = append(ancestors, parent)
		s = parent
	}
}

// ancestorsUntilCommon returns the ancestors of state, state included, up to
// but excluding the nearest ancestor shared with reference. If state equals
// reference the result is state alone, producing the exit/entry cycle of a
// self-transition.
func (m *Machine[S]) ancestorsUntilCommon(state, reference S) []S {
	if state == reference {
		return []S{state}
	}

	referenceAncestors := m.ancestors(reference)

	var ancestors []S
	for _, a := range m.ancestors(state) {
		for _, ra := range referenceAncestors {
			if a == ra {
				return ancestors
			}
		}
		ancestors = append(ancestors, a)
	}

	return ancestors
}

func (m *Machine[S]) addTransition(key transitionKey[S], t *transition[S]) {
	if m.entered {
		m.logger.Warn().Interface("state", key.state).Msg("cannot add transitions after initial state entered")
		return
	}

	m.transitions[key] = append(m.transitions[key], t)
}

func (m *Machine[S]) addEntryAction(state S, action func()) {
	if m.entered {
		m.logger.Warn().Interface("state", state).Msg("cannot add entry action after initial state entered")
		return
	}
	if _, exists := m.entryActions[state]; exists {
		m.logger.Warn().Interface("state", state).Msg("duplicate entry action")
		return
	}

	m.entryActions[state] = action
}

func (m *Machine[S]) addExitAction(state S, action func()) {
	if m.entered {
		m.logger.Warn().Interface("state", state).Msg("cannot add exit action after initial state entered")
		return
	}
	if _, exists := m.exitActions[state]; exists {
		m.logger.Warn().Interface("state", state).Msg("duplicate exit action")
		return
	}

	m.exitActions[state] = action
}
