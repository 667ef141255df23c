package selection

import "time"

// Store owns the selection state of one session. It is not safe for concurrent
// use; the session that owns it is the only writer.
type Store struct {
	state       State
	restored    bool
	now         func() time.Time
	strict      bool
	onViolation func(Action, []InvariantViolation)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for month navigation and the initial window.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithStrictInvariants makes Dispatch panic on an invariant violation instead
// of normalizing the state.
func WithStrictInvariants(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// WithViolationHook is called with every repaired violation in non-strict mode.
func WithViolationHook(hook func(Action, []InvariantViolation)) Option {
	return func(s *Store) { s.onViolation = hook }
}

// WithState starts the store from a previously saved snapshot. The snapshot
// is normalized, so a corrupt file cannot smuggle in an invalid state.
func WithState(state State) Option {
	return func(s *Store) {
		normalized, _ := Normalize(state)
		s.state = normalized
		s.restored = true
	}
}

// NewStore creates a store in the initial state unless WithState is given.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if !s.restored {
		s.state = InitialState(s.now())
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	return s.state.Clone()
}

// Dispatch applies an action. On a validation error the state is unchanged and
// the error is returned together with the unchanged snapshot.
func (s *Store) Dispatch(a Action) (State, error) {
	next, err := Reduce(s.state, stampClock(a, s.now()))
	if err != nil {
		return s.State(), err
	}

	normalized, violations := Normalize(next)
	if len(violations) > 0 {
		if s.strict {
			v := violations[0]
			panic(&v)
		}
		if s.onViolation != nil {
			s.onViolation(a, violations)
		}
	}

	s.state = normalized
	return s.State(), nil
}
