package dialogue

import (
	"math/rand"
	"time"
)

// Session is the stateful wrapper around the assembler: a single-owner
// accumulator of turn count, mood history, and the last wisdom principle.
// It is not safe for concurrent use; distinct sessions are fully
// independent and may run in parallel.
type Session struct {
	assembler *Assembler
	rng       *rand.Rand
	state     State
}

// SessionOption configures a new session.
type SessionOption func(*Session)

// WithRand injects the session's random source. Tests use a seeded
// source to make pool draws reproducible.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = rng }
}

// WithState restores a previously captured conversation state.
func WithState(st State) SessionOption {
	return func(s *Session) { s.state = st.clone() }
}

// NewSession creates a fresh conversation over the assembler.
func NewSession(a *Assembler, opts ...SessionOption) *Session {
	s := &Session{assembler: a}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Respond runs one turn and advances the session's state.
func (s *Session) Respond(message string) Reply {
	reply, next := s.assembler.Respond(s.rng, message, s.state)
	s.state = next
	return reply
}

// State returns a copy of the accumulated conversation state.
func (s *Session) State() State {
	return s.state.clone()
}

// TurnCount returns the number of completed turns.
func (s *Session) TurnCount() int {
	return s.state.TurnCount
}
