package async

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Action is an imperative backend call taking an argument.
type Action[A, T any] func(ctx context.Context, arg A) (T, error)

// Mutation runs an Action only when Mutate is called. Concurrent calls are
// not deduplicated; whichever resolves last owns Data and Error.
type Mutation[A, T any] struct {
	action   Action[A, T]
	observer func(State[T])
	logger   *log.Logger

	emitMu sync.Mutex

	mu      sync.Mutex
	state   State[T]
	pending int
	closed  bool
}

// NewMutation wraps action. Only WithObserver and WithLogger apply.
func NewMutation[A, T any](action Action[A, T], opts ...Option) *Mutation[A, T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Mutation[A, T]{action: action, logger: o.logger}
	if fn, ok := o.observer.(func(State[T])); ok {
		m.observer = fn
	}
	return m
}

// Mutate runs the action. The outcome is stored in State and also returned,
// so callers can stop a sequence on failure.
func (m *Mutation[A, T]) Mutate(ctx context.Context, arg A) (T, error) {
	m.update(func(s *State[T]) {
		m.pending++
		s.IsLoading = true
		s.Error = ""
	})

	v, err := guard(m.logger, func() (T, error) { return m.action(ctx, arg) })

	m.update(func(s *State[T]) {
		m.pending--
		s.IsLoading = m.pending > 0
		if err != nil {
			s.Error = errorMessage(err)
			return
		}
		s.Data = &v
		s.Error = ""
	})
	return v, err
}

// Reset clears Data and Error back to their initial zero values.
func (m *Mutation[A, T]) Reset() {
	m.update(func(s *State[T]) {
		*s = State[T]{IsLoading: m.pending > 0}
	})
}

// State returns a snapshot of the current state.
func (m *Mutation[A, T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close stops all further state updates and observer calls.
func (m *Mutation[A, T]) Close() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Mutation[A, T]) update(fn func(*State[T])) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		debugf(m.logger, "dropping mutation update after close")
		return
	}
	fn(&m.state)
	snap := m.state
	m.mu.Unlock()

	if m.observer != nil {
		m.observer(snap)
	}
}
