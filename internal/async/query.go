package async

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Fetcher loads one value from the backend.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query owns the fetch state for one consumer.
//
// Lifecycle: NewQuery creates it (IsLoading=true unless disabled), Start
// mounts it and runs the first fetch, SetDeps re-runs on a changed
// dependency list, Refresh re-runs while keeping Data visible, and Close
// unmounts it. Every fetch takes a ticket; only the latest ticket may
// update state.
type Query[T any] struct {
	fetch    Fetcher[T]
	observer func(State[T])
	logger   *log.Logger

	// emitMu serializes state transitions with their observer calls so no
	// notification can follow Close.
	emitMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	state    State[T]
	enabled  bool
	deps     []any
	depsHash uint64
	hashed   bool
	mounted  bool
	closed   bool
	ticket   uint64
	inflight int
	idle     chan struct{}
}

// NewQuery returns an unmounted query around fetch.
func NewQuery[T any](fetch Fetcher[T], opts ...Option) *Query[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	q := &Query[T]{
		fetch:   fetch,
		logger:  o.logger,
		enabled: o.enabled,
		deps:    o.deps,
		state:   State[T]{IsLoading: o.enabled},
	}
	if fn, ok := o.observer.(func(State[T])); ok {
		q.observer = fn
	}
	q.depsHash, q.hashed = hashDeps(o.deps)
	return q
}

// Start mounts the query. Fetches run with ctx, which should outlive the
// consumer; Close suppresses results but does not cancel ctx.
func (q *Query[T]) Start(ctx context.Context) {
	q.mu.Lock()
	if q.mounted || q.closed {
		q.mu.Unlock()
		return
	}
	q.ctx = ctx
	q.mounted = true
	enabled := q.enabled
	q.mu.Unlock()

	if enabled {
		q.run(false)
	}
}

// SetDeps replaces the dependency list. A changed list re-enters loading.
func (q *Query[T]) SetDeps(deps ...any) {
	h, ok := hashDeps(deps)

	q.mu.Lock()
	changed := !ok || !q.hashed || h != q.depsHash
	q.deps = deps
	q.depsHash, q.hashed = h, ok
	active := q.mounted && q.enabled
	q.mu.Unlock()

	if changed && active {
		q.run(false)
	}
}

// Deps returns the current dependency list.
func (q *Query[T]) Deps() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deps
}

// SetEnabled toggles fetching. Enabling a mounted query starts a load;
// disabling it clears IsLoading.
func (q *Query[T]) SetEnabled(enabled bool) {
	q.emitMu.Lock()
	q.mu.Lock()
	if q.enabled == enabled {
		q.mu.Unlock()
		q.emitMu.Unlock()
		return
	}
	q.enabled = enabled
	mounted := q.mounted
	var snap State[T]
	if !enabled {
		// Invalidate any fetch in flight.
		q.ticket++
		q.state.IsLoading = false
		q.state.IsRefreshing = false
		snap = q.state
	}
	q.mu.Unlock()

	if !enabled && mounted {
		q.notify(snap)
	}
	q.emitMu.Unlock()

	if enabled && mounted {
		q.run(false)
	}
}

// Refresh re-runs the fetch with IsRefreshing set, leaving Data in place.
// It is a no-op before Start, after Close, or while disabled.
func (q *Query[T]) Refresh() {
	q.run(true)
}

// Close unmounts the query. Results that resolve afterwards are dropped and
// the observer is never called again.
func (q *Query[T]) Close() {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mounted = false
	q.closed = true
}

// State returns a snapshot of the current state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Wait blocks until no fetch is in flight or ctx is done.
func (q *Query[T]) Wait(ctx context.Context) error {
	q.mu.Lock()
	if q.inflight == 0 {
		q.mu.Unlock()
		return nil
	}
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load starts the query if needed, waits for the in-flight fetch and returns
// the resulting state. It is the one-shot path used by the CLI.
func (q *Query[T]) Load(ctx context.Context) (State[T], error) {
	q.Start(ctx)
	if err := q.Wait(ctx); err != nil {
		return q.State(), err
	}
	return q.State(), nil
}

func (q *Query[T]) run(refreshing bool) {
	q.emitMu.Lock()
	q.mu.Lock()
	if !q.mounted || !q.enabled {
		q.mu.Unlock()
		q.emitMu.Unlock()
		return
	}

	q.ticket++
	ticket := q.ticket
	q.state.Error = ""
	q.state.IsLoading = !refreshing
	q.state.IsRefreshing = refreshing
	if q.inflight == 0 {
		q.idle = make(chan struct{})
	}
	q.inflight++
	ctx := q.ctx
	snap := q.state
	q.mu.Unlock()

	q.notify(snap)
	q.emitMu.Unlock()

	go q.resolve(ctx, ticket)
}

func (q *Query[T]) resolve(ctx context.Context, ticket uint64) {
	v, err := guard(q.logger, func() (T, error) { return q.fetch(ctx) })

	q.emitMu.Lock()
	defer q.emitMu.Unlock()
	q.mu.Lock()

	apply := true
	switch {
	case !q.mounted:
		debugf(q.logger, "dropping result after close", "ticket", ticket)
		apply = false
	case ticket != q.ticket:
		debugf(q.logger, "dropping stale result", "ticket", ticket, "latest", q.ticket)
		apply = false
	}

	if apply {
		q.state.IsLoading = false
		q.state.IsRefreshing = false
		if err != nil {
			q.state.Error = errorMessage(err)
			debugf(q.logger, "fetch failed", "err", err)
		} else {
			q.state.Data = &v
			q.state.Error = ""
		}
	}
	snap := q.state

	q.inflight--
	if q.inflight == 0 {
		close(q.idle)
	}
	q.mu.Unlock()

	if apply {
		q.notify(snap)
	}
}

func (q *Query[T]) notify(s State[T]) {
	if q.observer != nil {
		q.observer(s)
	}
}
