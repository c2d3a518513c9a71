package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gate is a fetcher whose calls block until released.
type gate struct {
	calls   atomic.Int32
	release chan result
}

type result struct {
	v   int
	err error
}

func newGate() *gate { return &gate{release: make(chan result, 8)} }

func (g *gate) fetch(ctx context.Context) (int, error) {
	g.calls.Add(1)
	r := <-g.release
	return r.v, r.err
}

// recorder captures observer calls.
type recorder struct {
	mu     sync.Mutex
	states []State[int]
}

func (r *recorder) observe(s State[int]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func waitIdle[T any](t *testing.T, q *Query[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Wait(ctx))
}

func TestQuery_InitialState(t *testing.T) {
	q := NewQuery(func(context.Context) (int, error) { return 1, nil })
	s := q.State()
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsRefreshing)
	assert.Nil(t, s.Data)
}

func TestQuery_DisabledNeverFetches(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}, WithEnabled(false))

	assert.False(t, q.State().IsLoading)
	q.Start(context.Background())
	q.Refresh()
	q.SetDeps("month")
	waitIdle(t, q)

	assert.Zero(t, calls.Load())
	assert.False(t, q.State().IsLoading)
	assert.Nil(t, q.State().Data)
}

func TestQuery_LoadsOnStart(t *testing.T) {
	g := newGate()
	q := NewQuery(g.fetch)
	q.Start(context.Background())

	s := q.State()
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsRefreshing)

	g.release <- result{v: 42}
	waitIdle(t, q)

	s = q.State()
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Data)
	assert.Equal(t, 42, *s.Data)
	assert.Empty(t, s.Error)
}

func TestQuery_PanickingFetcherSettles(t *testing.T) {
	calls := 0
	q := NewQuery(func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 7, nil
		}
		panic("slice bounds out of range")
	})
	q.Start(context.Background())
	waitIdle(t, q)

	q.Refresh()
	waitIdle(t, q)

	s := q.State()
	assert.False(t, s.IsLoading)
	assert.False(t, s.IsRefreshing)
	assert.Equal(t, GenericErrorMessage, s.Error)
	require.NotNil(t, s.Data, "last good data survives the panic")
	assert.Equal(t, 7, *s.Data)
}

func TestQuery_RefreshKeepsData(t *testing.T) {
	g := newGate()
	q := NewQuery(g.fetch)
	q.Start(context.Background())
	g.release <- result{v: 1}
	waitIdle(t, q)

	q.Refresh()
	s := q.State()
	assert.True(t, s.IsRefreshing)
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Data)
	assert.Equal(t, 1, *s.Data)

	g.release <- result{v: 2}
	waitIdle(t, q)
	s = q.State()
	assert.False(t, s.IsRefreshing)
	assert.Equal(t, 2, *s.Data)
}

func TestQuery_ErrorKeepsLastData(t *testing.T) {
	g := newGate()
	q := NewQuery(g.fetch)
	q.Start(context.Background())
	g.release <- result{v: 7}
	waitIdle(t, q)

	q.Refresh()
	g.release <- result{err: errors.New("analytics: status 500")}
	waitIdle(t, q)

	s := q.State()
	assert.Equal(t, "analytics: status 500", s.Error)
	require.NotNil(t, s.Data)
	assert.Equal(t, 7, *s.Data)

	// The next attempt clears the error as it starts.
	q.Refresh()
	assert.Empty(t, q.State().Error)
	g.release <- result{v: 8}
	waitIdle(t, q)
}

func TestQuery_EmptyErrorUsesGenericMessage(t *testing.T) {
	q := NewQuery(func(context.Context) (int, error) { return 0, errors.New("") })
	st, err := q.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenericErrorMessage, st.Error)
	assert.EqualError(t, st.Err(), GenericErrorMessage)
}

func TestQuery_CloseBeforeResolutionDropsResult(t *testing.T) {
	g := newGate()
	rec := &recorder{}
	q := NewQuery(g.fetch, WithObserver(rec.observe))
	q.Start(context.Background())

	before := rec.count()
	require.Equal(t, 1, before, "loading transition should be observed")

	q.Close()
	g.release <- result{v: 99}
	waitIdle(t, q)

	assert.Equal(t, before, rec.count(), "observer called after close")
	assert.Nil(t, q.State().Data)

	// A closed query cannot be restarted or refreshed.
	q.Start(context.Background())
	q.Refresh()
	assert.Equal(t, before, rec.count())
}

func TestQuery_LatestTicketWins(t *testing.T) {
	releases := []chan int{make(chan int, 1), make(chan int, 1)}
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		i := calls.Add(1) - 1
		return <-releases[i], nil
	}

	q := NewQuery(fetch, WithDeps("week"))
	q.Start(context.Background())
	q.SetDeps("month")

	// The newer fetch resolves first, then the stale one.
	releases[1] <- 2
	require.Eventually(t, func() bool {
		d := q.State().Data
		return d != nil && *d == 2
	}, 2*time.Second, 5*time.Millisecond)

	releases[0] <- 1
	waitIdle(t, q)

	s := q.State()
	require.NotNil(t, s.Data)
	assert.Equal(t, 2, *s.Data)
	assert.False(t, s.IsLoading)
}

func TestQuery_SetDepsUnchangedDoesNotRefetch(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}, WithDeps("monthly", 6))

	_, err := q.Load(context.Background())
	require.NoError(t, err)
	q.SetDeps("monthly", 6)
	waitIdle(t, q)
	assert.EqualValues(t, 1, calls.Load())

	q.SetDeps("weekly", 6)
	waitIdle(t, q)
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, []any{"weekly", 6}, q.Deps())
}

func TestQuery_SetEnabledStartsLoad(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(func(context.Context) (int, error) {
		calls.Add(1)
		return 5, nil
	}, WithEnabled(false))
	q.Start(context.Background())
	assert.Zero(t, calls.Load())

	q.SetEnabled(true)
	waitIdle(t, q)
	assert.EqualValues(t, 1, calls.Load())
	require.NotNil(t, q.State().Data)
}

func TestQuery_LoadingAndRefreshingNeverBoth(t *testing.T) {
	g := newGate()
	var bad atomic.Bool
	q := NewQuery(g.fetch, WithObserver(func(s State[int]) {
		if s.IsLoading && s.IsRefreshing {
			bad.Store(true)
		}
	}))
	q.Start(context.Background())
	q.Refresh()
	q.SetDeps("x")
	q.Refresh()
	for range 4 {
		g.release <- result{v: 1}
	}
	waitIdle(t, q)
	assert.False(t, bad.Load())
}

func TestMutation_ResetAfterFailure(t *testing.T) {
	m := NewMutation(func(_ context.Context, n int) (int, error) {
		return 0, errors.New("computation failed")
	})

	_, err := m.Mutate(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "computation failed", m.State().Error)

	m.Reset()
	s := m.State()
	assert.Empty(t, s.Error)
	assert.Nil(t, s.Data)
	assert.False(t, s.IsLoading)
}

func TestMutation_PanickingActionReturnsError(t *testing.T) {
	m := NewMutation(func(_ context.Context, n int) (int, error) {
		panic("boom")
	})

	_, err := m.Mutate(context.Background(), 1)
	require.ErrorIs(t, err, ErrPanicked)
	s := m.State()
	assert.False(t, s.IsLoading)
	assert.Equal(t, GenericErrorMessage, s.Error)
}

func TestMutation_SequentialCallsEachCycleLoading(t *testing.T) {
	var transitions []bool
	var mu sync.Mutex
	m := NewMutation(func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}, WithObserver(func(s State[int]) {
		mu.Lock()
		transitions = append(transitions, s.IsLoading)
		mu.Unlock()
	}))

	v, err := m.Mutate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = m.Mutate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	assert.Equal(t, []bool{true, false, true, false}, transitions)
	require.NotNil(t, m.State().Data)
	assert.Equal(t, 10, *m.State().Data)
}

func TestMutation_LastResolvedWins(t *testing.T) {
	slow := make(chan struct{})
	m := NewMutation(func(_ context.Context, n int) (int, error) {
		if n == 1 {
			<-slow
		}
		return n, nil
	})

	done := make(chan struct{})
	go func() {
		_, _ = m.Mutate(context.Background(), 1)
		close(done)
	}()
	require.Eventually(t, func() bool { return m.State().IsLoading }, time.Second, time.Millisecond)

	_, err := m.Mutate(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, m.State().IsLoading, "first call still pending")

	close(slow)
	<-done
	s := m.State()
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Data)
	assert.Equal(t, 1, *s.Data)
}

func TestMutation_CloseSuppressesUpdates(t *testing.T) {
	rec := &recorder{}
	m := NewMutation(func(_ context.Context, n int) (int, error) { return n, nil }, WithObserver(rec.observe))
	m.Close()

	v, err := m.Mutate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Zero(t, rec.count())
	assert.Nil(t, m.State().Data)
}
