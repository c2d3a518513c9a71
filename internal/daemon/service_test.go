package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/store"
	"github.com/theirongolddev/pacer/internal/views"
)

type fakeSource struct {
	mu     sync.Mutex
	status string
	spend  string
	err    error
}

func (f *fakeSource) set(status, spend string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.spend, f.err = status, spend, err
}

func (f *fakeSource) Pacing(context.Context) (*analytics.PacingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	mode, status, start := "pacing", f.status, "2026-03-01"
	into, total := 10, 31
	return &analytics.PacingResponse{
		Mode:                      &mode,
		PeriodStart:               &start,
		DaysIntoPeriod:            &into,
		TotalDaysInPeriod:         &total,
		TargetAmount:              amount.F("2000.00"),
		CurrentDiscretionarySpend: amount.F(f.spend),
		PacingStatus:              &status,
	}, nil
}

func (f *fakeSource) CashFlow(context.Context) (*analytics.CashFlowResponse, error) {
	return &analytics.CashFlowResponse{
		TotalIncome:   amount.F("5000.00"),
		TotalExpenses: amount.F("3000.00"),
		LiquidAssets:  amount.F("9000.00"),
	}, nil
}

func (f *fakeSource) TargetStatus(context.Context) (*analytics.TargetStatusResponse, error) {
	return &analytics.TargetStatusResponse{}, nil
}

func (f *fakeSource) CreepSummary(context.Context) (*analytics.CreepSummaryResponse, error) {
	return &analytics.CreepSummaryResponse{}, nil
}

func (f *fakeSource) SpendingSummary(context.Context, string) (*analytics.SpendingSummaryResponse, error) {
	return &analytics.SpendingSummaryResponse{}, nil
}

func (f *fakeSource) Categories(context.Context, string) (*analytics.CategoryBreakdownResponse, error) {
	return &analytics.CategoryBreakdownResponse{}, nil
}

func (f *fakeSource) Merchants(context.Context, string, int) (*analytics.MerchantBreakdownResponse, error) {
	return &analytics.MerchantBreakdownResponse{}, nil
}

func (f *fakeSource) SpendingHistory(context.Context, int, string) (*analytics.SpendingHistoryResponse, error) {
	return &analytics.SpendingHistoryResponse{}, nil
}

func (f *fakeSource) Compute(context.Context) (*analytics.ComputationResult, error) {
	return &analytics.ComputationResult{}, nil
}

func (f *fakeSource) LockBaselines(context.Context) (*analytics.ComputationResult, error) {
	return &analytics.ComputationResult{}, nil
}

func (f *fakeSource) UnlockBaselines(context.Context) (*analytics.ComputationResult, error) {
	return &analytics.ComputationResult{}, nil
}

func (f *fakeSource) ResetBaselines(context.Context) (*analytics.ComputationResult, error) {
	return &analytics.ComputationResult{}, nil
}

func newTestService(t *testing.T, src *fakeSource, journal Journal) (*Service, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	svc := New(Config{Logger: log.New(io.Discard)}, src, views.Options{}, journal)
	svc.mount(ctx)
	t.Cleanup(svc.close)
	return svc, ctx
}

func openJournal(t *testing.T) *store.Journal {
	t.Helper()
	j, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{PacingStatus: "on_track", CurrentSpend: 500, PacingPercentage: 25}
	curr := Snapshot{PacingStatus: "behind", CurrentSpend: 1300, PacingPercentage: 65}

	delta := diffSnapshots(prev, curr)
	assert.InDelta(t, 800, delta.CurrentSpend, 1e-9)
	assert.InDelta(t, 40, delta.PacingPercentage, 1e-9)
	assert.Equal(t, "on_track", delta.FromStatus)
	assert.Equal(t, "behind", delta.ToStatus)
	assert.False(t, delta.isZero())

	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: log.New(io.Discard)}, &fakeSource{}, views.Options{}, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPollOnce_PublishesSnapshotThenPacingChange(t *testing.T) {
	src := &fakeSource{status: "on_track", spend: "500.00"}
	j := openJournal(t)
	svc, ctx := newTestService(t, src, j)

	svc.pollOnce(ctx)
	st := svc.snapshotStatus()
	assert.Equal(t, int64(1), st.PollCount)
	assert.Empty(t, st.LastError)
	assert.Equal(t, "on_track", st.Summary.PacingStatus)
	assert.Equal(t, 500.0, st.Summary.CurrentSpend)
	require.NotNil(t, st.Summary.RunwayMonths)
	assert.InDelta(t, 3.0, *st.Summary.RunwayMonths, 1e-9)
	assert.Equal(t, 1, st.EventCount)

	src.set("ahead", "650.00", nil)
	svc.refresh()
	svc.pollOnce(ctx)

	svc.mu.RLock()
	require.Len(t, svc.events, 2)
	last := svc.events[1]
	svc.mu.RUnlock()
	assert.Equal(t, EventPacingChange, last.Type)
	assert.Equal(t, "on_track", last.Delta.FromStatus)
	assert.Equal(t, "ahead", last.Delta.ToStatus)
	assert.InDelta(t, 150, last.Delta.CurrentSpend, 1e-9)

	// Unchanged data records a snapshot but publishes nothing.
	svc.refresh()
	svc.pollOnce(ctx)
	assert.Equal(t, 2, svc.snapshotStatus().EventCount)

	count, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPollOnce_ErrorKeepsLastSnapshot(t *testing.T) {
	src := &fakeSource{status: "on_track", spend: "500.00"}
	svc, ctx := newTestService(t, src, nil)
	svc.pollOnce(ctx)

	src.set("on_track", "500.00", errors.New("backend down"))
	svc.refresh()
	svc.pollOnce(ctx)

	st := svc.snapshotStatus()
	assert.Equal(t, int64(2), st.PollCount)
	assert.Equal(t, "backend down", st.LastError)
	assert.Equal(t, 500.0, st.Summary.CurrentSpend)
	assert.Equal(t, 1, st.EventCount)
}

func TestRouter(t *testing.T) {
	src := &fakeSource{status: "behind", spend: "1500.00"}
	svc, ctx := newTestService(t, src, openJournal(t))
	svc.pollOnce(ctx)

	srv := httptest.NewServer(svc.Router())
	defer srv.Close()

	get := func(path string) *http.Response {
		t.Helper()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var st Status
	resp = get("/v1/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "behind", st.Summary.PacingStatus)
	assert.True(t, st.Journal)

	var events []Event
	resp = get("/v1/events?since=1")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Empty(t, events)

	assert.Equal(t, http.StatusBadRequest, get("/v1/events?since=x").StatusCode)

	var snaps []store.Snapshot
	resp = get("/v1/snapshots?limit=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, 1500.0, snaps[0].CurrentSpend)

	assert.Equal(t, http.StatusBadRequest, get("/v1/snapshots?limit=0").StatusCode)
	assert.Equal(t, http.StatusNotFound, get("/v1/nope").StatusCode)
}
