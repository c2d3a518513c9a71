package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/views"
)

// stateChangedMsg reports that some query in s changed state. The View
// reads the queries directly, so the message carries no data.
type stateChangedMsg struct{ s *session }

// mutationDoneMsg is sent when a creep action finishes.
type mutationDoneMsg struct {
	action string
	result views.ComputationModel
	err    error
}

type sessionParams struct {
	periodType string
	timeRange  string
	history    views.HistoryParams
}

// session owns every query the dashboard renders. It is shared by all
// copies of the App value and replaced wholesale when the source or the
// view options change.
type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan struct{}

	pacing     *async.Query[views.PacingModel]
	target     *async.Query[views.TargetStatusModel]
	cashFlow   *async.Query[views.CashFlowModel]
	spending   *views.SpendingSummaryView
	categories *views.BreakdownView
	merchants  *views.BreakdownView
	history    *views.HistoryView
	creep      *async.Query[views.CreepModel]

	mutations map[string]*views.Mutation
}

// notify returns an observer that wakes the update loop without blocking.
// Bursts collapse into one wakeup.
func notify[T any](ch chan struct{}) async.Option {
	return async.WithObserver(func(async.State[T]) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
}

func newSession(parent context.Context, src views.Source, o views.Options, p sessionParams) *session {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan struct{}, 1)

	s := &session{
		ctx:     ctx,
		cancel:  cancel,
		updates: ch,

		pacing:     views.NewPacing(src, o, notify[views.PacingModel](ch)),
		target:     views.NewTargetStatus(src, o, notify[views.TargetStatusModel](ch)),
		cashFlow:   views.NewCashFlow(src, o, notify[views.CashFlowModel](ch)),
		spending:   views.NewSpendingSummary(src, o, p.periodType, notify[views.SpendingSummaryModel](ch)),
		categories: views.NewCategoryBreakdown(src, o, p.timeRange, notify[views.BreakdownModel](ch)),
		merchants:  views.NewMerchantBreakdown(src, o, p.timeRange, views.Defaults.MerchantLimit, notify[views.BreakdownModel](ch)),
		history:    views.NewHistory(src, o, p.history, notify[views.HistoryModel](ch)),
		creep:      views.NewCreep(src, o, notify[views.CreepModel](ch)),

		mutations: make(map[string]*views.Mutation, 4),
	}
	for _, action := range []string{views.ActionCompute, views.ActionLock, views.ActionUnlock, views.ActionReset} {
		s.mutations[action] = views.NewCreepMutation(action, src, o, notify[views.ComputationModel](ch))
	}
	return s
}

func (s *session) start() {
	s.pacing.Start(s.ctx)
	s.target.Start(s.ctx)
	s.cashFlow.Start(s.ctx)
	s.spending.Start(s.ctx)
	s.categories.Start(s.ctx)
	s.merchants.Start(s.ctx)
	s.history.Start(s.ctx)
	s.creep.Start(s.ctx)
}

func (s *session) refreshAll() {
	s.pacing.Refresh()
	s.target.Refresh()
	s.cashFlow.Refresh()
	s.spending.Refresh()
	s.categories.Refresh()
	s.merchants.Refresh()
	s.history.Refresh()
	s.creep.Refresh()
}

// refreshAfterMutation refetches the views a creep action can change.
func (s *session) refreshAfterMutation() {
	s.creep.Refresh()
	s.pacing.Refresh()
	s.target.Refresh()
}

func (s *session) close() {
	s.pacing.Close()
	s.target.Close()
	s.cashFlow.Close()
	s.spending.Close()
	s.categories.Close()
	s.merchants.Close()
	s.history.Close()
	s.creep.Close()
	for _, m := range s.mutations {
		m.Close()
	}
	s.cancel()
}

func inFlight[T any](st async.State[T]) bool {
	return st.IsLoading || st.IsRefreshing
}

// busy reports whether any query or action is in flight.
func (s *session) busy() bool {
	if inFlight(s.pacing.State()) || inFlight(s.target.State()) || inFlight(s.cashFlow.State()) ||
		inFlight(s.spending.State()) || inFlight(s.categories.State()) || inFlight(s.merchants.State()) ||
		inFlight(s.history.State()) || inFlight(s.creep.State()) {
		return true
	}
	return s.mutating() != ""
}

// mutating returns the creep action in flight, if any.
func (s *session) mutating() string {
	for action, m := range s.mutations {
		if m.State().IsLoading {
			return action
		}
	}
	return ""
}

// waitForUpdate blocks until the session reports a change or is closed.
func waitForUpdate(s *session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.updates:
			return stateChangedMsg{s: s}
		case <-s.ctx.Done():
			return nil
		}
	}
}

// mutateCmd runs a creep action in the background.
func (s *session) mutateCmd(action string) tea.Cmd {
	m := s.mutations[action]
	return func() tea.Msg {
		res, err := m.Mutate(s.ctx, struct{}{})
		return mutationDoneMsg{action: action, result: res, err: err}
	}
}
