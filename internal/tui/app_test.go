package tui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/views"
)

func ptr[T any](v T) *T { return &v }

type fakeSource struct {
	mu         sync.Mutex
	resets     int
	periodSeen []string
}

func (f *fakeSource) Pacing(context.Context) (*analytics.PacingResponse, error) {
	return &analytics.PacingResponse{
		Mode:                      ptr("pacing"),
		PeriodStart:               ptr("2026-10-01"),
		PeriodEnd:                 ptr("2026-10-31"),
		DaysIntoPeriod:            ptr(16),
		TotalDaysInPeriod:         ptr(31),
		TargetAmount:              amount.F("2000.00"),
		CurrentDiscretionarySpend: amount.F("1200.00"),
		PacingStatus:              ptr("on_track"),
	}, nil
}

func (f *fakeSource) TargetStatus(context.Context) (*analytics.TargetStatusResponse, error) {
	return &analytics.TargetStatusResponse{
		Status:          ptr("established"),
		MonthsAvailable: ptr(3),
		MonthsRequired:  ptr(3),
		TargetAmount:    amount.F("2000.00"),
	}, nil
}

func (f *fakeSource) CreepSummary(context.Context) (*analytics.CreepSummaryResponse, error) {
	return &analytics.CreepSummaryResponse{OverallSeverity: ptr("low")}, nil
}

func (f *fakeSource) SpendingSummary(_ context.Context, periodType string) (*analytics.SpendingSummaryResponse, error) {
	f.mu.Lock()
	f.periodSeen = append(f.periodSeen, periodType)
	f.mu.Unlock()
	return &analytics.SpendingSummaryResponse{
		PeriodType:    ptr(periodType),
		TotalSpending: amount.F("1500.00"),
		TotalIncome:   amount.F("4000.00"),
	}, nil
}

func (f *fakeSource) CashFlow(context.Context) (*analytics.CashFlowResponse, error) {
	return &analytics.CashFlowResponse{
		TotalIncome:   amount.F("4000.00"),
		TotalExpenses: amount.F("3000.00"),
		NetFlow:       amount.F("1000.00"),
		SavingsRate:   amount.F("25"),
	}, nil
}

func (f *fakeSource) Categories(_ context.Context, timeRange string) (*analytics.CategoryBreakdownResponse, error) {
	return &analytics.CategoryBreakdownResponse{
		TimeRange: ptr(timeRange),
		Total:     amount.F("300.00"),
		Categories: []analytics.CategorySpending{
			{CategoryName: "groceries", Amount: amount.F("200.00"), TransactionCount: 4},
			{CategoryName: "dining", Amount: amount.F("100.00"), TransactionCount: 2},
		},
	}, nil
}

func (f *fakeSource) Merchants(_ context.Context, timeRange string, _ int) (*analytics.MerchantBreakdownResponse, error) {
	return &analytics.MerchantBreakdownResponse{TimeRange: ptr(timeRange)}, nil
}

func (f *fakeSource) SpendingHistory(context.Context, int, string) (*analytics.SpendingHistoryResponse, error) {
	return &analytics.SpendingHistoryResponse{}, nil
}

func (f *fakeSource) result(msg string) *analytics.ComputationResult {
	return &analytics.ComputationResult{Status: "success", Message: ptr(msg)}
}

func (f *fakeSource) Compute(context.Context) (*analytics.ComputationResult, error) {
	return f.result("computed"), nil
}

func (f *fakeSource) LockBaselines(context.Context) (*analytics.ComputationResult, error) {
	return f.result("locked"), nil
}

func (f *fakeSource) UnlockBaselines(context.Context) (*analytics.ComputationResult, error) {
	return f.result("unlocked"), nil
}

func (f *fakeSource) ResetBaselines(context.Context) (*analytics.ComputationResult, error) {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
	return f.result("baselines reset"), nil
}

func (f *fakeSource) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func (f *fakeSource) lastPeriod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.periodSeen) == 0 {
		return ""
	}
	return f.periodSeen[len(f.periodSeen)-1]
}

func newTestApp(t *testing.T) (App, *fakeSource) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	src := &fakeSource{}
	cfg := config.DefaultConfig()
	cfg.General.PeriodType = "monthly"
	a := NewApp(context.Background(), Options{
		Config: cfg,
		Source: src,
		Logger: log.New(io.Discard),
	})
	t.Cleanup(a.Close)

	require.NotNil(t, a.s)
	a.s.start()
	waitSettled(t, a)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), src
}

func waitSettled(t *testing.T, a App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.s.pacing.Wait(ctx))
	require.NoError(t, a.s.target.Wait(ctx))
	require.NoError(t, a.s.cashFlow.Wait(ctx))
	require.NoError(t, a.s.spending.Wait(ctx))
	require.NoError(t, a.s.categories.Wait(ctx))
	require.NoError(t, a.s.merchants.Wait(ctx))
	require.NoError(t, a.s.history.Wait(ctx))
	require.NoError(t, a.s.creep.Wait(ctx))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, msg tea.KeyMsg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestTabAtX(t *testing.T) {
	a := App{activeTab: tabPacing}

	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		assert.Equal(t, i, a.tabAtX(pos), "left edge of %q", tab.Name)
		assert.Equal(t, i, a.tabAtX(pos+w-1), "right edge of %q", tab.Name)
		pos += w + 1
	}
	assert.Equal(t, -1, a.tabAtX(pos+50))
}

func TestTabKeys(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Equal(t, tabPacing, a.activeTab)

	a, _ = press(t, a, runes("e"))
	assert.Equal(t, tabCreep, a.activeTab)

	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabSettings, a.activeTab)

	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabPacing, a.activeTab, "right wraps to the first tab")

	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabSettings, a.activeTab, "left wraps to the last tab")
}

func TestViewShowsPacing(t *testing.T) {
	a, _ := newTestApp(t)

	out := a.View()
	assert.Contains(t, out, "Pacing")
	assert.Contains(t, out, "$1,200.00")
	assert.Contains(t, out, "$2,000.00")
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	assert.Contains(t, m.(App).View(), "Terminal too narrow")
}

func TestCyclePeriodType(t *testing.T) {
	a, src := newTestApp(t)
	a.activeTab = tabSpending

	a, _ = press(t, a, runes("t"))
	assert.Equal(t, "yearly", a.periodType)
	assert.Equal(t, "yearly", a.s.spending.Param())

	waitSettled(t, a)
	assert.Equal(t, "yearly", src.lastPeriod())
	require.NotNil(t, a.s.spending.State().Data)
	assert.Equal(t, "yearly", a.s.spending.State().Data.PeriodType)
}

func TestResetNeedsConfirmation(t *testing.T) {
	a, src := newTestApp(t)
	a.activeTab = tabCreep

	a, cmd := press(t, a, runes("X"))
	assert.Nil(t, cmd)
	assert.True(t, a.confirmReset)
	assert.Contains(t, a.View(), "press X again")

	a, cmd = press(t, a, runes("X"))
	require.NotNil(t, cmd)
	assert.Equal(t, views.ActionReset, a.pending)

	msg, ok := cmd().(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, views.ActionReset, msg.action)
	assert.Equal(t, 1, src.resetCount())

	m, _ := a.Update(msg)
	a = m.(App)
	assert.Empty(t, a.pending)
	assert.Equal(t, "baselines reset", a.notice)
}

func TestResetCancelledByOtherKey(t *testing.T) {
	a, src := newTestApp(t)
	a.activeTab = tabCreep

	a, _ = press(t, a, runes("X"))
	a, _ = press(t, a, runes("L"))
	a.pending = ""
	a, cmd := press(t, a, runes("X"))

	assert.Nil(t, cmd)
	assert.True(t, a.confirmReset)
	assert.Zero(t, src.resetCount())
}

func TestStaleSessionMessageIgnored(t *testing.T) {
	a, _ := newTestApp(t)
	stale := newSession(context.Background(), &fakeSource{}, a.viewOptions(), a.params())
	defer stale.close()

	m, cmd := a.Update(stateChangedMsg{s: stale})
	assert.Nil(t, cmd)
	assert.True(t, m.(App).updatedAt.IsZero())
}

func TestNoSourceOpensSetup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := NewApp(context.Background(), Options{Config: config.DefaultConfig(), Logger: log.New(io.Discard)})

	assert.Nil(t, a.s)
	assert.NotNil(t, a.setupForm)
}

func TestSettingsRejectsInvalidMonths(t *testing.T) {
	a, _ := newTestApp(t)
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldHistoryMonths

	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.settings.editing)

	a.settings.input.SetValue("99")
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, a.settings.editing)
	require.Error(t, a.settings.saveErr)
	assert.Contains(t, a.settings.saveErr.Error(), "history months")
	assert.Equal(t, views.Defaults.HistoryMonths, a.months)
}

func TestSettingsSavesTimeRange(t *testing.T) {
	a, _ := newTestApp(t)
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldTimeRange

	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a.settings.input.SetValue("YEAR")
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	require.NoError(t, a.settings.saveErr)
	assert.Equal(t, "year", a.timeRange)
	assert.Equal(t, "year", a.s.categories.Param())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "year", cfg.General.TimeRange)
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b", "c"}
	assert.Equal(t, "b", cycle(opts, "a"))
	assert.Equal(t, "a", cycle(opts, "c"))
	assert.Equal(t, "a", cycle(opts, "zzz"))
}
