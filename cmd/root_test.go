package cmd

import (
	"bufio"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/views"
)

func TestQueryErrorRecoversSentinels(t *testing.T) {
	assert.ErrorIs(t, queryError(analytics.ErrUnauthorized.Error()), analytics.ErrUnauthorized)
	assert.ErrorIs(t, queryError(analytics.ErrNotFound.Error()), analytics.ErrNotFound)
	assert.EqualError(t, queryError("boom"), "boom")
}

func TestFriendlyError(t *testing.T) {
	assert.Contains(t, friendlyError(analytics.ErrUnauthorized).Error(), "pacer setup")
	assert.Contains(t, friendlyError(analytics.ErrRateLimited).Error(), "try again")
	assert.Contains(t, friendlyError(analytics.ErrNotFound).Error(), "pacer compute")

	apiErr := &analytics.APIError{Status: 500, Detail: "db down"}
	var target *analytics.APIError
	assert.True(t, errors.As(friendlyError(apiErr), &target))

	plain := errors.New("plain")
	assert.Same(t, plain, friendlyError(plain))
}

func TestBackendFlagOverrides(t *testing.T) {
	t.Cleanup(func() { flagPeriodType, flagTimeRange, flagMonths = "", "", 0 })

	b := &backend{}
	b.cfg.General.PeriodType = "weekly"
	b.cfg.General.TimeRange = "year"
	assert.Equal(t, "weekly", b.periodType())
	assert.Equal(t, "year", b.timeRange())
	assert.Equal(t, 6, b.months())

	flagPeriodType, flagTimeRange, flagMonths = "YEARLY", "bogus", 12
	assert.Equal(t, "yearly", b.periodType())
	assert.Equal(t, "month", b.timeRange(), "unknown ranges fall back to the default")
	assert.Equal(t, 12, b.months())
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2026-10-01 → 2026-10-31", periodLabel("2026-10-01", "2026-10-31"))
	assert.Equal(t, "2026-10-01", periodLabel("2026-10-01", ""))
	assert.Equal(t, "—", periodLabel("", ""))
}

func TestChoose(t *testing.T) {
	opts := []string{"weekly", "monthly", "yearly"}
	pick := func(in string) string {
		return choose(bufio.NewReader(strings.NewReader(in)), opts, "monthly")
	}
	assert.Equal(t, "yearly", pick("3\n"))
	assert.Equal(t, "monthly", pick("\n"))
	assert.Equal(t, "monthly", pick("9\n"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", ":1", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", ":1"}, got)
}

func TestPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacerd.pid")
	require.NoError(t, writePID(path, 4242))

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
	assert.NoError(t, ensureDaemonNotRunning(filepath.Join(t.TempDir(), "missing.pid")))
}

func TestReportCreepActionFailuresExitNonZero(t *testing.T) {
	t.Cleanup(func() { flagJSON = false })
	for _, asJSON := range []bool{true, false} {
		flagJSON = asJSON
		failed := &analytics.ComputationError{Message: "not enough history"}
		res := views.ComputationModel{Status: "failed", Message: "not enough history"}

		assert.EqualError(t, reportCreepAction(views.ActionCompute, res, failed), views.ActionCompute+" failed: not enough history", "json=%v", asJSON)
		err := reportCreepAction(views.ActionLock, views.ComputationModel{}, analytics.ErrRateLimited)
		require.Error(t, err, "json=%v", asJSON)
		assert.Contains(t, err.Error(), "try again")
		assert.NoError(t, reportCreepAction(views.ActionUnlock, views.ComputationModel{Status: "success"}, nil), "json=%v", asJSON)
	}
}
