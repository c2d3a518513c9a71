package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/classify"
)

func series(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Value: v}
	}
	return s
}

func TestComputeChartMetrics_Empty(t *testing.T) {
	assert.Equal(t, ChartMetrics{MaxValue: 100, Average: 0}, ComputeChartMetrics(nil))
	assert.Equal(t, ChartMetrics{MaxValue: 100, Average: 0}, ComputeChartMetrics(Series{}))
}

func TestComputeChartMetrics_AllZeroFallsBackToDefault(t *testing.T) {
	m := ComputeChartMetrics(series(0, 0, 0))
	assert.Equal(t, 100.0, m.MaxValue)
	assert.Equal(t, 0.0, m.Average)
}

func TestComputeChartMetrics_Headroom(t *testing.T) {
	m := ComputeChartMetrics(series(100, 200, 300))
	// 300 * 1.15 = 345 -> 400
	assert.Equal(t, 400.0, m.MaxValue)
	assert.Equal(t, 200.0, m.Average)
}

func TestComputeChartMetrics_CeilingProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		n := 1 + r.IntN(12)
		s := make(Series, n)
		peak := 0.0
		for i := range s {
			s[i].Value = r.Float64() * 25000
			peak = math.Max(peak, s[i].Value)
		}
		m := ComputeChartMetrics(s)
		require.GreaterOrEqual(t, m.MaxValue, peak)
		require.Zero(t, math.Mod(m.MaxValue, 100), "max %v not a multiple of 100", m.MaxValue)
	}
}

func TestComputeTrend_ShortSeriesIsIncomparable(t *testing.T) {
	assert.Nil(t, ComputeTrend(nil).ChangePercentage)
	one := ComputeTrend(series(42))
	assert.Nil(t, one.ChangePercentage)
	assert.Equal(t, 42.0, one.Average)
}

func TestComputeTrend_SplitWindow(t *testing.T) {
	tr := ComputeTrend(series(100, 100, 200, 200))
	assert.Equal(t, 150.0, tr.Average)
	require.NotNil(t, tr.ChangePercentage)
	assert.Equal(t, 100.0, *tr.ChangePercentage)
}

func TestComputeTrend_OddLengthMidpointIsRecent(t *testing.T) {
	// mid = 1: older = [100], recent = [50, 50]
	tr := ComputeTrend(series(100, 50, 50))
	require.NotNil(t, tr.ChangePercentage)
	assert.Equal(t, -50.0, *tr.ChangePercentage)
}

func TestComputeTrend_ZeroOlderHalfIsNil(t *testing.T) {
	tr := ComputeTrend(series(0, 0, 300, 300))
	assert.Nil(t, tr.ChangePercentage)
	assert.Equal(t, 150.0, tr.Average)
}

func TestComputeRunway(t *testing.T) {
	assert.Nil(t, ComputeRunway(0, 500))
	assert.Nil(t, ComputeRunway(1000, 0))
	assert.Nil(t, ComputeRunway(-50, 500))
	assert.Nil(t, ComputeRunway(1000, -1))

	r := ComputeRunway(6000, 2000)
	require.NotNil(t, r)
	assert.Equal(t, 3.0, *r)
}

func TestFormatRunway(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	assert.Equal(t, "—", FormatRunway(nil))
	assert.Equal(t, "3.0mo", FormatRunway(v(3)))
	assert.Equal(t, "11.9mo", FormatRunway(v(11.94)))
	assert.Equal(t, "1y", FormatRunway(v(12)))
	assert.Equal(t, "1y 6mo", FormatRunway(v(18.7)))
	assert.Equal(t, "2y", FormatRunway(v(24.5)))
	assert.Equal(t, "1y", FormatRunway(v(11.96)), "rounds before the year check")
	assert.Equal(t, "2y", FormatRunway(v(23.97)))
}

func TestComputeBalanceRatios(t *testing.T) {
	assert.Equal(t, BalanceRatios{Progress: 1, Savings: 0}, ComputeBalanceRatios(1000, 1000))
	assert.Equal(t, BalanceRatios{Progress: 0, Savings: 1}, ComputeBalanceRatios(1000, 0))
	assert.Equal(t, BalanceRatios{Progress: 1, Savings: 0}, ComputeBalanceRatios(1000, 5000))
	assert.Equal(t, BalanceRatios{Progress: 1, Savings: 0}, ComputeBalanceRatios(0, 10))
	assert.Equal(t, BalanceRatios{}, ComputeBalanceRatios(0, 0))
}

func TestComputeBalanceRatios_SumIsExactlyOne(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 1000 {
		income := 0.01 + r.Float64()*100000
		expenses := r.Float64() * 150000
		b := ComputeBalanceRatios(income, expenses)
		require.Equal(t, 1.0, b.Progress+b.Savings, "income=%v expenses=%v", income, expenses)
	}
}

func TestComputeTargetComparison(t *testing.T) {
	at := ComputeTargetComparison(500, 500)
	assert.Equal(t, 0.0, at.ChangeFromTarget)
	assert.Equal(t, "+0.0%", at.Formatted)
	assert.Equal(t, classify.Success, at.Color)

	over := ComputeTargetComparison(500, 600)
	assert.Equal(t, 20.0, over.ChangeFromTarget)
	assert.Equal(t, "+20.0%", over.Formatted)
	assert.Equal(t, classify.Error, over.Color)

	under := ComputeTargetComparison(500, 450)
	assert.Equal(t, "-10.0%", under.Formatted)
	assert.Equal(t, classify.Success, under.Color)

	noTarget := ComputeTargetComparison(0, 450)
	assert.Equal(t, 0.0, noTarget.ChangeFromTarget)
}

func TestPacingAndExpectedPercentages(t *testing.T) {
	assert.Equal(t, 0.0, ComputePacingPercentage(100, 0))
	assert.Equal(t, 50.0, ComputePacingPercentage(250, 500))
	assert.Equal(t, 0.0, ComputeExpectedPercentage(3, 0))
	assert.Equal(t, 50.0, ComputeExpectedPercentage(15, 30))
	assert.Equal(t, 100.0, ComputeExpectedPercentage(40, 30))
}

func TestSeriesFromValues(t *testing.T) {
	s := SeriesFromValues([]string{"Jan", "Feb", "Mar"}, []float64{1, 2})
	require.Len(t, s, 2)
	assert.Equal(t, []string{"Jan", "Feb"}, s.Labels())
	assert.Equal(t, []float64{1, 2}, s.Values())
}
