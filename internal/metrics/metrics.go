// Package metrics holds the pure calculators behind every chart and summary:
// axis scaling, split-window trend, runway, balance ratios and target deltas.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/pacer/internal/classify"
)

// Point is one bar of a chart series.
type Point struct {
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Date  *time.Time `json:"date,omitempty"`
}

// Series is a chronological sequence of points, oldest first.
type Series []Point

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Labels returns the point labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// SeriesFromValues builds a series from parallel label/value slices.
// Extra labels or values beyond the shorter slice are ignored.
func SeriesFromValues(labels []string, values []float64) Series {
	n := min(len(labels), len(values))
	s := make(Series, n)
	for i := range n {
		s[i] = Point{Label: labels[i], Value: values[i]}
	}
	return s
}

// ChartMetrics scales a chart's value axis.
type ChartMetrics struct {
	MaxValue float64 `json:"max_value"`
	Average  float64 `json:"average"`
}

const (
	headroom    = 1.15
	axisStep    = 100.0
	defaultAxis = 100.0
)

// ComputeChartMetrics returns the axis ceiling (max plus 15% headroom,
// rounded up to the next hundred) and the mean value.
func ComputeChartMetrics(s Series) ChartMetrics {
	if len(s) == 0 {
		return ChartMetrics{MaxValue: defaultAxis}
	}

	peak := math.Inf(-1)
	for _, p := range s {
		peak = math.Max(peak, p.Value)
	}

	ceiling := math.Ceil(peak*headroom/axisStep) * axisStep
	if ceiling == 0 || math.IsNaN(ceiling) || math.IsInf(ceiling, 0) {
		ceiling = defaultAxis
	}
	return ChartMetrics{MaxValue: ceiling, Average: mean(s)}
}

// Trend is a two-bucket comparison of a series' older and recent halves.
// ChangePercentage is nil when the halves cannot be compared; nil is not 0%.
type Trend struct {
	Average          float64  `json:"average"`
	ChangePercentage *float64 `json:"change_percentage"`
}

// ComputeTrend splits the series at floor(n/2). The midpoint belongs to the
// recent half.
func ComputeTrend(s Series) Trend {
	t := Trend{Average: mean(s)}
	if len(s) < 2 {
		return t
	}

	mid := len(s) / 2
	older := mean(s[:mid])
	recent := mean(s[mid:])
	if older > 0 {
		change := (recent - older) / older * 100
		t.ChangePercentage = &change
	}
	return t
}

func mean(s Series) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s {
		sum += p.Value
	}
	avg := sum / float64(len(s))
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	return avg
}

// ComputeRunway returns the months liquid assets cover at the given monthly
// expense rate, or nil when either side is non-positive.
func ComputeRunway(liquidAssets, monthlyExpenses float64) *float64 {
	if monthlyExpenses <= 0 || liquidAssets <= 0 {
		return nil
	}
	months := math.Max(0, liquidAssets/monthlyExpenses)
	if math.IsInf(months, 0) || math.IsNaN(months) {
		return nil
	}
	return &months
}

// FormatRunway renders months as "2y", "1y 6mo" or "4.5mo". nil renders "—".
func FormatRunway(months *float64) string {
	if months == nil || math.IsNaN(*months) || math.IsInf(*months, 0) {
		return "—"
	}
	// Round first so 11.96 reads "1y", not "12.0mo".
	m := math.Round(*months*10) / 10
	if m >= 12 {
		years := int(m / 12)
		rest := int(math.Floor(m - float64(years)*12))
		if rest == 0 {
			return fmt.Sprintf("%dy", years)
		}
		return fmt.Sprintf("%dy %dmo", years, rest)
	}
	return fmt.Sprintf("%.1fmo", m)
}

// BalanceRatios feed a two-segment bar: spent and saved shares of income.
type BalanceRatios struct {
	Progress float64 `json:"progress_ratio"`
	Savings  float64 `json:"savings_ratio"`
}

// ComputeBalanceRatios returns the spent and saved fractions of income.
// With positive income the two always sum to exactly 1.
func ComputeBalanceRatios(income, expenses float64) BalanceRatios {
	if income > 0 {
		progress := math.Min(expenses/income, 1)
		if progress < 0 || math.IsNaN(progress) {
			progress = 0
		}
		return BalanceRatios{Progress: progress, Savings: 1 - progress}
	}
	if expenses > 0 {
		return BalanceRatios{Progress: 1}
	}
	return BalanceRatios{}
}

// TargetComparison is current spend relative to a target.
type TargetComparison struct {
	ChangeFromTarget float64            `json:"change_from_target"`
	Formatted        string             `json:"formatted"`
	Color            classify.ColorRole `json:"color"`
}

// ComputeTargetComparison reports how far current is from target, in
// percent. Being at or under target is favorable.
func ComputeTargetComparison(target, current float64) TargetComparison {
	var change float64
	if target > 0 {
		change = (current - target) / target * 100
	}
	if math.IsNaN(change) || math.IsInf(change, 0) {
		change = 0
	}

	color := classify.Success
	if change > 0 {
		color = classify.Error
	}
	return TargetComparison{
		ChangeFromTarget: change,
		Formatted:        FormatSignedPercent(change),
		Color:            color,
	}
}

// FormatSignedPercent renders v with one decimal and an explicit sign:
// "+12.3%", "+0.0%", "-4.0%".
func FormatSignedPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	if v >= 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

// ComputePacingPercentage returns current as a percentage of target, or 0
// when there is no positive target.
func ComputePacingPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := current / target * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// ComputeExpectedPercentage returns the share of the period already elapsed.
// daysInto is clamped to totalDays.
func ComputeExpectedPercentage(daysInto, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	daysInto = max(0, min(daysInto, totalDays))
	return float64(daysInto) / float64(totalDays) * 100
}
