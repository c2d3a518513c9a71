package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/tui/theme"
)

// ProgressBar renders a block progress bar with a trailing percentage.
// pct is a 0..1 fraction.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(int(pct*float64(width)), width)

	var barColor lipgloss.Color
	switch {
	case pct >= 1:
		barColor = t.Green
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// PacingBar renders spend against target as a bar colored by role, with a
// marker row under it showing where spend is expected to be by now.
// Both percentages are on a 0..100 scale; spend past target fills the bar.
func PacingBar(actualPct, expectedPct float64, role classify.ColorRole, width int) string {
	t := theme.Active
	width = max(width, 10)

	bar := progress.New(
		progress.WithSolidFill(string(t.Role(role))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	markerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	const label = "▲ expected"
	pos := min(int(clamp01(expectedPct/100)*float64(width-1)), width-1)
	marker := strings.Repeat(" ", pos) + label
	if pos+lipgloss.Width(label) > width {
		marker = strings.Repeat(" ", max(pos-lipgloss.Width(label)+1, 0)) + "expected ▲"
	}

	return bar.ViewAs(clamp01(actualPct/100)) + "\n" + markerStyle.Render(marker)
}

// SplitBar renders expenses as a share of income: the filled part is spent,
// the empty part is kept.
func SplitBar(spent float64, role classify.ColorRole, width int) string {
	t := theme.Active

	bar := progress.New(
		progress.WithSolidFill(string(t.Role(role))),
		progress.WithWidth(max(width, 10)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.Green)
	return bar.ViewAs(clamp01(spent))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return min(v, 1)
}
