package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/metrics"
	"github.com/theirongolddev/pacer/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func whole(v float64) string { return fmt.Sprintf("%.0f", v) }

func TestBarChart_ScalesToChartCeiling(t *testing.T) {
	theme.SetActive("flexoki-dark")
	s := metrics.SeriesFromValues([]string{"Jan", "Feb"}, []float64{100, 200})

	out := BarChart(s, theme.Active.Accent, 40, 8, whole)
	lines := strings.Split(out, "\n")

	// 8 value rows, the axis, and the label row.
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "300")
	assert.Contains(t, lines[9], "Jan")
	assert.Contains(t, lines[9], "Feb")
}

func TestBarChart_FallsBackToSparkline(t *testing.T) {
	s := metrics.SeriesFromValues([]string{"a", "b", "c"}, []float64{1, 2, 3})
	out := BarChart(s, theme.Active.Accent, 10, 2, whole)
	assert.Equal(t, 3, lipgloss.Width(out))
	assert.Empty(t, BarChart(nil, theme.Active.Accent, 40, 8, whole))
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	require.Less(t, shortLines, tallLines)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	require.Len(t, lines, tallLines)

	for i, line := range lines[shortLines:] {
		assert.Contains(t, line, "\x1b[", "padding line %d has no background styling", i+shortLines)
		assert.Equal(t, 44, lipgloss.Width(line))
	}
}

func TestTabVisualWidth(t *testing.T) {
	assert.Equal(t, len("Pacing")+2, TabVisualWidth(Tabs[0], false))
	assert.Equal(t, len("Settings")+2, TabVisualWidth(Tabs[4], true))
	assert.Equal(t, len("Settings[x]")+2, TabVisualWidth(Tabs[4], false))

	assert.Equal(t, 3, TabIdxByKey('e'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestPacingBar_MarksExpectedPosition(t *testing.T) {
	out := PacingBar(40, 50, classify.Accent, 20)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 20, lipgloss.Width(lines[0]))
	assert.Contains(t, lines[1], "▲ expected")

	// Near the right edge the label flips to the left of the marker.
	out = PacingBar(90, 100, classify.Warning, 20)
	assert.Contains(t, out, "expected ▲")
}

func TestLayoutRow(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, LayoutRow(10, 3))
	assert.Nil(t, LayoutRow(10, 0))
}
