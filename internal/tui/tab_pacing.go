package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

func (a App) renderPacingTab(cw int) string {
	return stateView(a.s.pacing.State(), "Pacing", cw, a.spinner.View(), func(m views.PacingModel) string {
		var b strings.Builder
		b.WriteString(components.MetricCardRow(pacingMetrics(m), cw))
		b.WriteString("\n")

		if m.HasTarget() {
			b.WriteString(components.ContentCard("This Period", pacingBody(m, cw), cw))
		} else {
			b.WriteString(components.ContentCard("Building Your Baseline", kickoffBody(m), cw))
		}

		if card := a.targetCard(cw); card != "" {
			b.WriteString("\n")
			b.WriteString(card)
		}

		if m.TopDrifting != nil {
			b.WriteString("\n")
			b.WriteString(components.ContentCard("Top Drift", driftLine(*m.TopDrifting), cw))
		}
		return b.String()
	})
}

func pacingMetrics(m views.PacingModel) []components.Metric {
	status := components.Metric{
		Label: "Status",
		Value: m.StatusEmoji + " " + m.StatusLabel,
		Role:  m.StatusColor,
	}

	if !m.HasTarget() {
		return []components.Metric{
			{Label: "Spent So Far", Value: m.FormattedSpend},
			{Label: "Target", Value: cli.Placeholder, Delta: "not established"},
			{Label: "Mode", Value: cli.TitleLabel(string(m.Mode)), Role: classify.Accent},
		}
	}

	out := []components.Metric{
		{
			Label: "Spent",
			Value: m.FormattedSpend,
			Delta: m.Comparison.Formatted + " vs target",
			Role:  m.Comparison.Color,
		},
		{Label: "Target", Value: m.FormattedTarget},
		{Label: "Remaining", Value: m.FormattedRemaining},
		status,
	}
	if m.Mode == classify.ModeStability && m.StabilityScore != nil {
		out = append(out, components.Metric{
			Label: "Stability",
			Value: strconv.Itoa(*m.StabilityScore),
			Delta: "of 100",
			Role:  stabilityRole(*m.StabilityScore),
		})
	}
	return out
}

func stabilityRole(score int) classify.ColorRole {
	switch {
	case score >= 80:
		return classify.Success
	case score >= 50:
		return classify.Warning
	}
	return classify.Error
}

func pacingBody(m views.PacingModel, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(components.PacingBar(m.PacingPercentage, m.ExpectedPercentage, m.StatusColor, innerW))
	b.WriteString("\n\n")
	b.WriteString(kv("Spent", surface(t.TextPrimary).Render(fmt.Sprintf("%s of target", cli.FormatPercent(m.PacingPercentage))), 12))
	b.WriteString("\n")
	b.WriteString(kv("Expected", surface(t.TextPrimary).Render(fmt.Sprintf("%s by today", cli.FormatPercent(m.ExpectedPercentage))), 12))
	b.WriteString("\n")
	b.WriteString(kv("Day", surface(t.TextPrimary).Render(fmt.Sprintf("%d of %d", m.DaysIntoPeriod, m.TotalDaysInPeriod)), 12))
	if m.PeriodStart != "" {
		b.WriteString("\n")
		b.WriteString(kv("Period", surface(t.TextPrimary).Render(periodRange(m.PeriodStart, m.PeriodEnd)), 12))
	}
	if m.OverallSeverity != classify.SeverityNone {
		b.WriteString("\n")
		b.WriteString(kv("Creep", surface(t.Severity(m.OverallSeverity)).Render(m.OverallSeverity.Label()), 12))
	}
	return b.String()
}

func kickoffBody(m views.PacingModel) string {
	t := theme.Active
	var b strings.Builder
	b.WriteString(surface(t.TextPrimary).Render("pacer is learning your spending before it sets a target."))
	b.WriteString("\n\n")
	b.WriteString(kv("Spent", surface(t.TextPrimary).Render(m.FormattedSpend), 12))
	if m.TotalDaysInPeriod > 0 {
		b.WriteString("\n")
		b.WriteString(kv("Day", surface(t.TextPrimary).Render(fmt.Sprintf("%d of %d", m.DaysIntoPeriod, m.TotalDaysInPeriod)), 12))
	}
	return b.String()
}

// targetCard renders target readiness. It is omitted until target status
// has loaded once.
func (a App) targetCard(cw int) string {
	st := a.s.target.State()
	if st.Data == nil {
		return ""
	}
	m := *st.Data
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(kv("Status", surface(t.TextPrimary).Render(m.Label), 12))
	b.WriteString("\n")
	b.WriteString(kv("Target", surface(t.TextPrimary).Render(m.FormattedTarget), 12))
	b.WriteString("\n")
	if m.MonthsRequired > 0 {
		b.WriteString(kv("History", surface(t.TextPrimary).Render(
			fmt.Sprintf("%d of %d months", m.MonthsAvailable, m.MonthsRequired)), 12))
		b.WriteString("\n")
	}
	b.WriteString(components.ProgressBar(m.Progress, min(innerW-6, 48)))
	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(surface(t.TextMuted).Render(m.Message))
	}
	return components.ContentCard("Target", b.String(), cw)
}

func driftLine(r views.CreepRow) string {
	t := theme.Active
	return surface(t.TextPrimary).Render(r.Label+"  ") +
		surface(t.Severity(r.Severity)).Bold(r.Intense).Render(r.Drift+"  "+r.SeverityLabel) +
		surface(t.TextMuted).Render(fmt.Sprintf("  %s → %s", r.FormattedBaseline, r.FormattedCurrent))
}

func periodRange(start, end string) string {
	if end == "" {
		return start
	}
	return start + " – " + end
}
