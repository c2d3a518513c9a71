package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

var creepKeys = map[string]string{
	"C": views.ActionCompute,
	"L": views.ActionLock,
	"U": views.ActionUnlock,
	"X": views.ActionReset,
}

var actionLabels = map[string]string{
	views.ActionCompute: "Computing creep",
	views.ActionLock:    "Locking baselines",
	views.ActionUnlock:  "Unlocking baselines",
	views.ActionReset:   "Resetting baselines",
}

// updateCreepKey runs creep actions. Only one action runs at a time, and
// reset needs a second X to confirm.
func (a App) updateCreepKey(key string, confirming bool) (tea.Model, tea.Cmd, bool) {
	action, ok := creepKeys[key]
	if !ok {
		return a, nil, false
	}
	if a.pending != "" {
		a.setNotice(actionLabels[a.pending] + "…")
		return a, nil, true
	}
	if action == views.ActionReset && !confirming {
		a.confirmReset = true
		return a, nil, true
	}
	a.pending = action
	a.setNotice(actionLabels[action] + "…")
	return a, a.s.mutateCmd(action), true
}

func (a App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	a.pending = ""
	a.lastFailure = ""
	switch {
	case msg.err != nil:
		a.lastFailure = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		a.setNotice(a.lastFailure)
		return a, nil
	case msg.result.Message != "":
		a.setNotice(msg.result.Message)
	default:
		a.setNotice(msg.action + " done")
	}
	if a.s != nil {
		a.s.refreshAfterMutation()
	}
	return a, nil
}

func (a App) renderCreepTab(cw int) string {
	return stateView(a.s.creep.State(), "Lifestyle Creep", cw, a.spinner.View(), func(m views.CreepModel) string {
		t := theme.Active

		locked := "unlocked"
		lockRole := classify.Muted
		if m.BaselinesLocked {
			locked, lockRole = "locked", classify.Accent
		}
		computed := m.ComputedAt
		if computed == "" {
			computed = "never"
		}

		var b strings.Builder
		b.WriteString(components.MetricCardRow([]components.Metric{
			{Label: "Overall", Value: m.SeverityLabel, Role: m.SeverityColor},
			{Label: "Drifting", Value: fmt.Sprintf("%d of %d", len(m.Drifting()), len(m.Categories))},
			{Label: "High", Value: fmt.Sprint(m.Counts[classify.SeverityHigh]), Role: classify.Error},
			{Label: "Baselines", Value: locked, Delta: "computed " + computed, Role: lockRole},
		}, cw))
		b.WriteString("\n")

		body := creepTable(m, cw)
		if a.pending != "" {
			body = a.spinner.View() + surface(t.Accent).Render(" "+actionLabels[a.pending]+"…") + "\n\n" + body
		} else if a.lastFailure != "" {
			body = surface(t.Red).Render(a.lastFailure) + "\n\n" + body
		}
		b.WriteString(components.ContentCard("Categories", body, cw))
		b.WriteString("\n")
		b.WriteString(surface(t.TextDim).Render("[C] compute  [L] lock  [U] unlock  [X] reset baselines"))
		return b.String()
	})
}

func creepTable(m views.CreepModel, cw int) string {
	t := theme.Active
	if len(m.Categories) == 0 {
		return surface(t.TextMuted).Render("No baselines yet. Press C to compute creep.")
	}

	innerW := components.CardInnerWidth(cw)
	const (
		amountW = 12
		driftW  = 9
		sevW    = 8
	)
	labelW := max(innerW-2*amountW-driftW-sevW-4, 10)

	header := surface(t.TextMuted).Bold(true)
	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-*s %*s %*s %*s %-*s",
		labelW, "Category", amountW, "Baseline", amountW, "Current", driftW, "Drift", sevW, "Severity")))
	for _, r := range m.Categories {
		sev := surface(t.Severity(r.Severity)).Bold(r.Intense)
		b.WriteString("\n")
		b.WriteString(surface(t.TextPrimary).Render(fmt.Sprintf("%-*s ", labelW, cli.Truncate(r.Label, labelW))))
		b.WriteString(surface(t.TextMuted).Render(fmt.Sprintf("%*s ", amountW, r.FormattedBaseline)))
		b.WriteString(surface(t.TextPrimary).Render(fmt.Sprintf("%*s ", amountW, r.FormattedCurrent)))
		b.WriteString(sev.Render(fmt.Sprintf("%*s ", driftW, r.Drift)))
		b.WriteString(sev.Render(fmt.Sprintf("%-*s", sevW, r.SeverityLabel)))
	}
	return b.String()
}
