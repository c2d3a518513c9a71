package tui

import (
	"strings"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

func (a App) renderCashFlowTab(cw int) string {
	return stateView(a.s.cashFlow.State(), "Cash Flow", cw, a.spinner.View(), func(m views.CashFlowModel) string {
		var b strings.Builder
		b.WriteString(components.MetricCardRow([]components.Metric{
			{Label: "Income", Value: m.FormattedIncome},
			{Label: "Expenses", Value: m.FormattedExpenses},
			{Label: "Net Flow", Value: m.FormattedNetFlow, Delta: m.BalanceLabel, Role: m.BalanceColor},
			{Label: "Savings Rate", Value: m.FormattedSavingsRate, Role: savingsRole(m.SavingsRate)},
		}, cw))
		b.WriteString("\n")

		if a.isCompactLayout() {
			b.WriteString(components.ContentCard("Income vs Expenses", balanceBody(m, cw), cw))
			b.WriteString("\n")
			b.WriteString(components.ContentCard("Runway", runwayBody(m, a.cfg.Display.Currency), cw))
			return b.String()
		}

		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Income vs Expenses", balanceBody(m, widths[0]), widths[0]),
			components.ContentCard("Runway", runwayBody(m, a.cfg.Display.Currency), widths[1]),
		}))
		return b.String()
	})
}

func savingsRole(rate *float64) classify.ColorRole {
	switch {
	case rate == nil:
		return classify.Muted
	case *rate < 0:
		return classify.Error
	case *rate < 10:
		return classify.Warning
	}
	return classify.Success
}

func balanceBody(m views.CashFlowModel, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	if m.Income <= 0 {
		b.WriteString(surface(t.TextMuted).Render("No income recorded this period."))
		b.WriteString("\n\n")
	}
	b.WriteString(components.SplitBar(m.Ratios.Progress, m.BalanceColor, innerW))
	b.WriteString("\n")
	b.WriteString(surface(t.Role(m.BalanceColor)).Render("■ spent " + cli.FormatRatio(m.Ratios.Progress)))
	b.WriteString(surface(t.TextMuted).Render("   "))
	b.WriteString(surface(t.Green).Render("■ kept " + cli.FormatRatio(m.Ratios.Savings)))
	b.WriteString("\n\n")
	b.WriteString(kv("Status", surface(t.Role(m.BalanceColor)).Bold(true).Render(m.BalanceLabel), 12))
	if m.PeriodStart != "" {
		b.WriteString("\n")
		b.WriteString(kv("Period", surface(t.TextPrimary).Render(periodRange(m.PeriodStart, m.PeriodEnd)), 12))
	}
	return b.String()
}

func runwayBody(m views.CashFlowModel, currency string) string {
	t := theme.Active
	var b strings.Builder
	b.WriteString(kv("Liquid", surface(t.TextPrimary).Render(cli.FormatOptionalCurrency(m.LiquidAssets, currency)), 12))
	b.WriteString("\n")

	role := classify.Muted
	if m.Runway != nil {
		switch {
		case *m.Runway >= 6:
			role = classify.Success
		case *m.Runway >= 3:
			role = classify.Warning
		default:
			role = classify.Error
		}
	}
	b.WriteString(kv("Runway", surface(t.Role(role)).Bold(true).Render(m.FormattedRunway), 12))
	if m.LiquidAssets == nil {
		b.WriteString("\n\n")
		b.WriteString(surface(t.TextDim).Render("Set liquid assets in Settings to estimate runway."))
	}
	return b.String()
}
