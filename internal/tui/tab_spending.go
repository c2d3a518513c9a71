package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

const (
	minHistoryMonths = 2
	maxHistoryMonths = 24
	chartHeight      = 8
)

func (a App) updateSpendingKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "t":
		a.periodType = cycle(views.PeriodTypes, a.periodType)
		a.s.spending.SetParam(a.periodType)
	case "T":
		a.timeRange = cycle(views.TimeRanges, a.timeRange)
		a.s.categories.SetParam(a.timeRange)
		a.s.merchants.SetParam(a.timeRange)
	case "m":
		a.merchants = !a.merchants
	case "+", "=":
		a.months = min(a.months+1, maxHistoryMonths)
		a.s.history.SetParam(views.HistoryParams{Months: a.months, Category: a.category})
	case "-":
		a.months = max(a.months-1, minHistoryMonths)
		a.s.history.SetParam(views.HistoryParams{Months: a.months, Category: a.category})
	case "h":
		a.category = cycle(a.historyCategories(), a.category)
		a.s.history.SetParam(views.HistoryParams{Months: a.months, Category: a.category})
	default:
		return a, nil, false
	}
	return a, nil, true
}

// historyCategories lists the history filters: all spending, then each
// category from the loaded breakdown.
func (a App) historyCategories() []string {
	opts := []string{""}
	if st := a.s.categories.State(); st.Data != nil {
		for _, r := range st.Data.Rows {
			opts = append(opts, r.Name)
		}
	}
	return opts
}

func (a App) renderSpendingTab(cw int) string {
	var b strings.Builder
	b.WriteString(stateView(a.s.spending.State(), "Spending", cw, a.spinner.View(), func(m views.SpendingSummaryModel) string {
		delta := m.Indicator.Text + " vs last period"
		if m.Change == nil {
			delta = "no prior period"
		}
		top := m.TopCategory
		if top == "" {
			top = cli.Placeholder
		} else {
			top = cli.TitleLabel(top)
		}
		return components.MetricCardRow([]components.Metric{
			{Label: "Spending · " + m.PeriodType, Value: m.FormattedSpending, Delta: delta, Role: m.Indicator.Color},
			{Label: "Income", Value: m.FormattedIncome},
			{Label: "Transactions", Value: cli.FormatNumber(int64(m.TransactionCount))},
			{Label: "Top Category", Value: top},
		}, cw)
	}))
	b.WriteString("\n")

	breakdown, title := a.s.categories, "Categories"
	if a.merchants {
		breakdown, title = a.s.merchants, "Merchants"
	}
	title += " · " + breakdown.Param()

	if a.isCompactLayout() {
		b.WriteString(stateView(breakdown.State(), title, cw, a.spinner.View(), func(m views.BreakdownModel) string {
			return components.ContentCard(title, breakdownBody(m, cw), cw)
		}))
		b.WriteString("\n")
		b.WriteString(a.historyCard(cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 2)
	left := stateView(breakdown.State(), title, widths[0], a.spinner.View(), func(m views.BreakdownModel) string {
		return components.ContentCard(title, breakdownBody(m, widths[0]), widths[0])
	})
	b.WriteString(components.CardRow([]string{left, a.historyCard(widths[1])}))
	return b.String()
}

// breakdownBody renders ranked rows with a bar scaled to the largest row.
func breakdownBody(m views.BreakdownModel, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	if len(m.Rows) == 0 {
		return surface(t.TextMuted).Render("No spending in this range.")
	}

	const (
		amountW = 12
		shareW  = 7
	)
	labelW := min(22, max(innerW/3, 8))
	barW := max(innerW-labelW-amountW-shareW-3, 4)

	labelStyle := surface(t.TextPrimary)
	amountStyle := surface(t.TextPrimary).Bold(true)
	dimStyle := surface(t.TextDim)
	barStyle := surface(t.Accent)

	var b strings.Builder
	for i, r := range m.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		filled := 0
		if m.Chart.MaxValue > 0 {
			filled = min(int(r.Amount/m.Chart.MaxValue*float64(barW)), barW)
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, cli.Truncate(r.Label, labelW))))
		b.WriteString(dimStyle.Render(" "))
		b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		b.WriteString(dimStyle.Render(strings.Repeat(" ", barW-filled)))
		b.WriteString(amountStyle.Render(fmt.Sprintf(" %*s", amountW, r.FormattedAmount)))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %*s", shareW-1, cli.FormatPercent(r.Share))))
	}
	b.WriteString("\n\n")
	b.WriteString(kv("Total", amountStyle.Render(m.FormattedTotal), 8))
	return b.String()
}

func (a App) historyCard(cw int) string {
	p := a.s.history.Param()
	title := fmt.Sprintf("History · %d months", p.Months)
	if p.Category != "" {
		title += " · " + cli.TitleLabel(p.Category)
	}
	currency := a.cfg.Display.Currency

	return stateView(a.s.history.State(), title, cw, a.spinner.View(), func(m views.HistoryModel) string {
		t := theme.Active
		innerW := components.CardInnerWidth(cw)
		if len(m.Series) == 0 {
			return components.ContentCard(title, surface(t.TextMuted).Render("No history yet."), cw)
		}

		chart := components.BarChart(m.Series, t.Accent, innerW, chartHeight, func(v float64) string {
			return cli.FormatCompactCurrency(v, currency)
		})
		trend := surface(t.Role(m.Indicator.Color)).Render(m.Indicator.Text)
		footer := kv("Average", surface(t.TextPrimary).Render(m.FormattedAverage), 10) +
			surface(t.TextMuted).Render("   trend ") + trend
		return components.ContentCard(title, lipgloss.JoinVertical(lipgloss.Left, chart, "", footer), cw)
	})
}
