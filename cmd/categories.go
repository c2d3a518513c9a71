package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	m, err := load[views.BreakdownModel](ctx, views.NewCategoryBreakdown(b.src, b.opts, b.timeRange()))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(m)
	}
	printBreakdown("CATEGORIES", "Category", m, false)
	return nil
}

// printBreakdown renders a ranked breakdown table followed by a bar chart.
func printBreakdown(title, kind string, m views.BreakdownModel, withAverage bool) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(title + "  " + cli.TitleLabel(m.TimeRange)))
	fmt.Println()

	if len(m.Rows) == 0 {
		fmt.Println("  No spending in this range.")
		return
	}

	headers := []string{kind, "Amount", "Share", "Txns"}
	if withAverage {
		headers = append(headers, "Average")
	}
	rows := make([][]string, 0, len(m.Rows)+2)
	for _, r := range m.Rows {
		row := []string{
			r.Label,
			r.FormattedAmount,
			cli.FormatPercent(r.Share),
			cli.FormatNumber(int64(r.TransactionCount)),
		}
		if withAverage {
			row = append(row, orPlaceholder(r.FormattedAverage != "", r.FormattedAverage))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{"---"}, []string{"Total", m.FormattedTotal})

	fmt.Print(cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
	fmt.Println()

	labelW := 0
	for _, r := range m.Rows {
		labelW = max(labelW, len([]rune(r.Label)))
	}
	labelW = min(labelW, 24)
	for _, r := range m.Rows {
		label := cli.Truncate(r.Label, labelW)
		label += strings.Repeat(" ", max(0, labelW-len([]rune(label))))
		fmt.Println(cli.RenderHorizontalBar(label, r.Amount, m.Chart.MaxValue, 40))
	}
}
