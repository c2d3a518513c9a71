package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Spending summary for the current period",
	RunE:  runSpending,
}

func init() {
	rootCmd.AddCommand(spendingCmd)
}

func runSpending(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	m, err := load[views.SpendingSummaryModel](ctx, views.NewSpendingSummary(b.src, b.opts, b.periodType()))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(m)
	}

	top := cli.Placeholder
	if m.TopCategory != "" {
		top = cli.TitleLabel(m.TopCategory)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING  " + cli.TitleLabel(m.PeriodType)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Period", periodLabel(m.PeriodStart, m.PeriodEnd)},
			{"---"},
			{"Spending", m.FormattedSpending},
			{"vs Last Period", cli.Colorize(m.Indicator.Color, m.Indicator.Text)},
			{"Income", m.FormattedIncome},
			{"Transactions", cli.FormatNumber(int64(m.TransactionCount))},
			{"Top Category", top},
		},
	}))
	return nil
}
