package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var cashFlowCmd = &cobra.Command{
	Use:     "cashflow",
	Aliases: []string{"cash-flow"},
	Short:   "Income, expenses, savings rate and runway",
	RunE:    runCashFlow,
}

func init() {
	rootCmd.AddCommand(cashFlowCmd)
}

func runCashFlow(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	m, err := load[views.CashFlowModel](ctx, views.NewCashFlow(b.src, b.opts))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(m)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CASH FLOW  " + periodLabel(m.PeriodStart, m.PeriodEnd)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Income", m.FormattedIncome},
			{"Expenses", m.FormattedExpenses},
			{"Net Flow", cli.Colorize(m.BalanceColor, m.FormattedNetFlow)},
			{"Status", cli.Colorize(m.BalanceColor, m.BalanceLabel)},
			{"---"},
			{"Savings Rate", m.FormattedSavingsRate},
			{"Liquid Assets", cli.FormatOptionalCurrency(m.LiquidAssets, b.opts.Currency)},
			{"Runway", m.FormattedRunway},
		},
	}))

	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSplitBar(m.Ratios.Progress, m.BalanceColor, 40))
	fmt.Printf("  %s spent   %s kept\n",
		cli.FormatRatio(m.Ratios.Progress), cli.FormatRatio(m.Ratios.Savings))
	return nil
}
