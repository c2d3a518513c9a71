package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Pacing, cash flow, spending and creep at a glance",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	d, err := views.LoadDashboard(ctx, b.src, b.opts, b.periodType())
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(d)
	}
	if d.Pacing.Data == nil && d.CashFlow.Data == nil && d.Spending.Data == nil && d.Creep.Data == nil {
		if err := d.FirstError(); err != nil {
			return friendlyError(queryError(err.Error()))
		}
		return errors.New("no data returned")
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PACER  " + b.periodType()))
	fmt.Println()

	var rows [][]string
	if p := d.Pacing.Data; p != nil {
		rows = append(rows,
			[]string{"Spent", p.FormattedSpend},
			[]string{"Target", orPlaceholder(p.HasTarget(), p.FormattedTarget)},
			[]string{"Pace", cli.Colorize(p.StatusColor, p.StatusEmoji+" "+p.StatusLabel)},
			[]string{"---"},
		)
	} else {
		rows = append(rows, []string{"Pacing", cli.Muted(d.Pacing.Error)}, []string{"---"})
	}

	if cf := d.CashFlow.Data; cf != nil {
		rows = append(rows,
			[]string{"Net Flow", cli.Colorize(cf.BalanceColor, cf.FormattedNetFlow)},
			[]string{"Savings Rate", cf.FormattedSavingsRate},
			[]string{"Runway", cf.FormattedRunway},
			[]string{"---"},
		)
	} else {
		rows = append(rows, []string{"Cash Flow", cli.Muted(d.CashFlow.Error)}, []string{"---"})
	}

	if s := d.Spending.Data; s != nil {
		rows = append(rows,
			[]string{"Spending", s.FormattedSpending},
			[]string{"vs Last Period", cli.Colorize(s.Indicator.Color, s.Indicator.Text)},
		)
	} else {
		rows = append(rows, []string{"Spending", cli.Muted(d.Spending.Error)})
	}

	if c := d.Creep.Data; c != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"Creep", cli.ColorizeSeverity(c.OverallSeverity, c.SeverityLabel)},
			[]string{"Drifting", fmt.Sprintf("%d of %d categories", len(c.Drifting()), len(c.Categories))},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	return nil
}

func orPlaceholder(ok bool, s string) string {
	if !ok {
		return cli.Placeholder
	}
	return s
}
