package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var pacingCmd = &cobra.Command{
	Use:   "pacing",
	Short: "Discretionary spending pace against your target",
	RunE:  runPacing,
}

func init() {
	rootCmd.AddCommand(pacingCmd)
}

func runPacing(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	p, err := load[views.PacingModel](ctx, views.NewPacing(b.src, b.opts))
	if err != nil {
		return err
	}
	// The target status is informational; a failure here does not hide pacing.
	target, targetErr := load[views.TargetStatusModel](ctx, views.NewTargetStatus(b.src, b.opts))
	if targetErr != nil {
		b.logger.Debug("target status unavailable", "err", targetErr)
	}

	if flagJSON {
		out := struct {
			Pacing views.PacingModel        `json:"pacing"`
			Target *views.TargetStatusModel `json:"target_status,omitempty"`
		}{Pacing: p}
		if targetErr == nil {
			out.Target = &target
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING PACE  " + cli.TitleLabel(string(p.Mode))))
	fmt.Println()

	rows := [][]string{
		{"Period", periodLabel(p.PeriodStart, p.PeriodEnd)},
		{"Day", fmt.Sprintf("%d of %d", p.DaysIntoPeriod, p.TotalDaysInPeriod)},
		{"---"},
		{"Spent", p.FormattedSpend},
	}
	if p.HasTarget() {
		rows = append(rows,
			[]string{"Target", p.FormattedTarget},
			[]string{"Remaining", p.FormattedRemaining},
			[]string{"vs Target", cli.Colorize(p.Comparison.Color, p.Comparison.Formatted)},
			[]string{"---"},
			[]string{"Spent %", cli.FormatPercent(p.PacingPercentage)},
			[]string{"Expected %", cli.FormatPercent(p.ExpectedPercentage)},
			[]string{"Status", cli.Colorize(p.StatusColor, p.StatusEmoji+" "+p.StatusLabel)},
		)
	} else {
		rows = append(rows, []string{"Target", cli.Muted("not established yet")})
	}
	if p.StabilityScore != nil {
		rows = append(rows, []string{"Stability", strconv.Itoa(*p.StabilityScore) + "/100"})
	}
	if d := p.TopDrifting; d != nil {
		rows = append(rows, []string{"Top Drift", cli.ColorizeSeverity(d.Severity, d.Label+" "+d.Drift)})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if p.HasTarget() {
		fmt.Println()
		fmt.Printf("  %s\n", cli.RenderSplitBar(p.PacingPercentage/100, p.StatusColor, 40))
	}
	if targetErr == nil {
		fmt.Println()
		fmt.Printf("  Target: %s (%d/%d months)\n",
			target.Label, target.MonthsAvailable, target.MonthsRequired)
		if target.Message != "" {
			fmt.Printf("  %s\n", cli.Muted(target.Message))
		}
	}
	return nil
}

// periodLabel renders "2026-10-01 → 2026-10-31", or the placeholder.
func periodLabel(start, end string) string {
	if start == "" {
		return cli.Placeholder
	}
	if end == "" {
		return start
	}
	return start + " → " + end
}
