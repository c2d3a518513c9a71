package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/views"
)

var flagCreepDrifting bool

var creepCmd = &cobra.Command{
	Use:   "creep",
	Short: "Lifestyle creep per category against locked baselines",
	RunE:  runCreep,
}

func init() {
	creepCmd.Flags().BoolVar(&flagCreepDrifting, "drifting", false, "Only show categories above baseline")
	rootCmd.AddCommand(creepCmd)
}

func runCreep(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	m, err := load[views.CreepModel](ctx, views.NewCreep(b.src, b.opts))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(m)
	}

	locked := "unlocked"
	if m.BaselinesLocked {
		locked = "locked"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("LIFESTYLE CREEP  " + cli.ColorizeSeverity(m.OverallSeverity, m.SeverityLabel)))
	fmt.Println()
	fmt.Printf("  Baselines: %s   Computed: %s\n", locked, orPlaceholder(m.ComputedAt != "", m.ComputedAt))
	fmt.Printf("  High %d · Medium %d · Low %d\n\n",
		m.Counts[classify.SeverityHigh], m.Counts[classify.SeverityMedium], m.Counts[classify.SeverityLow])

	cats := m.Categories
	if flagCreepDrifting {
		cats = m.Drifting()
	}
	if len(cats) == 0 {
		if len(m.Categories) == 0 {
			fmt.Println("  No baselines yet. Run `pacer compute` first.")
		} else {
			fmt.Println("  Nothing drifting.")
		}
		return nil
	}

	rows := make([][]string, 0, len(cats))
	for _, r := range cats {
		rows = append(rows, []string{
			r.Label,
			r.FormattedBaseline,
			r.FormattedCurrent,
			cli.ColorizeSeverity(r.Severity, r.Drift),
			cli.ColorizeSeverity(r.Severity, r.SeverityLabel),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Baseline", "Current", "Drift", "Severity"},
		Rows:    rows,
	}))
	return nil
}
