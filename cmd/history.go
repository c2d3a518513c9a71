package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/store"
	"github.com/theirongolddev/pacer/internal/views"
)

var (
	flagHistoryCategory string
	flagHistoryLocal    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Spending per month with the trend between halves",
	Long: "Charts monthly spending from the backend. With --local, charts the\n" +
		"per-period spend the daemon recorded in the snapshot journal instead.",
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryCategory, "category", "", "Limit to one category")
	historyCmd.Flags().BoolVar(&flagHistoryLocal, "local", false, "Use the daemon's snapshot journal")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	var (
		m           views.HistoryModel
		currency    string
		source      string
		journalNote string
	)

	if flagHistoryLocal {
		if flagHistoryCategory != "" {
			return errors.New("--category is not available with --local")
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		months := flagMonths
		if months <= 0 {
			months = max(cfg.General.HistoryMonths, 1)
		}

		j, err := store.Open(store.Path(config.Dir()))
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		series, err := j.PeriodSpend(months)
		if err != nil {
			return fmt.Errorf("reading journal: %w", err)
		}
		currency = cfg.Display.Currency
		m = views.SeriesModel("", series, currency)
		source = "journal"

		if n, err := j.Count(); err == nil && n > 0 {
			if last, err := j.Latest(); err == nil && last != nil {
				journalNote = fmt.Sprintf("%s snapshots, latest %s", cli.FormatNumber(int64(n)), cli.FormatAge(last.TakenAt))
			}
		}
	} else {
		b, err := newBackend()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		params := views.HistoryParams{Months: b.months(), Category: flagHistoryCategory}
		m, err = load[views.HistoryModel](ctx, views.NewHistory(b.src, b.opts, params))
		if err != nil {
			return err
		}
		currency = b.opts.Currency
		source = fmt.Sprintf("%d months", params.Months)
	}

	if flagJSON {
		return printJSON(m)
	}

	title := "HISTORY  " + source
	if m.Category != "" {
		title += "  " + cli.TitleLabel(m.Category)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	if len(m.Series) == 0 {
		if flagHistoryLocal {
			fmt.Println("  No snapshots recorded yet. Run `pacer daemon` to start collecting.")
		} else {
			fmt.Println("  No history yet.")
		}
		return nil
	}

	rows := make([][]string, 0, len(m.Series))
	for _, p := range m.Series {
		label := p.Label
		if p.Date != nil {
			label = p.Date.Format("Jan 2006")
		}
		rows = append(rows, []string{label, cli.FormatCurrency(p.Value, currency)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Spending"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSparkline(m.Series.Values()))
	fmt.Printf("  Average %s   trend %s\n",
		m.FormattedAverage, cli.Colorize(m.Indicator.Color, m.Indicator.Text))
	if len(m.Series) < 2 {
		fmt.Println("  " + cli.Muted("Trend needs at least two periods."))
	}
	if journalNote != "" {
		fmt.Println("  " + cli.Muted(journalNote))
	}
	return nil
}
