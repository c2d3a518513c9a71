package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/views"
)

var flagMerchantLimit int

var merchantsCmd = &cobra.Command{
	Use:   "merchants",
	Short: "Top merchants by spending",
	RunE:  runMerchants,
}

func init() {
	merchantsCmd.Flags().IntVarP(&flagMerchantLimit, "limit", "l", views.Defaults.MerchantLimit, "Number of merchants")
	rootCmd.AddCommand(merchantsCmd)
}

func runMerchants(_ *cobra.Command, _ []string) error {
	b, err := newBackend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	m, err := load[views.BreakdownModel](ctx,
		views.NewMerchantBreakdown(b.src, b.opts, b.timeRange(), flagMerchantLimit))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(m)
	}
	printBreakdown("MERCHANTS", "Merchant", m, true)
	return nil
}
