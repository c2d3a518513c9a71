// Package cmd implements the pacer CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("    Timeout:  %s\n", cfg.Timeout())
	env, _ := config.LoadEnv()
	store := secrets.NewStore(config.Dir())
	switch {
	case env.APIToken != "":
		fmt.Printf("    Token:    %s (from %s_API_TOKEN)\n", secrets.Mask(env.APIToken), config.EnvPrefix)
	case store.HasToken():
		if token, err := store.LoadToken(); err == nil {
			fmt.Printf("    Token:    %s (encrypted at %s)\n", secrets.Mask(token), store.TokenPath())
		} else {
			fmt.Printf("    Token:    unreadable (%v)\n", err)
		}
	default:
		fmt.Println("    Token:    not configured")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Period type:    %s\n", cfg.General.PeriodType)
	fmt.Printf("    Time range:     %s\n", cfg.General.TimeRange)
	fmt.Printf("    History months: %d\n", cfg.General.HistoryMonths)
	fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Finance]")
	if cfg.Finance.LiquidAssets != "" {
		fmt.Printf("    Liquid assets: %s\n", cfg.Finance.LiquidAssets)
	} else {
		fmt.Println("    Liquid assets: not set (runway uses the backend's figure)")
	}
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Currency: %s\n", cfg.Display.Currency)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v every %s\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.PollInterval())
	fmt.Println()

	fmt.Printf("  %s_* environment variables override the file.\n", config.EnvPrefix)
	fmt.Println("  Run `pacer setup` to reconfigure.")
	return nil
}
