package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/logging"
	"github.com/theirongolddev/pacer/internal/secrets"
	"github.com/theirongolddev/pacer/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagPeriodType != "" {
		cfg.General.PeriodType = flagPeriodType
	}
	if flagTimeRange != "" {
		cfg.General.TimeRange = flagTimeRange
	}
	if flagMonths > 0 {
		cfg.General.HistoryMonths = flagMonths
	}

	// The screen belongs to the TUI, so logs go to a file and only with -v.
	logger := logging.Discard()
	if flagVerbose {
		if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
			return err
		}
		//nolint:gosec // log path is under the user's config dir
		f, err := os.OpenFile(filepath.Join(config.Dir(), "tui.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logger = logging.New(f, "debug")
	}

	// No token opens the setup form instead of failing.
	token, err := lookupToken()
	if err != nil && !errors.Is(err, secrets.ErrNoToken) {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	ctx, cancel := commandContext()
	defer cancel()

	app := tui.NewApp(ctx, tui.Options{
		Config:  cfg,
		Token:   token,
		Secrets: secrets.NewStore(config.Dir()),
		Logger:  logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	m, err := p.Run()
	// Settings and setup may have replaced the session; close the final one.
	if final, ok := m.(tui.App); ok {
		final.Close()
	} else {
		app.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
