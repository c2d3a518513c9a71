package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/secrets"
	"github.com/theirongolddev/pacer/internal/tui"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

var flagClearToken bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&flagClearToken, "clear-token", false, "Delete the stored API token and exit")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	store := secrets.NewStore(config.Dir())

	if flagClearToken {
		if err := store.DeleteToken(); err != nil {
			return err
		}
		fmt.Println("  Stored token deleted.")
		return nil
	}

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to pacer!")
	fmt.Println()

	// 1. Backend
	fmt.Println("  1. Analytics API URL")
	fmt.Printf("     Current: %s\n", cfg.API.BaseURL)
	fmt.Print("     > ")
	baseURL := readLine(reader)
	if baseURL != "" {
		if err := tui.ValidateBaseURL(baseURL); err != nil {
			return fmt.Errorf("API URL %w", err)
		}
		cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
	}
	fmt.Println()

	// 2. Token, read without echo
	fmt.Println("  2. API token")
	if existing, err := store.LoadToken(); err == nil {
		fmt.Printf("     Current: %s (leave empty to keep)\n", secrets.Mask(existing))
	}
	fmt.Print("     > ")
	token, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	fmt.Println()
	fmt.Println()

	// 3. Period
	fmt.Println("  3. Spending period")
	cfg.General.PeriodType = choose(reader, views.PeriodTypes, views.NormalizePeriodType(cfg.General.PeriodType))
	fmt.Println()

	// 4. Currency
	fmt.Println("  4. Currency")
	cfg.Display.Currency = choose(reader, tui.SetupCurrencies, cfg.Display.Currency)
	fmt.Println()

	// 5. Theme
	fmt.Println("  5. Color theme")
	cfg.Appearance.Theme = choose(reader, theme.Names(), cfg.Appearance.Theme)

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	if token != "" {
		if err := store.SaveToken(token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	if token != "" {
		fmt.Printf("  Token encrypted to %s\n", store.TokenPath())
	}
	fmt.Println("  Run `pacer setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// readSecret reads without echo on a terminal and falls back to a plain
// line for piped input.
func readSecret(r *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(r), nil
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// choose prints a numbered menu and returns the picked option, or current
// when the answer is empty or out of range.
func choose(r *bufio.Reader, opts []string, current string) string {
	for i, o := range opts {
		marker := ""
		if o == current {
			marker = " [current]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, o, marker)
	}
	fmt.Print("     > ")
	n, err := strconv.Atoi(readLine(r))
	if err != nil || n < 1 || n > len(opts) {
		return current
	}
	return opts[n-1]
}
