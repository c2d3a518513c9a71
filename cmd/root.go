package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/logging"
	"github.com/theirongolddev/pacer/internal/secrets"
	"github.com/theirongolddev/pacer/internal/views"
)

var (
	flagJSON       bool
	flagVerbose    bool
	flagPeriodType string
	flagTimeRange  string
	flagMonths     int
)

var rootCmd = &cobra.Command{
	Use:           "pacer",
	Short:         "Spending pace, cash flow and lifestyle creep from your finance backend",
	Long:          "Track discretionary spending against your target, watch cash flow and spot lifestyle creep.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print view models as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&flagPeriodType, "period-type", "", "Spending period: weekly, monthly or yearly")
	rootCmd.PersistentFlags().StringVar(&flagTimeRange, "time-range", "", "Breakdown range: week, month, year or all")
	rootCmd.PersistentFlags().IntVar(&flagMonths, "months", 0, "History length in months")
}

// backend is what every data command needs: config, logger and a source.
type backend struct {
	cfg    config.Config
	logger *log.Logger
	src    views.Source
	opts   views.Options
}

// loadConfig reads the config and builds the logger. --verbose wins over
// the configured level.
func loadConfig() (config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	level := cfg.General.LogLevel
	if flagVerbose {
		level = "debug"
	}
	return cfg, logging.New(os.Stderr, level), nil
}

// lookupToken prefers PACER_API_TOKEN over the encrypted store.
func lookupToken() (string, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return "", err
	}
	return secrets.Resolve(env.APIToken, secrets.NewStore(config.Dir()))
}

// resolveToken is lookupToken with a setup hint when no token exists.
func resolveToken() (string, error) {
	token, err := lookupToken()
	if errors.Is(err, secrets.ErrNoToken) {
		return "", errors.New("no API token configured; run `pacer setup` or set PACER_API_TOKEN")
	}
	return token, err
}

func newBackend() (*backend, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	token, err := resolveToken()
	if err != nil {
		return nil, err
	}
	client := analytics.NewClient(cfg.API.BaseURL, token,
		analytics.WithTimeout(cfg.Timeout()),
		analytics.WithLogger(logger),
	)
	return &backend{
		cfg:    cfg,
		logger: logger,
		src:    client,
		opts: views.Options{
			Currency:     cfg.Display.Currency,
			LiquidAssets: cfg.LiquidAssets(),
			Logger:       logger,
		},
	}, nil
}

func (b *backend) periodType() string {
	if flagPeriodType != "" {
		return views.NormalizePeriodType(flagPeriodType)
	}
	return views.NormalizePeriodType(b.cfg.General.PeriodType)
}

func (b *backend) timeRange() string {
	if flagTimeRange != "" {
		return views.NormalizeTimeRange(flagTimeRange)
	}
	return views.NormalizeTimeRange(b.cfg.General.TimeRange)
}

func (b *backend) months() int {
	switch {
	case flagMonths > 0:
		return flagMonths
	case b.cfg.General.HistoryMonths > 0:
		return b.cfg.General.HistoryMonths
	}
	return views.Defaults.HistoryMonths
}

// commandContext is canceled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type loader[T any] interface {
	Load(ctx context.Context) (async.State[T], error)
	Close()
}

// load runs a query once and returns its data or a user-facing error.
func load[T any](ctx context.Context, q loader[T]) (T, error) {
	defer q.Close()

	var zero T
	st, err := q.Load(ctx)
	if err != nil {
		return zero, err
	}
	if st.Error != "" {
		return zero, friendlyError(queryError(st.Error))
	}
	if st.Data == nil {
		return zero, errors.New("no data returned")
	}
	return *st.Data, nil
}

// queryError recovers the analytics sentinel behind a query's error
// message. Query state keeps only the text.
func queryError(msg string) error {
	for _, s := range []error{analytics.ErrUnauthorized, analytics.ErrRateLimited, analytics.ErrNotFound} {
		if msg == s.Error() {
			return s
		}
	}
	return errors.New(msg)
}

// friendlyError turns analytics sentinels into actionable messages.
func friendlyError(err error) error {
	var apiErr *analytics.APIError
	switch {
	case errors.Is(err, analytics.ErrUnauthorized):
		return errors.New("API token expired or invalid; run `pacer setup` to store a new one")
	case errors.Is(err, analytics.ErrRateLimited):
		return errors.New("rate limited by the analytics API; try again in a minute")
	case errors.Is(err, analytics.ErrNotFound):
		return errors.New("nothing computed yet; run `pacer compute` first")
	case errors.As(err, &apiErr):
		return fmt.Errorf("analytics API error: %w", err)
	}
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
