// Package config loads and saves pacer's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/theirongolddev/pacer/internal/amount"
)

// Config holds all pacer configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	Finance    FinanceConfig    `toml:"finance"`
	Appearance AppearanceConfig `toml:"appearance"`
	Display    DisplayConfig    `toml:"display"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig holds analytics backend settings. The token itself lives in the
// encrypted secrets store, not here.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// GeneralConfig holds default request parameters.
type GeneralConfig struct {
	PeriodType    string `toml:"period_type"`
	TimeRange     string `toml:"time_range"`
	HistoryMonths int    `toml:"history_months"`
	LogLevel      string `toml:"log_level"`
}

// FinanceConfig holds figures the backend may not know about.
type FinanceConfig struct {
	// LiquidAssets is a decimal string used for runway when the backend
	// reports none.
	LiquidAssets string `toml:"liquid_assets,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DisplayConfig holds formatting preferences.
type DisplayConfig struct {
	Currency string `toml:"currency"`
}

// TUIConfig holds dashboard behavior.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// Env is the set of PACER_* environment overrides.
type Env struct {
	BaseURL  string `envconfig:"BASE_URL"`
	APIToken string `envconfig:"API_TOKEN"`
	Theme    string `envconfig:"THEME"`
	Currency string `envconfig:"CURRENCY"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PACER"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://127.0.0.1:8000",
			TimeoutSec: 10,
		},
		General: GeneralConfig{
			PeriodType:    "monthly",
			TimeRange:     "month",
			HistoryMonths: 6,
			LogLevel:      "info",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Display: DisplayConfig{
			Currency: "USD",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8797",
			IntervalSec: 300,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pacer")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pacer")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist, and
// applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	env, err := LoadEnv()
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(env)
	return cfg, nil
}

// LoadEnv reads PACER_* overrides.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return env, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// ApplyEnv overlays non-empty environment values onto cfg.
func (c *Config) ApplyEnv(env Env) {
	if env.BaseURL != "" {
		c.API.BaseURL = env.BaseURL
	}
	if env.Theme != "" {
		c.Appearance.Theme = env.Theme
	}
	if env.Currency != "" {
		c.Display.Currency = strings.ToUpper(env.Currency)
	}
	if env.LogLevel != "" {
		c.General.LogLevel = env.LogLevel
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Timeout returns the API request timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// RefreshInterval returns the TUI auto-refresh interval, at least 10s.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(max(c.TUI.RefreshIntervalSec, 10)) * time.Second
}

// PollInterval returns the daemon poll interval, at least 30s.
func (c Config) PollInterval() time.Duration {
	return time.Duration(max(c.Daemon.IntervalSec, 30)) * time.Second
}

// LiquidAssets returns the configured liquid assets, or nil when unset or
// not a number.
func (c Config) LiquidAssets() *float64 {
	return amount.ParseOptional(c.Finance.LiquidAssets)
}
