package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

// SetupCurrencies are offered by the first-run form. Any ISO code can be
// set later from Settings.
var SetupCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF"}

// setupValues is bound to the huh form fields.
type setupValues struct {
	BaseURL    string
	Token      string
	Currency   string
	PeriodType string
	Theme      string
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		BaseURL:    cfg.API.BaseURL,
		Currency:   cfg.Display.Currency,
		PeriodType: views.NormalizePeriodType(cfg.General.PeriodType),
		Theme:      cfg.Appearance.Theme,
	}
}

// ValidateBaseURL accepts absolute http(s) URLs.
func ValidateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errors.New("must start with http:// or https://")
	}
	return nil
}

// ValidateToken rejects blank tokens.
func ValidateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a token is required")
	}
	return nil
}

func newSetupForm(v *setupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pacer").
				Description("Connect to your analytics backend.\nThe token is stored encrypted under ~/.config/pacer."),
			huh.NewInput().
				Title("API URL").
				Value(&v.BaseURL).
				Validate(ValidateBaseURL),
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&v.Token).
				Validate(ValidateToken),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions(SetupCurrencies...)...).
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Spending period").
				Options(huh.NewOptions(views.PeriodTypes...)...).
				Value(&v.PeriodType),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// saveSetup applies the form to the config, stores the token and builds the
// client. The client is built even when saving fails so the dashboard can
// still run for this session.
func (a *App) saveSetup() error {
	v := a.setupVals
	a.cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	a.cfg.Display.Currency = v.Currency
	a.cfg.General.PeriodType = v.PeriodType
	a.cfg.Appearance.Theme = v.Theme
	a.periodType = views.NormalizePeriodType(v.PeriodType)
	theme.SetActive(v.Theme)

	a.token = strings.TrimSpace(v.Token)
	if a.token != "" {
		a.src = a.newClient()
	}

	var errs []error
	if err := config.Save(a.cfg); err != nil {
		errs = append(errs, err)
	}
	if a.secrets != nil && a.token != "" {
		if err := a.secrets.SaveToken(a.token); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
