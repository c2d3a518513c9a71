package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/secrets"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

const (
	settingsFieldBaseURL = iota
	settingsFieldToken
	settingsFieldTheme
	settingsFieldCurrency
	settingsFieldPeriodType
	settingsFieldTimeRange
	settingsFieldHistoryMonths
	settingsFieldLiquidAssets
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

var settingsLabels = [settingsFieldCount]string{
	"API URL",
	"API Token",
	"Theme",
	"Currency",
	"Period Type",
	"Time Range",
	"History Months",
	"Liquid Assets",
	"Auto Refresh",
	"Refresh Interval",
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBaseURL:
		ti.Placeholder = "http://127.0.0.1:8000"
		ti.SetValue(a.cfg.API.BaseURL)
	case settingsFieldToken:
		ti.Placeholder = "paste a new token"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldCurrency:
		ti.Placeholder = "USD"
		ti.SetValue(a.cfg.Display.Currency)
	case settingsFieldPeriodType:
		ti.Placeholder = strings.Join(views.PeriodTypes, ", ")
		ti.SetValue(a.periodType)
	case settingsFieldTimeRange:
		ti.Placeholder = strings.Join(views.TimeRanges, ", ")
		ti.SetValue(a.timeRange)
	case settingsFieldHistoryMonths:
		ti.Placeholder = fmt.Sprintf("%d-%d", minHistoryMonths, maxHistoryMonths)
		ti.SetValue(strconv.Itoa(a.months))
	case settingsFieldLiquidAssets:
		ti.Placeholder = "25000.00 (leave empty to clear)"
		ti.SetValue(a.cfg.Finance.LiquidAssets)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd, err := a.settingsSave(strings.TrimSpace(a.settings.input.Value()))
		a.settings.editing = false
		a.settings.saveErr = err
		a.settings.saved = err == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies val to the selected field and persists the config.
// Fields baked into the views rebuild the session.
func (a *App) settingsSave(val string) (tea.Cmd, error) {
	rebuild := false

	switch a.settings.cursor {
	case settingsFieldBaseURL:
		if !strings.HasPrefix(val, "http://") && !strings.HasPrefix(val, "https://") {
			return nil, errors.New("API URL must start with http:// or https://")
		}
		a.cfg.API.BaseURL = strings.TrimRight(val, "/")
		rebuild = !a.custom
	case settingsFieldToken:
		if val == "" {
			return nil, errors.New("token is empty")
		}
		if a.secrets != nil {
			if err := a.secrets.SaveToken(val); err != nil {
				return nil, err
			}
		}
		a.token = val
		rebuild = !a.custom
	case settingsFieldTheme:
		if !slices.Contains(theme.Names(), val) {
			return nil, fmt.Errorf("unknown theme %q", val)
		}
		a.cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldCurrency:
		code := strings.ToUpper(val)
		if len(code) != 3 {
			return nil, errors.New("currency must be a 3-letter ISO code")
		}
		a.cfg.Display.Currency = code
		rebuild = true
	case settingsFieldPeriodType:
		if !slices.Contains(views.PeriodTypes, strings.ToLower(val)) {
			return nil, fmt.Errorf("period type must be one of %s", strings.Join(views.PeriodTypes, ", "))
		}
		a.periodType = strings.ToLower(val)
		a.cfg.General.PeriodType = a.periodType
		a.s.spending.SetParam(a.periodType)
	case settingsFieldTimeRange:
		if !slices.Contains(views.TimeRanges, strings.ToLower(val)) {
			return nil, fmt.Errorf("time range must be one of %s", strings.Join(views.TimeRanges, ", "))
		}
		a.timeRange = strings.ToLower(val)
		a.cfg.General.TimeRange = a.timeRange
		a.s.categories.SetParam(a.timeRange)
		a.s.merchants.SetParam(a.timeRange)
	case settingsFieldHistoryMonths:
		n, err := strconv.Atoi(val)
		if err != nil || n < minHistoryMonths || n > maxHistoryMonths {
			return nil, fmt.Errorf("history months must be %d-%d", minHistoryMonths, maxHistoryMonths)
		}
		a.months = n
		a.cfg.General.HistoryMonths = n
		a.s.history.SetParam(views.HistoryParams{Months: a.months, Category: a.category})
	case settingsFieldLiquidAssets:
		if val != "" && amount.ParseOptional(val) == nil {
			return nil, fmt.Errorf("%q is not an amount", val)
		}
		a.cfg.Finance.LiquidAssets = val
		rebuild = true
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, errors.New("auto refresh must be true or false")
		}
		a.autoRefresh = b
		a.cfg.TUI.AutoRefresh = b
	case settingsFieldRefreshInterval:
		n, err := strconv.Atoi(val)
		if err != nil || n < 10 {
			return nil, errors.New("refresh interval must be at least 10 seconds")
		}
		a.cfg.TUI.RefreshIntervalSec = n
		a.refreshInterval = a.cfg.RefreshInterval()
	}

	if err := config.Save(a.cfg); err != nil {
		return nil, err
	}
	if !rebuild {
		return nil, nil
	}
	if !a.custom {
		a.src = a.newClient()
	}
	return a.replaceSession(), nil
}

func (a App) tokenDisplay() string {
	switch {
	case a.token != "":
		return secrets.Mask(a.token)
	case a.custom:
		return "(not used)"
	}
	return "(not set)"
}

func (a App) settingsValues() [settingsFieldCount]string {
	liquid := a.cfg.Finance.LiquidAssets
	if liquid == "" {
		liquid = "(not set)"
	}
	return [settingsFieldCount]string{
		a.cfg.API.BaseURL,
		a.tokenDisplay(),
		a.cfg.Appearance.Theme,
		a.cfg.Display.Currency,
		a.periodType,
		a.timeRange,
		strconv.Itoa(a.months),
		liquid,
		strconv.FormatBool(a.autoRefresh),
		fmt.Sprintf("%ds", int(a.refreshInterval.Seconds())),
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := surface(t.TextMuted)
	valueStyle := surface(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := surface(t.AccentBright)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	values := a.settingsValues()
	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, label := range settingsLabels {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			lbl := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":"))
			value := selectedStyle.Render(values[i])
			formBody.WriteString(marker + lbl + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(lbl) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(surface(t.TextPrimary).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
			formBody.WriteString(valueStyle.Render(values[i]))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		formBody.WriteString("\n")
		formBody.WriteString(surface(t.Orange).Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(surface(t.Green).Render("Saved!"))
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()))
	if a.secrets != nil {
		infoBody.WriteString("\n")
		infoBody.WriteString(labelStyle.Render("Token file:   ") + valueStyle.Render(a.secrets.TokenPath()))
	}
	infoBody.WriteString("\n")
	infoBody.WriteString(labelStyle.Render("Environment:  ") + valueStyle.Render(config.EnvPrefix+"_* overrides the file"))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Files", infoBody.String(), cw))
	return b.String()
}
