// Package tui provides the interactive Bubble Tea dashboard for pacer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/config"
	"github.com/theirongolddev/pacer/internal/secrets"
	"github.com/theirongolddev/pacer/internal/tui/components"
	"github.com/theirongolddev/pacer/internal/tui/theme"
	"github.com/theirongolddev/pacer/internal/views"
)

const (
	tabPacing = iota
	tabCashFlow
	tabSpending
	tabCreep
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	noticeTTL = 6 * time.Second
)

// Options configures NewApp.
type Options struct {
	Config config.Config
	// Token authenticates the analytics client built from Config.
	Token string
	// Source replaces the analytics client, mainly for tests.
	Source  views.Source
	Secrets *secrets.Store
	Logger  *log.Logger
}

// App is the root Bubble Tea model.
type App struct {
	ctx     context.Context
	cfg     config.Config
	token   string
	custom  bool // Source was supplied by the caller
	src     views.Source
	secrets *secrets.Store
	logger  *log.Logger
	s       *session

	// Request parameters
	periodType string
	timeRange  string
	months     int
	category   string
	merchants  bool // spending tab lists merchants instead of categories

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	updatedAt       time.Time

	// Creep actions
	pending      string
	confirmReset bool
	lastFailure  string

	notice   string
	noticeAt time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// NewApp creates the dashboard. Without a Source or Token it opens the
// first-run setup form instead.
func NewApp(ctx context.Context, o Options) App {
	cfg := o.Config
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	theme.SetActive(cfg.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		ctx:             ctx,
		cfg:             cfg,
		token:           o.Token,
		src:             o.Source,
		custom:          o.Source != nil,
		secrets:         o.Secrets,
		logger:          logger,
		periodType:      views.NormalizePeriodType(cfg.General.PeriodType),
		timeRange:       views.NormalizeTimeRange(cfg.General.TimeRange),
		months:          cfg.General.HistoryMonths,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: cfg.RefreshInterval(),
		spinner:         sp,
	}
	if a.months <= 0 {
		a.months = views.Defaults.HistoryMonths
	}

	if a.src == nil && a.token != "" {
		a.src = a.newClient()
	}
	if a.src == nil {
		a.setupVals = newSetupValues(cfg)
		a.setupForm = newSetupForm(a.setupVals)
		return a
	}

	a.s = newSession(ctx, a.src, a.viewOptions(), a.params())
	a.lastRefresh = time.Now()
	return a
}

func (a App) newClient() *analytics.Client {
	return analytics.NewClient(a.cfg.API.BaseURL, a.token,
		analytics.WithTimeout(a.cfg.Timeout()),
		analytics.WithLogger(a.logger),
	)
}

func (a App) viewOptions() views.Options {
	return views.Options{
		Currency:     a.cfg.Display.Currency,
		LiquidAssets: a.cfg.LiquidAssets(),
		Logger:       a.logger,
	}
}

func (a App) params() sessionParams {
	return sessionParams{
		periodType: a.periodType,
		timeRange:  a.timeRange,
		history:    views.HistoryParams{Months: a.months, Category: a.category},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	if a.s != nil {
		a.s.start()
		cmds = append(cmds, waitForUpdate(a.s))
	}
	return tea.Batch(cmds...)
}

// startSession mounts the session's queries and begins listening for their
// state changes.
func (a *App) startSession() tea.Cmd {
	a.s.start()
	a.lastRefresh = time.Now()
	return waitForUpdate(a.s)
}

// replaceSession tears down the current session and starts a new one with
// the current source and options.
func (a *App) replaceSession() tea.Cmd {
	if a.s != nil {
		a.s.close()
	}
	a.s = newSession(a.ctx, a.src, a.viewOptions(), a.params())
	return a.startSession()
}

// Close releases the session. The program calls it after the event loop
// exits.
func (a App) Close() {
	if a.s != nil {
		a.s.close()
	}
}

func (a *App) setNotice(msg string) {
	a.notice = msg
	a.noticeAt = time.Now()
}

func (a App) refreshing() bool {
	return a.s != nil && a.s.busy()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil || a.s == nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case stateChangedMsg:
		if msg.s != a.s {
			return a, nil
		}
		if !a.s.busy() {
			a.updatedAt = time.Now()
		}
		return a, waitForUpdate(a.s)

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		if a.notice != "" && time.Since(a.noticeAt) >= noticeTTL {
			a.notice = ""
		}
		if a.s != nil && a.autoRefresh && !a.s.busy() && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.s.refreshAll()
			a.lastRefresh = time.Now()
		}
		return a, tickCmd()
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.s == nil {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// A pending reset confirmation survives only one keypress.
	confirming := a.confirmReset
	a.confirmReset = false

	switch a.activeTab {
	case tabSpending:
		if m, cmd, ok := a.updateSpendingKey(key); ok {
			return m, cmd
		}
	case tabCreep:
		if m, cmd, ok := a.updateCreepKey(key, confirming); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.s.refreshAll()
		a.lastRefresh = time.Now()
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		if err := config.Save(a.cfg); err != nil {
			a.logger.Warn("saving config", "err", err)
		}
		if a.autoRefresh {
			a.setNotice("auto-refresh on")
		} else {
			a.setNotice("auto-refresh off")
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		if err := a.saveSetup(); err != nil {
			a.setNotice("setup not saved: " + err.Error())
		}
		if a.src == nil {
			return a, nil
		}
		return a, a.replaceSession()

	case huh.StateAborted:
		a.setupForm = nil
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.s == nil {
		return a.viewNoSource()
	}
	if st := a.s.pacing.State(); st.IsLoading && st.Data == nil {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  pacer needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) overlayCard(body string) string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ pacer"))
	b.WriteString(subtitleStyle.Render(" · Spending Pace"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading from " + a.cfg.API.BaseURL))
	return a.overlayCard(b.String())
}

func (a App) viewNoSource() string {
	t := theme.Active
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := textStyle.Render("No API token configured.") + "\n\n" +
		mutedStyle.Render("Run `pacer setup` or set PACER_API_TOKEN, then restart.")
	if a.notice != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(a.notice)
	}
	body += "\n\n" + mutedStyle.Render("[q] quit")
	return a.overlayCard(body)
}

type binding struct{ key, desc string }

var helpSections = []struct {
	title    string
	bindings []binding
}{
	{"Navigation", []binding{
		{"p c s e x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
	}},
	{"Spending", []binding{
		{"t", "Cycle period type"},
		{"T", "Cycle time range"},
		{"m", "Categories / Merchants"},
		{"+ -", "History length"},
		{"h", "History category"},
	}},
	{"Creep", []binding{
		{"C", "Compute creep"},
		{"L U", "Lock / Unlock baselines"},
		{"X X", "Reset baselines"},
	}},
	{"General", []binding{
		{"r", "Refresh data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range helpSections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))
	return a.overlayCard(b.String())
}

func (a App) filterLine(w int) string {
	t := theme.Active
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	sep := pillStyle.Render(" │ ")
	parts := []string{
		accentStyle.Render(a.s.spending.Param()),
		accentStyle.Render(a.s.categories.Param()),
		accentStyle.Render(fmt.Sprintf("%d mo", a.s.history.Param().Months)),
	}
	if c := a.s.history.Param().Category; c != "" {
		parts = append(parts, accentStyle.Render(c))
	}
	parts = append(parts, accentStyle.Render(a.viewOptions().Currency))

	line := pillStyle.Render(" ") + strings.Join(parts, sep) + pillStyle.Render(" ")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

func (a App) statusInfo() components.StatusInfo {
	info := components.StatusInfo{
		Refreshing:  a.refreshing(),
		AutoRefresh: a.autoRefresh,
		Notice:      a.notice,
	}
	if !a.updatedAt.IsZero() {
		info.Updated = cli.FormatAge(a.updatedAt)
	}
	if a.confirmReset {
		info.Notice = "press X again to reset baselines"
	}
	return info
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.filterLine(w)
	statusBar := components.RenderStatusBar(w, a.statusInfo())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabPacing:
		content = a.renderPacingTab(cw)
	case tabCashFlow:
		content = a.renderCashFlowTab(cw)
	case tabSpending:
		content = a.renderSpendingTab(cw)
	case tabCreep:
		content = a.renderCreepTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// stateView renders a query's state inside cw columns: a spinner card
// during the first load, an error card with a retry hint when nothing has
// loaded, otherwise body. A failed refresh keeps the data and prepends a
// warning line.
func stateView[T any](st async.State[T], title string, cw int, spin string, body func(T) string) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	switch {
	case st.Data != nil:
		out := body(*st.Data)
		if st.Error != "" {
			warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
			out = warn.Render("⚠ refresh failed: "+st.Error) + "\n" + out
		}
		return out
	case st.IsLoading:
		return components.ContentCard(title, spin+mutedStyle.Render(" Loading…"), cw)
	case st.Error != "":
		return components.ContentCard(title, errStyle.Render(st.Error)+"\n\n"+mutedStyle.Render("[r] retry"), cw)
	}
	return components.ContentCard(title, mutedStyle.Render("No data"), cw)
}

// surface returns a text style on the card surface.
func surface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

// kv renders one "label  value" line inside a card.
func kv(label, value string, width int) string {
	t := theme.Active
	return surface(t.TextMuted).Render(fmt.Sprintf("%-*s", width, label)) + value
}

// cycle returns the entry after cur in opts, wrapping around.
func cycle(opts []string, cur string) string {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // one-column separator
	}
	return -1
}
