package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pacer/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	// Updated is a human age such as "2 minutes ago"; empty before the
	// first load.
	Updated     string
	Refreshing  bool
	AutoRefresh bool
	Notice      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if info.Notice != "" {
		left += dim.Render("  ·  ") + accent.Render(info.Notice)
	}

	right := ""
	switch {
	case info.Refreshing:
		right = accent.Render("refreshing…")
	case info.Updated != "":
		right = base.Render("updated " + info.Updated)
	}
	if info.AutoRefresh {
		right += dim.Render("  auto")
	}
	right += base.Render(" ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
