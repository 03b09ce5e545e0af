package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so everything uses lipgloss.AdaptiveColor and "faint" styling is applied
// only on dark backgrounds (faint text on light terminals often becomes
// illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("25", "39")
	colorDone     = ac("28", "42")
	colorError    = ac("124", "203")
	colorSelected = ac("#e9e9e9", "#262626")

	titleBarStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tabStyle      = lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted)
	tabActive     = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(colorAccent).Underline(true)

	selectedRowStyle = lipgloss.NewStyle().Background(colorSelected)
	statusLineStyle  = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	errorLineStyle   = lipgloss.NewStyle().Foreground(colorError).Padding(0, 1)
	roomStatusStyle  = lipgloss.NewStyle().Foreground(colorDone).Padding(0, 1)
	paneBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	helpStyle        = lipgloss.NewStyle().Foreground(colorMuted)
)
