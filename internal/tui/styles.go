package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Skins may override any of these by name.
var (
	ColorNavy    = lipgloss.Color("#1B2A41")
	ColorWhite   = lipgloss.Color("#F5F5F5")
	ColorGray    = lipgloss.Color("244")
	ColorDimGray = lipgloss.Color("240")
	ColorBlue    = lipgloss.Color("39")
	ColorGreen   = lipgloss.Color("42")
	ColorYellow  = lipgloss.Color("220")
	ColorOrange  = lipgloss.Color("208")
	ColorRed     = lipgloss.Color("196")
	ColorMagenta = lipgloss.Color("201")
	ColorBar     = lipgloss.Color("#2884D8")
	ColorFocus   = lipgloss.Color("#3A4F73")
	ColorRowEven = lipgloss.Color("#1E1E1E")
	ColorRowOdd  = lipgloss.Color("#262626")
)

var (
	titleStyle          lipgloss.Style
	subtitleStyle       lipgloss.Style
	errorStyle          lipgloss.Style
	helpStyle           lipgloss.Style
	labelStyle          lipgloss.Style
	buttonStyle         lipgloss.Style
	buttonActiveStyle   lipgloss.Style
	buttonDisabledStyle lipgloss.Style
	tableHeaderStyle    lipgloss.Style
	rowEvenStyle        lipgloss.Style
	rowOddStyle         lipgloss.Style
	rowFocusStyle       lipgloss.Style
	detailStyle         lipgloss.Style
	axisStyle           lipgloss.Style
	barStyle            lipgloss.Style
	barFocusStyle       lipgloss.Style
	tooltipStyle        lipgloss.Style
	statusStyle         lipgloss.Style
	sectionStyle        lipgloss.Style
	activeSectionStyle  lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles derives every style from the current palette.
func rebuildStyles() {
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	subtitleStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	helpStyle = lipgloss.NewStyle().Foreground(ColorGray)
	labelStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorWhite).Background(ColorNavy)
	buttonActiveStyle = buttonStyle.Background(ColorFocus).Bold(true)
	buttonDisabledStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorDimGray).Strikethrough(true)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Background(ColorNavy)
	rowEvenStyle = lipgloss.NewStyle().Background(ColorRowEven)
	rowOddStyle = lipgloss.NewStyle().Background(ColorRowOdd)
	rowFocusStyle = lipgloss.NewStyle().Background(ColorFocus).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(ColorGray)

	axisStyle = lipgloss.NewStyle().Foreground(ColorDimGray)
	barStyle = lipgloss.NewStyle().Foreground(ColorBar).Background(ColorBar)
	barFocusStyle = lipgloss.NewStyle().Foreground(ColorYellow).Background(ColorYellow)
	tooltipStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray).
		Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorWhite)
	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorDimGray)
	activeSectionStyle = sectionStyle.BorderForeground(ColorBlue)
}

// severityColor maps a normalized severity to its foreground color.
func severityColor(level string) lipgloss.Color {
	switch level {
	case "TRACE", "DEBUG":
		return ColorGray
	case "WARN":
		return ColorOrange
	case "ERROR":
		return ColorRed
	case "FATAL":
		return ColorMagenta
	default:
		return ColorGreen
	}
}
