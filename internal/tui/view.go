package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View implements Page. It draws from state settled by the last Update and
// never changes layout.
func (m *ViewerModel) View(width, height int) string {
	if width <= 0 || height <= 0 || m.width <= 0 {
		return "Initializing viewer..."
	}
	if height < minHeight || width < minWidth {
		return fmt.Sprintf("Terminal too small. Resize to at least %dx%d.", minWidth, minHeight)
	}

	g := m.geometry()
	sections := []string{m.renderHeader()}
	if g.errorY >= 0 {
		sections = append(sections, errorStyle.Width(m.width).Render(ansi.Truncate(m.snap.Err, m.width, "…")))
	}
	sections = append(sections,
		m.renderTimeline(g),
		m.renderTableHeader(),
		m.renderTableBody(g.bodyHeight),
	)
	if m.showHelp {
		sections = append(sections, m.help.View(m.keys))
	}
	sections = append(sections, m.renderStatusLine())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *ViewerModel) renderHeader() string {
	title := titleStyle.Render("Log Viewer")
	if m.sourceName != "" {
		title += helpStyle.Render("  " + m.sourceName)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitleStyle.Render("Streaming logs directly from the server"),
	)
}

// renderStatusLine renders the bottom bar: focused section on the left, key
// hints in the centre and ingestion state on the right.
func (m *ViewerModel) renderStatusLine() string {
	w := m.width

	veryNarrow := w < 60
	narrow := w < 80
	medium := w < 120

	leftText := fmt.Sprintf("[%s]", m.activeSection)

	var statusText string
	switch {
	case m.activeSection == SectionTimeline && narrow:
		statusText = "?: Help • ←→ Hour • p/n Day"
	case m.activeSection == SectionTimeline && medium:
		statusText = "?: Help • ←→: Hour • p/n: Day • Tab: Table"
	case m.activeSection == SectionTimeline:
		statusText = "?: Help • ←→: Hour • p/[: Previous day • n/]: Next day • Click bars • Tab: Table • q: Quit"
	case veryNarrow:
		statusText = "?: Help • ↑↓ • Enter"
	case narrow:
		statusText = "?: Help • ↑↓ Navigate • Enter: Expand"
	case medium:
		statusText = "?: Help • ↑↓: Navigate • PgUp/Dn • Enter: Expand • p/n: Day"
	default:
		statusText = "?: Help • Wheel: scroll • ↑↓: Navigate • Home/End • PgUp/PgDn: Page • Enter/Click: Expand • p/n: Day • q: Quit"
	}

	var rightParts []string
	switch {
	case m.snap.Err != "":
		rightParts = append(rightParts, lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorRed).Render("● failed"))
	case m.ingesting():
		rightParts = append(rightParts, m.spinner.View()+statusStyle.Render(" streaming"))
	default:
		rightParts = append(rightParts, lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorGreen).Render("●")+statusStyle.Render(" done"))
	}
	if !narrow {
		rightParts = append(rightParts, fmt.Sprintf("%d logs", len(m.snap.Records)))
	}
	rightText := strings.Join(rightParts, "  ")

	leftWidth := lipgloss.Width(leftText) + 2
	rightWidth := lipgloss.Width(rightText) + 2
	centerWidth := max(0, w-leftWidth-rightWidth)
	if lipgloss.Width(statusText) > centerWidth {
		statusText = ansi.Truncate(statusText, centerWidth, "")
	}

	leftPart := statusStyle.Align(lipgloss.Left).Width(leftWidth).Render(leftText)
	centerPart := statusStyle.Align(lipgloss.Center).Width(centerWidth).Render(statusText)
	rightPart := statusStyle.Align(lipgloss.Right).Width(rightWidth).Render(rightText)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, centerPart, rightPart)
}
