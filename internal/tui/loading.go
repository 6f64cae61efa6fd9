package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorBlue)),
	)
}

// renderLoadingPlaceholder renders the spinner centred in the table body
// while the first records are on their way.
func (m *ViewerModel) renderLoadingPlaceholder(width, height int) string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	text := m.spinner.View() + loadingStyle.Render(" Loading logs...")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// ingesting reports whether records may still arrive.
func (m *ViewerModel) ingesting() bool {
	return !m.snap.Done
}
