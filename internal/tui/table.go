package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/tinytelemetry/logview/internal/logparse"
	"github.com/tinytelemetry/logview/internal/model"
)

const (
	markerCollapsed = "▶"
	markerExpanded  = "▼"
	markerWidth     = 2
	timeWidth       = len(model.ISOTimeLayout) // 2006-01-02T15:04:05.000Z
	columnGap       = 2
	eventIndent     = markerWidth + timeWidth + columnGap
	minEventWidth   = 16
)

func (m *ViewerModel) eventWidth() int {
	return max(minEventWidth, m.rows.Width()-eventIndent)
}

// renderRow renders record i: a marker, its ISO time and the record as
// compact JSON cut to the summary line limit, or pretty-printed when the
// row is expanded.
func (m *ViewerModel) renderRow(i int) string {
	rec := m.snap.Records[i]
	expanded := m.rows.IsExpanded(i)
	width := m.eventWidth()

	var event []string
	if expanded {
		event = wrapLines(rec.PrettyJSON(), width)
	} else {
		event = summaryLines(rec.CompactJSON(), width, m.summaryLines)
	}

	marker := markerCollapsed
	if expanded {
		marker = markerExpanded
	}
	timeStyle := lipgloss.NewStyle().Foreground(severityColor(logparse.RecordSeverity(rec)))

	lines := make([]string, len(event))
	for n, text := range event {
		if n == 0 {
			lines[n] = marker + " " + timeStyle.Render(rec.ISOTime()) + strings.Repeat(" ", columnGap) + text
			continue
		}
		if expanded {
			text = detailStyle.Render(text)
		}
		lines[n] = strings.Repeat(" ", eventIndent) + text
	}

	return m.rowStyle(i).Width(m.rows.Width()).Render(strings.Join(lines, "\n"))
}

func (m *ViewerModel) rowStyle(i int) lipgloss.Style {
	switch {
	case i == m.rows.Focus() && m.activeSection == SectionTable:
		return rowFocusStyle
	case i%2 == 0:
		return rowEvenStyle
	default:
		return rowOddStyle
	}
}

// wrapLines hard-wraps every line of s to width columns.
func wrapLines(s string, width int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, strings.Split(ansi.Hardwrap(line, width, true), "\n")...)
	}
	return out
}

// summaryLines wraps s to width and keeps at most limit lines, marking the
// cut with an ellipsis.
func summaryLines(s string, width, limit int) []string {
	lines := wrapLines(s, width)
	if len(lines) <= limit {
		return lines
	}
	lines = lines[:limit]
	last := lines[limit-1]
	lines[limit-1] = ansi.Truncate(last, width-1, "") + "…"
	return lines
}

func (m *ViewerModel) renderTableHeader() string {
	header := strings.Repeat(" ", markerWidth) +
		lipgloss.NewStyle().Width(timeWidth+columnGap).Render("Time") +
		"Event"
	return tableHeaderStyle.Width(m.width).Render(header)
}

// renderTableBody cuts the viewport out of the mounted rows.
func (m *ViewerModel) renderTableBody(height int) string {
	if len(m.snap.Records) == 0 {
		if m.ingesting() {
			return m.renderLoadingPlaceholder(m.width, height)
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, helpStyle.Render("No log entries"))
	}

	top := m.rows.ScrollOffset()
	lines := make([]string, 0, height)
	start, stop := m.rows.VisibleRange()
	for i := start; i < stop && len(lines) < height; i++ {
		view, ok := m.rendered[i]
		if !ok {
			continue
		}
		off := m.rows.ItemOffset(i)
		for n, line := range strings.Split(view, "\n") {
			y := off + n
			if y < top {
				continue
			}
			if y >= top+height {
				break
			}
			lines = append(lines, line)
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
