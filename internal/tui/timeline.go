package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logview/internal/timeline"
)

func (m *ViewerModel) axisLabelWidth() int {
	return len(strconv.Itoa(m.summary.MaxCount))
}

// renderTimeline renders the day controls, the period line and the hourly
// histogram with its axes and tooltip.
func (m *ViewerModel) renderTimeline(g geometry) string {
	lines := []string{
		m.renderDayControls(),
		m.renderPeriod(),
	}

	chart := m.renderChart(g)
	axis := strings.Repeat(" ", g.axisWidth-1) + axisStyle.Render("└"+strings.Repeat("─", 24*(g.barWidth+g.barGap)))
	labels := strings.Repeat(" ", g.chartLeft) + axisStyle.Render(hourLabels(g.barWidth, g.barGap))

	body := lipgloss.JoinVertical(lipgloss.Left, chart, axis, labels)
	if tip := m.renderTooltip(); tip != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", tip)
	}
	lines = append(lines, body)

	style := sectionStyle
	if m.activeSection == SectionTimeline {
		style = activeSectionStyle
	}
	return style.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *ViewerModel) renderDayControls() string {
	prev := buttonDisabledStyle.Render(prevDayLabel)
	if m.cursor.HasPrev(m.snap.Records) {
		prev = buttonStyle.Render(prevDayLabel)
	}
	next := buttonDisabledStyle.Render(nextDayLabel)
	if m.cursor.HasNext(m.snap.Records) {
		next = buttonStyle.Render(nextDayLabel)
	}

	day := "-"
	if d, ok := m.cursor.Day(); ok {
		day = timeline.FormatDateIn(d, m.cursor.Location())
	}
	current := labelStyle.Render("Current Day: ") + day
	return prev + " " + next + "   " + current
}

func (m *ViewerModel) renderPeriod() string {
	if m.summary.FirstDate == "" {
		return labelStyle.Render("Time Period: ") + helpStyle.Render("waiting for logs")
	}
	return labelStyle.Render("Time Period: ") + m.summary.FirstDate + " to " + m.summary.LastDate
}

// renderChart draws the y-axis ticks next to the bars. A day without
// records draws an empty plot.
func (m *ViewerModel) renderChart(g geometry) string {
	width := 24 * (g.barWidth + g.barGap)
	plot := make([]string, chartHeight)
	if m.summary.MaxCount > 0 {
		bc := barchart.New(width, chartHeight,
			barchart.WithBarGap(g.barGap),
			barchart.WithBarWidth(g.barWidth),
			barchart.WithNoAxis(),
		)
		for _, b := range m.summary.Buckets {
			style := barStyle
			if b.Hour == m.highlightedHour() {
				style = barFocusStyle
			}
			bc.Push(barchart.BarData{
				Label: "",
				Values: []barchart.BarValue{
					{Name: timeline.FormatTime(b.Hour), Value: float64(b.Count), Style: style},
				},
			})
		}
		bc.Draw()
		plot = strings.Split(bc.View(), "\n")
	}

	ticks := yTickRows(timeline.YAxisTicks(m.summary.MaxCount), chartHeight)
	labelWidth := g.axisWidth - 2
	rows := make([]string, chartHeight)
	for y := range rows {
		label := strings.Repeat(" ", labelWidth)
		if t, ok := ticks[y]; ok {
			label = fmt.Sprintf("%*d", labelWidth, t)
		}
		line := ""
		if y < len(plot) {
			line = plot[y]
		}
		rows[y] = axisStyle.Render(label+" │") + line
	}
	return strings.Join(rows, "\n")
}

// yTickRows spreads the descending tick values over height rows, top to
// bottom. Ticks that land on the same row keep the first.
func yTickRows(ticks []int, height int) map[int]int {
	rows := make(map[int]int, len(ticks))
	if len(ticks) < 2 || height < 1 {
		return rows
	}
	for k, t := range ticks {
		y := k * (height - 1) / (len(ticks) - 1)
		if _, taken := rows[y]; !taken {
			rows[y] = t
		}
	}
	return rows
}

// hourLabels lays "00:00".."23:00" under the bars, skipping hours when the
// slots are too narrow and falling back to "00".."23" for one-column slots.
func hourLabels(barWidth, gap int) string {
	slot := barWidth + gap
	labelLen := 5
	if slot < 2 {
		labelLen = 2
	}
	step := (labelLen + slot) / slot // room for the label and a space

	buf := []rune(strings.Repeat(" ", 24*slot+labelLen))
	for h := 0; h < timeline.HoursPerDay; h += step {
		label := timeline.FormatTime(h)[:labelLen]
		copy(buf[h*slot:], []rune(label))
	}
	return strings.TrimRight(string(buf), " ")
}

// highlightedHour is the bar under the pointer, or the keyboard-focused bar
// while the timeline has focus; -1 for none.
func (m *ViewerModel) highlightedHour() int {
	if m.hoverHour >= 0 {
		return m.hoverHour
	}
	if m.activeSection == SectionTimeline {
		return m.focusedHour
	}
	return -1
}

func (m *ViewerModel) renderTooltip() string {
	h := m.highlightedHour()
	if h < 0 || h >= timeline.HoursPerDay {
		return ""
	}
	b := m.summary.Buckets[h]
	return tooltipStyle.Render(fmt.Sprintf("Hour: %s\nCount: %d", timeline.FormatTime(b.Hour), b.Count))
}

// hourAt maps a screen column to the bar drawn there.
func (g geometry) hourAt(x int) (int, bool) {
	slot := g.barWidth + g.barGap
	rel := x - g.chartLeft
	if rel < 0 || slot <= 0 {
		return 0, false
	}
	h := rel / slot
	if h >= timeline.HoursPerDay {
		return 0, false
	}
	return h, true
}
