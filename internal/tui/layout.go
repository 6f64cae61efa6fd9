package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/logview/internal/observe"
	"go.uber.org/zap"
)

const (
	minWidth  = 60
	minHeight = 22

	headerHeight   = 2
	chartHeight    = 8
	timelineHeight = chartHeight + 5 // controls, period, axis, labels, border
	tooltipWidth   = 20

	// maxLayoutPasses bounds the measure/re-layout loop. Heights only
	// change when content changes, so two passes settle in practice.
	maxLayoutPasses = 4
)

// Fixed control geometry on the first timeline line.
var (
	prevDayLabel = "◀ Previous Day"
	nextDayLabel = "Next Day ▶"
)

// geometry is the screen layout for the current size, shared by View and
// the mouse handler.
type geometry struct {
	errorY       int // -1 without an error line
	controlsY    int
	prevX0       int
	prevX1       int
	nextX0       int
	nextX1       int
	periodY      int
	chartTop     int
	chartLeft    int
	axisWidth    int
	barWidth     int
	barGap       int
	labelsY      int
	tableHeaderY int
	bodyTop      int
	bodyHeight   int
	helpHeight   int
}

func (m *ViewerModel) geometry() geometry {
	g := geometry{errorY: -1}
	y := headerHeight
	if m.snap.Err != "" {
		g.errorY = y
		y++
	}

	g.controlsY = y
	g.prevX0 = 0
	g.prevX1 = lipgloss.Width(buttonStyle.Render(prevDayLabel))
	g.nextX0 = g.prevX1 + 1
	g.nextX1 = g.nextX0 + lipgloss.Width(buttonStyle.Render(nextDayLabel))
	g.periodY = y + 1
	g.chartTop = y + 2
	g.labelsY = g.chartTop + chartHeight + 1

	g.axisWidth = m.axisLabelWidth() + 2
	g.chartLeft = g.axisWidth
	g.barWidth, g.barGap = barDimensions(m.width - g.chartLeft - tooltipWidth)

	g.tableHeaderY = y + timelineHeight
	g.bodyTop = g.tableHeaderY + 1

	if m.showHelp {
		g.helpHeight = lipgloss.Height(m.help.View(m.keys))
	}
	g.bodyHeight = max(1, m.height-g.bodyTop-g.helpHeight-1)
	return g
}

// barDimensions fits 24 bars into width columns. A one-column gap is kept
// while every bar can still be at least two columns wide.
func barDimensions(width int) (barWidth, gap int) {
	const bars = 24
	if width >= bars*3 {
		return min(6, (width-bars)/bars), 1
	}
	return max(1, width/bars), 0
}

// resize reports the table container size to the width observer. The
// registry only calls back when the size actually changed.
func (m *ViewerModel) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	g := m.geometry()
	m.widthObs.Report(tableKey, observe.Size{Width: m.width, Height: g.bodyHeight})
}

// layout mounts the rows in the virtualization window, renders them and
// feeds their measured heights back until the layout settles.
func (m *ViewerModel) layout() {
	if m.closed || m.rows.Width() <= 0 {
		return
	}
	for pass := 0; pass < maxLayoutPasses; pass++ {
		gen := m.rows.Generation()
		start, stop := m.rows.VisibleRange()
		m.mount(start, stop)
		for i := start; i < stop; i++ {
			view := m.renderRow(i)
			m.rendered[i] = view
			m.heightObs.Report(i, observe.Size{Width: m.rows.Width(), Height: lipgloss.Height(view)})
		}
		if m.rows.Generation() == gen {
			return
		}
	}
	m.logger.Debug("layout did not settle", zap.Int("passes", maxLayoutPasses))
}

// revealFocus scrolls the focused row into view. Rows measured on the way
// can move it again, so it runs twice.
func (m *ViewerModel) revealFocus() {
	for range 2 {
		m.layout()
		m.rows.EnsureVisible(m.rows.Focus())
	}
	m.layout()
}

// mount attaches height observers to rows entering [start, stop) and
// detaches rows that left it. A row without a cached height is observed
// afresh so its next measurement is always delivered.
func (m *ViewerModel) mount(start, stop int) {
	for i, unobserve := range m.mounted {
		if i < start || i >= stop {
			unobserve()
			delete(m.mounted, i)
			delete(m.rendered, i)
		}
	}
	for i := start; i < stop; i++ {
		if _, ok := m.mounted[i]; ok && m.rows.Measured(i) {
			continue
		}
		m.mounted[i] = m.heightObs.Observe(i, func(s observe.Size) {
			m.rows.SetRowHeight(i, s.Height)
		})
	}
}
