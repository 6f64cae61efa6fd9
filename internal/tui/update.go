package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/logview/internal/timeline"
	"go.uber.org/zap"
)

// wheelStep is the number of lines one wheel notch scrolls.
const wheelStep = 3

// snapshotMsg signals that the store published a new snapshot.
type snapshotMsg struct{}

// waitForSnapshot blocks until the store publishes. A closed channel means
// the store is gone and nothing is delivered.
func waitForSnapshot(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return snapshotMsg{}
	}
}

// Update implements Page. Every state change is followed by a layout pass
// so View only draws what is already measured.
func (m *ViewerModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if m.closed {
		return nil, nil
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case snapshotMsg:
		failed := m.snap.Err != ""
		m.applySnapshot(m.store.Snapshot())
		if m.snap.Err != "" && !failed {
			m.logger.Warn("ingestion failed", zap.String("error", m.snap.Err))
		}
		// The error line takes a row from the table.
		m.resize()
		cmd = waitForSnapshot(m.updates)

	case spinner.TickMsg:
		if !m.ingesting() {
			return nil, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd, nil

	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKeyPress(msg)
		if quit {
			return cmd, nil
		}

	case tea.MouseMsg:
		m.handleMouse(msg)
	}

	m.layout()
	return cmd, nil
}

func (m *ViewerModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		m.Close()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize()
		return nil, false

	case key.Matches(msg, m.keys.NextSection), key.Matches(msg, m.keys.PrevSection):
		if m.activeSection == SectionTable {
			m.activeSection = SectionTimeline
		} else {
			m.activeSection = SectionTable
		}
		return nil, false

	case key.Matches(msg, m.keys.PrevDay):
		m.prevDay()
		return nil, false

	case key.Matches(msg, m.keys.NextDay):
		m.nextDay()
		return nil, false
	}

	if m.activeSection == SectionTimeline {
		m.handleTimelineKey(msg)
	} else {
		m.handleTableKey(msg)
	}
	return nil, false
}

func (m *ViewerModel) handleTimelineKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		m.focusedHour = max(0, m.focusedHour-1)
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		m.focusedHour = min(timeline.HoursPerDay-1, m.focusedHour+1)
	case key.Matches(msg, m.keys.Home):
		m.focusedHour = 0
	case key.Matches(msg, m.keys.End):
		m.focusedHour = timeline.HoursPerDay - 1
	}
	m.hoverHour = -1
}

func (m *ViewerModel) handleTableKey(msg tea.KeyMsg) {
	page := max(1, m.rows.Height()-1)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.rows.MoveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.rows.MoveFocus(1)
	case key.Matches(msg, m.keys.PageUp):
		m.rows.ScrollBy(-page)
		m.focusFirstVisible()
		return
	case key.Matches(msg, m.keys.PageDown):
		m.rows.ScrollBy(page)
		m.focusFirstVisible()
		return
	case key.Matches(msg, m.keys.Home):
		m.rows.SetFocus(0)
		m.rows.ScrollTo(0)
		return
	case key.Matches(msg, m.keys.End):
		m.rows.SetFocus(m.rows.Count() - 1)
	case key.Matches(msg, m.keys.Toggle):
		m.rows.Toggle(m.rows.Focus())
		return
	default:
		return
	}
	m.revealFocus()
}

// focusFirstVisible moves focus to the row at the top of the viewport.
func (m *ViewerModel) focusFirstVisible() {
	m.layout()
	if i, ok := m.rows.RowAt(0); ok {
		m.rows.SetFocus(i)
	}
}

func (m *ViewerModel) handleMouse(msg tea.MouseMsg) {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	g := m.geometry()
	inChart := msg.Y >= g.chartTop && msg.Y <= g.labelsY

	switch msg.Action {
	case tea.MouseActionMotion:
		m.hoverHour = -1
		if inChart {
			if h, ok := g.hourAt(msg.X); ok {
				m.hoverHour = h
			}
		}

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollWheel(-wheelStep)
		case tea.MouseButtonWheelDown:
			m.scrollWheel(wheelStep)
		case tea.MouseButtonLeft:
			m.handleClick(g, msg.X, msg.Y, inChart)
		}
	}
}

func (m *ViewerModel) scrollWheel(delta int) {
	if m.reverseScrollWheel {
		delta = -delta
	}
	m.rows.ScrollBy(delta)
}

func (m *ViewerModel) handleClick(g geometry, x, y int, inChart bool) {
	switch {
	case y == g.controlsY && x >= g.prevX0 && x < g.prevX1:
		m.prevDay()
	case y == g.controlsY && x >= g.nextX0 && x < g.nextX1:
		m.nextDay()
	case inChart:
		m.activeSection = SectionTimeline
		if h, ok := g.hourAt(x); ok {
			m.focusedHour = h
		}
	case y >= g.bodyTop && y < g.bodyTop+g.bodyHeight:
		m.activeSection = SectionTable
		if i, ok := m.rows.RowAt(y - g.bodyTop); ok {
			m.rows.Toggle(i)
		}
	}
}
