package virtual

// DefaultItemSize is the height assumed for a row that has not been measured.
const DefaultItemSize = 32

// DefaultOverscan is the number of extra rows mounted on each side of the
// viewport.
const DefaultOverscan = 5

// RowManager owns the per-row height cache, expansion state, focus and scroll
// offset of a virtualized list. It is not safe for concurrent use; the UI
// loop is its only caller.
type RowManager struct {
	layout      *Layout
	heights     map[int]int
	expanded    map[int]bool
	defaultSize int
	overscan    int

	width, height int
	scroll        int
	focus         int
	generation    uint64
}

// RowOption configures a RowManager.
type RowOption func(*RowManager)

// WithDefaultSize sets the height used for rows that have not been measured.
func WithDefaultSize(n int) RowOption {
	return func(m *RowManager) {
		if n > 0 {
			m.defaultSize = n
		}
	}
}

// WithOverscan sets the number of rows mounted outside the viewport.
func WithOverscan(n int) RowOption {
	return func(m *RowManager) {
		if n >= 0 {
			m.overscan = n
		}
	}
}

// NewRowManager creates a manager for an empty list.
func NewRowManager(opts ...RowOption) *RowManager {
	m := &RowManager{
		heights:     make(map[int]int),
		expanded:    make(map[int]bool),
		defaultSize: DefaultItemSize,
		overscan:    DefaultOverscan,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.layout = NewLayout(0, m.RowHeight, m.defaultSize)
	return m
}

// Count returns the number of rows.
func (m *RowManager) Count() int { return m.layout.Count() }

// SetCount updates the number of rows. The collection only grows while
// streaming; a shrink drops state for the removed rows.
func (m *RowManager) SetCount(n int) {
	prev := m.layout.Count()
	if n == prev {
		return
	}
	if n < prev {
		for i := range m.heights {
			if i >= n {
				delete(m.heights, i)
			}
		}
		for i := range m.expanded {
			if i >= n {
				delete(m.expanded, i)
			}
		}
	}
	m.layout.SetCount(n)
	m.focus = clamp(m.focus, 0, max(0, n-1))
	m.scroll = m.clampScroll(m.scroll)
	m.generation++
}

// SetViewport records the container size. A width change invalidates every
// measured height because rows re-wrap. Reports whether the width changed.
func (m *RowManager) SetViewport(width, height int) bool {
	widthChanged := width != m.width
	m.width = width
	m.height = max(0, height)
	if widthChanged {
		clear(m.heights)
		m.layout.ResetAfterIndex(0)
		m.generation++
	}
	m.scroll = m.clampScroll(m.scroll)
	return widthChanged
}

// Width returns the last container width.
func (m *RowManager) Width() int { return m.width }

// Height returns the viewport height.
func (m *RowManager) Height() int { return m.height }

// RowHeight returns the cached height of row i or the default size.
func (m *RowManager) RowHeight(i int) int {
	if h, ok := m.heights[i]; ok {
		return h
	}
	return m.defaultSize
}

// Measured reports whether row i has a cached height.
func (m *RowManager) Measured(i int) bool {
	_, ok := m.heights[i]
	return ok
}

// SetRowHeight stores a measured height. Zero is ignored (the row is not
// laid out yet), as is an unchanged value. A change invalidates offsets
// from i onwards. Reports whether the layout changed.
func (m *RowManager) SetRowHeight(i, h int) bool {
	if h <= 0 || i < 0 || i >= m.Count() {
		return false
	}
	if prev, ok := m.heights[i]; ok && prev == h {
		return false
	}
	m.heights[i] = h
	m.layout.ResetAfterIndex(i)
	m.scroll = m.clampScroll(m.scroll)
	m.generation++
	return true
}

// IsExpanded reports whether row i shows its detail view.
func (m *RowManager) IsExpanded(i int) bool { return m.expanded[i] }

// Toggle flips the expansion of row i and forgets its height so the next
// measurement is taken from the new content. Focus moves to i. The scroll
// offset is left alone unless a collapse leaves it past the end of the
// content.
func (m *RowManager) Toggle(i int) {
	if i < 0 || i >= m.Count() {
		return
	}
	collapsing := m.expanded[i]
	if collapsing {
		delete(m.expanded, i)
	} else {
		m.expanded[i] = true
	}
	delete(m.heights, i)
	m.layout.ResetAfterIndex(i)
	if collapsing {
		m.scroll = m.clampScroll(m.scroll)
	}
	m.focus = i
	m.generation++
}

// Focus returns the focused row.
func (m *RowManager) Focus() int { return m.focus }

// SetFocus focuses row i without scrolling.
func (m *RowManager) SetFocus(i int) {
	m.focus = clamp(i, 0, max(0, m.Count()-1))
}

// MoveFocus moves focus by delta rows and scrolls just enough to keep the
// focused row visible.
func (m *RowManager) MoveFocus(delta int) {
	if m.Count() == 0 {
		return
	}
	m.SetFocus(m.focus + delta)
	m.EnsureVisible(m.focus)
}

// EnsureVisible scrolls the minimum distance that brings row i into view.
// Rows taller than the viewport are aligned to the top.
func (m *RowManager) EnsureVisible(i int) {
	if i < 0 || i >= m.Count() {
		return
	}
	off := m.layout.ItemOffset(i)
	size := m.layout.ItemSize(i)
	switch {
	case off < m.scroll:
		m.scroll = off
	case off+size > m.scroll+m.height:
		if size > m.height {
			m.scroll = off
		} else {
			m.scroll = off + size - m.height
		}
	}
	m.scroll = m.clampScroll(m.scroll)
}

// ScrollBy moves the scroll offset by delta, clamped to the content.
func (m *RowManager) ScrollBy(delta int) {
	m.ScrollTo(m.scroll + delta)
}

// ScrollTo sets the scroll offset, clamped to the content.
func (m *RowManager) ScrollTo(offset int) {
	m.scroll = m.clampScroll(offset)
}

// ScrollOffset returns the current scroll offset.
func (m *RowManager) ScrollOffset() int { return m.scroll }

// VisibleRange returns the rows that should be mounted: those intersecting
// the viewport plus the overscan on each side.
func (m *RowManager) VisibleRange() (start, stop int) {
	return m.layout.Range(m.scroll, m.height, m.overscan)
}

// ItemOffset returns where row i starts.
func (m *RowManager) ItemOffset(i int) int { return m.layout.ItemOffset(i) }

// TotalSize returns the content height, estimating unmeasured rows.
func (m *RowManager) TotalSize() int { return m.layout.TotalSize() }

// RowAt returns the row under a viewport-relative line, if any.
func (m *RowManager) RowAt(line int) (int, bool) {
	if m.Count() == 0 || line < 0 || line >= m.height {
		return 0, false
	}
	abs := m.scroll + line
	i := m.layout.IndexAt(abs)
	off := m.layout.ItemOffset(i)
	if abs < off || abs >= off+m.layout.ItemSize(i) {
		return 0, false
	}
	return i, true
}

// Generation changes whenever the layout is invalidated.
func (m *RowManager) Generation() uint64 { return m.generation }

func (m *RowManager) maxScroll() int {
	return max(0, m.layout.TotalSize()-m.height)
}

// clampScroll limits offset to the content. The estimated total counts
// unmeasured rows at the default size, so an offset past it is checked
// against the exact total of the cached heights first.
func (m *RowManager) clampScroll(offset int) int {
	if offset > m.maxScroll() && m.Count() > 0 {
		m.layout.ItemOffset(m.Count() - 1)
	}
	return clamp(offset, 0, m.maxScroll())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
