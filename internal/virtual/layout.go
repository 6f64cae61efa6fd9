// Package virtual computes which rows of a long, variable-height list are
// inside (or near) the viewport, and where each row starts.
package virtual

// SizeFunc returns the current size of item i.
type SizeFunc func(i int) int

// Layout caches item offsets for a variable-size list. Offsets are measured
// lazily from the front up to the highest index asked for; everything past
// that is estimated.
type Layout struct {
	count        int
	size         SizeFunc
	estimate     int
	offsets      []int
	sizes        []int
	lastMeasured int
}

// NewLayout creates a layout for count items. estimate is used for items
// that have not been measured yet when computing TotalSize.
func NewLayout(count int, size SizeFunc, estimate int) *Layout {
	if estimate <= 0 {
		estimate = 1
	}
	l := &Layout{size: size, estimate: estimate, lastMeasured: -1}
	l.SetCount(count)
	return l
}

// Count returns the number of items.
func (l *Layout) Count() int { return l.count }

// SetCount changes the number of items. Offsets already measured stay valid
// when the list grows.
func (l *Layout) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(l.offsets) {
		l.offsets = append(l.offsets, make([]int, n-len(l.offsets))...)
		l.sizes = append(l.sizes, make([]int, n-len(l.sizes))...)
	}
	l.count = n
	if l.lastMeasured >= n {
		l.lastMeasured = n - 1
	}
}

// ResetAfterIndex discards cached offsets for item i and everything after
// it. The next query recomputes them from the size function.
func (l *Layout) ResetAfterIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i-1 < l.lastMeasured {
		l.lastMeasured = i - 1
	}
}

// LastMeasured returns the highest index whose offset is cached, or -1.
func (l *Layout) LastMeasured() int { return l.lastMeasured }

// ItemOffset returns the start of item i.
func (l *Layout) ItemOffset(i int) int {
	off, _ := l.metadata(i)
	return off
}

// ItemSize returns the size of item i as used by the layout.
func (l *Layout) ItemSize(i int) int {
	_, size := l.metadata(i)
	return size
}

// TotalSize returns the measured extent plus an estimate for the rest.
func (l *Layout) TotalSize() int {
	if l.count == 0 {
		return 0
	}
	measured := 0
	if l.lastMeasured >= 0 {
		measured = l.offsets[l.lastMeasured] + l.sizes[l.lastMeasured]
	}
	return measured + (l.count-l.lastMeasured-1)*l.estimate
}

// IndexAt returns the item that contains offset.
func (l *Layout) IndexAt(offset int) int {
	if l.count == 0 || offset <= 0 {
		return 0
	}
	lastOffset := 0
	if l.lastMeasured >= 0 {
		lastOffset = l.offsets[l.lastMeasured]
	}
	if lastOffset >= offset {
		return l.binarySearch(0, l.lastMeasured, offset)
	}
	return l.exponentialSearch(max(0, l.lastMeasured), offset)
}

// Range returns the half-open index range [start, stop) of items that
// intersect [scroll, scroll+height), widened by overscan on both sides.
func (l *Layout) Range(scroll, height, overscan int) (start, stop int) {
	if l.count == 0 {
		return 0, 0
	}
	if overscan < 0 {
		overscan = 0
	}

	start = l.IndexAt(scroll)
	off, size := l.metadata(start)
	end := off + size
	last := start
	limit := scroll + height
	for last < l.count-1 && end < limit {
		last++
		off, size = l.metadata(last)
		end = off + size
	}

	start = max(0, start-overscan)
	last = min(l.count-1, last+overscan)
	return start, last + 1
}

func (l *Layout) metadata(i int) (offset, size int) {
	if i < 0 || i >= l.count {
		return 0, 0
	}
	if i > l.lastMeasured {
		next := 0
		if l.lastMeasured >= 0 {
			next = l.offsets[l.lastMeasured] + l.sizes[l.lastMeasured]
		}
		for j := l.lastMeasured + 1; j <= i; j++ {
			s := l.size(j)
			if s < 0 {
				s = 0
			}
			l.offsets[j] = next
			l.sizes[j] = s
			next += s
		}
		l.lastMeasured = i
	}
	return l.offsets[i], l.sizes[i]
}

func (l *Layout) binarySearch(low, high, offset int) int {
	for low <= high {
		mid := low + (high-low)/2
		off, _ := l.metadata(mid)
		switch {
		case off == offset:
			return mid
		case off < offset:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	if low > 0 {
		return low - 1
	}
	return 0
}

func (l *Layout) exponentialSearch(index, offset int) int {
	interval := 1
	for index < l.count {
		off, _ := l.metadata(index)
		if off >= offset {
			break
		}
		index += interval
		interval *= 2
	}
	return l.binarySearch(index/2, min(index, l.count-1), offset)
}
