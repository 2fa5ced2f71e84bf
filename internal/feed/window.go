// Package feed computes the visible slice of an arbitrarily long ordered
// collection from a scroll position, so the presentation layer renders a
// bounded window instead of materializing every row.
package feed

const (
	defaultOverscan = 5
	// followSlack is how close to the bottom (in rows) the view may be and
	// still count as following the tail.
	followSlack = 3
)

// Window maps a scroll offset over N fixed-height items to a bounded
// [start, end) index range in O(1). It also decides when appends should
// snap the view to the bottom.
type Window struct {
	itemHeight     int
	viewportHeight int
	overscan       int

	offset int
	total  int

	scrolled  bool
	filtering bool
	resizing  bool
}

func NewWindow(itemHeight, viewportHeight int) *Window {
	if itemHeight < 1 {
		itemHeight = 1
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	return &Window{
		itemHeight:     itemHeight,
		viewportHeight: viewportHeight,
		overscan:       defaultOverscan,
	}
}

// SetTotal sets the collection length and re-clamps the offset.
func (w *Window) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	w.total = n
	w.offset = w.clamp(w.offset)
}

// SetViewportHeight is called on layout passes; see SetResizing for
// suppressing auto-follow while one is in progress.
func (w *Window) SetViewportHeight(h int) {
	if h < 0 {
		h = 0
	}
	w.viewportHeight = h
	w.offset = w.clamp(w.offset)
}

// SetOffset records a user scroll. Any explicit scroll disables the
// "not yet scrolled" top-of-feed follow behavior.
func (w *Window) SetOffset(offset int) {
	w.offset = w.clamp(offset)
	w.scrolled = true
}

func (w *Window) Offset() int { return w.offset }

// SetFiltering suppresses auto-follow while a filter is active.
func (w *Window) SetFiltering(on bool) { w.filtering = on }

// SetResizing suppresses auto-follow during a resize-driven layout pass.
func (w *Window) SetResizing(on bool) { w.resizing = on }

// Extent is the total virtual height, used to size the scroll container.
func (w *Window) Extent() int {
	return w.total * w.itemHeight
}

// Slice returns the [start, end) item range to render: the visible rows
// plus the overscan margin, clamped to the collection bounds. Computed from
// the offset alone, never by scanning the collection.
func (w *Window) Slice() (start, end int) {
	if w.total == 0 {
		return 0, 0
	}
	start = w.offset/w.itemHeight - w.overscan
	if start < 0 {
		start = 0
	}
	end = (w.offset+w.viewportHeight)/w.itemHeight + 1 + w.overscan
	if end > w.total {
		end = w.total
	}
	if start > end {
		start = end
	}
	return start, end
}

// Append grows the collection by n items and reports whether the view
// should jump to the new bottom. Following happens when the user is within
// followSlack rows of the bottom or has not scrolled at all; it is
// suppressed entirely while filtering or resizing so the feed never fights
// a reader. When following, the offset is moved to the bottom.
func (w *Window) Append(n int) (follow bool) {
	if n <= 0 {
		return false
	}
	wasAtBottom := w.atBottom()
	w.total += n
	if w.filtering || w.resizing {
		return false
	}
	if wasAtBottom || (w.offset == 0 && !w.scrolled) {
		w.offset = w.bottom()
		return true
	}
	return false
}

// ScrollToBottom jumps to the tail and re-enables follow.
func (w *Window) ScrollToBottom() {
	w.offset = w.bottom()
	w.scrolled = false
}

func (w *Window) atBottom() bool {
	return w.offset >= w.bottom()-followSlack*w.itemHeight
}

func (w *Window) bottom() int {
	b := w.Extent() - w.viewportHeight
	if b < 0 {
		return 0
	}
	return b
}

func (w *Window) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if b := w.bottom(); offset > b {
		return b
	}
	return offset
}
