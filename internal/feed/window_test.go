package feed

import "testing"

func TestWindowSliceBounds(t *testing.T) {
	const itemHeight, viewport, total = 2, 40, 1000
	w := NewWindow(itemHeight, viewport)
	w.SetTotal(total)

	// Sweep every reachable offset; the slice must stay inside the
	// collection and cover at least the visible rows.
	for off := 0; off <= w.Extent()-viewport; off += itemHeight {
		w.SetOffset(off)
		start, end := w.Slice()
		if start < 0 || end > total || start > end {
			t.Fatalf("offset %d: slice [%d, %d) out of bounds", off, start, end)
		}
		visible := viewport / itemHeight
		if end-start < visible {
			t.Fatalf("offset %d: slice [%d, %d) smaller than viewport", off, start, end)
		}
	}
}

func TestWindowSliceMidScroll(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(1000)
	w.SetOffset(500)

	start, end := w.Slice()
	if start != 495 || end != 516 {
		t.Errorf("slice: got [%d, %d), want [495, 516)", start, end)
	}
}

func TestWindowSliceEmpty(t *testing.T) {
	w := NewWindow(1, 10)
	if start, end := w.Slice(); start != 0 || end != 0 {
		t.Errorf("empty slice: [%d, %d)", start, end)
	}
}

func TestWindowSliceShortCollection(t *testing.T) {
	w := NewWindow(1, 50)
	w.SetTotal(3)
	if start, end := w.Slice(); start != 0 || end != 3 {
		t.Errorf("short slice: [%d, %d), want [0, 3)", start, end)
	}
}

func TestWindowOffsetClamped(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.SetOffset(-5)
	if w.Offset() != 0 {
		t.Errorf("negative offset: got %d", w.Offset())
	}
	w.SetOffset(10_000)
	if got, want := w.Offset(), 90; got != want {
		t.Errorf("overshoot: got %d, want %d", got, want)
	}
	// Shrinking the collection re-clamps a now-invalid offset.
	w.SetTotal(20)
	if got, want := w.Offset(), 10; got != want {
		t.Errorf("after shrink: got %d, want %d", got, want)
	}
}

func TestWindowFollowsAtBottom(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.SetOffset(90) // exact bottom

	if !w.Append(5) {
		t.Fatal("append at bottom did not follow")
	}
	if got, want := w.Offset(), 95; got != want {
		t.Errorf("offset after follow: got %d, want %d", got, want)
	}
}

func TestWindowFollowsWithinSlack(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.SetOffset(88) // two rows above bottom, within slack

	if !w.Append(1) {
		t.Error("append within slack did not follow")
	}
}

func TestWindowDoesNotFollowWhenScrolledUp(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.SetOffset(30)

	if w.Append(5) {
		t.Error("append followed while reader was scrolled up")
	}
	if got := w.Offset(); got != 30 {
		t.Errorf("offset moved: got %d, want 30", got)
	}
}

func TestWindowFollowsBeforeFirstScroll(t *testing.T) {
	// A short feed that has never been scrolled sits at offset 0; it still
	// counts as following so early output keeps the view pinned to the tail.
	w := NewWindow(1, 10)
	w.SetTotal(200) // content arrived without any scroll
	if !w.Append(5) {
		t.Error("unscrolled view did not follow")
	}

	// Once the user scrolls back to the top, offset 0 is a reading position.
	w.SetOffset(0)
	if w.Append(5) {
		t.Error("append followed after an explicit scroll to top")
	}
}

func TestWindowFollowSuppressedWhileFiltering(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.ScrollToBottom()

	w.SetFiltering(true)
	if w.Append(5) {
		t.Error("append followed during filtering")
	}
	// Appends during the filter moved the bottom away from the view, so
	// follow stays off until the user returns to the tail.
	w.SetFiltering(false)
	if w.Append(5) {
		t.Error("append followed while view was left above the tail")
	}
	w.ScrollToBottom()
	if !w.Append(5) {
		t.Error("follow not restored at the tail")
	}
}

func TestWindowFollowSuppressedWhileResizing(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.ScrollToBottom()

	w.SetResizing(true)
	if w.Append(5) {
		t.Error("append followed during a resize pass")
	}
}

func TestWindowScrollToBottom(t *testing.T) {
	w := NewWindow(1, 10)
	w.SetTotal(100)
	w.SetOffset(10)

	w.ScrollToBottom()
	if got, want := w.Offset(), 90; got != want {
		t.Errorf("offset: got %d, want %d", got, want)
	}
	if !w.Append(5) {
		t.Error("follow not re-enabled after ScrollToBottom")
	}
}

func TestWindowExtent(t *testing.T) {
	w := NewWindow(3, 10)
	w.SetTotal(7)
	if got := w.Extent(); got != 21 {
		t.Errorf("extent: got %d, want 21", got)
	}
}
