package gesture

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.X) && p.X < float64(r.X+r.Width) &&
		p.Y >= float64(r.Y) && p.Y < float64(r.Y+r.Height)
}

// EntryLayout controls where selectable entries are placed under the hub.
type EntryLayout struct {
	Width  int
	Height int
	Gap    int
}

// DefaultEntryLayout returns the stock entry geometry.
func DefaultEntryLayout() EntryLayout {
	return EntryLayout{Width: 280, Height: 24, Gap: 4}
}

// EntryRects stacks count entries in a single column centred under origin,
// starting just below the expand threshold.
func EntryRects(origin Point, count int, l EntryLayout, th Thresholds) []Rect {
	if count <= 0 {
		return nil
	}
	w, h := l.Width, l.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := int(origin.X) - w/2
	y := int(origin.Y + th.ExpandDown)

	rects := make([]Rect, count)
	for i := range rects {
		rects[i] = Rect{X: x, Y: y + i*(h+l.Gap), Width: w, Height: h}
	}
	return rects
}

// HitTest returns the index of the first rect containing p, or -1.
func HitTest(rects []Rect, p Point) int {
	for i, r := range rects {
		if r.Contains(p) {
			return i
		}
	}
	return -1
}
