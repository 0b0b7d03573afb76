// Package overlay renders the hold-mode feedback: a hub at the press point,
// a puck that follows the drag, a workspace caption and the window entries
// shown while expanded.
package overlay

import (
	"math"
	"strings"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
)

// Colors
const (
	ColorHub        = 0x1f2933 // Dark hub disc
	ColorPuckIdle   = 0x95a5a6 // Light gray - below commit
	ColorPuckCommit = 0x3498db // Blue - past commit
	ColorText       = 0xf5f7fa
	ColorLabelBg    = 0x1f2933
	ColorEntryBg    = 0x2c3e50
	ColorEntryHover = 0x27ae60 // Green - hovered entry
)

const (
	puckSize   = 16
	margin     = 12
	paddingX   = 10
	paddingY   = 6
	lineHeight = 16
	charWidth  = 7
	maxChars   = 255
)

// Geometry mirrors the tracker's hit-testing geometry so entries are drawn
// exactly where clicks land.
type Geometry struct {
	Thresholds gesture.Thresholds
	Layout     gesture.EntryLayout
}

// DefaultGeometry returns the stock geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Thresholds: gesture.DefaultThresholds(),
		Layout:     gesture.DefaultEntryLayout(),
	}
}

// Frame is the complete overlay state after the latest push.
type Frame struct {
	Visible  bool
	Origin   gesture.Point
	Offset   gesture.Offset
	Label    string
	Hint     holdmode.Hint
	Icon     holdmode.Icon
	Expanded bool
	Badge    float64
	Entries  []holdmode.Entry
	Hovered  int
}

func (f *Frame) show(origin gesture.Point) {
	*f = Frame{Visible: true, Origin: origin, Hovered: -1}
}

func (f *Frame) hide() {
	*f = Frame{Hovered: -1}
}

// Caption is the text of the label panel, decorated with the hint arrow and
// the hub icon.
func (f Frame) Caption() string {
	text := f.Label
	switch f.Hint {
	case holdmode.HintNext:
		text += " >"
	case holdmode.HintPrev:
		text = "< " + text
	}
	if f.Icon == holdmode.IconScroll || f.Icon == holdmode.IconVolume {
		text = "[" + f.Icon.String() + "] " + text
	}
	return truncate(strings.TrimSpace(text))
}

// Placement is where each overlay element goes on screen.
type Placement struct {
	Hub     gesture.Rect
	Puck    gesture.Rect
	Label   gesture.Rect
	Entries []gesture.Rect
}

// Place lays out a frame within the bounds of the monitor under the origin.
// Entry rects are left unclamped so they match hit testing.
func Place(f Frame, geo Geometry, bounds gesture.Rect) Placement {
	ox, oy := round(f.Origin.X), round(f.Origin.Y)
	r := int(geo.Thresholds.HubRadius)
	if r < puckSize/2 {
		r = puckSize / 2
	}

	p := Placement{
		Hub: gesture.Rect{X: ox - r, Y: oy - r, Width: 2 * r, Height: 2 * r},
	}

	px := round(f.Origin.X+f.Offset.DX) - puckSize/2
	py := round(f.Origin.Y+f.Offset.DY) - puckSize/2
	p.Puck = clampRect(gesture.Rect{X: px, Y: py, Width: puckSize, Height: puckSize}, bounds, 0)

	if caption := f.Caption(); caption != "" {
		w, h := textSize(caption)
		label := gesture.Rect{X: ox - w/2, Y: oy - r - margin - h, Width: w, Height: h}
		p.Label = clampRect(label, bounds, margin)
	}

	if f.Expanded && len(f.Entries) > 0 {
		p.Entries = gesture.EntryRects(f.Origin, len(f.Entries), geo.Layout, geo.Thresholds)
	}
	return p
}

// PuckColor fades from idle to commit with the badge progress.
func PuckColor(progress float64) uint32 {
	return blend(ColorPuckIdle, ColorPuckCommit, progress)
}

func blend(from, to uint32, t float64) uint32 {
	if t <= 0 || math.IsNaN(t) {
		return from
	}
	if t >= 1 {
		return to
	}
	var out uint32
	for shift := 0; shift <= 16; shift += 8 {
		a := float64((from >> shift) & 0xff)
		b := float64((to >> shift) & 0xff)
		out |= uint32(math.Round(a+(b-a)*t)) << shift
	}
	return out
}

func textSize(text string) (width, height int) {
	return len(text)*charWidth + 2*paddingX, lineHeight + 2*paddingY
}

func truncate(text string) string {
	if len(text) > maxChars {
		return text[:maxChars]
	}
	return text
}

// clampRect keeps r inside bounds, inset by pad where there is room.
func clampRect(r, bounds gesture.Rect, pad int) gesture.Rect {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return r
	}
	left := bounds.X + pad
	right := bounds.X + bounds.Width - pad - r.Width
	if right < left {
		left = bounds.X
		right = bounds.X + bounds.Width - r.Width
	}
	if right < left {
		right = left
	}
	top := bounds.Y + pad
	bottom := bounds.Y + bounds.Height - pad - r.Height
	if bottom < top {
		top = bounds.Y
		bottom = bounds.Y + bounds.Height - r.Height
	}
	if bottom < top {
		bottom = top
	}

	r.X = min(max(r.X, left), right)
	r.Y = min(max(r.Y, top), bottom)
	return r
}

func round(v float64) int {
	return int(math.Round(v))
}
