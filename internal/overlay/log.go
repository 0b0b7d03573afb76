package overlay

import (
	"log"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
)

// LogOverlay writes overlay transitions to a logger instead of drawing them.
// Drag offsets and badge progress are tracked but not logged.
type LogOverlay struct {
	logger *log.Logger
	frame  Frame
}

var _ holdmode.Overlay = (*LogOverlay)(nil)

// NewLogOverlay creates a log overlay. A nil logger uses the standard logger.
func NewLogOverlay(logger *log.Logger) *LogOverlay {
	if logger == nil {
		logger = log.Default()
	}
	return &LogOverlay{logger: logger, frame: Frame{Hovered: -1}}
}

// Frame returns the current overlay state.
func (o *LogOverlay) Frame() Frame {
	return o.frame
}

func (o *LogOverlay) Show(origin gesture.Point) {
	o.frame.show(origin)
	o.logger.Printf("Overlay: show at (%.0f,%.0f)", origin.X, origin.Y)
}

func (o *LogOverlay) Hide() {
	if o.frame.Visible {
		o.logger.Printf("Overlay: hide")
	}
	o.frame.hide()
}

func (o *LogOverlay) UpdateDragOffset(off gesture.Offset) {
	o.frame.Offset = off
}

func (o *LogOverlay) SetWorkspaceLabel(text string, hint holdmode.Hint) {
	changed := text != o.frame.Label || hint != o.frame.Hint
	o.frame.Label = text
	o.frame.Hint = hint
	if changed && text != "" {
		o.logger.Printf("Overlay: label %q", o.frame.Caption())
	}
}

func (o *LogOverlay) SetIndicatorIcon(icon holdmode.Icon) {
	o.frame.Icon = icon
}

func (o *LogOverlay) SetExpanded(expanded bool) {
	if expanded != o.frame.Expanded {
		o.logger.Printf("Overlay: expanded=%v", expanded)
	}
	o.frame.Expanded = expanded
}

func (o *LogOverlay) SetBadgeFadeProgress(progress float64) {
	o.frame.Badge = progress
}

func (o *LogOverlay) SetEntries(entries []holdmode.Entry) {
	o.frame.Entries = append([]holdmode.Entry(nil), entries...)
	o.frame.Hovered = -1
	if len(entries) > 0 {
		o.logger.Printf("Overlay: %d entries", len(entries))
	}
}

func (o *LogOverlay) SetHoveredEntry(index int) {
	if index == o.frame.Hovered {
		return
	}
	o.frame.Hovered = index
	if index >= 0 && index < len(o.frame.Entries) {
		o.logger.Printf("Overlay: hover %q", o.frame.Entries[index].Label)
	}
}
