package holdmode

import (
	"time"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/google/uuid"
)

// State represents the current phase of hold mode
type State int

const (
	// StateIdle means no session is open
	StateIdle State = iota
	// StateHeld means the trigger button is down and a gesture is being tracked
	StateHeld
	// StateInteractive means the window list stays open for click selection
	StateInteractive
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeld:
		return "held"
	case StateInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// EventKind identifies a raw input event.
type EventKind int

const (
	EventButtonDown EventKind = iota
	EventButtonUp
	EventMotion
	EventScroll
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventButtonDown:
		return "button-down"
	case EventButtonUp:
		return "button-up"
	case EventMotion:
		return "motion"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// ScrollDelta is a scroll amount per axis. Positive DY scrolls down.
type ScrollDelta struct {
	DX float64
	DY float64
}

// RawEvent is one pointer event as delivered by the input source.
type RawEvent struct {
	Kind   EventKind
	Button int
	Point  gesture.Point
	Scroll ScrollDelta
	// Synthetic marks events this process generated itself.
	Synthetic bool
}

// Action tells the input source what to do with an event.
type Action int

const (
	// PassThrough delivers the event unchanged.
	PassThrough Action = iota
	// Consume drops the event.
	Consume
	// PassModified delivers the event with Disposition.Scroll substituted.
	PassModified
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case PassThrough:
		return "pass"
	case Consume:
		return "consume"
	case PassModified:
		return "modify"
	default:
		return "unknown"
	}
}

// Disposition is the classifier's verdict for one event.
type Disposition struct {
	Action Action
	Scroll ScrollDelta
}

// Hint is the direction shown next to a previewed workspace label.
type Hint int

const (
	HintNone Hint = iota
	HintNext
	HintPrev
)

// Icon is the symbol shown in the hub.
type Icon int

const (
	IconNone Icon = iota
	IconNext
	IconPrev
	IconScroll
	IconVolume
)

// String returns the string representation of the icon
func (i Icon) String() string {
	switch i {
	case IconNone:
		return ""
	case IconNext:
		return ">"
	case IconPrev:
		return "<"
	case IconScroll:
		return "^"
	case IconVolume:
		return "vol"
	default:
		return "?"
	}
}

// Entry is a selectable window shown under the hub.
type Entry struct {
	ID        int
	Label     string
	Workspace string
}

// Session is the lifetime of one hold, from trigger-down until release or
// until Interactive exits.
type Session struct {
	ID               uuid.UUID
	Origin           gesture.Point
	Start            time.Time
	ActionTaken      bool
	InitialWorkspace string
	Snapshot         workspace.Snapshot
	Zone             gesture.Zone
	Pending          gesture.Zone // ZoneNext or ZonePrev when a step is armed
	ScrollIndex      int
	Scrolled         bool

	workspaceScroll *gesture.Accumulator
	volumeScroll    *gesture.Accumulator
}

// Target returns the workspace the scroll position currently points at.
func (s *Session) Target() string {
	return s.Snapshot.At(s.ScrollIndex)
}

// Interactive is the click-selection state entered by releasing in Expand.
type Interactive struct {
	Enabled bool
	Hovered int // index into the displayed entries, -1 when none
	Grouped bool
	Entries []Entry

	view  []Entry
	rects []gesture.Rect
}

// Reset clears the interactive state.
func (i *Interactive) Reset() {
	i.Enabled = false
	i.Hovered = -1
	i.Grouped = false
	i.Entries = nil
	i.view = nil
	i.rects = nil
}

// Status is a point-in-time summary of the tracker.
type Status struct {
	State     State
	Zone      gesture.Zone
	SessionID string
	Origin    gesture.Point
	HeldFor   time.Duration
	Target    string
	Entries   int
	Grouped   bool
}
