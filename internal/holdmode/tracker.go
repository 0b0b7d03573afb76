// Package holdmode implements the hold-drag-release state machine that runs
// on the synchronous input path.
package holdmode

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/google/uuid"
)

// ButtonLeft is the primary pointer button.
const ButtonLeft = 1

// DefaultTriggerButton is the first side button on most mice.
const DefaultTriggerButton = 8

// DefaultShortClick is the longest hold still replayed as a plain click.
const DefaultShortClick = time.Second

// Overlay receives state pushes. Methods are only called on the UI loop.
type Overlay interface {
	Show(origin gesture.Point)
	Hide()
	UpdateDragOffset(off gesture.Offset)
	SetWorkspaceLabel(text string, hint Hint)
	SetIndicatorIcon(icon Icon)
	SetExpanded(expanded bool)
	SetBadgeFadeProgress(progress float64)
	SetEntries(entries []Entry)
	SetHoveredEntry(index int)
}

// Actions runs side effects asynchronously. Every method must return
// immediately.
type Actions interface {
	SetWorkspace(id string)
	StepWorkspace(dir wm.Direction, wrap bool)
	FocusEntry(id int, hint string)
	AdjustVolume(session uuid.UUID, step int)
	RefreshDirectory()
	RefreshFocused()
	LoadEntries(session uuid.UUID)
}

// Synthesizer injects a tagged press/release pair for button at a point.
type Synthesizer interface {
	Click(button int, at gesture.Point)
}

// PointerCapture routes all pointer clicks to the tracker while Interactive.
type PointerCapture interface {
	BeginCapture()
	EndCapture()
}

// Poster schedules work on the serialized UI context.
type Poster interface {
	Post(fn func())
}

// Config holds the tunables of the tracker.
type Config struct {
	TriggerButton     int
	Thresholds        gesture.Thresholds
	Layout            gesture.EntryLayout
	ShortClick        time.Duration
	ScrollSensitivity float64
	ScrollReverse     bool
	VolumeStep        int
}

// DefaultConfig returns the stock tracker configuration.
func DefaultConfig() Config {
	return Config{
		TriggerButton:     DefaultTriggerButton,
		Thresholds:        gesture.DefaultThresholds(),
		Layout:            gesture.DefaultEntryLayout(),
		ShortClick:        DefaultShortClick,
		ScrollSensitivity: 1,
		VolumeStep:        5,
	}
}

// Deps are the collaborators of a Tracker. Nil collaborators are no-ops.
type Deps struct {
	Overlay   Overlay
	Actions   Actions
	Synth     Synthesizer
	Capture   PointerCapture
	UI        Poster
	Directory *workspace.Directory
	Now       func() time.Time
}

// Tracker classifies input events and owns the session lifecycle.
type Tracker struct {
	mu sync.Mutex

	cfg         Config
	state       State
	session     *Session
	interactive Interactive

	// swallowTrigger consumes the trigger release paired with a toggle-off press.
	swallowTrigger bool
	// swallowLeft consumes the left release paired with a consumed Interactive press.
	swallowLeft bool
	// releaseCapture ends the pointer capture once the swallowed release arrives.
	releaseCapture bool
	// heldTrigger is the button whose press the next trigger release pairs with.
	// It outlives a trigger change made by UpdateConfig.
	heldTrigger int

	volumeShown bool

	overlay   Overlay
	actions   Actions
	synth     Synthesizer
	capture   PointerCapture
	ui        Poster
	directory *workspace.Directory
	now       func() time.Time
}

// NewTracker creates an idle tracker.
func NewTracker(cfg Config, deps Deps) *Tracker {
	t := &Tracker{
		cfg:       normalize(cfg),
		state:     StateIdle,
		overlay:   deps.Overlay,
		actions:   deps.Actions,
		synth:     deps.Synth,
		capture:   deps.Capture,
		ui:        deps.UI,
		directory: deps.Directory,
		now:       deps.Now,
	}
	if t.actions == nil {
		t.actions = noActions{}
	}
	if t.ui == nil {
		t.ui = inlinePoster{}
	}
	if t.directory == nil {
		t.directory = workspace.NewDirectory(nil)
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.interactive.Reset()
	return t
}

func normalize(cfg Config) Config {
	if cfg.TriggerButton <= 0 {
		cfg.TriggerButton = DefaultTriggerButton
	}
	if cfg.ShortClick <= 0 {
		cfg.ShortClick = DefaultShortClick
	}
	if cfg.ScrollSensitivity < 1 {
		cfg.ScrollSensitivity = 1
	}
	if cfg.VolumeStep <= 0 {
		cfg.VolumeStep = 5
	}
	return cfg
}

// UpdateConfig swaps the tunables. An open session keeps its accumulators.
func (t *Tracker) UpdateConfig(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = normalize(cfg)
}

// Config returns the active configuration.
func (t *Tracker) Config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Status returns a summary of the current state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{State: t.state, Zone: gesture.ZoneCenter, Grouped: t.interactive.Grouped, Entries: len(t.interactive.Entries)}
	if s := t.session; s != nil {
		st.Zone = s.Zone
		st.SessionID = s.ID.String()
		st.Origin = s.Origin
		st.HeldFor = t.now().Sub(s.Start)
		st.Target = t.labelFor(s)
	}
	return st
}

// HandleEvent classifies ev and returns what the input source should do with
// it. It never blocks: overlay updates and logging are posted to the UI loop
// and actions run on their own goroutines.
func (t *Tracker) HandleEvent(ev RawEvent) Disposition {
	if ev.Synthetic {
		return Disposition{Action: PassThrough}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case EventButtonDown:
		if ev.Button == t.cfg.TriggerButton {
			return t.triggerDown(ev)
		}
		if ev.Button == ButtonLeft && t.state == StateInteractive {
			return t.interactiveClick(ev.Point)
		}
	case EventButtonUp:
		if t.isTriggerRelease(ev.Button) {
			return t.triggerUp(ev.Button)
		}
		if ev.Button == ButtonLeft && t.swallowLeft {
			t.swallowLeft = false
			t.endPendingCapture()
			return Disposition{Action: Consume}
		}
	case EventMotion:
		t.motion(ev.Point)
	case EventScroll:
		return t.scroll(ev.Scroll)
	}
	return Disposition{Action: PassThrough}
}

// isTriggerRelease reports whether a release of button pairs with the
// trigger press that is being held.
func (t *Tracker) isTriggerRelease(button int) bool {
	if t.heldTrigger != 0 {
		return button == t.heldTrigger
	}
	return button == t.cfg.TriggerButton
}

func (t *Tracker) triggerDown(ev RawEvent) Disposition {
	t.heldTrigger = ev.Button
	if t.state != StateIdle {
		t.logf("toggle-off from %s", t.state)
		t.swallowTrigger = true
		t.closeSession()
		return Disposition{Action: Consume}
	}

	cfg := t.cfg
	snap := t.directory.Snapshot()
	s := &Session{
		ID:               uuid.New(),
		Origin:           ev.Point,
		Start:            t.now(),
		InitialWorkspace: snap.Current,
		Snapshot:         snap,
		Zone:             gesture.ZoneCenter,
		Pending:          gesture.ZoneCenter,
		ScrollIndex:      snap.Index(),
		workspaceScroll:  gesture.NewAccumulator(cfg.ScrollSensitivity, cfg.ScrollReverse),
		volumeScroll:     gesture.NewAccumulator(cfg.ScrollSensitivity, cfg.ScrollReverse),
	}
	t.session = s
	t.state = StateHeld
	t.swallowTrigger = false
	t.volumeShown = false
	t.interactive.Reset()

	t.actions.RefreshFocused()

	label := t.labelFor(s)
	t.logf("session %s opened at (%.0f,%.0f) on workspace %q", shortID(s.ID), ev.Point.X, ev.Point.Y, s.InitialWorkspace)
	t.push(func(o Overlay) {
		o.Show(ev.Point)
		o.SetWorkspaceLabel(label, HintNone)
		o.SetIndicatorIcon(IconNone)
		o.SetBadgeFadeProgress(0)
	})
	return Disposition{Action: Consume}
}

func (t *Tracker) triggerUp(button int) Disposition {
	t.heldTrigger = 0
	if t.state != StateHeld || t.session == nil {
		if t.swallowTrigger {
			t.swallowTrigger = false
			t.endPendingCapture()
			return Disposition{Action: Consume}
		}
		// In Interactive the release of the opening hold was already handled.
		if t.state == StateInteractive {
			return Disposition{Action: Consume}
		}
		return Disposition{Action: PassThrough}
	}

	s := t.session
	held := t.now().Sub(s.Start)
	var replay func()

	switch {
	case s.Zone == gesture.ZoneExpand:
		t.state = StateInteractive
		t.interactive.Enabled = true
		t.releaseCapture = false
		t.logf("session %s: entering interactive with %d entries", shortID(s.ID), len(t.interactive.Entries))
		if t.capture != nil {
			capture := t.capture
			t.ui.Post(capture.BeginCapture)
		}
		return Disposition{Action: Consume}

	case s.Pending == gesture.ZoneNext || s.Pending == gesture.ZonePrev:
		dir := wm.DirNext
		if s.Pending == gesture.ZonePrev {
			dir = wm.DirPrev
		}
		t.logf("session %s: commit step %s", shortID(s.ID), dir)
		t.actions.StepWorkspace(dir, true)
		t.actions.RefreshDirectory()

	case s.Scrolled && s.Target() != "" && s.Target() != s.InitialWorkspace:
		target := s.Target()
		t.logf("session %s: commit workspace %q", shortID(s.ID), target)
		t.actions.SetWorkspace(target)
		t.actions.RefreshDirectory()

	case !s.ActionTaken && held < t.cfg.ShortClick:
		t.logf("session %s: short hold (%s), replaying click", shortID(s.ID), held.Round(time.Millisecond))
		if t.synth != nil {
			synth, at := t.synth, s.Origin
			replay = func() { synth.Click(button, at) }
		}

	default:
		t.logf("session %s: released without action", shortID(s.ID))
	}

	t.closeSession()
	// The overlay is hidden first so the replayed click lands on the
	// application under the pointer.
	if replay != nil {
		t.ui.Post(replay)
	}
	return Disposition{Action: Consume}
}

// closeSession ends the session and any Interactive selection. When the
// closing press still has a swallowed release to come, the pointer capture is
// kept until that release so it never reaches an application unpaired.
func (t *Tracker) closeSession() {
	wasInteractive := t.state == StateInteractive
	t.state = StateIdle
	t.session = nil
	t.volumeShown = false
	t.interactive.Reset()

	if wasInteractive {
		if t.swallowLeft || t.swallowTrigger {
			t.releaseCapture = true
		} else {
			t.postEndCapture()
		}
	}
	t.push(func(o Overlay) {
		o.SetHoveredEntry(-1)
		o.SetEntries(nil)
		o.SetExpanded(false)
		o.Hide()
	})
}

// endPendingCapture ends a capture that closeSession left open for the
// release just consumed.
func (t *Tracker) endPendingCapture() {
	if !t.releaseCapture {
		return
	}
	t.releaseCapture = false
	t.postEndCapture()
}

func (t *Tracker) postEndCapture() {
	if t.capture != nil {
		capture := t.capture
		t.ui.Post(capture.EndCapture)
	}
}

func (t *Tracker) motion(p gesture.Point) {
	s := t.session
	if s == nil {
		return
	}
	if t.state == StateInteractive {
		t.hover(p)
		return
	}

	th := t.cfg.Thresholds
	off := gesture.OffsetFrom(s.Origin, p)
	zone := gesture.Classify(off, s.Zone, th, true)

	progress := 0.0
	if zone != gesture.ZoneExpand {
		progress = gesture.BadgeProgress(off, th)
	}
	t.push(func(o Overlay) {
		o.UpdateDragOffset(off)
		o.SetBadgeFadeProgress(progress)
	})

	if zone != s.Zone {
		t.enterZone(s, zone)
	}
}

func (t *Tracker) enterZone(s *Session, zone gesture.Zone) {
	prev := s.Zone
	s.Zone = zone
	t.logf("session %s: zone %s -> %s", shortID(s.ID), prev, zone)

	if zone != gesture.ZoneCenter {
		s.ActionTaken = true
	}
	if zone == gesture.ZoneNext || zone == gesture.ZonePrev {
		s.Pending = zone
	} else {
		s.Pending = gesture.ZoneCenter
	}

	if prev == gesture.ZoneExpand {
		t.interactive.Reset()
		t.push(func(o Overlay) {
			o.SetHoveredEntry(-1)
			o.SetEntries(nil)
			o.SetExpanded(false)
		})
	}

	label, hint := t.labelFor(s), HintNone
	icon := IconNone
	switch zone {
	case gesture.ZoneNext:
		hint, icon = HintNext, IconNext
	case gesture.ZonePrev:
		hint, icon = HintPrev, IconPrev
	case gesture.ZoneScroll:
		icon = IconScroll
	case gesture.ZoneExpand:
		icon = IconVolume
		t.actions.LoadEntries(s.ID)
		t.push(func(o Overlay) { o.SetExpanded(true) })
	}

	t.volumeShown = false
	t.push(func(o Overlay) {
		o.SetWorkspaceLabel(label, hint)
		o.SetIndicatorIcon(icon)
	})
}

// labelFor returns the workspace name the overlay should show for s.
func (t *Tracker) labelFor(s *Session) string {
	switch s.Zone {
	case gesture.ZoneNext, gesture.ZonePrev:
		n := s.Snapshot.Len()
		idx := gesture.IndexOf(s.Snapshot.IDs, s.InitialWorkspace)
		if idx < 0 || n == 0 {
			return s.InitialWorkspace
		}
		delta := 1
		if s.Zone == gesture.ZonePrev {
			delta = -1
		}
		return s.Snapshot.At(gesture.WorkspaceAt(n, idx, delta, true))
	default:
		if s.Scrolled {
			return s.Target()
		}
		return s.InitialWorkspace
	}
}

func (t *Tracker) scroll(delta ScrollDelta) Disposition {
	s := t.session
	if s == nil {
		return Disposition{Action: PassThrough}
	}
	s.ActionTaken = true

	if t.state == StateInteractive || s.Zone == gesture.ZoneExpand {
		if steps := s.volumeScroll.Add(delta.DY); steps != 0 {
			// Scrolling up raises the volume.
			t.actions.AdjustVolume(s.ID, -steps*t.cfg.VolumeStep)
		}
		return Disposition{Action: Consume}
	}

	if s.Zone == gesture.ZoneScroll {
		steps := s.workspaceScroll.Add(delta.DY)
		if steps == 0 {
			return Disposition{Action: Consume}
		}
		n := s.Snapshot.Len()
		s.ScrollIndex = gesture.WorkspaceAt(n, s.ScrollIndex, steps, false)
		s.Scrolled = true

		label := s.Target()
		hint := HintNext
		if steps < 0 {
			hint = HintPrev
		}
		t.logf("session %s: scroll %+d -> %q", shortID(s.ID), steps, label)
		t.push(func(o Overlay) { o.SetWorkspaceLabel(label, hint) })
		return Disposition{Action: Consume}
	}

	return Disposition{
		Action: PassModified,
		Scroll: ScrollDelta{DX: delta.DY, DY: delta.DX},
	}
}

// push posts an overlay update to the UI loop.
func (t *Tracker) push(fn func(o Overlay)) {
	if t.overlay == nil {
		return
	}
	o := t.overlay
	t.ui.Post(func() { fn(o) })
}

// logf posts a log line so the input path never writes to stderr itself.
func (t *Tracker) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.ui.Post(func() { log.Printf("Hold mode: %s", msg) })
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

type noActions struct{}

func (noActions) SetWorkspace(string)              {}
func (noActions) StepWorkspace(wm.Direction, bool) {}
func (noActions) FocusEntry(int, string)           {}
func (noActions) AdjustVolume(uuid.UUID, int)      {}
func (noActions) RefreshDirectory()                {}
func (noActions) RefreshFocused()                  {}
func (noActions) LoadEntries(uuid.UUID)            {}

type inlinePoster struct{}

func (inlinePoster) Post(fn func()) { fn() }
