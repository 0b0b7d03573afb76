package holdmode

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/google/uuid"
)

type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *queue) run() {
	for {
		q.mu.Lock()
		fns := q.fns
		q.fns = nil
		q.mu.Unlock()
		if len(fns) == 0 {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

type recordingOverlay struct {
	calls []string
}

func (r *recordingOverlay) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingOverlay) Show(origin gesture.Point) { r.add("show") }
func (r *recordingOverlay) Hide()                     { r.add("hide") }
func (r *recordingOverlay) UpdateDragOffset(off gesture.Offset) {
}
func (r *recordingOverlay) SetWorkspaceLabel(text string, hint Hint) {
	r.add("label:%s:%d", text, hint)
}
func (r *recordingOverlay) SetIndicatorIcon(icon Icon)         { r.add("icon:%s", icon) }
func (r *recordingOverlay) SetExpanded(expanded bool)          { r.add("expanded:%v", expanded) }
func (r *recordingOverlay) SetBadgeFadeProgress(float64)       {}
func (r *recordingOverlay) SetEntries(entries []Entry)         { r.add("entries:%d", len(entries)) }
func (r *recordingOverlay) SetHoveredEntry(index int)          { r.add("hover:%d", index) }
func (r *recordingOverlay) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
func (r *recordingOverlay) last(prefix string) string {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(r.calls[i], prefix) {
			return r.calls[i]
		}
	}
	return ""
}

type recordingActions struct {
	calls          []string
	sessions       []uuid.UUID
	volumeSessions []uuid.UUID
}

func (a *recordingActions) SetWorkspace(id string) { a.calls = append(a.calls, "set "+id) }
func (a *recordingActions) StepWorkspace(dir wm.Direction, wrap bool) {
	a.calls = append(a.calls, fmt.Sprintf("step %s wrap=%v", dir, wrap))
}
func (a *recordingActions) FocusEntry(id int, hint string) {
	a.calls = append(a.calls, fmt.Sprintf("focus %d %s", id, hint))
}
func (a *recordingActions) AdjustVolume(session uuid.UUID, step int) {
	a.calls = append(a.calls, fmt.Sprintf("volume %+d", step))
	a.volumeSessions = append(a.volumeSessions, session)
}
func (a *recordingActions) RefreshDirectory() {}
func (a *recordingActions) RefreshFocused()   {}
func (a *recordingActions) LoadEntries(session uuid.UUID) {
	a.sessions = append(a.sessions, session)
}

// workspaceActions returns calls that change workspaces or focus.
func (a *recordingActions) workspaceActions() []string {
	var out []string
	for _, c := range a.calls {
		if strings.HasPrefix(c, "set ") || strings.HasPrefix(c, "step ") || strings.HasPrefix(c, "focus ") {
			out = append(out, c)
		}
	}
	return out
}

type feedbackSynth struct {
	tracker      *Tracker
	overlay      *recordingOverlay
	clicks       int
	buttons      []int
	dispositions []Disposition
	// overlayAtClick is the last overlay call made before each click.
	overlayAtClick []string
}

func (s *feedbackSynth) Click(button int, at gesture.Point) {
	s.clicks++
	s.buttons = append(s.buttons, button)
	s.overlayAtClick = append(s.overlayAtClick, s.overlay.last(""))
	for _, kind := range []EventKind{EventButtonDown, EventButtonUp} {
		d := s.tracker.HandleEvent(RawEvent{Kind: kind, Button: button, Point: at, Synthetic: true})
		s.dispositions = append(s.dispositions, d)
	}
}

type captureRecorder struct {
	begins, ends int
}

func (c *captureRecorder) BeginCapture() { c.begins++ }
func (c *captureRecorder) EndCapture()   { c.ends++ }

type harness struct {
	t       *testing.T
	tracker *Tracker
	overlay *recordingOverlay
	actions *recordingActions
	synth   *feedbackSynth
	capture *captureRecorder
	ui      *queue
	clock   time.Time
}

func newHarness(t *testing.T, ids []string, current string) *harness {
	t.Helper()
	dir := workspace.NewDirectory(ids)
	dir.SetCurrent(current)

	h := &harness{
		t:       t,
		overlay: &recordingOverlay{},
		actions: &recordingActions{},
		capture: &captureRecorder{},
		ui:      &queue{},
		clock:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.synth = &feedbackSynth{overlay: h.overlay}
	h.tracker = NewTracker(DefaultConfig(), Deps{
		Overlay:   h.overlay,
		Actions:   h.actions,
		Synth:     h.synth,
		Capture:   h.capture,
		UI:        h.ui,
		Directory: dir,
		Now:       func() time.Time { return h.clock },
	})
	h.synth.tracker = h.tracker
	return h
}

func (h *harness) send(ev RawEvent) Disposition {
	h.t.Helper()
	d := h.tracker.HandleEvent(ev)
	h.ui.run()
	return d
}

func (h *harness) down(button int, x, y float64) Disposition {
	return h.send(RawEvent{Kind: EventButtonDown, Button: button, Point: gesture.Point{X: x, Y: y}})
}

func (h *harness) up(button int, x, y float64) Disposition {
	return h.send(RawEvent{Kind: EventButtonUp, Button: button, Point: gesture.Point{X: x, Y: y}})
}

func (h *harness) move(x, y float64) {
	h.send(RawEvent{Kind: EventMotion, Point: gesture.Point{X: x, Y: y}})
}

func (h *harness) scroll(dy float64) Disposition {
	return h.send(RawEvent{Kind: EventScroll, Scroll: ScrollDelta{DY: dy}})
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

const trigger = DefaultTriggerButton

func TestScenarioDragRightStepsNext(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "2")

	if d := h.down(trigger, 500, 500); d.Action != Consume {
		t.Fatalf("trigger down = %s, want consume", d.Action)
	}
	h.move(600, 505)
	h.move(670, 510)

	if z := h.tracker.Status().Zone; z != gesture.ZoneNext {
		t.Fatalf("zone = %s, want next", z)
	}
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:3:%d", HintNext) {
		t.Fatalf("preview label = %q", got)
	}

	h.advance(400 * time.Millisecond)
	if d := h.up(trigger, 670, 510); d.Action != Consume {
		t.Fatalf("trigger up = %s, want consume", d.Action)
	}

	if got := h.actions.workspaceActions(); len(got) != 1 || got[0] != "step next wrap=true" {
		t.Fatalf("actions = %q", got)
	}
	if h.overlay.last("") != "hide" {
		t.Fatalf("overlay not hidden: %q", h.overlay.calls)
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("state = %s, want idle", h.tracker.State())
	}
	if h.synth.clicks != 0 {
		t.Fatalf("click replayed after a gesture")
	}
}

func TestPreviewWrapsAtEnds(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "1")
	h.down(trigger, 500, 500)
	h.move(300, 500)

	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:3:%d", HintPrev) {
		t.Fatalf("preview label = %q", got)
	}
	h.up(trigger, 300, 500)
	if got := h.actions.workspaceActions(); len(got) != 1 || got[0] != "step prev wrap=true" {
		t.Fatalf("actions = %q", got)
	}
}

func TestScenarioExpandInteractiveFocus(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "1")

	h.down(trigger, 500, 500)
	h.move(505, 600)

	if z := h.tracker.Status().Zone; z != gesture.ZoneExpand {
		t.Fatalf("zone = %s, want expand", z)
	}
	if len(h.actions.sessions) != 1 {
		t.Fatalf("LoadEntries calls = %d, want 1", len(h.actions.sessions))
	}
	if h.overlay.count("expanded:true") != 1 {
		t.Fatalf("overlay not expanded: %q", h.overlay.calls)
	}

	windows := []wm.Window{
		{ID: 11, AppName: "Editor", Workspace: "1"},
		{ID: 22, AppName: "Browser", Title: "News", Workspace: "3"},
		{ID: 33, AppName: "Chat", Workspace: "2"},
	}
	h.tracker.EntriesLoaded(h.actions.sessions[0], windows)
	h.ui.run()
	if h.overlay.last("entries:") != "entries:3" {
		t.Fatalf("entries not shown: %q", h.overlay.calls)
	}

	h.up(trigger, 505, 600)
	if h.tracker.State() != StateInteractive {
		t.Fatalf("state = %s, want interactive", h.tracker.State())
	}
	if len(h.actions.workspaceActions()) != 0 {
		t.Fatalf("workspace action on expand release: %q", h.actions.calls)
	}
	if h.capture.begins != 1 {
		t.Fatalf("pointer capture begins = %d", h.capture.begins)
	}

	// Entry slot 2 spans y in [608, 632) under an origin at y=500.
	h.move(500, 620)
	if got := h.overlay.last("hover:"); got != "hover:1" {
		t.Fatalf("hover = %q, want hover:1", got)
	}
	if d := h.down(ButtonLeft, 500, 620); d.Action != Consume {
		t.Fatalf("entry click = %s, want consume", d.Action)
	}
	if got := h.actions.workspaceActions(); len(got) != 1 || got[0] != "focus 22 3" {
		t.Fatalf("actions = %q", got)
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("state = %s, want idle", h.tracker.State())
	}
	if d := h.up(ButtonLeft, 500, 620); d.Action != Consume {
		t.Fatalf("paired left release = %s, want consume", d.Action)
	}
	if d := h.up(ButtonLeft, 500, 620); d.Action != PassThrough {
		t.Fatalf("unrelated left release = %s, want pass", d.Action)
	}
	if h.capture.ends != 1 {
		t.Fatalf("pointer capture ends = %d", h.capture.ends)
	}
}

func TestScenarioScrollAccumulates(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "1")
	h.down(trigger, 500, 500)
	h.move(500, 350)

	if z := h.tracker.Status().Zone; z != gesture.ZoneScroll {
		t.Fatalf("zone = %s, want scroll", z)
	}

	var indices []int
	for i := 0; i < 3; i++ {
		if d := h.scroll(0.4); d.Action != Consume {
			t.Fatalf("scroll in scroll zone = %s, want consume", d.Action)
		}
		indices = append(indices, h.tracker.session.ScrollIndex)
	}
	if indices[0] != 0 || indices[1] != 0 || indices[2] != 1 {
		t.Fatalf("scroll index after each tick = %v, want [0 0 1]", indices)
	}
	if rem := h.tracker.session.workspaceScroll.Value(); math.Abs(rem-0.2) > 1e-9 {
		t.Fatalf("remainder = %v, want 0.2", rem)
	}
	if len(h.actions.workspaceActions()) != 0 {
		t.Fatalf("manager invoked per tick: %q", h.actions.calls)
	}

	h.up(trigger, 500, 350)
	if got := h.actions.workspaceActions(); len(got) != 1 || got[0] != "set 2" {
		t.Fatalf("commit = %q, want [set 2]", got)
	}
}

func TestScrollCommitUsesNetDisplacement(t *testing.T) {
	cases := []struct {
		name   string
		deltas []float64
		want   []string
	}{
		{name: "net forward", deltas: []float64{1, 1, -1}, want: []string{"set 3"}},
		{name: "back to start", deltas: []float64{1, -1}, want: nil},
		{name: "clamped at end", deltas: []float64{5}, want: []string{"set 4"}},
		{name: "clamped at start", deltas: []float64{-5}, want: []string{"set 1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, []string{"1", "2", "3", "4"}, "2")
			h.down(trigger, 500, 500)
			h.move(500, 350)
			for _, d := range tc.deltas {
				h.scroll(d)
			}
			h.up(trigger, 500, 350)

			got := h.actions.workspaceActions()
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("commit = %q, want %q", got, tc.want)
			}
			if h.synth.clicks != 0 {
				t.Fatalf("click replayed after scrolling")
			}
		})
	}
}

func TestShortClickIsReplayedOnce(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")

	h.down(trigger, 500, 500)
	h.move(520, 510)
	h.advance(200 * time.Millisecond)
	h.up(trigger, 520, 510)

	if h.synth.clicks != 1 {
		t.Fatalf("replayed clicks = %d, want 1", h.synth.clicks)
	}
	if len(h.synth.dispositions) != 2 {
		t.Fatalf("synthetic events = %d, want 2", len(h.synth.dispositions))
	}
	for i, d := range h.synth.dispositions {
		if d.Action != PassThrough {
			t.Fatalf("synthetic event %d = %s, want pass", i, d.Action)
		}
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("synthetic press opened a session")
	}
	if h.overlay.count("show") != 1 {
		t.Fatalf("overlay shown %d times", h.overlay.count("show"))
	}
}

func TestLongHoldIsNotReplayed(t *testing.T) {
	h := newHarness(t, []string{"1"}, "1")
	h.down(trigger, 500, 500)
	h.advance(1500 * time.Millisecond)
	h.up(trigger, 500, 500)

	if h.synth.clicks != 0 {
		t.Fatalf("long hold replayed as click")
	}
	if len(h.actions.workspaceActions()) != 0 {
		t.Fatalf("actions = %q", h.actions.calls)
	}
}

func TestSecondTriggerDownTogglesOff(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")

	h.down(trigger, 500, 500)
	first := h.tracker.Status().SessionID
	if d := h.down(trigger, 500, 500); d.Action != Consume {
		t.Fatalf("second down = %s, want consume", d.Action)
	}
	if h.tracker.State() != StateIdle || h.tracker.Status().SessionID != "" {
		t.Fatalf("second down left state %s session %q (first %q)",
			h.tracker.State(), h.tracker.Status().SessionID, first)
	}
	if h.overlay.count("show") != 1 {
		t.Fatalf("overlay shown %d times, want 1", h.overlay.count("show"))
	}
	if d := h.up(trigger, 500, 500); d.Action != Consume {
		t.Fatalf("release after toggle-off = %s, want consume", d.Action)
	}
	if h.synth.clicks != 0 {
		t.Fatalf("toggle-off replayed a click")
	}
}

func TestTriggerDownInInteractiveTogglesOff(t *testing.T) {
	h := newHarness(t, []string{"1"}, "1")
	h.down(trigger, 500, 500)
	h.move(500, 600)
	h.up(trigger, 500, 600)
	if h.tracker.State() != StateInteractive {
		t.Fatalf("state = %s, want interactive", h.tracker.State())
	}

	if d := h.down(trigger, 10, 10); d.Action != Consume {
		t.Fatalf("toggle-off down = %s", d.Action)
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("state = %s, want idle", h.tracker.State())
	}
	if h.up(trigger, 10, 10).Action != Consume {
		t.Fatalf("toggle-off release not consumed")
	}
	if h.capture.ends != 1 || h.overlay.last("") != "hide" {
		t.Fatalf("interactive not torn down: ends=%d calls=%q", h.capture.ends, h.overlay.calls)
	}
	if len(h.actions.workspaceActions()) != 0 {
		t.Fatalf("actions = %q", h.actions.calls)
	}
}

func TestHysteresisDoesNotToggle(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "2")
	h.down(trigger, 0, 0)
	h.move(170, 0)
	if z := h.tracker.Status().Zone; z != gesture.ZoneNext {
		t.Fatalf("zone = %s, want next", z)
	}
	icons := h.overlay.count("icon:")

	for i := 0; i < 10; i++ {
		x := 90.0
		if i%2 == 1 {
			x = 155
		}
		h.move(x, 0)
		if z := h.tracker.Status().Zone; z != gesture.ZoneNext {
			t.Fatalf("zone toggled to %s at x=%v", z, x)
		}
	}
	if h.overlay.count("icon:") != icons {
		t.Fatalf("zone pushes while oscillating: %q", h.overlay.calls)
	}

	h.move(40, 0)
	if z := h.tracker.Status().Zone; z != gesture.ZoneCenter {
		t.Fatalf("zone = %s, want center", z)
	}
	h.up(trigger, 40, 0)
	if got := h.actions.workspaceActions(); len(got) != 0 {
		t.Fatalf("center release dispatched %q", got)
	}
}

func TestExpandIsSticky(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")
	h.down(trigger, 0, 0)
	h.move(0, 100)

	h.move(300, 120)
	if z := h.tracker.Status().Zone; z != gesture.ZoneExpand {
		t.Fatalf("expand cleared by horizontal motion: %s", z)
	}
	h.move(50, 0)
	if z := h.tracker.Status().Zone; z != gesture.ZoneExpand {
		t.Fatalf("expand cleared above reset radius: %s", z)
	}
	h.move(10, 10)
	if z := h.tracker.Status().Zone; z != gesture.ZoneCenter {
		t.Fatalf("zone = %s, want center after reset", z)
	}
	if h.overlay.last("expanded:") != "expanded:false" {
		t.Fatalf("overlay still expanded: %q", h.overlay.calls)
	}
}

func TestScrollRouting(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")

	if d := h.scroll(1); d.Action != PassThrough {
		t.Fatalf("idle scroll = %s, want pass", d.Action)
	}

	h.down(trigger, 0, 0)
	d := h.send(RawEvent{Kind: EventScroll, Scroll: ScrollDelta{DX: 0, DY: 1}})
	if d.Action != PassModified || d.Scroll.DX != 1 || d.Scroll.DY != 0 {
		t.Fatalf("center scroll = %+v, want axes swapped", d)
	}

	h.move(0, 100)
	if d := h.scroll(-1); d.Action != Consume {
		t.Fatalf("expand scroll = %s, want consume", d.Action)
	}
	if got := h.actions.calls[len(h.actions.calls)-1]; got != "volume +5" {
		t.Fatalf("last action = %q, want volume +5", got)
	}
	h.scroll(2)
	if got := h.actions.calls[len(h.actions.calls)-1]; got != "volume -10" {
		t.Fatalf("last action = %q, want volume -10", got)
	}
}

func TestInteractiveHubAndOutsideClicks(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")
	h.down(trigger, 500, 500)
	h.move(500, 600)
	h.tracker.EntriesLoaded(h.actions.sessions[0], []wm.Window{
		{ID: 1, AppName: "b", Workspace: "2"},
		{ID: 2, AppName: "a", Workspace: "1"},
	})
	h.up(trigger, 500, 600)

	if d := h.down(ButtonLeft, 505, 495); d.Action != Consume {
		t.Fatalf("hub click = %s", d.Action)
	}
	h.up(ButtonLeft, 505, 495)
	if h.tracker.State() != StateInteractive || !h.tracker.Status().Grouped {
		t.Fatalf("hub click should toggle grouping and stay interactive")
	}
	if view := h.tracker.interactive.view; view[0].ID != 2 || !strings.HasPrefix(view[0].Label, "[1] ") {
		t.Fatalf("grouped view = %+v", view)
	}

	if d := h.down(ButtonLeft, 50, 50); d.Action != Consume {
		t.Fatalf("outside click = %s", d.Action)
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("outside click left state %s", h.tracker.State())
	}
	if len(h.actions.workspaceActions()) != 0 {
		t.Fatalf("outside click dispatched %q", h.actions.calls)
	}
	if h.up(ButtonLeft, 50, 50).Action != Consume {
		t.Fatalf("release of outside click not consumed")
	}
}

func TestStaleEntriesAreDropped(t *testing.T) {
	h := newHarness(t, []string{"1"}, "1")
	h.down(trigger, 0, 0)
	h.move(0, 100)
	old := h.actions.sessions[0]
	h.up(trigger, 0, 100)
	h.down(trigger, 0, 0) // toggle-off
	h.up(trigger, 0, 0)

	before := len(h.overlay.calls)
	h.tracker.EntriesLoaded(old, []wm.Window{{ID: 1}})
	h.ui.run()
	if h.overlay.count("entries:1") != 0 || len(h.overlay.calls) != before {
		t.Fatalf("stale entries reached the overlay: %q", h.overlay.calls[before:])
	}
}

func TestFocusedRefreshUpdatesOpenSession(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "1")
	h.down(trigger, 0, 0)

	h.tracker.FocusedWorkspaceChanged("2")
	h.ui.run()
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:2:%d", HintNone) {
		t.Fatalf("label = %q", got)
	}

	h.move(200, 0)
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:3:%d", HintNext) {
		t.Fatalf("preview = %q", got)
	}
	h.up(trigger, 200, 0)

	// After close the refresh must not reach the overlay.
	before := len(h.overlay.calls)
	h.tracker.FocusedWorkspaceChanged("1")
	h.ui.run()
	if len(h.overlay.calls) != before {
		t.Fatalf("closed session updated: %q", h.overlay.calls[before:])
	}
}

func TestVolumeIndicatorRestoresLabel(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "2")
	h.down(trigger, 0, 0)
	h.move(0, 100)

	h.tracker.VolumeChanged(h.tracker.session.ID, 40)
	h.ui.run()
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:Volume 40%%:%d", HintNone) {
		t.Fatalf("label = %q", got)
	}
	h.tracker.VolumeIndicatorExpired()
	h.ui.run()
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:2:%d", HintNone) {
		t.Fatalf("label = %q", got)
	}
}

func TestUpdateConfigChangesTrigger(t *testing.T) {
	h := newHarness(t, []string{"1"}, "1")
	cfg := DefaultConfig()
	cfg.TriggerButton = 9
	h.tracker.UpdateConfig(cfg)

	if d := h.down(8, 0, 0); d.Action != PassThrough {
		t.Fatalf("old trigger = %s, want pass", d.Action)
	}
	if d := h.down(9, 0, 0); d.Action != Consume {
		t.Fatalf("new trigger = %s, want consume", d.Action)
	}
}

func TestReplayedClickFollowsHide(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")

	h.down(trigger, 300, 300)
	h.advance(100 * time.Millisecond)
	h.up(trigger, 300, 300)

	if h.synth.clicks != 1 {
		t.Fatalf("replayed clicks = %d, want 1", h.synth.clicks)
	}
	if got := h.synth.overlayAtClick[0]; got != "hide" {
		t.Fatalf("overlay call before replay = %q, want hide", got)
	}
}

func TestVolumeOfClosedSessionIsDropped(t *testing.T) {
	h := newHarness(t, []string{"1", "2"}, "1")

	h.down(trigger, 0, 0)
	h.move(0, 100)
	h.scroll(-1)
	first := h.tracker.session.ID
	if len(h.actions.volumeSessions) != 1 || h.actions.volumeSessions[0] != first {
		t.Fatalf("volume sessions = %v, want [%s]", h.actions.volumeSessions, first)
	}
	h.up(trigger, 0, 100)
	h.down(trigger, 0, 0) // toggle-off
	h.up(trigger, 0, 0)

	h.down(trigger, 50, 50)
	if h.tracker.session.ID == first {
		t.Fatal("new hold reused the session id")
	}
	before := len(h.overlay.calls)
	h.tracker.VolumeChanged(first, 45)
	h.ui.run()
	if len(h.overlay.calls) != before {
		t.Fatalf("stale volume reached the overlay: %q", h.overlay.calls[before:])
	}

	h.tracker.VolumeChanged(uuid.Nil, 50)
	h.ui.run()
	if len(h.overlay.calls) != before {
		t.Fatalf("untagged volume reached the overlay: %q", h.overlay.calls[before:])
	}

	h.tracker.VolumeChanged(h.tracker.session.ID, 55)
	h.ui.run()
	if got := h.overlay.last("label:"); got != fmt.Sprintf("label:Volume 55%%:%d", HintNone) {
		t.Fatalf("label = %q", got)
	}
}

func TestCaptureEndsAfterSwallowedRelease(t *testing.T) {
	tests := []struct {
		name   string
		button int
		at     gesture.Point
	}{
		{"entry click", ButtonLeft, gesture.Point{X: 500, Y: 596}},
		{"outside click", ButtonLeft, gesture.Point{X: 50, Y: 50}},
		{"trigger toggle-off", trigger, gesture.Point{X: 10, Y: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, []string{"1"}, "1")
			h.down(trigger, 500, 500)
			h.move(500, 600)
			h.tracker.EntriesLoaded(h.actions.sessions[0], []wm.Window{{ID: 7, AppName: "term", Workspace: "1"}})
			h.up(trigger, 500, 600)
			if h.tracker.State() != StateInteractive || h.capture.begins != 1 {
				t.Fatalf("state = %s begins = %d", h.tracker.State(), h.capture.begins)
			}

			if d := h.down(tt.button, tt.at.X, tt.at.Y); d.Action != Consume {
				t.Fatalf("press = %s, want consume", d.Action)
			}
			if h.tracker.State() != StateIdle {
				t.Fatalf("state = %s, want idle", h.tracker.State())
			}
			if h.capture.ends != 0 {
				t.Fatal("capture ended while the closing button was still down")
			}

			if d := h.up(tt.button, tt.at.X, tt.at.Y); d.Action != Consume {
				t.Fatalf("release = %s, want consume", d.Action)
			}
			if h.capture.ends != 1 {
				t.Fatalf("capture ends = %d after release, want 1", h.capture.ends)
			}
		})
	}
}

func TestTriggerChangeMidHoldKeepsHeldButton(t *testing.T) {
	h := newHarness(t, []string{"1", "2", "3"}, "1")
	h.down(trigger, 0, 0)
	h.move(200, 0)

	cfg := DefaultConfig()
	cfg.TriggerButton = 9
	h.tracker.UpdateConfig(cfg)

	if d := h.up(trigger, 200, 0); d.Action != Consume {
		t.Fatalf("release of held trigger = %s, want consume", d.Action)
	}
	if h.tracker.State() != StateIdle {
		t.Fatalf("state = %s, want idle", h.tracker.State())
	}
	if got := h.actions.workspaceActions(); len(got) != 1 || got[0] != "step next wrap=true" {
		t.Fatalf("actions = %q", got)
	}

	if d := h.up(9, 0, 0); d.Action != PassThrough {
		t.Fatalf("unpaired release of new trigger = %s, want pass", d.Action)
	}
	h.down(9, 0, 0)
	h.advance(50 * time.Millisecond)
	h.up(9, 0, 0)
	if len(h.synth.buttons) != 1 || h.synth.buttons[0] != 9 {
		t.Fatalf("replayed buttons = %v, want [9]", h.synth.buttons)
	}
}
