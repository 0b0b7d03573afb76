package holdmode

import (
	"fmt"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/google/uuid"
)

// The methods below receive dispatcher results on the UI loop. Results for a
// session that has already closed never touch the overlay.

// DirectoryChanged is called after the workspace list was refreshed. Open
// sessions keep the snapshot they started with.
func (t *Tracker) DirectoryChanged(snap workspace.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logf("directory refreshed: %d workspaces, current %q", snap.Len(), snap.Current)
}

// FocusedWorkspaceChanged is called after the focused workspace was re-read.
// While the hold is still undecided the session adopts it as its start point.
func (t *Tracker) FocusedWorkspaceChanged(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || t.state != StateHeld || s.Scrolled || id == "" || id == s.InitialWorkspace {
		return
	}
	s.InitialWorkspace = id
	if idx := gesture.IndexOf(s.Snapshot.IDs, id); idx >= 0 {
		s.ScrollIndex = idx
	}
	if s.Zone == gesture.ZoneExpand || t.volumeShown {
		return
	}

	label := t.labelFor(s)
	hint := HintNone
	switch s.Zone {
	case gesture.ZoneNext:
		hint = HintNext
	case gesture.ZonePrev:
		hint = HintPrev
	}
	t.push(func(o Overlay) { o.SetWorkspaceLabel(label, hint) })
}

// EntriesLoaded is called when the window list for session arrives.
func (t *Tracker) EntriesLoaded(session uuid.UUID, windows []wm.Window) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || s.ID != session {
		t.logf("dropping %d entries for closed session %s", len(windows), shortID(session))
		return
	}
	if s.Zone != gesture.ZoneExpand && t.state != StateInteractive {
		return
	}
	t.setEntries(s, windows)
}

// VolumeChanged shows the new volume when session is still open.
func (t *Tracker) VolumeChanged(session uuid.UUID, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.session; s == nil || s.ID != session {
		return
	}
	t.volumeShown = true
	label := fmt.Sprintf("Volume %d%%", percent)
	t.push(func(o Overlay) {
		o.SetWorkspaceLabel(label, HintNone)
		o.SetIndicatorIcon(IconVolume)
	})
}

// VolumeIndicatorExpired restores the workspace label after volume feedback.
func (t *Tracker) VolumeIndicatorExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || !t.volumeShown {
		return
	}
	t.volumeShown = false
	label := t.labelFor(s)
	icon := IconNone
	if s.Zone == gesture.ZoneExpand || t.state == StateInteractive {
		icon = IconVolume
	}
	t.push(func(o Overlay) {
		o.SetWorkspaceLabel(label, HintNone)
		o.SetIndicatorIcon(icon)
	})
}
