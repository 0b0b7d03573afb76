package holdmode

import (
	"sort"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/wm"
)

// interactiveClick handles a left press while Interactive. Every such press
// is consumed, and so is its release.
func (t *Tracker) interactiveClick(p gesture.Point) Disposition {
	t.swallowLeft = true
	s := t.session
	if s == nil {
		t.closeSession()
		return Disposition{Action: Consume}
	}

	if gesture.WithinHub(s.Origin, p, t.cfg.Thresholds) {
		t.interactive.Grouped = !t.interactive.Grouped
		t.logf("session %s: grouping %v", shortID(s.ID), t.interactive.Grouped)
		t.rebuildView(s)
		return Disposition{Action: Consume}
	}

	if idx := gesture.HitTest(t.interactive.rects, p); idx >= 0 && idx < len(t.interactive.view) {
		entry := t.interactive.view[idx]
		t.logf("session %s: focus window %d (%s) on %q", shortID(s.ID), entry.ID, entry.Label, entry.Workspace)
		t.actions.FocusEntry(entry.ID, entry.Workspace)
		t.closeSession()
		return Disposition{Action: Consume}
	}

	t.logf("session %s: click outside, leaving interactive", shortID(s.ID))
	t.closeSession()
	return Disposition{Action: Consume}
}

func (t *Tracker) hover(p gesture.Point) {
	idx := gesture.HitTest(t.interactive.rects, p)
	if idx == t.interactive.Hovered {
		return
	}
	t.interactive.Hovered = idx
	t.push(func(o Overlay) { o.SetHoveredEntry(idx) })
}

// setEntries replaces the loaded window list and republishes the view.
func (t *Tracker) setEntries(s *Session, windows []wm.Window) {
	entries := make([]Entry, 0, len(windows))
	for _, w := range windows {
		entries = append(entries, Entry{ID: w.ID, Label: w.Label(), Workspace: w.Workspace})
	}
	t.interactive.Entries = entries
	t.rebuildView(s)
}

// rebuildView recomputes the displayed order and hit rects and pushes them.
func (t *Tracker) rebuildView(s *Session) {
	view := groupEntries(t.interactive.Entries, s.Snapshot.IDs, t.interactive.Grouped)
	t.interactive.view = view
	t.interactive.rects = gesture.EntryRects(s.Origin, len(view), t.cfg.Layout, t.cfg.Thresholds)
	t.interactive.Hovered = -1

	t.push(func(o Overlay) {
		o.SetEntries(view)
		o.SetHoveredEntry(-1)
	})
}

// groupEntries returns entries in manager order, or when grouped, ordered by
// the position of their workspace in order and prefixed with its name.
func groupEntries(entries []Entry, order []string, grouped bool) []Entry {
	view := append([]Entry(nil), entries...)
	if !grouped {
		return view
	}

	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	pos := func(ws string) int {
		if r, ok := rank[ws]; ok {
			return r
		}
		return len(order)
	}
	sort.SliceStable(view, func(i, j int) bool {
		return pos(view[i].Workspace) < pos(view[j].Workspace)
	})
	for i := range view {
		if view[i].Workspace != "" {
			view[i].Label = "[" + view[i].Workspace + "] " + view[i].Label
		}
	}
	return view
}
