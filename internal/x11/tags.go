package x11

import (
	"sync"
	"time"
)

// DefaultTagWindow bounds how long an expected synthetic event stays pending.
const DefaultTagWindow = 250 * time.Millisecond

type pendingTag struct {
	presses  int
	releases int
	expires  time.Time
}

// SyntheticTags remembers the button events this process injected so the
// input path can recognise them when the server hands them back.
//
// A replayed press is delivered to the client under the pointer, so its
// release may never come back to us; pending entries therefore expire, and a
// real (untagged) press of the same button discards them.
type SyntheticTags struct {
	mu      sync.Mutex
	pending map[int]*pendingTag
	window  time.Duration
	now     func() time.Time
}

// NewSyntheticTags creates an empty tag set.
func NewSyntheticTags() *SyntheticTags {
	return &SyntheticTags{
		pending: make(map[int]*pendingTag),
		window:  DefaultTagWindow,
		now:     time.Now,
	}
}

// Expect records one injected press/release pair for button.
func (t *SyntheticTags) Expect(button int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.pending[button]
	if p == nil {
		p = &pendingTag{}
		t.pending[button] = p
	}
	p.presses++
	p.releases++
	p.expires = t.now().Add(t.window)
}

// Take reports whether an event for button is one we injected, consuming
// the matching tag.
func (t *SyntheticTags) Take(button int, press bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.pending[button]
	if p == nil {
		return false
	}
	if t.now().After(p.expires) {
		delete(t.pending, button)
		return false
	}

	if press {
		if p.presses > 0 {
			p.presses--
			return true
		}
		delete(t.pending, button)
		return false
	}

	if p.releases > 0 {
		p.releases--
		if p.presses == 0 && p.releases == 0 {
			delete(t.pending, button)
		}
		return true
	}
	return false
}

// Pending returns the number of buttons with outstanding tags.
func (t *SyntheticTags) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
