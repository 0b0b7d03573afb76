// Package workspace holds the cached, ordered list of workspace identifiers
// and the currently focused one.
package workspace

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultIDs is the fallback directory used when the manager is unavailable.
func DefaultIDs() []string {
	ids := make([]string, 9)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return ids
}

// Snapshot is an immutable view of the directory.
type Snapshot struct {
	IDs     []string
	Current string
}

// Index returns the position of Current in IDs, or 0 when absent.
func (s Snapshot) Index() int {
	for i, id := range s.IDs {
		if id == s.Current {
			return i
		}
	}
	return 0
}

// Len returns the number of workspaces.
func (s Snapshot) Len() int {
	return len(s.IDs)
}

// At returns the identifier at i, or "" if out of range.
func (s Snapshot) At(i int) string {
	if i < 0 || i >= len(s.IDs) {
		return ""
	}
	return s.IDs[i]
}

// Directory publishes Snapshots atomically. Readers never block; writers are
// serialized and last writer wins.
type Directory struct {
	mu       sync.Mutex
	snap     atomic.Pointer[Snapshot]
	defaults []string
}

// NewDirectory creates a directory seeded with defaults (DefaultIDs when empty).
func NewDirectory(defaults []string) *Directory {
	d := &Directory{}
	d.SetDefaults(defaults)
	d.Fallback()
	return d
}

// SetDefaults replaces the fallback list. The published snapshot is unchanged.
func (d *Directory) SetDefaults(defaults []string) {
	cleaned := compact(defaults)
	if len(cleaned) == 0 {
		cleaned = DefaultIDs()
	}
	d.mu.Lock()
	d.defaults = cleaned
	d.mu.Unlock()
}

// Snapshot returns the current view. The returned slice must not be modified.
func (d *Directory) Snapshot() Snapshot {
	if s := d.snap.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Apply publishes a refreshed identifier list. An empty list falls back to
// the defaults. Current is kept, or set to the first entry if unset.
func (d *Directory) Apply(ids []string) Snapshot {
	ids = compact(ids)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(ids) == 0 {
		ids = append([]string(nil), d.defaults...)
	}
	current := d.Snapshot().Current
	if current == "" {
		current = ids[0]
	}
	next := &Snapshot{IDs: ids, Current: current}
	d.snap.Store(next)
	return *next
}

// SetCurrent publishes a new focused identifier, keeping the list.
func (d *Directory) SetCurrent(id string) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.Snapshot()
	next := &Snapshot{IDs: prev.IDs, Current: id}
	d.snap.Store(next)
	return *next
}

// Fallback publishes the defaults, keeping Current when it is one of them.
func (d *Directory) Fallback() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := append([]string(nil), d.defaults...)
	current := d.Snapshot().Current
	found := false
	for _, id := range ids {
		if id == current {
			found = true
			break
		}
	}
	if !found {
		current = ids[0]
	}
	next := &Snapshot{IDs: ids, Current: current}
	d.snap.Store(next)
	return *next
}

func compact(ids []string) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
