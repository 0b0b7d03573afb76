package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/x11"
)

// Desktops abstracts the EWMH desktop operations of a window system.
type Desktops interface {
	GetDesktopCount() (int, error)
	GetDesktopNames() ([]string, error)
	GetCurrentDesktop() (int, error)
	SetCurrentDesktop(desktop int) error
	FocusWindow(windowID uint32) error
	ClientWindows() ([]x11.ClientWindow, error)
}

// EWMHManager exposes virtual desktops as workspaces. A desktop is named by
// _NET_DESKTOP_NAMES when the window manager publishes a unique name for it,
// and by its 1-based index otherwise.
type EWMHManager struct {
	desktops Desktops
}

var _ wm.Manager = (*EWMHManager)(nil)

// NewEWMHManager creates a manager over desktops.
func NewEWMHManager(desktops Desktops) *EWMHManager {
	return &EWMHManager{desktops: desktops}
}

// ListWorkspaces returns one identifier per desktop.
func (m *EWMHManager) ListWorkspaces(ctx context.Context) ([]string, error) {
	return m.ids()
}

// FocusedWorkspace returns the identifier of the current desktop.
func (m *EWMHManager) FocusedWorkspace(ctx context.Context) (string, error) {
	ids, err := m.ids()
	if err != nil {
		return "", err
	}
	cur, err := m.desktops.GetCurrentDesktop()
	if err != nil {
		return "", err
	}
	if cur < 0 || cur >= len(ids) {
		return "", fmt.Errorf("%w: current desktop %d of %d", wm.ErrMalformedPayload, cur, len(ids))
	}
	return ids[cur], nil
}

// SetWorkspace switches to the desktop named id.
func (m *EWMHManager) SetWorkspace(ctx context.Context, id string) error {
	ids, err := m.ids()
	if err != nil {
		return err
	}
	idx := indexFor(ids, id)
	if idx < 0 {
		return fmt.Errorf("unknown workspace %q", id)
	}
	return m.desktops.SetCurrentDesktop(idx)
}

// StepWorkspace switches to the neighbouring desktop.
func (m *EWMHManager) StepWorkspace(ctx context.Context, dir wm.Direction, wrap bool) error {
	if m.desktops == nil {
		return wm.ErrToolUnavailable
	}
	n, err := m.desktops.GetDesktopCount()
	if err != nil {
		return err
	}
	cur, err := m.desktops.GetCurrentDesktop()
	if err != nil {
		return err
	}
	next := gesture.WorkspaceAt(n, cur, dir.Sign(), wrap)
	if next == cur {
		return nil
	}
	return m.desktops.SetCurrentDesktop(next)
}

// ListWindows returns managed windows tagged with their desktop's identifier.
func (m *EWMHManager) ListWindows(ctx context.Context) ([]wm.Window, error) {
	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	clients, err := m.desktops.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]wm.Window, 0, len(clients))
	for _, c := range clients {
		ws := ""
		if c.Desktop >= 0 && c.Desktop < len(ids) {
			ws = ids[c.Desktop]
		}
		windows = append(windows, wm.Window{
			ID:        int(c.ID),
			AppName:   c.Class,
			Title:     c.Title,
			Workspace: ws,
		})
	}
	return windows, nil
}

// FocusWindow activates window id.
func (m *EWMHManager) FocusWindow(ctx context.Context, id int) error {
	if m.desktops == nil {
		return wm.ErrToolUnavailable
	}
	if id <= 0 {
		return fmt.Errorf("invalid window id %d", id)
	}
	return m.desktops.FocusWindow(uint32(id))
}

func (m *EWMHManager) ids() ([]string, error) {
	if m.desktops == nil {
		return nil, wm.ErrToolUnavailable
	}
	n, err := m.desktops.GetDesktopCount()
	if err != nil {
		return nil, err
	}
	// Names are optional in EWMH.
	names, _ := m.desktops.GetDesktopNames()
	return desktopIDs(n, names), nil
}

// desktopIDs names n desktops. Missing, blank or duplicate names fall back to
// the 1-based index, suffixed when another desktop already uses that id.
func desktopIDs(n int, names []string) []string {
	ids := make([]string, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		name := ""
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		if name == "" || seen[name] {
			name = strconv.Itoa(i + 1)
			for k := 2; seen[name]; k++ {
				name = fmt.Sprintf("%d (%d)", i+1, k)
			}
		}
		seen[name] = true
		ids[i] = name
	}
	return ids
}

// indexFor resolves a workspace identifier, accepting a 1-based index too.
func indexFor(ids []string, id string) int {
	id = strings.TrimSpace(id)
	if idx := gesture.IndexOf(ids, id); idx >= 0 {
		return idx
	}
	if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(ids) {
		return n - 1
	}
	return -1
}
