package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

const sourceIndication = 2 // pager/direct action

// ClientWindow describes a managed top-level window.
type ClientWindow struct {
	ID      uint32
	Class   string
	Title   string
	Desktop int // -1 for sticky windows
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// GetDesktopNames returns _NET_DESKTOP_NAMES. Window managers may publish
// fewer names than desktops, or none.
func (c *Connection) GetDesktopNames() ([]string, error) {
	names, err := ewmh.DesktopNamesGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get desktop names: %w", err)
	}
	return names, nil
}

// SetCurrentDesktop asks the window manager to switch to desktop.
func (c *Connection) SetCurrentDesktop(desktop int) error {
	if desktop < 0 {
		return fmt.Errorf("invalid desktop %d", desktop)
	}
	return c.sendRootMessage(c.Root, "_NET_CURRENT_DESKTOP",
		[]uint32{uint32(desktop), uint32(xproto.TimeCurrentTime)})
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) FocusWindow(windowID uint32) error {
	return c.sendRootMessage(xproto.Window(windowID), "_NET_ACTIVE_WINDOW",
		[]uint32{sourceIndication, uint32(xproto.TimeCurrentTime)})
}

// ClientWindows lists the managed windows in _NET_CLIENT_LIST order.
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	windows := make([]ClientWindow, 0, len(clients))
	for _, win := range clients {
		if !c.isNormalWindow(win) {
			continue
		}
		desktop := -1
		if d, err := ewmh.WmDesktopGet(c.XUtil, win); err == nil && d != uint(0xFFFFFFFF) {
			desktop = int(d)
		}
		windows = append(windows, ClientWindow{
			ID:      uint32(win),
			Class:   c.windowClass(win),
			Title:   c.windowTitle(win),
			Desktop: desktop,
		})
	}
	return windows, nil
}

// isNormalWindow rejects docks, desktops and other non-application windows.
func (c *Connection) isNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
