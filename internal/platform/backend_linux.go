//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/holdswipe/internal/x11"
)

var _ Desktops = (*x11.Connection)(nil)

// NewEWMHFromConnection creates an EWMH manager over an existing X11 connection.
func NewEWMHFromConnection(conn *x11.Connection) *EWMHManager {
	return NewEWMHManager(conn)
}

// NewEWMHFromDisplay opens a fresh X11 connection for the manager.
func NewEWMHFromDisplay(display string) (*EWMHManager, func(), error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewEWMHManager(conn), conn.Close, nil
}
