package overlay

import (
	"fmt"
	"log"
	"strings"

	"github.com/1broseidon/holdswipe/internal/holdmode"
	"github.com/1broseidon/holdswipe/internal/x11"
)

// Backend names accepted by New.
const (
	BackendX11  = "x11"
	BackendLog  = "log"
	BackendNone = "none"
)

// New selects an overlay renderer. BackendNone returns a nil overlay, which
// the tracker treats as a no-op.
func New(backend string, conn *x11.Connection, geo Geometry) (holdmode.Overlay, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendX11:
		if conn == nil {
			return nil, fmt.Errorf("overlay backend %q requires an X11 connection", BackendX11)
		}
		return NewX11Overlay(conn, geo), nil
	case BackendLog:
		return NewLogOverlay(log.Default()), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown overlay backend %q", backend)
	}
}
