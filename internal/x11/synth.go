package x11

import (
	"log"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
)

// Synthesizer injects button clicks through the XTest extension. Each click
// is registered with the shared tags before it is sent.
type Synthesizer struct {
	conn *Connection
	tags *SyntheticTags
}

var _ holdmode.Synthesizer = (*Synthesizer)(nil)

// NewSynthesizer creates a synthesizer that tags its events in tags.
func NewSynthesizer(conn *Connection, tags *SyntheticTags) *Synthesizer {
	return &Synthesizer{conn: conn, tags: tags}
}

// Click sends a press and release of button at the current pointer position.
func (s *Synthesizer) Click(button int, at gesture.Point) {
	if !s.conn.HasXTest() {
		log.Printf("Synth: XTest unavailable, dropping click of button %d", button)
		return
	}
	s.tags.Expect(button)

	xconn := s.conn.XUtil.Conn()
	x, y := int16(at.X), int16(at.Y)
	if err := xtest.FakeInputChecked(xconn, xproto.ButtonPress, byte(button), 0, s.conn.Root, x, y, 0).Check(); err != nil {
		log.Printf("Synth: press of button %d failed: %v", button, err)
		return
	}
	if err := xtest.FakeInputChecked(xconn, xproto.ButtonRelease, byte(button), 0, s.conn.Root, x, y, 0).Check(); err != nil {
		log.Printf("Synth: release of button %d failed: %v", button, err)
	}
}
