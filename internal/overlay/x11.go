package overlay

import (
	"fmt"
	"log"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
	"github.com/1broseidon/holdswipe/internal/x11"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
)

// surface is one override-redirect window.
type surface struct {
	win    xproto.Window
	mapped bool
}

// X11Overlay draws the overlay with override-redirect windows. All methods
// must be called from the UI loop.
type X11Overlay struct {
	conn   *x11.Connection
	geo    Geometry
	frame  Frame
	bounds gesture.Rect

	hub     *surface
	puck    *surface
	label   *surface
	entries []*surface

	gc       xproto.Gcontext
	font     xproto.Font
	textOK   bool
	disabled bool

	shapeChecked bool
	shapeOK      bool
}

var _ holdmode.Overlay = (*X11Overlay)(nil)

// NewX11Overlay creates the overlay windows lazily on first Show.
func NewX11Overlay(conn *x11.Connection, geo Geometry) *X11Overlay {
	return &X11Overlay{conn: conn, geo: geo, frame: Frame{Hovered: -1}}
}

// SetGeometry applies reloaded thresholds and entry layout.
func (o *X11Overlay) SetGeometry(geo Geometry) {
	o.geo = geo
	o.render()
}

// Frame returns the last rendered state.
func (o *X11Overlay) Frame() Frame {
	return o.frame
}

func (o *X11Overlay) Show(origin gesture.Point) {
	o.frame.show(origin)
	m := o.conn.MonitorAt(round(origin.X), round(origin.Y))
	o.bounds = gesture.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	o.render()
}

func (o *X11Overlay) Hide() {
	o.frame.hide()
	o.render()
}

func (o *X11Overlay) UpdateDragOffset(off gesture.Offset) {
	o.frame.Offset = off
	o.render()
}

func (o *X11Overlay) SetWorkspaceLabel(text string, hint holdmode.Hint) {
	o.frame.Label = text
	o.frame.Hint = hint
	o.render()
}

func (o *X11Overlay) SetIndicatorIcon(icon holdmode.Icon) {
	o.frame.Icon = icon
	o.render()
}

func (o *X11Overlay) SetExpanded(expanded bool) {
	o.frame.Expanded = expanded
	o.render()
}

func (o *X11Overlay) SetBadgeFadeProgress(progress float64) {
	o.frame.Badge = progress
	o.render()
}

func (o *X11Overlay) SetEntries(entries []holdmode.Entry) {
	o.frame.Entries = append([]holdmode.Entry(nil), entries...)
	o.frame.Hovered = -1
	o.render()
}

func (o *X11Overlay) SetHoveredEntry(index int) {
	o.frame.Hovered = index
	o.render()
}

// Close destroys every overlay window.
func (o *X11Overlay) Close() {
	o.hideAll()
	for _, s := range o.allSurfaces() {
		o.destroy(s)
	}
	o.hub, o.puck, o.label, o.entries = nil, nil, nil, nil
	if o.textOK {
		xproto.FreeGC(o.conn.XUtil.Conn(), o.gc)
		xproto.CloseFont(o.conn.XUtil.Conn(), o.font)
		o.textOK = false
	}
}

func (o *X11Overlay) render() {
	if o.disabled || o.conn == nil {
		return
	}
	if !o.frame.Visible {
		o.hideAll()
		return
	}
	if err := o.ensureSurfaces(len(o.frame.Entries)); err != nil {
		o.disabled = true
		o.hideAll()
		return
	}

	p := Place(o.frame, o.geo, o.bounds)

	o.fill(o.hub, p.Hub, ColorHub)
	icon := o.frame.Icon.String()
	if icon != "" {
		o.text(o.hub, icon, ColorText, ColorHub, centerOffset(p.Hub, icon))
	}
	o.fill(o.puck, p.Puck, PuckColor(o.frame.Badge))

	if caption := o.frame.Caption(); caption != "" {
		o.fill(o.label, p.Label, ColorLabelBg)
		o.text(o.label, caption, ColorText, ColorLabelBg, paddingX)
	} else {
		o.unmap(o.label)
	}

	for i, s := range o.entries {
		if i >= len(p.Entries) {
			o.unmap(s)
			continue
		}
		bg := uint32(ColorEntryBg)
		if i == o.frame.Hovered {
			bg = ColorEntryHover
		}
		o.fill(s, p.Entries[i], bg)
		o.text(s, truncate(o.frame.Entries[i].Label), ColorText, bg, paddingX)
	}
}

func (o *X11Overlay) ensureSurfaces(entries int) error {
	var err error
	for _, s := range []**surface{&o.hub, &o.puck, &o.label} {
		if *s == nil {
			if *s, err = o.create(); err != nil {
				return err
			}
		}
	}
	for len(o.entries) < entries {
		s, err := o.create()
		if err != nil {
			return err
		}
		o.entries = append(o.entries, s)
	}
	o.ensureText()
	return nil
}

// ensureText opens a core font for captions. Without one the overlay still
// draws its shapes.
func (o *X11Overlay) ensureText() {
	if o.textOK || o.hub == nil {
		return
	}
	conn := o.conn.XUtil.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		return
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(o.hub.win),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorText, ColorLabelBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		return
	}
	o.gc, o.font, o.textOK = gc, font, true
}

func (o *X11Overlay) create() (*surface, error) {
	conn := o.conn.XUtil.Conn()
	screen := o.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	// Value list follows mask bit order: back_pixel before override_redirect.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		o.conn.Root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}
	o.passInput(wid)
	return &surface{win: wid}, nil
}

// passInput gives win an empty input region so pointer events fall through
// to the application below it.
func (o *X11Overlay) passInput(win xproto.Window) {
	conn := o.conn.XUtil.Conn()
	if !o.shapeChecked {
		o.shapeChecked = true
		if err := shape.Init(conn); err != nil {
			log.Printf("Overlay: SHAPE extension unavailable, overlay windows will block clicks: %v", err)
		} else {
			o.shapeOK = true
		}
	}
	if !o.shapeOK {
		return
	}
	shape.Rectangles(conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, win, 0, 0, nil)
}

func (o *X11Overlay) fill(s *surface, r gesture.Rect, color uint32) {
	conn := o.conn.XUtil.Conn()
	w, h := max(r.Width, 1), max(r.Height, 1)

	xproto.ConfigureWindow(
		conn,
		s.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(int32(r.X)), uint32(int32(r.Y)), uint32(w), uint32(h), xproto.StackModeAbove},
	)
	xproto.ChangeWindowAttributes(conn, s.win, xproto.CwBackPixel, []uint32{color})
	if !s.mapped {
		xproto.MapWindow(conn, s.win)
		s.mapped = true
	}
	xproto.ClearArea(conn, false, s.win, 0, 0, 0, 0)
}

func (o *X11Overlay) text(s *surface, text string, fg, bg uint32, x int) {
	if !o.textOK || text == "" {
		return
	}
	conn := o.conn.XUtil.Conn()
	xproto.ChangeGC(conn, o.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	xproto.ImageText8(conn, byte(len(text)), xproto.Drawable(s.win), o.gc,
		int16(x), int16(paddingY+lineHeight-4), text)
}

func (o *X11Overlay) unmap(s *surface) {
	if s == nil || !s.mapped {
		return
	}
	xproto.UnmapWindow(o.conn.XUtil.Conn(), s.win)
	s.mapped = false
}

func (o *X11Overlay) destroy(s *surface) {
	if s == nil || s.win == 0 {
		return
	}
	xproto.DestroyWindow(o.conn.XUtil.Conn(), s.win)
	s.win = 0
	s.mapped = false
}

func (o *X11Overlay) hideAll() {
	if o.conn == nil {
		return
	}
	for _, s := range o.allSurfaces() {
		o.unmap(s)
	}
}

func (o *X11Overlay) allSurfaces() []*surface {
	all := append([]*surface{o.hub, o.puck, o.label}, o.entries...)
	out := all[:0]
	for _, s := range all {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func centerOffset(r gesture.Rect, text string) int {
	return max((r.Width-len(text)*charWidth)/2, 0)
}
