package x11

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrGrabDenied is returned when another client already owns the button grab.
var ErrGrabDenied = errors.New("pointer button grab denied")

const (
	buttonScrollUp    = 4
	buttonScrollDown  = 5
	buttonScrollLeft  = 6
	buttonScrollRight = 7
)

const pointerEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// Handler classifies one input event.
type Handler interface {
	HandleEvent(ev holdmode.RawEvent) holdmode.Disposition
}

type forwardRequest struct {
	button  xproto.Button
	rootX   int16
	rootY   int16
	state   uint16
	time    xproto.Timestamp
	press   bool
	release bool
}

// InputSource delivers pointer events from the X server to a Handler.
//
// The trigger button is grabbed passively on the root window in synchronous
// mode, so the server freezes the pointer until the handler has decided.
// While it is held, motion and scroll arrive through the activated grab.
// While Interactive, an active pointer grab captures every click.
type InputSource struct {
	conn    *Connection
	handler Handler
	tags    *SyntheticTags

	mu        sync.Mutex
	trigger   int
	installed bool
	capturing bool

	forward chan forwardRequest
	done    chan struct{}
}

var _ holdmode.PointerCapture = (*InputSource)(nil)

// NewInputSource creates an input source for trigger. Call Install to start.
func NewInputSource(conn *Connection, handler Handler, trigger int, tags *SyntheticTags) *InputSource {
	if tags == nil {
		tags = NewSyntheticTags()
	}
	s := &InputSource{
		conn:    conn,
		handler: handler,
		tags:    tags,
		trigger: trigger,
		forward: make(chan forwardRequest, 64),
		done:    make(chan struct{}),
	}
	go s.forwardLoop()
	return s
}

// Tags returns the synthetic event tags shared with the synthesizer.
func (s *InputSource) Tags() *SyntheticTags {
	return s.tags
}

// CheckGrab reports whether the trigger button can be grabbed, releasing the
// grab again immediately.
func (s *InputSource) CheckGrab() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.installed {
		return nil
	}
	if err := s.grabButton(s.trigger); err != nil {
		return err
	}
	s.ungrabButton(s.trigger)
	return nil
}

// Install grabs the trigger button and attaches the event handlers.
func (s *InputSource) Install() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.installed {
		return nil
	}
	if err := s.grabButton(s.trigger); err != nil {
		return err
	}

	xu, root := s.conn.XUtil, s.conn.Root
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		s.onButton(ev.ButtonPressEvent, true)
	}).Connect(xu, root)
	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		s.onButton((*xproto.ButtonPressEvent)(ev.ButtonReleaseEvent), false)
	}).Connect(xu, root)
	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		s.onMotion(ev.MotionNotifyEvent)
	}).Connect(xu, root)

	s.installed = true
	log.Printf("Input: grabbed button %d on root window", s.trigger)
	return nil
}

// Uninstall releases the grabs and detaches the handlers.
func (s *InputSource) Uninstall() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.installed {
		return
	}
	if s.capturing {
		xproto.UngrabPointer(s.conn.XUtil.Conn(), xproto.TimeCurrentTime)
		s.capturing = false
	}
	s.ungrabButton(s.trigger)
	xevent.Detach(s.conn.XUtil, s.conn.Root)
	s.installed = false
}

// Close uninstalls and stops the forwarding goroutine.
func (s *InputSource) Close() {
	s.Uninstall()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// SetTrigger moves the passive grab to a different button.
func (s *InputSource) SetTrigger(button int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if button == s.trigger {
		return nil
	}
	if !s.installed {
		s.trigger = button
		return nil
	}
	if err := s.grabButton(button); err != nil {
		return err
	}
	s.ungrabButton(s.trigger)
	s.trigger = button
	return nil
}

// BeginCapture actively grabs the pointer so clicks anywhere reach the handler.
func (s *InputSource) BeginCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capturing {
		return
	}
	reply, err := xproto.GrabPointer(
		s.conn.XUtil.Conn(),
		false,
		s.conn.Root,
		uint16(pointerEventMask),
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		log.Printf("Input: pointer grab failed: %v", err)
		return
	}
	if reply.Status != xproto.GrabStatusSuccess {
		log.Printf("Input: pointer grab refused (status %d)", reply.Status)
		return
	}
	s.capturing = true
}

// EndCapture releases the active pointer grab.
func (s *InputSource) EndCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capturing {
		return
	}
	xproto.UngrabPointer(s.conn.XUtil.Conn(), xproto.TimeCurrentTime)
	s.capturing = false
}

func (s *InputSource) grabButton(button int) error {
	err := xproto.GrabButtonChecked(
		s.conn.XUtil.Conn(),
		false,
		s.conn.Root,
		uint16(pointerEventMask),
		xproto.GrabModeSync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		byte(button),
		xproto.ModMaskAny,
	).Check()
	if err == nil {
		return nil
	}
	var access xproto.AccessError
	if errors.As(err, &access) {
		return fmt.Errorf("%w: button %d: %v", ErrGrabDenied, button, err)
	}
	return fmt.Errorf("grab button %d: %w", button, err)
}

func (s *InputSource) ungrabButton(button int) {
	xproto.UngrabButton(s.conn.XUtil.Conn(), byte(button), s.conn.Root, xproto.ModMaskAny)
}

func (s *InputSource) currentTrigger() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger
}

// onButton runs on the X event loop for presses and releases alike; the two
// event types share a wire layout.
func (s *InputSource) onButton(ev *xproto.ButtonPressEvent, press bool) {
	button := int(ev.Detail)
	raw := holdmode.RawEvent{
		Kind:   holdmode.EventButtonUp,
		Button: button,
		Point:  gesture.Point{X: float64(ev.RootX), Y: float64(ev.RootY)},
	}
	if dx, dy, ok := scrollDelta(button); ok {
		// Scroll buttons emit a press/release pair per tick; the press carries it.
		if !press {
			return
		}
		raw.Kind = holdmode.EventScroll
		raw.Scroll = holdmode.ScrollDelta{DX: dx, DY: dy}
	} else {
		if press {
			raw.Kind = holdmode.EventButtonDown
		}
		raw.Synthetic = s.tags.Take(button, press)
	}

	plan := planButton(button, s.currentTrigger(), press, s.handler.HandleEvent(raw))
	if plan.allow {
		xproto.AllowEvents(s.conn.XUtil.Conn(), plan.allowMode, ev.Time)
	}
	for _, req := range plan.forwards {
		req.rootX, req.rootY = ev.RootX, ev.RootY
		req.state, req.time = ev.State, ev.Time
		s.enqueue(req)
	}
}

// buttonPlan is what onButton does with a classified button event. Forward
// requests carry only the button and which halves to send.
type buttonPlan struct {
	allow     bool
	allowMode byte
	forwards  []forwardRequest
}

// planButton maps the handler's disposition of a button event to grab
// replies and forwarded clicks.
func planButton(button, trigger int, press bool, d holdmode.Disposition) buttonPlan {
	var plan buttonPlan

	if _, _, ok := scrollDelta(button); ok {
		if !press {
			return plan
		}
		switch d.Action {
		case holdmode.PassThrough:
			plan.forwards = append(plan.forwards, clickRequest(xproto.Button(button)))
		case holdmode.PassModified:
			for _, b := range scrollButtons(d.Scroll) {
				plan.forwards = append(plan.forwards, clickRequest(b))
			}
		}
		return plan
	}

	if button == trigger {
		if press {
			// The passive grab froze the pointer; release or replay the press.
			plan.allow = true
			plan.allowMode = xproto.AllowAsyncPointer
			if d.Action == holdmode.PassThrough {
				plan.allowMode = xproto.AllowReplayPointer
			}
		}
		return plan
	}

	if d.Action == holdmode.PassThrough {
		// Only reached while a grab redirects the pointer to us.
		plan.forwards = append(plan.forwards, forwardRequest{
			button:  xproto.Button(button),
			press:   press,
			release: !press,
		})
	}
	return plan
}

func clickRequest(button xproto.Button) forwardRequest {
	return forwardRequest{button: button, press: true, release: true}
}

func (s *InputSource) onMotion(ev *xproto.MotionNotifyEvent) {
	s.handler.HandleEvent(holdmode.RawEvent{
		Kind:  holdmode.EventMotion,
		Point: gesture.Point{X: float64(ev.RootX), Y: float64(ev.RootY)},
	})
}

// enqueue hands a forward request to the forwarding goroutine, dropping it
// if the queue is full so the event loop never blocks.
func (s *InputSource) enqueue(req forwardRequest) {
	select {
	case s.forward <- req:
	default:
		log.Printf("Input: forward queue full, dropping button %d", req.button)
	}
}

func (s *InputSource) forwardLoop() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.forward:
			if err := s.sendButton(req); err != nil {
				log.Printf("Input: forward button %d failed: %v", req.button, err)
			}
		}
	}
}

// sendButton delivers a button event to the deepest window under the pointer.
func (s *InputSource) sendButton(req forwardRequest) error {
	conn := s.conn.XUtil.Conn()
	target, err := s.windowUnderPointer()
	if err != nil {
		return err
	}
	coords, err := xproto.TranslateCoordinates(conn, s.conn.Root, target, req.rootX, req.rootY).Reply()
	if err != nil {
		return fmt.Errorf("translate coordinates: %w", err)
	}

	base := xproto.ButtonPressEvent{
		Detail:     req.button,
		Time:       req.time,
		Root:       s.conn.Root,
		Event:      target,
		Child:      xproto.WindowNone,
		RootX:      req.rootX,
		RootY:      req.rootY,
		EventX:     coords.DstX,
		EventY:     coords.DstY,
		State:      req.state,
		SameScreen: true,
	}
	if req.press {
		xproto.SendEvent(conn, true, target, xproto.EventMaskButtonPress, string(base.Bytes()))
	}
	if req.release {
		release := xproto.ButtonReleaseEvent(base)
		xproto.SendEvent(conn, true, target, xproto.EventMaskButtonRelease, string(release.Bytes()))
	}
	return nil
}

func (s *InputSource) windowUnderPointer() (xproto.Window, error) {
	conn := s.conn.XUtil.Conn()
	win := s.conn.Root
	for depth := 0; depth < 32; depth++ {
		reply, err := xproto.QueryPointer(conn, win).Reply()
		if err != nil {
			return 0, fmt.Errorf("query pointer: %w", err)
		}
		if reply.Child == xproto.WindowNone {
			return win, nil
		}
		win = reply.Child
	}
	return win, nil
}

// scrollDelta maps the core protocol's scroll buttons to a delta.
// Positive DY scrolls down, positive DX scrolls right.
func scrollDelta(button int) (dx, dy float64, ok bool) {
	switch button {
	case buttonScrollUp:
		return 0, -1, true
	case buttonScrollDown:
		return 0, 1, true
	case buttonScrollLeft:
		return -1, 0, true
	case buttonScrollRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// scrollButtons maps a delta back to scroll button clicks, one per whole unit.
func scrollButtons(d holdmode.ScrollDelta) []xproto.Button {
	var out []xproto.Button
	add := func(v float64, neg, pos xproto.Button) {
		b := pos
		if v < 0 {
			b, v = neg, -v
		}
		for i := 0; i < int(v+0.5); i++ {
			out = append(out, b)
		}
	}
	add(d.DY, buttonScrollUp, buttonScrollDown)
	add(d.DX, buttonScrollLeft, buttonScrollRight)
	return out
}
