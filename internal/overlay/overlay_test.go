package overlay

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
)

func TestFrameCaption(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{"plain", Frame{Label: "3"}, "3"},
		{"next", Frame{Label: "4", Hint: holdmode.HintNext}, "4 >"},
		{"prev", Frame{Label: "2", Hint: holdmode.HintPrev}, "< 2"},
		{"scroll icon", Frame{Label: "5", Icon: holdmode.IconScroll}, "[^] 5"},
		{"volume", Frame{Label: "Volume 40%", Icon: holdmode.IconVolume}, "[vol] Volume 40%"},
		{"arrow icons are not repeated", Frame{Label: "4", Hint: holdmode.HintNext, Icon: holdmode.IconNext}, "4 >"},
		{"empty", Frame{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Caption(); got != tt.want {
				t.Fatalf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaceMatchesHitTesting(t *testing.T) {
	geo := DefaultGeometry()
	origin := gesture.Point{X: 500, Y: 400}
	entries := []holdmode.Entry{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}}
	f := Frame{Visible: true, Origin: origin, Expanded: true, Entries: entries}

	p := Place(f, geo, gesture.Rect{Width: 1920, Height: 1080})

	want := gesture.EntryRects(origin, len(entries), geo.Layout, geo.Thresholds)
	if len(p.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(p.Entries), len(want))
	}
	for i := range want {
		if p.Entries[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, p.Entries[i], want[i])
		}
	}

	r := int(geo.Thresholds.HubRadius)
	if p.Hub != (gesture.Rect{X: 500 - r, Y: 400 - r, Width: 2 * r, Height: 2 * r}) {
		t.Fatalf("hub = %+v", p.Hub)
	}
}

func TestPlaceCollapsedHasNoEntries(t *testing.T) {
	f := Frame{Visible: true, Entries: []holdmode.Entry{{ID: 1}}}
	if p := Place(f, DefaultGeometry(), gesture.Rect{Width: 800, Height: 600}); len(p.Entries) != 0 {
		t.Fatalf("entries placed while collapsed: %+v", p.Entries)
	}
}

func TestPlaceClampsToMonitor(t *testing.T) {
	bounds := gesture.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	f := Frame{
		Visible: true,
		Origin:  gesture.Point{X: 1925, Y: 10},
		Offset:  gesture.Offset{DX: -200, DY: -50},
		Label:   "workspace-with-a-long-name",
	}

	p := Place(f, DefaultGeometry(), bounds)

	if p.Puck.X < bounds.X || p.Puck.Y < bounds.Y {
		t.Fatalf("puck off monitor: %+v", p.Puck)
	}
	if p.Label.X < bounds.X+margin || p.Label.Y < bounds.Y+margin {
		t.Fatalf("label off monitor: %+v", p.Label)
	}
}

func TestClampRect(t *testing.T) {
	bounds := gesture.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		in   gesture.Rect
		pad  int
		want gesture.Rect
	}{
		{"inside", gesture.Rect{X: 20, Y: 20, Width: 10, Height: 10}, 0, gesture.Rect{X: 20, Y: 20, Width: 10, Height: 10}},
		{"left top", gesture.Rect{X: -5, Y: -5, Width: 10, Height: 10}, 4, gesture.Rect{X: 4, Y: 4, Width: 10, Height: 10}},
		{"right bottom", gesture.Rect{X: 95, Y: 95, Width: 10, Height: 10}, 0, gesture.Rect{X: 90, Y: 90, Width: 10, Height: 10}},
		{"too wide for padding", gesture.Rect{X: 50, Y: 0, Width: 98, Height: 10}, 4, gesture.Rect{X: 2, Y: 4, Width: 98, Height: 10}},
		{"wider than bounds", gesture.Rect{X: 50, Y: 0, Width: 150, Height: 10}, 0, gesture.Rect{X: 0, Y: 0, Width: 150, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampRect(tt.in, bounds, tt.pad); got != tt.want {
				t.Fatalf("clampRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPuckColor(t *testing.T) {
	if got := PuckColor(0); got != ColorPuckIdle {
		t.Fatalf("PuckColor(0) = %#x", got)
	}
	if got := PuckColor(1.5); got != ColorPuckCommit {
		t.Fatalf("PuckColor(1.5) = %#x", got)
	}
	if got := blend(0x000000, 0xff00ff, 0.5); got != 0x800080 {
		t.Fatalf("blend midpoint = %#x", got)
	}
}

func TestLogOverlay(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogOverlay(log.New(&buf, "", 0))

	o.Show(gesture.Point{X: 10, Y: 20})
	o.SetWorkspaceLabel("4", holdmode.HintNext)
	o.SetWorkspaceLabel("4", holdmode.HintNext)
	o.UpdateDragOffset(gesture.Offset{DX: 170})
	o.SetExpanded(true)
	o.SetEntries([]holdmode.Entry{{ID: 7, Label: "kitty - shell"}})
	o.SetHoveredEntry(0)
	o.Hide()
	o.Hide()

	want := []string{
		"Overlay: show at (10,20)",
		`Overlay: label "4 >"`,
		"Overlay: expanded=true",
		"Overlay: 1 entries",
		`Overlay: hover "kitty - shell"`,
		"Overlay: hide",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("log lines:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if f := o.Frame(); f.Visible || f.Hovered != -1 || len(f.Entries) != 0 {
		t.Fatalf("frame not reset after hide: %+v", f)
	}
}

func TestNewBackends(t *testing.T) {
	if o, err := New("none", nil, DefaultGeometry()); err != nil || o != nil {
		t.Fatalf("none = %v, %v", o, err)
	}
	if o, err := New("log", nil, DefaultGeometry()); err != nil || o == nil {
		t.Fatalf("log = %v, %v", o, err)
	}
	if _, err := New("x11", nil, DefaultGeometry()); err == nil {
		t.Fatal("x11 without connection should fail")
	}
	if _, err := New("wayland", nil, DefaultGeometry()); err == nil {
		t.Fatal("unknown backend should fail")
	}
}
