package gesture

import "math"

// Zone is the discrete classification of the current drag offset.
type Zone int

const (
	// ZoneCenter means no gesture is armed.
	ZoneCenter Zone = iota
	// ZoneNext arms a step to the next workspace.
	ZoneNext
	// ZonePrev arms a step to the previous workspace.
	ZonePrev
	// ZoneScroll turns vertical scrolling into workspace paging.
	ZoneScroll
	// ZoneExpand opens the window list and routes scrolling to volume.
	ZoneExpand
)

// String returns the string representation of the zone
func (z Zone) String() string {
	switch z {
	case ZoneCenter:
		return "center"
	case ZoneNext:
		return "next"
	case ZonePrev:
		return "prev"
	case ZoneScroll:
		return "scroll"
	case ZoneExpand:
		return "expand"
	default:
		return "unknown"
	}
}

// Point is a position in screen coordinates (Y grows downward).
type Point struct {
	X float64
	Y float64
}

// Offset is a drag displacement relative to the session origin. Up is negative Y.
type Offset struct {
	DX float64
	DY float64
}

// OffsetFrom returns p - origin.
func OffsetFrom(origin, p Point) Offset {
	return Offset{DX: p.X - origin.X, DY: p.Y - origin.Y}
}

// Distance returns the euclidean length of the offset.
func (o Offset) Distance() float64 {
	return math.Hypot(o.DX, o.DY)
}

// Thresholds holds the radii used for zone classification.
type Thresholds struct {
	Exit        float64 // below this distance the zone returns to center
	Commit      float64 // horizontal zones need at least this distance
	ExpandDown  float64 // downward distance that opens the expand zone
	ScrollUp    float64 // upward distance that opens the scroll zone
	ExpandReset float64 // expand clears only below this distance
	HubRadius   float64 // clicks within this radius of the origin hit the hub
}

// DefaultThresholds returns the stock radii.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Exit:        80,
		Commit:      160,
		ExpandDown:  80,
		ScrollUp:    120,
		ExpandReset: 30,
		HubRadius:   40,
	}
}

// Classify maps a drag offset to a zone given the previous zone.
//
// Expand is sticky: once entered it only clears when allowReset is true and the
// pointer returns within ExpandReset of the origin. Between Exit and the entry
// threshold of a zone the previous zone is kept, so a path oscillating inside
// that band never toggles.
func Classify(off Offset, prev Zone, th Thresholds, allowReset bool) Zone {
	d := off.Distance()

	if prev == ZoneExpand {
		if allowReset && d < th.ExpandReset {
			return ZoneCenter
		}
		return ZoneExpand
	}

	if d < th.Exit {
		return ZoneCenter
	}

	ax, ay := math.Abs(off.DX), math.Abs(off.DY)
	switch {
	case ax > ay:
		if d >= th.Commit {
			if off.DX > 0 {
				return ZoneNext
			}
			return ZonePrev
		}
	case off.DY < -th.ScrollUp:
		return ZoneScroll
	case off.DY > th.ExpandDown:
		return ZoneExpand
	}

	return prev
}

// BadgeProgress reports how far the offset has travelled from the exit radius
// toward the commit radius, clamped to [0, 1].
func BadgeProgress(off Offset, th Thresholds) float64 {
	span := th.Commit - th.Exit
	if span <= 0 {
		return 0
	}
	p := (off.Distance() - th.Exit) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// WithinHub reports whether p lies inside the hub radius around origin.
func WithinHub(origin, p Point, th Thresholds) bool {
	return OffsetFrom(origin, p).Distance() <= th.HubRadius
}
