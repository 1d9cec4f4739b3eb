package gesture

import "math"

// TapMoveThreshold is the largest displacement, exclusive, between start and
// end positions that still counts as a tap.
const TapMoveThreshold = 10.0

// CoordKind says where a Coordinate came from.
type CoordKind uint8

const (
	// CoordNone means the event carried no usable position: no pointer
	// position and no touches, or more than one touch.
	CoordNone CoordKind = iota
	// CoordPointer came from the pointer position.
	CoordPointer
	// CoordTouch came from the single active touch point.
	CoordTouch
)

// String returns the kind name.
func (k CoordKind) String() string {
	switch k {
	case CoordPointer:
		return "pointer"
	case CoordTouch:
		return "touch"
	default:
		return "none"
	}
}

// Coordinate is a position extracted from a native event.
type Coordinate struct {
	Kind CoordKind
	Point
}

// Valid reports whether the coordinate carries a position.
func (c Coordinate) Valid() bool {
	return c.Kind != CoordNone
}

// ExtractCoordinate returns the position of a native event. A single touch
// point wins over the pointer position. Multi-touch events yield CoordNone,
// as do events carrying neither.
func ExtractCoordinate(ev NativeEvent) Coordinate {
	switch len(ev.Touches) {
	case 0:
	case 1:
		return Coordinate{Kind: CoordTouch, Point: ev.Touches[0]}
	default:
		return Coordinate{}
	}
	if ev.Page == nil {
		return Coordinate{}
	}
	return Coordinate{Kind: CoordPointer, Point: *ev.Page}
}

// Distance returns the Euclidean distance between from and c. ok is false
// when c has no position.
func Distance(from Point, c Coordinate) (d float64, ok bool) {
	if !c.Valid() {
		return 0, false
	}
	return math.Hypot(c.X-from.X, c.Y-from.Y), true
}

// WithinTapThreshold reports whether a displacement of d counts as a tap.
func WithinTapThreshold(d float64) bool {
	return d < TapMoveThreshold
}
