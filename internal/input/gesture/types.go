package gesture

import "time"

// EventType is a canonical input event type produced by the upstream
// normalizer.
type EventType uint8

const (
	// EventNone is the zero value and is never start-ish or end-ish.
	EventNone EventType = iota
	// EventPointerDown is a primary pointer (mouse) press.
	EventPointerDown
	// EventPointerMove is pointer movement.
	EventPointerMove
	// EventPointerUp is a primary pointer release.
	EventPointerUp
	// EventTouchStart is the first contact of a touch sequence.
	EventTouchStart
	// EventTouchMove is touch movement.
	EventTouchMove
	// EventTouchEnd is the last contact lifting.
	EventTouchEnd
	// EventTouchCancel is a touch sequence aborted by the platform.
	EventTouchCancel
)

var eventTypeNames = map[EventType]string{
	EventPointerDown: "pointer-down",
	EventPointerMove: "pointer-move",
	EventPointerUp:   "pointer-up",
	EventTouchStart:  "touch-start",
	EventTouchMove:   "touch-move",
	EventTouchEnd:    "touch-end",
	EventTouchCancel: "touch-cancel",
}

// String returns the canonical name, e.g. "touch-start".
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "none"
}

// ParseEventType parses a canonical event type name.
func ParseEventType(s string) (EventType, bool) {
	for t, name := range eventTypeNames {
		if name == s {
			return t, true
		}
	}
	return EventNone, false
}

// IsStartish reports whether t can begin a tap.
func (t EventType) IsStartish() bool {
	return t == EventPointerDown || t == EventTouchStart
}

// IsEndish reports whether t can complete a tap.
func (t EventType) IsEndish() bool {
	return t == EventPointerUp || t == EventTouchEnd || t == EventTouchCancel
}

// IsTouch reports whether t originates from a touch surface.
func (t EventType) IsTouch() bool {
	switch t {
	case EventTouchStart, EventTouchMove, EventTouchEnd, EventTouchCancel:
		return true
	}
	return false
}

// Point is a page-relative position.
type Point struct {
	X float64
	Y float64
}

// NativeEvent is the platform event behind a normalized event. The
// recognizer only reads coordinates from it; everything else is forwarded.
type NativeEvent struct {
	// Page is the pointer position, nil when the platform event has none.
	Page *Point

	// Touches are the active touch points, in platform order.
	Touches []Point

	// Timestamp is when the platform produced the event. The recognizer
	// uses its own clock, not this field.
	Timestamp time.Time

	// Raw is the untranslated platform event, if any.
	Raw any
}

// PointerAt returns a native event carrying a single pointer position.
func PointerAt(x, y float64) NativeEvent {
	return NativeEvent{Page: &Point{X: x, Y: y}}
}

// TouchAt returns a native event carrying the given touch points.
func TouchAt(points ...Point) NativeEvent {
	return NativeEvent{Touches: points}
}
