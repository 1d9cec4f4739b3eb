package gesture

import (
	"time"

	"github.com/google/uuid"
)

// TouchTapType is the name of the synthesized tap event.
const TouchTapType = "touchTap"

// PhasedNames are the listener registration names for each propagation phase.
type PhasedNames struct {
	// Bubbled is used for target-to-root delivery.
	Bubbled string
	// Captured is used for root-to-target delivery.
	Captured string
}

// EventTypeConfig is the registration metadata for a synthesized event type.
type EventTypeConfig struct {
	Name         string
	Phases       PhasedNames
	Dependencies []EventType
}

// TouchTap describes the tap event and the input it must be subscribed to.
var TouchTap = EventTypeConfig{
	Name: TouchTapType,
	Phases: PhasedNames{
		Bubbled:  "onTouchTap",
		Captured: "onTouchTapCapture",
	},
	Dependencies: []EventType{
		EventPointerDown,
		EventPointerMove,
		EventPointerUp,
		EventTouchStart,
		EventTouchCancel,
		EventTouchEnd,
		EventTouchMove,
	},
}

// Metadata identifies a descriptor instance.
type Metadata struct {
	// ID is unique per recognized tap.
	ID string

	// Timestamp is the recognizer clock reading when the tap completed.
	Timestamp time.Time

	// Source is the input event type that completed the tap.
	Source EventType
}

// Descriptor is a recognized tap, ready for two-phase propagation.
type Descriptor struct {
	Type         string
	Phases       PhasedNames
	Target       any
	Native       NativeEvent
	NativeTarget any

	// Coordinate is where the tap ended.
	Coordinate Coordinate

	Metadata Metadata
}

// Reset clears d so it can be reused.
func (d *Descriptor) Reset() {
	*d = Descriptor{}
}

// init fills d for a tap completed by src.
func (d *Descriptor) init(src EventType, target any, native NativeEvent, nativeTarget any, c Coordinate, now time.Time) {
	d.Type = TouchTap.Name
	d.Phases = TouchTap.Phases
	d.Target = target
	d.Native = native
	d.NativeTarget = nativeTarget
	d.Coordinate = c
	d.Metadata = Metadata{
		ID:        uuid.New().String(),
		Timestamp: now,
		Source:    src,
	}
}

// Emitter queues a descriptor for capture-then-bubble delivery along its
// target's ancestor chain. Once Emit returns the caller must not assume the
// descriptor stays valid after the emitter has delivered it.
type Emitter interface {
	Emit(d *Descriptor)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(d *Descriptor)

// Emit implements Emitter.
func (f EmitterFunc) Emit(d *Descriptor) {
	f(d)
}

// Allocator supplies descriptors, typically from a pool owned by the emitter.
type Allocator interface {
	Get() *Descriptor
}
