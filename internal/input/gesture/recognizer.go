package gesture

import (
	"sync/atomic"
	"time"

	"github.com/dshills/taptrack/internal/logging"
)

// Phase is the recognizer state.
type Phase uint8

const (
	// PhaseIdle means no start event is being tracked.
	PhaseIdle Phase = iota
	// PhaseTracking means a start position is held.
	PhaseTracking
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseTracking {
		return "tracking"
	}
	return "idle"
}

// State is a snapshot of the recognizer's gesture state.
type State struct {
	Phase Phase

	// Start is the tracked start position; the origin when idle.
	Start Point

	// StartKnown is false when the tracked start event carried no usable
	// position, in which case no end event can complete a tap.
	StartKnown bool

	// LastTouch is the clock reading of the most recent touch start or end
	// event; zero before any.
	LastTouch time.Time
}

// Stats are recognizer counters.
type Stats struct {
	// Processed counts every Process call.
	Processed uint64
	// Ignored counts events that are neither start-ish nor end-ish.
	Ignored uint64
	// Suppressed counts pointer events dropped as trailing a touch.
	Suppressed uint64
	// Taps counts recognized taps.
	Taps uint64
}

// Recognizer turns start/end input events into tap descriptors.
type Recognizer struct {
	suppressor Suppressor
	emitter    Emitter
	alloc      Allocator
	now        func() time.Time
	log        *logging.Logger

	state State

	processed  atomic.Uint64
	ignored    atomic.Uint64
	suppressed atomic.Uint64
	taps       atomic.Uint64
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithAllocator sets where descriptors come from. The default allocates.
func WithAllocator(a Allocator) Option {
	return func(r *Recognizer) {
		r.alloc = a
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recognizer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger. Decisions are logged at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(r *Recognizer) {
		if l != nil {
			r.log = l.WithComponent("gesture")
		}
	}
}

// New creates a recognizer that consults s for trailing pointer events and
// hands every tap to e. A nil s never suppresses. New panics if e is nil.
func New(s Suppressor, e Emitter, opts ...Option) *Recognizer {
	if e == nil {
		panic("gesture: nil Emitter")
	}
	if s == nil {
		s = NeverSuppress
	}
	r := &Recognizer{
		suppressor: s,
		emitter:    e,
		now:        time.Now,
		log:        logging.Nop(),
		state:      State{StartKnown: true},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EventTypes returns the event types the recognizer produces.
func (r *Recognizer) EventTypes() []EventTypeConfig {
	return []EventTypeConfig{TouchTap}
}

// Process feeds one normalized input event to the recognizer and returns the
// tap it completes, or nil. A returned descriptor has already been emitted.
func (r *Recognizer) Process(eventType EventType, target any, native NativeEvent, nativeTarget any) *Descriptor {
	r.processed.Add(1)

	if !eventType.IsStartish() && !eventType.IsEndish() {
		r.ignored.Add(1)
		return nil
	}

	now := r.now()
	if eventType.IsTouch() {
		r.state.LastTouch = now
	} else if r.suppressor.ShouldSuppress(r.state.LastTouch, now) {
		r.suppressed.Add(1)
		r.log.Debug("suppressed trailing %s", eventType)
		return nil
	}

	coord := ExtractCoordinate(native)

	var d *Descriptor
	if eventType.IsEndish() && r.state.StartKnown {
		if dist, ok := Distance(r.state.Start, coord); ok && WithinTapThreshold(dist) {
			d = r.newDescriptor()
			d.init(eventType, target, native, nativeTarget, coord, now)
			r.taps.Add(1)
			r.log.Debug("tap on %v via %s (distance %.2f)", target, eventType, dist)
		}
	}

	switch {
	case eventType.IsStartish():
		r.state.Phase = PhaseTracking
		r.state.Start = coord.Point
		r.state.StartKnown = coord.Valid()
	case eventType.IsEndish():
		r.state.Phase = PhaseIdle
		r.state.Start = Point{}
		r.state.StartKnown = true
	}

	if d != nil {
		r.emitter.Emit(d)
	}
	return d
}

func (r *Recognizer) newDescriptor() *Descriptor {
	if r.alloc != nil {
		if d := r.alloc.Get(); d != nil {
			return d
		}
	}
	return &Descriptor{}
}

// State returns a snapshot of the gesture state.
func (r *Recognizer) State() State {
	return r.state
}

// Reset returns the recognizer to idle and forgets the last touch time.
func (r *Recognizer) Reset() {
	r.state = State{StartKnown: true}
}

// Stats returns the recognizer counters.
func (r *Recognizer) Stats() Stats {
	return Stats{
		Processed:  r.processed.Load(),
		Ignored:    r.ignored.Load(),
		Suppressed: r.suppressed.Load(),
		Taps:       r.taps.Load(),
	}
}
