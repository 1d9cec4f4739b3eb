package propagate

import (
	"context"

	"github.com/dshills/taptrack/internal/input/gesture"
)

// Phase is a propagation phase.
type Phase uint8

const (
	// PhaseNone is outside dispatch.
	PhaseNone Phase = iota
	// PhaseCapture runs root to target.
	PhaseCapture
	// PhaseBubble runs target to root.
	PhaseBubble
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseBubble:
		return "bubble"
	default:
		return "none"
	}
}

// Event is what a listener sees. It is only valid during the listener call.
type Event struct {
	// Tap is the emitted descriptor.
	Tap *gesture.Descriptor

	// Target is the node the tap landed on.
	Target *Node

	// CurrentTarget is the node whose listener is running.
	CurrentTarget *Node

	// Phase is the current phase.
	Phase Phase

	stopped bool
}

// StopPropagation prevents every later listener from running.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Listener handles a delivered gesture event.
type Listener interface {
	HandleTap(ctx context.Context, ev *Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev *Event) error

// HandleTap implements Listener.
func (f ListenerFunc) HandleTap(ctx context.Context, ev *Event) error {
	return f(ctx, ev)
}
