// Package gesture recognizes tap gestures in a stream of normalized pointer
// and touch events.
//
// A tap is a start event (pointer-down or touch-start) followed by an end
// event (pointer-up, touch-end or touch-cancel) whose Euclidean displacement
// from the start is strictly less than TapMoveThreshold. Each recognized tap
// produces a Descriptor that is handed to an Emitter for capture/bubble
// delivery and then returned to the caller:
//
//	r := gesture.New(gesture.NewWindowSuppressor(300*time.Millisecond), acc)
//	if d := r.Process(gesture.EventTouchEnd, target, native, nativeTarget); d != nil {
//	    // d has already been queued on acc
//	}
//
// # Trailing pointer events
//
// Touch-capable platforms fire synthetic mouse events shortly after a real
// touch sequence. Every touch event records the current time; every pointer
// event first asks the Suppressor whether it trails a touch, and is dropped
// without touching gesture state when it does.
//
// # State
//
// A Recognizer tracks one gesture at a time. A new start event overwrites the
// tracked start position and every end event resets it to the origin.
// Independent gestures need independent recognizers.
//
// # Thread Safety
//
// Recognizer performs no locking. Calls to Process must be serialized by the
// caller, normally by running them on the input goroutine. Stats may be read
// from any goroutine.
package gesture
