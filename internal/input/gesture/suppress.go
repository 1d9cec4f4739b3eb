package gesture

import (
	"sync/atomic"
	"time"
)

// Suppressor decides whether a pointer event arriving at now trails the touch
// sequence last seen at lastTouch and must be ignored. lastTouch is the zero
// time when no touch has been seen.
type Suppressor interface {
	ShouldSuppress(lastTouch, now time.Time) bool
}

// SuppressorFunc adapts a function to Suppressor.
type SuppressorFunc func(lastTouch, now time.Time) bool

// ShouldSuppress implements Suppressor.
func (f SuppressorFunc) ShouldSuppress(lastTouch, now time.Time) bool {
	return f(lastTouch, now)
}

// NeverSuppress processes every pointer event. Use it on platforms that do
// not synthesize mouse events after touches.
var NeverSuppress Suppressor = SuppressorFunc(func(time.Time, time.Time) bool { return false })

// DefaultSuppressWindow covers the synthetic click delay of mobile browsers.
const DefaultSuppressWindow = 750 * time.Millisecond

// WindowSuppressor suppresses pointer events that arrive less than Window
// after the last touch event, or before it when the clock went backwards. A
// zero window suppresses nothing. The window may be changed while events
// are being processed.
type WindowSuppressor struct {
	window atomic.Int64
}

// NewWindowSuppressor creates a suppressor with the given window.
func NewWindowSuppressor(window time.Duration) *WindowSuppressor {
	s := &WindowSuppressor{}
	s.SetWindow(window)
	return s
}

// Window returns the current window.
func (s *WindowSuppressor) Window() time.Duration {
	return time.Duration(s.window.Load())
}

// SetWindow replaces the window. Negative values are treated as zero.
func (s *WindowSuppressor) SetWindow(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.window.Store(int64(d))
}

// ShouldSuppress implements Suppressor.
func (s *WindowSuppressor) ShouldSuppress(lastTouch, now time.Time) bool {
	window := s.Window()
	if window == 0 || lastTouch.IsZero() {
		return false
	}
	elapsed := now.Sub(lastTouch)
	// Clock skew: a touch "in the future" still counts as recent.
	if elapsed < 0 {
		return true
	}
	return elapsed < window
}
