// Package propagate delivers synthesized gesture events to listeners along a
// target's ancestor chain in two phases.
//
// Targets form a tree of Nodes. Listeners are registered on a node under a
// registration name, e.g. "onTouchTapCapture" or "onTouchTap". When a
// descriptor is emitted, the Accumulator snapshots the matching listeners:
// capture listeners from the root down to the target, then bubble listeners
// from the target back up to the root. Flush runs the queued dispatches in
// that order and returns each descriptor to its Pool.
//
//	reg := propagate.NewRegistry()
//	pool := propagate.NewPool()
//	acc := propagate.NewAccumulator(reg, propagate.WithPool(pool))
//	r := gesture.New(s, acc, gesture.WithAllocator(pool))
//	...
//	if err := acc.Flush(ctx); err != nil { ... }
//
// A listener may call Event.StopPropagation to skip every listener after it.
// Listener panics are recovered and reported as *PanicError.
//
// Registry is safe for concurrent use. Accumulator is not: Emit and Flush
// belong to the input goroutine.
package propagate
