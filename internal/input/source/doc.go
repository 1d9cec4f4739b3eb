// Package source turns terminal mouse input into normalized gesture events.
//
// tcell reports mouse state, not transitions: each *tcell.EventMouse carries
// the buttons currently held. Normalizer diffs the primary button against the
// previous event to produce pointer-down, pointer-move and pointer-up. Cell
// positions are converted to page coordinates by a configurable cell size so
// that the gesture move threshold keeps its meaning in a terminal.
//
// Terminal owns a tcell.Screen, polls it, and feeds each normalized event to
// a Sink such as *gesture.Recognizer.
package source
