// Package replay reads recorded input streams and plays them through a
// gesture recognizer.
//
// A recording is JSON lines, one normalized event per line:
//
//	{"type":"touch-start","t":1000,"target":"toolbar/save","touches":[{"pageX":12,"pageY":40}]}
//	{"type":"touch-end","t":1080,"target":"toolbar/save","touches":[{"pageX":13,"pageY":41}]}
//	{"type":"pointer-down","t":1100,"target":"toolbar/save","pageX":12,"pageY":40}
//
// "t" is milliseconds and drives the recognizer's clock during playback, so
// trailing-pointer suppression behaves as it did when the stream was
// recorded. Blank lines and lines starting with '#' are ignored. Records with
// an unknown type are counted and skipped.
//
// Recorder writes the same format, so a live session can be captured and
// replayed later.
package replay
