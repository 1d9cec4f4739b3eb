package source

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taptrack/internal/input/gesture"
)

// Default cell size in page units. A one-cell wobble stays under the tap
// threshold; a two-cell drag does not.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// Normalizer converts tcell mouse events into gesture events.
type Normalizer struct {
	cellWidth  float64
	cellHeight float64

	down bool
}

// NewNormalizer creates a normalizer. Non-positive sizes use the defaults.
func NewNormalizer(cellWidth, cellHeight float64) *Normalizer {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	if cellHeight <= 0 {
		cellHeight = DefaultCellHeight
	}
	return &Normalizer{cellWidth: cellWidth, cellHeight: cellHeight}
}

// CellSize returns the cell size in page units.
func (n *Normalizer) CellSize() (width, height float64) {
	return n.cellWidth, n.cellHeight
}

// PageCoord returns the page position of the center of cell (x, y).
func (n *Normalizer) PageCoord(x, y int) gesture.Point {
	return gesture.Point{
		X: (float64(x) + 0.5) * n.cellWidth,
		Y: (float64(y) + 0.5) * n.cellHeight,
	}
}

// Normalize converts ev. ok is false for wheel-only events, which carry no
// pointer transition.
func (n *Normalizer) Normalize(ev *tcell.EventMouse) (et gesture.EventType, native gesture.NativeEvent, ok bool) {
	buttons := ev.Buttons()
	primary := buttons&tcell.Button1 != 0
	wheel := buttons&(tcell.WheelUp|tcell.WheelDown|tcell.WheelLeft|tcell.WheelRight) != 0

	switch {
	case primary && !n.down:
		et = gesture.EventPointerDown
	case !primary && n.down:
		et = gesture.EventPointerUp
	case wheel:
		return gesture.EventNone, gesture.NativeEvent{}, false
	default:
		et = gesture.EventPointerMove
	}
	n.down = primary

	x, y := ev.Position()
	page := n.PageCoord(x, y)
	return et, gesture.NativeEvent{
		Page:      &page,
		Timestamp: ev.When(),
		Raw:       ev,
	}, true
}

// Reset forgets the held-button state.
func (n *Normalizer) Reset() {
	n.down = false
}

// HitTester maps a cell to a gesture target.
type HitTester interface {
	TargetAt(x, y int) any
}

// Region is a rectangle of cells bound to a target.
type Region struct {
	X, Y          int
	Width, Height int
	Target        any
}

// Contains reports whether cell (x, y) is inside r.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Regions is a HitTester over rectangles. Later regions are on top.
type Regions []Region

// TargetAt implements HitTester. It returns nil outside every region.
func (rs Regions) TargetAt(x, y int) any {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Contains(x, y) {
			return rs[i].Target
		}
	}
	return nil
}
