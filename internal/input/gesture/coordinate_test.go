package gesture

import (
	"math"
	"testing"
	"time"
)

func TestExtractCoordinate(t *testing.T) {
	tests := []struct {
		name string
		ev   NativeEvent
		want Coordinate
	}{
		{"pointer", PointerAt(3, 4), Coordinate{Kind: CoordPointer, Point: Point{X: 3, Y: 4}}},
		{"single touch", TouchAt(Point{X: 5, Y: 6}), Coordinate{Kind: CoordTouch, Point: Point{X: 5, Y: 6}}},
		{"touch wins over pointer", NativeEvent{Page: &Point{X: 1, Y: 1}, Touches: []Point{{X: 2, Y: 2}}},
			Coordinate{Kind: CoordTouch, Point: Point{X: 2, Y: 2}}},
		{"multi touch", TouchAt(Point{X: 1, Y: 1}, Point{X: 2, Y: 2}), Coordinate{}},
		{"multi touch ignores pointer", NativeEvent{Page: &Point{X: 1, Y: 1}, Touches: []Point{{}, {}}}, Coordinate{}},
		{"empty", NativeEvent{}, Coordinate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCoordinate(tt.ev); got != tt.want {
				t.Errorf("ExtractCoordinate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	d, ok := Distance(Point{X: 100, Y: 100}, Coordinate{Kind: CoordPointer, Point: Point{X: 103, Y: 104}})
	if !ok || d != 5 {
		t.Errorf("Distance() = %v, %v, want 5, true", d, ok)
	}

	if _, ok := Distance(Point{}, Coordinate{}); ok {
		t.Error("Distance to CoordNone ok = true")
	}

	d, ok = Distance(Point{}, Coordinate{Kind: CoordTouch, Point: Point{X: math.NaN()}})
	if !ok || WithinTapThreshold(d) {
		t.Errorf("NaN distance %v counted as tap", d)
	}
}

func TestWithinTapThreshold(t *testing.T) {
	if !WithinTapThreshold(9.999) {
		t.Error("9.999 should be within threshold")
	}
	if WithinTapThreshold(TapMoveThreshold) {
		t.Error("threshold itself should not be within threshold")
	}
}

func TestCoordKindString(t *testing.T) {
	if CoordNone.String() != "none" || CoordPointer.String() != "pointer" || CoordTouch.String() != "touch" {
		t.Error("unexpected CoordKind names")
	}
}

func TestWindowSuppressor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewWindowSuppressor(200 * time.Millisecond)

	tests := []struct {
		name      string
		lastTouch time.Time
		now       time.Time
		want      bool
	}{
		{"no touch yet", time.Time{}, base, false},
		{"inside window", base, base.Add(50 * time.Millisecond), true},
		{"at window edge", base, base.Add(200 * time.Millisecond), false},
		{"after window", base, base.Add(time.Second), false},
		{"clock skew", base, base.Add(-time.Millisecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldSuppress(tt.lastTouch, tt.now); got != tt.want {
				t.Errorf("ShouldSuppress() = %v, want %v", got, tt.want)
			}
		})
	}

	s.SetWindow(-time.Second)
	if s.Window() != 0 {
		t.Errorf("Window() = %v after negative set, want 0", s.Window())
	}
	if s.ShouldSuppress(base, base.Add(time.Millisecond)) {
		t.Error("zero window suppressed")
	}
	if s.ShouldSuppress(base.Add(5*time.Second), base.Add(time.Second)) {
		t.Error("zero window suppressed a pointer event older than the last touch")
	}
}

func TestNeverSuppress(t *testing.T) {
	now := time.Now()
	if NeverSuppress.ShouldSuppress(now, now) {
		t.Error("NeverSuppress suppressed")
	}
}

func TestDescriptorReset(t *testing.T) {
	d := &Descriptor{Type: TouchTapType, Target: "x"}
	d.Reset()
	if d.Type != "" || d.Target != nil {
		t.Errorf("Reset left %+v", d)
	}
}
