package lua

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/taptrack/internal/event/propagate"
	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/logging"
)

type fixture struct {
	tree *propagate.Tree
	reg  *propagate.Registry
	acc  *propagate.Accumulator
	host *Host
	rec  *gesture.Recognizer
	buf  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	buf := &bytes.Buffer{}
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: buf})

	f := &fixture{
		tree: propagate.NewTree("app"),
		reg:  propagate.NewRegistry(),
		buf:  buf,
	}
	f.acc = propagate.NewAccumulator(f.reg)
	f.host = NewHost(f.tree, f.reg, WithLogger(log))
	f.rec = gesture.New(gesture.NeverSuppress, f.acc)
	t.Cleanup(f.host.Close)
	return f
}

func (f *fixture) tap(t *testing.T, path string, x, y float64) error {
	t.Helper()
	node := f.tree.Node(path)
	f.rec.Process(gesture.EventTouchStart, node, gesture.TouchAt(gesture.Point{X: x, Y: y}), nil)
	if d := f.rec.Process(gesture.EventTouchEnd, node, gesture.TouchAt(gesture.Point{X: x, Y: y}), nil); d == nil {
		t.Fatal("expected tap")
	}
	return f.acc.Flush(context.Background())
}

func TestScriptListenerReceivesEvent(t *testing.T) {
	f := newFixture(t)

	err := f.host.DoString(`
		seen = {}
		tap.on("dialog/ok", "onTouchTap", function(ev)
			table.insert(seen, ev.type .. " " .. ev.phase .. " " .. ev.current .. " " .. ev.x .. "," .. ev.y)
			tap.log("tapped " .. ev.target .. " via " .. ev.source)
		end)
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if f.host.Listeners() != 1 {
		t.Fatalf("Listeners() = %d", f.host.Listeners())
	}

	if err := f.tap(t, "dialog/ok", 4, 5); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if err := f.host.DoString(`assert(#seen == 1 and seen[1] == "touchTap bubble app/dialog/ok 4,5", seen[1])`); err != nil {
		t.Error(err)
	}
	if !strings.Contains(f.buf.String(), "tapped app/dialog/ok via touch-end") {
		t.Errorf("log = %q", f.buf.String())
	}
}

func TestScriptStopsPropagation(t *testing.T) {
	f := newFixture(t)

	err := f.host.DoString(`
		order = {}
		tap.on("", "onTouchTapCapture", function(ev)
			table.insert(order, "root")
		end)
		tap.on("panel", "onTouchTapCapture", function(ev)
			table.insert(order, "panel")
			return false
		end)
		tap.on("panel/button", "onTouchTap", function(ev)
			table.insert(order, "button")
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.tap(t, "panel/button", 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.host.DoString(`assert(table.concat(order, ",") == "root,panel", table.concat(order, ","))`); err != nil {
		t.Error(err)
	}
}

func TestScriptOff(t *testing.T) {
	f := newFixture(t)

	err := f.host.DoString(`
		count = 0
		local id = tap.on("b", "onTouchTap", function() count = count + 1 end)
		removed = tap.off(id)
		again = tap.off(id)
	`)
	if err != nil {
		t.Fatal(err)
	}
	if f.host.Listeners() != 0 {
		t.Errorf("Listeners() = %d after off", f.host.Listeners())
	}
	if err := f.tap(t, "b", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.host.DoString(`assert(count == 0 and removed == true and again == false)`); err != nil {
		t.Error(err)
	}
}

func TestScriptErrors(t *testing.T) {
	f := newFixture(t)

	if err := f.host.DoString(`this is not lua`); !errors.Is(err, ErrScript) {
		t.Errorf("syntax error = %v, want ErrScript", err)
	}
	if err := f.host.DoString(`tap.on("x", "", function() end)`); !errors.Is(err, ErrScript) {
		t.Errorf("empty name error = %v, want ErrScript", err)
	}

	if err := f.host.DoString(`tap.on("x", "onTouchTap", function() error("listener failed") end)`); err != nil {
		t.Fatal(err)
	}
	err := f.tap(t, "x", 0, 0)
	if !errors.Is(err, ErrScript) {
		t.Errorf("Flush() error = %v, want ErrScript", err)
	}
	var le *propagate.ListenerError
	if !errors.As(err, &le) || le.Node != "app/x" {
		t.Errorf("ListenerError = %+v", le)
	}
}

func TestSandbox(t *testing.T) {
	f := newFixture(t)

	for _, src := range []string{`os.exit(1)`, `io.write("x")`, `dofile("x.lua")`, `require("os")`} {
		if err := f.host.DoString(src); err == nil {
			t.Errorf("DoString(%q) succeeded in sandbox", src)
		}
	}
}

func TestDoFileAndClose(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "taps.lua")
	if err := os.WriteFile(path, []byte(`tap.on("a", "onTouchTap", function() end)`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := f.host.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if f.reg.Count() != 1 {
		t.Fatalf("registry Count() = %d", f.reg.Count())
	}
	if err := f.host.DoFile(filepath.Join(t.TempDir(), "missing.lua")); !errors.Is(err, ErrScript) {
		t.Errorf("missing file error = %v", err)
	}

	f.host.Close()
	f.host.Close()
	if f.reg.Count() != 0 {
		t.Errorf("registry Count() = %d after Close", f.reg.Count())
	}
	if err := f.host.DoString(`x = 1`); !errors.Is(err, ErrHostClosed) {
		t.Errorf("DoString() after Close = %v", err)
	}
}
