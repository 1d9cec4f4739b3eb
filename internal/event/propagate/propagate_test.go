package propagate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/taptrack/internal/input/gesture"
)

func tapOn(target any) *gesture.Descriptor {
	return &gesture.Descriptor{
		Type:   gesture.TouchTapType,
		Phases: gesture.TouchTap.Phases,
		Target: target,
	}
}

func TestNodePath(t *testing.T) {
	tree := NewTree("root")
	save := tree.Node("toolbar/save")

	if got := save.String(); got != "root/toolbar/save" {
		t.Errorf("String() = %q", got)
	}
	if tree.Node("/toolbar/save/") != save {
		t.Error("Node() did not return the existing node")
	}
	if tree.Node("") != tree.Root() {
		t.Error(`Node("") is not the root`)
	}
	if n, ok := tree.Lookup("toolbar"); !ok || n != save.Parent() {
		t.Error("Lookup(toolbar) failed")
	}
	if _, ok := tree.Lookup("missing"); ok {
		t.Error("Lookup(missing) ok = true")
	}

	path := save.Path()
	if len(path) != 3 || path[0] != tree.Root() || path[2] != save {
		t.Errorf("Path() = %v", path)
	}
}

func TestRegistryValidation(t *testing.T) {
	reg := NewRegistry()
	n := NewNode("n", nil)
	noop := ListenerFunc(func(context.Context, *Event) error { return nil })

	tests := []struct {
		name string
		node *Node
		reg  string
		l    Listener
		want error
	}{
		{"nil node", nil, "onTouchTap", noop, ErrNilNode},
		{"nil listener", n, "onTouchTap", nil, ErrNilListener},
		{"empty name", n, "", noop, ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Listen(tt.node, tt.reg, tt.l); !errors.Is(err, tt.want) {
				t.Errorf("Listen() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistryUnsubscribe(t *testing.T) {
	reg := NewRegistry()
	n := NewNode("n", nil)
	noop := ListenerFunc(func(context.Context, *Event) error { return nil })

	off1, _ := reg.Listen(n, "onTouchTap", noop)
	off2, _ := reg.Listen(n, "onTouchTap", noop)
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d", reg.Count())
	}

	off1()
	off1()
	if reg.Count() != 1 || len(reg.Listeners(n, "onTouchTap")) != 1 {
		t.Errorf("Count() = %d after one unsubscribe", reg.Count())
	}
	off2()
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after all unsubscribes", reg.Count())
	}
}

func TestTwoPhaseOrder(t *testing.T) {
	tree := NewTree("root")
	button := tree.Node("panel/button")
	panel := button.Parent()
	root := tree.Root()

	reg := NewRegistry()
	var order []string
	record := func(label string) Listener {
		return ListenerFunc(func(_ context.Context, ev *Event) error {
			order = append(order, label+":"+ev.Phase.String()+":"+ev.CurrentTarget.Name())
			if ev.Target != button {
				t.Errorf("Target = %v, want button", ev.Target)
			}
			return nil
		})
	}

	for _, n := range []*Node{root, panel, button} {
		if _, err := reg.Listen(n, "onTouchTapCapture", record("c")); err != nil {
			t.Fatal(err)
		}
		if _, err := reg.Listen(n, "onTouchTap", record("b")); err != nil {
			t.Fatal(err)
		}
	}

	acc := NewAccumulator(reg)
	acc.Emit(tapOn(button))
	if acc.Pending() != 1 {
		t.Fatalf("Pending() = %d", acc.Pending())
	}
	if err := acc.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := []string{
		"c:capture:root", "c:capture:panel", "c:capture:button",
		"b:bubble:button", "b:bubble:panel", "b:bubble:root",
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if acc.Pending() != 0 {
		t.Errorf("Pending() = %d after Flush", acc.Pending())
	}
}

func TestStopPropagation(t *testing.T) {
	tree := NewTree("root")
	button := tree.Node("button")
	reg := NewRegistry()

	var calls []string
	_, _ = reg.Listen(tree.Root(), "onTouchTapCapture", ListenerFunc(func(_ context.Context, ev *Event) error {
		calls = append(calls, "root-capture")
		ev.StopPropagation()
		return nil
	}))
	_, _ = reg.Listen(tree.Root(), "onTouchTapCapture", ListenerFunc(func(context.Context, *Event) error {
		calls = append(calls, "root-capture-2")
		return nil
	}))
	_, _ = reg.Listen(button, "onTouchTap", ListenerFunc(func(context.Context, *Event) error {
		calls = append(calls, "button-bubble")
		return nil
	}))

	acc := NewAccumulator(reg)
	acc.Emit(tapOn(button))
	_ = acc.Flush(context.Background())

	if !reflect.DeepEqual(calls, []string{"root-capture"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestListenersSnapshotAtEmit(t *testing.T) {
	n := NewNode("n", nil)
	reg := NewRegistry()
	calls := 0
	off, _ := reg.Listen(n, "onTouchTap", ListenerFunc(func(context.Context, *Event) error {
		calls++
		return nil
	}))

	acc := NewAccumulator(reg)
	acc.Emit(tapOn(n))
	off()
	_ = acc.Flush(context.Background())

	if calls != 1 {
		t.Errorf("calls = %d, want listener resolved at Emit", calls)
	}
}

func TestListenerErrorsAndPanics(t *testing.T) {
	n := NewNode("n", nil)
	reg := NewRegistry()
	boom := errors.New("boom")
	after := false

	_, _ = reg.Listen(n, "onTouchTapCapture", ListenerFunc(func(context.Context, *Event) error {
		return boom
	}))
	_, _ = reg.Listen(n, "onTouchTap", ListenerFunc(func(context.Context, *Event) error {
		panic("bad listener")
	}))
	_, _ = reg.Listen(n, "onTouchTap", ListenerFunc(func(context.Context, *Event) error {
		after = true
		return nil
	}))

	acc := NewAccumulator(reg)
	acc.Emit(tapOn(n))
	err := acc.Flush(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("Flush() error = %v, want boom", err)
	}
	if !errors.Is(err, ErrListenerPanic) {
		t.Errorf("Flush() error = %v, want ErrListenerPanic", err)
	}
	var le *ListenerError
	if !errors.As(err, &le) || le.Name != "onTouchTapCapture" || le.Node != "n" {
		t.Errorf("ListenerError = %+v", le)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "bad listener" || len(pe.Stack) == 0 {
		t.Errorf("PanicError = %+v", pe)
	}
	if !after {
		t.Error("listener after a panic did not run")
	}
}

func TestFlushReclaimsDescriptors(t *testing.T) {
	pool := NewPool()
	acc := NewAccumulator(NewRegistry(), WithPool(pool))

	d := pool.Get()
	d.Type = gesture.TouchTapType
	d.Target = "not a node"
	acc.Emit(d)
	acc.Emit(nil)

	if pool.Outstanding() != 1 {
		t.Fatalf("Outstanding() = %d before flush", pool.Outstanding())
	}
	if err := acc.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if pool.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d after flush", pool.Outstanding())
	}
	if d.Type != "" || d.Target != nil {
		t.Errorf("descriptor not reset: %+v", d)
	}
}

func TestFlushCancelled(t *testing.T) {
	n := NewNode("n", nil)
	reg := NewRegistry()
	calls := 0
	_, _ = reg.Listen(n, "onTouchTap", ListenerFunc(func(context.Context, *Event) error {
		calls++
		return nil
	}))

	pool := NewPool()
	acc := NewAccumulator(reg, WithPool(pool))
	d := pool.Get()
	d.Phases = gesture.TouchTap.Phases
	d.Target = n
	acc.Emit(d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := acc.Flush(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Flush() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d after cancel", calls)
	}
	if pool.Outstanding() != 0 {
		t.Error("cancelled descriptor not reclaimed")
	}
}

func TestRecognizerIntegration(t *testing.T) {
	tree := NewTree("app")
	button := tree.Node("dialog/ok")
	reg := NewRegistry()
	pool := NewPool()
	acc := NewAccumulator(reg, WithPool(pool))

	var got []string
	_, _ = reg.Listen(tree.Root(), "onTouchTapCapture", ListenerFunc(func(_ context.Context, ev *Event) error {
		got = append(got, "capture "+ev.Tap.Type)
		return nil
	}))
	_, _ = reg.Listen(button, "onTouchTap", ListenerFunc(func(_ context.Context, ev *Event) error {
		got = append(got, "bubble "+ev.Tap.Metadata.Source.String())
		return nil
	}))

	r := gesture.New(gesture.NeverSuppress, acc, gesture.WithAllocator(pool))
	r.Process(gesture.EventTouchStart, button, gesture.TouchAt(gesture.Point{X: 10, Y: 10}), nil)
	if d := r.Process(gesture.EventTouchEnd, button, gesture.TouchAt(gesture.Point{X: 12, Y: 10}), nil); d == nil {
		t.Fatal("expected tap")
	}
	if err := acc.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"capture touchTap", "bubble touch-end"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if pool.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d", pool.Outstanding())
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseNone.String() != "none" || PhaseCapture.String() != "capture" || PhaseBubble.String() != "bubble" {
		t.Error("unexpected phase names")
	}
}
