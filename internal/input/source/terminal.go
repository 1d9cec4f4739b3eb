package source

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/logging"
)

// Sink receives normalized events. *gesture.Recognizer is a Sink.
type Sink interface {
	Process(eventType gesture.EventType, target any, native gesture.NativeEvent, nativeTarget any) *gesture.Descriptor
}

// Terminal polls a tcell screen and feeds mouse input to a Sink.
type Terminal struct {
	screen tcell.Screen
	norm   *Normalizer
	hit    HitTester
	sink   Sink
	log    *logging.Logger

	afterEvent func(ctx context.Context) error
	onTap      func(d *gesture.Descriptor)
	onKey      func(ev *tcell.EventKey) bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *Normalizer) TerminalOption {
	return func(t *Terminal) {
		if n != nil {
			t.norm = n
		}
	}
}

// WithHitTester sets how cells map to targets. Without one every event
// targets nil.
func WithHitTester(h HitTester) TerminalOption {
	return func(t *Terminal) {
		t.hit = h
	}
}

// WithAfterEvent sets a hook run after every mouse event reaches the sink,
// typically an accumulator flush. A hook error is logged, not fatal.
func WithAfterEvent(fn func(ctx context.Context) error) TerminalOption {
	return func(t *Terminal) {
		t.afterEvent = fn
	}
}

// WithTapHandler sets a callback for every tap the sink returns. It runs
// before the after-event hook.
func WithTapHandler(fn func(d *gesture.Descriptor)) TerminalOption {
	return func(t *Terminal) {
		t.onTap = fn
	}
}

// WithKeyHandler sets a callback for key events. Returning true stops Run.
// Without one, Escape and Ctrl-C stop Run.
func WithKeyHandler(fn func(ev *tcell.EventKey) bool) TerminalOption {
	return func(t *Terminal) {
		t.onKey = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) TerminalOption {
	return func(t *Terminal) {
		if l != nil {
			t.log = l.WithComponent("source")
		}
	}
}

// NewTerminal creates a terminal source over screen.
func NewTerminal(screen tcell.Screen, sink Sink, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen: screen,
		norm:   NewNormalizer(0, 0),
		sink:   sink,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init initializes the screen and enables mouse reporting.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Screen returns the underlying screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Run polls events until a key handler asks to stop, the screen is
// finalized, or ctx is done. It returns ctx.Err() in the last case.
func (t *Terminal) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return ctx.Err()
		}
		if t.Handle(ctx, ev) {
			return nil
		}
	}
}

// Handle processes one tcell event and reports whether Run should stop.
func (t *Terminal) Handle(ctx context.Context, ev tcell.Event) (stop bool) {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		t.handleMouse(ctx, e)
	case *tcell.EventKey:
		if t.onKey != nil {
			return t.onKey(e)
		}
		return e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return false
}

func (t *Terminal) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	et, native, ok := t.norm.Normalize(ev)
	if !ok {
		return
	}

	var target any
	if t.hit != nil {
		x, y := ev.Position()
		target = t.hit.TargetAt(x, y)
	}

	if d := t.sink.Process(et, target, native, ev); d != nil && t.onTap != nil {
		t.onTap(d)
	}

	if t.afterEvent != nil {
		if err := t.afterEvent(ctx); err != nil {
			t.log.Warn("after event: %v", err)
		}
	}
}
