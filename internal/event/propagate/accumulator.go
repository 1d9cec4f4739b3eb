package propagate

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/logging"
)

// dispatch is one listener invocation.
type dispatch struct {
	node     *Node
	name     string
	phase    Phase
	listener Listener
}

type pending struct {
	desc       *gesture.Descriptor
	target     *Node
	dispatches []dispatch
}

// Accumulator queues emitted descriptors with their two-phase dispatch lists.
// It satisfies gesture.Emitter.
type Accumulator struct {
	registry *Registry
	pool     *Pool
	log      *logging.Logger

	queue []pending
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithPool returns flushed descriptors to p.
func WithPool(p *Pool) AccumulatorOption {
	return func(a *Accumulator) {
		a.pool = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) AccumulatorOption {
	return func(a *Accumulator) {
		if l != nil {
			a.log = l.WithComponent("propagate")
		}
	}
}

// NewAccumulator creates an accumulator resolving listeners from reg.
func NewAccumulator(reg *Registry, opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{
		registry: reg,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Emit implements gesture.Emitter. Listeners are resolved now, so listeners
// added or removed before Flush do not affect this descriptor. A descriptor
// whose target is not a *Node is queued with no dispatches.
func (a *Accumulator) Emit(d *gesture.Descriptor) {
	if d == nil {
		return
	}

	p := pending{desc: d}
	if target, ok := d.Target.(*Node); ok && target != nil {
		p.target = target
		p.dispatches = a.twoPhase(target, d.Phases)
	}
	a.queue = append(a.queue, p)
}

// twoPhase lists capture listeners root to target, then bubble listeners
// target to root.
func (a *Accumulator) twoPhase(target *Node, names gesture.PhasedNames) []dispatch {
	path := target.Path()
	var out []dispatch

	if names.Captured != "" {
		for _, n := range path {
			for _, l := range a.registry.Listeners(n, names.Captured) {
				out = append(out, dispatch{node: n, name: names.Captured, phase: PhaseCapture, listener: l})
			}
		}
	}
	if names.Bubbled != "" {
		for i := len(path) - 1; i >= 0; i-- {
			n := path[i]
			for _, l := range a.registry.Listeners(n, names.Bubbled) {
				out = append(out, dispatch{node: n, name: names.Bubbled, phase: PhaseBubble, listener: l})
			}
		}
	}
	return out
}

// Pending returns the number of queued descriptors.
func (a *Accumulator) Pending() int {
	return len(a.queue)
}

// Flush delivers every queued descriptor in emit order and reclaims it. It
// returns the listener failures joined with errors.Join. When ctx is done the
// remaining dispatches are skipped, their descriptors are still reclaimed,
// and ctx.Err() is included in the result.
func (a *Accumulator) Flush(ctx context.Context) error {
	queue := a.queue
	a.queue = nil

	var errs []error
	for _, p := range queue {
		if err := ctx.Err(); err != nil {
			a.reclaim(p.desc)
			continue
		}
		errs = append(errs, a.deliver(ctx, p)...)
		a.reclaim(p.desc)
	}
	if err := ctx.Err(); err != nil && len(queue) > 0 {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *Accumulator) reclaim(d *gesture.Descriptor) {
	if a.pool != nil {
		a.pool.Put(d)
	}
}

func (a *Accumulator) deliver(ctx context.Context, p pending) []error {
	ev := &Event{Tap: p.desc, Target: p.target}

	var errs []error
	for _, d := range p.dispatches {
		if ev.stopped || ctx.Err() != nil {
			break
		}
		ev.CurrentTarget = d.node
		ev.Phase = d.phase
		if err := a.call(ctx, ev, d); err != nil {
			a.log.Warn("%v", err)
			errs = append(errs, err)
		}
	}
	ev.CurrentTarget = nil
	ev.Phase = PhaseNone
	return errs
}

// call runs one listener with panic recovery.
func (a *Accumulator) call(ctx context.Context, ev *Event, d dispatch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Node:  d.node.String(),
				Name:  d.name,
				Value: r,
				Stack: debug.Stack(),
			}
		}
	}()

	if lerr := d.listener.HandleTap(ctx, ev); lerr != nil {
		return &ListenerError{Node: d.node.String(), Name: d.name, Err: lerr}
	}
	return nil
}
