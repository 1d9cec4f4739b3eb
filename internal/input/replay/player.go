package replay

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/logging"
)

// Clock is a manually advanced clock. Pass Clock.Now to gesture.WithClock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// Now returns the current reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Sink receives replayed events. *gesture.Recognizer is a Sink.
type Sink interface {
	Process(eventType gesture.EventType, target any, native gesture.NativeEvent, nativeTarget any) *gesture.Descriptor
}

// Summary counts what a playback did.
type Summary struct {
	Records int
	Skipped int
	Invalid int
	Taps    int
}

// Player feeds records to a Sink.
type Player struct {
	sink    Sink
	clock   *Clock
	resolve func(target string) any
	log     *logging.Logger

	strict     bool
	onTap      func(rec Record, d *gesture.Descriptor)
	afterEvent func(ctx context.Context) error
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithResolver maps record target paths to gesture targets. By default the
// path string itself is the target.
func WithResolver(fn func(target string) any) PlayerOption {
	return func(p *Player) {
		if fn != nil {
			p.resolve = fn
		}
	}
}

// WithTapHandler is called for every tap, before the after-event hook.
func WithTapHandler(fn func(rec Record, d *gesture.Descriptor)) PlayerOption {
	return func(p *Player) {
		p.onTap = fn
	}
}

// WithAfterEvent sets a hook run after every record reaches the sink. Its
// error aborts playback.
func WithAfterEvent(fn func(ctx context.Context) error) PlayerOption {
	return func(p *Player) {
		p.afterEvent = fn
	}
}

// WithStrict makes malformed lines abort playback instead of being skipped.
func WithStrict(strict bool) PlayerOption {
	return func(p *Player) {
		p.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.log = l.WithComponent("replay")
		}
	}
}

// NewPlayer creates a player. clock must be the clock the sink reads.
func NewPlayer(sink Sink, clock *Clock, opts ...PlayerOption) *Player {
	p := &Player{
		sink:    sink,
		clock:   clock,
		resolve: func(target string) any { return target },
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play reads r to the end, feeding each record to the sink.
func (p *Player) Play(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary
	rd := NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		var lerr *LineError
		if errors.As(err, &lerr) && !p.strict {
			sum.Invalid++
			p.log.Warn("skipping %v", lerr)
			continue
		}
		if err != nil {
			return sum, err
		}

		if err := p.playRecord(ctx, rec, &sum); err != nil {
			return sum, err
		}
	}
}

// PlayRecords feeds already parsed records to the sink.
func (p *Player) PlayRecords(ctx context.Context, recs []Record) (Summary, error) {
	var sum Summary
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := p.playRecord(ctx, rec, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (p *Player) playRecord(ctx context.Context, rec Record, sum *Summary) error {
	sum.Records++
	if rec.Type == gesture.EventNone {
		sum.Skipped++
		p.log.Debug("line %d: unknown type %q", rec.Line, rec.TypeName)
		return nil
	}

	p.clock.Set(rec.Time)

	var target any
	if rec.Target != "" {
		target = p.resolve(rec.Target)
	}

	if d := p.sink.Process(rec.Type, target, rec.Native, rec.Target); d != nil {
		sum.Taps++
		if p.onTap != nil {
			p.onTap(rec, d)
		}
	}

	if p.afterEvent != nil {
		return p.afterEvent(ctx)
	}
	return nil
}
