package replay

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/taptrack/internal/input/gesture"
)

// Recorder writes events as recording lines that Reader can read back.
type Recorder struct {
	mu    sync.Mutex
	w     io.Writer
	name  func(target any) string
	now   func() time.Time
	count int
	err   error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithTargetName sets how targets become recorded paths. The default uses
// fmt.Sprint for non-nil targets.
func WithTargetName(fn func(target any) string) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.name = fn
		}
	}
}

// WithRecordClock sets the clock used for events without a timestamp.
func WithRecordClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		w: w,
		name: func(target any) string {
			if target == nil {
				return ""
			}
			return fmt.Sprint(target)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record writes one event. EventNone is not recorded.
func (r *Recorder) Record(eventType gesture.EventType, target any, native gesture.NativeEvent) error {
	if eventType == gesture.EventNone {
		return nil
	}

	line, err := r.encode(eventType, target, native)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, err := r.w.Write(append(line, '\n')); err != nil {
		r.err = fmt.Errorf("writing recording: %w", err)
		return r.err
	}
	r.count++
	return nil
}

func (r *Recorder) encode(eventType gesture.EventType, target any, native gesture.NativeEvent) ([]byte, error) {
	ts := native.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}

	line := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			line, err = sjson.SetBytes(line, path, value)
		}
	}

	set("type", eventType.String())
	set("t", ts.UnixMilli())
	if name := r.name(target); name != "" {
		set("target", name)
	}
	if native.Page != nil {
		set("pageX", native.Page.X)
		set("pageY", native.Page.Y)
	}
	if len(native.Touches) > 0 && err == nil {
		line, err = sjson.SetRawBytes(line, "touches", encodeTouches(native.Touches))
	}
	return line, err
}

func encodeTouches(touches []gesture.Point) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range touches {
		if i > 0 {
			buf.WriteByte(',')
		}
		obj, _ := sjson.SetBytes([]byte(`{}`), "pageX", p.X)
		obj, _ = sjson.SetBytes(obj, "pageY", p.Y)
		buf.Write(obj)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// Count returns the number of lines written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wrap returns a Sink that records each event before passing it to sink.
// Write failures are kept in Err and do not interrupt input.
func (r *Recorder) Wrap(sink Sink) Sink {
	return &recordingSink{rec: r, next: sink}
}

type recordingSink struct {
	rec  *Recorder
	next Sink
}

func (s *recordingSink) Process(eventType gesture.EventType, target any, native gesture.NativeEvent, nativeTarget any) *gesture.Descriptor {
	_ = s.rec.Record(eventType, target, native)
	return s.next.Process(eventType, target, native, nativeTarget)
}
