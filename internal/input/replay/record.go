package replay

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/taptrack/internal/input/gesture"
)

// Record is one recorded event.
type Record struct {
	// Line is the 1-based source line.
	Line int

	// Type is the canonical event type. EventNone when TypeName is unknown.
	Type gesture.EventType

	// TypeName is the type as written.
	TypeName string

	// Time is the recorded time.
	Time time.Time

	// Target is the target path, possibly empty.
	Target string

	Native gesture.NativeEvent
}

// ParseLine parses one JSON line. It returns ok=false for blank and comment
// lines.
func ParseLine(lineNo int, line string) (rec Record, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Record{}, false, nil
	}
	if !gjson.Valid(line) {
		return Record{}, false, &LineError{Line: lineNo, Err: ErrInvalidJSON}
	}

	root := gjson.Parse(line)
	if !root.IsObject() {
		return Record{}, false, &LineError{Line: lineNo, Err: ErrInvalidJSON}
	}

	typ := root.Get("type")
	if typ.Type != gjson.String {
		return Record{}, false, &LineError{Line: lineNo, Err: fmt.Errorf("%w: type", ErrMissingField)}
	}
	ts := root.Get("t")
	if ts.Type != gjson.Number {
		return Record{}, false, &LineError{Line: lineNo, Err: fmt.Errorf("%w: t", ErrMissingField)}
	}

	rec = Record{
		Line:     lineNo,
		TypeName: typ.String(),
		Time:     time.UnixMilli(ts.Int()),
		Target:   root.Get("target").String(),
	}
	rec.Type, _ = gesture.ParseEventType(rec.TypeName)
	rec.Native.Timestamp = rec.Time
	rec.Native.Raw = line

	x, y := root.Get("pageX"), root.Get("pageY")
	if x.Type == gjson.Number && y.Type == gjson.Number {
		rec.Native.Page = &gesture.Point{X: x.Float(), Y: y.Float()}
	}

	touches := root.Get("touches")
	if touches.Exists() && touches.Type != gjson.Null && !touches.IsArray() {
		return Record{}, false, &LineError{Line: lineNo, Err: fmt.Errorf("%w: touches is not an array", ErrInvalidJSON)}
	}
	for _, tp := range touches.Array() {
		rec.Native.Touches = append(rec.Native.Touches, gesture.Point{
			X: tp.Get("pageX").Float(),
			Y: tp.Get("pageY").Float(),
		})
	}

	return rec, true, nil
}

// Reader reads records from JSON lines.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record. It returns io.EOF at the end of input and a
// *LineError for a malformed line; reading may continue after a LineError.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		rec, ok, err := ParseLine(r.line, r.scanner.Text())
		if err != nil {
			return Record{}, err
		}
		if ok {
			return rec, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading recording: %w", err)
	}
	return Record{}, io.EOF
}

// ReadAll reads every record, stopping at the first malformed line.
func ReadAll(r io.Reader) ([]Record, error) {
	rd := NewReader(r)
	var out []Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
