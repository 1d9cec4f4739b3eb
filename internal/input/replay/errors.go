package replay

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidJSON is returned for a line that is not a JSON object.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrMissingField is returned when a required field is absent or has the
	// wrong type.
	ErrMissingField = errors.New("missing field")
)

// LineError reports a malformed line.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
