package app

import "errors"

// ErrClosed is returned when using a closed application.
var ErrClosed = errors.New("application closed")

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
