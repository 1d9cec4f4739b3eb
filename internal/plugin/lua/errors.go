package lua

import "errors"

var (
	// ErrHostClosed is returned when using a closed host.
	ErrHostClosed = errors.New("lua host is closed")

	// ErrScript wraps errors raised by Lua code.
	ErrScript = errors.New("lua script error")
)
