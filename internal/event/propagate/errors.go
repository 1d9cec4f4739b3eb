package propagate

import "errors"

var (
	// ErrNilNode is returned when registering on a nil node.
	ErrNilNode = errors.New("node cannot be nil")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrEmptyName is returned when registering without a registration name.
	ErrEmptyName = errors.New("registration name cannot be empty")

	// ErrListenerPanic matches *PanicError with errors.Is.
	ErrListenerPanic = errors.New("listener panicked")
)

// ListenerError wraps an error returned by a listener.
type ListenerError struct {
	// Node is the node the listener was registered on.
	Node string

	// Name is the registration name.
	Name string

	// Err is the listener's error.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return "listener " + e.Name + " on " + e.Node + ": " + e.Err.Error()
}

// Unwrap returns the listener's error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError reports a recovered listener panic.
type PanicError struct {
	Node  string
	Name  string
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "listener " + e.Name + " on " + e.Node + " panicked"
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
