package backend

import (
	"errors"
	"fmt"
)

// TransportError represents a network or HTTP-level failure talking to the
// council server. The outcome of the underlying call is unknown, so callers
// must never retry a submitted turn behind one of these.
type TransportError struct {
	Op  string // "list sessions", "submit turn", ...
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError means the backend does not recognize the referenced session.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %q not known to backend", e.SessionID)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsTransport reports whether err is a TransportError anywhere in its chain.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
