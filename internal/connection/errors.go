package connection

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by command methods invoked while the
// port is not in the Connected state. It is local and synchronous; it
// never forces a state transition.
var ErrNotConnected = errors.New("connection: not connected")

// ConnectionError reports that a handshake could not be established.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection: connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SendError reports that the transport rejected an already-validated
// frame. Like ErrNotConnected it is local; only transport-detected
// link loss moves the state machine.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("connection: sending frame: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
