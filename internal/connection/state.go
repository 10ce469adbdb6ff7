// Package connection implements the realtime session link to the
// Engine: the lifecycle state machine, the command port, and the
// inbound frame router. One implementation serves both concurrency
// profiles (see Profile); the transport is pluggable so tests can
// drive every transition without a network.
package connection

// State is the connection lifecycle state. Exactly one value is held
// at a time and transitions are the only way to change it.
type State int

const (
	// Disconnected is the initial state and the result of Disconnect
	// from any state.
	Disconnected State = iota
	// Connecting means a handshake is in flight.
	Connecting
	// Connected means the link is established and commands may be sent.
	Connected
	// Reconnecting means the transport lost the link without an
	// explicit Disconnect. Presented to users as transient.
	Reconnecting
	// Failed means a handshake failed or the retry policy gave up.
	// FailReason carries the display message.
	Failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	}
	return "unknown"
}
