package connection

import "context"

// Transport establishes links to the Engine. The production transport
// is WebSocket (NewWebSocketTransport); tests use conntest.Transport.
type Transport interface {
	// Dial performs the handshake and starts delivering inbound frames
	// to h. It blocks until the handshake completes or ctx is done.
	//
	// Postcondition: on success the returned Link is open and h will
	// receive every inbound frame in arrival order, followed by exactly
	// one HandleClose when the link dies.
	Dial(ctx context.Context, url string, h FrameHandler) (Link, error)
}

// FrameHandler receives transport deliveries. Implemented by the
// Client; transports never invoke application callbacks directly.
type FrameHandler interface {
	// HandleFrame delivers one inbound frame. Calls are sequential:
	// the transport must not invoke HandleFrame concurrently with
	// itself or with HandleClose.
	HandleFrame(data []byte)

	// HandleClose reports link loss. err is nil for a clean remote
	// close. Called at most once, after the final HandleFrame.
	HandleClose(err error)
}

// Link is an established connection accepting outbound frames.
type Link interface {
	// Send writes one frame. Safe for sequential use; the Client
	// serializes callers.
	Send(data []byte) error

	// Close tears the link down. Idempotent.
	Close() error
}
