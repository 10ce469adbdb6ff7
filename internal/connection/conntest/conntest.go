// Package conntest provides deterministic in-memory doubles for the
// connection layer: a Transport whose links record every outbound
// frame and can synthetically push inbound frames or drop the link,
// and a recording Port for facade-level tests. No real network is
// involved anywhere.
package conntest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

// Transport is an in-memory connection.Transport. Each Dial hands out
// a fresh Link; SetDialErr makes handshakes fail.
type Transport struct {
	mu      sync.Mutex
	links   []*Link
	dialErr error
}

var _ connection.Transport = (*Transport)(nil)

// SetDialErr makes every subsequent Dial fail with err; nil restores
// success. Safe to call while a retry loop is dialing.
func (t *Transport) SetDialErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialErr = err
}

// Dial returns a new open Link, or the configured dial error.
func (t *Transport) Dial(_ context.Context, _ string, h connection.FrameHandler) (connection.Link, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	l := &Link{handler: h}
	t.links = append(t.links, l)
	return l, nil
}

// DialCount returns how many handshakes completed.
func (t *Transport) DialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.links)
}

// LastLink returns the most recently dialed Link.
//
// Precondition: at least one Dial has succeeded.
func (t *Transport) LastLink() *Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.links) == 0 {
		panic("conntest: LastLink called before any Dial")
	}
	return t.links[len(t.links)-1]
}

// Link records outbound frames and lets tests drive inbound traffic.
type Link struct {
	mu      sync.Mutex
	handler connection.FrameHandler
	frames  [][]byte
	closed  bool
	SendErr error
}

var _ connection.Link = (*Link)(nil)

// Send records the frame, or fails with SendErr when set.
func (l *Link) Send(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SendErr != nil {
		return l.SendErr
	}
	if l.closed {
		return fmt.Errorf("conntest: send on closed link")
	}
	copied := append([]byte(nil), data...)
	l.frames = append(l.frames, copied)
	return nil
}

// Close marks the link closed. It does not report link loss; use
// DropLink to simulate that.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close was called.
func (l *Link) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Frames returns copies of every recorded outbound frame, in send
// order.
func (l *Link) Frames() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.frames))
	for i, f := range l.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// FrameTypes returns the "type" discriminant of every recorded frame,
// in send order.
func (l *Link) FrameTypes() []protocol.MessageType {
	frames := l.Frames()
	types := make([]protocol.MessageType, 0, len(frames))
	for _, f := range frames {
		t, err := protocol.PeekType(f)
		if err != nil {
			t = "<invalid>"
		}
		types = append(types, t)
	}
	return types
}

// DecodedFrames returns every recorded frame decoded into a generic
// map, in send order.
func (l *Link) DecodedFrames() []map[string]any {
	frames := l.Frames()
	out := make([]map[string]any, 0, len(frames))
	for _, f := range frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			m = map[string]any{"_decode_error": err.Error()}
		}
		out = append(out, m)
	}
	return out
}

// PushFrame delivers an inbound frame to the client, synchronously.
func (l *Link) PushFrame(data []byte) {
	l.handler.HandleFrame(data)
}

// PushEvent marshals payload, wraps it with the given type
// discriminant, and delivers it as an inbound frame.
//
// Precondition: payload must marshal to a JSON object (or be nil).
func (l *Link) PushEvent(eventType protocol.EventType, payload any) {
	body := map[string]any{"type": string(eventType)}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			panic(fmt.Sprintf("conntest: marshalling %s payload: %v", eventType, err))
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			panic(fmt.Sprintf("conntest: %s payload is not a JSON object: %v", eventType, err))
		}
		body["type"] = string(eventType)
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("conntest: marshalling %s frame: %v", eventType, err))
	}
	l.PushFrame(data)
}

// DropLink simulates transport-detected link loss.
func (l *Link) DropLink(err error) {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.handler.HandleClose(err)
}
