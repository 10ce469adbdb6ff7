package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the Engine.
	wsWriteWait = 10 * time.Second

	// Maximum inbound frame size. World snapshots are the largest
	// frames the Engine sends.
	wsMaxFrameSize = 1 << 20

	wsHandshakeTimeout = 15 * time.Second
)

// WebSocketTransport dials the Engine over WebSocket and pumps inbound
// text frames to the FrameHandler.
type WebSocketTransport struct {
	dialer *websocket.Dialer
	logger *zap.Logger
}

var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport creates the production transport.
func NewWebSocketTransport(logger *zap.Logger) *WebSocketTransport {
	return &WebSocketTransport{
		dialer: &websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout},
		logger: logger,
	}
}

// Dial performs the WebSocket handshake and starts the read pump.
//
// Postcondition: on success, h receives frames in arrival order on a
// single goroutine, then exactly one HandleClose.
func (t *WebSocketTransport) Dial(ctx context.Context, url string, h FrameHandler) (Link, error) {
	conn, _, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	conn.SetReadLimit(wsMaxFrameSize)

	l := &wsLink{conn: conn}
	go l.readPump(h, t.logger)
	return l, nil
}

// wsLink is one established WebSocket connection.
type wsLink struct {
	conn *websocket.Conn

	// writeMu upholds gorilla's single-writer requirement; the Client
	// additionally serializes Send calls for ordering.
	writeMu   sync.Mutex
	closeOnce sync.Once
}

var _ Link = (*wsLink)(nil)

func (l *wsLink) Send(data []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_ = l.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return l.conn.WriteMessage(websocket.TextMessage, data)
}

func (l *wsLink) Close() error {
	l.closeOnce.Do(func() {
		l.writeMu.Lock()
		_ = l.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = l.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		l.writeMu.Unlock()
		_ = l.conn.Close()
	})
	return nil
}

// readPump delivers inbound frames until the connection dies, then
// reports the close exactly once.
func (l *wsLink) readPump(h FrameHandler, logger *zap.Logger) {
	defer l.Close()
	for {
		msgType, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.HandleClose(nil)
			} else {
				h.HandleClose(err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			logger.Debug("ignoring non-text frame", zap.Int("frame_type", msgType))
			continue
		}
		h.HandleFrame(data)
	}
}
