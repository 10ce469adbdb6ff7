package connection_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tbellingham/stagecraft/internal/connection"
)

// collectingHandler records frames and closes for assertions.
type collectingHandler struct {
	mu       sync.Mutex
	frames   []string
	closed   bool
	closeErr error
	done     chan struct{}
}

func newCollectingHandler() *collectingHandler {
	return &collectingHandler{done: make(chan struct{})}
}

func (h *collectingHandler) HandleFrame(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, string(data))
}

func (h *collectingHandler) HandleClose(err error) {
	h.mu.Lock()
	h.closed = true
	h.closeErr = err
	h.mu.Unlock()
	close(h.done)
}

func (h *collectingHandler) Frames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.frames...)
}

func (h *collectingHandler) waitClosed(t *testing.T) error {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for HandleClose")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeErr
}

// echoServer upgrades one connection, echoes every text frame back,
// and exits when the client closes.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketTransport_DialFailure(t *testing.T) {
	transport := connection.NewWebSocketTransport(zaptest.NewLogger(t))
	_, err := transport.Dial(context.Background(), "ws://127.0.0.1:1/ws", newCollectingHandler())
	assert.Error(t, err)
}

func TestWebSocketTransport_SendAndReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	transport := connection.NewWebSocketTransport(zaptest.NewLogger(t))
	handler := newCollectingHandler()
	link, err := transport.Dial(context.Background(), wsURL(srv), handler)
	require.NoError(t, err)
	defer link.Close()

	require.NoError(t, link.Send([]byte(`{"type":"Heartbeat"}`)))
	require.NoError(t, link.Send([]byte(`{"type":"JoinSession","user_id":"a","role":"Player"}`)))

	require.Eventually(t, func() bool {
		return len(handler.Frames()) == 2
	}, 5*time.Second, 10*time.Millisecond, "echoed frames should come back")

	frames := handler.Frames()
	assert.Equal(t, `{"type":"Heartbeat"}`, frames[0], "arrival order matches send order")
}

func TestWebSocketTransport_ServerCloseReportsHandleClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}))
	defer srv.Close()

	transport := connection.NewWebSocketTransport(zaptest.NewLogger(t))
	handler := newCollectingHandler()
	link, err := transport.Dial(context.Background(), wsURL(srv), handler)
	require.NoError(t, err)
	defer link.Close()

	err = handler.waitClosed(t)
	assert.NoError(t, err, "a normal server close is not an error")
}

func TestWebSocketTransport_AbruptDropReportsError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the TCP connection without a close handshake.
		_ = conn.UnderlyingConn().Close()
	}))
	defer srv.Close()

	transport := connection.NewWebSocketTransport(zaptest.NewLogger(t))
	handler := newCollectingHandler()
	link, err := transport.Dial(context.Background(), wsURL(srv), handler)
	require.NoError(t, err)
	defer link.Close()

	err = handler.waitClosed(t)
	assert.Error(t, err, "an abrupt drop surfaces the transport error")
}

func TestWebSocketLink_CloseIsIdempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	transport := connection.NewWebSocketTransport(zaptest.NewLogger(t))
	handler := newCollectingHandler()
	link, err := transport.Dial(context.Background(), wsURL(srv), handler)
	require.NoError(t, err)

	assert.NoError(t, link.Close())
	assert.NoError(t, link.Close())
}
