// Package dispatch types the Engine's inbound frames. The connection
// layer delivers opaque envelopes; this package reads the "type"
// discriminant, decodes the matching payload, and invokes per-event
// handlers. It is the only place that branches on event kinds, keeping
// the transport core decoupled from the application event taxonomy.
package dispatch

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

// SessionBinder receives the server-assigned session id from a
// SessionJoined acknowledgment. Implemented by *connection.Client.
type SessionBinder interface {
	SetSessionID(id string)
}

// Handlers holds one optional handler per event type. Nil handlers
// drop their events silently; Unknown (when set) sees every frame
// whose discriminant matches nothing here.
type Handlers struct {
	SessionJoined     func(protocol.SessionJoined)
	PlayerJoined      func(protocol.PlayerJoined)
	PlayerLeft        func(protocol.PlayerLeft)
	ActionReceived    func(protocol.ActionReceived)
	SceneUpdate       func(protocol.SceneUpdate)
	Dialogue          func(protocol.DialogueResponse)
	LLMProcessing     func(protocol.LLMProcessing)
	ApprovalRequired  func(protocol.PendingApproval)
	ResponseApproved  func(protocol.ResponseApproved)
	ChallengePrompt   func(protocol.ChallengePrompt)
	ChallengeResolved func(protocol.ChallengeResolved)
	EngineError       func(protocol.ErrorEvent)
	Pong              func()
	Unknown           func(eventType protocol.EventType, raw json.RawMessage)
}

// Dispatcher decodes inbound frames and fans them out to Handlers.
type Dispatcher struct {
	binder   SessionBinder
	handlers Handlers
	logger   *zap.Logger
}

// New creates a Dispatcher. binder may be nil when no session identity
// bookkeeping is wanted.
func New(binder SessionBinder, handlers Handlers, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{binder: binder, handlers: handlers, logger: logger}
}

// Bind installs the dispatcher as the port's message observer. Note
// the port's replace-not-append slot semantics: Bind displaces any
// previously registered observer.
func (d *Dispatcher) Bind(port connection.Port) {
	port.OnMessage(d.Dispatch)
}

// Dispatch routes one raw frame. Undecodable frames and unknown event
// types are logged and skipped, never fatal: the Engine may ship event
// types this client predates.
func (d *Dispatcher) Dispatch(raw json.RawMessage) {
	eventType, err := protocol.PeekType(raw)
	if err != nil {
		d.logger.Warn("dropping undecodable frame", zap.Error(err))
		return
	}

	switch protocol.EventType(eventType) {
	case protocol.EventSessionJoined:
		decodeInto(d, raw, eventType, func(ev protocol.SessionJoined) {
			// Identity is committed before the handler runs, so a
			// handler reading the session sees the id it is being told
			// about.
			if d.binder != nil {
				d.binder.SetSessionID(ev.SessionID)
			}
			if d.handlers.SessionJoined != nil {
				d.handlers.SessionJoined(ev)
			}
		})
	case protocol.EventPlayerJoined:
		decodeInto(d, raw, eventType, d.handlers.PlayerJoined)
	case protocol.EventPlayerLeft:
		decodeInto(d, raw, eventType, d.handlers.PlayerLeft)
	case protocol.EventActionReceived:
		decodeInto(d, raw, eventType, d.handlers.ActionReceived)
	case protocol.EventSceneUpdate:
		decodeInto(d, raw, eventType, d.handlers.SceneUpdate)
	case protocol.EventDialogueResponse:
		decodeInto(d, raw, eventType, d.handlers.Dialogue)
	case protocol.EventLLMProcessing:
		decodeInto(d, raw, eventType, d.handlers.LLMProcessing)
	case protocol.EventApprovalRequired:
		decodeInto(d, raw, eventType, d.handlers.ApprovalRequired)
	case protocol.EventResponseApproved:
		decodeInto(d, raw, eventType, d.handlers.ResponseApproved)
	case protocol.EventChallengePrompt:
		decodeInto(d, raw, eventType, d.handlers.ChallengePrompt)
	case protocol.EventChallengeResolved:
		decodeInto(d, raw, eventType, d.handlers.ChallengeResolved)
	case protocol.EventError:
		decodeInto(d, raw, eventType, d.handlers.EngineError)
	case protocol.EventPong:
		if d.handlers.Pong != nil {
			d.handlers.Pong()
		}
	default:
		if d.handlers.Unknown != nil {
			d.handlers.Unknown(protocol.EventType(eventType), raw)
			return
		}
		d.logger.Debug("no handler for event type", zap.String("event_type", string(eventType)))
	}
}

// decodeInto unmarshals raw into T and invokes handler. Decode errors
// are logged and the frame dropped.
func decodeInto[T any](d *Dispatcher, raw json.RawMessage, eventType protocol.MessageType, handler func(T)) {
	if handler == nil {
		return
	}
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		d.logger.Warn("dropping malformed event",
			zap.String("event_type", string(eventType)),
			zap.Error(fmt.Errorf("decoding payload: %w", err)),
		)
		return
	}
	handler(payload)
}
