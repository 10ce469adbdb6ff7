package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tbellingham/stagecraft/internal/dice"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

// SessionInfo is the identity established by a session join: set when
// JoinSession's frame is accepted (user id, role) and completed when
// the dispatcher records the server-assigned session id. Cleared on
// disconnect.
type SessionInfo struct {
	SessionID string
	UserID    string
	Role      protocol.ParticipantRole
}

// Client is the concrete Port over a pluggable Transport.
//
// Invariant: state transitions and identity changes commit before the
// state callback announcing them runs, so a callback reading State()
// or Session() observes the post-transition world.
//
// Invariant: callback slot mutation and callback invocation share one
// critical section (cbMu); a racing re-registration can never corrupt
// or duplicate a dispatch.
type Client struct {
	url       string
	transport Transport
	logger    *zap.Logger
	profile   Profile
	rolls     dice.Source

	// mu guards the state machine, the live link, the dial generation,
	// and the session identity.
	mu         sync.Locker
	state      State
	failReason string
	link       Link
	gen        uint64
	session    SessionInfo

	// cbMu guards the callback slots and serializes every invocation.
	cbMu      sync.Locker
	onState   StateCallback
	onMessage MessageCallback

	// sendMu preserves per-port frame order end-to-end.
	sendMu sync.Locker
}

var _ Port = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default WebSocket transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithProfile selects the concurrency profile. Default is Threaded.
func WithProfile(p Profile) Option {
	return func(c *Client) { c.profile = p }
}

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRollSource replaces the randomness source used for formula
// rolls. Tests use a deterministic source.
func WithRollSource(src dice.Source) Option {
	return func(c *Client) { c.rolls = src }
}

// New creates a disconnected Client for the given Engine URL.
//
// Postcondition: State() == Disconnected and no callbacks are set.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:     url,
		profile: Threaded,
		logger:  zap.NewNop(),
		rolls:   dice.NewCryptoSource(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewWebSocketTransport(c.logger)
	}
	c.mu = c.profile.newLocker()
	c.cbMu = c.profile.newLocker()
	c.sendMu = c.profile.newLocker()
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// URL returns the configured Engine endpoint.
func (c *Client) URL() string { return c.url }

// FailReason returns the human-readable message attached to the Failed
// state, or "" outside it.
func (c *Client) FailReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failReason
}

// Session returns the current session identity. ok is false before a
// join frame has been accepted or after a disconnect.
func (c *Client) Session() (info SessionInfo, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.session.UserID != ""
}

// SetSessionID records the server-assigned session id from a
// SessionJoined acknowledgment. Called by the dispatch layer before it
// hands the event to application code, so handlers observing the event
// already see the identity.
func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.SessionID = id
}

// Connect establishes the link, blocking until the handshake completes
// or fails. No-op while Connecting or Connected. From Reconnecting it
// performs the re-handshake without announcing a spurious Connecting
// transition; on failure it stays Reconnecting and leaves the give-up
// decision to the retry policy owner (see Fail).
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Connecting || c.state == Connected {
		c.mu.Unlock()
		return nil
	}
	fromReconnecting := c.state == Reconnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if !fromReconnecting {
		c.transition(gen, Connecting, "")
	}

	link, err := c.transport.Dial(ctx, c.url, &frameHandler{c: c, gen: gen})
	if err != nil {
		connErr := &ConnectionError{URL: c.url, Err: err}
		if fromReconnecting {
			return connErr
		}
		c.transition(gen, Failed, connErr.Error())
		return connErr
	}

	c.mu.Lock()
	if c.gen != gen || c.state == Disconnected {
		// Disconnect won the race mid-handshake; drop the fresh link.
		c.mu.Unlock()
		_ = link.Close()
		return nil
	}
	c.link = link
	c.mu.Unlock()

	c.transition(gen, Connected, "")
	return nil
}

// Disconnect tears the link down and commits Disconnected, clearing
// the session identity. Idempotent and infallible; it takes effect
// immediately even while a Connect or send is in flight.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	link := c.link
	c.link = nil
	c.mu.Unlock()

	if link != nil {
		_ = link.Close()
	}
	c.transition(0, Disconnected, "")
}

// Fail commits Reconnecting→Failed. The retry loop itself lives
// outside this package (reconnect.Supervisor); the state machine only
// exposes the transition. No-op outside Reconnecting.
func (c *Client) Fail(reason string) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if c.state != Reconnecting {
		c.mu.Unlock()
		return
	}
	c.state = Failed
	c.failReason = reason
	c.link = nil
	c.mu.Unlock()

	c.logger.Warn("connection failed", zap.String("reason", reason))
	if c.onState != nil {
		c.safely("state", func() { c.onState(Failed) })
	}
}

// JoinSession sends a join frame and records the local half of the
// session identity. The session id arrives later via the event
// channel.
func (c *Client) JoinSession(userID string, role protocol.ParticipantRole) error {
	if err := c.send(protocol.NewJoinSession(userID, role)); err != nil {
		return err
	}
	c.mu.Lock()
	c.session = SessionInfo{UserID: userID, Role: role}
	c.mu.Unlock()
	return nil
}

// SendAction sends a player action frame. "" omits target or dialogue.
func (c *Client) SendAction(actionType, target, dialogue string) error {
	return c.send(protocol.NewPlayerAction(actionType, target, dialogue))
}

// RequestSceneChange sends a scene change request frame.
func (c *Client) RequestSceneChange(sceneID string) error {
	return c.send(protocol.NewRequestSceneChange(sceneID))
}

// SendDirectorialUpdate sends a full-replace directorial context frame.
func (c *Client) SendDirectorialUpdate(dctx protocol.DirectorialContext) error {
	return c.send(protocol.NewDirectorialUpdate(dctx))
}

// SendApprovalDecision sends the DM's decision for one request id.
// Unknown or already-resolved ids are accepted here; the server judges.
func (c *Client) SendApprovalDecision(requestID string, decision protocol.ApprovalDecision) error {
	if err := decision.Validate(); err != nil {
		return err
	}
	return c.send(protocol.NewApprovalDecision(requestID, decision))
}

// TriggerChallenge sends a challenge trigger frame.
func (c *Client) TriggerChallenge(challengeID, targetCharacterID string) error {
	return c.send(protocol.NewTriggerChallenge(challengeID, targetCharacterID))
}

// SubmitChallengeRoll sends a literal roll value.
func (c *Client) SubmitChallengeRoll(challengeID string, roll int) error {
	return c.send(protocol.NewChallengeRoll(challengeID, roll))
}

// SubmitChallengeRollInput sends a roll from either a manual value or
// a dice formula evaluated client-side.
func (c *Client) SubmitChallengeRollInput(challengeID string, input protocol.RollInput) error {
	switch in := input.(type) {
	case protocol.ManualRoll:
		return c.SubmitChallengeRoll(challengeID, in.Value)
	case protocol.FormulaRoll:
		result, err := dice.RollExpr(in.Expression, c.rolls)
		if err != nil {
			return fmt.Errorf("connection: evaluating roll formula: %w", err)
		}
		c.logger.Debug("formula roll evaluated",
			zap.String("challenge_id", challengeID),
			zap.String("audit", result.String()),
		)
		return c.SubmitChallengeRoll(challengeID, result.Total())
	case nil:
		return fmt.Errorf("connection: nil roll input")
	default:
		return fmt.Errorf("connection: unsupported roll input type %T", input)
	}
}

// Heartbeat sends a keepalive ping. Outside Connected it returns
// ErrNotConnected. A transport write failure is deliberately not
// returned; the link loss it implies is announced on the state-change
// channel instead.
func (c *Client) Heartbeat() error {
	err := c.send(protocol.NewHeartbeat())
	if err == nil || errors.Is(err, ErrNotConnected) {
		return err
	}
	c.logger.Debug("heartbeat write failed", zap.Error(err))
	return nil
}

// OnStateChange registers the single state observer, replacing any
// previous one. In the Threaded profile the callback may run on any
// goroutine; it must not call Connect, Disconnect, or the registration
// methods synchronously (hand that to another goroutine).
func (c *Client) OnStateChange(cb StateCallback) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onState = cb
}

// OnMessage registers the single message observer, replacing any
// previous one. Same reentrancy rule as OnStateChange.
func (c *Client) OnMessage(cb MessageCallback) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onMessage = cb
}

// send validates connectivity, encodes msg, and writes it to the link
// under the send lock so frames leave in call order.
func (c *Client) send(msg any) error {
	c.mu.Lock()
	if c.state != Connected || c.link == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	link := c.link
	c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return &SendError{Err: err}
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := link.Send(data); err != nil {
		return &SendError{Err: err}
	}
	return nil
}

// transition commits a state change and then notifies the observer.
// gen != 0 makes the transition conditional on the dial generation
// still being current, so a completed Disconnect wins every race.
func (c *Client) transition(gen uint64, next State, reason string) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if gen != 0 && c.gen != gen {
		c.mu.Unlock()
		return
	}
	if c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.failReason = reason
	if next == Disconnected {
		c.session = SessionInfo{}
	}
	c.mu.Unlock()

	c.logger.Debug("connection state changed", zap.Stringer("state", next))
	if c.onState != nil {
		c.safely("state", func() { c.onState(next) })
	}
}

// linkLost handles transport-detected link loss: Connected becomes
// Reconnecting. Stale generations (the user already disconnected or
// redialed) are ignored.
func (c *Client) linkLost(gen uint64, err error) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if c.gen != gen || c.state != Connected {
		c.mu.Unlock()
		return
	}
	c.state = Reconnecting
	c.link = nil
	c.mu.Unlock()

	c.logger.Warn("link lost, reconnect pending", zap.Error(err))
	if c.onState != nil {
		c.safely("state", func() { c.onState(Reconnecting) })
	}
}

// handleFrame delivers one inbound frame to the message observer,
// verbatim and in arrival order. Dispatches never run concurrently
// with each other or with slot mutation.
func (c *Client) handleFrame(gen uint64, data []byte) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale || c.onMessage == nil {
		return
	}
	c.safely("message", func() { c.onMessage(json.RawMessage(data)) })
}

// safely runs a callback, swallowing panics at the boundary. A
// misbehaving callback must not tear down the transport; the recovery
// action is log and continue.
func (c *Client) safely(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback panicked",
				zap.String("callback", name),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}

// frameHandler binds transport deliveries to one dial generation so a
// dead link can never move a newer connection's state.
type frameHandler struct {
	c   *Client
	gen uint64
}

func (h *frameHandler) HandleFrame(data []byte) { h.c.handleFrame(h.gen, data) }
func (h *frameHandler) HandleClose(err error)   { h.c.linkLost(h.gen, err) }
