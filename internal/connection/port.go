package connection

import (
	"context"
	"encoding/json"

	"github.com/tbellingham/stagecraft/internal/protocol"
)

// StateCallback observes committed state transitions. The transition is
// already applied when the callback runs: reading State() inside the
// callback sees the announced state, never the old one.
type StateCallback func(State)

// MessageCallback receives every inbound server frame verbatim, in
// strict arrival order. The connection layer does not validate or
// branch on frame contents; install a dispatch.Dispatcher (or your
// own router) to type them.
type MessageCallback func(json.RawMessage)

// Port is the object-safe command surface of a session connection.
// Call sites hold a Port without knowing the concrete transport.
//
// Command methods are fire-and-forget: they return once the frame is
// accepted by the local transport, never waiting for a server reply.
// Frames from one Port instance reach the transport in call order.
// Role-appropriateness (DM-only vs player-only commands) is not
// enforced locally; the client is not a trust boundary and the server
// authorizes every command.
type Port interface {
	// State returns the current lifecycle state. Pure read.
	State() State

	// URL returns the configured Engine endpoint. Pure read.
	URL() string

	// Connect establishes the link. It may block until the handshake
	// completes or fails. Calling it while Connecting or Connected is
	// a no-op: no duplicate handshake and no spurious state change.
	Connect(ctx context.Context) error

	// Disconnect tears the link down, moves the state to Disconnected,
	// and clears the session identity. It cannot fail and is
	// idempotent: Disconnect from Disconnected is a no-op.
	Disconnect()

	// JoinSession sends a join frame. Returns ErrNotConnected outside
	// the Connected state. The server acknowledgment that establishes
	// the session id arrives later on the event channel; a nil return
	// only means the frame was accepted for sending.
	JoinSession(userID string, role protocol.ParticipantRole) error

	// SendAction sends a player action. Target and dialogue are
	// optional; pass "" to omit them.
	SendAction(actionType, target, dialogue string) error

	// RequestSceneChange asks the Engine to switch scenes.
	RequestSceneChange(sceneID string) error

	// SendDirectorialUpdate pushes a full-replace directorial context.
	SendDirectorialUpdate(dctx protocol.DirectorialContext) error

	// SendApprovalDecision resolves one pending approval request. The
	// layer accepts decisions for unknown or already-resolved request
	// ids; the server is authoritative on their validity.
	SendApprovalDecision(requestID string, decision protocol.ApprovalDecision) error

	// TriggerChallenge puts a challenge to a target character.
	TriggerChallenge(challengeID, targetCharacterID string) error

	// SubmitChallengeRoll submits a literal roll value.
	SubmitChallengeRoll(challengeID string, roll int) error

	// SubmitChallengeRollInput submits either a manual value or a
	// formula evaluated client-side before sending.
	SubmitChallengeRollInput(challengeID string, input protocol.RollInput) error

	// Heartbeat sends a keepalive ping. It returns ErrNotConnected
	// outside the Connected state but never reports transport write
	// failures: those surface later as a state transition.
	Heartbeat() error

	// OnStateChange registers the single state observer. A second
	// registration replaces the first; this is a single-consumer slot,
	// not a listener list. Pass nil to clear.
	OnStateChange(cb StateCallback)

	// OnMessage registers the single message observer, with the same
	// replace-not-append semantics as OnStateChange.
	OnMessage(cb MessageCallback)
}
