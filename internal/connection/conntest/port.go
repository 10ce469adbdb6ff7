package conntest

import (
	"context"
	"sync"

	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

// PortCall is one recorded Port method invocation.
type PortCall struct {
	Method string
	Args   []any
}

// RecordingPort is a connection.Port double that records every call
// and succeeds unless Err is set. It exists for code layered on the
// port (facades, frontends) that should not need a transport double.
type RecordingPort struct {
	mu        sync.Mutex
	calls     []PortCall
	state     connection.State
	url       string
	Err       error
	onState   connection.StateCallback
	onMessage connection.MessageCallback
}

var _ connection.Port = (*RecordingPort)(nil)

// NewRecordingPort returns a RecordingPort that reports Connected so
// command calls succeed by default.
func NewRecordingPort() *RecordingPort {
	return &RecordingPort{state: connection.Connected, url: "ws://conntest"}
}

func (p *RecordingPort) record(method string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, PortCall{Method: method, Args: args})
	return p.Err
}

// Calls returns every recorded call in order.
func (p *RecordingPort) Calls() []PortCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PortCall(nil), p.calls...)
}

// CallsTo returns the recorded calls to one method, in order.
func (p *RecordingPort) CallsTo(method string) []PortCall {
	var out []PortCall
	for _, c := range p.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// SetState overrides the reported state.
func (p *RecordingPort) SetState(s connection.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func (p *RecordingPort) State() connection.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *RecordingPort) URL() string { return p.url }

func (p *RecordingPort) Connect(context.Context) error {
	return p.record("Connect")
}

func (p *RecordingPort) Disconnect() {
	_ = p.record("Disconnect")
}

func (p *RecordingPort) JoinSession(userID string, role protocol.ParticipantRole) error {
	return p.record("JoinSession", userID, role)
}

func (p *RecordingPort) SendAction(actionType, target, dialogue string) error {
	return p.record("SendAction", actionType, target, dialogue)
}

func (p *RecordingPort) RequestSceneChange(sceneID string) error {
	return p.record("RequestSceneChange", sceneID)
}

func (p *RecordingPort) SendDirectorialUpdate(dctx protocol.DirectorialContext) error {
	return p.record("SendDirectorialUpdate", dctx)
}

func (p *RecordingPort) SendApprovalDecision(requestID string, decision protocol.ApprovalDecision) error {
	return p.record("SendApprovalDecision", requestID, decision)
}

func (p *RecordingPort) TriggerChallenge(challengeID, targetCharacterID string) error {
	return p.record("TriggerChallenge", challengeID, targetCharacterID)
}

func (p *RecordingPort) SubmitChallengeRoll(challengeID string, roll int) error {
	return p.record("SubmitChallengeRoll", challengeID, roll)
}

func (p *RecordingPort) SubmitChallengeRollInput(challengeID string, input protocol.RollInput) error {
	return p.record("SubmitChallengeRollInput", challengeID, input)
}

func (p *RecordingPort) Heartbeat() error {
	return p.record("Heartbeat")
}

func (p *RecordingPort) OnStateChange(cb connection.StateCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onState = cb
}

func (p *RecordingPort) OnMessage(cb connection.MessageCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMessage = cb
}

// EmitState invokes the registered state callback, if any.
func (p *RecordingPort) EmitState(s connection.State) {
	p.mu.Lock()
	p.state = s
	cb := p.onState
	p.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// EmitMessage invokes the registered message callback, if any.
func (p *RecordingPort) EmitMessage(raw []byte) {
	p.mu.Lock()
	cb := p.onMessage
	p.mu.Unlock()
	if cb != nil {
		cb(raw)
	}
}
