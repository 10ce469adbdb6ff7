// Package session provides the narrow command facade for call sites
// that run the DM approval and challenge workflows and should not see
// the full connection port surface. It is intentionally small: it
// exists to keep presentation code free of transport concerns.
package session

import (
	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

// Commands binds the workflow subset of the connection port. Every
// method forwards to the port and shares its failure modes
// (ErrNotConnected outside the Connected state).
type Commands struct {
	port connection.Port
}

// NewCommands wraps a connection port.
//
// Precondition: port must be non-nil.
func NewCommands(port connection.Port) *Commands {
	if port == nil {
		panic("session: NewCommands requires a port")
	}
	return &Commands{port: port}
}

// SendDirectorialUpdate pushes DM scene guidance as a full replacement
// of the Engine's directorial state.
func (c *Commands) SendDirectorialUpdate(dctx protocol.DirectorialContext) error {
	return c.port.SendDirectorialUpdate(dctx)
}

// SendApprovalDecision resolves one pending NPC-response approval.
func (c *Commands) SendApprovalDecision(requestID string, decision protocol.ApprovalDecision) error {
	return c.port.SendApprovalDecision(requestID, decision)
}

// TriggerChallenge puts a challenge to a target character.
func (c *Commands) TriggerChallenge(challengeID, targetCharacterID string) error {
	return c.port.TriggerChallenge(challengeID, targetCharacterID)
}

// SubmitChallengeRoll submits a literal roll value.
func (c *Commands) SubmitChallengeRoll(challengeID string, roll int) error {
	return c.port.SubmitChallengeRoll(challengeID, roll)
}

// SubmitChallengeRollInput submits a manual value or a formula roll.
func (c *Commands) SubmitChallengeRollInput(challengeID string, input protocol.RollInput) error {
	return c.port.SubmitChallengeRollInput(challengeID, input)
}
