// Package protocol defines the JSON wire types for the Engine realtime
// session protocol. Client and server messages are internally tagged
// unions: every frame carries a "type" discriminant alongside its
// payload fields, and DM approval decisions carry a "decision"
// discriminant. The connection layer moves these frames verbatim; only
// the dispatch layer branches on discriminants.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType is the "type" discriminant of a client frame.
type MessageType string

const (
	TypeJoinSession        MessageType = "JoinSession"
	TypePlayerAction       MessageType = "PlayerAction"
	TypeRequestSceneChange MessageType = "RequestSceneChange"
	TypeDirectorialUpdate  MessageType = "DirectorialUpdate"
	TypeApprovalDecision   MessageType = "ApprovalDecision"
	TypeTriggerChallenge   MessageType = "TriggerChallenge"
	TypeChallengeRoll      MessageType = "ChallengeRoll"
	TypeHeartbeat          MessageType = "Heartbeat"
)

// ParticipantRole identifies a session member's role. Assigned once per
// join and immutable for the lifetime of that session membership.
type ParticipantRole string

const (
	RoleDungeonMaster ParticipantRole = "DungeonMaster"
	RolePlayer        ParticipantRole = "Player"
	RoleSpectator     ParticipantRole = "Spectator"
)

// Valid reports whether r is one of the three recognized roles.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleDungeonMaster, RolePlayer, RoleSpectator:
		return true
	}
	return false
}

// Recognized action kinds for PlayerAction frames. The server defines
// their meaning; the client only names them.
const (
	ActionTalk           = "talk"
	ActionExamine        = "examine"
	ActionUseItem        = "use_item"
	ActionTravel         = "travel"
	ActionCustom         = "custom"
	ActionDialogueChoice = "dialogue_choice"
)

// KnownAction reports whether kind is one of the recognized action
// kinds. Unknown kinds are still sent; the server is authoritative.
func KnownAction(kind string) bool {
	switch kind {
	case ActionTalk, ActionExamine, ActionUseItem, ActionTravel, ActionCustom, ActionDialogueChoice:
		return true
	}
	return false
}

// JoinSession requests membership in a game session.
type JoinSession struct {
	Type   MessageType     `json:"type"`
	UserID string          `json:"user_id"`
	Role   ParticipantRole `json:"role"`
}

// NewJoinSession builds a tagged JoinSession frame.
func NewJoinSession(userID string, role ParticipantRole) JoinSession {
	return JoinSession{Type: TypeJoinSession, UserID: userID, Role: role}
}

// PlayerAction is a player-originated action. Target and Dialogue are
// optional; empty strings are omitted from the wire form.
type PlayerAction struct {
	Type       MessageType `json:"type"`
	ActionType string      `json:"action_type"`
	Target     string      `json:"target,omitempty"`
	Dialogue   string      `json:"dialogue,omitempty"`
}

// NewPlayerAction builds a tagged PlayerAction frame.
func NewPlayerAction(actionType, target, dialogue string) PlayerAction {
	return PlayerAction{Type: TypePlayerAction, ActionType: actionType, Target: target, Dialogue: dialogue}
}

// RequestSceneChange asks the Engine to move the session to a scene.
type RequestSceneChange struct {
	Type    MessageType `json:"type"`
	SceneID string      `json:"scene_id"`
}

// NewRequestSceneChange builds a tagged RequestSceneChange frame.
func NewRequestSceneChange(sceneID string) RequestSceneChange {
	return RequestSceneChange{Type: TypeRequestSceneChange, SceneID: sceneID}
}

// DirectorialUpdate replaces the Engine's directorial state for the
// current scene. It is a full-replace payload, never a delta.
type DirectorialUpdate struct {
	Type    MessageType        `json:"type"`
	Context DirectorialContext `json:"context"`
}

// NewDirectorialUpdate builds a tagged DirectorialUpdate frame.
func NewDirectorialUpdate(ctx DirectorialContext) DirectorialUpdate {
	return DirectorialUpdate{Type: TypeDirectorialUpdate, Context: ctx}
}

// ApprovalDecisionMessage carries the DM's resolution of one pending
// approval request. Exactly one decision is sent per request id; the
// server is authoritative on whether the request is still open.
type ApprovalDecisionMessage struct {
	Type      MessageType      `json:"type"`
	RequestID string           `json:"request_id"`
	Decision  ApprovalDecision `json:"decision"`
}

// NewApprovalDecision builds a tagged ApprovalDecision frame.
func NewApprovalDecision(requestID string, decision ApprovalDecision) ApprovalDecisionMessage {
	return ApprovalDecisionMessage{Type: TypeApprovalDecision, RequestID: requestID, Decision: decision}
}

// TriggerChallenge asks the Engine to put a challenge to a character.
type TriggerChallenge struct {
	Type              MessageType `json:"type"`
	ChallengeID       string      `json:"challenge_id"`
	TargetCharacterID string      `json:"target_character_id"`
}

// NewTriggerChallenge builds a tagged TriggerChallenge frame.
func NewTriggerChallenge(challengeID, targetCharacterID string) TriggerChallenge {
	return TriggerChallenge{Type: TypeTriggerChallenge, ChallengeID: challengeID, TargetCharacterID: targetCharacterID}
}

// ChallengeRoll submits a player's roll for a pending challenge.
type ChallengeRoll struct {
	Type        MessageType `json:"type"`
	ChallengeID string      `json:"challenge_id"`
	Roll        int         `json:"roll"`
}

// NewChallengeRoll builds a tagged ChallengeRoll frame.
func NewChallengeRoll(challengeID string, roll int) ChallengeRoll {
	return ChallengeRoll{Type: TypeChallengeRoll, ChallengeID: challengeID, Roll: roll}
}

// Heartbeat is the keepalive ping. It carries no payload.
type Heartbeat struct {
	Type MessageType `json:"type"`
}

// NewHeartbeat builds a tagged Heartbeat frame.
func NewHeartbeat() Heartbeat {
	return Heartbeat{Type: TypeHeartbeat}
}

// PeekType extracts the "type" discriminant from a raw frame without
// decoding the payload.
//
// Postcondition: Returns a non-empty MessageType or a non-nil error.
func PeekType(data []byte) (MessageType, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("protocol: decoding envelope: %w", err)
	}
	if envelope.Type == "" {
		return "", fmt.Errorf("protocol: frame is missing a type discriminant")
	}
	return envelope.Type, nil
}
