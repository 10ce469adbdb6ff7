package protocol

import "encoding/json"

// EventType is the "type" discriminant of a server frame. The
// connection layer never branches on these; they exist for the
// downstream dispatcher.
type EventType string

const (
	EventSessionJoined     EventType = "SessionJoined"
	EventPlayerJoined      EventType = "PlayerJoined"
	EventPlayerLeft        EventType = "PlayerLeft"
	EventActionReceived    EventType = "ActionReceived"
	EventSceneUpdate       EventType = "SceneUpdate"
	EventDialogueResponse  EventType = "DialogueResponse"
	EventLLMProcessing     EventType = "LLMProcessing"
	EventApprovalRequired  EventType = "ApprovalRequired"
	EventResponseApproved  EventType = "ResponseApproved"
	EventChallengePrompt   EventType = "ChallengePrompt"
	EventChallengeResolved EventType = "ChallengeResolved"
	EventError             EventType = "Error"
	EventPong              EventType = "Pong"
)

// SessionJoined acknowledges a JoinSession frame and carries the
// session identity plus the full world snapshot. The snapshot is kept
// raw; the asset loader owns its shape.
type SessionJoined struct {
	SessionID     string            `json:"session_id"`
	Role          ParticipantRole   `json:"role"`
	Participants  []ParticipantInfo `json:"participants"`
	WorldSnapshot json.RawMessage   `json:"world_snapshot"`
}

// ParticipantInfo describes one session member.
type ParticipantInfo struct {
	UserID        string          `json:"user_id"`
	Role          ParticipantRole `json:"role"`
	CharacterName string          `json:"character_name,omitempty"`
}

// PlayerJoined is broadcast when another participant joins.
type PlayerJoined struct {
	UserID        string          `json:"user_id"`
	Role          ParticipantRole `json:"role"`
	CharacterName string          `json:"character_name,omitempty"`
}

// PlayerLeft is broadcast when a participant leaves.
type PlayerLeft struct {
	UserID string `json:"user_id"`
}

// ActionReceived acknowledges that a player action is being processed.
type ActionReceived struct {
	ActionID   string `json:"action_id"`
	PlayerID   string `json:"player_id"`
	ActionType string `json:"action_type"`
}

// SceneUpdate replaces the client's view of the current scene.
type SceneUpdate struct {
	Scene        SceneData         `json:"scene"`
	Characters   []CharacterData   `json:"characters"`
	Interactions []InteractionData `json:"interactions"`
}

// SceneData describes the active scene.
type SceneData struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	LocationID       string `json:"location_id"`
	LocationName     string `json:"location_name"`
	BackdropAsset    string `json:"backdrop_asset,omitempty"`
	TimeContext      string `json:"time_context"`
	DirectorialNotes string `json:"directorial_notes"`
}

// CharacterData describes an on-stage character.
type CharacterData struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SpriteAsset   string `json:"sprite_asset,omitempty"`
	PortraitAsset string `json:"portrait_asset,omitempty"`
	Position      string `json:"position"`
	IsSpeaking    bool   `json:"is_speaking"`
}

// InteractionData describes an available interaction in the scene.
type InteractionData struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	InteractionType string `json:"interaction_type"`
	TargetName      string `json:"target_name,omitempty"`
	IsAvailable     bool   `json:"is_available"`
}

// DialogueResponse is an NPC line delivered to the session.
type DialogueResponse struct {
	SpeakerID   string           `json:"speaker_id"`
	SpeakerName string           `json:"speaker_name"`
	Text        string           `json:"text"`
	Choices     []DialogueChoice `json:"choices"`
}

// DialogueChoice is one selectable player response.
type DialogueChoice struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	IsCustomInput bool   `json:"is_custom_input"`
}

// LLMProcessing tells the DM that a response is being generated.
type LLMProcessing struct {
	ActionID string `json:"action_id"`
}

// PendingApproval is an ApprovalRequired payload: one LLM-generated NPC
// response awaiting the DM's decision. The connection layer is a
// pass-through for these; tracking outstanding request ids is the
// application's business.
type PendingApproval struct {
	RequestID           string               `json:"request_id"`
	NpcName             string               `json:"npc_name"`
	ProposedDialogue    string               `json:"proposed_dialogue"`
	InternalReasoning   string               `json:"internal_reasoning"`
	ProposedTools       []ProposedTool       `json:"proposed_tools"`
	ChallengeSuggestion *ChallengeSuggestion `json:"challenge_suggestion,omitempty"`
}

// ProposedTool is one tool call the LLM wants to run. Arguments stay
// raw; the DM reviews them as displayed JSON.
type ProposedTool struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Arguments   json.RawMessage `json:"arguments"`
}

// ChallengeSuggestion is the Engine's proposal to resolve an action
// with a skill challenge. Confidence and Reasoning are opaque display
// strings, not inputs to client-side logic.
type ChallengeSuggestion struct {
	ChallengeID       string `json:"challenge_id"`
	ChallengeName     string `json:"challenge_name"`
	SkillName         string `json:"skill_name"`
	DifficultyDisplay string `json:"difficulty_display"`
	Confidence        string `json:"confidence"`
	Reasoning         string `json:"reasoning"`
}

// ResponseApproved announces an executed NPC response.
type ResponseApproved struct {
	NpcDialogue   string   `json:"npc_dialogue"`
	ExecutedTools []string `json:"executed_tools"`
}

// ChallengePrompt asks a player to roll for a triggered challenge.
type ChallengePrompt struct {
	ChallengeID       string `json:"challenge_id"`
	ChallengeName     string `json:"challenge_name"`
	SkillName         string `json:"skill_name"`
	DifficultyDisplay string `json:"difficulty_display"`
	Description       string `json:"description"`
	CharacterModifier int    `json:"character_modifier"`
}

// ChallengeResolved broadcasts a challenge outcome to the session.
type ChallengeResolved struct {
	ChallengeID        string `json:"challenge_id"`
	ChallengeName      string `json:"challenge_name"`
	CharacterName      string `json:"character_name"`
	Roll               int    `json:"roll"`
	Modifier           int    `json:"modifier"`
	Total              int    `json:"total"`
	Outcome            string `json:"outcome"`
	OutcomeDescription string `json:"outcome_description"`
}

// ErrorEvent is a server-reported error.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
