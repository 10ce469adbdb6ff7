package protocol

import (
	"encoding/json"
	"fmt"
)

// DecisionKind is the "decision" discriminant of an ApprovalDecision.
type DecisionKind string

const (
	DecisionAccept                 DecisionKind = "Accept"
	DecisionAcceptWithModification DecisionKind = "AcceptWithModification"
	DecisionReject                 DecisionKind = "Reject"
	DecisionTakeOver               DecisionKind = "TakeOver"
)

// ApprovalDecision is the DM's resolution of one LLM-proposed NPC
// response. It is a tagged variant: exactly one of the four kinds, with
// the fields belonging to that kind.
//
// Invariant: Kind determines which fields are meaningful; the wire form
// carries only the fields of the active kind.
type ApprovalDecision struct {
	Kind DecisionKind

	// AcceptWithModification fields.
	ModifiedDialogue string
	ApprovedToolIDs  []string
	RejectedToolIDs  []string

	// Reject field.
	Feedback string

	// TakeOver field.
	DMResponse string
}

// Accept approves the proposed response unchanged.
func Accept() ApprovalDecision {
	return ApprovalDecision{Kind: DecisionAccept}
}

// AcceptWithModification approves with edited dialogue and a tool-call
// triage: approved tool ids run, rejected tool ids are dropped.
func AcceptWithModification(dialogue string, approvedToolIDs, rejectedToolIDs []string) ApprovalDecision {
	return ApprovalDecision{
		Kind:             DecisionAcceptWithModification,
		ModifiedDialogue: dialogue,
		ApprovedToolIDs:  approvedToolIDs,
		RejectedToolIDs:  rejectedToolIDs,
	}
}

// Reject discards the proposal and asks the Engine to regenerate,
// guided by feedback.
func Reject(feedback string) ApprovalDecision {
	return ApprovalDecision{Kind: DecisionReject, Feedback: feedback}
}

// TakeOver replaces the proposal with the DM's own response.
func TakeOver(dmResponse string) ApprovalDecision {
	return ApprovalDecision{Kind: DecisionTakeOver, DMResponse: dmResponse}
}

// Validate checks that the decision carries a recognized kind.
func (d ApprovalDecision) Validate() error {
	switch d.Kind {
	case DecisionAccept, DecisionAcceptWithModification, DecisionReject, DecisionTakeOver:
		return nil
	}
	return fmt.Errorf("protocol: unknown approval decision kind %q", d.Kind)
}

// MarshalJSON writes the internally tagged wire form: the "decision"
// discriminant plus only the active kind's fields.
func (d ApprovalDecision) MarshalJSON() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.Kind {
	case DecisionAcceptWithModification:
		return json.Marshal(struct {
			Decision         DecisionKind `json:"decision"`
			ModifiedDialogue string       `json:"modified_dialogue"`
			ApprovedTools    []string     `json:"approved_tools"`
			RejectedTools    []string     `json:"rejected_tools"`
		}{d.Kind, d.ModifiedDialogue, emptyIfNil(d.ApprovedToolIDs), emptyIfNil(d.RejectedToolIDs)})
	case DecisionReject:
		return json.Marshal(struct {
			Decision DecisionKind `json:"decision"`
			Feedback string       `json:"feedback"`
		}{d.Kind, d.Feedback})
	case DecisionTakeOver:
		return json.Marshal(struct {
			Decision   DecisionKind `json:"decision"`
			DMResponse string       `json:"dm_response"`
		}{d.Kind, d.DMResponse})
	default:
		return json.Marshal(struct {
			Decision DecisionKind `json:"decision"`
		}{d.Kind})
	}
}

// UnmarshalJSON reads the internally tagged wire form.
func (d *ApprovalDecision) UnmarshalJSON(data []byte) error {
	var wire struct {
		Decision         DecisionKind `json:"decision"`
		ModifiedDialogue string       `json:"modified_dialogue"`
		ApprovedTools    []string     `json:"approved_tools"`
		RejectedTools    []string     `json:"rejected_tools"`
		Feedback         string       `json:"feedback"`
		DMResponse       string       `json:"dm_response"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("protocol: decoding approval decision: %w", err)
	}
	*d = ApprovalDecision{
		Kind:             wire.Decision,
		ModifiedDialogue: wire.ModifiedDialogue,
		ApprovedToolIDs:  wire.ApprovedTools,
		RejectedToolIDs:  wire.RejectedTools,
		Feedback:         wire.Feedback,
		DMResponse:       wire.DMResponse,
	}
	return d.Validate()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DirectorialContext is DM-authored scene-level guidance. Each send
// overwrites the Engine's directorial state for the scene; it is never
// merged with what was there before.
type DirectorialContext struct {
	SceneNotes      string          `json:"scene_notes" yaml:"scene_notes"`
	Tone            string          `json:"tone" yaml:"tone"`
	NpcMotivations  []NpcMotivation `json:"npc_motivations" yaml:"npc_motivations"`
	ForbiddenTopics []string        `json:"forbidden_topics" yaml:"forbidden_topics"`
}

// NpcMotivation is per-NPC guidance inside a DirectorialContext.
type NpcMotivation struct {
	CharacterID   string `json:"character_id" yaml:"character_id"`
	Mood          string `json:"mood" yaml:"mood"`
	ImmediateGoal string `json:"immediate_goal" yaml:"immediate_goal"`
	SecretAgenda  string `json:"secret_agenda,omitempty" yaml:"secret_agenda,omitempty"`
}
