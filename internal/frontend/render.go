// Package frontend renders Engine events as styled terminal text and
// parses player input lines into session commands.
package frontend

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

var (
	sceneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	sceneBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	speakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dialogueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			PaddingLeft(2)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	approvalBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("170")).
				Padding(0, 1)

	approvalTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	challengeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))
)

// RenderState formats a connection state transition as a status line.
func RenderState(s connection.State) string {
	switch s {
	case connection.Connected:
		return successStyle.Render("● connected")
	case connection.Connecting:
		return systemStyle.Render("○ connecting...")
	case connection.Reconnecting:
		return systemStyle.Render("◌ link lost, reconnecting...")
	case connection.Failed:
		return errorStyle.Render("✗ connection failed")
	default:
		return systemStyle.Render("○ disconnected")
	}
}

// RenderSessionJoined formats the join confirmation with the roster.
func RenderSessionJoined(ev protocol.SessionJoined) string {
	var b strings.Builder
	b.WriteString(successStyle.Render(fmt.Sprintf("Joined session %s as %s", ev.SessionID, ev.Role)))
	if len(ev.Participants) > 0 {
		names := make([]string, 0, len(ev.Participants))
		for _, p := range ev.Participants {
			names = append(names, fmt.Sprintf("%s (%s)", p.UserID, p.Role))
		}
		b.WriteString("\n")
		b.WriteString(systemStyle.Render("Present: " + strings.Join(names, ", ")))
	}
	return b.String()
}

// RenderPlayerJoined formats a roster addition.
func RenderPlayerJoined(ev protocol.PlayerJoined) string {
	return systemStyle.Render(fmt.Sprintf("%s joined as %s.", ev.UserID, ev.Role))
}

// RenderPlayerLeft formats a roster removal.
func RenderPlayerLeft(ev protocol.PlayerLeft) string {
	return systemStyle.Render(fmt.Sprintf("%s left the session.", ev.UserID))
}

// RenderSceneUpdate formats the current scene with its characters and
// available interactions.
func RenderSceneUpdate(ev protocol.SceneUpdate) string {
	var b strings.Builder
	b.WriteString(sceneTitleStyle.Render(ev.Scene.Name))
	b.WriteString("\n")
	b.WriteString(sceneBodyStyle.Render(ev.Scene.Description))
	if len(ev.Characters) > 0 {
		names := make([]string, 0, len(ev.Characters))
		for _, c := range ev.Characters {
			names = append(names, c.Name)
		}
		b.WriteString("\n")
		b.WriteString(systemStyle.Render("Characters: " + strings.Join(names, ", ")))
	}
	if len(ev.Interactions) > 0 {
		b.WriteString("\n")
		b.WriteString(systemStyle.Render("You can:"))
		for _, in := range ev.Interactions {
			b.WriteString("\n")
			b.WriteString(choiceStyle.Render(fmt.Sprintf("%s (%s)", in.Name, in.InteractionType)))
		}
	}
	return b.String()
}

// RenderDialogue formats an NPC line and any presented choices.
func RenderDialogue(ev protocol.DialogueResponse) string {
	var b strings.Builder
	b.WriteString(speakerStyle.Render(ev.SpeakerName + ":"))
	b.WriteString(" ")
	b.WriteString(dialogueStyle.Render(ev.Text))
	for i, ch := range ev.Choices {
		b.WriteString("\n")
		b.WriteString(choiceStyle.Render(fmt.Sprintf("%d) %s", i+1, ch.Text)))
	}
	return b.String()
}

// RenderProcessing formats the thinking indicator.
func RenderProcessing(protocol.LLMProcessing) string {
	return systemStyle.Render("The narrator is thinking...")
}

// RenderPendingApproval formats a DM review card for a proposed NPC
// response.
func RenderPendingApproval(ev protocol.PendingApproval) string {
	var b strings.Builder
	b.WriteString(approvalTitleStyle.Render(fmt.Sprintf("Approval needed [%s]", ev.RequestID)))
	b.WriteString("\n")
	b.WriteString(speakerStyle.Render(ev.NpcName + " wants to say:"))
	b.WriteString("\n")
	b.WriteString(dialogueStyle.Render(ev.ProposedDialogue))
	if ev.InternalReasoning != "" {
		b.WriteString("\n")
		b.WriteString(reasoningStyle.Render("Reasoning: " + ev.InternalReasoning))
	}
	for _, tool := range ev.ProposedTools {
		b.WriteString("\n")
		b.WriteString(systemStyle.Render(fmt.Sprintf("Tool %s: %s", tool.ID, tool.Name)))
	}
	if cs := ev.ChallengeSuggestion; cs != nil {
		b.WriteString("\n")
		b.WriteString(challengeStyle.Render(fmt.Sprintf(
			"Suggested challenge: %s, %s (%s): %s",
			cs.ChallengeName, cs.SkillName, cs.DifficultyDisplay, cs.Reasoning)))
	}
	b.WriteString("\n")
	b.WriteString(systemStyle.Render("approve | modify <text> | reject <feedback> | takeover <text>"))
	return approvalBoxStyle.Render(b.String())
}

// RenderResponseApproved formats the post-review broadcast.
func RenderResponseApproved(ev protocol.ResponseApproved) string {
	var b strings.Builder
	b.WriteString(dialogueStyle.Render(ev.NpcDialogue))
	if len(ev.ExecutedTools) > 0 {
		b.WriteString("\n")
		b.WriteString(systemStyle.Render("Executed: " + strings.Join(ev.ExecutedTools, ", ")))
	}
	return b.String()
}

// RenderChallengePrompt formats a skill-check request to the player.
func RenderChallengePrompt(ev protocol.ChallengePrompt) string {
	var b strings.Builder
	b.WriteString(challengeStyle.Render(fmt.Sprintf(
		"%s: %s check (%s)", ev.ChallengeName, ev.SkillName, ev.DifficultyDisplay)))
	if ev.Description != "" {
		b.WriteString("\n")
		b.WriteString(sceneBodyStyle.Render(ev.Description))
	}
	b.WriteString("\n")
	b.WriteString(systemStyle.Render(fmt.Sprintf(
		"Your modifier is %+d. roll <value> or roll <formula>, e.g. roll 1d20+3 [%s]",
		ev.CharacterModifier, ev.ChallengeID)))
	return b.String()
}

// RenderChallengeResolved formats a skill-check outcome.
func RenderChallengeResolved(ev protocol.ChallengeResolved) string {
	verdict := failureStyle.Render(ev.Outcome)
	if strings.EqualFold(ev.Outcome, "success") || strings.EqualFold(ev.Outcome, "critical success") {
		verdict = successStyle.Render(ev.Outcome)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %s rolled %d%+d = %d (%s)",
		ev.ChallengeName, ev.CharacterName, ev.Roll, ev.Modifier, ev.Total, verdict))
	if ev.OutcomeDescription != "" {
		b.WriteString("\n")
		b.WriteString(sceneBodyStyle.Render(ev.OutcomeDescription))
	}
	return b.String()
}

// RenderError formats an Engine error event.
func RenderError(ev protocol.ErrorEvent) string {
	if ev.Code != "" {
		return errorStyle.Render(fmt.Sprintf("Engine error [%s]: %s", ev.Code, ev.Message))
	}
	return errorStyle.Render("Engine error: " + ev.Message)
}
