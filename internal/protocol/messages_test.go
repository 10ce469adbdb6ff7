package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tbellingham/stagecraft/internal/protocol"
)

func TestNewJoinSession_WireForm(t *testing.T) {
	data, err := json.Marshal(protocol.NewJoinSession("alice", protocol.RolePlayer))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"JoinSession","user_id":"alice","role":"Player"}`, string(data))
}

func TestNewPlayerAction_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(protocol.NewPlayerAction(protocol.ActionExamine, "altar", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PlayerAction","action_type":"examine","target":"altar"}`, string(data))

	data, err = json.Marshal(protocol.NewPlayerAction(protocol.ActionCustom, "", "kick the door"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PlayerAction","action_type":"custom","dialogue":"kick the door"}`, string(data))
}

func TestNewHeartbeat_CarriesOnlyType(t *testing.T) {
	data, err := json.Marshal(protocol.NewHeartbeat())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Heartbeat"}`, string(data))
}

func TestNewChallengeRoll_WireForm(t *testing.T) {
	data, err := json.Marshal(protocol.NewChallengeRoll("ch-7", 17))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ChallengeRoll","challenge_id":"ch-7","roll":17}`, string(data))
}

func TestNewDirectorialUpdate_CarriesFullContext(t *testing.T) {
	dctx := protocol.DirectorialContext{
		SceneNotes: "keep it quiet",
		Tone:       "ominous",
		NpcMotivations: []protocol.NpcMotivation{
			{CharacterID: "barkeep", Mood: "nervous", ImmediateGoal: "close early"},
		},
		ForbiddenTopics: []string{"the heist"},
	}
	data, err := json.Marshal(protocol.NewDirectorialUpdate(dctx))
	require.NoError(t, err)

	var decoded protocol.DirectorialUpdate
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, protocol.TypeDirectorialUpdate, decoded.Type)
	assert.Equal(t, dctx, decoded.Context)
}

func TestPeekType_ReadsDiscriminant(t *testing.T) {
	for _, msg := range []any{
		protocol.NewJoinSession("u", protocol.RoleSpectator),
		protocol.NewPlayerAction(protocol.ActionTalk, "npc", "hi"),
		protocol.NewRequestSceneChange("scene-1"),
		protocol.NewTriggerChallenge("ch-1", "char-1"),
		protocol.NewHeartbeat(),
	} {
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		typ, err := protocol.PeekType(data)
		require.NoError(t, err)
		assert.NotEmpty(t, typ)
	}
}

func TestPeekType_Errors(t *testing.T) {
	_, err := protocol.PeekType([]byte("not json"))
	assert.Error(t, err, "malformed JSON must not yield a type")

	_, err = protocol.PeekType([]byte(`{"payload":1}`))
	assert.Error(t, err, "a frame without a discriminant is invalid")
}

func TestParticipantRole_Valid(t *testing.T) {
	assert.True(t, protocol.RoleDungeonMaster.Valid())
	assert.True(t, protocol.RolePlayer.Valid())
	assert.True(t, protocol.RoleSpectator.Valid())
	assert.False(t, protocol.ParticipantRole("Bard").Valid())
	assert.False(t, protocol.ParticipantRole("").Valid())
}

func TestKnownAction(t *testing.T) {
	for _, kind := range []string{
		protocol.ActionTalk, protocol.ActionExamine, protocol.ActionUseItem,
		protocol.ActionTravel, protocol.ActionCustom, protocol.ActionDialogueChoice,
	} {
		assert.True(t, protocol.KnownAction(kind), "kind %q should be known", kind)
	}
	assert.False(t, protocol.KnownAction("teleport"))
}

func TestPlayerAction_RoundTripsArbitraryText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := rapid.String().Draw(t, "target")
		dialogue := rapid.String().Draw(t, "dialogue")
		msg := protocol.NewPlayerAction(protocol.ActionTalk, target, dialogue)

		data, err := json.Marshal(msg)
		require.NoError(t, err)

		var decoded protocol.PlayerAction
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, msg, decoded, "player action must survive the wire unchanged")
	})
}
