package connection_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/connection/conntest"
	"github.com/tbellingham/stagecraft/internal/protocol"
)

const testURL = "ws://engine.test/ws"

func newTestClient(t *testing.T, opts ...connection.Option) (*connection.Client, *conntest.Transport) {
	t.Helper()
	transport := &conntest.Transport{}
	opts = append([]connection.Option{
		connection.WithTransport(transport),
		connection.WithLogger(zaptest.NewLogger(t)),
	}, opts...)
	return connection.New(testURL, opts...), transport
}

// recordStates registers a state observer that appends every transition
// to the returned slice.
func recordStates(c *connection.Client) *[]connection.State {
	var states []connection.State
	c.OnStateChange(func(s connection.State) {
		states = append(states, s)
	})
	return &states
}

func connectClient(t *testing.T, c *connection.Client) {
	t.Helper()
	require.NoError(t, c.Connect(context.Background()))
	require.Equal(t, connection.Connected, c.State())
}

func TestNew_StartsDisconnected(t *testing.T) {
	c, transport := newTestClient(t)
	assert.Equal(t, connection.Disconnected, c.State())
	assert.Equal(t, testURL, c.URL())
	assert.Equal(t, 0, transport.DialCount(), "no handshake before Connect")

	_, ok := c.Session()
	assert.False(t, ok, "no session identity before a join")
}

func TestConnect_EmitsConnectingThenConnected(t *testing.T) {
	c, _ := newTestClient(t)
	states := recordStates(c)

	require.NoError(t, c.Connect(context.Background()))

	assert.Equal(t, []connection.State{connection.Connecting, connection.Connected}, *states,
		"a successful connect announces exactly Connecting then Connected")
	assert.Equal(t, connection.Connected, c.State())
}

func TestConnect_NoOpWhileConnected(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	states := recordStates(c)

	require.NoError(t, c.Connect(context.Background()))

	assert.Empty(t, *states, "a redundant connect announces nothing")
	assert.Equal(t, 1, transport.DialCount(), "a redundant connect does not redial")
}

func TestConnect_HandshakeFailure(t *testing.T) {
	c, transport := newTestClient(t)
	dialErr := errors.New("refused")
	transport.SetDialErr(dialErr)
	states := recordStates(c)

	err := c.Connect(context.Background())
	require.Error(t, err)

	var connErr *connection.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, testURL, connErr.URL)
	assert.ErrorIs(t, err, dialErr)

	assert.Equal(t, []connection.State{connection.Connecting, connection.Failed}, *states)
	assert.Equal(t, connection.Failed, c.State())
	assert.NotEmpty(t, c.FailReason())
}

func TestConnect_RecoversFromFailed(t *testing.T) {
	c, transport := newTestClient(t)
	transport.SetDialErr(errors.New("refused"))
	require.Error(t, c.Connect(context.Background()))

	transport.SetDialErr(nil)
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, connection.Connected, c.State())
	assert.Empty(t, c.FailReason(), "fail reason clears on recovery")
}

func TestDisconnect_ClosesLinkAndClearsSession(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	require.NoError(t, c.JoinSession("alice", protocol.RolePlayer))
	link := transport.LastLink()

	c.Disconnect()

	assert.Equal(t, connection.Disconnected, c.State())
	assert.True(t, link.Closed(), "the transport link is torn down")
	_, ok := c.Session()
	assert.False(t, ok, "session identity does not survive a disconnect")
}

func TestDisconnect_Idempotent(t *testing.T) {
	c, _ := newTestClient(t)
	connectClient(t, c)
	c.Disconnect()
	states := recordStates(c)

	c.Disconnect()
	c.Disconnect()

	assert.Empty(t, *states, "repeated disconnects announce nothing new")
	assert.Equal(t, connection.Disconnected, c.State())
}

func TestCommands_FailNotConnectedBeforeConnect(t *testing.T) {
	c, _ := newTestClient(t)

	ops := map[string]func() error{
		"JoinSession":          func() error { return c.JoinSession("u", protocol.RolePlayer) },
		"SendAction":           func() error { return c.SendAction(protocol.ActionTalk, "npc", "hi") },
		"RequestSceneChange":   func() error { return c.RequestSceneChange("scene-1") },
		"SendDirectorial":      func() error { return c.SendDirectorialUpdate(protocol.DirectorialContext{}) },
		"SendApprovalDecision": func() error { return c.SendApprovalDecision("r1", protocol.Accept()) },
		"TriggerChallenge":     func() error { return c.TriggerChallenge("ch-1", "char-1") },
		"SubmitChallengeRoll":  func() error { return c.SubmitChallengeRoll("ch-1", 12) },
		"Heartbeat":            c.Heartbeat,
	}
	for name, op := range ops {
		assert.ErrorIs(t, op(), connection.ErrNotConnected, "%s outside Connected", name)
	}
}

func TestCommands_FailNotConnectedWhileReconnecting(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	transport.LastLink().DropLink(errors.New("reset by peer"))
	require.Equal(t, connection.Reconnecting, c.State())

	assert.ErrorIs(t, c.SendAction(protocol.ActionTalk, "npc", "hi"), connection.ErrNotConnected,
		"Reconnecting does not accept commands")
	assert.ErrorIs(t, c.Heartbeat(), connection.ErrNotConnected)
}

func TestJoinSession_SendsFrameAndRecordsIdentity(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	require.NoError(t, c.JoinSession("alice", protocol.RoleDungeonMaster))

	frames := transport.LastLink().Frames()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"JoinSession","user_id":"alice","role":"DungeonMaster"}`, string(frames[0]))

	info, ok := c.Session()
	require.True(t, ok)
	assert.Equal(t, "alice", info.UserID)
	assert.Equal(t, protocol.RoleDungeonMaster, info.Role)
	assert.Empty(t, info.SessionID, "the session id arrives later on the event channel")

	c.SetSessionID("sess-42")
	info, _ = c.Session()
	assert.Equal(t, "sess-42", info.SessionID)
}

func TestSend_PreservesFrameOrder(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	require.NoError(t, c.JoinSession("alice", protocol.RolePlayer))
	require.NoError(t, c.SendAction(protocol.ActionExamine, "altar", ""))
	require.NoError(t, c.RequestSceneChange("scene-2"))
	require.NoError(t, c.TriggerChallenge("ch-1", "char-1"))
	require.NoError(t, c.SubmitChallengeRoll("ch-1", 14))
	require.NoError(t, c.Heartbeat())

	assert.Equal(t, []protocol.MessageType{
		protocol.TypeJoinSession,
		protocol.TypePlayerAction,
		protocol.TypeRequestSceneChange,
		protocol.TypeTriggerChallenge,
		protocol.TypeChallengeRoll,
		protocol.TypeHeartbeat,
	}, transport.LastLink().FrameTypes(), "frames leave in call order")
}

func TestSendAction_OmitsEmptyOptionalFields(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	require.NoError(t, c.SendAction(protocol.ActionTravel, "harbor", ""))

	decoded := transport.LastLink().DecodedFrames()
	require.Len(t, decoded, 1)
	assert.Equal(t, "harbor", decoded[0]["target"])
	assert.NotContains(t, decoded[0], "dialogue", "empty dialogue stays off the wire")
}

func TestSendApprovalDecision_EncodesDecisionOnce(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	require.NoError(t, c.SendApprovalDecision("r1", protocol.Reject("tone is off")))

	frames := transport.LastLink().Frames()
	require.Len(t, frames, 1, "one decision, one frame")
	assert.JSONEq(t, `{
		"type": "ApprovalDecision",
		"request_id": "r1",
		"decision": {"decision":"Reject","feedback":"tone is off"}
	}`, string(frames[0]))
}

func TestSendApprovalDecision_RejectsUnknownKind(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	err := c.SendApprovalDecision("r1", protocol.ApprovalDecision{Kind: "Shrug"})
	require.Error(t, err)
	assert.Empty(t, transport.LastLink().Frames(), "an invalid decision never reaches the wire")
}

func TestSubmitChallengeRollInput_ManualRoll(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	require.NoError(t, c.SubmitChallengeRollInput("ch-9", protocol.ManualRoll{Value: 17}))

	frames := transport.LastLink().Frames()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"ChallengeRoll","challenge_id":"ch-9","roll":17}`, string(frames[0]))
}

// fixedSource always rolls the same face.
type fixedSource struct{ v int }

func (s fixedSource) Intn(n int) int { return s.v % n }

func TestSubmitChallengeRollInput_FormulaRoll(t *testing.T) {
	c, transport := newTestClient(t, connection.WithRollSource(fixedSource{v: 4}))
	connectClient(t, c)

	// Two d6 both land on 5, plus 3.
	require.NoError(t, c.SubmitChallengeRollInput("ch-9", protocol.FormulaRoll{Expression: "2d6+3"}))

	frames := transport.LastLink().Frames()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"ChallengeRoll","challenge_id":"ch-9","roll":13}`, string(frames[0]))
}

func TestSubmitChallengeRollInput_BadFormula(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)

	err := c.SubmitChallengeRollInput("ch-9", protocol.FormulaRoll{Expression: "banana"})
	require.Error(t, err)
	assert.Empty(t, transport.LastLink().Frames(), "an unparseable formula sends nothing")

	assert.Error(t, c.SubmitChallengeRollInput("ch-9", nil))
}

func TestHeartbeat_SwallowsTransportWriteFailure(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	transport.LastLink().SendErr = errors.New("broken pipe")

	assert.NoError(t, c.Heartbeat(),
		"a heartbeat write failure is reported via the state channel, not the return value")
}

func TestSend_WrapsTransportError(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	writeErr := errors.New("broken pipe")
	transport.LastLink().SendErr = writeErr

	err := c.SendAction(protocol.ActionTalk, "npc", "hi")
	var sendErr *connection.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorIs(t, err, writeErr)
}

func TestOnMessage_DeliversFramesVerbatimInOrder(t *testing.T) {
	c, transport := newTestClient(t)
	var got []string
	c.OnMessage(func(raw json.RawMessage) {
		got = append(got, string(raw))
	})
	connectClient(t, c)

	link := transport.LastLink()
	link.PushFrame([]byte(`{"type":"Pong"}`))
	link.PushFrame([]byte(`{"type":"Error","message":"m"}`))

	assert.Equal(t, []string{`{"type":"Pong"}`, `{"type":"Error","message":"m"}`}, got,
		"frames arrive unparsed and in order")
}

func TestOnMessage_ReplacesNotAppends(t *testing.T) {
	c, transport := newTestClient(t)
	var first, second int
	c.OnMessage(func(json.RawMessage) { first++ })
	c.OnMessage(func(json.RawMessage) { second++ })
	connectClient(t, c)

	transport.LastLink().PushFrame([]byte(`{"type":"Pong"}`))

	assert.Zero(t, first, "a displaced observer sees nothing")
	assert.Equal(t, 1, second, "the surviving observer sees the frame exactly once")
}

func TestOnStateChange_ReplacesNotAppends(t *testing.T) {
	c, _ := newTestClient(t)
	var first, second int
	c.OnStateChange(func(connection.State) { first++ })
	c.OnStateChange(func(connection.State) { second++ })

	connectClient(t, c)

	assert.Zero(t, first)
	assert.Equal(t, 2, second, "Connecting and Connected each notify once")
}

func TestCallbackPanic_DoesNotTearDownConnection(t *testing.T) {
	c, transport := newTestClient(t)
	var delivered int
	c.OnMessage(func(raw json.RawMessage) {
		delivered++
		if delivered == 1 {
			panic("boom")
		}
	})
	connectClient(t, c)

	link := transport.LastLink()
	link.PushFrame([]byte(`{"type":"Pong"}`))
	link.PushFrame([]byte(`{"type":"Pong"}`))

	assert.Equal(t, 2, delivered, "delivery continues after a panicking callback")
	assert.Equal(t, connection.Connected, c.State())
	assert.NoError(t, c.Heartbeat(), "the link survives the panic")
}

func TestLinkLoss_TransitionsToReconnecting(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	states := recordStates(c)

	transport.LastLink().DropLink(errors.New("reset by peer"))

	assert.Equal(t, []connection.State{connection.Reconnecting}, *states)
	assert.Equal(t, connection.Reconnecting, c.State())
}

func TestReconnect_SkipsConnectingAnnouncement(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	transport.LastLink().DropLink(nil)
	require.Equal(t, connection.Reconnecting, c.State())
	states := recordStates(c)

	require.NoError(t, c.Connect(context.Background()))

	assert.Equal(t, []connection.State{connection.Connected}, *states,
		"a re-handshake never announces a spurious Connecting")
	assert.Equal(t, 2, transport.DialCount())
}

func TestReconnect_FailedAttemptStaysReconnecting(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	transport.LastLink().DropLink(nil)
	transport.SetDialErr(errors.New("still down"))
	states := recordStates(c)

	err := c.Connect(context.Background())
	require.Error(t, err)

	assert.Empty(t, *states, "a failed reconnect attempt announces nothing")
	assert.Equal(t, connection.Reconnecting, c.State(),
		"giving up is the retry policy's decision, not the state machine's")
}

func TestFail_CommitsReconnectingToFailed(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	transport.LastLink().DropLink(nil)
	states := recordStates(c)

	c.Fail("retry budget exhausted")

	assert.Equal(t, []connection.State{connection.Failed}, *states)
	assert.Equal(t, connection.Failed, c.State())
	assert.Equal(t, "retry budget exhausted", c.FailReason())
}

func TestFail_NoOpOutsideReconnecting(t *testing.T) {
	c, _ := newTestClient(t)
	connectClient(t, c)

	c.Fail("spurious")

	assert.Equal(t, connection.Connected, c.State())
	assert.Empty(t, c.FailReason())
}

func TestStaleLink_CannotMoveNewerConnectionState(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	stale := transport.LastLink()

	c.Disconnect()
	connectClient(t, c)
	states := recordStates(c)
	var frames int
	c.OnMessage(func(json.RawMessage) { frames++ })

	stale.DropLink(errors.New("late close from the dead link"))
	stale.PushFrame([]byte(`{"type":"Pong"}`))

	assert.Empty(t, *states, "a dead link's close cannot demote the live connection")
	assert.Zero(t, frames, "a dead link's frames are discarded")
	assert.Equal(t, connection.Connected, c.State())
}

func TestDisconnect_WinsRaceAgainstLinkEvents(t *testing.T) {
	c, transport := newTestClient(t)
	connectClient(t, c)
	link := transport.LastLink()
	c.Disconnect()

	link.DropLink(errors.New("late"))

	assert.Equal(t, connection.Disconnected, c.State(),
		"events from a disconnected generation are ignored")
}

func TestCooperativeProfile_SameSemantics(t *testing.T) {
	c, transport := newTestClient(t, connection.WithProfile(connection.Cooperative))
	states := recordStates(c)
	var got []protocol.EventType
	c.OnMessage(func(raw json.RawMessage) {
		typ, err := protocol.PeekType(raw)
		require.NoError(t, err)
		got = append(got, protocol.EventType(typ))
	})

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.JoinSession("solo", protocol.RolePlayer))
	transport.LastLink().PushEvent(protocol.EventPong, nil)
	c.Disconnect()

	assert.Equal(t, []connection.State{
		connection.Connecting, connection.Connected, connection.Disconnected,
	}, *states)
	assert.Equal(t, []protocol.EventType{protocol.EventPong}, got)
}

// TestLifecycle_DisconnectAlwaysWins drives random operation sequences
// and checks the machine's standing invariants after each step.
func TestLifecycle_DisconnectAlwaysWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		transport := &conntest.Transport{}
		c := connection.New(testURL,
			connection.WithTransport(transport),
			connection.WithProfile(connection.Cooperative),
		)

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom([]string{
				"connect", "connect_fail", "disconnect", "drop", "fail", "send",
			}).Draw(t, fmt.Sprintf("op%d", i))

			switch op {
			case "connect":
				transport.SetDialErr(nil)
				_ = c.Connect(context.Background())
			case "connect_fail":
				transport.SetDialErr(errors.New("refused"))
				_ = c.Connect(context.Background())
				transport.SetDialErr(nil)
			case "disconnect":
				c.Disconnect()
				require.Equal(t, connection.Disconnected, c.State(),
					"Disconnect lands in Disconnected from any state")
			case "drop":
				if transport.DialCount() > 0 {
					transport.LastLink().DropLink(errors.New("drop"))
				}
			case "fail":
				c.Fail("forced")
			case "send":
				err := c.SendAction(protocol.ActionCustom, "", "poke")
				if c.State() != connection.Connected {
					require.ErrorIs(t, err, connection.ErrNotConnected)
				}
			}
		}

		c.Disconnect()
		require.Equal(t, connection.Disconnected, c.State())
		_, ok := c.Session()
		require.False(t, ok, "no session identity survives the final disconnect")
	})
}
