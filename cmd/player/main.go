// Package main provides the terminal player client for a Stagecraft
// game session. It connects to the Engine over WebSocket, renders
// session events to stdout, and turns typed commands into protocol
// frames.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tbellingham/stagecraft/internal/api"
	"github.com/tbellingham/stagecraft/internal/config"
	"github.com/tbellingham/stagecraft/internal/connection"
	"github.com/tbellingham/stagecraft/internal/director"
	"github.com/tbellingham/stagecraft/internal/dispatch"
	"github.com/tbellingham/stagecraft/internal/frontend"
	"github.com/tbellingham/stagecraft/internal/observability"
	"github.com/tbellingham/stagecraft/internal/protocol"
	"github.com/tbellingham/stagecraft/internal/reconnect"
	"github.com/tbellingham/stagecraft/internal/session"
)

func main() {
	configPath := flag.String("config", "configs/player.yaml", "path to configuration file")
	name := flag.String("name", "", "user id to join as (default: player config, else a random id)")
	role := flag.String("role", "", "join role: DungeonMaster, Player, or Spectator (default: player config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	userID := cfg.Player.Name
	if *name != "" {
		userID = *name
	}
	if userID == "" {
		userID = "player-" + uuid.NewString()
	}
	joinRole := protocol.ParticipantRole(cfg.Player.Role)
	if *role != "" {
		joinRole = protocol.ParticipantRole(*role)
	}
	if !joinRole.Valid() {
		log.Fatalf("invalid role %q", joinRole)
	}

	logger.Info("starting Stagecraft player",
		zap.String("engine_url", cfg.Engine.URL),
		zap.String("user_id", userID),
		zap.String("role", string(joinRole)),
	)

	var presets []*director.Preset
	if cfg.Player.DirectorsDir != "" {
		presets, err = director.LoadPresets(cfg.Player.DirectorsDir)
		if err != nil {
			logger.Fatal("loading directorial presets", zap.Error(err))
		}
		logger.Info("directorial presets loaded", zap.Int("presets", len(presets)))
	}

	worlds := api.NewWorldService(api.NewClient(cfg.API))

	profile := connection.Threaded
	if cfg.Engine.Profile == "cooperative" {
		profile = connection.Cooperative
	}
	client := connection.New(cfg.Engine.URL,
		connection.WithProfile(profile),
		connection.WithLogger(logger),
	)

	a := &app{
		client:   client,
		commands: session.NewCommands(client),
		worlds:   worlds,
		registry: frontend.DefaultRegistry(),
		presets:  presets,
		userID:   userID,
		role:     joinRole,
	}

	dispatcher := dispatch.New(client, a.handlers(), logger)
	dispatcher.Bind(client)

	if cfg.Reconnect.Enabled {
		sup := reconnect.NewSupervisor(client, reconnect.Config{
			InitialInterval: cfg.Reconnect.InitialInterval,
			MaxInterval:     cfg.Reconnect.MaxInterval,
			MaxElapsedTime:  cfg.Reconnect.MaxElapsedTime,
		}, a.rejoin, a.showState, logger)
		sup.Attach()
	} else {
		client.OnStateChange(a.showState)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = client.Connect(ctx)
	cancel()
	if err != nil {
		logger.Fatal("connecting to engine", zap.Error(err))
	}
	if err := client.JoinSession(userID, joinRole); err != nil {
		logger.Fatal("joining session", zap.Error(err))
	}

	stopHeartbeat := make(chan struct{})
	go heartbeatLoop(client, cfg.Engine.HeartbeatInterval, stopHeartbeat)

	a.commandLoop(os.Stdin)

	close(stopHeartbeat)
	client.Disconnect()
	logger.Info("session closed")
}

// heartbeatLoop sends keepalives on a fixed cadence until stop closes.
// Send failures are the connection layer's business; the loop only has
// to keep ticking.
func heartbeatLoop(client *connection.Client, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = client.Heartbeat()
		}
	}
}

// app holds the terminal session state: the connection, the DM command
// facade, and the little bits of event context (pending challenge,
// dialogue choices) that typed commands refer back to.
type app struct {
	client   *connection.Client
	commands *session.Commands
	worlds   *api.WorldService
	registry *frontend.Registry
	presets  []*director.Preset
	userID   string
	role     protocol.ParticipantRole

	mu                 sync.Mutex
	pendingChallengeID string
	choices            []protocol.DialogueChoice
}

// rejoin restores session identity after the supervisor re-handshakes.
func (a *app) rejoin(port connection.Port) error {
	return port.JoinSession(a.userID, a.role)
}

func (a *app) showState(s connection.State) {
	fmt.Println(frontend.RenderState(s))
}

// handlers renders every Engine event to stdout and records the event
// context later commands need.
func (a *app) handlers() dispatch.Handlers {
	return dispatch.Handlers{
		SessionJoined: func(ev protocol.SessionJoined) {
			fmt.Println(frontend.RenderSessionJoined(ev))
		},
		PlayerJoined: func(ev protocol.PlayerJoined) {
			fmt.Println(frontend.RenderPlayerJoined(ev))
		},
		PlayerLeft: func(ev protocol.PlayerLeft) {
			fmt.Println(frontend.RenderPlayerLeft(ev))
		},
		SceneUpdate: func(ev protocol.SceneUpdate) {
			fmt.Println(frontend.RenderSceneUpdate(ev))
		},
		Dialogue: func(ev protocol.DialogueResponse) {
			a.mu.Lock()
			a.choices = ev.Choices
			a.mu.Unlock()
			fmt.Println(frontend.RenderDialogue(ev))
		},
		LLMProcessing: func(ev protocol.LLMProcessing) {
			fmt.Println(frontend.RenderProcessing(ev))
		},
		ApprovalRequired: func(ev protocol.PendingApproval) {
			fmt.Println(frontend.RenderPendingApproval(ev))
		},
		ResponseApproved: func(ev protocol.ResponseApproved) {
			fmt.Println(frontend.RenderResponseApproved(ev))
		},
		ChallengePrompt: func(ev protocol.ChallengePrompt) {
			a.mu.Lock()
			a.pendingChallengeID = ev.ChallengeID
			a.mu.Unlock()
			fmt.Println(frontend.RenderChallengePrompt(ev))
		},
		ChallengeResolved: func(ev protocol.ChallengeResolved) {
			a.mu.Lock()
			if a.pendingChallengeID == ev.ChallengeID {
				a.pendingChallengeID = ""
			}
			a.mu.Unlock()
			fmt.Println(frontend.RenderChallengeResolved(ev))
		},
		EngineError: func(ev protocol.ErrorEvent) {
			fmt.Println(frontend.RenderError(ev))
		},
	}
}

// commandLoop reads lines from r, parses them, and executes session
// commands until quit or EOF.
func (a *app) commandLoop(r *os.File) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		parsed := frontend.Parse(scanner.Text())
		if parsed.Command == "" {
			continue
		}

		cmd, ok := a.registry.Resolve(parsed.Command)
		if !ok {
			fmt.Printf("Unknown command %q. Type help for the command list.\n", parsed.Command)
			continue
		}
		if cmd.Name == "quit" {
			return
		}
		if err := a.execute(cmd, parsed); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func (a *app) execute(cmd *frontend.Command, parsed frontend.ParseResult) error {
	switch cmd.Name {
	case "say":
		if len(parsed.Args) < 2 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		target := parsed.Args[0]
		dialogue := strings.TrimSpace(strings.TrimPrefix(parsed.RawArgs, target))
		return a.client.SendAction(protocol.ActionTalk, target, dialogue)

	case "examine":
		if parsed.RawArgs == "" {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.client.SendAction(protocol.ActionExamine, parsed.RawArgs, "")

	case "use":
		if len(parsed.Args) == 0 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		target := ""
		if len(parsed.Args) > 1 {
			target = parsed.Args[1]
		}
		return a.client.SendAction(protocol.ActionUseItem, parsed.Args[0], target)

	case "travel":
		if parsed.RawArgs == "" {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.client.SendAction(protocol.ActionTravel, parsed.RawArgs, "")

	case "do":
		if parsed.RawArgs == "" {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.client.SendAction(protocol.ActionCustom, "", parsed.RawArgs)

	case "choice":
		if len(parsed.Args) != 1 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		n, err := strconv.Atoi(parsed.Args[0])
		if err != nil {
			return fmt.Errorf("choice must be a number")
		}
		a.mu.Lock()
		choices := a.choices
		a.mu.Unlock()
		if n < 1 || n > len(choices) {
			return fmt.Errorf("no choice %d is on offer", n)
		}
		return a.client.SendAction(protocol.ActionDialogueChoice, choices[n-1].ID, choices[n-1].Text)

	case "scene":
		if len(parsed.Args) != 1 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.client.RequestSceneChange(parsed.Args[0])

	case "direct":
		if parsed.RawArgs == "" {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		preset := director.Find(a.presets, parsed.RawArgs)
		if preset == nil {
			return fmt.Errorf("no preset named %q", parsed.RawArgs)
		}
		return a.commands.SendDirectorialUpdate(preset.Context)

	case "approve":
		if len(parsed.Args) != 1 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.commands.SendApprovalDecision(parsed.Args[0], protocol.Accept())

	case "modify":
		requestID, rest, err := splitIDAndText(parsed, cmd)
		if err != nil {
			return err
		}
		return a.commands.SendApprovalDecision(requestID, protocol.AcceptWithModification(rest, nil, nil))

	case "reject":
		requestID, rest, err := splitIDAndText(parsed, cmd)
		if err != nil {
			return err
		}
		return a.commands.SendApprovalDecision(requestID, protocol.Reject(rest))

	case "takeover":
		requestID, rest, err := splitIDAndText(parsed, cmd)
		if err != nil {
			return err
		}
		return a.commands.SendApprovalDecision(requestID, protocol.TakeOver(rest))

	case "challenge":
		if len(parsed.Args) != 2 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return a.commands.TriggerChallenge(parsed.Args[0], parsed.Args[1])

	case "roll":
		if len(parsed.Args) != 1 {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		a.mu.Lock()
		challengeID := a.pendingChallengeID
		a.mu.Unlock()
		if challengeID == "" {
			return fmt.Errorf("no challenge is waiting for a roll")
		}
		if value, err := strconv.Atoi(parsed.Args[0]); err == nil {
			return a.commands.SubmitChallengeRollInput(challengeID, protocol.ManualRoll{Value: value})
		}
		return a.commands.SubmitChallengeRollInput(challengeID, protocol.FormulaRoll{Expression: parsed.Args[0]})

	case "worlds":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		list, err := a.worlds.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("The Engine hosts no worlds.")
			return nil
		}
		for _, w := range list {
			fmt.Printf("  %s  %s\n", w.ID, w.Name)
		}
		return nil

	case "help":
		fmt.Print(a.registry.Help())
		return nil

	default:
		return fmt.Errorf("command %q is not wired up", cmd.Name)
	}
}

// splitIDAndText parses "<request-id> <freeform text>" argument shapes.
func splitIDAndText(parsed frontend.ParseResult, cmd *frontend.Command) (string, string, error) {
	if len(parsed.Args) < 2 {
		return "", "", fmt.Errorf("usage: %s", cmd.Usage)
	}
	requestID := parsed.Args[0]
	rest := strings.TrimSpace(strings.TrimPrefix(parsed.RawArgs, requestID))
	return requestID, rest, nil
}
