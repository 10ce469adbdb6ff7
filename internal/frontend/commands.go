package frontend

import (
	"fmt"
	"sort"
	"strings"
)

// Command describes one player-facing session command.
type Command struct {
	// Name is the canonical lowercase command word.
	Name string
	// Aliases are alternate words that resolve to this command.
	Aliases []string
	// Usage is the one-line syntax shown in help output.
	Usage string
	// Help is a short description of what the command does.
	Help string
	// DMOnly marks commands that only make sense for the DungeonMaster
	// role. They still parse for everyone; the Engine enforces roles.
	DMOnly bool
}

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}

	for i := range cmds {
		cmd := &cmds[i]
		if _, exists := r.commands[cmd.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, exists := r.aliases[cmd.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with command name %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}

	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	input = strings.ToLower(input)
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Help renders the usage table, sorted by command name.
func (r *Registry) Help() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		cmd := r.commands[name]
		label := cmd.Usage
		if cmd.DMOnly {
			label += " (DM)"
		}
		fmt.Fprintf(&b, "  %-32s %s\n", label, cmd.Help)
	}
	return b.String()
}

// BuiltinCommands returns the full command set for the player loop.
func BuiltinCommands() []Command {
	return []Command{
		{
			Name:    "say",
			Aliases: []string{"talk", "'"},
			Usage:   "say <npc> <dialogue>",
			Help:    "Speak to a character in the scene.",
		},
		{
			Name:    "examine",
			Aliases: []string{"look", "x"},
			Usage:   "examine <target>",
			Help:    "Look closely at something or someone.",
		},
		{
			Name:    "use",
			Aliases: []string{"item"},
			Usage:   "use <item> [target]",
			Help:    "Use an item, optionally on a target.",
		},
		{
			Name:    "travel",
			Aliases: []string{"go", "move"},
			Usage:   "travel <location>",
			Help:    "Travel to a connected location.",
		},
		{
			Name:  "choice",
			Usage: "choice <number>",
			Help:  "Pick a numbered dialogue choice.",
		},
		{
			Name:  "do",
			Usage: "do <anything>",
			Help:  "Attempt a freeform action.",
		},
		{
			Name:   "scene",
			Usage:  "scene <location-id>",
			Help:   "Request a scene change.",
			DMOnly: true,
		},
		{
			Name:   "direct",
			Usage:  "direct <preset-name>",
			Help:   "Push a directorial preset to the Engine.",
			DMOnly: true,
		},
		{
			Name:    "approve",
			Aliases: []string{"a"},
			Usage:   "approve <request-id>",
			Help:    "Approve a pending NPC response as proposed.",
			DMOnly:  true,
		},
		{
			Name:   "modify",
			Usage:  "modify <request-id> <dialogue>",
			Help:   "Approve a pending response with replacement dialogue.",
			DMOnly: true,
		},
		{
			Name:   "reject",
			Usage:  "reject <request-id> <feedback>",
			Help:   "Reject a pending response and ask for a regeneration.",
			DMOnly: true,
		},
		{
			Name:   "takeover",
			Usage:  "takeover <request-id> <dialogue>",
			Help:   "Discard the proposal and speak as the NPC yourself.",
			DMOnly: true,
		},
		{
			Name:   "challenge",
			Usage:  "challenge <challenge-id> <character-id>",
			Help:   "Trigger a skill challenge for a character.",
			DMOnly: true,
		},
		{
			Name:  "roll",
			Usage: "roll <value | formula>",
			Help:  "Answer a challenge prompt with a number or dice formula.",
		},
		{
			Name:  "worlds",
			Usage: "worlds",
			Help:  "List the worlds the Engine hosts.",
		},
		{
			Name:    "help",
			Aliases: []string{"?"},
			Usage:   "help",
			Help:    "Show this command list.",
		},
		{
			Name:    "quit",
			Aliases: []string{"exit"},
			Usage:   "quit",
			Help:    "Leave the session and exit.",
		},
	}
}
