package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"concentration/internal/domain"
)

type CommandKind int

const (
	CmdFlip CommandKind = iota + 1
	CmdReset
	CmdNew
	CmdBoard
	CmdHelp
	CmdQuit
)

var ErrEmptyCommand = errors.New("empty command")

// Command is one parsed line of input. Card is a card id (zero-based); Patch is
// set for CmdNew.
type Command struct {
	Kind  CommandKind
	Card  int
	Patch *domain.SettingsPatch
}

// ParseCommand reads one line typed at the prompt. Players number cards from 1.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	if _, err := strconv.Atoi(fields[0]); err == nil {
		return parseFlip(fields[0])
	}

	switch fields[0] {
	case "flip", "f":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: flip <card>")
		}
		return parseFlip(fields[1])
	case "reset", "r":
		return Command{Kind: CmdReset}, nil
	case "new", "n":
		return parseNew(fields[1:])
	case "board", "b":
		return Command{Kind: CmdBoard}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q, type help", fields[0])
	}
}

func parseFlip(arg string) (Command, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return Command{}, fmt.Errorf("card must be a number from 1, got %q", arg)
	}
	return Command{Kind: CmdFlip, Card: n - 1}, nil
}

func parseNew(args []string) (Command, error) {
	if len(args) < 2 || len(args) > 3 {
		return Command{}, fmt.Errorf("usage: new <bot|local> <cards> [players]")
	}
	mode, err := parseMode(args[0])
	if err != nil {
		return Command{}, err
	}
	cards, err := strconv.Atoi(args[1])
	if err != nil {
		return Command{}, fmt.Errorf("card count must be a number, got %q", args[1])
	}
	patch := &domain.SettingsPatch{Mode: &mode, CardCount: &cards}
	if len(args) == 3 {
		players, err := strconv.Atoi(args[2])
		if err != nil {
			return Command{}, fmt.Errorf("player count must be a number, got %q", args[2])
		}
		patch.PlayerCount = &players
	}
	return Command{Kind: CmdNew, Patch: patch}, nil
}

func parseMode(s string) (domain.Mode, error) {
	switch s {
	case "bot":
		return domain.ModeBot, nil
	case "local", string(domain.ModeLocalMultiplayer):
		return domain.ModeLocalMultiplayer, nil
	default:
		return "", fmt.Errorf("unknown mode %q, use bot or local", s)
	}
}
