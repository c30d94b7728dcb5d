package bot

import (
	"fmt"
	"strings"
	"time"
)

// BotLevel selects how well the bot plays.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota + 1
	BotLevelMedium
	BotLevelHard
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelMedium:
		return "medium"
	case BotLevelHard:
		return "hard"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a config string onto a BotLevel.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return BotLevelEasy, nil
	case "", "medium":
		return BotLevelMedium, nil
	case "hard":
		return BotLevelHard, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// Tuning holds the knobs of one level.
type Tuning struct {
	// ExploitProbability is the chance the bot plays a pair it remembers instead of guessing.
	ExploitProbability float64
	// MemoryCapacity caps remembered cards; zero means unlimited.
	MemoryCapacity int
}

// DefaultTuning holds the built-in levels. Medium plays a known pair two times out of three.
var DefaultTuning = map[BotLevel]Tuning{
	BotLevelEasy:   {ExploitProbability: 1.0 / 3, MemoryCapacity: 6},
	BotLevelMedium: {ExploitProbability: 2.0 / 3},
	BotLevelHard:   {ExploitProbability: 0.95},
}

const (
	// DefaultThinkDelay is the pause before the bot turns its first card.
	DefaultThinkDelay = time.Second
	// DefaultFlipDelay is the pause between the bot's first and second card.
	DefaultFlipDelay = time.Second
)
