package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	tuning, ok := DefaultTuning[level]
	if !ok {
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return NewMemoryBot(tuning, rng), nil
}
