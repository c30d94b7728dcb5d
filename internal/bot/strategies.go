package bot

import (
	"math/rand"

	"concentration/internal/bot/brain"
	"concentration/internal/domain"
)

// MemoryBot plays remembered pairs with a fixed probability and guesses otherwise.
type MemoryBot struct {
	tuning Tuning
	rng    *rand.Rand
}

func NewMemoryBot(tuning Tuning, rng *rand.Rand) *MemoryBot {
	return &MemoryBot{tuning: tuning, rng: rng}
}

func (b *MemoryBot) CalculateMove(view domain.GameState, memory *brain.Memory) (Move, error) {
	available := domain.AvailableCards(view.Cards)
	if len(available) < 2 {
		return Move{}, ErrNoAvailableCards
	}

	if pairs := memory.KnownPairs(available); len(pairs) > 0 && b.exploit() {
		p := pairs[b.rng.Intn(len(pairs))]
		return Move{First: p[0], Second: p[1], FromMemory: true}, nil
	}

	i := b.rng.Intn(len(available))
	j := b.rng.Intn(len(available) - 1)
	if j >= i {
		j++
	}
	return Move{First: available[i], Second: available[j]}, nil
}

func (b *MemoryBot) CompleteMove(view domain.GameState, memory *brain.Memory, move Move) (int, error) {
	available := domain.AvailableCards(view.Cards)
	available = without(available, move.First)
	if len(available) == 0 {
		return 0, ErrNoAvailableCards
	}

	// A guessed first card may turn out to match one already seen.
	if !move.FromMemory {
		if mate, ok := memory.MateOf(move.First, available); ok && b.exploit() {
			return mate, nil
		}
	}
	if contains(available, move.Second) {
		return move.Second, nil
	}
	return available[b.rng.Intn(len(available))], nil
}

func (b *MemoryBot) exploit() bool {
	return b.rng.Float64() < b.tuning.ExploitProbability
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func contains(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
