package bot

import (
	"errors"

	"concentration/internal/bot/brain"
	"concentration/internal/domain"
)

// ErrNoAvailableCards is returned when nothing on the board can be flipped.
var ErrNoAvailableCards = errors.New("no cards available to flip")

// Move represents the decision made by the AI.
type Move struct {
	First  int
	Second int
	// FromMemory is set when the pair was chosen from remembered cards.
	FromMemory bool
}

// Brain is the interface that all bot strategies must implement. Both calls get a
// masked view in which face-down cards carry no symbol.
type Brain interface {
	// CalculateMove plans a turn before any card is turned.
	CalculateMove(view domain.GameState, memory *brain.Memory) (Move, error)
	// CompleteMove picks the second card once the first one is face up.
	CompleteMove(view domain.GameState, memory *brain.Memory, move Move) (int, error)
}
