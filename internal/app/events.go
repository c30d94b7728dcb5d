package app

import "concentration/internal/domain"

// EventKind identifies emitted game events for host dispatch.
type EventKind string

const (
	EventCardFlipped  EventKind = "card_flipped"
	EventPairResolved EventKind = "pair_resolved"
	EventTurnAdvanced EventKind = "turn_advanced"
	EventGameEnded    EventKind = "game_ended"
	EventGameReset    EventKind = "game_reset"
)

// Event is a game event tagged with the state generation that produced it.
type Event struct {
	Kind       EventKind
	Generation uint64
	Payload    any
}

type CardFlippedPayload struct {
	CardID      int
	Symbol      domain.Symbol
	PlayerIndex int
}

type PairResolvedPayload struct {
	CardIDs     [2]int
	Symbol      domain.Symbol // symbol of the first card
	Matched     bool
	PlayerIndex int
	Score       int
}

type TurnAdvancedPayload struct {
	FromIndex int
	ToIndex   int
}

type GameEndedPayload struct {
	Winner      string
	WinnerIndex int
	Tie         bool
	Scores      []int
}

type GameResetPayload struct {
	Settings domain.Settings
}
