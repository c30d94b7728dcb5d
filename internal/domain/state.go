package domain

// Status represents the lifecycle stage of a Concentration game.
type Status string

const (
	// StatusPlaying is the active state where cards can be flipped.
	StatusPlaying Status = "playing"
	// StatusEnded is reached once every card is matched. It is terminal until reset.
	StatusEnded Status = "ended"
)

// Mode selects who sits at the table.
type Mode string

const (
	// ModeBot pits one human against one computer opponent.
	ModeBot Mode = "bot"
	// ModeLocalMultiplayer is pass-and-play between humans on one device.
	ModeLocalMultiplayer Mode = "local-multiplayer"
)

// Symbol is an opaque face tag. Two cards match when their symbols are equal.
type Symbol string

// Card is a single position on the board.
type Card struct {
	ID        int
	Symbol    Symbol
	IsFlipped bool
	IsMatched bool
}

// Hidden reports whether the card is face down and still in play.
func (c Card) Hidden() bool {
	return !c.IsFlipped && !c.IsMatched
}

// Player holds per-participant state. Score only grows, one point per pair won.
type Player struct {
	ID            string
	Name          string
	Score         int
	IsBot         bool
	EarnedSymbols []Symbol
}

// Settings configures a game.
type Settings struct {
	Mode        Mode
	CardCount   int
	PlayerCount int // ignored in bot mode
	HumanName   string
	BotName     string
}

// SettingsPatch carries optional overrides merged over existing Settings.
type SettingsPatch struct {
	Mode        *Mode
	CardCount   *int
	PlayerCount *int
	HumanName   *string
	BotName     *string
}

// Merge returns a copy of s with every non-nil field of p applied.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s
	if p.Mode != nil {
		out.Mode = *p.Mode
	}
	if p.CardCount != nil {
		out.CardCount = *p.CardCount
	}
	if p.PlayerCount != nil {
		out.PlayerCount = *p.PlayerCount
	}
	if p.HumanName != nil {
		out.HumanName = *p.HumanName
	}
	if p.BotName != nil {
		out.BotName = *p.BotName
	}
	return out
}

// GameState is the authoritative state of one game.
//
// PendingFlips holds the ids of face-up unresolved cards, at most two. A card is
// flipped but unmatched exactly when its id is pending.
type GameState struct {
	Cards              []Card
	Players            []Player
	CurrentPlayerIndex int
	PendingFlips       []int
	IsResolving        bool
	Status             Status

	// Winner is the display name of the winner, empty until the game ends.
	Winner      string
	WinnerIndex int
	// Tie is set when more than one player shares the top score.
	Tie bool

	// Generation increases on every restart.
	Generation uint64
}

// NewGameState returns a fresh playing state over the given deck and roster.
func NewGameState(cards []Card, players []Player, generation uint64) GameState {
	return GameState{
		Cards:       cards,
		Players:     players,
		Status:      StatusPlaying,
		WinnerIndex: -1,
		Generation:  generation,
	}
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	out := s
	out.Cards = append([]Card(nil), s.Cards...)
	out.PendingFlips = append([]int(nil), s.PendingFlips...)
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.EarnedSymbols = append([]Symbol(nil), p.EarnedSymbols...)
		out.Players[i] = p
	}
	return out
}

// Masked returns a deep copy in which the symbols of face-down cards are blank.
func (s GameState) Masked() GameState {
	out := s.Clone()
	for i := range out.Cards {
		if out.Cards[i].Hidden() {
			out.Cards[i].Symbol = ""
		}
	}
	return out
}

// CurrentPlayer returns the player whose turn it is.
func (s *GameState) CurrentPlayer() (Player, bool) {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}
