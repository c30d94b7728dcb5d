package domain

// CardIndex returns the slice index of the card with the given id, or -1.
func CardIndex(cards []Card, id int) int {
	if id >= 0 && id < len(cards) && cards[id].ID == id {
		return id
	}
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AvailableCards returns the ids of cards that are neither face up nor matched.
func AvailableCards(cards []Card) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		if c.Hidden() {
			out = append(out, c.ID)
		}
	}
	return out
}

// AllMatched reports whether every card on the board has been matched.
func AllMatched(cards []Card) bool {
	for _, c := range cards {
		if !c.IsMatched {
			return false
		}
	}
	return true
}

// ComputeWinner returns the index of the first player in turn order holding the top
// score, and whether that score is shared. It returns -1 for an empty roster.
func ComputeWinner(players []Player) (int, bool) {
	best := -1
	tie := false
	for i, p := range players {
		switch {
		case best < 0 || p.Score > players[best].Score:
			best = i
			tie = false
		case p.Score == players[best].Score:
			tie = true
		}
	}
	return best, tie
}

// LabelPayload is the advertised match label.
type LabelPayload struct {
	Open   bool   `json:"open"`
	Game   string `json:"game"`
	Mode   string `json:"mode"`
	Status string `json:"status"`
}

// ComputeLabel derives the advertised label from settings and state.
func ComputeLabel(settings Settings, s *GameState, seated bool) LabelPayload {
	return LabelPayload{
		Open:   !seated,
		Game:   "concentration",
		Mode:   string(settings.Mode),
		Status: string(s.Status),
	}
}
