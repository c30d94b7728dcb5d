package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateSettings checks settings against the catalog the deck will be drawn from.
func ValidateSettings(s Settings, catalog []Symbol) error {
	switch s.Mode {
	case ModeBot:
	case ModeLocalMultiplayer:
		if s.PlayerCount < MinPlayers {
			return configErr("player count", ErrTooFewPlayers)
		}
	default:
		return configErr("mode", ErrUnknownMode)
	}
	return ValidateCardCount(s.CardCount, catalog)
}

// BuildRoster returns the players in turn order, all with zero score.
// Bot mode always seats the human first and the bot second.
func BuildRoster(s Settings) ([]Player, error) {
	switch s.Mode {
	case ModeBot:
		human := s.HumanName
		if human == "" {
			human = DefaultHumanName
		}
		botName := s.BotName
		if botName == "" {
			botName = DefaultBotName
		}
		return []Player{newPlayer(human, false), newPlayer(botName, true)}, nil
	case ModeLocalMultiplayer:
		if s.PlayerCount < MinPlayers {
			return nil, configErr("player count", ErrTooFewPlayers)
		}
		players := make([]Player, 0, s.PlayerCount)
		for i := 1; i <= s.PlayerCount; i++ {
			players = append(players, newPlayer(fmt.Sprintf("Player %d", i), false))
		}
		return players, nil
	default:
		return nil, configErr("mode", ErrUnknownMode)
	}
}

func newPlayer(name string, isBot bool) Player {
	return Player{
		ID:    uuid.NewString(),
		Name:  name,
		IsBot: isBot,
	}
}
