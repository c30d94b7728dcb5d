package domain

const (
	// MinCards is the smallest playable board: two pairs.
	MinCards = 4
	// MinPlayers is the smallest local-multiplayer table.
	MinPlayers = 2

	DefaultHumanName = "Me"
	DefaultBotName   = "Bot"
)

// DefaultSettings mirrors the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		Mode:        ModeBot,
		CardCount:   20,
		PlayerCount: 2,
		HumanName:   DefaultHumanName,
		BotName:     DefaultBotName,
	}
}
