package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"concentration/internal/domain"
)

// SettingsConfig is the on-disk form of domain.Settings.
type SettingsConfig struct {
	Mode        string `json:"mode"`
	CardCount   int    `json:"card_count"`
	PlayerCount int    `json:"player_count"`
	HumanName   string `json:"human_name"`
	BotName     string `json:"bot_name"`
}

type GameConfig struct {
	Defaults SettingsConfig `json:"defaults"`
	BotLevel string         `json:"bot_level"`
	// Symbols overrides the built-in catalog when non-empty.
	Symbols []string `json:"symbols"`
}

// DefaultGameConfig returns the built-in configuration.
func DefaultGameConfig() *GameConfig {
	d := domain.DefaultSettings()
	return &GameConfig{
		Defaults: SettingsConfig{
			Mode:        string(d.Mode),
			CardCount:   d.CardCount,
			PlayerCount: d.PlayerCount,
			HumanName:   d.HumanName,
			BotName:     d.BotName,
		},
		BotLevel: "medium",
	}
}

// LoadGameConfig reads the game configuration from path. A missing file yields the
// built-in defaults; fields absent from the file keep their default values.
func LoadGameConfig(path string) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := domain.ValidateSettings(cfg.Settings(), cfg.Catalog()); err != nil {
		return nil, fmt.Errorf("game config defaults: %w", err)
	}
	return cfg, nil
}

// Settings converts the configured defaults.
func (c *GameConfig) Settings() domain.Settings {
	return domain.Settings{
		Mode:        domain.Mode(c.Defaults.Mode),
		CardCount:   c.Defaults.CardCount,
		PlayerCount: c.Defaults.PlayerCount,
		HumanName:   c.Defaults.HumanName,
		BotName:     c.Defaults.BotName,
	}
}

// Catalog returns the configured symbols, or the built-in set.
func (c *GameConfig) Catalog() []domain.Symbol {
	if len(c.Symbols) == 0 {
		return domain.DefaultCatalog()
	}
	out := make([]domain.Symbol, len(c.Symbols))
	for i, s := range c.Symbols {
		out[i] = domain.Symbol(s)
	}
	return out
}
