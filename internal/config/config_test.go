package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"concentration/internal/domain"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGameConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadGameConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadGameConfig error: %v", err)
	}
	if got := cfg.Settings(); got != domain.DefaultSettings() {
		t.Fatalf("Settings() = %+v", got)
	}
	if len(cfg.Catalog()) != len(domain.DefaultCatalog()) {
		t.Fatal("default catalog not used")
	}
}

func TestLoadGameConfigOverrides(t *testing.T) {
	path := writeFile(t, `{
		"defaults": {"mode": "local-multiplayer", "card_count": 6, "player_count": 3},
		"bot_level": "hard",
		"symbols": ["Sun", "Moon", "Star"]
	}`)
	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig error: %v", err)
	}
	s := cfg.Settings()
	if s.Mode != domain.ModeLocalMultiplayer || s.CardCount != 6 || s.PlayerCount != 3 {
		t.Fatalf("Settings() = %+v", s)
	}
	if s.HumanName != domain.DefaultHumanName {
		t.Fatalf("HumanName = %q, want default kept", s.HumanName)
	}
	if cfg.BotLevel != "hard" || len(cfg.Catalog()) != 3 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadGameConfigRejectsBadFiles(t *testing.T) {
	if _, err := LoadGameConfig(writeFile(t, `{"defaults":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	_, err := LoadGameConfig(writeFile(t, `{"defaults": {"card_count": 8}, "symbols": ["Sun", "Moon"]}`))
	if !errors.Is(err, domain.ErrTooManyPairs) {
		t.Fatalf("error = %v, want ErrTooManyPairs", err)
	}
}

func TestLoadRuntimeDefaults(t *testing.T) {
	cfg, err := LoadRuntime(map[string]string{})
	if err != nil {
		t.Fatalf("LoadRuntime error: %v", err)
	}
	if cfg.ResolveDelay != time.Second || cfg.TickRate != 10 || cfg.TicketTTL != 5*time.Minute {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.TickInterval() != 100*time.Millisecond {
		t.Fatalf("TickInterval() = %v", cfg.TickInterval())
	}
}

func TestLoadRuntimeFromMap(t *testing.T) {
	cfg, err := LoadRuntime(map[string]string{
		"CONCENTRATION_RESOLVE_DELAY": "250ms",
		"CONCENTRATION_BOT_LEVEL":     "easy",
		"CONCENTRATION_TICK_RATE":     "4",
		"CONCENTRATION_TICKET_SECRET": "s3cret",
	})
	if err != nil {
		t.Fatalf("LoadRuntime error: %v", err)
	}
	if cfg.ResolveDelay != 250*time.Millisecond || cfg.BotLevel != "easy" || cfg.TickRate != 4 || cfg.TicketSecret != "s3cret" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRuntimeFromProcessEnv(t *testing.T) {
	t.Setenv("CONCENTRATION_BOT_THINK_DELAY", "2s")
	cfg, err := LoadRuntime(nil)
	if err != nil {
		t.Fatalf("LoadRuntime error: %v", err)
	}
	if cfg.BotThinkDelay != 2*time.Second {
		t.Fatalf("BotThinkDelay = %v", cfg.BotThinkDelay)
	}
}

func TestLoadRuntimeErrors(t *testing.T) {
	if _, err := LoadRuntime(map[string]string{"CONCENTRATION_RESOLVE_DELAY": "soon"}); err == nil {
		t.Fatal("expected error for bad duration")
	}
	if _, err := LoadRuntime(map[string]string{"CONCENTRATION_TICK_RATE": "0"}); err == nil {
		t.Fatal("expected error for zero tick rate")
	}
}

func TestParseEnvWrapsErrors(t *testing.T) {
	t.Setenv("CONCENTRATION_TICK_RATE", "fast")
	var cfg Runtime
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected parse error")
	}
}
