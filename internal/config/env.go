package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Runtime holds settings read from the environment: the Nakama runtime env map on
// the server, the process environment in the terminal host.
type Runtime struct {
	ResolveDelay  time.Duration `env:"CONCENTRATION_RESOLVE_DELAY" envDefault:"1s"`
	BotLevel      string        `env:"CONCENTRATION_BOT_LEVEL"`
	BotThinkDelay time.Duration `env:"CONCENTRATION_BOT_THINK_DELAY" envDefault:"1s"`
	BotFlipDelay  time.Duration `env:"CONCENTRATION_BOT_FLIP_DELAY" envDefault:"1s"`
	TickRate      int           `env:"CONCENTRATION_TICK_RATE" envDefault:"10"`
	TicketSecret  string        `env:"CONCENTRATION_TICKET_SECRET"`
	TicketIssuer  string        `env:"CONCENTRATION_TICKET_ISSUER" envDefault:"concentration"`
	TicketTTL     time.Duration `env:"CONCENTRATION_TICKET_TTL" envDefault:"5m"`
	ConfigPath    string        `env:"CONCENTRATION_CONFIG_PATH" envDefault:"data/game_config.json"`
	LogLevel      string        `env:"CONCENTRATION_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv parses process environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadRuntime reads runtime settings from environ, or from the process
// environment when environ is nil.
func LoadRuntime(environ map[string]string) (Runtime, error) {
	var cfg Runtime
	if environ == nil {
		if err := ParseEnv(&cfg); err != nil {
			return Runtime{}, err
		}
	} else if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TickRate <= 0 {
		return Runtime{}, fmt.Errorf("tick rate must be positive, got %d", cfg.TickRate)
	}
	return cfg, nil
}

// TickInterval is the wall-clock length of one match tick.
func (r Runtime) TickInterval() time.Duration {
	return time.Second / time.Duration(r.TickRate)
}
