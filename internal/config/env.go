package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Env holds the settings of the offline terminal game, read from LANDLORD_*
// environment variables.
type Env struct {
	ConfigPath string        `env:"LANDLORD_CONFIG,default=data/game_config.json"`
	PlayerName string        `env:"LANDLORD_PLAYER,default=You"`
	BotLevel   string        `env:"LANDLORD_BOT_LEVEL,default=good"`
	Seed       int64         `env:"LANDLORD_SEED"`
	ThinkDelay time.Duration `env:"LANDLORD_THINK_DELAY,default=700ms"`
	Rounds     int           `env:"LANDLORD_ROUNDS,default=1"`
	Tier       string        `env:"LANDLORD_TIER"`
	Debug      bool          `env:"LANDLORD_DEBUG"`
}

// LoadEnv decodes the environment into an Env.
func LoadEnv() (Env, error) {
	var e Env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	if e.Rounds < 1 {
		e.Rounds = 1
	}
	if e.ThinkDelay < 0 {
		e.ThinkDelay = 0
	}
	return e, nil
}
