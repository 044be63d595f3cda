package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"landlord/internal/domain"
)

type StakeTier struct {
	ID        string `json:"id"`
	BaseStake int64  `json:"base_stake"`
}

type BotConfig struct {
	// MinDelayMs and MaxDelayMs bound the random thinking time before a bot acts.
	MinDelayMs      int     `json:"min_delay_ms"`
	MaxDelayMs      int     `json:"max_delay_ms"`
	CallProbability float64 `json:"call_probability"`
	GrabProbability float64 `json:"grab_probability"`
	// Level picks the policy used for lobby fill bots: "basic", "good" or "smart".
	Level string `json:"level"`
}

type GameConfig struct {
	DefaultTier         string              `json:"default_tier"`
	Tiers               []StakeTier         `json:"tiers"`
	Auction             domain.AuctionRules `json:"auction"`
	MaxRedeals          int                 `json:"max_redeals"`
	TurnDurationSeconds int                 `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling a lobby with bots.
	BotAutoFillDelaySeconds int       `json:"bot_auto_fill_delay_seconds"`
	Bots                    BotConfig `json:"bots"`
}

const defaultBaseStake = 100

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the configuration used when no file is loaded.
func Default() *GameConfig {
	return &GameConfig{
		DefaultTier:             "standard",
		Tiers:                   []StakeTier{{ID: "standard", BaseStake: defaultBaseStake}},
		Auction:                 domain.DefaultAuctionRules(),
		MaxRedeals:              3,
		TurnDurationSeconds:     20,
		BotAutoFillDelaySeconds: 5,
		Bots: BotConfig{
			MinDelayMs:      800,
			MaxDelayMs:      2000,
			CallProbability: 0.4,
			GrabProbability: 0.2,
			Level:           "good",
		},
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig parses a config file on top of the defaults.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.Auction = c.Auction.Normalize()
	if c.MaxRedeals < 0 {
		c.MaxRedeals = 0
	}
	if c.Bots.MaxDelayMs < c.Bots.MinDelayMs {
		c.Bots.MaxDelayMs = c.Bots.MinDelayMs
	}
	return c, nil
}

// GetGameConfig returns the global game configuration, or the defaults if
// none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// GetBaseStake returns the base stake for a given tier ID, or the default if not found.
func GetBaseStake(tierID string) int64 {
	return GetGameConfig().BaseStake(tierID)
}

// BaseStake resolves a tier ID against this config.
func (c *GameConfig) BaseStake(tierID string) int64 {
	target := tierID
	if target == "" {
		target = c.DefaultTier
	}

	for _, tier := range c.Tiers {
		if tier.ID == target {
			return tier.BaseStake
		}
	}

	// Fallback to default tier if specific ID not found
	for _, tier := range c.Tiers {
		if tier.ID == c.DefaultTier {
			return tier.BaseStake
		}
	}

	return defaultBaseStake
}

// Rules converts the config into the rules rounds are played under.
func (c *GameConfig) Rules() domain.Rules {
	return domain.Rules{Auction: c.Auction.Normalize(), MaxRedeals: c.MaxRedeals}
}
