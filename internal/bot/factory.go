package bot

import (
	"fmt"
	"math/rand"
)

// NewBrain creates a new AI brain based on the specified level. rng only
// feeds the randomized basic bidder and may be nil.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelBasic:
		return NewBasicBot(rng), nil
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}
