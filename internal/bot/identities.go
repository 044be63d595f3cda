package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

// Level maps the identity's difficulty to a strategy. Unknown difficulties
// play at the good level.
func (b BotIdentity) Level() BotLevel {
	switch b.Difficulty {
	case "easy":
		return BotLevelBasic
	case "hard":
		return BotLevelSmart
	default:
		return BotLevelGood
	}
}

var (
	botIdentities []BotIdentity
	botIndex      map[string]BotIdentity
	identitiesMu  sync.RWMutex
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

const fallbackBotPrefix = "bot-"

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		setIdentities(identities)
	})
	return loadErr
}

func setIdentities(identities []BotIdentity) {
	identitiesMu.Lock()
	defer identitiesMu.Unlock()

	botIdentities = identities
	botIndex = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botIndex[identity.UserID] = identity
		}
	}
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and have the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identitiesMu.RLock()
		identities := append([]BotIdentity(nil), botIdentities...)
		identitiesMu.RUnlock()

		for i := range identities {
			identity := &identities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"level":        string(identity.Level()),
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			logger.Info("ProvisionBots: Bot %s (%s) is ready. Level: %s", identity.DisplayName, userID, identity.Level())
		}
		setIdentities(identities)
	})
}

// GetBotDisplayName returns the display name for a bot ID, or an empty string if not a bot.
func GetBotDisplayName(userID string) string {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()

	identity, ok := botIndex[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()

	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", fallbackBotPrefix, index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	identity := botIdentities[index%len(botIdentities)]
	if identity.UserID == "" {
		// Not provisioned yet.
		identity.UserID = fmt.Sprintf("%s%d", fallbackBotPrefix, index)
	}
	return identity
}

// IsBot reports whether the given user ID belongs to the bot pool. Unpooled
// fallback identities carry the "bot-" prefix.
func IsBot(userID string) bool {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()

	if _, ok := botIndex[userID]; ok {
		return true
	}
	return strings.HasPrefix(userID, fallbackBotPrefix)
}
