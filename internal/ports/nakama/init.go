package nakama

import (
	"context"
	"database/sql"

	"landlord/internal/bot"
	"landlord/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule loads game data, provisions bot accounts and wires RPCs and
// match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	configPath := defaultConfigPath
	if path := env[envConfigPath]; path != "" {
		configPath = path
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}

	identitiesPath := defaultIdentitiesPath
	if path := env[envIdentitiesPath]; path != "" {
		identitiesPath = path
	}
	if err := bot.LoadIdentities(identitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameLandlord, NewMatch); err != nil {
		return err
	}

	logger.Info("Landlord Go module loaded.")
	return nil
}
