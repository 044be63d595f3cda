package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameLandlord is the authoritative match handler name registered with Nakama.
	MatchNameLandlord = "landlord_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpBid       int64 = 2
	OpPlayCards int64 = 3
	OpPassTurn  int64 = 4

	// Server -> Client events
	OpMatchState      int64 = 101
	OpHandDealt       int64 = 102 // send privately
	OpAuctionStarted  int64 = 103
	OpBidPlaced       int64 = 104
	OpAuctionVoided   int64 = 105
	OpLandlordDecided int64 = 106
	OpCardPlayed      int64 = 107
	OpTurnPassed      int64 = 108
	OpGameEnded       int64 = 109
	OpGameAborted     int64 = 110
	OpGameError       int64 = 111 // send privately
)

// Runtime env keys read in MatchInit.
const (
	envBotsEnabled      = "landlord_bots_enabled"
	envBotMinDelayMs    = "landlord_bot_min_delay_ms"
	envBotMaxDelayMs    = "landlord_bot_max_delay_ms"
	envBotAutoFillDelay = "landlord_bot_auto_fill_delay_sec"
	envTurnSeconds      = "landlord_turn_seconds"
	envSnapshotSecret   = "landlord_snapshot_secret"
	envConfigPath       = "landlord_config_path"
	envIdentitiesPath   = "landlord_bot_identities_path"
)

const (
	defaultConfigPath     = "data/game_config.json"
	defaultIdentitiesPath = "data/bot_identities.json"

	snapshotIssuer = "landlord_match"

	// AbortReasonPlayerLeft is recorded when a seated human leaves mid-round.
	AbortReasonPlayerLeft = "player_left"
)
