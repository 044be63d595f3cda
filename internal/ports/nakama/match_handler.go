package nakama

import (
	"context"
	"database/sql"
	"math/rand"
	"strconv"
	"time"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sanity-io/litter"
)

// matchTickRate is the number of MatchLoop calls per second.
const matchTickRate = 5

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats                domain.Seats                `json:"seats"`            // User IDs by seat, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"`       // Seat index of the match owner
	LastWinnerSeat       int                         `json:"last_winner_seat"` // Winner of the last round bids first in the next
	Tick                 int64                       `json:"tick"`
	BaseStake            int64                       `json:"base_stake"`
	Presences            map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`
	Game                 *app.Game                   `json:"-"` // Current round in progress (nil if in lobby)
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotMinDelay          int64                       `json:"bot_min_delay"`       // Min ticks a bot waits
	BotMaxDelay          int64                       `json:"bot_max_delay"`       // Max ticks a bot waits
	BotAutoFillDelay     int64                       `json:"bot_auto_fill_delay"` // Ticks to wait before auto-filling with bots
	BotWaitUntil         int64                       `json:"bot_wait_until"`
	BotOffset            int                         `json:"bot_offset"` // First identity index used for fill bots
	BotConfig            config.BotConfig            `json:"-"`
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"`
	Bots                 map[string]*bot.Agent       `json:"-"`
	TurnDuration         int64                       `json:"turn_duration"` // Ticks a human has to act, 0 disables the timer
	TurnUserID           string                      `json:"turn_user_id"`
	TurnDeadline         int64                       `json:"turn_deadline"`
	Economy              ports.EconomyPort           `json:"-"`
	Signer               *app.SnapshotSigner         `json:"-"`
	rng                  *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	return domain.SeatCount - ms.Seats.Occupied()
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return ms.Seats.Occupied()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) phase() domain.Phase {
	if ms.Game != nil {
		return domain.PhasePlaying
	}
	return domain.PhaseLobby
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

// msToTicks rounds a millisecond delay up to whole ticks.
func msToTicks(ms int) int64 {
	if ms <= 0 {
		return 0
	}
	return int64((ms*matchTickRate + 999) / 1000)
}

func envInt(env map[string]string, key string) (int, bool) {
	val, ok := env[key]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created. The optional "tier" param
// picks the stake tier advertised in the label.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	tier, _ := params["tier"].(string)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	state := &MatchState{
		Tick:             time.Now().Unix(),
		BaseStake:        cfg.BaseStake(tier),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(rng, cfg.Rules()),
		OwnerSeat:        -1,
		LastWinnerSeat:   -1,
		BotsEnabled:      true,
		BotMinDelay:      msToTicks(cfg.Bots.MinDelayMs),
		BotMaxDelay:      msToTicks(cfg.Bots.MaxDelayMs),
		BotAutoFillDelay: int64(cfg.BotAutoFillDelaySeconds * matchTickRate),
		BotOffset:        rng.Intn(1 << 10),
		BotConfig:        cfg.Bots,
		Bots:             make(map[string]*bot.Agent),
		TurnDuration:     int64(cfg.TurnDurationSeconds * matchTickRate),
		Economy:          NewNakamaEconomyAdapter(nk),
		rng:              rng,
	}

	// Read environment variables for bot and timer configuration
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if i, ok := envInt(env, envBotMinDelayMs); ok {
		state.BotMinDelay = msToTicks(i)
	}
	if i, ok := envInt(env, envBotMaxDelayMs); ok {
		state.BotMaxDelay = msToTicks(i)
	}
	if i, ok := envInt(env, envBotAutoFillDelay); ok {
		state.BotAutoFillDelay = int64(i * matchTickRate)
	}
	if i, ok := envInt(env, envTurnSeconds); ok {
		state.TurnDuration = int64(i * matchTickRate)
	}
	if secret := env[envSnapshotSecret]; secret != "" {
		state.Signer = app.NewSnapshotSigner(secret, snapshotIssuer, time.Hour)
	}

	if state.BotMinDelay <= 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}

	label, err := encodeLabel(domain.ComputeLabel(state.phase(), state.Seats, state.BaseStake))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, matchTickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// A seated player may always reconnect.
	if _, seated := matchState.Seats.SeatOf(presence.GetUserId()); seated {
		return state, true, ""
	}
	if matchState.Game != nil {
		return state, false, "Round in progress"
	}

	// Allow join if there is an empty seat OR a bot to replace
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat, seated := matchState.Seats.SeatOf(userID); seated {
			logger.Info("MatchJoin: User %s reconnected to seat %d", userID, seat)
			mh.resendHand(matchState, dispatcher, logger, seat)
			continue
		}

		// Assign seat: Try empty seats first, then bots (lobby only)
		if seat := domain.LowestAvailableSeat(matchState.Seats); seat >= 0 {
			matchState.Seats[seat] = userID
			continue
		}

		assigned := false
		if matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// MatchLeave frees the seats of leaving players. A seated player leaving a
// round in progress aborts it; nobody is settled for an aborted round.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	ownerLeft := false
	seatLeft := false
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		if i, seated := matchState.Seats.SeatOf(p.GetUserId()); seated {
			matchState.Seats[i] = ""
			seatLeft = true
			logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
			if matchState.OwnerSeat == i {
				ownerLeft = true
			}
		}
	}

	if seatLeft && matchState.Game != nil {
		logger.Info("MatchLeave: Aborting game %s, a seated player left.", matchState.Game.ID)
		for _, ev := range matchState.App.AbortRound(matchState.Game, AbortReasonPlayerLeft) {
			mh.broadcastEvent(ctx, matchState, dispatcher, logger, ev)
		}
		matchState.Game = nil
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		} else if ownerLeft {
			logger.Debug("MatchLeave: Owner left and no human owner is available.")
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpBid, OpPlayCards, OpPassTurn:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.processTurnTimer(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Fill the remaining lobby seats with bots once humans waited long enough
	if state.Game == nil {
		if state.GetHumanPlayerCount() > 0 && state.GetOpenSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Open seats detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= state.BotAutoFillDelay {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(state.BotOffset + i)
					agent, err := mh.newAgent(state, identity)
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = agent.ID
					state.Bots[agent.ID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", agent.Name, agent.ID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(ctx, state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	currentUserID := state.Game.TurnUserID()
	if currentUserID == "" || !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if spread := state.BotMaxDelay - state.BotMinDelay; spread > 0 {
			delay += state.rand().Int63n(spread + 1)
		}
		state.BotWaitUntil = state.Tick + delay
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[currentUserID]
	if !exists {
		// Bots restored from a snapshot have no agent yet.
		var err error
		agent, err = mh.newAgent(state, bot.BotIdentity{UserID: currentUserID})
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[currentUserID] = agent
	}

	seat, err := state.Game.SeatOf(currentUserID)
	if err != nil {
		logger.Error("processBots: Bot %s is not seated: %v", currentUserID, err)
		return
	}
	action, err := agent.Act(state.Game.Round, seat)
	if err != nil {
		logger.Warn("processBots: Bot %s strategy failed, using fallback: %v", currentUserID, err)
	}
	mh.applyAction(ctx, state, dispatcher, logger, action)
}

// newAgent builds the bot for an identity. Identities without a difficulty
// play at the configured fill level.
func (mh *matchHandler) newAgent(state *MatchState, identity bot.BotIdentity) (*bot.Agent, error) {
	level := identity.Level()
	if identity.Difficulty == "" {
		parsed, err := bot.ParseBotLevel(state.BotConfig.Level)
		if err == nil {
			level = parsed
		}
	}
	brain, err := bot.NewBrain(level, state.rand())
	if err != nil {
		return nil, err
	}
	if basic, ok := brain.(*bot.BasicBot); ok && state.BotConfig.CallProbability > 0 {
		basic.CallProbability = state.BotConfig.CallProbability
		basic.GrabProbability = state.BotConfig.GrabProbability
	}

	name := identity.DisplayName
	if name == "" {
		name = bot.GetBotDisplayName(identity.UserID)
	}
	return &bot.Agent{ID: identity.UserID, Name: name, Strategy: brain}, nil
}

// processTurnTimer acts for a human whose turn ran out: a pass whenever the
// rules allow one, otherwise the lowest single.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		state.TurnUserID, state.TurnDeadline = "", 0
		return
	}

	turnUserID := state.Game.TurnUserID()
	if turnUserID != state.TurnUserID {
		state.TurnUserID = turnUserID
		state.TurnDeadline = 0
		if turnUserID != "" && state.TurnDuration > 0 {
			state.TurnDeadline = state.Tick + state.TurnDuration
		}
		return
	}
	if state.TurnDeadline == 0 || state.Tick < state.TurnDeadline || isBotUserId(turnUserID) {
		return
	}

	seat, err := state.Game.SeatOf(turnUserID)
	if err != nil {
		return
	}
	logger.Info("processTurnTimer: User %s (seat %d) timed out.", turnUserID, seat)
	state.TurnDeadline = 0
	mh.applyAction(ctx, state, dispatcher, logger, timeoutAction(state.Game.Round, seat))
}

func timeoutAction(round *domain.Round, seat int) domain.Action {
	if round.Phase() == domain.RoundAuction {
		return domain.BidAction(seat, domain.BidPass)
	}
	if !round.IsLeading(seat) {
		return domain.PassAction(seat)
	}
	hand := round.Hand(seat)
	domain.SortHand(hand)
	return domain.PlayAction(seat, hand[:1])
}

func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]interface{}, 0, domain.SeatCount)
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		} else if agent, ok := state.Bots[userId]; ok && agent.Name != "" {
			displayName = agent.Name
		}

		player := map[string]interface{}{
			"user_id":      userId,
			"seat":         i,
			"display_name": displayName,
			"is_owner":     i == state.OwnerSeat,
			"is_bot":       isBotUserId(userId),
		}
		if state.Game != nil {
			player["cards_remaining"] = state.Game.Round.HandSize(i)
		}
		if state.Economy != nil && !isBotUserId(userId) {
			if balance, err := state.Economy.GetBalance(ctx, userId); err == nil {
				player["balance"] = balance
			} else {
				logger.Warn("broadcastMatchState: Balance lookup for %s failed: %v", userId, err)
			}
		}
		players = append(players, player)
	}

	fields := map[string]interface{}{
		"phase":      string(state.phase()),
		"owner_seat": state.OwnerSeat,
		"tick":       state.Tick,
		"base_stake": state.BaseStake,
		"players":    players,
	}
	if game := state.Game; game != nil {
		fields["game_id"] = game.ID
		fields["round_phase"] = string(game.Round.Phase())
		fields["turn"] = game.TurnUserID()
		fields["multiplier"] = game.Round.Multiplier()
		if landlord := game.LandlordUserID(); landlord != "" {
			fields["landlord"] = landlord
			fields["bottom_cards"] = cardsValue(game.Round.Bottom())
		}
		if last, ok := game.Round.LastPlay(); ok {
			fields["last_play"] = map[string]interface{}{
				"user_id": game.Seats[last.Seat],
				"cards":   cardsValue(last.Combination.Cards),
			}
		}
	}

	data, err := marshalFields(fields)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

// resendHand privately sends a reconnecting player their current hand.
func (mh *matchHandler) resendHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	if state.Game == nil {
		return
	}
	userID := state.Seats[seat]
	mh.broadcastEvent(context.Background(), state, dispatcher, logger, app.Event{
		Kind: app.EventHandDealt,
		Payload: app.HandDealtPayload{
			UserID: userID,
			Seat:   seat,
			Hand:   state.Game.Round.Hand(seat),
		},
		Recipients: []string{userID},
	})
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat, _ := state.Seats.SeatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.Game != nil {
		logger.Warn("StartGame: Game %s already in progress.", state.Game.ID)
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need %d.", activeCount, app.MinPlayersToStartGame)
		return
	}

	game, events, err := state.App.StartGame(state.Seats, state.LastWinnerSeat, state.BaseStake)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}
	state.Game = game

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartGame: Game %s started, stake %d.", game.ID, state.BaseStake)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handleAction: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, app.ErrNotPlaying)
		return
	}
	seat, err := state.Game.SeatOf(senderID)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	action, err := decodeAction(msg.GetOpCode(), seat, msg.GetData())
	if err != nil {
		logger.Warn("handleAction: User %s sent a malformed action: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.applyAction(ctx, state, dispatcher, logger, action)
}

// applyAction runs an action through the service. Rejections go back to the
// acting player only.
func (mh *matchHandler) applyAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, action domain.Action) {
	events, err := state.App.Apply(state.Game, action)
	if err != nil {
		userID := state.Game.Seats[action.Seat]
		logger.Warn("applyAction: User %s (seat %d) %s rejected: %v. Hand: %s", userID, action.Seat, action.Kind, err, domain.FormatCards(state.Game.Round.Hand(action.Seat)))
		mh.sendError(state, dispatcher, logger, userID, err)
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	switch p := ev.Payload.(type) {
	case app.GameEndedPayload:
		mh.settle(ctx, state, logger, p)
		if seat, ok := state.Seats.SeatOf(p.WinnerUserID); ok {
			state.LastWinnerSeat = seat
		}
		state.Game = nil
		mh.updateLabel(state, dispatcher, logger)
	case app.GameAbortedPayload:
		logger.Info("Game aborted: %s", p.Reason)
		state.Game = nil
		mh.updateLabel(state, dispatcher, logger)
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Private events for bots must not leak to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// settle applies the round's balance changes to human wallets.
func (mh *matchHandler) settle(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload) {
	if state.Economy == nil {
		return
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	updates := make([]ports.WalletUpdate, 0, len(p.BalanceChanges))
	for userID, amount := range p.BalanceChanges {
		if isBotUserId(userID) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id":   matchID,
				"reason":     "game_settlement",
				"landlord":   p.LandlordUserID == userID,
				"multiplier": p.Multiplier,
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	data, err := errorPayload(cause)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Debug("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(domain.ComputeLabel(state.phase(), state.Seats, state.BaseStake))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

// MatchSignal exports and restores the round in progress. {"op":"snapshot"}
// replies with a signed token; {"op":"restore","token":...} replaces the
// current game with the sealed one when the seating matches.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, signalError("state not found")
	}
	fields, err := parseSignal(data)
	if err != nil {
		return state, signalError("malformed signal")
	}

	switch fields["op"].GetStringValue() {
	case "snapshot":
		snap, err := matchState.App.Snapshot(matchState.Game)
		if err != nil {
			return state, signalError(err.Error())
		}
		token, err := matchState.Signer.Sign(snap)
		if err != nil {
			logger.Error("MatchSignal: Failed to sign snapshot: %v", err)
			return state, signalError(err.Error())
		}
		return state, signalReply(map[string]interface{}{"token": token})
	case "restore":
		snap, err := matchState.Signer.Verify(fields["token"].GetStringValue())
		if err != nil {
			logger.Warn("MatchSignal: Rejected snapshot: %v", err)
			return state, signalError(err.Error())
		}
		if snap.Seats != matchState.Seats {
			return state, signalError("seating does not match snapshot")
		}
		game, err := matchState.App.RestoreGame(snap)
		if err != nil {
			return state, signalError(err.Error())
		}
		logger.Debug("MatchSignal: Restored game %s", litter.Sdump(snap))
		matchState.Game = game
		matchState.BaseStake = game.BaseStake
		matchState.BotWaitUntil = 0
		matchState.TurnUserID = ""
		mh.updateLabel(matchState, dispatcher, logger)
		mh.broadcastMatchState(ctx, matchState, dispatcher, logger)
		for seat := range matchState.Seats {
			mh.resendHand(matchState, dispatcher, logger, seat)
		}
		return state, signalReply(map[string]interface{}{"ok": true, "game_id": game.ID})
	default:
		return state, signalError("unknown signal")
	}
}

func signalError(message string) string {
	return signalReply(map[string]interface{}{"error": message})
}

func (ms *MatchState) rand() *rand.Rand {
	if ms.rng == nil {
		ms.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ms.rng
}
