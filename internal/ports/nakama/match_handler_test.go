package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	msg := sentMessage{opCode: opCode, data: append([]byte(nil), data...)}
	for _, p := range presences {
		msg.recipients = append(msg.recipients, p.GetUserId())
	}
	md.sent = append(md.sent, msg)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) last() sentMessage {
	if len(md.sent) == 0 {
		return sentMessage{}
	}
	return md.sent[len(md.sent)-1]
}

func (md *mockDispatcher) byOpCode(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

type mockEconomy struct {
	balances map[string]int64
	updates  []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	if balance, ok := me.balances[userID]; ok {
		return balance, nil
	}
	return 0, errors.New("balance not found")
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

type testPresence struct {
	userID string
}

func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return false }
func (p testPresence) GetUsername() string               { return "name-" + p.userID }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p testPresence) GetUserId() string                 { return p.userID }
func (p testPresence) GetSessionId() string              { return "session-" + p.userID }
func (p testPresence) GetNodeId() string                 { return "node" }

type testMatchData struct {
	testPresence
	opCode int64
	data   []byte
}

func (m testMatchData) GetOpCode() int64      { return m.opCode }
func (m testMatchData) GetData() []byte       { return m.data }
func (m testMatchData) GetReliable() bool     { return true }
func (m testMatchData) GetReceiveTime() int64 { return 0 }

const testSecret = "test-secret"

// newTestState seats the given users; every non-bot user gets a presence.
func newTestState(seats ...string) (*MatchState, *mockEconomy) {
	rng := rand.New(rand.NewSource(7))
	economy := &mockEconomy{balances: map[string]int64{}}
	state := &MatchState{
		OwnerSeat:        -1,
		LastWinnerSeat:   0,
		BaseStake:        100,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(rng, domain.DefaultRules()),
		BotsEnabled:      true,
		BotMinDelay:      1,
		BotMaxDelay:      1,
		BotAutoFillDelay: 2,
		BotConfig:        config.Default().Bots,
		Bots:             make(map[string]*bot.Agent),
		Economy:          economy,
		Signer:           app.NewSnapshotSigner(testSecret, snapshotIssuer, time.Hour),
		rng:              rng,
	}
	for i, userID := range seats {
		state.Seats[i] = userID
		if userID != "" && !isBotUserId(userID) {
			state.Presences[userID] = testPresence{userID: userID}
			economy.balances[userID] = 1000
		}
	}
	state.OwnerSeat = findFirstHumanSeat(state.Seats[:])
	return state, economy
}

func startTestGame(t *testing.T, state *MatchState, dispatcher *mockDispatcher) {
	t.Helper()
	owner := state.Seats[state.OwnerSeat]
	(&matchHandler{}).handleStartGame(context.Background(), state, dispatcher, noopLogger{}, testMatchData{testPresence: testPresence{owner}, opCode: OpStartGame})
	require.NotNil(t, state.Game)
}

func decodeFields(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	msg := &structpb.Struct{}
	require.NoError(t, proto.Unmarshal(data, msg))
	return msg.AsMap()
}

func encodeFields(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	data, err := marshalFields(fields)
	require.NoError(t, err)
	return data
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{name: "FirstHumanAfterBot", seats: []string{bot1, "user-1", ""}, want: 1},
		{name: "AllBots", seats: []string{bot1, bot2, ""}, want: -1},
		{name: "AllEmpty", seats: []string{"", "", ""}, want: -1},
		{name: "FirstHumanIsSeatZero", seats: []string{"user-1", bot1, "user-2"}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, findFirstHumanSeat(test.seats))
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	assert.True(t, shouldTerminateNoHumans([]string{bot1, bot2, ""}))
	assert.True(t, shouldTerminateNoHumans([]string{"", "", ""}))
	assert.False(t, shouldTerminateNoHumans([]string{bot1, "user-1", ""}))
}

func TestEncodeLabel(t *testing.T) {
	tests := []struct {
		name  string
		phase domain.Phase
		seats domain.Seats
		want  map[string]interface{}
	}{
		{
			name:  "LobbyWithSeatsLeft",
			phase: domain.PhaseLobby,
			seats: domain.Seats{"user-1", "", ""},
			want:  map[string]interface{}{"open": true, "game": "landlord", "phase": "lobby", "players": 1.0, "base_stake": 100.0},
		},
		{
			name:  "Playing",
			phase: domain.PhasePlaying,
			seats: domain.Seats{"user-1", "user-2", "user-3"},
			want:  map[string]interface{}{"open": false, "game": "landlord", "phase": "playing", "players": 3.0, "base_stake": 100.0},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			label, err := encodeLabel(domain.ComputeLabel(test.phase, test.seats, 100))
			require.NoError(t, err)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(label), &got))
			assert.Equal(t, test.want, got)
		})
	}
}

func TestDecodeAction(t *testing.T) {
	t.Run("Bid", func(t *testing.T) {
		action, err := decodeAction(OpBid, 1, encodeFields(t, map[string]interface{}{"bid": "grab"}))
		require.NoError(t, err)
		assert.Equal(t, domain.BidAction(1, domain.BidGrab), action)
	})

	t.Run("PlayWithLabelsAndObjects", func(t *testing.T) {
		data := encodeFields(t, map[string]interface{}{
			"cards": []interface{}{
				"10H",
				map[string]interface{}{"rank": int32(domain.Rank10), "suit": int32(domain.SuitSpades)},
			},
		})
		action, err := decodeAction(OpPlayCards, 2, data)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionPlay, action.Kind)
		assert.Equal(t, 2, action.Seat)
		assert.Equal(t, []domain.Card{
			{Rank: domain.Rank10, Suit: domain.SuitHearts},
			{Rank: domain.Rank10, Suit: domain.SuitSpades},
		}, action.Cards)
	})

	t.Run("Pass", func(t *testing.T) {
		action, err := decodeAction(OpPassTurn, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.PassAction(0), action)
	})

	t.Run("MalformedCards", func(t *testing.T) {
		_, err := decodeAction(OpPlayCards, 0, encodeFields(t, map[string]interface{}{"cards": "3S"}))
		assert.ErrorIs(t, err, domain.ErrMalformedAction)
	})

	t.Run("UnknownCardLabel", func(t *testing.T) {
		_, err := decodeAction(OpPlayCards, 0, encodeFields(t, map[string]interface{}{"cards": []interface{}{"1Z"}}))
		assert.ErrorIs(t, err, domain.ErrMalformedAction)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := decodeAction(OpBid, 0, []byte{0xff, 0xff})
		assert.ErrorIs(t, err, domain.ErrMalformedAction)
	})
}

func TestEncodeEvent_CardPlayed(t *testing.T) {
	cards := []domain.Card{{Rank: domain.Rank3, Suit: domain.SuitSpades}, {Rank: domain.Rank3, Suit: domain.SuitHearts}}
	opCode, data, err := encodeEvent(app.Event{
		Kind: app.EventCardPlayed,
		Payload: app.CardPlayedPayload{
			UserID:         "user-1",
			Cards:          cards,
			Combination:    domain.Pair,
			Multiplier:     4,
			CardsLeft:      15,
			NextTurnUserID: "user-2",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OpCardPlayed, opCode)

	fields := decodeFields(t, data)
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, domain.Pair.String(), fields["combination"])
	assert.Equal(t, 4.0, fields["multiplier"])
	assert.Equal(t, 15.0, fields["cards_left"])
	assert.Equal(t, "user-2", fields["next_turn"])
	require.Len(t, fields["cards"], 2)
	first := fields["cards"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "3♠", first["label"])
}

func TestEncodeEvent_UnknownPayload(t *testing.T) {
	_, _, err := encodeEvent(app.Event{Kind: "mystery", Payload: 42})
	assert.Error(t, err)
}

func TestProcessBots_FillsOpenSeats(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1")
	state.LastSinglePlayerTick = 8
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
			assert.Contains(t, state.Bots, seat)
		}
	}
	assert.Equal(t, 2, botCount)
	assert.Equal(t, 0, state.GetOpenSeatsCount())
	assert.Zero(t, state.LastSinglePlayerTick)
	assert.Positive(t, dispatcher.labelUpdates)
	assert.NotEmpty(t, dispatcher.byOpCode(OpMatchState))
}

func TestProcessBots_WaitsForAutoFillDelay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1")
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	assert.Equal(t, int64(10), state.LastSinglePlayerTick)
	assert.Equal(t, 2, state.GetOpenSeatsCount())
	assert.Empty(t, dispatcher.sent)
}

func TestMatchJoinAttempt(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)

	_, ok, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, testPresence{"user-4"}, nil)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	_, ok, _ = handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, testPresence{"user-2"}, nil)
	assert.True(t, ok, "seated players may reconnect")
}

func TestMatchJoin_ReplacesBotInLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.GetBotIdentity(0).UserID
	state, _ := newTestState("user-1", botID, "user-3")
	state.Bots[botID] = &bot.Agent{ID: botID}

	_, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, testPresence{"user-4"}, nil)
	require.True(t, ok)
	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{testPresence{"user-4"}})

	assert.Equal(t, domain.Seats{"user-1", "user-4", "user-3"}, state.Seats)
	assert.NotContains(t, state.Bots, botID)
}

func TestMatchJoin_ReconnectResendsHand(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)
	delete(state.Presences, "user-2")
	dispatcher.sent = nil

	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{testPresence{"user-2"}})

	dealt := dispatcher.byOpCode(OpHandDealt)
	require.Len(t, dealt, 1)
	assert.Equal(t, []string{"user-2"}, dealt[0].recipients)
	assert.Len(t, decodeFields(t, dealt[0].data)["hand"], state.Game.Round.HandSize(1))
}

func TestHandleStartGame_DealsPrivately(t *testing.T) {
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)

	dealt := dispatcher.byOpCode(OpHandDealt)
	require.Len(t, dealt, domain.SeatCount)
	for i, msg := range dealt {
		assert.Equal(t, []string{state.Seats[i]}, msg.recipients)
	}
	started := dispatcher.byOpCode(OpAuctionStarted)
	require.Len(t, started, 1)
	assert.Empty(t, started[0].recipients)
	assert.Equal(t, "user-1", decodeFields(t, started[0].data)["first_bidder"])
}

func TestHandleStartGame_OnlyOwner(t *testing.T) {
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")

	(&matchHandler{}).handleStartGame(context.Background(), state, dispatcher, noopLogger{}, testMatchData{testPresence: testPresence{"user-2"}, opCode: OpStartGame})
	assert.Nil(t, state.Game)
}

func TestHandleAction_RejectsOutOfTurnPrivately(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)
	require.Equal(t, "user-1", state.Game.TurnUserID())
	dispatcher.sent = nil

	call := encodeFields(t, map[string]interface{}{"bid": "call"})
	handler.handleAction(context.Background(), state, dispatcher, noopLogger{}, testMatchData{testPresence: testPresence{"user-2"}, opCode: OpBid, data: call})

	msg := dispatcher.last()
	assert.Equal(t, OpGameError, msg.opCode)
	assert.Equal(t, []string{"user-2"}, msg.recipients)
	assert.Equal(t, "out_of_turn", decodeFields(t, msg.data)["code"])

	handler.handleAction(context.Background(), state, dispatcher, noopLogger{}, testMatchData{testPresence: testPresence{"user-1"}, opCode: OpBid, data: call})
	placed := dispatcher.byOpCode(OpBidPlaced)
	require.Len(t, placed, 1)
	fields := decodeFields(t, placed[0].data)
	assert.Equal(t, "call", fields["action"])
	assert.Equal(t, "user-2", fields["next_turn"])
}

func TestMatchLeave_AbortsRound(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, economy := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)

	next := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{testPresence{"user-3"}})

	require.NotNil(t, next)
	assert.Nil(t, state.Game)
	assert.Equal(t, domain.Seats{"user-1", "user-2", ""}, state.Seats)
	aborted := dispatcher.byOpCode(OpGameAborted)
	require.Len(t, aborted, 1)
	assert.Equal(t, AbortReasonPlayerLeft, decodeFields(t, aborted[0].data)["reason"])
	assert.Empty(t, economy.updates)
}

func TestMatchLeave_TerminatesWithoutHumans(t *testing.T) {
	botID := bot.GetBotIdentity(0).UserID
	state, _ := newTestState("user-1", botID, "")

	next := (&matchHandler{}).MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, []runtime.Presence{testPresence{"user-1"}})
	assert.Nil(t, next)
}

func TestMatchLoop_BotsAndTimeoutsFinishGame(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, economy := newTestState("user-1")
	state.BotConfig.Level = string(bot.BotLevelSmart)
	state.TurnDuration = 1
	ctx := context.Background()

	var tick int64
	loop := func() {
		tick++
		handler.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, tick, state, nil)
	}

	for state.GetOpenSeatsCount() > 0 && tick < 100 {
		loop()
	}
	require.Zero(t, state.GetOpenSeatsCount())

	startTestGame(t, state, dispatcher)
	for state.Game != nil && tick < 10000 {
		loop()
	}
	require.Nil(t, state.Game, "round should finish")

	assert.Empty(t, dispatcher.byOpCode(OpGameError), "bots and timeouts only take legal actions")

	ended := dispatcher.byOpCode(OpGameEnded)
	aborted := dispatcher.byOpCode(OpGameAborted)
	require.Equal(t, 1, len(ended)+len(aborted))
	if len(ended) == 1 {
		require.Len(t, economy.updates, 1, "bots are not settled")
		assert.Equal(t, "user-1", economy.updates[0].UserID)
		assert.Equal(t, "game_settlement", economy.updates[0].Metadata["reason"])
		changes := decodeFields(t, ended[0].data)["balance_changes"].(map[string]interface{})
		assert.Equal(t, float64(economy.updates[0].Amount), changes["user-1"])
	}
}

func TestTimeoutAction(t *testing.T) {
	state, _ := newTestState("user-1", "user-2", "user-3")
	dispatcher := &mockDispatcher{}
	startTestGame(t, state, dispatcher)
	round := state.Game.Round

	assert.Equal(t, domain.BidAction(0, domain.BidPass), timeoutAction(round, 0))

	require.NoError(t, round.Bid(0, domain.BidCall))
	require.NoError(t, round.Bid(1, domain.BidPass))
	require.NoError(t, round.Bid(2, domain.BidPass))
	require.Equal(t, domain.RoundPlaying, round.Phase())

	lead := timeoutAction(round, 0)
	require.Equal(t, domain.ActionPlay, lead.Kind)
	hand := round.Hand(0)
	domain.SortHand(hand)
	assert.Equal(t, hand[:1], lead.Cards)

	_, err := round.Apply(lead)
	require.NoError(t, err)
	assert.Equal(t, domain.PassAction(1), timeoutAction(round, 1))
}

func TestMatchSignal_SnapshotAndRestore(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)
	gameID := state.Game.ID
	hand := state.Game.Round.Hand(1)

	_, reply := handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, `{"op":"snapshot"}`)
	var snapReply map[string]string
	require.NoError(t, json.Unmarshal([]byte(reply), &snapReply))
	token := snapReply["token"]
	require.NotEmpty(t, token)

	state.Game = nil
	restore, err := json.Marshal(map[string]string{"op": "restore", "token": token})
	require.NoError(t, err)
	_, reply = handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, string(restore))

	assert.Contains(t, reply, gameID)
	require.NotNil(t, state.Game)
	assert.Equal(t, gameID, state.Game.ID)
	assert.Equal(t, hand, state.Game.Round.Hand(1))

	tampered, err := json.Marshal(map[string]string{"op": "restore", "token": token + "x"})
	require.NoError(t, err)
	_, reply = handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, string(tampered))
	assert.Contains(t, reply, "error")
}

func TestMatchSignal_RejectsForeignSeating(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state, _ := newTestState("user-1", "user-2", "user-3")
	startTestGame(t, state, dispatcher)

	_, reply := handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, `{"op":"snapshot"}`)
	var snapReply map[string]string
	require.NoError(t, json.Unmarshal([]byte(reply), &snapReply))

	other, _ := newTestState("user-1", "user-2", "user-9")
	restore, err := json.Marshal(map[string]string{"op": "restore", "token": snapReply["token"]})
	require.NoError(t, err)
	_, reply = handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, other, string(restore))
	assert.Contains(t, reply, "seating")
	assert.Nil(t, other.Game)
}

func TestQuickMatchQuery(t *testing.T) {
	assert.Equal(t, "+label.open:T +label.game:landlord +label.phase:lobby +label.base_stake:100", quickMatchQuery(100))
}

func TestMsToTicks(t *testing.T) {
	assert.Equal(t, int64(0), msToTicks(0))
	assert.Equal(t, int64(1), msToTicks(100))
	assert.Equal(t, int64(4), msToTicks(800))
	assert.Equal(t, int64(10), msToTicks(2000))
}
