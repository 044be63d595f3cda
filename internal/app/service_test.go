package app

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

var testSeats = domain.Seats{"u0", "u1", "u2"}

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), domain.DefaultRules())
}

func eventsOfKind(evs []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestStartGameDealsHands(t *testing.T) {
	svc := newTestService(42)

	game, evs, err := svc.StartGame(testSeats, 1, 100)
	require.NoError(t, err)
	require.NotEmpty(t, game.ID)
	assert.Equal(t, domain.RoundAuction, game.Round.Phase())
	assert.Equal(t, "u1", game.TurnUserID())

	hands := eventsOfKind(evs, EventHandDealt)
	require.Len(t, hands, 3)
	for _, ev := range hands {
		payload := ev.Payload.(HandDealtPayload)
		assert.Len(t, payload.Hand, domain.HandSize)
		assert.Equal(t, []string{payload.UserID}, ev.Recipients, "hands are private")
	}

	started := eventsOfKind(evs, EventAuctionStarted)
	require.Len(t, started, 1)
	assert.Empty(t, started[0].Recipients)
	assert.Equal(t, "u1", started[0].Payload.(AuctionStartedPayload).FirstBidderUserID)
}

func TestStartGameNeedsThreePlayers(t *testing.T) {
	svc := newTestService(1)
	_, _, err := svc.StartGame(domain.Seats{"u0", "", "u2"}, 0, 100)
	assert.ErrorIs(t, err, ErrTooFewPlayers)
}

func TestStartGameRandomFirstBidder(t *testing.T) {
	svc := newTestService(3)
	game, _, err := svc.StartGame(testSeats, -1, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, game.FirstBidder, 0)
	assert.Less(t, game.FirstBidder, domain.SeatCount)
}

func TestBidDecidesLandlord(t *testing.T) {
	svc := newTestService(5)
	game, _, err := svc.StartGame(testSeats, 0, 100)
	require.NoError(t, err)

	evs, err := svc.Bid(game, "u0", domain.BidCall)
	require.NoError(t, err)
	placed := evs[0].Payload.(BidPlacedPayload)
	assert.Equal(t, 2, placed.Multiplier)
	assert.Equal(t, "u1", placed.NextTurnUserID)

	_, err = svc.Bid(game, "u1", domain.BidPass)
	require.NoError(t, err)
	evs, err = svc.Bid(game, "u2", domain.BidPass)
	require.NoError(t, err)

	decided := eventsOfKind(evs, EventLandlordDecided)
	require.Len(t, decided, 1)
	payload := decided[0].Payload.(LandlordDecidedPayload)
	assert.Equal(t, "u0", payload.UserID)
	assert.Len(t, payload.BottomCards, domain.BottomSize)
	assert.Equal(t, "u0", game.LandlordUserID())
	assert.Equal(t, "u0", game.TurnUserID())
}

func TestBidRejections(t *testing.T) {
	svc := newTestService(5)
	game, _, err := svc.StartGame(testSeats, 0, 100)
	require.NoError(t, err)

	_, err = svc.Bid(game, "u1", domain.BidCall)
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)

	_, err = svc.Bid(game, "stranger", domain.BidCall)
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = svc.Bid(&Game{}, "u0", domain.BidCall)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestVoidAuctionRedealsAndRotates(t *testing.T) {
	svc := newTestService(8)
	game, _, err := svc.StartGame(testSeats, 0, 100)
	require.NoError(t, err)
	firstRound := game.Round

	var evs []Event
	for _, uid := range []string{"u0", "u1", "u2"} {
		evs, err = svc.Bid(game, uid, domain.BidPass)
		require.NoError(t, err)
	}

	require.Len(t, eventsOfKind(evs, EventAuctionVoided), 1)
	require.Len(t, eventsOfKind(evs, EventHandDealt), 3)
	assert.NotSame(t, firstRound, game.Round)
	assert.Equal(t, 1, game.Redeals)
	assert.Equal(t, 1, game.FirstBidder)
	assert.Equal(t, domain.RoundAuction, game.Round.Phase())
	assert.Equal(t, "u1", game.TurnUserID())
}

func TestTooManyVoidsAbortsGame(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(8)), domain.Rules{Auction: domain.DefaultAuctionRules(), MaxRedeals: 1})
	game, _, err := svc.StartGame(testSeats, 0, 100)
	require.NoError(t, err)

	var evs []Event
	for i := 0; i < 2*domain.SeatCount; i++ {
		evs, err = svc.Bid(game, game.TurnUserID(), domain.BidPass)
		require.NoError(t, err)
	}

	aborted := eventsOfKind(evs, EventGameAborted)
	require.Len(t, aborted, 1)
	assert.Equal(t, AbortReasonNoLandlord, aborted[0].Payload.(GameAbortedPayload).Reason)
	assert.Equal(t, domain.RoundVoid, game.Round.Phase())
	assert.Equal(t, "", game.TurnUserID())
}

// resolveAuction makes the first bidder landlord.
func resolveAuction(t *testing.T, svc *Service, game *Game) {
	t.Helper()
	for _, action := range []domain.AuctionAction{domain.BidCall, domain.BidPass, domain.BidPass} {
		_, err := svc.Bid(game, game.TurnUserID(), action)
		require.NoError(t, err)
	}
	require.Equal(t, domain.RoundPlaying, game.Round.Phase())
}

func TestPlayAndPassEvents(t *testing.T) {
	svc := newTestService(13)
	game, _, err := svc.StartGame(testSeats, 2, 100)
	require.NoError(t, err)
	resolveAuction(t, svc, game)

	lowest := game.Round.Hand(2)[0]
	evs, err := svc.PlayCards(game, "u2", []domain.Card{lowest})
	require.NoError(t, err)
	played := evs[0].Payload.(CardPlayedPayload)
	assert.Equal(t, domain.Single, played.Combination)
	assert.Equal(t, domain.HandSize+domain.BottomSize-1, played.CardsLeft)
	assert.Equal(t, "u0", played.NextTurnUserID)

	_, err = svc.PassTurn(game, "u2")
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)

	evs, err = svc.PassTurn(game, "u0")
	require.NoError(t, err)
	assert.False(t, evs[0].Payload.(TurnPassedPayload).TrickCleared)

	evs, err = svc.PassTurn(game, "u1")
	require.NoError(t, err)
	passed := evs[0].Payload.(TurnPassedPayload)
	assert.True(t, passed.TrickCleared)
	assert.Equal(t, "u2", passed.NextTurnUserID)
}

func TestPlayCardsAndEnd(t *testing.T) {
	svc := newTestService(99)
	game, _, err := svc.StartGame(testSeats, 0, 50)
	require.NoError(t, err)
	resolveAuction(t, svc, game)

	// The landlord leads singles until it runs out; farmers always pass.
	var evs []Event
	for game.Round.Phase() == domain.RoundPlaying {
		uid := game.TurnUserID()
		seat, err := game.SeatOf(uid)
		require.NoError(t, err)
		if game.Round.IsLeading(seat) {
			evs, err = svc.PlayCards(game, uid, game.Round.Hand(seat)[:1])
		} else {
			evs, err = svc.PassTurn(game, uid)
		}
		require.NoError(t, err)
	}

	ended := eventsOfKind(evs, EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(GameEndedPayload)
	assert.Equal(t, "u0", payload.WinnerUserID)
	assert.True(t, payload.LandlordWon)
	assert.True(t, payload.Perfect)
	// unit = 50 * 2 (call) * 2 (perfect)
	assert.Equal(t, map[string]int64{"u0": 400, "u1": -200, "u2": -200}, payload.BalanceChanges)
	require.NotNil(t, game.Settlement)

	_, err = svc.PassTurn(game, "u1")
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)
}

func TestApplyAction(t *testing.T) {
	svc := newTestService(21)
	game, _, err := svc.StartGame(testSeats, 1, 100)
	require.NoError(t, err)

	evs, err := svc.Apply(game, domain.BidAction(1, domain.BidCall))
	require.NoError(t, err)
	assert.Equal(t, EventBidPlaced, evs[0].Kind)

	_, err = svc.Apply(game, domain.Action{Kind: domain.ActionPlay, Seat: 2})
	assert.ErrorIs(t, err, domain.ErrMalformedAction)
}

func TestAbortRound(t *testing.T) {
	svc := newTestService(2)
	game, _, err := svc.StartGame(testSeats, 0, 100)
	require.NoError(t, err)

	evs := svc.AbortRound(game, "u1 left")
	require.Len(t, evs, 1)
	assert.Equal(t, EventGameAborted, evs[0].Kind)
	assert.Equal(t, domain.RoundAborted, game.Round.Phase())
	assert.Empty(t, svc.AbortRound(game, "again"))

	_, err = svc.Bid(game, "u0", domain.BidCall)
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)
}
