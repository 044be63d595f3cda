package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

func TestSmartBot_LetsPartnerPlay(t *testing.T) {
	r := roundWith(t, 0, 2, [3]string{"5S 6S 7S 8S 10S JS", "4D 8D 9D 10D JD", "4C 9C QC"}, 1, "3S")

	move, err := (&SmartBot{}).CalculateMove(r, 2)
	require.NoError(t, err)
	assert.True(t, move.Pass, "farmer beat its partner with %s", domain.FormatCards(move.Cards))
}

func TestSmartBot_FinishesOverLandlord(t *testing.T) {
	r := roundWith(t, 0, 1, [3]string{"6S 7S 8S 10S", "9D", "4C 9C QC"}, 0, "5S")

	move, err := (&SmartBot{}).CalculateMove(r, 1)
	require.NoError(t, err)
	assert.Equal(t, "9♦", domain.FormatCards(move.Cards))
}

func TestSmartBot_AvoidsLoseableSinglesAgainstLastCard(t *testing.T) {
	r := roundWith(t, 0, 0, [3]string{"3S 4H 9S 9H", "AS", "5C 6C 7C 8C 10C JC"}, 0, "")

	move, err := (&SmartBot{}).CalculateMove(r, 0)
	require.NoError(t, err)
	assert.Equal(t, "9♠ 9♥", domain.FormatCards(move.Cards))
}

func TestSmartBot_Bids(t *testing.T) {
	b := &SmartBot{}

	bid, err := b.CalculateBid(auctionRound(t, 0, strongHand), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.BidCall, bid)

	bid, err = b.CalculateBid(auctionRound(t, 0, weakHand), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.BidPass, bid)

	r := auctionRound(t, 1, strongHand)
	require.NoError(t, r.Bid(0, domain.BidCall))
	bid, err = b.CalculateBid(r, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BidDouble, bid)
}
