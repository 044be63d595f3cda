package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

const (
	strongHand = "SJ BJ 2S 2H 2C 2D AS AH 3S 4S 5S 6S 7S 8S 9S 10S JS"
	weakHand   = "3H 3C 4H 4C 5H 5C 6H 6C 7H 7C 8H 8C 9H 9C 10H 10C JH"
)

func mustCards(t *testing.T, s string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(s)
	require.NoError(t, err)
	return cards
}

// auctionRound deals hand to seat, splits the rest of the deck in order and
// opens the auction at seat 0.
func auctionRound(t *testing.T, seat int, hand string) *domain.Round {
	t.Helper()
	held := mustCards(t, hand)
	require.Len(t, held, domain.HandSize)
	rest := domain.RemoveCards(domain.NewDeck(), held)

	var deal domain.Deal
	for s := 0; s < domain.SeatCount; s++ {
		if s == seat {
			deal.Hands[s] = held
			continue
		}
		deal.Hands[s], rest = rest[:domain.HandSize], rest[domain.HandSize:]
	}
	deal.Bottom = rest

	r, err := domain.NewRound(deal, 0, domain.DefaultAuctionRules())
	require.NoError(t, err)
	return r
}

// roundWith builds a playing round. Cards in no hand are booked as played by
// the landlord; an empty last leaves the turn seat leading.
func roundWith(t *testing.T, landlord, turn int, hands [domain.SeatCount]string, lastSeat int, last string) *domain.Round {
	t.Helper()
	var snap domain.RoundSnapshot
	var held []domain.Card
	for seat, h := range hands {
		snap.Hands[seat] = mustCards(t, h)
		held = append(held, snap.Hands[seat]...)
	}
	rest := domain.RemoveCards(domain.NewDeck(), held)

	snap.Phase = domain.RoundPlaying
	snap.Rules = domain.DefaultAuctionRules()
	snap.Bottom = append([]domain.Card{}, rest[:domain.BottomSize]...)
	snap.Landlord = landlord
	snap.TurnSeat = turn
	snap.Multiplier = 2
	snap.Plays = [domain.SeatCount]int{1, 1, 1}
	snap.Winner = -1
	snap.History = []domain.MoveRecord{{Seat: landlord, Kind: domain.MovePlay, Cards: rest}}
	if last != "" {
		snap.LastPlay = &domain.LastPlaySnapshot{Seat: lastSeat, Cards: mustCards(t, last)}
	}

	r, err := domain.RestoreRound(snap)
	require.NoError(t, err)
	return r
}
