package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

func mustCards(t *testing.T, s string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(s)
	require.NoError(t, err)
	return cards
}

// roundWith builds a playing round. Cards in no hand are booked as played by
// the landlord; an empty last leaves the turn seat leading.
func roundWith(t *testing.T, landlord, turn int, hands [domain.SeatCount]string, plays [domain.SeatCount]int, lastSeat int, last string) *domain.Round {
	t.Helper()
	var snap domain.RoundSnapshot
	var held []domain.Card
	for seat, h := range hands {
		snap.Hands[seat] = mustCards(t, h)
		held = append(held, snap.Hands[seat]...)
	}
	rest := domain.RemoveCards(domain.NewDeck(), held)
	require.Len(t, rest, domain.DeckSize-len(held))

	snap.Phase = domain.RoundPlaying
	snap.Rules = domain.DefaultAuctionRules()
	snap.Bottom = append([]domain.Card{}, rest[:domain.BottomSize]...)
	snap.Landlord = landlord
	snap.TurnSeat = turn
	snap.Multiplier = 2
	snap.Plays = plays
	snap.Winner = -1
	snap.History = []domain.MoveRecord{{Seat: landlord, Kind: domain.MovePlay, Cards: rest}}
	if last != "" {
		snap.LastPlay = &domain.LastPlaySnapshot{Seat: lastSeat, Cards: mustCards(t, last)}
	}

	r, err := domain.RestoreRound(snap)
	require.NoError(t, err)
	return r
}

func combo(t *testing.T, s string) domain.CardCombination {
	t.Helper()
	c := domain.IdentifyCombination(mustCards(t, s))
	require.True(t, c.Valid(), "%s is not a combination", s)
	return c
}
