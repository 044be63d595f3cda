package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCards(t *testing.T, s string) []Card {
	t.Helper()
	cards, err := ParseCards(s)
	require.NoError(t, err)
	return cards
}

// playingRound builds a round already in the playing phase. Every card not in
// the given hands is booked as played so the deck stays conserved.
func playingRound(t *testing.T, landlord, turn int, hands [SeatCount]string, plays [SeatCount]int, multiplier int) *Round {
	t.Helper()
	var snap RoundSnapshot
	var held []Card
	for seat, h := range hands {
		snap.Hands[seat] = mustCards(t, h)
		held = append(held, snap.Hands[seat]...)
	}
	rest := RemoveCards(NewDeck(), held)
	require.Len(t, rest, DeckSize-len(held))

	snap.Phase = RoundPlaying
	snap.Rules = DefaultAuctionRules()
	snap.Bottom = append([]Card{}, rest[:BottomSize]...)
	snap.Landlord = landlord
	snap.TurnSeat = turn
	snap.Multiplier = multiplier
	snap.Plays = plays
	snap.Winner = -1
	snap.History = []MoveRecord{{Seat: landlord, Kind: MovePlay, Cards: rest}}

	r, err := RestoreRound(snap)
	require.NoError(t, err)
	return r
}
