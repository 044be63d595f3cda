package domain

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	// DeckSize is the full landlord deck: 52 suited cards plus two jokers.
	DeckSize = 54
	// SeatCount is the number of seats at a landlord table.
	SeatCount = 3
	// HandSize is the number of cards dealt to each seat before the auction.
	HandSize = 17
	// BottomSize is the number of cards reserved for the landlord.
	BottomSize = 3
)

// NewDeck returns a sorted 54-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for r := Rank3; r <= Rank2; r++ {
		for s := SuitSpades; s <= SuitDiamonds; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	deck = append(deck, Card{Rank: RankSmallJoker}, Card{Rank: RankBigJoker})
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortHand orders a hand by ascending power.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cardPower(cards[i]) < cardPower(cards[j])
	})
}

func cardPower(c Card) int32 {
	return int32(c.Rank)*8 + int32(c.Suit)
}

// Deal is one partition of the deck: a private hand per seat plus the bottom.
type Deal struct {
	Hands  [SeatCount][]Card
	Bottom []Card
}

// DealCards shuffles a fresh deck and partitions it. The first three cards
// of the shuffled deck become the bottom.
func DealCards(rng *rand.Rand) Deal {
	deck := ShuffleDeck(NewDeck(), rng)
	var d Deal
	d.Bottom = append([]Card{}, deck[:BottomSize]...)
	SortHand(d.Bottom)
	rest := deck[BottomSize:]
	for seat := 0; seat < SeatCount; seat++ {
		hand := append([]Card{}, rest[seat*HandSize:(seat+1)*HandSize]...)
		SortHand(hand)
		d.Hands[seat] = hand
	}
	return d
}

// Verify checks that the deal covers the full deck exactly once.
func (d Deal) Verify() error {
	groups := make([][]Card, 0, SeatCount+1)
	for _, h := range d.Hands {
		groups = append(groups, h)
	}
	groups = append(groups, d.Bottom)
	return verifyConservation(groups...)
}

// verifyConservation checks that the union of the groups is the 54-card deck
// with no duplicates and no omissions.
func verifyConservation(groups ...[]Card) error {
	seen := make(map[Card]bool, DeckSize)
	total := 0
	for _, g := range groups {
		for _, c := range g {
			if !c.Valid() {
				return fmt.Errorf("card %v is not part of the deck", c)
			}
			if seen[c] {
				return fmt.Errorf("card %v appears twice", c)
			}
			seen[c] = true
			total++
		}
	}
	if total != DeckSize {
		return fmt.Errorf("expected %d cards, found %d", DeckSize, total)
	}
	return nil
}
