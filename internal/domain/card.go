package domain

import (
	"fmt"
	"strings"
)

// Rank is the play strength of a card. Values match the table used by clients:
// 3..10 are face values, J=11, Q=12, K=13, A=14, 2=15, small joker=16, big joker=17.
type Rank int32

const (
	Rank3 Rank = iota + 3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	Rank2
	RankSmallJoker
	RankBigJoker
)

// Suit only matters for display and for telling identical ranks apart.
type Suit int32

const (
	SuitNone Suit = iota // jokers
	SuitSpades
	SuitHearts
	SuitClubs
	SuitDiamonds
)

// Card is a single card of the 54-card deck.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

var rankLabels = map[Rank]string{
	Rank3: "3", Rank4: "4", Rank5: "5", Rank6: "6", Rank7: "7", Rank8: "8",
	Rank9: "9", Rank10: "10", RankJ: "J", RankQ: "Q", RankK: "K", RankA: "A",
	Rank2: "2", RankSmallJoker: "SJ", RankBigJoker: "BJ",
}

var suitLabels = map[Suit]string{
	SuitSpades:   "♠",
	SuitHearts:   "♥",
	SuitClubs:    "♣",
	SuitDiamonds: "♦",
}

// Valid reports whether the rank is part of the deck.
func (r Rank) Valid() bool {
	return r >= Rank3 && r <= RankBigJoker
}

// IsJoker reports whether the rank is one of the two jokers.
func (r Rank) IsJoker() bool {
	return r == RankSmallJoker || r == RankBigJoker
}

func (r Rank) String() string {
	if label, ok := rankLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("Rank(%d)", int32(r))
}

func (s Suit) String() string {
	if label, ok := suitLabels[s]; ok {
		return label
	}
	return ""
}

// Valid reports whether the card exists in a standard landlord deck.
func (c Card) Valid() bool {
	if !c.Rank.Valid() {
		return false
	}
	if c.Rank.IsJoker() {
		return c.Suit == SuitNone
	}
	return c.Suit >= SuitSpades && c.Suit <= SuitDiamonds
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// FormatCards renders cards separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// ParseCard parses the textual card forms accepted from players, e.g. "3S",
// "10h", "QD", "A♠", "sj", "BJ".
func ParseCard(s string) (Card, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	switch raw {
	case "SJ", "JOKER":
		return Card{Rank: RankSmallJoker}, nil
	case "BJ":
		return Card{Rank: RankBigJoker}, nil
	}
	if raw == "" {
		return Card{}, fmt.Errorf("empty card")
	}

	var suit Suit
	var rankPart string
	switch {
	case strings.HasSuffix(raw, "♠"):
		suit, rankPart = SuitSpades, strings.TrimSuffix(raw, "♠")
	case strings.HasSuffix(raw, "♥"):
		suit, rankPart = SuitHearts, strings.TrimSuffix(raw, "♥")
	case strings.HasSuffix(raw, "♣"):
		suit, rankPart = SuitClubs, strings.TrimSuffix(raw, "♣")
	case strings.HasSuffix(raw, "♦"):
		suit, rankPart = SuitDiamonds, strings.TrimSuffix(raw, "♦")
	default:
		last := raw[len(raw)-1]
		rankPart = raw[:len(raw)-1]
		switch last {
		case 'S':
			suit = SuitSpades
		case 'H':
			suit = SuitHearts
		case 'C':
			suit = SuitClubs
		case 'D':
			suit = SuitDiamonds
		default:
			return Card{}, fmt.Errorf("card %q: unknown suit", s)
		}
	}

	for rank, label := range rankLabels {
		if rank.IsJoker() {
			continue
		}
		if label == rankPart {
			return Card{Rank: rank, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("card %q: unknown rank", s)
}

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
