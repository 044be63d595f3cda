package bot

import (
	"math/rand"
	"time"

	"landlord/internal/domain"
)

const (
	defaultCallProbability = 0.4
	defaultGrabProbability = 0.2
)

// BasicBot is the minimal-commitment opponent: it leads its lowest single,
// answers singles and pairs with the cheapest beat and passes on anything
// else. Bids are coin flips against fixed odds.
type BasicBot struct {
	rng             *rand.Rand
	CallProbability float64
	GrabProbability float64
}

// NewBasicBot constructs a BasicBot with provided rng or a time-seeded default.
func NewBasicBot(rng *rand.Rand) *BasicBot {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BasicBot{
		rng:             rng,
		CallProbability: defaultCallProbability,
		GrabProbability: defaultGrabProbability,
	}
}

func (b *BasicBot) CalculateMove(round *domain.Round, seat int) (Move, error) {
	hand := round.Hand(seat)
	if len(hand) == 0 {
		return Move{Pass: true}, nil
	}
	return b.ChooseAction(hand, lastCombination(round, seat), round.IsLeading(seat)), nil
}

// ChooseAction picks a play from hand alone. It never looks ahead.
func (b *BasicBot) ChooseAction(hand []domain.Card, lastPlay domain.CardCombination, leading bool) Move {
	if len(hand) == 0 {
		return Move{Pass: true}
	}
	cards := make([]domain.Card, len(hand))
	copy(cards, hand)
	domain.SortHand(cards)

	if leading || !lastPlay.Valid() {
		return Move{Cards: []domain.Card{cards[0]}}
	}

	switch lastPlay.Type {
	case domain.Single:
		for _, c := range cards {
			if c.Rank > lastPlay.Value {
				return Move{Cards: []domain.Card{c}}
			}
		}
	case domain.Pair:
		for i := 0; i+1 < len(cards); i++ {
			if cards[i].Rank == cards[i+1].Rank && cards[i].Rank > lastPlay.Value {
				return Move{Cards: []domain.Card{cards[i], cards[i+1]}}
			}
		}
	}
	return Move{Pass: true}
}

func (b *BasicBot) CalculateBid(round *domain.Round, seat int) (domain.AuctionAction, error) {
	auction, err := biddingAuction(round, seat)
	if err != nil {
		return domain.BidPass, err
	}

	switch auction.Phase() {
	case domain.AuctionAwaitingFirstCall:
		if b.rng.Float64() < b.CallProbability {
			return domain.BidCall, nil
		}
	case domain.AuctionAwaitingGrabs:
		if auction.CanAct(domain.BidGrab) && b.rng.Float64() < b.GrabProbability {
			return domain.BidGrab, nil
		}
	}
	return domain.BidPass, nil
}
