package bot

import (
	"sort"

	"landlord/internal/bot/internal"
	"landlord/internal/domain"
)

// GoodBot plays its lowest legal combination and keeps bombs back unless an
// opponent is about to go out.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(round *domain.Round, seat int) (Move, error) {
	hand := round.Hand(seat)
	if len(hand) == 0 {
		return Move{Pass: true}, nil
	}

	validMoves := internal.GetValidMoves(hand, lastCombination(round, seat))
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	for _, m := range validMoves {
		if len(m.Cards) == len(hand) {
			return Move{Cards: m.Cards}, nil
		}
	}

	// Play lowest; on equal value shed more cards.
	sort.SliceStable(validMoves, func(i, j int) bool {
		if validMoves[i].Combo.Value != validMoves[j].Combo.Value {
			return validMoves[i].Combo.Value < validMoves[j].Combo.Value
		}
		return len(validMoves[i].Cards) > len(validMoves[j].Cards)
	})

	threat := internal.DetectThreat(round, seat, goodBotThreatThreshold)
	for _, m := range validMoves {
		if m.Combo.Type.IsBomb() && !threat {
			continue
		}
		return Move{Cards: m.Cards}, nil
	}

	if round.IsLeading(seat) {
		return Move{Cards: validMoves[0].Cards}, nil
	}
	return Move{Pass: true}, nil
}

// CalculateBid calls or grabs when the hand holds enough control cards. It
// never doubles.
func (b *GoodBot) CalculateBid(round *domain.Round, seat int) (domain.AuctionAction, error) {
	auction, err := biddingAuction(round, seat)
	if err != nil {
		return domain.BidPass, err
	}
	strength := internal.BidStrength(round.Hand(seat))

	switch auction.Phase() {
	case domain.AuctionAwaitingFirstCall:
		if strength >= goodBotBids.Call {
			return domain.BidCall, nil
		}
	case domain.AuctionAwaitingGrabs:
		if strength >= goodBotBids.Grab && auction.CanAct(domain.BidGrab) {
			return domain.BidGrab, nil
		}
	}
	return domain.BidPass, nil
}
