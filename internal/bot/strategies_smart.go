package bot

import (
	"sort"

	"landlord/internal/bot/internal"
	"landlord/internal/domain"
)

// SmartBot scores every candidate by the hand it leaves behind, weighs the
// phase of the round and plays with its partner rather than over it.
type SmartBot struct{}

func (b *SmartBot) CalculateMove(round *domain.Round, seat int) (Move, error) {
	hand := round.Hand(seat)
	if len(hand) == 0 {
		return Move{Pass: true}, nil
	}

	leading := round.IsLeading(seat)
	lastCombo := lastCombination(round, seat)
	validMoves := internal.GetValidMoves(hand, lastCombo)
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	// A finishing play is always taken.
	for _, m := range validMoves {
		if len(m.Cards) == len(hand) {
			return Move{Cards: m.Cards}, nil
		}
	}

	if !leading {
		last, _ := round.LastPlay()
		if !internal.IsOpponent(round, seat, last.Seat) {
			return Move{Pass: true}, nil
		}
	}

	phase := internal.DetectPhase(round)
	weights := smartBotTuning.ForPhase(phase)
	threat := internal.DetectThreat(round, seat, smartBotTuning.ThreatThreshold)
	scored := internal.BuildScoredMoves(hand, validMoves, weights, threat)

	if leading && opponentDown(round, seat, 1) {
		scored = avoidLoseableSingles(scored, hand, round)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		// Save higher cards when scores are equal.
		return scored[i].Move.Combo.Value < scored[j].Move.Combo.Value
	})

	if !leading {
		currentScore := internal.ScoreHand(hand, weights)
		if scored[0].Score < currentScore+smartBotTuning.PassThreshold {
			return Move{Pass: true}, nil
		}
	}

	return Move{Cards: scored[0].Move.Cards}, nil
}

// CalculateBid calls and grabs on hand strength; a very strong hand doubles
// for the landlord role instead of grabbing it.
func (b *SmartBot) CalculateBid(round *domain.Round, seat int) (domain.AuctionAction, error) {
	auction, err := biddingAuction(round, seat)
	if err != nil {
		return domain.BidPass, err
	}
	strength := internal.BidStrength(round.Hand(seat))

	switch auction.Phase() {
	case domain.AuctionAwaitingFirstCall:
		if strength >= smartBotBids.Call {
			return domain.BidCall, nil
		}
	case domain.AuctionAwaitingGrabs:
		if strength >= smartBotBids.Double && auction.CanAct(domain.BidDouble) {
			return domain.BidDouble, nil
		}
		if strength >= smartBotBids.Grab && auction.CanAct(domain.BidGrab) {
			return domain.BidGrab, nil
		}
	}
	return domain.BidPass, nil
}

// opponentDown reports whether an opponent of seat holds n cards or fewer.
func opponentDown(round *domain.Round, seat, n int) bool {
	return internal.DetectThreat(round, seat, n)
}

// avoidLoseableSingles drops single leads an unseen card could still beat,
// as long as something else is left to lead.
func avoidLoseableSingles(scored []internal.ScoredMove, hand []domain.Card, round *domain.Round) []internal.ScoredMove {
	stats := internal.AnalyzeHand(hand, internal.PlayedCards(round))
	boss := make(map[domain.Card]bool, len(stats.BossSingles))
	for _, c := range stats.BossSingles {
		boss[c] = true
	}

	kept := make([]internal.ScoredMove, 0, len(scored))
	for _, s := range scored {
		if s.Move.Combo.Type == domain.Single && !boss[s.Move.Cards[0]] {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return scored
	}
	return kept
}
