package internal

import "landlord/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	HandScoreWeight      float64
	StraightCardWeight   float64
	PairRunCardWeight    float64
	PlaneCardWeight      float64
	PairWeight           float64
	TripleWeight         float64
	BombWeight           float64
	SingleWeight         float64
	TotalCardWeight      float64
	UseControlPenalty    float64
	UseBombPenalty       float64
	UseHighCardPenalty   float64
	FinishBonus          float64
	BlockerHighCardBonus float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening         PhaseWeights
	Mid             PhaseWeights
	End             PhaseWeights
	PassThreshold   float64
	ThreatThreshold int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove holds a move with its computed score and supporting metadata.
type ScoredMove struct {
	Move             ValidMove
	Score            float64
	Remaining        []domain.Card
	RemainingProfile HandProfile
}

// ScoreHand evaluates a hand using the configured weights and structure profile.
func ScoreHand(hand []domain.Card, weights PhaseWeights) float64 {
	profile := ProfileHand(hand)
	return scoreHandWithProfile(hand, profile, weights)
}

// BuildScoredMoves scores each move by the hand it leaves behind, using phase
// weights and an optional blocking bias when an opponent is about to finish.
func BuildScoredMoves(hand []domain.Card, moves []ValidMove, weights PhaseWeights, threat bool) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		remaining := domain.RemoveCards(hand, move.Cards)
		profile := ProfileHand(remaining)
		score := scoreHandWithProfile(remaining, profile, weights)

		if len(remaining) == 0 {
			score += weights.FinishBonus
		}

		combo := move.Combo
		score -= weights.UseHighCardPenalty * float64(combo.Value-domain.Rank3)

		if combo.Type.IsBomb() {
			score -= weights.UseBombPenalty
		}

		score -= weights.UseControlPenalty * float64(countControl(move.Cards))

		if threat && (combo.Type == domain.Single || combo.Type == domain.Pair) {
			score += weights.BlockerHighCardBonus * float64(combo.Value-domain.Rank3)
		}

		scored = append(scored, ScoredMove{
			Move:             move,
			Score:            score,
			Remaining:        remaining,
			RemainingProfile: profile,
		})
	}
	return scored
}

// DetectThreat reports whether any opponent of seat holds threshold cards or fewer.
func DetectThreat(round *domain.Round, seat int, threshold int) bool {
	if threshold <= 0 || round == nil {
		return false
	}
	for other := 0; other < domain.SeatCount; other++ {
		if !IsOpponent(round, seat, other) {
			continue
		}
		if n := round.HandSize(other); n > 0 && n <= threshold {
			return true
		}
	}
	return false
}

func scoreHandWithProfile(hand []domain.Card, profile HandProfile, weights PhaseWeights) float64 {
	score := 0.0
	score += weights.HandScoreWeight * EvaluateHand(hand)
	score += weights.StraightCardWeight * float64(profile.StraightCards)
	score += weights.PairRunCardWeight * float64(profile.PairRunCards)
	score += weights.PlaneCardWeight * float64(profile.PlaneCards)
	score += weights.PairWeight * float64(profile.Pairs)
	score += weights.TripleWeight * float64(profile.Triples)
	score += weights.BombWeight * float64(profile.Bombs)
	score += weights.SingleWeight * float64(profile.Singles)
	score += weights.TotalCardWeight * float64(profile.TotalCards)
	return score
}

// countControl counts twos and jokers.
func countControl(cards []domain.Card) int {
	count := 0
	for _, c := range cards {
		if c.Rank >= domain.Rank2 {
			count++
		}
	}
	return count
}
