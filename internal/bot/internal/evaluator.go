package internal

import "landlord/internal/domain"

const (
	ScoreRocket     = 40.0
	ScoreBomb       = 30.0
	ScorePlane      = 4.0 // per card
	ScoreStraight   = 2.0 // per card
	ScorePairRun    = 2.5 // per card
	ScoreTriple     = 8.0
	ScorePair       = 3.0
	ScoreBigJoker   = 12.0
	ScoreSmallJoker = 10.0
	ScoreTwo        = 8.0
	ScoreHighSingle = 2.0  // J, Q, K, A
	ScoreLowSingle  = -3.0 // 3..10
	ScorePerGroup   = -1.5
)

// EvaluateHand returns a heuristic score for the given hand.
// Higher is better.
func EvaluateHand(hand []domain.Card) float64 {
	profile := ProfileHand(hand)
	counts := countHand(hand)

	score := 0.0
	if profile.Rocket {
		score += ScoreRocket
	}
	score += float64(profile.Bombs) * ScoreBomb
	score += float64(profile.PlaneCards) * ScorePlane
	score += float64(profile.StraightCards) * ScoreStraight
	score += float64(profile.PairRunCards) * ScorePairRun
	score += float64(profile.Triples) * ScoreTriple
	score += float64(profile.Pairs) * ScorePair

	// Control cards are valued on their own whatever group they ended up in.
	if !profile.Rocket {
		score += float64(counts[domain.RankBigJoker]) * ScoreBigJoker
		score += float64(counts[domain.RankSmallJoker]) * ScoreSmallJoker
	}
	if counts[domain.Rank2] < 4 {
		score += float64(counts[domain.Rank2]) * ScoreTwo
	}

	score += float64(loneSingles(counts)) * ScoreLowSingle
	score += float64(highSingles(counts)) * ScoreHighSingle
	score += float64(profile.Groups()) * ScorePerGroup
	return score
}

// loneSingles counts low ranks held exactly once that no straight can absorb.
func loneSingles(counts rankCounts) int {
	n := 0
	for r := domain.Rank3; r <= domain.Rank10; r++ {
		if counts[r] == 1 && !inRun(counts, r) {
			n++
		}
	}
	return n
}

func highSingles(counts rankCounts) int {
	n := 0
	for r := domain.RankJ; r <= domain.RankA; r++ {
		if counts[r] == 1 {
			n++
		}
	}
	return n
}

// inRun reports whether r sits inside a window of five consecutive held ranks.
func inRun(counts rankCounts, r domain.Rank) bool {
	lo, hi := r, r
	for lo > domain.Rank3 && counts[lo-1] > 0 {
		lo--
	}
	for hi < domain.RankA && counts[hi+1] > 0 {
		hi++
	}
	return int(hi-lo)+1 >= minStraightLen
}

// Bid strength points.
const (
	bidPointsBigJoker   = 4
	bidPointsSmallJoker = 3
	bidPointsTwo        = 2
	bidPointsAce        = 1
	bidPointsBomb       = 4
)

// BidStrength scores a hand for the auction by its control cards: jokers,
// twos, aces and bombs. A dealt hand rarely exceeds 16.
func BidStrength(hand []domain.Card) int {
	counts := countHand(hand)
	points := counts[domain.RankBigJoker]*bidPointsBigJoker +
		counts[domain.RankSmallJoker]*bidPointsSmallJoker +
		counts[domain.Rank2]*bidPointsTwo +
		counts[domain.RankA]*bidPointsAce
	for r := domain.Rank3; r <= domain.Rank2; r++ {
		if counts[r] == 4 {
			points += bidPointsBomb
		}
	}
	return points
}
