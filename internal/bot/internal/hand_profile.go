package internal

import "landlord/internal/domain"

// HandProfile summarizes a hand's strategic structure for phase-aware scoring.
type HandProfile struct {
	TotalCards     int
	Singles        int
	Pairs          int
	Triples        int
	Bombs          int
	Rocket         bool
	Straights      int
	StraightCards  int
	MaxStraightLen int
	PairRuns       int
	PairRunCards   int
	Planes         int
	PlaneCards     int
	Twos           int
	Jokers         int
}

// Groups is the number of plays needed to shed the hand if every group of
// the profile is led on its own. Kickers are not folded in.
func (p HandProfile) Groups() int {
	n := p.Singles + p.Pairs + p.Triples + p.Bombs + p.Straights + p.PairRuns + p.Planes
	if p.Rocket {
		n++
	}
	return n
}

// rankCounts is a hand reduced to per-rank multiplicities.
type rankCounts [domain.RankBigJoker + 1]int

func countHand(hand []domain.Card) rankCounts {
	var counts rankCounts
	for _, c := range hand {
		if c.Rank.Valid() {
			counts[c.Rank]++
		}
	}
	return counts
}

// ProfileHand analyzes a hand and extracts combo counts using a greedy
// structure pass: rocket, bombs, planes, straights, pair runs, then what is
// left over.
func ProfileHand(hand []domain.Card) HandProfile {
	profile := HandProfile{TotalCards: len(hand)}
	if len(hand) == 0 {
		return profile
	}

	counts := countHand(hand)
	profile.Twos = counts[domain.Rank2]
	profile.Jokers = counts[domain.RankSmallJoker] + counts[domain.RankBigJoker]

	if counts[domain.RankSmallJoker] == 1 && counts[domain.RankBigJoker] == 1 {
		profile.Rocket = true
		counts[domain.RankSmallJoker], counts[domain.RankBigJoker] = 0, 0
	}
	for r := domain.Rank3; r <= domain.Rank2; r++ {
		if counts[r] == 4 {
			profile.Bombs++
			counts[r] = 0
		}
	}

	runs, cards, _ := extractRuns(&counts, 3, minPlaneLen)
	profile.Planes, profile.PlaneCards = runs, cards

	runs, cards, longest := extractRuns(&counts, 1, minStraightLen)
	profile.Straights, profile.StraightCards, profile.MaxStraightLen = runs, cards, longest

	runs, cards, _ = extractRuns(&counts, 2, minPairRunLen)
	profile.PairRuns, profile.PairRunCards = runs, cards

	for _, n := range counts {
		switch n {
		case 3:
			profile.Triples++
		case 2:
			profile.Pairs++
		case 1:
			profile.Singles++
		}
	}
	return profile
}

// extractRuns repeatedly removes the longest run of ranks holding at least
// width cards each, preferring the lowest start on ties. It returns the
// number of runs, the cards they used and the longest run length.
func extractRuns(counts *rankCounts, width, minLen int) (runs, cards, longest int) {
	for {
		bestStart, bestLen := domain.Rank(0), 0
		for start := domain.Rank3; start <= domain.RankA; start++ {
			n := 0
			for r := start; r <= domain.RankA && counts[r] >= width; r++ {
				n++
			}
			if n > bestLen {
				bestStart, bestLen = start, n
			}
		}
		if bestLen < minLen {
			return runs, cards, longest
		}
		for r := bestStart; r < bestStart+domain.Rank(bestLen); r++ {
			counts[r] -= width
		}
		runs++
		cards += bestLen * width
		if bestLen > longest {
			longest = bestLen
		}
	}
}
