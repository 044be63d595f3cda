package internal

import "landlord/internal/domain"

// BossStats provides insights into the hand relative to the cards still out.
type BossStats struct {
	UnseenCards []domain.Card
	BossSingles []domain.Card // singles in hand no unseen card outranks
	Dominance   float64       // 0 to 1, how much control the hand has
}

// AnalyzeHand counts cards: everything neither in hand nor already played is
// unseen, and the hand's singles are ranked against it.
func AnalyzeHand(hand []domain.Card, played []domain.Card) BossStats {
	unseen := domain.RemoveCards(domain.NewDeck(), played)
	unseen = domain.RemoveCards(unseen, hand)

	stats := BossStats{UnseenCards: unseen}
	if len(hand) == 0 {
		return stats
	}
	if len(unseen) == 0 {
		stats.Dominance = 1.0
		stats.BossSingles = append([]domain.Card{}, hand...)
		return stats
	}

	highestUnseen := highestRank(unseen)
	for _, c := range hand {
		if c.Rank > highestUnseen {
			stats.BossSingles = append(stats.BossSingles, c)
		}
	}

	avgHand := averageRank(hand)
	avgUnseen := averageRank(unseen)
	stats.Dominance = avgHand / (avgHand + avgUnseen)
	return stats
}

// PlayedCards returns every card played so far in the round.
func PlayedCards(round *domain.Round) []domain.Card {
	if round == nil {
		return nil
	}
	var played []domain.Card
	for _, move := range round.History() {
		if move.Kind == domain.MovePlay {
			played = append(played, move.Cards...)
		}
	}
	return played
}

func highestRank(cards []domain.Card) domain.Rank {
	var max domain.Rank
	for _, c := range cards {
		if c.Rank > max {
			max = c.Rank
		}
	}
	return max
}

func averageRank(cards []domain.Card) float64 {
	total := 0
	for _, c := range cards {
		total += int(c.Rank)
	}
	return float64(total) / float64(len(cards))
}
