package domain

// RemoveCards removes the provided cards from a hand and returns a new slice.
func RemoveCards(hand []Card, played []Card) []Card {
	out := append([]Card{}, hand...)
	for _, pc := range played {
		for i := 0; i < len(out); i++ {
			if out[i] == pc {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

// ContainsAll reports whether every card of subset is held in hand, counting
// duplicates as a multiset.
func ContainsAll(hand []Card, subset []Card) bool {
	held := make(map[Card]int, len(hand))
	for _, c := range hand {
		held[c]++
	}
	for _, c := range subset {
		if held[c] == 0 {
			return false
		}
		held[c]--
	}
	return true
}

// CountRanks returns how many cards of each rank are in cards.
func CountRanks(cards []Card) map[Rank]int {
	counts := make(map[Rank]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

// NextSeat returns the seat that acts after seat.
func NextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

