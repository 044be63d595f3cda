package domain

import "sort"

// CardCombinationType represents the type of card combination.
type CardCombinationType int

const (
	Invalid CardCombinationType = iota
	Single
	Pair
	Triple
	TripleSingle
	TriplePair
	Straight         // five or more consecutive singles
	ConsecutivePairs // three or more consecutive pairs
	Plane            // two or more consecutive triples
	PlaneWithSingles
	PlaneWithPairs
	FourWithTwoSingles
	FourWithTwoPairs
	Bomb
	Rocket
)

var combinationNames = map[CardCombinationType]string{
	Invalid:            "invalid",
	Single:             "single",
	Pair:               "pair",
	Triple:             "triple",
	TripleSingle:       "triple_single",
	TriplePair:         "triple_pair",
	Straight:           "straight",
	ConsecutivePairs:   "consecutive_pairs",
	Plane:              "plane",
	PlaneWithSingles:   "plane_single",
	PlaneWithPairs:     "plane_pair",
	FourWithTwoSingles: "four_two_single",
	FourWithTwoPairs:   "four_two_pair",
	Bomb:               "bomb",
	Rocket:             "rocket",
}

func (t CardCombinationType) String() string {
	if name, ok := combinationNames[t]; ok {
		return name
	}
	return "invalid"
}

// ParseCombinationType is the inverse of String. Unknown names map to Invalid.
func ParseCombinationType(name string) CardCombinationType {
	for t, n := range combinationNames {
		if n == name {
			return t
		}
	}
	return Invalid
}

// IsBomb reports whether the type beats across categories.
func (t CardCombinationType) IsBomb() bool {
	return t == Bomb || t == Rocket
}

// CardCombination represents a detected combination of cards.
type CardCombination struct {
	Type   CardCombinationType
	Cards  []Card // sorted copy of the submitted cards
	Value  Rank   // primary rank used for comparison
	Length int    // run length for straights, consecutive pairs and planes; 0 otherwise
}

// Valid reports whether the combination is a legal play.
func (c CardCombination) Valid() bool {
	return c.Type != Invalid
}

// maxRunRank is the highest rank allowed inside straights, pair runs and planes.
const maxRunRank = RankA

// rankShape is the rank-multiset view of a set of cards; suits never matter.
type rankShape struct {
	total  int
	counts map[Rank]int
	ranks  []Rank // distinct ranks ascending
	sizes  []int  // multiplicities descending
}

func shapeOf(cards []Card) rankShape {
	s := rankShape{total: len(cards), counts: make(map[Rank]int, len(cards))}
	for _, c := range cards {
		s.counts[c.Rank]++
	}
	for r, n := range s.counts {
		s.ranks = append(s.ranks, r)
		s.sizes = append(s.sizes, n)
	}
	sort.Slice(s.ranks, func(i, j int) bool { return s.ranks[i] < s.ranks[j] })
	sort.Sort(sort.Reverse(sort.IntSlice(s.sizes)))
	return s
}

// ranksWithCount returns the ascending ranks that appear exactly n times.
func (s rankShape) ranksWithCount(n int) []Rank {
	var out []Rank
	for _, r := range s.ranks {
		if s.counts[r] == n {
			out = append(out, r)
		}
	}
	return out
}

func (s rankShape) sizeAt(i int) int {
	if i < len(s.sizes) {
		return s.sizes[i]
	}
	return 0
}

// IdentifyCombination classifies cards into a landlord combination. The first
// matching rule wins; anything unmatched is Invalid.
func IdentifyCombination(cards []Card) CardCombination {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	SortHand(sorted)
	combo := CardCombination{Type: Invalid, Cards: sorted}
	if len(cards) == 0 {
		return combo
	}
	for _, c := range cards {
		if !c.Rank.Valid() {
			return combo
		}
	}

	s := shapeOf(cards)
	n := s.total

	switch {
	case n == 2 && s.counts[RankSmallJoker] == 1 && s.counts[RankBigJoker] == 1:
		combo.Type, combo.Value = Rocket, RankBigJoker
	case n == 4 && s.sizeAt(0) == 4:
		combo.Type, combo.Value = Bomb, s.ranks[0]
	case n == 1:
		combo.Type, combo.Value = Single, s.ranks[0]
	case n == 2 && s.sizeAt(0) == 2:
		combo.Type, combo.Value = Pair, s.ranks[0]
	case n == 3 && s.sizeAt(0) == 3:
		combo.Type, combo.Value = Triple, s.ranks[0]
	case n == 4 && s.sizeAt(0) == 3 && s.sizeAt(1) == 1:
		combo.Type, combo.Value = TripleSingle, s.ranksWithCount(3)[0]
	case n == 5 && s.sizeAt(0) == 3 && s.sizeAt(1) == 2:
		combo.Type, combo.Value = TriplePair, s.ranksWithCount(3)[0]
	default:
		if t, value, length := identifyRun(s); t != Invalid {
			combo.Type, combo.Value, combo.Length = t, value, length
			return combo
		}
		if n == 6 && s.sizeAt(0) == 4 {
			combo.Type, combo.Value = FourWithTwoSingles, s.ranksWithCount(4)[0]
		} else if n == 8 && s.sizeAt(0) == 4 && s.sizeAt(1) == 2 && s.sizeAt(2) == 2 {
			combo.Type, combo.Value = FourWithTwoPairs, s.ranksWithCount(4)[0]
		}
	}
	return combo
}

// identifyRun detects straights, consecutive pairs and the plane family.
func identifyRun(s rankShape) (CardCombinationType, Rank, int) {
	n := s.total

	if n >= 5 && s.sizeAt(0) == 1 && isSequence(s.ranks) {
		return Straight, s.ranks[0], n
	}

	if n >= 6 && n%2 == 0 && s.sizeAt(0) == 2 && len(s.ranks) == n/2 && isSequence(s.ranks) {
		return ConsecutivePairs, s.ranks[0], n / 2
	}

	if n >= 6 {
		triples := s.ranksWithCount(3)
		k := len(triples)
		if k >= 2 && isSequence(triples) {
			switch {
			case n == 3*k:
				return Plane, triples[0], k
			case n == 4*k && len(s.ranks) == 2*k:
				return PlaneWithSingles, triples[0], k
			case n == 5*k && len(s.ranksWithCount(2)) == k:
				return PlaneWithPairs, triples[0], k
			}
		}
	}
	return Invalid, 0, 0
}

// isSequence reports whether ranks are strictly consecutive, at least two long,
// and never reach past the ace.
func isSequence(ranks []Rank) bool {
	if len(ranks) < 2 || ranks[len(ranks)-1] > maxRunRank {
		return false
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}
	return true
}

// IsValidSet checks if the cards form a legal landlord combination.
func IsValidSet(cards []Card) bool {
	return IdentifyCombination(cards).Valid()
}

// CanBeat determines if newCards can be played over prevCards. An empty
// previous play means the seat is leading and any valid set is accepted.
func CanBeat(prevCards, newCards []Card) bool {
	return Beats(IdentifyCombination(prevCards), IdentifyCombination(newCards))
}

// Beats is CanBeat over already classified combinations.
func Beats(prev, next CardCombination) bool {
	if !next.Valid() {
		return false
	}
	if !prev.Valid() {
		return true
	}

	switch {
	case next.Type == Rocket:
		return prev.Type != Rocket
	case prev.Type == Rocket:
		return false
	case next.Type == Bomb:
		if prev.Type == Bomb {
			return next.Value > prev.Value
		}
		return true
	case prev.Type == Bomb:
		return false
	}

	if next.Type != prev.Type || next.Length != prev.Length {
		return false
	}
	return next.Value > prev.Value
}
