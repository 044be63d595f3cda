package internal

import (
	"sort"

	"landlord/internal/domain"
)

// ValidMove represents a possible legal play.
type ValidMove struct {
	Cards []domain.Card
	Combo domain.CardCombination
}

const (
	minStraightLen = 5
	minPairRunLen  = 3
	minPlaneLen    = 2
)

// rankPool groups a hand by rank so moves can be assembled rank by rank.
// Within a rank the lowest suits are taken first.
type rankPool struct {
	byRank map[domain.Rank][]domain.Card
	ranks  []domain.Rank // distinct ranks ascending
}

func newRankPool(hand []domain.Card) rankPool {
	cards := make([]domain.Card, len(hand))
	copy(cards, hand)
	domain.SortHand(cards)

	p := rankPool{byRank: make(map[domain.Rank][]domain.Card)}
	for _, c := range cards {
		if len(p.byRank[c.Rank]) == 0 {
			p.ranks = append(p.ranks, c.Rank)
		}
		p.byRank[c.Rank] = append(p.byRank[c.Rank], c)
	}
	return p
}

func (p rankPool) count(r domain.Rank) int {
	return len(p.byRank[r])
}

// take returns n cards of rank r.
func (p rankPool) take(r domain.Rank, n int) []domain.Card {
	return p.byRank[r][:n]
}

// ranksWith returns the ascending ranks holding at least n cards, skipping
// any rank in exclude.
func (p rankPool) ranksWith(n int, exclude map[domain.Rank]bool) []domain.Rank {
	var out []domain.Rank
	for _, r := range p.ranks {
		if p.count(r) >= n && !exclude[r] {
			out = append(out, r)
		}
	}
	return out
}

// runs returns every window of consecutive ranks, each holding at least
// width cards, of length minLen or more. Runs stop at the ace.
func (p rankPool) runs(width, minLen int) [][]domain.Rank {
	var out [][]domain.Rank
	for start := domain.Rank3; start <= domain.RankA; start++ {
		var run []domain.Rank
		for r := start; r <= domain.RankA && p.count(r) >= width; r++ {
			run = append(run, r)
			if len(run) >= minLen {
				out = append(out, append([]domain.Rank{}, run...))
			}
		}
	}
	return out
}

func (p rankPool) collect(ranks []domain.Rank, width int) []domain.Card {
	cards := make([]domain.Card, 0, len(ranks)*width)
	for _, r := range ranks {
		cards = append(cards, p.take(r, width)...)
	}
	return cards
}

// GetValidMoves returns the legal plays for hand. With no previous
// combination every category is offered; otherwise only plays that beat it.
// Kicker-carrying categories use the cheapest kickers for each body.
func GetValidMoves(hand []domain.Card, lastCombo domain.CardCombination) []ValidMove {
	p := newRankPool(hand)

	var candidates [][]domain.Card
	candidates = append(candidates, rankGroups(p, 1)...)
	candidates = append(candidates, rankGroups(p, 2)...)
	candidates = append(candidates, rankGroups(p, 3)...)
	candidates = append(candidates, triplesWithKickers(p)...)
	for _, run := range p.runs(1, minStraightLen) {
		candidates = append(candidates, p.collect(run, 1))
	}
	for _, run := range p.runs(2, minPairRunLen) {
		candidates = append(candidates, p.collect(run, 2))
	}
	candidates = append(candidates, planes(p)...)
	candidates = append(candidates, foursWithKickers(p)...)
	candidates = append(candidates, rankGroups(p, 4)...)
	if p.count(domain.RankSmallJoker) == 1 && p.count(domain.RankBigJoker) == 1 {
		candidates = append(candidates, []domain.Card{
			p.take(domain.RankSmallJoker, 1)[0],
			p.take(domain.RankBigJoker, 1)[0],
		})
	}

	moves := make([]ValidMove, 0, len(candidates))
	for _, cards := range candidates {
		combo := domain.IdentifyCombination(cards)
		if !domain.Beats(lastCombo, combo) {
			continue
		}
		moves = append(moves, ValidMove{Cards: combo.Cards, Combo: combo})
	}
	return moves
}

// rankGroups returns one n-card group per rank that can supply it.
func rankGroups(p rankPool, n int) [][]domain.Card {
	var out [][]domain.Card
	for _, r := range p.ranksWith(n, nil) {
		out = append(out, append([]domain.Card{}, p.take(r, n)...))
	}
	return out
}

func triplesWithKickers(p rankPool) [][]domain.Card {
	var out [][]domain.Card
	for _, t := range p.ranksWith(3, nil) {
		body := p.take(t, 3)
		skip := map[domain.Rank]bool{t: true}
		for _, k := range p.ranksWith(1, skip) {
			out = append(out, concat(body, p.take(k, 1)))
		}
		for _, k := range p.ranksWith(2, skip) {
			out = append(out, concat(body, p.take(k, 2)))
		}
	}
	return out
}

func planes(p rankPool) [][]domain.Card {
	var out [][]domain.Card
	for _, run := range p.runs(3, minPlaneLen) {
		body := p.collect(run, 3)
		out = append(out, body)

		skip := make(map[domain.Rank]bool, len(run))
		for _, r := range run {
			skip[r] = true
		}
		if singles := cheapestRanks(p, 1, len(run), skip); singles != nil {
			out = append(out, concat(body, p.collect(singles, 1)))
		}
		if pairs := cheapestRanks(p, 2, len(run), skip); pairs != nil {
			out = append(out, concat(body, p.collect(pairs, 2)))
		}
	}
	return out
}

func foursWithKickers(p rankPool) [][]domain.Card {
	var out [][]domain.Card
	for _, q := range p.ranksWith(4, nil) {
		body := p.take(q, 4)
		skip := map[domain.Rank]bool{q: true}
		if singles := cheapestRanks(p, 1, 2, skip); singles != nil {
			out = append(out, concat(body, p.collect(singles, 1)))
		}
		if pairs := cheapestRanks(p, 2, 2, skip); pairs != nil {
			out = append(out, concat(body, p.collect(pairs, 2)))
		}
	}
	return out
}

// cheapestRanks picks n distinct kicker ranks holding at least width cards.
// Ranks whose cards would otherwise be stranded as leftovers go first, then
// the lowest. It returns nil when the hand cannot supply n ranks.
func cheapestRanks(p rankPool, width, n int, exclude map[domain.Rank]bool) []domain.Rank {
	eligible := p.ranksWith(width, exclude)
	if len(eligible) < n {
		return nil
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		exactI := p.count(eligible[i]) == width
		exactJ := p.count(eligible[j]) == width
		if exactI != exactJ {
			return exactI
		}
		return eligible[i] < eligible[j]
	})
	picked := append([]domain.Rank{}, eligible[:n]...)
	sort.Slice(picked, func(i, j int) bool { return picked[i] < picked[j] })
	return picked
}

func concat(a, b []domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
