package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

func TestAnalyzeHand_BossSingles(t *testing.T) {
	r := roundWith(t, 0, 0, [3]string{"BJ 2S 3S", "SJ 4H", "5C 6C"}, [3]int{3, 1, 1}, 0, "")
	hand := r.Hand(0)

	stats := AnalyzeHand(hand, PlayedCards(r))

	assert.Len(t, stats.UnseenCards, 4)
	require.Len(t, stats.BossSingles, 1)
	assert.Equal(t, domain.RankBigJoker, stats.BossSingles[0].Rank)
	assert.Greater(t, stats.Dominance, 0.0)
	assert.Less(t, stats.Dominance, 1.0)
}

func TestAnalyzeHand_NothingUnseen(t *testing.T) {
	hand := mustCards(t, "3S")
	played := domain.RemoveCards(domain.NewDeck(), hand)

	stats := AnalyzeHand(hand, played)
	assert.Empty(t, stats.UnseenCards)
	assert.Equal(t, 1.0, stats.Dominance)
	assert.Equal(t, hand, stats.BossSingles)
}
