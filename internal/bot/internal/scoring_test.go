package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/domain"
)

func TestBuildScoredMoves_Penalties(t *testing.T) {
	hand := mustCards(t, "3S 3H 3C 3D 4S")
	moves := GetValidMoves(hand, domain.CardCombination{})
	weights := PhaseWeights{UseBombPenalty: 5, FinishBonus: 100}

	scored := BuildScoredMoves(hand, moves, weights, false)
	require.Len(t, scored, len(moves))
	for _, s := range scored {
		if s.Move.Combo.Type == domain.Bomb {
			assert.Equal(t, -5.0, s.Score)
			continue
		}
		assert.Zero(t, s.Score, "%s", domain.FormatCards(s.Move.Cards))
	}
}

func TestBuildScoredMoves_FinishBonus(t *testing.T) {
	hand := mustCards(t, "3S 3H")
	weights := PhaseWeights{FinishBonus: 100}

	scored := BuildScoredMoves(hand, GetValidMoves(hand, domain.CardCombination{}), weights, false)
	for _, s := range scored {
		if s.Move.Combo.Type == domain.Pair {
			assert.Equal(t, 100.0, s.Score)
			assert.Empty(t, s.Remaining)
		} else {
			assert.Zero(t, s.Score)
			assert.Equal(t, 1, s.RemainingProfile.Singles)
		}
	}
}

func TestBuildScoredMoves_BlockerBonus(t *testing.T) {
	hand := mustCards(t, "3S 7H")
	moves := GetValidMoves(hand, domain.CardCombination{})
	weights := PhaseWeights{BlockerHighCardBonus: 1}

	scored := BuildScoredMoves(hand, moves, weights, true)
	require.Len(t, scored, 2)
	assert.Zero(t, scored[0].Score)
	assert.Equal(t, 4.0, scored[1].Score)

	for _, s := range BuildScoredMoves(hand, moves, weights, false) {
		assert.Zero(t, s.Score)
	}
}

func TestScoreHand_UsesEvaluator(t *testing.T) {
	hand := mustCards(t, "3S 4H 5S 6C 7D 9S 9H")
	assert.Equal(t, EvaluateHand(hand), ScoreHand(hand, PhaseWeights{HandScoreWeight: 1}))
}

func TestDetectThreat(t *testing.T) {
	hands := sixEach
	hands[1] = "3H 4H"
	r := roundWith(t, 0, 0, hands, [3]int{1, 1, 0}, 0, "")

	assert.True(t, DetectThreat(r, 0, 2), "farmer with two cards threatens the landlord")
	assert.False(t, DetectThreat(r, 2, 2), "partner is not a threat")
	assert.False(t, DetectThreat(r, 0, 0))
	assert.False(t, DetectThreat(nil, 0, 2))
}
