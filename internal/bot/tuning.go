package bot

import botinternal "landlord/internal/bot/internal"

const finishBonus = 1000.0

// BidThresholds are the BidStrength scores a brain needs for each bid.
type BidThresholds struct {
	Call   int
	Grab   int
	Double int
}

const goodBotThreatThreshold = 2

var goodBotBids = BidThresholds{Call: 7, Grab: 10}

var smartBotBids = BidThresholds{Call: 6, Grab: 9, Double: 12}

// smartBotTuning balances structure preservation and hand reduction by phase.
var smartBotTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		HandScoreWeight:    1.0,
		StraightCardWeight: 0.6,
		PairRunCardWeight:  0.6,
		PlaneCardWeight:    0.8,
		PairWeight:         0.5,
		TripleWeight:       0.7,
		BombWeight:         1.0,
		SingleWeight:       -1.0,
		TotalCardWeight:    -0.1,
		UseControlPenalty:  6.0,
		UseBombPenalty:     12.0,
		UseHighCardPenalty: 0.5,
		FinishBonus:        finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		HandScoreWeight:    1.0,
		StraightCardWeight: 0.5,
		PairRunCardWeight:  0.5,
		PlaneCardWeight:    0.7,
		PairWeight:         0.6,
		TripleWeight:       0.8,
		BombWeight:         1.0,
		SingleWeight:       -1.2,
		TotalCardWeight:    -0.3,
		UseControlPenalty:  4.0,
		UseBombPenalty:     8.0,
		UseHighCardPenalty: 0.4,
		FinishBonus:        finishBonus,
	},
	End: botinternal.PhaseWeights{
		HandScoreWeight:      1.2,
		StraightCardWeight:   0.3,
		PairRunCardWeight:    0.3,
		PlaneCardWeight:      0.4,
		PairWeight:           0.4,
		TripleWeight:         0.5,
		BombWeight:           0.6,
		SingleWeight:         -1.5,
		TotalCardWeight:      -1.5,
		UseControlPenalty:    0.7,
		UseBombPenalty:       1.0,
		UseHighCardPenalty:   0.2,
		FinishBonus:          finishBonus,
		BlockerHighCardBonus: 0.8,
	},
	PassThreshold:   -10.0,
	ThreatThreshold: 3,
}
