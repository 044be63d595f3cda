package internal

import "landlord/internal/domain"

// GamePhase describes the current strategic stage of a round.
type GamePhase int

const (
	// PhaseOpening indicates nobody has played a card since the landlord was decided.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no one has reached the endgame threshold yet.
	PhaseMid
	// PhaseEnd indicates any seat holds endGameCards or fewer.
	PhaseEnd
)

const endGameCards = 5

// DetectPhase infers the phase from the seats' hand sizes and play counts.
func DetectPhase(round *domain.Round) GamePhase {
	if round == nil {
		return PhaseMid
	}

	opening := true
	for seat := 0; seat < domain.SeatCount; seat++ {
		if round.HandSize(seat) <= endGameCards {
			return PhaseEnd
		}
		if round.PlayCount(seat) > 0 {
			opening = false
		}
	}
	if opening {
		return PhaseOpening
	}
	return PhaseMid
}

// IsOpponent reports whether other plays against seat. Before the landlord
// is known every other seat is an opponent.
func IsOpponent(round *domain.Round, seat, other int) bool {
	if seat == other {
		return false
	}
	landlord, ok := round.Landlord()
	if !ok {
		return true
	}
	return seat == landlord || other == landlord
}
