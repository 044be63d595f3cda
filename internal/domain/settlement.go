package domain

import "fmt"

// Settlement is the per-seat stake change of an ended round. The values sum
// to zero.
type Settlement struct {
	Unit    int64            `json:"unit"`
	Changes [SeatCount]int64 `json:"changes"`
}

// CalculateSettlement scores an outcome. One unit is the base stake times the
// final multiplier, doubled again for a perfect round. The landlord wins or
// loses two units; each farmer loses or wins one.
func CalculateSettlement(o Outcome, baseStake int64) Settlement {
	multiplier := int64(max(o.Multiplier, 1))
	if o.Perfect {
		multiplier *= 2
	}
	unit := baseStake * multiplier

	var s Settlement
	s.Unit = unit
	sign := int64(1)
	if !o.LandlordWon {
		sign = -1
	}
	for seat := 0; seat < SeatCount; seat++ {
		if seat == o.Landlord {
			s.Changes[seat] = sign * 2 * unit
		} else {
			s.Changes[seat] = -sign * unit
		}
	}
	return s
}

// Settle scores the round once it has ended.
func (r *Round) Settle(baseStake int64) (Settlement, error) {
	o, ok := r.Outcome()
	if !ok {
		return Settlement{}, fmt.Errorf("%w: round is %s", ErrOutOfTurn, r.phase)
	}
	return CalculateSettlement(o, baseStake), nil
}
