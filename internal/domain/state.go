package domain

// Phase represents the lifecycle stage of a landlord table.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhasePlaying covers the auction and the trick-taking of a round.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a round concludes.
	PhaseEnded Phase = "ended"
)

// GameName is advertised in match labels.
const GameName = "landlord"

// Seats maps seat index to the user sitting there, "" when empty.
type Seats [SeatCount]string

// LowestAvailableSeat returns the first free seat index, or -1 when full.
func LowestAvailableSeat(seats Seats) int {
	for i, userID := range seats {
		if userID == "" {
			return i
		}
	}
	return -1
}

// Occupied counts the filled seats.
func (s Seats) Occupied() int {
	n := 0
	for _, userID := range s {
		if userID != "" {
			n++
		}
	}
	return n
}

// SeatOf returns the seat held by userID.
func (s Seats) SeatOf(userID string) (int, bool) {
	if userID == "" {
		return -1, false
	}
	for i, id := range s {
		if id == userID {
			return i, true
		}
	}
	return -1, false
}

// LabelPayload is advertised as the match label so clients can find tables.
type LabelPayload struct {
	Open      bool   `json:"open"`
	Game      string `json:"game"`
	Phase     string `json:"phase"`
	Players   int    `json:"players"`
	BaseStake int64  `json:"base_stake"`
}

// ComputeLabel derives the advertised label from table state.
func ComputeLabel(phase Phase, seats Seats, baseStake int64) LabelPayload {
	players := seats.Occupied()
	return LabelPayload{
		Open:      phase != PhasePlaying && players < SeatCount,
		Game:      GameName,
		Phase:     string(phase),
		Players:   players,
		BaseStake: baseStake,
	}
}
