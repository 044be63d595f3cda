package domain

import "fmt"

// AuctionSnapshot is the serializable form of an Auction.
type AuctionSnapshot struct {
	Phase      AuctionPhase `json:"phase"`
	StartSeat  int          `json:"start_seat"`
	TurnSeat   int          `json:"turn_seat"`
	Holder     int          `json:"holder"`
	Multiplier int          `json:"multiplier"`
	Passes     int          `json:"passes"`
	History    []BidRecord  `json:"history,omitempty"`
}

// LastPlaySnapshot is the serializable form of the active trick.
type LastPlaySnapshot struct {
	Seat  int    `json:"seat"`
	Cards []Card `json:"cards"`
}

// RoundSnapshot captures everything needed to rebuild a Round verbatim.
type RoundSnapshot struct {
	Phase       RoundPhase        `json:"phase"`
	Rules       AuctionRules      `json:"rules"`
	Hands       [SeatCount][]Card `json:"hands"`
	Bottom      []Card            `json:"bottom"`
	Auction     *AuctionSnapshot  `json:"auction,omitempty"`
	FirstBidder int               `json:"first_bidder"`
	Landlord    int               `json:"landlord"`
	Multiplier  int               `json:"multiplier"`
	TurnSeat    int               `json:"turn_seat"`
	LastPlay    *LastPlaySnapshot `json:"last_play,omitempty"`
	Passes      int               `json:"passes"`
	Plays       [SeatCount]int    `json:"plays"`
	Bombs       int               `json:"bombs"`
	History     []MoveRecord      `json:"history,omitempty"`
	Winner      int               `json:"winner"`
	AbortReason string            `json:"abort_reason,omitempty"`
}

// Snapshot exports the round. The snapshot shares no memory with the round.
func (r *Round) Snapshot() RoundSnapshot {
	s := RoundSnapshot{
		Phase:       r.phase,
		Rules:       r.rules,
		Bottom:      r.Bottom(),
		FirstBidder: r.firstBidder,
		Landlord:    r.landlord,
		Multiplier:  r.multiplier,
		TurnSeat:    r.turnSeat,
		Passes:      r.passes,
		Plays:       r.plays,
		Bombs:       r.bombs,
		History:     r.History(),
		Winner:      r.winner,
		AbortReason: r.abortReason,
	}
	for seat := range r.hands {
		s.Hands[seat] = r.Hand(seat)
	}
	if a := r.auction; a != nil {
		s.Auction = &AuctionSnapshot{
			Phase:      a.phase,
			StartSeat:  a.startSeat,
			TurnSeat:   a.turnSeat,
			Holder:     a.holder,
			Multiplier: a.multiplier,
			Passes:     a.passes,
			History:    a.History(),
		}
	}
	if lp := r.lastPlay; lp != nil {
		s.LastPlay = &LastPlaySnapshot{Seat: lp.Seat, Cards: append([]Card{}, lp.Combination.Cards...)}
	}
	return s
}

// RestoreRound rebuilds a round from a snapshot after checking that every
// card of the deck is accounted for exactly once.
func RestoreRound(s RoundSnapshot) (*Round, error) {
	if !validSeat(s.FirstBidder) || !validSeat(s.TurnSeat) {
		return nil, fmt.Errorf("%w: seat out of range", ErrMalformedAction)
	}

	groups := make([][]Card, 0, SeatCount+2)
	for _, h := range s.Hands {
		groups = append(groups, h)
	}
	for _, m := range s.History {
		if m.Kind == MovePlay {
			groups = append(groups, m.Cards)
		}
	}

	switch s.Phase {
	case RoundAuction, RoundVoid:
		if s.Auction == nil {
			return nil, fmt.Errorf("%w: %s round without auction", ErrMalformedAction, s.Phase)
		}
		groups = append(groups, s.Bottom)
	case RoundPlaying, RoundEnded:
		if !validSeat(s.Landlord) {
			return nil, fmt.Errorf("%w: %s round without landlord", ErrMalformedAction, s.Phase)
		}
	case RoundAborted:
		if !validSeat(s.Landlord) {
			groups = append(groups, s.Bottom)
		}
	default:
		return nil, fmt.Errorf("%w: unknown phase %q", ErrMalformedAction, s.Phase)
	}
	if len(s.Bottom) != BottomSize {
		return nil, fmt.Errorf("%w: bottom holds %d cards", ErrMalformedAction, len(s.Bottom))
	}
	if err := verifyConservation(groups...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	r := &Round{
		phase:       s.Phase,
		rules:       s.Rules.Normalize(),
		bottom:      append([]Card{}, s.Bottom...),
		firstBidder: s.FirstBidder,
		landlord:    s.Landlord,
		multiplier:  max(s.Multiplier, 1),
		turnSeat:    s.TurnSeat,
		passes:      s.Passes,
		plays:       s.Plays,
		bombs:       s.Bombs,
		history:     append([]MoveRecord(nil), s.History...),
		winner:      s.Winner,
		abortReason: s.AbortReason,
	}
	for seat, h := range s.Hands {
		r.hands[seat] = append([]Card{}, h...)
	}

	if s.Phase == RoundEnded && (!validSeat(s.Winner) || len(r.hands[s.Winner]) != 0) {
		return nil, fmt.Errorf("%w: ended round without an empty winner", ErrMalformedAction)
	}

	if as := s.Auction; as != nil && (s.Phase == RoundAuction || s.Phase == RoundVoid || !validSeat(s.Landlord)) {
		if !validSeat(as.StartSeat) || !validSeat(as.TurnSeat) || as.Holder >= SeatCount {
			return nil, fmt.Errorf("%w: auction seat out of range", ErrMalformedAction)
		}
		r.auction = &Auction{
			rules:      r.rules,
			phase:      as.Phase,
			startSeat:  as.StartSeat,
			turnSeat:   as.TurnSeat,
			holder:     max(as.Holder, -1),
			multiplier: max(as.Multiplier, 1),
			passes:     as.Passes,
			history:    append([]BidRecord(nil), as.History...),
		}
	}

	if lp := s.LastPlay; lp != nil {
		if !validSeat(lp.Seat) {
			return nil, fmt.Errorf("%w: last play seat %d", ErrMalformedAction, lp.Seat)
		}
		combo := IdentifyCombination(lp.Cards)
		if !combo.Valid() {
			return nil, fmt.Errorf("%w: last play is not a combination", ErrMalformedAction)
		}
		r.lastPlay = &LastPlay{Seat: lp.Seat, Combination: combo}
	}
	return r, nil
}

func validSeat(seat int) bool {
	return seat >= 0 && seat < SeatCount
}
