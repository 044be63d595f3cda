package domain

import "fmt"

// RoundPhase represents the lifecycle stage of a single landlord round.
type RoundPhase string

const (
	// RoundAuction is the bidding stage before a landlord is known.
	RoundAuction RoundPhase = "auction"
	// RoundPlaying is the trick-taking stage.
	RoundPlaying RoundPhase = "playing"
	// RoundEnded means a seat emptied its hand.
	RoundEnded RoundPhase = "ended"
	// RoundVoid means every seat passed the auction; the cards must be redealt.
	RoundVoid RoundPhase = "void"
	// RoundAborted means the owning collaborator abandoned the round.
	RoundAborted RoundPhase = "aborted"
)

// Terminal reports whether the round accepts no further actions.
func (p RoundPhase) Terminal() bool {
	return p == RoundEnded || p == RoundVoid || p == RoundAborted
}

// LastPlay is the active combination that following seats must beat.
type LastPlay struct {
	Seat        int
	Combination CardCombination
}

// MoveKind tags a history entry.
type MoveKind string

const (
	MovePlay MoveKind = "play"
	MovePass MoveKind = "pass"
	MoveBid  MoveKind = "bid"
)

// MoveRecord is one accepted action in the order it happened.
type MoveRecord struct {
	Seat  int                 `json:"seat"`
	Kind  MoveKind            `json:"kind"`
	Cards []Card              `json:"cards,omitempty"`
	Type  CardCombinationType `json:"type,omitempty"`
	Bid   AuctionAction       `json:"bid,omitempty"`
}

// Outcome describes how an ended round finished.
type Outcome struct {
	Winner      int  `json:"winner"`
	Landlord    int  `json:"landlord"`
	LandlordWon bool `json:"landlord_won"`
	// Perfect is set when the losing side never made a play.
	Perfect    bool `json:"perfect"`
	Multiplier int  `json:"multiplier"`
	Bombs      int  `json:"bombs"`
}

// Round is the authoritative state of one deal: the auction, then the
// trick-taking turns until a seat runs out of cards.
type Round struct {
	phase       RoundPhase
	rules       AuctionRules
	hands       [SeatCount][]Card
	bottom      []Card
	auction     *Auction
	firstBidder int
	landlord    int
	multiplier  int
	turnSeat    int
	lastPlay    *LastPlay
	passes      int
	plays       [SeatCount]int
	bombs       int
	history     []MoveRecord
	winner      int
	abortReason string
}

// NewRound starts a round from a verified deal with firstBidder opening the
// auction.
func NewRound(deal Deal, firstBidder int, rules AuctionRules) (*Round, error) {
	if firstBidder < 0 || firstBidder >= SeatCount {
		return nil, fmt.Errorf("%w: first bidder %d", ErrMalformedAction, firstBidder)
	}
	if err := deal.Verify(); err != nil {
		return nil, fmt.Errorf("deal: %w", err)
	}
	for seat, h := range deal.Hands {
		if len(h) != HandSize {
			return nil, fmt.Errorf("deal: seat %d holds %d cards", seat, len(h))
		}
	}
	if len(deal.Bottom) != BottomSize {
		return nil, fmt.Errorf("deal: bottom holds %d cards", len(deal.Bottom))
	}

	r := &Round{
		phase:       RoundAuction,
		rules:       rules.Normalize(),
		bottom:      append([]Card{}, deal.Bottom...),
		firstBidder: firstBidder,
		landlord:    -1,
		multiplier:  1,
		turnSeat:    firstBidder,
		winner:      -1,
	}
	for seat, h := range deal.Hands {
		r.hands[seat] = append([]Card{}, h...)
		SortHand(r.hands[seat])
	}
	r.auction = NewAuction(firstBidder, r.rules)
	return r, nil
}

func (r *Round) Phase() RoundPhase { return r.phase }
func (r *Round) TurnSeat() int { return r.turnSeat }
func (r *Round) FirstBidder() int { return r.firstBidder }
func (r *Round) Bombs() int { return r.bombs }
func (r *Round) ConsecutivePasses() int { return r.passes }
func (r *Round) AbortReason() string { return r.abortReason }

// Multiplier returns the live multiplier: the auction's while bidding,
// the round's afterwards.
func (r *Round) Multiplier() int {
	if r.auction != nil {
		return r.auction.Multiplier()
	}
	return r.multiplier
}

// Landlord returns the privileged seat once the auction resolved.
func (r *Round) Landlord() (int, bool) {
	return r.landlord, r.landlord >= 0
}

// Auction returns a copy of the running auction, or nil once it is folded
// into the round.
func (r *Round) Auction() *Auction {
	if r.auction == nil {
		return nil
	}
	return r.auction.clone()
}

// Hand returns a copy of seat's remaining cards.
func (r *Round) Hand(seat int) []Card {
	if seat < 0 || seat >= SeatCount {
		return nil
	}
	return append([]Card{}, r.hands[seat]...)
}

// HandSize returns how many cards seat still holds.
func (r *Round) HandSize(seat int) int {
	if seat < 0 || seat >= SeatCount {
		return 0
	}
	return len(r.hands[seat])
}

// Bottom returns a copy of the three reserved cards.
func (r *Round) Bottom() []Card {
	return append([]Card{}, r.bottom...)
}

// PlayCount returns how many combinations seat has played this round.
func (r *Round) PlayCount(seat int) int {
	if seat < 0 || seat >= SeatCount {
		return 0
	}
	return r.plays[seat]
}

// LastPlay returns the combination to beat, if any.
func (r *Round) LastPlay() (LastPlay, bool) {
	if r.lastPlay == nil {
		return LastPlay{}, false
	}
	return *r.lastPlay, true
}

// History returns a copy of every accepted action.
func (r *Round) History() []MoveRecord {
	return append([]MoveRecord(nil), r.history...)
}

// IsLeading reports whether seat may open a new trick with any valid set.
func (r *Round) IsLeading(seat int) bool {
	return r.lastPlay == nil || r.lastPlay.Seat == seat
}

// Outcome returns the result of an ended round.
func (r *Round) Outcome() (Outcome, bool) {
	if r.phase != RoundEnded {
		return Outcome{}, false
	}
	o := Outcome{
		Winner:      r.winner,
		Landlord:    r.landlord,
		LandlordWon: r.winner == r.landlord,
		Multiplier:  r.multiplier,
		Bombs:       r.bombs,
	}
	losingPlays := 0
	for seat := 0; seat < SeatCount; seat++ {
		if (seat == r.landlord) != o.LandlordWon {
			losingPlays += r.plays[seat]
		}
	}
	o.Perfect = losingPlays == 0
	return o, true
}

// Bid applies an auction action for seat. Once the auction resolves the
// landlord takes the bottom cards and leads the first trick.
func (r *Round) Bid(seat int, action AuctionAction) error {
	if r.phase.Terminal() {
		return fmt.Errorf("%w: round is %s", ErrOutOfTurn, r.phase)
	}
	if r.phase != RoundAuction {
		return fmt.Errorf("%w: auction already resolved", ErrAuctionPhaseViolation)
	}
	if err := r.auction.Apply(seat, action); err != nil {
		return err
	}
	r.history = append(r.history, MoveRecord{Seat: seat, Kind: MoveBid, Bid: action})

	switch r.auction.Phase() {
	case AuctionResolved:
		holder, ok := r.auction.Holder()
		if !ok {
			panic("auction resolved without a holder")
		}
		r.landlord = holder
		r.multiplier = r.auction.Multiplier()
		r.hands[holder] = append(r.hands[holder], r.bottom...)
		SortHand(r.hands[holder])
		r.turnSeat = holder
		r.auction = nil
		r.phase = RoundPlaying
	case AuctionVoid:
		r.phase = RoundVoid
	default:
		r.turnSeat = r.auction.TurnSeat()
	}
	return nil
}

// Play submits cards for seat. Illegal plays are rejected without touching
// the round.
func (r *Round) Play(seat int, cards []Card) (CardCombination, error) {
	if err := r.checkTurn(seat); err != nil {
		return CardCombination{}, err
	}
	if len(cards) == 0 {
		return CardCombination{}, fmt.Errorf("%w: no cards submitted", ErrInvalidCombination)
	}
	if !ContainsAll(r.hands[seat], cards) {
		return CardCombination{}, fmt.Errorf("%w: seat %d", ErrIllegalOwnership, seat)
	}
	combo := IdentifyCombination(cards)
	if !combo.Valid() {
		return CardCombination{}, fmt.Errorf("%w: %s", ErrInvalidCombination, FormatCards(combo.Cards))
	}
	if !r.IsLeading(seat) && !Beats(r.lastPlay.Combination, combo) {
		return CardCombination{}, fmt.Errorf("%w: %s over %s", ErrFailsToBeat, combo.Type, r.lastPlay.Combination.Type)
	}

	before := len(r.hands[seat])
	r.hands[seat] = RemoveCards(r.hands[seat], cards)
	if len(r.hands[seat]) != before-len(cards) {
		panic(fmt.Sprintf("seat %d hand size %d after removing %d of %d", seat, len(r.hands[seat]), len(cards), before))
	}

	r.lastPlay = &LastPlay{Seat: seat, Combination: combo}
	r.passes = 0
	r.plays[seat]++
	if combo.Type.IsBomb() {
		r.bombs++
		r.multiplier *= 2
	}
	r.history = append(r.history, MoveRecord{Seat: seat, Kind: MovePlay, Cards: combo.Cards, Type: combo.Type})

	if len(r.hands[seat]) == 0 {
		r.winner = seat
		r.phase = RoundEnded
		return combo, nil
	}
	r.turnSeat = NextSeat(seat)
	return combo, nil
}

// Pass declines to beat the last play. Two passes in a row clear the trick
// so the next seat leads.
func (r *Round) Pass(seat int) error {
	if err := r.checkTurn(seat); err != nil {
		return err
	}
	if r.IsLeading(seat) {
		return fmt.Errorf("%w: seat %d", ErrMustLead, seat)
	}
	r.passes++
	if r.passes >= SeatCount-1 {
		r.lastPlay = nil
		r.passes = 0
	}
	r.history = append(r.history, MoveRecord{Seat: seat, Kind: MovePass})
	r.turnSeat = NextSeat(seat)
	return nil
}

// Abort abandons the round on behalf of the owning collaborator. It returns
// false when the round was already over.
func (r *Round) Abort(reason string) bool {
	if r.phase.Terminal() {
		return false
	}
	r.phase = RoundAborted
	r.abortReason = reason
	return true
}

func (r *Round) checkTurn(seat int) error {
	if r.phase != RoundPlaying {
		return fmt.Errorf("%w: round is %s", ErrOutOfTurn, r.phase)
	}
	if seat != r.turnSeat {
		return fmt.Errorf("%w: seat %d acted on seat %d's turn", ErrOutOfTurn, seat, r.turnSeat)
	}
	return nil
}
