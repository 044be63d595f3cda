package domain

import "fmt"

// AuctionPhase is the lifecycle stage of the landlord auction.
type AuctionPhase string

const (
	AuctionAwaitingFirstCall AuctionPhase = "awaiting_first_call"
	AuctionAwaitingGrabs     AuctionPhase = "awaiting_grabs"
	AuctionResolved          AuctionPhase = "resolved"
	AuctionVoid              AuctionPhase = "void"
)

// Terminal reports whether the auction accepts no further bids.
func (p AuctionPhase) Terminal() bool {
	return p == AuctionResolved || p == AuctionVoid
}

// AuctionAction is a single seat's bid.
type AuctionAction string

const (
	BidCall   AuctionAction = "call"
	BidGrab   AuctionAction = "grab"
	BidDouble AuctionAction = "double"
	BidPass   AuctionAction = "pass"
)

// Valid reports whether the action is one of the known bids.
func (a AuctionAction) Valid() bool {
	switch a {
	case BidCall, BidGrab, BidDouble, BidPass:
		return true
	}
	return false
}

// AuctionRules tune the multiplier arithmetic of the auction.
type AuctionRules struct {
	CallMultiplier int `json:"call_multiplier"` // multiplier after the first call
	GrabStep       int `json:"grab_step"`       // added by each grab
	GrabCap        int `json:"grab_cap"`        // grabs never raise past this
	DoubleCap      int `json:"double_cap"`      // doubles never raise past this
}

// DefaultAuctionRules returns the rules used when nothing is configured.
func DefaultAuctionRules() AuctionRules {
	return AuctionRules{CallMultiplier: 2, GrabStep: 1, GrabCap: 6, DoubleCap: 24}
}

// Normalize fills unset fields with defaults and keeps the caps ordered.
func (r AuctionRules) Normalize() AuctionRules {
	d := DefaultAuctionRules()
	if r.CallMultiplier < 1 {
		r.CallMultiplier = d.CallMultiplier
	}
	if r.GrabStep < 1 {
		r.GrabStep = d.GrabStep
	}
	if r.GrabCap < r.CallMultiplier {
		r.GrabCap = max(d.GrabCap, r.CallMultiplier)
	}
	if r.DoubleCap < r.GrabCap {
		r.DoubleCap = max(d.DoubleCap, r.GrabCap)
	}
	return r
}

// BidRecord is one accepted auction action.
type BidRecord struct {
	Seat       int           `json:"seat"`
	Action     AuctionAction `json:"action"`
	Multiplier int           `json:"multiplier"`
}

// Auction is the call/grab/double state machine that picks the landlord.
type Auction struct {
	rules      AuctionRules
	phase      AuctionPhase
	startSeat  int
	turnSeat   int
	holder     int // -1 until someone calls
	multiplier int
	passes     int
	history    []BidRecord
}

// NewAuction starts an auction where startSeat acts first.
func NewAuction(startSeat int, rules AuctionRules) *Auction {
	if startSeat < 0 || startSeat >= SeatCount {
		panic(fmt.Sprintf("auction start seat %d out of range", startSeat))
	}
	return &Auction{
		rules:      rules.Normalize(),
		phase:      AuctionAwaitingFirstCall,
		startSeat:  startSeat,
		turnSeat:   startSeat,
		holder:     -1,
		multiplier: 1,
	}
}

func (a *Auction) Phase() AuctionPhase { return a.phase }
func (a *Auction) TurnSeat() int { return a.turnSeat }
func (a *Auction) StartSeat() int { return a.startSeat }
func (a *Auction) Multiplier() int { return a.multiplier }
func (a *Auction) ConsecutivePasses() int { return a.passes }
func (a *Auction) Rules() AuctionRules { return a.rules }

// Holder returns the seat tentatively holding the landlord role.
func (a *Auction) Holder() (int, bool) {
	return a.holder, a.holder >= 0
}

// History returns a copy of the accepted bids.
func (a *Auction) History() []BidRecord {
	return append([]BidRecord(nil), a.history...)
}

// CanAct reports whether action would be accepted from the seat on turn.
func (a *Auction) CanAct(action AuctionAction) bool {
	return a.check(a.turnSeat, action) == nil
}

// LegalActions lists the bids the seat on turn may make.
func (a *Auction) LegalActions() []AuctionAction {
	var out []AuctionAction
	for _, act := range []AuctionAction{BidCall, BidGrab, BidDouble, BidPass} {
		if a.CanAct(act) {
			out = append(out, act)
		}
	}
	return out
}

func (a *Auction) check(seat int, action AuctionAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: unknown bid %q", ErrMalformedAction, action)
	}
	if a.phase.Terminal() {
		return fmt.Errorf("%w: auction is %s", ErrAuctionPhaseViolation, a.phase)
	}
	if seat != a.turnSeat {
		return fmt.Errorf("%w: seat %d bid on seat %d's turn", ErrOutOfTurn, seat, a.turnSeat)
	}
	switch action {
	case BidCall:
		if a.phase != AuctionAwaitingFirstCall {
			return fmt.Errorf("%w: landlord already called", ErrAuctionPhaseViolation)
		}
	case BidGrab:
		if a.phase != AuctionAwaitingGrabs {
			return fmt.Errorf("%w: nothing to grab yet", ErrAuctionPhaseViolation)
		}
		if a.multiplier >= a.rules.GrabCap {
			return fmt.Errorf("%w: multiplier %d at grab cap", ErrAuctionPhaseViolation, a.multiplier)
		}
	case BidDouble:
		if a.phase != AuctionAwaitingGrabs {
			return fmt.Errorf("%w: nothing to double yet", ErrAuctionPhaseViolation)
		}
		if a.multiplier >= a.rules.DoubleCap {
			return fmt.Errorf("%w: multiplier %d at double cap", ErrAuctionPhaseViolation, a.multiplier)
		}
	}
	return nil
}

// Apply records seat's bid. Rejected bids leave the auction untouched.
func (a *Auction) Apply(seat int, action AuctionAction) error {
	if err := a.check(seat, action); err != nil {
		return err
	}

	switch action {
	case BidCall:
		a.holder = seat
		a.multiplier = a.rules.CallMultiplier
		a.passes = 0
		a.phase = AuctionAwaitingGrabs
	case BidGrab:
		a.holder = seat
		a.multiplier = min(a.multiplier+a.rules.GrabStep, a.rules.GrabCap)
		a.passes = 0
	case BidDouble:
		a.holder = seat
		a.multiplier = min(a.multiplier*2, a.rules.DoubleCap)
		a.passes = 0
	case BidPass:
		a.passes++
		if a.phase == AuctionAwaitingFirstCall && a.passes >= SeatCount {
			a.phase = AuctionVoid
		} else if a.phase == AuctionAwaitingGrabs && a.passes >= SeatCount-1 {
			a.phase = AuctionResolved
		}
	}

	a.history = append(a.history, BidRecord{Seat: seat, Action: action, Multiplier: a.multiplier})
	if !a.phase.Terminal() {
		a.turnSeat = NextSeat(seat)
	}
	return nil
}

func (a *Auction) clone() *Auction {
	cp := *a
	cp.history = a.History()
	return &cp
}

// Rules bundle the table-level settings rounds are played under.
type Rules struct {
	Auction AuctionRules
	// MaxRedeals is how many voided auctions in a row are redealt before the
	// game is abandoned.
	MaxRedeals int
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{Auction: DefaultAuctionRules(), MaxRedeals: 3}
}
