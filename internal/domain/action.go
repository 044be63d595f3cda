package domain

import "fmt"

// ActionKind tags the variant carried by an Action.
type ActionKind string

const (
	ActionPlay ActionKind = "play"
	ActionPass ActionKind = "pass"
	ActionBid  ActionKind = "bid"
)

// Action is an inbound request from a seat. Exactly the fields of its kind
// are set: Cards for play, Bid for bid, nothing for pass.
type Action struct {
	Kind  ActionKind    `json:"kind"`
	Seat  int           `json:"seat"`
	Cards []Card        `json:"cards,omitempty"`
	Bid   AuctionAction `json:"bid,omitempty"`
}

// PlayAction builds a play request.
func PlayAction(seat int, cards []Card) Action {
	return Action{Kind: ActionPlay, Seat: seat, Cards: cards}
}

// PassAction builds a pass request.
func PassAction(seat int) Action {
	return Action{Kind: ActionPass, Seat: seat}
}

// BidAction builds an auction request.
func BidAction(seat int, bid AuctionAction) Action {
	return Action{Kind: ActionBid, Seat: seat, Bid: bid}
}

// Validate checks the schema of the action before it reaches the round.
func (a Action) Validate() error {
	if a.Seat < 0 || a.Seat >= SeatCount {
		return fmt.Errorf("%w: seat %d", ErrMalformedAction, a.Seat)
	}
	switch a.Kind {
	case ActionPlay:
		if len(a.Cards) == 0 {
			return fmt.Errorf("%w: play without cards", ErrMalformedAction)
		}
		if a.Bid != "" {
			return fmt.Errorf("%w: play carries a bid", ErrMalformedAction)
		}
		seen := make(map[Card]bool, len(a.Cards))
		for _, c := range a.Cards {
			if !c.Valid() {
				return fmt.Errorf("%w: unknown card %v", ErrMalformedAction, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: duplicate card %v", ErrMalformedAction, c)
			}
			seen[c] = true
		}
	case ActionPass:
		if len(a.Cards) > 0 || a.Bid != "" {
			return fmt.Errorf("%w: pass carries a payload", ErrMalformedAction)
		}
	case ActionBid:
		if !a.Bid.Valid() {
			return fmt.Errorf("%w: unknown bid %q", ErrMalformedAction, a.Bid)
		}
		if len(a.Cards) > 0 {
			return fmt.Errorf("%w: bid carries cards", ErrMalformedAction)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedAction, a.Kind)
	}
	return nil
}

// Apply validates the action and dispatches it to the matching operation.
// The returned combination is only set for plays.
func (r *Round) Apply(a Action) (CardCombination, error) {
	if err := a.Validate(); err != nil {
		return CardCombination{}, err
	}
	switch a.Kind {
	case ActionPlay:
		return r.Play(a.Seat, a.Cards)
	case ActionPass:
		return CardCombination{}, r.Pass(a.Seat)
	default:
		return CardCombination{}, r.Bid(a.Seat, a.Bid)
	}
}
