package bot

import (
	"landlord/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to calculate its move. A brain that fails or proposes
// an illegal move is overridden by the basic heuristic, so the result is
// always acceptable to the round.
func (a *Agent) Play(round *domain.Round, seat int) (Move, error) {
	move, err := a.Strategy.CalculateMove(round, seat)
	if err == nil && legalMove(round, seat, move) {
		return move, nil
	}
	fallback := (&BasicBot{}).ChooseAction(round.Hand(seat), lastCombination(round, seat), round.IsLeading(seat))
	return fallback, err
}

// Bid asks the agent for its auction action, passing when the brain fails or
// picks a bid the auction would refuse.
func (a *Agent) Bid(round *domain.Round, seat int) (domain.AuctionAction, error) {
	action, err := a.Strategy.CalculateBid(round, seat)
	if err != nil {
		return domain.BidPass, err
	}
	if auction := round.Auction(); auction == nil || !auction.CanAct(action) {
		return domain.BidPass, nil
	}
	return action, nil
}

// Act returns the inbound action the agent takes at seat in the round's
// current phase.
func (a *Agent) Act(round *domain.Round, seat int) (domain.Action, error) {
	if round.Phase() == domain.RoundAuction {
		bid, err := a.Bid(round, seat)
		return domain.BidAction(seat, bid), err
	}
	move, err := a.Play(round, seat)
	if move.Pass {
		return domain.PassAction(seat), err
	}
	return domain.PlayAction(seat, move.Cards), err
}

func legalMove(round *domain.Round, seat int, move Move) bool {
	if move.Pass {
		return !round.IsLeading(seat)
	}
	if len(move.Cards) == 0 || !domain.ContainsAll(round.Hand(seat), move.Cards) {
		return false
	}
	return domain.Beats(lastCombination(round, seat), domain.IdentifyCombination(move.Cards))
}
