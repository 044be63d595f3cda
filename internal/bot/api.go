package bot

import (
	"errors"
	"fmt"
	"strings"

	"landlord/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Pass  bool
	Cards []domain.Card
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(round *domain.Round, seat int) (Move, error)
	CalculateBid(round *domain.Round, seat int) (domain.AuctionAction, error)
}

// BotLevel names a strategy.
type BotLevel string

const (
	BotLevelBasic BotLevel = "basic"
	BotLevelGood  BotLevel = "good"
	BotLevelSmart BotLevel = "smart"
)

var (
	ErrUnknownLevel = errors.New("unknown bot level")
	ErrNotBidding   = errors.New("round is not in the auction")
)

// ParseBotLevel accepts a level name, case-insensitively.
func ParseBotLevel(s string) (BotLevel, error) {
	switch level := BotLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case BotLevelBasic, BotLevelGood, BotLevelSmart:
		return level, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// biddingAuction returns the live auction of the round.
func biddingAuction(round *domain.Round, seat int) (*domain.Auction, error) {
	if round == nil || round.Phase() != domain.RoundAuction {
		return nil, ErrNotBidding
	}
	auction := round.Auction()
	if auction == nil || auction.TurnSeat() != seat {
		return nil, ErrNotBidding
	}
	return auction, nil
}

// lastCombination returns the play seat has to beat; it is invalid when seat leads.
func lastCombination(round *domain.Round, seat int) domain.CardCombination {
	if round.IsLeading(seat) {
		return domain.CardCombination{}
	}
	last, _ := round.LastPlay()
	return last.Combination
}
