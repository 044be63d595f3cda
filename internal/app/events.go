package app

import "landlord/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventHandDealt       EventKind = "hand_dealt"
	EventAuctionStarted  EventKind = "auction_started"
	EventBidPlaced       EventKind = "bid_placed"
	EventAuctionVoided   EventKind = "auction_voided"
	EventLandlordDecided EventKind = "landlord_decided"
	EventCardPlayed      EventKind = "card_played"
	EventTurnPassed      EventKind = "turn_passed"
	EventGameEnded       EventKind = "game_ended"
	EventGameAborted     EventKind = "game_aborted"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type HandDealtPayload struct {
	UserID string
	Seat   int
	Hand   []domain.Card
}

type AuctionStartedPayload struct {
	GameID            string
	FirstBidderUserID string
	Redeal            int
}

type BidPlacedPayload struct {
	UserID         string
	Action         domain.AuctionAction
	Multiplier     int
	NextTurnUserID string // empty once the auction is over
}

type AuctionVoidedPayload struct {
	Redeals int
}

type LandlordDecidedPayload struct {
	UserID      string
	BottomCards []domain.Card
	Multiplier  int
}

type CardPlayedPayload struct {
	UserID         string
	Cards          []domain.Card
	Combination    domain.CardCombinationType
	Multiplier     int
	CardsLeft      int
	NextTurnUserID string
}

type TurnPassedPayload struct {
	UserID         string
	NextTurnUserID string
	// TrickCleared is set when every other seat passed and the next seat leads.
	TrickCleared bool
}

type GameEndedPayload struct {
	WinnerUserID   string
	LandlordUserID string
	LandlordWon    bool
	Perfect        bool
	Multiplier     int
	BaseStake      int64
	BalanceChanges map[string]int64
}

type GameAbortedPayload struct {
	Reason string
}
