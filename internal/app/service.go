package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"landlord/internal/domain"
)

// Game is one table's run of rounds: the seated players, the stake and the
// round in progress. A voided auction replaces Round with a fresh deal.
type Game struct {
	ID          string
	Seats       domain.Seats
	BaseStake   int64
	Round       *domain.Round
	FirstBidder int
	Redeals     int
	Settlement  *domain.Settlement
}

// SeatOf returns the seat held by userID.
func (g *Game) SeatOf(userID string) (int, error) {
	seat, ok := g.Seats.SeatOf(userID)
	if !ok {
		return -1, ErrUnknownPlayer
	}
	return seat, nil
}

// TurnUserID returns the user expected to act, or "" when nobody is.
func (g *Game) TurnUserID() string {
	if g.Round == nil || g.Round.Phase().Terminal() {
		return ""
	}
	return g.Seats[g.Round.TurnSeat()]
}

// LandlordUserID returns the landlord once the auction resolved.
func (g *Game) LandlordUserID() string {
	if g.Round == nil {
		return ""
	}
	if seat, ok := g.Round.Landlord(); ok {
		return g.Seats[seat]
	}
	return ""
}

// Service contains landlord use-cases operating on domain state.
type Service struct {
	rng   *rand.Rand
	rules domain.Rules
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, rules domain.Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rules.Auction = rules.Auction.Normalize()
	if rules.MaxRedeals < 0 {
		rules.MaxRedeals = 0
	}
	return &Service{rng: rng, rules: rules}
}

// Rules returns the rules rounds are dealt under.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

var (
	ErrNotPlaying    = errors.New("match not in playing phase")
	ErrTooFewPlayers = errors.New("not enough players to start")
	ErrUnknownPlayer = errors.New("player not found")
)

// StartGame deals the first round for the three seated players. A negative
// firstBidder picks the opening bidder at random.
func (s *Service) StartGame(seats domain.Seats, firstBidder int, baseStake int64) (*Game, []Event, error) {
	if seats.Occupied() < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}
	if firstBidder < 0 || firstBidder >= domain.SeatCount {
		firstBidder = s.rng.Intn(domain.SeatCount)
	}

	game := &Game{
		ID:          uuid.NewString(),
		Seats:       seats,
		BaseStake:   baseStake,
		FirstBidder: firstBidder,
	}
	events, err := s.deal(game)
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

// deal replaces the game's round with a fresh shuffle.
func (s *Service) deal(game *Game) ([]Event, error) {
	round, err := domain.NewRound(domain.DealCards(s.rng), game.FirstBidder, s.rules.Auction)
	if err != nil {
		return nil, fmt.Errorf("deal round: %w", err)
	}
	game.Round = round
	game.Settlement = nil

	events := make([]Event, 0, domain.SeatCount+1)
	for seat, userID := range game.Seats {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: userID,
				Seat:   seat,
				Hand:   round.Hand(seat),
			},
			Recipients: []string{userID},
		})
	}
	events = append(events, Event{
		Kind: EventAuctionStarted,
		Payload: AuctionStartedPayload{
			GameID:            game.ID,
			FirstBidderUserID: game.Seats[game.FirstBidder],
			Redeal:            game.Redeals,
		},
	})
	return events, nil
}

// Bid applies an auction action. A voided auction is redealt with the next
// seat opening; after too many voids in a row the game is aborted.
func (s *Service) Bid(game *Game, userID string, action domain.AuctionAction) ([]Event, error) {
	seat, err := s.activeSeat(game, userID)
	if err != nil {
		return nil, err
	}
	if err := game.Round.Bid(seat, action); err != nil {
		return nil, err
	}

	events := []Event{{
		Kind: EventBidPlaced,
		Payload: BidPlacedPayload{
			UserID:         userID,
			Action:         action,
			Multiplier:     game.Round.Multiplier(),
			NextTurnUserID: game.TurnUserID(),
		},
	}}

	switch game.Round.Phase() {
	case domain.RoundPlaying:
		game.Redeals = 0
		events = append(events, Event{
			Kind: EventLandlordDecided,
			Payload: LandlordDecidedPayload{
				UserID:      game.LandlordUserID(),
				BottomCards: game.Round.Bottom(),
				Multiplier:  game.Round.Multiplier(),
			},
		})
	case domain.RoundVoid:
		game.Redeals++
		if game.Redeals > s.rules.MaxRedeals {
			return append(events, Event{
				Kind:    EventGameAborted,
				Payload: GameAbortedPayload{Reason: AbortReasonNoLandlord},
			}), nil
		}
		events = append(events, Event{
			Kind:    EventAuctionVoided,
			Payload: AuctionVoidedPayload{Redeals: game.Redeals},
		})
		game.FirstBidder = domain.NextSeat(game.FirstBidder)
		dealt, err := s.deal(game)
		if err != nil {
			return nil, err
		}
		events = append(events, dealt...)
	}
	return events, nil
}

// PlayCards processes a play action and emits resulting events.
func (s *Service) PlayCards(game *Game, userID string, cards []domain.Card) ([]Event, error) {
	seat, err := s.activeSeat(game, userID)
	if err != nil {
		return nil, err
	}
	combo, err := game.Round.Play(seat, cards)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			UserID:         userID,
			Cards:          combo.Cards,
			Combination:    combo.Type,
			Multiplier:     game.Round.Multiplier(),
			CardsLeft:      game.Round.HandSize(seat),
			NextTurnUserID: game.TurnUserID(),
		},
	}}

	if game.Round.Phase() == domain.RoundEnded {
		events = append(events, s.finish(game))
	}
	return events, nil
}

// PassTurn marks a player's pass action.
func (s *Service) PassTurn(game *Game, userID string) ([]Event, error) {
	seat, err := s.activeSeat(game, userID)
	if err != nil {
		return nil, err
	}
	if err := game.Round.Pass(seat); err != nil {
		return nil, err
	}
	_, trickOpen := game.Round.LastPlay()

	return []Event{{
		Kind: EventTurnPassed,
		Payload: TurnPassedPayload{
			UserID:         userID,
			NextTurnUserID: game.TurnUserID(),
			TrickCleared:   !trickOpen,
		},
	}}, nil
}

// Apply dispatches a validated inbound action on behalf of the seat it names.
func (s *Service) Apply(game *Game, action domain.Action) ([]Event, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	userID := game.Seats[action.Seat]
	switch action.Kind {
	case domain.ActionPlay:
		return s.PlayCards(game, userID, action.Cards)
	case domain.ActionPass:
		return s.PassTurn(game, userID)
	default:
		return s.Bid(game, userID, action.Bid)
	}
}

// AbortRound abandons the round in progress, e.g. when a player leaves.
func (s *Service) AbortRound(game *Game, reason string) []Event {
	if game.Round == nil || !game.Round.Abort(reason) {
		return nil
	}
	return []Event{{
		Kind:    EventGameAborted,
		Payload: GameAbortedPayload{Reason: reason},
	}}
}

func (s *Service) finish(game *Game) Event {
	outcome, _ := game.Round.Outcome()
	settlement := domain.CalculateSettlement(outcome, game.BaseStake)
	game.Settlement = &settlement

	changes := make(map[string]int64, domain.SeatCount)
	for seat, userID := range game.Seats {
		changes[userID] += settlement.Changes[seat]
	}
	return Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			WinnerUserID:   game.Seats[outcome.Winner],
			LandlordUserID: game.Seats[outcome.Landlord],
			LandlordWon:    outcome.LandlordWon,
			Perfect:        outcome.Perfect,
			Multiplier:     outcome.Multiplier,
			BaseStake:      game.BaseStake,
			BalanceChanges: changes,
		},
	}
}

// activeSeat resolves the acting seat. Finished rounds are left to the
// domain, which rejects late actions as out of turn.
func (s *Service) activeSeat(game *Game, userID string) (int, error) {
	if game == nil || game.Round == nil {
		return -1, ErrNotPlaying
	}
	return game.SeatOf(userID)
}
