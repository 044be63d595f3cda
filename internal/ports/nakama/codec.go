package nakama

import (
	"fmt"

	"landlord/internal/app"
	"landlord/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Match messages travel as protobuf-encoded google.protobuf.Struct values so
// clients can decode them with any protobuf runtime and no generated schema.

// encodeEvent maps an app event to its op code and wire payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.HandDealtPayload:
		opCode = OpHandDealt
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"seat":    p.Seat,
			"hand":    cardsValue(p.Hand),
		}
	case app.AuctionStartedPayload:
		opCode = OpAuctionStarted
		fields = map[string]interface{}{
			"game_id":      p.GameID,
			"first_bidder": p.FirstBidderUserID,
			"redeal":       p.Redeal,
		}
	case app.BidPlacedPayload:
		opCode = OpBidPlaced
		fields = map[string]interface{}{
			"user_id":    p.UserID,
			"action":     string(p.Action),
			"multiplier": p.Multiplier,
			"next_turn":  p.NextTurnUserID,
		}
	case app.AuctionVoidedPayload:
		opCode = OpAuctionVoided
		fields = map[string]interface{}{
			"redeals": p.Redeals,
		}
	case app.LandlordDecidedPayload:
		opCode = OpLandlordDecided
		fields = map[string]interface{}{
			"user_id":      p.UserID,
			"bottom_cards": cardsValue(p.BottomCards),
			"multiplier":   p.Multiplier,
		}
	case app.CardPlayedPayload:
		opCode = OpCardPlayed
		fields = map[string]interface{}{
			"user_id":     p.UserID,
			"cards":       cardsValue(p.Cards),
			"combination": p.Combination.String(),
			"multiplier":  p.Multiplier,
			"cards_left":  p.CardsLeft,
			"next_turn":   p.NextTurnUserID,
		}
	case app.TurnPassedPayload:
		opCode = OpTurnPassed
		fields = map[string]interface{}{
			"user_id":       p.UserID,
			"next_turn":     p.NextTurnUserID,
			"trick_cleared": p.TrickCleared,
		}
	case app.GameEndedPayload:
		opCode = OpGameEnded
		changes := make(map[string]interface{}, len(p.BalanceChanges))
		for userID, amount := range p.BalanceChanges {
			changes[userID] = amount
		}
		fields = map[string]interface{}{
			"winner":          p.WinnerUserID,
			"landlord":        p.LandlordUserID,
			"landlord_won":    p.LandlordWon,
			"perfect":         p.Perfect,
			"multiplier":      p.Multiplier,
			"base_stake":      p.BaseStake,
			"balance_changes": changes,
		}
	case app.GameAbortedPayload:
		opCode = OpGameAborted
		fields = map[string]interface{}{
			"reason": p.Reason,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	data, err := marshalFields(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// decodeAction turns a client message into an action for seat. Bids carry
// {"bid": "call"}; plays carry {"cards": [...]} where each card is either
// {"rank": 3, "suit": 1} or a label such as "10H" or "BJ".
func decodeAction(opCode int64, seat int, data []byte) (domain.Action, error) {
	switch opCode {
	case OpPassTurn:
		return domain.PassAction(seat), nil
	case OpBid:
		msg, err := unmarshalFields(data)
		if err != nil {
			return domain.Action{}, err
		}
		bid := domain.AuctionAction(msg.GetFields()["bid"].GetStringValue())
		return domain.BidAction(seat, bid), nil
	case OpPlayCards:
		msg, err := unmarshalFields(data)
		if err != nil {
			return domain.Action{}, err
		}
		cards, err := cardsFromValue(msg.GetFields()["cards"])
		if err != nil {
			return domain.Action{}, err
		}
		return domain.PlayAction(seat, cards), nil
	default:
		return domain.Action{}, fmt.Errorf("%w: op code %d", domain.ErrMalformedAction, opCode)
	}
}

func cardsFromValue(v *structpb.Value) ([]domain.Card, error) {
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: cards must be a list", domain.ErrMalformedAction)
	}
	cards := make([]domain.Card, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		switch kind := item.GetKind().(type) {
		case *structpb.Value_StringValue:
			card, err := domain.ParseCard(kind.StringValue)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
			}
			cards = append(cards, card)
		case *structpb.Value_StructValue:
			f := kind.StructValue.GetFields()
			cards = append(cards, domain.Card{
				Rank: domain.Rank(f["rank"].GetNumberValue()),
				Suit: domain.Suit(f["suit"].GetNumberValue()),
			})
		default:
			return nil, fmt.Errorf("%w: unsupported card value", domain.ErrMalformedAction)
		}
	}
	return cards, nil
}

func cardsValue(cards []domain.Card) []interface{} {
	out := make([]interface{}, len(cards))
	for i, c := range cards {
		out[i] = map[string]interface{}{
			"rank":  int32(c.Rank),
			"suit":  int32(c.Suit),
			"label": c.String(),
		}
	}
	return out
}

func errorPayload(err error) ([]byte, error) {
	return marshalFields(map[string]interface{}{
		"code":    domain.ViolationCode(err),
		"message": err.Error(),
	})
}

func marshalFields(fields map[string]interface{}) ([]byte, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

func unmarshalFields(data []byte) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
	}
	return msg, nil
}

// encodeLabel renders the match label as JSON for Nakama's label index.
func encodeLabel(label domain.LabelPayload) (string, error) {
	msg, err := structpb.NewStruct(map[string]interface{}{
		"open":       label.Open,
		"game":       label.Game,
		"phase":      label.Phase,
		"players":    label.Players,
		"base_stake": label.BaseStake,
	})
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseSignal decodes a JSON match signal into its fields.
func parseSignal(data string) (map[string]*structpb.Value, error) {
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal([]byte(data), msg); err != nil {
		return nil, err
	}
	return msg.GetFields(), nil
}

func signalReply(fields map[string]interface{}) string {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return ""
	}
	b, err := protojson.Marshal(msg)
	if err != nil {
		return ""
	}
	return string(b)
}
