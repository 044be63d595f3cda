package main

import (
	"fmt"
	"strings"

	"landlord/internal/app"
	"landlord/internal/domain"

	"github.com/pterm/pterm"
)

// colorCard renders red suits and the big joker in red.
func colorCard(c domain.Card) string {
	switch {
	case c.Rank == domain.RankBigJoker, c.Suit == domain.SuitHearts, c.Suit == domain.SuitDiamonds:
		return pterm.LightRed(c.String())
	case c.Rank == domain.RankSmallJoker:
		return pterm.Gray(c.String())
	default:
		return pterm.LightWhite(c.String())
	}
}

func colorCards(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = colorCard(c)
	}
	return strings.Join(parts, " ")
}

// printTable shows every seat's card count and the cards the human holds.
func printTable(t *table, game *app.Game) {
	round := game.Round
	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2)

	var panels []pterm.Panel
	for seat := range game.Seats {
		role := "farmer"
		if landlord, ok := round.Landlord(); !ok {
			role = "?"
		} else if landlord == seat {
			role = pterm.LightYellow("landlord")
		}
		title := t.names[seat]
		if seat == round.TurnSeat() && !round.Phase().Terminal() {
			title = pterm.LightCyan("> " + title)
		}
		body := pterm.Sprintfln("role: %s", role) + pterm.Sprintf("cards: %d", round.HandSize(seat))
		panels = append(panels, pterm.Panel{Data: pbox.WithTitle(title).Sprint(body)})
	}

	info := pterm.Sprintfln("multiplier: x%d", round.Multiplier())
	if _, ok := round.Landlord(); ok {
		info += pterm.Sprintfln("bottom: %s", colorCards(round.Bottom()))
	}
	if last, ok := round.LastPlay(); ok {
		info += pterm.Sprintf("to beat: %s (%s by %s)", colorCards(last.Combination.Cards), last.Combination.Type, t.names[last.Seat])
	} else {
		info += "to beat: nothing"
	}
	board := pterm.Panel{Data: pbox.WithTitle("table").Sprint(info)}

	hand := round.Hand(humanSeat)
	mine := pterm.Panel{Data: pbox.WithTitle(pterm.LightGreen("your hand")).Sprint(colorCards(hand))}

	_ = pterm.DefaultPanel.WithPanels([][]pterm.Panel{panels, {board}, {mine}}).Render()
}

// describeEvent turns a service event into one line of table talk.
func describeEvent(t *table, ev app.Event) (string, bool) {
	switch p := ev.Payload.(type) {
	case app.AuctionStartedPayload:
		if p.Redeal > 0 {
			return fmt.Sprintf("Redeal %d. %s opens the auction.", p.Redeal, t.name(p.FirstBidderUserID)), true
		}
		return fmt.Sprintf("Cards dealt. %s opens the auction.", t.name(p.FirstBidderUserID)), true
	case app.BidPlacedPayload:
		return fmt.Sprintf("%s: %s (x%d)", t.name(p.UserID), p.Action, p.Multiplier), true
	case app.AuctionVoidedPayload:
		return "Nobody called. The cards are dealt again.", true
	case app.LandlordDecidedPayload:
		return fmt.Sprintf("%s is the landlord at x%d and takes %s", t.name(p.UserID), p.Multiplier, colorCards(p.BottomCards)), true
	case app.CardPlayedPayload:
		return fmt.Sprintf("%s plays %s [%s], %d left", t.name(p.UserID), colorCards(p.Cards), p.Combination, p.CardsLeft), true
	case app.TurnPassedPayload:
		if p.TrickCleared {
			return fmt.Sprintf("%s passes. %s leads.", t.name(p.UserID), t.name(p.NextTurnUserID)), true
		}
		return fmt.Sprintf("%s passes.", t.name(p.UserID)), true
	case app.GameAbortedPayload:
		return fmt.Sprintf("Round aborted: %s", p.Reason), true
	}
	return "", false
}

// printSettlement renders the result box and the stake changes.
func printSettlement(t *table, p app.GameEndedPayload) {
	headline := pterm.Sprintfln("%s went out first.", t.name(p.WinnerUserID))
	if p.LandlordWon {
		headline += pterm.LightYellow("The landlord wins!")
	} else {
		headline += pterm.LightGreen("The farmers win!")
	}
	if p.Perfect {
		headline += pterm.Sprint("\n", pterm.LightMagenta("Spring! Stakes are doubled."))
	}
	pterm.DefaultBox.WithTitle(pterm.LightYellow("|ROUND OVER|")).WithTitleTopCenter().Println(headline)

	data := pterm.TableData{{"Player", "Role", "Change", "Total"}}
	for seat, userID := range t.seats {
		role := "farmer"
		if userID == p.LandlordUserID {
			role = "landlord"
		}
		data = append(data, []string{
			t.names[seat],
			role,
			fmt.Sprintf("%+d", p.BalanceChanges[userID]),
			fmt.Sprintf("%d", t.totals[userID]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Printfln("Base stake %d, multiplier x%d", p.BaseStake, p.Multiplier)
}
