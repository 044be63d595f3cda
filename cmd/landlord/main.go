// Command landlord plays Dou Dizhu in the terminal against two bots.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sanity-io/litter"
)

const humanSeat = 0

// table is the offline seating: the human at seat 0 and two bots.
type table struct {
	seats  domain.Seats
	names  [domain.SeatCount]string
	agents map[int]*bot.Agent
	totals map[string]int64
}

func (t *table) name(userID string) string {
	if seat, ok := t.seats.SeatOf(userID); ok {
		return t.names[seat]
	}
	return userID
}

func main() {
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	env, err := config.LoadEnv()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if env.Debug {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}

	cfg, err := config.ReadGameConfig(env.ConfigPath)
	if err != nil {
		logger.Warn("using default game config", "error", err)
		cfg = config.Default()
	}
	level, err := bot.ParseBotLevel(env.BotLevel)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Debug("bot identities not loaded", "error", err)
	}

	seed := env.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("starting", "seed", seed, "level", level, "rounds", env.Rounds)
	rng := rand.New(rand.NewSource(seed))

	t, err := newTable(env.PlayerName, level, rng)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Land", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("lord", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)
	pterm.Info.Printfln("%s vs %s and %s (%s bots)", t.names[0], t.names[1], t.names[2], level)

	svc := app.NewService(rng, cfg.Rules())
	stake := cfg.BaseStake(env.Tier)
	firstBidder := -1
	for round := 1; round <= env.Rounds; round++ {
		pterm.DefaultSection.Printfln("Round %d", round)
		winner, err := playRound(logger, svc, t, firstBidder, stake, env)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		firstBidder = winner
	}
	pterm.Println("Thank you for playing...")
}

func newTable(playerName string, level bot.BotLevel, rng *rand.Rand) (*table, error) {
	t := &table{
		agents: make(map[int]*bot.Agent),
		totals: make(map[string]int64),
	}
	t.seats[humanSeat] = "human"
	t.names[humanSeat] = playerName

	for seat := 1; seat < domain.SeatCount; seat++ {
		identity := bot.GetBotIdentity(rng.Intn(1<<10)*domain.SeatCount + seat)
		brain, err := bot.NewBrain(level, rng)
		if err != nil {
			return nil, err
		}
		name := identity.DisplayName
		if name == "" {
			name = fmt.Sprintf("Bot %d", seat)
		}
		t.seats[seat] = identity.UserID
		t.names[seat] = name
		t.agents[seat] = &bot.Agent{ID: identity.UserID, Name: name, Strategy: brain}
	}
	return t, nil
}

// playRound deals and plays until the round ends or is aborted. It returns
// the seat that should open the next auction, -1 for a random one.
func playRound(logger *slog.Logger, svc *app.Service, t *table, firstBidder int, stake int64, env config.Env) (int, error) {
	game, events, err := svc.StartGame(t.seats, firstBidder, stake)
	if err != nil {
		return -1, err
	}

	for {
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case app.GameEndedPayload:
				for userID, change := range p.BalanceChanges {
					t.totals[userID] += change
				}
				printSettlement(t, p)
				if env.Debug {
					if snap, err := svc.Snapshot(game); err == nil {
						logger.Debug("final state\n" + litter.Sdump(snap))
					}
				}
				seat, _ := t.seats.SeatOf(p.WinnerUserID)
				return seat, nil
			case app.GameAbortedPayload:
				pterm.Warning.Printfln("Round aborted: %s", p.Reason)
				return -1, nil
			}
			if line, ok := describeEvent(t, ev); ok {
				pterm.Info.Println(line)
			}
		}

		seat := game.Round.TurnSeat()
		if seat == humanSeat {
			printTable(t, game)
			events, err = humanTurn(svc, game)
		} else {
			events, err = botTurn(logger, svc, t, game, seat, env.ThinkDelay)
		}
		if err != nil {
			return -1, err
		}
	}
}

// humanTurn prompts until the player submits an action the round accepts.
func humanTurn(svc *app.Service, game *app.Game) ([]app.Event, error) {
	for {
		action, err := promptAction(game.Round)
		if err != nil {
			if domain.IsViolation(err) {
				pterm.Error.Printfln("Not understood: %v", err)
				continue
			}
			return nil, err
		}
		events, err := svc.Apply(game, action)
		if err == nil {
			return events, nil
		}
		if !domain.IsViolation(err) {
			return nil, err
		}
		pterm.Error.Printfln("Not allowed: %v", err)
	}
}

func promptAction(round *domain.Round) (domain.Action, error) {
	if auction := round.Auction(); auction != nil {
		var options []string
		for _, a := range auction.LegalActions() {
			options = append(options, string(a))
		}
		selected, err := pterm.DefaultInteractiveSelect.WithDefaultText("Your bid").WithOptions(options).Show()
		if err != nil {
			return domain.Action{}, err
		}
		return domain.BidAction(humanSeat, domain.AuctionAction(selected)), nil
	}

	prompt := "Cards to play, e.g. 3S 3H (empty to pass)"
	if round.IsLeading(humanSeat) {
		prompt = "You lead. Cards to play, e.g. 3S 3H"
	}
	input, err := pterm.DefaultInteractiveTextInput.WithDefaultText(prompt).Show()
	if err != nil {
		return domain.Action{}, err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.PassAction(humanSeat), nil
	}
	cards, err := domain.ParseCards(input)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
	}
	return domain.PlayAction(humanSeat, cards), nil
}

func botTurn(logger *slog.Logger, svc *app.Service, t *table, game *app.Game, seat int, delay time.Duration) ([]app.Event, error) {
	agent := t.agents[seat]
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("%s is thinking...", agent.Name))
	time.Sleep(delay)

	action, err := agent.Act(game.Round, seat)
	if err != nil {
		logger.Debug("bot strategy failed, using fallback", "bot", agent.Name, "error", err)
	}
	events, err := svc.Apply(game, action)
	if err != nil {
		if spinner != nil {
			spinner.Fail(fmt.Sprintf("%s made an illegal move", agent.Name))
		}
		return nil, errors.Join(fmt.Errorf("bot %s", agent.Name), err)
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("%s acted", agent.Name))
	}
	return events, nil
}
