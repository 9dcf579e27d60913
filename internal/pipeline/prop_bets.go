package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/consolidate"
	"github.com/yourusername/gridiron-edge/internal/grading"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
	"github.com/yourusername/gridiron-edge/internal/oddsmath"
)

// planRestrictedWarning is the advisory surfaced when the upstream plan
// lacks access to player-prop markets.
const planRestrictedWarning = "Player props not available for this API plan or markets"

// propNames maps provider market keys to display names.
var propNames = map[string]string{
	"player_pass_yds":   "Passing Yards",
	"player_rec_yds":    "Receiving Yards",
	"player_rush_yds":   "Rushing Yards",
	"player_receptions": "Receptions",
	"player_rush_att":   "Rushing Attempts",
	"player_pass_tds":   "Passing TDs",
	"player_anytime_td": "Anytime TD",
}

var teamAbbrevPattern = regexp.MustCompile(`\(([A-Z]{2,4})\)`)

type eventResult struct {
	event models.Event
	odds  *oddsapi.EventOdds
	err   error
}

// RefreshPropBets builds the player-prop bet list. Events are listed, the
// started ones dropped, the remainder capped and fetched under the client's
// concurrency bound. Per-event failures isolate to that event; a plan
// restriction adds an advisory warning instead of failing the batch.
func (p *Pipeline) RefreshPropBets(ctx context.Context) (*models.BetList, error) {
	runID := uuid.NewString()

	events, err := p.client.ListEvents(ctx, p.cfg.PropSport)
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", p.cfg.PropSport, err)
	}

	upcoming := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if !p.started(ev.CommenceTime) {
			upcoming = append(upcoming, ev)
		}
	}

	maxEvents := p.cfg.MaxPropEvents
	if maxEvents < 1 {
		maxEvents = 1
	}
	if len(upcoming) > maxEvents {
		upcoming = upcoming[:maxEvents]
	}

	results := make([]eventResult, len(upcoming))
	var wg sync.WaitGroup
	wg.Add(len(upcoming))
	for i, ev := range upcoming {
		go func(i int, ev models.Event) {
			defer wg.Done()
			odds, err := p.client.GetEventOdds(ctx, p.cfg.PropSport, ev.ID, p.cfg.PropMarkets)
			results[i] = eventResult{event: ev, odds: odds, err: err}
		}(i, ev)
	}
	wg.Wait()

	bets := make([]models.Bet, 0)
	warning := ""
	for _, res := range results {
		if res.err != nil {
			if oddsapi.IsPlanRestricted(res.err) {
				if warning == "" {
					warning = planRestrictedWarning
				}
				continue
			}
			if p.logger != nil {
				p.logger.WithError(res.err).WithFields(logrus.Fields{
					"run_id":   runID,
					"event_id": res.event.ID,
					"sport":    p.cfg.PropSport,
				}).Warn("Per-event odds fetch failed, skipping event")
			}
			continue
		}
		if res.odds == nil {
			continue
		}
		bets = append(bets, p.gradePropEvent(res.event, res.odds)...)
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"run_id":     runID,
			"sport":      p.cfg.PropSport,
			"events":     len(upcoming),
			"bets":       len(bets),
			"restricted": warning != "",
		}).Info("Prop bet refresh completed")
	}

	return &models.BetList{Count: len(bets), Bets: bets, Warning: warning}, nil
}

// gradePropEvent consolidates one event's prop quotes across bookmakers
// and grades each surviving outcome.
func (p *Pipeline) gradePropEvent(ev models.Event, odds *oddsapi.EventOdds) []models.Bet {
	var quotes []models.Quote
	for _, book := range odds.Bookmakers {
		for _, market := range book.Markets {
			for _, outcome := range market.Outcomes {
				quotes = append(quotes, models.Quote{
					Market:      models.MarketPlayerProp,
					MarketKey:   market.Key,
					Outcome:     outcome.Name,
					Description: outcome.Description,
					Price:       outcome.Price,
					Point:       outcome.Point,
				})
			}
		}
	}

	gameTime := ev.CommenceTime.Format(time.RFC3339)
	bets := make([]models.Bet, 0)

	for _, out := range consolidate.Consolidate(quotes) {
		player := out.Description
		if player == "" {
			player = out.Outcome
		}
		if player == "" {
			p.dropQuote(out, models.ErrMissingPlayer)
			continue
		}
		if out.Point == nil {
			p.dropQuote(out, models.ErrMissingLine)
			continue
		}

		hitPct := oddsmath.HitPercent(out.ImpliedProbability)
		grade := grading.MarketGrade(out.ImpliedProbability)
		if !grading.IsSurfaced(grade) {
			continue
		}

		team := parseTeamFromText(player, ev.HomeTeam, ev.AwayTeam)
		if team == "" {
			team = ev.HomeTeam
		}

		side := models.BetTypeOver
		if strings.Contains(strings.ToLower(out.Outcome), "under") {
			side = models.BetTypeUnder
		}

		prop := propNames[out.MarketKey]
		if prop == "" {
			prop = out.MarketKey
		}

		bets = append(bets, models.Bet{
			ID:             fmt.Sprintf("%s-%s-%s-%s", ev.ID, out.MarketKey, player, side),
			Player:         player,
			Team:           team,
			Opponent:       opponentLabel(team, ev.HomeTeam, ev.AwayTeam),
			Prop:           prop,
			Type:           side,
			Line:           *out.Point,
			Odds:           out.Price,
			Grade:          grade,
			HitProbability: hitPct,
			Edge:           grading.MarketEdge(out.ImpliedProbability),
			GameTime:       gameTime,
			KeyFactors: []models.KeyFactor{
				{Factor: "Market Price", Weight: 16, Score: hitPct},
				{Factor: "Opponent Defense", Weight: tableWeight(p.propWeights, "opponentDefense"), Score: 60},
				{Factor: "Usage Rate", Weight: tableWeight(p.propWeights, "usageRate"), Score: 65},
				{Factor: "Recent Performance", Weight: tableWeight(p.propWeights, "recentPerformance"), Score: 62},
			},
			RecentForm: "N/A",
			Injury:     "N/A",
			Weather:    "Unknown",
			Updated:    "just now",
		})
	}

	return bets
}

// parseTeamFromText infers a team from free text: case-insensitive
// substring match against home and away names, then a parenthesized
// 2-4 letter abbreviation. Empty when nothing matches.
func parseTeamFromText(text, home, away string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	if home != "" && strings.Contains(lower, strings.ToLower(home)) {
		return home
	}
	if away != "" && strings.Contains(lower, strings.ToLower(away)) {
		return away
	}
	if m := teamAbbrevPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// opponentLabel renders who the selection faces: "vs <away>" from home,
// "@ <home>" from away. Teams resolved only to an abbreviation fall back
// to facing the home side.
func opponentLabel(team, home, away string) string {
	switch team {
	case home:
		return "vs " + away
	case away:
		return "@ " + home
	default:
		return "vs " + home
	}
}
