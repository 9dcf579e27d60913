package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/consolidate"
	"github.com/yourusername/gridiron-edge/internal/grading"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
	"github.com/yourusername/gridiron-edge/internal/oddsmath"
)

// RefreshTeamBets builds the team-game bet list: college football spreads
// and totals consolidated across bookmakers and graded on market-implied
// probability. A listing-level fetch failure is a hard failure.
func (p *Pipeline) RefreshTeamBets(ctx context.Context) (*models.BetList, error) {
	runID := uuid.NewString()

	odds, err := p.client.GetOdds(ctx, p.cfg.TeamSport, p.cfg.TeamMarkets)
	if err != nil {
		return nil, fmt.Errorf("fetch %s odds: %w", p.cfg.TeamSport, err)
	}

	bets := make([]models.Bet, 0)
	for _, game := range odds {
		if p.started(game.CommenceTime) {
			continue
		}
		bets = append(bets, p.gradeTeamGame(game)...)
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"run_id": runID,
			"sport":  p.cfg.TeamSport,
			"games":  len(odds),
			"bets":   len(bets),
		}).Info("Team bet refresh completed")
	}

	return &models.BetList{Count: len(bets), Bets: bets}, nil
}

// gradeTeamGame consolidates one game's spread and total quotes and grades
// each surviving outcome.
func (p *Pipeline) gradeTeamGame(game oddsapi.EventOdds) []models.Bet {
	var spreads, totals []models.Quote
	for _, book := range game.Bookmakers {
		for _, market := range book.Markets {
			for _, outcome := range market.Outcomes {
				quote := models.Quote{
					MarketKey: market.Key,
					Outcome:   outcome.Name,
					Price:     outcome.Price,
					Point:     outcome.Point,
				}
				switch market.Key {
				case "spreads":
					quote.Market = models.MarketSpreads
					spreads = append(spreads, quote)
				case "totals":
					quote.Market = models.MarketTotals
					totals = append(totals, quote)
				}
			}
		}
	}

	bets := make([]models.Bet, 0)
	gameTime := game.CommenceTime.Format(time.RFC3339)

	for _, out := range consolidate.Consolidate(spreads) {
		if out.Point == nil {
			p.dropQuote(out, models.ErrMissingLine)
			continue
		}
		hitPct := oddsmath.HitPercent(out.ImpliedProbability)
		grade := grading.MarketGrade(out.ImpliedProbability)
		if !grading.IsSurfaced(grade) {
			continue
		}

		team, isKnown := consolidate.ResolveSpreadTeam(out.Outcome, game.HomeTeam, game.AwayTeam)
		homeFieldScore := 50
		if isKnown && team == game.HomeTeam {
			homeFieldScore = 70
		}

		bets = append(bets, models.Bet{
			ID:             fmt.Sprintf("%s-spread-%s-%s", game.ID, team, formatPoint(*out.Point)),
			Team1:          game.AwayTeam,
			Team2:          game.HomeTeam,
			Type:           models.BetTypeSpread,
			Line:           fmt.Sprintf("%s %s", team, formatSignedPoint(*out.Point)),
			Odds:           out.Price,
			Grade:          grade,
			HitProbability: hitPct,
			Edge:           grading.MarketEdge(out.ImpliedProbability),
			GameTime:       gameTime,
			Venue:          "TBD",
			KeyFactors: []models.KeyFactor{
				{Factor: "Market Price", Weight: 20, Score: hitPct},
				{Factor: "Home Field", Weight: tableWeight(p.teamWeights, "homeField"), Score: homeFieldScore},
				{Factor: "Recent Form", Weight: tableWeight(p.teamWeights, "form"), Score: 60},
				{Factor: "Weather", Weight: tableWeight(p.teamWeights, "weather"), Score: 80},
			},
			Analysis:   "Market-implied selection (aggregated across books)",
			Motivation: "Regular season",
			Weather:    "Unknown",
			Updated:    "just now",
			Conference: "NCAAF",
		})
	}

	for _, out := range consolidate.ConsolidateTotals(totals) {
		if out.Point == nil {
			p.dropQuote(out, models.ErrMissingLine)
			continue
		}
		hitPct := oddsmath.HitPercent(out.ImpliedProbability)
		grade := grading.MarketGrade(out.ImpliedProbability)
		if !grading.IsSurfaced(grade) {
			continue
		}

		bets = append(bets, models.Bet{
			ID:             fmt.Sprintf("%s-total-%s-%s", game.ID, strings.ToLower(out.Outcome), formatPoint(*out.Point)),
			Team1:          game.AwayTeam,
			Team2:          game.HomeTeam,
			Type:           models.BetTypeTotal,
			Line:           fmt.Sprintf("%s %s", out.Outcome, formatPoint(*out.Point)),
			Odds:           out.Price,
			Grade:          grade,
			HitProbability: hitPct,
			Edge:           grading.MarketEdge(out.ImpliedProbability),
			GameTime:       gameTime,
			Venue:          "TBD",
			KeyFactors: []models.KeyFactor{
				{Factor: "Market Price", Weight: 20, Score: hitPct},
				{Factor: "Pace/Tempo", Weight: tableWeight(p.teamWeights, "pace"), Score: 60},
				{Factor: "Weather", Weight: tableWeight(p.teamWeights, "weather"), Score: 80},
				{Factor: "Recent Form", Weight: tableWeight(p.teamWeights, "form"), Score: 60},
			},
			Analysis:   "Market-implied selection (aggregated across books)",
			Motivation: "Regular season",
			Weather:    "Unknown",
			Updated:    "just now",
			Conference: "NCAAF",
		})
	}

	return bets
}

// formatPoint renders a line value without trailing zeros.
func formatPoint(point float64) string {
	return strconv.FormatFloat(point, 'f', -1, 64)
}

// formatSignedPoint renders a spread line with its sign, "+3.5" or "-3.5".
func formatSignedPoint(point float64) string {
	if point > 0 {
		return "+" + formatPoint(point)
	}
	return formatPoint(point)
}
