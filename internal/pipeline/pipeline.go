// Package pipeline runs one full refresh: fetch raw odds, consolidate
// quotes, grade outcomes, and assemble the served bet lists.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/grading"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
)

// OddsFetcher is the upstream surface the pipeline consumes.
type OddsFetcher interface {
	ListEvents(ctx context.Context, sport string) ([]models.Event, error)
	GetOdds(ctx context.Context, sport string, markets []string) ([]oddsapi.EventOdds, error)
	GetEventOdds(ctx context.Context, sport, eventID string, markets []string) (*oddsapi.EventOdds, error)
}

// Config holds pipeline configuration.
type Config struct {
	TeamSport         string
	PropSport         string
	TeamMarkets       []string
	PropMarkets       []string
	MaxPropEvents     int
	HideStartedBuffer time.Duration
	Clock             func() time.Time // nil means time.Now
}

// DefaultConfig returns the shipped sports and markets.
func DefaultConfig() Config {
	return Config{
		TeamSport:   "americanfootball_ncaaf",
		PropSport:   "americanfootball_nfl",
		TeamMarkets: []string{"spreads", "totals"},
		PropMarkets: []string{
			"player_pass_yds",
			"player_rec_yds",
			"player_rush_yds",
			"player_receptions",
			"player_rush_att",
			"player_pass_tds",
			"player_anytime_td",
		},
		MaxPropEvents: 12,
	}
}

// Pipeline turns provider odds into graded bet lists.
type Pipeline struct {
	client      OddsFetcher
	cfg         Config
	teamWeights grading.WeightTable
	propWeights grading.WeightTable
	logger      *logrus.Logger
	now         func() time.Time
}

// New creates a pipeline over an odds fetcher.
func New(client OddsFetcher, cfg Config, logger *logrus.Logger) *Pipeline {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		client:      client,
		cfg:         cfg,
		teamWeights: grading.DefaultTeamGameWeights(),
		propWeights: grading.DefaultPlayerPropWeights(),
		logger:      logger,
		now:         now,
	}
}

// ListCollegeGames returns raw event summaries for the diagnostic endpoint,
// bypassing consolidation and grading entirely.
func (p *Pipeline) ListCollegeGames(ctx context.Context) (*models.EventSummaryList, error) {
	odds, err := p.client.GetOdds(ctx, p.cfg.TeamSport, p.cfg.TeamMarkets)
	if err != nil {
		return nil, err
	}

	games := make([]models.EventSummary, 0, len(odds))
	for _, game := range odds {
		games = append(games, models.EventSummary{
			ID:           game.ID,
			SportKey:     game.SportKey,
			CommenceTime: game.CommenceTime,
			HomeTeam:     game.HomeTeam,
			AwayTeam:     game.AwayTeam,
			Bookmakers:   len(game.Bookmakers),
		})
	}
	return &models.EventSummaryList{Count: len(games), Games: games}, nil
}

// dropQuote records a consolidated quote that cannot be graded.
func (p *Pipeline) dropQuote(out models.ConsolidatedOutcome, reason error) {
	metrics.QuotesDroppedTotal.Inc()
	if p.logger != nil {
		p.logger.WithError(reason).WithFields(logrus.Fields{
			"market":  out.MarketKey,
			"outcome": out.Outcome,
		}).Debug("Dropped malformed quote")
	}
}

// started reports whether an event start time has passed now plus the
// hide-started buffer.
func (p *Pipeline) started(commence time.Time) bool {
	return !commence.After(p.now().Add(p.cfg.HideStartedBuffer))
}

// tableWeight exposes a weight table entry as the 0-100 integer shown in a
// bet's factor breakdown.
func tableWeight(table grading.WeightTable, factor string) int {
	return int(table.Weights[factor]*100 + 0.5)
}
