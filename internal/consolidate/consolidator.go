// Package consolidate reduces many bookmaker quotes per outcome to one
// representative quote. The grader and the dashboard both operate on a
// single number per (event, market, outcome), so within each group the
// quote with the highest implied probability wins: the shortest, most
// favorable price actually on offer.
package consolidate

import (
	"strings"

	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsmath"
)

type groupKey struct {
	marketKey   string
	outcome     string
	description string
}

// Consolidate groups quotes by (market, outcome name) and keeps the quote
// with the highest implied probability per group. On player-prop markets
// the description (player name) is part of the outcome's identity, so it
// joins the group key. Ties keep the first quote encountered, so output is
// deterministic in input order. Quotes whose price yields no probability
// are dropped.
func Consolidate(quotes []models.Quote) []models.ConsolidatedOutcome {
	best := make(map[groupKey]int)
	out := make([]models.ConsolidatedOutcome, 0, len(quotes))

	for _, q := range quotes {
		prob, err := oddsmath.ImpliedProbability(q.Price)
		if err != nil {
			continue
		}
		key := groupKey{marketKey: q.MarketKey, outcome: q.Outcome, description: q.Description}
		if idx, seen := best[key]; seen {
			if prob > out[idx].ImpliedProbability {
				out[idx] = models.ConsolidatedOutcome{Quote: q, ImpliedProbability: prob}
			}
			continue
		}
		best[key] = len(out)
		out = append(out, models.ConsolidatedOutcome{Quote: q, ImpliedProbability: prob})
	}

	return out
}

// ConsolidateTotals consolidates totals quotes and retains only outcomes
// explicitly named over or under; anything else is discarded.
func ConsolidateTotals(quotes []models.Quote) []models.ConsolidatedOutcome {
	consolidated := Consolidate(quotes)
	out := consolidated[:0]
	for _, c := range consolidated {
		name := strings.ToLower(c.Outcome)
		if name == "over" || name == "under" {
			out = append(out, c)
		}
	}
	return out
}

// ResolveSpreadTeam infers the team a spread outcome refers to by exact
// match against the event's home and away names. If neither matches, the
// raw outcome text stands in as the label and matched is false.
func ResolveSpreadTeam(outcome, home, away string) (team string, matched bool) {
	if outcome == home || outcome == away {
		return outcome, true
	}
	return outcome, false
}
