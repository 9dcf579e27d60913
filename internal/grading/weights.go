package grading

import (
	"fmt"
	"math"
	"sort"
)

// Domain identifies which weight table applies to a selection.
type Domain string

const (
	DomainPlayerProp Domain = "nfl-player-props"
	DomainTeamGame   Domain = "cfb-team-game"
)

const weightSumTolerance = 1e-9

// WeightTable is versioned business configuration mapping factor names to
// weights. Weights within a table sum to 1.
type WeightTable struct {
	Domain  Domain
	Version string
	Weights map[string]float64
}

// NewWeightTable builds a validated weight table.
func NewWeightTable(domain Domain, version string, weights map[string]float64) (WeightTable, error) {
	t := WeightTable{Domain: domain, Version: version, Weights: weights}
	if err := t.Validate(); err != nil {
		return WeightTable{}, err
	}
	return t, nil
}

// Validate checks that the table is non-empty, all weights are positive and
// the weights sum to 1.
func (t WeightTable) Validate() error {
	if len(t.Weights) == 0 {
		return fmt.Errorf("weight table %s/%s has no factors", t.Domain, t.Version)
	}
	sum := 0.0
	for name, w := range t.Weights {
		if w <= 0 {
			return fmt.Errorf("weight table %s/%s: factor %q has non-positive weight %v", t.Domain, t.Version, name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weight table %s/%s: weights sum to %v, want 1", t.Domain, t.Version, sum)
	}
	return nil
}

// Factors returns the factor names in deterministic order.
func (t WeightTable) Factors() []string {
	names := make([]string, 0, len(t.Weights))
	for name := range t.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPlayerPropWeights returns the shipped NFL player-prop table.
func DefaultPlayerPropWeights() WeightTable {
	return WeightTable{
		Domain:  DomainPlayerProp,
		Version: "2024.1",
		Weights: map[string]float64{
			"recentPerformance": 0.16,
			"opponentDefense":   0.13,
			"injuries":          0.13,
			"weather":           0.11,
			"usageRate":         0.09,
			"gameScript":        0.07,
			"homeAway":          0.05,
			"history":           0.05,
			"coaching":          0.04,
			"rest":              0.03,
			"advancedMetrics":   0.02,
			"lineMovement":      0.02,
			"pace":              0.02,
			"redZone":           0.02,
			"matchups":          0.02,
			"motivation":        0.01,
			"officials":         0.01,
			"surface":           0.01,
			"possession":        0.01,
			"public":            0.01,
		},
	}
}

// DefaultTeamGameWeights returns the shipped CFB team-game table.
func DefaultTeamGameWeights() WeightTable {
	return WeightTable{
		Domain:  DomainTeamGame,
		Version: "2024.1",
		Weights: map[string]float64{
			"epa":          0.19,
			"sos":          0.14,
			"homeField":    0.11,
			"weather":      0.10,
			"injuries":     0.07,
			"coaching":     0.06,
			"motivation":   0.05,
			"form":         0.05,
			"pace":         0.04,
			"turnovers":    0.03,
			"specialTeams": 0.03,
			"travel":       0.02,
			"conference":   0.02,
			"market":       0.02,
			"other":        0.07,
		},
	}
}
