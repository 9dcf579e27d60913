package grading

import (
	"math"
)

const (
	// Probability clamp bounds for the weighted model.
	minModelProbability = 0.05
	maxModelProbability = 0.95

	// Factor scores run 0-100; a factor without a reading contributes a
	// neutral 50.
	neutralFactorScore = 50.0
)

// WeightedResult is the output of the weighted-factor policy for one
// selection.
type WeightedResult struct {
	Score       int     // rounded weighted sum, 0-100
	Probability float64 // clamped model probability
	Edge        float64 // probability minus market-implied probability
	Grade       string
}

// WeightedScore computes the weighted sum of factor scores against a table.
// Missing factors default to a neutral 50; readings are clamped to [0,100].
func WeightedScore(factors map[string]float64, table WeightTable) float64 {
	total := 0.0
	for name, weight := range table.Weights {
		score, ok := factors[name]
		if !ok {
			score = neutralFactorScore
		}
		score = math.Max(0, math.Min(100, score))
		total += score * weight
	}
	return total
}

// AnalyzeWeighted runs the weighted-factor policy: weighted sum → clamped
// probability → edge against the market → 11-level grade.
func AnalyzeWeighted(factors map[string]float64, marketProbability float64, table WeightTable) WeightedResult {
	score := WeightedScore(factors, table)
	prob := math.Max(minModelProbability, math.Min(maxModelProbability, score/100.0))
	edge := prob - marketProbability
	return WeightedResult{
		Score:       int(math.Round(score)),
		Probability: prob,
		Edge:        edge,
		Grade:       WeightedGrade(prob, edge),
	}
}

// WeightedGrade maps a model probability and edge through the 11-level
// joint-threshold ladder. Each step down relaxes both thresholds in
// lockstep; anything under p 0.45 is an F.
func WeightedGrade(probability, edge float64) string {
	switch {
	case probability >= 0.95 && edge >= 0.08:
		return "A+"
	case probability >= 0.90 && edge >= 0.06:
		return "A"
	case probability >= 0.85 && edge >= 0.05:
		return "A-"
	case probability >= 0.80 && edge >= 0.04:
		return "B+"
	case probability >= 0.75 && edge >= 0.03:
		return "B"
	case probability >= 0.70 && edge >= 0.025:
		return "B-"
	case probability >= 0.65 && edge >= 0.02:
		return "C+"
	case probability >= 0.60 && edge >= 0.015:
		return "C"
	case probability >= 0.55 && edge >= 0.01:
		return "C-"
	case probability >= 0.50 && edge >= 0.005:
		return "D+"
	case probability >= 0.45:
		return "D"
	default:
		return "F"
	}
}
