// Package grading converts probabilities and factor scores into letter
// grades and edges. Two policies coexist on purpose: the market policy
// grades live consolidated quotes on implied probability alone, while the
// weighted policy grades factor-model output on joint probability and edge
// thresholds. Their tables are not equivalent and must not be merged.
package grading

import (
	"github.com/shopspring/decimal"
)

// Market policy grade ladder, highest first.
const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeBPlus = "B+"
	GradeB     = "B"
	GradeCPlus = "C+"
	GradeC     = "C"
)

// surfacedGrades are the market-policy grades shown to bettors. C is
// graded internally but filtered from all output.
var surfacedGrades = map[string]bool{
	GradeAPlus: true,
	GradeA:     true,
	GradeBPlus: true,
	GradeB:     true,
	GradeCPlus: true,
}

// MarketGrade maps a market-implied probability to the six-grade ladder.
func MarketGrade(probability float64) string {
	switch {
	case probability >= 0.70:
		return GradeAPlus
	case probability >= 0.62:
		return GradeA
	case probability >= 0.58:
		return GradeBPlus
	case probability >= 0.54:
		return GradeB
	case probability >= 0.51:
		return GradeCPlus
	default:
		return GradeC
	}
}

// IsSurfaced reports whether a market-policy grade is shown to bettors.
func IsSurfaced(grade string) bool {
	return surfacedGrades[grade]
}

// MarketEdge derives the market-policy edge proxy from the implied
// probability: how far it exceeds a coin flip on the 0-100 scale, rounded
// to one decimal and floored at zero.
func MarketEdge(probability float64) float64 {
	edge := decimal.NewFromFloat(probability * 100).Sub(decimal.NewFromInt(50)).Round(1)
	if edge.IsNegative() {
		return 0
	}
	return edge.InexactFloat64()
}
