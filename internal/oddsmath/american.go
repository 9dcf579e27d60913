// Package oddsmath provides conversions between American odds prices and
// implied probabilities.
package oddsmath

import (
	"math"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// ImpliedProbability converts an American odds price to the probability
// consistent with it under zero-margin assumptions.
// +100 → 0.50, -110 → ≈0.5238, +150 → 0.40
func ImpliedProbability(price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, models.ErrNonFinitePrice
	}
	if price == 0 {
		return 0, models.ErrZeroPrice
	}

	if price > 0 {
		return 100.0 / (price + 100.0), nil
	}
	return -price / (-price + 100.0), nil
}

// HitPercent expresses a probability as the 0-100 integer surfaced to
// bettors.
func HitPercent(probability float64) int {
	return int(math.Round(probability * 100.0))
}
