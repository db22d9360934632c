package trade

import (
	"math"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// topPickValue anchors the chart: the first overall pick is worth 3000 points,
// with value decaying geometrically so early picks are worth disproportionately
// more than late ones.
const (
	topPickValue = 3000.0
	pickDecay    = 0.977
)

// futureRoundValues assigns a flat value per future-year round slot. The exact
// future pick position is unknown at trade time, so the tier alone prices it,
// discounted below the mid-round value of the same current-year round.
var futureRoundValues = []float64{1000, 480, 230, 110, 55, 25, 12}

// PickValue prices a concrete current-year pick by its overall number.
// Monotonically decreasing in pick number.
func PickValue(number int) float64 {
	if number < 1 {
		return 0
	}
	return math.Round(topPickValue * math.Pow(pickDecay, float64(number-1)))
}

// FutureRoundValue prices an abstract future-year round slot.
func FutureRoundValue(round int) float64 {
	if round < 1 || round > len(futureRoundValues) {
		return 0
	}
	return futureRoundValues[round-1]
}

// AssetValue prices a single tradeable asset.
func AssetValue(a models.PickAsset) float64 {
	if a.Future() {
		return FutureRoundValue(a.FutureRound)
	}
	return PickValue(a.PickNumber)
}

// TotalValue sums a set of assets.
func TotalValue(assets []models.PickAsset) float64 {
	total := 0.0
	for _, a := range assets {
		total += AssetValue(a)
	}
	return total
}
