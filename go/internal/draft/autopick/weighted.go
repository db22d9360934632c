package autopick

import (
	"math/rand"
)

// Cumulative converts a weight table into running totals.
func Cumulative(weights []int) []int {
	out := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		total += w
		out[i] = total
	}
	return out
}

// Choose draws a uniform value in [0, totalWeight) and returns the index of
// the first entry whose cumulative weight is >= the draw. Ties resolve to the
// earlier entry. Returns -1 for an empty or zero-weight table.
func Choose(rng *rand.Rand, weights []int) int {
	cum := Cumulative(weights)
	if len(cum) == 0 || cum[len(cum)-1] <= 0 {
		return -1
	}
	draw := rng.Intn(cum[len(cum)-1])
	for i, c := range cum {
		if c >= draw {
			return i
		}
	}
	return len(cum) - 1
}
