package grade

import (
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// scale is the 15-step grade ladder, worst first.
var scale = []string{
	"F-", "F", "F+",
	"D-", "D", "D+",
	"C-", "C", "C+",
	"B-", "B", "B+",
	"A-", "A", "A+",
}

// band maps a value diff to a rung on the ladder. Thresholds descend in
// roughly ten-point steps; a diff of zero (drafted exactly at rank) lands on B.
type band struct {
	min  int // inclusive lower bound on diff
	rung int
}

var bands = []band{
	{40, 14},  // A+
	{25, 13},  // A
	{15, 12},  // A-
	{5, 11},   // B+
	{-5, 10},  // B
	{-15, 9},  // B-
	{-25, 8},  // C+
	{-35, 7},  // C
	{-45, 6},  // C-
	{-55, 5},  // D+
	{-65, 4},  // D
	{-75, 3},  // D-
	{-85, 2},  // F+
	{-99, 1},  // F; anything at or below -100 bottoms out
}

// needBoost lifts a need-filling pick one full letter family, e.g. B to A-.
const needBoost = 2

// Pick grades a completed pick. diff = pickNumber - prospectRank, so positive
// means the prospect fell past their rank (good value). Deterministic in
// (pickNumber, rank, needs-membership) only; it does not care whether the need
// was already filled by an earlier pick.
func Pick(pickNumber int, prospect models.Prospect, needs []models.Position) string {
	diff := pickNumber - prospect.Rank

	rung := 0
	for _, b := range bands {
		if diff >= b.min {
			rung = b.rung
			break
		}
	}

	if matchesNeed(prospect.Position, needs) {
		rung += needBoost
		if rung > len(scale)-1 {
			rung = len(scale) - 1
		}
	}
	return scale[rung]
}

func matchesNeed(pos models.Position, needs []models.Position) bool {
	for _, n := range needs {
		if n == pos {
			return true
		}
	}
	return false
}
