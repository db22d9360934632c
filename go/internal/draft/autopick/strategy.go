package autopick

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// candidateWeights biases selection toward the best-ranked eligible prospect
// without ever guaranteeing the literal best player.
var candidateWeights = []int{50, 30, 20, 10}

// Strategy selects a prospect for a CPU-controlled turn. Implementations must
// be side-effect free; the caller applies the result and owns the turn delay.
type Strategy interface {
	SelectPick(state *models.DraftState, teamID uuid.UUID, needs []models.Position) (models.Prospect, bool)
}

// NeedsWeighted drafts for positional need first and falls back to best player
// available, choosing among the top candidates by weighted random draw.
type NeedsWeighted struct {
	rng *rand.Rand
}

// NewNeedsWeighted constructs a NeedsWeighted strategy with its own seed.
func NewNeedsWeighted() *NeedsWeighted {
	src := rand.NewSource(time.Now().UnixNano())
	return &NeedsWeighted{rng: rand.New(src)}
}

// SelectPick implements Strategy. The second return is false when no prospect
// remains to draft.
func (s *NeedsWeighted) SelectPick(state *models.DraftState, teamID uuid.UUID, needs []models.Position) (models.Prospect, bool) {
	available := availableProspects(state)
	if len(available) == 0 {
		return models.Prospect{}, false
	}

	remaining := remainingNeeds(state, teamID, needs)

	candidates := make([]models.Prospect, 0, len(available))
	for _, p := range available {
		if remaining[p.Position] > 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		// Best player available: every need is covered or unmatchable.
		candidates = available
	}

	if len(candidates) > len(candidateWeights) {
		candidates = candidates[:len(candidateWeights)]
	}
	idx := Choose(s.rng, candidateWeights[:len(candidates)])
	if idx < 0 {
		return models.Prospect{}, false
	}
	return candidates[idx], true
}

// availableProspects returns undrafted prospects for the draft's target year,
// sorted ascending by overall rank.
func availableProspects(state *models.DraftState) []models.Prospect {
	taken := make(map[uuid.UUID]bool, len(state.Picks))
	for i := range state.Picks {
		if p := state.Picks[i].PlayerID; p != nil {
			taken[*p] = true
		}
	}
	out := make([]models.Prospect, 0, len(state.Prospects))
	for _, p := range state.Prospects {
		if p.Year == state.Year && !taken[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// remainingNeeds subtracts already-drafted positions from the team's need
// list. Each listed need is consumed at most once per drafted player at that
// position; a need listed twice survives one fill.
func remainingNeeds(state *models.DraftState, teamID uuid.UUID, needs []models.Position) map[models.Position]int {
	byID := make(map[uuid.UUID]models.Position, len(state.Prospects))
	for _, p := range state.Prospects {
		byID[p.ID] = p.Position
	}

	filled := make(map[models.Position]int)
	for i := range state.Picks {
		pick := state.Picks[i]
		if pick.TeamID != teamID || pick.PlayerID == nil {
			continue
		}
		if pos, ok := byID[*pick.PlayerID]; ok {
			filled[pos]++
		}
	}

	remaining := make(map[models.Position]int, len(needs))
	for _, need := range needs {
		if filled[need] > 0 {
			filled[need]--
			continue
		}
		remaining[need]++
	}
	return remaining
}
