package sequencer

import (
	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// TotalRounds is how deep the full pick order runs regardless of how many
// rounds a given draft simulates.
const TotalRounds = 7

// InScopePicks filters the full order down to the rounds being simulated.
func InScopePicks(state *models.DraftState) []models.DraftPick {
	scope := make([]models.DraftPick, 0, len(state.Picks))
	for _, p := range state.Picks {
		if p.Round <= state.Rounds {
			scope = append(scope, p)
		}
	}
	return scope
}

// BuildPicks creates the full pick order for a draft: one pick per team per
// round, numbered 1..rounds*len(order).
func BuildPicks(order []uuid.UUID, rounds int) []models.DraftPick {
	picks := make([]models.DraftPick, 0, rounds*len(order))
	n := 1
	for r := 1; r <= rounds; r++ {
		for _, teamID := range order {
			picks = append(picks, models.DraftPick{
				Number: n,
				Round:  r,
				TeamID: teamID,
			})
			n++
		}
	}
	return picks
}

// Config carries everything needed to create a fresh draft state.
type Config struct {
	Prospects []models.Prospect
	Year      int
	Order     []uuid.UUID // team ids in round-one pick order
	Rounds    int         // rounds to simulate
	Speed     models.DraftSpeed
	UserTeams []uuid.UUID
	Online    bool
}

// NewDraftState builds a DraftState from a catalog snapshot and lobby config.
// The prospect slice is treated as immutably owned from here on.
func NewDraftState(cfg Config) *models.DraftState {
	users := make(map[uuid.UUID]bool, len(cfg.UserTeams))
	for _, id := range cfg.UserTeams {
		users[id] = true
	}
	state := &models.DraftState{
		Picks:     BuildPicks(cfg.Order, TotalRounds),
		UserTeams: users,
		Prospects: cfg.Prospects,
		Year:      cfg.Year,
		Rounds:    cfg.Rounds,
		Speed:     cfg.Speed,
	}
	if cfg.Online {
		state.FutureAssets = make(map[uuid.UUID][]int, len(cfg.Order))
		for _, teamID := range cfg.Order {
			rounds := make([]int, 0, TotalRounds)
			for r := 1; r <= TotalRounds; r++ {
				rounds = append(rounds, r)
			}
			state.FutureAssets[teamID] = rounds
		}
	}
	return state
}
