package autopick

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

func testStrategy(seed int64) *NeedsWeighted {
	return &NeedsWeighted{rng: rand.New(rand.NewSource(seed))}
}

func stateWithProspects(prospects []models.Prospect, picks []models.DraftPick) *models.DraftState {
	return &models.DraftState{
		Prospects: prospects,
		Picks:     picks,
		Year:      2026,
		Rounds:    1,
	}
}

func prospect(rank int, pos models.Position) models.Prospect {
	return models.Prospect{ID: uuid.New(), Name: "P", Position: pos, Rank: rank, Year: 2026}
}

func TestSelectPickPrefersNeeds(t *testing.T) {
	teamID := uuid.New()
	prospects := []models.Prospect{
		prospect(1, models.PositionQB),
		prospect(2, models.PositionRB),
		prospect(3, models.PositionRB),
		prospect(4, models.PositionRB),
		prospect(5, models.PositionRB),
		prospect(6, models.PositionRB),
	}
	state := stateWithProspects(prospects, []models.DraftPick{{Number: 1, Round: 1, TeamID: teamID}})
	strat := testStrategy(1)

	for i := 0; i < 50; i++ {
		picked, ok := strat.SelectPick(state, teamID, []models.Position{models.PositionRB})
		if !ok {
			t.Fatal("SelectPick() found no prospect")
		}
		if picked.Position != models.PositionRB {
			t.Fatalf("picked %s with an open RB need", picked.Position)
		}
	}
}

func TestSelectPickFallsBackToBestAvailable(t *testing.T) {
	teamID := uuid.New()
	prospects := []models.Prospect{
		prospect(1, models.PositionQB),
		prospect(2, models.PositionWR),
		prospect(3, models.PositionCB),
		prospect(4, models.PositionTE),
		prospect(5, models.PositionS),
	}
	state := stateWithProspects(prospects, []models.DraftPick{{Number: 1, Round: 1, TeamID: teamID}})
	strat := testStrategy(2)

	// No K available, so the need is unmatchable and the pick falls back to
	// the top of the board.
	for i := 0; i < 50; i++ {
		picked, ok := strat.SelectPick(state, teamID, []models.Position{models.PositionK})
		if !ok {
			t.Fatal("SelectPick() found no prospect")
		}
		if picked.Rank > len(candidateWeights) {
			t.Fatalf("fallback picked rank %d, outside the top %d", picked.Rank, len(candidateWeights))
		}
	}
}

func TestSelectPickSkipsDraftedAndOtherYears(t *testing.T) {
	teamID := uuid.New()
	best := prospect(1, models.PositionQB)
	wrongYear := models.Prospect{ID: uuid.New(), Position: models.PositionQB, Rank: 2, Year: 2027}
	only := prospect(3, models.PositionWR)

	bestID := best.ID
	state := stateWithProspects(
		[]models.Prospect{best, wrongYear, only},
		[]models.DraftPick{
			{Number: 1, Round: 1, TeamID: uuid.New(), PlayerID: &bestID},
			{Number: 2, Round: 1, TeamID: teamID},
		},
	)
	strat := testStrategy(3)

	picked, ok := strat.SelectPick(state, teamID, nil)
	if !ok {
		t.Fatal("SelectPick() found no prospect")
	}
	if picked.ID != only.ID {
		t.Fatalf("picked %v, want the only eligible prospect", picked)
	}
}

func TestSelectPickExhaustedBoard(t *testing.T) {
	teamID := uuid.New()
	p := prospect(1, models.PositionQB)
	id := p.ID
	state := stateWithProspects(
		[]models.Prospect{p},
		[]models.DraftPick{{Number: 1, Round: 1, TeamID: teamID, PlayerID: &id}},
	)

	if _, ok := testStrategy(4).SelectPick(state, teamID, nil); ok {
		t.Fatal("SelectPick() returned a prospect from an empty board")
	}
}

func TestRemainingNeedsConsumedByFills(t *testing.T) {
	teamID := uuid.New()
	rb1 := prospect(1, models.PositionRB)
	rb1ID := rb1.ID
	state := stateWithProspects(
		[]models.Prospect{rb1, prospect(2, models.PositionRB), prospect(3, models.PositionQB)},
		[]models.DraftPick{
			{Number: 1, Round: 1, TeamID: teamID, PlayerID: &rb1ID},
			{Number: 2, Round: 1, TeamID: teamID},
		},
	)

	tests := []struct {
		name  string
		needs []models.Position
		want  map[models.Position]int
	}{
		{"single need filled", []models.Position{models.PositionRB}, map[models.Position]int{}},
		{"double need survives one fill", []models.Position{models.PositionRB, models.PositionRB}, map[models.Position]int{models.PositionRB: 1}},
		{"unrelated need untouched", []models.Position{models.PositionQB}, map[models.Position]int{models.PositionQB: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remainingNeeds(state, teamID, tt.needs)
			if len(got) != len(tt.want) {
				t.Fatalf("remainingNeeds = %v, want %v", got, tt.want)
			}
			for pos, n := range tt.want {
				if got[pos] != n {
					t.Errorf("remaining[%s] = %d, want %d", pos, got[pos], n)
				}
			}
		})
	}
}
