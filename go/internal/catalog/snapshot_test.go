package catalog

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

func TestSnapshotLookupsAndOrder(t *testing.T) {
	prospects := []models.Prospect{
		{ID: uuid.New(), Name: "QB One", Position: models.PositionQB, Rank: 1, Year: 2026},
		{ID: uuid.New(), Name: "RB One", Position: models.PositionRB, Rank: 2, Year: 2026},
	}
	teams := []models.Team{
		{ID: uuid.New(), Name: "First", Needs: []models.Position{models.PositionQB}},
		{ID: uuid.New(), Name: "Second", Needs: []models.Position{models.PositionRB}},
	}
	snap := NewSnapshot(prospects, teams)

	if p, ok := snap.Prospect(prospects[1].ID); !ok || p.Name != "RB One" {
		t.Fatalf("Prospect lookup = %v, %v", p, ok)
	}
	if _, ok := snap.Prospect(uuid.New()); ok {
		t.Fatal("unknown prospect id resolved")
	}

	order := snap.Order()
	if len(order) != 2 || order[0] != teams[0].ID || order[1] != teams[1].ID {
		t.Fatal("Order() does not follow team list order")
	}

	if needs := snap.TeamNeeds(teams[1].ID); len(needs) != 1 || needs[0] != models.PositionRB {
		t.Fatalf("TeamNeeds = %v", needs)
	}
	if needs := snap.TeamNeeds(uuid.New()); needs != nil {
		t.Fatalf("TeamNeeds for unknown team = %v, want nil", needs)
	}
}

func TestPositionRankCountsWithinPosition(t *testing.T) {
	mk := func(rank int, pos models.Position) models.Prospect {
		return models.Prospect{ID: uuid.New(), Position: pos, Rank: rank, Year: 2026}
	}
	qb1 := mk(1, models.PositionQB)
	rb1 := mk(2, models.PositionRB)
	qb2 := mk(3, models.PositionQB)
	rb2 := mk(4, models.PositionRB)
	snap := NewSnapshot([]models.Prospect{qb1, rb1, qb2, rb2}, nil)

	tests := []struct {
		p    models.Prospect
		want int
	}{
		{qb1, 1}, {qb2, 2}, {rb1, 1}, {rb2, 2},
	}
	for _, tt := range tests {
		if got := snap.PositionRank(tt.p); got != tt.want {
			t.Errorf("PositionRank(rank %d %s) = %d, want %d", tt.p.Rank, tt.p.Position, got, tt.want)
		}
	}
}
