package catalog

import (
	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// Snapshot is the prospect/team catalog for one session. It is loaded once,
// handed to the sequencer at draft start, and never mutated in place.
type Snapshot struct {
	Prospects []models.Prospect // ordered by overall rank ascending
	Teams     []models.Team     // ordered by round-one pick position

	prospectsByID map[uuid.UUID]models.Prospect
	teamsByID     map[uuid.UUID]models.Team
}

// NewSnapshot indexes the catalog lists. The slices are owned by the snapshot
// from here on.
func NewSnapshot(prospects []models.Prospect, teams []models.Team) *Snapshot {
	s := &Snapshot{
		Prospects:     prospects,
		Teams:         teams,
		prospectsByID: make(map[uuid.UUID]models.Prospect, len(prospects)),
		teamsByID:     make(map[uuid.UUID]models.Team, len(teams)),
	}
	for _, p := range prospects {
		s.prospectsByID[p.ID] = p
	}
	for _, t := range teams {
		s.teamsByID[t.ID] = t
	}
	return s
}

func (s *Snapshot) Prospect(id uuid.UUID) (models.Prospect, bool) {
	p, ok := s.prospectsByID[id]
	return p, ok
}

func (s *Snapshot) Team(id uuid.UUID) (models.Team, bool) {
	t, ok := s.teamsByID[id]
	return t, ok
}

// TeamNeeds returns the need list for a team, or nil for an unknown id.
func (s *Snapshot) TeamNeeds(id uuid.UUID) []models.Position {
	if t, ok := s.teamsByID[id]; ok {
		return t.Needs
	}
	return nil
}

// Order returns team ids in round-one pick order.
func (s *Snapshot) Order() []uuid.UUID {
	order := make([]uuid.UUID, len(s.Teams))
	for i, t := range s.Teams {
		order[i] = t.ID
	}
	return order
}

// PositionRank derives a prospect's rank among prospects sharing their
// position. Computed, never stored.
func (s *Snapshot) PositionRank(p models.Prospect) int {
	rank := 1
	for _, other := range s.Prospects {
		if other.Position == p.Position && other.Rank < p.Rank {
			rank++
		}
	}
	return rank
}
