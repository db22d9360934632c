package models

import (
	"github.com/google/uuid"
)

// Position is a prospect's role on the field.
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionFB Position = "FB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
	PositionOT Position = "OT"
	PositionOG Position = "OG"
	PositionC  Position = "C"
	PositionDE Position = "DE"
	PositionDT Position = "DT"
	PositionLB Position = "LB"
	PositionCB Position = "CB"
	PositionS  Position = "S"
	PositionK  Position = "K"
)

// Prospect is a draftable player. Immutable once loaded from the catalog.
type Prospect struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position Position  `json:"position"`
	Rank     int       `json:"rank"` // overall board rank, 1 = best, unique
	Year     int       `json:"year"` // draft class year
}
