package models

import (
	"github.com/google/uuid"
)

// DraftPick represents a single slot in the draft order.
type DraftPick struct {
	Number   int        `json:"number"` // overall pick number, 1-based, unique
	Round    int        `json:"round"`
	TeamID   uuid.UUID  `json:"team_id"`             // owning team; changes under trade
	PlayerID *uuid.UUID `json:"player_id,omitempty"` // nil until picked
	Traded   bool       `json:"traded,omitempty"`
	MadeBy   *uuid.UUID `json:"made_by,omitempty"` // participant who made the pick; nil means CPU
}

// Filled reports whether a prospect has been assigned to this slot.
func (p DraftPick) Filled() bool {
	return p.PlayerID != nil
}
