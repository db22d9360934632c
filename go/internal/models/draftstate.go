package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftSpeed governs how long the CPU waits before resolving an automated turn.
type DraftSpeed string

const (
	SpeedFast   DraftSpeed = "FAST"
	SpeedMedium DraftSpeed = "MEDIUM"
	SpeedSlow   DraftSpeed = "SLOW"
)

// ParseSpeed maps a wire value to a DraftSpeed, defaulting to medium.
func ParseSpeed(s string) DraftSpeed {
	switch DraftSpeed(s) {
	case SpeedFast, SpeedMedium, SpeedSlow:
		return DraftSpeed(s)
	default:
		return SpeedMedium
	}
}

// Delay returns the artificial pause before a CPU turn resolves.
// Presentation pacing only.
func (s DraftSpeed) Delay() time.Duration {
	switch s {
	case SpeedFast:
		return 500 * time.Millisecond
	case SpeedSlow:
		return 4 * time.Second
	default:
		return 2 * time.Second
	}
}

// DraftState is the per-client record of draft progress. It is created fresh
// when a draft starts and discarded on restart or leave.
type DraftState struct {
	CurrentPickIndex int                   `json:"current_pick_index"` // cursor into the in-scope pick view
	Picks            []DraftPick           `json:"picks"`              // full order, all rounds
	UserTeams        map[uuid.UUID]bool    `json:"user_teams"`         // team ids under human control
	Started          bool                  `json:"started"`
	Prospects        []Prospect            `json:"prospects"` // catalog snapshot for this draft
	Year             int                   `json:"year"`
	Rounds           int                   `json:"rounds"` // rounds to simulate; bounds the in-scope view
	Speed            DraftSpeed            `json:"speed"`
	FutureAssets     map[uuid.UUID][]int   `json:"future_assets,omitempty"` // team id -> future-year rounds held (online)
}
