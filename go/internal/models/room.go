package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle of an online draft room.
type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "LOBBY"
	RoomStatusDrafting RoomStatus = "DRAFTING"
	RoomStatusComplete RoomStatus = "COMPLETE"
)

// Room is a persisted online draft room, addressed by its invite code.
// It survives reconnects; there is no explicit deletion path.
type Room struct {
	ID         uuid.UUID  `json:"id"`
	InviteCode string     `json:"invite_code"` // 6 chars, uppercase, unambiguous alphabet
	Status     RoomStatus `json:"status"`
	HostID     uuid.UUID  `json:"host_id"`
	DraftState []byte     `json:"draft_state,omitempty"` // serialized DraftState snapshot, nil before start
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
