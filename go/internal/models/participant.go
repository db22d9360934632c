package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxParticipants is the hard cap per room.
const MaxParticipants = 4

// Participant is one member of an online room.
type Participant struct {
	ID          uuid.UUID  `json:"id"`
	RoomID      uuid.UUID  `json:"room_id"`
	DisplayName string     `json:"display_name"`
	TeamID      *uuid.UUID `json:"team_id,omitempty"` // claimed team, unique per room
	ColorSlot   int        `json:"color_slot"`        // 1..4, lowest unused at join
	IsHost      bool       `json:"is_host"`
	Connected   bool       `json:"connected"`
	JoinedAt    time.Time  `json:"joined_at"`
}
