package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// EventType names a broadcast message on a room channel.
type EventType string

const (
	EventTypeStartDraft  EventType = "START_DRAFT"
	EventTypePickMade    EventType = "PICK_MADE"
	EventTypeHostChanged EventType = "HOST_CHANGED"
)

// RoomEvent is the envelope for all room broadcast messages.
type RoomEvent struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"room_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// StartDraftPayload carries the full initial draft state, host to all, sent
// exactly once when the room leaves the lobby.
type StartDraftPayload struct {
	DraftState *models.DraftState `json:"draft_state"`
}

// PickMadePayload announces one resolved pick. An empty participant id marks
// a CPU-made pick.
type PickMadePayload struct {
	PickNumber    int       `json:"pick_number"`
	PlayerID      string    `json:"player_id"`
	ParticipantID string    `json:"participant_id"`
	MadeAt        time.Time `json:"made_at"`
}

// HostChangedPayload hands host duty to another participant.
type HostChangedPayload struct {
	NewHostID string `json:"new_host_id"`
}

// NewRoomEvent wraps a payload in the broadcast envelope.
func NewRoomEvent(roomID uuid.UUID, typ EventType, payload any) (*RoomEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &RoomEvent{
		ID:        uuid.New().String(),
		RoomID:    roomID.String(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// ParsePayload decodes an event's data into its typed payload.
func ParsePayload(event *RoomEvent) (any, error) {
	switch event.Type {
	case EventTypeStartDraft:
		var payload StartDraftPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case EventTypePickMade:
		var payload PickMadePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case EventTypeHostChanged:
		var payload HostChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	default:
		return nil, nil // unknown event types are ignored by consumers
	}
}
