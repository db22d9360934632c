package session

import (
	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/events"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/trade"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// RoomPhase is the session-level lifecycle, including the online-only
// pre-states around the draft itself.
type RoomPhase string

const (
	RoomPhaseLoading  RoomPhase = "LOADING"
	RoomPhaseLobby    RoomPhase = "LOBBY"
	RoomPhaseDrafting RoomPhase = "DRAFTING"
	RoomPhaseSummary  RoomPhase = "SUMMARY"
	RoomPhaseError    RoomPhase = "ERROR"
)

// Msg is a message on the session inbox. The session goroutine is the only
// code that touches draft state, so every interaction goes through here.
type Msg interface{ isSessionMsg() }

// Join registers a UI client to receive view snapshots.
type Join struct {
	ClientID string
	Outbox   chan View
}

// Leave unregisters a UI client.
type Leave struct{ ClientID string }

// StartDraft moves the session from lobby to drafting. Host-gated online.
type StartDraft struct{}

// MakePick is a human participant selecting a prospect on their own turn.
type MakePick struct{ PlayerID uuid.UUID }

// ProposeTrade evaluates and, if accepted, applies an asset exchange.
// Independent of pick advancement.
type ProposeTrade struct {
	Proposal trade.Proposal
	Reply    chan TradeOutcome
}

// ChangeHost hands host duty to another participant. This is an explicit
// action; nothing triggers it automatically on disconnect.
type ChangeHost struct{ NewHostID uuid.UUID }

// Quit tears the session down.
type Quit struct{}

// GetView reflects session state without data races; used by tests.
type GetView struct{ Reply chan View }

func (Join) isSessionMsg()         {}
func (Leave) isSessionMsg()        {}
func (StartDraft) isSessionMsg()   {}
func (MakePick) isSessionMsg()     {}
func (ProposeTrade) isSessionMsg() {}
func (ChangeHost) isSessionMsg()   {}
func (Quit) isSessionMsg()         {}
func (GetView) isSessionMsg()      {}

// remoteEvent wraps a broadcast received from the room channel.
type remoteEvent struct{ event *events.RoomEvent }

func (remoteEvent) isSessionMsg() {}

// TradeOutcome reports a trade proposal's evaluation and application.
type TradeOutcome struct {
	Decision trade.Decision
	Applied  bool
	Reason   string
}

// View is the snapshot pushed to UI clients after every state change.
type View struct {
	Version          int                  `json:"version"`
	Phase            RoomPhase            `json:"phase"`
	InviteCode       string               `json:"invite_code,omitempty"`
	CurrentPickIndex int                  `json:"current_pick_index"`
	ScopeLen         int                  `json:"scope_len"`
	Picks            []models.DraftPick   `json:"picks,omitempty"`
	OnClock          uuid.UUID            `json:"on_clock,omitempty"` // team currently picking
	Participants     []models.Participant `json:"participants,omitempty"`
	HostDisconnected bool                 `json:"host_disconnected,omitempty"`
	Warning          string               `json:"warning,omitempty"`
	Grades           map[int]string       `json:"grades,omitempty"` // pick number -> letter grade
}
