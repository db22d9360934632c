package gateway

import (
	"encoding/json"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/session"
)

// CommandType identifies a client WebSocket command.
type CommandType string

const (
	CommandStartDraft   CommandType = "START_DRAFT"
	CommandMakePick     CommandType = "MAKE_PICK"
	CommandProposeTrade CommandType = "PROPOSE_TRADE"
	CommandChangeHost   CommandType = "CHANGE_HOST"
	CommandClaimTeam    CommandType = "CLAIM_TEAM"
)

// Command is one inbound client message. Fields beyond Type are populated
// per command.
type Command struct {
	Type      CommandType     `json:"type"`
	PlayerID  string          `json:"player_id,omitempty"`
	TeamID    string          `json:"team_id,omitempty"`
	NewHostID string          `json:"new_host_id,omitempty"`
	Proposal  json.RawMessage `json:"proposal,omitempty"`
}

// TradeSide is one side of a proposed exchange on the wire.
type TradeSide struct {
	TeamID string      `json:"team_id"`
	Assets []AssetWire `json:"assets"`
}

// AssetWire is a pick asset on the wire: either a current-draft pick number
// or a future-round slot.
type AssetWire struct {
	PickNumber  int `json:"pick_number,omitempty"`
	FutureRound int `json:"future_round,omitempty"`
}

// TradeWire is the PROPOSE_TRADE payload.
type TradeWire struct {
	From TradeSide `json:"from"`
	To   TradeSide `json:"to"`
}

// MessageType identifies an outbound server message.
type MessageType string

const (
	MessageView        MessageType = "view"
	MessageTradeResult MessageType = "trade_result"
	MessageError       MessageType = "error"
)

// Message is one outbound WebSocket frame.
type Message struct {
	Type        MessageType           `json:"type"`
	View        *session.View         `json:"view,omitempty"`
	TradeResult *session.TradeOutcome `json:"trade_result,omitempty"`
	Error       string                `json:"error,omitempty"`
}
