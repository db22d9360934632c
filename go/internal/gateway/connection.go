package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/trade"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/session"
)

// ConnectionConfig holds WebSocket tuning for client connections.
type ConnectionConfig struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultConnectionConfig returns the WebSocket defaults.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     256,
	}
}

// Connection is one client's WebSocket attached to a session. The read pump
// turns client commands into session messages; the write pump pushes view
// snapshots back out.
type Connection struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	outbox chan session.View
	sess   *session.Session
	cfg    ConnectionConfig

	// claim is how CLAIM_TEAM reaches the room store; nil in solo mode.
	claim   func(teamID uuid.UUID) error
	onClose func()
}

func newConnection(conn *websocket.Conn, sess *session.Session, cfg ConnectionConfig, claim func(uuid.UUID) error, onClose func()) *Connection {
	return &Connection{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, cfg.SendBuffer),
		outbox:  make(chan session.View, 16),
		sess:    sess,
		cfg:     cfg,
		claim:   claim,
		onClose: onClose,
	}
}

// run attaches the connection to its session and starts the pumps. Returns
// when the socket closes.
func (c *Connection) run() {
	c.sess.Inbox() <- session.Join{ClientID: c.id, Outbox: c.outbox}

	go c.viewPump()
	go c.writePump()
	c.readPump()
}

// viewPump forwards session snapshots into the socket's send buffer. The
// session closes the outbox if we fall behind, which tears the socket down.
func (c *Connection) viewPump() {
	for v := range c.outbox {
		view := v
		c.push(Message{Type: MessageView, View: &view})
	}
	c.conn.Close()
}

func (c *Connection) push(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("failed to marshal outbound message")
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("connection_id", c.id).Msg("send buffer full, closing connection")
		c.conn.Close()
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.id).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.sess.Inbox() <- session.Leave{ClientID: c.id}
		if c.onClose != nil {
			c.onClose()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected WebSocket close")
			}
			return
		}
		c.handleCommand(message)
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
}

func (c *Connection) handleCommand(raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.push(Message{Type: MessageError, Error: "malformed command"})
		return
	}

	switch cmd.Type {
	case CommandStartDraft:
		c.sess.Inbox() <- session.StartDraft{}

	case CommandMakePick:
		playerID, err := uuid.Parse(cmd.PlayerID)
		if err != nil {
			c.push(Message{Type: MessageError, Error: "invalid player id"})
			return
		}
		c.sess.Inbox() <- session.MakePick{PlayerID: playerID}

	case CommandProposeTrade:
		proposal, err := parseTrade(cmd.Proposal)
		if err != nil {
			c.push(Message{Type: MessageError, Error: err.Error()})
			return
		}
		reply := make(chan session.TradeOutcome, 1)
		c.sess.Inbox() <- session.ProposeTrade{Proposal: proposal, Reply: reply}
		go func() {
			outcome := <-reply
			c.push(Message{Type: MessageTradeResult, TradeResult: &outcome})
		}()

	case CommandChangeHost:
		newHostID, err := uuid.Parse(cmd.NewHostID)
		if err != nil {
			c.push(Message{Type: MessageError, Error: "invalid participant id"})
			return
		}
		c.sess.Inbox() <- session.ChangeHost{NewHostID: newHostID}

	case CommandClaimTeam:
		if c.claim == nil {
			c.push(Message{Type: MessageError, Error: "claiming teams is an online-room action"})
			return
		}
		teamID, err := uuid.Parse(cmd.TeamID)
		if err != nil {
			c.push(Message{Type: MessageError, Error: "invalid team id"})
			return
		}
		if err := c.claim(teamID); err != nil {
			c.push(Message{Type: MessageError, Error: err.Error()})
		}

	default:
		log.Debug().Str("connection_id", c.id).Str("command", string(cmd.Type)).Msg("unknown client command")
	}
}

func parseTrade(raw json.RawMessage) (trade.Proposal, error) {
	var wire TradeWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return trade.Proposal{}, err
	}
	fromTeam, err := uuid.Parse(wire.From.TeamID)
	if err != nil {
		return trade.Proposal{}, err
	}
	toTeam, err := uuid.Parse(wire.To.TeamID)
	if err != nil {
		return trade.Proposal{}, err
	}
	return trade.Proposal{
		FromTeam:  fromTeam,
		ToTeam:    toTeam,
		Offered:   parseAssets(wire.From.Assets),
		Requested: parseAssets(wire.To.Assets),
	}, nil
}

func parseAssets(wires []AssetWire) []models.PickAsset {
	assets := make([]models.PickAsset, 0, len(wires))
	for _, w := range wires {
		assets = append(assets, models.PickAsset{
			PickNumber:  w.PickNumber,
			FutureRound: w.FutureRound,
		})
	}
	return assets
}
