package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/catalog"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/autopick"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/events"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/sequencer"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/realtime"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/room"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/session"
)

// DraftDefaults configure new sessions when the client leaves a knob unset.
type DraftDefaults struct {
	Year   int
	Rounds int
}

// Gateway exposes the room HTTP API and the WebSocket endpoints, and wires
// each socket to its own draft session.
type Gateway struct {
	rooms       *room.Service
	catalog     *catalog.Snapshot
	bus         *realtime.Broadcaster
	listenerCfg realtime.ListenerConfig
	clock       clockwork.Clock
	connCfg     ConnectionConfig
	defaults    DraftDefaults
	upgrader    websocket.Upgrader
}

// New builds a gateway. bus may be nil when online rooms are disabled.
func New(rooms *room.Service, snap *catalog.Snapshot, bus *realtime.Broadcaster, listenerCfg realtime.ListenerConfig, defaults DraftDefaults) *Gateway {
	return &Gateway{
		rooms:       rooms,
		catalog:     snap,
		bus:         bus,
		listenerCfg: listenerCfg,
		clock:       clockwork.NewRealClock(),
		connCfg:     DefaultConnectionConfig(),
		defaults:    defaults,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type createRoomRequest struct {
	DisplayName string `json:"display_name"`
}

type joinRoomRequest struct {
	InviteCode  string `json:"invite_code"`
	DisplayName string `json:"display_name"`
}

type roomResponse struct {
	Room        *models.Room        `json:"room"`
	Participant *models.Participant `json:"participant"`
	Teams       []models.Team       `json:"teams"`
}

// HandleCreateRoom makes a new lobby with the caller as host.
func (g *Gateway) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, host, err := g.rooms.CreateRoom(r.Context(), req.DisplayName)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomResponse{Room: created, Participant: host, Teams: g.catalog.Teams})
}

// HandleJoinRoom adds the caller to an existing lobby by invite code.
func (g *Gateway) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	joined, participant, err := g.rooms.JoinRoom(r.Context(), req.InviteCode, req.DisplayName)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: joined, Participant: participant, Teams: g.catalog.Teams})
}

// HandleRoomWS attaches a participant's WebSocket to an online room session.
// Query params: room_id, participant_id.
func (g *Gateway) HandleRoomWS(w http.ResponseWriter, r *http.Request) {
	if g.bus == nil {
		writeError(w, http.StatusServiceUnavailable, "online rooms are not enabled")
		return
	}
	roomID, err := uuid.Parse(r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	participantID, err := uuid.Parse(r.URL.Query().Get("participant_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	current, participants, err := g.rooms.RoomSnapshot(r.Context(), roomID)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	var me *models.Participant
	for i := range participants {
		if participants[i].ID == participantID {
			me = &participants[i]
			break
		}
	}
	if me == nil {
		writeError(w, http.StatusNotFound, "participant not in room")
		return
	}

	if err := g.rooms.MarkConnected(r.Context(), participantID); err != nil {
		log.Error().Err(err).Str("participant_id", participantID.String()).Msg("failed to mark participant connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := session.New(ctx, session.Deps{
		Clock:    g.clock,
		Strategy: autopick.NewNeedsWeighted(),
		Snapshot: g.catalog,
		Store:    g.rooms,
		Bus:      g.bus,
	}, session.Options{
		Year:   g.defaults.Year,
		Rounds: g.defaults.Rounds,
		Speed:  models.ParseSpeed(r.URL.Query().Get("speed")),
		Room:   current,
		Me:     me,
	})

	eventCh := make(chan *events.RoomEvent, 64)
	sub, err := g.bus.SubscribeRoom(current.InviteCode, eventCh)
	if err != nil {
		cancel()
		writeError(w, http.StatusInternalServerError, "failed to subscribe to room channel")
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				sess.Deliver(ev)
			}
		}
	}()

	listener, err := realtime.NewRowChangeListener(g.listenerCfg, current.ID, sess.RowChanges())
	if err != nil {
		sub.Unsubscribe()
		cancel()
		writeError(w, http.StatusInternalServerError, "failed to start room listener")
		return
	}
	go func() {
		if err := listener.Start(ctx); err != nil {
			log.Error().Err(err).Str("room_id", current.ID.String()).Msg("row-change listener stopped")
		}
	}()

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Unsubscribe()
		cancel()
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	claim := func(teamID uuid.UUID) error {
		return g.rooms.ClaimTeam(ctx, current.ID, participantID, teamID)
	}
	conn := newConnection(ws, sess, g.connCfg, claim, func() {
		sub.Unsubscribe()
		sess.Inbox() <- session.Quit{}
		cancel()
	})

	log.Info().
		Str("room_id", current.ID.String()).
		Str("participant_id", participantID.String()).
		Str("invite_code", current.InviteCode).
		Msg("room WebSocket attached")
	go conn.run()
}

// HandleSoloWS starts an offline single-player draft over a WebSocket.
// Query params: team (repeatable), rounds, speed, year.
func (g *Gateway) HandleSoloWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var userTeams []uuid.UUID
	for _, raw := range q["team"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid team id")
			return
		}
		userTeams = append(userTeams, id)
	}
	if len(userTeams) == 0 {
		writeError(w, http.StatusBadRequest, "at least one team is required")
		return
	}

	rounds := g.defaults.Rounds
	if raw := q.Get("rounds"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > sequencer.TotalRounds {
			writeError(w, http.StatusBadRequest, "rounds must be between 1 and 7")
			return
		}
		rounds = n
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := session.New(ctx, session.Deps{
		Clock:    g.clock,
		Strategy: autopick.NewNeedsWeighted(),
		Snapshot: g.catalog,
	}, session.Options{
		Year:      g.defaults.Year,
		Rounds:    rounds,
		Speed:     models.ParseSpeed(q.Get("speed")),
		UserTeams: userTeams,
	})

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	conn := newConnection(ws, sess, g.connCfg, nil, func() {
		sess.Inbox() <- session.Quit{}
		cancel()
	})

	log.Info().Int("rounds", rounds).Int("user_teams", len(userTeams)).Msg("solo WebSocket attached")
	go conn.run()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRoomError maps room service sentinels onto HTTP statuses.
func writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrBadInviteCode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrRoomFull), errors.Is(err, room.ErrDraftStarted), errors.Is(err, room.ErrTeamTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, room.ErrNameEmpty), errors.Is(err, room.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("room request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
