package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/catalog"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/autopick"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/events"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/grade"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/sequencer"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/trade"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// Bus publishes room events on the shared broadcast channel.
type Bus interface {
	Publish(inviteCode string, event *events.RoomEvent) error
}

// Store persists room state and membership. Implemented by room.Service.
type Store interface {
	StartDraft(ctx context.Context, roomID, byParticipant uuid.UUID, stateBlob []byte) error
	SaveState(ctx context.Context, roomID uuid.UUID, stateBlob []byte) error
	Complete(ctx context.Context, roomID uuid.UUID) error
	MarkDisconnected(ctx context.Context, participantID uuid.UUID) error
	SetHost(ctx context.Context, roomID, newHostID uuid.UUID) error
	RoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.Room, []models.Participant, error)
}

// Deps are the session's collaborators.
type Deps struct {
	Clock    clockwork.Clock
	Strategy autopick.Strategy
	Snapshot *catalog.Snapshot
	Store    Store // nil in solo mode
	Bus      Bus   // nil in solo mode
}

// Options configure one draft session.
type Options struct {
	Year      int
	Rounds    int
	Speed     models.DraftSpeed
	UserTeams []uuid.UUID // solo mode: teams under human control
	Room      *models.Room
	Me        *models.Participant
}

// Session is one client's view of a draft: the only goroutine allowed to
// mutate its DraftState. UI commands, room broadcasts, row-change refreshes
// and the CPU turn timer all funnel through the inbox (scheduling is
// single-threaded, event-driven per client).
type Session struct {
	inbox chan Msg
	rowCh chan uuid.UUID

	clock clockwork.Clock
	strat autopick.Strategy
	snap  *catalog.Snapshot
	opts  Options

	seq     *sequencer.Sequencer
	phase   RoomPhase
	version int
	clients map[string]chan View

	online       bool
	store        Store
	bus          Bus
	me           models.Participant
	room         models.Room
	participants []models.Participant
	hostGone     bool
	warning      string

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a session loop. Online when deps.Store, deps.Bus, opts.Room and
// opts.Me are all set; solo otherwise.
func New(parent context.Context, deps Deps, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:   make(chan Msg, 64),
		rowCh:   make(chan uuid.UUID, 1),
		clock:   deps.Clock,
		strat:   deps.Strategy,
		snap:    deps.Snapshot,
		opts:    opts,
		phase:   RoomPhaseLobby,
		clients: make(map[string]chan View),
		ctx:     ctx,
		cancel:  cancel,
	}
	if deps.Store != nil && deps.Bus != nil && opts.Room != nil && opts.Me != nil {
		s.online = true
		s.store = deps.Store
		s.bus = deps.Bus
		s.me = *opts.Me
		s.room = *opts.Room
		s.phase = RoomPhaseLoading
	}
	go s.loop()
	return s
}

// Inbox accepts session messages from the gateway and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Deliver feeds a broadcast event into the loop. Called from the NATS
// subscription callback; never blocks it.
func (s *Session) Deliver(event *events.RoomEvent) {
	select {
	case s.inbox <- remoteEvent{event: event}:
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("session inbox full; dropping event")
	}
}

// RowChanges is where the row-change listener pushes refresh signals.
func (s *Session) RowChanges() chan<- uuid.UUID { return s.rowCh }

func (s *Session) loop() {
	// One timer serves every CPU turn. It is re-armed (or parked) after each
	// handled message, so a pending delay is invalidated the moment the
	// current pick, the draft state identity, or the phase changes.
	timer := s.clock.NewTimer(time.Hour)
	parkTimer(timer)
	defer timer.Stop()

	if s.online {
		s.refreshRoom()
		s.publishView()
	}
	s.rearm(timer)

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-timer.Chan():
			s.handleCPUTurn()
			s.rearm(timer)

		case <-s.rowCh:
			s.refreshRoom()
			s.publishView()
			s.rearm(timer)

		case m := <-s.inbox:
			if quit := s.handle(m); quit {
				s.shutdown()
				return
			}
			s.rearm(timer)
		}
	}
}

func (s *Session) handle(m Msg) bool {
	switch msg := m.(type) {
	case Join:
		s.clients[msg.ClientID] = msg.Outbox
		msg.Outbox <- s.view()

	case Leave:
		delete(s.clients, msg.ClientID)

	case StartDraft:
		s.startDraft()
		s.publishView()

	case MakePick:
		s.humanPick(msg.PlayerID)
		s.publishView()

	case ProposeTrade:
		outcome := s.proposeTrade(msg.Proposal)
		if msg.Reply != nil {
			msg.Reply <- outcome
		}
		s.publishView()

	case ChangeHost:
		s.changeHost(msg.NewHostID)
		s.publishView()

	case remoteEvent:
		s.handleRemote(msg.event)
		s.publishView()

	case GetView:
		msg.Reply <- s.view()

	case Quit:
		return true
	}
	return false
}

// startDraft transitions LOBBY -> DRAFTING. At least one claimed team is
// required; online it is additionally host-gated and broadcasts START_DRAFT
// with the full initial state, exactly once.
func (s *Session) startDraft() {
	if s.seq != nil {
		return
	}

	userTeams := s.opts.UserTeams
	if s.online {
		if !s.me.IsHost {
			s.warning = "only the host can start the draft"
			return
		}
		userTeams = claimedTeams(s.participants)
	}
	if len(userTeams) == 0 {
		s.warning = "claim a team before starting the draft"
		return
	}

	state := sequencer.NewDraftState(sequencer.Config{
		Prospects: s.snap.Prospects,
		Year:      s.opts.Year,
		Order:     s.snap.Order(),
		Rounds:    s.opts.Rounds,
		Speed:     s.opts.Speed,
		UserTeams: userTeams,
		Online:    s.online,
	})
	s.seq = sequencer.New(state)
	if err := s.seq.Start(); err != nil {
		s.seq = nil
		s.warning = err.Error()
		return
	}
	s.phase = RoomPhaseDrafting
	s.warning = ""

	if s.online {
		blob, err := json.Marshal(state)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal draft state")
			return
		}
		if err := s.store.StartDraft(s.ctx, s.room.ID, s.me.ID, blob); err != nil {
			// Local state stands; the next reconciliation catches drift.
			s.warning = "failed to persist draft start"
			log.Error().Err(err).Str("room_id", s.room.ID.String()).Msg("start draft persist failed")
		}
		s.broadcast(events.EventTypeStartDraft, events.StartDraftPayload{DraftState: state})
	}

	log.Info().
		Int("rounds", s.opts.Rounds).
		Int("user_teams", len(userTeams)).
		Bool("online", s.online).
		Msg("draft started")
}

// humanPick applies a participant's selection on their own turn. The apply is
// optimistic: it lands locally first and is not rolled back if the follow-up
// persist fails.
func (s *Session) humanPick(playerID uuid.UUID) {
	if s.seq == nil || s.seq.Phase() != sequencer.PhaseDrafting {
		return
	}
	cur, ok := s.seq.CurrentPick()
	if !ok || !s.controlsTeam(cur.TeamID) {
		return
	}

	madeBy := (*uuid.UUID)(nil)
	participantID := ""
	if s.online {
		id := s.me.ID
		madeBy = &id
		participantID = id.String()
	}
	if !s.seq.ApplyPick(playerID, madeBy) {
		return
	}
	s.afterPick(cur.Number, playerID, participantID)
}

// handleCPUTurn resolves one automated pick. Only the host executes CPU turns
// online; every other session waits for the broadcast.
func (s *Session) handleCPUTurn() {
	if !s.cpuTurnPending() {
		// Stale fire: state moved on while the timer was in flight.
		return
	}
	cur, _ := s.seq.CurrentPick()
	prospect, ok := s.strat.SelectPick(s.seq.State(), cur.TeamID, s.snap.TeamNeeds(cur.TeamID))
	if !ok {
		// No prospects remain; not an error.
		return
	}
	if !s.seq.ApplyPick(prospect.ID, nil) {
		return
	}
	s.afterPick(cur.Number, prospect.ID, "")
	s.publishView()
}

// afterPick persists, broadcasts and finalizes after a locally applied pick.
func (s *Session) afterPick(pickNumber int, playerID uuid.UUID, participantID string) {
	if s.online {
		s.persistState()
		s.broadcast(events.EventTypePickMade, events.PickMadePayload{
			PickNumber:    pickNumber,
			PlayerID:      playerID.String(),
			ParticipantID: participantID,
			MadeAt:        s.clock.Now().UTC(),
		})
	}
	s.finishIfComplete()
}

// handleRemote reconciles a broadcast from another session (or our own echo).
func (s *Session) handleRemote(event *events.RoomEvent) {
	payload, err := events.ParsePayload(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("bad event payload")
		return
	}

	switch p := payload.(type) {
	case events.StartDraftPayload:
		if s.seq != nil || p.DraftState == nil {
			return
		}
		s.seq = sequencer.New(p.DraftState)
		s.phase = RoomPhaseDrafting

	case events.PickMadePayload:
		if s.seq == nil {
			// Draft state not adopted yet; the row refresh will catch up.
			return
		}
		playerID, err := uuid.Parse(p.PlayerID)
		if err != nil {
			log.Error().Err(err).Msg("bad player id in PICK_MADE")
			return
		}
		var madeBy *uuid.UUID
		if p.ParticipantID != "" {
			if id, err := uuid.Parse(p.ParticipantID); err == nil {
				madeBy = &id
			}
		}
		// Match by pick number against our own scope view; never trust the
		// sender's index. Duplicate deliveries are absorbed.
		if s.seq.ApplyPickNumber(p.PickNumber, playerID, madeBy) {
			s.finishIfComplete()
		}

	case events.HostChangedPayload:
		newHost, err := uuid.Parse(p.NewHostID)
		if err != nil {
			return
		}
		s.adoptHost(newHost)
	}
}

// refreshRoom re-reads the persisted room and participant rows. At-least-once
// notifications make this safe to run repeatedly.
func (s *Session) refreshRoom() {
	if !s.online {
		return
	}
	current, participants, err := s.store.RoomSnapshot(s.ctx, s.room.ID)
	if err != nil {
		if s.phase == RoomPhaseLoading {
			s.phase = RoomPhaseError
			s.warning = "room not found"
			return
		}
		s.warning = "failed to refresh room"
		log.Error().Err(err).Str("room_id", s.room.ID.String()).Msg("room refresh failed")
		return
	}
	s.room = *current
	s.participants = participants
	for _, p := range participants {
		if p.ID == s.me.ID {
			s.me = p
		}
	}
	s.hostGone = hostDisconnected(participants)

	if s.phase == RoomPhaseLoading {
		s.phase = RoomPhaseLobby
	}
	// Reconnect path: adopt the persisted snapshot when the draft started
	// without us.
	if s.seq == nil && current.Status == models.RoomStatusDrafting && len(current.DraftState) > 0 {
		var state models.DraftState
		if err := json.Unmarshal(current.DraftState, &state); err != nil {
			log.Error().Err(err).Msg("corrupt draft state snapshot")
			return
		}
		s.seq = sequencer.New(&state)
		s.phase = RoomPhaseDrafting
	}
	if current.Status == models.RoomStatusComplete {
		s.phase = RoomPhaseSummary
	}
}

func (s *Session) proposeTrade(p trade.Proposal) TradeOutcome {
	decision, err := trade.Evaluate(p)
	if err != nil {
		return TradeOutcome{Reason: err.Error()}
	}
	if !decision.Accepted {
		return TradeOutcome{Decision: decision, Reason: "offer below acceptance threshold"}
	}
	if s.seq == nil {
		return TradeOutcome{Decision: decision, Reason: "no draft in progress"}
	}
	if err := trade.Apply(s.seq.State(), p); err != nil {
		return TradeOutcome{Decision: decision, Reason: err.Error()}
	}
	if s.online {
		s.persistState()
	}
	log.Info().
		Float64("offered", decision.OfferedValue).
		Float64("requested", decision.RequestedValue).
		Str("fairness", string(decision.Fairness)).
		Msg("trade applied")
	return TradeOutcome{Decision: decision, Applied: true}
}

// changeHost is the manual host-handoff action. Only the current host can
// hand off; the new assignment persists, then broadcasts.
func (s *Session) changeHost(newHostID uuid.UUID) {
	if !s.online || !s.me.IsHost {
		return
	}
	if err := s.store.SetHost(s.ctx, s.room.ID, newHostID); err != nil {
		s.warning = "failed to change host"
		log.Error().Err(err).Msg("host change persist failed")
		return
	}
	s.adoptHost(newHostID)
	s.broadcast(events.EventTypeHostChanged, events.HostChangedPayload{NewHostID: newHostID.String()})
}

func (s *Session) adoptHost(newHostID uuid.UUID) {
	s.room.HostID = newHostID
	s.me.IsHost = s.me.ID == newHostID
	for i := range s.participants {
		s.participants[i].IsHost = s.participants[i].ID == newHostID
	}
}

func (s *Session) finishIfComplete() {
	if s.seq == nil || s.seq.Phase() != sequencer.PhaseSummary {
		return
	}
	s.phase = RoomPhaseSummary
	if s.online && s.me.IsHost {
		if err := s.store.Complete(s.ctx, s.room.ID); err != nil {
			log.Error().Err(err).Str("room_id", s.room.ID.String()).Msg("failed to mark room complete")
		}
	}
	log.Info().Msg("draft complete")
}

// persistState overwrites the room's draft-state snapshot. Failures surface
// as a warning; the local optimistic state is never rolled back.
func (s *Session) persistState() {
	blob, err := json.Marshal(s.seq.State())
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal draft state")
		return
	}
	if err := s.store.SaveState(s.ctx, s.room.ID, blob); err != nil {
		s.warning = "failed to save draft progress"
		log.Error().Err(err).Str("room_id", s.room.ID.String()).Msg("state persist failed")
	}
}

func (s *Session) broadcast(typ events.EventType, payload any) {
	event, err := events.NewRoomEvent(s.room.ID, typ, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
		return
	}
	if err := s.bus.Publish(s.room.InviteCode, event); err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("broadcast failed")
	}
}

// cpuTurnPending reports whether this session owes an automated pick: a draft
// is running, the team on the clock is CPU-controlled, and (online) we hold
// host duty.
func (s *Session) cpuTurnPending() bool {
	if s.seq == nil || s.seq.Phase() != sequencer.PhaseDrafting {
		return false
	}
	if s.online && !s.me.IsHost {
		return false
	}
	cur, ok := s.seq.CurrentPick()
	if !ok {
		return false
	}
	return !s.controlsTeam(cur.TeamID) && !humanControlled(s.seq.State(), cur.TeamID)
}

// controlsTeam reports whether this session's human acts for the team.
func (s *Session) controlsTeam(teamID uuid.UUID) bool {
	if s.online {
		return s.me.TeamID != nil && *s.me.TeamID == teamID
	}
	return s.seq != nil && s.seq.State().UserTeams[teamID]
}

func (s *Session) rearm(timer clockwork.Timer) {
	parkTimer(timer)
	if s.cpuTurnPending() {
		timer.Reset(s.seq.State().Speed.Delay())
	}
}

func parkTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

func (s *Session) view() View {
	v := View{
		Version:          s.version,
		Phase:            s.phase,
		InviteCode:       s.room.InviteCode,
		Participants:     s.participants,
		HostDisconnected: s.hostGone,
		Warning:          s.warning,
	}
	if s.seq != nil {
		state := s.seq.State()
		scope := s.seq.InScope()
		v.CurrentPickIndex = state.CurrentPickIndex
		v.ScopeLen = len(scope)
		v.Picks = append([]models.DraftPick(nil), state.Picks...)
		if cur, ok := s.seq.CurrentPick(); ok {
			v.OnClock = cur.TeamID
		}
		v.Grades = s.gradePicks(scope)
		switch s.seq.Phase() {
		case sequencer.PhaseDrafting:
			v.Phase = RoomPhaseDrafting
		case sequencer.PhaseSummary:
			v.Phase = RoomPhaseSummary
		}
	}
	return v
}

func (s *Session) gradePicks(scope []models.DraftPick) map[int]string {
	grades := make(map[int]string)
	for _, p := range scope {
		if p.PlayerID == nil {
			continue
		}
		prospect, ok := s.snap.Prospect(*p.PlayerID)
		if !ok {
			continue
		}
		grades[p.Number] = grade.Pick(p.Number, prospect, s.snap.TeamNeeds(p.TeamID))
	}
	if len(grades) == 0 {
		return nil
	}
	return grades
}

func (s *Session) publishView() {
	s.version++
	snap := s.view()
	snap.Version = s.version
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow or gone; drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	if s.online {
		// Best-effort only; nobody waits on this.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.store.MarkDisconnected(ctx, s.me.ID); err != nil {
			log.Debug().Err(err).Msg("mark disconnected failed")
		}
	}
	s.cancel()
}

func claimedTeams(participants []models.Participant) []uuid.UUID {
	var out []uuid.UUID
	for _, p := range participants {
		if p.TeamID != nil {
			out = append(out, *p.TeamID)
		}
	}
	return out
}

func humanControlled(state *models.DraftState, teamID uuid.UUID) bool {
	return state.UserTeams[teamID]
}

func hostDisconnected(participants []models.Participant) bool {
	for _, p := range participants {
		if p.IsHost {
			return !p.Connected
		}
	}
	return false
}
