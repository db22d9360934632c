package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/catalog"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/autopick"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/events"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/trade"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

type fakeStore struct {
	mu           sync.Mutex
	room         models.Room
	participants []models.Participant
	saves        int
	completed    bool
}

func (f *fakeStore) StartDraft(ctx context.Context, roomID, byParticipant uuid.UUID, stateBlob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room.Status = models.RoomStatusDrafting
	f.room.DraftState = stateBlob
	return nil
}

func (f *fakeStore) SaveState(ctx context.Context, roomID uuid.UUID, stateBlob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room.DraftState = stateBlob
	f.saves++
	return nil
}

func (f *fakeStore) Complete(ctx context.Context, roomID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room.Status = models.RoomStatusComplete
	f.completed = true
	return nil
}

func (f *fakeStore) MarkDisconnected(ctx context.Context, participantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.participants {
		if f.participants[i].ID == participantID {
			f.participants[i].Connected = false
		}
	}
	return nil
}

func (f *fakeStore) SetHost(ctx context.Context, roomID, newHostID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room.HostID = newHostID
	for i := range f.participants {
		f.participants[i].IsHost = f.participants[i].ID == newHostID
	}
	return nil
}

func (f *fakeStore) RoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.Room, []models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.room
	participants := append([]models.Participant(nil), f.participants...)
	return &current, participants, nil
}

func (f *fakeStore) isCompleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *fakeStore) currentHost() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.room.HostID
}

// fakeBus records events and fans them out to every attached session, which
// is exactly what the broadcast channel does, echo included.
type fakeBus struct {
	mu     sync.Mutex
	events []*events.RoomEvent
	peers  []*Session
}

func (b *fakeBus) Publish(inviteCode string, event *events.RoomEvent) error {
	b.mu.Lock()
	b.events = append(b.events, event)
	peers := append([]*Session(nil), b.peers...)
	b.mu.Unlock()
	for _, p := range peers {
		p.Deliver(event)
	}
	return nil
}

func (b *fakeBus) attach(s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peers = append(b.peers, s)
}

func (b *fakeBus) eventsOfType(typ events.EventType) []*events.RoomEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*events.RoomEvent
	for _, ev := range b.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func testSnapshot(teams int) *catalog.Snapshot {
	positions := []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionCB}
	prospects := make([]models.Prospect, teams*7)
	for i := range prospects {
		prospects[i] = models.Prospect{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("Prospect %d", i+1),
			Position: positions[i%len(positions)],
			Rank:     i + 1,
			Year:     2026,
		}
	}
	teamList := make([]models.Team, teams)
	for i := range teamList {
		teamList[i] = models.Team{
			ID:    uuid.New(),
			Name:  fmt.Sprintf("Team %d", i+1),
			Needs: []models.Position{positions[i%len(positions)]},
		}
	}
	return catalog.NewSnapshot(prospects, teamList)
}

func getView(t *testing.T, s *Session) View {
	t.Helper()
	reply := make(chan View, 1)
	select {
	case s.Inbox() <- GetView{Reply: reply}:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out sending GetView")
	}
	select {
	case v := <-reply:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
	}
	return View{}
}

func send(t *testing.T, s *Session, m Msg) {
	t.Helper()
	select {
	case s.Inbox() <- m:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out sending message")
	}
}

// clockAdvancer is the slice of the fake clock the polling helper needs.
type clockAdvancer interface {
	Advance(d time.Duration)
}

// waitFor polls the session's view until cond holds, advancing the fake clock
// one CPU delay per round trip so pending automated turns fire.
func waitFor(t *testing.T, s *Session, clock clockAdvancer, cond func(View) bool) View {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		v := getView(t, s)
		if cond(v) {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition never met; last view: phase=%s index=%d warning=%q",
				v.Phase, v.CurrentPickIndex, v.Warning)
		}
		if clock != nil {
			clock.Advance(models.SpeedFast.Delay())
		} else {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func soloSession(t *testing.T, snap *catalog.Snapshot, clock clockwork.Clock, userTeams []uuid.UUID) *Session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, Deps{
		Clock:    clock,
		Strategy: autopick.NewNeedsWeighted(),
		Snapshot: snap,
	}, Options{
		Year:      2026,
		Rounds:    1,
		Speed:     models.SpeedFast,
		UserTeams: userTeams,
	})
	t.Cleanup(func() {
		send(t, s, Quit{})
		cancel()
	})
	return s
}

func TestSoloStartRequiresClaimedTeam(t *testing.T) {
	snap := testSnapshot(4)
	s := soloSession(t, snap, clockwork.NewFakeClock(), nil)

	send(t, s, StartDraft{})
	v := getView(t, s)
	if v.Phase != RoomPhaseLobby {
		t.Fatalf("phase = %s, want LOBBY", v.Phase)
	}
	if v.Warning == "" {
		t.Fatal("expected a warning about claiming a team")
	}
}

func TestSoloDraftRunsToSummary(t *testing.T) {
	snap := testSnapshot(4)
	clock := clockwork.NewFakeClock()
	userTeam := snap.Teams[0].ID
	s := soloSession(t, snap, clock, []uuid.UUID{userTeam})

	send(t, s, StartDraft{})
	v := getView(t, s)
	if v.Phase != RoomPhaseDrafting {
		t.Fatalf("phase = %s, want DRAFTING", v.Phase)
	}
	if v.ScopeLen != 4 {
		t.Fatalf("scope = %d picks, want 4", v.ScopeLen)
	}
	if v.OnClock != userTeam {
		t.Fatalf("user's team should be on the clock first")
	}

	// First pick is the user's; the second comes out of turn and is ignored.
	send(t, s, MakePick{PlayerID: snap.Prospects[0].ID})
	send(t, s, MakePick{PlayerID: snap.Prospects[1].ID})
	v = getView(t, s)
	if v.CurrentPickIndex != 1 {
		t.Fatalf("index = %d after one valid pick, want 1", v.CurrentPickIndex)
	}

	// The remaining three turns are CPU-controlled; drive them off the clock.
	v = waitFor(t, s, clock, func(v View) bool { return v.Phase == RoomPhaseSummary })
	if v.CurrentPickIndex != 4 {
		t.Fatalf("index = %d at summary, want 4", v.CurrentPickIndex)
	}
	for _, p := range v.Picks[:4] {
		if !p.Filled() {
			t.Fatalf("pick %d unfilled at summary", p.Number)
		}
	}
	if len(v.Grades) != 4 {
		t.Fatalf("got %d grades, want 4", len(v.Grades))
	}
}

func TestSoloTradeThroughSession(t *testing.T) {
	snap := testSnapshot(4)
	userTeam := snap.Teams[0].ID
	other := snap.Teams[1].ID
	s := soloSession(t, snap, clockwork.NewFakeClock(), []uuid.UUID{userTeam})

	t.Run("before the draft starts", func(t *testing.T) {
		reply := make(chan TradeOutcome, 1)
		send(t, s, ProposeTrade{
			Proposal: trade.Proposal{
				FromTeam:  userTeam,
				ToTeam:    other,
				Offered:   []models.PickAsset{{PickNumber: 1}},
				Requested: []models.PickAsset{{PickNumber: 2}},
			},
			Reply: reply,
		})
		outcome := <-reply
		if outcome.Applied {
			t.Fatal("trade applied with no draft in progress")
		}
	})

	send(t, s, StartDraft{})

	t.Run("even swap accepted and applied", func(t *testing.T) {
		reply := make(chan TradeOutcome, 1)
		send(t, s, ProposeTrade{
			Proposal: trade.Proposal{
				FromTeam:  userTeam,
				ToTeam:    other,
				Offered:   []models.PickAsset{{PickNumber: 1}},
				Requested: []models.PickAsset{{PickNumber: 2}},
			},
			Reply: reply,
		})
		outcome := <-reply
		if !outcome.Applied {
			t.Fatalf("trade not applied: %s", outcome.Reason)
		}
		if !outcome.Decision.Accepted || outcome.Decision.Fairness != trade.FairnessFair {
			t.Fatalf("decision = %+v, want accepted and FAIR", outcome.Decision)
		}

		v := getView(t, s)
		if v.Picks[0].TeamID != other || v.Picks[1].TeamID != userTeam {
			t.Fatal("pick ownership did not swap")
		}
		if !v.Picks[0].Traded || !v.Picks[1].Traded {
			t.Fatal("traded flags not set")
		}
	})

	t.Run("lowball rejected", func(t *testing.T) {
		reply := make(chan TradeOutcome, 1)
		send(t, s, ProposeTrade{
			Proposal: trade.Proposal{
				FromTeam:  userTeam,
				ToTeam:    other,
				Offered:   []models.PickAsset{{PickNumber: 4}},
				Requested: []models.PickAsset{{PickNumber: 1}},
			},
			Reply: reply,
		})
		outcome := <-reply
		if outcome.Applied || outcome.Decision.Accepted {
			t.Fatal("lowball offer accepted")
		}
		if outcome.Decision.Fairness != trade.FairnessUnderpaying {
			t.Fatalf("fairness = %s, want UNDERPAYING", outcome.Decision.Fairness)
		}
	})
}

type onlinePair struct {
	snap  *fakeStore
	bus   *fakeBus
	cat   *catalog.Snapshot
	host  *Session
	guest *Session

	hostP  models.Participant
	guestP models.Participant
}

func onlineSessions(t *testing.T) *onlinePair {
	t.Helper()
	cat := testSnapshot(2)
	roomID := uuid.New()
	teamA, teamB := cat.Teams[0].ID, cat.Teams[1].ID

	hostP := models.Participant{
		ID: uuid.New(), RoomID: roomID, DisplayName: "host",
		TeamID: &teamA, ColorSlot: 1, IsHost: true, Connected: true,
	}
	guestP := models.Participant{
		ID: uuid.New(), RoomID: roomID, DisplayName: "guest",
		TeamID: &teamB, ColorSlot: 2, Connected: true,
	}
	current := models.Room{
		ID:         roomID,
		InviteCode: "ABC234",
		Status:     models.RoomStatusLobby,
		HostID:     hostP.ID,
	}
	store := &fakeStore{room: current, participants: []models.Participant{hostP, guestP}}
	bus := &fakeBus{}

	newSession := func(me models.Participant) *Session {
		ctx, cancel := context.WithCancel(context.Background())
		roomCopy := current
		s := New(ctx, Deps{
			Clock:    clockwork.NewFakeClock(),
			Strategy: autopick.NewNeedsWeighted(),
			Snapshot: cat,
			Store:    store,
			Bus:      bus,
		}, Options{
			Year:   2026,
			Rounds: 1,
			Speed:  models.SpeedFast,
			Room:   &roomCopy,
			Me:     &me,
		})
		t.Cleanup(func() {
			send(t, s, Quit{})
			cancel()
		})
		return s
	}

	pair := &onlinePair{snap: store, bus: bus, cat: cat, hostP: hostP, guestP: guestP}
	pair.host = newSession(hostP)
	pair.guest = newSession(guestP)
	bus.attach(pair.host)
	bus.attach(pair.guest)
	return pair
}

func TestOnlineStartIsHostGated(t *testing.T) {
	p := onlineSessions(t)

	send(t, p.guest, StartDraft{})
	v := getView(t, p.guest)
	if v.Phase == RoomPhaseDrafting {
		t.Fatal("guest started the draft")
	}
	if v.Warning == "" {
		t.Fatal("expected a host-only warning")
	}
}

func TestOnlineStartBroadcastAdoptedByPeers(t *testing.T) {
	p := onlineSessions(t)

	send(t, p.host, StartDraft{})
	hv := waitFor(t, p.host, nil, func(v View) bool { return v.Phase == RoomPhaseDrafting })
	if hv.ScopeLen != 2 {
		t.Fatalf("scope = %d, want 2", hv.ScopeLen)
	}
	waitFor(t, p.guest, nil, func(v View) bool { return v.Phase == RoomPhaseDrafting })

	if len(p.bus.eventsOfType(events.EventTypeStartDraft)) != 1 {
		t.Fatal("expected exactly one START_DRAFT broadcast")
	}
}

func TestOnlinePicksConvergeByPickNumber(t *testing.T) {
	p := onlineSessions(t)
	send(t, p.host, StartDraft{})
	waitFor(t, p.guest, nil, func(v View) bool { return v.Phase == RoomPhaseDrafting })

	// Host's team holds pick 1.
	first := p.cat.Prospects[0]
	send(t, p.host, MakePick{PlayerID: first.ID})
	waitFor(t, p.host, nil, func(v View) bool { return v.CurrentPickIndex == 1 })
	gv := waitFor(t, p.guest, nil, func(v View) bool { return v.CurrentPickIndex == 1 })
	if gv.Picks[0].PlayerID == nil || *gv.Picks[0].PlayerID != first.ID {
		t.Fatal("guest did not apply the host's pick")
	}

	// Guest's team holds pick 2; its selection flows the other way.
	second := p.cat.Prospects[1]
	send(t, p.guest, MakePick{PlayerID: second.ID})
	hv := waitFor(t, p.host, nil, func(v View) bool { return v.Phase == RoomPhaseSummary })
	if hv.Picks[1].PlayerID == nil || *hv.Picks[1].PlayerID != second.ID {
		t.Fatal("host did not apply the guest's pick")
	}
	waitFor(t, p.guest, nil, func(v View) bool { return v.Phase == RoomPhaseSummary })

	waitFor(t, p.host, nil, func(View) bool { return p.snap.isCompleted() })
}

func TestOnlineDuplicateDeliveryIsNoOp(t *testing.T) {
	p := onlineSessions(t)
	send(t, p.host, StartDraft{})
	waitFor(t, p.guest, nil, func(v View) bool { return v.Phase == RoomPhaseDrafting })

	first := p.cat.Prospects[0]
	send(t, p.host, MakePick{PlayerID: first.ID})
	before := waitFor(t, p.guest, nil, func(v View) bool { return v.CurrentPickIndex == 1 })

	made := p.bus.eventsOfType(events.EventTypePickMade)
	if len(made) != 1 {
		t.Fatalf("got %d PICK_MADE events, want 1", len(made))
	}
	p.guest.Deliver(made[0])
	p.guest.Deliver(made[0])

	after := getView(t, p.guest)
	if after.CurrentPickIndex != before.CurrentPickIndex {
		t.Fatalf("cursor moved on duplicate delivery: %d -> %d",
			before.CurrentPickIndex, after.CurrentPickIndex)
	}
	if *after.Picks[0].PlayerID != first.ID {
		t.Fatal("pick 1 changed on duplicate delivery")
	}
}

func TestOnlineHostHandoff(t *testing.T) {
	p := onlineSessions(t)

	// Only the current host may hand off.
	send(t, p.guest, ChangeHost{NewHostID: p.guestP.ID})
	getView(t, p.guest) // round trip so the message is fully handled
	if p.snap.currentHost() != p.hostP.ID {
		t.Fatal("non-host changed the host")
	}

	send(t, p.host, ChangeHost{NewHostID: p.guestP.ID})
	waitFor(t, p.guest, nil, func(v View) bool {
		for _, part := range v.Participants {
			if part.ID == p.guestP.ID && part.IsHost {
				return true
			}
		}
		return false
	})
	if p.snap.currentHost() != p.guestP.ID {
		t.Fatal("host flag not persisted")
	}
	if len(p.bus.eventsOfType(events.EventTypeHostChanged)) != 1 {
		t.Fatal("expected exactly one HOST_CHANGED broadcast")
	}
}
