package sequencer

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// Phase of a draft as driven by the sequencer.
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhaseDrafting Phase = "DRAFTING"
	PhaseSummary  Phase = "SUMMARY"
)

var (
	ErrNoClaimedTeam  = errors.New("at least one claimed team is required to start")
	ErrAlreadyStarted = errors.New("draft already started")
)

// Sequencer owns pick-order transitions over a single DraftState instance.
// It is not safe for concurrent use; the session loop serializes all calls.
type Sequencer struct {
	state *models.DraftState
}

func New(state *models.DraftState) *Sequencer {
	return &Sequencer{state: state}
}

// State exposes the underlying draft state for read-only use by callers.
func (s *Sequencer) State() *models.DraftState {
	return s.state
}

// Phase derives the current phase from the cursor and the started flag.
func (s *Sequencer) Phase() Phase {
	if !s.state.Started {
		return PhaseLobby
	}
	if s.state.CurrentPickIndex >= len(s.InScope()) {
		return PhaseSummary
	}
	return PhaseDrafting
}

// Start moves the draft from lobby to drafting. At least one team must be
// under human control.
func (s *Sequencer) Start() error {
	if s.state.Started {
		return ErrAlreadyStarted
	}
	if len(s.state.UserTeams) == 0 {
		return ErrNoClaimedTeam
	}
	s.state.Started = true
	return nil
}

// InScope returns the picks whose round falls within the rounds to simulate.
// This is a prefix view of the full order; the cursor advances over it.
func (s *Sequencer) InScope() []models.DraftPick {
	return InScopePicks(s.state)
}

// CurrentPick returns the pick the cursor is on, if the draft is not complete.
func (s *Sequencer) CurrentPick() (models.DraftPick, bool) {
	scope := s.InScope()
	if s.state.CurrentPickIndex < 0 || s.state.CurrentPickIndex >= len(scope) {
		return models.DraftPick{}, false
	}
	return scope[s.state.CurrentPickIndex], true
}

// ApplyPick assigns playerID to the current in-scope pick and advances the
// cursor by exactly one. It reports whether the pick was applied; a filled
// slot, an exhausted cursor, or an already-drafted prospect is a silent no-op.
// The underlying pick is located by pick number, not slice position, because
// trades may reassign picks without reordering the view.
func (s *Sequencer) ApplyPick(playerID uuid.UUID, madeBy *uuid.UUID) bool {
	cur, ok := s.CurrentPick()
	if !ok {
		return false
	}
	if !s.writePick(cur.Number, playerID, madeBy) {
		return false
	}
	s.state.CurrentPickIndex++
	return true
}

// ApplyPickNumber writes playerID onto the pick with the given overall number
// and advances the cursor to one past that pick's position in this state's own
// in-scope view. It is the reconciliation entry for remote picks: duplicate
// deliveries and already-drafted prospects are safe no-ops, and the cursor
// never moves backwards.
func (s *Sequencer) ApplyPickNumber(number int, playerID uuid.UUID, madeBy *uuid.UUID) bool {
	pos := -1
	for i, p := range s.InScope() {
		if p.Number == number {
			pos = i
			break
		}
	}
	if pos < 0 {
		log.Warn().Int("pick_number", number).Msg("pick number outside scope; ignoring")
		return false
	}
	if !s.writePick(number, playerID, madeBy) {
		return false
	}
	if next := pos + 1; next > s.state.CurrentPickIndex {
		s.state.CurrentPickIndex = next
	}
	return true
}

// writePick mutates the full (unfiltered) pick list. All guards run before any
// mutation so a rejected apply leaves the state untouched.
func (s *Sequencer) writePick(number int, playerID uuid.UUID, madeBy *uuid.UUID) bool {
	idx := -1
	for i := range s.state.Picks {
		if s.state.Picks[i].Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	if s.state.Picks[idx].Filled() {
		return false
	}
	if s.drafted(playerID) {
		return false
	}
	pid := playerID
	s.state.Picks[idx].PlayerID = &pid
	s.state.Picks[idx].MadeBy = madeBy
	return true
}

func (s *Sequencer) drafted(playerID uuid.UUID) bool {
	for i := range s.state.Picks {
		if p := s.state.Picks[i].PlayerID; p != nil && *p == playerID {
			return true
		}
	}
	return false
}
