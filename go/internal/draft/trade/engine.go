package trade

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// acceptTolerance is the band favoring the proposer: counterparties accept any
// offer worth at least 95% of what they give up.
const acceptTolerance = 0.95

// Fairness buckets for the offered/requested ratio. Informational only; never
// gates acceptance.
type Fairness string

const (
	FairnessUnderpaying Fairness = "UNDERPAYING"
	FairnessFair        Fairness = "FAIR"
	FairnessOverpaying  Fairness = "OVERPAYING"
)

var (
	ErrEmptyTrade      = errors.New("trade has no assets on either side")
	ErrAssetNotOwned   = errors.New("asset is not owned by the trading team")
	ErrPickAlreadyUsed = errors.New("pick has already been used on a selection")
	ErrUnknownPick     = errors.New("pick number not found in draft order")
)

// Proposal describes an asset exchange between two teams. Offered assets are
// owned by FromTeam, requested assets by ToTeam.
type Proposal struct {
	FromTeam  uuid.UUID
	ToTeam    uuid.UUID
	Offered   []models.PickAsset
	Requested []models.PickAsset
}

// Decision is the evaluation of a proposal.
type Decision struct {
	OfferedValue   float64
	RequestedValue float64
	Accepted       bool
	Fairness       Fairness
}

// AcceptableValues applies the acceptance boundary: offered value must reach
// 95% of the requested value.
func AcceptableValues(offered, requested float64) bool {
	return offered >= requested*acceptTolerance
}

// RateFairness classifies the offered/requested ratio.
func RateFairness(offered, requested float64) Fairness {
	if requested <= 0 {
		return FairnessOverpaying
	}
	ratio := offered / requested
	switch {
	case ratio < 0.9:
		return FairnessUnderpaying
	case ratio > 1.2:
		return FairnessOverpaying
	default:
		return FairnessFair
	}
}

// Evaluate values both sides of a proposal and decides acceptance. A proposal
// with no assets on either side is rejected outright.
func Evaluate(p Proposal) (Decision, error) {
	if len(p.Offered) == 0 && len(p.Requested) == 0 {
		return Decision{}, ErrEmptyTrade
	}
	offered := TotalValue(p.Offered)
	requested := TotalValue(p.Requested)
	return Decision{
		OfferedValue:   offered,
		RequestedValue: requested,
		Accepted:       AcceptableValues(offered, requested),
		Fairness:       RateFairness(offered, requested),
	}, nil
}

// Apply executes an accepted proposal against the draft state: every asset on
// both sides changes ownership. The exchange is all-or-nothing — every asset
// is validated before any mutation happens.
func Apply(state *models.DraftState, p Proposal) error {
	if len(p.Offered) == 0 && len(p.Requested) == 0 {
		return ErrEmptyTrade
	}
	if err := validateSide(state, p.FromTeam, p.Offered); err != nil {
		return err
	}
	if err := validateSide(state, p.ToTeam, p.Requested); err != nil {
		return err
	}
	moveAssets(state, p.FromTeam, p.ToTeam, p.Offered)
	moveAssets(state, p.ToTeam, p.FromTeam, p.Requested)
	return nil
}

func validateSide(state *models.DraftState, owner uuid.UUID, assets []models.PickAsset) error {
	for _, a := range assets {
		if a.Future() {
			if !holdsFutureRound(state, owner, a.FutureRound) {
				return fmt.Errorf("future round %d: %w", a.FutureRound, ErrAssetNotOwned)
			}
			continue
		}
		pick, ok := findPick(state, a.PickNumber)
		if !ok {
			return fmt.Errorf("pick %d: %w", a.PickNumber, ErrUnknownPick)
		}
		if pick.TeamID != owner {
			return fmt.Errorf("pick %d: %w", a.PickNumber, ErrAssetNotOwned)
		}
		if pick.Filled() {
			return fmt.Errorf("pick %d: %w", a.PickNumber, ErrPickAlreadyUsed)
		}
	}
	return nil
}

func moveAssets(state *models.DraftState, from, to uuid.UUID, assets []models.PickAsset) {
	for _, a := range assets {
		if a.Future() {
			removeFutureRound(state, from, a.FutureRound)
			state.FutureAssets[to] = append(state.FutureAssets[to], a.FutureRound)
			continue
		}
		for i := range state.Picks {
			if state.Picks[i].Number == a.PickNumber {
				state.Picks[i].TeamID = to
				state.Picks[i].Traded = true
				break
			}
		}
	}
}

func findPick(state *models.DraftState, number int) (models.DraftPick, bool) {
	for i := range state.Picks {
		if state.Picks[i].Number == number {
			return state.Picks[i], true
		}
	}
	return models.DraftPick{}, false
}

func holdsFutureRound(state *models.DraftState, teamID uuid.UUID, round int) bool {
	for _, r := range state.FutureAssets[teamID] {
		if r == round {
			return true
		}
	}
	return false
}

func removeFutureRound(state *models.DraftState, teamID uuid.UUID, round int) {
	pool := state.FutureAssets[teamID]
	for i, r := range pool {
		if r == round {
			state.FutureAssets[teamID] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}
