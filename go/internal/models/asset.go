package models

// PickAsset is a tradeable unit: a concrete current-year pick identified by its
// overall number, or an abstract future-year round slot with no number yet.
type PickAsset struct {
	PickNumber  int `json:"pick_number,omitempty"`  // 0 for future-year slots
	FutureRound int `json:"future_round,omitempty"` // 0 for current-year picks
}

// Future reports whether the asset is a future-year round slot.
func (a PickAsset) Future() bool {
	return a.PickNumber == 0
}

// CurrentPick builds an asset for a concrete current-year pick.
func CurrentPick(number int) PickAsset {
	return PickAsset{PickNumber: number}
}

// FutureRoundSlot builds an asset for a future-year round slot.
func FutureRoundSlot(round int) PickAsset {
	return PickAsset{FutureRound: round}
}
