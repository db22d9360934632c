package models

import (
	"github.com/google/uuid"
)

// Team is a franchise holding picks in the draft order. Immutable.
type Team struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Needs   []Position `json:"needs"` // priority order, most pressing first
	LogoURL string     `json:"logo_url,omitempty"`
}
