package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Perk is a fare adjustment definition shared by many users.
type Perk struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	EligibleFor int             `json:"eligible_for"`
	ActiveFor   int             `json:"active_for"`
	FixedRate   decimal.Decimal `json:"fixed_rate"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Deleted     bool            `json:"-"`
	CreatedAt   time.Time       `json:"created"`
}

// PerkGrant binds a perk to a user until ValidUntil, either as an
// eligibility or as an activation.
type PerkGrant struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PerkID     string    `json:"perk_id"`
	ValidUntil time.Time `json:"valid_until"`
	Deleted    bool      `json:"-"`
	CreatedAt  time.Time `json:"created"`
	Perk       Perk      `json:"perk"`
}

type PerkGrantView struct {
	Name       string `json:"name"`
	ValidUntil string `json:"valid_until"`
}
