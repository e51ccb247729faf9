package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"strappon/internal/domain/models"
)

const (
	StandardDriverPerk    = "driver_standard"
	StandardPassengerPerk = "passenger_standard"
	EarlyBirdDriverPerk   = "driver_early_bird"
)

// StandardPerkName returns the perk every user of the given side gets.
func StandardPerkName(role Role) string {
	if role == RoleDriver {
		return StandardDriverPerk
	}
	return StandardPassengerPerk
}

// DefaultPerk prices rides when a user holds no live perk at all.
func DefaultPerk(role Role) models.Perk {
	return models.Perk{
		Name:       StandardPerkName(role),
		FixedRate:  decimal.Zero,
		Multiplier: decimal.NewFromInt(1),
	}
}

// GrantUntil is the last valid day of a grant issued at now for days.
func GrantUntil(now time.Time, days int) time.Time {
	return Today(now).AddDate(0, 0, days)
}

// GrantLive reports whether a grant still applies on the day of now.
func GrantLive(g models.PerkGrant, now time.Time) bool {
	return !g.Deleted && !g.ValidUntil.Before(Today(now))
}

// WithoutStandard drops the standard perk of role from grants.
func WithoutStandard(grants []models.PerkGrant, role Role) []models.PerkGrant {
	name := StandardPerkName(role)
	out := make([]models.PerkGrant, 0, len(grants))
	for _, g := range grants {
		if g.Perk.Name != name {
			out = append(out, g)
		}
	}
	return out
}

// PerkChoice is the perk picked to price a ride and the resulting amount.
type PerkChoice struct {
	Perk   models.Perk
	Amount decimal.Decimal
}

// BestPassengerPerk picks, among the live active grants, the perk giving
// the passenger the lowest fare.
func BestPassengerPerk(active []models.PerkGrant, seats int, distance float64, now time.Time) (PerkChoice, error) {
	return bestPerk(active, RolePassenger, seats, distance, now, func(candidate, best decimal.Decimal) bool {
		return candidate.LessThan(best)
	})
}

// BestDriverPerk picks, among the live active grants, the perk giving the
// driver the highest reimbursement.
func BestDriverPerk(active []models.PerkGrant, seats int, distance float64, now time.Time) (PerkChoice, error) {
	return bestPerk(active, RoleDriver, seats, distance, now, func(candidate, best decimal.Decimal) bool {
		return candidate.GreaterThan(best)
	})
}

func bestPerk(active []models.PerkGrant, role Role, seats int, distance float64, now time.Time, better func(candidate, best decimal.Decimal) bool) (PerkChoice, error) {
	live := make([]models.PerkGrant, 0, len(active))
	for _, g := range active {
		if GrantLive(g, now) {
			live = append(live, g)
		}
	}
	// newest first so that ties keep the most recent grant
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})

	candidates := make([]models.Perk, 0, len(live)+1)
	for _, g := range live {
		candidates = append(candidates, g.Perk)
	}
	if len(candidates) == 0 {
		candidates = append(candidates, DefaultPerk(role))
	}

	var (
		choice PerkChoice
		found  bool
	)
	for _, p := range candidates {
		amount, err := price(FareInput{
			FixedRate:  p.FixedRate,
			Multiplier: p.Multiplier,
			Seats:      seats,
			Distance:   distance,
		})
		if err != nil {
			return PerkChoice{}, err
		}
		if !found || better(amount, choice.Amount) {
			choice = PerkChoice{Perk: p, Amount: amount}
			found = true
		}
	}
	return choice, nil
}

// ViewGrant renders a grant for profile payloads.
func ViewGrant(g models.PerkGrant) models.PerkGrantView {
	return models.PerkGrantView{
		Name:       g.Perk.Name,
		ValidUntil: SerializeDate(&g.ValidUntil),
	}
}
