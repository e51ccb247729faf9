package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

const standardPerkDays = 3650

type PerkService struct {
	DriverPerks    repositories.PerkRepository
	PassengerPerks repositories.PerkRepository
	Now            domain.Clock
	RequestID      string
}

func (s PerkService) InTx(tx *sql.Tx) PerkService {
	s.DriverPerks = s.DriverPerks.InTx(tx)
	s.PassengerPerks = s.PassengerPerks.InTx(tx)
	return s
}

// Create defines a new perk for one side.
func (s PerkService) Create(ctx context.Context, role domain.Role, in models.Perk) (models.Perk, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return models.Perk{}, domain.ValidationError{Field: "name", Msg: "required"}
	case in.EligibleFor <= 0 || in.ActiveFor <= 0:
		return models.Perk{}, domain.ValidationError{Field: "active_for", Msg: "eligible_for and active_for must be positive"}
	case in.FixedRate.IsNegative() || in.Multiplier.IsNegative():
		return models.Perk{}, domain.ValidationError{Field: "multiplier", Msg: "rates must not be negative"}
	}
	p, err := s.repo(role).CreatePerk(ctx, in, nowOf(s.Now))
	if err != nil {
		return models.Perk{}, err
	}
	utils.LogEvent(s.RequestID, "perk", "create", fmt.Sprintf("role=%s name=%s", role, p.Name))
	return p, nil
}

// EnsureStandard defines the standard perk of each side when missing.
func (s PerkService) EnsureStandard(ctx context.Context) error {
	for _, role := range []domain.Role{domain.RoleDriver, domain.RolePassenger} {
		_, err := s.repo(role).GetByName(ctx, domain.StandardPerkName(role))
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			return err
		}
		std := domain.DefaultPerk(role)
		std.EligibleFor = standardPerkDays
		std.ActiveFor = standardPerkDays
		if _, err := s.Create(ctx, role, std); err != nil {
			return err
		}
	}
	return nil
}

func (s PerkService) repo(role domain.Role) repositories.PerkRepository {
	if role == domain.RoleDriver {
		r := s.DriverPerks
		r.Role = domain.RoleDriver
		return r
	}
	r := s.PassengerPerks
	r.Role = domain.RolePassenger
	return r
}

// DefaultPerks grants a new user the standard perk of the side, eligible
// and active. Drivers also become eligible for the early bird perk when it
// is defined.
func (s PerkService) DefaultPerks(ctx context.Context, userID string, role domain.Role) error {
	repo := s.repo(role)
	now := nowOf(s.Now)

	std, err := repo.GetByName(ctx, domain.StandardPerkName(role))
	switch {
	case err == nil:
		if _, err := repo.AddEligible(ctx, userID, std, domain.GrantUntil(now, std.EligibleFor), now); err != nil {
			return err
		}
		if _, err := repo.AddActive(ctx, userID, std, domain.GrantUntil(now, std.ActiveFor), now); err != nil {
			return err
		}
	case !domain.IsNotFound(err):
		return err
	}

	if role == domain.RoleDriver {
		early, err := repo.GetByName(ctx, domain.EarlyBirdDriverPerk)
		switch {
		case err == nil:
			if _, err := repo.AddEligible(ctx, userID, early, domain.GrantUntil(now, early.EligibleFor), now); err != nil {
				return err
			}
		case !domain.IsNotFound(err):
			return err
		}
	}
	utils.LogEvent(s.RequestID, "perk", "default", fmt.Sprintf("user_id=%s role=%s", userID, role))
	return nil
}

// Eligible lists the eligibilities not yet activated, standard perk hidden.
func (s PerkService) Eligible(ctx context.Context, userID string, role domain.Role) ([]models.PerkGrant, error) {
	grants, err := s.repo(role).ListEligible(ctx, userID, domain.Today(nowOf(s.Now)))
	if err != nil {
		return nil, err
	}
	return domain.WithoutStandard(grants, role), nil
}

// Active lists the live activations, standard perk hidden.
func (s PerkService) Active(ctx context.Context, userID string, role domain.Role) ([]models.PerkGrant, error) {
	grants, err := s.repo(role).ListActive(ctx, userID, domain.Today(nowOf(s.Now)))
	if err != nil {
		return nil, err
	}
	return domain.WithoutStandard(grants, role), nil
}

// ActivateEligible turns every pending eligibility of the user into an
// activation valid for the perk's active_for days.
func (s PerkService) ActivateEligible(ctx context.Context, userID string, role domain.Role) ([]models.PerkGrant, error) {
	repo := s.repo(role)
	now := nowOf(s.Now)
	eligible, err := repo.ListEligible(ctx, userID, domain.Today(now))
	if err != nil {
		return nil, err
	}
	out := make([]models.PerkGrant, 0, len(eligible))
	for _, e := range eligible {
		g, err := repo.AddActive(ctx, userID, e.Perk, domain.GrantUntil(now, e.Perk.ActiveFor), now)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if len(out) > 0 {
		utils.LogEvent(s.RequestID, "perk", "activate", fmt.Sprintf("user_id=%s role=%s count=%d", userID, role, len(out)))
	}
	return out, nil
}

// Best prices a ride for the user with the most favourable live perk. When
// nothing is active the standard perk definition is used, and failing that
// the default fixed 0 / x1 pricing.
func (s PerkService) Best(ctx context.Context, userID string, role domain.Role, seats int, distance float64) (domain.PerkChoice, error) {
	repo := s.repo(role)
	now := nowOf(s.Now)
	today := domain.Today(now)

	active, err := repo.ListActive(ctx, userID, today)
	if err != nil {
		return domain.PerkChoice{}, err
	}
	if len(active) == 0 {
		std, err := repo.GetByName(ctx, domain.StandardPerkName(role))
		switch {
		case err == nil:
			active = append(active, models.PerkGrant{PerkID: std.ID, ValidUntil: today, Perk: std})
		case !domain.IsNotFound(err):
			return domain.PerkChoice{}, err
		}
	}
	if role == domain.RoleDriver {
		return domain.BestDriverPerk(active, seats, distance, now)
	}
	return domain.BestPassengerPerk(active, seats, distance, now)
}
