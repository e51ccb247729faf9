package services

import (
	"context"
	"fmt"
	"strings"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

type UserService struct {
	Users     repositories.UserRepository
	Tokens    repositories.TokenRepository
	Rates     repositories.RateRepository
	Requests  repositories.DriveRequestRepository
	Perks     PerkService
	Payments  PaymentService
	Now       domain.Clock
	RequestID string
}

func normalizeUserInput(in models.UserInput) (models.UserInput, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Avatar = strings.TrimSpace(in.Avatar)
	in.Email = strings.TrimSpace(in.Email)
	in.AcsID = strings.TrimSpace(in.AcsID)
	in.FacebookID = strings.TrimSpace(in.FacebookID)
	in.Locale = utils.DefaultLocale(in.Locale)
	if in.Name == "" {
		return in, domain.ValidationError{Field: "name", Msg: "required"}
	}
	return in, nil
}

// Create registers a user and grants the default perks of both sides.
func (s UserService) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	in, err := normalizeUserInput(in)
	if err != nil {
		return models.User{}, err
	}
	if in.FacebookID != "" {
		if _, err := s.Users.GetByFacebookID(ctx, in.FacebookID); err == nil {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "facebook id already registered"}
		} else if !domain.IsNotFound(err) {
			return models.User{}, err
		}
	}

	u, err := s.Users.Create(ctx, in, nowOf(s.Now))
	if err != nil {
		return models.User{}, err
	}
	for _, role := range []domain.Role{domain.RoleDriver, domain.RolePassenger} {
		if err := s.Perks.DefaultPerks(ctx, u.ID, role); err != nil {
			return models.User{}, err
		}
	}
	utils.LogEvent(s.RequestID, "user", "create", "user_id="+u.ID)
	return u, nil
}

func (s UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.Users.GetByID(ctx, id)
}

func (s UserService) ByFacebookID(ctx context.Context, facebookID string) (models.User, error) {
	return s.Users.GetByFacebookID(ctx, strings.TrimSpace(facebookID))
}

func (s UserService) ByAcsID(ctx context.Context, acsID string) (models.User, error) {
	return s.Users.GetByAcsID(ctx, strings.TrimSpace(acsID))
}

func (s UserService) Update(ctx context.Context, id string, in models.UserInput) (models.User, error) {
	in, err := normalizeUserInput(in)
	if err != nil {
		return models.User{}, err
	}
	if err := s.Users.Update(ctx, id, in, nowOf(s.Now)); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "user", "update", "user_id="+id)
	return s.Users.GetByID(ctx, id)
}

// Delete soft deletes the user and revokes its tokens.
func (s UserService) Delete(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id, nowOf(s.Now)); err != nil {
		return err
	}
	if err := s.Tokens.DeleteByUser(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "user", "delete", "user_id="+id)
	return nil
}

// RefreshToken issues a new token for an existing user.
func (s UserService) RefreshToken(ctx context.Context, userID string) (models.Token, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return models.Token{}, err
	}
	t, err := s.Tokens.Create(ctx, userID, nowOf(s.Now))
	if err != nil {
		return models.Token{}, err
	}
	utils.LogEvent(s.RequestID, "user", "refresh_token", "user_id="+userID)
	return t, nil
}

// AuthorizedBy resolves the user owning a token.
func (s UserService) AuthorizedBy(ctx context.Context, tokenID string) (models.User, error) {
	t, err := s.Tokens.GetByID(ctx, tokenID)
	if err != nil {
		return models.User{}, err
	}
	return s.Users.GetByID(ctx, t.UserID)
}

func (s UserService) PublicProfile(ctx context.Context, id string) (models.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	stars, received, err := s.Rates.Stats(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(stars, received), nil
}

// PrivateProfile is the profile the owner sees: ride stats on both sides,
// perks and balances.
func (s UserService) PrivateProfile(ctx context.Context, id string) (models.PrivateProfile, error) {
	public, err := s.PublicProfile(ctx, id)
	if err != nil {
		return models.PrivateProfile{}, err
	}
	out := models.PrivateProfile{PublicUser: public}

	asDriver, err := s.Requests.RideStats(ctx, id, domain.RoleDriver)
	if err != nil {
		return models.PrivateProfile{}, err
	}
	asPassenger, err := s.Requests.RideStats(ctx, id, domain.RolePassenger)
	if err != nil {
		return models.PrivateProfile{}, err
	}
	out.RidesDriver, out.DistanceDriver = asDriver.Rides, asDriver.Distance
	out.RidesPassenger, out.DistancePassenger = asPassenger.Rides, asPassenger.Distance

	views := []struct {
		role   domain.Role
		active bool
		dst    *[]models.PerkGrantView
	}{
		{domain.RoleDriver, false, &out.EligibleDriverPerks},
		{domain.RoleDriver, true, &out.ActiveDriverPerks},
		{domain.RolePassenger, false, &out.EligiblePassengerPerks},
		{domain.RolePassenger, true, &out.ActivePassengerPerks},
	}
	for _, v := range views {
		list := s.Perks.Eligible
		if v.active {
			list = s.Perks.Active
		}
		grants, err := list(ctx, id, v.role)
		if err != nil {
			return models.PrivateProfile{}, fmt.Errorf("%s perks: %w", v.role, err)
		}
		*v.dst = make([]models.PerkGrantView, 0, len(grants))
		for _, g := range grants {
			*v.dst = append(*v.dst, domain.ViewGrant(g))
		}
	}

	bal, err := s.Payments.Balance(ctx, id)
	if err != nil {
		return models.PrivateProfile{}, err
	}
	out.Balance, out.BonusBalance = bal.Balance, bal.BonusBalance
	return out, nil
}
