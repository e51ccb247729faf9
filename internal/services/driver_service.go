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

type DriverService struct {
	Drivers   repositories.DriverRepository
	Now       domain.Clock
	RequestID string
}

func normalizeDriverInput(in models.DriverInput) models.DriverInput {
	in.CarMake = utils.NormalizeSpace(in.CarMake)
	in.CarModel = utils.NormalizeSpace(in.CarModel)
	in.CarColor = utils.NormalizeSpace(in.CarColor)
	in.LicensePlate = utils.NormalizeCode(in.LicensePlate)
	in.Telephone = strings.TrimSpace(in.Telephone)
	return in
}

// Add registers the user as a driver. A user has at most one active driver.
func (s DriverService) Add(ctx context.Context, userID string, in models.DriverInput) (models.Driver, error) {
	if _, err := s.Drivers.GetActiveByUserID(ctx, userID); err == nil {
		return models.Driver{}, domain.ConflictError{Resource: "driver", Msg: "user already has an active driver"}
	} else if !domain.IsNotFound(err) {
		return models.Driver{}, err
	}
	d, err := s.Drivers.Create(ctx, userID, normalizeDriverInput(in), nowOf(s.Now))
	if err != nil {
		return models.Driver{}, err
	}
	utils.LogEvent(s.RequestID, "driver", "add", fmt.Sprintf("driver_id=%s user_id=%s", d.ID, userID))
	return d, nil
}

func (s DriverService) Get(ctx context.Context, id string) (models.Driver, error) {
	return s.Drivers.GetByID(ctx, id)
}

func (s DriverService) GetActive(ctx context.Context, id string) (models.Driver, error) {
	return s.Drivers.GetActiveByID(ctx, id)
}

func (s DriverService) ActiveByUser(ctx context.Context, userID string) (models.Driver, error) {
	return s.Drivers.GetActiveByUserID(ctx, userID)
}

func (s DriverService) ListUnhidden(ctx context.Context, region string, page domain.Page) ([]models.Driver, error) {
	return s.Drivers.ListUnhidden(ctx, strings.TrimSpace(region), page)
}

func (s DriverService) ListHidden(ctx context.Context, page domain.Page) ([]models.Driver, error) {
	return s.Drivers.ListHidden(ctx, page)
}

// owned loads an active driver and checks it belongs to the caller.
func (s DriverService) owned(ctx context.Context, callerID, id string) (models.Driver, error) {
	d, err := s.Drivers.GetActiveByID(ctx, id)
	if err != nil {
		return models.Driver{}, err
	}
	if d.UserID != callerID {
		return models.Driver{}, domain.ForbiddenError{UserID: callerID, Resource: "driver " + id}
	}
	return d, nil
}

func (s DriverService) Update(ctx context.Context, callerID, id string, in models.DriverInput) (models.Driver, error) {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return models.Driver{}, err
	}
	if err := s.Drivers.Update(ctx, id, normalizeDriverInput(in), nowOf(s.Now)); err != nil {
		return models.Driver{}, err
	}
	utils.LogEvent(s.RequestID, "driver", "update", "driver_id="+id)
	return s.Drivers.GetByID(ctx, id)
}

func (s DriverService) Hide(ctx context.Context, callerID, id string) error {
	return s.setHidden(ctx, callerID, id, true)
}

func (s DriverService) Unhide(ctx context.Context, callerID, id string) error {
	return s.setHidden(ctx, callerID, id, false)
}

func (s DriverService) setHidden(ctx context.Context, callerID, id string, hidden bool) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.Drivers.SetHidden(ctx, id, hidden, nowOf(s.Now)); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "driver", "set_hidden", fmt.Sprintf("driver_id=%s hidden=%t", id, hidden))
	return nil
}

func (s DriverService) Deactivate(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.Drivers.Deactivate(ctx, id, nowOf(s.Now)); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "driver", "deactivate", "driver_id="+id)
	return nil
}
