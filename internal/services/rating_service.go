package services

import (
	"context"
	"fmt"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

type RatingService struct {
	Rates      repositories.RateRepository
	Requests   repositories.DriveRequestRepository
	Drivers    repositories.DriverRepository
	Passengers repositories.PassengerRepository
	Now        domain.Clock
	RequestID  string
}

// Rate records the caller's stars for the other party of a completed ride.
func (s RatingService) Rate(ctx context.Context, callerID, driveRequestID string, stars int) (models.Rate, error) {
	if stars < 1 || stars > 5 {
		return models.Rate{}, domain.ValidationError{Field: "stars", Msg: "must be between 1 and 5"}
	}
	dr, err := s.Requests.GetByID(ctx, driveRequestID)
	if err != nil {
		return models.Rate{}, err
	}
	if !dr.Accepted || dr.Cancelled || dr.Active {
		return models.Rate{}, domain.ValidationError{Field: "drive_request_id", Msg: "ride not completed"}
	}
	driver, err := s.Drivers.GetByID(ctx, dr.DriverID)
	if err != nil {
		return models.Rate{}, err
	}
	passenger, err := s.Passengers.GetByID(ctx, dr.PassengerID)
	if err != nil {
		return models.Rate{}, err
	}

	rate := models.Rate{DriveRequestID: dr.ID, RaterUserID: callerID, Stars: stars}
	switch callerID {
	case driver.UserID:
		rate.RatedUserID = passenger.UserID
		rate.RaterIsDriver = true
	case passenger.UserID:
		rate.RatedUserID = driver.UserID
	default:
		return models.Rate{}, domain.ForbiddenError{UserID: callerID, Resource: "drive request " + dr.ID}
	}

	exists, err := s.Rates.Exists(ctx, dr.ID, callerID)
	if err != nil {
		return models.Rate{}, err
	}
	if exists {
		return models.Rate{}, domain.ConflictError{Resource: "rate", Msg: "already rated"}
	}
	rate, err = s.Rates.Create(ctx, rate, nowOf(s.Now))
	if err != nil {
		return models.Rate{}, err
	}
	utils.LogEvent(s.RequestID, "rate", "create", fmt.Sprintf("drive_request_id=%s stars=%d", dr.ID, stars))
	return rate, nil
}

// Stats returns the average stars and the number of rates received.
func (s RatingService) Stats(ctx context.Context, userID string) (float64, int64, error) {
	return s.Rates.Stats(ctx, userID)
}
