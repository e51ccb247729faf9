package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

type PassengerService struct {
	DB         *sql.DB
	Passengers repositories.PassengerRepository
	Drivers    repositories.DriverRepository
	Requests   repositories.DriveRequestRepository
	Perks      PerkService
	Now        domain.Clock
	RequestID  string
}

// PassengerOffer is a waiting passenger as seen by a driver, with what the
// driver would be reimbursed for the ride.
type PassengerOffer struct {
	models.Passenger
	Reimbursement int64 `json:"reimbursement"`
}

func normalizePassengerInput(in models.PassengerInput) (models.PassengerInput, error) {
	in.Origin = utils.NormalizeSpace(in.Origin)
	in.Destination = utils.NormalizeSpace(in.Destination)
	if in.Seats == 0 {
		in.Seats = 1
	}
	if in.Seats < 1 {
		return in, domain.ValidationError{Field: "seats", Msg: "must be at least 1"}
	}
	if in.Distance < 0 || math.IsNaN(in.Distance) || math.IsInf(in.Distance, 0) {
		return in, domain.ValidationError{Field: "distance", Msg: "must be a non negative number"}
	}
	if in.Distance == 0 && hasCoordinates(in) {
		in.Distance = domain.Distance(in.OriginLatitude, in.OriginLongitude, in.DestinationLatitude, in.DestinationLongitude)
	}
	if in.PickupTime != nil {
		t := in.PickupTime.UTC()
		in.PickupTime = &t
	}
	return in, nil
}

func hasCoordinates(in models.PassengerInput) bool {
	return (in.OriginLatitude != 0 || in.OriginLongitude != 0) &&
		(in.DestinationLatitude != 0 || in.DestinationLongitude != 0)
}

// Add opens a ride request for the user. A user waits for at most one ride
// at a time.
func (s PassengerService) Add(ctx context.Context, userID string, in models.PassengerInput) (models.Passenger, error) {
	in, err := normalizePassengerInput(in)
	if err != nil {
		return models.Passenger{}, err
	}
	if _, err := s.Passengers.GetActiveByUserID(ctx, userID); err == nil {
		return models.Passenger{}, domain.ConflictError{Resource: "passenger", Msg: "user already has an active ride request"}
	} else if !domain.IsNotFound(err) {
		return models.Passenger{}, err
	}
	p, err := s.Passengers.Create(ctx, userID, in, nowOf(s.Now))
	if err != nil {
		return models.Passenger{}, err
	}
	utils.LogEvent(s.RequestID, "passenger", "add", fmt.Sprintf("passenger_id=%s user_id=%s distance=%.3f seats=%d", p.ID, userID, p.Distance, p.Seats))
	return p, nil
}

func (s PassengerService) Get(ctx context.Context, id string) (models.Passenger, error) {
	return s.Passengers.GetByID(ctx, id)
}

func (s PassengerService) GetActive(ctx context.Context, id string) (models.Passenger, error) {
	return s.Passengers.GetActiveByID(ctx, id)
}

func (s PassengerService) ActiveByUser(ctx context.Context, userID string) (models.Passenger, error) {
	return s.Passengers.GetActiveByUserID(ctx, userID)
}

func (s PassengerService) ListUnmatched(ctx context.Context, page domain.Page) ([]models.Passenger, error) {
	return s.Passengers.ListUnmatched(ctx, page)
}

func (s PassengerService) ListActive(ctx context.Context, page domain.Page) ([]models.Passenger, error) {
	return s.Passengers.ListActive(ctx, page)
}

// ListForDriver lists unmatched passengers priced with the best perk of the
// calling driver. The caller's own request is left out.
func (s PassengerService) ListForDriver(ctx context.Context, driverUserID string, page domain.Page) ([]PassengerOffer, error) {
	if _, err := s.Drivers.GetActiveByUserID(ctx, driverUserID); err != nil {
		return nil, err
	}
	passengers, err := s.Passengers.ListUnmatched(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make([]PassengerOffer, 0, len(passengers))
	for _, p := range passengers {
		if p.UserID == driverUserID {
			continue
		}
		choice, err := s.Perks.Best(ctx, driverUserID, domain.RoleDriver, p.Seats, p.Distance)
		if err != nil {
			return nil, err
		}
		out = append(out, PassengerOffer{Passenger: p, Reimbursement: domain.ToCredits(choice.Amount)})
	}
	return out, nil
}

// Copy opens a new ride request with the same route as an old one.
func (s PassengerService) Copy(ctx context.Context, callerID, id string) (models.Passenger, error) {
	old, err := s.Passengers.GetByID(ctx, id)
	if err != nil {
		return models.Passenger{}, err
	}
	if old.UserID != callerID {
		return models.Passenger{}, domain.ForbiddenError{UserID: callerID, Resource: "passenger " + id}
	}
	return s.Add(ctx, callerID, models.PassengerInput{
		Origin:               old.Origin,
		OriginLatitude:       old.OriginLatitude,
		OriginLongitude:      old.OriginLongitude,
		Destination:          old.Destination,
		DestinationLatitude:  old.DestinationLatitude,
		DestinationLongitude: old.DestinationLongitude,
		Distance:             old.Distance,
		Seats:                old.Seats,
	})
}

func (s PassengerService) Deactivate(ctx context.Context, callerID, id string) error {
	p, err := s.Passengers.GetActiveByID(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != callerID {
		return domain.ForbiddenError{UserID: callerID, Resource: "passenger " + id}
	}
	if p.Matched {
		return domain.ConflictError{Resource: "passenger", Msg: "ride already matched, cancel it first"}
	}
	db, err := txDB(s.DB)
	if err != nil {
		return err
	}
	var closed int64
	err = intdb.WithTx(ctx, db, func(tx *sql.Tx) error {
		now := nowOf(s.Now)
		if err := s.Passengers.InTx(tx).Deactivate(ctx, id, now); err != nil {
			return err
		}
		closed, err = s.Requests.InTx(tx).DeactivateByPassenger(ctx, id, now)
		return err
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "passenger", "deactivate", fmt.Sprintf("passenger_id=%s closed_requests=%d", id, closed))
	return nil
}
