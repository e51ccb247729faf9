package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/metrics"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

// RideService drives a drive request from offer to settlement.
type RideService struct {
	DB            *sql.DB
	Requests      repositories.DriveRequestRepository
	Drivers       repositories.DriverRepository
	Passengers    repositories.PassengerRepository
	Perks         PerkService
	Payments      PaymentService
	Notifications NotificationService
	Metrics       *metrics.Metrics
	Now           domain.Clock
	RequestID     string
}

// RideView is the serialized form of a drive request.
type RideView struct {
	models.DriveRequest
	ResponseTime int `json:"response_time"`
}

func viewRide(dr models.DriveRequest) RideView {
	return RideView{DriveRequest: dr, ResponseTime: domain.ResponseTime(dr.CreatedAt, dr.OfferedPickupTime)}
}

func viewRides(list []models.DriveRequest) []RideView {
	out := make([]RideView, 0, len(list))
	for _, dr := range list {
		out = append(out, viewRide(dr))
	}
	return out
}

// Settlement is the outcome of a completed ride.
type Settlement struct {
	Ride          RideView         `json:"ride"`
	Fare          int64            `json:"fare"`
	Reimbursement int64            `json:"reimbursement"`
	PassengerPerk string           `json:"passenger_perk"`
	DriverPerk    string           `json:"driver_perk"`
	Charges       []models.Payment `json:"charges"`
	Payout        *models.Payment  `json:"payout,omitempty"`
}

func (s RideService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := txDB(s.DB)
	if err != nil {
		return err
	}
	return intdb.WithTx(ctx, db, fn)
}

// Offer lets the caller's driver propose a ride to a waiting passenger.
func (s RideService) Offer(ctx context.Context, callerID, passengerID string, offeredPickup *time.Time) (RideView, error) {
	driver, err := s.Drivers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return RideView{}, err
	}
	passenger, err := s.Passengers.GetActiveByID(ctx, passengerID)
	if err != nil {
		return RideView{}, err
	}
	if passenger.UserID == callerID {
		return RideView{}, domain.ValidationError{Field: "passenger_id", Msg: "cannot offer a ride to yourself"}
	}
	if passenger.Matched {
		return RideView{}, domain.ConflictError{Resource: "passenger", Msg: "already matched"}
	}
	if _, err := s.Requests.GetActive(ctx, driver.ID, passenger.ID); err == nil {
		return RideView{}, domain.ConflictError{Resource: "drive request", Msg: "already offered"}
	} else if !domain.IsNotFound(err) {
		return RideView{}, err
	}

	if offeredPickup != nil {
		t := offeredPickup.UTC()
		offeredPickup = &t
	}
	dr, err := s.Requests.Create(ctx, driver.ID, passenger.ID, offeredPickup, nowOf(s.Now))
	if err != nil {
		return RideView{}, err
	}
	s.Notifications.Bump(ctx, passenger.UserID)
	utils.LogEvent(s.RequestID, "ride", "offer", fmt.Sprintf("drive_request_id=%s driver_id=%s passenger_id=%s", dr.ID, driver.ID, passenger.ID))
	return viewRide(dr), nil
}

// Accept lets the caller's passenger accept the pending offer of a driver.
func (s RideService) Accept(ctx context.Context, callerID, driverID string) (RideView, error) {
	passenger, err := s.Passengers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return RideView{}, err
	}
	if passenger.Matched {
		return RideView{}, domain.ConflictError{Resource: "passenger", Msg: "already matched"}
	}
	driver, err := s.Drivers.GetActiveByID(ctx, driverID)
	if err != nil {
		return RideView{}, err
	}

	var dr models.DriveRequest
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		requests := s.Requests.InTx(tx)
		now := nowOf(s.Now)

		dr, err = requests.GetActive(ctx, driver.ID, passenger.ID)
		if err != nil {
			return err
		}
		// claim the passenger first; a concurrent accept gets a conflict here
		if err := s.Passengers.InTx(tx).SetMatched(ctx, passenger.ID, true, now); err != nil {
			return err
		}
		if err := requests.Accept(ctx, dr.ID, now); err != nil {
			return err
		}
		dr.Accepted = true
		dr.UpdatedAt = now
		return nil
	})
	if err != nil {
		return RideView{}, err
	}
	s.Notifications.Bump(ctx, driver.UserID)
	utils.LogEvent(s.RequestID, "ride", "accept", "drive_request_id="+dr.ID)
	return viewRide(dr), nil
}

// CancelByDriver withdraws the caller's offer to a passenger.
func (s RideService) CancelByDriver(ctx context.Context, callerID, passengerID string) error {
	driver, err := s.Drivers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return err
	}
	passenger, err := s.Passengers.GetActiveByID(ctx, passengerID)
	if err != nil {
		return err
	}
	if err := s.cancel(ctx, driver.ID, passenger.ID); err != nil {
		return err
	}
	s.Notifications.Bump(ctx, passenger.UserID)
	return nil
}

// CancelByPassenger drops the request between the caller's passenger and a
// driver.
func (s RideService) CancelByPassenger(ctx context.Context, callerID, driverID string) error {
	passenger, err := s.Passengers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return err
	}
	driver, err := s.Drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if err := s.cancel(ctx, driver.ID, passenger.ID); err != nil {
		return err
	}
	s.Notifications.Bump(ctx, driver.UserID)
	return nil
}

func (s RideService) cancel(ctx context.Context, driverID, passengerID string) error {
	var dr models.DriveRequest
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		requests := s.Requests.InTx(tx)
		now := nowOf(s.Now)

		var err error
		dr, err = requests.GetActive(ctx, driverID, passengerID)
		if err != nil {
			return err
		}
		if err := requests.Cancel(ctx, dr.ID, now); err != nil {
			return err
		}
		if dr.Accepted {
			return s.Passengers.InTx(tx).SetMatched(ctx, passengerID, false, now)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "ride", "cancel", fmt.Sprintf("drive_request_id=%s accepted=%t", dr.ID, dr.Accepted))
	return nil
}

// Complete closes the caller's accepted ride and settles it: the passenger
// is charged the fare of their best perk, the driver is reimbursed with
// theirs, and both get their pending perks activated. Everything is written
// in one transaction.
func (s RideService) Complete(ctx context.Context, callerID string) (Settlement, error) {
	passenger, err := s.Passengers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return Settlement{}, err
	}
	dr, err := s.Requests.GetAcceptedByPassenger(ctx, passenger.ID)
	if err != nil {
		return Settlement{}, err
	}
	driver, err := s.Drivers.GetByID(ctx, dr.DriverID)
	if err != nil {
		return Settlement{}, err
	}

	var out Settlement
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		now := nowOf(s.Now)
		perks := s.Perks.InTx(tx)
		payments := s.Payments.InTx(tx)

		if _, err := s.Requests.InTx(tx).DeactivateByPassenger(ctx, passenger.ID, now); err != nil {
			return err
		}
		if err := s.Passengers.InTx(tx).Deactivate(ctx, passenger.ID, now); err != nil {
			return err
		}

		fare, err := perks.Best(ctx, passenger.UserID, domain.RolePassenger, passenger.Seats, passenger.Distance)
		if err != nil {
			return err
		}
		reimbursement, err := perks.Best(ctx, driver.UserID, domain.RoleDriver, passenger.Seats, passenger.Distance)
		if err != nil {
			return err
		}
		out.Fare = domain.ToCredits(fare.Amount)
		out.Reimbursement = domain.ToCredits(reimbursement.Amount)
		out.PassengerPerk = fare.Perk.Name
		out.DriverPerk = reimbursement.Perk.Name

		if out.Charges, err = payments.Charge(ctx, passenger.UserID, dr.ID, out.Fare); err != nil {
			return err
		}
		payout, err := payments.Reimburse(ctx, driver.UserID, dr.ID, out.Reimbursement)
		if err != nil {
			return err
		}
		if payout.ID != "" {
			out.Payout = &payout
		}

		if _, err := perks.ActivateEligible(ctx, passenger.UserID, domain.RolePassenger); err != nil {
			return err
		}
		if _, err := perks.ActivateEligible(ctx, driver.UserID, domain.RoleDriver); err != nil {
			return err
		}

		dr.Active = false
		dr.UpdatedAt = now
		return nil
	})
	if err != nil {
		utils.LogError(s.RequestID, "ride", "complete", err)
		return Settlement{}, err
	}
	if out.Charges == nil {
		out.Charges = []models.Payment{}
	}
	out.Ride = viewRide(dr)

	s.Metrics.RideSettled(out.Fare, out.Reimbursement)
	s.Notifications.Bump(ctx, passenger.UserID, driver.UserID)
	utils.LogEvent(s.RequestID, "ride", "complete", fmt.Sprintf("drive_request_id=%s fare=%d reimbursement=%d", dr.ID, out.Fare, out.Reimbursement))
	return out, nil
}

func (s RideService) Get(ctx context.Context, id string) (RideView, error) {
	dr, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return RideView{}, err
	}
	if d, err := s.Drivers.GetByID(ctx, dr.DriverID); err == nil {
		dr.Driver = &d
	}
	if p, err := s.Passengers.GetByID(ctx, dr.PassengerID); err == nil {
		dr.Passenger = &p
	}
	return viewRide(dr), nil
}

// ActiveForDriver lists the active requests of the caller's driver.
func (s RideService) ActiveForDriver(ctx context.Context, callerID string) ([]RideView, error) {
	driver, err := s.Drivers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	list, err := s.Requests.ListActiveByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	return viewRides(list), nil
}

// ActiveForPassenger lists the offers received by the caller's passenger,
// each with the offering driver.
func (s RideService) ActiveForPassenger(ctx context.Context, callerID string) ([]RideView, error) {
	passenger, err := s.Passengers.GetActiveByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	list, err := s.Requests.ListActiveByPassenger(ctx, passenger.ID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if d, err := s.Drivers.GetByID(ctx, list[i].DriverID); err == nil {
			list[i].Driver = &d
		}
	}
	return viewRides(list), nil
}

func (s RideService) ListActive(ctx context.Context, page domain.Page) ([]RideView, error) {
	list, err := s.Requests.ListActive(ctx, page)
	if err != nil {
		return nil, err
	}
	return viewRides(list), nil
}

// Unrated lists the completed rides the caller has not rated yet.
func (s RideService) Unrated(ctx context.Context, callerID string) ([]RideView, error) {
	list, err := s.Requests.ListUnratedByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return viewRides(list), nil
}
