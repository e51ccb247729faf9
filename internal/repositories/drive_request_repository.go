package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

type DriveRequestRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r DriveRequestRepository) InTx(tx *sql.Tx) DriveRequestRepository {
	r.Tx = tx
	return r
}

const driveRequestSelect = `
	SELECT dr.id, dr.driver_id, dr.passenger_id, dr.accepted, dr.cancelled, dr.active,
	       dr.offered_pickup_time, dr.created_at, dr.updated_at
	FROM drive_requests dr`

func scanDriveRequest(s rowScanner) (models.DriveRequest, error) {
	var (
		dr      models.DriveRequest
		offered sql.NullTime
	)
	if err := s.Scan(&dr.ID, &dr.DriverID, &dr.PassengerID, &dr.Accepted, &dr.Cancelled, &dr.Active,
		&offered, &dr.CreatedAt, &dr.UpdatedAt); err != nil {
		return models.DriveRequest{}, err
	}
	dr.OfferedPickupTime = intdb.TimePtr(offered)
	return dr, nil
}

func (r DriveRequestRepository) Create(ctx context.Context, driverID, passengerID string, offeredPickup *time.Time, now time.Time) (models.DriveRequest, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.DriveRequest{}, err
	}
	dr := models.DriveRequest{
		ID:                uuid.NewString(),
		DriverID:          driverID,
		PassengerID:       passengerID,
		Active:            true,
		OfferedPickupTime: offeredPickup,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO drive_requests (id, driver_id, passenger_id, accepted, cancelled, active, offered_pickup_time, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, 1, ?, ?, ?)`,
		dr.ID, driverID, passengerID, intdb.NullTime(offeredPickup), now, now,
	)
	if err != nil {
		return models.DriveRequest{}, fmt.Errorf("insert drive request: %w", err)
	}
	return dr, nil
}

func (r DriveRequestRepository) GetByID(ctx context.Context, id string) (models.DriveRequest, error) {
	return r.getOne(ctx, driveRequestSelect+` WHERE dr.id = ? LIMIT 1`, id)
}

// GetActive returns the active request between a driver and a passenger.
func (r DriveRequestRepository) GetActive(ctx context.Context, driverID, passengerID string) (models.DriveRequest, error) {
	return r.getOne(ctx, driveRequestSelect+`
		WHERE dr.driver_id = ? AND dr.passenger_id = ? AND dr.active = 1
		ORDER BY dr.created_at DESC
		LIMIT 1`, driverID, passengerID)
}

// GetAcceptedByPassenger returns the accepted, still active request of a
// passenger.
func (r DriveRequestRepository) GetAcceptedByPassenger(ctx context.Context, passengerID string) (models.DriveRequest, error) {
	return r.getOne(ctx, driveRequestSelect+`
		WHERE dr.passenger_id = ? AND dr.accepted = 1 AND dr.active = 1
		ORDER BY dr.updated_at DESC
		LIMIT 1`, passengerID)
}

func (r DriveRequestRepository) getOne(ctx context.Context, query string, args ...any) (models.DriveRequest, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.DriveRequest{}, err
	}
	dr, err := scanDriveRequest(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		id := ""
		if len(args) > 0 {
			id, _ = args[0].(string)
		}
		return models.DriveRequest{}, notFound(err, "drive request", id)
	}
	return dr, nil
}

func (r DriveRequestRepository) ListActiveByDriver(ctx context.Context, driverID string) ([]models.DriveRequest, error) {
	return r.list(ctx, driveRequestSelect+`
		WHERE dr.driver_id = ? AND dr.active = 1
		ORDER BY dr.created_at DESC`, driverID)
}

func (r DriveRequestRepository) ListActiveByPassenger(ctx context.Context, passengerID string) ([]models.DriveRequest, error) {
	return r.list(ctx, driveRequestSelect+`
		WHERE dr.passenger_id = ? AND dr.active = 1
		ORDER BY dr.created_at DESC`, passengerID)
}

func (r DriveRequestRepository) ListActive(ctx context.Context, page domain.Page) ([]models.DriveRequest, error) {
	page = page.Normalize()
	return r.list(ctx, driveRequestSelect+`
		WHERE dr.active = 1
		ORDER BY dr.created_at DESC
		LIMIT ? OFFSET ?`, page.Limit, page.Offset)
}

// ListUnratedByUser returns completed rides the user took part in, on either
// side, and has not rated yet.
func (r DriveRequestRepository) ListUnratedByUser(ctx context.Context, userID string) ([]models.DriveRequest, error) {
	return r.list(ctx, driveRequestSelect+`
		JOIN drivers d ON d.id = dr.driver_id
		JOIN passengers p ON p.id = dr.passenger_id
		WHERE dr.accepted = 1 AND dr.cancelled = 0 AND dr.active = 0
		  AND (d.user_id = ? OR p.user_id = ?)
		  AND NOT EXISTS (
		      SELECT 1 FROM rates r
		      WHERE r.drive_request_id = dr.id AND r.rater_user_id = ?
		  )
		ORDER BY dr.updated_at DESC`, userID, userID, userID)
}

func (r DriveRequestRepository) list(ctx context.Context, query string, args ...any) ([]models.DriveRequest, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drive requests: %w", err)
	}
	defer rows.Close()

	out := []models.DriveRequest{}
	for rows.Next() {
		dr, err := scanDriveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drive request: %w", err)
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

func (r DriveRequestRepository) Accept(ctx context.Context, id string, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE drive_requests SET accepted = 1, updated_at = ?
		WHERE id = ? AND active = 1 AND accepted = 0`, now, id)
	if err != nil {
		return fmt.Errorf("accept drive request: %w", err)
	}
	return mustAffect(res, "drive request", id)
}

func (r DriveRequestRepository) Cancel(ctx context.Context, id string, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE drive_requests SET active = 0, cancelled = 1, updated_at = ?
		WHERE id = ? AND active = 1`, now, id)
	if err != nil {
		return fmt.Errorf("cancel drive request: %w", err)
	}
	return mustAffect(res, "drive request", id)
}

// DeactivateByPassenger closes every active request of a passenger and
// returns how many were closed.
func (r DriveRequestRepository) DeactivateByPassenger(ctx context.Context, passengerID string, now time.Time) (int64, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE drive_requests SET active = 0, updated_at = ?
		WHERE passenger_id = ? AND active = 1`, now, passengerID)
	if err != nil {
		return 0, fmt.Errorf("deactivate drive requests: %w", err)
	}
	return res.RowsAffected()
}

// RideStats counts the accepted, non cancelled rides of a user on one side
// and sums their distance.
func (r DriveRequestRepository) RideStats(ctx context.Context, userID string, role domain.Role) (models.RideStats, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.RideStats{}, err
	}
	owner := "p.user_id"
	if role == domain.RoleDriver {
		owner = "d.user_id"
	}
	var stats models.RideStats
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(dr.id), COALESCE(SUM(p.distance),0)
		FROM drive_requests dr
		JOIN drivers d ON d.id = dr.driver_id
		JOIN passengers p ON p.id = dr.passenger_id
		WHERE dr.accepted = 1 AND dr.cancelled = 0 AND `+owner+` = ?`, userID).
		Scan(&stats.Rides, &stats.Distance)
	if err != nil {
		return models.RideStats{}, fmt.Errorf("ride stats: %w", err)
	}
	return stats, nil
}
