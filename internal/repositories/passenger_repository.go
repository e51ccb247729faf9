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

type PassengerRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r PassengerRepository) InTx(tx *sql.Tx) PassengerRepository {
	r.Tx = tx
	return r
}

const passengerSelect = `
	SELECT p.id, p.user_id, COALESCE(p.origin,''), COALESCE(p.origin_latitude,0), COALESCE(p.origin_longitude,0),
	       COALESCE(p.destination,''), COALESCE(p.destination_latitude,0), COALESCE(p.destination_longitude,0),
	       p.distance, p.seats, p.pickup_time, p.matched, p.active, p.created_at, p.updated_at,
	       ` + userColumns + `
	FROM passengers p
	JOIN users u ON u.id = p.user_id AND u.deleted = 0`

func scanPassenger(s rowScanner) (models.Passenger, error) {
	var (
		p      models.Passenger
		u      models.User
		pickup sql.NullTime
	)
	dest := []any{&p.ID, &p.UserID, &p.Origin, &p.OriginLatitude, &p.OriginLongitude,
		&p.Destination, &p.DestinationLatitude, &p.DestinationLongitude,
		&p.Distance, &p.Seats, &pickup, &p.Matched, &p.Active, &p.CreatedAt, &p.UpdatedAt}
	if err := s.Scan(append(dest, userDest(&u)...)...); err != nil {
		return models.Passenger{}, err
	}
	p.PickupTime = intdb.TimePtr(pickup)
	p.User = &u
	return p, nil
}

// Create stores a new, unmatched ride request. Distance must already be
// resolved by the caller.
func (r PassengerRepository) Create(ctx context.Context, userID string, in models.PassengerInput, now time.Time) (models.Passenger, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Passenger{}, err
	}
	p := models.Passenger{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Origin:               in.Origin,
		OriginLatitude:       in.OriginLatitude,
		OriginLongitude:      in.OriginLongitude,
		Destination:          in.Destination,
		DestinationLatitude:  in.DestinationLatitude,
		DestinationLongitude: in.DestinationLongitude,
		Distance:             in.Distance,
		Seats:                in.Seats,
		PickupTime:           in.PickupTime,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO passengers (id, user_id, origin, origin_latitude, origin_longitude, destination,
		                        destination_latitude, destination_longitude, distance, seats, pickup_time,
		                        matched, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
		p.ID, p.UserID, intdb.NullIfEmpty(p.Origin), p.OriginLatitude, p.OriginLongitude, intdb.NullIfEmpty(p.Destination),
		p.DestinationLatitude, p.DestinationLongitude, p.Distance, p.Seats, intdb.NullTime(p.PickupTime), now, now,
	)
	if err != nil {
		return models.Passenger{}, fmt.Errorf("insert passenger: %w", err)
	}
	return p, nil
}

func (r PassengerRepository) GetByID(ctx context.Context, id string) (models.Passenger, error) {
	return r.getOne(ctx, passengerSelect+` WHERE p.id = ? LIMIT 1`, id)
}

func (r PassengerRepository) GetActiveByID(ctx context.Context, id string) (models.Passenger, error) {
	return r.getOne(ctx, passengerSelect+` WHERE p.id = ? AND p.active = 1 LIMIT 1`, id)
}

func (r PassengerRepository) GetActiveByUserID(ctx context.Context, userID string) (models.Passenger, error) {
	return r.getOne(ctx, passengerSelect+` WHERE p.user_id = ? AND p.active = 1 ORDER BY p.created_at DESC LIMIT 1`, userID)
}

func (r PassengerRepository) getOne(ctx context.Context, query, id string) (models.Passenger, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Passenger{}, err
	}
	p, err := scanPassenger(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Passenger{}, notFound(err, "passenger", id)
	}
	return p, nil
}

func (r PassengerRepository) ListUnmatched(ctx context.Context, page domain.Page) ([]models.Passenger, error) {
	page = page.Normalize()
	return r.list(ctx, passengerSelect+`
		WHERE p.active = 1 AND p.matched = 0
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`, page.Limit, page.Offset)
}

func (r PassengerRepository) ListActive(ctx context.Context, page domain.Page) ([]models.Passenger, error) {
	page = page.Normalize()
	return r.list(ctx, passengerSelect+`
		WHERE p.active = 1
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`, page.Limit, page.Offset)
}

func (r PassengerRepository) list(ctx context.Context, query string, args ...any) ([]models.Passenger, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	defer rows.Close()

	out := []models.Passenger{}
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetMatched flips the matched flag of an active passenger. The update only
// applies when the flag currently holds the opposite value, so two accepts
// racing on the same passenger cannot both win.
func (r PassengerRepository) SetMatched(ctx context.Context, id string, matched bool, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE passengers SET matched = ?, updated_at = ?
		WHERE id = ? AND active = 1 AND matched = ?`, matched, now, id, !matched)
	if err != nil {
		return fmt.Errorf("update passenger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update passenger: %w", err)
	}
	if n == 0 {
		if matched {
			return domain.ConflictError{Resource: "passenger", Msg: "already matched"}
		}
		return domain.ConflictError{Resource: "passenger", Msg: "not matched"}
	}
	return nil
}

func (r PassengerRepository) Deactivate(ctx context.Context, id string, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE passengers SET active = 0, updated_at = ? WHERE id = ? AND active = 1`, now, id)
	if err != nil {
		return fmt.Errorf("deactivate passenger: %w", err)
	}
	return mustAffect(res, "passenger", id)
}
