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

type DriverRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r DriverRepository) InTx(tx *sql.Tx) DriverRepository {
	r.Tx = tx
	return r
}

const driverSelect = `
	SELECT d.id, d.user_id, COALESCE(d.car_make,''), COALESCE(d.car_model,''), COALESCE(d.car_color,''),
	       COALESCE(d.license_plate,''), COALESCE(d.telephone,''), d.hidden, d.active, d.created_at, d.updated_at,
	       ` + userColumns + `
	FROM drivers d
	JOIN users u ON u.id = d.user_id AND u.deleted = 0`

func scanDriver(s rowScanner) (models.Driver, error) {
	var (
		d models.Driver
		u models.User
	)
	dest := []any{&d.ID, &d.UserID, &d.CarMake, &d.CarModel, &d.CarColor, &d.LicensePlate, &d.Telephone,
		&d.Hidden, &d.Active, &d.CreatedAt, &d.UpdatedAt}
	if err := s.Scan(append(dest, userDest(&u)...)...); err != nil {
		return models.Driver{}, err
	}
	d.User = &u
	return d, nil
}

func (r DriverRepository) Create(ctx context.Context, userID string, in models.DriverInput, now time.Time) (models.Driver, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Driver{}, err
	}
	d := models.Driver{
		ID:           uuid.NewString(),
		UserID:       userID,
		CarMake:      in.CarMake,
		CarModel:     in.CarModel,
		CarColor:     in.CarColor,
		LicensePlate: in.LicensePlate,
		Telephone:    in.Telephone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO drivers (id, user_id, car_make, car_model, car_color, license_plate, telephone, hidden, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
		d.ID, d.UserID, intdb.NullIfEmpty(d.CarMake), intdb.NullIfEmpty(d.CarModel), intdb.NullIfEmpty(d.CarColor),
		intdb.NullIfEmpty(d.LicensePlate), intdb.NullIfEmpty(d.Telephone), now, now,
	)
	if err != nil {
		return models.Driver{}, fmt.Errorf("insert driver: %w", err)
	}
	return d, nil
}

func (r DriverRepository) GetByID(ctx context.Context, id string) (models.Driver, error) {
	return r.getOne(ctx, driverSelect+` WHERE d.id = ? LIMIT 1`, id)
}

func (r DriverRepository) GetActiveByID(ctx context.Context, id string) (models.Driver, error) {
	return r.getOne(ctx, driverSelect+` WHERE d.id = ? AND d.active = 1 LIMIT 1`, id)
}

func (r DriverRepository) GetActiveByUserID(ctx context.Context, userID string) (models.Driver, error) {
	return r.getOne(ctx, driverSelect+` WHERE d.user_id = ? AND d.active = 1 ORDER BY d.created_at DESC LIMIT 1`, userID)
}

func (r DriverRepository) getOne(ctx context.Context, query, id string) (models.Driver, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Driver{}, err
	}
	d, err := scanDriver(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Driver{}, notFound(err, "driver", id)
	}
	return d, nil
}

// ListUnhidden returns visible drivers. With a region, only drivers that are
// in that region or never shared a position are kept.
func (r DriverRepository) ListUnhidden(ctx context.Context, region string, page domain.Page) ([]models.Driver, error) {
	page = page.Normalize()
	query := driverSelect + `
		LEFT JOIN user_positions p ON p.user_id = d.user_id AND p.archived = 0
		WHERE d.active = 1 AND d.hidden = 0
		  AND (? = '' OR p.id IS NULL OR p.region = ?)
		ORDER BY d.created_at DESC
		LIMIT ? OFFSET ?`
	return r.list(ctx, query, region, region, page.Limit, page.Offset)
}

func (r DriverRepository) ListHidden(ctx context.Context, page domain.Page) ([]models.Driver, error) {
	page = page.Normalize()
	query := driverSelect + `
		WHERE d.active = 1 AND d.hidden = 1
		ORDER BY d.created_at DESC
		LIMIT ? OFFSET ?`
	return r.list(ctx, query, page.Limit, page.Offset)
}

func (r DriverRepository) list(ctx context.Context, query string, args ...any) ([]models.Driver, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r DriverRepository) Update(ctx context.Context, id string, in models.DriverInput, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE drivers
		SET car_make = ?, car_model = ?, car_color = ?, license_plate = ?, telephone = ?, updated_at = ?
		WHERE id = ? AND active = 1`,
		intdb.NullIfEmpty(in.CarMake), intdb.NullIfEmpty(in.CarModel), intdb.NullIfEmpty(in.CarColor),
		intdb.NullIfEmpty(in.LicensePlate), intdb.NullIfEmpty(in.Telephone), now, id,
	)
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return mustAffect(res, "driver", id)
}

func (r DriverRepository) SetHidden(ctx context.Context, id string, hidden bool, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE drivers SET hidden = ?, updated_at = ? WHERE id = ? AND active = 1`, hidden, now, id)
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return mustAffect(res, "driver", id)
}

func (r DriverRepository) Deactivate(ctx context.Context, id string, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE drivers SET active = 0, updated_at = ? WHERE id = ? AND active = 1`, now, id)
	if err != nil {
		return fmt.Errorf("deactivate driver: %w", err)
	}
	return mustAffect(res, "driver", id)
}
