package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"strappon/internal/domain/models"
)

type RateRepository struct {
	DB *sql.DB
}

func (r RateRepository) Create(ctx context.Context, rate models.Rate, now time.Time) (models.Rate, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.Rate{}, err
	}
	rate.ID = uuid.NewString()
	rate.CreatedAt = now
	_, err = q.ExecContext(ctx, `
		INSERT INTO rates (id, drive_request_id, rater_user_id, rated_user_id, rater_is_driver, stars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rate.ID, rate.DriveRequestID, rate.RaterUserID, rate.RatedUserID, rate.RaterIsDriver, rate.Stars, now,
	)
	if err != nil {
		if dup := duplicateConflict(err, "rate", "drive request already rated"); dup != nil {
			return models.Rate{}, dup
		}
		return models.Rate{}, fmt.Errorf("insert rate: %w", err)
	}
	return rate, nil
}

// Exists reports whether the rater already rated the request.
func (r RateRepository) Exists(ctx context.Context, driveRequestID, raterUserID string) (bool, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return false, err
	}
	var n int64
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rates WHERE drive_request_id = ? AND rater_user_id = ?`,
		driveRequestID, raterUserID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count rates: %w", err)
	}
	return n > 0, nil
}

// Stats returns the average stars received by a user and how many rates
// they are based on. The average is 0 when there are none.
func (r RateRepository) Stats(ctx context.Context, ratedUserID string) (float64, int64, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return 0, 0, err
	}
	var (
		avg   sql.NullFloat64
		count int64
	)
	err = q.QueryRowContext(ctx, `
		SELECT AVG(stars), COUNT(*) FROM rates WHERE rated_user_id = ?`, ratedUserID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rate stats: %w", err)
	}
	return avg.Float64, count, nil
}
