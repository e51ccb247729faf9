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

type PositionRepository struct {
	DB *sql.DB
}

// Replace archives the user's previous positions and stores the new one.
func (r PositionRepository) Replace(ctx context.Context, pos models.UserPosition, now time.Time) (models.UserPosition, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.UserPosition{}, err
	}
	if _, err := q.ExecContext(ctx, `UPDATE user_positions SET archived = 1 WHERE user_id = ? AND archived = 0`, pos.UserID); err != nil {
		return models.UserPosition{}, fmt.Errorf("archive positions: %w", err)
	}
	pos.ID = uuid.NewString()
	pos.CreatedAt = now
	_, err = q.ExecContext(ctx, `
		INSERT INTO user_positions (id, user_id, region, latitude, longitude, archived, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		pos.ID, pos.UserID, intdb.NullIfEmpty(pos.Region), pos.Latitude, pos.Longitude, now)
	if err != nil {
		return models.UserPosition{}, fmt.Errorf("insert position: %w", err)
	}
	return pos, nil
}

func (r PositionRepository) Latest(ctx context.Context, userID string) (models.UserPosition, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.UserPosition{}, err
	}
	var pos models.UserPosition
	err = q.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(region,''), latitude, longitude, archived, created_at
		FROM user_positions
		WHERE user_id = ? AND archived = 0
		ORDER BY created_at DESC
		LIMIT 1`, userID).
		Scan(&pos.ID, &pos.UserID, &pos.Region, &pos.Latitude, &pos.Longitude, &pos.Archived, &pos.CreatedAt)
	if err != nil {
		return models.UserPosition{}, notFound(err, "position", userID)
	}
	return pos, nil
}

type TraceRepository struct {
	DB *sql.DB
}

// CreateMany stores a batch of client traces in one statement.
func (r TraceRepository) CreateMany(ctx context.Context, userID string, traces []domain.ParsedTrace, now time.Time) ([]models.Trace, error) {
	if len(traces) == 0 {
		return []models.Trace{}, nil
	}
	q, err := querier(r.DB, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Trace, 0, len(traces))
	args := make([]any, 0, len(traces)*7)
	values := ""
	for i, t := range traces {
		tr := models.Trace{
			ID:         uuid.NewString(),
			UserID:     userID,
			AppVersion: t.AppVersion,
			Level:      t.Level,
			Date:       t.Date,
			Message:    t.Message,
			CreatedAt:  now,
		}
		out = append(out, tr)
		if i > 0 {
			values += ", "
		}
		values += "(" + intdb.Placeholders(7) + ")"
		args = append(args, tr.ID, userID, intdb.NullIfEmpty(tr.AppVersion), tr.Level, tr.Date, tr.Message, now)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO traces (id, user_id, app_version, level, date, message, created_at)
		VALUES `+values, args...)
	if err != nil {
		return nil, fmt.Errorf("insert traces: %w", err)
	}
	return out, nil
}

type FeedbackRepository struct {
	DB *sql.DB
}

func (r FeedbackRepository) Create(ctx context.Context, userID, message string, now time.Time) (models.Feedback, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.Feedback{}, err
	}
	fb := models.Feedback{ID: uuid.NewString(), UserID: userID, Message: message, CreatedAt: now}
	_, err = q.ExecContext(ctx, `
		INSERT INTO feedbacks (id, user_id, message, created_at)
		VALUES (?, ?, ?, ?)`, fb.ID, userID, message, now)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}
