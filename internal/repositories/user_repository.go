package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	intdb "strappon/internal/db"
	"strappon/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r UserRepository) InTx(tx *sql.Tx) UserRepository {
	r.Tx = tx
	return r
}

func (r UserRepository) Create(ctx context.Context, in models.UserInput, now time.Time) (models.User, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:         uuid.NewString(),
		AcsID:      in.AcsID,
		FacebookID: in.FacebookID,
		Name:       in.Name,
		Avatar:     in.Avatar,
		Email:      in.Email,
		Locale:     in.Locale,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO users (id, acs_id, facebook_id, name, avatar, email, locale, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		u.ID, intdb.NullIfEmpty(u.AcsID), intdb.NullIfEmpty(u.FacebookID), u.Name,
		intdb.NullIfEmpty(u.Avatar), intdb.NullIfEmpty(u.Email), u.Locale, now, now,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByID returns a non deleted user.
func (r UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.getBy(ctx, "u.id", id)
}

func (r UserRepository) GetByFacebookID(ctx context.Context, facebookID string) (models.User, error) {
	return r.getBy(ctx, "u.facebook_id", facebookID)
}

func (r UserRepository) GetByAcsID(ctx context.Context, acsID string) (models.User, error) {
	return r.getBy(ctx, "u.acs_id", acsID)
}

func (r UserRepository) getBy(ctx context.Context, column, value string) (models.User, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	err = q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE `+column+` = ? AND u.deleted = 0
		LIMIT 1`, value).Scan(userDest(&u)...)
	if err != nil {
		return models.User{}, notFound(err, "user", value)
	}
	return u, nil
}

func (r UserRepository) Update(ctx context.Context, id string, in models.UserInput, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE users
		SET name = ?, avatar = ?, email = ?, locale = ?, updated_at = ?
		WHERE id = ? AND deleted = 0`,
		in.Name, intdb.NullIfEmpty(in.Avatar), intdb.NullIfEmpty(in.Email), in.Locale, now, id,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return mustAffect(res, "user", id)
}

func (r UserRepository) Delete(ctx context.Context, id string, now time.Time) error {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE users SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`, now, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return mustAffect(res, "user", id)
}

type TokenRepository struct {
	DB *sql.DB
}

func (r TokenRepository) Create(ctx context.Context, userID string, now time.Time) (models.Token, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.Token{}, err
	}
	t := models.Token{ID: uuid.NewString(), UserID: userID, CreatedAt: now}
	if _, err := q.ExecContext(ctx, `INSERT INTO tokens (id, user_id, created_at) VALUES (?, ?, ?)`, t.ID, t.UserID, now); err != nil {
		return models.Token{}, fmt.Errorf("insert token: %w", err)
	}
	return t, nil
}

func (r TokenRepository) GetByID(ctx context.Context, id string) (models.Token, error) {
	q, err := querier(r.DB, nil)
	if err != nil {
		return models.Token{}, err
	}
	var t models.Token
	err = q.QueryRowContext(ctx, `SELECT id, user_id, created_at FROM tokens WHERE id = ? LIMIT 1`, id).
		Scan(&t.ID, &t.UserID, &t.CreatedAt)
	if err != nil {
		return models.Token{}, notFound(err, "token", id)
	}
	return t, nil
}

// DeleteByUser revokes every token of a user.
func (r TokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	q, err := querier(r.DB, nil)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}
