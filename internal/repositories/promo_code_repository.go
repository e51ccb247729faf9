package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"strappon/internal/domain/models"
)

type PromoCodeRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r PromoCodeRepository) InTx(tx *sql.Tx) PromoCodeRepository {
	r.Tx = tx
	return r
}

func (r PromoCodeRepository) Create(ctx context.Context, pc models.PromoCode, now time.Time) (models.PromoCode, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.PromoCode{}, err
	}
	pc.ID = uuid.NewString()
	pc.CreatedAt = now
	_, err = q.ExecContext(ctx, `
		INSERT INTO promo_codes (id, name, eligible_till, active_for, credits, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pc.ID, pc.Name, pc.EligibleTill, pc.ActiveFor, pc.Credits, now,
	)
	if err != nil {
		if dup := duplicateConflict(err, "promo code", pc.Name+" already exists"); dup != nil {
			return models.PromoCode{}, dup
		}
		return models.PromoCode{}, fmt.Errorf("insert promo code: %w", err)
	}
	return pc, nil
}

func (r PromoCodeRepository) GetByName(ctx context.Context, name string) (models.PromoCode, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.PromoCode{}, err
	}
	var pc models.PromoCode
	err = q.QueryRowContext(ctx, `
		SELECT id, name, eligible_till, active_for, credits, created_at
		FROM promo_codes
		WHERE name = ?
		LIMIT 1`, name).Scan(&pc.ID, &pc.Name, &pc.EligibleTill, &pc.ActiveFor, &pc.Credits, &pc.CreatedAt)
	if err != nil {
		return models.PromoCode{}, notFound(err, "promo code", name)
	}
	return pc, nil
}

func (r PromoCodeRepository) Redeemed(ctx context.Context, userID, promoCodeID string) (bool, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return false, err
	}
	var n int64
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_promo_codes WHERE user_id = ? AND promo_code_id = ?`,
		userID, promoCodeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count redemptions: %w", err)
	}
	return n > 0, nil
}

func (r PromoCodeRepository) AddRedemption(ctx context.Context, userID, promoCodeID string, now time.Time) (models.UserPromoCode, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.UserPromoCode{}, err
	}
	upc := models.UserPromoCode{ID: uuid.NewString(), UserID: userID, PromoCodeID: promoCodeID, CreatedAt: now}
	_, err = q.ExecContext(ctx, `
		INSERT INTO user_promo_codes (id, user_id, promo_code_id, created_at)
		VALUES (?, ?, ?, ?)`, upc.ID, userID, promoCodeID, now)
	if err != nil {
		if dup := duplicateConflict(err, "promo code", "already redeemed"); dup != nil {
			return models.UserPromoCode{}, dup
		}
		return models.UserPromoCode{}, fmt.Errorf("insert redemption: %w", err)
	}
	return upc, nil
}
